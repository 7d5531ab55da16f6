package models

import "encoding/json"

// Envelope is the response shape shared by every API endpoint.
type Envelope[T any] struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    T               `json:"data,omitempty"`
	Errors  json.RawMessage `json:"errors,omitempty"`
}
