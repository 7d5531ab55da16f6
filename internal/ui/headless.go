package ui

import (
	"fmt"
	"maps"
	"os"
	"sync"

	"github.com/mattn/go-isatty"
)

// ErrHeadlessMissing is returned when a headless form needs a value that
// was not supplied through flags.
type ErrHeadlessMissing struct {
	Key string
}

func (e *ErrHeadlessMissing) Error() string {
	return fmt.Sprintf("ui: %s is required in non-interactive mode (pass --%s)", e.Key, e.Key)
}

// HeadlessManager decides between interactive and headless rendering and
// holds the answers headless forms use in place of prompts.
type HeadlessManager struct {
	mu      sync.RWMutex
	forced  *bool
	answers map[string]string
	input   *os.File
}

// NewHeadlessManager detects headless mode from the TTY state of os.Stdin.
func NewHeadlessManager() *HeadlessManager {
	return &HeadlessManager{input: os.Stdin}
}

// IsHeadless reports whether prompts must be skipped: forced, or stdin is
// not a terminal.
func (h *HeadlessManager) IsHeadless() bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if h.forced != nil {
		return *h.forced
	}
	if h.input == nil {
		return true
	}
	fd := h.input.Fd()
	return !isatty.IsTerminal(fd) && !isatty.IsCygwinTerminal(fd)
}

// ForceHeadless overrides TTY detection.
func (h *HeadlessManager) ForceHeadless(force bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.forced = &force
}

// SetAnswers merges answers into the stored set. Empty values are ignored
// so unset flags do not mask prompts.
func (h *HeadlessManager) SetAnswers(answers map[string]string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.answers == nil {
		h.answers = make(map[string]string, len(answers))
	}
	for k, v := range answers {
		if v != "" {
			h.answers[k] = v
		}
	}
}

// Answer returns a stored answer.
func (h *HeadlessManager) Answer(key string) (string, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	v, ok := h.answers[key]
	return v, ok
}

// Answers returns a copy of every stored answer.
func (h *HeadlessManager) Answers() map[string]string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return maps.Clone(h.answers)
}

// Require returns the answer for key or *ErrHeadlessMissing.
func (h *HeadlessManager) Require(key string) (string, error) {
	if v, ok := h.Answer(key); ok {
		return v, nil
	}
	return "", &ErrHeadlessMissing{Key: key}
}
