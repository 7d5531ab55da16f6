// Package models provides the shared data types for the meetly client.
//
// Every type in this package mirrors a record returned by the remote
// events marketplace API. The client holds no authoritative data: values
// are decoded from JSON responses, rendered, and discarded.
//
// # Roles
//
// Users carry one of three roles. The role decides which dashboard is
// shown and which commands are offered; the server enforces authorization.
//
//	role := models.RoleHost
//	fmt.Println(role.DashboardPath()) // "/dashboard/host"
//
// # Events
//
// [Event] exposes capacity helpers used to decide whether the join action
// is available:
//
//	if ev.Joinable() {
//	    // offer "Join Event"
//	}
//
// # Envelope
//
// All API responses share the [Envelope] shape
// { success, message, data, errors }.
package models
