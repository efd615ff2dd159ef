// Copyright (c) 2024 Tomás Farías and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package gsi

import "fmt"

// AlreadyStartedError occurs when [Server.Start] is called on a server
// which has already been started.
type AlreadyStartedError struct{}

// Error implements the error interface.
func (e AlreadyStartedError) Error() string {
	return "gsi: server already started"
}

// NoSubscribersError occurs when a game state payload was published but
// no handlers were registered to observe it. Running a listener nobody
// is consuming from is a configuration mistake, so the listener
// terminates instead of silently discarding telemetry.
type NoSubscribersError struct {
	Cause error
}

// Error implements the error interface.
func (e NoSubscribersError) Error() string {
	return fmt.Sprintf("gsi: payload published with no subscribers: %s", e.Cause)
}

// Unwrap implements the implicit interface used by [errors.Is] and [errors.As].
func (e NoSubscribersError) Unwrap() error {
	return e.Cause
}

// ListenerError occurs when the accept loop terminates for any reason
// other than an orderly shutdown.
type ListenerError struct {
	Cause error
}

// Error implements the error interface.
func (e ListenerError) Error() string {
	return fmt.Sprintf("gsi: listener failed: %s", e.Cause)
}

// Unwrap implements the implicit interface used by [errors.Is] and [errors.As].
func (e ListenerError) Unwrap() error {
	return e.Cause
}

// HandlerError occurs when a handler returns an error or panics. The
// failure is terminal for that handler's subscription only.
type HandlerError struct {
	Cause error
}

// Error implements the error interface.
func (e HandlerError) Error() string {
	return fmt.Sprintf("gsi: handler failed: %s", e.Cause)
}

// Unwrap implements the implicit interface used by [errors.Is] and [errors.As].
func (e HandlerError) Unwrap() error {
	return e.Cause
}
