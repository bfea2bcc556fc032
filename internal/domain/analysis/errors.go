package analysis

import (
	"errors"
	"fmt"
	"strings"
)

// ErrEmptyLogEntry is returned for a missing or empty log_entry.
var ErrEmptyLogEntry = errors.New("missing 'log_entry' in request body")

// ErrModelUnavailable indicates the model client was never initialized.
var ErrModelUnavailable = errors.New("model client not initialized; analysis is unavailable")

// ErrNoHistory is returned when no listable archive is configured.
var ErrNoHistory = errors.New("analysis history is not enabled")

// RemoteModelError wraps any failure of the remote generate call.
type RemoteModelError struct {
	Provider string
	Err      error
}

func (e *RemoteModelError) Error() string {
	if e.Provider == "" {
		return e.Err.Error()
	}
	return fmt.Sprintf("%s: %v", e.Provider, e.Err)
}

func (e *RemoteModelError) Unwrap() error { return e.Err }

// StartupConfigError lists required configuration missing at process start.
type StartupConfigError struct {
	Provider string
	Missing  []string
}

func (e *StartupConfigError) Error() string {
	return fmt.Sprintf("%s provider requires %s to be set", e.Provider, strings.Join(e.Missing, " and "))
}
