package authclient

import "fmt"

// CredentialError is a login rejected by the identity backend: bad
// credentials or validation failures. It carries field-level messages for
// the login form and causes no session mutation.
type CredentialError struct {
	Message     string            `json:"message"`
	Status      int               `json:"-"`
	FieldErrors map[string]string `json:"fieldErrors,omitempty"`
	Errors      []string          `json:"errors,omitempty"`
}

func (e *CredentialError) Error() string {
	return fmt.Sprintf("login rejected (%d): %s", e.Status, e.Message)
}

// SessionExpiredError means a refresh or validation definitively failed and
// the local session was (or must be) cleared. It is never retried beyond the
// single refresh attempt.
type SessionExpiredError struct {
	Reason string
}

func (e *SessionExpiredError) Error() string {
	return "session expired: " + e.Reason
}
