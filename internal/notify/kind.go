package notify

import "fmt"

// Kind is the closed set of user-facing failure categories. Every failure
// that reaches a display surface carries exactly one of these.
type Kind string

const (
	KindNetwork     Kind = "NETWORK"
	KindSchema      Kind = "SCHEMA"
	KindCreateFail  Kind = "CREATE_FAIL"
	KindAuthFail    Kind = "AUTH_FAIL"
	KindEmailExists Kind = "EMAIL_EXISTS"
	KindAPIFail     Kind = "API_FAIL"
	KindUnknown     Kind = "UNKNOWN"
)

// AppError is a failure that has been assigned a Kind. Classification is
// idempotent: classifying an AppError returns it unchanged.
type AppError struct {
	Kind    Kind
	Message string
	Cause   error
}

// NewAppError builds a classified error. An empty message falls back to the
// kind name.
func NewAppError(kind Kind, message string, cause error) *AppError {
	if message == "" {
		message = string(kind)
	}
	return &AppError{Kind: kind, Message: message, Cause: cause}
}

func (e *AppError) Error() string {
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// StatusError is the normalized shape for backend failures. Adapters decode
// whatever envelope the remote side returns and produce one of these before
// classification ever sees it. Status 0 means the request never completed.
type StatusError struct {
	Status  int
	Message string
}

func (e *StatusError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("request failed with status %d", e.Status)
}
