package notify

import (
	"context"
	"errors"
	"net"
	"net/url"
	"regexp"
	"syscall"
)

// OnlineFunc reports the current connectivity snapshot. The classifier
// consults it before anything else: while offline, every failure is NETWORK.
type OnlineFunc func() bool

var emailExistsPattern = regexp.MustCompile(`(?i)already registered|email.*exists`)

// Classifier maps arbitrary failures to a Kind. It is pure over its input
// and the ambient connectivity signal, so retry logic can re-classify the
// same error on every attempt and get the same answer.
type Classifier struct {
	online OnlineFunc
}

// NewClassifier creates a classifier. online may be nil, in which case the
// device is assumed to be online.
func NewClassifier(online OnlineFunc) *Classifier {
	return &Classifier{online: online}
}

// Classify assigns a Kind to err. First match wins:
//
//  1. device offline -> NETWORK
//  2. already classified -> returned unchanged
//  3. transport-level I/O failure -> NETWORK
//  4. normalized status 0 -> NETWORK (dropped connection)
//  5. status 409 or an "already registered" message -> EMAIL_EXISTS
//  6. status 400 or 401 -> AUTH_FAIL
//  7. status >= 400 -> API_FAIL, message annotated with the status
//  8. anything else -> UNKNOWN
func (c *Classifier) Classify(err error) *AppError {
	if c.online != nil && !c.online() {
		return NewAppError(KindNetwork, "no network connection", err)
	}

	var app *AppError
	if errors.As(err, &app) {
		return app
	}

	if isTransportFailure(err) {
		return NewAppError(KindNetwork, "request could not reach the server", err)
	}

	var st *StatusError
	if errors.As(err, &st) {
		switch {
		case st.Status == 0:
			return NewAppError(KindNetwork, "request could not reach the server", err)
		case st.Status == 409 || emailExistsPattern.MatchString(st.Message):
			return NewAppError(KindEmailExists, "this email address is already registered", err)
		case st.Status == 400 || st.Status == 401:
			return NewAppError(KindAuthFail, st.Message, err)
		case st.Status >= 400:
			return NewAppError(KindAPIFail, (&StatusError{Status: st.Status}).Error(), err)
		}
	}

	if err != nil && emailExistsPattern.MatchString(err.Error()) {
		return NewAppError(KindEmailExists, "this email address is already registered", err)
	}

	message := ""
	if err != nil {
		message = err.Error()
	}
	return NewAppError(KindUnknown, message, err)
}

// isTransportFailure reports whether err happened below the HTTP layer:
// dial errors, resets, timeouts. These mean the network path is broken,
// not that the server answered badly.
func isTransportFailure(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, syscall.ECONNREFUSED) ||
		errors.Is(err, syscall.ECONNRESET) ||
		errors.Is(err, syscall.ETIMEDOUT) {
		return true
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}
	var dnsErr *net.DNSError
	return errors.As(err, &dnsErr)
}
