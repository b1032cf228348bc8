package rpc

import (
	stdErrors "errors"
	"fmt"
	"net/http"

	pkgerrors "github.com/arkanlabs/shopgate/pkg/errors"
)

// ErrorKind classifies why an upstream call failed.
type ErrorKind string

const (
	// KindTimeout means the call exceeded its deadline.
	KindTimeout ErrorKind = "timeout"
	// KindRejected means the remote service answered with a business error.
	KindRejected ErrorKind = "rejected"
	// KindUnavailable means the transport failed: connection refused,
	// DNS failure, or an undecodable payload.
	KindUnavailable ErrorKind = "unavailable"
)

// Error is the single failure shape every upstream call collapses into.
// Call sites match on Kind, never on ad hoc field presence.
type Error struct {
	Service    string
	Command    string
	Kind       ErrorKind
	StatusCode int
	Message    string
	cause      error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Message != "" {
		return fmt.Sprintf("%s %s: %s: %s", e.Service, e.Command, e.Kind, e.Message)
	}
	return fmt.Sprintf("%s %s: %s", e.Service, e.Command, e.Kind)
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.cause
}

// AsError extracts a classified call failure from an error chain.
func AsError(err error) *Error {
	if err == nil {
		return nil
	}
	var typed *Error
	if stdErrors.As(err, &typed) {
		return typed
	}
	return nil
}

// ToDomain maps a classified call failure onto the gateway error
// taxonomy. Timeouts and transport faults surface as dependency
// failures; remote business rejections surface as validation failures
// so the caller sees the remote's own message.
func ToDomain(err error) error {
	if err == nil {
		return nil
	}
	typed := AsError(err)
	if typed == nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "unclassified upstream failure")
	}

	switch typed.Kind {
	case KindTimeout:
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err,
			fmt.Sprintf("%s service timed out", typed.Service)).
			WithDetails(map[string]any{"service": typed.Service, "kind": string(KindTimeout)})
	case KindUnavailable:
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err,
			fmt.Sprintf("%s service unavailable", typed.Service)).
			WithDetails(map[string]any{"service": typed.Service, "kind": string(KindUnavailable)})
	case KindRejected:
		if typed.StatusCode >= http.StatusInternalServerError {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err,
				fmt.Sprintf("%s service rejected the request", typed.Service)).
				WithDetails(map[string]any{"service": typed.Service, "status_code": typed.StatusCode})
		}
		message := typed.Message
		if message == "" {
			message = fmt.Sprintf("%s service rejected the request", typed.Service)
		}
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, message).
			WithDetails(map[string]any{"service": typed.Service, "status_code": typed.StatusCode})
	default:
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "unclassified upstream failure")
	}
}
