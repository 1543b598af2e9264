package errors

import (
	stderrors "errors"
	"fmt"
)

// Kind classifies every failure a request can end with. The same kinds are
// shared by all channels; the HTTP layer renders them as codes and texts.
type Kind int

const (
	KindUndefined Kind = iota
	KindUnauthenticated
	KindInvalidRequest
	KindInsufficientFunds
	KindInvalidSender
	KindInvalidFallbackSender
	KindMissingDispatchID
	KindDispatchNotFound
)

func (k Kind) String() string {
	switch k {
	case KindUnauthenticated:
		return "unauthenticated"
	case KindInvalidRequest:
		return "invalid_request"
	case KindInsufficientFunds:
		return "insufficient_funds"
	case KindInvalidSender:
		return "invalid_sender"
	case KindInvalidFallbackSender:
		return "invalid_fallback_sender"
	case KindMissingDispatchID:
		return "missing_dispatch_id"
	case KindDispatchNotFound:
		return "dispatch_not_found"
	}

	return "undefined"
}

type ServiceError struct {
	Kind    Kind
	Message string
	Err     error
	// Details carries field level validation messages.
	Details map[string][]string
}

func (se ServiceError) Error() string {
	if se.Message != "" {
		return se.Message
	}
	if se.Err != nil {
		return fmt.Sprintf("%s: %v", se.Kind, se.Err)
	}
	return se.Kind.String()
}

func (se ServiceError) Unwrap() error {
	return se.Err
}

func New(kind Kind, message string) ServiceError {
	return ServiceError{Kind: kind, Message: message}
}

func Wrap(kind Kind, err error) ServiceError {
	return ServiceError{Kind: kind, Err: err}
}

// KindOf returns the kind of the first ServiceError in err's chain and
// KindUndefined for anything else.
func KindOf(err error) Kind {
	var se ServiceError
	if stderrors.As(err, &se) {
		return se.Kind
	}
	return KindUndefined
}
