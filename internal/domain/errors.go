package domain

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound          = errors.New("not found")
	ErrUnknownSlideType  = errors.New("unknown slide type")
	ErrInvalidStory      = errors.New("invalid story")
	ErrInvalidRequest    = errors.New("invalid request")
	ErrNoStrategy        = errors.New("strategy not resolved")
	ErrNoImageData       = errors.New("no image data in response")
	ErrAuthRequired      = errors.New("authentication required")
	ErrAuthorization     = errors.New("authorization rejected")
	ErrProviderFailure   = errors.New("provider failure")
	ErrInvalidTransition = errors.New("invalid state transition")
)

// Kind classifies a service failure for retry and re-authorization decisions.
type Kind int

const (
	KindPermanent Kind = iota
	KindTransient
	KindAuthorization
)

func (k Kind) String() string {
	switch k {
	case KindTransient:
		return "transient"
	case KindAuthorization:
		return "authorization"
	default:
		return "permanent"
	}
}

// ServiceError is a classified failure from an external generation service.
type ServiceError struct {
	Kind    Kind
	Code    int
	Message string
	Err     error
}

func (e *ServiceError) Error() string {
	if e.Code > 0 {
		return fmt.Sprintf("%s error (%d): %s", e.Kind, e.Code, e.Message)
	}
	return fmt.Sprintf("%s error: %s", e.Kind, e.Message)
}

func (e *ServiceError) Unwrap() error { return e.Err }

// IsTransient reports whether err is worth retrying.
func IsTransient(err error) bool {
	var se *ServiceError
	return errors.As(err, &se) && se.Kind == KindTransient
}

// IsAuthorization reports whether err means the caller must re-authorize.
func IsAuthorization(err error) bool {
	if errors.Is(err, ErrAuthorization) {
		return true
	}
	var se *ServiceError
	return errors.As(err, &se) && se.Kind == KindAuthorization
}
