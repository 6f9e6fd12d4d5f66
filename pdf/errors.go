package pdf

import "fmt"

// ErrorKind classifies compression failures
type ErrorKind string

const (
	KindUnreadablePdf   ErrorKind = "unreadable_pdf"
	KindInvalidTier     ErrorKind = "invalid_tier"
	KindImageProcessing ErrorKind = "image_processing"
	KindOptimizerFailed ErrorKind = "optimizer_failed"
)

// Error is a compression error with its kind and the underlying cause
type Error struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target is an *Error of the same kind, so that
// errors.Is(err, ErrInvalidTier) matches any invalid tier error.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == t.Kind
}

// Sentinels for errors.Is checks
var (
	ErrUnreadablePdf   = &Error{Kind: KindUnreadablePdf, Message: "unreadable PDF"}
	ErrInvalidTier     = &Error{Kind: KindInvalidTier, Message: "invalid compression tier"}
	ErrImageProcessing = &Error{Kind: KindImageProcessing, Message: "image processing failed"}
	ErrOptimizerFailed = &Error{Kind: KindOptimizerFailed, Message: "optimizer failed"}
)

// newError creates a new compression error
func newError(kind ErrorKind, message string, err error) *Error {
	return &Error{
		Kind:    kind,
		Message: message,
		Err:     err,
	}
}

func unreadableError(message string, err error) *Error {
	return newError(KindUnreadablePdf, message, err)
}

func invalidTierError(message string) *Error {
	return newError(KindInvalidTier, message, nil)
}

func imageError(message string, err error) *Error {
	return newError(KindImageProcessing, message, err)
}

func optimizerError(message string, err error) *Error {
	return newError(KindOptimizerFailed, message, err)
}
