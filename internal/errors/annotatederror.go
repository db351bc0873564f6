package errors

import (
	"errors"
	"fmt"
	"log/slog"
	"runtime"
)

// AnnotatedError includes more context than a plain error that is useful for troubleshooting.
type AnnotatedError struct {
	// msg is the error message.
	msg string
	// pc is the program counter for the location of the error provided by runtime.Callers.
	pc uintptr
	// attrs are slog attributes that are added to the log event to provide more context for the error.
	attrs []slog.Attr
}

// annotate captures the caller skip frames above it.
func annotate(skip int, msg string, attrs []slog.Attr) AnnotatedError {
	var pcs [1]uintptr
	runtime.Callers(skip, pcs[:])
	return AnnotatedError{
		msg:   msg,
		pc:    pcs[0],
		attrs: attrs,
	}
}

// New creates a new AnnotatedError with the given message and attributes.
func New(msg string, attrs ...slog.Attr) AnnotatedError {
	// Skip runtime.Callers, annotate and this function.
	return annotate(3, msg, attrs) //nolint:mnd // see above
}

// NewSentinel creates a plain error without other context that can be used as sentinel error that can be detected
// with errors.Is.
func NewSentinel(msg string) error {
	return errors.New(msg)
}

// Wrap annotates err with msg and attrs. The source location points to the caller of Wrap.
//
// Returns nil if err is nil so that it can be used on return values directly.
func Wrap(err error, msg string, attrs ...slog.Attr) error {
	if err == nil {
		return nil
	}
	return annotate(3, msg, attrs).Wrap(err) //nolint:mnd // skip runtime.Callers, annotate and Wrap.
}

// Wrap is a convenience function for wrapping errors, e.g., adding context to a sentinel error.
func (err AnnotatedError) Wrap(wrapped error) error {
	return fmt.Errorf("%w: %w", err, wrapped)
}

// Error implements error interface.
func (err AnnotatedError) Error() string {
	return err.msg
}

// LogValue formats the error for useful logging.
func (err AnnotatedError) LogValue() slog.Value {
	return slog.GroupValue(err.logAttrs()...)
}

func (err AnnotatedError) logAttrs() []slog.Attr {
	// Retrieve the source location of the error so that developers can locate it faster.
	frames := runtime.CallersFrames([]uintptr{err.pc})
	source, _ := frames.Next()
	sourceAttr := slog.String("source", fmt.Sprintf("%s:%d", source.File, source.Line))

	return append(
		[]slog.Attr{sourceAttr},
		err.attrs...,
	)
}

// SlogError returns an attribute for logging err under the "error" key.
//
// The attributes of every AnnotatedError in the chain are included. The source location is taken from the innermost
// annotation since that is closest to where things went wrong.
func SlogError(err error) slog.Attr {
	if err == nil {
		return slog.String("error", "<nil>")
	}
	var (
		annotations []AnnotatedError
		collect     func(e error)
	)
	collect = func(e error) {
		switch x := e.(type) { //nolint:errorlint // we walk the chain ourselves.
		case AnnotatedError:
			annotations = append(annotations, x)
		case interface{ Unwrap() []error }:
			for _, inner := range x.Unwrap() {
				collect(inner)
			}
		case interface{ Unwrap() error }:
			collect(x.Unwrap())
		}
	}
	collect(err)

	attrs := []slog.Attr{slog.String("msg", err.Error())}
	for i, annotation := range annotations {
		if i == len(annotations)-1 {
			attrs = append(attrs, annotation.logAttrs()...)
			continue
		}
		attrs = append(attrs, annotation.attrs...)
	}
	return slog.Attr{Key: "error", Value: slog.GroupValue(attrs...)}
}

// As exposes stdlib errors.As.
func As(err error, target any) bool {
	return errors.As(err, target)
}

// Is exposes stdlib errors.Is.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// Unwrap exposes stdlib errors.Unwrap.
func Unwrap(err error) error {
	return errors.Unwrap(err)
}

// Join exposes stdlib errors.Join.
func Join(errs ...error) error {
	return errors.Join(errs...)
}
