// Package errors extends the standard library errors with annotations that
// carry [slog.Attr] metadata and the source location of the wrap site, so
// that failures deep in a fetch pass can be logged with full context.
package errors

import (
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"runtime"
	"strings"
)

// AnnotatedError wraps an error with a message, optional [slog.Attr]
// annotations, and the source location where the wrapping happened.
type AnnotatedError struct {
	msg         string
	err         error
	annotations []slog.Attr
	source      string
}

// NewSentinel creates an error without source information. Use it for
// package-level sentinel errors that are matched with [Is].
func NewSentinel(msg string) *AnnotatedError {
	return &AnnotatedError{msg: msg, err: nil, annotations: nil, source: ""}
}

// Wrap annotates err with a message and optional [slog.Attr]. The call site
// is recorded so that [SlogError] can point at the wrapping code.
func Wrap(err error, msg string, annotations ...slog.Attr) *AnnotatedError {
	return &AnnotatedError{
		msg:         msg,
		err:         err,
		annotations: annotations,
		source:      callSite(),
	}
}

// DecoratePanic converts a recovered panic value into an error pointing at
// the panicking line. Returns nil when v is nil.
func DecoratePanic(v any) error {
	if v == nil {
		return nil
	}
	return &AnnotatedError{
		msg:         fmt.Sprintf("panic: %v", v),
		err:         nil,
		annotations: nil,
		source:      callSite(),
	}
}

// Error implements the error interface. Wrapped errors are joined with ": "
// like [fmt.Errorf] with a %w verb.
func (e *AnnotatedError) Error() string {
	if e.err == nil {
		return e.msg
	}
	return e.msg + ": " + e.err.Error()
}

// Unwrap returns the wrapped error, if any.
func (e *AnnotatedError) Unwrap() error {
	return e.err
}

// SlogError renders err as a structured "error" group containing the
// message, the source location of the outermost wrap, and any annotations
// collected along the error chain. It tolerates nil and non-annotated
// errors.
func SlogError(err error) slog.Attr {
	if err == nil {
		return slog.Group("error", slog.String("message", "<nil>"))
	}

	var (
		annotations []slog.Attr
		source      string
	)
	for e := err; e != nil; e = errors.Unwrap(e) {
		var annotated *AnnotatedError
		if errors.As(e, &annotated) {
			annotations = append(annotations, annotated.annotations...)
			if source == "" {
				source = annotated.source
			}
			e = annotated
		}
	}

	args := []any{slog.String("message", err.Error())}
	if source != "" {
		args = append(args, slog.String("source", source))
	}
	if len(annotations) > 0 {
		annotationArgs := make([]any, 0, len(annotations))
		for _, attr := range annotations {
			annotationArgs = append(annotationArgs, attr)
		}
		args = append(args, slog.Group("annotations", annotationArgs...))
	}
	return slog.Group("error", args...)
}

// callSite returns "file.go:line" for the first stack frame outside this
// package and the runtime.
func callSite() string {
	const maxDepth = 16
	pc := make([]uintptr, maxDepth)
	// Skip runtime.Callers and callSite itself.
	n := runtime.Callers(2, pc)
	frames := runtime.CallersFrames(pc[:n])
	for {
		frame, more := frames.Next()
		if !strings.Contains(frame.Function, "/internal/errors.") &&
			!strings.HasPrefix(frame.Function, "runtime.") {
			return fmt.Sprintf("%s:%d", filepath.Base(frame.File), frame.Line)
		}
		if !more {
			return ""
		}
	}
}

// New returns an error that formats as the given text. It is re-exported
// from the standard library so callers need only one errors import.
func New(text string) error {
	return errors.New(text)
}

// Is reports whether any error in err's tree matches target.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's tree that matches target.
func As(err error, target any) bool {
	return errors.As(err, target)
}

// Unwrap returns the result of calling the Unwrap method on err.
func Unwrap(err error) error {
	return errors.Unwrap(err)
}

// Join wraps the given errors into a single error.
func Join(errs ...error) error {
	return errors.Join(errs...)
}
