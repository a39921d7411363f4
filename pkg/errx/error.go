package errx

import "errors"

// Error is the structured error type used across nexus-pusher.
// Values are immutable: every With* method returns a modified copy.
type Error struct {
	code        string
	description string
	message     string
	context     map[string]any
	cause       error
	base        error
}

// New creates an Error without a cause.
func New(code, description, message string) *Error {
	return &Error{code: code, description: description, message: message}
}

// Wrap creates an Error that wraps cause.
func Wrap(code, description, message string, cause error) *Error {
	return &Error{code: code, description: description, message: message, cause: cause}
}

// Error returns the most specific text available: message, then
// description, then code.
func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	for _, s := range []string{e.message, e.description, e.code} {
		if s != "" {
			return s
		}
	}
	return "error"
}

// Unwrap returns the cause. The base sentinel is matched through Is instead.
func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.cause
}

// Is matches target against the base sentinel and the cause chain.
func (e *Error) Is(target error) bool {
	if e == nil {
		return false
	}
	if e.base != nil && errors.Is(e.base, target) {
		return true
	}
	return errors.Is(e.cause, target)
}

// Code returns the stable error code.
func (e *Error) Code() string {
	if e == nil {
		return ""
	}
	return e.code
}

// Description returns the category description.
func (e *Error) Description() string {
	if e == nil {
		return ""
	}
	return e.description
}

// Message returns the user-facing message.
func (e *Error) Message() string {
	if e == nil {
		return ""
	}
	return e.message
}

// Context returns a copy of the structured context, or nil when empty.
func (e *Error) Context() map[string]any {
	if e == nil || len(e.context) == 0 {
		return nil
	}
	return cloneContext(e.context)
}

// Cause returns the wrapped error, if any.
func (e *Error) Cause() error {
	if e == nil {
		return nil
	}
	return e.cause
}

// Base returns the sentinel base error, if any.
func (e *Error) Base() error {
	if e == nil {
		return nil
	}
	return e.base
}

// WithContext returns a copy of e with key set to value.
func (e *Error) WithContext(key string, value any) *Error {
	return e.WithContextMap(map[string]any{key: value})
}

// WithContextMap returns a copy of e with ctx merged into its context.
func (e *Error) WithContextMap(ctx map[string]any) *Error {
	if e == nil {
		return nil
	}
	out := e.clone()
	if len(ctx) == 0 {
		return out
	}
	if out.context == nil {
		out.context = make(map[string]any, len(ctx))
	}
	for key, value := range ctx {
		out.context[key] = value
	}
	return out
}

// WithBase returns a copy of e whose base sentinel is base.
func (e *Error) WithBase(base error) *Error {
	if e == nil {
		return nil
	}
	out := e.clone()
	out.base = base
	return out
}

func (e *Error) clone() *Error {
	out := *e
	if e.context != nil {
		out.context = cloneContext(e.context)
	}
	return &out
}

func cloneContext(ctx map[string]any) map[string]any {
	out := make(map[string]any, len(ctx))
	for key, value := range ctx {
		out[key] = value
	}
	return out
}
