package errx

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap"
)

// maxChainEntries bounds DebugString on pathological error graphs.
const maxChainEntries = 64

// UserString returns the message a user should see for err.
func UserString(err error) string {
	if err == nil {
		return ""
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Error()
	}
	return err.Error()
}

// IsError reports whether err has an *Error in its chain.
func IsError(err error) bool {
	var e *Error
	return err != nil && errors.As(err, &e)
}

// DebugString renders the full error chain with codes and context, one
// entry per line.
func DebugString(err error) string {
	if err == nil {
		return ""
	}
	var b strings.Builder
	for i, item := range flattenChain(err) {
		if i > 0 {
			b.WriteByte('\n')
		}
		fmt.Fprintf(&b, "%d: %T: %s", i+1, item, item.Error())
		typed, ok := item.(*Error)
		if !ok {
			continue
		}
		if typed.code != "" {
			fmt.Fprintf(&b, " | code=%s", typed.code)
		}
		if typed.description != "" {
			fmt.Fprintf(&b, " | description=%q", typed.description)
		}
		if typed.message != "" {
			fmt.Fprintf(&b, " | message=%q", typed.message)
		}
		if len(typed.context) > 0 {
			fmt.Fprintf(&b, " | context={%s}", formatContext(typed.context))
		}
	}
	return b.String()
}

// ZapFields converts the outermost *Error in err into zap fields:
// error.code, error.category, error.message, one error.context.<key> per
// context entry and error.cause. Non-errx errors yield a single zap.Error.
func ZapFields(err error) []zap.Field {
	if err == nil {
		return nil
	}
	var e *Error
	if !errors.As(err, &e) {
		return []zap.Field{zap.Error(err)}
	}
	fields := []zap.Field{
		zap.String("error.code", e.code),
		zap.String("error.category", e.description),
		zap.String("error.message", e.message),
		zap.Error(err),
	}
	for _, key := range sortedKeys(e.context) {
		fields = append(fields, zap.Any("error.context."+key, e.context[key]))
	}
	if e.cause != nil {
		fields = append(fields, zap.NamedError("error.cause", e.cause))
	}
	return fields
}

// flattenChain walks err breadth-first, following both single and
// multi-error Unwrap.
func flattenChain(err error) []error {
	var out []error
	queue := []error{err}
	for len(queue) > 0 && len(out) < maxChainEntries {
		current := queue[0]
		queue = queue[1:]
		if current == nil {
			continue
		}
		out = append(out, current)
		queue = append(queue, unwrapAll(current)...)
	}
	return out
}

func unwrapAll(err error) []error {
	switch u := err.(type) {
	case interface{ Unwrap() []error }:
		return u.Unwrap()
	case interface{ Unwrap() error }:
		if next := u.Unwrap(); next != nil {
			return []error{next}
		}
	}
	return nil
}

func formatContext(ctx map[string]any) string {
	keys := sortedKeys(ctx)
	parts := make([]string, 0, len(keys))
	for _, key := range keys {
		parts = append(parts, fmt.Sprintf("%s=%v", key, ctx[key]))
	}
	return strings.Join(parts, ", ")
}

func sortedKeys(ctx map[string]any) []string {
	keys := make([]string, 0, len(ctx))
	for key := range ctx {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
