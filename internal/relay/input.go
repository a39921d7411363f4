package relay

import (
	"fmt"
	"strings"

	"github.com/google/go-containerregistry/pkg/name"

	"nexus-pusher/internal/naming"
)

const secretMask = "********"

// Secret holds a credential. Its formatted and marshaled forms are masked so
// it cannot leak through logs; Reveal returns the real value.
type Secret string

func (s Secret) String() string {
	if s == "" {
		return ""
	}
	return secretMask
}

func (s Secret) GoString() string { return fmt.Sprintf("relay.Secret(%q)", s.String()) }

// MarshalText keeps zap, yaml and json encoders from emitting the value.
func (s Secret) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

// Reveal returns the plain value.
func (s Secret) Reveal() string { return string(s) }

// Input is the complete, immutable description of one relay.
type Input struct {
	SourceImage  string
	RegistryHost string
	// NewName is optional; empty means keep the source name.
	NewName  string
	Username string
	Password Secret
}

// Normalized returns a copy with surrounding whitespace removed from every
// field except Password.
func (in Input) Normalized() Input {
	return Input{
		SourceImage:  strings.TrimSpace(in.SourceImage),
		RegistryHost: strings.TrimSpace(in.RegistryHost),
		NewName:      strings.TrimSpace(in.NewName),
		Username:     strings.TrimSpace(in.Username),
		Password:     in.Password,
	}
}

// Validate reports every empty required field at once.
func (in Input) Validate() error {
	in = in.Normalized()
	var missing []string
	for _, f := range []struct {
		name  string
		value string
	}{
		{"image", in.SourceImage},
		{"registry", in.RegistryHost},
		{"username", in.Username},
		{"password", strings.TrimSpace(in.Password.Reveal())},
	} {
		if f.value == "" {
			missing = append(missing, f.name)
		}
	}
	if len(missing) == 0 {
		return nil
	}
	return wrapWithSentinelAndContext(
		ErrValidationFailed,
		&ValidationError{Missing: missing},
		fmt.Sprintf("all fields except new name must be filled (missing: %s)", strings.Join(missing, ", ")),
		map[string]any{"missing": missing},
	)
}

// CheckReferences verifies that every reference in res is syntactically a
// valid image reference, so a malformed host or name is rejected before any
// command runs.
func CheckReferences(res naming.Resolution) error {
	refs := []struct {
		role string
		ref  string
	}{
		{"source", res.Source},
		{"target", res.Target},
		{"registry", res.Registry},
	}
	for _, r := range refs {
		if _, err := name.ParseReference(r.ref); err != nil {
			return wrapWithSentinelAndContext(
				ErrInvalidReference,
				err,
				fmt.Sprintf("invalid %s image reference %q: %v", r.role, r.ref, err),
				map[string]any{"role": r.role, "reference": r.ref},
			)
		}
	}
	return nil
}
