// Package naming computes the image references an image relay produces:
// the pulled source, the optionally renamed local image and the
// registry-qualified reference that gets pushed.
package naming

import "strings"

// DefaultTag is used when a rename needs a tag and the source carries none.
const DefaultTag = "latest"

// Resolution is the reference plan for one relay.
type Resolution struct {
	// Source is the reference as given by the user.
	Source string
	// Target is the local reference after an optional rename; equal to
	// Source when no rename was requested.
	Target string
	// Registry is Target's last path segment under the registry host.
	Registry string
	// Renamed reports whether Target differs from Source by request.
	Renamed bool
}

// Resolve builds the reference plan for source pushed to registryHost,
// optionally renamed to newName.
//
// A newName without a tag inherits the source tag (DefaultTag when the
// source has none). A newName with a tag is used verbatim. newName is not
// otherwise normalized; only the final path segment is carried over to the
// registry reference.
func Resolve(source, registryHost, newName string) Resolution {
	res := Resolution{Source: source, Target: source}
	if newName != "" {
		res.Target = RenameTarget(source, newName)
		res.Renamed = true
	}
	res.Registry = RegistryReference(registryHost, res.Target)
	return res
}

// RenameTarget returns newName with the source tag appended when newName
// has no tag of its own.
func RenameTarget(source, newName string) string {
	if _, tag := SplitTag(newName); tag != "" {
		return newName
	}
	return newName + ":" + TagOf(source)
}

// RegistryReference joins registryHost with the last path segment of ref.
func RegistryReference(registryHost, ref string) string {
	return strings.TrimSuffix(registryHost, "/") + "/" + LastSegment(ref)
}

// TagOf returns the explicit tag of ref, or DefaultTag.
func TagOf(ref string) string {
	if _, tag := SplitTag(ref); tag != "" {
		return tag
	}
	return DefaultTag
}

// SplitTag splits ref into repository and tag. A colon inside the registry
// host (localhost:5000/app) is not a tag delimiter, and a digest suffix
// (@sha256:...) is dropped from the repository without yielding a tag.
func SplitTag(ref string) (repo, tag string) {
	if i := strings.Index(ref, "@"); i >= 0 {
		ref = ref[:i]
	}
	i := strings.LastIndex(ref, ":")
	if i < 0 || strings.Contains(ref[i+1:], "/") {
		return ref, ""
	}
	return ref[:i], ref[i+1:]
}

// LastSegment returns the part of ref after the final "/".
func LastSegment(ref string) string {
	return ref[strings.LastIndex(ref, "/")+1:]
}
