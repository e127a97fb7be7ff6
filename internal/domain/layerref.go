package domain

import "strings"

// LayerRef is an unresolved reference to a layer or interface, as it
// appears in an `includes` list or on the command line: a bare name like
// "trusty/mysql", an "interface:mysql" reference, or a local path.
type LayerRef struct {
	Raw string
}

// NewLayerRef wraps a raw reference string.
func NewLayerRef(raw string) LayerRef {
	return LayerRef{Raw: strings.TrimSpace(raw)}
}

// IsInterface reports whether the reference names an interface package.
func (r LayerRef) IsInterface() bool {
	return strings.HasPrefix(r.Raw, "interface:")
}

// Name strips the "interface:" prefix, if any, returning the bare
// reference used for local/remote resolution.
func (r LayerRef) Name() string {
	return strings.TrimPrefix(r.Raw, "interface:")
}

// Normalized applies §9's includes-normalisation rule: a reference with
// no ":" prefix is reduced to its last two path segments joined by "/".
// References containing ":" (interface references among them) are returned
// unchanged since they carry an explicit discriminator rather than a path.
func (r LayerRef) Normalized() string {
	if strings.Contains(r.Raw, ":") {
		return r.Raw
	}
	parts := strings.Split(r.Raw, "/")
	if len(parts) <= 2 {
		return strings.Join(parts, "/")
	}
	return strings.Join(parts[len(parts)-2:], "/")
}

// String returns the raw reference text.
func (r LayerRef) String() string { return r.Raw }

// Equals compares two references by their raw text.
func (r LayerRef) Equals(other LayerRef) bool { return r.Raw == other.Raw }
