package models

import "strings"

// RefKind tags which representation a MediaRef holds.
type RefKind string

const (
	RefEmpty RefKind = ""
	// RefURL is an absolute http(s) URL, either external or a legacy public storage URL.
	RefURL RefKind = "url"
	// RefKey is an object storage key such as "uploads/1700000000000-ab12cd34.jpg".
	RefKey RefKind = "key"
	// RefPath is a server-relative path served from the local uploads directory.
	RefPath RefKind = "path"
)

// MediaRef is a single stored media reference. Exactly one representation
// is held at a time.
type MediaRef struct {
	Kind  RefKind `bson:"kind,omitempty" json:"kind,omitempty"`
	Value string  `bson:"value,omitempty" json:"value,omitempty"`
}

func URLRef(u string) MediaRef  { return MediaRef{Kind: RefURL, Value: u} }
func KeyRef(k string) MediaRef  { return MediaRef{Kind: RefKey, Value: k} }
func PathRef(p string) MediaRef { return MediaRef{Kind: RefPath, Value: p} }

// IsZero lets bson omitempty drop unset references.
func (r MediaRef) IsZero() bool {
	return r.Kind == RefEmpty || r.Value == ""
}

// Filename returns the last path segment of the reference, without any query string.
func (r MediaRef) Filename() string {
	v := r.Value
	if i := strings.IndexAny(v, "?#"); i >= 0 {
		v = v[:i]
	}
	v = strings.TrimRight(v, "/")
	if i := strings.LastIndex(v, "/"); i >= 0 {
		return v[i+1:]
	}
	return v
}

// IsAbsoluteURL reports whether s starts with an http or https scheme.
func IsAbsoluteURL(s string) bool {
	l := strings.ToLower(s)
	return strings.HasPrefix(l, "http://") || strings.HasPrefix(l, "https://")
}

// ClassifyRef turns a legacy raw string into a tagged reference.
func ClassifyRef(raw string) MediaRef {
	raw = strings.TrimSpace(raw)
	switch {
	case raw == "":
		return MediaRef{}
	case IsAbsoluteURL(raw):
		return URLRef(raw)
	case strings.HasPrefix(raw, "/"):
		return PathRef(raw)
	default:
		return KeyRef(raw)
	}
}
