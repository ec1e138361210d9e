// Package imageurl rewrites image paths returned by the generation service
// or stored by this service into fully qualified URLs. Every URL handed to a
// client goes through here; nothing is ever rendered as a bare relative path.
package imageurl

import "strings"

// Normalizer resolves relative image paths against the two known bases:
// the AI generation service (paths under /images/) and this service's own
// public base (everything else).
type Normalizer struct {
	AIBase      string
	BackendBase string
}

// New returns a Normalizer with trailing slashes trimmed off both bases so
// joining is deterministic.
func New(aiBase, backendBase string) Normalizer {
	return Normalizer{
		AIBase:      strings.TrimRight(aiBase, "/"),
		BackendBase: strings.TrimRight(backendBase, "/"),
	}
}

// Normalize classifies raw and rewrites it to an absolute URL.
// Empty input yields "", meaning nothing to render. Absolute http(s) URLs
// and data:/blob: URIs pass through unchanged, which also makes Normalize
// idempotent. Paths under /images/ belong to the AI service; anything else
// is backend-relative.
func (n Normalizer) Normalize(raw string) string {
	if raw == "" {
		return ""
	}
	if strings.HasPrefix(raw, "http://") || strings.HasPrefix(raw, "https://") {
		return raw
	}
	if strings.HasPrefix(raw, "data:") || strings.HasPrefix(raw, "blob:") {
		return raw
	}
	if strings.HasPrefix(raw, "/images/") {
		return n.AIBase + raw
	}
	if strings.HasPrefix(raw, "/") {
		return n.BackendBase + raw
	}
	return n.BackendBase + "/" + raw
}
