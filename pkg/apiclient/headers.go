package apiclient

import (
	"net/http"
	"strings"
)

// MergeHeaders deep-merges caller headers over the defaults. Precedence is
// documented and deliberate: a key present in override replaces the default
// values for that key only; all other default keys survive. Keys with empty
// names are dropped.
func MergeHeaders(defaults, override http.Header) http.Header {
	out := make(http.Header, len(defaults)+len(override))
	copyHeaders(out, defaults)
	copyHeaders(out, override)
	if len(out) == 0 {
		return nil
	}
	return out
}

// ShallowMergeHeaders reproduces the legacy object-spread semantic: when the
// caller supplies any headers at all, they replace the whole default set,
// content type included. Kept behind an option for callers that depend on it.
func ShallowMergeHeaders(defaults, override http.Header) http.Header {
	if len(override) > 0 {
		out := make(http.Header, len(override))
		copyHeaders(out, override)
		return out
	}
	out := make(http.Header, len(defaults))
	copyHeaders(out, defaults)
	if len(out) == 0 {
		return nil
	}
	return out
}

func copyHeaders(dst, src http.Header) {
	for name, values := range src {
		key := strings.TrimSpace(name)
		if key == "" {
			continue
		}
		dst[http.CanonicalHeaderKey(key)] = append([]string(nil), values...)
	}
}
