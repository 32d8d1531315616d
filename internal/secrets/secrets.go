// Package secrets validates shared-secret material before the gateway trusts
// it enough to attach it to downstream requests.
package secrets

// MinKeyLength is the minimum acceptable length for the shared internal key.
const MinKeyLength = 32

// placeholderKeys are sample values shipped in example configs. Deployments
// that never rotated them must be treated as having no key at all.
var placeholderKeys = map[string]struct{}{
	"replace_with_shared_internal_key":               {},
	"change_me_shared_internal_api_key_min_32_chars": {},
}

// IsStrong reports whether the shared internal key is usable: present, not a
// known placeholder, and at least MinKeyLength characters long. It is a pure
// function of its argument; callers gate every proxied call on it and must
// fail closed with a server misconfiguration error when it returns false.
func IsStrong(key string) bool {
	if key == "" {
		return false
	}
	if _, ok := placeholderKeys[key]; ok {
		return false
	}
	return len(key) >= MinKeyLength
}
