package payment

import (
	"crypto/md5"
	"crypto/subtle"
	"encoding/hex"
	"sort"
	"strings"
)

// SigField is the parameter carrying the request signature; it is always
// excluded from the signed set.
const SigField = "pg_sig"

// Sign computes the PayBox request digest: field names are sorted byte-wise,
// then scriptName, the field values in that order, and the secret are joined
// with ';' and hashed. MD5 here is dictated by the gateway's closed protocol;
// both sides must produce the identical hex string.
func Sign(scriptName string, params map[string]string, secret string) string {
	keys := make([]string, 0, len(params))
	for k := range params {
		if k == SigField {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys)+2)
	parts = append(parts, scriptName)
	for _, k := range keys {
		parts = append(parts, params[k])
	}
	parts = append(parts, secret)

	sum := md5.Sum([]byte(strings.Join(parts, ";")))
	return hex.EncodeToString(sum[:])
}

// Verify recomputes the digest and compares it to sig. Any mismatch, including
// missing fields or an empty signature, is a plain false.
func Verify(scriptName string, params map[string]string, secret, sig string) bool {
	if sig == "" {
		return false
	}
	expected := Sign(scriptName, params, secret)
	return subtle.ConstantTimeCompare([]byte(expected), []byte(sig)) == 1
}
