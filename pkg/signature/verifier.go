package signature

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
)

// Payload field names every webhook delivery must carry.
var requiredKeys = []string{"event", "data", "timestamp", "signature"}

// keyPrefixLen is the number of leading secret characters mixed into the
// signing key, per the EduLegit callback contract.
const keyPrefixLen = 10

// Verifier validates the structure and signature of inbound webhook payloads.
type Verifier struct {
	secret string
}

// NewVerifier constructs a verifier around the shared API token.
func NewVerifier(secret string) *Verifier {
	return &Verifier{secret: secret}
}

// IsStructurallyValid reports whether the payload carries all required keys.
// Only presence is checked; values may be of any type.
func (v *Verifier) IsStructurallyValid(payload map[string]interface{}) bool {
	if payload == nil {
		return false
	}
	for _, key := range requiredKeys {
		if _, ok := payload[key]; !ok {
			return false
		}
	}
	return true
}

// IsAuthentic reports whether the payload signature matches the HMAC of
// event∥timestamp under the shared secret. Structurally invalid payloads and
// non-string signature material never authenticate.
func (v *Verifier) IsAuthentic(payload map[string]interface{}) bool {
	if !v.IsStructurallyValid(payload) {
		return false
	}

	event, ok := payload["event"].(string)
	if !ok {
		return false
	}
	timestamp, ok := payload["timestamp"].(string)
	if !ok {
		return false
	}
	provided, ok := payload["signature"].(string)
	if !ok {
		return false
	}

	expected := v.Sign(event + timestamp)
	if expected == "" {
		return false
	}
	return hmac.Equal([]byte(expected), []byte(provided))
}

// Sign computes the hex HMAC-SHA256 of data keyed by the leading characters
// of the shared secret. Returns "" when the secret or data is empty.
func (v *Verifier) Sign(data string) string {
	if v.secret == "" || data == "" {
		return ""
	}

	key := v.secret
	if len(key) > keyPrefixLen {
		key = key[:keyPrefixLen]
	}

	mac := hmac.New(sha256.New, []byte(key))
	_, _ = mac.Write([]byte(data))
	return hex.EncodeToString(mac.Sum(nil))
}
