package signature

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validPayload(v *Verifier) map[string]interface{} {
	return map[string]interface{}{
		"event":     "taskUser.sync",
		"data":      map[string]interface{}{"externalId": float64(5)},
		"timestamp": "1714000000",
		"signature": v.Sign("taskUser.sync" + "1714000000"),
	}
}

func TestIsStructurallyValidRequiresAllKeys(t *testing.T) {
	v := NewVerifier("secret-token")

	for _, missing := range []string{"event", "data", "timestamp", "signature"} {
		payload := validPayload(v)
		delete(payload, missing)
		assert.False(t, v.IsStructurallyValid(payload), "payload without %q should be invalid", missing)
		assert.False(t, v.IsAuthentic(payload))
	}

	assert.False(t, v.IsStructurallyValid(nil))
	assert.True(t, v.IsStructurallyValid(validPayload(v)))
}

func TestIsStructurallyValidIgnoresValueTypes(t *testing.T) {
	v := NewVerifier("secret-token")
	payload := map[string]interface{}{
		"event":     float64(1),
		"data":      nil,
		"timestamp": true,
		"signature": []interface{}{},
	}
	assert.True(t, v.IsStructurallyValid(payload))
}

func TestIsAuthenticMatchesSignature(t *testing.T) {
	v := NewVerifier("secret-token")
	payload := validPayload(v)
	assert.True(t, v.IsAuthentic(payload))
}

func TestIsAuthenticRejectsTamperedMaterial(t *testing.T) {
	v := NewVerifier("secret-token")

	payload := validPayload(v)
	payload["event"] = "taskUser.synk"
	assert.False(t, v.IsAuthentic(payload))

	payload = validPayload(v)
	payload["timestamp"] = "1714000001"
	assert.False(t, v.IsAuthentic(payload))

	payload = validPayload(v)
	payload["signature"] = "deadbeef"
	assert.False(t, v.IsAuthentic(payload))
}

func TestIsAuthenticRejectsNonStringMaterial(t *testing.T) {
	v := NewVerifier("secret-token")
	payload := validPayload(v)
	payload["event"] = float64(42)
	assert.False(t, v.IsAuthentic(payload))
}

func TestSignEmptyInputs(t *testing.T) {
	assert.Empty(t, NewVerifier("").Sign("material"))
	assert.Empty(t, NewVerifier("secret-token").Sign(""))

	v := NewVerifier("")
	payload := validPayload(NewVerifier("secret-token"))
	assert.False(t, v.IsAuthentic(payload))
}

func TestSignUsesSecretPrefix(t *testing.T) {
	// Only the first ten characters of the secret participate in the key.
	a := NewVerifier("0123456789AAAA")
	b := NewVerifier("0123456789BBBB")
	sig := a.Sign("taskUser.sync1714000000")
	require.NotEmpty(t, sig)
	assert.Equal(t, sig, b.Sign("taskUser.sync1714000000"))

	short := NewVerifier("0123")
	assert.NotEqual(t, sig, short.Sign("taskUser.sync1714000000"))
}
