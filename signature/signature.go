package signature

import (
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"strings"
)

/* Symmetric HMAC-SHA256 signatures over the raw request body
 * Both directions use the same scheme: the delivery engine signs outbound
 * payloads, the intake pipeline verifies inbound ones with the shared secret
 */

// Scheme is the prefix carried in the signature header
const Scheme = "sha256"

// Header is the HTTP header carrying the signature
const Header = "X-Webhook-Signature"

// Sign computes the signature for the exact raw body bytes
// Returns the header value in the format: sha256=<hex>
func Sign(secret string, body []byte) (string, error) {
	if secret == "" {
		return "", fmt.Errorf("signing secret cannot be empty")
	}

	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return fmt.Sprintf("%s=%s", Scheme, hex.EncodeToString(mac.Sum(nil))), nil
}

// Verify checks a signature header against the raw body using constant-time
// comparison. Returns false on malformed headers, never an error.
func Verify(secret string, body []byte, header string) bool {
	if secret == "" || header == "" {
		return false
	}

	scheme, encoded, found := strings.Cut(header, "=")
	if !found || scheme != Scheme {
		return false
	}

	provided, err := hex.DecodeString(encoded)
	if err != nil {
		return false
	}

	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	expected := mac.Sum(nil)

	return subtle.ConstantTimeCompare(expected, provided) == 1
}
