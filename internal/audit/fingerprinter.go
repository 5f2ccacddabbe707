package audit

import (
	"crypto/sha256"
	"encoding/base64"

	"github.com/david-wiggs/jenkins-passthrough/internal/core"
)

const (
	DefaultFingerprintType     = "default"
	GitHubFingerprintType      = "github"
	PassthroughFingerprintType = "passthrough"
)

var fingerprintRegistry = map[string]core.Fingerprinter{
	DefaultFingerprintType: func(_ string) string {
		return "(n/a)"
	},
}

func RegisterFingerprinter(tokenType string, fn core.Fingerprinter) {
	fingerprintRegistry[tokenType] = fn
}

// CalculateFingerprint produces a stable identifier for a token so audit
// entries can reference it without ever storing the token value.
func CalculateFingerprint(tokenType, token string) string {
	fn, ok := fingerprintRegistry[tokenType]
	if !ok {
		fn = fingerprintRegistry[DefaultFingerprintType]
	}
	return fn(token)
}

func init() {
	RegisterFingerprinter(GitHubFingerprintType, calculateSHAFingerprint)
	RegisterFingerprinter(PassthroughFingerprintType, calculateSHAFingerprint)
}

func calculateSHAFingerprint(token string) string {
	hash := sha256.Sum256([]byte(token))
	return base64.StdEncoding.EncodeToString(hash[:])
}
