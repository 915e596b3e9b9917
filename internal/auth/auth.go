package auth

import "crypto/subtle"

// Verifier checks presented shared-secret credentials against the configured
// app token. An empty configured token always fails: a deployment that forgot
// to set APP_TOKEN must reject every caller rather than run open.
type Verifier struct {
	secret string
}

func NewVerifier(secret string) *Verifier {
	return &Verifier{secret: secret}
}

// Authorized reports whether the presented credential matches the configured
// secret exactly. Case-sensitive, no trimming or normalization.
func (v *Verifier) Authorized(presented string) bool {
	if v == nil || v.secret == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(presented), []byte(v.secret)) == 1
}
