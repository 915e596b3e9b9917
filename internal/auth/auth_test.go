package auth

import "testing"

func TestAuthorized(t *testing.T) {
	tests := []struct {
		name      string
		secret    string
		presented string
		want      bool
	}{
		{name: "exact match", secret: "s3cret", presented: "s3cret", want: true},
		{name: "mismatch", secret: "s3cret", presented: "wrong", want: false},
		{name: "empty presented", secret: "s3cret", presented: "", want: false},
		{name: "case sensitive", secret: "s3cret", presented: "S3cret", want: false},
		{name: "no trimming", secret: "s3cret", presented: " s3cret", want: false},
		{name: "unset secret fails closed", secret: "", presented: "", want: false},
		{name: "unset secret rejects any credential", secret: "", presented: "anything", want: false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			v := NewVerifier(tc.secret)
			if got := v.Authorized(tc.presented); got != tc.want {
				t.Fatalf("Authorized(%q) = %v, want %v", tc.presented, got, tc.want)
			}
		})
	}
}

func TestNilVerifierFailsClosed(t *testing.T) {
	var v *Verifier
	if v.Authorized("anything") {
		t.Fatalf("nil verifier should reject")
	}
}
