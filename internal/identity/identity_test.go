package identity_test

import (
	"testing"

	"github.com/awsq/awsq/internal/identity"
)

func TestNormalizeActorID(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"a@b.c", "a_at_b_c"},
		{"user@example.com", "user_at_example_com"},
		{"already_safe-id", "already_safe-id"},
		{"", ""},
		{"日本語@example.jp", "_________at_example_jp"},
		{"a b\tc", "a_b_c"},
	}
	for _, tc := range cases {
		if got := identity.NormalizeActorID(tc.in); got != tc.want {
			t.Errorf("NormalizeActorID(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestNormalizeActorID_Idempotent(t *testing.T) {
	inputs := []string{"a@b.c", "user@example.com", "weird id!#$", "a_at_b_c"}
	for _, in := range inputs {
		once := identity.NormalizeActorID(in)
		twice := identity.NormalizeActorID(once)
		if once != twice {
			t.Errorf("normalization not idempotent for %q: %q != %q", in, once, twice)
		}
	}
}
