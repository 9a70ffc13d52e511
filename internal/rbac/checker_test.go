package rbac

import "testing"

func TestDefaultPolicy(t *testing.T) {
	c := NewChecker(nil)
	cases := []struct {
		role, perm string
		want       bool
	}{
		{"student", "attempt:submit", true},
		{"student", "quiz:create", false},
		{"student", "attempt:grade", false},
		{"instructor", "quiz:create", true},
		{"instructor", "attempt:grade", true},
		{"instructor", "attempt:submit", false},
		{"admin", "anything:at-all", true},
		{"", "attempt:submit", false},
		{"unknown-role", "attempt:submit", false},
	}
	for _, tc := range cases {
		if got := c.Has(tc.role, tc.perm); got != tc.want {
			t.Errorf("Has(%q, %q) = %v, want %v", tc.role, tc.perm, got, tc.want)
		}
	}
}

func TestWildcardPrefix(t *testing.T) {
	c := NewChecker(map[string][]string{"auditor": {"attempt:*"}})
	if !c.Has("auditor", "attempt:view-all") {
		t.Fatal("prefix wildcard must match")
	}
	if c.Has("auditor", "quiz:view-all") {
		t.Fatal("prefix wildcard must not match other prefixes")
	}
}
