package models

import "testing"

func TestUserDisplayName(t *testing.T) {
	cases := []struct {
		name string
		user User
		want string
	}{
		{"name wins", User{Name: "Alice", Email: "alice@example.com"}, "Alice"},
		{"email fallback", User{Email: "alice@example.com"}, "alice@example.com"},
		{"blank name falls through", User{Name: "   ", Email: "alice@example.com"}, "alice@example.com"},
		{"nothing set", User{}, "unknown"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.user.DisplayName(); got != tc.want {
				t.Errorf("expected %q, got %q", tc.want, got)
			}
		})
	}
}
