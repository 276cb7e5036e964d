package user

import "testing"

func TestFullPhone(t *testing.T) {
	cases := []struct {
		name string
		u    User
		want string
	}{
		{"no phone", User{CountryCode: "+1"}, ""},
		{"code and phone", User{CountryCode: "+1", Phone: "555 555 0100"}, "+15555550100"},
		{"code without plus", User{CountryCode: "44", Phone: "7700900123"}, "+447700900123"},
		{"already international", User{CountryCode: "+1", Phone: "+15555550100"}, "+15555550100"},
		{"no code", User{Phone: "5555550100"}, "5555550100"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.u.FullPhone(); got != tc.want {
				t.Fatalf("FullPhone() = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestDisplayName(t *testing.T) {
	if got := (&User{Name: " Jo "}).DisplayName(); got != "Jo" {
		t.Fatalf("got %q", got)
	}
	if got := (&User{Email: "sam@example.com"}).DisplayName(); got != "sam" {
		t.Fatalf("got %q", got)
	}
}
