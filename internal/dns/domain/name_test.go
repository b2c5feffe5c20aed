package domain

import "testing"

func TestValidateName(t *testing.T) {
	if err := ValidateName("www.example.com"); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if err := ValidateName("www.example.com."); err != nil {
		t.Errorf("unexpected error for trailing dot: %v", err)
	}
	if err := ValidateName(""); err == nil {
		t.Errorf("expected error for empty name")
	}
	if err := ValidateName("a..b"); err == nil {
		t.Errorf("expected error for empty label")
	}
	longLabel := make([]byte, 64)
	for i := range longLabel {
		longLabel[i] = 'a'
	}
	if err := ValidateName(string(longLabel) + ".com"); err == nil {
		t.Errorf("expected error for label over 63 bytes")
	}
}

func TestEqualNames(t *testing.T) {
	cases := []struct {
		a, b string
		want bool
	}{
		{"WWW.Example.com", "www.example.com", true},
		{"www.example.com.", "www.example.com", true},
		{"www.example.com", "www.example.org", false},
	}
	for _, tc := range cases {
		if got := EqualNames(tc.a, tc.b); got != tc.want {
			t.Errorf("EqualNames(%q, %q) = %v, want %v", tc.a, tc.b, got, tc.want)
		}
	}
}

func TestReverseIPv4Name(t *testing.T) {
	got, err := ReverseIPv4Name("1.2.3.4")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := "4.3.2.1.in-addr.arpa"
	if got != want {
		t.Errorf("ReverseIPv4Name = %q, want %q", got, want)
	}
	if _, err := ReverseIPv4Name("not-an-ip"); err == nil {
		t.Errorf("expected error for invalid IP")
	}
}
