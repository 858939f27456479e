package hostname

import (
	"testing"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"example.com", "example.com"},
		{"Example.COM", "example.com"},
		{"HTTPS://Example.com/", "example.com"},
		{"http://www.example.com/path/to/page", "www.example.com"},
		{"  example.com  ", "example.com"},
		{"example.com.", "example.com"},
		{"example.com:443", "example.com"},
		{"sub.domain.example.co.uk", "sub.domain.example.co.uk"},
	}

	for _, tt := range tests {
		got, err := Normalize(tt.input)
		if err != nil {
			t.Errorf("Normalize(%q) failed: %v", tt.input, err)
			continue
		}
		if got != tt.want {
			t.Errorf("Normalize(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestNormalize_Idempotent(t *testing.T) {
	inputs := []string{"HTTPS://Example.com/", "www.Example.ORG:8080", "a.b.example.net."}

	for _, input := range inputs {
		once, err := Normalize(input)
		if err != nil {
			t.Fatalf("Normalize(%q) failed: %v", input, err)
		}
		twice, err := Normalize(once)
		if err != nil {
			t.Fatalf("Normalize(Normalize(%q)) failed: %v", input, err)
		}
		if once != twice {
			t.Errorf("Normalize not idempotent for %q: %q != %q", input, once, twice)
		}
	}
}

func TestNormalize_Rejects(t *testing.T) {
	inputs := []string{
		"",
		"   ",
		"localhost",
		"192.168.1.1",
		"[::1]",
		"exam ple.com",
		".example.com",
		"-example.com",
		"co.uk",
		"https://",
	}

	for _, input := range inputs {
		if got, err := Normalize(input); err == nil {
			t.Errorf("Normalize(%q) should fail, got %q", input, got)
		}
	}
}
