package order

import (
	"regexp"
	"testing"
)

var numberRe = regexp.MustCompile(`^ORD-[0-9A-Z]+-[0-9A-Z]{5}$`)

func TestGenerateNumberFormat(t *testing.T) {
	for i := 0; i < 10; i++ {
		n := GenerateNumber()
		if !numberRe.MatchString(n) {
			t.Errorf("number %q does not match expected format", n)
		}
	}
}

func TestGenerateNumberMostlyUnique(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		n := GenerateNumber()
		if seen[n] {
			t.Fatalf("duplicate number generated: %s", n)
		}
		seen[n] = true
	}
}
