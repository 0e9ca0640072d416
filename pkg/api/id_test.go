package api

import (
	"regexp"
	"testing"
)

func TestNewIDs(t *testing.T) {
	reqPattern := regexp.MustCompile(`^req_[0-9a-f]{32}$`)
	callPattern := regexp.MustCompile(`^call_[0-9a-f]{32}$`)

	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		id := NewRequestID()
		if !reqPattern.MatchString(id) {
			t.Fatalf("NewRequestID() = %q, does not match pattern", id)
		}
		if seen[id] {
			t.Fatalf("duplicate id %q", id)
		}
		seen[id] = true
	}

	if id := NewCallID(); !callPattern.MatchString(id) {
		t.Errorf("NewCallID() = %q, does not match pattern", id)
	}
}
