package utils

import (
	"regexp"
	"testing"
)

func TestGenerateUUID(t *testing.T) {
	shape := regexp.MustCompile(`^[0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}$`)

	a := GenerateUUID()
	b := GenerateUUID()

	if !shape.MatchString(a) {
		t.Errorf("GenerateUUID() = %q, not UUID-shaped", a)
	}
	if a == b {
		t.Error("two generated UUIDs collided")
	}
}

func TestGenerateShortID(t *testing.T) {
	shape := regexp.MustCompile(`^[0-9a-f]{8}$`)

	id := GenerateShortID()
	if !shape.MatchString(id) {
		t.Errorf("GenerateShortID() = %q, want 8 hex chars", id)
	}
}
