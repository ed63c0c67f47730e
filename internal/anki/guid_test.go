package anki

import (
	"strings"
	"testing"
)

func TestGUID_Deterministic(t *testing.T) {
	a := GUID([]string{"What is the capital of France?", "Paris"})
	b := GUID([]string{"What is the capital of France?", "Paris"})
	if a != b {
		t.Errorf("same content produced different GUIDs: %q vs %q", a, b)
	}
}

func TestGUID_ContentSensitive(t *testing.T) {
	a := GUID([]string{"q", "a"})
	b := GUID([]string{"q", "b"})
	if a == b {
		t.Errorf("different content produced same GUID %q", a)
	}
}

func TestGUID_JoinIsPositional(t *testing.T) {
	// The separator keeps ["ab", "c"] distinct from ["a", "bc"].
	if GUID([]string{"ab", "c"}) == GUID([]string{"a", "bc"}) {
		t.Error("field boundaries not preserved in GUID derivation")
	}
}

func TestGUID_Alphabet(t *testing.T) {
	g := GUID([]string{"front", "back"})
	if g == "" {
		t.Fatal("empty GUID")
	}
	if len(g) > 16 {
		t.Errorf("GUID %q longer than 16 chars", g)
	}
	for _, r := range g {
		if !strings.ContainsRune(base91Table, r) {
			t.Errorf("GUID %q contains %q outside the base91 alphabet", g, r)
		}
	}
}

func TestFieldChecksum(t *testing.T) {
	a := fieldChecksum("Paris")
	if a < 0 {
		t.Errorf("checksum negative: %d", a)
	}
	if a != fieldChecksum("Paris") {
		t.Error("checksum not deterministic")
	}
	if a == fieldChecksum("London") {
		t.Error("distinct sort fields produced equal checksums")
	}
}
