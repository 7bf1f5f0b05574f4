package textutil

import "testing"

func TestNormalize(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"¿Cómo pago?", "cómo pago"},
		{"  HOLA   mundo  ", "hola mundo"},
		{"sin-puntuacion!!", "sinpuntuacion"},
		{"", ""},
	}
	for _, c := range cases {
		if got := Normalize(c.in); got != c.want {
			t.Errorf("Normalize(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestCanonicalFoldsAccentsAndCase(t *testing.T) {
	a := Canonical("¿Cómo pago?")
	b := Canonical("como pago")
	if a != b {
		t.Errorf("expected identical canonical forms, got %q and %q", a, b)
	}
	if a != "como pago" {
		t.Errorf("unexpected canonical form %q", a)
	}
}

func TestHasLetter(t *testing.T) {
	if HasLetter("123") {
		t.Error("digits only should not count as letters")
	}
	if !HasLetter("12a") {
		t.Error("expected letter to be detected")
	}
	if !HasLetter("¿ñ?") {
		t.Error("expected non-ASCII letter to be detected")
	}
}
