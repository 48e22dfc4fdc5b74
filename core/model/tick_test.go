package model

import (
	"errors"
	"testing"
)

func TestNormalizeTick(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"claw", "CLAW"},
		{"CLAW", "CLAW"},
		{" claw ", "CLAW"},
		{"a1b2c3d4", "A1B2C3D4"},
		{"X", "X"},
	}
	for _, c := range cases {
		got, err := NormalizeTick(c.in)
		if err != nil {
			t.Errorf("NormalizeTick(%q): %v", c.in, err)
			continue
		}
		if got != c.want {
			t.Errorf("NormalizeTick(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestNormalizeTickRejects(t *testing.T) {
	for _, in := range []string{"", "   ", "NINECHARS", "CL-AW", "CL AW", "ΩMEGA", "claw!"} {
		if _, err := NormalizeTick(in); !errors.Is(err, ErrInvalidTick) {
			t.Errorf("NormalizeTick(%q): got %v, want ErrInvalidTick", in, err)
		}
	}
}

func TestTickHash(t *testing.T) {
	if TickHash("CLAW") != TickHash("CLAW") {
		t.Error("hash not deterministic")
	}
	if TickHash("CLAW") == TickHash("MEME") {
		t.Error("distinct ticks collide")
	}
}
