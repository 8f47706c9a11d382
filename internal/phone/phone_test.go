package phone

import (
	"testing"
)

func TestNormalize(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		raw  string
		want string
	}{
		{"empty", "", ""},
		{"only junk", "call me", ""},
		{"lone plus", "+", ""},
		{"domestic 8 prefix", "89991234567", "+79991234567"},
		{"international plus", "+79991234567", "+79991234567"},
		{"bare 7 prefix", "79991234567", "+79991234567"},
		{"ten digit mobile", "9991234567", "+79991234567"},
		{"ten digit landline", "4951234567", "+74951234567"},
		{"formatted", "8 (999) 123-45-67", "+79991234567"},
		{"plus with spaces", "+7 999 123 45 67", "+79991234567"},
		{"foreign number kept", "+4915112345678", "+4915112345678"},
		{"short run unchanged", "12345", "12345"},
		{"long run unchanged", "123456789012345", "123456789012345"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Normalize(tt.raw); got != tt.want {
				t.Errorf("Normalize(%q) = %q, want %q", tt.raw, got, tt.want)
			}
		})
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	t.Parallel()

	inputs := []string{
		"89991234567",
		"+79991234567",
		"9991234567",
		"8 (999) 123-45-67",
		"+4915112345678",
		"12345",
		"",
		"+",
	}
	for _, raw := range inputs {
		once := Normalize(raw)
		if twice := Normalize(once); twice != once {
			t.Errorf("Normalize not idempotent for %q: %q -> %q", raw, once, twice)
		}
	}
}

func TestExtract(t *testing.T) {
	t.Parallel()

	t.Run("single formatted number", func(t *testing.T) {
		matches := Extract("call me at 8-999-123-45-67 please")
		if len(matches) != 1 {
			t.Fatalf("got %d matches, want 1: %#v", len(matches), matches)
		}
		if matches[0].Original != "8-999-123-45-67" {
			t.Errorf("Original = %q", matches[0].Original)
		}
		if matches[0].Normalized != "+79991234567" {
			t.Errorf("Normalized = %q", matches[0].Normalized)
		}
	})

	t.Run("no numbers", func(t *testing.T) {
		if matches := Extract("no numbers here"); len(matches) != 0 {
			t.Fatalf("got %d matches, want 0", len(matches))
		}
	})

	t.Run("multiple numbers in order", func(t *testing.T) {
		matches := Extract("office +7 495 123-45-67, mobile 89991234567")
		if len(matches) != 2 {
			t.Fatalf("got %d matches, want 2: %#v", len(matches), matches)
		}
		if matches[0].Normalized != "+74951234567" {
			t.Errorf("first Normalized = %q", matches[0].Normalized)
		}
		if matches[1].Normalized != "+79991234567" {
			t.Errorf("second Normalized = %q", matches[1].Normalized)
		}
	})

	t.Run("short digit runs ignored", func(t *testing.T) {
		if matches := Extract("room 1234, floor 5"); len(matches) != 0 {
			t.Fatalf("got %d matches, want 0: %#v", len(matches), matches)
		}
	})

	t.Run("long digit run still matches", func(t *testing.T) {
		// Order numbers and similar runs are captured too; the width
		// heuristic is deliberate.
		matches := Extract("order 123456789012 pending")
		if len(matches) != 1 {
			t.Fatalf("got %d matches, want 1", len(matches))
		}
	})
}
