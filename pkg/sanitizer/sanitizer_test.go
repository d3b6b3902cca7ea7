package sanitizer

import "testing"

func TestTrimAndNormalize(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "empty string",
			input:    "",
			expected: "",
		},
		{
			name:     "only whitespace",
			input:    "   \t\n  ",
			expected: "",
		},
		{
			name:     "leading and trailing spaces",
			input:    "  math tutoring  ",
			expected: "math tutoring",
		},
		{
			name:     "internal whitespace collapsed",
			input:    "math \t  tutoring   101",
			expected: "math tutoring 101",
		},
		{
			name:     "already normalized",
			input:    "math tutoring",
			expected: "math tutoring",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := TrimAndNormalize(tt.input)
			if got != tt.expected {
				t.Errorf("TrimAndNormalize(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestTrimAndNormalize_Idempotent(t *testing.T) {
	input := "  Ms.   Rivera \t Algebra  "
	once := TrimAndNormalize(input)
	twice := TrimAndNormalize(once)
	if once != twice {
		t.Errorf("not idempotent: first %q, second %q", once, twice)
	}
}

func TestNormalizeEmail(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "mixed case",
			input:    "Student@Example.COM",
			expected: "student@example.com",
		},
		{
			name:     "surrounding whitespace",
			input:    "  teacher@example.com ",
			expected: "teacher@example.com",
		},
		{
			name:     "empty",
			input:    "",
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NormalizeEmail(tt.input)
			if got != tt.expected {
				t.Errorf("NormalizeEmail(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestNormalizeID(t *testing.T) {
	if got := NormalizeID(" t-123 "); got != "t-123" {
		t.Errorf("NormalizeID = %q, want %q", got, "t-123")
	}
}
