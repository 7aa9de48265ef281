package core

import (
	"math"
	"testing"
)

// ----------------------------------------------------------------------------
// ParseNumber Tests
// ----------------------------------------------------------------------------

func TestParseNumber(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  float64
	}{
		{"integer", "500", 500},
		{"decimal", "123.45", 123.45},
		{"negative", "-42", -42},
		{"surrounding whitespace", "  75000 ", 75000},
		{"leading decimal point", ".5", 0.5},
		{"scientific notation", "1e3", 1000},

		// Malformed input coerces to zero
		{"thousands separator", "1,200", 0},
		{"currency symbol", "$500", 0},
		{"empty", "", 0},
		{"whitespace only", "   ", 0},
		{"letters", "abc", 0},
		{"trailing text", "500 USD", 0},
		{"not a number", "NaN", 0},
		{"infinity", "Inf", 0},
		{"negative infinity", "-Inf", 0},
		{"overflow", "1e400", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseNumber(tt.input)
			if got != tt.want {
				t.Errorf("ParseNumber(%q) = %v, want %v", tt.input, got, tt.want)
			}
			if math.IsNaN(got) || math.IsInf(got, 0) {
				t.Errorf("ParseNumber(%q) returned non-finite %v", tt.input, got)
			}
		})
	}
}

// ----------------------------------------------------------------------------
// ToPgNumeric Tests
// ----------------------------------------------------------------------------

func TestToPgNumeric(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		wantValid bool
		wantValue float64
	}{
		// Valid: Basic numbers
		{name: "positive integer", input: "123", wantValid: true, wantValue: 123},
		{name: "zero", input: "0", wantValid: true, wantValue: 0},
		{name: "negative integer", input: "-456", wantValid: true, wantValue: -456},
		{name: "decimal number", input: "123.45", wantValid: true, wantValue: 123.45},
		{name: "leading decimal point", input: ".99", wantValid: true, wantValue: 0.99},
		{name: "trailing decimal point", input: "99.", wantValid: true, wantValue: 99},

		// Valid: Currency symbols and separators
		{name: "dollar sign", input: "$1,234.56", wantValid: true, wantValue: 1234.56},
		{name: "euro sign", input: "€1234.56", wantValid: true, wantValue: 1234.56},
		{name: "pound sign", input: "£1234.56", wantValid: true, wantValue: 1234.56},
		{name: "thousands separators", input: "1,000,000", wantValid: true, wantValue: 1000000},
		{name: "surrounding whitespace", input: "  42  ", wantValid: true, wantValue: 42},

		// Valid: Accounting negatives
		{name: "parentheses negative", input: "(500)", wantValid: true, wantValue: -500},
		{name: "parentheses with currency", input: "($1,250.00)", wantValid: true, wantValue: -1250},

		// Invalid
		{name: "empty string", input: "", wantValid: false},
		{name: "whitespace only", input: "   ", wantValid: false},
		{name: "letters", input: "abc", wantValid: false},
		{name: "mixed", input: "12abc", wantValid: false},
		{name: "two decimal points", input: "1.2.3", wantValid: false},
		{name: "bare symbol", input: "$", wantValid: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := ToPgNumeric(tt.input)

			if result.Valid != tt.wantValid {
				t.Errorf("ToPgNumeric(%q).Valid = %v, want %v", tt.input, result.Valid, tt.wantValid)
				return
			}
			if !tt.wantValid {
				return
			}

			f, err := result.Float64Value()
			if err != nil {
				t.Fatalf("ToPgNumeric(%q) Float64Value error: %v", tt.input, err)
			}
			if math.Abs(f.Float64-tt.wantValue) > 1e-9 {
				t.Errorf("ToPgNumeric(%q) = %v, want %v", tt.input, f.Float64, tt.wantValue)
			}
		})
	}
}

func TestNumericFloat(t *testing.T) {
	if f, ok := NumericFloat("$2,500.50"); !ok || f != 2500.5 {
		t.Errorf("NumericFloat($2,500.50) = %v, %v", f, ok)
	}
	if f, ok := NumericFloat("call us"); ok || f != 0 {
		t.Errorf("NumericFloat(call us) = %v, %v, want 0, false", f, ok)
	}
	if _, ok := NumericFloat(""); ok {
		t.Error("NumericFloat(\"\") should report no number")
	}
}

// ----------------------------------------------------------------------------
// ToPgText Tests
// ----------------------------------------------------------------------------

func TestToPgText(t *testing.T) {
	tests := []struct {
		name       string
		input      string
		wantValid  bool
		wantString string
	}{
		// Valid: Normal strings
		{name: "simple string", input: "hello", wantValid: true, wantString: "hello"},
		{name: "string with spaces", input: "hello world", wantValid: true, wantString: "hello world"},

		// Valid: Whitespace handling (should trim)
		{name: "leading whitespace trimmed", input: "  hello", wantValid: true, wantString: "hello"},
		{name: "trailing whitespace trimmed", input: "hello  ", wantValid: true, wantString: "hello"},

		// Valid: Special characters preserved
		{name: "unicode characters", input: "café", wantValid: true, wantString: "café"},
		{name: "emoji", input: "hello \U0001F44B", wantValid: true, wantString: "hello \U0001F44B"},

		// Invalid: Empty and whitespace only
		{name: "empty string", input: "", wantValid: false},
		{name: "only spaces", input: "   ", wantValid: false},
		{name: "only tabs", input: "\t\t", wantValid: false},
		{name: "only newlines", input: "\n\n", wantValid: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := ToPgText(tt.input)

			if result.Valid != tt.wantValid {
				t.Errorf("ToPgText(%q).Valid = %v, want %v",
					tt.input, result.Valid, tt.wantValid)
				return
			}

			if tt.wantValid && result.String != tt.wantString {
				t.Errorf("ToPgText(%q).String = %q, want %q",
					tt.input, result.String, tt.wantString)
			}
		})
	}
}

// ----------------------------------------------------------------------------
// CleanHeader Tests
// ----------------------------------------------------------------------------

func TestCleanHeader(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "simple label unchanged", input: "Email", want: "Email"},
		{name: "whitespace trimmed", input: "  Lead Source \t", want: "Lead Source"},
		{name: "formula wrapper removed", input: `="Phone"`, want: "Phone"},
		{name: "formula wrapper with padding", input: `=" ZIP Code "`, want: "ZIP Code"},
		{name: "empty formula", input: `=""`, want: ""},
		{name: "unbalanced wrapper kept", input: `="Phone`, want: `="Phone`},
		{name: "empty", input: "", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CleanHeader(tt.input); got != tt.want {
				t.Errorf("CleanHeader(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}
