package utils

import "testing"

func TestFormatWhatsappProgressive(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"", ""},
		{"abc", ""},
		{"1", "(1"},
		{"11", "(11) "},
		{"119", "(11) 9"},
		{"1191234", "(11) 91234"},
		{"11912345", "(11) 91234-5"},
		{"11912345678", "(11) 91234-5678"},
		{"119123456789999", "(11) 91234-5678"},
		{"(11) 91234-5678", "(11) 91234-5678"},
		{"+55 11 91234", "(55) 11912-34"},
	}
	for _, tc := range cases {
		if got := FormatWhatsapp(tc.in); got != tc.want {
			t.Errorf("FormatWhatsapp(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestFormatWhatsappIdempotentOnFullNumbers(t *testing.T) {
	for _, digits := range []string{"11912345678", "21987654321", "00000000000", "99999999999"} {
		once := FormatWhatsapp(digits)
		if !IsValidWhatsapp(once) {
			t.Fatalf("FormatWhatsapp(%q) = %q does not match the pattern", digits, once)
		}
		if twice := FormatWhatsapp(once); twice != once {
			t.Fatalf("FormatWhatsapp not idempotent: %q -> %q", once, twice)
		}
	}
}

func TestIsValidWhatsapp(t *testing.T) {
	valid := []string{"(11) 91234-5678"}
	invalid := []string{"", "(11) 9123-45678", "11912345678", "(11)91234-5678", "(11) 91234-567"}
	for _, v := range valid {
		if !IsValidWhatsapp(v) {
			t.Errorf("IsValidWhatsapp(%q) = false", v)
		}
	}
	for _, v := range invalid {
		if IsValidWhatsapp(v) {
			t.Errorf("IsValidWhatsapp(%q) = true", v)
		}
	}
}
