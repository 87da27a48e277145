package slug

import "testing"

func TestMake(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "simple", in: "MiSTer NES", want: "mister-nes"},
		{name: "already slug", in: "atari-2600", want: "atari-2600"},
		{name: "diacritics", in: "Commodore Amiga éè", want: "commodore-amiga-ee"},
		{name: "punctuation runs", in: "PC Engine / TurboGrafx-16", want: "pc-engine-turbografx-16"},
		{name: "leading and trailing junk", in: "  --Neo Geo!  ", want: "neo-geo"},
		{name: "empty", in: "", want: ""},
		{name: "only punctuation", in: "!!!", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Make(tt.in); got != tt.want {
				t.Errorf("Make(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestValid(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"mister-nes", true},
		{"atari2600", true},
		{"a", true},
		{"", false},
		{"-leading", false},
		{"trailing-", false},
		{"double--dash", false},
		{"UpperCase", false},
		{"under_score", false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := Valid(tt.in); got != tt.want {
				t.Errorf("Valid(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestValidate(t *testing.T) {
	if err := Validate("mister-nes"); err != nil {
		t.Errorf("Validate() unexpected error: %v", err)
	}
	if err := Validate(""); err == nil {
		t.Error("Validate(\"\") should fail")
	}
	if err := Validate("Not A Slug"); err == nil {
		t.Error("Validate(\"Not A Slug\") should fail")
	}
}
