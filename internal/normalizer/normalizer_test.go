package normalizer

import "testing"

func TestNormalize(t *testing.T) {
	testCases := []struct {
		name  string
		input string
		want  string
	}{
		{"CzechDiacritics", "Václavské náměstí", "vaclavske namesti"},
		{"MixedCase", "PRAHA", "praha"},
		{"SurroundingWhitespace", "  Praha \t", "praha"},
		{"AlreadyNormalized", "brno", "brno"},
		{"Empty", "", ""},
		{"OnlyWhitespace", "   ", ""},
		{"CaronsAndAcutes", "Žižkov, Řehořova", "zizkov, rehorova"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Normalize(tc.input); got != tc.want {
				t.Errorf("Normalize(%q) = %q, want %q", tc.input, got, tc.want)
			}
		})
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	inputs := []string{"Václavské náměstí", "PRAHA ", "Čáslav"}
	for _, in := range inputs {
		once := Normalize(in)
		if twice := Normalize(once); twice != once {
			t.Errorf("Normalize not idempotent for %q: %q != %q", in, once, twice)
		}
	}
}

func TestNormalizePostal(t *testing.T) {
	testCases := []struct {
		input string
		want  string
	}{
		{"110 00", "11000"},
		{" 110 00 ", "11000"},
		{"11000", "11000"},
		{"1 1 0 0 0", "11000"},
		{"", ""},
	}

	for _, tc := range testCases {
		if got := NormalizePostal(tc.input); got != tc.want {
			t.Errorf("NormalizePostal(%q) = %q, want %q", tc.input, got, tc.want)
		}
	}
}

func TestSplitHouseNumber(t *testing.T) {
	testCases := []struct {
		input           string
		wantHouse       string
		wantOrientation string
	}{
		{"123/4", "123", "4"},
		{"123", "123", ""},
		{"123/4/5", "123", "4/5"},
		{" 12 / 4a ", "12", "4a"},
		{"", "", ""},
		{"/7", "", "7"},
	}

	for _, tc := range testCases {
		house, orientation := SplitHouseNumber(tc.input)
		if house != tc.wantHouse || orientation != tc.wantOrientation {
			t.Errorf("SplitHouseNumber(%q) = (%q, %q), want (%q, %q)",
				tc.input, house, orientation, tc.wantHouse, tc.wantOrientation)
		}
	}
}
