package taxonomy

import (
	"errors"
	"strings"
	"testing"
)

type fakeNameQuerier struct {
	siblings []string
	slugs    []string
}

func (f *fakeNameQuerier) SiblingNameMatches(name string, parentID, excludeID uint) ([]string, error) {
	var matches []string
	lower := strings.ToLower(name)
	for _, sibling := range f.siblings {
		siblingLower := strings.ToLower(sibling)
		if siblingLower == lower || strings.HasPrefix(siblingLower, lower+" (") {
			matches = append(matches, sibling)
		}
	}
	return matches, nil
}

func (f *fakeNameQuerier) SlugMatches(slug string, excludeID uint) ([]string, error) {
	var matches []string
	for _, existing := range f.slugs {
		if existing == slug || strings.HasPrefix(existing, slug+"-") {
			matches = append(matches, existing)
		}
	}
	return matches, nil
}

func TestSanitizeName(t *testing.T) {
	policy := NewNamingPolicy(&fakeNameQuerier{})

	tests := []struct {
		name    string
		input   string
		want    string
		wantErr error
	}{
		{name: "plain name", input: "Vacation Photos", want: "Vacation Photos"},
		{name: "surrounding whitespace", input: "  Trips  ", want: "Trips"},
		{name: "control characters stripped", input: "Bad\x00Name\x1f", want: "BadName"},
		{name: "del and c1 controls stripped", input: "A\x7fBC", want: "ABC"},
		{name: "leading formula guard", input: "=SUM(A1)", want: "SUM(A1)"},
		{name: "stacked guard and whitespace", input: " = =cmd", want: "cmd"},
		{name: "plus and pipe guards", input: "+|@=name", want: "name"},
		{name: "guard chars inside name kept", input: "a=b+c", want: "a=b+c"},
		{name: "empty", input: "", wantErr: ErrEmptyName},
		{name: "whitespace only", input: "   ", wantErr: ErrEmptyName},
		{name: "guards only", input: "=+@|", wantErr: ErrEmptyName},
		{name: "controls only", input: "\x00\x01\x02", wantErr: ErrEmptyName},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := policy.SanitizeName(tt.input)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("SanitizeName(%q) error = %v, want %v", tt.input, err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("SanitizeName(%q) unexpected error: %v", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("SanitizeName(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestSanitizeNameTruncation(t *testing.T) {
	policy := NewNamingPolicy(&fakeNameQuerier{})

	long := strings.Repeat("x", 300)
	got, err := policy.SanitizeName(long)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len([]rune(got)) != MaxNameLength {
		t.Errorf("truncated length = %d, want %d", len([]rune(got)), MaxNameLength)
	}

	// multi-byte runes count as single characters
	wide := strings.Repeat("é", 250)
	got, err = policy.SanitizeName(wide)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len([]rune(got)) != MaxNameLength {
		t.Errorf("rune-truncated length = %d, want %d", len([]rune(got)), MaxNameLength)
	}
}

func TestSanitizeNameIdempotent(t *testing.T) {
	policy := NewNamingPolicy(&fakeNameQuerier{})

	inputs := []string{
		"Vacation Photos",
		"  = =cmd  ",
		"+|@= spaced ",
		strings.Repeat("a ", 150),
		"a=b+c",
	}
	for _, input := range inputs {
		once, err := policy.SanitizeName(input)
		if err != nil {
			t.Fatalf("SanitizeName(%q) unexpected error: %v", input, err)
		}
		twice, err := policy.SanitizeName(once)
		if err != nil {
			t.Fatalf("SanitizeName(%q) second pass error: %v", once, err)
		}
		if once != twice {
			t.Errorf("SanitizeName not idempotent for %q: first %q, second %q", input, once, twice)
		}
	}
}

func TestEnsureUnique(t *testing.T) {
	tests := []struct {
		name     string
		siblings []string
		input    string
		want     string
	}{
		{name: "no siblings", siblings: nil, input: "Photos", want: "Photos"},
		{name: "unrelated siblings", siblings: []string{"Documents"}, input: "Photos", want: "Photos"},
		{name: "first collision", siblings: []string{"Photos"}, input: "Photos", want: "Photos (2)"},
		{name: "case insensitive collision", siblings: []string{"photos"}, input: "Photos", want: "Photos (2)"},
		{name: "next free suffix", siblings: []string{"Photos", "Photos (2)", "Photos (3)"}, input: "Photos", want: "Photos (4)"},
		{name: "gap in suffixes still takes max plus one", siblings: []string{"Photos", "Photos (5)"}, input: "Photos", want: "Photos (6)"},
		{name: "suffixed sibling alone forces no rename", siblings: []string{"Photos (3)"}, input: "Photos", want: "Photos"},
		{name: "name with regexp metachars", siblings: []string{"a.b (x)", "a.b"}, input: "a.b", want: "a.b (2)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			policy := NewNamingPolicy(&fakeNameQuerier{siblings: tt.siblings})
			got, err := policy.EnsureUnique(tt.input, 0, 0)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("EnsureUnique(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestSlugify(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"Vacation Photos", "vacation-photos"},
		{"  Hello,   World!  ", "hello-world"},
		{"Already-Slugged", "already-slugged"},
		{"2024/Q1 Reports", "2024-q1-reports"},
		{"!!!", "folder"},
		{"", "folder"},
	}
	for _, tt := range tests {
		if got := Slugify(tt.input); got != tt.want {
			t.Errorf("Slugify(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestEnsureUniqueSlug(t *testing.T) {
	tests := []struct {
		name  string
		slugs []string
		input string
		want  string
	}{
		{name: "free slug", slugs: nil, input: "photos", want: "photos"},
		{name: "taken slug", slugs: []string{"photos"}, input: "photos", want: "photos-2"},
		{name: "taken with suffixes", slugs: []string{"photos", "photos-2", "photos-7"}, input: "photos", want: "photos-8"},
		{name: "suffixed slug alone is no conflict", slugs: []string{"photos-2"}, input: "photos", want: "photos"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			policy := NewNamingPolicy(&fakeNameQuerier{slugs: tt.slugs})
			got, err := policy.EnsureUniqueSlug(tt.input, 0)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("EnsureUniqueSlug(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestSanitizeHexColor(t *testing.T) {
	valid := []string{"#fff", "#FFF", "#a1b2c3", "#000000"}
	for _, c := range valid {
		if got, err := SanitizeHexColor(c); err != nil || got != c {
			t.Errorf("SanitizeHexColor(%q) = %q, %v; want %q, nil", c, got, err, c)
		}
	}

	invalid := []string{"", "fff", "#ff", "#ffff", "#gggggg", "red", "#a1b2c3d4"}
	for _, c := range invalid {
		if _, err := SanitizeHexColor(c); !errors.Is(err, ErrInvalidColor) {
			t.Errorf("SanitizeHexColor(%q) error = %v, want ErrInvalidColor", c, err)
		}
	}
}
