package taxonomy

import (
	"fmt"
	"regexp"
	"strings"
)

// MaxNameLength is the folder name limit in Unicode code points, matching the
// 200-character name column.
const MaxNameLength = 200

// leading characters stripped from names as a formula-injection guard for
// spreadsheet exports
const formulaGuardChars = "=+@|"

var hexColorPattern = regexp.MustCompile(`^#(?:[0-9a-fA-F]{3}|[0-9a-fA-F]{6})$`)

var slugInvalidPattern = regexp.MustCompile(`[^a-z0-9]+`)

// NameQuerier provides the pattern-bounded sibling and slug lookups the
// naming policy needs. Implemented by database.FolderQueries.
type NameQuerier interface {
	SiblingNameMatches(name string, parentID, excludeID uint) ([]string, error)
	SlugMatches(slug string, excludeID uint) ([]string, error)
}

// NamingPolicy turns raw user-supplied strings into valid, unique folder
// names and slugs.
type NamingPolicy struct {
	names NameQuerier
}

func NewNamingPolicy(names NameQuerier) *NamingPolicy {
	return &NamingPolicy{names: names}
}

// SanitizeName strips control characters and leading formula-guard
// characters, trims whitespace and truncates to MaxNameLength code points.
// Returns ErrEmptyName if nothing usable remains. Applying the result to
// SanitizeName again is a no-op.
func (p *NamingPolicy) SanitizeName(raw string) (string, error) {
	name := stripControlChars(raw)

	// trimming whitespace can expose new guard characters and vice versa,
	// so repeat until stable — otherwise " = =x" would keep a leading "="
	for {
		trimmed := strings.TrimLeft(strings.TrimSpace(name), formulaGuardChars)
		if trimmed == name {
			break
		}
		name = trimmed
	}

	if runes := []rune(name); len(runes) > MaxNameLength {
		name = string(runes[:MaxNameLength])
		name = strings.TrimSpace(name)
	}

	if name == "" {
		return "", ErrEmptyName
	}
	return name, nil
}

// EnsureUnique resolves sibling-name collisions under parentID, excluding
// excludeID (the folder's own id during rename). If name conflicts
// case-insensitively with an existing sibling, the next free "name (N)"
// variant is returned; a sibling named "name (3)" alone does not force a
// rename. One bounded query regardless of sibling count.
func (p *NamingPolicy) EnsureUnique(name string, parentID, excludeID uint) (string, error) {
	matches, err := p.names.SiblingNameMatches(name, parentID, excludeID)
	if err != nil {
		return "", err
	}
	if len(matches) == 0 {
		return name, nil
	}

	exactConflict := false
	for _, match := range matches {
		if strings.EqualFold(match, name) {
			exactConflict = true
			break
		}
	}
	if !exactConflict {
		return name, nil
	}

	suffixPattern, err := regexp.Compile(`(?i)^` + regexp.QuoteMeta(name) + ` \((\d+)\)$`)
	if err != nil {
		return "", fmt.Errorf("failed to compile suffix pattern for %q: %w", name, err)
	}

	maxSuffix := 1
	for _, match := range matches {
		if m := suffixPattern.FindStringSubmatch(match); m != nil {
			var n int
			if _, err := fmt.Sscanf(m[1], "%d", &n); err == nil && n > maxSuffix {
				maxSuffix = n
			}
		}
	}

	return fmt.Sprintf("%s (%d)", name, maxSuffix+1), nil
}

// Slugify derives a URL-safe slug from a folder name.
func Slugify(name string) string {
	slug := strings.ToLower(name)
	slug = slugInvalidPattern.ReplaceAllString(slug, "-")
	slug = strings.Trim(slug, "-")
	if slug == "" {
		slug = "folder"
	}
	if runes := []rune(slug); len(runes) > MaxNameLength {
		slug = strings.Trim(string(runes[:MaxNameLength]), "-")
	}
	return slug
}

// EnsureUniqueSlug uniquifies a slug globally with "-N" suffixes, excluding
// excludeID during updates.
func (p *NamingPolicy) EnsureUniqueSlug(slug string, excludeID uint) (string, error) {
	matches, err := p.names.SlugMatches(slug, excludeID)
	if err != nil {
		return "", err
	}
	if len(matches) == 0 {
		return slug, nil
	}

	taken := false
	for _, match := range matches {
		if match == slug {
			taken = true
			break
		}
	}
	if !taken {
		return slug, nil
	}

	suffixPattern, err := regexp.Compile(`^` + regexp.QuoteMeta(slug) + `-(\d+)$`)
	if err != nil {
		return "", fmt.Errorf("failed to compile slug suffix pattern for %q: %w", slug, err)
	}

	maxSuffix := 1
	for _, match := range matches {
		if m := suffixPattern.FindStringSubmatch(match); m != nil {
			var n int
			if _, err := fmt.Sscanf(m[1], "%d", &n); err == nil && n > maxSuffix {
				maxSuffix = n
			}
		}
	}

	return fmt.Sprintf("%s-%d", slug, maxSuffix+1), nil
}

// SanitizeHexColor validates a display color. Only the format is checked:
// "#rgb" or "#rrggbb".
func SanitizeHexColor(color string) (string, error) {
	if !hexColorPattern.MatchString(color) {
		return "", ErrInvalidColor
	}
	return color, nil
}

// stripControlChars removes C0 controls (U+0000–U+001F), DEL (U+007F) and C1
// controls (U+0080–U+009F).
func stripControlChars(s string) string {
	return strings.Map(func(r rune) rune {
		if r <= 0x1F || (r >= 0x7F && r <= 0x9F) {
			return -1
		}
		return r
	}, s)
}
