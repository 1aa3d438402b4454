package catalog

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"
)

var (
	lower       = cases.Lower(language.Und)
	authorSplit = regexp.MustCompile(`,\s*`)
	yearPattern = regexp.MustCompile(`\d{4}`)
)

// normalizeTitle folds width and case and strips whitespace so that
// "ＧＯ 言語" and "go言語" compare equal.
func normalizeTitle(s string) string {
	s = lower.String(norm.NFKC.String(s))
	return strings.Join(strings.Fields(s), "")
}

// normalizeAuthor turns "Last, First" into a display name. Japanese and Chinese
// names are joined without a space, everything else with one.
func normalizeAuthor(raw string) string {
	var parts []string
	for _, p := range authorSplit.Split(raw, -1) {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	if len(parts) <= 1 {
		return strings.TrimSpace(raw)
	}
	if hasCJK(parts[0]) {
		return strings.Join(parts, "")
	}
	return strings.Join(parts, " ")
}

func hasCJK(s string) bool {
	for _, r := range s {
		if unicode.In(r, unicode.Hiragana, unicode.Katakana, unicode.Han) {
			return true
		}
	}
	return false
}

// joinAuthors normalizes every creator, drops duplicates and joins them with "、".
func joinAuthors(creators []string) string {
	seen := make(map[string]bool, len(creators))
	var out []string
	for _, c := range creators {
		a := normalizeAuthor(c)
		if a == "" || seen[a] {
			continue
		}
		seen[a] = true
		out = append(out, a)
	}
	return strings.Join(out, "、")
}

// extractYear returns the first four-digit run of an issued date.
func extractYear(issued string) *int {
	m := yearPattern.FindString(issued)
	if m == "" {
		return nil
	}
	y, err := strconv.Atoi(m)
	if err != nil {
		return nil
	}
	return &y
}
