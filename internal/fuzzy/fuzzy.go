package fuzzy

import "strings"

// DefaultCuisines is the vocabulary searched when fuzzy expansion is enabled.
var DefaultCuisines = []string{
	"中餐", "西餐", "日料", "韩料", "火锅", "烧烤",
	"川菜", "粤菜", "湘菜", "鲁菜", "浙菜", "闽菜",
	"苏菜", "徽菜", "快餐", "小吃", "甜品", "咖啡",
}

// Match returns the targets that resemble query, in target order. The tiers
// are: exact match, case-insensitive prefix, substring containment, and a
// character-overlap ratio above 0.5 as the loosest fallback.
func Match(query string, targets []string) []string {
	var matched []string
	q := strings.ToLower(query)

	for _, target := range targets {
		t := strings.ToLower(target)
		switch {
		case q == t:
			matched = append(matched, target)
		case strings.HasPrefix(t, q):
			matched = append(matched, target)
		case strings.Contains(t, q):
			matched = append(matched, target)
		case overlap(q, t) > 0.5:
			matched = append(matched, target)
		}
	}

	return matched
}

// Expand returns keyword followed by its vocabulary matches, deduplicated
// preserving first-seen order.
func Expand(keyword string, targets []string) []string {
	out := []string{keyword}
	seen := map[string]struct{}{keyword: {}}

	for _, m := range Match(keyword, targets) {
		if _, ok := seen[m]; ok {
			continue
		}
		seen[m] = struct{}{}
		out = append(out, m)
	}

	return out
}

// overlap is |set(a) ∩ set(b)| / max(len(a), len(b)) over runes.
func overlap(a, b string) float64 {
	ra := runeSet(a)
	rb := runeSet(b)

	common := 0
	for r := range ra {
		if _, ok := rb[r]; ok {
			common++
		}
	}

	la := len([]rune(a))
	lb := len([]rune(b))
	max := la
	if lb > max {
		max = lb
	}
	if max == 0 {
		return 0
	}

	return float64(common) / float64(max)
}

func runeSet(s string) map[rune]struct{} {
	set := make(map[rune]struct{}, len(s))
	for _, r := range s {
		set[r] = struct{}{}
	}
	return set
}
