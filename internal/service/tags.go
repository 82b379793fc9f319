package service

import "strings"

// normalizeTagNames trims, lowercases and deduplicates tag names while
// preserving first-seen order. Variants like "Finance", "finance" and
// " FINANCE " all resolve to the single stored name "finance".
func normalizeTagNames(names []string) []string {
	out := make([]string, 0, len(names))
	seen := make(map[string]struct{}, len(names))
	for _, n := range names {
		n = strings.ToLower(strings.TrimSpace(n))
		if n == "" {
			continue
		}
		if _, ok := seen[n]; ok {
			continue
		}
		seen[n] = struct{}{}
		out = append(out, n)
	}
	return out
}
