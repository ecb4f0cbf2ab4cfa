package util

// WildcardMatch reports whether s matches pattern. The pattern syntax is
// the shell-style subset used throughout the CLI search commands:
// '*' matches any run of characters (including none) and '?' matches any
// single character. Unlike path.Match, '*' also crosses '.' and '/', so
// patterns like "*.lan" behave as users expect for DNS names.
func WildcardMatch(pattern, s string) bool {
	// Iterative matcher with single-star backtracking.
	var starPat, starStr = -1, 0
	p, i := 0, 0
	for i < len(s) {
		switch {
		case p < len(pattern) && (pattern[p] == '?' || pattern[p] == s[i]):
			p++
			i++
		case p < len(pattern) && pattern[p] == '*':
			starPat = p
			starStr = i
			p++
		case starPat >= 0:
			p = starPat + 1
			starStr++
			i = starStr
		default:
			return false
		}
	}
	for p < len(pattern) && pattern[p] == '*' {
		p++
	}
	return p == len(pattern)
}
