package models

import "strings"

// NormalizeTeamName lowercases a team name and collapses its whitespace so that names
// coming from differently formatted rows compare equal.
func NormalizeTeamName(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return ""
	}
	return strings.Join(strings.Fields(s), " ")
}

// SameTeam reports whether a and b name the same team, ignoring case and spacing.
func SameTeam(a, b string) bool {
	na := NormalizeTeamName(a)
	return na != "" && na == NormalizeTeamName(b)
}

// ContainsTeam reports whether name appears inside full. The site shortens names in some
// tables ("Real Madrid" vs "Real Madrid CF"), so rows are matched by containment.
func ContainsTeam(full, name string) bool {
	n := NormalizeTeamName(name)
	return n != "" && strings.Contains(NormalizeTeamName(full), n)
}
