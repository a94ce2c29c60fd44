package coverage

import "github.com/dgb173/Masivo/internal/pkg/models"

// Role is the side a team played on in a given record.
type Role int

const (
	RoleUnknown Role = iota
	RoleHome
	RoleAway
)

func (r Role) String() string {
	switch r {
	case RoleHome:
		return "home"
	case RoleAway:
		return "away"
	}
	return "unknown"
}

// ResolveRole finds which side of a record team played on. Names are compared without
// case; an exact name wins over a partial one, and home is checked before away.
func ResolveRole(team, recordHome, recordAway string) Role {
	switch {
	case models.SameTeam(team, recordHome):
		return RoleHome
	case models.SameTeam(team, recordAway):
		return RoleAway
	case models.ContainsTeam(recordHome, team):
		return RoleHome
	case models.ContainsTeam(recordAway, team):
		return RoleAway
	}
	return RoleUnknown
}

// MarshalText lets roles appear by name in JSON.
func (r Role) MarshalText() ([]byte, error) {
	return []byte(r.String()), nil
}
