// Copyright (c) 2024 Tomás Farías and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package components

// Team identifies one of the two sides, normalized to the short names
// the game client uses in most sections.
type Team string

const (
	TeamRadiant Team = "radiant"
	TeamDire    Team = "dire"
	TeamNone    Team = "none"
)

// UnmarshalText implements the encoding.TextUnmarshaler interface.
// Spectating sections key teams as "team2" and "team3"; those are
// normalized to [TeamRadiant] and [TeamDire]. Unknown names are kept
// as is.
func (t *Team) UnmarshalText(text []byte) error {
	switch s := string(text); s {
	case "radiant", "team2":
		*t = TeamRadiant
	case "dire", "team3":
		*t = TeamDire
	default:
		*t = Team(s)
	}
	return nil
}

// MarshalText implements the encoding.TextMarshaler interface.
func (t Team) MarshalText() ([]byte, error) {
	return []byte(t), nil
}

// String implements the fmt.Stringer interface.
func (t Team) String() string {
	switch t {
	case TeamRadiant:
		return "Radiant"
	case TeamDire:
		return "Dire"
	case TeamNone:
		return "None"
	default:
		return string(t)
	}
}

// TeamMap is the spectating shape of a per-player section: values
// keyed by team, then by player slot.
type TeamMap[T any] map[Team]map[PlayerID]T
