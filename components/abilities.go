// Copyright (c) 2024 Tomás Farías and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package components

import (
	"encoding/json"
	"fmt"
)

// AbilityID is an ability's slot, parsed from keys like "ability0".
type AbilityID int

// UnmarshalText implements the encoding.TextUnmarshaler interface.
func (id *AbilityID) UnmarshalText(text []byte) error {
	n, err := parseIndexedKey("ability", text)
	if err != nil {
		return err
	}
	*id = AbilityID(n)
	return nil
}

// MarshalText implements the encoding.TextMarshaler interface.
func (id AbilityID) MarshalText() ([]byte, error) {
	return []byte(fmt.Sprintf("ability%d", id)), nil
}

// Ability is one ability's state.
type Ability struct {
	Name          string `json:"name"`
	Level         int    `json:"level"`
	CanCast       bool   `json:"can_cast"`
	Passive       bool   `json:"passive"`
	AbilityActive bool   `json:"ability_active"`
	Cooldown      int    `json:"cooldown"`
	Ultimate      bool   `json:"ultimate"`
}

// String implements the fmt.Stringer interface.
func (a Ability) String() string {
	status := "READY"
	switch {
	case a.Passive:
		status = "PASSIVE"
	case !a.CanCast:
		status = fmt.Sprintf("IN CD: %ds", a.Cooldown)
	}
	return fmt.Sprintf("%s level %d, %s", a.Name, a.Level, status)
}

// AbilitySet is one hero's abilities keyed by slot.
type AbilitySet map[AbilityID]Ability

// Abilities is the abilities section of a snapshot. Abilities is set
// when playing, Teams when spectating; both are zero when the section
// was empty.
type Abilities struct {
	Abilities AbilitySet
	Teams     TeamMap[AbilitySet]
}

// UnmarshalJSON implements the json.Unmarshaler interface.
func (a *Abilities) UnmarshalJSON(b []byte) error {
	if emptyObject(b) {
		return nil
	}

	var teams TeamMap[AbilitySet]
	if err := json.Unmarshal(b, &teams); err == nil {
		a.Teams = teams
		return nil
	}

	var set AbilitySet
	if err := json.Unmarshal(b, &set); err != nil {
		return err
	}
	a.Abilities = set
	return nil
}

// MarshalJSON implements the json.Marshaler interface.
func (a Abilities) MarshalJSON() ([]byte, error) {
	if a.Abilities != nil {
		return json.Marshal(a.Abilities)
	}
	if a.Teams != nil {
		return json.Marshal(a.Teams)
	}
	return []byte("{}"), nil
}
