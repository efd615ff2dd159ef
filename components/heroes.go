// Copyright (c) 2024 Tomás Farías and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package components

import (
	"encoding/json"
	"fmt"
)

// Hero is one hero's state. During hero selection only the ID is
// reported (-1 while no hero is picked), so everything else is
// optional.
type Hero struct {
	ID              int    `json:"id"`
	Name            string `json:"name,omitempty"`
	XPos            int    `json:"xpos,omitempty"`
	YPos            int    `json:"ypos,omitempty"`
	Level           int    `json:"level,omitempty"`
	XP              int    `json:"xp,omitempty"`
	Alive           bool   `json:"alive,omitempty"`
	RespawnSeconds  int    `json:"respawn_seconds,omitempty"`
	BuybackCost     int    `json:"buyback_cost,omitempty"`
	BuybackCooldown int    `json:"buyback_cooldown,omitempty"`
	Health          int    `json:"health,omitempty"`
	MaxHealth       int    `json:"max_health,omitempty"`
	HealthPercent   int    `json:"health_percent,omitempty"`
	Mana            int    `json:"mana,omitempty"`
	MaxMana         int    `json:"max_mana,omitempty"`
	ManaPercent     int    `json:"mana_percent,omitempty"`
	Silenced        bool   `json:"silenced,omitempty"`
	Stunned         bool   `json:"stunned,omitempty"`
	Disarmed        bool   `json:"disarmed,omitempty"`
	MagicImmune     bool   `json:"magicimmune,omitempty"`
	Hexed           bool   `json:"hexed,omitempty"`
	Muted           bool   `json:"muted,omitempty"`
	Break           bool   `json:"break,omitempty"`
	AghanimsScepter bool   `json:"aghanims_scepter,omitempty"`
	AghanimsShard   bool   `json:"aghanims_shard,omitempty"`
	Smoked          bool   `json:"smoked,omitempty"`
	HasDebuff       bool   `json:"has_debuff,omitempty"`
	Talent1         bool   `json:"talent_1,omitempty"`
	Talent2         bool   `json:"talent_2,omitempty"`
	Talent3         bool   `json:"talent_3,omitempty"`
	Talent4         bool   `json:"talent_4,omitempty"`
	Talent5         bool   `json:"talent_5,omitempty"`
	Talent6         bool   `json:"talent_6,omitempty"`
	Talent7         bool   `json:"talent_7,omitempty"`
	Talent8         bool   `json:"talent_8,omitempty"`
}

// String implements the fmt.Stringer interface.
func (h Hero) String() string {
	if h.Name == "" {
		return "No Hero"
	}
	return fmt.Sprintf("Hero %s", h.Name)
}

// Heroes is the hero section of a snapshot. Hero is set when playing,
// Teams when spectating; both are zero when the section was empty.
type Heroes struct {
	Hero  *Hero
	Teams TeamMap[Hero]
}

// UnmarshalJSON implements the json.Unmarshaler interface.
func (h *Heroes) UnmarshalJSON(b []byte) error {
	if emptyObject(b) {
		return nil
	}

	var teams TeamMap[Hero]
	if err := json.Unmarshal(b, &teams); err == nil {
		h.Teams = teams
		return nil
	}

	var hero Hero
	if err := json.Unmarshal(b, &hero); err != nil {
		return err
	}
	h.Hero = &hero
	return nil
}

// MarshalJSON implements the json.Marshaler interface.
func (h Heroes) MarshalJSON() ([]byte, error) {
	if h.Hero != nil {
		return json.Marshal(h.Hero)
	}
	if h.Teams != nil {
		return json.Marshal(h.Teams)
	}
	return []byte("{}"), nil
}
