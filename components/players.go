// Copyright (c) 2024 Tomás Farías and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package components

import (
	"encoding/json"
	"fmt"
)

// PlayerID is a player's slot in the match, parsed from keys like
// "player0" through "player9".
type PlayerID int

// UnmarshalText implements the encoding.TextUnmarshaler interface.
func (id *PlayerID) UnmarshalText(text []byte) error {
	n, err := parseIndexedKey("player", text)
	if err != nil {
		return err
	}
	*id = PlayerID(n)
	return nil
}

// MarshalText implements the encoding.TextMarshaler interface.
func (id PlayerID) MarshalText() ([]byte, error) {
	return []byte(fmt.Sprintf("player%d", id)), nil
}

// PlayerActivity is what the reporting player is currently doing.
type PlayerActivity string

const (
	ActivityMenu    PlayerActivity = "menu"
	ActivityPlaying PlayerActivity = "playing"
)

// Player is one player's scoreboard and economy state.
type Player struct {
	SteamID           string         `json:"steamid"`
	Name              string         `json:"name"`
	Activity          PlayerActivity `json:"activity"`
	Kills             int            `json:"kills"`
	Deaths            int            `json:"deaths"`
	Assists           int            `json:"assists"`
	LastHits          int            `json:"last_hits"`
	Denies            int            `json:"denies"`
	KillStreak        int            `json:"kill_streak"`
	KillList          map[string]int `json:"kill_list"`
	CommandsIssued    int            `json:"commands_issued"`
	TeamName          Team           `json:"team_name"`
	Gold              int            `json:"gold"`
	GoldReliable      int            `json:"gold_reliable"`
	GoldUnreliable    int            `json:"gold_unreliable"`
	GoldFromHeroKills int            `json:"gold_from_hero_kills"`
	GoldFromCreeps    int            `json:"gold_from_creep_kills"`
	GoldFromIncome    int            `json:"gold_from_income"`
	GoldFromShared    int            `json:"gold_from_shared"`
	NetWorth          int            `json:"net_worth,omitempty"`
	GPM               int            `json:"gpm"`
	XPM               int            `json:"xpm"`
}

// Players is the player section of a snapshot. Player is set when
// playing, Teams when spectating; both are zero when the section was
// empty.
type Players struct {
	Player *Player
	Teams  TeamMap[Player]
}

// UnmarshalJSON implements the json.Unmarshaler interface.
func (p *Players) UnmarshalJSON(b []byte) error {
	if emptyObject(b) {
		return nil
	}

	var teams TeamMap[Player]
	if err := json.Unmarshal(b, &teams); err == nil {
		p.Teams = teams
		return nil
	}

	var player Player
	if err := json.Unmarshal(b, &player); err != nil {
		return err
	}
	p.Player = &player
	return nil
}

// MarshalJSON implements the json.Marshaler interface.
func (p Players) MarshalJSON() ([]byte, error) {
	if p.Player != nil {
		return json.Marshal(p.Player)
	}
	if p.Teams != nil {
		return json.Marshal(p.Teams)
	}
	return []byte("{}"), nil
}
