// Copyright (c) 2024 Tomás Farías and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package components decodes game state payloads into typed values.
//
// The game client reports a snapshot whose shape depends on the
// vantage point: a playing client reports its own player, hero, items
// and so on directly, while a spectating client reports the same
// sections keyed by team and player slot. Types like [Heroes] or
// [Items] carry both shapes; exactly one side is populated after
// decoding.
//
// Sections the client has no data for arrive as empty JSON objects and
// decode to their zero value.
package components

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// GameState is one full snapshot as reported by the game client.
type GameState struct {
	Provider  Provider                            `json:"provider"`
	Buildings map[Team]Buildings                  `json:"buildings,omitempty"`
	Map       *Map                                `json:"map,omitempty"`
	Players   Players                             `json:"player,omitempty"`
	Heroes    Heroes                              `json:"hero,omitempty"`
	Abilities Abilities                           `json:"abilities,omitempty"`
	Items     Items                               `json:"items,omitempty"`
	Draft     map[Team]map[string]json.RawMessage `json:"draft,omitempty"`
	Wearables Wearables                           `json:"wearables,omitempty"`
	Auth      *Auth                               `json:"auth,omitempty"`
}

// Decode parses one raw payload into a GameState.
func Decode(payload []byte) (*GameState, error) {
	var gs GameState
	err := json.Unmarshal(payload, &gs)
	if err != nil {
		return nil, err
	}
	return &gs, nil
}

// String renders a short human readable summary of the snapshot.
func (gs *GameState) String() string {
	var sb strings.Builder
	sb.WriteString(gs.Provider.String())
	sb.WriteByte('\n')

	if gs.Map != nil {
		sb.WriteString(gs.Map.String())
		sb.WriteByte('\n')
	}

	if p := gs.Players.Player; p != nil {
		fmt.Fprintf(&sb, "%s\n%s\n", p.TeamName, p.Name)
		if h := gs.Heroes.Hero; h != nil {
			sb.WriteString(h.String())
			sb.WriteByte('\n')
		}
	}
	for team, players := range gs.Players.Teams {
		sb.WriteString(team.String())
		sb.WriteByte('\n')
		for id, p := range players {
			sb.WriteString(p.Name)
			sb.WriteByte('\n')
			if h, ok := gs.Heroes.Teams[team][id]; ok {
				sb.WriteString(h.String())
				sb.WriteByte('\n')
			}
		}
	}
	return sb.String()
}

// Auth carries the optional token configured in the integration config
// file. The listener never validates it; consumers may.
type Auth struct {
	Token string `json:"token"`
}

// Provider identifies the reporting game client.
type Provider struct {
	Name      string `json:"name"`
	AppID     int    `json:"appid"`
	Version   int    `json:"version"`
	Timestamp int64  `json:"timestamp"`
}

// String implements the fmt.Stringer interface.
func (p Provider) String() string {
	return fmt.Sprintf("%s %d", p.Name, p.Version)
}

// GameRulesState is the raw GAMERULES state constant reported under
// the map section.
type GameRulesState string

// All GAMERULES states the game client reports.
const (
	StateDisconnected      GameRulesState = "DOTA_GAMERULES_STATE_DISCONNECT"
	StateInProgress        GameRulesState = "DOTA_GAMERULES_STATE_GAME_IN_PROGRESS"
	StateHeroSelection     GameRulesState = "DOTA_GAMERULES_STATE_HERO_SELECTION"
	StateStarting          GameRulesState = "DOTA_GAMERULES_STATE_INIT"
	StateEnding            GameRulesState = "DOTA_GAMERULES_STATE_LAST"
	StatePostGame          GameRulesState = "DOTA_GAMERULES_STATE_POST_GAME"
	StatePreGame           GameRulesState = "DOTA_GAMERULES_STATE_PRE_GAME"
	StateStrategyTime      GameRulesState = "DOTA_GAMERULES_STATE_STRATEGY_TIME"
	StateWaitingForMap     GameRulesState = "DOTA_GAMERULES_STATE_WAIT_FOR_MAP_TO_LOAD"
	StateWaitingForPlayers GameRulesState = "DOTA_GAMERULES_STATE_WAIT_FOR_PLAYERS_TO_LOAD"
	StateCustomGameSetup   GameRulesState = "DOTA_GAMERULES_STATE_CUSTOM_GAME_SETUP"
)

// String implements the fmt.Stringer interface. Unknown states render
// as their raw constant.
func (s GameRulesState) String() string {
	switch s {
	case StateDisconnected:
		return "Disconnected"
	case StateInProgress:
		return "In Progress"
	case StateHeroSelection:
		return "Hero Selection"
	case StateStarting:
		return "Starting"
	case StateEnding:
		return "Ending"
	case StatePostGame:
		return "Post Game"
	case StatePreGame:
		return "Pre Game"
	case StateStrategyTime:
		return "Strategy Time"
	case StateWaitingForMap:
		return "Waiting For Map"
	case StateWaitingForPlayers:
		return "Waiting For Players"
	case StateCustomGameSetup:
		return "Custom Game Setup"
	default:
		return string(s)
	}
}

// Map is the map section of a snapshot.
type Map struct {
	Name                 string         `json:"name"`
	MatchID              string         `json:"matchid"`
	GameTime             int            `json:"game_time"`
	ClockTime            int            `json:"clock_time"`
	Daytime              bool           `json:"daytime"`
	NightstalkerNight    bool           `json:"nightstalker_night"`
	GameState            GameRulesState `json:"game_state"`
	Paused               bool           `json:"paused"`
	WinTeam              Team           `json:"win_team"`
	CustomGameName       string         `json:"customgamename"`
	WardPurchaseCooldown *int           `json:"ward_purchase_cooldown,omitempty"`
}

// String implements the fmt.Stringer interface.
func (m Map) String() string {
	return fmt.Sprintf(
		"Match ID: %s\nState: %s\nMap: %s\nTime: %d\n",
		m.MatchID, m.GameState, m.Name, m.GameTime,
	)
}

// InvalidKeyError occurs when a slot style JSON key, e.g. "player3"
// or "ability0", does not match the expected prefix-and-index shape.
type InvalidKeyError struct {
	Prefix string
	Key    string
}

// Error implements the error interface.
func (e InvalidKeyError) Error() string {
	return fmt.Sprintf("components: key %q does not match %q followed by an index", e.Key, e.Prefix)
}

func parseIndexedKey(prefix string, text []byte) (int, error) {
	s := string(text)
	index, ok := strings.CutPrefix(s, prefix)
	if !ok {
		return 0, InvalidKeyError{Prefix: prefix, Key: s}
	}
	n, err := strconv.Atoi(index)
	if err != nil {
		return 0, InvalidKeyError{Prefix: prefix, Key: s}
	}
	return n, nil
}

// emptyObject reports whether b is the empty JSON object the game
// client sends for sections it has no data for.
func emptyObject(b []byte) bool {
	return string(bytes.Join(bytes.Fields(b), nil)) == "{}"
}
