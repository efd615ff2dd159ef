// Copyright (c) 2024 Tomás Farías and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package components

// Building is one building's health state.
type Building struct {
	Health    int `json:"health"`
	MaxHealth int `json:"max_health"`
}

// Buildings holds one team's buildings keyed by entity name, e.g.
// "dota_goodguys_tower1_mid".
type Buildings map[string]Building
