// Copyright (c) 2024 Tomás Farías and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package components

import (
	"encoding/json"
	"fmt"
)

// WearableID is a wearable's slot, parsed from keys like "wearable0".
type WearableID int

// UnmarshalText implements the encoding.TextUnmarshaler interface.
func (id *WearableID) UnmarshalText(text []byte) error {
	n, err := parseIndexedKey("wearable", text)
	if err != nil {
		return err
	}
	*id = WearableID(n)
	return nil
}

// MarshalText implements the encoding.TextMarshaler interface.
func (id WearableID) MarshalText() ([]byte, error) {
	return []byte(fmt.Sprintf("wearable%d", id)), nil
}

// WearableSet is one player's equipped cosmetic item IDs keyed by
// wearable slot.
type WearableSet map[WearableID]int

// Wearables is the wearables section of a snapshot. Wearables is set
// when playing, Teams when spectating; both are zero when the section
// was empty.
type Wearables struct {
	Wearables WearableSet
	Teams     TeamMap[int]
}

// UnmarshalJSON implements the json.Unmarshaler interface.
func (w *Wearables) UnmarshalJSON(b []byte) error {
	if emptyObject(b) {
		return nil
	}

	var teams TeamMap[int]
	if err := json.Unmarshal(b, &teams); err == nil {
		w.Teams = teams
		return nil
	}

	var set WearableSet
	if err := json.Unmarshal(b, &set); err != nil {
		return err
	}
	w.Wearables = set
	return nil
}

// MarshalJSON implements the json.Marshaler interface.
func (w Wearables) MarshalJSON() ([]byte, error) {
	if w.Wearables != nil {
		return json.Marshal(w.Wearables)
	}
	if w.Teams != nil {
		return json.Marshal(w.Teams)
	}
	return []byte("{}"), nil
}
