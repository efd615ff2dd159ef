// Copyright (c) 2024 Tomás Farías and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package components

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Rune names a bottled rune, normalized from the short names the game
// client reports.
type Rune string

const (
	RuneArcane       Rune = "arcane"
	RuneBounty       Rune = "bounty"
	RuneDoubleDamage Rune = "double_damage"
	RuneEmpty        Rune = "empty"
	RuneHaste        Rune = "haste"
	RuneIllusion     Rune = "illusion"
	RuneInvisibility Rune = "invisibility"
	RuneRegeneration Rune = "regen"
	RuneShield       Rune = "shield"
)

// emptyItemName is what the game client reports for unoccupied slots.
const emptyItemName = "empty"

// Item is one item slot's content.
type Item struct {
	Name         string `json:"name"`
	Purchaser    int    `json:"purchaser,omitempty"`
	ItemLevel    int    `json:"item_level,omitempty"`
	ContainsRune Rune   `json:"contains_rune,omitempty"`
	CanCast      bool   `json:"can_cast,omitempty"`
	Cooldown     int    `json:"cooldown,omitempty"`
	Passive      bool   `json:"passive,omitempty"`
	Charges      int    `json:"charges,omitempty"`
	ItemCharges  int    `json:"item_charges,omitempty"`
}

// Empty reports whether the slot holds no item.
func (i Item) Empty() bool {
	return i.Name == emptyItemName
}

// ItemSlot is an item together with its slot index inside a container.
type ItemSlot struct {
	Slot int
	Item Item
}

// String implements the fmt.Stringer interface.
func (s ItemSlot) String() string {
	if s.Item.Empty() {
		return fmt.Sprintf("Slot %d: Empty", s.Slot)
	}
	return fmt.Sprintf("Slot %d: %s", s.Slot, s.Item.Name)
}

// UnknownContainerError occurs when an item key names a container
// other than the known inventory, stash, teleport and neutral ones.
type UnknownContainerError struct {
	Key string
}

// Error implements the error interface.
func (e UnknownContainerError) Error() string {
	return fmt.Sprintf("components: unknown item container in key %q", e.Key)
}

// PlayerItems is one player's items grouped by container, each ordered
// by slot index.
type PlayerItems struct {
	Inventory        []ItemSlot
	Stash            []ItemSlot
	Teleport         []ItemSlot
	Neutral          []ItemSlot
	PreservedNeutral []ItemSlot
}

// UnmarshalJSON implements the json.Unmarshaler interface. The game
// client reports items keyed by container and slot, e.g. "slot0",
// "stash3", "teleport0", "neutral0" and "preserved_neutral0".
func (pi *PlayerItems) UnmarshalJSON(b []byte) error {
	var raw map[string]Item
	err := json.Unmarshal(b, &raw)
	if err != nil {
		return err
	}

	for key, item := range raw {
		container, slot, err := splitContainerKey(key)
		if err != nil {
			return err
		}

		is := ItemSlot{Slot: slot, Item: item}
		switch container {
		case "slot":
			pi.Inventory = append(pi.Inventory, is)
		case "stash":
			pi.Stash = append(pi.Stash, is)
		case "teleport":
			pi.Teleport = append(pi.Teleport, is)
		case "neutral":
			pi.Neutral = append(pi.Neutral, is)
		case "preserved_neutral":
			pi.PreservedNeutral = append(pi.PreservedNeutral, is)
		default:
			return UnknownContainerError{Key: key}
		}
	}

	for _, slots := range [][]ItemSlot{pi.Inventory, pi.Stash, pi.Teleport, pi.Neutral, pi.PreservedNeutral} {
		slots := slots
		sort.Slice(slots, func(i, j int) bool {
			return slots[i].Slot < slots[j].Slot
		})
	}
	return nil
}

// MarshalJSON implements the json.Marshaler interface.
func (pi PlayerItems) MarshalJSON() ([]byte, error) {
	raw := make(map[string]Item)
	containers := map[string][]ItemSlot{
		"slot":              pi.Inventory,
		"stash":             pi.Stash,
		"teleport":          pi.Teleport,
		"neutral":           pi.Neutral,
		"preserved_neutral": pi.PreservedNeutral,
	}
	for container, slots := range containers {
		for _, s := range slots {
			raw[fmt.Sprintf("%s%d", container, s.Slot)] = s.Item
		}
	}
	return json.Marshal(raw)
}

// InventoryEmpty reports whether every inventory slot is empty.
func (pi PlayerItems) InventoryEmpty() bool {
	for _, s := range pi.Inventory {
		if !s.Item.Empty() {
			return false
		}
	}
	return true
}

// String implements the fmt.Stringer interface.
func (pi PlayerItems) String() string {
	var sb strings.Builder
	sb.WriteString("Inventory: ")
	if pi.InventoryEmpty() {
		sb.WriteString("Empty")
	} else {
		for _, s := range pi.Inventory {
			if s.Item.Empty() {
				continue
			}
			fmt.Fprintf(&sb, "{ %s } ", s)
		}
	}
	return strings.TrimRight(sb.String(), " ")
}

// splitContainerKey splits keys like "stash3" into their container
// name and slot index.
func splitContainerKey(key string) (string, int, error) {
	i := strings.IndexFunc(key, func(r rune) bool {
		return r >= '0' && r <= '9'
	})
	if i < 0 {
		return "", 0, UnknownContainerError{Key: key}
	}

	slot, err := strconv.Atoi(key[i:])
	if err != nil {
		return "", 0, UnknownContainerError{Key: key}
	}
	return key[:i], slot, nil
}

// Items is the items section of a snapshot. Items is set when playing,
// Teams when spectating; both are zero when the section was empty.
type Items struct {
	Items *PlayerItems
	Teams TeamMap[PlayerItems]
}

// UnmarshalJSON implements the json.Unmarshaler interface.
func (it *Items) UnmarshalJSON(b []byte) error {
	if emptyObject(b) {
		return nil
	}

	var teams TeamMap[PlayerItems]
	if err := json.Unmarshal(b, &teams); err == nil {
		it.Teams = teams
		return nil
	}

	var own PlayerItems
	if err := json.Unmarshal(b, &own); err != nil {
		return err
	}
	it.Items = &own
	return nil
}

// MarshalJSON implements the json.Marshaler interface.
func (it Items) MarshalJSON() ([]byte, error) {
	if it.Items != nil {
		return json.Marshal(it.Items)
	}
	if it.Teams != nil {
		return json.Marshal(it.Teams)
	}
	return []byte("{}"), nil
}
