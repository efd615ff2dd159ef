// Copyright (c) 2024 Tomás Farías and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package components

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const idlePayload = `{
	"provider": {
		"name": "Dota 2",
		"appid": 570,
		"version": 47,
		"timestamp": 1658690112
	},
	"player": {},
	"draft": {},
	"auth": {
		"token": "1234"
	}
}`

const strategyTimePayload = `{
	"buildings": {
		"radiant": {
			"dota_goodguys_tower1_mid": {
				"health": 1800,
				"max_health": 1800
			}
		},
		"dire": {
			"dota_badguys_tower1_mid": {
				"health": 1752,
				"max_health": 1800
			}
		}
	},
	"provider": {
		"name": "Dota 2",
		"appid": 570,
		"version": 47,
		"timestamp": 1659033793
	},
	"map": {
		"name": "hero_demo_main",
		"matchid": "0",
		"game_time": 1,
		"clock_time": 0,
		"daytime": true,
		"nightstalker_night": false,
		"game_state": "DOTA_GAMERULES_STATE_STRATEGY_TIME",
		"paused": false,
		"win_team": "none",
		"customgamename": "dota 2 beta/game/dota_addons/hero_demo",
		"ward_purchase_cooldown": 0
	},
	"player": {
		"steamid": "76561197996881999",
		"name": "farxc3xadas",
		"activity": "playing",
		"kills": 0,
		"deaths": 0,
		"assists": 0,
		"last_hits": 0,
		"denies": 0,
		"kill_streak": 0,
		"commands_issued": 0,
		"kill_list": {},
		"team_name": "radiant",
		"gold": 600,
		"gold_reliable": 0,
		"gold_unreliable": 600,
		"gold_from_hero_kills": 0,
		"gold_from_creep_kills": 0,
		"gold_from_income": 0,
		"gold_from_shared": 0,
		"gpm": 0,
		"xpm": 0
	},
	"hero": {
		"id": 90,
		"name": "npc_dota_hero_keeper_of_the_light"
	},
	"abilities": {},
	"items": {},
	"draft": {},
	"wearables": {
		"wearable0": 13773,
		"wearable1": 14451,
		"wearable2": 14452
	},
	"auth": {"token": "hello1234"}
}`

const inProgressItemsPayload = `{
	"slot0": {
		"name": "empty"
	},
	"slot1": {
		"name": "item_manta",
		"purchaser": 0,
		"can_cast": true,
		"cooldown": 0,
		"passive": false
	},
	"slot2": {
		"name": "item_ultimate_orb",
		"purchaser": 0,
		"passive": true
	},
	"stash0": {
		"name": "empty"
	},
	"teleport0": {
		"name": "item_tpscroll",
		"purchaser": 0,
		"can_cast": false,
		"cooldown": 100,
		"passive": false,
		"charges": 1
	},
	"neutral0": {
		"name": "empty"
	}
}`

const spectatingPlayersPayload = `{
	"team2": {
		"player0": {
			"activity": "playing",
			"assists": 5,
			"deaths": 3,
			"denies": 3,
			"gold": 318,
			"kill_list": {
				"victimid_5": 2
			},
			"kill_streak": 0,
			"kills": 2,
			"last_hits": 8,
			"name": "Nukkumatti",
			"net_worth": 2333,
			"steamid": "76561198069076692",
			"team_name": "radiant",
			"xpm": 248
		}
	},
	"team3": {
		"player5": {
			"activity": "playing",
			"assists": 5,
			"deaths": 6,
			"denies": 0,
			"gold": 99,
			"kill_list": {},
			"kill_streak": 0,
			"kills": 3,
			"last_hits": 11,
			"name": "><><",
			"net_worth": 2504,
			"steamid": "76561198300389107",
			"team_name": "dire",
			"xpm": 238
		}
	}
}`

func TestDecode(t *testing.T) {
	t.Run("will treat empty sections as absent", func(t *testing.T) {
		t.Run("if the client is idle", func(t *testing.T) {
			gs, err := Decode([]byte(idlePayload))
			require.NoError(t, err)

			assert.Equal(t, "Dota 2", gs.Provider.Name)
			assert.Equal(t, 570, gs.Provider.AppID)
			assert.Nil(t, gs.Map)
			assert.Nil(t, gs.Players.Player)
			assert.Nil(t, gs.Players.Teams)
			assert.Nil(t, gs.Heroes.Hero)
			require.NotNil(t, gs.Auth)
			assert.Equal(t, "1234", gs.Auth.Token)
		})
	})

	t.Run("will decode the playing shape", func(t *testing.T) {
		t.Run("if the client is in a game", func(t *testing.T) {
			gs, err := Decode([]byte(strategyTimePayload))
			require.NoError(t, err)

			require.NotNil(t, gs.Map)
			assert.Equal(t, StateStrategyTime, gs.Map.GameState)
			assert.Equal(t, TeamNone, gs.Map.WinTeam)

			require.NotNil(t, gs.Players.Player)
			assert.Equal(t, "farxc3xadas", gs.Players.Player.Name)
			assert.Equal(t, TeamRadiant, gs.Players.Player.TeamName)

			require.NotNil(t, gs.Heroes.Hero)
			assert.Equal(t, 90, gs.Heroes.Hero.ID)
			assert.Equal(t, "npc_dota_hero_keeper_of_the_light", gs.Heroes.Hero.Name)

			assert.Nil(t, gs.Abilities.Abilities)
			assert.Nil(t, gs.Items.Items)

			require.NotNil(t, gs.Wearables.Wearables)
			assert.Equal(t, 13773, gs.Wearables.Wearables[WearableID(0)])
			assert.Len(t, gs.Wearables.Wearables, 3)

			require.Len(t, gs.Buildings, 2)
			assert.Equal(t, 1800, gs.Buildings[TeamRadiant]["dota_goodguys_tower1_mid"].Health)
			assert.Equal(t, 1752, gs.Buildings[TeamDire]["dota_badguys_tower1_mid"].Health)
		})
	})
}

func TestPlayers_UnmarshalJSON(t *testing.T) {
	t.Run("will decode the spectating shape", func(t *testing.T) {
		t.Run("if players are keyed by team and slot", func(t *testing.T) {
			var players Players
			require.NoError(t, players.UnmarshalJSON([]byte(spectatingPlayersPayload)))

			assert.Nil(t, players.Player)
			require.NotNil(t, players.Teams)

			radiant := players.Teams[TeamRadiant]
			require.Len(t, radiant, 1)
			assert.Equal(t, "Nukkumatti", radiant[PlayerID(0)].Name)
			assert.Equal(t, 2333, radiant[PlayerID(0)].NetWorth)
			assert.Equal(t, 2, radiant[PlayerID(0)].KillList["victimid_5"])

			dire := players.Teams[TeamDire]
			require.Len(t, dire, 1)
			assert.Equal(t, "><><", dire[PlayerID(5)].Name)
		})
	})
}

func TestPlayerItems_UnmarshalJSON(t *testing.T) {
	t.Run("will group items by container", func(t *testing.T) {
		t.Run("if slots are spread over containers", func(t *testing.T) {
			var items PlayerItems
			require.NoError(t, items.UnmarshalJSON([]byte(inProgressItemsPayload)))

			require.Len(t, items.Inventory, 3)
			assert.True(t, items.Inventory[0].Item.Empty())
			assert.Equal(t, "item_manta", items.Inventory[1].Item.Name)
			assert.Equal(t, "item_ultimate_orb", items.Inventory[2].Item.Name)

			require.Len(t, items.Teleport, 1)
			assert.Equal(t, "item_tpscroll", items.Teleport[0].Item.Name)
			assert.Equal(t, 1, items.Teleport[0].Item.Charges)

			require.Len(t, items.Stash, 1)
			require.Len(t, items.Neutral, 1)
			assert.False(t, items.InventoryEmpty())
		})
	})

	t.Run("will fail", func(t *testing.T) {
		t.Run("if a container is unknown", func(t *testing.T) {
			var items PlayerItems
			err := items.UnmarshalJSON([]byte(`{"backpack0": {"name": "empty"}}`))

			var uerr UnknownContainerError
			require.ErrorAs(t, err, &uerr)
			assert.Equal(t, "backpack0", uerr.Key)
		})
	})
}

func TestHeroes_UnmarshalJSON(t *testing.T) {
	t.Run("will decode the playing shape", func(t *testing.T) {
		t.Run("if only an unpicked hero ID is reported", func(t *testing.T) {
			var heroes Heroes
			require.NoError(t, heroes.UnmarshalJSON([]byte(`{"id": -1}`)))

			require.NotNil(t, heroes.Hero)
			assert.Equal(t, -1, heroes.Hero.ID)
			assert.Equal(t, "No Hero", heroes.Hero.String())
		})
	})

	t.Run("will decode the spectating shape", func(t *testing.T) {
		t.Run("if heroes are keyed by team and slot", func(t *testing.T) {
			var heroes Heroes
			require.NoError(t, heroes.UnmarshalJSON([]byte(`{
				"team2": {"player0": {"id": 42, "name": "npc_dota_hero_skeleton_king"}},
				"team3": {"player5": {"id": 90, "name": "npc_dota_hero_keeper_of_the_light"}}
			}`)))

			assert.Nil(t, heroes.Hero)
			assert.Equal(t, 42, heroes.Teams[TeamRadiant][PlayerID(0)].ID)
			assert.Equal(t, 90, heroes.Teams[TeamDire][PlayerID(5)].ID)
		})
	})
}

func TestTeam_UnmarshalText(t *testing.T) {
	t.Run("will normalize team names", func(t *testing.T) {
		t.Run("if the spectating aliases are used", func(t *testing.T) {
			var team Team
			require.NoError(t, team.UnmarshalText([]byte("team2")))
			assert.Equal(t, TeamRadiant, team)

			require.NoError(t, team.UnmarshalText([]byte("team3")))
			assert.Equal(t, TeamDire, team)
		})

		t.Run("if an unknown name is used", func(t *testing.T) {
			var team Team
			require.NoError(t, team.UnmarshalText([]byte("team_custom")))
			assert.Equal(t, Team("team_custom"), team)
		})
	})
}

func TestPlayerID_UnmarshalText(t *testing.T) {
	t.Run("will fail", func(t *testing.T) {
		t.Run("if the key has no player prefix", func(t *testing.T) {
			var id PlayerID
			err := id.UnmarshalText([]byte("slot3"))

			var kerr InvalidKeyError
			require.ErrorAs(t, err, &kerr)
			assert.Equal(t, "player", kerr.Prefix)
		})

		t.Run("if the index is not numeric", func(t *testing.T) {
			var id PlayerID
			err := id.UnmarshalText([]byte("playerone"))
			assert.Error(t, err)
		})
	})
}

func TestGameRulesState_String(t *testing.T) {
	t.Run("will render friendly names", func(t *testing.T) {
		t.Run("if the state is known", func(t *testing.T) {
			assert.Equal(t, "In Progress", StateInProgress.String())
			assert.Equal(t, "Strategy Time", StateStrategyTime.String())
		})
	})

	t.Run("will render the raw constant", func(t *testing.T) {
		t.Run("if the state is unknown", func(t *testing.T) {
			s := GameRulesState("DOTA_GAMERULES_STATE_BRAND_NEW")
			assert.Equal(t, "DOTA_GAMERULES_STATE_BRAND_NEW", s.String())
		})
	})
}
