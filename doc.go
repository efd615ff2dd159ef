// Copyright (c) 2024 Tomás Farías and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package gsi listens for Dota 2 Game State Integration payloads.
//
// The game client POSTs a JSON snapshot of the current game state to a
// configured endpoint on every update. A [Server] accepts those
// requests, acknowledges each one and fans the raw JSON payloads out
// to every registered [Handler]:
//
//	srv := gsi.New("127.0.0.1:3000")
//	srv.Register(gsi.HandlerFunc(func(ctx context.Context, payload []byte) error {
//		log.Printf("%d bytes of game state", len(payload))
//		return nil
//	}))
//	err := srv.Run(context.Background())
//
// Payloads are delivered to handlers as opaque bytes; the components
// package decodes them into typed game state values.
//
// # Game configuration
//
// The game client only sends game state when launched with the
// -gamestateintegration flag and a gamestate_integration_*.cfg file is
// present under the game's cfg directory, e.g.
// dota 2 beta/game/dota/cfg/gamestate_integration/gamestate_integration_dota2-gsi.cfg:
//
//	"dota2-gsi Configuration"
//	{
//	    "uri"               "http://127.0.0.1:3000/"
//	    "timeout"           "5.0"
//	    "buffer"            "0.1"
//	    "throttle"          "0.1"
//	    "heartbeat"         "30.0"
//	    "data"
//	    {
//	        "buildings"     "1"
//	        "provider"      "1"
//	        "map"           "1"
//	        "player"        "1"
//	        "hero"          "1"
//	        "abilities"     "1"
//	        "items"         "1"
//	        "draft"         "1"
//	        "wearables"     "1"
//	    }
//	}
//
// The uri must match the address the Server listens on.
package gsi
