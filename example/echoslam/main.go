// Copyright (c) 2024 Tomás Farías and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Echoslam listens for Dota 2 game state and echoes (slams) every
// snapshot to stdout.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/tomasfarias/dota-gsi"
	"github.com/tomasfarias/dota-gsi/components"

	"github.com/spf13/cobra"
)

func main() {
	var addr string
	var raw bool

	cmd := &cobra.Command{
		Use:   "echoslam",
		Short: "Echo Dota 2 game state snapshots to stdout",
		RunE: func(cmd *cobra.Command, args []string) error {
			logHandler := slog.NewTextHandler(os.Stderr, nil)

			srv := gsi.New(addr, gsi.LogHandler(logHandler))
			if raw {
				srv.Register(gsi.HandlerFunc(echoRaw))
			} else {
				srv.Register(gsi.HandlerFunc(echoGameState))
			}
			return srv.Run(cmd.Context())
		},
	}
	cmd.Flags().StringVar(&addr, "addr", gsi.DefaultAddr, "address to listen for game state on; must match the uri in the integration config file")
	cmd.Flags().BoolVar(&raw, "raw", false, "echo raw JSON payloads instead of decoding them")

	err := cmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func echoGameState(ctx context.Context, payload []byte) error {
	gs, err := components.Decode(payload)
	if err != nil {
		return err
	}
	fmt.Println(gs)
	return nil
}

func echoRaw(ctx context.Context, payload []byte) error {
	fmt.Println(string(payload))
	return nil
}
