// Copyright (c) 2024 Tomás Farías and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Recall listens for Dota 2 game state and stores every snapshot as a
// timestamped JSON file for recalling later.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/tomasfarias/dota-gsi"
	"github.com/tomasfarias/dota-gsi/lifecycle"
	"github.com/tomasfarias/dota-gsi/pkg/slogfield"

	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

type recaller struct {
	outputDir string
	stored    atomic.Int64
}

func (r *recaller) Handle(ctx context.Context, payload []byte) error {
	name := fmt.Sprintf("DotaGSI_%s.json", time.Now().Format("2006-01-02T15:04:05.000"))
	err := os.WriteFile(filepath.Join(r.outputDir, name), payload, 0o644)
	if err != nil {
		return err
	}
	r.stored.Add(1)
	return nil
}

func main() {
	var addr string
	var outputDir string
	var trace bool

	cmd := &cobra.Command{
		Use:   "recall",
		Short: "Store Dota 2 game state snapshots as JSON files",
		RunE: func(cmd *cobra.Command, args []string) error {
			logHandler := slog.NewTextHandler(os.Stderr, nil)
			log := slog.New(logHandler)

			if trace {
				exp, err := stdouttrace.New(stdouttrace.WithPrettyPrint())
				if err != nil {
					return err
				}
				tp := sdktrace.NewTracerProvider(sdktrace.WithBatcher(exp))
				defer func() {
					_ = tp.Shutdown(context.Background())
				}()
				otel.SetTracerProvider(tp)
			}

			if outputDir == "" {
				wd, err := os.Getwd()
				if err != nil {
					return err
				}
				outputDir = wd
			}

			r := &recaller{outputDir: outputDir}
			srv := gsi.New(
				addr,
				gsi.LogHandler(logHandler),
				gsi.OnShutdown(lifecycle.HookFunc(func(ctx context.Context) error {
					log.InfoContext(ctx, "stored game state snapshots", slogfield.Int64("count", r.stored.Load()))
					return nil
				})),
			)
			srv.Register(r)
			return srv.Run(cmd.Context())
		},
	}
	cmd.Flags().StringVar(&addr, "addr", gsi.DefaultAddr, "address to listen for game state on; must match the uri in the integration config file")
	cmd.Flags().StringVar(&outputDir, "output-dir", "", "directory to store JSON snapshot files in (default: working directory)")
	cmd.Flags().BoolVar(&trace, "trace", false, "print trace spans to stdout")

	err := cmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}
