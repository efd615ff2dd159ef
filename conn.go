// Copyright (c) 2024 Tomás Farías and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package gsi

import (
	"context"
	"errors"
	"io"
	"net"
	"sync"

	"github.com/tomasfarias/dota-gsi/bus"
	"github.com/tomasfarias/dota-gsi/frame"
	"github.com/tomasfarias/dota-gsi/internal/taskpool"
	"github.com/tomasfarias/dota-gsi/pkg/slogfield"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	"golang.org/x/sync/errgroup"
)

const readBufferSize = 1024

// serve returns the accept loop task. The loop stops when ctx is
// cancelled or when a connection worker reports a fatal condition, and
// closes the bus on exit so handler subscriptions drain and stop too.
func (s *Server) serve(ls net.Listener) taskpool.Task {
	return func(ctx context.Context) error {
		s.liveness.Set(true)
		defer s.liveness.Set(false)
		defer s.bus.Close()

		fatal := make(chan error, 1)

		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			defer ls.Close()

			select {
			case <-gctx.Done():
				return nil
			case err := <-fatal:
				return err
			}
		})
		g.Go(func() error {
			var wg sync.WaitGroup
			defer wg.Wait()

			for {
				conn, err := ls.Accept()
				if err != nil {
					if errors.Is(err, net.ErrClosed) {
						return nil
					}
					return err
				}

				wg.Add(1)
				go func() {
					defer wg.Done()
					s.handleConn(gctx, conn, fatal)
				}()
			}
		})

		err := g.Wait()
		if err == nil {
			s.log.InfoContext(ctx, "stopped listening")
			return nil
		}
		s.log.ErrorContext(ctx, "listener terminated", slogfield.Error(err))
		return ListenerError{Cause: err}
	}
}

// handleConn owns one accepted connection: it reads exactly one game
// state payload, acknowledges it and publishes it to the bus.
//
// The game client treats anything other than the fixed OK response as
// a failure and resends the payload forever, so the acknowledgement is
// written regardless of what the handlers end up doing with the
// payload. Transport and framing failures only end this connection;
// the client will reconnect and retry.
func (s *Server) handleConn(ctx context.Context, conn net.Conn, fatal chan<- error) {
	defer conn.Close()

	spanCtx, span := otel.Tracer("gsi").Start(ctx, "Server.handleConn")
	defer span.End()

	payload, err := s.readPayload(conn)
	if err != nil {
		s.log.ErrorContext(spanCtx, "failed to read game state payload",
			slogfield.String("remote_addr", conn.RemoteAddr().String()),
			slogfield.Error(err),
		)
		return
	}

	_, err = io.WriteString(conn, frame.Acknowledgement)
	if err != nil {
		// The payload arrived intact so it is still published. The
		// client will consider this send failed and deliver a fresh
		// snapshot shortly anyway.
		s.log.ErrorContext(spanCtx, "failed to acknowledge game state payload",
			slogfield.String("remote_addr", conn.RemoteAddr().String()),
			slogfield.Error(err),
		)
	}

	carrier := make(propagation.MapCarrier)
	s.propagator.Inject(spanCtx, carrier)

	err = s.bus.Publish(bus.Event{
		Payload: payload,
		Carrier: carrier,
	})
	if err == nil {
		s.log.DebugContext(spanCtx, "published game state payload", slogfield.Int("size", len(payload)))
		return
	}

	s.log.ErrorContext(spanCtx, "failed to publish game state payload", slogfield.Error(err))
	if errors.Is(err, bus.ErrNoSubscribers) {
		select {
		case fatal <- NoSubscribersError{Cause: err}:
		default:
		}
	}
}

// readPayload drives a frame.Framer with successive reads until a full
// payload has been reconstructed. The connection closing before that
// point is reported as io.ErrUnexpectedEOF.
func (s *Server) readPayload(conn net.Conn) ([]byte, error) {
	framer := frame.New()
	buf := make([]byte, readBufferSize)
	for {
		n, err := conn.Read(buf)
		if n > 0 {
			payload, done, ferr := framer.Feed(buf[:n])
			if ferr != nil {
				return nil, ferr
			}
			if done {
				return payload, nil
			}
		}
		if err != nil {
			if errors.Is(err, io.EOF) {
				err = io.ErrUnexpectedEOF
			}
			return nil, err
		}
	}
}
