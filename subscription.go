// Copyright (c) 2024 Tomás Farías and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package gsi

import (
	"context"
	"errors"
	"log/slog"

	"github.com/tomasfarias/dota-gsi/bus"
	"github.com/tomasfarias/dota-gsi/internal/try"
	"github.com/tomasfarias/dota-gsi/pkg/slogfield"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
)

// subscription drives one handler from its own view of the event
// stream. Each payload is handed to the handler sequentially, in
// publish order.
type subscription struct {
	log        *slog.Logger
	sub        *bus.Subscription
	handler    Handler
	propagator propagation.TextMapPropagator
}

// run loops until shutdown, the bus closing or the handler failing.
// Only the last case is an error: a handler failure (or panic) is
// terminal for this subscription and surfaces as a HandlerError.
func (s *subscription) run(ctx context.Context) error {
	// Closing the subscription lets the bus see when its last consumer
	// is gone, instead of broadcasting into abandoned backlogs forever.
	defer s.sub.Close()

	tracer := otel.Tracer("gsi")
	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		event, err := s.sub.Recv(ctx)
		if err != nil {
			if errors.Is(err, bus.ErrClosed) || errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		}

		propCtx := s.propagator.Extract(ctx, event.Carrier)
		spanCtx, span := tracer.Start(propCtx, "subscription.run")

		err = s.invoke(spanCtx, event.Payload)
		span.End()
		if err != nil {
			s.log.ErrorContext(spanCtx, "handler failed", slogfield.Error(err))
			return HandlerError{Cause: err}
		}
	}
}

func (s *subscription) invoke(ctx context.Context, payload []byte) (err error) {
	defer try.Recover(&err)
	return s.handler.Handle(ctx, payload)
}
