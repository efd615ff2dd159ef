// Copyright (c) 2024 Tomás Farías and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package lifecycle provides helpers for defining actions to execute
// relative to a server's execution, e.g. flushing a file sink after the
// last game state snapshot has been handled.
package lifecycle

import (
	"context"
	"errors"
)

// Hook represents functionality that needs to be performed at a specific
// "time" relative to the execution of the server.
type Hook interface {
	Run(context.Context) error
}

// HookFunc is a func variant of the [Hook] interface.
type HookFunc func(context.Context) error

// Run implements the [Hook] interface.
func (f HookFunc) Run(ctx context.Context) error {
	return f(ctx)
}

type multiHook []Hook

func (mh multiHook) Run(ctx context.Context) error {
	errs := make([]error, 0, len(mh))
	for _, h := range mh {
		err := h.Run(ctx)
		if err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) == 0 {
		return nil
	}
	if len(errs) == 1 {
		return errs[0]
	}
	return errors.Join(errs...)
}

// MultiHook returns a [Hook] that's the logical concatenation of the
// provided [Hook]s. They're applied sequentially and every hook runs
// regardless of whether an earlier one failed.
func MultiHook(hooks ...Hook) Hook {
	return multiHook(hooks)
}
