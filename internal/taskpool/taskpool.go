// Copyright (c) 2024 Tomás Farías and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package taskpool runs a fixed set of tasks concurrently and reports
// every failure, not just the first one.
//
// This differs from errgroup on purpose: a coordinated server shutdown
// must enumerate the listener's outcome and each handler subscription's
// outcome, so no error can be discarded and one task failing must not
// cancel its siblings. Cancellation only ever flows in from the caller's
// context.
package taskpool

import (
	"context"
	"errors"
	"sync"

	"github.com/tomasfarias/dota-gsi/internal/try"
)

// Task is a unit of work which runs until completion, failure or
// cooperative cancellation via its context.
type Task func(context.Context) error

// Wait runs all tasks concurrently and blocks until every one has
// returned. Panicking tasks are recovered and reported as errors.
//
// The returned error is the errors.Join of every task error in task
// order, or nil if all tasks succeeded.
func Wait(ctx context.Context, tasks ...Task) error {
	var wg sync.WaitGroup
	errs := make([]error, len(tasks))

	for i, task := range tasks {
		wg.Add(1)
		go func(i int, t Task) {
			defer wg.Done()

			var err error
			defer func() {
				errs[i] = err
			}()
			defer try.Recover(&err)

			err = t(ctx)
		}(i, task)
	}

	wg.Wait()
	return errors.Join(errs...)
}
