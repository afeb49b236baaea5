/*
Copyright IBM Corp. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package epid

import (
	"runtime"

	"golang.org/x/sync/errgroup"
)

// forEachEntry runs fn(0), ..., fn(n-1) on at most workers goroutines
// (runtime.NumCPU() if workers is not positive). It waits for all of them and
// returns the error of the lowest index that failed, so the outcome does not
// depend on scheduling. A panic in fn is re-raised in the calling goroutine.
func forEachEntry(workers, n int, fn func(i int) error) error {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	errs := make([]error, n)
	panics := make([]interface{}, n)

	var g errgroup.Group
	g.SetLimit(workers)

	for i := 0; i < n; i++ {
		i := i // per-iteration copy (pre-Go 1.22 loop semantics)
		g.Go(func() error {
			defer func() {
				if r := recover(); r != nil {
					panics[i] = r
				}
			}()
			errs[i] = fn(i)
			return nil
		})
	}

	_ = g.Wait()

	for _, p := range panics {
		if p != nil {
			panic(p)
		}
	}

	for _, err := range errs {
		if err != nil {
			return err
		}
	}

	return nil
}
