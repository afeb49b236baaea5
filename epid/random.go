/*
Copyright IBM Corp. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package epid

import (
	"crypto/rand"
	"io"
	"sync"

	"github.com/pkg/errors"
)

// guardedReader serializes reads from a randomness source shared between
// goroutines, and remembers the first failure.
type guardedReader struct {
	lock sync.Mutex
	rng  io.Reader
	err  error
}

func (g *guardedReader) Read(p []byte) (int, error) {
	g.lock.Lock()
	defer g.lock.Unlock()

	n, err := g.rng.Read(p)
	if err != nil && g.err == nil {
		g.err = err
	}
	return n, err
}

func (g *guardedReader) failure() error {
	g.lock.Lock()
	defer g.lock.Unlock()

	return g.err
}

// withRandomness runs f with a guarded view of rng and turns a failure of the
// source, whether reported or raised as a panic by the curve driver, into ErrRandomness.
// Panics that do not follow a failed read are re-raised. A nil rng means crypto/rand.
func withRandomness(rng io.Reader, f func(rng io.Reader) error) (err error) {
	if rng == nil {
		rng = rand.Reader
	}

	g := &guardedReader{rng: rng}

	defer func() {
		if r := recover(); r != nil {
			failure := g.failure()
			if failure == nil {
				panic(r)
			}
			err = errors.Wrapf(ErrRandomness, "%v after %v", r, failure)
		}
	}()

	if err = f(g); err != nil {
		return err
	}

	if failure := g.failure(); failure != nil {
		return errors.Wrap(ErrRandomness, failure.Error())
	}

	return nil
}
