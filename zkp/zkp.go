/*
Copyright IBM Corp. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package zkp implements a non-interactive compound Schnorr proof of knowledge
// of two discrete logarithms (x1, x2) such that A1*x1 + A2*x2 = Beta,
// made non-interactive with the Fiat-Shamir heuristic.
//
// The proof works over any group satisfying algebra.Element. The join protocol
// instantiates it over G1 to prove the opening of a commitment, and the
// non-revocation proofs instantiate it over GT.
package zkp

import (
	"bytes"
	"io"

	"github.com/IBM/epid/algebra"
	math "github.com/IBM/mathlib"
	"github.com/pkg/errors"
)

// ErrProofInvalid is returned when a proof does not satisfy its verification equation.
var ErrProofInvalid = errors.New("A1^y1 * A2^y2 != Y1 * Y2 * Beta^b")

// Proof is a proof of knowledge of (x1, x2) such that A1*x1 + A2*x2 = Beta.
// S1 and S2 are the responses, Y1 and Y2 the commitments.
type Proof[E algebra.Element[E]] struct {
	S1, S2 *math.Zr
	A1, A2 E
	Y1, Y2 E
	Beta   E
}

// Prove produces a proof that the prover knows (x1, x2) with A1*x1 + A2*x2 = Beta.
func Prove[E algebra.Element[E]](c *algebra.Curve, x1, x2 *math.Zr, A1, A2, Beta E, rng io.Reader) *Proof[E] {
	r1 := c.NewRandomZr(rng)
	r2 := c.NewRandomZr(rng)

	Y1 := A1.Mul(r1)
	Y2 := A2.Mul(r2)

	b := challenge(c, Y1, Y2, Beta)

	return &Proof[E]{
		S1:   c.MulAdd(r1, b, x1),
		S2:   c.MulAdd(r2, b, x2),
		A1:   A1,
		A2:   A2,
		Y1:   Y1,
		Y2:   Y2,
		Beta: Beta,
	}
}

// Verify checks A1*S1 + A2*S2 = Y1 + Y2 + Beta*b where b = H(Y1, Y2, Beta).
func (π *Proof[E]) Verify(c *algebra.Curve) error {
	if π.S1 == nil || π.S2 == nil {
		return errors.Wrap(ErrProofInvalid, "missing responses")
	}

	for _, e := range []E{π.A1, π.A2, π.Y1, π.Y2, π.Beta} {
		if e.IsNil() {
			return errors.Wrap(ErrProofInvalid, "missing group element")
		}
	}

	b := challenge(c, π.Y1, π.Y2, π.Beta)

	left := π.A1.Mul(π.S1).Add(π.A2.Mul(π.S2))
	right := π.Y1.Add(π.Y2).Add(π.Beta.Mul(b))

	if !left.Equals(right) {
		return ErrProofInvalid
	}

	return nil
}

func challenge[E algebra.Element[E]](c *algebra.Curve, Y1, Y2, Beta E) *math.Zr {
	return c.HashToZr(Y1.Bytes(), Y2.Bytes(), Beta.Bytes())
}

// Size returns the length of an encoded proof over the given group.
func Size[E algebra.Element[E]](c *algebra.Curve, g algebra.Group[E]) int {
	return 2*c.ScalarSize + 5*g.ElementSize()
}

// Bytes encodes the proof as S1 || S2 || A1 || A2 || Y1 || Y2 || Beta.
func (π *Proof[E]) Bytes(c *algebra.Curve) []byte {
	var buff bytes.Buffer
	buff.Write(c.ScalarBytes(π.S1))
	buff.Write(c.ScalarBytes(π.S2))
	for _, e := range []E{π.A1, π.A2, π.Y1, π.Y2, π.Beta} {
		buff.Write(e.Bytes())
	}
	return buff.Bytes()
}

// FromBytes decodes a proof encoded by Bytes.
func FromBytes[E algebra.Element[E]](c *algebra.Curve, g algebra.Group[E], raw []byte) (*Proof[E], error) {
	if len(raw) != Size[E](c, g) {
		return nil, errors.Errorf("proof should be %d bytes but is %d bytes", Size[E](c, g), len(raw))
	}

	var π Proof[E]
	var err error

	if π.S1, err = c.ScalarFromBytes(raw[:c.ScalarSize]); err != nil {
		return nil, err
	}
	raw = raw[c.ScalarSize:]

	if π.S2, err = c.ScalarFromBytes(raw[:c.ScalarSize]); err != nil {
		return nil, err
	}
	raw = raw[c.ScalarSize:]

	n := g.ElementSize()
	for i, e := range []*E{&π.A1, &π.A2, &π.Y1, &π.Y2, &π.Beta} {
		if *e, err = g.FromBytes(raw[i*n : (i+1)*n]); err != nil {
			return nil, errors.Wrapf(err, "element %d of proof is malformed", i)
		}
	}

	return &π, nil
}
