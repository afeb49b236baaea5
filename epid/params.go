/*
Copyright IBM Corp. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package epid

import (
	"io"

	"github.com/IBM/epid/algebra"
	math "github.com/IBM/mathlib"
	"github.com/pkg/errors"
)

// PublicParameters are shared by the issuer, the platforms and the verifiers.
// G1, G2 and G3 = e(G1, G2) are the canonical generators of the curve, H1 and H2
// random generators of G1 and W = G2*gamma.
type PublicParameters struct {
	G1 algebra.G1
	G2 *math.G2
	G3 algebra.GT
	H1 algebra.G1
	H2 algebra.G1
	W  *math.G2

	curve *algebra.Curve

	// pairings that do not depend on the signature
	eG1G2 algebra.GT
	eH1G2 algebra.GT
	eH2G2 algebra.GT
	eH2W  algebra.GT
}

// IssuerSecretKey is the discrete logarithm of W in base G2. It never leaves the issuer.
type IssuerSecretKey struct {
	Gamma *math.Zr
}

// Setup draws fresh public parameters and the matching issuer secret key.
func Setup(c *algebra.Curve, rng io.Reader) (*PublicParameters, *IssuerSecretKey, error) {
	var pp *PublicParameters
	var isk *IssuerSecretKey

	err := withRandomness(rng, func(rng io.Reader) error {
		h1 := c.GenG1().Mul(c.NewRandomNonZeroZr(rng))
		h2 := c.GenG1().Mul(c.NewRandomNonZeroZr(rng))
		gamma := c.NewRandomNonZeroZr(rng)

		var err error
		pp, err = newPublicParameters(c, h1, h2, c.GenG2().Mul(gamma))
		isk = &IssuerSecretKey{Gamma: gamma}
		return err
	})
	if err != nil {
		return nil, nil, errors.Wrap(err, "failed generating public parameters")
	}

	return pp, isk, nil
}

func newPublicParameters(c *algebra.Curve, h1, h2 algebra.G1, w *math.G2) (*PublicParameters, error) {
	if h1.IsNil() || h2.IsNil() || w == nil {
		return nil, errors.Wrap(ErrMalformed, "public parameters are missing a generator")
	}
	if h1.IsIdentity() || h2.IsIdentity() {
		return nil, errors.Wrap(ErrMalformed, "h1 and h2 must not be the identity")
	}

	pp := &PublicParameters{
		G1:    c.GenG1(),
		G2:    c.GenG2(),
		G3:    c.GenGT(),
		H1:    h1,
		H2:    h2,
		W:     w,
		curve: c,
	}

	pp.eG1G2 = c.Pair(pp.G1, pp.G2)
	pp.eH1G2 = c.Pair(h1, pp.G2)
	pp.eH2G2 = c.Pair(h2, pp.G2)
	pp.eH2W = c.Pair(h2, w)

	return pp, nil
}

// Curve returns the curve the parameters live on.
func (pp *PublicParameters) Curve() *algebra.Curve {
	return pp.curve
}

// Equals reports whether both parameter sets are the same.
func (pp *PublicParameters) Equals(other *PublicParameters) bool {
	return pp.curve.Name == other.curve.Name &&
		pp.H1.Equals(other.H1) &&
		pp.H2.Equals(other.H2) &&
		pp.W.Equals(other.W)
}
