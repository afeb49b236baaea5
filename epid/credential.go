/*
Copyright IBM Corp. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package epid

import (
	"github.com/IBM/epid/algebra"
	math "github.com/IBM/mathlib"
	"github.com/pkg/errors"
)

// Credential is the secret key of a platform: a BBS+ signature (A, X, Y) by the
// issuer on the platform's secret F, which the issuer never learns.
type Credential struct {
	A algebra.G1
	X *math.Zr
	Y *math.Zr
	F *math.Zr
}

// Verify checks e(A, w + g2*x) = e(g1 + h1*f + h2*y, g2).
func (cred *Credential) Verify(pp *PublicParameters) error {
	if cred == nil || cred.A.IsNil() || cred.X == nil || cred.Y == nil || cred.F == nil {
		return errors.Wrap(ErrMalformed, "incomplete credential")
	}

	if cred.A.IsIdentity() {
		return errors.Wrap(ErrCredentialVerificationFailed, "A is the identity")
	}

	c := pp.curve

	wg2x := pp.W.Copy()
	wg2x.Add(pp.G2.Mul(cred.X))

	g1h1fh2y := pp.G1.Add(pp.H1.Mul2(cred.F, pp.H2, cred.Y))

	if !c.PairingCheck(cred.A, wg2x, g1h1fh2y, pp.G2) {
		return ErrCredentialVerificationFailed
	}

	return nil
}
