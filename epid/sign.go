/*
Copyright IBM Corp. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package epid

import (
	"io"

	"github.com/IBM/epid/algebra"
	"github.com/IBM/epid/zkp"
	math "github.com/IBM/mathlib"
	"github.com/pkg/errors"
)

// PlatformAttestation proves knowledge of a credential (A, x, y, f) such that
// K = B*f, where T = A + h2*a is the credential base blinded by a random a.
type PlatformAttestation struct {
	B  algebra.GT
	K  algebra.GT
	T  algebra.G1
	SX *math.Zr
	SF *math.Zr
	SA *math.Zr
	SB *math.Zr
	C  *math.Zr
}

// UnRevokedAttestation proves that the signer is not the member behind one revocation entry.
type UnRevokedAttestation struct {
	Proof1 *zkp.Proof[algebra.GT]
	Proof2 *zkp.Proof[algebra.GT]
}

// Signature is an anonymous group signature, with one UnRevokedAttestation
// per entry of the revocation list it was produced against.
type Signature struct {
	Attestation           PlatformAttestation
	UnRevokedAttestations []UnRevokedAttestation
}

// Sign signs msg, proving non-revocation against every entry of rl.
// Every call draws fresh randomness, so signatures of the same platform are unlinkable.
// It panics if the platform has not joined.
func (p *Platform) Sign(msg []byte, rl RevocationList, rng io.Reader) (*Signature, error) {
	cred := p.credential()

	for i, entry := range rl {
		if err := entry.check(); err != nil {
			return nil, errors.Wrapf(err, "revocation entry %d", i)
		}
	}

	pp := p.pp
	c := pp.curve

	var sig *Signature

	err := withRandomness(rng, func(rng io.Reader) error {
		// Pseudonym
		r := c.NewRandomNonZeroZr(rng)
		B := pp.G3.Mul(r)
		K := B.Mul(cred.F)

		// Blinded credential
		a := c.NewRandomZr(rng)
		b := c.MulAdd(cred.Y, a, cred.X)
		T := cred.A.Add(pp.H2.Mul(a))

		rx := c.NewRandomZr(rng)
		rf := c.NewRandomZr(rng)
		ra := c.NewRandomZr(rng)
		rb := c.NewRandomZr(rng)

		R1 := B.Mul(rf)
		R2 := c.Pair(T, pp.G2).Mul(c.Neg(rx)).
			Add(pp.eH1G2.Mul(rf)).
			Add(pp.eH2G2.Mul(rb)).
			Add(pp.eH2W.Mul(ra))

		ch := attestationChallenge(c, B, K, T, R1, R2, msg)

		sig = &Signature{
			Attestation: PlatformAttestation{
				B:  B,
				K:  K,
				T:  T,
				SX: c.MulAdd(rx, ch, cred.X),
				SF: c.MulAdd(rf, ch, cred.F),
				SA: c.MulAdd(ra, ch, a),
				SB: c.MulAdd(rb, ch, b),
				C:  ch,
			},
			UnRevokedAttestations: make([]UnRevokedAttestation, len(rl)),
		}

		return forEachEntry(p.Workers, len(rl), func(i int) error {
			sig.UnRevokedAttestations[i] = proveNotRevoked(c, cred.F, B, K, rl[i], rng)
			return nil
		})
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed signing")
	}

	loggerOrNop(p.Logger).Debugf("Signed %d byte message against %d revocation entries", len(msg), len(rl))

	return sig, nil
}

// attestationChallenge is H(B || K || T || R1 || R2 || msg).
func attestationChallenge(c *algebra.Curve, B, K algebra.GT, T algebra.G1, R1, R2 algebra.GT, msg []byte) *math.Zr {
	return c.HashToZr(B.Bytes(), K.Bytes(), T.Bytes(), R1.Bytes(), R2.Bytes(), msg)
}
