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

// RevocationEntry is the pseudonym (B, K = B*f) of a signature by a revoked member.
type RevocationEntry struct {
	B algebra.GT
	K algebra.GT
}

// RevocationList is an ordered list of revoked pseudonyms. The i-th unrevoked
// attestation of a signature refers to its i-th entry.
type RevocationList []RevocationEntry

// RevocationEntryFromSignature revokes the member that produced sig.
// The signature is expected to have been verified.
func RevocationEntryFromSignature(sig *Signature) RevocationEntry {
	return RevocationEntry{B: sig.Attestation.B, K: sig.Attestation.K}
}

func (e RevocationEntry) check() error {
	if e.B.IsNil() || e.K.IsNil() {
		return errors.Wrap(ErrMalformed, "incomplete revocation entry")
	}
	return nil
}

// proveNotRevoked proves that K != B*f for the entry without revealing f.
// With zb random and za = zb*f, the first proof is over
// Beta = Bi*za - Ki*zb = (Bi*f - Ki)*zb which is the identity iff Ki = Bi*f,
// and the second binds (za, zb) to the signer's own pseudonym: B*za - K*zb = 0.
func proveNotRevoked(c *algebra.Curve, f *math.Zr, B, K algebra.GT, entry RevocationEntry, rng io.Reader) UnRevokedAttestation {
	zb := c.NewRandomNonZeroZr(rng)
	za := c.Mul(zb, f)

	negKi := entry.K.Neg()
	largeC := entry.B.Mul(za).Add(negKi.Mul(zb))

	identity := algebra.GTGroup{C: c}.Identity()

	return UnRevokedAttestation{
		Proof1: zkp.Prove(c, za, zb, entry.B, negKi, largeC, rng),
		Proof2: zkp.Prove(c, za, zb, B, K.Neg(), identity, rng),
	}
}

// verifyNotRevoked checks an unrevoked attestation against the entry it refers to
// and the pseudonym (B, K) of the signature that carries it.
func verifyNotRevoked(c *algebra.Curve, B, K algebra.GT, entry RevocationEntry, ua UnRevokedAttestation) error {
	if err := entry.check(); err != nil {
		return err
	}

	if ua.Proof1 == nil || ua.Proof2 == nil {
		return errors.Wrap(ErrMalformed, "incomplete unrevoked attestation")
	}

	proof1 := ua.Proof1
	if !proof1.A1.Equals(entry.B) || !proof1.A2.Equals(entry.K.Neg()) {
		return errors.Wrap(ErrNonRevocationProof1Invalid, "proof is not about the revocation entry")
	}

	if err := proof1.Verify(c); err != nil {
		return errors.Wrap(ErrNonRevocationProof1Invalid, err.Error())
	}

	proof2 := ua.Proof2
	if !proof2.A1.Equals(B) || !proof2.A2.Equals(K.Neg()) {
		return errors.Wrap(ErrNonRevocationProof2Invalid, "proof is not about the signature pseudonym")
	}

	if !proof2.Beta.IsIdentity() {
		return errors.Wrap(ErrNonRevocationProof2Invalid, "Beta is not the identity")
	}

	if err := proof2.Verify(c); err != nil {
		return errors.Wrap(ErrNonRevocationProof2Invalid, err.Error())
	}

	if proof1.Beta.IsIdentity() {
		return ErrRevokedSigner
	}

	return nil
}
