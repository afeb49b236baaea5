/*
Copyright IBM Corp. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package epid

import (
	"github.com/pkg/errors"
)

// Verifier checks signatures of the members of a group.
type Verifier struct {
	Logger Logger
	// Workers bounds the goroutines checking non-revocation, 0 means runtime.NumCPU().
	Workers int

	pp *PublicParameters
}

// NewVerifier creates a verifier for the group with the given parameters.
func NewVerifier(pp *PublicParameters) *Verifier {
	return &Verifier{pp: pp}
}

// Verify checks that sig is a signature on msg by a member of the group
// who is not revoked by any entry of rl. It returns nil on success, otherwise
// an error matching one of ErrMalformed, ErrChallengeMismatch, ErrRevocationListMismatch,
// ErrNonRevocationProof1Invalid, ErrNonRevocationProof2Invalid or ErrRevokedSigner.
func (v *Verifier) Verify(sig *Signature, msg []byte, rl RevocationList) error {
	err := v.verify(sig, msg, rl)
	if err != nil {
		loggerOrNop(v.Logger).Debugf("Rejecting signature: %v", err)
	}
	return err
}

func (v *Verifier) verify(sig *Signature, msg []byte, rl RevocationList) error {
	if sig == nil {
		return errors.Wrap(ErrMalformed, "nil signature")
	}

	att := sig.Attestation
	if err := att.check(); err != nil {
		return err
	}

	pp := v.pp
	c := pp.curve

	// R1' = B*sf - K*c
	R1 := att.B.Mul(att.SF).Add(att.K.Mul(c.Neg(att.C)))

	// R2' = e(T,g2)^-sx * e(h1,g2)^sf * e(h2,g2)^sb * e(h2,w)^sa * (e(g1,g2) / e(T,w))^c
	R2 := c.Pair(att.T, pp.G2).Mul(c.Neg(att.SX)).
		Add(pp.eH1G2.Mul(att.SF)).
		Add(pp.eH2G2.Mul(att.SB)).
		Add(pp.eH2W.Mul(att.SA)).
		Add(pp.eG1G2.Add(c.Pair(att.T, pp.W).Neg()).Mul(att.C))

	if !attestationChallenge(c, att.B, att.K, att.T, R1, R2, msg).Equals(att.C) {
		return ErrChallengeMismatch
	}

	if len(sig.UnRevokedAttestations) != len(rl) {
		return errors.Wrapf(ErrRevocationListMismatch, "signature has %d unrevoked attestations but revocation list has %d entries",
			len(sig.UnRevokedAttestations), len(rl))
	}

	return forEachEntry(v.Workers, len(rl), func(i int) error {
		if err := verifyNotRevoked(c, att.B, att.K, rl[i], sig.UnRevokedAttestations[i]); err != nil {
			return errors.Wrapf(err, "revocation entry %d", i)
		}
		return nil
	})
}

func (att *PlatformAttestation) check() error {
	if att.B.IsNil() || att.K.IsNil() || att.T.IsNil() {
		return errors.Wrap(ErrMalformed, "platform attestation is missing a group element")
	}
	if att.SX == nil || att.SF == nil || att.SA == nil || att.SB == nil || att.C == nil {
		return errors.Wrap(ErrMalformed, "platform attestation is missing a scalar")
	}
	if att.B.IsIdentity() {
		return errors.Wrap(ErrMalformed, "pseudonym base is the identity")
	}
	return nil
}
