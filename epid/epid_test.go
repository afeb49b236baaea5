/*
Copyright IBM Corp. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package epid

import (
	"crypto/rand"
	"testing"

	"github.com/IBM/epid/algebra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func logger(id string, testName string) Logger {
	logConfig := zap.NewDevelopmentConfig()
	baseLogger, _ := logConfig.Build()
	return baseLogger.With(zap.String("t", testName)).With(zap.String("id", id)).Sugar()
}

func testCurve(t *testing.T) *algebra.Curve {
	c, err := algebra.CurveByName(algebra.DefaultCurve)
	require.NoError(t, err)
	return c
}

func newIssuer(t *testing.T) *Issuer {
	issuer, err := NewIssuer(testCurve(t), rand.Reader)
	require.NoError(t, err)
	issuer.Logger = logger("issuer", t.Name())
	return issuer
}

func join(t *testing.T, issuer *Issuer, id string) *Platform {
	p := NewPlatform(issuer.PublicParameters())
	p.Logger = logger(id, t.Name())

	req, err := p.BeginJoin(rand.Reader)
	require.NoError(t, err)

	resp, err := issuer.RespondJoin(req, rand.Reader)
	require.NoError(t, err)

	cred, err := p.CompleteJoin(resp)
	require.NoError(t, err)
	require.NoError(t, cred.Verify(issuer.PublicParameters()))

	return p
}

func newVerifier(t *testing.T, issuer *Issuer) *Verifier {
	v := NewVerifier(issuer.PublicParameters())
	v.Logger = logger("verifier", t.Name())
	return v
}

func TestSetup(t *testing.T) {
	c := testCurve(t)

	pp, isk, err := Setup(c, rand.Reader)
	require.NoError(t, err)

	assert.True(t, pp.G3.Equals(c.Pair(pp.G1, pp.G2)))
	assert.True(t, pp.W.Equals(pp.G2.Mul(isk.Gamma)))
	assert.False(t, c.IsZero(isk.Gamma))
	assert.False(t, pp.H1.Equals(pp.H2))
	assert.False(t, pp.H1.IsIdentity())

	issuer, err := NewIssuerFromKeys(pp, isk)
	require.NoError(t, err)
	assert.Equal(t, pp, issuer.PublicParameters())

	_, otherISK, err := Setup(c, rand.Reader)
	require.NoError(t, err)
	_, err = NewIssuerFromKeys(pp, otherISK)
	assert.EqualError(t, err, "issuer secret key does not match public parameters")
}

func TestSignVerify(t *testing.T) {
	issuer := newIssuer(t)
	p := join(t, issuer, "platform")
	v := newVerifier(t, issuer)

	for _, msg := range [][]byte{nil, {1, 2, 3}, []byte("a somewhat longer message to sign")} {
		sig, err := p.Sign(msg, nil, rand.Reader)
		require.NoError(t, err)
		assert.Empty(t, sig.UnRevokedAttestations)
		assert.NoError(t, v.Verify(sig, msg, nil))
	}
}

func TestSignaturesAreUnlinkable(t *testing.T) {
	issuer := newIssuer(t)
	p := join(t, issuer, "platform")

	sig1, err := p.Sign([]byte{1, 2, 3}, nil, rand.Reader)
	require.NoError(t, err)
	sig2, err := p.Sign([]byte{1, 2, 3}, nil, rand.Reader)
	require.NoError(t, err)

	assert.False(t, sig1.Attestation.B.Equals(sig2.Attestation.B))
	assert.False(t, sig1.Attestation.K.Equals(sig2.Attestation.K))
	assert.False(t, sig1.Attestation.T.Equals(sig2.Attestation.T))
	assert.False(t, sig1.Attestation.T.Equals(p.Credential().A))
}

func TestRevocation(t *testing.T) {
	issuer := newIssuer(t)
	platformA := join(t, issuer, "A")
	platformB := join(t, issuer, "B")
	v := newVerifier(t, issuer)

	sig, err := platformA.Sign([]byte{1, 2, 3}, nil, rand.Reader)
	require.NoError(t, err)
	require.NoError(t, v.Verify(sig, []byte{1, 2, 3}, nil))

	sig, err = platformA.Sign([]byte{4, 5, 6}, nil, rand.Reader)
	require.NoError(t, err)
	require.NoError(t, v.Verify(sig, []byte{4, 5, 6}, nil))

	rl := RevocationList{RevocationEntryFromSignature(sig)}

	sig, err = platformA.Sign([]byte{7, 8, 9}, rl, rand.Reader)
	require.NoError(t, err)
	require.Len(t, sig.UnRevokedAttestations, 1)
	err = v.Verify(sig, []byte{7, 8, 9}, rl)
	assert.ErrorIs(t, err, ErrRevokedSigner)
	assert.EqualError(t, err, "revocation entry 0: signer is revoked")

	sig, err = platformB.Sign([]byte{7, 8, 9}, rl, rand.Reader)
	require.NoError(t, err)
	assert.NoError(t, v.Verify(sig, []byte{7, 8, 9}, rl))
}

func TestRevokedAmongMany(t *testing.T) {
	issuer := newIssuer(t)
	v := newVerifier(t, issuer)

	var rl RevocationList
	for _, id := range []string{"r1", "r2", "r3"} {
		sig, err := join(t, issuer, id).Sign([]byte(id), nil, rand.Reader)
		require.NoError(t, err)
		rl = append(rl, RevocationEntryFromSignature(sig))
	}

	revoked := join(t, issuer, "revoked")
	sig, err := revoked.Sign([]byte("revoked"), nil, rand.Reader)
	require.NoError(t, err)
	rl = append(rl[:2], RevocationEntryFromSignature(sig), rl[2])

	honest := join(t, issuer, "honest")

	for _, workers := range []int{1, 2, 0} {
		honest.Workers = workers
		revoked.Workers = workers
		v.Workers = workers

		sig, err := honest.Sign([]byte("msg"), rl, rand.Reader)
		require.NoError(t, err)
		assert.NoError(t, v.Verify(sig, []byte("msg"), rl))

		sig, err = revoked.Sign([]byte("msg"), rl, rand.Reader)
		require.NoError(t, err)
		err = v.Verify(sig, []byte("msg"), rl)
		assert.ErrorIs(t, err, ErrRevokedSigner)
		assert.EqualError(t, err, "revocation entry 2: signer is revoked")
	}
}

func TestTamperedSignature(t *testing.T) {
	issuer := newIssuer(t)
	p := join(t, issuer, "platform")
	other := join(t, issuer, "other")
	v := newVerifier(t, issuer)
	c := issuer.PublicParameters().Curve()
	one := c.C.NewZrFromInt(1)
	g := c.GenGT()

	msg := []byte{1, 2, 3}

	otherSig, err := other.Sign([]byte{4, 5, 6}, nil, rand.Reader)
	require.NoError(t, err)
	rl := RevocationList{RevocationEntryFromSignature(otherSig)}

	for _, tst := range []struct {
		name     string
		tamper   func(sig *Signature) []byte
		expected error
	}{
		{
			name:     "message",
			tamper:   func(sig *Signature) []byte { return []byte{1, 2, 4} },
			expected: ErrChallengeMismatch,
		},
		{
			name:     "truncated message",
			tamper:   func(sig *Signature) []byte { return msg[:2] },
			expected: ErrChallengeMismatch,
		},
		{
			name:     "B",
			tamper:   func(sig *Signature) []byte { sig.Attestation.B = sig.Attestation.B.Add(g); return msg },
			expected: ErrChallengeMismatch,
		},
		{
			name:     "K",
			tamper:   func(sig *Signature) []byte { sig.Attestation.K = sig.Attestation.K.Add(g); return msg },
			expected: ErrChallengeMismatch,
		},
		{
			name:     "T",
			tamper:   func(sig *Signature) []byte { sig.Attestation.T = sig.Attestation.T.Add(c.GenG1()); return msg },
			expected: ErrChallengeMismatch,
		},
		{
			name:     "SX",
			tamper:   func(sig *Signature) []byte { sig.Attestation.SX = c.Add(sig.Attestation.SX, one); return msg },
			expected: ErrChallengeMismatch,
		},
		{
			name:     "SF",
			tamper:   func(sig *Signature) []byte { sig.Attestation.SF = c.Add(sig.Attestation.SF, one); return msg },
			expected: ErrChallengeMismatch,
		},
		{
			name:     "SA",
			tamper:   func(sig *Signature) []byte { sig.Attestation.SA = c.Add(sig.Attestation.SA, one); return msg },
			expected: ErrChallengeMismatch,
		},
		{
			name:     "SB",
			tamper:   func(sig *Signature) []byte { sig.Attestation.SB = c.Add(sig.Attestation.SB, one); return msg },
			expected: ErrChallengeMismatch,
		},
		{
			name:     "C",
			tamper:   func(sig *Signature) []byte { sig.Attestation.C = c.Add(sig.Attestation.C, one); return msg },
			expected: ErrChallengeMismatch,
		},
		{
			name:     "missing scalar",
			tamper:   func(sig *Signature) []byte { sig.Attestation.SB = nil; return msg },
			expected: ErrMalformed,
		},
		{
			name:     "missing group element",
			tamper:   func(sig *Signature) []byte { sig.Attestation.K = algebra.GT{}; return msg },
			expected: ErrMalformed,
		},
		{
			name: "proof1 response",
			tamper: func(sig *Signature) []byte {
				π := *sig.UnRevokedAttestations[0].Proof1
				π.S1 = c.Add(π.S1, one)
				sig.UnRevokedAttestations[0].Proof1 = &π
				return msg
			},
			expected: ErrNonRevocationProof1Invalid,
		},
		{
			name: "proof1 forced to the identity",
			tamper: func(sig *Signature) []byte {
				π := *sig.UnRevokedAttestations[0].Proof1
				π.Beta = algebra.GTGroup{C: c}.Identity()
				sig.UnRevokedAttestations[0].Proof1 = &π
				return msg
			},
			expected: ErrNonRevocationProof1Invalid,
		},
		{
			name: "proof1 carried base",
			tamper: func(sig *Signature) []byte {
				π := *sig.UnRevokedAttestations[0].Proof1
				π.A1 = π.A1.Add(g)
				sig.UnRevokedAttestations[0].Proof1 = &π
				return msg
			},
			expected: ErrNonRevocationProof1Invalid,
		},
		{
			name: "proof2 carried base",
			tamper: func(sig *Signature) []byte {
				π := *sig.UnRevokedAttestations[0].Proof2
				π.A2 = π.A2.Add(g)
				sig.UnRevokedAttestations[0].Proof2 = &π
				return msg
			},
			expected: ErrNonRevocationProof2Invalid,
		},
		{
			name: "proof2 response",
			tamper: func(sig *Signature) []byte {
				π := *sig.UnRevokedAttestations[0].Proof2
				π.S2 = c.Add(π.S2, one)
				sig.UnRevokedAttestations[0].Proof2 = &π
				return msg
			},
			expected: ErrNonRevocationProof2Invalid,
		},
		{
			name: "proof2 with non-trivial Beta",
			tamper: func(sig *Signature) []byte {
				sig.UnRevokedAttestations[0].Proof2 = sig.UnRevokedAttestations[0].Proof1
				return msg
			},
			expected: ErrNonRevocationProof2Invalid,
		},
		{
			name: "proof2 of another signature",
			tamper: func(sig *Signature) []byte {
				sig2, err := p.Sign(msg, rl, rand.Reader)
				require.NoError(t, err)
				sig.UnRevokedAttestations[0].Proof2 = sig2.UnRevokedAttestations[0].Proof2
				return msg
			},
			expected: ErrNonRevocationProof2Invalid,
		},
		{
			name: "missing proof",
			tamper: func(sig *Signature) []byte {
				sig.UnRevokedAttestations[0].Proof1 = nil
				return msg
			},
			expected: ErrMalformed,
		},
		{
			name: "dropped unrevoked attestation",
			tamper: func(sig *Signature) []byte {
				sig.UnRevokedAttestations = nil
				return msg
			},
			expected: ErrRevocationListMismatch,
		},
	} {
		t.Run(tst.name, func(t *testing.T) {
			sig, err := p.Sign(msg, rl, rand.Reader)
			require.NoError(t, err)
			require.NoError(t, v.Verify(sig, msg, rl))

			tamperedMsg := tst.tamper(sig)
			assert.ErrorIs(t, v.Verify(sig, tamperedMsg, rl), tst.expected)
		})
	}

	assert.ErrorIs(t, v.Verify(nil, msg, nil), ErrMalformed)
}

func TestRevocationListMismatch(t *testing.T) {
	issuer := newIssuer(t)
	p := join(t, issuer, "platform")
	v := newVerifier(t, issuer)

	var rl RevocationList
	for _, id := range []string{"r1", "r2"} {
		sig, err := join(t, issuer, id).Sign([]byte(id), nil, rand.Reader)
		require.NoError(t, err)
		rl = append(rl, RevocationEntryFromSignature(sig))
	}

	sig, err := p.Sign([]byte("msg"), rl[:1], rand.Reader)
	require.NoError(t, err)

	err = v.Verify(sig, []byte("msg"), rl)
	assert.ErrorIs(t, err, ErrRevocationListMismatch)

	err = v.Verify(sig, []byte("msg"), nil)
	assert.ErrorIs(t, err, ErrRevocationListMismatch)

	// Same length but another entry
	err = v.Verify(sig, []byte("msg"), rl[1:])
	assert.ErrorIs(t, err, ErrNonRevocationProof1Invalid)
	assert.Contains(t, err.Error(), "revocation entry 0")

	// Swapped order
	sig, err = p.Sign([]byte("msg"), rl, rand.Reader)
	require.NoError(t, err)
	err = v.Verify(sig, []byte("msg"), RevocationList{rl[1], rl[0]})
	assert.ErrorIs(t, err, ErrNonRevocationProof1Invalid)

	_, err = p.Sign([]byte("msg"), RevocationList{{}}, rand.Reader)
	assert.ErrorIs(t, err, ErrMalformed)
}

func TestJoin(t *testing.T) {
	issuer := newIssuer(t)
	pp := issuer.PublicParameters()
	c := pp.Curve()
	one := c.C.NewZrFromInt(1)

	t.Run("credential relation", func(t *testing.T) {
		p := join(t, issuer, "platform")
		cred := p.Credential()

		// A*(x + gamma) = g1 + h1*f + h2*y
		left := cred.A.Mul(c.Add(cred.X, issuer.isk.Gamma))
		right := pp.G1.Add(pp.H1.Mul(cred.F)).Add(pp.H2.Mul(cred.Y))
		assert.True(t, left.Equals(right))
	})

	for _, tst := range []struct {
		name   string
		tamper func(resp *JoinResponse)
	}{
		{name: "x", tamper: func(resp *JoinResponse) { resp.X = c.Add(resp.X, one) }},
		{name: "y''", tamper: func(resp *JoinResponse) { resp.YPrimePrime = c.Add(resp.YPrimePrime, one) }},
		{name: "A", tamper: func(resp *JoinResponse) { resp.A = resp.A.Add(pp.G1) }},
		{name: "A is the identity", tamper: func(resp *JoinResponse) { resp.A = algebra.G1Group{C: c}.Identity() }},
	} {
		t.Run("tampered "+tst.name, func(t *testing.T) {
			p := NewPlatform(pp)
			p.Logger = logger("platform", t.Name())

			req, err := p.BeginJoin(rand.Reader)
			require.NoError(t, err)
			resp, err := issuer.RespondJoin(req, rand.Reader)
			require.NoError(t, err)

			tst.tamper(resp)
			cred, err := p.CompleteJoin(resp)
			assert.ErrorIs(t, err, ErrCredentialVerificationFailed)
			assert.Nil(t, cred)
			assert.Nil(t, p.Credential())

			// The platform starts over
			assert.Panics(t, func() { p.CompleteJoin(resp) })
			req, err = p.BeginJoin(rand.Reader)
			require.NoError(t, err)
			resp, err = issuer.RespondJoin(req, rand.Reader)
			require.NoError(t, err)
			_, err = p.CompleteJoin(resp)
			assert.NoError(t, err)
		})
	}

	t.Run("response to another request", func(t *testing.T) {
		p := NewPlatform(pp)
		req1, err := p.BeginJoin(rand.Reader)
		require.NoError(t, err)
		resp1, err := issuer.RespondJoin(req1, rand.Reader)
		require.NoError(t, err)

		_, err = p.BeginJoin(rand.Reader)
		require.NoError(t, err)

		_, err = p.CompleteJoin(resp1)
		assert.ErrorIs(t, err, ErrCredentialVerificationFailed)
	})

	t.Run("incomplete response", func(t *testing.T) {
		p := NewPlatform(pp)
		_, err := p.BeginJoin(rand.Reader)
		require.NoError(t, err)

		_, err = p.CompleteJoin(&JoinResponse{})
		assert.ErrorIs(t, err, ErrMalformed)
	})
}

func TestIssuerRejectsInvalidJoinRequests(t *testing.T) {
	issuer := newIssuer(t)
	pp := issuer.PublicParameters()
	c := pp.Curve()
	one := c.C.NewZrFromInt(1)

	newRequest := func() *JoinRequest {
		req, err := NewPlatform(pp).BeginJoin(rand.Reader)
		require.NoError(t, err)
		return req
	}

	for _, tst := range []struct {
		name   string
		tamper func(req *JoinRequest) *JoinRequest
	}{
		{name: "nil request", tamper: func(req *JoinRequest) *JoinRequest { return nil }},
		{name: "missing proof", tamper: func(req *JoinRequest) *JoinRequest { req.Proof = nil; return req }},
		{name: "missing commitment", tamper: func(req *JoinRequest) *JoinRequest { req.T = algebra.G1{}; return req }},
		{
			name: "commitment is the identity",
			tamper: func(req *JoinRequest) *JoinRequest {
				req.T = algebra.G1Group{C: c}.Identity()
				return req
			},
		},
		{
			name: "another commitment",
			tamper: func(req *JoinRequest) *JoinRequest {
				req.T = newRequest().T
				return req
			},
		},
		{
			name: "proof about another commitment",
			tamper: func(req *JoinRequest) *JoinRequest {
				req.Proof = newRequest().Proof
				return req
			},
		},
		{
			name: "tampered response",
			tamper: func(req *JoinRequest) *JoinRequest {
				req.Proof.S1 = c.Add(req.Proof.S1, one)
				return req
			},
		},
		{
			name: "tampered carried base",
			tamper: func(req *JoinRequest) *JoinRequest {
				req.Proof.A2 = req.Proof.A2.Add(pp.G1)
				return req
			},
		},
		{
			name: "proof in other bases",
			tamper: func(req *JoinRequest) *JoinRequest {
				// Knowledge of the opening of T in bases (g1, h2) instead of (h1, h2)
				f, yPrime := c.NewRandomZr(rand.Reader), c.NewRandomZr(rand.Reader)
				T := pp.G1.Mul2(f, pp.H2, yPrime)
				req.T = T
				req.Proof = newRequest().Proof
				req.Proof.A1, req.Proof.Beta = pp.G1, T
				return req
			},
		},
	} {
		t.Run(tst.name, func(t *testing.T) {
			resp, err := issuer.RespondJoin(tst.tamper(newRequest()), rand.Reader)
			assert.ErrorIs(t, err, ErrInvalidJoinProof)
			assert.Nil(t, resp)
		})
	}
}

func TestProgrammingErrors(t *testing.T) {
	issuer := newIssuer(t)
	pp := issuer.PublicParameters()

	assert.PanicsWithValue(t, "programming error: CompleteJoin called while uninitialized", func() {
		NewPlatform(pp).CompleteJoin(&JoinResponse{})
	})

	assert.PanicsWithValue(t, "programming error: platform has not joined", func() {
		NewPlatform(pp).Sign([]byte{1}, nil, rand.Reader)
	})

	p := join(t, issuer, "platform")
	assert.PanicsWithValue(t, "programming error: platform already joined", func() {
		p.BeginJoin(rand.Reader)
	})
	assert.PanicsWithValue(t, "programming error: CompleteJoin called while joined", func() {
		p.CompleteJoin(&JoinResponse{})
	})
}

func TestPlatformFromCredential(t *testing.T) {
	issuer := newIssuer(t)
	pp := issuer.PublicParameters()
	cred := join(t, issuer, "platform").Credential()

	p, err := NewPlatformFromCredential(pp, cred)
	require.NoError(t, err)

	sig, err := p.Sign([]byte("msg"), nil, rand.Reader)
	require.NoError(t, err)
	assert.NoError(t, newVerifier(t, issuer).Verify(sig, []byte("msg"), nil))

	forged := *cred
	forged.F = pp.Curve().NewRandomZr(rand.Reader)
	_, err = NewPlatformFromCredential(pp, &forged)
	assert.ErrorIs(t, err, ErrCredentialVerificationFailed)

	_, err = NewPlatformFromCredential(pp, nil)
	assert.ErrorIs(t, err, ErrMalformed)

	// Credentials of another group do not verify
	_, err = NewPlatformFromCredential(newIssuer(t).PublicParameters(), cred)
	assert.ErrorIs(t, err, ErrCredentialVerificationFailed)
}

func TestSignatureFromAnotherGroup(t *testing.T) {
	issuer := newIssuer(t)
	p := join(t, newIssuer(t), "outsider")

	sig, err := p.Sign([]byte("msg"), nil, rand.Reader)
	require.NoError(t, err)
	assert.ErrorIs(t, newVerifier(t, issuer).Verify(sig, []byte("msg"), nil), ErrChallengeMismatch)
}

func TestCurves(t *testing.T) {
	for _, name := range algebra.CurveNames() {
		t.Run(name, func(t *testing.T) {
			c, err := algebra.CurveByName(name)
			require.NoError(t, err)

			issuer, err := NewIssuer(c, rand.Reader)
			require.NoError(t, err)

			revoked := join(t, issuer, "revoked")
			honest := join(t, issuer, "honest")
			v := newVerifier(t, issuer)

			sig, err := revoked.Sign([]byte("msg"), nil, rand.Reader)
			require.NoError(t, err)
			rl := RevocationList{RevocationEntryFromSignature(sig)}

			sig, err = honest.Sign([]byte("msg"), rl, rand.Reader)
			require.NoError(t, err)
			sig, err = DecodeSignature(c, sig.Bytes(c))
			require.NoError(t, err)
			assert.NoError(t, v.Verify(sig, []byte("msg"), rl))

			sig, err = revoked.Sign([]byte("msg"), rl, rand.Reader)
			require.NoError(t, err)
			assert.ErrorIs(t, v.Verify(sig, []byte("msg"), rl), ErrRevokedSigner)
		})
	}
}
