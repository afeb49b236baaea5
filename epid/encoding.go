/*
Copyright IBM Corp. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package epid

import (
	"bytes"

	"github.com/IBM/epid/algebra"
	"github.com/IBM/epid/zkp"
	math "github.com/IBM/mathlib"
	"github.com/pkg/errors"
)

// Every structure is encoded as the concatenation of the fixed-length encodings
// of its fields, in declaration order.

// Bytes encodes G1 || G2 || G3 || H1 || H2 || W.
func (pp *PublicParameters) Bytes() []byte {
	var buff bytes.Buffer
	buff.Write(pp.G1.Bytes())
	buff.Write(pp.G2.Bytes())
	buff.Write(pp.G3.Bytes())
	buff.Write(pp.H1.Bytes())
	buff.Write(pp.H2.Bytes())
	buff.Write(pp.W.Bytes())
	return buff.Bytes()
}

// DecodePublicParameters decodes parameters encoded by PublicParameters.Bytes.
// G1, G2 and G3 must be the canonical generators of the curve.
func DecodePublicParameters(c *algebra.Curve, raw []byte) (*PublicParameters, error) {
	d := &decoder{c: c, raw: raw}
	g1 := d.g1()
	g2 := d.g2()
	g3 := d.gt()
	h1 := d.g1()
	h2 := d.g1()
	w := d.g2()
	if err := d.finish("public parameters"); err != nil {
		return nil, err
	}

	if !g1.Equals(c.GenG1()) || !g2.Equals(c.GenG2()) || !g3.Equals(c.GenGT()) {
		return nil, errors.Wrap(ErrMalformed, "public parameters do not use the canonical generators")
	}

	return newPublicParameters(c, h1, h2, w)
}

// Bytes encodes Gamma.
func (isk *IssuerSecretKey) Bytes(c *algebra.Curve) []byte {
	return c.ScalarBytes(isk.Gamma)
}

// DecodeIssuerSecretKey decodes a key encoded by IssuerSecretKey.Bytes.
func DecodeIssuerSecretKey(c *algebra.Curve, raw []byte) (*IssuerSecretKey, error) {
	d := &decoder{c: c, raw: raw}
	isk := &IssuerSecretKey{Gamma: d.scalar()}
	if err := d.finish("issuer secret key"); err != nil {
		return nil, err
	}
	return isk, nil
}

// Bytes encodes A || X || Y || F.
func (cred *Credential) Bytes(c *algebra.Curve) []byte {
	var buff bytes.Buffer
	buff.Write(cred.A.Bytes())
	writeScalars(&buff, c, cred.X, cred.Y, cred.F)
	return buff.Bytes()
}

// DecodeCredential decodes a credential encoded by Credential.Bytes. It does not verify it.
func DecodeCredential(c *algebra.Curve, raw []byte) (*Credential, error) {
	d := &decoder{c: c, raw: raw}
	cred := &Credential{
		A: d.g1(),
		X: d.scalar(),
		Y: d.scalar(),
		F: d.scalar(),
	}
	if err := d.finish("credential"); err != nil {
		return nil, err
	}
	return cred, nil
}

// Bytes encodes T || Proof.
func (req *JoinRequest) Bytes(c *algebra.Curve) []byte {
	var buff bytes.Buffer
	buff.Write(req.T.Bytes())
	buff.Write(req.Proof.Bytes(c))
	return buff.Bytes()
}

// DecodeJoinRequest decodes a request encoded by JoinRequest.Bytes.
func DecodeJoinRequest(c *algebra.Curve, raw []byte) (*JoinRequest, error) {
	d := &decoder{c: c, raw: raw}
	req := &JoinRequest{
		T:     d.g1(),
		Proof: d.g1Proof(),
	}
	if err := d.finish("join request"); err != nil {
		return nil, err
	}
	return req, nil
}

// Bytes encodes A || X || YPrimePrime.
func (resp *JoinResponse) Bytes(c *algebra.Curve) []byte {
	var buff bytes.Buffer
	buff.Write(resp.A.Bytes())
	writeScalars(&buff, c, resp.X, resp.YPrimePrime)
	return buff.Bytes()
}

// DecodeJoinResponse decodes a response encoded by JoinResponse.Bytes.
func DecodeJoinResponse(c *algebra.Curve, raw []byte) (*JoinResponse, error) {
	d := &decoder{c: c, raw: raw}
	resp := &JoinResponse{
		A:           d.g1(),
		X:           d.scalar(),
		YPrimePrime: d.scalar(),
	}
	if err := d.finish("join response"); err != nil {
		return nil, err
	}
	return resp, nil
}

// Bytes encodes B || K || T || SX || SF || SA || SB || C.
func (att *PlatformAttestation) Bytes(c *algebra.Curve) []byte {
	var buff bytes.Buffer
	buff.Write(att.B.Bytes())
	buff.Write(att.K.Bytes())
	buff.Write(att.T.Bytes())
	writeScalars(&buff, c, att.SX, att.SF, att.SA, att.SB, att.C)
	return buff.Bytes()
}

func platformAttestationSize(c *algebra.Curve) int {
	return 2*c.GTSize + c.G1Size + 5*c.ScalarSize
}

// Bytes encodes Proof1 || Proof2.
func (ua *UnRevokedAttestation) Bytes(c *algebra.Curve) []byte {
	var buff bytes.Buffer
	buff.Write(ua.Proof1.Bytes(c))
	buff.Write(ua.Proof2.Bytes(c))
	return buff.Bytes()
}

func unRevokedAttestationSize(c *algebra.Curve) int {
	return 2 * zkp.Size[algebra.GT](c, algebra.GTGroup{C: c})
}

// Bytes encodes the platform attestation followed by the unrevoked attestations.
// Their number is implied by the length of the encoding.
func (sig *Signature) Bytes(c *algebra.Curve) []byte {
	var buff bytes.Buffer
	buff.Write(sig.Attestation.Bytes(c))
	for i := range sig.UnRevokedAttestations {
		buff.Write(sig.UnRevokedAttestations[i].Bytes(c))
	}
	return buff.Bytes()
}

// DecodeSignature decodes a signature encoded by Signature.Bytes.
func DecodeSignature(c *algebra.Curve, raw []byte) (*Signature, error) {
	attSize := platformAttestationSize(c)
	uaSize := unRevokedAttestationSize(c)
	if len(raw) < attSize || (len(raw)-attSize)%uaSize != 0 {
		return nil, errors.Wrapf(ErrMalformed, "signature of %d bytes is not %d bytes plus a multiple of %d bytes",
			len(raw), attSize, uaSize)
	}

	d := &decoder{c: c, raw: raw}
	sig := &Signature{
		Attestation: PlatformAttestation{
			B:  d.gt(),
			K:  d.gt(),
			T:  d.g1(),
			SX: d.scalar(),
			SF: d.scalar(),
			SA: d.scalar(),
			SB: d.scalar(),
			C:  d.scalar(),
		},
		UnRevokedAttestations: make([]UnRevokedAttestation, (len(raw)-attSize)/uaSize),
	}

	for i := range sig.UnRevokedAttestations {
		sig.UnRevokedAttestations[i] = UnRevokedAttestation{
			Proof1: d.gtProof(),
			Proof2: d.gtProof(),
		}
	}

	if err := d.finish("signature"); err != nil {
		return nil, err
	}
	return sig, nil
}

// Bytes encodes B || K.
func (e RevocationEntry) Bytes() []byte {
	var buff bytes.Buffer
	buff.Write(e.B.Bytes())
	buff.Write(e.K.Bytes())
	return buff.Bytes()
}

// Bytes encodes the entries one after the other.
func (rl RevocationList) Bytes() []byte {
	var buff bytes.Buffer
	for _, e := range rl {
		buff.Write(e.Bytes())
	}
	return buff.Bytes()
}

// DecodeRevocationList decodes a list encoded by RevocationList.Bytes.
func DecodeRevocationList(c *algebra.Curve, raw []byte) (RevocationList, error) {
	entrySize := 2 * c.GTSize
	if len(raw)%entrySize != 0 {
		return nil, errors.Wrapf(ErrMalformed, "revocation list of %d bytes is not a multiple of %d bytes", len(raw), entrySize)
	}

	d := &decoder{c: c, raw: raw}
	rl := make(RevocationList, len(raw)/entrySize)
	for i := range rl {
		rl[i] = RevocationEntry{B: d.gt(), K: d.gt()}
	}

	if err := d.finish("revocation list"); err != nil {
		return nil, err
	}
	return rl, nil
}

func writeScalars(buff *bytes.Buffer, c *algebra.Curve, scalars ...*math.Zr) {
	for _, z := range scalars {
		buff.Write(c.ScalarBytes(z))
	}
}

// decoder reads fields one after the other and keeps the first error,
// after which every read returns a zero value.
type decoder struct {
	c   *algebra.Curve
	raw []byte
	err error
}

func (d *decoder) next(n int, what string) []byte {
	if d.err != nil {
		return nil
	}
	if len(d.raw) < n {
		d.err = errors.Errorf("%s should be %d bytes but only %d bytes are left", what, n, len(d.raw))
		return nil
	}
	b := d.raw[:n]
	d.raw = d.raw[n:]
	return b
}

func (d *decoder) scalar() *math.Zr {
	raw := d.next(d.c.ScalarSize, "scalar")
	if d.err != nil {
		return nil
	}
	z, err := d.c.ScalarFromBytes(raw)
	d.err = err
	return z
}

func (d *decoder) g1() algebra.G1 {
	raw := d.next(d.c.G1Size, "G1 element")
	if d.err != nil {
		return algebra.G1{}
	}
	p, err := algebra.G1Group{C: d.c}.FromBytes(raw)
	d.err = err
	return p
}

func (d *decoder) g2() *math.G2 {
	raw := d.next(d.c.G2Size, "G2 element")
	if d.err != nil {
		return nil
	}
	p, err := d.c.G2FromBytes(raw)
	d.err = err
	return p
}

func (d *decoder) gt() algebra.GT {
	raw := d.next(d.c.GTSize, "GT element")
	if d.err != nil {
		return algebra.GT{}
	}
	e, err := algebra.GTGroup{C: d.c}.FromBytes(raw)
	d.err = err
	return e
}

func (d *decoder) g1Proof() *zkp.Proof[algebra.G1] {
	g := algebra.G1Group{C: d.c}
	raw := d.next(zkp.Size[algebra.G1](d.c, g), "proof")
	if d.err != nil {
		return nil
	}
	π, err := zkp.FromBytes[algebra.G1](d.c, g, raw)
	d.err = err
	return π
}

func (d *decoder) gtProof() *zkp.Proof[algebra.GT] {
	g := algebra.GTGroup{C: d.c}
	raw := d.next(zkp.Size[algebra.GT](d.c, g), "proof")
	if d.err != nil {
		return nil
	}
	π, err := zkp.FromBytes[algebra.GT](d.c, g, raw)
	d.err = err
	return π
}

func (d *decoder) finish(what string) error {
	if d.err == nil && len(d.raw) != 0 {
		d.err = errors.Errorf("%d trailing bytes", len(d.raw))
	}
	if d.err != nil {
		return errors.Wrapf(ErrMalformed, "failed decoding %s: %v", what, d.err)
	}
	return nil
}
