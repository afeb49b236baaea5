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

// Issuer admits platforms into the group.
type Issuer struct {
	Logger Logger

	pp  *PublicParameters
	isk *IssuerSecretKey
}

// NewIssuer creates an issuer with freshly generated parameters.
func NewIssuer(c *algebra.Curve, rng io.Reader) (*Issuer, error) {
	pp, isk, err := Setup(c, rng)
	if err != nil {
		return nil, err
	}
	return &Issuer{pp: pp, isk: isk}, nil
}

// NewIssuerFromKeys creates an issuer out of existing parameters and the secret key they were generated with.
func NewIssuerFromKeys(pp *PublicParameters, isk *IssuerSecretKey) (*Issuer, error) {
	if pp == nil || isk == nil || isk.Gamma == nil {
		return nil, errors.Wrap(ErrMalformed, "nil issuer keys")
	}

	if !pp.G2.Mul(isk.Gamma).Equals(pp.W) {
		return nil, errors.New("issuer secret key does not match public parameters")
	}

	return &Issuer{pp: pp, isk: isk}, nil
}

// PublicParameters returns the parameters to hand out to platforms and verifiers.
func (is *Issuer) PublicParameters() *PublicParameters {
	return is.pp
}

// RespondJoin checks the proof of a join request and issues the credential
// A = (g1 + T + h2*y'')/(x + gamma) for a random x and y''.
func (is *Issuer) RespondJoin(req *JoinRequest, rng io.Reader) (*JoinResponse, error) {
	logger := loggerOrNop(is.Logger)

	if err := is.checkJoinRequest(req); err != nil {
		logger.Warnf("Rejecting join request: %v", err)
		return nil, err
	}

	pp := is.pp
	c := pp.curve

	var resp *JoinResponse
	err := withRandomness(rng, func(rng io.Reader) error {
		var x, xPlusGamma *math.Zr
		for {
			x = c.NewRandomZr(rng)
			xPlusGamma = c.Add(x, is.isk.Gamma)
			if !c.IsZero(xPlusGamma) {
				break
			}
		}

		yPrimePrime := c.NewRandomZr(rng)

		A := pp.G1.Add(req.T).Add(pp.H2.Mul(yPrimePrime)).Mul(c.Inv(xPlusGamma))

		resp = &JoinResponse{A: A, X: x, YPrimePrime: yPrimePrime}
		return nil
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed issuing credential")
	}

	logger.Debugf("Issued credential for commitment %x", req.T.Bytes())

	return resp, nil
}

func (is *Issuer) checkJoinRequest(req *JoinRequest) error {
	if req == nil || req.T.IsNil() || req.Proof == nil {
		return errors.Wrap(ErrInvalidJoinProof, "incomplete join request")
	}

	if req.T.IsIdentity() {
		return errors.Wrap(ErrInvalidJoinProof, "commitment is the identity")
	}

	// The proof must be about the opening of T in base (h1, h2)
	π := req.Proof
	if !π.A1.Equals(is.pp.H1) || !π.A2.Equals(is.pp.H2) {
		return errors.Wrap(ErrInvalidJoinProof, "proof is not in base (h1, h2)")
	}

	if !π.Beta.Equals(req.T) {
		return errors.Wrap(ErrInvalidJoinProof, "proof is not about the commitment")
	}

	if err := π.Verify(is.pp.curve); err != nil {
		return errors.Wrap(ErrInvalidJoinProof, err.Error())
	}

	return nil
}
