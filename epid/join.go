/*
Copyright IBM Corp. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package epid

import (
	"io"
	"sync"

	"github.com/IBM/epid/algebra"
	"github.com/IBM/epid/zkp"
	math "github.com/IBM/mathlib"
	"github.com/pkg/errors"
)

// JoinRequest commits to the platform secret: T = h1*f + h2*y'.
// Proof proves knowledge of (f, y').
type JoinRequest struct {
	T     algebra.G1
	Proof *zkp.Proof[algebra.G1]
}

// JoinResponse carries the issuer's share of the credential.
type JoinResponse struct {
	A           algebra.G1
	X           *math.Zr
	YPrimePrime *math.Zr
}

// platformState is one of uninitialized, awaitingResponse or joined.
type platformState interface {
	name() string
}

type uninitialized struct{}

type awaitingResponse struct {
	f, yPrime *math.Zr
}

type joined struct {
	cred *Credential
}

func (uninitialized) name() string    { return "uninitialized" }
func (awaitingResponse) name() string { return "awaiting response" }
func (joined) name() string           { return "joined" }

// Platform is a member of the group. It obtains its credential through
// BeginJoin and CompleteJoin, after which it can Sign.
type Platform struct {
	Logger Logger
	// Workers bounds the goroutines proving non-revocation, 0 means runtime.NumCPU().
	Workers int

	pp *PublicParameters

	lock  sync.Mutex
	state platformState
}

// NewPlatform creates a platform that has not joined yet.
func NewPlatform(pp *PublicParameters) *Platform {
	return &Platform{pp: pp, state: uninitialized{}}
}

// NewPlatformFromCredential creates a platform out of a credential obtained earlier.
func NewPlatformFromCredential(pp *PublicParameters, cred *Credential) (*Platform, error) {
	if err := cred.Verify(pp); err != nil {
		return nil, err
	}
	return &Platform{pp: pp, state: joined{cred: cred}}, nil
}

// BeginJoin draws the platform secret and returns the request to send to the issuer.
// Calling it again before CompleteJoin discards the previous request.
func (p *Platform) BeginJoin(rng io.Reader) (*JoinRequest, error) {
	p.lock.Lock()
	defer p.lock.Unlock()

	if _, isJoined := p.state.(joined); isJoined {
		panic("programming error: platform already joined")
	}

	c := p.pp.curve

	var req *JoinRequest
	var f, yPrime *math.Zr

	err := withRandomness(rng, func(rng io.Reader) error {
		f = c.NewRandomZr(rng)
		yPrime = c.NewRandomZr(rng)

		T := p.pp.H1.Mul2(f, p.pp.H2, yPrime)

		req = &JoinRequest{
			T:     T,
			Proof: zkp.Prove(c, f, yPrime, p.pp.H1, p.pp.H2, T, rng),
		}
		return nil
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed creating join request")
	}

	loggerOrNop(p.Logger).Debugf("Join request created, was %s", p.state.name())

	p.state = awaitingResponse{f: f, yPrime: yPrime}

	return req, nil
}

// CompleteJoin assembles the credential out of the issuer's response and checks it.
// On failure the platform returns to its initial state and must start over.
func (p *Platform) CompleteJoin(resp *JoinResponse) (*Credential, error) {
	p.lock.Lock()
	defer p.lock.Unlock()

	awaiting, isAwaiting := p.state.(awaitingResponse)
	if !isAwaiting {
		panic("programming error: CompleteJoin called while " + p.state.name())
	}

	p.state = uninitialized{}

	logger := loggerOrNop(p.Logger)

	if resp == nil || resp.A.IsNil() || resp.X == nil || resp.YPrimePrime == nil {
		logger.Warnf("Received incomplete join response")
		return nil, errors.Wrap(ErrMalformed, "incomplete join response")
	}

	cred := &Credential{
		A: resp.A,
		X: resp.X,
		Y: p.pp.curve.Add(awaiting.yPrime, resp.YPrimePrime),
		F: awaiting.f,
	}

	if err := cred.Verify(p.pp); err != nil {
		logger.Warnf("Issuer returned an invalid credential: %v", err)
		return nil, err
	}

	p.state = joined{cred: cred}

	logger.Debugf("Joined")

	return cred, nil
}

// Credential returns the credential of a joined platform, or nil.
func (p *Platform) Credential() *Credential {
	p.lock.Lock()
	defer p.lock.Unlock()

	if j, isJoined := p.state.(joined); isJoined {
		return j.cred
	}
	return nil
}

func (p *Platform) credential() *Credential {
	cred := p.Credential()
	if cred == nil {
		panic("programming error: platform has not joined")
	}
	return cred
}
