/*
Copyright IBM Corp. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package epid

import "github.com/pkg/errors"

var (
	// ErrRandomness is returned when the randomness source fails. It is not retryable.
	ErrRandomness = errors.New("randomness source failed")

	// ErrInvalidJoinProof is returned by the issuer when a join request does not prove
	// knowledge of the opening of its commitment.
	ErrInvalidJoinProof = errors.New("invalid join proof")
	// ErrCredentialVerificationFailed is returned when a credential does not satisfy
	// e(A, w + g2*x) = e(g1 + h1*f + h2*y, g2).
	ErrCredentialVerificationFailed = errors.New("credential verification failed")

	ErrChallengeMismatch          = errors.New("challenge mismatch")
	ErrNonRevocationProof1Invalid = errors.New("first non-revocation proof is invalid")
	ErrNonRevocationProof2Invalid = errors.New("second non-revocation proof is invalid")
	// ErrRevokedSigner is returned when a signature is valid but was produced by a member
	// whose pseudonym is on the revocation list.
	ErrRevokedSigner          = errors.New("signer is revoked")
	ErrRevocationListMismatch = errors.New("signature does not match revocation list")

	// ErrMalformed is returned for structures with missing fields or invalid encodings.
	ErrMalformed = errors.New("malformed input")
)
