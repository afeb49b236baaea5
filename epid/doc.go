/*
Copyright IBM Corp. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package epid implements an EPID style anonymous group signature scheme with
// member revocation over a bilinear pairing.
//
// An Issuer generates PublicParameters and admits Platforms through a two
// message join exchange at the end of which the Platform holds a BBS+ style
// Credential (A, x, y, f). A joined Platform signs messages anonymously, proving
// possession of a valid credential and, for every entry of a revocation list,
// that its secret f differs from the one of the revoked member. A Verifier
// needs only the PublicParameters to check a Signature against a revocation list.
//
// Revocation entries are (B, K) pseudonym pairs taken from signatures of the
// members being revoked, see RevocationEntryFromSignature.
package epid
