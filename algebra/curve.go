/*
Copyright IBM Corp. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package algebra

import (
	"crypto/sha256"
	"fmt"
	"io"
	"sort"

	math "github.com/IBM/mathlib"
)

// DefaultCurve is the curve used when none is configured.
const DefaultCurve = "BN254"

// Indices into math.Curves.
var curveIndices = map[string]int{
	"FP256BN_AMCL":        0,
	"BN254":               1,
	"FP256BN_AMCL_MIRACL": 2,
	"BLS12_381":           3,
	"BLS12_377_GURVY":     4,
	"BLS12_381_GURVY":     5,
}

// Curve binds a mathlib curve together with the encoding sizes and the
// canonical pairing target generator e(g1, g2) the protocol works with.
type Curve struct {
	C    *math.Curve
	Name string

	zero, one *math.Zr
	gt        *math.Gt

	ScalarSize int
	G1Size     int
	G2Size     int
	GTSize     int
}

// CurveNames returns the names accepted by CurveByName, sorted.
func CurveNames() []string {
	names := make([]string, 0, len(curveIndices))
	for name := range curveIndices {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// CurveByName returns the curve registered under the given name.
func CurveByName(name string) (*Curve, error) {
	i, exists := curveIndices[name]
	if !exists || i >= len(math.Curves) {
		return nil, fmt.Errorf("unknown curve %q, expected one of %v", name, CurveNames())
	}
	return NewCurve(math.Curves[i], name), nil
}

// NewCurve wraps a mathlib curve.
func NewCurve(c *math.Curve, name string) *Curve {
	crv := &Curve{
		C:    c,
		Name: name,
		zero: c.NewZrFromInt(0),
		one:  c.NewZrFromInt(1),
	}

	crv.gt = c.FExp(c.Pairing(c.GenG2, c.GenG1))

	// q-1 occupies the full width whether or not the driver pads its encodings
	crv.ScalarSize = len(c.ModNeg(crv.one, c.GroupOrder).Bytes())
	crv.G1Size = len(c.GenG1.Bytes())
	crv.G2Size = len(c.GenG2.Bytes())
	crv.GTSize = len(crv.gt.Bytes())

	return crv
}

// GenG1 returns the canonical generator of G1.
func (c *Curve) GenG1() G1 {
	return G1{c: c, p: c.C.GenG1.Copy()}
}

// GenG2 returns the canonical generator of G2.
func (c *Curve) GenG2() *math.G2 {
	return c.C.GenG2.Copy()
}

// GenGT returns e(g1, g2), the generator of GT used by the protocol.
func (c *Curve) GenGT() GT {
	return GT{c: c, e: c.gt.Exp(c.one)}
}

// Pair computes the reduced pairing e(p, q).
func (c *Curve) Pair(p G1, q *math.G2) GT {
	return GT{c: c, e: c.C.FExp(c.C.Pairing(q, p.p))}
}

// PairingCheck reports whether e(p1, q1) = e(p2, q2).
func (c *Curve) PairingCheck(p1 G1, q1 *math.G2, p2 G1, q2 *math.G2) bool {
	shouldBeOne := c.C.Pairing2(q1, p1.p, q2, p2.Neg().p)
	shouldBeOne = c.C.FExp(shouldBeOne)
	return shouldBeOne.IsUnity()
}

// NewRandomZr draws a uniformly random scalar.
func (c *Curve) NewRandomZr(rng io.Reader) *math.Zr {
	return c.C.NewRandomZr(rng)
}

// NewRandomNonZeroZr draws a uniformly random non-zero scalar.
func (c *Curve) NewRandomNonZeroZr(rng io.Reader) *math.Zr {
	for {
		z := c.C.NewRandomZr(rng)
		if !c.IsZero(z) {
			return z
		}
	}
}

func (c *Curve) Zero() *math.Zr {
	return c.zero.Copy()
}

func (c *Curve) IsZero(z *math.Zr) bool {
	return z.Equals(c.zero)
}

// Add returns a + b mod q.
func (c *Curve) Add(a, b *math.Zr) *math.Zr {
	return c.C.ModAdd(a, b, c.C.GroupOrder)
}

// Sub returns a - b mod q.
func (c *Curve) Sub(a, b *math.Zr) *math.Zr {
	return c.C.ModSub(a, b, c.C.GroupOrder)
}

// Mul returns a * b mod q.
func (c *Curve) Mul(a, b *math.Zr) *math.Zr {
	return c.C.ModMul(a, b, c.C.GroupOrder)
}

// Neg returns -a mod q.
func (c *Curve) Neg(a *math.Zr) *math.Zr {
	return c.C.ModNeg(a, c.C.GroupOrder)
}

// Inv returns 1/a mod q. It panics when a is zero, callers check first.
func (c *Curve) Inv(a *math.Zr) *math.Zr {
	if c.IsZero(a) {
		panic("programming error: inverse of zero")
	}
	inv := a.Copy()
	inv.InvModP(c.C.GroupOrder)
	return inv
}

// MulAdd returns r + b*x mod q, the shape of every Schnorr response.
func (c *Curve) MulAdd(r, b, x *math.Zr) *math.Zr {
	return c.Add(r, c.Mul(b, x))
}

// ScalarBytes encodes a scalar on exactly ScalarSize bytes, big endian.
func (c *Curve) ScalarBytes(z *math.Zr) []byte {
	reduced := z.Copy()
	reduced.Mod(c.C.GroupOrder)
	raw := reduced.Bytes()
	if len(raw) >= c.ScalarSize {
		return raw[len(raw)-c.ScalarSize:]
	}
	buff := make([]byte, c.ScalarSize)
	copy(buff[c.ScalarSize-len(raw):], raw)
	return buff
}

// ScalarFromBytes decodes a scalar encoded by ScalarBytes.
func (c *Curve) ScalarFromBytes(raw []byte) (*math.Zr, error) {
	if len(raw) != c.ScalarSize {
		return nil, fmt.Errorf("scalar should be %d bytes but is %d bytes", c.ScalarSize, len(raw))
	}
	z := c.C.NewZrFromBytes(raw)
	z.Mod(c.C.GroupOrder)
	return z, nil
}

// G2FromBytes decodes a G2 element.
func (c *Curve) G2FromBytes(raw []byte) (*math.G2, error) {
	if len(raw) != c.G2Size {
		return nil, fmt.Errorf("G2 element should be %d bytes but is %d bytes", c.G2Size, len(raw))
	}
	return c.C.NewG2FromBytes(raw)
}

// HashToZr is the random oracle of every Fiat-Shamir challenge:
// the SHA-256 digest of the concatenated inputs, read big endian modulo the group order.
func (c *Curve) HashToZr(in ...[]byte) *math.Zr {
	hash := sha256.New()
	for _, b := range in {
		hash.Write(b)
	}
	z := c.C.NewZrFromBytes(hash.Sum(nil))
	z.Mod(c.C.GroupOrder)
	return z
}
