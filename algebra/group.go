/*
Copyright IBM Corp. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package algebra

import (
	"fmt"

	math "github.com/IBM/mathlib"
)

// Element is the capability set a group needs for the compound proof engine.
// The group law is written additively: Add is the group operation and Mul is
// repeated application of it, which for GT means multiplication and exponentiation.
// Elements are immutable, every operation returns a fresh value.
type Element[E any] interface {
	Add(E) E
	Neg() E
	Mul(*math.Zr) E
	Equals(E) bool
	IsIdentity() bool
	IsNil() bool
	Bytes() []byte
}

// Group decodes elements of a group from their fixed-length encoding.
type Group[E Element[E]] interface {
	Identity() E
	ElementSize() int
	FromBytes([]byte) (E, error)
}

// G1 is an element of the first source group.
type G1 struct {
	c *Curve
	p *math.G1
}

// NewG1 wraps a mathlib G1 point.
func (c *Curve) NewG1(p *math.G1) G1 {
	return G1{c: c, p: p.Copy()}
}

func (a G1) Add(b G1) G1 {
	r := a.p.Copy()
	r.Add(b.p)
	return G1{c: a.c, p: r}
}

func (a G1) Neg() G1 {
	// Make r be zero, then subtract a from zero
	r := a.c.C.GenG1.Copy()
	r.Sub(r)
	r.Sub(a.p)
	return G1{c: a.c, p: r}
}

func (a G1) Mul(z *math.Zr) G1 {
	return G1{c: a.c, p: a.p.Mul(z)}
}

// Mul2 returns a*x + b*y.
func (a G1) Mul2(x *math.Zr, b G1, y *math.Zr) G1 {
	return G1{c: a.c, p: a.p.Mul2(x, b.p, y)}
}

func (a G1) Equals(b G1) bool {
	if a.p == nil || b.p == nil {
		return a.p == b.p
	}
	return a.p.Equals(b.p)
}

func (a G1) IsIdentity() bool {
	return a.Equals(G1Group{C: a.c}.Identity())
}

func (a G1) Bytes() []byte {
	return a.p.Bytes()
}

// Point exposes the underlying mathlib point.
func (a G1) Point() *math.G1 {
	return a.p
}

// IsNil reports whether the element was never set.
func (a G1) IsNil() bool {
	return a.p == nil
}

// GT is an element of the pairing target group.
type GT struct {
	c *Curve
	e *math.Gt
}

func (a GT) copy() *math.Gt {
	return a.e.Exp(a.c.one)
}

func (a GT) Add(b GT) GT {
	r := a.copy()
	r.Mul(b.e)
	return GT{c: a.c, e: r}
}

func (a GT) Neg() GT {
	r := a.copy()
	r.Inverse()
	return GT{c: a.c, e: r}
}

// Mul returns the identity for a zero exponent whatever the driver does with it.
func (a GT) Mul(z *math.Zr) GT {
	reduced := z.Copy()
	reduced.Mod(a.c.C.GroupOrder)
	if a.c.IsZero(reduced) {
		return GTGroup{C: a.c}.Identity()
	}
	return GT{c: a.c, e: a.e.Exp(reduced)}
}

func (a GT) Equals(b GT) bool {
	if a.e == nil || b.e == nil {
		return a.e == b.e
	}
	return a.e.Equals(b.e)
}

func (a GT) IsIdentity() bool {
	return a.e != nil && a.e.IsUnity()
}

func (a GT) Bytes() []byte {
	return a.e.Bytes()
}

// IsNil reports whether the element was never set.
func (a GT) IsNil() bool {
	return a.e == nil
}

// G1Group decodes G1 elements.
type G1Group struct {
	C *Curve
}

func (g G1Group) Identity() G1 {
	zero := g.C.C.GenG1.Copy()
	zero.Sub(zero)
	return G1{c: g.C, p: zero}
}

func (g G1Group) ElementSize() int {
	return g.C.G1Size
}

func (g G1Group) FromBytes(raw []byte) (G1, error) {
	if len(raw) != g.C.G1Size {
		return G1{}, fmt.Errorf("G1 element should be %d bytes but is %d bytes", g.C.G1Size, len(raw))
	}
	p, err := g.C.C.NewG1FromBytes(raw)
	if err != nil {
		return G1{}, err
	}
	return G1{c: g.C, p: p}, nil
}

// GTGroup decodes GT elements.
type GTGroup struct {
	C *Curve
}

func (g GTGroup) Identity() GT {
	// Not every driver maps a zero exponent to the unity
	gen := g.C.GenGT()
	return gen.Add(gen.Neg())
}

func (g GTGroup) ElementSize() int {
	return g.C.GTSize
}

func (g GTGroup) FromBytes(raw []byte) (GT, error) {
	if len(raw) != g.C.GTSize {
		return GT{}, fmt.Errorf("GT element should be %d bytes but is %d bytes", g.C.GTSize, len(raw))
	}
	e, err := g.C.C.NewGtFromBytes(raw)
	if err != nil {
		return GT{}, err
	}
	return GT{c: g.C, e: e}, nil
}
