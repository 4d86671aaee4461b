// Copyright 2016 The G3N Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package constraint implements the velocity-level constraints consumed
// by the projected Gauss-Seidel solver. Each constraint exposes a
// 12-wide Jacobian row over its two bodies, a bias scalar, impulse
// bounds and the impulse solved in the previous tick for warm starting.
package constraint

import (
	"math"

	"github.com/tachyon3d/engine/physics/object"
)

// Bounds holds the clamping interval of a constraint impulse.
type Bounds struct {
	Min float32
	Max float32
}

// Unbounded returns the bounds of a bilateral constraint.
func Unbounded() Bounds {

	return Bounds{
		Min: float32(math.Inf(-1)),
		Max: float32(math.Inf(1)),
	}
}

// IConstraint is the interface for all constraint types. The Jacobian
// row is laid out as [Jv1 Jw1 Jv2 Jw2]; its entries, the bias and the
// bounds are recomputed from the current body state each time they are
// queried.
type IConstraint interface {
	RigidBodies() [2]*object.Body
	Jacobian() [12]float32
	Bias() float32
	Bounds() Bounds
	Lambda() float32
	SetLambda(lambda float32)
}

// Base carries the pieces shared by every constraint implementation.
type Base struct {
	bodies [2]*object.Body
	lambda float32
}

// NewBase returns a Base over the given pair of bodies.
func NewBase(bodies [2]*object.Body) Base {

	return Base{bodies: bodies}
}

// RigidBodies returns the two constrained bodies.
func (b *Base) RigidBodies() [2]*object.Body {

	return b.bodies
}

// Lambda returns the impulse solved in the previous tick.
func (b *Base) Lambda() float32 {

	return b.lambda
}

// SetLambda stores the solved impulse for warm starting the next tick.
func (b *Base) SetLambda(lambda float32) {

	b.lambda = lambda
}

// jacobianRow packs the four 3-vectors of a constraint row.
func jacobianRow(jv1, jw1, jv2, jw2 [3]float32) [12]float32 {

	var row [12]float32
	copy(row[0:3], jv1[:])
	copy(row[3:6], jw1[:])
	copy(row[6:9], jv2[:])
	copy(row[9:12], jw2[:])
	return row
}
