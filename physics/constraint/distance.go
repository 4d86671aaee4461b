// Copyright 2016 The G3N Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package constraint

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/tachyon3d/engine/physics/object"
)

// Distance is an equality constraint that keeps the distance between two
// body-local anchor points at a target length. The target defaults to
// the anchor distance at the moment the anchors are set.
type Distance struct {
	Base
	localAnchors [2]mgl32.Vec3
	length       float32
	stiffness    float32
}

// NewDistance creates and returns a pointer to a new Distance constraint
// between the given bodies, anchored at their centers of mass.
func NewDistance(bodies [2]*object.Body) *Distance {

	d := new(Distance)
	d.Base = NewBase(bodies)
	d.stiffness = 0.1
	d.length = d.currentDistance()
	return d
}

// SetAnchorPoints sets the body-local anchor points of the constraint and
// retargets the constraint to their current distance.
func (d *Distance) SetAnchorPoints(anchors [2]mgl32.Vec3) {

	d.localAnchors = anchors
	d.length = d.currentDistance()
}

// Length returns the target length of the constraint.
func (d *Distance) Length() float32 {

	return d.length
}

// SetLength sets the target length of the constraint.
func (d *Distance) SetLength(length float32) {

	d.length = length
}

// anchorsWorld returns the world positions of both anchors and the world
// arms from each body center to its anchor.
func (d *Distance) anchorsWorld() (p [2]mgl32.Vec3, r [2]mgl32.Vec3) {

	bodies := d.RigidBodies()
	for i := 0; i < 2; i++ {
		state := bodies[i].State()
		r[i] = state.Orientation.Rotate(d.localAnchors[i])
		p[i] = state.Position.Add(r[i])
	}
	return p, r
}

// direction returns the unit vector from the first anchor to the second
// and the current anchor distance.
func (d *Distance) direction() (mgl32.Vec3, float32) {

	p, _ := d.anchorsWorld()
	delta := p[1].Sub(p[0])
	distance := delta.Len()
	if distance < 1e-6 {
		return mgl32.Vec3{1, 0, 0}, distance
	}
	return delta.Mul(1 / distance), distance
}

func (d *Distance) currentDistance() float32 {

	_, distance := d.direction()
	return distance
}

// Jacobian satisfies the IConstraint interface.
func (d *Distance) Jacobian() [12]float32 {

	dir, _ := d.direction()
	_, r := d.anchorsWorld()

	jv1 := dir.Mul(-1)
	jw1 := r[0].Cross(dir).Mul(-1)
	jv2 := dir
	jw2 := r[1].Cross(dir)
	return jacobianRow(jv1, jw1, jv2, jw2)
}

// Bias satisfies the IConstraint interface: a stiffness-scaled pull
// toward the target length.
func (d *Distance) Bias() float32 {

	_, distance := d.direction()
	return d.stiffness * (d.length - distance)
}

// Bounds satisfies the IConstraint interface.
func (d *Distance) Bounds() Bounds {

	return Unbounded()
}
