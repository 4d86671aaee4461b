// Copyright 2016 The G3N Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package constraint

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"

	"github.com/tachyon3d/engine/physics/object"
)

func twoBodies() [2]*object.Body {
	properties := object.NewProperties(1, mgl32.Ident3())
	b1 := object.NewBody(properties, object.State{Position: mgl32.Vec3{0, 0, 0}})
	b2 := object.NewBody(properties, object.State{Position: mgl32.Vec3{2, 0, 0}})
	return [2]*object.Body{b1, b2}
}

func TestDistanceJacobian(t *testing.T) {

	d := NewDistance(twoBodies())
	assert.InDelta(t, 2, float64(d.Length()), 1e-6)

	j := d.Jacobian()
	// Bodies separated along X with centered anchors: pure linear row
	expected := [12]float32{-1, 0, 0, 0, 0, 0, 1, 0, 0, 0, 0, 0}
	for i := 0; i < 12; i++ {
		assert.InDelta(t, float64(expected[i]), float64(j[i]), 1e-6)
	}
	assert.InDelta(t, 0, float64(d.Bias()), 1e-6)

	bounds := d.Bounds()
	assert.True(t, math.IsInf(float64(bounds.Min), -1))
	assert.True(t, math.IsInf(float64(bounds.Max), 1))
}

func TestDistanceBiasPullsTowardTarget(t *testing.T) {

	d := NewDistance(twoBodies())
	d.SetLength(1.5)
	// Stretched past the target: the bias demands a closing velocity
	assert.Less(t, float64(d.Bias()), 0.0)
}

func TestNormalContactRow(t *testing.T) {

	bodies := twoBodies()
	nc := NewNormalContact(bodies, 0.2, 0)
	normal := mgl32.Vec3{1, 0, 0}
	point := mgl32.Vec3{1, 0, 0}
	nc.SetContactData(point, normal, 0.1)

	j := nc.Jacobian()
	expected := [12]float32{-1, 0, 0, 0, 0, 0, 1, 0, 0, 0, 0, 0}
	for i := 0; i < 12; i++ {
		assert.InDelta(t, float64(expected[i]), float64(j[i]), 1e-6)
	}

	// Baumgarte bias proportional to penetration, impulse only pushes
	assert.InDelta(t, 0.02, float64(nc.Bias()), 1e-6)
	bounds := nc.Bounds()
	assert.Equal(t, float32(0), bounds.Min)
	assert.True(t, math.IsInf(float64(bounds.Max), 1))
}

func TestNormalContactSlop(t *testing.T) {

	nc := NewNormalContact(twoBodies(), 0.2, 0.05)
	nc.SetContactData(mgl32.Vec3{1, 0, 0}, mgl32.Vec3{1, 0, 0}, 0.01)
	assert.Equal(t, float32(0), nc.Bias())
}

func TestFrictionBoundsFollowNormalLambda(t *testing.T) {

	nc := NewNormalContact(twoBodies(), 0.2, 0)
	nc.SetContactData(mgl32.Vec3{1, 0, 0}, mgl32.Vec3{1, 0, 0}, 0.1)
	fc := NewFrictionContact(nc, 0.5)
	t1, t2 := ContactTangents(mgl32.Vec3{1, 0, 0})
	fc.SetTangent(t1)

	// Tangents are unit, orthogonal to the normal and to each other
	assert.InDelta(t, 1, float64(t1.Len()), 1e-6)
	assert.InDelta(t, 0, float64(t1.Dot(mgl32.Vec3{1, 0, 0})), 1e-6)
	assert.InDelta(t, 0, float64(t1.Dot(t2)), 1e-6)

	bounds := fc.Bounds()
	assert.Equal(t, float32(0), bounds.Min)
	assert.Equal(t, float32(0), bounds.Max)

	nc.SetLambda(4)
	bounds = fc.Bounds()
	assert.Equal(t, float32(-2), bounds.Min)
	assert.Equal(t, float32(2), bounds.Max)
}
