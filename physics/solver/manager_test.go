// Copyright 2016 The G3N Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package solver

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tachyon3d/engine/physics/constraint"
	"github.com/tachyon3d/engine/physics/object"
)

func makePair(v2 mgl32.Vec3) ([2]*object.Body, *constraint.Distance) {
	properties := object.NewProperties(1, mgl32.Ident3())
	b1 := object.NewBody(properties, object.State{Position: mgl32.Vec3{0, 0, 0}})
	b2 := object.NewBody(properties, object.State{
		Position:       mgl32.Vec3{2, 0, 0},
		LinearVelocity: v2,
	})
	bodies := [2]*object.Body{b1, b2}
	return bodies, constraint.NewDistance(bodies)
}

func TestManagerAddRemove(t *testing.T) {

	m := NewManager(10)
	bodies, d := makePair(mgl32.Vec3{})

	m.AddConstraint(d)
	assert.Equal(t, 1, m.NumConstraints())

	assert.True(t, m.RemoveConstraint(d))
	assert.False(t, m.RemoveConstraint(d))
	assert.Equal(t, 0, m.NumConstraints())

	m.AddConstraint(d)
	m.RemoveBody(bodies[0])
	assert.Equal(t, 0, m.NumConstraints())
}

func TestManagerCancelsRelativeVelocity(t *testing.T) {

	bodies, d := makePair(mgl32.Vec3{1, 0, 0})

	m := NewManager(10)
	m.AddConstraint(d)
	m.Update(0.016)

	// Equal masses split the closing velocity symmetrically
	v1 := bodies[0].State().LinearVelocity
	v2 := bodies[1].State().LinearVelocity
	assert.InDelta(t, 0.5, float64(v1.X()), 1e-3)
	assert.InDelta(t, 0.5, float64(v2.X()), 1e-3)

	// The solver integrates each corrected body's position exactly once,
	// with the corrected velocity
	assert.InDelta(t, 0.5*0.016, float64(bodies[0].State().Position.X()), 1e-4)
	assert.InDelta(t, 2+0.5*0.016, float64(bodies[1].State().Position.X()), 1e-4)

	// The solved impulse is stored for warm starting
	assert.NotZero(t, d.Lambda())
	assert.True(t, bodies[0].Status(object.StatusConstraintsSolved))
	assert.False(t, bodies[0].Status(object.StatusSleeping))
}

func TestManagerSkipsSleepingPairs(t *testing.T) {

	bodies, d := makePair(mgl32.Vec3{})

	m := NewManager(10)
	m.AddConstraint(d)
	m.Update(0.016) // consumes the wake added with the constraint

	for _, body := range bodies {
		body.SetStatus(object.StatusSleeping, true)
		body.SetStatus(object.StatusIntegrated, false)
		body.SetStatus(object.StatusConstraintsSolved, false)
	}

	m.Update(0.016)
	require.False(t, bodies[0].Status(object.StatusConstraintsSolved))
	require.False(t, bodies[1].Status(object.StatusConstraintsSolved))
	assert.True(t, bodies[0].Status(object.StatusSleeping))
}

func TestManagerInfiniteMassAnchor(t *testing.T) {

	static := object.NewBody(object.NewStaticProperties(), object.State{})
	dynamic := object.NewBody(
		object.NewProperties(1, mgl32.Ident3()),
		object.State{Position: mgl32.Vec3{2, 0, 0}, LinearVelocity: mgl32.Vec3{1, 0, 0}},
	)

	d := constraint.NewDistance([2]*object.Body{static, dynamic})

	m := NewManager(10)
	m.AddConstraint(d)
	m.Update(0.016)

	// The static anchor absorbs nothing: the dynamic body loses the
	// whole closing velocity
	assert.Equal(t, mgl32.Vec3{}, static.State().LinearVelocity)
	assert.InDelta(t, 0, float64(dynamic.State().LinearVelocity.X()), 1e-3)
}
