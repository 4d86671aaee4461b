// Copyright 2016 The G3N Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package physics

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tachyon3d/engine/collision"
	"github.com/tachyon3d/engine/physics/constraint"
	"github.com/tachyon3d/engine/physics/object"
)

const tolerance = 1e-4

func sphereInertia(mass, radius float32) mgl32.Mat3 {
	return mgl32.Ident3().Mul(2.0 / 5.0 * mass * radius * radius)
}

func TestVelocityIntegration(t *testing.T) {

	properties := object.NewProperties(3.5, sphereInertia(3.5, 2))
	properties.SleepMotion = 0.5

	state := object.State{
		Position:        mgl32.Vec3{-3, 2, -5},
		Orientation:     mgl32.Quat{W: 0.020926, V: mgl32.Vec3{0.841695, 0.296882, -0.450525}},
		LinearVelocity:  mgl32.Vec3{2.5, -2, -0.5},
		AngularVelocity: mgl32.Vec3{-0.13, -3.6, 10.125},
	}

	body := object.NewBody(properties, state)

	worldProperties := DefaultWorldProperties()
	worldProperties.MotionBias = 0.2
	world := NewWorld(worldProperties)
	world.AddRigidBody(body)

	world.Update(0.016)

	result := body.State()
	assert.InDelta(t, 3.203016869, float64(result.Motion), tolerance)

	expectedPosition := mgl32.Vec3{-2.96, 1.968, -5.008}
	expectedOrientation := mgl32.Quat{W: 0.066598400, V: mgl32.Vec3{0.827548027, 0.362650245, -0.423336178}}
	for i := 0; i < 3; i++ {
		assert.InDelta(t, float64(expectedPosition[i]), float64(result.Position[i]), tolerance)
		assert.InDelta(t, float64(state.LinearVelocity[i]), float64(result.LinearVelocity[i]), tolerance)
		assert.InDelta(t, float64(state.AngularVelocity[i]), float64(result.AngularVelocity[i]), tolerance)
		assert.InDelta(t, float64(expectedOrientation.V[i]), float64(result.Orientation.V[i]), tolerance)
	}
	assert.InDelta(t, float64(expectedOrientation.W), float64(result.Orientation.W), tolerance)
}

func TestForceIntegration(t *testing.T) {

	properties := object.NewProperties(4.512, sphereInertia(4.512, 2))
	properties.SleepMotion = 0.5

	state := object.State{
		Position:       mgl32.Vec3{-3.146, 2.95, -5.2},
		LinearVelocity: mgl32.Vec3{-0.13, -3.6, 10.125},
	}

	body := object.NewBody(properties, state)
	body.AddForce(NewDirectionalForce(mgl32.Vec3{8.11, -10.31, -6.8124}))

	worldProperties := DefaultWorldProperties()
	worldProperties.MotionBias = 0.2
	world := NewWorld(worldProperties)
	world.AddRigidBody(body)

	world.Update(0.016)

	result := body.State()
	assert.InDelta(t, 2.930218335, float64(result.Motion), tolerance)

	expectedPosition := mgl32.Vec3{-3.147619724, 2.891815185, -5.038386344}
	expectedLinearVelocity := mgl32.Vec3{-0.101241126, -3.636560201, 10.100842475}
	expectedLinearAcceleration := mgl32.Vec3{1.797428965, -2.285017728, -1.509840369}
	for i := 0; i < 3; i++ {
		assert.InDelta(t, float64(expectedPosition[i]), float64(result.Position[i]), tolerance)
		assert.InDelta(t, float64(expectedLinearVelocity[i]), float64(result.LinearVelocity[i]), tolerance)
		assert.InDelta(t, float64(expectedLinearAcceleration[i]), float64(result.LinearAcceleration[i]), tolerance)
	}
}

func TestTorqueIntegration(t *testing.T) {

	properties := object.NewProperties(3.953, sphereInertia(3.953, 2))
	properties.SleepMotion = 0.5

	state := object.State{
		Position:        mgl32.Vec3{5.373533248, -5.649199485, 3.746687889},
		Orientation:     mgl32.Quat{W: 0.812893509, V: mgl32.Vec3{0.441731840, -0.347656339, 0.152355521}},
		LinearVelocity:  mgl32.Vec3{-0.13, -3.6, 10.125},
		AngularVelocity: mgl32.Vec3{0.965, -2.0154, -7.849},
	}

	body := object.NewBody(properties, state)
	body.AddForce(NewPunctualForce(
		mgl32.Vec3{6.541, -12.451, 1.568},
		mgl32.Vec3{7.897511959, -4.030708312, 6.069702148},
	))

	worldProperties := DefaultWorldProperties()
	worldProperties.MotionBias = 0.2
	world := NewWorld(worldProperties)
	world.AddRigidBody(body)

	world.Update(0.016)

	result := body.State()
	assert.InDelta(t, 4.685478435, float64(result.Motion), tolerance)

	expectedPosition := mgl32.Vec3{5.371876716, -5.707605838, 3.908789396}
	expectedOrientation := mgl32.Quat{W: 0.811599493, V: mgl32.Vec3{0.423053562, -0.389114081, 0.104509316}}
	expectedLinearVelocity := mgl32.Vec3{-0.103524908, -3.650396108, 10.131346702}
	expectedAngularVelocity := mgl32.Vec3{1.044589281, -1.986972808, -7.955280303}
	expectedLinearAcceleration := mgl32.Vec3{1.654692649, -3.149759769, 0.396660745}
	expectedAngularAcceleration := mgl32.Vec3{4.974330902, 1.776694655, -6.642519950}
	for i := 0; i < 3; i++ {
		assert.InDelta(t, float64(expectedPosition[i]), float64(result.Position[i]), tolerance)
		assert.InDelta(t, float64(expectedLinearVelocity[i]), float64(result.LinearVelocity[i]), tolerance)
		assert.InDelta(t, float64(expectedAngularVelocity[i]), float64(result.AngularVelocity[i]), tolerance)
		assert.InDelta(t, float64(expectedLinearAcceleration[i]), float64(result.LinearAcceleration[i]), tolerance)
		assert.InDelta(t, float64(expectedAngularAcceleration[i]), float64(result.AngularAcceleration[i]), tolerance)
		assert.InDelta(t, float64(expectedOrientation.V[i]), float64(result.Orientation.V[i]), tolerance)
	}
	assert.InDelta(t, float64(expectedOrientation.W), float64(result.Orientation.W), tolerance)
}

func TestGravityForce(t *testing.T) {

	properties := object.NewProperties(2, mgl32.Ident3().Mul(0.8))
	properties.SleepMotion = 0.5

	state := object.State{
		Position:        mgl32.Vec3{0, 1, 0},
		LinearVelocity:  mgl32.Vec3{1, 0, 0},
		AngularVelocity: mgl32.Vec3{0, math.Pi, 0},
		ForceSum:        mgl32.Vec3{0.1, 0, 0},
		TorqueSum:       mgl32.Vec3{0, 0.1, 0},
	}

	body := object.NewBody(properties, state)
	body.AddForce(NewGravity(-9.8))

	world := NewWorld(DefaultWorldProperties())
	world.AddRigidBody(body)
	world.Update(0)

	result := body.State()
	expectedForceSum := mgl32.Vec3{0, -19.6, 0}
	expectedLinearAcceleration := mgl32.Vec3{0, -9.8, 0}
	for i := 0; i < 3; i++ {
		assert.InDelta(t, float64(expectedForceSum[i]), float64(result.ForceSum[i]), tolerance)
		assert.InDelta(t, float64(expectedLinearAcceleration[i]), float64(result.LinearAcceleration[i]), tolerance)
		assert.InDelta(t, float64(state.Position[i]), float64(result.Position[i]), tolerance)
		assert.InDelta(t, float64(state.LinearVelocity[i]), float64(result.LinearVelocity[i]), tolerance)
		assert.InDelta(t, float64(state.AngularVelocity[i]), float64(result.AngularVelocity[i]), tolerance)
		assert.InDelta(t, 0, float64(result.TorqueSum[i]), tolerance)
	}
}

func TestPunctualForceTorque(t *testing.T) {

	properties := object.NewProperties(2, mgl32.Ident3().Mul(0.8))
	properties.SleepMotion = 0.5

	state := object.State{
		Position:        mgl32.Vec3{0, 1, 0},
		LinearVelocity:  mgl32.Vec3{1, 0, 0},
		AngularVelocity: mgl32.Vec3{0, math.Pi, 0},
		ForceSum:        mgl32.Vec3{0.1, 0, 0},
		TorqueSum:       mgl32.Vec3{0, 0.1, 0},
	}

	body := object.NewBody(properties, state)
	body.AddForce(NewPunctualForce(
		mgl32.Vec3{-5, 1.255, 0.067}, mgl32.Vec3{0.5, 1.25, -6.5},
	))

	world := NewWorld(DefaultWorldProperties())
	world.AddRigidBody(body)
	world.Update(0)

	result := body.State()
	expectedForceSum := mgl32.Vec3{-5, 1.255, 0.067}
	expectedTorqueSum := mgl32.Vec3{8.174250602, 32.466499328, 1.877500057}
	expectedAngularAcceleration := mgl32.Vec3{10.217813491, 40.583122253, 2.346875190}
	for i := 0; i < 3; i++ {
		assert.InDelta(t, float64(expectedForceSum[i]), float64(result.ForceSum[i]), tolerance)
		assert.InDelta(t, float64(expectedTorqueSum[i]), float64(result.TorqueSum[i]), tolerance)
		assert.InDelta(t, float64(expectedAngularAcceleration[i]), float64(result.AngularAcceleration[i]), tolerance)
	}
}

func TestDistanceConstraintSleep(t *testing.T) {

	properties := object.NewProperties(6.1781, mgl32.Ident3().Mul(6.1781*3.21*3.21/6.0))
	properties.SleepMotion = 0.2

	body1 := object.NewBody(properties, object.State{
		Position:    mgl32.Vec3{-4.547531127, 2.949749708, -3.636348962},
		Orientation: mgl32.Quat{W: -0.074506878, V: mgl32.Vec3{-0.676165580, -0.448467493, -0.579763472}},
	})
	body2 := object.NewBody(properties, object.State{
		Position:       mgl32.Vec3{5.373533248, -5.649199485, 3.746687889},
		Orientation:    mgl32.Quat{W: 0.812893509, V: mgl32.Vec3{0.441731840, -0.347656339, 0.152355521}},
		LinearVelocity: mgl32.Vec3{0.1237, 4.12248, -5.9655},
	})

	distance := constraint.NewDistance([2]*object.Body{body1, body2})
	distance.SetAnchorPoints([2]mgl32.Vec3{{0.5, 1, 0}, {-1, 1, 0}})

	worldProperties := DefaultWorldProperties()
	worldProperties.MotionBias = 0.5
	world := NewWorld(worldProperties)
	world.AddRigidBody(body1)
	world.AddRigidBody(body2)
	world.AddConstraint(distance)

	require.False(t, body1.Status(object.StatusSleeping))
	require.False(t, body2.Status(object.StatusSleeping))

	// With no external forces both bodies come to rest and sleep in
	// fewer than 10 ticks
	for i := 0; i < 10; i++ {
		world.Update(0.016)
	}

	assert.True(t, body1.Status(object.StatusSleeping))
	assert.True(t, body2.Status(object.StatusSleeping))
	assert.Equal(t, mgl32.Vec3{}, body1.State().LinearVelocity)
	assert.Equal(t, mgl32.Vec3{}, body2.State().LinearVelocity)
}

func TestRigidBodyStatusFlow(t *testing.T) {

	properties := object.NewProperties(6.1781, mgl32.Ident3().Mul(6.1781*3.21*3.21/6.0))
	properties.SleepMotion = 0.2

	body1 := object.NewBody(properties, object.State{
		Position: mgl32.Vec3{-4.547531127, 2.949749708, -3.636348962},
	})
	body2 := object.NewBody(properties, object.State{
		Position:       mgl32.Vec3{5.373533248, -5.649199485, 3.746687889},
		LinearVelocity: mgl32.Vec3{0.1237, 4.12248, -5.9655},
	})

	distance := constraint.NewDistance([2]*object.Body{body1, body2})
	distance.SetAnchorPoints([2]mgl32.Vec3{{0.5, 1, 0}, {-1, 1, 0}})

	worldProperties := DefaultWorldProperties()
	worldProperties.MotionBias = 0.5
	world := NewWorld(worldProperties)
	world.AddRigidBody(body1)
	id2 := world.AddRigidBody(body2)
	world.AddConstraint(distance)

	world.Update(0.016)

	// The still body sleeps immediately; the moving one stays awake
	assert.True(t, body1.Status(object.StatusSleeping))
	assert.False(t, body1.Status(object.StatusUpdatedByUser))
	assert.False(t, body2.Status(object.StatusSleeping))

	// A user touch wakes the body and restarts its motion metric
	state2, ok := world.GetState(id2)
	require.True(t, ok)
	state2.LinearVelocity = mgl32.Vec3{}
	require.True(t, world.SetState(id2, state2))
	assert.True(t, body2.Status(object.StatusUpdatedByUser))

	world.Update(0.016)
	assert.True(t, body1.Status(object.StatusSleeping))
	assert.True(t, body2.Status(object.StatusSleeping))
}

func TestPGSConvergence(t *testing.T) {

	properties := object.NewProperties(1, mgl32.Ident3())
	properties.SleepMotion = 0.0001

	body1 := object.NewBody(properties, object.State{Position: mgl32.Vec3{0, 0, 0}})
	body2 := object.NewBody(properties, object.State{
		Position:       mgl32.Vec3{2, 0, 0},
		LinearVelocity: mgl32.Vec3{1, 0, 0},
	})

	distance := constraint.NewDistance([2]*object.Body{body1, body2})

	world := NewWorld(DefaultWorldProperties())
	world.AddRigidBody(body1)
	world.AddRigidBody(body2)
	world.AddConstraint(distance)

	bias := distance.Bias()
	jacobian := distance.Jacobian()

	world.Update(0.016)

	// After the solve, J*v matches the bias of the solved configuration:
	// the bodies separate at the rate the constraint demands
	v1 := body1.State().LinearVelocity
	w1 := body1.State().AngularVelocity
	v2 := body2.State().LinearVelocity
	w2 := body2.State().AngularVelocity
	velocities := []float32{
		v1.X(), v1.Y(), v1.Z(), w1.X(), w1.Y(), w1.Z(),
		v2.X(), v2.Y(), v2.Z(), w2.X(), w2.Y(), w2.Z(),
	}
	var jv float32
	for i := 0; i < 12; i++ {
		jv += jacobian[i] * velocities[i]
	}
	assert.InDelta(t, float64(bias), float64(jv), 1e-3)

	// A solved body's position advances by its corrected velocity only,
	// never by the pre-solve velocity on top of it
	assert.InDelta(t, 0.5*0.016, float64(body1.State().Position.X()), 1e-4)
	assert.InDelta(t, 2+0.5*0.016, float64(body2.State().Position.X()), 1e-4)
}

func TestContactConstraintStopsApproach(t *testing.T) {

	// A unit sphere moving down, overlapping the top of a static box
	properties := object.NewProperties(1, sphereInertia(1, 1))
	properties.SleepMotion = 0.00001

	body := object.NewBody(properties, object.State{
		Position:       mgl32.Vec3{0, 1.45, 0},
		LinearVelocity: mgl32.Vec3{0, -1, 0},
	})

	world := NewWorld(DefaultWorldProperties())
	bodyID := world.AddRigidBody(body)

	sphere := collision.NewSphere(1)
	world.AddCollider(bodyID, sphere)

	floor := collision.NewBox(mgl32.Vec3{10, 1, 10})
	floor.SetTransform(mgl32.Ident4())
	world.AddCollider(uuid.Nil, floor)

	for i := 0; i < 5; i++ {
		world.Update(0.016)
	}

	// The normal constraint absorbed the approach velocity
	assert.Greater(t, float64(body.State().LinearVelocity.Y()), -0.2)
}

func TestCollisionEvents(t *testing.T) {

	properties := object.NewProperties(1, sphereInertia(1, 1))
	body := object.NewBody(properties, object.State{Position: mgl32.Vec3{0, 1.4, 0}})

	world := NewWorld(DefaultWorldProperties())
	bodyID := world.AddRigidBody(body)
	world.AddCollider(bodyID, collision.NewSphere(1))
	floor := collision.NewBox(mgl32.Vec3{10, 1, 10})
	world.AddCollider(uuid.Nil, floor)

	events := 0
	world.AddCollisionListener(func(manifold *collision.Manifold) {
		events++
		assert.True(t, manifold.Intersecting)
		assert.NotEmpty(t, manifold.Contacts)
	})

	world.Update(0.016)
	assert.Greater(t, events, 0)
}

func TestLoadWorldProperties(t *testing.T) {

	path := filepath.Join(t.TempDir(), "world.yaml")
	content := []byte("motionBias: 0.3\nmaxSolverIterations: 20\nsleepEpsilon: 0.01\n")
	require.NoError(t, os.WriteFile(path, content, 0644))

	properties, err := LoadWorldProperties(path)
	require.NoError(t, err)
	assert.InDelta(t, 0.3, float64(properties.MotionBias), 1e-6)
	assert.Equal(t, 20, properties.MaxSolverIterations)
	assert.InDelta(t, 0.01, float64(properties.SleepEpsilon), 1e-6)

	// Missing fields fall back to defaults
	defaults := DefaultWorldProperties()
	assert.Equal(t, defaults.MaxManifolds, properties.MaxManifolds)
	assert.InDelta(t, float64(defaults.ContactSeparation), float64(properties.ContactSeparation), 1e-9)
}

func TestLoadWorldPropertiesMissingFile(t *testing.T) {

	_, err := LoadWorldProperties("/nonexistent/world.yaml")
	assert.Error(t, err)
}
