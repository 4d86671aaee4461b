// Copyright 2016 The G3N Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package collision

import (
	"github.com/go-gl/mathgl/mgl32"
)

// Contact is a single contact point between two colliders. The normal is
// a unit vector in world space pointing outward from the first collider.
// World and Local hold the witness point on each collider in world and
// local coordinates respectively.
type Contact struct {
	Penetration float32
	Normal      mgl32.Vec3
	World       [2]mgl32.Vec3
	Local       [2]mgl32.Vec3
}

// RayCast holds the result of a ray hit on a collider.
type RayCast struct {
	Distance      float32
	ContactWorld  mgl32.Vec3
	ContactLocal  mgl32.Vec3
	ContactNormal mgl32.Vec3
}
