// Copyright 2016 The G3N Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package collision

import (
	"github.com/go-gl/mathgl/mgl32"
)

// SupportPoint is a point of the Minkowski difference (configuration
// space obstacle) of two convex colliders. Alongside the CSO position it
// keeps the world and local coordinates of the originating point on each
// collider, which EPA blends into contact witness points.
type SupportPoint struct {
	CSO   mgl32.Vec3
	World [2]mgl32.Vec3
	Local [2]mgl32.Vec3
}

// NewSupportPoint returns the support point of the Minkowski difference
// of the two colliders in the given direction:
// support1(direction) - support2(-direction).
func NewSupportPoint(c1, c2 IConvex, direction mgl32.Vec3) SupportPoint {

	var sp SupportPoint
	sp.World[0], sp.Local[0] = c1.Support(direction)
	sp.World[1], sp.Local[1] = c2.Support(direction.Mul(-1))
	sp.CSO = sp.World[0].Sub(sp.World[1])
	return sp
}
