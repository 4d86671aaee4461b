// Copyright 2016 The G3N Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package collision

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// Terrain is a concave collider representing a heightfield over the unit
// square in local XZ, with heights in the range [-0.5, 0.5]. Each grid
// cell yields two triangle shaped convex parts:
//
//	z
//	· — ·
//	| / |
//	· — · x
type Terrain struct {
	heights   []float32
	xSize     int
	zSize     int
	transform mgl32.Mat4
	inverse   mgl32.Mat4
	aabb      AABB
	updated   bool
}

// NewTerrain creates and returns a pointer to a new empty Terrain located
// at the origin.
func NewTerrain() *Terrain {

	t := new(Terrain)
	t.transform = mgl32.Ident4()
	t.inverse = mgl32.Ident4()
	t.updated = true
	return t
}

// XSize returns the number of vertices in the X axis.
func (t *Terrain) XSize() int {

	return t.xSize
}

// ZSize returns the number of vertices in the Z axis.
func (t *Terrain) ZSize() int {

	return t.zSize
}

// SetHeights sets the height data of the terrain. The heights are the Y
// coordinates of the vertices, in row-major z*xSize+x order and in the
// range [-0.5, 0.5]. It returns false without modifying the terrain when
// the dimensions do not match the data.
func (t *Terrain) SetHeights(heights []float32, xSize, zSize int) bool {

	if xSize < 2 || zSize < 2 || len(heights) != xSize*zSize {
		return false
	}
	t.heights = append([]float32(nil), heights...)
	t.xSize = xSize
	t.zSize = zSize
	t.calculateAABB()
	t.updated = true
	return true
}

// SetTransform updates the scale, translation and orientation of the
// terrain.
func (t *Terrain) SetTransform(transform mgl32.Mat4) {

	t.transform = transform
	t.inverse = transform.Inv()
	t.calculateAABB()
	t.updated = true
}

// Transform returns the current transform matrix of the terrain.
func (t *Terrain) Transform() mgl32.Mat4 {

	return t.transform
}

// BoundingBox returns the world AABB of the terrain.
func (t *Terrain) BoundingBox() AABB {

	return t.aabb
}

// Updated returns whether the terrain changed since the last call to
// ResetUpdated.
func (t *Terrain) Updated() bool {

	return t.updated
}

// ResetUpdated resets the updated state of the terrain.
func (t *Terrain) ResetUpdated() {

	t.updated = false
}

// vertex returns the local position of the grid vertex at (x, z).
func (t *Terrain) vertex(x, z int) mgl32.Vec3 {

	return mgl32.Vec3{
		float32(x)/float32(t.xSize-1) - 0.5,
		t.heights[z*t.xSize+x],
		float32(z)/float32(t.zSize-1) - 0.5,
	}
}

// cellTriangles returns the local vertices of the two triangles of the
// grid cell at (x, z).
func (t *Terrain) cellTriangles(x, z int) [2][3]mgl32.Vec3 {

	return [2][3]mgl32.Vec3{
		{t.vertex(x, z), t.vertex(x+1, z), t.vertex(x, z+1)},
		{t.vertex(x+1, z), t.vertex(x+1, z+1), t.vertex(x, z+1)},
	}
}

// calculateAABB recomputes the world AABB from the local heights and the
// transform matrix.
func (t *Terrain) calculateAABB() {

	box := NewAABB()
	if t.xSize == 0 || t.zSize == 0 {
		box = AABB{}
	}
	for z := 0; z < t.zSize; z++ {
		for x := 0; x < t.xSize; x++ {
			box.Extend(t.transform.Mul4x1(t.vertex(x, z).Vec4(1)).Vec3())
		}
	}
	t.aabb = box
}

// OverlappingParts calls the given callback for each triangle part of the
// terrain overlapping the given world AABB.
func (t *Terrain) OverlappingParts(aabb AABB, epsilon float32, callback func(part IConvex)) {

	if t.xSize == 0 {
		return
	}

	// Query AABB in terrain local space
	local := aabb.Transformed(t.inverse)

	x0, x1 := t.cellRange(local.Min.X(), local.Max.X(), t.xSize, epsilon)
	z0, z1 := t.cellRange(local.Min.Z(), local.Max.Z(), t.zSize, epsilon)

	for z := z0; z <= z1; z++ {
		for x := x0; x <= x1; x++ {
			for _, vertices := range t.cellTriangles(x, z) {
				if !t.checkYAxis(local, vertices, epsilon) {
					continue
				}
				part := NewTriangle(vertices)
				part.SetTransform(t.transform)
				callback(part)
			}
		}
	}
}

// IntersectingParts calls the given callback for each triangle part of
// the terrain intersected by the given world ray.
func (t *Terrain) IntersectingParts(ray Ray, epsilon float32, callback func(part IConvex)) {

	if t.xSize == 0 {
		return
	}

	origin := t.inverse.Mul4x1(ray.Origin.Vec4(1)).Vec3()
	direction := t.inverse.Mul4x1(ray.Direction.Vec4(0)).Vec3()

	for z := 0; z < t.zSize-1; z++ {
		for x := 0; x < t.xSize-1; x++ {
			for _, vertices := range t.cellTriangles(x, z) {
				if !rayIntersectsTriangle(origin, direction, vertices, epsilon) {
					continue
				}
				part := NewTriangle(vertices)
				part.SetTransform(t.transform)
				callback(part)
			}
		}
	}
}

// cellRange converts a local axis interval into a clamped range of cell
// indices along an axis with the given vertex count.
func (t *Terrain) cellRange(min, max float32, size int, epsilon float32) (int, int) {

	cells := float32(size - 1)
	lo := int(math.Floor(float64((min + 0.5 - epsilon) * cells)))
	hi := int(math.Floor(float64((max + 0.5 + epsilon) * cells)))
	if lo < 0 {
		lo = 0
	}
	if hi > size-2 {
		hi = size - 2
	}
	if lo > size-2 || hi < 0 {
		return 0, -1
	}
	return lo, hi
}

// checkYAxis returns whether the local AABB overlaps the Y range of the
// given triangle within epsilon.
func (t *Terrain) checkYAxis(aabb AABB, vertices [3]mgl32.Vec3, epsilon float32) bool {

	minY := vertices[0].Y()
	maxY := minY
	for _, v := range vertices[1:] {
		if v.Y() < minY {
			minY = v.Y()
		}
		if v.Y() > maxY {
			maxY = v.Y()
		}
	}
	return aabb.Min.Y() <= maxY+epsilon && minY-epsilon <= aabb.Max.Y()
}

// rayIntersectsTriangle tests a ray against a triangle with the
// Moeller-Trumbore algorithm.
func rayIntersectsTriangle(origin, direction mgl32.Vec3, vertices [3]mgl32.Vec3, epsilon float32) bool {

	edge1 := vertices[1].Sub(vertices[0])
	edge2 := vertices[2].Sub(vertices[0])
	h := direction.Cross(edge2)
	a := edge1.Dot(h)
	if float32(math.Abs(float64(a))) < 1e-9 {
		return false
	}

	f := 1 / a
	s := origin.Sub(vertices[0])
	u := f * s.Dot(h)
	if u < -epsilon || u > 1+epsilon {
		return false
	}

	q := s.Cross(edge1)
	v := f * direction.Dot(q)
	if v < -epsilon || u+v > 1+epsilon {
		return false
	}

	return f*edge2.Dot(q) >= -epsilon
}
