// Copyright 2016 The G3N Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package collision

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/tachyon3d/engine/hemesh"
)

// ConvexPolyhedron is a convex collider defined by a half-edge mesh in
// local space. A world space copy of the mesh is kept in sync with the
// transform so support queries can hill climb over world positions.
type ConvexPolyhedron struct {
	localMesh *hemesh.Mesh
	worldMesh *hemesh.Mesh
	transform mgl32.Mat4
	updated   bool
}

// NewConvexPolyhedron creates and returns a pointer to a new
// ConvexPolyhedron with the given local mesh. The mesh must be convex.
func NewConvexPolyhedron(mesh *hemesh.Mesh) *ConvexPolyhedron {

	cp := new(ConvexPolyhedron)
	cp.localMesh = mesh
	cp.worldMesh = mesh.Clone()
	cp.transform = mgl32.Ident4()
	cp.updated = true
	return cp
}

// NewBox creates and returns a pointer to a new box shaped
// ConvexPolyhedron with the given side lengths, centered at the origin.
func NewBox(lengths mgl32.Vec3) *ConvexPolyhedron {

	x := lengths.X() / 2
	y := lengths.Y() / 2
	z := lengths.Z() / 2

	m := hemesh.NewMesh()
	v := []int{
		m.AddVertex(mgl32.Vec3{-x, -y, -z}),
		m.AddVertex(mgl32.Vec3{x, -y, -z}),
		m.AddVertex(mgl32.Vec3{x, -y, z}),
		m.AddVertex(mgl32.Vec3{-x, -y, z}),
		m.AddVertex(mgl32.Vec3{-x, y, -z}),
		m.AddVertex(mgl32.Vec3{x, y, -z}),
		m.AddVertex(mgl32.Vec3{x, y, z}),
		m.AddVertex(mgl32.Vec3{-x, y, z}),
	}
	m.AddFace([]int{v[0], v[1], v[2], v[3]})
	m.AddFace([]int{v[7], v[6], v[5], v[4]})
	m.AddFace([]int{v[4], v[5], v[1], v[0]})
	m.AddFace([]int{v[6], v[7], v[3], v[2]})
	m.AddFace([]int{v[5], v[6], v[2], v[1]})
	m.AddFace([]int{v[7], v[4], v[0], v[3]})

	return NewConvexPolyhedron(m)
}

// LocalMesh returns the local space mesh of the polyhedron.
func (cp *ConvexPolyhedron) LocalMesh() *hemesh.Mesh {

	return cp.localMesh
}

// SetTransform updates the scale, translation and orientation of the
// polyhedron, recomputing the world space mesh.
func (cp *ConvexPolyhedron) SetTransform(transform mgl32.Mat4) {

	cp.transform = transform
	cp.localMesh.Vertices.Each(func(i int, v *hemesh.Vertex) bool {
		cp.worldMesh.Vertices.At(i).Position = transform.Mul4x1(v.Position.Vec4(1)).Vec3()
		return true
	})
	cp.updated = true
}

// Transform returns the current transform matrix of the polyhedron.
func (cp *ConvexPolyhedron) Transform() mgl32.Mat4 {

	return cp.transform
}

// BoundingBox returns the world AABB of the polyhedron.
func (cp *ConvexPolyhedron) BoundingBox() AABB {

	min, max := hemesh.CalculateAABB(cp.worldMesh)
	return AABB{Min: min, Max: max}
}

// Updated returns whether the polyhedron changed since the last call to
// ResetUpdated.
func (cp *ConvexPolyhedron) Updated() bool {

	return cp.updated
}

// ResetUpdated resets the updated state of the polyhedron.
func (cp *ConvexPolyhedron) ResetUpdated() {

	cp.updated = false
}

// Support returns the furthest vertex of the polyhedron in the given
// world direction, found by hill climbing over the vertex adjacency.
func (cp *ConvexPolyhedron) Support(direction mgl32.Vec3) (world, local mgl32.Vec3) {

	iVertex := hemesh.FurthestVertex(cp.worldMesh, direction)
	if iVertex == hemesh.None {
		return Center(cp), mgl32.Vec3{}
	}
	world = cp.worldMesh.Vertices.At(iVertex).Position
	local = cp.localMesh.Vertices.At(iVertex).Position
	return world, local
}
