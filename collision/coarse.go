// Copyright 2016 The G3N Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package collision

// CoarseDetector is the broad phase of the collision pipeline: it caches
// the world AABB of every submitted collider and enumerates the pairs
// whose AABBs, inflated by the coarse epsilon, overlap. Pair order is
// deterministic given the submission order.
type CoarseDetector struct {
	epsilon   float32
	colliders []ICollider
	aabbs     []AABB
}

// NewCoarseDetector creates and returns a pointer to a new CoarseDetector
// with the given AABB inflation epsilon.
func NewCoarseDetector(epsilon float32) *CoarseDetector {

	cd := new(CoarseDetector)
	cd.epsilon = epsilon
	return cd
}

// Submit adds the given collider to the detector for the current tick.
func (cd *CoarseDetector) Submit(collider ICollider) {

	cd.colliders = append(cd.colliders, collider)
	cd.aabbs = append(cd.aabbs, collider.BoundingBox())
}

// ProcessIntersecting calls the given callback for every pair of
// submitted colliders whose AABBs overlap, then clears the submitted
// colliders.
func (cd *CoarseDetector) ProcessIntersecting(callback func(c1, c2 ICollider)) {

	for i := 0; i < len(cd.colliders); i++ {
		for j := i + 1; j < len(cd.colliders); j++ {
			if cd.aabbs[i].Overlaps(cd.aabbs[j], cd.epsilon) {
				callback(cd.colliders[i], cd.colliders[j])
			}
		}
	}
	cd.colliders = cd.colliders[:0]
	cd.aabbs = cd.aabbs[:0]
}
