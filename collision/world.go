// Copyright 2016 The G3N Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package collision

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/tachyon3d/engine/util/logger"
)

// Package logger
var log = logger.New("COLLISION", logger.Default)

// Config holds the tuning parameters of a World.
type Config struct {
	MaxManifolds      int
	CoarseEpsilon     float32
	MinFDifference    float32
	ContactPrecision  float32
	ContactSeparation float32
	RaycastPrecision  float32
	MaxEPAIterations  int
	MaxRayIterations  int
}

// DefaultConfig returns the default collision world configuration.
func DefaultConfig() Config {

	return Config{
		MaxManifolds:      128,
		CoarseEpsilon:     0.0001,
		MinFDifference:    0.00001,
		ContactPrecision:  0.0000001,
		ContactSeparation: 0.00001,
		RaycastPrecision:  0.0000001,
		MaxEPAIterations:  36,
		MaxRayIterations:  32,
	}
}

// colliderPair is the unordered key of a manifold.
type colliderPair struct {
	first  ICollider
	second ICollider
}

// World owns colliders and their manifolds and composes the broad and
// narrow collision phases. One Update call runs a full collision tick:
// the broad phase emits the candidate pairs, the narrow phase creates or
// refreshes their manifolds, and the manifolds that stopped intersecting
// are destroyed.
type World struct {
	config    Config
	coarse    *CoarseDetector
	fine      *FineDetector
	colliders []ICollider
	manifolds map[colliderPair]*Manifold
	order     []colliderPair
}

// NewWorld creates and returns a pointer to a new collision World with
// the given configuration.
func NewWorld(config Config) *World {

	w := new(World)
	w.config = config
	w.coarse = NewCoarseDetector(config.CoarseEpsilon)
	w.fine = NewFineDetector(
		config.CoarseEpsilon, config.MinFDifference, config.ContactPrecision,
		config.ContactSeparation, config.RaycastPrecision,
		config.MaxEPAIterations, config.MaxRayIterations,
	)
	w.manifolds = make(map[colliderPair]*Manifold)
	return w
}

// AddCollider adds the given collider to the world.
func (w *World) AddCollider(collider ICollider) {

	if collider == nil {
		return
	}
	w.colliders = append(w.colliders, collider)
}

// RemoveCollider removes the given collider from the world together with
// the manifolds that reference it. It returns true if found.
func (w *World) RemoveCollider(collider ICollider) bool {

	found := false
	for pos, current := range w.colliders {
		if current == collider {
			copy(w.colliders[pos:], w.colliders[pos+1:])
			w.colliders[len(w.colliders)-1] = nil
			w.colliders = w.colliders[:len(w.colliders)-1]
			found = true
			break
		}
	}
	for pair := range w.manifolds {
		if pair.first == collider || pair.second == collider {
			w.deleteManifold(pair)
		}
	}
	return found
}

// deleteManifold removes the manifold with the given key.
func (w *World) deleteManifold(pair colliderPair) {

	delete(w.manifolds, pair)
	for pos, current := range w.order {
		if current == pair {
			w.order = append(w.order[:pos], w.order[pos+1:]...)
			break
		}
	}
}

// Update runs one collision tick over all the colliders of the world.
func (w *World) Update() {

	// Tick start: every manifold is pending until the narrow phase
	// flags it again
	for _, manifold := range w.manifolds {
		manifold.Intersecting = false
		manifold.Updated = false
	}

	// Broad phase
	for _, collider := range w.colliders {
		w.coarse.Submit(collider)
	}

	// Narrow phase on every candidate pair
	w.coarse.ProcessIntersecting(func(c1, c2 ICollider) {
		manifold := w.findManifold(c1, c2)
		if manifold != nil {
			if w.fine.Collide(manifold) {
				manifold.Intersecting = true
				manifold.Updated = true
			}
			return
		}

		if len(w.manifolds) >= w.config.MaxManifolds {
			log.Error("manifold limit of %d reached; dropping new contact pair", w.config.MaxManifolds)
			return
		}
		manifold = NewManifold(c1, c2)
		if w.fine.Collide(manifold) {
			manifold.Intersecting = true
			manifold.Updated = true
			w.manifolds[colliderPair{c1, c2}] = manifold
			w.order = append(w.order, colliderPair{c1, c2})
		}
	})

	// Destroy the manifolds that no longer intersect
	for pair, manifold := range w.manifolds {
		if !manifold.Intersecting {
			w.deleteManifold(pair)
		}
	}

	for _, collider := range w.colliders {
		collider.ResetUpdated()
	}
}

// findManifold returns the manifold of the given collider pair in either
// order, or nil.
func (w *World) findManifold(c1, c2 ICollider) *Manifold {

	if manifold, ok := w.manifolds[colliderPair{c1, c2}]; ok {
		return manifold
	}
	if manifold, ok := w.manifolds[colliderPair{c2, c1}]; ok {
		return manifold
	}
	return nil
}

// ProcessCollisionManifolds calls the given callback for each active
// collision manifold of the last Update.
func (w *World) ProcessCollisionManifolds(callback func(manifold *Manifold)) {

	for _, pair := range w.order {
		if manifold, ok := w.manifolds[pair]; ok {
			callback(manifold)
		}
	}
}

// ProcessRayCast checks which colliders intersect the given ray and calls
// the callback for each of them.
func (w *World) ProcessRayCast(origin, direction mgl32.Vec3, callback func(collider ICollider, rayCast RayCast)) {

	ray := Ray{Origin: origin, Direction: direction}
	for _, collider := range w.colliders {
		if rayCast, ok := w.fine.RayCast(ray, collider); ok {
			callback(collider, rayCast)
		}
	}
}
