// Copyright 2016 The G3N Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package collision

// MaxManifoldContacts is the maximum number of contacts a manifold holds.
const MaxManifoldContacts = 4

// Manifold is the persistent set of contact points between an ordered
// pair of colliders. It is created on the first intersecting frame, kept
// while the colliders keep intersecting and destroyed at the end of the
// first tick they no longer do.
type Manifold struct {
	Colliders    [2]ICollider
	Contacts     []Contact
	Intersecting bool
	Updated      bool
}

// NewManifold creates and returns a pointer to a new Manifold between the
// given pair of colliders.
func NewManifold(c1, c2 ICollider) *Manifold {

	m := new(Manifold)
	m.Colliders = [2]ICollider{c1, c2}
	m.Contacts = make([]Contact, 0, MaxManifoldContacts)
	return m
}
