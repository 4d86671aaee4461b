// Copyright 2016 The G3N Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package collision

import (
	"math"
)

// FineDetector computes the contact data of intersecting colliders and
// maintains their persistent manifolds. Convex pairs go through GJK and
// EPA; pairs with concave colliders are broken into their overlapping
// convex parts first.
type FineDetector struct {
	gjk               *GJK
	epa               *EPA
	rayCaster         *GJKRayCaster
	coarseEpsilon     float32
	contactSeparation float32
}

// NewFineDetector creates and returns a pointer to a new FineDetector.
func NewFineDetector(
	coarseEpsilon, minFDifference, contactPrecision, contactSeparation, raycastPrecision float32,
	maxEPAIterations, maxRayIterations int,
) *FineDetector {

	fd := new(FineDetector)
	fd.gjk = NewGJK(contactPrecision)
	fd.epa = NewEPA(minFDifference, contactPrecision, maxEPAIterations)
	fd.rayCaster = NewGJKRayCaster(raycastPrecision, maxRayIterations)
	fd.coarseEpsilon = coarseEpsilon
	fd.contactSeparation = contactSeparation
	return fd
}

// Collide checks whether the colliders of the given manifold are
// intersecting and updates its contact data. It returns whether the
// colliders intersect.
func (fd *FineDetector) Collide(manifold *Manifold) bool {

	fd.removeInvalidContacts(manifold)

	c1, c2 := manifold.Colliders[0], manifold.Colliders[1]
	switch first := c1.(type) {
	case IConcave:
		switch second := c2.(type) {
		case IConcave:
			return fd.collideConcave(first, second, manifold)
		case IConvex:
			return fd.collideConvexConcave(second, first, manifold, false)
		}
	case IConvex:
		switch second := c2.(type) {
		case IConcave:
			return fd.collideConvexConcave(first, second, manifold, true)
		case IConvex:
			return fd.collideConvex(first, second, manifold)
		}
	}
	return false
}

// RayCast checks whether the given ray intersects the given collider.
// Concave colliders report the nearest hit among their intersecting
// convex parts.
func (fd *FineDetector) RayCast(ray Ray, collider ICollider) (RayCast, bool) {

	switch c := collider.(type) {
	case IConvex:
		return fd.rayCaster.Calculate(ray, c)
	case IConcave:
		var best RayCast
		found := false
		c.IntersectingParts(ray, fd.coarseEpsilon, func(part IConvex) {
			if hit, ok := fd.rayCaster.Calculate(ray, part); ok {
				if !found || hit.Distance < best.Distance {
					best = hit
					found = true
				}
			}
		})
		return best, found
	}
	return RayCast{}, false
}

// collideConvex runs GJK and EPA on a pair of convex colliders.
func (fd *FineDetector) collideConvex(c1, c2 IConvex, manifold *Manifold) bool {

	intersects, simplex := fd.gjk.Intersect(c1, c2)
	if !intersects {
		return false
	}

	contact, ok := fd.epa.Calculate(c1, c2, simplex)
	if ok {
		fd.addContact(contact, manifold)
	}
	// Non-converged EPA keeps the previous manifold contents
	return true
}

// collideConvexConcave collides a convex collider with the overlapping
// convex parts of a concave one. convexFirst tells whether the convex
// collider is the first collider of the manifold.
func (fd *FineDetector) collideConvexConcave(convex IConvex, concave IConcave, manifold *Manifold, convexFirst bool) bool {

	anyCollides := false
	concave.OverlappingParts(convex.BoundingBox(), fd.coarseEpsilon, func(part IConvex) {
		var intersects bool
		var simplex []SupportPoint
		if convexFirst {
			intersects, simplex = fd.gjk.Intersect(convex, part)
		} else {
			intersects, simplex = fd.gjk.Intersect(part, convex)
		}
		if !intersects {
			return
		}
		anyCollides = true

		var contact Contact
		var ok bool
		if convexFirst {
			contact, ok = fd.epa.Calculate(convex, part, simplex)
		} else {
			contact, ok = fd.epa.Calculate(part, convex, simplex)
		}
		if ok {
			fd.addContact(contact, manifold)
		}
	})
	return anyCollides
}

// collideConcave collides the overlapping convex parts of two concave
// colliders.
func (fd *FineDetector) collideConcave(c1, c2 IConcave, manifold *Manifold) bool {

	anyCollides := false
	c1.OverlappingParts(c2.BoundingBox(), fd.coarseEpsilon, func(part1 IConvex) {
		c2.OverlappingParts(part1.BoundingBox(), fd.coarseEpsilon, func(part2 IConvex) {
			intersects, simplex := fd.gjk.Intersect(part1, part2)
			if !intersects {
				return
			}
			anyCollides = true
			if contact, ok := fd.epa.Calculate(part1, part2, simplex); ok {
				fd.addContact(contact, manifold)
			}
		})
	})
	return anyCollides
}

// addContact inserts the given contact into the manifold unless it lies
// within the contact separation of an existing one, then limits the
// manifold to four contacts.
func (fd *FineDetector) addContact(contact Contact, manifold *Manifold) {

	if fd.isClose(contact, manifold.Contacts) {
		return
	}
	manifold.Contacts = append(manifold.Contacts, contact)
	if len(manifold.Contacts) > MaxManifoldContacts {
		manifold.Contacts = limitContacts(manifold.Contacts)
	}
}

// removeInvalidContacts drops the contacts whose world points drifted
// away from their reprojected local points by more than the contact
// separation.
func (fd *FineDetector) removeInvalidContacts(manifold *Manifold) {

	t1 := manifold.Colliders[0].Transform()
	t2 := manifold.Colliders[1].Transform()

	kept := manifold.Contacts[:0]
	for _, contact := range manifold.Contacts {
		moved1 := t1.Mul4x1(contact.Local[0].Vec4(1)).Vec3()
		moved2 := t2.Mul4x1(contact.Local[1].Vec4(1)).Vec3()

		if contact.World[0].Sub(moved1).Len() < fd.contactSeparation &&
			contact.World[1].Sub(moved2).Len() < fd.contactSeparation {
			kept = append(kept, contact)
		}
	}
	manifold.Contacts = kept
}

// isClose reports whether the new contact lies within the contact
// separation of any of the given contacts on both bodies.
func (fd *FineDetector) isClose(newContact Contact, contacts []Contact) bool {

	for _, contact := range contacts {
		v0 := newContact.World[0].Sub(contact.World[0])
		v1 := newContact.World[1].Sub(contact.World[1])
		if v0.Len() < fd.contactSeparation && v1.Len() < fd.contactSeparation {
			return true
		}
	}
	return false
}

// limitContacts selects four contacts: the deepest one, the one farthest
// from it, the one maximizing the perpendicular distance to the segment
// through the first two and the one maximizing the distance to the plane
// through the first three. Ties break by insertion order.
func limitContacts(contacts []Contact) []Contact {

	if len(contacts) <= MaxManifoldContacts {
		return contacts
	}

	first := 0
	for i, contact := range contacts {
		if contact.Penetration > contacts[first].Penetration {
			first = i
		}
	}

	second := -1
	bestDistance := float32(math.Inf(-1))
	for i, contact := range contacts {
		if i == first {
			continue
		}
		if d := contact.World[0].Sub(contacts[first].World[0]).Len(); d > bestDistance {
			bestDistance = d
			second = i
		}
	}

	segment := contacts[second].World[0].Sub(contacts[first].World[0])
	third := -1
	bestDistance = float32(math.Inf(-1))
	for i, contact := range contacts {
		if i == first || i == second {
			continue
		}
		v := contact.World[0].Sub(contacts[first].World[0])
		if d := segment.Cross(v).Len(); d > bestDistance {
			bestDistance = d
			third = i
		}
	}

	planeNormal := segment.Cross(contacts[third].World[0].Sub(contacts[first].World[0]))
	if planeNormal.Len() > 0 {
		planeNormal = planeNormal.Normalize()
	}
	fourth := -1
	bestDistance = float32(math.Inf(-1))
	for i, contact := range contacts {
		if i == first || i == second || i == third {
			continue
		}
		v := contact.World[0].Sub(contacts[first].World[0])
		if d := abs(planeNormal.Dot(v)); d > bestDistance {
			bestDistance = d
			fourth = i
		}
	}

	return []Contact{contacts[first], contacts[second], contacts[third], contacts[fourth]}
}
