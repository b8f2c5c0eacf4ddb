// Package shape provides the narrow phase used by the collision pipeline:
// a few convex primitives and a symmetric hit table keyed by shape kind.
package shape

import "github.com/go-gl/mathgl/mgl32"

type Kind int

const (
	KindSphere Kind = iota
	KindAABB
	KindSegment
	KindCapsule
	kindCount
)

func (k Kind) String() string {
	switch k {
	case KindSphere:
		return "sphere"
	case KindAABB:
		return "aabb"
	case KindSegment:
		return "segment"
	case KindCapsule:
		return "capsule"
	}
	return "unknown"
}

// Shape is the contract the collision pipeline consumes. Implementations must
// be pure: CheckHit may run on the detection goroutine against a clone while
// the original keeps moving on the main goroutine.
type Shape interface {
	Kind() Kind
	Center() mgl32.Vec3
	// Transform moves the shape so that its center is at center.
	Transform(center mgl32.Vec3)
	// Clone returns a deep copy sharing no memory with the receiver.
	Clone() Shape
	CheckHit(other Shape) bool
}

type hitFunc func(a, b Shape) bool

var hitTable [kindCount][kindCount]hitFunc

// register installs fn for (a, b) and its mirror for (b, a).
func register(a, b Kind, fn hitFunc) {
	hitTable[a][b] = fn
	if a != b {
		hitTable[b][a] = func(x, y Shape) bool { return fn(y, x) }
	}
}

func init() {
	register(KindSphere, KindSphere, sphereSphere)
	register(KindSphere, KindAABB, sphereAABB)
	register(KindSphere, KindSegment, sphereSegment)
	register(KindSphere, KindCapsule, sphereCapsule)
	register(KindAABB, KindAABB, aabbAABB)
	register(KindAABB, KindSegment, aabbSegment)
	register(KindAABB, KindCapsule, aabbCapsule)
	register(KindSegment, KindSegment, segmentSegment)
	register(KindSegment, KindCapsule, segmentCapsule)
	register(KindCapsule, KindCapsule, capsuleCapsule)
}

// Hit reports whether a and b overlap. Touching counts as overlap. Unknown
// kinds and nil shapes never hit.
func Hit(a, b Shape) bool {
	if a == nil || b == nil {
		return false
	}
	ka, kb := a.Kind(), b.Kind()
	if ka < 0 || ka >= kindCount || kb < 0 || kb >= kindCount {
		return false
	}
	fn := hitTable[ka][kb]
	if fn == nil {
		return false
	}
	return fn(a, b)
}

func sphereSphere(a, b Shape) bool {
	sa, okA := a.(*Sphere)
	sb, okB := b.(*Sphere)
	if !okA || !okB {
		return false
	}
	r := sa.Radius + sb.Radius
	return sa.C.Sub(sb.C).LenSqr() <= r*r
}

func sphereAABB(a, b Shape) bool {
	s, okA := a.(*Sphere)
	box, okB := b.(*AABB)
	if !okA || !okB {
		return false
	}
	return distSqPointAABB(s.C, box.Min(), box.Max()) <= s.Radius*s.Radius
}

func sphereSegment(a, b Shape) bool {
	s, okA := a.(*Sphere)
	seg, okB := b.(*Segment)
	if !okA || !okB {
		return false
	}
	p := closestPointOnSegment(s.C, seg.A, seg.B)
	return p.Sub(s.C).LenSqr() <= s.Radius*s.Radius
}

func sphereCapsule(a, b Shape) bool {
	s, okA := a.(*Sphere)
	c, okB := b.(*Capsule)
	if !okA || !okB {
		return false
	}
	p := closestPointOnSegment(s.C, c.A, c.B)
	r := s.Radius + c.Radius
	return p.Sub(s.C).LenSqr() <= r*r
}

func aabbAABB(a, b Shape) bool {
	ba, okA := a.(*AABB)
	bb, okB := b.(*AABB)
	if !okA || !okB {
		return false
	}
	for i := 0; i < 3; i++ {
		if abs32(ba.C[i]-bb.C[i]) > ba.HalfExtents[i]+bb.HalfExtents[i] {
			return false
		}
	}
	return true
}

func aabbSegment(a, b Shape) bool {
	box, okA := a.(*AABB)
	seg, okB := b.(*Segment)
	if !okA || !okB {
		return false
	}
	return segmentIntersectsAABB(seg.A, seg.B, box.Min(), box.Max())
}

func aabbCapsule(a, b Shape) bool {
	box, okA := a.(*AABB)
	c, okB := b.(*Capsule)
	if !okA || !okB {
		return false
	}
	return distSqSegmentAABB(c.A, c.B, box.Min(), box.Max()) <= c.Radius*c.Radius
}

func segmentSegment(a, b Shape) bool {
	sa, okA := a.(*Segment)
	sb, okB := b.(*Segment)
	if !okA || !okB {
		return false
	}
	return distSqSegmentSegment(sa.A, sa.B, sb.A, sb.B) <= epsilon*epsilon
}

func segmentCapsule(a, b Shape) bool {
	seg, okA := a.(*Segment)
	c, okB := b.(*Capsule)
	if !okA || !okB {
		return false
	}
	return distSqSegmentSegment(seg.A, seg.B, c.A, c.B) <= c.Radius*c.Radius
}

func capsuleCapsule(a, b Shape) bool {
	ca, okA := a.(*Capsule)
	cb, okB := b.(*Capsule)
	if !okA || !okB {
		return false
	}
	r := ca.Radius + cb.Radius
	return distSqSegmentSegment(ca.A, ca.B, cb.A, cb.B) <= r*r
}
