package shape

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

const epsilon = 1e-4

func abs32(v float32) float32 {
	return float32(math.Abs(float64(v)))
}

func closestPointOnSegment(p, a, b mgl32.Vec3) mgl32.Vec3 {
	ab := b.Sub(a)
	denom := ab.Dot(ab)
	if denom < 1e-12 {
		return a
	}
	t := mgl32.Clamp(p.Sub(a).Dot(ab)/denom, 0, 1)
	return a.Add(ab.Mul(t))
}

func closestPointOnAABB(p, min, max mgl32.Vec3) mgl32.Vec3 {
	return mgl32.Vec3{
		mgl32.Clamp(p.X(), min.X(), max.X()),
		mgl32.Clamp(p.Y(), min.Y(), max.Y()),
		mgl32.Clamp(p.Z(), min.Z(), max.Z()),
	}
}

func distSqPointAABB(p, min, max mgl32.Vec3) float32 {
	return closestPointOnAABB(p, min, max).Sub(p).LenSqr()
}

// distSqSegmentSegment returns the squared distance between segments p1q1 and
// p2q2, handling degenerate (point) segments.
func distSqSegmentSegment(p1, q1, p2, q2 mgl32.Vec3) float32 {
	d1 := q1.Sub(p1)
	d2 := q2.Sub(p2)
	r := p1.Sub(p2)
	a := d1.Dot(d1)
	e := d2.Dot(d2)
	f := d2.Dot(r)

	const eps = 1e-12
	if a <= eps && e <= eps {
		return r.Dot(r)
	}

	var s, t float32
	if a <= eps {
		t = mgl32.Clamp(f/e, 0, 1)
	} else {
		c := d1.Dot(r)
		if e <= eps {
			s = mgl32.Clamp(-c/a, 0, 1)
		} else {
			b := d1.Dot(d2)
			denom := a*e - b*b
			if denom != 0 {
				s = mgl32.Clamp((b*f-c*e)/denom, 0, 1)
			}
			t = (b*s + f) / e
			if t < 0 {
				t = 0
				s = mgl32.Clamp(-c/a, 0, 1)
			} else if t > 1 {
				t = 1
				s = mgl32.Clamp((b-c)/a, 0, 1)
			}
		}
	}

	c1 := p1.Add(d1.Mul(s))
	c2 := p2.Add(d2.Mul(t))
	return c1.Sub(c2).LenSqr()
}

// segmentIntersectsAABB is a slab test clipped to the segment's extent.
func segmentIntersectsAABB(a, b, min, max mgl32.Vec3) bool {
	d := b.Sub(a)
	tMin, tMax := float32(0), float32(1)
	for i := 0; i < 3; i++ {
		if abs32(d[i]) < 1e-8 {
			if a[i] < min[i] || a[i] > max[i] {
				return false
			}
			continue
		}
		ood := 1 / d[i]
		t1 := (min[i] - a[i]) * ood
		t2 := (max[i] - a[i]) * ood
		if t1 > t2 {
			t1, t2 = t2, t1
		}
		if t1 > tMin {
			tMin = t1
		}
		if t2 < tMax {
			tMax = t2
		}
		if tMin > tMax {
			return false
		}
	}
	return true
}

// distSqSegmentAABB minimises the point-to-box distance along the segment.
// That distance is convex in the segment parameter, so a ternary search
// converges to the global minimum.
func distSqSegmentAABB(a, b, min, max mgl32.Vec3) float32 {
	if segmentIntersectsAABB(a, b, min, max) {
		return 0
	}
	d := b.Sub(a)
	at := func(t float32) float32 {
		return distSqPointAABB(a.Add(d.Mul(t)), min, max)
	}

	lo, hi := float32(0), float32(1)
	for i := 0; i < 48; i++ {
		m1 := lo + (hi-lo)/3
		m2 := hi - (hi-lo)/3
		if at(m1) <= at(m2) {
			hi = m2
		} else {
			lo = m1
		}
	}
	best := at((lo + hi) / 2)
	if e := at(0); e < best {
		best = e
	}
	if e := at(1); e < best {
		best = e
	}
	return best
}
