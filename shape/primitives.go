package shape

import "github.com/go-gl/mathgl/mgl32"

type Sphere struct {
	C      mgl32.Vec3
	Radius float32
}

func NewSphere(center mgl32.Vec3, radius float32) *Sphere {
	return &Sphere{C: center, Radius: radius}
}

func (s *Sphere) Kind() Kind                  { return KindSphere }
func (s *Sphere) Center() mgl32.Vec3          { return s.C }
func (s *Sphere) Transform(center mgl32.Vec3) { s.C = center }
func (s *Sphere) CheckHit(other Shape) bool   { return Hit(s, other) }
func (s *Sphere) Clone() Shape                { c := *s; return &c }

// AABB is an axis aligned box stored as center and half extents.
type AABB struct {
	C           mgl32.Vec3
	HalfExtents mgl32.Vec3
}

func NewAABB(center, halfExtents mgl32.Vec3) *AABB {
	return &AABB{C: center, HalfExtents: halfExtents}
}

// NewAABBMinMax builds a box from its corners.
func NewAABBMinMax(min, max mgl32.Vec3) *AABB {
	return &AABB{
		C:           min.Add(max).Mul(0.5),
		HalfExtents: max.Sub(min).Mul(0.5),
	}
}

func (b *AABB) Kind() Kind                  { return KindAABB }
func (b *AABB) Center() mgl32.Vec3          { return b.C }
func (b *AABB) Transform(center mgl32.Vec3) { b.C = center }
func (b *AABB) CheckHit(other Shape) bool   { return Hit(b, other) }
func (b *AABB) Clone() Shape                { c := *b; return &c }
func (b *AABB) Min() mgl32.Vec3             { return b.C.Sub(b.HalfExtents) }
func (b *AABB) Max() mgl32.Vec3             { return b.C.Add(b.HalfExtents) }

// Segment is a finite line from A to B, used for rays and wires.
type Segment struct {
	A, B mgl32.Vec3
}

func NewSegment(a, b mgl32.Vec3) *Segment {
	return &Segment{A: a, B: b}
}

func (s *Segment) Kind() Kind                { return KindSegment }
func (s *Segment) Center() mgl32.Vec3        { return s.A.Add(s.B).Mul(0.5) }
func (s *Segment) CheckHit(other Shape) bool { return Hit(s, other) }
func (s *Segment) Clone() Shape              { c := *s; return &c }

func (s *Segment) Transform(center mgl32.Vec3) {
	delta := center.Sub(s.Center())
	s.A = s.A.Add(delta)
	s.B = s.B.Add(delta)
}

// Capsule is the set of points within Radius of the segment AB.
type Capsule struct {
	A, B   mgl32.Vec3
	Radius float32
}

func NewCapsule(a, b mgl32.Vec3, radius float32) *Capsule {
	return &Capsule{A: a, B: b, Radius: radius}
}

func (c *Capsule) Kind() Kind                { return KindCapsule }
func (c *Capsule) Center() mgl32.Vec3        { return c.A.Add(c.B).Mul(0.5) }
func (c *Capsule) CheckHit(other Shape) bool { return Hit(c, other) }
func (c *Capsule) Clone() Shape              { cp := *c; return &cp }

func (c *Capsule) Transform(center mgl32.Vec3) {
	delta := center.Sub(c.Center())
	c.A = c.A.Add(delta)
	c.B = c.B.Add(delta)
}
