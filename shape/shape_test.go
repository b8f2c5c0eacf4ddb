package shape

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
)

func TestHitTableIsSymmetric(t *testing.T) {
	shapes := []Shape{
		NewSphere(mgl32.Vec3{0, 0, 0}, 1),
		NewAABB(mgl32.Vec3{0.5, 0, 0}, mgl32.Vec3{1, 1, 1}),
		NewSegment(mgl32.Vec3{-2, 0, 0}, mgl32.Vec3{2, 0, 0}),
		NewCapsule(mgl32.Vec3{0, -2, 0}, mgl32.Vec3{0, 2, 0}, 0.5),
		NewSphere(mgl32.Vec3{50, 50, 50}, 1),
	}

	for i, a := range shapes {
		for j, b := range shapes {
			assert.Equal(t, Hit(a, b), Hit(b, a), "asymmetric result for %d(%s) vs %d(%s)", i, a.Kind(), j, b.Kind())
		}
	}
}

func TestHitCases(t *testing.T) {
	cases := []struct {
		name string
		a, b Shape
		hit  bool
	}{
		{"sphere sphere overlap", NewSphere(mgl32.Vec3{0, 0, 0}, 1), NewSphere(mgl32.Vec3{1.5, 0, 0}, 1), true},
		{"sphere sphere touching", NewSphere(mgl32.Vec3{0, 0, 0}, 1), NewSphere(mgl32.Vec3{2, 0, 0}, 1), true},
		{"sphere sphere apart", NewSphere(mgl32.Vec3{0, 0, 0}, 1), NewSphere(mgl32.Vec3{3, 0, 0}, 1), false},
		{"sphere inside box", NewSphere(mgl32.Vec3{0, 0, 0}, 1), NewAABB(mgl32.Vec3{0, 0, 0}, mgl32.Vec3{5, 5, 5}), true},
		{"sphere near box corner", NewSphere(mgl32.Vec3{2, 2, 2}, 1), NewAABB(mgl32.Vec3{0, 0, 0}, mgl32.Vec3{1, 1, 1}), false},
		{"sphere on box face", NewSphere(mgl32.Vec3{1.5, 0, 0}, 1), NewAABB(mgl32.Vec3{0, 0, 0}, mgl32.Vec3{1, 1, 1}), true},
		{"box box overlap", NewAABB(mgl32.Vec3{0, 0, 0}, mgl32.Vec3{1, 1, 1}), NewAABB(mgl32.Vec3{1.5, 0, 0}, mgl32.Vec3{1, 1, 1}), true},
		{"box box apart on one axis", NewAABB(mgl32.Vec3{0, 0, 0}, mgl32.Vec3{1, 1, 1}), NewAABB(mgl32.Vec3{0, 0, 2.5}, mgl32.Vec3{1, 1, 1}), false},
		{"segment through box", NewSegment(mgl32.Vec3{-5, 0, 0}, mgl32.Vec3{5, 0, 0}), NewAABB(mgl32.Vec3{0, 0, 0}, mgl32.Vec3{1, 1, 1}), true},
		{"segment short of box", NewSegment(mgl32.Vec3{-5, 0, 0}, mgl32.Vec3{-2, 0, 0}), NewAABB(mgl32.Vec3{0, 0, 0}, mgl32.Vec3{1, 1, 1}), false},
		{"segment parallel outside box", NewSegment(mgl32.Vec3{-5, 3, 0}, mgl32.Vec3{5, 3, 0}), NewAABB(mgl32.Vec3{0, 0, 0}, mgl32.Vec3{1, 1, 1}), false},
		{"segment through sphere", NewSegment(mgl32.Vec3{-5, 0.5, 0}, mgl32.Vec3{5, 0.5, 0}), NewSphere(mgl32.Vec3{0, 0, 0}, 1), true},
		{"segments crossing", NewSegment(mgl32.Vec3{-1, 0, 0}, mgl32.Vec3{1, 0, 0}), NewSegment(mgl32.Vec3{0, -1, 0}, mgl32.Vec3{0, 1, 0}), true},
		{"segments skew", NewSegment(mgl32.Vec3{-1, 0, 0}, mgl32.Vec3{1, 0, 0}), NewSegment(mgl32.Vec3{0, -1, 1}, mgl32.Vec3{0, 1, 1}), false},
		{"capsule capsule parallel", NewCapsule(mgl32.Vec3{0, 0, 0}, mgl32.Vec3{0, 4, 0}, 0.5), NewCapsule(mgl32.Vec3{0.9, 0, 0}, mgl32.Vec3{0.9, 4, 0}, 0.5), true},
		{"capsule capsule apart", NewCapsule(mgl32.Vec3{0, 0, 0}, mgl32.Vec3{0, 4, 0}, 0.5), NewCapsule(mgl32.Vec3{2, 0, 0}, mgl32.Vec3{2, 4, 0}, 0.5), false},
		{"capsule sphere end cap", NewCapsule(mgl32.Vec3{0, 0, 0}, mgl32.Vec3{0, 4, 0}, 0.5), NewSphere(mgl32.Vec3{0, 5, 0}, 0.6), true},
		{"capsule box diagonal near", NewCapsule(mgl32.Vec3{2, 2, 0}, mgl32.Vec3{4, 0, 0}, 1.5), NewAABB(mgl32.Vec3{0, 0, 0}, mgl32.Vec3{1, 1, 1}), true},
		{"capsule box diagonal far", NewCapsule(mgl32.Vec3{3, 3, 0}, mgl32.Vec3{6, 0, 0}, 0.5), NewAABB(mgl32.Vec3{0, 0, 0}, mgl32.Vec3{1, 1, 1}), false},
		{"segment capsule", NewSegment(mgl32.Vec3{-3, 0.4, 0}, mgl32.Vec3{3, 0.4, 0}), NewCapsule(mgl32.Vec3{0, 1, 0}, mgl32.Vec3{0, 4, 0}, 0.7), true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.hit, Hit(tc.a, tc.b))
			assert.Equal(t, tc.hit, tc.a.CheckHit(tc.b))
		})
	}
}

func TestHitNil(t *testing.T) {
	s := NewSphere(mgl32.Vec3{}, 1)
	assert.False(t, Hit(s, nil))
	assert.False(t, Hit(nil, s))
}

func TestCloneIsIndependent(t *testing.T) {
	orig := NewCapsule(mgl32.Vec3{0, 0, 0}, mgl32.Vec3{0, 2, 0}, 1)
	clone := orig.Clone()

	orig.Transform(mgl32.Vec3{10, 10, 10})

	assert.Equal(t, mgl32.Vec3{0, 1, 0}, clone.Center())
	assert.Equal(t, mgl32.Vec3{10, 10, 10}, orig.Center())
	assert.Equal(t, mgl32.Vec3{10, 9, 10}, orig.A)
}

func TestTransformKeepsExtent(t *testing.T) {
	seg := NewSegment(mgl32.Vec3{0, 0, 0}, mgl32.Vec3{4, 0, 0})
	seg.Transform(mgl32.Vec3{0, 0, 0})
	assert.Equal(t, mgl32.Vec3{-2, 0, 0}, seg.A)
	assert.Equal(t, mgl32.Vec3{2, 0, 0}, seg.B)

	box := NewAABBMinMax(mgl32.Vec3{0, 0, 0}, mgl32.Vec3{2, 4, 6})
	assert.Equal(t, mgl32.Vec3{1, 2, 3}, box.Center())
	box.Transform(mgl32.Vec3{5, 5, 5})
	assert.Equal(t, mgl32.Vec3{4, 3, 2}, box.Min())
	assert.Equal(t, mgl32.Vec3{6, 7, 8}, box.Max())
}

// wrappedSphere reports KindSphere without being a *Sphere.
type wrappedSphere struct {
	Sphere
}

func TestHitForeignShapeOfKnownKind(t *testing.T) {
	foreign := &wrappedSphere{Sphere: *NewSphere(mgl32.Vec3{0, 0, 0}, 1)}
	others := []Shape{
		NewSphere(mgl32.Vec3{0, 0, 0}, 1),
		NewAABB(mgl32.Vec3{0, 0, 0}, mgl32.Vec3{1, 1, 1}),
		NewSegment(mgl32.Vec3{-1, 0, 0}, mgl32.Vec3{1, 0, 0}),
		NewCapsule(mgl32.Vec3{0, -1, 0}, mgl32.Vec3{0, 1, 0}, 0.5),
		foreign,
	}
	for _, other := range others {
		assert.NotPanics(t, func() {
			assert.False(t, Hit(foreign, other), other.Kind().String())
			assert.False(t, Hit(other, foreign), other.Kind().String())
		})
	}
}
