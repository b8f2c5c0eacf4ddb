package collision

import (
	"sync/atomic"

	"github.com/gekko3d/collision/shape"
	"github.com/go-gl/mathgl/mgl32"
)

type recordingOwner struct {
	name     string
	tag      EntityTag
	active   bool
	contacts []Contact
	pre      int
	post     int
	onHit    func(c Contact)
	onPre    func()
	onPost   func()
}

func newOwner(name string, tag EntityTag) *recordingOwner {
	return &recordingOwner{name: name, tag: tag, active: true}
}

func (o *recordingOwner) Tag() EntityTag { return o.tag }
func (o *recordingOwner) IsActive() bool { return o.active }
func (o *recordingOwner) PreCollision() {
	o.pre++
	if o.onPre != nil {
		o.onPre()
	}
}

func (o *recordingOwner) PostCollision() {
	o.post++
	if o.onPost != nil {
		o.onPost()
	}
}

func (o *recordingOwner) OnCollision(c Contact) {
	o.contacts = append(o.contacts, c)
	if o.onHit != nil {
		o.onHit(c)
	}
}

func (o *recordingOwner) contactIDs() []ID {
	ids := make([]ID, len(o.contacts))
	for i, c := range o.contacts {
		ids[i] = c.ID
	}
	return ids
}

func sphereAt(x, y, z, r float32) *shape.Sphere {
	return shape.NewSphere(mgl32.Vec3{x, y, z}, r)
}

func boxAt(x, y, z, h float32) *shape.AABB {
	return shape.NewAABB(mgl32.Vec3{x, y, z}, mgl32.Vec3{h, h, h})
}

// countingSphere counts narrow phase calls across all of its clones.
type countingSphere struct {
	shape.Sphere
	calls *atomic.Int64
}

func newCountingSphere(x, y, z, r float32, calls *atomic.Int64) *countingSphere {
	return &countingSphere{Sphere: *sphereAt(x, y, z, r), calls: calls}
}

func (c *countingSphere) Clone() shape.Shape {
	cp := *c
	return &cp
}

func (c *countingSphere) CheckHit(other shape.Shape) bool {
	c.calls.Add(1)
	if o, ok := other.(*countingSphere); ok {
		return shape.Hit(&c.Sphere, &o.Sphere)
	}
	return shape.Hit(&c.Sphere, other)
}

// gateSphere blocks in CheckHit until gate is closed, so tests can hold a
// pass in flight.
type gateSphere struct {
	shape.Sphere
	entered chan struct{}
	gate    chan struct{}
}

func newGateSphere(x, y, z, r float32) *gateSphere {
	return &gateSphere{
		Sphere:  *sphereAt(x, y, z, r),
		entered: make(chan struct{}, 64),
		gate:    make(chan struct{}),
	}
}

func (g *gateSphere) Clone() shape.Shape {
	cp := *g
	return &cp
}

func (g *gateSphere) CheckHit(other shape.Shape) bool {
	select {
	case g.entered <- struct{}{}:
	default:
	}
	<-g.gate
	if o, ok := other.(*gateSphere); ok {
		return shape.Hit(&g.Sphere, &o.Sphere)
	}
	return shape.Hit(&g.Sphere, other)
}

func newTestWorld(pipelined bool) *CollisionWorld {
	cfg := DefaultConfig()
	cfg.Pipelined = pipelined
	w, err := NewCollisionWorld(cfg, nil)
	if err != nil {
		panic(err)
	}
	return w
}

func collectPairs(p *Pass) []DetectedPair {
	var pairs []DetectedPair
	for pair := range p.Pairs() {
		pairs = append(pairs, pair)
	}
	return pairs
}
