package collision

import (
	"github.com/gekko3d/collision/shape"
	"github.com/google/uuid"
)

// Proxy is a self contained copy of one registry entry and its subtree. It
// holds no reference into the registry or into the original shape.
type Proxy struct {
	ID          ID
	Tag         EntityTag
	TagBitIndex uint32
	IsActive    bool
	IsStatic    bool
	Shape       shape.Shape
	Children    []Proxy
}

// Snapshot is everything a detection pass reads. Once submitted to a Worker
// it belongs to the worker; the caller must not touch it again.
type Snapshot struct {
	ID      uuid.UUID
	Frame   uint64
	Matrix  CollisionMatrix
	Proxies []Proxy
}

// BuildSnapshot deep copies the registry hierarchy. Activity and tag are read
// from the owners now so the pass sees this frame's state. Entries without an
// owner or shape are skipped together with their subtree.
func BuildSnapshot(registry *Registry, matrix CollisionMatrix, frame uint64) *Snapshot {
	snap := &Snapshot{
		ID:      uuid.New(),
		Frame:   frame,
		Matrix:  matrix,
		Proxies: make([]Proxy, 0, len(registry.roots)),
	}
	for _, id := range registry.roots {
		if p, ok := cloneEntry(registry, id); ok {
			snap.Proxies = append(snap.Proxies, p)
		}
	}
	return snap
}

func cloneEntry(registry *Registry, id ID) (Proxy, bool) {
	e, ok := registry.entries[id]
	if !ok || isNilHandle(e.Owner) || isNilHandle(e.Shape) {
		return Proxy{}, false
	}

	p := Proxy{
		ID:          e.ID,
		Tag:         e.Owner.Tag(),
		TagBitIndex: e.TagBitIndex,
		IsActive:    e.Owner.IsActive(),
		IsStatic:    e.IsStatic,
		Shape:       e.Shape.Clone(),
	}
	if len(e.Children) > 0 {
		p.Children = make([]Proxy, 0, len(e.Children))
		for _, childID := range e.Children {
			if child, ok := cloneEntry(registry, childID); ok {
				p.Children = append(p.Children, child)
			}
		}
	}
	return p, true
}

// Count returns the number of proxies in the snapshot, children included.
func (s *Snapshot) Count() int {
	n := 0
	var walk func(ps []Proxy)
	walk = func(ps []Proxy) {
		for i := range ps {
			n++
			walk(ps[i].Children)
		}
	}
	walk(s.Proxies)
	return n
}
