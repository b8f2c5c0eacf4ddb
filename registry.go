package collision

import (
	"errors"
	"slices"

	"github.com/gekko3d/collision/shape"
)

var (
	ErrNilOwner       = errors.New("collision: nil owner")
	ErrNilShape       = errors.New("collision: nil shape")
	ErrParentNotFound = errors.New("collision: parent not registered")
)

// Entry is the registry's record of one shape. Owner and Shape are borrowed.
type Entry struct {
	ID          ID
	Owner       Owner
	Shape       shape.Shape
	TagBitIndex uint32
	Parent      ID
	Children    []ID
	IsStatic    bool
}

// Registry is the authoritative set of collision entries. It is owned by the
// main loop and is not safe for concurrent use; the detection goroutine only
// ever sees snapshots built from it.
type Registry struct {
	pool    *IdPool
	entries map[ID]*Entry
	roots   []ID
	logger  Logger
}

func NewRegistry(logger Logger) *Registry {
	if logger == nil {
		logger = NewNopLogger()
	}
	return &Registry{
		pool:    NewIdPool(),
		entries: make(map[ID]*Entry),
		logger:  logger,
	}
}

func validateHandles(owner Owner, shp shape.Shape) error {
	if isNilHandle(owner) {
		return ErrNilOwner
	}
	if isNilHandle(shp) {
		return ErrNilShape
	}
	return nil
}

// Register adds a root entry. On rejection InvalidID is returned with the
// reason; nothing is allocated.
func (r *Registry) Register(owner Owner, shp shape.Shape, isStatic bool) (ID, error) {
	if err := validateHandles(owner, shp); err != nil {
		r.logger.Debugf("register rejected: %v", err)
		return InvalidID, err
	}

	id := r.pool.Acquire()
	r.entries[id] = &Entry{
		ID:          id,
		Owner:       owner,
		Shape:       shp,
		TagBitIndex: TagBitIndex(owner.Tag()),
		IsStatic:    isStatic,
	}
	r.roots = append(r.roots, id)
	return id, nil
}

// RegisterChild attaches shp below the entry whose shape is parentShape.
// Root entries are searched first; nested entries are accepted as parents
// when no root matches. An unknown parent rejects the child.
func (r *Registry) RegisterChild(owner Owner, shp shape.Shape, parentShape shape.Shape) (ID, error) {
	if err := validateHandles(owner, shp); err != nil {
		r.logger.Debugf("register child rejected: %v", err)
		return InvalidID, err
	}

	parent := r.findByShape(parentShape)
	if parent == nil {
		r.logger.Debugf("register child rejected: %v", ErrParentNotFound)
		return InvalidID, ErrParentNotFound
	}
	return r.attach(parent, owner, shp), nil
}

// RegisterChildOf attaches shp below the entry parentID.
func (r *Registry) RegisterChildOf(owner Owner, shp shape.Shape, parentID ID) (ID, error) {
	if err := validateHandles(owner, shp); err != nil {
		r.logger.Debugf("register child rejected: %v", err)
		return InvalidID, err
	}

	parent, ok := r.entries[parentID]
	if !ok {
		r.logger.Debugf("register child rejected: parent %d: %v", parentID, ErrParentNotFound)
		return InvalidID, ErrParentNotFound
	}
	return r.attach(parent, owner, shp), nil
}

func (r *Registry) attach(parent *Entry, owner Owner, shp shape.Shape) ID {
	id := r.pool.Acquire()
	r.entries[id] = &Entry{
		ID:          id,
		Owner:       owner,
		Shape:       shp,
		TagBitIndex: TagBitIndex(owner.Tag()),
		Parent:      parent.ID,
		IsStatic:    parent.IsStatic,
	}
	parent.Children = append(parent.Children, id)
	return id
}

func (r *Registry) findByShape(shp shape.Shape) *Entry {
	if isNilHandle(shp) {
		return nil
	}
	for _, id := range r.roots {
		if e := r.entries[id]; e != nil && sameHandle(e.Shape, shp) {
			return e
		}
	}

	var found *Entry
	for _, e := range r.entries {
		if sameHandle(e.Shape, shp) && (found == nil || e.ID < found.ID) {
			found = e
		}
	}
	return found
}

// Unregister removes id and every descendant, deepest first. Unknown ids are
// ignored.
func (r *Registry) Unregister(id ID) {
	e, ok := r.entries[id]
	if !ok {
		return
	}
	if p, ok := r.entries[e.Parent]; ok {
		p.Children = slices.DeleteFunc(p.Children, func(c ID) bool { return c == id })
	}
	r.unregisterTree(e)
}

func (r *Registry) unregisterTree(e *Entry) {
	for _, childID := range e.Children {
		if child, ok := r.entries[childID]; ok {
			r.unregisterTree(child)
		}
	}
	delete(r.entries, e.ID)
	if e.Parent == InvalidID {
		r.roots = slices.DeleteFunc(r.roots, func(root ID) bool { return root == e.ID })
	}
	r.pool.Release(e.ID)
}

// UnregisterOwner removes every entry belonging to owner and returns how many
// trees were removed.
func (r *Registry) UnregisterOwner(owner Owner) int {
	var ids []ID
	r.Each(func(e *Entry) bool {
		if sameHandle(e.Owner, owner) {
			ids = append(ids, e.ID)
		}
		return true
	})

	removed := 0
	for _, id := range ids {
		if _, ok := r.entries[id]; ok {
			r.Unregister(id)
			removed++
		}
	}
	return removed
}

// Lookup never panics; a miss is expected for ids invalidated mid-frame.
func (r *Registry) Lookup(id ID) (*Entry, bool) {
	e, ok := r.entries[id]
	return e, ok
}

// SetShape swaps the shape of id. A nil shape keeps the entry registered but
// excludes it, and its children, from snapshots until a shape is set again.
func (r *Registry) SetShape(id ID, shp shape.Shape) bool {
	e, ok := r.entries[id]
	if !ok {
		return false
	}
	e.Shape = shp
	return true
}

func (r *Registry) Len() int {
	return len(r.entries)
}

func (r *Registry) Roots() []ID {
	return slices.Clone(r.roots)
}

// Each walks every entry depth first in registration order of the roots.
// Returning false from fn stops the walk. fn must not mutate the registry.
func (r *Registry) Each(fn func(e *Entry) bool) {
	for _, id := range r.roots {
		if !r.walk(id, fn) {
			return
		}
	}
}

func (r *Registry) walk(id ID, fn func(e *Entry) bool) bool {
	e, ok := r.entries[id]
	if !ok {
		return true
	}
	if !fn(e) {
		return false
	}
	for _, child := range e.Children {
		if !r.walk(child, fn) {
			return false
		}
	}
	return true
}

// Owners lists the owner of every entry in walk order, duplicates included.
func (r *Registry) Owners() []Owner {
	owners := make([]Owner, 0, len(r.entries))
	r.Each(func(e *Entry) bool {
		owners = append(owners, e.Owner)
		return true
	})
	return owners
}

// Clear unregisters everything. Ids go back through the pool like any other
// release.
func (r *Registry) Clear() {
	for _, id := range slices.Clone(r.roots) {
		r.Unregister(id)
	}
}
