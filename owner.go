package collision

import (
	"reflect"

	"github.com/gekko3d/collision/shape"
)

// Owner is the game object behind a registered shape. The registry borrows
// owners and never manages their lifetime.
type Owner interface {
	Tag() EntityTag
	IsActive() bool
	OnCollision(contact Contact)
	PreCollision()
	PostCollision()
}

// Contact describes the other side of a collision at dispatch time.
type Contact struct {
	ID       ID
	Owner    Owner
	Shape    shape.Shape
	Tag      EntityTag
	IsStatic bool
}

// BaseOwner can be embedded to get no-op hooks and a fixed tag.
type BaseOwner struct {
	EntityTag EntityTag
	Inactive  bool
}

func (o *BaseOwner) Tag() EntityTag        { return o.EntityTag }
func (o *BaseOwner) IsActive() bool        { return !o.Inactive }
func (o *BaseOwner) OnCollision(_ Contact) {}
func (o *BaseOwner) PreCollision()         {}
func (o *BaseOwner) PostCollision()        {}

// isNilHandle treats typed nil pointers inside an interface as nil.
func isNilHandle(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Interface, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan:
		return rv.IsNil()
	}
	return false
}

// eachLiveOwner calls fn once per distinct owner, in registry walk order.
// Each owner is looked up again right before its call, so an owner whose
// entries were unregistered by an earlier call is skipped. Owners with non
// comparable dynamic types cannot be deduplicated and are called once per
// entry.
func eachLiveOwner(registry *Registry, fn func(Owner)) {
	var ids []ID
	registry.Each(func(e *Entry) bool {
		ids = append(ids, e.ID)
		return true
	})

	seen := make(map[Owner]struct{}, len(ids))
	for _, id := range ids {
		e, ok := registry.Lookup(id)
		if !ok || isNilHandle(e.Owner) {
			continue
		}
		o := e.Owner
		if reflect.TypeOf(o).Comparable() {
			if _, ok := seen[o]; ok {
				continue
			}
			seen[o] = struct{}{}
		}
		fn(o)
	}
}

// sameHandle compares two borrowed handles by identity without panicking on
// non comparable dynamic types.
func sameHandle(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	ta := reflect.TypeOf(a)
	if ta != reflect.TypeOf(b) || !ta.Comparable() {
		return false
	}
	return a == b
}
