package collision

import (
	"slices"
	"sync"
)

// ID identifies a registered collision entry. Zero is never handed out.
type ID uint32

const InvalidID ID = 0

type releasedID struct {
	id    ID
	epoch uint64
}

// IdPool hands out small integer ids and recycles released ones. The lowest
// free id is always reused first so ids stay dense.
//
// In deferred mode a released id is parked with the current epoch and only
// becomes reusable after Reclaim is called with an epoch at or past it. The
// collision world uses this so that an id still named by an in-flight pass is
// never handed to a new entry.
type IdPool struct {
	mu       sync.Mutex
	next     ID
	recycled []ID
	pending  []releasedID
	live     map[ID]struct{}
	deferred bool
	epoch    uint64
}

func NewIdPool() *IdPool {
	return &IdPool{
		next: 1,
		live: make(map[ID]struct{}),
	}
}

func (p *IdPool) Acquire() ID {
	p.mu.Lock()
	defer p.mu.Unlock()

	var id ID
	if len(p.recycled) > 0 {
		id = p.recycled[0]
		p.recycled = p.recycled[1:]
	} else {
		id = p.next
		p.next += 1
	}
	p.live[id] = struct{}{}
	return id
}

// Release returns id to the pool. Releasing an id that is not live is a no-op,
// so a double release can never hand the same id to two owners.
func (p *IdPool) Release(id ID) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if _, ok := p.live[id]; !ok {
		return
	}
	delete(p.live, id)

	if p.deferred {
		p.pending = append(p.pending, releasedID{id: id, epoch: p.epoch})
		return
	}
	p.recycle(id)
}

func (p *IdPool) recycle(id ID) {
	idx, _ := slices.BinarySearch(p.recycled, id)
	p.recycled = slices.Insert(p.recycled, idx, id)
}

func (p *IdPool) SetDeferred(deferred bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.deferred = deferred
	if !deferred {
		for _, r := range p.pending {
			p.recycle(r.id)
		}
		p.pending = p.pending[:0]
	}
}

// SetEpoch stamps subsequent releases.
func (p *IdPool) SetEpoch(epoch uint64) {
	p.mu.Lock()
	p.epoch = epoch
	p.mu.Unlock()
}

// Reclaim makes every id released at or before epoch reusable.
func (p *IdPool) Reclaim(epoch uint64) int {
	p.mu.Lock()
	defer p.mu.Unlock()

	n := 0
	p.pending = slices.DeleteFunc(p.pending, func(r releasedID) bool {
		if r.epoch > epoch {
			return false
		}
		p.recycle(r.id)
		n++
		return true
	})
	return n
}

func (p *IdPool) Live(id ID) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	_, ok := p.live[id]
	return ok
}

// Len reports the number of live ids.
func (p *IdPool) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.live)
}

// Pending reports how many released ids are waiting for Reclaim.
func (p *IdPool) Pending() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.pending)
}

// Reset forgets every id, live, parked or recycled.
func (p *IdPool) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.next = 1
	p.recycled = p.recycled[:0]
	p.pending = p.pending[:0]
	clear(p.live)
}
