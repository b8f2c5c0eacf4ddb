package collision

import "github.com/google/uuid"

// DispatchStats counts what happened to the pairs of one drain. SnapshotID
// names the snapshot the pairs were computed from when the drain came from a
// Pass.
type DispatchStats struct {
	SnapshotID uuid.UUID
	Delivered  int
	Stale      int
}

// Dispatch drains pairs until the channel is closed, i.e. until the worker is
// done with the pass and nothing is left buffered. Each pair is resolved
// against the registry as it is now; a pair whose entry has since been
// removed, or lost its shape, is dropped. Notification order follows the
// channel and carries no other guarantee.
//
// Dispatch runs on the goroutine that owns registry. Collision callbacks may
// mutate the registry; later pairs are resolved against the result.
func Dispatch(registry *Registry, pairs <-chan DetectedPair, logger Logger) DispatchStats {
	if logger == nil {
		logger = NewNopLogger()
	}

	var stats DispatchStats
	for pair := range pairs {
		a, okA := registry.Lookup(pair.A)
		b, okB := registry.Lookup(pair.B)
		if !okA || !okB || !dispatchable(a) || !dispatchable(b) {
			stats.Stale++
			logger.Debugf("dropping stale pair %d/%d", pair.A, pair.B)
			continue
		}

		// Both sides were resolved before either callback runs, so a callback
		// that removes its own entry still lets the other side hear about it.
		ca, cb := contactFor(a), contactFor(b)
		a.Owner.OnCollision(cb)
		b.Owner.OnCollision(ca)
		stats.Delivered++
	}
	return stats
}

func dispatchable(e *Entry) bool {
	return !isNilHandle(e.Owner) && !isNilHandle(e.Shape)
}

func contactFor(e *Entry) Contact {
	return Contact{
		ID:       e.ID,
		Owner:    e.Owner,
		Shape:    e.Shape,
		Tag:      e.Owner.Tag(),
		IsStatic: e.IsStatic,
	}
}
