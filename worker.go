package collision

import (
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

var ErrWorkerStopped = errors.New("collision: worker stopped")

// DetectedPair names two overlapping entries. Everything else is resolved by
// id when the pair is dispatched.
type DetectedPair struct {
	A, B ID
}

type pairKey struct{ lo, hi ID }

func keyOf(a, b ID) pairKey {
	if a > b {
		a, b = b, a
	}
	return pairKey{a, b}
}

type WorkerState int32

const (
	WorkerIdle WorkerState = iota
	WorkerBusy
	WorkerStopping
)

func (s WorkerState) String() string {
	switch s {
	case WorkerIdle:
		return "idle"
	case WorkerBusy:
		return "busy"
	case WorkerStopping:
		return "stopping"
	}
	return "unknown"
}

// PassStats is filled in by the worker before the pass's pair channel is
// closed and may be read once the channel is drained.
type PassStats struct {
	Proxies  int
	Rejected int // pairs dropped by the tag matrix
	Tested   int // narrow phase tests run
	Pairs    int
	Aborted  bool
	Duration time.Duration
}

// Pass is one detection run over one snapshot. Pairs are streamed while the
// worker computes; the channel is closed when the pass is complete, which is
// the only signal a consumer needs to know the worker is done with it.
type Pass struct {
	SnapshotID uuid.UUID
	Frame      uint64
	pairs      chan DetectedPair
	stats      PassStats
}

func (p *Pass) Pairs() <-chan DetectedPair {
	return p.pairs
}

// Stats must only be called after Pairs has been closed.
func (p *Pass) Stats() PassStats {
	return p.stats
}

type job struct {
	snap *Snapshot
	pass *Pass
}

// Worker runs detection passes on one long lived goroutine. Snapshots are
// handed over through a channel and never referenced by the sender again.
type Worker struct {
	jobs       chan job
	stop       chan struct{}
	stopOnce   sync.Once
	wg         sync.WaitGroup
	state      atomic.Int32
	bufferSize int
	logger     Logger
}

// NewWorker starts the detection goroutine. bufferSize bounds how many pairs
// may be queued ahead of the consumer.
func NewWorker(bufferSize int, logger Logger) *Worker {
	if bufferSize < 1 {
		bufferSize = 1
	}
	if logger == nil {
		logger = NewNopLogger()
	}
	w := &Worker{
		jobs:       make(chan job, 1),
		stop:       make(chan struct{}),
		bufferSize: bufferSize,
		logger:     logger,
	}
	w.state.Store(int32(WorkerIdle))
	w.wg.Add(1)
	go w.run()
	logger.Infof("detection worker started (buffer %d)", bufferSize)
	return w
}

func (w *Worker) State() WorkerState {
	return WorkerState(w.state.Load())
}

// Submit transfers snap to the worker. Every returned Pass must be drained,
// otherwise the worker blocks once the pair buffer is full. Submit blocks
// while a previous snapshot is still queued.
func (w *Worker) Submit(snap *Snapshot) (*Pass, error) {
	select {
	case <-w.stop:
		return nil, ErrWorkerStopped
	default:
	}

	pass := &Pass{
		SnapshotID: snap.ID,
		Frame:      snap.Frame,
		pairs:      make(chan DetectedPair, w.bufferSize),
	}
	select {
	case w.jobs <- job{snap: snap, pass: pass}:
		return pass, nil
	case <-w.stop:
		return nil, ErrWorkerStopped
	}
}

// Stop asks the goroutine to exit and waits for it. A pass in flight is cut
// short and its pair channel closed. Stop is idempotent.
func (w *Worker) Stop() {
	w.stopOnce.Do(func() {
		w.state.Store(int32(WorkerStopping))
		close(w.stop)
		w.wg.Wait()
		w.logger.Infof("detection worker stopped")
	})
}

func (w *Worker) run() {
	defer w.wg.Done()
	for {
		select {
		case <-w.stop:
			w.abandonQueued()
			return
		case j := <-w.jobs:
			w.state.CompareAndSwap(int32(WorkerIdle), int32(WorkerBusy))
			w.detect(j)
			w.state.CompareAndSwap(int32(WorkerBusy), int32(WorkerIdle))
		}
	}
}

func (w *Worker) abandonQueued() {
	for {
		select {
		case j := <-w.jobs:
			j.pass.stats.Aborted = true
			close(j.pass.pairs)
		default:
			return
		}
	}
}

func (w *Worker) detect(j job) {
	start := time.Now()
	d := detector{
		matrix: &j.snap.Matrix,
		seen:   make(map[pairKey]struct{}),
		out:    j.pass.pairs,
		stop:   w.stop,
	}
	d.run(j.snap.Proxies)

	j.pass.stats = PassStats{
		Proxies:  j.snap.Count(),
		Rejected: d.rejected,
		Tested:   d.tested,
		Pairs:    d.emitted,
		Aborted:  d.aborted,
		Duration: time.Since(start),
	}
	close(j.pass.pairs)

	w.logger.Debugf("pass %s frame %d: %d proxies, %d tested, %d rejected, %d pairs in %s",
		j.snap.ID, j.snap.Frame, j.pass.stats.Proxies, d.tested, d.rejected, d.emitted, j.pass.stats.Duration)
}

// detector holds the per pass state. It runs on the worker goroutine only.
type detector struct {
	matrix   *CollisionMatrix
	seen     map[pairKey]struct{}
	out      chan<- DetectedPair
	stop     <-chan struct{}
	rejected int
	tested   int
	emitted  int
	aborted  bool
}

// run tests every unordered pair of top level proxies. Children are only
// visited below a parent pair that already hit.
func (d *detector) run(proxies []Proxy) {
	n := len(proxies)
	for i := 0; i < n-1 && !d.aborted; i++ {
		for j := i + 1; j < n && !d.aborted; j++ {
			d.test(&proxies[i], &proxies[j])
		}
	}
}

func (d *detector) test(a, b *Proxy) {
	if d.aborted || !a.IsActive || !b.IsActive || a.ID == b.ID {
		return
	}
	if !d.matrix.ShouldCollide(a.TagBitIndex, b.Tag) {
		d.rejected++
		return
	}

	d.tested++
	if !a.Shape.CheckHit(b.Shape) {
		return
	}
	if !d.emit(a.ID, b.ID) {
		return
	}

	for i := range a.Children {
		d.test(&a.Children[i], b)
	}
	for i := range b.Children {
		d.test(a, &b.Children[i])
	}
}

// emit sends the pair unless it was already reported this pass. It returns
// false for duplicates and when the worker is stopping.
func (d *detector) emit(a, b ID) bool {
	key := keyOf(a, b)
	if _, ok := d.seen[key]; ok {
		return false
	}
	d.seen[key] = struct{}{}

	select {
	case d.out <- DetectedPair{A: a, B: b}:
		d.emitted++
		return true
	case <-d.stop:
		d.aborted = true
		return false
	}
}
