package collision

import (
	"fmt"
	"time"

	"github.com/gekko3d/collision/shape"
)

// WorldStats summarises the frames run so far.
type WorldStats struct {
	Frames       uint64
	Delivered    uint64
	Stale        uint64
	Reloads      int
	LastPass     PassStats
	LastDispatch DispatchStats
}

// CollisionWorld sequences one frame of collision detection: pre hooks,
// snapshot, detection on the worker goroutine, dispatch, post hooks.
//
// All methods must be called from the goroutine that drives Update. The only
// state shared with the worker is the submitted snapshot and the pass's pair
// channel.
type CollisionWorld struct {
	cfg      Config
	registry *Registry
	matrix   CollisionMatrix
	worker   *Worker
	watcher  *ConfigWatcher
	logger   Logger
	frame    uint64
	inflight *Pass
	closed   bool
	stats    WorldStats
}

func NewCollisionWorld(cfg Config, logger Logger) (*CollisionWorld, error) {
	if logger == nil {
		logger = NewNopLogger()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("collision: invalid config: %w", err)
	}
	matrix, err := cfg.BuildMatrix()
	if err != nil {
		return nil, err
	}
	if cfg.Debug {
		logger.SetDebug(true)
	}

	w := &CollisionWorld{
		cfg:      cfg,
		registry: NewRegistry(subLogger(logger, "registry")),
		matrix:   matrix,
		logger:   logger,
	}
	w.registry.pool.SetDeferred(true)

	if cfg.Watch && cfg.Path() != "" {
		watcher, err := NewConfigWatcher(cfg.Path())
		if err != nil {
			return nil, fmt.Errorf("collision: watch %s: %w", cfg.Path(), err)
		}
		w.watcher = watcher
		logger.Infof("watching %s for matrix changes", cfg.Path())
	}

	w.worker = NewWorker(cfg.ResultBuffer, subLogger(logger, "worker"))
	return w, nil
}

func (w *CollisionWorld) Register(owner Owner, shp shape.Shape, isStatic bool) (ID, error) {
	return w.registry.Register(owner, shp, isStatic)
}

func (w *CollisionWorld) RegisterChild(owner Owner, shp shape.Shape, parentShape shape.Shape) (ID, error) {
	return w.registry.RegisterChild(owner, shp, parentShape)
}

func (w *CollisionWorld) RegisterChildOf(owner Owner, shp shape.Shape, parentID ID) (ID, error) {
	return w.registry.RegisterChildOf(owner, shp, parentID)
}

func (w *CollisionWorld) Unregister(id ID) {
	w.registry.Unregister(id)
}

func (w *CollisionWorld) UnregisterOwner(owner Owner) int {
	return w.registry.UnregisterOwner(owner)
}

func (w *CollisionWorld) Lookup(id ID) (*Entry, bool) {
	return w.registry.Lookup(id)
}

func (w *CollisionWorld) SetShape(id ID, shp shape.Shape) bool {
	return w.registry.SetShape(id, shp)
}

func (w *CollisionWorld) Registry() *Registry {
	return w.registry
}

// RegisterDetectionTarget takes effect from the next snapshot.
func (w *CollisionWorld) RegisterDetectionTarget(a, b EntityTag) {
	w.matrix.RegisterDetectionTarget(a, b)
}

func (w *CollisionWorld) ClearMatrix() {
	w.matrix.ClearMatrix()
}

func (w *CollisionWorld) Matrix() CollisionMatrix {
	return w.matrix
}

func (w *CollisionWorld) SetMatrix(m CollisionMatrix) {
	w.matrix = m
}

func (w *CollisionWorld) Config() Config {
	return w.cfg
}

func (w *CollisionWorld) Stats() WorldStats {
	return w.stats
}

func (w *CollisionWorld) WorkerState() WorkerState {
	return w.worker.State()
}

// Update runs one frame. It returns false once the world is closed, which
// removes it from the App schedule.
func (w *CollisionWorld) Update(dt time.Duration) bool {
	if w.closed {
		return false
	}
	w.pollConfig()

	eachLiveOwner(w.registry, Owner.PreCollision)

	w.frame++
	snap := BuildSnapshot(w.registry, w.matrix, w.frame)
	// Ids released from here on may appear in this snapshot's pairs.
	w.registry.pool.SetEpoch(w.frame)

	pass, err := w.worker.Submit(snap)
	if err != nil {
		w.logger.Errorf("frame %d: %v", w.frame, err)
		w.closed = true
		return false
	}

	drain := pass
	if w.cfg.Pipelined {
		drain, w.inflight = w.inflight, pass
	}
	if drain != nil {
		w.drain(drain)
	}

	eachLiveOwner(w.registry, Owner.PostCollision)
	w.stats.Frames++
	return true
}

func (w *CollisionWorld) drain(pass *Pass) DispatchStats {
	ds := Dispatch(w.registry, pass.Pairs(), w.logger)
	ds.SnapshotID = pass.SnapshotID
	reclaimed := w.registry.pool.Reclaim(pass.Frame)
	if ds.Stale > 0 || reclaimed > 0 {
		w.logger.Debugf("snapshot %s frame %d: %d delivered, %d stale, %d ids reclaimed",
			pass.SnapshotID, pass.Frame, ds.Delivered, ds.Stale, reclaimed)
	}

	w.stats.LastPass = pass.Stats()
	w.stats.LastDispatch = ds
	w.stats.Delivered += uint64(ds.Delivered)
	w.stats.Stale += uint64(ds.Stale)
	return ds
}

// Flush delivers the pass still in flight in pipelined mode. It is a no-op in
// synchronous mode, where every Update drains its own pass.
func (w *CollisionWorld) Flush() DispatchStats {
	if w.inflight == nil {
		return DispatchStats{}
	}
	pass := w.inflight
	w.inflight = nil
	return w.drain(pass)
}

// QueryShape returns the ids of active entries whose shape overlaps shp and
// whose tag is in mask (TagNone matches every tag). Children are only tested
// below a parent that overlaps. It runs synchronously against the live
// registry and never involves the worker.
func (w *CollisionWorld) QueryShape(shp shape.Shape, mask EntityTag) []ID {
	if isNilHandle(shp) {
		return nil
	}
	var hits []ID
	var visit func(id ID)
	visit = func(id ID) {
		e, ok := w.registry.Lookup(id)
		if !ok || !dispatchable(e) || !e.Owner.IsActive() {
			return
		}
		if !shp.CheckHit(e.Shape) {
			return
		}
		if mask == TagNone || e.Owner.Tag()&mask != 0 {
			hits = append(hits, e.ID)
		}
		for _, child := range e.Children {
			visit(child)
		}
	}
	for _, root := range w.registry.roots {
		visit(root)
	}
	return hits
}

func (w *CollisionWorld) pollConfig() {
	if w.watcher == nil {
		return
	}
	changed, err := w.watcher.Poll()
	if err != nil {
		w.logger.Warnf("config watcher: %v", err)
	}
	if changed {
		if err := w.Reload(); err != nil {
			w.logger.Warnf("keeping previous config: %v", err)
		}
	}
}

// Reload re-reads the config file and replaces the matrix and debug flag.
// Switching latency mode flushes the pass in flight first. The pair buffer
// size is fixed for the life of the worker.
func (w *CollisionWorld) Reload() error {
	if w.cfg.Path() == "" {
		return fmt.Errorf("collision: config has no file to reload")
	}
	cfg, err := LoadConfig(w.cfg.Path())
	if err != nil {
		return err
	}
	matrix, err := cfg.BuildMatrix()
	if err != nil {
		return err
	}

	if cfg.Pipelined != w.cfg.Pipelined {
		w.Flush()
	}
	if cfg.ResultBuffer != w.cfg.ResultBuffer {
		w.logger.Infof("result_buffer change to %d ignored until restart", cfg.ResultBuffer)
		cfg.ResultBuffer = w.cfg.ResultBuffer
	}
	cfg.Watch = w.cfg.Watch

	w.matrix = matrix
	w.cfg = cfg
	w.logger.SetDebug(cfg.Debug)
	w.stats.Reloads++
	w.logger.Infof("reloaded %s: %d matrix pairs, pipelined=%v", cfg.Path(), len(cfg.Matrix), cfg.Pipelined)
	return nil
}

// Close stops the worker and the config watcher. Pairs of a pass still in
// flight are discarded. Close is idempotent.
func (w *CollisionWorld) Close() error {
	w.closed = true
	w.worker.Stop()
	if w.inflight != nil {
		for range w.inflight.Pairs() {
		}
		w.inflight = nil
	}
	if w.watcher == nil {
		return nil
	}
	err := w.watcher.Close()
	w.watcher = nil
	return err
}
