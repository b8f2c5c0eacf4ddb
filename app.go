package collision

import (
	"context"
	"fmt"
	"io"
	"reflect"
	"time"
)

// Task is anything the App drives once per frame. Returning false removes
// the task from the schedule.
type Task interface {
	Update(dt time.Duration) bool
}

// TaskFunc adapts a function to Task.
type TaskFunc func(dt time.Duration) bool

func (f TaskFunc) Update(dt time.Duration) bool { return f(dt) }

type Module interface {
	Install(app *App)
}

// App is a minimal frame scheduler: ordered stages of tasks plus a bag of
// typed resources that modules share.
type App struct {
	stages    []Stage
	tasks     map[string][]Task
	modules   []Module
	resources map[reflect.Type]any
	built     bool
	frames    uint64
}

func NewApp() *App {
	app := &App{
		tasks:     make(map[string][]Task),
		resources: make(map[reflect.Type]any),
	}
	for _, s := range []Stage{Prelude, PreUpdate, Update, PostUpdate, Finale} {
		app.stages = append(app.stages, s)
		app.tasks[s.Name] = nil
	}
	return app
}

func (app *App) UseModules(modules ...Module) *App {
	app.modules = append(app.modules, modules...)
	return app
}

func (app *App) UseTask(stage Stage, task Task) *App {
	if _, ok := app.tasks[stage.Name]; !ok {
		panic(fmt.Sprintf("Stage %v doesn't exist", stage.Name))
	}
	app.tasks[stage.Name] = append(app.tasks[stage.Name], task)
	return app
}

func (app *App) addResources(resources ...any) *App {
	for _, resource := range resources {
		resourceType := reflect.TypeOf(resource)
		if _, ok := app.resources[resourceType.Elem()]; ok {
			panic(fmt.Sprintf("%s is already in resources", resourceType))
		}

		app.resources[resourceType.Elem()] = resource
	}
	return app
}

// AddResources registers pointers to shared state. Adding a second resource
// of the same type panics.
func (app *App) AddResources(resources ...any) *App {
	return app.addResources(resources...)
}

// Resource looks up the resource of type *T.
func Resource[T any](app *App) (*T, bool) {
	r, ok := app.resources[reflect.TypeOf((*T)(nil)).Elem()]
	if !ok {
		return nil, false
	}
	return r.(*T), true
}

func (app *App) build() {
	if app.built {
		return
	}
	app.built = true
	for _, module := range app.modules {
		module.Install(app)
	}
}

// Tick runs one frame: every stage in order, every task in insertion order.
// Tasks that return false are dropped. Tasks added to a stage while it runs
// start on the next frame.
func (app *App) Tick(dt time.Duration) {
	app.build()
	for _, stage := range app.stages {
		tasks := app.tasks[stage.Name]
		kept := make([]Task, 0, len(tasks))
		for _, task := range tasks {
			if task.Update(dt) {
				kept = append(kept, task)
			}
		}
		kept = append(kept, app.tasks[stage.Name][len(tasks):]...)
		app.tasks[stage.Name] = kept
	}
	app.frames++
}

func (app *App) Frames() uint64 {
	return app.frames
}

// TaskCount reports the number of scheduled tasks across all stages.
func (app *App) TaskCount() int {
	n := 0
	for _, tasks := range app.tasks {
		n += len(tasks)
	}
	return n
}

// Run ticks at period until ctx is done or maxFrames frames have run
// (0 means no limit). Resources implementing io.Closer are closed on return.
func (app *App) Run(ctx context.Context, period time.Duration, maxFrames uint64) error {
	app.build()
	defer app.Close()

	ticker := time.NewTicker(period)
	defer ticker.Stop()

	last := time.Now()
	for maxFrames == 0 || app.frames < maxFrames {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case now := <-ticker.C:
			app.Tick(now.Sub(last))
			last = now
		}
	}
	return nil
}

// Close closes every resource that implements io.Closer.
func (app *App) Close() {
	logger := app.Logger()
	for _, r := range app.resources {
		if c, ok := r.(io.Closer); ok {
			if err := c.Close(); err != nil {
				logger.Warnf("closing %T: %v", r, err)
			}
		}
	}
}
