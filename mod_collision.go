package collision

import "fmt"

// CollisionModule installs a CollisionWorld resource and schedules it in the
// Update stage. The world is closed with the App.
type CollisionModule struct {
	Config Config
}

func (m CollisionModule) Install(app *App) {
	cfg := m.Config.withDefaults()

	world, err := NewCollisionWorld(cfg, subLogger(app.Logger(), cfg.LogPrefix))
	if err != nil {
		panic(fmt.Sprintf("collision module: %v", err))
	}
	app.addResources(world)
	app.UseTask(Update, world)
}
