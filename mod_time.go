package collision

import (
	"time"
)

type Time struct {
	Time  time.Time
	Dt    time.Duration
	Frame uint64
}

type TimeModule struct {
}

func (mod TimeModule) Install(app *App) {
	t := &Time{
		Time: time.Now(),
		Dt:   0,
	}
	app.addResources(t)
	app.UseTask(Prelude, TaskFunc(func(dt time.Duration) bool {
		timeSystem(t, dt)
		return true
	}))
}

func timeSystem(timeResource *Time, dt time.Duration) {
	timeResource.Dt = dt
	timeResource.Time = timeResource.Time.Add(dt)
	timeResource.Frame++
}
