// Command collisiondemo drops a player sphere onto a floor next to an enemy
// with per-limb hitboxes and logs every contact the collision world reports.
package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"os"
	"os/signal"
	"time"

	"github.com/gekko3d/collision"
	"github.com/gekko3d/collision/shape"
	"github.com/go-gl/mathgl/mgl32"
)

type body struct {
	collision.BaseOwner
	name   string
	logger collision.Logger
	hits   int
}

func (b *body) OnCollision(c collision.Contact) {
	b.hits++
	b.logger.Infof("%s touched %s (id %d)", b.name, c.Tag, c.ID)
}

// faller moves its sphere under gravity and rests once it hits the floor.
type faller struct {
	body
	sphere   *shape.Sphere
	velocity mgl32.Vec3
	grounded bool
}

func (f *faller) PreCollision() {
	f.grounded = false
}

func (f *faller) OnCollision(c collision.Contact) {
	f.body.OnCollision(c)
	if c.Tag == collision.TagFloor {
		f.grounded = true
	}
}

func (f *faller) step(dt time.Duration) bool {
	if f.grounded {
		f.velocity = mgl32.Vec3{}
		return true
	}
	secs := float32(dt.Seconds())
	f.velocity = f.velocity.Add(mgl32.Vec3{0, -9.81, 0}.Mul(secs))
	f.sphere.Transform(f.sphere.Center().Add(f.velocity.Mul(secs)))
	return true
}

func main() {
	configPath := flag.String("config", "", "path to a YAML collision config")
	frames := flag.Uint64("frames", 240, "number of frames to run (0 runs until interrupted)")
	debug := flag.Bool("debug", false, "enable debug logging")
	flag.Parse()

	cfg := collision.DefaultConfig()
	cfg.Matrix = [][2]string{{"player", "floor"}, {"player", "enemy"}}
	if *configPath != "" {
		var err error
		cfg, err = collision.LoadConfig(*configPath)
		if err != nil {
			log.Fatal(err)
		}
	}

	app := collision.NewApp().
		UseModules(
			collision.LoggingModule{Prefix: "demo", Debug: *debug || cfg.Debug},
			collision.TimeModule{},
			collision.CollisionModule{Config: cfg},
		)

	player := &faller{
		body:   body{BaseOwner: collision.BaseOwner{EntityTag: collision.TagPlayer}, name: "player"},
		sphere: shape.NewSphere(mgl32.Vec3{0, 6, 0}, 0.5),
	}
	floor := &body{BaseOwner: collision.BaseOwner{EntityTag: collision.TagFloor}, name: "floor"}
	enemy := &body{BaseOwner: collision.BaseOwner{EntityTag: collision.TagEnemy}, name: "enemy"}

	app.UseModules(demoModule{
		setup: func(world *collision.CollisionWorld, logger collision.Logger) error {
			player.logger, floor.logger, enemy.logger = logger, logger, logger
			if _, err := world.Register(player, player.sphere, false); err != nil {
				return err
			}
			if _, err := world.Register(floor, shape.NewAABB(mgl32.Vec3{0, -1, 0}, mgl32.Vec3{10, 1, 10}), true); err != nil {
				return err
			}
			torso := shape.NewCapsule(mgl32.Vec3{0.8, 0, 0}, mgl32.Vec3{0.8, 2, 0}, 0.6)
			if _, err := world.Register(enemy, torso, false); err != nil {
				return err
			}
			for _, hitbox := range []shape.Shape{
				shape.NewSphere(mgl32.Vec3{0.8, 2.2, 0}, 0.3),
				shape.NewAABB(mgl32.Vec3{0.8, 1, 0}, mgl32.Vec3{0.4, 0.6, 0.3}),
			} {
				if _, err := world.RegisterChild(enemy, hitbox, torso); err != nil {
					return err
				}
			}
			return nil
		},
		step: player.step,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := app.Run(ctx, cfg.FramePeriod(), *frames); err != nil && !errors.Is(err, context.Canceled) {
		log.Fatal(err)
	}
	app.Logger().Infof("ran %d frames: player %d contacts, enemy %d, floor %d",
		app.Frames(), player.hits, enemy.hits, floor.hits)
}

// demoModule registers the scene once the collision world exists and moves
// the player before each collision pass.
type demoModule struct {
	setup func(world *collision.CollisionWorld, logger collision.Logger) error
	step  func(dt time.Duration) bool
}

func (m demoModule) Install(app *collision.App) {
	world, ok := collision.Resource[collision.CollisionWorld](app)
	if !ok {
		log.Fatal("collision module must be installed first")
	}
	if err := m.setup(world, app.Logger()); err != nil {
		log.Fatal(err)
	}
	app.UseTask(collision.PreUpdate, collision.TaskFunc(m.step))
}
