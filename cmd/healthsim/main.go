package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/urfave/cli/v3"

	"github.com/delaneyj/attrparty/attr"
	"github.com/delaneyj/attrparty/world"
)

const (
	ticksKey      = "ticks"
	hitEveryKey   = "hit-every"
	regenEveryKey = "regen-every"
	verboseKey    = "verbose"
)

func main() {
	cmd := &cli.Command{
		Name:  "healthsim",
		Usage: "Health & max health attribute demo",
		Flags: []cli.Flag{
			&cli.UintFlag{
				Name:  ticksKey,
				Usage: "Number of update ticks to simulate",
				Value: 12,
			},
			&cli.UintFlag{
				Name:  hitEveryKey,
				Usage: "Hit every actor for 5 damage every N ticks",
				Value: 2,
			},
			&cli.UintFlag{
				Name:  regenEveryKey,
				Usage: "Heal every damaged actor every N ticks",
				Value: 3,
			},
			&cli.BoolFlag{
				Name:  verboseKey,
				Usage: "Log engine diagnostics at debug level",
			},
		},
		Action: run,
	}
	if err := cmd.Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}

func run(ctx context.Context, cmd *cli.Command) error {
	w := world.New()

	level := slog.LevelWarn
	if cmd.Bool(verboseKey) {
		level = slog.LevelDebug
	}
	engine := attr.NewEngine(w, attr.WithLogger(attr.NewDefaultLogger(level)))

	// Upstream attributes first so a MaxHealth refresh reaches Health
	// within the same tick.
	if err := setupTypes(engine); err != nil {
		return err
	}

	mike := spawnActor(w, "Mike", 10, false)
	paul := spawnActor(w, "Paul", 2, true)
	actors := []attr.ObjectID{mike, paul}

	ticks := int(cmd.Uint(ticksKey))
	hitEvery := int(cmd.Uint(hitEveryKey))
	regenEvery := int(cmd.Uint(regenEveryKey))

	tbl := table.NewWriter()
	tbl.SetTitle("Health Simulation")
	tbl.SetOutputMirror(os.Stdout)
	tbl.AppendHeader(table.Row{"tick", "actor", "health", "max health", "damage"})

	for tick := 1; tick <= ticks; tick++ {
		if hitEvery > 0 && tick%hitEvery == 0 {
			for _, id := range actors {
				hit(w, id, 5)
			}
		}
		if regenEvery > 0 && tick%regenEvery == 0 {
			for _, id := range actors {
				regenerate(w, id)
			}
		}

		engine.Tick()

		for _, id := range actors {
			appendRow(tbl, w, tick, id)
		}

		actors = killDying(w, actors)
	}

	tbl.Render()
	return nil
}

func setupTypes(engine *attr.Engine) error {
	if err := attr.RegisterAttribute[*MaxHealth](engine); err != nil {
		return err
	}
	if err := attr.RegisterModifier[*ExtraMaxHealthCharm, *MaxHealth](engine); err != nil {
		return err
	}
	if err := attr.RegisterAttribute[*Health](engine); err != nil {
		return err
	}
	if err := attr.RegisterModifier[*MaxHealth, *Health](engine); err != nil {
		return err
	}
	return attr.RegisterModifier[*Damage, *Health](engine)
}

func spawnActor(w *world.World, name string, regen int, charmed bool) attr.ObjectID {
	id := w.Spawn()
	world.Attach(w, id, &Actor{Name: name})
	world.Attach(w, id, &MaxHealth{Cap: 20})
	world.Attach(w, id, &Health{})
	world.Attach(w, id, &RegenRate{PerTick: regen})
	if charmed {
		world.Attach(w, id, &ExtraMaxHealthCharm{})
	}
	return id
}

// hit accumulates damage on an actor, attaching a Damage modifier the
// first time.
func hit(w *world.World, id attr.ObjectID, amount int) {
	if !world.Update(w, id, func(d *Damage) *Damage {
		d.Amount += amount
		return d
	}) {
		world.Attach(w, id, &Damage{Amount: amount})
	}
}

// regenerate heals an actor's accumulated damage, detaching the
// Damage modifier once fully healed.
func regenerate(w *world.World, id attr.ObjectID) {
	rate, ok := world.Get[*RegenRate](w, id)
	if !ok {
		return
	}
	d, ok := world.Get[*Damage](w, id)
	if !ok {
		return
	}
	if d.Amount <= rate.PerTick {
		world.Detach[*Damage](w, id)
		return
	}
	world.Update(w, id, func(d *Damage) *Damage {
		d.Amount -= rate.PerTick
		return d
	})
}

func killDying(w *world.World, actors []attr.ObjectID) []attr.ObjectID {
	alive := actors[:0]
	for _, id := range actors {
		h, ok := world.Get[*Health](w, id)
		if ok && h.Current == 0 {
			a, _ := world.Get[*Actor](w, id)
			log.Printf("%s has died", a.Name)
			w.Despawn(id)
			continue
		}
		alive = append(alive, id)
	}
	return alive
}

func appendRow(tbl table.Writer, w *world.World, tick int, id attr.ObjectID) {
	a, ok := world.Get[*Actor](w, id)
	if !ok {
		return
	}
	h, _ := world.Get[*Health](w, id)
	mh, _ := world.Get[*MaxHealth](w, id)
	damage := "-"
	if d, ok := world.Get[*Damage](w, id); ok {
		damage = fmt.Sprint(d.Amount)
	}
	tbl.AppendRows([]table.Row{{tick, a.Name, h.Current, mh.Cap, damage}})
}
