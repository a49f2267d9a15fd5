package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/jamiealquiza/tachymeter"
	"github.com/olekukonko/tablewriter"

	"github.com/delaneyj/attrparty/attr"
	"github.com/delaneyj/attrparty/world"
)

var (
	objectCounts   = []int{10, 100, 1_000}
	modifierCounts = []int{1, 10, 100}
	iters          = 100
)

type Score struct {
	Total int
}

func (s *Score) Reset() {
	s.Total = 0
}

type FlatBonus struct {
	N int
}

func (b *FlatBonus) Priority() attr.Priority {
	return attr.Zero()
}

func (b *FlatBonus) Apply(s *Score) {
	s.Total += b.N
}

func (b *FlatBonus) OrderIndependent() bool {
	return true
}

type DoubleDown struct{}

func (d *DoubleDown) Priority() attr.Priority {
	return attr.Zero().After()
}

func (d *DoubleDown) Apply(s *Score) {
	s.Total *= 2
}

func main() {
	flag.Parse()

	log.Printf("warming up")
	benchmarkTicks(false)
	benchmarkTicks(true)
}

func benchmarkTicks(shouldRender bool) {
	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{
		"objects", "modifiers", "nTimes", "avg", "p75", "p99", "max", "recomputes/sec",
	})

	for _, objects := range objectCounts {
		for _, modifiers := range modifierCounts {
			w := world.New()
			engine := attr.NewEngine(w, attr.WithAmbiguityWarnings(false))
			if err := attr.RegisterAttribute[*Score](engine); err != nil {
				log.Fatal(err)
			}
			if err := attr.RegisterModifier[*FlatBonus, *Score](engine); err != nil {
				log.Fatal(err)
			}
			if err := attr.RegisterModifier[*DoubleDown, *Score](engine); err != nil {
				log.Fatal(err)
			}

			ids := make([]attr.ObjectID, objects)
			for i := range ids {
				id := w.Spawn()
				world.Attach(w, id, &Score{})
				for j := 0; j < modifiers; j++ {
					world.Attach(w, id, &FlatBonus{N: j})
				}
				world.Attach(w, id, &DoubleDown{})
				ids[i] = id
			}
			engine.Tick()

			tach := tachymeter.New(&tachymeter.Config{Size: iters})
			for i := 0; i < iters; i++ {
				for _, id := range ids {
					world.Update(w, id, func(b *FlatBonus) *FlatBonus {
						b.N++
						return b
					})
				}
				start := time.Now()
				engine.Tick()
				tach.AddTime(time.Since(start))
			}

			calc := tach.Calc()
			perSec := float64(objects) / calc.Time.Avg.Seconds()
			table.Append([]string{
				humanize.Comma(int64(objects)),
				humanize.Comma(int64(modifiers + 1)),
				humanize.Comma(int64(iters)),
				fmt.Sprint(calc.Time.Avg),
				fmt.Sprint(calc.Time.P75),
				fmt.Sprint(calc.Time.P99),
				fmt.Sprint(calc.Time.Max),
				humanize.Comma(int64(perSec)),
			})
		}
	}

	if shouldRender {
		table.Render()
	}
}
