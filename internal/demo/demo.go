// Package demo builds the counter grid stress page used by the ima command.
package demo

import (
	"fmt"
	"strconv"
	"time"

	"github.com/ima-dev/ima/pkg/dom"
	"github.com/ima-dev/ima/pkg/ima"
	"github.com/ima-dev/ima/pkg/render"
)

// Styles is the page stylesheet.
const Styles = `html { background: black; color: white; }
main { display: flex; flex-direction: column; align-items: center; justify-content: center; padding: 5rem; }
#grid { display: grid; grid-template-columns: repeat(10, 1fr); gap: 1rem; padding: 2rem; }
`

const panelStyle = "position: fixed; top: 10px; right: 10px; background: rgba(0,0,0,0.7); padding: 10px; border-radius: 5px;"

// Grid is a mounted counter grid. Every section shows the shared counter
// and has a button adding its index plus one.
type Grid struct {
	Root  *dom.Element
	Cells int

	// Count is the shared counter read by every binding.
	Count int

	engine *ima.Engine
	panel  ima.Stats
}

// ButtonID returns the id of section i's button.
func ButtonID(i int) string { return "add-" + strconv.Itoa(i) }

// CounterGrid builds the grid with n sections, mounts it and returns it.
func CounterGrid(e *ima.Engine, n int) *Grid {
	g := &Grid{Cells: n, engine: e}
	tags := e.Tags()
	div, p, span := tags["div"], tags["p"], tags["span"]

	panel := e.Reactive(func() *dom.Element {
		s := g.panel
		return div(ima.Props{"id": "perf", "style": panelStyle},
			p("Bindings: ", s.Total()),
			p("Last frame: ", ms(s.FrameDuration), "ms"),
			p("Updated: ", s.Updated()),
			p("Total render time: ", ms(s.MeasuredDuration), "ms"),
		)
	})

	sections := make([]any, n)
	for i := 0; i < n; i++ {
		add := i + 1
		sections[i] = tags["section"](ima.Props{"id": "cell-" + strconv.Itoa(i)},
			span(func() int { return g.Count }),
			tags["button"](ima.Props{
				"id":      ButtonID(i),
				"variant": "default",
				"onClick": func() {
					e.StartMeasurement()
					g.Count += add
				},
			},
				fmt.Sprintf("Add %d", add),
				tags.Get(e, "icon")(ima.Props{"name": "add"}),
			),
		)
	}

	g.Root = tags["main"](
		tags["header"]("Welcome to the ima demo!"),
		tags["h1"](ima.Props{"style": func() string { return rotation(g.Count) }}, "ima"),
		panel,
		div(ima.Props{"id": "grid"}, sections),
		tags["footer"]("Rendered by ima."),
	)
	e.Mount(g.Root)
	return g
}

// Refresh copies the engine snapshot into the performance panel. The panel
// picks it up on the next tick.
func (g *Grid) Refresh() {
	g.panel = g.engine.Debug()
}

// Press clicks section i's button.
func (g *Grid) Press(i int) {
	if el := g.engine.Document().GetElementByID(ButtonID(i)); el != nil {
		el.Click()
	}
}

// StaticPage renders the same layout in static mode with the counter at
// count.
func StaticPage(n, count int) string {
	t := render.StaticTags()
	sections := make([]any, n)
	for i := 0; i < n; i++ {
		sections[i] = t["section"](render.Props{"id": "cell-" + strconv.Itoa(i)},
			t["span"](count),
			t["button"](render.Props{"id": ButtonID(i), "variant": "default"},
				fmt.Sprintf("Add %d", i+1),
				render.Static("icon", render.Props{"name": "add"}),
			),
		)
	}
	body := t["main"](
		t["header"]("Welcome to the ima demo!"),
		t["h1"](render.Props{"style": rotation(count)}, "ima"),
		t["div"](render.Props{"id": "grid"}, sections),
		t["footer"]("Rendered by ima."),
	)
	return render.Document("ima", t["style"](Styles), body)
}

func rotation(deg int) string {
	return "transition: ease 200ms all; transform: rotate(" + strconv.Itoa(deg) + "deg);"
}

func ms(d time.Duration) string {
	return strconv.FormatFloat(float64(d)/float64(time.Millisecond), 'f', 2, 64)
}
