package ima_test

import (
	"errors"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/ima-dev/ima/pkg/dom"
	"github.com/ima-dev/ima/pkg/frame"
	"github.com/ima-dev/ima/pkg/ima"
	"github.com/ima-dev/ima/pkg/imatest"
	"github.com/ima-dev/ima/pkg/render"
)

// stepClock advances by one millisecond per reading.
func stepClock() func() time.Time {
	now := time.Unix(0, 0)
	return func() time.Time {
		now = now.Add(time.Millisecond)
		return now
	}
}

func TestAttributeBinding_RoundTrip(t *testing.T) {
	h := imatest.New(t)
	title := "a"
	enabled := true
	el := h.Engine.El("div", ima.Props{
		"title":    func() string { return title },
		"disabled": func() bool { return enabled },
	})
	h.Mount(el)

	imatest.ExpectAttribute(t, el, "title", "a")
	imatest.ExpectAttribute(t, el, "disabled", "")
	if !h.Engine.Armed() {
		t.Fatal("registration must arm the scheduler")
	}

	title = "b"
	enabled = false
	stats := h.Tick()
	if stats.AttributesUpdated != 2 {
		t.Errorf("AttributesUpdated = %d, want 2", stats.AttributesUpdated)
	}
	imatest.ExpectAttribute(t, el, "title", "b")
	imatest.ExpectNoAttribute(t, el, "disabled")

	enabled = true
	h.Tick()
	imatest.ExpectAttribute(t, el, "disabled", "")
}

func TestAttributeBinding_NilRemoves(t *testing.T) {
	h := imatest.New(t)
	var href any = "/a"
	el := h.Engine.El("a", ima.Props{"href": func() any { return href }})
	h.Mount(el)

	href = nil
	h.Tick()
	imatest.ExpectNoAttribute(t, el, "href")

	href = 12
	h.Tick()
	imatest.ExpectAttribute(t, el, "href", "12")
}

func TestTick_Idempotent(t *testing.T) {
	h := imatest.New(t)
	n := 0
	h.Mount(
		h.Engine.El("p", ima.Props{"title": func() int { return n }}, func() int { return n }),
		h.Engine.El("div", func() any { return h.Engine.El("b", strconv.Itoa(n)) }),
	)

	n = 1
	if got := h.Tick().Updated(); got != 3 {
		t.Fatalf("first tick updated %d, want 3", got)
	}

	before := h.Doc.MutationCount()
	for i := 0; i < 3; i++ {
		if got := h.Tick().Updated(); got != 0 {
			t.Errorf("tick %d updated %d bindings", i, got)
		}
	}
	if after := h.Doc.MutationCount(); after != before {
		t.Errorf("quiet ticks mutated the document: %d -> %d", before, after)
	}
}

func TestNodeBinding_ReplacesMount(t *testing.T) {
	h := imatest.New(t)
	e := h.Engine
	show := true
	h.Mount(e.El("div", ima.Props{"id": "box"}, func() any {
		if show {
			return e.El("b", "yes")
		}
		return "no"
	}))

	h.ExpectContains(`<div id="box"><b>yes</b><!--reactive-0--></div>`)

	// A fresh element with identical markup is not a change.
	if got := h.Tick().NodesUpdated; got != 0 {
		t.Errorf("NodesUpdated = %d, want 0", got)
	}

	show = false
	if got := h.Tick().NodesUpdated; got != 1 {
		t.Errorf("NodesUpdated = %d, want 1", got)
	}
	h.ExpectContains(`<div id="box">no<!--reactive-0--></div>`)

	if got := h.Tick().NodesUpdated; got != 0 {
		t.Errorf("unchanged text remount: NodesUpdated = %d", got)
	}

	show = true
	h.Tick()
	h.ExpectContains(`<div id="box"><b>yes</b><!--reactive-0--></div>`)

	info, ok := e.Lookup(ima.Handle{Kind: ima.KindNode})
	if !ok {
		t.Fatal("lookup failed")
	}
	if info.Anchor == nil || info.Anchor.Data() != "reactive-0" {
		t.Errorf("unexpected anchor %v", info.Anchor)
	}
	if info.Anchor.PreviousSibling() != info.Owner {
		t.Errorf("mount must sit right before the anchor")
	}
}

func TestNodeBinding_AnchorsNumberedByID(t *testing.T) {
	h := imatest.New(t)
	e := h.Engine
	e.El("div", ima.Props{"title": func() string { return "" }})
	el := e.El("div", func() any { return "a" }, func() any { return "b" })
	h.Mount(el)
	h.ExpectContains(`a<!--reactive-0-->b<!--reactive-1-->`)
}

func TestDetachedOwnerIsSkipped(t *testing.T) {
	h := imatest.New(t)
	calls := 0
	label := "a"
	el := h.Engine.El("span", func() string {
		calls++
		return label
	})
	h.Mount(el)
	calls = 0

	el.Remove()
	label = "b"
	stats := h.Tick()
	if stats.TextsUpdated != 0 {
		t.Errorf("TextsUpdated = %d for a detached owner", stats.TextsUpdated)
	}
	if calls != 0 {
		t.Errorf("evaluator ran %d times for a detached owner", calls)
	}
	if el.TextContent() != "a" {
		t.Errorf("detached text changed to %q", el.TextContent())
	}

	h.Mount(el)
	if got := h.Tick().TextsUpdated; got != 1 {
		t.Errorf("TextsUpdated after reattach = %d, want 1", got)
	}
	if el.TextContent() != "b" {
		t.Errorf("text = %q, want b", el.TextContent())
	}
}

func TestCounterGrid(t *testing.T) {
	const n = 25
	h := imatest.New(t, ima.WithClock(stepClock()))
	counts := make([]int, n)
	for i := 0; i < n; i++ {
		i := i
		h.Mount(h.Engine.El("span", func() int { return counts[i] }))
	}
	if got := h.Engine.Len(ima.KindText); got != n {
		t.Fatalf("Len(text) = %d, want %d", got, n)
	}

	h.Engine.StartMeasurement()
	for i := range counts {
		counts[i]++
	}

	first := h.Tick()
	want := ima.Stats{Texts: n, TextsUpdated: n, Ticks: 1, Measuring: true}
	if diff := cmp.Diff(want, first, cmpopts.IgnoreFields(ima.Stats{}, "FrameDuration")); diff != "" {
		t.Errorf("first tick (-want +got):\n%s", diff)
	}

	second := h.Tick()
	if second.Updated() != 0 {
		t.Errorf("second tick updated %d", second.Updated())
	}
	if second.Measuring {
		t.Error("measurement must end on a quiet tick")
	}
	if second.MeasuredDuration <= 0 {
		t.Errorf("MeasuredDuration = %v", second.MeasuredDuration)
	}
	if second.Measurements != 1 {
		t.Errorf("Measurements = %d, want 1", second.Measurements)
	}
	if !strings.Contains(h.Logs.String(), "render settled") {
		t.Errorf("settle not logged:\n%s", h.Logs.String())
	}
}

func TestMeasurement_Restart(t *testing.T) {
	h := imatest.New(t, ima.WithClock(stepClock()))
	h.Mount(h.Engine.El("span", func() int { return 1 }))
	h.Engine.StartMeasurement()
	h.Engine.EndMeasurement()
	ended := h.Engine.Debug()
	if ended.Measuring || ended.MeasuredDuration <= 0 {
		t.Fatalf("unexpected stats after EndMeasurement: %+v", ended)
	}

	h.Engine.StartMeasurement()
	if s := h.Engine.Debug(); !s.Measuring || s.MeasuredDuration != 0 {
		t.Errorf("StartMeasurement must reset the span: %+v", s)
	}
	h.Engine.EndMeasurement()

	// Ending without an open span is a no-op.
	d := h.Engine.Debug().MeasuredDuration
	h.Engine.EndMeasurement()
	if h.Engine.Debug().MeasuredDuration != d {
		t.Error("EndMeasurement without a span changed the duration")
	}
}

func TestFreezePolicy_StopsScheduler(t *testing.T) {
	h := imatest.New(t, ima.WithFailurePolicy(ima.Freeze))
	boom := false
	label := "a"
	h.Mount(h.Engine.El("div",
		ima.Props{"title": func() string {
			if boom {
				panic("bad state")
			}
			return "ok"
		}},
		h.Engine.El("span", func() string { return label }),
	))

	boom = true
	label = "b"
	err := h.TickErr()
	var pe *frame.PanicError
	if !errors.As(err, &pe) {
		t.Fatalf("expected a frame panic, got %v", err)
	}
	if h.Engine.Armed() || h.Frames.Pending() {
		t.Error("a frozen scheduler must not request another frame")
	}
	h.ExpectContains(`<span>a</span>`)
	if !strings.Contains(h.Logs.String(), "E203") {
		t.Errorf("freeze not logged:\n%s", h.Logs.String())
	}

	// A new registration arms the scheduler again.
	h.Mount(h.Engine.El("i", func() int { return 0 }))
	if !h.Engine.Armed() {
		t.Error("registration after a freeze must re-arm")
	}
}

func TestIsolatePolicy_KeepsHealthyBindings(t *testing.T) {
	h := imatest.New(t)
	boom := false
	calls := 0
	label := "a"
	h.Mount(h.Engine.El("div",
		ima.Props{"title": func() string {
			calls++
			if boom {
				panic(errors.New("bad state"))
			}
			return "ok"
		}},
		h.Engine.El("span", func() string { return label }),
	))

	boom = true
	label = "b"
	stats := h.Tick()
	if stats.TextsUpdated != 1 || stats.Failed != 1 {
		t.Errorf("unexpected stats %+v", stats)
	}
	h.ExpectContains(`<span>b</span>`)

	info, _ := h.Engine.Lookup(ima.Handle{Kind: ima.KindAttribute})
	if !info.Failed {
		t.Error("panicking binding must be marked failed")
	}

	calls = 0
	label = "c"
	h.Tick()
	if calls != 0 {
		t.Errorf("failed evaluator ran %d times", calls)
	}
	h.ExpectContains(`<span>c</span>`)
	if !h.Engine.Armed() {
		t.Error("isolate must keep the scheduler armed")
	}
	if logs := h.Logs.String(); !strings.Contains(logs, "E201") || !strings.Contains(logs, "bad state") {
		t.Errorf("failure not logged:\n%s", logs)
	}
}

func TestFlush_ReentrancyGuard(t *testing.T) {
	h := imatest.New(t)
	reenter := false
	calls := 0
	h.Mount(h.Engine.El("span", func() string {
		calls++
		if reenter {
			h.Engine.Flush()
		}
		return strconv.Itoa(calls)
	}))

	reenter = true
	stats := h.Tick()
	if calls != 2 {
		t.Errorf("evaluator ran %d times, want 2", calls)
	}
	if stats.Ticks != 1 {
		t.Errorf("Ticks = %d, want 1", stats.Ticks)
	}
}

func TestFlush_KeepsPendingFrame(t *testing.T) {
	h := imatest.New(t)
	n := 0
	el := h.Engine.El("span", func() int { return n })
	h.Mount(el)

	n = 4
	h.Engine.Flush()
	if el.TextContent() != "4" {
		t.Errorf("text = %q after Flush", el.TextContent())
	}
	if !h.Engine.Armed() || !h.Frames.Pending() {
		t.Error("Flush must not clear the pending frame")
	}
}

func TestScheduler_IdleWithoutBindings(t *testing.T) {
	h := imatest.New(t)
	h.Mount(h.Engine.El("div", "static"))
	if h.Engine.Armed() || h.Frames.Pending() {
		t.Error("an empty registry must not request frames")
	}
}

func TestScheduler_SingleFramePerTick(t *testing.T) {
	h := imatest.New(t)
	for i := 0; i < 5; i++ {
		h.Mount(h.Engine.El("span", func() int { return i }))
	}
	h.Tick()
	if got := h.Frames.Frames(); got != 1 {
		t.Errorf("Frames = %d, want 1", got)
	}
	h.Tick()
	if got := h.Frames.Frames(); got != 2 {
		t.Errorf("Frames = %d, want 2", got)
	}
}

func TestBindingsRegisteredDuringTickWaitForNextTick(t *testing.T) {
	h := imatest.New(t)
	e := h.Engine
	add := false
	h.Mount(e.El("span", ima.Props{"data-x": func() bool {
		if add {
			add = false
			h.Mount(e.El("i", ima.Props{"title": func() string { return "late" }}))
		}
		return true
	}}))

	add = true
	stats := h.Tick()
	if stats.Attributes != 2 {
		t.Errorf("Attributes = %d, want 2", stats.Attributes)
	}
	if stats.AttributesUpdated != 0 {
		t.Errorf("AttributesUpdated = %d, want 0", stats.AttributesUpdated)
	}
	if !h.Frames.Pending() {
		t.Error("expected a pending frame")
	}
}

func TestReactive(t *testing.T) {
	h := imatest.New(t)
	e := h.Engine
	n := 0
	first := e.Reactive(func() *dom.Element {
		return e.El("p", "n=", strconv.Itoa(n))
	})
	h.Mount(first)
	h.ExpectContains(`<p>n=0</p>`)
	h.ExpectNotContains("reactive-")

	n = 1
	if got := h.Tick().NodesUpdated; got != 1 {
		t.Fatalf("NodesUpdated = %d, want 1", got)
	}
	h.ExpectContains(`<p>n=1</p>`)

	info, _ := e.Lookup(ima.Handle{Kind: ima.KindNode})
	if info.Owner == first {
		t.Error("mount should have been replaced")
	}
	if info.Anchor != nil {
		t.Error("component bindings have no anchor")
	}

	n = 2
	h.Tick()
	h.ExpectContains(`<p>n=2</p>`)
}

func TestReactive_NilPanics(t *testing.T) {
	h := imatest.New(t)
	defer func() {
		if recover() == nil {
			t.Error("expected a panic")
		}
	}()
	h.Engine.Reactive(func() *dom.Element { return nil })
}

func TestLookup(t *testing.T) {
	h := imatest.New(t)
	h.Mount(h.Engine.El("a", ima.Props{
		"href":  func() string { return "/x" },
		"title": func() string { return "t" },
	}))

	handles := h.Engine.Handles(ima.KindAttribute)
	want := []ima.Handle{{Kind: ima.KindAttribute, ID: 0}, {Kind: ima.KindAttribute, ID: 1}}
	if diff := cmp.Diff(want, handles); diff != "" {
		t.Errorf("Handles (-want +got):\n%s", diff)
	}

	info, ok := h.Engine.Lookup(handles[0])
	if !ok || info.Name != "href" || info.Previous != "/x" || !info.Connected {
		t.Errorf("unexpected info %+v", info)
	}

	if _, ok := h.Engine.Lookup(ima.Handle{Kind: ima.KindAttribute, ID: 9}); ok {
		t.Error("out of range handle resolved")
	}
	if _, ok := h.Engine.Lookup(ima.Handle{Kind: ima.KindAttribute, ID: 0, Gen: 1}); ok {
		t.Error("stale generation resolved")
	}
	if got := handles[1].String(); got != "attribute#1.0" {
		t.Errorf("String = %q", got)
	}
}

func TestTickObserver(t *testing.T) {
	var seen []ima.Stats
	h := imatest.New(t, ima.WithTickObserver(func(s ima.Stats) { seen = append(seen, s) }))
	n := 0
	h.Mount(h.Engine.El("span", func() int { return n }))
	n = 1
	h.Tick()
	h.Tick()

	if len(seen) != 2 {
		t.Fatalf("observer saw %d ticks", len(seen))
	}
	if seen[0].TextsUpdated != 1 || seen[1].TextsUpdated != 0 {
		t.Errorf("unexpected snapshots %+v", seen)
	}
}

func TestSettle(t *testing.T) {
	h := imatest.New(t)
	n := 3
	h.Mount(h.Engine.El("span", func() int {
		if n > 0 {
			n--
		}
		return n
	}))
	// The initial evaluation took n to 2; two more ticks change it, the third
	// is quiet.
	if got := h.Settle(10); got != 3 {
		t.Errorf("Settle = %d, want 3", got)
	}
}

func TestParsePolicy(t *testing.T) {
	tests := []struct {
		in      string
		want    ima.Policy
		wantErr bool
	}{
		{"", ima.Isolate, false},
		{"isolate", ima.Isolate, false},
		{" Freeze ", ima.Freeze, false},
		{"ignore", ima.Isolate, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ima.ParsePolicy(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v", err)
			}
			if got != tt.want {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestDefaultHelpers(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	e := ima.New(ima.WithFrames(frame.Global()), ima.WithLogger(logger))
	ima.SetDefault(e)
	t.Cleanup(func() { ima.SetDefault(nil) })
	if ima.Default() != e {
		t.Fatal("Default did not return the engine set with SetDefault")
	}

	// Built and mounted from the test goroutine while the global loop ticks.
	const n = 200
	count := 1
	p := ima.Tag("p")
	for i := 0; i < n; i++ {
		ima.Mount(p(func() int { return count }))
	}
	ima.Do(func(*ima.Engine) { count = 2 })

	waitFor(t, func() bool {
		ok := false
		ima.Do(func(e *ima.Engine) {
			ok = strings.Count(render.InnerHTML(e.Document().Body()), "<p>2</p>") == n
		})
		return ok
	})
	if got := ima.Debug().Texts; got != n {
		t.Errorf("Texts = %d, want %d", got, n)
	}

	ima.StartMeasurement()
	waitFor(t, func() bool { return !ima.Debug().Measuring })
	ima.EndMeasurement()
}

func TestDefaultHelpers_PanicReachesCaller(t *testing.T) {
	defer func() {
		if r := recover(); r != "bad build" {
			t.Errorf("recovered %v, want bad build", r)
		}
	}()
	ima.Do(func(*ima.Engine) { panic("bad build") })
	t.Fatal("Do returned after a panic")
}

// waitFor polls cond until it holds or two seconds pass.
func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatal("condition not met in time")
		}
		time.Sleep(5 * time.Millisecond)
	}
}
