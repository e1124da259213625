package trace

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"
)

func TestParseLevel(t *testing.T) {
	for _, s := range []string{"off", "error", "phase", "detail", "debug"} {
		l, err := ParseLevel(s)
		if err != nil {
			t.Fatalf("ParseLevel(%q): %v", s, err)
		}
		if l.String() != s {
			t.Fatalf("round trip %q -> %q", s, l)
		}
	}
	if _, err := ParseLevel("verbose"); err == nil {
		t.Fatal("expected error for unknown level")
	}
}

func TestShouldEmit(t *testing.T) {
	tests := []struct {
		level Level
		scope Scope
		want  bool
	}{
		{LevelOff, ScopeDriver, false},
		{LevelPhase, ScopePass, true},
		{LevelPhase, ScopeModule, false},
		{LevelDetail, ScopeModule, true},
		{LevelDetail, ScopeCommand, false},
		{LevelDebug, ScopeCommand, true},
	}
	for _, tt := range tests {
		if got := tt.level.ShouldEmit(tt.scope); got != tt.want {
			t.Errorf("%s.ShouldEmit(%s) = %v, want %v", tt.level, tt.scope, got, tt.want)
		}
	}
}

func TestRingWraps(t *testing.T) {
	r := NewRingTracer(3, LevelDebug)
	for _, name := range []string{"a", "b", "c", "d", "e"} {
		Point(r, ScopePass, name, "", 0)
	}
	var names []string
	for _, ev := range r.Snapshot() {
		names = append(names, ev.Name)
	}
	if strings.Join(names, ",") != "c,d,e" {
		t.Fatalf("ring = %v, want c,d,e", names)
	}
}

func TestSpanNDJSON(t *testing.T) {
	var buf bytes.Buffer
	tr := NewStreamTracer(&buf, LevelDetail, FormatNDJSON)
	ctx := WithTracer(context.Background(), tr)

	outer := Begin(FromContext(ctx), ScopePass, "assemble", CurrentSpan(ctx).SpanID)
	ctx = WithSpan(ctx, outer)
	inner := Begin(FromContext(ctx), ScopeModule, "module:Foundation", CurrentSpan(ctx).SpanID)
	inner.WithExtra("deps", "2").End("Foundation.pcm")
	// filtered at LevelDetail
	Begin(FromContext(ctx), ScopeCommand, "swiftc", outer.ID()).End("")
	outer.End("")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 4 {
		t.Fatalf("got %d events:\n%s", len(lines), buf.String())
	}
	var ev struct {
		Kind     string            `json:"kind"`
		Name     string            `json:"name"`
		ParentID uint64            `json:"parent_id"`
		Detail   string            `json:"detail"`
		Extra    map[string]string `json:"extra"`
	}
	if err := json.Unmarshal([]byte(lines[2]), &ev); err != nil {
		t.Fatal(err)
	}
	if ev.Kind != "end" || ev.Name != "module:Foundation" || ev.ParentID != outer.ID() {
		t.Fatalf("inner end = %+v", ev)
	}
	if ev.Detail != "Foundation.pcm" || ev.Extra["deps"] != "2" {
		t.Fatalf("inner end detail = %+v", ev)
	}
}

func TestChromeOutputIsJSON(t *testing.T) {
	var buf bytes.Buffer
	tr := NewStreamTracer(&buf, LevelDebug, FormatChrome)
	Begin(tr, ScopeDriver, "build", 0).End("")
	Point(tr, ScopePass, "registry", "out.msgpack", 0)
	if err := tr.Close(); err != nil {
		t.Fatal(err)
	}
	var doc struct {
		TraceEvents []map[string]any `json:"traceEvents"`
	}
	if err := json.Unmarshal(buf.Bytes(), &doc); err != nil {
		t.Fatalf("invalid chrome trace: %v\n%s", err, buf.String())
	}
	if len(doc.TraceEvents) != 3 {
		t.Fatalf("events = %d, want 3", len(doc.TraceEvents))
	}
	if doc.TraceEvents[0]["ph"] != "B" || doc.TraceEvents[2]["ph"] != "i" {
		t.Fatalf("phases = %v", doc.TraceEvents)
	}
}

func TestNewOffIsNop(t *testing.T) {
	tr, err := New(Config{Level: LevelOff})
	if err != nil {
		t.Fatal(err)
	}
	if tr.Enabled() {
		t.Fatal("off tracer should be disabled")
	}
	if s := Begin(tr, ScopeDriver, "x", 0); s.ID() != 0 {
		t.Fatal("disabled tracer produced a live span")
	}
}

func TestNewBothKeepsRing(t *testing.T) {
	var buf bytes.Buffer
	tr, err := New(Config{Level: LevelPhase, Mode: ModeBoth, Output: &buf, Format: FormatText, RingSize: 8})
	if err != nil {
		t.Fatal(err)
	}
	multi, ok := tr.(*MultiTracer)
	if !ok {
		t.Fatalf("tracer = %T, want *MultiTracer", tr)
	}
	Point(tr, ScopePass, "order", "", 0)
	if ring := multi.Ring(); ring == nil || len(ring.Snapshot()) != 1 {
		t.Fatal("ring did not record the event")
	}
	if !strings.Contains(buf.String(), "• order") {
		t.Fatalf("stream output = %q", buf.String())
	}
}

func TestParseFormatAndMode(t *testing.T) {
	if f, err := ParseFormat("chrome"); err != nil || f != FormatChrome {
		t.Fatalf("ParseFormat(chrome) = %v, %v", f, err)
	}
	if _, err := ParseFormat("xml"); err == nil {
		t.Fatal("expected error for xml")
	}
	if m, err := ParseMode("ring"); err != nil || m != ModeRing {
		t.Fatalf("ParseMode(ring) = %v, %v", m, err)
	}
	if formatForPath("trace.json") != FormatChrome || formatForPath("t.ndjson") != FormatNDJSON || formatForPath("t.log") != FormatText {
		t.Fatal("formatForPath mismatch")
	}
}

func TestHeartbeat(t *testing.T) {
	r := NewRingTracer(16, LevelPhase)
	hb := StartHeartbeat(r, time.Millisecond)
	time.Sleep(20 * time.Millisecond)
	hb.Stop()
	hb.Stop()
	n := len(r.Snapshot())
	if n == 0 {
		t.Fatal("no heartbeat events")
	}
	time.Sleep(5 * time.Millisecond)
	if len(r.Snapshot()) != n {
		t.Fatal("heartbeat kept running after Stop")
	}
	if StartHeartbeat(Nop, time.Millisecond) != nil {
		t.Fatal("disabled tracer should not get a heartbeat")
	}
}

func TestContextKeepsSpanWhenTracerChanges(t *testing.T) {
	r := NewRingTracer(4, LevelPhase)
	ctx := WithTracer(context.Background(), r)
	span := Begin(r, ScopePass, "plan", 0)
	ctx = WithSpan(ctx, span)
	ctx = WithTracer(ctx, Nop)
	if CurrentSpan(ctx).SpanID != span.ID() {
		t.Fatal("span lost when replacing the tracer")
	}
	if FromContext(context.Background()) != Nop {
		t.Fatal("empty context should yield Nop")
	}
}
