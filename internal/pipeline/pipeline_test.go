package pipeline

import (
	"sync"
	"testing"
	"time"
)

func TestTimingsAdd(t *testing.T) {
	var tm Timings
	tm.Add(StageAugment, time.Millisecond)
	tm.Add(StageAugment, 2*time.Millisecond)
	tm.Add(StageValidate, 10*time.Millisecond)

	if !tm.Has(StageAugment) || tm.Has(StageParse) {
		t.Fatal("unexpected Has results")
	}
	if got := tm.Duration(StageAugment); got != 3*time.Millisecond {
		t.Fatalf("augment = %v", got)
	}
	if got := tm.Duration(StageValidate); got != 10*time.Millisecond {
		t.Fatalf("validate = %v", got)
	}
}

func TestTimingsConcurrentMerge(t *testing.T) {
	var total Timings
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			var local Timings
			local.Add(StageValidate, time.Millisecond)
			total.Merge(&local)
		}()
	}
	wg.Wait()
	if got := total.Duration(StageValidate); got != 16*time.Millisecond {
		t.Fatalf("merged = %v", got)
	}
}

func TestNilTimingsAdd(t *testing.T) {
	var tm *Timings
	tm.Add(StageParse, time.Second) // must not panic
}

func TestStatusTerminal(t *testing.T) {
	cases := map[Status]bool{
		StatusQueued:  false,
		StatusWorking: false,
		StatusCached:  true,
		StatusSkipped: true,
		StatusDone:    true,
		StatusError:   true,
	}
	for st, want := range cases {
		if st.Terminal() != want {
			t.Errorf("%s.Terminal() = %v", st, !want)
		}
	}
}

func TestRecorderAndChannelSink(t *testing.T) {
	var rec Recorder
	ch := make(chan Event, 1)
	evt := Event{File: "x.frag", Stage: StageParse, Status: StatusDone}
	for _, sink := range []ProgressSink{&rec, ChannelSink{Ch: ch}, ChannelSink{}, NopSink{}} {
		sink.OnEvent(evt)
	}

	if got := rec.Events(); len(got) != 1 || got[0] != evt {
		t.Fatalf("recorded %+v", got)
	}
	select {
	case got := <-ch:
		if got.File != "x.frag" {
			t.Fatalf("unexpected event %+v", got)
		}
	default:
		t.Fatal("channel sink did not forward the event")
	}
}
