package tablehost

import "testing"

func TestEventBufferOrderAndReplay(t *testing.T) {
	buf := NewEventBuffer(10)
	ev1 := buf.Append("a", "t1", "r1", map[string]any{"n": 1})
	ev2 := buf.Append("b", "t1", "r1", map[string]any{"n": 2})
	ev3 := buf.Append("c", "t1", "r1", map[string]any{"n": 3})

	if ev1.EventID != "1" || ev2.EventID != "2" || ev3.EventID != "3" {
		t.Fatalf("unexpected event ids: %s %s %s", ev1.EventID, ev2.EventID, ev3.EventID)
	}

	replay := buf.ReplayAfter("1")
	if len(replay) != 2 {
		t.Fatalf("expected 2 replay events, got %d", len(replay))
	}
	if replay[0].EventID != "2" || replay[1].EventID != "3" {
		t.Fatalf("unexpected replay order: %+v", replay)
	}
}

func TestEventBufferInvalidLastIDReplaysAll(t *testing.T) {
	buf := NewEventBuffer(10)
	buf.Append("a", "t1", "r1", nil)
	buf.Append("b", "t1", "r1", nil)

	for _, id := range []string{"", "not-a-number"} {
		replay := buf.ReplayAfter(id)
		if len(replay) != 2 {
			t.Fatalf("ReplayAfter(%q): expected full window, got %d events", id, len(replay))
		}
	}
}

func TestEventBufferBounded(t *testing.T) {
	buf := NewEventBuffer(3)
	for i := 0; i < 5; i++ {
		buf.Append("e", "t1", "r1", nil)
	}
	replay := buf.ReplayAfter("")
	if len(replay) != 3 {
		t.Fatalf("expected window of 3, got %d", len(replay))
	}
	if replay[0].EventID != "3" || replay[2].EventID != "5" {
		t.Fatalf("expected oldest surviving id 3 and newest 5, got %s..%s", replay[0].EventID, replay[2].EventID)
	}
}

func TestEventBufferSubscribe(t *testing.T) {
	buf := NewEventBuffer(10)
	ch := buf.Subscribe()
	buf.Append("a", "t1", "r1", nil)
	select {
	case ev := <-ch:
		if ev.Event != "a" {
			t.Fatalf("unexpected event: %+v", ev)
		}
	default:
		t.Fatal("expected buffered event on subscriber channel")
	}
	buf.Unsubscribe(ch)
	if _, ok := <-ch; ok {
		t.Fatal("expected channel closed after unsubscribe")
	}
}

func TestEventBufferCloseStopsAppends(t *testing.T) {
	buf := NewEventBuffer(10)
	ch := buf.Subscribe()
	buf.Close()
	if _, ok := <-ch; ok {
		t.Fatal("expected subscriber channel closed")
	}
	if ev := buf.Append("a", "t1", "r1", nil); ev.EventID != "" {
		t.Fatalf("expected no-op append after close, got %+v", ev)
	}
}
