package events_test

import (
	"testing"

	"furnishAi/internal/events"
)

func TestPublishReachesSubscribers(t *testing.T) {
	broker := events.NewBroker()
	ch := broker.Subscribe()
	defer broker.Unsubscribe(ch)

	broker.Publish(events.Event{SessionID: "s1", Flow: events.FlowPlacement, Stage: "done"})

	select {
	case evt := <-ch:
		if evt.Stage != "done" || evt.Flow != events.FlowPlacement {
			t.Errorf("got %+v", evt)
		}
	default:
		t.Fatalf("no event delivered")
	}
}

func TestPublishDropsWhenSubscriberIsFull(t *testing.T) {
	broker := events.NewBroker()
	ch := broker.Subscribe()
	defer broker.Unsubscribe(ch)

	for i := 0; i < 20; i++ {
		broker.Publish(events.Event{Flow: events.FlowDesign, Stage: "generating"})
	}
	// The subscriber buffer holds 8; the rest must be dropped, not block.
	if got := len(ch); got != 8 {
		t.Errorf("buffered events = %d, want 8", got)
	}
}

func TestUnsubscribeClosesChannel(t *testing.T) {
	broker := events.NewBroker()
	ch := broker.Subscribe()
	broker.Unsubscribe(ch)

	if _, ok := <-ch; ok {
		t.Fatalf("channel still open after unsubscribe")
	}

	// Publishing after unsubscribe must not panic.
	broker.Publish(events.Event{Flow: events.FlowPlacement, Stage: "done"})
}
