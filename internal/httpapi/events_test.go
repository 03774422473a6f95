package httpapi_test

import (
	"testing"

	"github.com/amf-prep/trainer/internal/httpapi"
)

func TestBroadcaster_PublishSubscribe(t *testing.T) {
	b := httpapi.NewBroadcaster()

	ch, cancel := b.Subscribe()
	defer cancel()

	b.Publish(httpapi.Event{Type: "graded"})

	select {
	case ev := <-ch:
		if ev.Type != "graded" {
			t.Errorf("event type = %q, want graded", ev.Type)
		}
	default:
		t.Fatal("no event delivered to subscriber")
	}
}

func TestBroadcaster_SlowSubscriberDropsEvents(t *testing.T) {
	b := httpapi.NewBroadcaster()

	ch, cancel := b.Subscribe()
	defer cancel()

	// Overfill the subscriber buffer; Publish must never block.
	for i := 0; i < 100; i++ {
		b.Publish(httpapi.Event{Type: "answered"})
	}

	drained := 0
	for {
		select {
		case <-ch:
			drained++
			continue
		default:
		}
		break
	}
	if drained == 0 || drained >= 100 {
		t.Errorf("drained %d events, want some delivered and the rest dropped", drained)
	}
}

func TestBroadcaster_CancelStopsDelivery(t *testing.T) {
	b := httpapi.NewBroadcaster()

	ch, cancel := b.Subscribe()
	cancel()

	b.Publish(httpapi.Event{Type: "reset"})

	select {
	case ev := <-ch:
		t.Errorf("cancelled subscriber received %q", ev.Type)
	default:
	}
}
