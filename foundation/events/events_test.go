package events_test

import (
	"testing"

	"github.com/ardanlabs/powledger/foundation/events"
)

// Success and failure markers.
const (
	success = "\u2713"
	failed  = "\u2717"
)

func TestEvents(t *testing.T) {
	evts := events.New()

	t.Log("Given the need to fan out ledger events.")
	{
		ch1 := evts.Acquire("one")
		ch2 := evts.Acquire("two")

		if evts.Acquire("one") != ch1 || evts.Len() != 2 {
			t.Fatalf("\t%s\tShould get the same channel for the same id.", failed)
		}
		t.Logf("\t%s\tShould get the same channel for the same id.", success)

		evts.Send("viewer: block mined")

		for _, ch := range []<-chan events.Event{ch1, ch2} {
			e := <-ch
			if e.Message != "viewer: block mined" || e.Time.IsZero() {
				t.Fatalf("\t%s\tShould receive the event: %+v", failed, e)
			}
		}
		t.Logf("\t%s\tShould receive the event on every channel.", success)

		if err := evts.Release("one"); err != nil {
			t.Fatalf("\t%s\tShould be able to release a channel: %v", failed, err)
		}
		if _, ok := <-ch1; ok {
			t.Fatalf("\t%s\tShould close a released channel.", failed)
		}
		t.Logf("\t%s\tShould close a released channel.", success)

		if err := evts.Release("one"); err == nil {
			t.Fatalf("\t%s\tShould not release a channel twice.", failed)
		}
		t.Logf("\t%s\tShould not release a channel twice.", success)

		for range 150 {
			evts.Send("flood")
		}
		if len(ch2) != 100 {
			t.Fatalf("\t%s\tShould drop events for a full subscriber: %d", failed, len(ch2))
		}
		t.Logf("\t%s\tShould drop events for a full subscriber.", success)

		evts.Shutdown()
		if evts.Len() != 0 {
			t.Fatalf("\t%s\tShould remove every subscriber on shutdown.", failed)
		}
		t.Logf("\t%s\tShould remove every subscriber on shutdown.", success)
	}
}
