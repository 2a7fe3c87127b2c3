package notify

import (
	"context"
	"errors"
	"testing"
)

func newTestCenter(online bool) *Center {
	return NewCenter(NewClassifier(func() bool { return online }), nil)
}

func TestShowErrorOpensStandardSlot(t *testing.T) {
	c := newTestCenter(true)

	c.ShowError(&StatusError{Status: 401, Message: "bad token"}, nil)

	st := c.Snapshot()
	if !st.Standard.Open {
		t.Fatal("standard slot should be open")
	}
	if st.Standard.Kind != KindAuthFail {
		t.Errorf("expected AUTH_FAIL, got %s", st.Standard.Kind)
	}
	if st.Standard.Title != TitleFor(KindAuthFail) {
		t.Errorf("expected default title, got %q", st.Standard.Title)
	}
	if st.OfflineOpen {
		t.Error("offline slot should stay closed for non-network errors")
	}
	if st.Standard.CanRetry {
		t.Error("no retry was supplied")
	}
}

func TestShowErrorNetworkRoutesToOfflineSlot(t *testing.T) {
	c := newTestCenter(true)

	c.ShowError(&StatusError{Status: 0}, nil)

	st := c.Snapshot()
	if st.Standard.Open {
		t.Error("network failures must never open the standard slot")
	}
	if !st.OfflineOpen {
		t.Error("network failures must open the offline slot")
	}
}

func TestShowErrorLastCallWins(t *testing.T) {
	c := newTestCenter(true)

	c.ShowError(&StatusError{Status: 401, Message: "first"}, nil)
	c.ShowError(&StatusError{Status: 500}, &Options{Title: "second title"})

	st := c.Snapshot()
	if st.Standard.Kind != KindAPIFail {
		t.Errorf("expected content of the second call, got kind %s", st.Standard.Kind)
	}
	if st.Standard.Title != "second title" {
		t.Errorf("expected second title, got %q", st.Standard.Title)
	}
}

func TestShowErrorOverrides(t *testing.T) {
	c := newTestCenter(true)

	c.ShowError(errors.New("odd failure"), &Options{
		Title:           "Custom title",
		FallbackMessage: "custom body",
	})

	st := c.Snapshot()
	if st.Standard.Title != "Custom title" {
		t.Errorf("title override lost: %q", st.Standard.Title)
	}
	if st.Standard.Message != "custom body" {
		t.Errorf("fallback override lost: %q", st.Standard.Message)
	}
}

func TestDismissClosesStandardOnly(t *testing.T) {
	c := newTestCenter(true)

	c.OpenOffline()
	c.ShowError(&StatusError{Status: 500}, nil)
	c.Dismiss()

	st := c.Snapshot()
	if st.Standard.Open {
		t.Error("dismiss should close the standard slot")
	}
	if !st.OfflineOpen {
		t.Error("dismiss must not touch the offline slot")
	}
}

func TestRetryDoesNotClose(t *testing.T) {
	c := newTestCenter(true)

	ran := false
	c.ShowError(&StatusError{Status: 500}, &Options{
		Retry: func(ctx context.Context) error {
			ran = true
			return nil
		},
	})
	c.Retry(context.Background())

	if !ran {
		t.Fatal("retry callback did not run")
	}
	if !c.Snapshot().Standard.Open {
		t.Error("a successful retry must not auto-close the notification")
	}
}

func TestRetryFailureReclassifies(t *testing.T) {
	online := true
	c := NewCenter(NewClassifier(func() bool { return online }), nil)

	c.ShowError(&StatusError{Status: 500}, &Options{
		Retry: func(ctx context.Context) error {
			return &StatusError{Status: 500}
		},
	})

	// The device goes offline between the show and the retry. The failing
	// retry must flip to the offline surface instead of reopening the
	// standard one.
	online = false
	c.Retry(context.Background())

	st := c.Snapshot()
	if !st.OfflineOpen {
		t.Error("retry failure while offline should open the offline slot")
	}
}

func TestSubscribeSeesLatestState(t *testing.T) {
	c := newTestCenter(true)
	ch, cancel := c.Subscribe()
	defer cancel()

	// Initial state arrives immediately.
	st := <-ch
	if st.Standard.Open || st.OfflineOpen {
		t.Fatal("initial state should be all-closed")
	}

	c.ShowError(&StatusError{Status: 500}, nil)
	c.ShowError(&StatusError{Status: 401}, nil)

	// A slow reader gets the latest state, not a backlog.
	st = <-ch
	if st.Standard.Kind != KindAuthFail {
		t.Errorf("expected latest state, got kind %s", st.Standard.Kind)
	}
	select {
	case extra := <-ch:
		t.Errorf("unexpected queued state: %+v", extra)
	default:
	}
}
