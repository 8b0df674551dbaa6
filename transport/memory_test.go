package transport

import "testing"

func TestMemoryPairDeliversSendToPeer(t *testing.T) {
	a, b := NewMemoryPair()
	var got []byte
	received := make(chan struct{})
	b.SetReceiveHandler(func(data []byte) {
		got = data
		close(received)
	})

	a.Send([]byte("hello"), func(err error) {
		if err != nil {
			t.Fatalf("unexpected send error: %v", err)
		}
	})

	<-received
	if string(got) != "hello" {
		t.Errorf("got %q, want %q", got, "hello")
	}
}

func TestMemoryPairSendAfterCloseFails(t *testing.T) {
	a, b := NewMemoryPair()
	_ = b
	a.Close()

	err := make(chan error, 1)
	a.Send([]byte("x"), func(e error) { err <- e })
	if got := <-err; got != ErrClosed {
		t.Errorf("expected ErrClosed, got %v", got)
	}
}

func TestMemoryPairCloseFiresPeerCloseHandler(t *testing.T) {
	a, b := NewMemoryPair()
	closed := make(chan error, 1)
	b.SetCloseHandler(func(err error) { closed <- err })

	a.Close()

	if err := <-closed; err != ErrClosed {
		t.Errorf("expected peer close handler to report ErrClosed, got %v", err)
	}
}

func TestMemoryPairCloseIsIdempotent(t *testing.T) {
	a, _ := NewMemoryPair()
	if err := a.Close(); err != nil {
		t.Fatal(err)
	}
	if err := a.Close(); err != nil {
		t.Fatal(err)
	}
}
