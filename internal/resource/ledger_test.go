package resource

import "testing"

func TestLedger_RegisterAndFetch(t *testing.T) {
	l := NewLedger()

	h := l.Register([]byte{0x01, 0x02})
	if h == NoHandle {
		t.Fatal("expected a non-empty handle")
	}

	b, ok := l.Bytes(h)
	if !ok {
		t.Fatalf("Bytes(%q) not found", h)
	}
	if len(b) != 2 || b[0] != 0x01 {
		t.Errorf("unexpected buffer content: %v", b)
	}

	if _, ok := l.Bytes("missing"); ok {
		t.Error("expected lookup of unknown handle to fail")
	}
}

func TestLedger_ReleaseAll(t *testing.T) {
	l := NewLedger()

	for i := 0; i < 5; i++ {
		l.Register(make([]byte, 4))
	}
	if got := l.Open(); got != 5 {
		t.Fatalf("Open() = %d, want 5", got)
	}

	l.ReleaseAll()
	if got := l.Open(); got != 0 {
		t.Errorf("Open() after ReleaseAll = %d, want 0", got)
	}
}

func TestLedger_ObserverTracksOpenHandles(t *testing.T) {
	l := NewLedger()

	var last int
	l.SetObserver(func(open int) { last = open })

	h1 := l.Register([]byte("a"))
	l.Register([]byte("b"))
	if last != 2 {
		t.Fatalf("observer saw %d open handles, want 2", last)
	}

	l.Release(h1)
	if last != 1 {
		t.Fatalf("observer saw %d open handles after release, want 1", last)
	}

	l.ReleaseAll()
	if last != 0 {
		t.Fatalf("observer saw %d open handles after ReleaseAll, want 0", last)
	}
}

func TestLedger_ReleaseUnknownHandleIsNoOp(t *testing.T) {
	l := NewLedger()
	l.Register([]byte("a"))
	l.Release("not-a-handle")
	if got := l.Open(); got != 1 {
		t.Errorf("Open() = %d, want 1", got)
	}
}
