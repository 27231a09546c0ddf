package monitor

import "testing"

func TestCancelChannelSignalFiresPrimitiveEachCall(t *testing.T) {
	prim := &fakePrimitive{}
	c := newCancelChannel(prim)

	if !c.signal() {
		t.Fatal("expected first signal to succeed")
	}
	if !c.signal() {
		t.Fatal("expected a second signal before close to still succeed (coalesced wake)")
	}
	if prim.fired != 2 {
		t.Fatalf("expected the primitive to fire for each signal call, got %d", prim.fired)
	}
}

func TestCancelChannelSignalAfterCloseIsNoOp(t *testing.T) {
	prim := &fakePrimitive{}
	c := newCancelChannel(prim)

	c.close()

	if c.signal() {
		t.Fatal("expected signal after close to return false")
	}
	if prim.fired != 0 {
		t.Fatalf("expected the primitive not to fire after close, got %d fires", prim.fired)
	}
}

func TestCancelChannelCloseIsIdempotent(t *testing.T) {
	prim := &fakePrimitive{}
	c := newCancelChannel(prim)

	c.close()
	c.close()

	if !prim.released {
		t.Fatal("expected the primitive to be released")
	}
}

func TestCancelChannelNilPrimitiveSignalIsNoOp(t *testing.T) {
	c := newCancelChannel(nil)
	if c.signal() {
		t.Fatal("expected signal with a nil primitive to return false")
	}
}
