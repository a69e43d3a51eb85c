package throttle

import (
	"testing"
	"time"
)

func TestArm_Coalesces(t *testing.T) {
	th := New(20 * time.Millisecond)

	if !th.Arm() {
		t.Fatal("first Arm: got false, want true")
	}
	for i := 0; i < 9; i++ {
		if th.Arm() {
			t.Fatalf("Arm #%d while pending: got true, want false", i+2)
		}
	}
	if !th.Pending() {
		t.Fatal("Pending: got false, want true")
	}

	select {
	case <-th.C():
		th.Fired()
	case <-time.After(time.Second):
		t.Fatal("timer never fired")
	}

	if th.Pending() {
		t.Error("Pending after Fired: got true, want false")
	}
	if th.C() != nil {
		t.Error("C after Fired: got non-nil channel")
	}
	if !th.Arm() {
		t.Error("Arm after Fired: got false, want true")
	}
	th.Stop()
}

func TestArm_DoesNotExtend(t *testing.T) {
	th := New(50 * time.Millisecond)
	start := time.Now()
	th.Arm()

	// Keep triggering past the delay; a debounce would never fire.
	done := time.After(time.Second)
	tick := time.NewTicker(5 * time.Millisecond)
	defer tick.Stop()
	for {
		select {
		case <-tick.C:
			th.Arm()
		case <-th.C():
			th.Fired()
			if el := time.Since(start); el > 500*time.Millisecond {
				t.Errorf("fired after %v, want about 50ms", el)
			}
			return
		case <-done:
			t.Fatal("throttle never fired under continuous triggers")
		}
	}
}

func TestStop(t *testing.T) {
	th := New(10 * time.Millisecond)
	th.Arm()
	th.Stop()
	if th.Pending() {
		t.Error("Pending after Stop: got true")
	}
	select {
	case <-th.C():
		t.Error("received from stopped throttle")
	case <-time.After(40 * time.Millisecond):
	}
}

func TestNew_DefaultDelay(t *testing.T) {
	if d := New(0).Delay(); d != DefaultDelay {
		t.Errorf("Delay: got %v, want %v", d, DefaultDelay)
	}
}
