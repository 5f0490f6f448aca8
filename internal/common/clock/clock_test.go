package clock

import (
	"testing"
	"time"
)

func TestManualFiresInDeadlineOrder(t *testing.T) {
	start := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	c := NewManual(start)

	var order []string
	c.AfterFunc(5*time.Second, func() { order = append(order, "b") })
	c.AfterFunc(2*time.Second, func() { order = append(order, "a") })
	stopped := c.AfterFunc(3*time.Second, func() { order = append(order, "never") })
	if !stopped.Stop() {
		t.Fatalf("Stop: want=true got=false")
	}

	c.Advance(4 * time.Second)
	if len(order) != 1 || order[0] != "a" {
		t.Fatalf("after 4s: want=[a] got=%v", order)
	}
	c.Advance(time.Second)
	if len(order) != 2 || order[1] != "b" {
		t.Fatalf("after 5s: want=[a b] got=%v", order)
	}
	if got := c.Now(); !got.Equal(start.Add(5 * time.Second)) {
		t.Fatalf("Now: want=%v got=%v", start.Add(5*time.Second), got)
	}
	if c.Pending() != 0 {
		t.Fatalf("Pending: want=0 got=%d", c.Pending())
	}
}

func TestManualTimerArmedDuringCallback(t *testing.T) {
	c := NewManual(time.Unix(0, 0))
	fired := 0
	c.AfterFunc(time.Second, func() {
		fired++
		c.AfterFunc(time.Second, func() { fired++ })
	})
	c.Advance(3 * time.Second)
	if fired != 2 {
		t.Fatalf("fired: want=2 got=%d", fired)
	}
}
