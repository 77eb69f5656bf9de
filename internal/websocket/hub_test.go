package websocket

import (
	"testing"
	"time"
)

func TestHub_StopTerminatesRun(t *testing.T) {
	h := NewHub()
	stopped := make(chan struct{})
	go func() {
		h.Run()
		close(stopped)
	}()

	h.Stop()

	select {
	case <-stopped:
	case <-time.After(time.Second):
		t.Fatal("hub run loop did not stop")
	}
}
