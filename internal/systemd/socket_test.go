package systemd

import (
	"net"
	"testing"
)

func TestGetListeners_NotActivated(t *testing.T) {
	t.Setenv("LISTEN_PID", "")
	t.Setenv("LISTEN_FDS", "")

	listeners, err := GetListeners()
	if err != nil {
		t.Fatalf("GetListeners failed: %v", err)
	}
	if listeners.Activated {
		t.Error("Expected Activated to be false without LISTEN_FDS")
	}
	if listeners.HTTP != nil || listeners.Metrics != nil {
		t.Error("Expected no listeners without socket activation")
	}
}

func TestNotify_NoSocket(t *testing.T) {
	t.Setenv("NOTIFY_SOCKET", "")

	if err := NotifyReady(); err != nil {
		t.Errorf("NotifyReady without systemd should not fail: %v", err)
	}
	if err := NotifyStopping(); err != nil {
		t.Errorf("NotifyStopping without systemd should not fail: %v", err)
	}
}

func TestFirst(t *testing.T) {
	if first(nil) != nil {
		t.Error("Expected nil for no listeners")
	}

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	defer ln.Close()

	if first([]net.Listener{ln}) != ln {
		t.Error("Expected first listener")
	}
}
