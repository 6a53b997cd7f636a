package logging

import "testing"

func TestInitLoggerModes(t *testing.T) {
	t.Cleanup(func() { _ = InitLogger(ModeOff) })
	for _, mode := range []string{ModeDebug, ModeRelease, ModeOff, ""} {
		if err := InitLogger(mode); err != nil {
			t.Fatalf("InitLogger(%q): %v", mode, err)
		}
		if Logger == nil {
			t.Fatalf("InitLogger(%q) left a nil logger", mode)
		}
		Named("test").Debug("hello")
		Sync()
	}
}
