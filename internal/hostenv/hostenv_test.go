package hostenv

import "testing"

func TestAvailableWhenMarkerSet(t *testing.T) {
	t.Setenv(EnvHostAddr, "http://127.0.0.1:9777")

	p := New()
	if !p.Available() {
		t.Error("Available() = false with marker set, want true")
	}
	if got := p.Addr(); got != "http://127.0.0.1:9777" {
		t.Errorf("Addr() = %q, want %q", got, "http://127.0.0.1:9777")
	}
}

func TestUnavailableWhenMarkerMissing(t *testing.T) {
	t.Setenv(EnvHostAddr, "")

	p := New()
	if p.Available() {
		t.Error("Available() = true with empty marker, want false")
	}
	if got := p.Addr(); got != "" {
		t.Errorf("Addr() = %q, want empty", got)
	}
}

func TestAnswerIsCachedForProbeLifetime(t *testing.T) {
	t.Setenv(EnvHostAddr, "http://127.0.0.1:9777")

	p := New()
	if !p.Available() {
		t.Fatal("Available() = false, want true")
	}

	// A later environment change must not flip an already-resolved probe.
	t.Setenv(EnvHostAddr, "")
	if !p.Available() {
		t.Error("Available() changed after first resolution, want cached true")
	}
}

func TestWhitespaceMarkerIsUnavailable(t *testing.T) {
	t.Setenv(EnvHostAddr, "   ")

	p := New()
	if p.Available() {
		t.Error("Available() = true with whitespace marker, want false")
	}
}
