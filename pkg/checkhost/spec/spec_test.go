package spec

import "testing"

func TestKind(t *testing.T) {
	t.Run("paths", func(t *testing.T) {
		if got := KindPing.Path(); got != "/check-ping" {
			t.Errorf("Path() = %q, want /check-ping", got)
		}
		if got := KindDNS.Path(); got != "/check-dns" {
			t.Errorf("Path() = %q, want /check-dns", got)
		}
	})

	t.Run("labels", func(t *testing.T) {
		want := map[Kind]string{
			KindPing: "Ping", KindHTTP: "HTTP", KindTCP: "TCP",
			KindUDP: "UDP", KindDNS: "DNS",
		}
		for kind, label := range want {
			if got := kind.Label(); got != label {
				t.Errorf("%s.Label() = %q, want %q", kind, got, label)
			}
		}
	})

	t.Run("validity", func(t *testing.T) {
		for _, kind := range Kinds {
			if !kind.Valid() {
				t.Errorf("%s.Valid() = false", kind)
			}
		}
		if Kind("traceroute").Valid() {
			t.Error(`Kind("traceroute").Valid() = true`)
		}
	})
}
