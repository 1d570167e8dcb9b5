package module

import (
	"slices"
	"sync"
	"testing"
)

type sinkPorts struct{ Dir string }

func TestRegistry_LookupByNameAndType(t *testing.T) {
	Reset()
	t.Cleanup(Reset)

	Register("linksink", sinkPorts{Dir: "exchange/kc-links"})

	got, ok := PortsAs[sinkPorts]("linksink")
	if !ok || got.Dir != "exchange/kc-links" {
		t.Fatalf("PortsAs = %+v, %v", got, ok)
	}
	if _, ok := PortsAs[int]("linksink"); ok {
		t.Fatal("type mismatch reported ok")
	}
	if got, ok := PortsAs[sinkPorts]("harvester"); ok || got != (sinkPorts{}) {
		t.Fatalf("missing module = %+v, %v", got, ok)
	}
}

func TestRegistry_NilPortsAreNotFound(t *testing.T) {
	Reset()
	t.Cleanup(Reset)

	Register("ops", nil)
	if _, ok := PortsAs[sinkPorts]("ops"); ok {
		t.Fatal("nil ports reported ok")
	}
	if !slices.Equal(Names(), []string{"ops"}) {
		t.Fatalf("names = %v", Names())
	}
}

func TestRegistry_NamesKeepFirstRegistrationOrder(t *testing.T) {
	Reset()
	t.Cleanup(Reset)

	Register("linksink", sinkPorts{Dir: "a"})
	Register("fetcher", 1)
	Register("linksink", sinkPorts{Dir: "b"})
	Register("linkwatch", 2)

	if want := []string{"linksink", "fetcher", "linkwatch"}; !slices.Equal(Names(), want) {
		t.Fatalf("names = %v, want %v", Names(), want)
	}
	if got, _ := PortsAs[sinkPorts]("linksink"); got.Dir != "b" {
		t.Fatalf("replaced ports = %+v", got)
	}

	names := Names()
	names[0] = "mutated"
	if Names()[0] != "linksink" {
		t.Fatal("Names exposed internal slice")
	}

	Reset()
	if len(Names()) != 0 {
		t.Fatalf("names after reset = %v", Names())
	}
}

func TestRegistry_ConcurrentUse(t *testing.T) {
	Reset()
	t.Cleanup(Reset)

	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range 50 {
				Register("aggregator", sinkPorts{Dir: "w"})
				_, _ = PortsAs[sinkPorts]("aggregator")
				_ = Names()
			}
		}()
	}
	wg.Wait()

	if !slices.Equal(Names(), []string{"aggregator"}) {
		t.Fatalf("names = %v", Names())
	}
}
