package modkit_test

import (
	"slices"
	"testing"

	"mediarelay/internal/modkit"
	"mediarelay/internal/modkit/module"
	"mediarelay/internal/platform/config"

	aggmod "mediarelay/internal/services/aggregator/module"
	chunkmod "mediarelay/internal/services/chunker/module"
	fetchmod "mediarelay/internal/services/fetcher/module"
	harvestmod "mediarelay/internal/services/harvester/module"
	sinkmod "mediarelay/internal/services/linksink/module"
	watchmod "mediarelay/internal/services/linkwatch/module"
)

func TestMount_PipelineModules(t *testing.T) {
	module.Reset()
	t.Cleanup(module.Reset)
	t.Setenv("RELAY_EXCHANGE_ROOT", t.TempDir())

	deps := modkit.NewDeps(config.New())
	sink := sinkmod.New(deps)
	fetch := fetchmod.New(deps)
	fp := fetch.Ports().(fetchmod.Ports)
	mods := []modkit.Module{
		sink,
		fetch,
		watchmod.New(deps, fp.Fetcher),
		harvestmod.New(deps, fp.Client, fp.Fetcher),
		aggmod.New(deps, nil),
		chunkmod.New(deps, nil),
	}
	modkit.Mount(nil, mods...)

	want := []string{"linksink", "fetcher", "linkwatch", "harvester", "aggregator", "chunker"}
	if !slices.Equal(module.Names(), want) {
		t.Fatalf("names = %v", module.Names())
	}
	if p, ok := module.PortsAs[sinkmod.Ports]("linksink"); !ok || p.Submitter == nil {
		t.Fatalf("linksink ports = %+v, %v", p, ok)
	}
	if p, ok := module.PortsAs[fetchmod.Ports]("fetcher"); !ok || p.Client == nil || p.API == nil {
		t.Fatalf("fetcher ports = %+v, %v", p, ok)
	}
	if _, ok := module.PortsAs[watchmod.Ports]("harvester"); ok {
		t.Fatal("harvester ports asserted as watcher ports")
	}
}
