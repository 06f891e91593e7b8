package core

import (
	"context"
	"sort"
	"testing"
)

func bulkTestRepos(t *testing.T) []*Repository {
	t.Helper()
	source := &fakeSource{}

	grok := NewRepository(mustName(t, "logstash-filter-grok"), &fakeMeta{recs: []VersionRecord{
		{Number: "4.0.0", CreatedAt: day(4)},
		{Number: "3.0.0", CreatedAt: day(3)},
	}}, source)

	kafka := NewRepository(mustName(t, "logstash-integration-kafka"), &fakeMeta{recs: []VersionRecord{
		{Number: "10.0.0", CreatedAt: day(5), Metadata: map[string]string{
			MetaIntegrationPlugins: "logstash-input-kafka, logstash-output-kafka",
		}},
	}}, source)

	unreleased := NewRepository(mustName(t, "logstash-codec-new"), &fakeMeta{}, source)

	return []*Repository{grok, kafka, unreleased}
}

func TestBulkLastReleases(t *testing.T) {
	repos := bulkTestRepos(t)

	results := BulkLastReleases(context.Background(), repos)

	if len(results) != 2 {
		t.Fatalf("got %d results, want 2 (unreleased repo omitted): %v", len(results), results)
	}
	if pkg := results["logstash-filter-grok"]; pkg == nil || pkg.Version() != "4.0.0" {
		t.Errorf("grok latest = %v, want 4.0.0", pkg)
	}
	if pkg := results["logstash-integration-kafka"]; pkg == nil || pkg.Version() != "10.0.0" {
		t.Errorf("kafka latest = %v, want 10.0.0", pkg)
	}
}

func TestBulkCollectPlugins(t *testing.T) {
	repos := bulkTestRepos(t)

	plugins := BulkCollectPlugins(context.Background(), repos, false)

	var names []string
	for _, pl := range plugins {
		names = append(names, pl.CanonicalName().Full())
	}
	sort.Strings(names)

	// The unreleased repository has no packages to expand.
	want := []string{
		"logstash-filter-grok",
		"logstash-input-kafka",
		"logstash-output-kafka",
	}
	if len(names) != len(want) {
		t.Fatalf("collected %v, want %v", names, want)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Errorf("collected %v, want %v", names, want)
			break
		}
	}
}

func TestBulkCollectPlugins_Dedupes(t *testing.T) {
	source := &fakeSource{}
	a := NewRepository(mustName(t, "logstash-filter-grok"), &fakeMeta{recs: []VersionRecord{
		{Number: "1.0.0", CreatedAt: day(1)},
	}}, source)
	b := NewRepository(mustName(t, "logstash-filter-grok"), &fakeMeta{recs: []VersionRecord{
		{Number: "1.0.0", CreatedAt: day(1)},
	}}, source)

	plugins := BulkCollectPlugins(context.Background(), []*Repository{a, b}, false)
	if len(plugins) != 1 {
		t.Errorf("collected %d plugins for duplicate repositories, want 1", len(plugins))
	}
}
