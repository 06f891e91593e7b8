package core

import (
	"context"
	"sync"

	"github.com/logstash-tools/plugindex/memo"
)

const defaultConcurrency = 8

// BulkLastReleases resolves the latest released package for many
// repositories in parallel. Repositories with no releases or failing
// lookups are omitted. Merge order across repositories is arrival order,
// non-deterministic across runs.
func BulkLastReleases(ctx context.Context, repos []*Repository) map[string]*ReleasePackage {
	return BulkLastReleasesWithConcurrency(ctx, repos, defaultConcurrency)
}

// BulkLastReleasesWithConcurrency resolves latest releases with a custom
// concurrency limit.
func BulkLastReleasesWithConcurrency(ctx context.Context, repos []*Repository, concurrency int) map[string]*ReleasePackage {
	results := make(map[string]*ReleasePackage)
	var mu sync.Mutex
	sem := make(chan struct{}, concurrency)
	var wg sync.WaitGroup

	for _, repo := range repos {
		wg.Add(1)
		go func(r *Repository) {
			defer wg.Done()

			select {
			case sem <- struct{}{}:
				defer func() { <-sem }()
			case <-ctx.Done():
				return
			}

			pkg, err := r.LastRelease(ctx)
			if err == nil && pkg != nil {
				mu.Lock()
				results[r.Name().Full()] = pkg
				mu.Unlock()
			}
		}(repo)
	}

	wg.Wait()
	return results
}

// BulkCollectPlugins expands each repository's newest matching package
// (prereleases excluded unless requested) into its plugins and merges
// everything into one shared list, deduplicated by canonical name.
// Per-repository failures are skipped.
func BulkCollectPlugins(ctx context.Context, repos []*Repository, includePrerelease bool) []Plugin {
	return BulkCollectPluginsWithConcurrency(ctx, repos, includePrerelease, defaultConcurrency)
}

// BulkCollectPluginsWithConcurrency collects plugins with a custom
// concurrency limit.
func BulkCollectPluginsWithConcurrency(ctx context.Context, repos []*Repository, includePrerelease bool, concurrency int) []Plugin {
	collected := memo.NewSyncedList[Plugin]()
	seen := memo.NewSyncedSet[string]()
	sem := make(chan struct{}, concurrency)
	var wg sync.WaitGroup

	for _, repo := range repos {
		wg.Add(1)
		go func(r *Repository) {
			defer wg.Done()

			select {
			case sem <- struct{}{}:
				defer func() { <-sem }()
			case <-ctx.Done():
				return
			}

			for pkg, err := range r.Packages(ctx, includePrerelease) {
				if err != nil {
					return
				}
				plugins, err := pkg.Plugins(ctx)
				if err != nil {
					return
				}
				for _, pl := range plugins {
					if seen.Add(pl.CanonicalName().Full()) {
						collected.Append(pl)
					}
				}
				// Newest matching version only.
				return
			}
		}(repo)
	}

	wg.Wait()
	return collected.Values()
}
