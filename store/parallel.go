package store

import (
	"context"
	"sync"
)

// parallelThreshold is the minimum number of keys for which the shared cache
// tier is queried concurrently instead of one by one.
const parallelThreshold = 5

// ParallelCacheLookup queries the shared cache tier for many keys at once.
// Returns the hits and the keys that missed, preserving input order for the
// misses.
func ParallelCacheLookup(cache Cache, keys []Key, lng string) (map[Key]string, []Key) {
	if cache == nil || len(keys) == 0 {
		return make(map[Key]string), keys
	}

	type lookupResult struct {
		key   Key
		value string
		found bool
	}

	unique := make(map[Key]bool, len(keys))
	for _, k := range keys {
		unique[k] = true
	}

	results := make(chan lookupResult, len(unique))
	var wg sync.WaitGroup

	for k := range unique {
		wg.Add(1)
		go func(k Key) {
			defer wg.Done()
			if val, ok := cache.Get(CacheKey(k, lng)); ok {
				results <- lookupResult{key: k, value: val, found: true}
			} else {
				results <- lookupResult{key: k, found: false}
			}
		}(k)
	}

	go func() {
		wg.Wait()
		close(results)
	}()

	hits := make(map[Key]string)
	missed := make(map[Key]bool)
	for result := range results {
		if result.found {
			hits[result.key] = result.value
		} else {
			missed[result.key] = true
		}
	}

	var misses []Key
	seen := make(map[Key]bool)
	for _, k := range keys {
		if missed[k] && !seen[k] {
			misses = append(misses, k)
			seen[k] = true
		}
	}
	return hits, misses
}

// ResolveAll resolves a batch of keys for one language. Large batches probe
// the shared cache tier concurrently before falling back to the sequential
// per-key path, which handles overlay reads, discovery and machine
// translation.
func (s *Session) ResolveAll(ctx context.Context, keys []Key, lng string) map[Key]string {
	resolved := make(map[Key]string, len(keys))

	rest := keys
	if s.shared != nil && lng != s.cat.SourceLng() && len(keys) >= parallelThreshold {
		// Overlay writes win over the shared tier; exclude them up front.
		var cacheable []Key
		for _, k := range keys {
			s.mu.Lock()
			_, inOverlay := s.overlay[cell{K: k, Lng: lng}]
			s.mu.Unlock()
			if !inOverlay {
				cacheable = append(cacheable, k)
			}
		}
		hits, _ := ParallelCacheLookup(s.shared, cacheable, lng)
		for k, v := range hits {
			resolved[k] = v
		}
		rest = nil
		for _, k := range keys {
			if _, ok := resolved[k]; !ok {
				rest = append(rest, k)
			}
		}
	}

	for _, k := range rest {
		if _, ok := resolved[k]; ok {
			continue
		}
		resolved[k] = s.Resolve(ctx, k, lng)
	}
	return resolved
}
