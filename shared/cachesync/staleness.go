package cachesync

// IsStale reports whether the cached collection no longer matches the source. Checks run
// in order and short-circuit: differing sizes, differing ID sets, then any ID whose source
// copy is strictly newer than its cached copy.
func IsStale[T Entity](source, cache []T) bool {
	if len(source) != len(cache) {
		return true
	}

	sourceByID := indexByID(source)
	cacheByID := indexByID(cache)
	if len(sourceByID) != len(cacheByID) {
		return true
	}
	for id := range sourceByID {
		if _, ok := cacheByID[id]; !ok {
			return true
		}
	}

	for id, s := range sourceByID {
		if s.LastUpdatedAt().After(cacheByID[id].LastUpdatedAt()) {
			return true
		}
	}

	return false
}

func indexByID[T Entity](entities []T) map[string]T {
	index := make(map[string]T, len(entities))
	for _, e := range entities {
		index[e.EntityID()] = e
	}
	return index
}
