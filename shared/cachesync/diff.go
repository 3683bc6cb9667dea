package cachesync

// DiffResult lists the writes that align a cache with its source.
type DiffResult[T Entity] struct {
	ToCreate []T
	ToUpdate []T
	ToDelete []string
}

// Empty reports whether no write is needed.
func (d DiffResult[T]) Empty() bool {
	return len(d.ToCreate) == 0 && len(d.ToUpdate) == 0 && len(d.ToDelete) == 0
}

// Diff pairs source and cache entities by ID. Entities only in source are created,
// IDs only in cache are deleted, and paired entities are updated only when the source
// copy is strictly newer. Output follows the input order.
func Diff[T Entity](source, cache []T) DiffResult[T] {
	sourceByID := indexByID(source)
	cacheByID := indexByID(cache)

	var result DiffResult[T]
	seen := make(map[string]struct{}, len(source))
	for _, s := range source {
		id := s.EntityID()
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}

		c, cached := cacheByID[id]
		switch {
		case !cached:
			result.ToCreate = append(result.ToCreate, s)
		case s.LastUpdatedAt().After(c.LastUpdatedAt()):
			result.ToUpdate = append(result.ToUpdate, s)
		}
	}

	deleted := make(map[string]struct{})
	for _, c := range cache {
		id := c.EntityID()
		if _, inSource := sourceByID[id]; inSource {
			continue
		}
		if _, dup := deleted[id]; dup {
			continue
		}
		deleted[id] = struct{}{}
		result.ToDelete = append(result.ToDelete, id)
	}

	return result
}
