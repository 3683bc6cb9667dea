package domain

import (
	"context"
	"slices"
	"time"
)

// Algorithm is a clinical decision algorithm. Its Info is one of a closed set of kinds.
type Algorithm struct {
	ID               string
	Title            string
	Summary          string
	Body             string
	Thumbnail        string
	Outcomes         []Outcome
	ShowOnHomeScreen bool
	LastUpdated      time.Time
	Info             AlgorithmInfo
}

// Outcome is a possible result of an algorithm. Threshold is the minimum score at which a
// scored algorithm selects it; textual algorithms ignore it.
type Outcome struct {
	ID        string
	Title     string
	Body      string
	Threshold int
}

// Switch is a yes/no criterion of a scored algorithm.
type Switch struct {
	ID          string
	Label       string
	Description string
	Weight      int
}

// AlgorithmKind names the variant carried by Algorithm.Info.
type AlgorithmKind string

const (
	AlgorithmKindTextual AlgorithmKind = "textual"
	AlgorithmKindScored  AlgorithmKind = "scored"
)

// AlgorithmInfo is implemented only by TextualInfo and ScoredInfo.
type AlgorithmInfo interface {
	Kind() AlgorithmKind
	cloneInfo() AlgorithmInfo
	sealedAlgorithmInfo()
}

// TextualInfo marks a plain algorithm that is read, not interacted with.
type TextualInfo struct{}

func (TextualInfo) Kind() AlgorithmKind      { return AlgorithmKindTextual }
func (TextualInfo) cloneInfo() AlgorithmInfo { return TextualInfo{} }
func (TextualInfo) sealedAlgorithmInfo()     {}

// ScoredInfo marks an interactive algorithm whose switches add up to a score.
type ScoredInfo struct {
	Switches []Switch
}

func (ScoredInfo) Kind() AlgorithmKind { return AlgorithmKindScored }
func (s ScoredInfo) cloneInfo() AlgorithmInfo {
	return ScoredInfo{Switches: slices.Clone(s.Switches)}
}
func (ScoredInfo) sealedAlgorithmInfo() {}

// Score sums the weights of the switches whose IDs are in on.
func (s ScoredInfo) Score(on map[string]bool) int {
	total := 0
	for _, sw := range s.Switches {
		if on[sw.ID] {
			total += sw.Weight
		}
	}
	return total
}

func (a Algorithm) EntityID() string         { return a.ID }
func (a Algorithm) LastUpdatedAt() time.Time { return a.LastUpdated }

// Kind returns the algorithm variant. An algorithm without Info is textual.
func (a Algorithm) Kind() AlgorithmKind {
	if a.Info == nil {
		return AlgorithmKindTextual
	}
	return a.Info.Kind()
}

// Clone returns a copy that shares no slices with a.
func (a Algorithm) Clone() Algorithm {
	a.Outcomes = slices.Clone(a.Outcomes)
	if a.Info != nil {
		a.Info = a.Info.cloneInfo()
	}
	return a
}

type AlgorithmSourceRepository interface {
	SourceRepository[Algorithm]
	GetAllShownOnHome(ctx context.Context) ([]Algorithm, error)
}

type AlgorithmCacheRepository interface {
	CacheRepository[Algorithm]
	GetAllShownOnHome(ctx context.Context) ([]Algorithm, error)
}
