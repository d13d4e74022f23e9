// Package session owns the per-client query state. Each session has one
// Facade holding the current result list, a loading flag, the last error
// message and a memo of resolved plant details.
package session

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/patrickmn/go-cache"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"plantfinder/pkg/logger"
	"plantfinder/pkg/models"
)

const searchFailedMessage = "Failed to fetch plants"

// Searcher is the unification layer as seen by a session.
type Searcher interface {
	SearchPlants(ctx context.Context, f models.PlantFilters) ([]models.UnifiedPlant, error)
	GetPlantDetails(ctx context.Context, id string) (*models.UnifiedPlant, error)
}

// State is a snapshot of a facade. Generation is the search (or reset) that
// produced Plants; it only moves forward.
type State struct {
	Plants     []models.UnifiedPlant `json:"plants"`
	Loading    bool                  `json:"loading"`
	Error      string                `json:"error,omitempty"`
	Filters    models.PlantFilters   `json:"filters"`
	Generation uint64                `json:"generation"`
}

type Facade struct {
	plants   Searcher
	details  *cache.Cache
	flight   singleflight.Group
	onChange func(State)
	log      *zap.Logger

	mu     sync.Mutex
	state  State
	issued uint64
}

// NewFacade builds an empty facade. onChange, when set, receives every state
// transition; it is called without the facade lock held.
func NewFacade(plants Searcher, onChange func(State), log *zap.Logger) *Facade {
	return &Facade{
		plants:   plants,
		details:  cache.New(cache.NoExpiration, 0),
		onChange: onChange,
		log:      logger.OrNop(log),
		state:    State{Plants: []models.UnifiedPlant{}},
	}
}

// Search runs a search and returns the resulting state.
//
// Every call is tagged with a new generation. A result that arrives after a
// newer search has been issued is dropped. On failure the previous plants are
// kept and only the error message changes. A search abandoned by its caller
// leaves the previous plants, filters and generation as they were.
func (f *Facade) Search(ctx context.Context, filters models.PlantFilters) State {
	f.mu.Lock()
	f.issued++
	gen := f.issued
	prevFilters := f.state.Filters
	f.state.Loading = true
	f.state.Error = ""
	f.state.Filters = filters
	f.mu.Unlock()
	f.notify()

	results, err := f.plants.SearchPlants(ctx, filters)

	f.mu.Lock()
	if gen != f.issued {
		f.mu.Unlock()
		f.log.Debug("dropping superseded search result",
			zap.Uint64("generation", gen), zap.Uint64("latest", f.issued))
		return f.State()
	}
	switch {
	case errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded):
		f.log.Debug("search abandoned", zap.Error(err), zap.Uint64("generation", gen))
		f.state.Filters = prevFilters
	case err != nil:
		f.log.Error("plant search failed", zap.Error(err), zap.Uint64("generation", gen))
		f.state.Error = searchFailedMessage
	default:
		f.state.Plants = filterByExperience(results, filters.Experience)
		f.state.Generation = gen
	}
	f.state.Loading = false
	f.mu.Unlock()
	f.notify()

	return f.State()
}

// State returns a copy of the current state.
func (f *Facade) State() State {
	f.mu.Lock()
	defer f.mu.Unlock()
	s := f.state
	s.Plants = make([]models.UnifiedPlant, len(f.state.Plants))
	copy(s.Plants, f.state.Plants)
	return s
}

// GetPlantDetails resolves id, serving repeated lookups from the session
// memo. Concurrent first lookups of one id share a single call. Absent
// results are not memoized, so a later call retries.
func (f *Facade) GetPlantDetails(ctx context.Context, id string) (*models.UnifiedPlant, error) {
	if v, ok := f.details.Get(id); ok {
		return v.(*models.UnifiedPlant), nil
	}

	v, err, _ := f.flight.Do(id, func() (any, error) {
		if v, ok := f.details.Get(id); ok {
			return v.(*models.UnifiedPlant), nil
		}
		p, err := f.plants.GetPlantDetails(ctx, id)
		if err != nil || p == nil {
			return nil, err
		}
		f.details.Set(id, p, cache.NoExpiration)
		return p, nil
	})
	if err != nil {
		return nil, err
	}
	p, _ := v.(*models.UnifiedPlant)
	return p, nil
}

// Reset drops the memo and the result list, as a fresh page would.
func (f *Facade) Reset() {
	f.details.Flush()
	f.mu.Lock()
	f.issued++
	f.state = State{Plants: []models.UnifiedPlant{}, Generation: f.issued}
	f.mu.Unlock()
	f.notify()
}

func (f *Facade) notify() {
	if f.onChange != nil {
		f.onChange(f.State())
	}
}

var experienceWatering = map[models.Experience]map[string]bool{
	models.ExperienceBeginner:     {"minimum": true, "average": true, "none": true},
	models.ExperienceIntermediate: {"average": true, "frequent": true},
}

// filterByExperience narrows provider results by watering demand. Catalog
// records already went through the catalog's difficulty rule and pass
// through untouched.
func filterByExperience(plants []models.UnifiedPlant, e models.Experience) []models.UnifiedPlant {
	allowed, ok := experienceWatering[e]
	if !ok {
		return plants
	}
	out := make([]models.UnifiedPlant, 0, len(plants))
	for _, p := range plants {
		if p.SourceAPI == models.SourceLocal || allowed[strings.ToLower(p.Watering)] {
			out = append(out, p)
		}
	}
	return out
}
