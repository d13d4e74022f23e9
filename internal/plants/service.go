// Package plants is the unification layer. It queries the providers in a
// fixed order, normalizes their records into models.UnifiedPlant and routes
// detail lookups back to the source encoded in the composite id.
package plants

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"go.uber.org/zap"

	"plantfinder/internal/provider"
	"plantfinder/pkg/logger"
	"plantfinder/pkg/models"
)

// PrimarySource is the list-search provider, authoritative for care data.
type PrimarySource interface {
	Search(ctx context.Context, f models.PlantFilters) ([]provider.PerenualSpecies, error)
	Details(ctx context.Context, id int64) (*provider.PerenualDetails, error)
}

// SecondarySource is only used for single-record enrichment and lookups.
type SecondarySource interface {
	Search(ctx context.Context, query string, page int) ([]provider.TreflePlant, error)
	Details(ctx context.Context, id int64) (*provider.TrefleDetails, error)
}

// FallbackSource returns records that are already unified.
type FallbackSource interface {
	Search(f models.PlantFilters) ([]models.UnifiedPlant, error)
	GetByID(id string) (*models.UnifiedPlant, error)
}

type Service struct {
	primary   PrimarySource
	secondary SecondarySource
	fallback  FallbackSource
	log       *zap.Logger
}

// NewService wires the sources. secondary may be nil, in which case
// enrichment is skipped and secondary ids resolve to nothing.
func NewService(primary PrimarySource, secondary SecondarySource, fallback FallbackSource, log *zap.Logger) *Service {
	return &Service{
		primary:   primary,
		secondary: secondary,
		fallback:  fallback,
		log:       logger.OrNop(log).With(zap.String("component", "plants")),
	}
}

// SearchPlants returns primary results when there are any, otherwise the
// catalog's results. The two are never mixed. The secondary provider is not
// used for list search.
//
// A primary failure and an empty primary result are treated alike: both
// fall through to the catalog. Only a catalog failure or a cancelled ctx is
// returned.
func (s *Service) SearchPlants(ctx context.Context, f models.PlantFilters) ([]models.UnifiedPlant, error) {
	records, err := s.searchPrimary(ctx, f)
	if ctxErr := ctx.Err(); ctxErr != nil {
		// the caller went away; that is not a provider outage
		return nil, fmt.Errorf("search plants: %w", ctxErr)
	}
	if err == nil && len(records) > 0 {
		out := make([]models.UnifiedPlant, 0, len(records))
		for _, r := range records {
			out = append(out, fromPrimarySpecies(r))
		}
		s.log.Info("using primary provider results", zap.Int("count", len(out)))
		return out, nil
	}

	if err != nil {
		s.log.Warn("primary search failed, using catalog", zap.Error(err))
	} else {
		s.log.Info("primary search empty, using catalog", zap.Any("filters", f))
	}

	local, err := s.fallback.Search(f)
	if err != nil {
		return nil, fmt.Errorf("catalog fallback: %w", err)
	}
	return local, nil
}

// searchPrimary runs the primary search. A filtered search that errors is
// retried once, immediately, without filters.
func (s *Service) searchPrimary(ctx context.Context, f models.PlantFilters) ([]provider.PerenualSpecies, error) {
	records, err := s.primary.Search(ctx, f)
	if err == nil || !hasWireFilters(f) || ctx.Err() != nil {
		return records, err
	}

	s.log.Warn("filtered primary search failed, retrying without filters", zap.Error(err))
	return s.primary.Search(ctx, models.PlantFilters{})
}

// hasWireFilters reports whether f sends anything to the primary provider.
// Experience is applied client-side only.
func hasWireFilters(f models.PlantFilters) bool {
	return f.Light != "" || f.Time != ""
}

// GetPlantDetails resolves a composite id against the source it names. It
// returns nil, nil when the plant cannot be found or its source fails; an
// error is only returned for a malformed id.
func (s *Service) GetPlantDetails(ctx context.Context, id string) (*models.UnifiedPlant, error) {
	tag, originalID, err := models.ParseID(id)
	if err != nil {
		return nil, err
	}

	switch tag {
	case models.SourceLocal:
		p, err := s.fallback.GetByID(originalID)
		if err != nil {
			s.log.Warn("catalog lookup failed", zap.String("id", id), zap.Error(err))
			return nil, nil
		}
		return p, nil

	case models.SourceSecondary:
		n, err := numericID(id, originalID)
		if err != nil {
			return nil, err
		}
		return s.secondaryDetails(ctx, n), nil

	default:
		n, err := numericID(id, originalID)
		if err != nil {
			return nil, err
		}
		return s.primaryDetails(ctx, n), nil
	}
}

func (s *Service) secondaryDetails(ctx context.Context, id int64) *models.UnifiedPlant {
	if s.secondary == nil {
		return nil
	}
	d, err := s.secondary.Details(ctx, id)
	if err != nil {
		s.logLookupFailure("secondary details failed", id, err)
		return nil
	}
	p := fromSecondaryDetails(d)
	return &p
}

func (s *Service) primaryDetails(ctx context.Context, id int64) *models.UnifiedPlant {
	d, err := s.primary.Details(ctx, id)
	if err != nil {
		s.logLookupFailure("primary details failed", id, err)
		return nil
	}

	if enriched, ok := s.enrich(ctx, d); ok {
		return &enriched
	}
	p := fromPrimaryDetails(d)
	return &p
}

// enrich looks the primary record up on the secondary provider by common
// name, takes the first candidate and merges its details. Any failure along
// the way leaves the caller with the primary-only record.
func (s *Service) enrich(ctx context.Context, d *provider.PerenualDetails) (models.UnifiedPlant, bool) {
	if s.secondary == nil || d.CommonName == "" {
		return models.UnifiedPlant{}, false
	}

	candidates, err := s.secondary.Search(ctx, d.CommonName, 1)
	if err != nil || len(candidates) == 0 {
		s.log.Debug("no enrichment candidate",
			zap.Int64("primary_id", d.ID),
			zap.String("common_name", d.CommonName),
			zap.Error(err))
		return models.UnifiedPlant{}, false
	}

	td, err := s.secondary.Details(ctx, candidates[0].ID)
	if err != nil {
		s.log.Debug("enrichment details failed",
			zap.Int64("primary_id", d.ID),
			zap.Int64("secondary_id", candidates[0].ID),
			zap.Error(err))
		return models.UnifiedPlant{}, false
	}

	return merge(d, td), true
}

func (s *Service) logLookupFailure(msg string, id int64, err error) {
	if errors.Is(err, provider.ErrNotFound) {
		s.log.Debug(msg, zap.Int64("id", id), zap.Error(err))
		return
	}
	s.log.Warn(msg, zap.Int64("id", id), zap.Error(err))
}

func numericID(id, originalID string) (int64, error) {
	n, err := strconv.ParseInt(originalID, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q is not numeric", models.ErrInvalidID, id)
	}
	return n, nil
}
