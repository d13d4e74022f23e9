package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"plantfinder/pkg/logger"
	"plantfinder/pkg/models"
)

// Perenual is the primary provider. It is used for list search and is
// authoritative for care data.
type Perenual struct {
	apiKey string
	http   *resty.Client
	log    *zap.Logger
}

func NewPerenual(baseURL, apiKey string, timeout time.Duration, log *zap.Logger) *Perenual {
	return &Perenual{
		apiKey: apiKey,
		http:   newRestyClient(baseURL, timeout),
		log:    logger.OrNop(log).With(zap.String("provider", "perenual")),
	}
}

func (p *Perenual) Name() string { return "perenual" }

type PerenualImage struct {
	License     int    `json:"license"`
	LicenseName string `json:"license_name"`
	LicenseURL  string `json:"license_url"`
	OriginalURL string `json:"original_url"`
	RegularURL  string `json:"regular_url"`
	MediumURL   string `json:"medium_url"`
	SmallURL    string `json:"small_url"`
	Thumbnail   string `json:"thumbnail"`
}

// PerenualSpecies is one entry of the species-list endpoint.
type PerenualSpecies struct {
	ID             int64          `json:"id"`
	CommonName     string         `json:"common_name"`
	ScientificName []string       `json:"scientific_name"`
	OtherName      []string       `json:"other_name"`
	Cycle          string         `json:"cycle"`
	Watering       string         `json:"watering"`
	Sunlight       []string       `json:"sunlight"`
	DefaultImage   *PerenualImage `json:"default_image"`
}

// PerenualDetails is the flat object returned by species/details/{id}.
type PerenualDetails struct {
	PerenualSpecies
	Family      *string  `json:"family"`
	Origin      []string `json:"origin"`
	Type        string   `json:"type"`
	Dimension   string   `json:"dimension"`
	CareLevel   *string  `json:"care_level"`
	Maintenance *string  `json:"maintenance"`
	GrowthRate  string   `json:"growth_rate"`
	Description string   `json:"description"`
}

// perenualListEnvelope keeps records raw: gated species on the free tier
// carry strings where lists belong and are skipped one by one.
type perenualListEnvelope struct {
	Data        []json.RawMessage `json:"data"`
	To          int               `json:"to"`
	PerPage     int               `json:"per_page"`
	CurrentPage int               `json:"current_page"`
	From        int               `json:"from"`
	LastPage    int               `json:"last_page"`
	Total       int               `json:"total"`
}

// Search queries GET /species-list with the filters translated into the
// provider's sunlight/watering vocabulary. Indoor plants only, first page.
func (p *Perenual) Search(ctx context.Context, f models.PlantFilters) ([]PerenualSpecies, error) {
	params := primarySearchParams(p.apiKey, f)

	resp, err := p.http.R().
		SetContext(ctx).
		SetQueryParams(params).
		Get("/species-list")
	if err := checkResponse(p.Name(), "search", resp, err); err != nil {
		p.log.Debug("search failed", zap.Error(err))
		return nil, err
	}

	var env perenualListEnvelope
	if err := decode(p.Name(), "search", resp.Body(), &env); err != nil {
		return nil, err
	}

	out := make([]PerenualSpecies, 0, len(env.Data))
	for i, raw := range env.Data {
		var sp PerenualSpecies
		if err := json.Unmarshal(raw, &sp); err != nil {
			p.log.Debug("skipping undecodable record", zap.Int("index", i), zap.Error(err))
			continue
		}
		out = append(out, sp)
	}

	p.log.Debug("search ok",
		zap.String("sunlight", params["sunlight"]),
		zap.String("watering", params["watering"]),
		zap.Int("count", len(out)),
		zap.Int("skipped", len(env.Data)-len(out)),
		zap.Int("total", env.Total))
	return out, nil
}

// Details fetches GET /species/details/{id}.
func (p *Perenual) Details(ctx context.Context, id int64) (*PerenualDetails, error) {
	resp, err := p.http.R().
		SetContext(ctx).
		SetQueryParam("key", p.apiKey).
		SetPathParam("id", strconv.FormatInt(id, 10)).
		Get("/species/details/{id}")
	if err := checkResponse(p.Name(), "details", resp, err); err != nil {
		p.log.Debug("details failed", zap.Int64("id", id), zap.Error(err))
		return nil, err
	}

	var d PerenualDetails
	if err := decode(p.Name(), "details", resp.Body(), &d); err != nil {
		return nil, err
	}
	if d.ID == 0 {
		return nil, fmt.Errorf("%s details %d: %w", p.Name(), id, ErrNotFound)
	}
	return &d, nil
}
