package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"plantfinder/pkg/logger"
)

// Trefle is the secondary provider. Its query model is only used for
// single-record lookups: name search followed by a details fetch.
type Trefle struct {
	token string
	http  *resty.Client
	log   *zap.Logger
}

func NewTrefle(baseURL, token string, timeout time.Duration, log *zap.Logger) *Trefle {
	return &Trefle{
		token: token,
		http:  newRestyClient(baseURL, timeout),
		log:   logger.OrNop(log).With(zap.String("provider", "trefle")),
	}
}

func (t *Trefle) Name() string { return "trefle" }

// TreflePlant is one entry of GET /plants.
type TreflePlant struct {
	ID               int64     `json:"id"`
	CommonName       *string   `json:"common_name"`
	Slug             string    `json:"slug"`
	ScientificName   string    `json:"scientific_name"`
	Year             int       `json:"year"`
	Bibliography     string    `json:"bibliography"`
	Author           string    `json:"author"`
	Status           string    `json:"status"`
	Rank             string    `json:"rank"`
	FamilyCommonName *string   `json:"family_common_name"`
	GenusID          int64     `json:"genus_id"`
	ImageURL         *string   `json:"image_url"`
	Genus            TaxonName `json:"genus"`
	Family           TaxonName `json:"family"`
}

type TrefleImage struct {
	ID        int64  `json:"id"`
	ImageURL  string `json:"image_url"`
	Copyright string `json:"copyright"`
}

type TrefleImageSet struct {
	Flower []TrefleImage `json:"flower"`
	Leaf   []TrefleImage `json:"leaf"`
	Habit  []TrefleImage `json:"habit"`
	Fruit  []TrefleImage `json:"fruit"`
	Bark   []TrefleImage `json:"bark"`
	Other  []TrefleImage `json:"other"`
}

type TrefleTemperature struct {
	DegF *float64 `json:"deg_f"`
	DegC *float64 `json:"deg_c"`
}

type TrefleGrowth struct {
	Description         *string           `json:"description"`
	PHMaximum           *float64          `json:"ph_maximum"`
	PHMinimum           *float64          `json:"ph_minimum"`
	Light               *float64          `json:"light"` // 0-10
	AtmosphericHumidity *float64          `json:"atmospheric_humidity"`
	MinimumTemperature  TrefleTemperature `json:"minimum_temperature"`
	MaximumTemperature  TrefleTemperature `json:"maximum_temperature"`
}

type TrefleSpecifications struct {
	GrowthForm    *string `json:"growth_form"`
	GrowthHabit   *string `json:"growth_habit"`
	GrowthRate    *string `json:"growth_rate"`
	AverageHeight struct {
		CM *float64 `json:"cm"`
	} `json:"average_height"`
	MaximumHeight struct {
		CM *float64 `json:"cm"`
	} `json:"maximum_height"`
	Toxicity *string `json:"toxicity"`
}

// TrefleDetails is the "data" object of GET /plants/{id}.
type TrefleDetails struct {
	ID             int64                `json:"id"`
	CommonName     *string              `json:"common_name"`
	Slug           string               `json:"slug"`
	ScientificName string               `json:"scientific_name"`
	Author         string               `json:"author"`
	Observations   *string              `json:"observations"`
	Vegetable      *bool                `json:"vegetable"`
	ImageURL       *string              `json:"image_url"`
	Images         TrefleImageSet       `json:"images"`
	Genus          TaxonName            `json:"genus"`
	Family         TaxonName            `json:"family"`
	Duration       []string             `json:"duration"`
	EdiblePart     []string             `json:"edible_part"`
	Edible         *bool                `json:"edible"`
	Specifications TrefleSpecifications `json:"specifications"`
	Growth         TrefleGrowth         `json:"growth"`
}

// TaxonName accepts either a plain name or an object carrying a name.
type TaxonName string

func (r *TaxonName) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		*r = ""
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*r = TaxonName(s)
		return nil
	}
	var obj struct {
		Name string `json:"name"`
	}
	if err := json.Unmarshal(b, &obj); err != nil {
		return fmt.Errorf("taxon: %w", err)
	}
	*r = TaxonName(obj.Name)
	return nil
}

type trefleListEnvelope struct {
	Data  []TreflePlant `json:"data"`
	Links struct {
		Self  string `json:"self"`
		First string `json:"first"`
		Last  string `json:"last"`
		Next  string `json:"next"`
	} `json:"links"`
	Meta struct {
		Total int `json:"total"`
	} `json:"meta"`
}

type trefleDetailsEnvelope struct {
	Data *TrefleDetails `json:"data"`
}

// Search queries GET /plants with an optional free-text q.
func (t *Trefle) Search(ctx context.Context, query string, page int) ([]TreflePlant, error) {
	if page < 1 {
		page = 1
	}
	req := t.http.R().
		SetContext(ctx).
		SetQueryParam("token", t.token).
		SetQueryParam("page", strconv.Itoa(page))
	if query != "" {
		req.SetQueryParam("q", query)
	}

	resp, err := req.Get("/plants")
	if err := checkResponse(t.Name(), "search", resp, err); err != nil {
		t.log.Debug("search failed", zap.String("q", query), zap.Error(err))
		return nil, err
	}

	var env trefleListEnvelope
	if err := decode(t.Name(), "search", resp.Body(), &env); err != nil {
		return nil, err
	}
	t.log.Debug("search ok", zap.String("q", query), zap.Int("count", len(env.Data)), zap.Int("total", env.Meta.Total))
	return env.Data, nil
}

// Details fetches GET /plants/{id}.
func (t *Trefle) Details(ctx context.Context, id int64) (*TrefleDetails, error) {
	resp, err := t.http.R().
		SetContext(ctx).
		SetQueryParam("token", t.token).
		SetPathParam("id", strconv.FormatInt(id, 10)).
		Get("/plants/{id}")
	if err := checkResponse(t.Name(), "details", resp, err); err != nil {
		t.log.Debug("details failed", zap.Int64("id", id), zap.Error(err))
		return nil, err
	}

	var env trefleDetailsEnvelope
	if err := decode(t.Name(), "details", resp.Body(), &env); err != nil {
		return nil, err
	}
	if env.Data == nil {
		return nil, fmt.Errorf("%s details %d: %w", t.Name(), id, ErrNotFound)
	}
	return env.Data, nil
}
