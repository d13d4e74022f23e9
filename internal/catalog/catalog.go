// Package catalog is the bundled static plant dataset. It is loaded once at
// startup and serves as the last link of the fallback chain when the
// primary provider is empty or unreachable.
package catalog

import (
	"errors"
	"math"
	"strings"
	"unicode/utf16"

	"go.uber.org/zap"

	"plantfinder/pkg/logger"
	"plantfinder/pkg/models"
)

var ErrNotLoaded = errors.New("catalog: not loaded")

// Record is one entry of the bundled dataset.
type Record struct {
	ID         string   `json:"id"`
	Name       string   `json:"name"`
	Latin      string   `json:"latin"`
	Aliases    []string `json:"aliases"`
	Categories []string `json:"categories"`
	Toxicity   struct {
		ToPets   bool `json:"to_pets"`
		ToHumans bool `json:"to_humans"`
	} `json:"toxicity"`
	Images struct {
		Primary string   `json:"primary"`
		Gallery []string `json:"gallery"`
	} `json:"images"`
	Care       Care     `json:"care"`
	Difficulty int      `json:"difficulty"`
	Sources    []string `json:"sources"`
	Notes      string   `json:"notes,omitempty"`
}

type Care struct {
	Light struct {
		Level  string  `json:"level"`
		LuxMin float64 `json:"lux_min"`
		LuxMax float64 `json:"lux_max"`
		Notes  string  `json:"notes"`
	} `json:"light"`
	Watering struct {
		Level      string  `json:"level"`
		PerWeekMin float64 `json:"per_week_min"`
		PerWeekMax float64 `json:"per_week_max"`
		Notes      string  `json:"notes"`
	} `json:"watering"`
	SoilMoisture Range `json:"soil_moisture"`
	Humidity     Range `json:"humidity"`
	TemperatureC struct {
		Min float64 `json:"min"`
		Max float64 `json:"max"`
	} `json:"temperature_c"`
	Fertilizer struct {
		FrequencyPerMonth float64 `json:"frequency_per_month"`
		Season            string  `json:"season"`
	} `json:"fertilizer"`
}

type Range struct {
	TargetMin float64 `json:"target_min"`
	TargetMax float64 `json:"target_max"`
}

// Catalog holds the loaded records. It is read-only after construction and
// safe for concurrent use.
type Catalog struct {
	plants []Record
	byID   map[string]int
	log    *zap.Logger
}

func New(records []Record, log *zap.Logger) *Catalog {
	c := &Catalog{
		plants: records,
		byID:   make(map[string]int, len(records)),
		log:    logger.OrNop(log).With(zap.String("component", "catalog")),
	}
	for i, r := range records {
		if _, dup := c.byID[r.ID]; dup {
			c.log.Warn("duplicate catalog id, keeping first", zap.String("id", r.ID))
			continue
		}
		c.byID[r.ID] = i
	}
	return c
}

func (c *Catalog) Len() int {
	if c == nil {
		return 0
	}
	return len(c.plants)
}

// Search returns the records matching every populated filter axis, already
// mapped into UnifiedPlant and tagged as local.
//
//   - light: substring match on the light label ("low" matches "low-medium")
//   - time: exact match on the watering label
//   - experience: difficulty thresholds; ranges overlap at 2 and 3-4
func (c *Catalog) Search(f models.PlantFilters) ([]models.UnifiedPlant, error) {
	if c == nil {
		return nil, ErrNotLoaded
	}
	out := make([]models.UnifiedPlant, 0, len(c.plants))
	for _, r := range c.plants {
		if matches(r, f) {
			out = append(out, r.toUnified())
		}
	}
	return out, nil
}

// GetByID looks up a record by its native id (without the "local-"
// prefix). It returns nil, nil when there is no such record.
func (c *Catalog) GetByID(id string) (*models.UnifiedPlant, error) {
	if c == nil {
		return nil, ErrNotLoaded
	}
	i, ok := c.byID[id]
	if !ok {
		return nil, nil
	}
	p := c.plants[i].toUnified()
	return &p, nil
}

// All returns every record, unfiltered.
func (c *Catalog) All() []models.UnifiedPlant {
	if c == nil {
		return nil
	}
	out := make([]models.UnifiedPlant, 0, len(c.plants))
	for _, r := range c.plants {
		out = append(out, r.toUnified())
	}
	return out
}

var timeToWatering = map[models.Level]string{
	models.LevelLow:    "minimum",
	models.LevelMedium: "average",
	models.LevelHigh:   "frequent",
}

func matches(r Record, f models.PlantFilters) bool {
	if f.Light != "" {
		if !strings.Contains(strings.ToLower(r.Care.Light.Level), string(f.Light)) {
			return false
		}
	}
	if f.Time != "" {
		if strings.ToLower(r.Care.Watering.Level) != timeToWatering[f.Time] {
			return false
		}
	}
	if f.Experience != "" && !experienceAllows(f.Experience, r.Difficulty) {
		return false
	}
	return true
}

func experienceAllows(e models.Experience, difficulty int) bool {
	switch e {
	case models.ExperienceBeginner:
		return difficulty <= 2
	case models.ExperienceIntermediate:
		return difficulty >= 2 && difficulty <= 4
	case models.ExperienceExpert:
		return difficulty >= 3
	}
	return true
}

var lightToSunlight = map[string][]string{
	"low":         {"full_shade", "part_shade"},
	"low-medium":  {"part_shade"},
	"medium":      {"sun-part_shade"},
	"medium-high": {"sun-part_shade", "full_sun"},
	"high":        {"full_sun"},
	"low-high":    {"full_shade", "part_shade", "sun-part_shade", "full_sun"},
}

func (r Record) toUnified() models.UnifiedPlant {
	sunlight, ok := lightToSunlight[strings.ToLower(r.Care.Light.Level)]
	if !ok {
		sunlight = []string{"sun-part_shade"}
	}

	var image *string
	if r.Images.Primary != "" {
		img := r.Images.Primary
		image = &img
	}

	minC, maxC := r.Care.TemperatureC.Min, r.Care.TemperatureC.Max
	minF, maxF := celsiusToFahrenheit(minC), celsiusToFahrenheit(maxC)

	return models.UnifiedPlant{
		ID:             models.MakeID(models.SourceLocal, r.ID),
		SourceAPI:      models.SourceLocal,
		OriginalID:     r.ID,
		NumericID:      hashID(r.ID),
		CommonName:     r.Name,
		ScientificName: []string{r.Latin},
		ImageURL:       image,
		Sunlight:       append([]string(nil), sunlight...),
		Watering:       r.Care.Watering.Level,
		Family:         strings.Join(r.Categories, ", "),
		Toxicity:       toxicityLabel(r),
		CareLevel:      careLevel(r.Difficulty),
		Description:    r.Notes,
		TemperatureRange: &models.TemperatureRange{
			Min: models.Temperature{DegC: &minC, DegF: &minF},
			Max: models.Temperature{DegC: &maxC, DegF: &maxF},
		},
		RawData: r,
	}
}

func toxicityLabel(r Record) string {
	switch {
	case r.Toxicity.ToPets:
		return "Toxic to pets"
	case r.Toxicity.ToHumans:
		return "Toxic to humans"
	default:
		return "Non-toxic"
	}
}

func careLevel(difficulty int) string {
	switch {
	case difficulty <= 2:
		return "easy"
	case difficulty <= 3:
		return "moderate"
	default:
		return "difficult"
	}
}

func celsiusToFahrenheit(c float64) float64 {
	return math.Round(c*9/5 + 32)
}

// hashID derives a stable numeric id from a catalog id using the 32-bit
// "h*31 + c" string hash over UTF-16 code units, then takes the absolute
// value. Display only; the composite id is authoritative.
func hashID(s string) int64 {
	var h int32
	for _, u := range utf16.Encode([]rune(s)) {
		h = h*31 + int32(u)
	}
	n := int64(h)
	if n < 0 {
		n = -n
	}
	return n
}
