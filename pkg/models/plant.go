package models

// UnifiedPlant is the normalized form of a plant record. Every source
// (primary provider, secondary provider, bundled catalog) is mapped into
// this structure before it leaves the unification layer.
//
// A UnifiedPlant is built fresh for each response and never mutated after
// it has been handed out; callers that need a variant copy it first.
type UnifiedPlant struct {
	ID         string    `json:"id"`         // composite "<source>-<originalId>"
	SourceAPI  SourceTag `json:"sourceApi"`  // source of the authoritative record
	OriginalID string    `json:"originalId"` // provider-native id
	NumericID  int64     `json:"numericId"`  // provider id, or a hash of the catalog id

	CommonName     string    `json:"commonName"`
	ScientificName []string  `json:"scientificName"` // first entry is canonical
	ImageURL       *string   `json:"imageUrl"`
	Images         *ImageSet `json:"images,omitempty"`

	// Care information. Providers expose disjoint subsets, so all optional.
	Watering   string   `json:"watering,omitempty"`
	Sunlight   []string `json:"sunlight,omitempty"`
	LightLevel *float64 `json:"lightLevel,omitempty"` // 0-10, secondary provider only

	Cycle       string   `json:"cycle,omitempty"`
	Duration    []string `json:"duration,omitempty"`
	Edible      *bool    `json:"edible,omitempty"`
	EdiblePart  []string `json:"ediblePart,omitempty"`
	CareLevel   string   `json:"careLevel,omitempty"`
	Description string   `json:"description,omitempty"`

	Family string `json:"family,omitempty"`
	Genus  string `json:"genus,omitempty"`
	Author string `json:"author,omitempty"`

	GrowthRate       string            `json:"growthRate,omitempty"`
	AverageHeight    *Height           `json:"averageHeight,omitempty"`
	Toxicity         string            `json:"toxicity,omitempty"`
	PHRange          *PHRange          `json:"phRange,omitempty"`
	TemperatureRange *TemperatureRange `json:"temperatureRange,omitempty"`

	RawData any `json:"rawData,omitempty"`
}

// CanonicalScientificName returns the first scientific name, or "".
func (p UnifiedPlant) CanonicalScientificName() string {
	if len(p.ScientificName) == 0 {
		return ""
	}
	return p.ScientificName[0]
}

type Height struct {
	CM *float64 `json:"cm"`
}

type PHRange struct {
	Min *float64 `json:"min"`
	Max *float64 `json:"max"`
}

type Temperature struct {
	DegC *float64 `json:"degC"`
	DegF *float64 `json:"degF"`
}

type TemperatureRange struct {
	Min Temperature `json:"min"`
	Max Temperature `json:"max"`
}

type Image struct {
	ID        int64  `json:"id"`
	ImageURL  string `json:"imageUrl"`
	Copyright string `json:"copyright,omitempty"`
}

// ImageSet groups images by plant part, as exposed by the secondary provider.
type ImageSet struct {
	Flower []Image `json:"flower,omitempty"`
	Leaf   []Image `json:"leaf,omitempty"`
	Habit  []Image `json:"habit,omitempty"`
	Fruit  []Image `json:"fruit,omitempty"`
	Bark   []Image `json:"bark,omitempty"`
	Other  []Image `json:"other,omitempty"`
}
