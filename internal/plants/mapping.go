package plants

import (
	"strconv"

	"plantfinder/internal/provider"
	"plantfinder/pkg/models"
)

func fromPrimarySpecies(sp provider.PerenualSpecies) models.UnifiedPlant {
	return models.UnifiedPlant{
		ID:             models.MakeID(models.SourcePrimary, strconv.FormatInt(sp.ID, 10)),
		SourceAPI:      models.SourcePrimary,
		OriginalID:     strconv.FormatInt(sp.ID, 10),
		NumericID:      sp.ID,
		CommonName:     sp.CommonName,
		ScientificName: sp.ScientificName,
		ImageURL:       primaryImage(sp.DefaultImage),
		Watering:       sp.Watering,
		Sunlight:       sp.Sunlight,
		Cycle:          sp.Cycle,
		RawData:        sp,
	}
}

func fromPrimaryDetails(d *provider.PerenualDetails) models.UnifiedPlant {
	p := fromPrimarySpecies(d.PerenualSpecies)
	p.CareLevel = deref(d.CareLevel)
	p.Description = d.Description
	p.RawData = d
	return p
}

func fromSecondaryDetails(d *provider.TrefleDetails) models.UnifiedPlant {
	p := models.UnifiedPlant{
		ID:             models.MakeID(models.SourceSecondary, strconv.FormatInt(d.ID, 10)),
		SourceAPI:      models.SourceSecondary,
		OriginalID:     strconv.FormatInt(d.ID, 10),
		NumericID:      d.ID,
		CommonName:     deref(d.CommonName),
		ScientificName: []string{d.ScientificName},
		ImageURL:       d.ImageURL,
		Images:         images(d.Images),
		Duration:       d.Duration,
		Edible:         d.Edible,
		EdiblePart:     d.EdiblePart,
		Family:         string(d.Family),
		Genus:          string(d.Genus),
		Author:         d.Author,
		GrowthRate:     deref(d.Specifications.GrowthRate),
		Toxicity:       deref(d.Specifications.Toxicity),
		LightLevel:     d.Growth.Light,
		PHRange: &models.PHRange{
			Min: d.Growth.PHMinimum,
			Max: d.Growth.PHMaximum,
		},
		TemperatureRange: &models.TemperatureRange{
			Min: models.Temperature{DegC: d.Growth.MinimumTemperature.DegC, DegF: d.Growth.MinimumTemperature.DegF},
			Max: models.Temperature{DegC: d.Growth.MaximumTemperature.DegC, DegF: d.Growth.MaximumTemperature.DegF},
		},
		RawData: d,
	}
	if p.CommonName == "" {
		p.CommonName = d.ScientificName
	}
	if d.Specifications.AverageHeight.CM != nil {
		p.AverageHeight = &models.Height{CM: d.Specifications.AverageHeight.CM}
	}
	return p
}

// mergedRaw keeps both source records of an enriched plant.
type mergedRaw struct {
	Primary   *provider.PerenualDetails `json:"primary"`
	Secondary *provider.TrefleDetails   `json:"secondary"`
}

// merge builds an enriched record: botanical fields from the secondary
// provider, identity and care fields from the primary. Care fields are
// replaced, never unioned.
func merge(primary *provider.PerenualDetails, secondary *provider.TrefleDetails) models.UnifiedPlant {
	base := fromPrimaryDetails(primary)
	p := fromSecondaryDetails(secondary)

	p.ID = base.ID
	p.SourceAPI = base.SourceAPI
	p.OriginalID = base.OriginalID
	p.NumericID = base.NumericID
	if base.CommonName != "" {
		p.CommonName = base.CommonName
	}
	if p.ImageURL == nil {
		p.ImageURL = base.ImageURL
	}

	p.Watering = base.Watering
	p.Sunlight = base.Sunlight
	p.Cycle = base.Cycle
	p.CareLevel = base.CareLevel
	p.Description = base.Description
	if len(p.Sunlight) > 0 {
		// sunlight tags and the 0-10 light scale never both describe a record
		p.LightLevel = nil
	}

	p.RawData = mergedRaw{Primary: primary, Secondary: secondary}
	return p
}

func primaryImage(img *provider.PerenualImage) *string {
	if img == nil {
		return nil
	}
	switch {
	case img.RegularURL != "":
		u := img.RegularURL
		return &u
	case img.Thumbnail != "":
		u := img.Thumbnail
		return &u
	}
	return nil
}

func images(set provider.TrefleImageSet) *models.ImageSet {
	out := &models.ImageSet{
		Flower: convertImages(set.Flower),
		Leaf:   convertImages(set.Leaf),
		Habit:  convertImages(set.Habit),
		Fruit:  convertImages(set.Fruit),
		Bark:   convertImages(set.Bark),
		Other:  convertImages(set.Other),
	}
	if out.Flower == nil && out.Leaf == nil && out.Habit == nil &&
		out.Fruit == nil && out.Bark == nil && out.Other == nil {
		return nil
	}
	return out
}

func convertImages(in []provider.TrefleImage) []models.Image {
	if len(in) == 0 {
		return nil
	}
	out := make([]models.Image, 0, len(in))
	for _, img := range in {
		out = append(out, models.Image{ID: img.ID, ImageURL: img.ImageURL, Copyright: img.Copyright})
	}
	return out
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
