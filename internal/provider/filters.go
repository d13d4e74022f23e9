package provider

import "plantfinder/pkg/models"

// Primary provider vocabulary. The three-step light scale maps onto the
// provider's four-value sunlight vocabulary; experience has no wire
// parameter and is applied client-side.
var (
	primarySunlight = map[models.Level]string{
		models.LevelLow:    "full_shade",
		models.LevelMedium: "sun-part_shade",
		models.LevelHigh:   "full_sun",
	}
	primaryWatering = map[models.Level]string{
		models.LevelLow:    "minimum",
		models.LevelMedium: "average",
		models.LevelHigh:   "frequent",
	}
)

func primarySearchParams(apiKey string, f models.PlantFilters) map[string]string {
	params := map[string]string{
		"key":    apiKey,
		"indoor": "1",
		"page":   "1",
	}
	if v, ok := primarySunlight[f.Light]; ok {
		params["sunlight"] = v
	}
	if v, ok := primaryWatering[f.Time]; ok {
		params["watering"] = v
	}
	return params
}
