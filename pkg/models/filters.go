package models

import (
	"fmt"
	"strings"
)

// Level is the three-step scale used by the light and time filters.
type Level string

const (
	LevelLow    Level = "low"
	LevelMedium Level = "medium"
	LevelHigh   Level = "high"
)

type Experience string

const (
	ExperienceBeginner     Experience = "beginner"
	ExperienceIntermediate Experience = "intermediate"
	ExperienceExpert       Experience = "expert"
)

// PlantFilters is the user's selection. An empty field means no constraint
// on that axis.
type PlantFilters struct {
	Light      Level      `json:"light,omitempty"`
	Time       Level      `json:"time,omitempty"`
	Experience Experience `json:"experience,omitempty"`
}

func (f PlantFilters) IsEmpty() bool {
	return f.Light == "" && f.Time == "" && f.Experience == ""
}

func (f PlantFilters) Validate() error {
	if f.Light != "" && !f.Light.valid() {
		return fmt.Errorf("invalid light level %q", f.Light)
	}
	if f.Time != "" && !f.Time.valid() {
		return fmt.Errorf("invalid time commitment %q", f.Time)
	}
	if f.Experience != "" && !f.Experience.valid() {
		return fmt.Errorf("invalid experience level %q", f.Experience)
	}
	return nil
}

// ParseFilters normalizes raw query values and validates them.
func ParseFilters(light, time, experience string) (PlantFilters, error) {
	f := PlantFilters{
		Light:      Level(normalize(light)),
		Time:       Level(normalize(time)),
		Experience: Experience(normalize(experience)),
	}
	if err := f.Validate(); err != nil {
		return PlantFilters{}, err
	}
	return f, nil
}

func (l Level) valid() bool {
	switch l {
	case LevelLow, LevelMedium, LevelHigh:
		return true
	}
	return false
}

func (e Experience) valid() bool {
	switch e {
	case ExperienceBeginner, ExperienceIntermediate, ExperienceExpert:
		return true
	}
	return false
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
