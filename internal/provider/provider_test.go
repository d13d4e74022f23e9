package provider

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/jarcoal/httpmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"plantfinder/pkg/models"
)

const (
	perenualBase = "https://perenual.test/api/v2"
	trefleBase   = "https://trefle.test/api/v1"
)

func newMockedPerenual(t *testing.T, key string) (*Perenual, *httpmock.MockTransport) {
	t.Helper()
	mt := httpmock.NewMockTransport()
	p := NewPerenual(perenualBase, key, 5*time.Second, nil)
	p.http.SetTransport(mt)
	return p, mt
}

func newMockedTrefle(t *testing.T, token string) (*Trefle, *httpmock.MockTransport) {
	t.Helper()
	mt := httpmock.NewMockTransport()
	c := NewTrefle(trefleBase, token, 5*time.Second, nil)
	c.http.SetTransport(mt)
	return c, mt
}

func TestPerenualSearch_TranslatesFilters(t *testing.T) {
	tests := []struct {
		name    string
		filters models.PlantFilters
		query   map[string]string
	}{
		{
			name:    "no filters",
			filters: models.PlantFilters{},
			query:   map[string]string{"key": "k", "indoor": "1", "page": "1"},
		},
		{
			name:    "low light low time",
			filters: models.PlantFilters{Light: models.LevelLow, Time: models.LevelLow},
			query:   map[string]string{"key": "k", "indoor": "1", "page": "1", "sunlight": "full_shade", "watering": "minimum"},
		},
		{
			name:    "medium light high time, experience ignored",
			filters: models.PlantFilters{Light: models.LevelMedium, Time: models.LevelHigh, Experience: models.ExperienceExpert},
			query:   map[string]string{"key": "k", "indoor": "1", "page": "1", "sunlight": "sun-part_shade", "watering": "frequent"},
		},
		{
			name:    "high light",
			filters: models.PlantFilters{Light: models.LevelHigh},
			query:   map[string]string{"key": "k", "indoor": "1", "page": "1", "sunlight": "full_sun"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, mt := newMockedPerenual(t, "k")
			mt.RegisterResponderWithQuery(http.MethodGet, perenualBase+"/species-list", tt.query,
				httpmock.NewStringResponder(http.StatusOK, `{"data":[{"id":1,"common_name":"Snake Plant","scientific_name":["Dracaena trifasciata"],"watering":"minimum","sunlight":["part_shade"]}],"total":1,"per_page":30,"current_page":1}`))

			got, err := p.Search(context.Background(), tt.filters)
			require.NoError(t, err)
			require.Len(t, got, 1)
			assert.Equal(t, int64(1), got[0].ID)
			assert.Equal(t, "Snake Plant", got[0].CommonName)
			assert.Equal(t, []string{"part_shade"}, got[0].Sunlight)
		})
	}
}

func TestPerenualSearch_Errors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		want   error
	}{
		{"unauthorized", http.StatusUnauthorized, ErrUnauthorized},
		{"forbidden", http.StatusForbidden, ErrUnauthorized},
		{"server error", http.StatusInternalServerError, ErrUnavailable},
		{"rate limited", http.StatusTooManyRequests, ErrUnavailable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, mt := newMockedPerenual(t, "")
			mt.RegisterResponder(http.MethodGet, perenualBase+"/species-list",
				httpmock.NewStringResponder(tt.status, `{"message":"nope"}`))

			got, err := p.Search(context.Background(), models.PlantFilters{})
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.want)
			assert.Nil(t, got)
		})
	}
}

func TestPerenualSearch_TransportError(t *testing.T) {
	p, mt := newMockedPerenual(t, "k")
	mt.RegisterResponder(http.MethodGet, perenualBase+"/species-list",
		httpmock.NewErrorResponder(assert.AnError))

	_, err := p.Search(context.Background(), models.PlantFilters{})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestPerenualSearch_InvalidJSON(t *testing.T) {
	p, mt := newMockedPerenual(t, "k")
	mt.RegisterResponder(http.MethodGet, perenualBase+"/species-list",
		httpmock.NewStringResponder(http.StatusOK, `{invalid`))

	_, err := p.Search(context.Background(), models.PlantFilters{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode")
}

func TestPerenualSearch_SkipsGatedRecords(t *testing.T) {
	p, mt := newMockedPerenual(t, "k")
	mt.RegisterResponder(http.MethodGet, perenualBase+"/species-list",
		httpmock.NewStringResponder(http.StatusOK, `{"data":[
			{"id":1,"common_name":"Snake Plant","scientific_name":["Dracaena trifasciata"],"watering":"minimum","sunlight":["part_shade"]},
			{"id":3000,"common_name":"Rare Fern","scientific_name":["Upgrade Plans To Premium"],"cycle":"Upgrade Plans To Premium","watering":"Upgrade Plans To Premium","sunlight":"Upgrade Plans To Premium"},
			{"id":2,"common_name":"Pothos","scientific_name":["Epipremnum aureum"],"watering":"average","sunlight":["part_shade","full_shade"]}
		],"total":3,"per_page":30,"current_page":1}`))

	got, err := p.Search(context.Background(), models.PlantFilters{})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, int64(1), got[0].ID)
	assert.Equal(t, int64(2), got[1].ID)
	assert.Equal(t, []string{"part_shade", "full_shade"}, got[1].Sunlight)
}

func TestPerenualSearch_AllRecordsGated(t *testing.T) {
	p, mt := newMockedPerenual(t, "k")
	mt.RegisterResponder(http.MethodGet, perenualBase+"/species-list",
		httpmock.NewStringResponder(http.StatusOK, `{"data":[{"id":3000,"sunlight":"Upgrade Plans To Premium"}],"total":1}`))

	got, err := p.Search(context.Background(), models.PlantFilters{})
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestPerenualDetails(t *testing.T) {
	p, mt := newMockedPerenual(t, "k")
	mt.RegisterResponderWithQuery(http.MethodGet, perenualBase+"/species/details/42", map[string]string{"key": "k"},
		httpmock.NewStringResponder(http.StatusOK, `{
			"id": 42,
			"common_name": "Pothos",
			"scientific_name": ["Epipremnum aureum"],
			"cycle": "Perennial",
			"watering": "average",
			"sunlight": ["part_shade"],
			"family": "Araceae",
			"care_level": "Low",
			"description": "Trailing vine.",
			"default_image": {"regular_url": "https://img.test/pothos.jpg", "thumbnail": "https://img.test/pothos_t.jpg"}
		}`))

	d, err := p.Details(context.Background(), 42)
	require.NoError(t, err)
	require.NotNil(t, d)
	assert.Equal(t, int64(42), d.ID)
	assert.Equal(t, "Pothos", d.CommonName)
	require.NotNil(t, d.CareLevel)
	assert.Equal(t, "Low", *d.CareLevel)
	require.NotNil(t, d.Family)
	assert.Equal(t, "Araceae", *d.Family)
	require.NotNil(t, d.DefaultImage)
	assert.Equal(t, "https://img.test/pothos.jpg", d.DefaultImage.RegularURL)
}

func TestPerenualDetails_NotFound(t *testing.T) {
	p, mt := newMockedPerenual(t, "k")
	mt.RegisterResponder(http.MethodGet, perenualBase+"/species/details/7",
		httpmock.NewStringResponder(http.StatusNotFound, `{}`))
	mt.RegisterResponder(http.MethodGet, perenualBase+"/species/details/8",
		httpmock.NewStringResponder(http.StatusOK, `{}`))

	_, err := p.Details(context.Background(), 7)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = p.Details(context.Background(), 8)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestTrefleSearch(t *testing.T) {
	c, mt := newMockedTrefle(t, "tok")
	mt.RegisterResponderWithQuery(http.MethodGet, trefleBase+"/plants",
		map[string]string{"token": "tok", "page": "1", "q": "Pothos"},
		httpmock.NewStringResponder(http.StatusOK, `{
			"data": [{"id": 900, "common_name": "Golden pothos", "scientific_name": "Epipremnum aureum", "genus": "Epipremnum", "family": "Araceae"}],
			"links": {"self": "/api/v1/plants?q=Pothos"},
			"meta": {"total": 1}
		}`))

	got, err := c.Search(context.Background(), "Pothos", 0)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, int64(900), got[0].ID)
	assert.Equal(t, TaxonName("Araceae"), got[0].Family)
}

func TestTrefleSearch_NoQuery(t *testing.T) {
	c, mt := newMockedTrefle(t, "tok")
	mt.RegisterResponderWithQuery(http.MethodGet, trefleBase+"/plants",
		map[string]string{"token": "tok", "page": "2"},
		httpmock.NewStringResponder(http.StatusOK, `{"data": [], "meta": {"total": 0}}`))

	got, err := c.Search(context.Background(), "", 2)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestTrefleDetails(t *testing.T) {
	c, mt := newMockedTrefle(t, "tok")
	mt.RegisterResponder(http.MethodGet, trefleBase+"/plants/900",
		httpmock.NewStringResponder(http.StatusOK, `{"data": {
			"id": 900,
			"common_name": null,
			"scientific_name": "Epipremnum aureum",
			"author": "(Linden & André) G.S.Bunting",
			"genus": {"id": 1, "name": "Epipremnum"},
			"family": {"id": 2, "name": "Araceae"},
			"edible": false,
			"duration": ["perennial"],
			"specifications": {"growth_rate": "Rapid", "average_height": {"cm": 200}, "toxicity": "medium"},
			"growth": {"light": 5, "ph_minimum": 6.0, "ph_maximum": 6.5,
				"minimum_temperature": {"deg_c": 15, "deg_f": 59},
				"maximum_temperature": {"deg_c": 29, "deg_f": 84}},
			"images": {"leaf": [{"id": 5, "image_url": "https://img.test/leaf.jpg", "copyright": "cc"}]}
		}}`))

	d, err := c.Details(context.Background(), 900)
	require.NoError(t, err)
	assert.Nil(t, d.CommonName)
	assert.Equal(t, TaxonName("Epipremnum"), d.Genus)
	assert.Equal(t, TaxonName("Araceae"), d.Family)
	require.NotNil(t, d.Growth.Light)
	assert.InDelta(t, 5.0, *d.Growth.Light, 0.001)
	require.NotNil(t, d.Specifications.AverageHeight.CM)
	assert.InDelta(t, 200.0, *d.Specifications.AverageHeight.CM, 0.001)
	require.Len(t, d.Images.Leaf, 1)
}

func TestTrefleDetails_Errors(t *testing.T) {
	c, mt := newMockedTrefle(t, "")
	mt.RegisterResponder(http.MethodGet, trefleBase+"/plants/1",
		httpmock.NewStringResponder(http.StatusUnauthorized, `{"error": true, "message": "Unauthenticated."}`))
	mt.RegisterResponder(http.MethodGet, trefleBase+"/plants/2",
		httpmock.NewStringResponder(http.StatusNotFound, `{"error": true}`))
	mt.RegisterResponder(http.MethodGet, trefleBase+"/plants/3",
		httpmock.NewStringResponder(http.StatusOK, `{"meta": {}}`))

	_, err := c.Details(context.Background(), 1)
	assert.ErrorIs(t, err, ErrUnauthorized)
	_, err = c.Details(context.Background(), 2)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = c.Details(context.Background(), 3)
	assert.ErrorIs(t, err, ErrNotFound)
}
