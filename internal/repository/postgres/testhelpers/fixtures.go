package testhelpers

import (
	"github.com/rock-radar/internal/domain"
)

// RegionFixture - небольшой регион для тестов репозитория
func RegionFixture() []domain.RouteRecord {
	return []domain.RouteRecord{
		{
			ID:          "105732162",
			Name:        "Epinephrine",
			URL:         "https://example.com/route/105732162",
			Grade:       "5.9",
			RouteTypes:  []string{domain.RouteTypeTrad},
			Pitches:     13,
			Length:      1600,
			Rating:      3.9,
			Popularity:  420,
			AreaPath:    []string{"Nevada", "Red Rock", "Black Velvet Canyon"},
			Coordinates: &domain.LatLon{Lat: 36.0272, Lon: -115.4686},
		},
		{
			ID:         "105732300",
			Name:       "Crimson Chrysalis",
			Grade:      "5.8+",
			RouteTypes: []string{domain.RouteTypeTrad, domain.RouteTypeSport},
			Pitches:    9,
			Length:     1000,
			Rating:     3.8,
			Popularity: 510,
			AreaPath:   []string{"Nevada", "Red Rock", "Oak Creek Canyon"},
		},
	}
}
