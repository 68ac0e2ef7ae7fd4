package tours

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wayfarer/internal/models"
)

func validTour() *models.Tour {
	return &models.Tour{
		Name:         "The Forest Hiker",
		Duration:     5,
		MaxGroupSize: 25,
		Difficulty:   models.DifficultyEasy,
		Price:        497,
		Summary:      "Breathtaking hike through the Canadian Banff National Park",
	}
}

func TestValidateTour(t *testing.T) {
	t.Parallel()

	discount := 500.0

	tests := []struct {
		name    string
		mutate  func(*models.Tour)
		wantErr string
	}{
		{name: "valid", mutate: func(*models.Tour) {}},
		{
			name:    "name too short",
			mutate:  func(tr *models.Tour) { tr.Name = "Short" },
			wantErr: "between 10 and 40",
		},
		{
			name:    "name too long",
			mutate:  func(tr *models.Tour) { tr.Name = "This Tour Name Is Way Way Way Way Too Long To Pass" },
			wantErr: "between 10 and 40",
		},
		{
			name:    "bad difficulty",
			mutate:  func(tr *models.Tour) { tr.Difficulty = "extreme" },
			wantErr: "difficulty",
		},
		{
			name:    "no duration",
			mutate:  func(tr *models.Tour) { tr.Duration = 0 },
			wantErr: "duration",
		},
		{
			name:    "no price",
			mutate:  func(tr *models.Tour) { tr.Price = 0 },
			wantErr: "price",
		},
		{
			name:    "discount above price",
			mutate:  func(tr *models.Tour) { tr.PriceDiscount = &discount },
			wantErr: "below the regular price",
		},
		{
			name:    "rating out of range",
			mutate:  func(tr *models.Tour) { tr.RatingsAverage = 5.5 },
			wantErr: "between 1.0 and 5.0",
		},
		{
			name:    "no summary",
			mutate:  func(tr *models.Tour) { tr.Summary = "   " },
			wantErr: "summary",
		},
	}
	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			tour := validTour()
			tc.mutate(tour)
			err := validateTour(tour)
			if tc.wantErr == "" {
				assert.NoError(t, err)
			} else {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tc.wantErr)
			}
		})
	}
}

func TestValidateTour_DefaultsRating(t *testing.T) {
	t.Parallel()

	tour := validTour()
	tour.RatingsAverage = 0
	require.NoError(t, validateTour(tour))
	assert.Equal(t, 4.5, tour.RatingsAverage)
}

func TestParseLatLng(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in      string
		lat     float64
		lng     float64
		wantErr bool
	}{
		{in: "34.111745,-118.113491", lat: 34.111745, lng: -118.113491},
		{in: " 40.7 , -74.0 ", lat: 40.7, lng: -74.0},
		{in: "34.111745", wantErr: true},
		{in: "north,west", wantErr: true},
		{in: "", wantErr: true},
	}
	for _, tc := range tests {
		lat, lng, err := parseLatLng(tc.in)
		if tc.wantErr {
			assert.Error(t, err, "parseLatLng(%q)", tc.in)
			continue
		}
		require.NoError(t, err, "parseLatLng(%q)", tc.in)
		assert.Equal(t, tc.lat, lat)
		assert.Equal(t, tc.lng, lng)
	}
}
