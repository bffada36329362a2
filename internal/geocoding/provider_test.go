package geocoding_test

import (
	"testing"

	"github.com/UnknownOlympus/iris/internal/geocoding"
	"github.com/UnknownOlympus/iris/internal/models"
	"github.com/UnknownOlympus/iris/test/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveCenters(t *testing.T) {
	ctx := t.Context()

	t.Run("literal coordinates skip the provider", func(t *testing.T) {
		centers, err := geocoding.ResolveCenters(ctx, nil, []string{"33.00684,-96.856996", " ", "32.9,-96.8"})

		require.NoError(t, err)
		assert.Equal(t, []models.Coordinates{
			{Latitude: 33.00684, Longitude: -96.856996},
			{Latitude: 32.9, Longitude: -96.8},
		}, centers)
	})

	t.Run("place names are geocoded", func(t *testing.T) {
		provider := mocks.NewProvider(t)
		provider.On("Geocode", ctx, "Plano, TX").
			Return(&models.Coordinates{Latitude: 33.0198, Longitude: -96.6989}, nil).Once()

		centers, err := geocoding.ResolveCenters(ctx, provider, []string{"Plano, TX", "33,-96"})

		require.NoError(t, err)
		assert.Equal(t, []models.Coordinates{
			{Latitude: 33.0198, Longitude: -96.6989},
			{Latitude: 33, Longitude: -96},
		}, centers)
	})

	t.Run("place name without provider", func(t *testing.T) {
		_, err := geocoding.ResolveCenters(ctx, nil, []string{"Plano, TX"})

		require.ErrorIs(t, err, geocoding.ErrNoProvider)
	})

	t.Run("provider failure", func(t *testing.T) {
		provider := mocks.NewProvider(t)
		provider.On("Geocode", ctx, "Atlantis").Return(nil, assert.AnError).Once()

		_, err := geocoding.ResolveCenters(ctx, provider, []string{"Atlantis"})

		require.ErrorIs(t, err, assert.AnError)
		assert.Contains(t, err.Error(), `failed to resolve center "Atlantis"`)
	})
}
