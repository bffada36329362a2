package geocoding

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/UnknownOlympus/iris/internal/models"
)

// Provider resolves a free-form place name ("Dallas, TX", "75287") to a point.
type Provider interface {
	Geocode(ctx context.Context, place string) (*models.Coordinates, error)
}

// ErrNoProvider is returned when a place name needs geocoding but none is configured.
var ErrNoProvider = errors.New("place name given but no geocoding provider configured")

// ResolveCenter turns one sweep center into coordinates. Literal "lat,lng"
// pairs are parsed directly, anything else goes through the provider.
func ResolveCenter(ctx context.Context, provider Provider, center string) (models.Coordinates, error) {
	center = strings.TrimSpace(center)

	coords, err := models.ParseCoordinates(center)
	if err == nil {
		return coords, nil
	}

	if provider == nil {
		return models.Coordinates{}, fmt.Errorf("%w: %q", ErrNoProvider, center)
	}

	resolved, err := provider.Geocode(ctx, center)
	if err != nil {
		return models.Coordinates{}, fmt.Errorf("failed to resolve center %q: %w", center, err)
	}

	return *resolved, nil
}

// ResolveCenters resolves every configured center, preserving order.
// Blank entries are ignored.
func ResolveCenters(ctx context.Context, provider Provider, centers []string) ([]models.Coordinates, error) {
	resolved := make([]models.Coordinates, 0, len(centers))
	for _, center := range centers {
		if strings.TrimSpace(center) == "" {
			continue
		}

		coords, err := ResolveCenter(ctx, provider, center)
		if err != nil {
			return nil, err
		}
		resolved = append(resolved, coords)
	}

	return resolved, nil
}
