package registry

import (
	"testing"

	"github.com/romangod6/dmv-sitemap/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDistanceMiles(t *testing.T) {
	t.Parallel()
	dc := models.Coordinates{Lat: 38.9072, Lng: -77.0369}
	frederick := models.Coordinates{Lat: 39.4143, Lng: -77.4105}

	assert.InDelta(t, 0, DistanceMiles(dc, dc), 1e-9)
	// Roughly 40 miles as the crow flies.
	assert.InDelta(t, 40.0, DistanceMiles(dc, frederick), 2.0)
	assert.InDelta(t, DistanceMiles(dc, frederick), DistanceMiles(frederick, dc), 1e-9)
}

func TestDistanceMiles_ScalesLongitudeByLatitude(t *testing.T) {
	t.Parallel()
	// One degree of longitude is shorter than one degree of latitude away from the equator.
	origin := models.Coordinates{Lat: 39, Lng: -77}
	east := models.Coordinates{Lat: 39, Lng: -76}
	north := models.Coordinates{Lat: 40, Lng: -77}

	assert.Less(t, DistanceMiles(origin, east), DistanceMiles(origin, north))
}

func TestNearby_SortedAndLimited(t *testing.T) {
	t.Parallel()
	reg, err := Default()
	require.NoError(t, err)

	nearby, err := reg.Nearby("herndon-va", 3)
	require.NoError(t, err)
	require.Len(t, nearby, 3)

	assert.Equal(t, "reston-va", nearby[0].Location.Slug())
	for i := 1; i < len(nearby); i++ {
		assert.LessOrEqual(t, nearby[i-1].DistanceMiles, nearby[i].DistanceMiles)
	}
	for _, n := range nearby {
		assert.NotEqual(t, "herndon-va", n.Location.Slug())
	}
}

func TestNearby_NoLimitReturnsAllOthers(t *testing.T) {
	t.Parallel()
	reg, err := Default()
	require.NoError(t, err)

	nearby, err := reg.Nearby("fairfax-va", 0)
	require.NoError(t, err)
	assert.Len(t, nearby, reg.Len()-1)
}

func TestNearby_UnknownSlug(t *testing.T) {
	t.Parallel()
	reg, err := Default()
	require.NoError(t, err)

	_, err = reg.Nearby("nowhere-zz", 5)
	assert.ErrorIs(t, err, ErrLocationNotFound)
}

func TestServing(t *testing.T) {
	t.Parallel()
	reg, err := Default()
	require.NoError(t, err)

	// Downtown Frederick.
	serving := reg.Serving(models.Coordinates{Lat: 39.4143, Lng: -77.4105})
	require.NotEmpty(t, serving)
	assert.Equal(t, "frederick-md", serving[0].Location.Slug())
	for _, s := range serving {
		assert.LessOrEqual(t, s.DistanceMiles, float64(s.Location.ServiceRadius))
	}
}

func TestClosest(t *testing.T) {
	t.Parallel()
	reg, err := Default()
	require.NoError(t, err)

	closest := reg.Closest(models.Coordinates{Lat: 38.90, Lng: -77.04}, 1)
	require.Len(t, closest, 1)
	assert.Equal(t, "washington-dc", closest[0].Location.Slug())
}
