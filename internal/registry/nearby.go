package registry

import (
	"fmt"
	"math"
	"sort"

	"github.com/romangod6/dmv-sitemap/internal/models"
)

const earthRadiusMiles = 3958.8

// NearbyLocation is a record paired with its distance from an origin.
type NearbyLocation struct {
	Location      models.LocationRecord `json:"location"`
	DistanceMiles float64               `json:"distanceMiles"`
}

// DistanceMiles returns the great-circle distance between two points.
func DistanceMiles(a, b models.Coordinates) float64 {
	lat1 := a.Lat * math.Pi / 180
	lat2 := b.Lat * math.Pi / 180
	dLat := (b.Lat - a.Lat) * math.Pi / 180
	dLng := (b.Lng - a.Lng) * math.Pi / 180

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLng/2)*math.Sin(dLng/2)
	return 2 * earthRadiusMiles * math.Asin(math.Min(1, math.Sqrt(h)))
}

// Nearby returns the other records closest to slug, nearest first. Ties are
// broken by slug. A limit <= 0 returns every other record.
func (r *Registry) Nearby(slug string, limit int) ([]NearbyLocation, error) {
	origin, err := r.Find(slug)
	if err != nil {
		return nil, err
	}
	return r.nearest(origin.Coordinates, origin.Slug(), limit), nil
}

// Closest returns the records nearest to an arbitrary point.
func (r *Registry) Closest(point models.Coordinates, limit int) []NearbyLocation {
	return r.nearest(point, "", limit)
}

// Serving returns the records whose service radius covers point.
func (r *Registry) Serving(point models.Coordinates) []NearbyLocation {
	all := r.nearest(point, "", 0)
	serving := all[:0]
	for _, n := range all {
		if n.DistanceMiles <= float64(n.Location.ServiceRadius) {
			serving = append(serving, n)
		}
	}
	return serving
}

func (r *Registry) nearest(point models.Coordinates, skipSlug string, limit int) []NearbyLocation {
	out := make([]NearbyLocation, 0, len(r.records))
	for _, rec := range r.records {
		if skipSlug != "" && rec.Slug() == skipSlug {
			continue
		}
		out = append(out, NearbyLocation{
			Location:      cloneRecord(rec),
			DistanceMiles: roundTo(DistanceMiles(point, rec.Coordinates), 1),
		})
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].DistanceMiles != out[j].DistanceMiles {
			return out[i].DistanceMiles < out[j].DistanceMiles
		}
		return out[i].Location.Slug() < out[j].Location.Slug()
	})

	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

func roundTo(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}

func (n NearbyLocation) String() string {
	return fmt.Sprintf("%s (%.1f mi)", n.Location.DisplayName(), n.DistanceMiles)
}
