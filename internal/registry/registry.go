// Package registry holds the service-area records that drive the generated
// location pages and their sitemap entries. A Registry is read-only once built.
package registry

import (
	_ "embed"
	"fmt"
	"math"
	"os"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/romangod6/dmv-sitemap/internal/models"
	"github.com/samber/lo"
	"gopkg.in/yaml.v3"
)

//go:embed locations.yaml
var defaultLocations []byte

var stateCodeRe = regexp.MustCompile(`^[A-Za-z]{2}$`)

type registryFile struct {
	Locations []locationEntry `yaml:"locations"`
}

// locationEntry mirrors the on-disk layout, where coordinates are strings.
type locationEntry struct {
	City        string   `yaml:"city"`
	State       string   `yaml:"state"`
	ZipCodes    []string `yaml:"zipCodes"`
	Coordinates struct {
		Lat string `yaml:"lat"`
		Lng string `yaml:"lng"`
	} `yaml:"coordinates"`
	ServiceRadius int      `yaml:"serviceRadius"`
	Population    *int     `yaml:"population"`
	Keywords      []string `yaml:"keywords"`
	NearbyAreas   []string `yaml:"nearbyAreas"`
}

type Registry struct {
	records []models.LocationRecord
	bySlug  map[string]int
	byZip   map[string]int
}

// New validates records and builds a registry over them. Records are copied.
func New(records []models.LocationRecord) (*Registry, error) {
	r := &Registry{
		records: make([]models.LocationRecord, 0, len(records)),
		bySlug:  make(map[string]int, len(records)),
		byZip:   make(map[string]int),
	}

	for i, rec := range records {
		if err := validateRecord(rec); err != nil {
			return nil, fmt.Errorf("record %d: %w", i, err)
		}

		slug := rec.Slug()
		if prev, exists := r.bySlug[slug]; exists {
			return nil, fmt.Errorf("%w: %s (records %d and %d)", ErrDuplicateLocation, slug, prev, i)
		}

		idx := len(r.records)
		r.records = append(r.records, cloneRecord(rec))
		r.bySlug[slug] = idx

		for _, zip := range rec.ZipCodes {
			if _, taken := r.byZip[zip]; !taken {
				r.byZip[zip] = idx
			}
		}
	}

	return r, nil
}

// Default returns the built-in DMV service-area registry.
func Default() (*Registry, error) {
	return Parse(defaultLocations)
}

// Load reads a registry YAML file from disk.
func Load(path string) (*Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read registry file: %w", err)
	}
	return Parse(data)
}

// Parse decodes registry YAML and validates every record.
func Parse(data []byte) (*Registry, error) {
	var file registryFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to decode registry: %w", err)
	}

	records := make([]models.LocationRecord, 0, len(file.Locations))
	for i, entry := range file.Locations {
		rec, err := entry.toRecord()
		if err != nil {
			return nil, fmt.Errorf("location %d (%s): %w", i, entry.City, err)
		}
		records = append(records, rec)
	}

	return New(records)
}

func (e locationEntry) toRecord() (models.LocationRecord, error) {
	lat, err := strconv.ParseFloat(strings.TrimSpace(e.Coordinates.Lat), 64)
	if err != nil {
		return models.LocationRecord{}, fmt.Errorf("%w: latitude %q", ErrInvalidLocation, e.Coordinates.Lat)
	}
	lng, err := strconv.ParseFloat(strings.TrimSpace(e.Coordinates.Lng), 64)
	if err != nil {
		return models.LocationRecord{}, fmt.Errorf("%w: longitude %q", ErrInvalidLocation, e.Coordinates.Lng)
	}

	return models.LocationRecord{
		City:          strings.TrimSpace(e.City),
		State:         strings.ToUpper(strings.TrimSpace(e.State)),
		ZipCodes:      e.ZipCodes,
		Coordinates:   models.Coordinates{Lat: lat, Lng: lng},
		ServiceRadius: e.ServiceRadius,
		Population:    e.Population,
		Keywords:      lo.Uniq(e.Keywords),
		NearbyAreas:   e.NearbyAreas,
	}, nil
}

func validateRecord(rec models.LocationRecord) error {
	if strings.TrimSpace(rec.City) == "" {
		return fmt.Errorf("%w: city is required", ErrInvalidLocation)
	}
	if !stateCodeRe.MatchString(rec.State) {
		return fmt.Errorf("%w: state %q must be a two-letter code", ErrInvalidLocation, rec.State)
	}
	if math.IsNaN(rec.Coordinates.Lat) || math.IsNaN(rec.Coordinates.Lng) ||
		math.IsInf(rec.Coordinates.Lat, 0) || math.IsInf(rec.Coordinates.Lng, 0) {
		return fmt.Errorf("%w: coordinates are not finite for %s", ErrInvalidLocation, rec.DisplayName())
	}
	if rec.Coordinates.Lat < -90 || rec.Coordinates.Lat > 90 ||
		rec.Coordinates.Lng < -180 || rec.Coordinates.Lng > 180 {
		return fmt.Errorf("%w: coordinates out of range for %s", ErrInvalidLocation, rec.DisplayName())
	}
	if rec.ServiceRadius < 0 {
		return fmt.Errorf("%w: negative service radius for %s", ErrInvalidLocation, rec.DisplayName())
	}
	return nil
}

func cloneRecord(rec models.LocationRecord) models.LocationRecord {
	rec.ZipCodes = slices.Clone(rec.ZipCodes)
	rec.Keywords = slices.Clone(rec.Keywords)
	rec.NearbyAreas = slices.Clone(rec.NearbyAreas)
	if rec.Population != nil {
		p := *rec.Population
		rec.Population = &p
	}
	return rec
}

// Len returns the number of records.
func (r *Registry) Len() int {
	return len(r.records)
}

// Records returns a copy of all records in registry order.
func (r *Registry) Records() []models.LocationRecord {
	return lo.Map(r.records, func(rec models.LocationRecord, _ int) models.LocationRecord {
		return cloneRecord(rec)
	})
}

// Find looks a record up by its slug.
func (r *Registry) Find(slug string) (models.LocationRecord, error) {
	idx, ok := r.bySlug[strings.ToLower(slug)]
	if !ok {
		return models.LocationRecord{}, fmt.Errorf("%w: %s", ErrLocationNotFound, slug)
	}
	return cloneRecord(r.records[idx]), nil
}

// FindByZip returns the first record serving zip.
func (r *Registry) FindByZip(zip string) (models.LocationRecord, error) {
	idx, ok := r.byZip[strings.TrimSpace(zip)]
	if !ok {
		return models.LocationRecord{}, fmt.Errorf("%w: zip %s", ErrLocationNotFound, zip)
	}
	return cloneRecord(r.records[idx]), nil
}

// ByState returns the records in a state, in registry order.
func (r *Registry) ByState(state string) []models.LocationRecord {
	state = strings.ToUpper(state)
	matches := lo.Filter(r.records, func(rec models.LocationRecord, _ int) bool {
		return rec.State == state
	})
	return lo.Map(matches, func(rec models.LocationRecord, _ int) models.LocationRecord {
		return cloneRecord(rec)
	})
}

// States returns the distinct state codes in registry order.
func (r *Registry) States() []string {
	return lo.Uniq(lo.Map(r.records, func(rec models.LocationRecord, _ int) string {
		return rec.State
	}))
}
