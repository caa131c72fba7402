package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

// City is one entry of the city catalog. Name is the value stored in the
// city_name column; Code is the identifier used by the price source site.
type City struct {
	Code        string    `json:"code"`
	Name        string    `json:"name"`
	DisplayName string    `json:"display_name"`
	Center      []float64 `json:"center,omitempty"` // [lat, lng]
}

// Catalog is the set of cities known to the dashboard and the crawler.
type Catalog struct {
	Cities []City `json:"cities"`
}

var defaultCities = []City{
	{Code: "1", Name: "Beijing", DisplayName: "北京", Center: []float64{39.9042, 116.4074}},
	{Code: "2", Name: "Shanghai", DisplayName: "上海", Center: []float64{31.2304, 121.4737}},
	{Code: "3", Name: "Guangzhou", DisplayName: "广州", Center: []float64{23.1291, 113.2644}},
	{Code: "49", Name: "Shenzhen", DisplayName: "深圳", Center: []float64{22.5431, 114.0579}},
	{Code: "6", Name: "Hangzhou", DisplayName: "杭州", Center: []float64{30.2741, 120.1551}},
	{Code: "7", Name: "Nanjing", DisplayName: "南京", Center: []float64{32.0603, 118.7969}},
	{Code: "108", Name: "Nanning", DisplayName: "南宁", Center: []float64{22.8170, 108.3665}},
}

// DefaultCatalog returns the built-in catalog.
func DefaultCatalog() *Catalog {
	cities := make([]City, len(defaultCities))
	copy(cities, defaultCities)
	return &Catalog{Cities: cities}
}

// LoadCatalog reads a catalog from a JSON file. An empty path yields the
// built-in catalog.
func LoadCatalog(path string) (*Catalog, error) {
	if path == "" {
		return DefaultCatalog(), nil
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to get absolute path: %w", err)
	}

	data, err := os.ReadFile(absPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog file: %w", err)
	}

	var catalog Catalog
	if err := json.Unmarshal(data, &catalog); err != nil {
		return nil, fmt.Errorf("failed to parse catalog: %w", err)
	}

	for i, city := range catalog.Cities {
		if city.Name == "" {
			return nil, fmt.Errorf("catalog entry %d has no name", i)
		}
		if len(city.Center) != 0 && len(city.Center) != 2 {
			return nil, fmt.Errorf("catalog entry %q: center must be [lat, lng]", city.Name)
		}
	}

	return &catalog, nil
}

// GetCityNames returns the stored names of all catalog cities
func (c *Catalog) GetCityNames() []string {
	names := make([]string, len(c.Cities))
	for i, city := range c.Cities {
		names[i] = city.Name
	}
	return names
}

// GetCityByName looks a city up by its stored name, case-insensitively
func (c *Catalog) GetCityByName(name string) *City {
	for i := range c.Cities {
		if strings.EqualFold(c.Cities[i].Name, name) {
			return &c.Cities[i]
		}
	}
	return nil
}

// GetCityByCode looks a city up by its source site code
func (c *Catalog) GetCityByCode(code string) *City {
	for i := range c.Cities {
		if c.Cities[i].Code == code {
			return &c.Cities[i]
		}
	}
	return nil
}

// DisplayName returns the human readable name for a stored city name,
// falling back to the stored name itself.
func (c *Catalog) DisplayName(name string) string {
	if city := c.GetCityByName(name); city != nil && city.DisplayName != "" {
		return city.DisplayName
	}
	return name
}

// Resolve maps selectors (codes or names) to catalog cities. An empty
// selector list selects the whole catalog.
func (c *Catalog) Resolve(selectors []string) ([]City, error) {
	if len(selectors) == 0 {
		return append([]City(nil), c.Cities...), nil
	}

	cities := make([]City, 0, len(selectors))
	for _, sel := range selectors {
		city := c.GetCityByCode(sel)
		if city == nil {
			city = c.GetCityByName(sel)
		}
		if city == nil {
			return nil, fmt.Errorf("unknown city: %s", sel)
		}
		cities = append(cities, *city)
	}
	return cities, nil
}

var nonSlug = regexp.MustCompile(`[^a-z0-9]+`)

// NormalizeCity turns a city name into a lower-case, dash separated slug
func NormalizeCity(name string) string {
	slug := nonSlug.ReplaceAllString(strings.ToLower(name), "-")
	return strings.Trim(slug, "-")
}
