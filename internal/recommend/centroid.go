package recommend

import (
	"sort"

	"github.com/temcen/estaterec/pkg/models"
)

const topCityCount = 3

// centroid accumulates feature vectors into averages and a city histogram.
type centroid struct {
	price     float64
	bedrooms  float64
	bathrooms float64
	floors    float64
	rating    float64
	count     int

	cityCounts map[string]int
	cityOrder  []string
}

func newCentroid() *centroid {
	return &centroid{cityCounts: make(map[string]int)}
}

func (c *centroid) add(fv models.FeatureVector) {
	c.price += fv.Price
	c.bedrooms += fv.Bedrooms
	c.bathrooms += fv.Bathrooms
	c.floors += fv.Floors
	c.rating += fv.Rating
	c.count++

	if city := fv.Location.City; city != "" {
		if _, seen := c.cityCounts[city]; !seen {
			c.cityOrder = append(c.cityOrder, city)
		}
		c.cityCounts[city]++
	}
}

// topCities returns the most frequent cities. Ties keep first-seen order.
func (c *centroid) topCities(n int) []string {
	cities := make([]string, len(c.cityOrder))
	copy(cities, c.cityOrder)
	sort.SliceStable(cities, func(i, j int) bool {
		return c.cityCounts[cities[i]] > c.cityCounts[cities[j]]
	})
	if len(cities) > n {
		cities = cities[:n]
	}
	return cities
}

func (c *centroid) profile() *models.PreferenceProfile {
	if c.count == 0 {
		return nil
	}
	n := float64(c.count)
	return &models.PreferenceProfile{
		Price:              c.price / n,
		Bedrooms:           c.bedrooms / n,
		Bathrooms:          c.bathrooms / n,
		Floors:             c.floors / n,
		Rating:             c.rating / n,
		PreferredLocations: c.topCities(topCityCount),
		EstateCount:        c.count,
	}
}

func (c *centroid) statistics() *models.GeneralStatistics {
	if c.count == 0 {
		return nil
	}
	n := float64(c.count)
	return &models.GeneralStatistics{
		Price:            c.price / n,
		Bedrooms:         c.bedrooms / n,
		Bathrooms:        c.bathrooms / n,
		Floors:           c.floors / n,
		Rating:           c.rating / n,
		PopularLocations: c.topCities(topCityCount),
		EstateCount:      c.count,
	}
}

// GeneralStatisticsOf averages the usable listings of a snapshot. It returns
// nil when none of them carries usable data.
func GeneralStatisticsOf(estates []models.Estate) *models.GeneralStatistics {
	c := newCentroid()
	for i := range estates {
		if fv, ok := ExtractFeatures(&estates[i]); ok {
			c.add(fv)
		}
	}
	return c.statistics()
}
