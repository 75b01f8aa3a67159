package domain

import "fmt"

// UnknownBreed buckets records that carry no breed field.
const UnknownBreed = "Unknown"

// Statistics summarizes the registry contents.
type Statistics struct {
	TotalRegistered    int            `json:"total_registered"`
	Active             int            `json:"active"`
	Inactive           int            `json:"inactive"`
	BreedsDistribution map[string]int `json:"breeds_distribution"`
	// BreedOrder lists distribution keys in first-seen order for rendering.
	BreedOrder []string `json:"-"`
}

// ComputeStatistics aggregates records. Inactive is derived as total minus
// active, so records carrying an unexpected status count as inactive.
func ComputeStatistics(records []Record) Statistics {
	stats := Statistics{
		TotalRegistered:    len(records),
		BreedsDistribution: make(map[string]int),
	}
	for _, r := range records {
		if r.Status() == StatusActive {
			stats.Active++
		}
		breed := breedKey(r)
		if _, seen := stats.BreedsDistribution[breed]; !seen {
			stats.BreedOrder = append(stats.BreedOrder, breed)
		}
		stats.BreedsDistribution[breed]++
	}
	stats.Inactive = stats.TotalRegistered - stats.Active
	return stats
}

func breedKey(r Record) string {
	v, ok := r.Get(FieldBreed)
	if !ok || v == nil {
		return UnknownBreed
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}
