package logs_classification

import (
	"bytes"
	"fmt"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

type CategoryDistribution struct {
	Percentage    float64                                      `json:"percentage"`
	SubCategories *orderedmap.OrderedMap[SubCategory, float64] `json:"subCategories"`
}

func (d *CategoryDistribution) SubCategoryPercentage(subCategory SubCategory) (float64, bool) {
	if d.SubCategories == nil {
		return 0, false
	}

	return d.SubCategories.Get(subCategory)
}

func (d *CategoryDistribution) SubCategoryNames() []SubCategory {
	names := make([]SubCategory, 0)
	if d.SubCategories == nil {
		return names
	}

	for pair := d.SubCategories.Oldest(); pair != nil; pair = pair.Next() {
		names = append(names, pair.Key)
	}

	return names
}

// DistributionReport serializes as
// {"<main>": {"percentage": p, "subCategories": {"<sub>": p}}} in the order
// categories were first encountered.
type DistributionReport struct {
	Categories *orderedmap.OrderedMap[MainCategory, *CategoryDistribution]
}

func NewDistributionReport() *DistributionReport {
	return &DistributionReport{
		Categories: orderedmap.New[MainCategory, *CategoryDistribution](),
	}
}

func (r *DistributionReport) Len() int {
	if r.Categories == nil {
		return 0
	}

	return r.Categories.Len()
}

func (r *DistributionReport) CategoryNames() []MainCategory {
	names := make([]MainCategory, 0, r.Len())
	if r.Categories == nil {
		return names
	}

	for pair := r.Categories.Oldest(); pair != nil; pair = pair.Next() {
		names = append(names, pair.Key)
	}

	return names
}

func (r *DistributionReport) Category(category MainCategory) (*CategoryDistribution, bool) {
	if r.Categories == nil {
		return nil, false
	}

	return r.Categories.Get(category)
}

func (r DistributionReport) MarshalJSON() ([]byte, error) {
	if r.Categories == nil {
		return []byte("{}"), nil
	}

	return r.Categories.MarshalJSON()
}

// UnmarshalJSON treats a JSON null as an empty report.
func (r *DistributionReport) UnmarshalJSON(data []byte) error {
	categories := orderedmap.New[MainCategory, *CategoryDistribution]()

	if !bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		if err := categories.UnmarshalJSON(data); err != nil {
			return fmt.Errorf("failed to unmarshal distribution report: %w", err)
		}
	}

	r.Categories = categories
	return nil
}
