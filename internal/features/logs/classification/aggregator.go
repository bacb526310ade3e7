package logs_classification

import (
	logs_core "logpulse/internal/features/logs/core"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Aggregate builds the error distribution over the error records in records.
// Non-error records are ignored, and an input without errors yields an empty report.
func Aggregate(records []*logs_core.LogRecord) *DistributionReport {
	report := NewDistributionReport()

	groups, totalErrors := groupErrorsByCategory(records)
	if totalErrors == 0 {
		return report
	}

	for group := groups.Oldest(); group != nil; group = group.Next() {
		report.Categories.Set(group.Key, &CategoryDistribution{
			Percentage:    percentage(len(group.Value), totalErrors),
			SubCategories: subDistribution(group.Key, group.Value),
		})
	}

	return report
}

// groupErrorsByCategory keeps categories in first-encountered order.
func groupErrorsByCategory(records []*logs_core.LogRecord) (*orderedmap.OrderedMap[MainCategory, []string], int) {
	groups := orderedmap.New[MainCategory, []string]()
	totalErrors := 0

	for _, record := range records {
		if record == nil || !record.IsError {
			continue
		}

		totalErrors++
		category := Classify(record.Message)

		messages, _ := groups.Get(category)
		groups.Set(category, append(messages, record.Message))
	}

	return groups, totalErrors
}

func subDistribution(category MainCategory, messages []string) *orderedmap.OrderedMap[SubCategory, float64] {
	counts := orderedmap.New[SubCategory, int]()
	for _, message := range messages {
		subCategory := Subclassify(category, message)

		count, _ := counts.Get(subCategory)
		counts.Set(subCategory, count+1)
	}

	shares := orderedmap.New[SubCategory, float64]()
	for pair := counts.Oldest(); pair != nil; pair = pair.Next() {
		shares.Set(pair.Key, percentage(pair.Value, len(messages)))
	}

	return shares
}

func percentage(part, total int) float64 {
	return float64(part) * 100.0 / float64(total)
}
