package logs_classification

import "strings"

// rule maps a lower-case substring to a label. Rule tables are evaluated in
// order and the first match wins, so the order of entries is significant.
type rule[T ~string] struct {
	needle string
	label  T
}

func firstMatch[T ~string](rules []rule[T], lowerMessage string, fallback T) T {
	for _, r := range rules {
		if strings.Contains(lowerMessage, r.needle) {
			return r.label
		}
	}

	return fallback
}

var mainCategoryRules = []rule[MainCategory]{
	{"database connection pool empty", MainCategoryDatabaseError},
	{"internal server error", MainCategoryServerError},
	{"latency", MainCategoryPerformanceWarning},
	{"timeout", MainCategoryNetworkTimeout},
}

type subCategoryRules struct {
	rules    []rule[SubCategory]
	fallback SubCategory
}

var subCategoryRulesByMain = map[MainCategory]subCategoryRules{
	MainCategoryServerError: {
		rules: []rule[SubCategory]{
			{"nullpointer", SubCategoryNullPointerException},
			{"illegal", SubCategoryIllegalState},
			{"timeout", SubCategoryTimeoutException},
			{"internal server", SubCategoryInternalServer},
		},
		fallback: SubCategoryOtherServerError,
	},
	MainCategoryDatabaseError: {
		rules: []rule[SubCategory]{
			{"pool empty", SubCategoryConnectionPoolExhaustion},
			{"timeout", SubCategoryDBTimeout},
			{"sqlsyntax", SubCategorySQLSyntaxError},
		},
		fallback: SubCategoryOtherDatabaseError,
	},
	MainCategoryPerformanceWarning: {
		rules: []rule[SubCategory]{
			{"latency", SubCategoryHighLatency},
		},
		fallback: SubCategoryOtherPerformanceIssue,
	},
}

// Classify maps a log message to its main category. Blank messages are Unknown.
func Classify(message string) MainCategory {
	if strings.TrimSpace(message) == "" {
		return MainCategoryUnknown
	}

	return firstMatch(mainCategoryRules, strings.ToLower(message), MainCategoryOther)
}

// Subclassify maps a message to a sub-category within its main category.
// Categories without their own table (Network Timeout, Other, Unknown) always yield Other.
func Subclassify(mainCategory MainCategory, message string) SubCategory {
	table, ok := subCategoryRulesByMain[mainCategory]
	if !ok {
		return SubCategoryOther
	}

	return firstMatch(table.rules, strings.ToLower(message), table.fallback)
}
