package logs_classification

type MainCategory string

const (
	MainCategoryDatabaseError      MainCategory = "Database Error"
	MainCategoryServerError        MainCategory = "Server Error"
	MainCategoryPerformanceWarning MainCategory = "Performance Warning"
	MainCategoryNetworkTimeout     MainCategory = "Network Timeout"
	MainCategoryOther              MainCategory = "Other"
	MainCategoryUnknown            MainCategory = "Unknown"
)

type SubCategory string

const (
	SubCategoryNullPointerException SubCategory = "Null Pointer Exception"
	SubCategoryIllegalState         SubCategory = "Illegal State"
	SubCategoryTimeoutException     SubCategory = "Timeout Exception"
	SubCategoryInternalServer       SubCategory = "Internal Server"
	SubCategoryOtherServerError     SubCategory = "Other Server Error"

	SubCategoryConnectionPoolExhaustion SubCategory = "Connection Pool Exhaustion"
	SubCategoryDBTimeout                SubCategory = "DB Timeout"
	SubCategorySQLSyntaxError           SubCategory = "SQL Syntax Error"
	SubCategoryOtherDatabaseError       SubCategory = "Other Database Error"

	SubCategoryHighLatency           SubCategory = "High Latency"
	SubCategoryOtherPerformanceIssue SubCategory = "Other Performance Issue"

	SubCategoryOther SubCategory = "Other"
)
