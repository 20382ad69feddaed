package utils

// BuildMetricsSummaryCacheKey scopes the cached business-metrics
// summary to one owner. Only aggregates are ever cached; access-grant
// resolution never is.
func BuildMetricsSummaryCacheKey(ownerID string) string {
	return "bizmetrics:summary:v1:owner=" + ownerID
}
