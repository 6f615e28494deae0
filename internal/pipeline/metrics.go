package pipeline

import (
	"go.opencensus.io/stats"
	"go.opencensus.io/stats/view"
	"go.opencensus.io/tag"
)

var (
	RunLatencyMs = stats.Float64("dashboard/pipeline/run_latency", "Time to compute every report", stats.UnitMilliseconds)
	ReportRows   = stats.Int64("dashboard/pipeline/report_rows", "Rows in the last computed report", stats.UnitDimensionless)

	KeyReport = tag.MustNewKey("report")
)

// Views exported through the configured metrics exporter
var Views = []*view.View{
	{
		Name:        "dashboard/pipeline/run_latency",
		Description: "Distribution of pipeline run latencies",
		Measure:     RunLatencyMs,
		Aggregation: view.Distribution(5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000, 10000),
	},
	{
		Name:        "dashboard/pipeline/report_rows",
		Description: "Row count of each report in the latest run",
		Measure:     ReportRows,
		TagKeys:     []tag.Key{KeyReport},
		Aggregation: view.LastValue(),
	},
}

// RegisterViews registers the pipeline views with OpenCensus
func RegisterViews() error {
	return view.Register(Views...)
}
