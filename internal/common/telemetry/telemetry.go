// File path: internal/common/telemetry/telemetry.go
package telemetry

import (
	"expvar"
	"sync"
	"time"
)

var (
	initOnce sync.Once

	storeMutationsTotal *expvar.Int
	searchQueriesTotal  *expvar.Int
	importRowsTotal     *expvar.Int
	completionsTotal    *expvar.Int
	completionErrors    *expvar.Int
	completionLatencyMS *expvar.Int
)

func ensure() {
	initOnce.Do(func() {
		storeMutationsTotal = expvar.NewInt("inkspace_store_mutations_total")
		searchQueriesTotal = expvar.NewInt("inkspace_search_queries_total")
		importRowsTotal = expvar.NewInt("inkspace_import_rows_total")
		completionsTotal = expvar.NewInt("inkspace_completions_total")
		completionErrors = expvar.NewInt("inkspace_completion_errors_total")
		completionLatencyMS = expvar.NewInt("inkspace_completion_latency_ms")
	})
}

// RecordMutation counts one committed store mutation.
func RecordMutation() {
	ensure()
	storeMutationsTotal.Add(1)
}

// RecordSearch counts one search query.
func RecordSearch() {
	ensure()
	searchQueriesTotal.Add(1)
}

// RecordImport counts rows ingested by a file import.
func RecordImport(rows int) {
	ensure()
	importRowsTotal.Add(int64(rows))
}

// RecordCompletion captures the outcome and latency of a provider call.
func RecordCompletion(dur time.Duration, err error) {
	ensure()
	completionsTotal.Add(1)
	if err != nil {
		completionErrors.Add(1)
		return
	}
	completionLatencyMS.Set(dur.Milliseconds())
}
