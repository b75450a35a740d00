package metrics

import (
	"time"
)

func result(err error) string {
	if err != nil {
		return "failure"
	}
	return "success"
}

// RecordFeedFetch records one feed fetch. kind is the source type (rss, html).
func RecordFeedFetch(kind string, duration time.Duration, err error) {
	FeedsFetchedTotal.WithLabelValues(kind, result(err)).Inc()
	FeedFetchDuration.WithLabelValues(kind).Observe(duration.Seconds())
}

// RecordPipelineItems adds n items to the given stage counter.
// Stage should be one of the Stage* constants.
func RecordPipelineItems(stage string, n int) {
	if n <= 0 {
		return
	}
	PipelineItemsTotal.WithLabelValues(stage).Add(float64(n))
}

// RecordPipelineRun records the duration of a whole run.
func RecordPipelineRun(duration time.Duration, err error) {
	PipelineRunDuration.WithLabelValues(result(err)).Observe(duration.Seconds())
}

// RecordItemProcessed records the time taken to turn one item into a post.
func RecordItemProcessed(duration time.Duration) {
	StoryPipelineDuration.Observe(duration.Seconds())
}

// RecordPackageWritten counts one output folder.
func RecordPackageWritten() {
	PackagesWrittenTotal.Inc()
}

// RecordCautionApplied counts one story that received the caution prefix.
func RecordCautionApplied() {
	CautionAppliedTotal.Inc()
}

// RecordContentFetchSuccess records a successful content fetch operation.
// This tracks both the duration and size of fetched content.
//
// Parameters:
//   - duration: Time taken to fetch the content
//   - runes: Length of the fetched text in runes
//
// Example:
//
//	start := time.Now()
//	content, err := fetcher.FetchContent(ctx, url)
//	if err == nil {
//	    RecordContentFetchSuccess(time.Since(start), utf8.RuneCountInString(content))
//	}
func RecordContentFetchSuccess(duration time.Duration, runes int) {
	ContentFetchAttemptsTotal.WithLabelValues("success").Inc()
	ContentFetchDuration.Observe(duration.Seconds())
	ContentFetchSize.Observe(float64(runes))
}

// RecordContentFetchFailed records a failed content fetch operation.
func RecordContentFetchFailed(duration time.Duration) {
	ContentFetchAttemptsTotal.WithLabelValues("failure").Inc()
	ContentFetchDuration.Observe(duration.Seconds())
}

// RecordContentFetchSkipped records a fetch that was not attempted because the
// feed summary already met the threshold.
func RecordContentFetchSkipped() {
	ContentFetchAttemptsTotal.WithLabelValues("skipped").Inc()
}

// RecordHistoryOperation records a publish history call (load, mark, count).
func RecordHistoryOperation(operation string, err error) {
	HistoryOperationsTotal.WithLabelValues(operation, result(err)).Inc()
}

// RecordEventPublished records one story event delivery attempt.
func RecordEventPublished(publisher string, err error) {
	PublishedEventsTotal.WithLabelValues(publisher, result(err)).Inc()
}

// RecordCircuitState sets the state gauge for the named breaker.
func RecordCircuitState(circuit string, state int) {
	CircuitBreakerState.WithLabelValues(circuit).Set(float64(state))
}

// RecordRetry counts one retry of operation.
func RecordRetry(operation string) {
	if operation == "" {
		operation = "unnamed"
	}
	RetryAttemptsTotal.WithLabelValues(operation).Inc()
}
