package usage

import "time"

// Aggregate combines multiple records into a summary.
// This is a PURE function.
func Aggregate(records []Record, periodStart, periodEnd time.Time) Summary {
	summary := Summary{
		PeriodStart: periodStart,
		PeriodEnd:   periodEnd,
	}
	if len(records) == 0 {
		return summary
	}

	var totalLatency, ranCount int64
	for _, r := range records {
		if summary.Command == "" {
			summary.Command = r.Command
		}

		summary.Total++
		summary.ErrorCount += int64(r.ErrorCount)

		switch r.Status {
		case StatusDispatched:
			summary.Dispatched++
		case StatusRejected:
			summary.Rejected++
		case StatusThrottled:
			summary.Throttled++
		case StatusUnknown:
			summary.Unknown++
		case StatusFailed:
			summary.Failed++
		}

		if r.HandlerRan() {
			totalLatency += r.LatencyMs
			ranCount++
		}
	}

	if ranCount > 0 {
		summary.AvgLatencyMs = totalLatency / ranCount
	}
	return summary
}

// MergeSummaries combines multiple summaries.
// This is a PURE function.
func MergeSummaries(summaries ...Summary) Summary {
	if len(summaries) == 0 {
		return Summary{}
	}

	result := summaries[0]
	for _, s := range summaries[1:] {
		// Weighted average over handler runs
		ranBefore := result.Dispatched + result.Failed
		ranNew := s.Dispatched + s.Failed
		if ranBefore+ranNew > 0 {
			total := result.AvgLatencyMs*ranBefore + s.AvgLatencyMs*ranNew
			result.AvgLatencyMs = total / (ranBefore + ranNew)
		}

		result.Total += s.Total
		result.Dispatched += s.Dispatched
		result.Rejected += s.Rejected
		result.Throttled += s.Throttled
		result.Unknown += s.Unknown
		result.Failed += s.Failed
		result.ErrorCount += s.ErrorCount

		// Expand period bounds
		if s.PeriodStart.Before(result.PeriodStart) {
			result.PeriodStart = s.PeriodStart
		}
		if s.PeriodEnd.After(result.PeriodEnd) {
			result.PeriodEnd = s.PeriodEnd
		}
	}

	return result
}

// DayBounds returns the start and end of the day containing t.
// This is a PURE function.
func DayBounds(t time.Time) (start, end time.Time) {
	start = time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	end = start.AddDate(0, 0, 1).Add(-time.Nanosecond)
	return
}
