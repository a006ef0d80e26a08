package domain

import "time"

// FeedSource is one configured feed inside a topic file.
type FeedSource struct {
	Name     string
	URL      string
	Priority int
	Icon     string
}

// FeedEntry is a normalized feed item as returned by the fetch collaborator.
// It is transient: consumed once per cycle, never persisted.
type FeedEntry struct {
	GUID          string
	Title         string
	Link          string
	Published     time.Time
	PublishedText string
	Content       string
	MediaRefs     []string
}

// Identity returns the value used for fingerprinting: the entry's own id,
// else its link, else a literal fallback.
func (e FeedEntry) Identity() string {
	if e.GUID != "" {
		return e.GUID
	}
	if e.Link != "" {
		return e.Link
	}
	return "unknown_id"
}

// Notification carries everything the dispatcher needs for one push.
type Notification struct {
	Topic      string
	SourceName string
	Title      string
	Link       string
	Summary    string
	ImageURL   string
	Icon       string
	Priority   int
	Delay      time.Duration

	PublishedAt   time.Time
	PublishedText string
}

// DispatchOutcome enumerates what happened to one new entry.
type DispatchOutcome string

const (
	// OutcomeDispatched means the notification was accepted by the endpoint.
	OutcomeDispatched DispatchOutcome = "dispatched"
	// OutcomeFailedButRecorded means the send failed but the entry was still
	// marked seen, trading a missed notification for forward progress.
	OutcomeFailedButRecorded DispatchOutcome = "failed_but_recorded"
)

// SourceReport summarizes one source's batch within a cycle.
type SourceReport struct {
	Topic             string
	Source            string
	Dispatched        int
	FailedButRecorded int
	Skipped           int
}

// Attempts counts dispatch attempts regardless of outcome.
func (r SourceReport) Attempts() int {
	return r.Dispatched + r.FailedButRecorded
}
