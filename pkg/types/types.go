package types

import "time"

// RunRecord is one row of the external monitoring store: the outcome of a
// single execution of a named job within a run group.
type RunRecord struct {
	Scenario     string    `json:"scenario"`
	BusinessDate time.Time `json:"businessDate"`
	RunGroup     string    `json:"runGroup"`
	RunName      string    `json:"runName"`
	RunType      string    `json:"runType"`
	Status       RunStatus `json:"status"`
	AsOf         time.Time `json:"asOf"`
}

// RunQuery selects run records from the monitoring store.
type RunQuery struct {
	Scenario     string
	BusinessDate time.Time
	RunGroup     string
	RunName      string
	RunType      string
}

// BusinessDays is the calendar table row for a reference date.
type BusinessDays struct {
	Current  time.Time `json:"current"`
	Previous time.Time `json:"previous"`
	Next     time.Time `json:"next"`
}

// CheckGroup names a run group and the runs within it that a check inspects.
type CheckGroup struct {
	RunGroup string   `yaml:"runGroup" json:"runGroup"`
	RunNames []string `yaml:"runNames" json:"runNames"`
}

// Checks holds the four run collections a feed is evaluated against.
// A nil InProgress means the collection was never configured and the feed
// cannot be evaluated; an empty one means the feed has no progress stages.
// A nil Pending means the feed has no pending concept.
type Checks struct {
	Error      []CheckGroup `yaml:"error,omitempty" json:"error,omitempty"`
	Completion []CheckGroup `yaml:"completion" json:"completion"`
	InProgress []CheckGroup `yaml:"inProgress,omitempty" json:"inProgress,omitempty"`
	Pending    []CheckGroup `yaml:"pending,omitempty" json:"pending,omitempty"`
}

// All returns every configured group across the four collections.
func (c Checks) All() []CheckGroup {
	all := make([]CheckGroup, 0, len(c.Error)+len(c.Completion)+len(c.InProgress)+len(c.Pending))
	all = append(all, c.Error...)
	all = append(all, c.Completion...)
	all = append(all, c.InProgress...)
	all = append(all, c.Pending...)
	return all
}

// Descriptor is the static configuration of one feed.
type Descriptor struct {
	Name     string `json:"name"`
	Category string `json:"category"`
	Checks   Checks `json:"checks"`
	// ETA is the HH:MM text the deadline was built from.
	ETA string `json:"eta"`
	// ExpectedETA maps a business date to the time the feed normally completes.
	ExpectedETA func(businessDate time.Time) time.Time `json:"-"`
}

// StatusResult is the outcome of one status evaluation.
type StatusResult struct {
	Feed         string      `json:"feed"`
	BusinessDate time.Time   `json:"businessDate"`
	Status       FeedStatus  `json:"status"`
	Timestamp    time.Time   `json:"timestamp"`
	Failure      FailureKind `json:"failure,omitempty"`
	Err          error       `json:"-"`
}

// FeedReport is a status result joined with the descriptor's display fields.
type FeedReport struct {
	Feed      string     `json:"feed"`
	Date      time.Time  `json:"date"`
	Status    FeedStatus `json:"status"`
	AsOf      time.Time  `json:"asofdate"`
	NormalETA time.Time  `json:"normalEta"`
	Category  string     `json:"category"`
	Failure   string     `json:"failure,omitempty"`
}

// Alert is a notification raised when a feed enters an alarming status.
type Alert struct {
	AlertID      string     `json:"alertId,omitempty"`
	Level        AlertLevel `json:"level"`
	Feed         string     `json:"feed,omitempty"`
	BusinessDate string     `json:"businessDate,omitempty"`
	Status       FeedStatus `json:"status,omitempty"`
	Message      string     `json:"message"`
	Timestamp    time.Time  `json:"timestamp"`
}

// HolidayCalendar defines non-business days: weekdays that are never
// business days plus explicit holiday dates.
type HolidayCalendar struct {
	Name  string   `yaml:"name" json:"name"`
	Days  []string `yaml:"days,omitempty" json:"days,omitempty"`   // "saturday", "sunday"
	Dates []string `yaml:"dates,omitempty" json:"dates,omitempty"` // "2025-12-25"
}
