// Package types defines the public domain types for feedwatch.
package types

import "fmt"

// BaseScenario is the monitoring-store scenario every status query reads.
const BaseScenario = "BASE"

// RunTypeRun is the run type recorded for job executions.
const RunTypeRun = "RUN"

// RunStatus is the integer status code the monitoring store records for a run.
type RunStatus int

// RunStatus values mirror the monitor table's run_status column.
const (
	RunInProgress RunStatus = -1
	RunComplete   RunStatus = 0
	RunError      RunStatus = 1
	RunPending    RunStatus = 2
)

func (s RunStatus) String() string {
	switch s {
	case RunInProgress:
		return "IN_PROGRESS"
	case RunComplete:
		return "COMPLETE"
	case RunError:
		return "ERROR"
	case RunPending:
		return "PENDING"
	default:
		return fmt.Sprintf("RunStatus(%d)", int(s))
	}
}

// FeedStatus is the derived status of a feed for a business date.
type FeedStatus string

// FeedStatus values enumerate every status the engine can report.
const (
	StatusError      FeedStatus = "ERROR"
	StatusPriced     FeedStatus = "PRICED"
	StatusDelayed    FeedStatus = "DELAYED"
	StatusInProgress FeedStatus = "IN_PROGRESS"
	StatusPending    FeedStatus = "PENDING"
	StatusException  FeedStatus = "EXCEPTION"
)

// FailureKind tags why a status evaluation ended in EXCEPTION.
type FailureKind string

const (
	FailureNone            FailureKind = ""
	FailureStore           FailureKind = "STORE"
	FailureMalformedConfig FailureKind = "MALFORMED_CONFIG"
	FailureMissingConfig   FailureKind = "MISSING_CONFIG"
)

// AlertType defines the alert sink type.
type AlertType string

// AlertType values enumerate the supported alert sink backends.
const (
	AlertConsole     AlertType = "console"
	AlertWebhook     AlertType = "webhook"
	AlertFile        AlertType = "file"
	AlertEventBridge AlertType = "eventbridge"
	AlertSQS         AlertType = "sqs"
)

// AlertLevel is the severity of an alert.
type AlertLevel string

const (
	AlertLevelError   AlertLevel = "error"
	AlertLevelWarning AlertLevel = "warning"
	AlertLevelInfo    AlertLevel = "info"
)
