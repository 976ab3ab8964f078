package model

import "time"

// Trigger reasons.
const (
	TriggerWebhook      = "webhook"
	TriggerStartup      = "startup"
	TriggerReload       = "reload"
	TriggerConfigUpdate = "config_update"
	TriggerUnitSystem   = "unit_system"
)

// Trigger asks the fetch worker for one fetch-and-publish pass.
type Trigger struct {
	Reason string
	Source string // host or signal that caused the trigger
	Time   time.Time
}
