package model

// Intention is what a controlled actor is currently trying to do.
type Intention int32

const (
	// IntentionIdle - no living target in sight
	IntentionIdle Intention = iota
	// IntentionChase - closing distance to the target, no action eligible
	IntentionChase
	// IntentionAct - an action is in flight
	IntentionAct
	// IntentionDead - the actor died; its controller no longer ticks the scheduler
	IntentionDead
)

// String returns human-readable intention name
func (i Intention) String() string {
	switch i {
	case IntentionIdle:
		return "IDLE"
	case IntentionChase:
		return "CHASE"
	case IntentionAct:
		return "ACT"
	case IntentionDead:
		return "DEAD"
	default:
		return "UNKNOWN"
	}
}
