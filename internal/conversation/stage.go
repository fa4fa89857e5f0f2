package conversation

import "github.com/yungbote/sprint-backend/internal/domain/assistant"

// Stage is the onboarding step a user is in. It is never stored; it is derived
// from which configuration keys exist.
type Stage int

const (
	StageAwaitingPersona Stage = iota
	StageAwaitingSchedule
	StageAwaitingTimezone
	StageAwaitingGoal
	StageAwaitingPeople
	StageActive
)

var stageNames = [...]string{
	StageAwaitingPersona:  "AWAITING_PERSONA",
	StageAwaitingSchedule: "AWAITING_SCHEDULE",
	StageAwaitingTimezone: "AWAITING_TIMEZONE",
	StageAwaitingGoal:     "AWAITING_GOAL",
	StageAwaitingPeople:   "AWAITING_PEOPLE",
	StageActive:           "ACTIVE",
}

func (s Stage) String() string {
	if s < 0 || int(s) >= len(stageNames) {
		return "UNKNOWN"
	}
	return stageNames[s]
}

// Key returns the configuration key whose absence puts a user in s. ACTIVE has none.
func (s Stage) Key() string {
	if s < 0 || int(s) >= len(assistant.SetupKeys) {
		return ""
	}
	return assistant.SetupKeys[s]
}

// InferStage returns the stage of the first setup key missing from cfg, in
// onboarding order. Keys after the first missing one are ignored.
func InferStage(cfg map[string]string) Stage {
	for i, key := range assistant.SetupKeys {
		if _, ok := cfg[key]; !ok {
			return Stage(i)
		}
	}
	return StageActive
}
