package pulseflow

const (
	WorkflowName = "sprint_pulse"
	ActivityRun  = "sprint_pulse_run"
)

type Input struct {
	Manual bool `json:"manual"`
}

// Summary is the part of a pulse report kept in workflow history. Per-user
// outcomes stay in the briefing_run table.
type Summary struct {
	Manual     bool `json:"manual"`
	Candidates int  `json:"candidates"`
	Due        int  `json:"due"`
	Delivered  int  `json:"delivered"`
	Skipped    int  `json:"skipped"`
	Failed     int  `json:"failed"`
}
