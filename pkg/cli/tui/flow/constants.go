package flow

// Step constants for the operation state machine
const (
	StepSelectKind = iota
	StepForm
	StepResult
)

// Step constants for the history browser state machine
const (
	StepHistoryList = iota
	StepHistoryDetail
	StepDeleteConfirm
	StepClearConfirm
)

// DefaultWidth is the default terminal width fallback
const DefaultWidth = 80
