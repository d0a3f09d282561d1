package model

// ActionStep is one message of a named action. Steps of the same action
// share Name and are numbered from 0 without gaps.
type ActionStep struct {
	ID        int64
	TenantID  int64
	Name      string
	StepOrder int
	Text      string
}

// ActionSummary is an action as listed in the editor.
type ActionSummary struct {
	Name  string
	Steps int
}
