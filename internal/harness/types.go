package harness

// StepResult is the outcome of one step.
type StepResult struct {
	Op string `json:"op"`

	// Code is the edit error code; empty on success.
	Code string `json:"code,omitempty"`

	// Report is the operation's report on success.
	Report any `json:"report,omitempty"`
}

// KeySnapshot is one key of a channel after the scenario ran.
type KeySnapshot struct {
	Frame  float64 `json:"frame"`
	Value  float64 `json:"value"`
	Interp string  `json:"interp"`
}

// ChannelSnapshot is a channel after the scenario ran.
type ChannelSnapshot struct {
	Path string        `json:"path"`
	Keys []KeySnapshot `json:"keys"`
}

// Result is the outcome of a scenario execution.
type Result struct {
	// Pass indicates overall test success.
	// True if every step expectation and assertion holds.
	Pass bool `json:"pass"`

	// Steps holds each step's outcome, in order.
	Steps []StepResult `json:"steps"`

	// Errors contains validation error messages.
	// Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`

	// Channels is the final scene, in path order.
	Channels []ChannelSnapshot `json:"channels"`

	// History lists the undo group labels, oldest first.
	History []string `json:"history"`
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:     true,
		Steps:    []StepResult{},
		Errors:   []string{},
		Channels: []ChannelSnapshot{},
		History:  []string{},
	}
}

// AddError adds a validation error and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}
