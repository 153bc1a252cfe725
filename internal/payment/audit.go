package payment

// Stage names the part of Process a variable mutation happened in.
type Stage string

const (
	StageInitialization Stage = "initialization"
	StagePreparation    Stage = "preparation"
	StageAction         Stage = "action"
	StageCompletion     Stage = "completion"
)

// VarChange is one entry of the append-only variable audit log. The log
// allows replaying exactly how any variable reached its final value.
type VarChange struct {
	Key      string `json:"key"`
	Previous any    `json:"previous"`
	New      any    `json:"new"`
	Stage    Stage  `json:"stage"`
	Step     string `json:"step"`
}

// SetVar stores a variable for later steps and appends an audit record with
// the previous value, the stage and the step performing the write.
//
// Values are persisted with the payment, so steps should store simple,
// JSON-friendly types: an id instead of a full object.
func (p *Payment) SetVar(key string, value any) {
	previous := p.vars[key]
	p.vars[key] = value
	p.varLog = append(p.varLog, VarChange{
		Key:      key,
		Previous: previous,
		New:      value,
		Stage:    p.stage,
		Step:     p.currentStep,
	})
}

// Var returns a variable set by a previous step, or nil when unset. No type
// coercion is performed.
func (p *Payment) Var(key string) any {
	return p.vars[key]
}

// StringVar returns a variable as a string, or "" when it is unset or not a
// string.
func (p *Payment) StringVar(key string) string {
	s, _ := p.vars[key].(string)
	return s
}

// VarLog returns the audit log of variable mutations, oldest first.
func (p *Payment) VarLog() []VarChange {
	return p.varLog
}
