package plan

// Plan is an ordered list of steps derived from one task's requirements.
// A Plan is immutable once generated; a changed requirement set produces a
// new Plan, never an in-place edit.
type Plan struct {
	taskID          string
	objective       string
	steps           []Step
	constraints     []string
	rollbackEnabled bool
}

// NewPlan creates a Plan. The steps slice is copied.
func NewPlan(taskID, objective string, steps []Step, constraints []string, rollbackEnabled bool) *Plan {
	return &Plan{
		taskID:          taskID,
		objective:       objective,
		steps:           append([]Step(nil), steps...),
		constraints:     append([]string(nil), constraints...),
		rollbackEnabled: rollbackEnabled,
	}
}

// TaskID returns the id of the task this plan was generated for.
func (p *Plan) TaskID() string { return p.taskID }

// Objective returns the task objective the plan serves.
func (p *Plan) Objective() string { return p.objective }

// Steps returns the ordered steps. The returned slice is a copy.
func (p *Plan) Steps() []Step {
	return append([]Step(nil), p.steps...)
}

// Len returns the number of steps.
func (p *Plan) Len() int { return len(p.steps) }

// Constraints returns the task constraints carried into the plan.
func (p *Plan) Constraints() []string {
	return append([]string(nil), p.constraints...)
}

// RollbackEnabled reports whether backups taken during this plan may be
// restored by an explicit rollback request.
func (p *Plan) RollbackEnabled() bool { return p.rollbackEnabled }
