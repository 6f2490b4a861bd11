package enrich

// StepStatus is the lifecycle state of an agent step.
type StepStatus string

const (
	StepPending StepStatus = "pending"
	StepActive  StepStatus = "active"
	StepDone    StepStatus = "done"
)

// Step ids are stable handles; the displayed label changes per phase.
const (
	StepFetch     = "fetch"
	StepExtract   = "extract"
	StepInfer     = "infer"
	StepStructure = "structure"
)

// Step is one of the four fixed phases reported to the client during a
// run.
type Step struct {
	ID     string     `json:"id"`
	Label  string     `json:"label"`
	Status StepStatus `json:"status"`
}

func baseSteps() []Step {
	return []Step{
		{ID: StepFetch, Label: "Fetching website content", Status: StepPending},
		{ID: StepExtract, Label: "Discovering LinkedIn via search", Status: StepPending},
		{ID: StepInfer, Label: "Fetching LinkedIn page", Status: StepPending},
		{ID: StepStructure, Label: "Inferring HQ & employees", Status: StepPending},
	}
}

// startStep activates a step, overwrites its displayed label, and
// returns the matching wire event.
func startStep(steps []Step, id, label string) StepStart {
	for i := range steps {
		if steps[i].ID == id {
			steps[i].Label = label
			steps[i].Status = StepActive
		}
	}
	return StepStart{StepID: id, Label: label}
}

// markDoneThrough marks the named step and everything before it done.
func markDoneThrough(steps []Step, id string) {
	for i := range steps {
		steps[i].Status = StepDone
		if steps[i].ID == id {
			return
		}
	}
}
