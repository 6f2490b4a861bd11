package enrich

import (
	"encoding/json"

	"github.com/rotisserie/eris"

	"github.com/portstack/beacon/internal/model"
)

// Event is the closed union of enrichment progress events. Exactly one
// terminal event (Suggestions) is emitted per successful run; ErrorEvent
// is produced only by transport boundaries converting a run-level
// failure.
type Event interface {
	event()
}

// StepStart announces a step becoming active, with its runtime label.
type StepStart struct {
	StepID string
	Label  string
}

// StepComplete announces a finished step.
type StepComplete struct {
	StepID string
}

// Partial carries only the fields discovered since the previous event.
type Partial struct {
	LinkedInURL string               `json:"linkedin_url,omitempty"`
	HQCity      string               `json:"hq_city,omitempty"`
	HQCountry   string               `json:"hq_country,omitempty"`
	Employees   model.EmployeeRange  `json:"employees,omitempty"`
	Regions     []model.RegionCode   `json:"regions,omitempty"`
	Categories  []model.CategoryCode `json:"categories,omitempty"`
}

// PartialSuggestion streams an incremental patch to the suggestion so
// consumers can render fields as they arrive.
type PartialSuggestion struct {
	Data Partial
}

// Suggestions is the terminal success event: the assembled suggestion
// plus the final step list, all marked done.
type Suggestions struct {
	Data  *model.CompanyInput
	Steps []Step
}

// ErrorEvent is the terminal failure event.
type ErrorEvent struct {
	Message string
}

func (StepStart) event()         {}
func (StepComplete) event()      {}
func (PartialSuggestion) event() {}
func (Suggestions) event()       {}
func (ErrorEvent) event()        {}

// MarshalEvent renders an event in its wire shape. The switch is
// exhaustive over the union; an unknown event is a programming error.
func MarshalEvent(e Event) ([]byte, error) {
	var payload any
	switch ev := e.(type) {
	case StepStart:
		payload = struct {
			Type   string `json:"type"`
			StepID string `json:"stepId"`
			Label  string `json:"label,omitempty"`
		}{Type: "step-start", StepID: ev.StepID, Label: ev.Label}
	case StepComplete:
		payload = struct {
			Type   string `json:"type"`
			StepID string `json:"stepId"`
		}{Type: "step-complete", StepID: ev.StepID}
	case PartialSuggestion:
		payload = struct {
			Type string  `json:"type"`
			Data Partial `json:"data"`
		}{Type: "partial-suggestion", Data: ev.Data}
	case Suggestions:
		payload = struct {
			Type  string              `json:"type"`
			Data  *model.CompanyInput `json:"data"`
			Steps []Step              `json:"steps,omitempty"`
		}{Type: "suggestions", Data: ev.Data, Steps: ev.Steps}
	case ErrorEvent:
		payload = struct {
			Type    string `json:"type"`
			Message string `json:"message,omitempty"`
		}{Type: "error", Message: ev.Message}
	default:
		return nil, eris.Errorf("enrich: unknown event type %T", e)
	}
	out, err := json.Marshal(payload)
	return out, eris.Wrap(err, "enrich: marshal event")
}
