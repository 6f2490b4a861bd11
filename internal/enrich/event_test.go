package enrich

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/portstack/beacon/internal/model"
)

func TestMarshalEvent(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		event Event
		want  string
	}{
		{
			name:  "step start",
			event: StepStart{StepID: StepFetch, Label: "Fetching website content"},
			want:  `{"type":"step-start","stepId":"fetch","label":"Fetching website content"}`,
		},
		{
			name:  "step complete",
			event: StepComplete{StepID: StepExtract},
			want:  `{"type":"step-complete","stepId":"extract"}`,
		},
		{
			name:  "partial suggestion",
			event: PartialSuggestion{Data: Partial{LinkedInURL: "https://www.linkedin.com/company/acme"}},
			want:  `{"type":"partial-suggestion","data":{"linkedin_url":"https://www.linkedin.com/company/acme"}}`,
		},
		{
			name:  "error",
			event: ErrorEvent{Message: "enrichment failed"},
			want:  `{"type":"error","message":"enrichment failed"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			out, err := MarshalEvent(tt.event)
			require.NoError(t, err)
			assert.JSONEq(t, tt.want, string(out))
		})
	}
}

func TestMarshalSuggestions(t *testing.T) {
	t.Parallel()

	steps := baseSteps()
	markDoneThrough(steps, StepStructure)
	out, err := MarshalEvent(Suggestions{
		Data: &model.CompanyInput{
			Name:      "Acme Marine",
			HQCountry: "NOR",
			Regions:   []model.RegionCode{model.RegionEU},
		},
		Steps: steps,
	})
	require.NoError(t, err)
	assert.Contains(t, string(out), `"type":"suggestions"`)
	assert.Contains(t, string(out), `"hq_country":"NOR"`)
	assert.Contains(t, string(out), `"status":"done"`)
	assert.NotContains(t, string(out), `"pending"`)
}

func TestStepHelpers(t *testing.T) {
	t.Parallel()

	steps := baseSteps()
	require.Len(t, steps, 4)

	ev := startStep(steps, StepExtract, "Discovering LinkedIn via search")
	assert.Equal(t, StepExtract, ev.StepID)
	assert.Equal(t, StepActive, steps[1].Status)

	markDoneThrough(steps, StepInfer)
	assert.Equal(t, StepDone, steps[0].Status)
	assert.Equal(t, StepDone, steps[2].Status)
	assert.Equal(t, StepPending, steps[3].Status)
}
