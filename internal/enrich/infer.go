package enrich

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/portstack/beacon/internal/model"
	"github.com/portstack/beacon/pkg/anthropic"
)

const hqSystemPrompt = `You are a data-extraction assistant for a maritime-technology company directory.
Given raw text about a single company, extract its headquarters and size.
Respond with strict JSON only, no prose, with exactly these keys:
  "hq_city": the headquarters city name, or null if not determinable
  "hq_country": the headquarters country as a 3-letter ISO 3166-1 alpha-3 code in uppercase, or null
  "employees": the employee count or range as plain text (e.g. "50-200", "1000+"), or null
Never guess. If the text does not support a value, use null.`

// taxonomySystemPrompt glosses each code with its directory label so the
// model classifies against the same meanings the UI displays.
var taxonomySystemPrompt = buildTaxonomyPrompt()

func buildTaxonomyPrompt() string {
	var regionCodes, regionGloss []string
	for _, code := range model.RegionCodes {
		regionCodes = append(regionCodes, `"`+string(code)+`"`)
		regionGloss = append(regionGloss, string(code)+"="+model.RegionLabel(code))
	}
	var categoryCodes, categoryGloss []string
	for _, code := range model.CategoryCodes {
		categoryCodes = append(categoryCodes, `"`+string(code)+`"`)
		categoryGloss = append(categoryGloss, string(code)+"="+model.CategoryLabel(code))
	}
	return fmt.Sprintf(`You are a data-extraction assistant for a maritime-technology company directory.
Given raw text from a company's website, classify the company.
Respond with strict JSON only, no prose, with exactly these keys:
  "regions": array drawn from [%s], the regions where the company operates (%s)
  "categories": array drawn from [%s], the product types the company offers
  (%s)
Include a code only when the text clearly supports it. Empty arrays are fine.`,
		strings.Join(regionCodes, ","), strings.Join(regionGloss, ", "),
		strings.Join(categoryCodes, ","), strings.Join(categoryGloss, ", "))
}

type hqFields struct {
	HQCity    *string `json:"hq_city"`
	HQCountry *string `json:"hq_country"`
	Employees *string `json:"employees"`
}

type taxonomyFields struct {
	Regions    []string `json:"regions"`
	Categories []string `json:"categories"`
}

// inferHQ asks the model for headquarters and headcount fields. Any
// model or parse failure is logged and swallowed; enrichment degrades
// to "no opinion" rather than failing the run.
func (e *Enricher) inferHQ(ctx context.Context, text, source string) *hqFields {
	var out hqFields
	if !e.modelJSON(ctx, hqSystemPrompt, text, "infer-hq-"+source, &out) {
		return nil
	}
	return &out
}

func (e *Enricher) inferTaxonomy(ctx context.Context, text string) *taxonomyFields {
	var out taxonomyFields
	if !e.modelJSON(ctx, taxonomySystemPrompt, text, "infer-taxonomy", &out) {
		return nil
	}
	return &out
}

func (e *Enricher) modelJSON(ctx context.Context, system, text, phase string, out any) bool {
	mctx, cancel := context.WithTimeout(ctx, e.modelTimeout)
	defer cancel()

	resp, err := e.ai.CreateMessage(mctx, anthropic.MessageRequest{
		Model:     e.model,
		MaxTokens: 1024,
		System:    []anthropic.SystemBlock{{Text: system}},
		Messages:  []anthropic.Message{{Role: "user", Content: "Source text:\n\n" + text}},
	})
	if err != nil {
		zap.L().Warn("model call failed", zap.String("phase", phase), zap.Error(err))
		return false
	}
	resp.Usage.LogCost(e.model, phase)

	raw := cleanJSON(extractText(resp))
	if err := json.Unmarshal([]byte(raw), out); err != nil {
		zap.L().Warn("model returned unparseable JSON",
			zap.String("phase", phase),
			zap.String("raw", truncateForLog(raw)),
			zap.Error(err))
		return false
	}
	return true
}

func extractText(resp *anthropic.MessageResponse) string {
	var b strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			b.WriteString(block.Text)
		}
	}
	return b.String()
}

// cleanJSON strips markdown code fences the model sometimes wraps
// around its JSON output.
func cleanJSON(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```json")
		s = strings.TrimPrefix(s, "```")
		s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	}
	return strings.TrimSpace(s)
}

func truncateForLog(s string) string {
	if len(s) > 200 {
		return s[:200] + "..."
	}
	return s
}
