// Package policy decides which follow-up suggestion, if any, is appended to
// a reply. The rules are Rego so hotels can swap them without a rebuild.
package policy

import (
	"context"
	_ "embed"
	"fmt"
	"os"

	"hotel_concierge/src/model"

	"github.com/open-policy-agent/opa/v1/rego"
)

const upsellQuery = "data.concierge.upsell.suggestion"

//go:embed upsell.rego
var DefaultUpsellPolicy string

// UpsellInput is the document the policy sees as input.
type UpsellInput struct {
	Intent         model.IntentName `json:"intent"`
	Sentiment      model.Sentiment  `json:"sentiment"`
	RoomBooked     bool             `json:"room_booked"`
	SpaInquired    bool             `json:"spa_inquired"`
	DiningInquired bool             `json:"dining_inquired"`
}

func (in UpsellInput) document() map[string]any {
	return map[string]any{
		"intent":          string(in.Intent),
		"sentiment":       string(in.Sentiment),
		"room_booked":     in.RoomBooked,
		"spa_inquired":    in.SpaInquired,
		"dining_inquired": in.DiningInquired,
	}
}

// UpsellEngine evaluates a prepared upsell policy.
type UpsellEngine struct {
	query rego.PreparedEvalQuery
}

// NewUpsellEngine compiles policyContent. An empty string selects the
// built-in policy.
func NewUpsellEngine(ctx context.Context, policyContent string) (*UpsellEngine, error) {
	if policyContent == "" {
		policyContent = DefaultUpsellPolicy
	}
	r := rego.New(
		rego.Query(upsellQuery),
		rego.Module("upsell.rego", policyContent),
	)

	query, err := r.PrepareForEval(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare upsell policy: %w", err)
	}
	return &UpsellEngine{query: query}, nil
}

// LoadUpsellEngine compiles the policy file at path, or the built-in policy
// when path is empty.
func LoadUpsellEngine(ctx context.Context, path string) (*UpsellEngine, error) {
	if path == "" {
		return NewUpsellEngine(ctx, "")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading upsell policy: %w", err)
	}
	return NewUpsellEngine(ctx, string(data))
}

// Suggest returns the locale key of the suggestion to append, or "" for none.
func (e *UpsellEngine) Suggest(ctx context.Context, in UpsellInput) (string, error) {
	results, err := e.query.Eval(ctx, rego.EvalInput(in.document()))
	if err != nil {
		return "", fmt.Errorf("failed to evaluate upsell policy: %w", err)
	}
	if len(results) == 0 || len(results[0].Expressions) == 0 {
		return "", nil
	}

	switch v := results[0].Expressions[0].Value.(type) {
	case string:
		return v, nil
	case nil:
		return "", nil
	default:
		return "", fmt.Errorf("upsell policy returned %T, want string", v)
	}
}
