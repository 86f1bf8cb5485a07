// Package bedrock implements domain.NutritionEstimator on Amazon Bedrock
// using the Anthropic messages format.
package bedrock

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"

	"nutrisnap/internal/domain"
)

const (
	anthropicVersion = "bedrock-2023-05-31"
	maxTokens        = 1500
)

// ErrNoEstimate is returned when the model reply carries no usable JSON.
var ErrNoEstimate = errors.New("model returned no estimate")

// API is the subset of the Bedrock runtime client used here.
type API interface {
	InvokeModel(ctx context.Context, in *bedrockruntime.InvokeModelInput, optFns ...func(*bedrockruntime.Options)) (*bedrockruntime.InvokeModelOutput, error)
}

// Estimator asks a hosted model for a meal's nutrition.
type Estimator struct {
	client  API
	modelID string
}

var _ domain.NutritionEstimator = (*Estimator)(nil)

// New creates an Estimator for modelID.
func New(client API, modelID string) *Estimator {
	return &Estimator{client: client, modelID: modelID}
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type request struct {
	AnthropicVersion string    `json:"anthropic_version"`
	MaxTokens        int       `json:"max_tokens"`
	Messages         []message `json:"messages"`
}

type response struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
}

type analysis struct {
	Nutrition      map[string]any `json:"nutrition"`
	Insights       []string       `json:"insights"`
	Micronutrients []string       `json:"micronutrients_present"`
}

// Estimate returns nutrition, tips and micronutrients for the named foods.
func (e *Estimator) Estimate(ctx context.Context, foods []string) (*domain.Estimate, error) {
	body, err := json.Marshal(request{
		AnthropicVersion: anthropicVersion,
		MaxTokens:        maxTokens,
		Messages:         []message{{Role: "user", Content: Prompt(foods)}},
	})
	if err != nil {
		return nil, err
	}

	out, err := e.client.InvokeModel(ctx, &bedrockruntime.InvokeModelInput{
		ModelId:     aws.String(e.modelID),
		ContentType: aws.String("application/json"),
		Accept:      aws.String("application/json"),
		Body:        body,
	})
	if err != nil {
		return nil, fmt.Errorf("invoke %s: %w", e.modelID, err)
	}
	return ParseReply(out.Body)
}

// Prompt builds the estimation request for the named foods.
func Prompt(foods []string) string {
	var b strings.Builder
	b.WriteString("Analyze meal: ")
	b.WriteString(strings.Join(foods, ", "))
	b.WriteString(`.

Return JSON:
{
  "nutrition": {"calories": <num>, "protein": <g>, "carbs": <g>, "fat": <g>, "fiber": <g>, "sugar": <g>, "vitaminC": <mg>, "iron": <mg>, "calcium": <mg>, "omega3": <g>, "potassium": <mg>},
  "insights": [<3 tips>],
  "micronutrients_present": [<list>]
}`)
	return b.String()
}

// ParseReply decodes an Anthropic messages response body into an Estimate.
func ParseReply(body []byte) (*domain.Estimate, error) {
	var resp response
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("decode reply: %w", err)
	}
	var text string
	for _, c := range resp.Content {
		if c.Type == "" || c.Type == "text" {
			text = c.Text
			break
		}
	}
	start, end := strings.IndexByte(text, '{'), strings.LastIndexByte(text, '}')
	if start < 0 || end <= start {
		return nil, ErrNoEstimate
	}

	var a analysis
	dec := json.NewDecoder(bytes.NewReader([]byte(text[start : end+1])))
	dec.UseNumber()
	if err := dec.Decode(&a); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNoEstimate, err)
	}
	if a.Nutrition == nil {
		return nil, ErrNoEstimate
	}
	n, err := domain.ParseNutrition(a.Nutrition)
	if err != nil {
		return nil, err
	}
	if a.Micronutrients == nil {
		a.Micronutrients = []string{}
	}
	return &domain.Estimate{Nutrition: n, Insights: a.Insights, Micronutrients: a.Micronutrients}, nil
}
