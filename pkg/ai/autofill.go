package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"text/template"
)

// AutofillPrompt asks the completion service for structured cigar facts.
const AutofillPrompt = `You are a cigar encyclopedia. Provide the commonly published
specifications for this cigar.

Brand: {{.Brand}}
Name: {{.Name}}

Respond with ONLY valid JSON, no markdown:
{
  "shape": "<vitola, e.g. Robusto, Toro, Churchill>",
  "length_in": <float, inches>,
  "ring_gauge": <int>,
  "strength": "Mild" | "Mild-Medium" | "Medium" | "Medium-Full" | "Full",
  "wrapper": "<wrapper leaf>",
  "binder": "<binder leaf>",
  "filler": "<filler leaf>",
  "origin": "<country of origin>",
  "tasting_notes": ["...", "..."],
  "price_range": "<typical single-stick price range in USD>"
}
Use empty strings, 0 or [] for anything you are not confident about.`

var autofillTmpl = template.Must(template.New("autofill").Parse(AutofillPrompt))

// CigarDetails is the structured result of an autofill lookup.
type CigarDetails struct {
	Shape        string   `json:"shape"`
	LengthIn     float64  `json:"length_in"`
	RingGauge    int      `json:"ring_gauge"`
	Strength     string   `json:"strength"`
	Wrapper      string   `json:"wrapper"`
	Binder       string   `json:"binder"`
	Filler       string   `json:"filler"`
	Origin       string   `json:"origin"`
	TastingNotes []string `json:"tasting_notes"`
	PriceRange   string   `json:"price_range"`
}

// AutofillService turns brand+name into cigar specifications via the
// completion API, with a Redis cache in front of it.
type AutofillService struct {
	client *Client
	cache  *AutofillCache
}

func NewAutofillService(client *Client, cache *AutofillCache) *AutofillService {
	return &AutofillService{client: client, cache: cache}
}

// Lookup resolves cigar details. Cache hits do not count against the caller's
// AI quota; the controller only records usage on a live call.
func (s *AutofillService) Lookup(ctx context.Context, brand, name string) (*CigarDetails, bool, error) {
	if s.cache != nil {
		cached, err := s.cache.Get(ctx, brand, name)
		if err == nil && cached != nil {
			return cached, true, nil
		}
	}

	prompt, err := renderAutofillPrompt(brand, name)
	if err != nil {
		return nil, false, fmt.Errorf("failed to render autofill prompt: %w", err)
	}

	req := &ChatRequest{
		Temperature: 0.2, // factual lookup, keep it deterministic
		MaxTokens:   512,
		Messages: []ChatMessage{
			{
				Role:    "system",
				Content: "You answer with factual cigar data as strict JSON. No markdown, no explanations.",
			},
			{
				Role:    "user",
				Content: prompt,
			},
		},
	}

	resp, err := s.client.Chat(ctx, req)
	if err != nil {
		return nil, false, fmt.Errorf("autofill lookup failed: %w", err)
	}

	details, err := ParseCigarDetails(resp.GetMessageContent())
	if err != nil {
		return nil, false, fmt.Errorf("failed to parse autofill response: %w", err)
	}

	if s.cache != nil {
		if cacheErr := s.cache.Set(ctx, brand, name, details); cacheErr != nil {
			log.Printf("warning: failed to cache autofill result: %v", cacheErr)
		}
	}

	return details, false, nil
}

func renderAutofillPrompt(brand, name string) (string, error) {
	var buf bytes.Buffer
	err := autofillTmpl.Execute(&buf, struct {
		Brand string
		Name  string
	}{Brand: brand, Name: name})
	return buf.String(), err
}

// ParseCigarDetails decodes a completion reply, tolerating markdown fences
// and prose around the JSON object.
func ParseCigarDetails(content string) (*CigarDetails, error) {
	content = cleanJSONResponse(content)

	var details CigarDetails
	if err := json.Unmarshal([]byte(content), &details); err != nil {
		jsonStr := extractJSON(content)
		if jsonStr == "" {
			return nil, fmt.Errorf("no valid JSON found in response: %w", err)
		}
		if err := json.Unmarshal([]byte(jsonStr), &details); err != nil {
			return nil, fmt.Errorf("failed to parse JSON: %w", err)
		}
	}

	details.Strength = normalizeStrength(details.Strength)
	if details.TastingNotes == nil {
		details.TastingNotes = []string{}
	}
	if details.LengthIn < 0 {
		details.LengthIn = 0
	}
	if details.RingGauge < 0 {
		details.RingGauge = 0
	}

	return &details, nil
}

func cleanJSONResponse(content string) string {
	content = strings.TrimSpace(content)
	content = strings.TrimPrefix(content, "```json")
	content = strings.TrimPrefix(content, "```")
	content = strings.TrimSuffix(content, "```")
	return strings.TrimSpace(content)
}

// extractJSON pulls the first top-level JSON object out of surrounding prose.
func extractJSON(content string) string {
	start := strings.Index(content, "{")
	end := strings.LastIndex(content, "}")
	if start == -1 || end == -1 || end <= start {
		return ""
	}
	return content[start : end+1]
}

func normalizeStrength(s string) string {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "mild":
		return "Mild"
	case "mild-medium", "mild to medium":
		return "Mild-Medium"
	case "medium":
		return "Medium"
	case "medium-full", "medium to full":
		return "Medium-Full"
	case "full":
		return "Full"
	default:
		return ""
	}
}
