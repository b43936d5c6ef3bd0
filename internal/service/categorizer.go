package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"go.uber.org/zap"
	"google.golang.org/api/option"
)

// Categorizer groups shop names into spending categories.
type Categorizer interface {
	Categorize(ctx context.Context, shops []string) (map[string][]string, error)
}

// AICategorizer implements Categorizer with Google Generative AI. It is an
// optional enrichment: callers run without one when no API key is set.
type AICategorizer struct {
	client *genai.Client
	model  *genai.GenerativeModel
	logger *zap.Logger
}

func NewAICategorizer(ctx context.Context, apiKey string, logger *zap.Logger) (*AICategorizer, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("API key is required for AICategorizer")
	}
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}
	model := client.GenerativeModel("gemini-2.5-flash-lite")
	model.ResponseMIMEType = "application/json"

	return &AICategorizer{client: client, model: model, logger: logger}, nil
}

// Close closes the underlying client.
func (c *AICategorizer) Close() {
	c.client.Close()
}

// Categorize maps each shop name to one or more spending categories.
// Batches of 50 keep prompts under token limits; a failed batch is logged
// and skipped so partial results still come back.
func (c *AICategorizer) Categorize(ctx context.Context, shops []string) (map[string][]string, error) {
	if len(shops) == 0 {
		return nil, nil
	}

	const batchSize = 50
	categories := make(map[string][]string)
	for i := 0; i < len(shops); i += batchSize {
		end := i + batchSize
		if end > len(shops) {
			end = len(shops)
		}
		batch, err := c.categorizeBatch(ctx, shops[i:end])
		if err != nil {
			c.logger.Warn("failed to categorize batch",
				zap.Int("from", i), zap.Int("to", end), zap.Error(err))
			continue
		}
		for k, v := range batch {
			categories[k] = v
		}
	}
	return categories, nil
}

func (c *AICategorizer) categorizeBatch(ctx context.Context, shops []string) (map[string][]string, error) {
	prompt := fmt.Sprintf(`You are a categorizer for card-linked retail offers.
Assign each of the following shops to standard spending categories (e.g., Dining, Groceries, Travel, Apparel, Electronics, Entertainment, Health & Beauty, Home, Services).
A shop can belong to multiple categories.
Return ONLY a JSON object where keys are shop names and values are arrays of category strings.
Do not include markdown formatting like `+"```json"+`.

Shops:
%s`, strings.Join(shops, "\n"))

	resp, err := c.model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return nil, fmt.Errorf("failed to generate content: %w", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return nil, fmt.Errorf("no content generated")
	}

	var result map[string][]string
	for _, part := range resp.Candidates[0].Content.Parts {
		txt, ok := part.(genai.Text)
		if !ok {
			continue
		}
		// strip markdown fences in case the model ignores instructions
		clean := strings.TrimSpace(string(txt))
		clean = strings.TrimPrefix(clean, "```json")
		clean = strings.TrimPrefix(clean, "```")
		clean = strings.TrimSuffix(clean, "```")

		if err := json.Unmarshal([]byte(clean), &result); err != nil {
			return nil, fmt.Errorf("failed to unmarshal JSON response: %w. Response: %s", err, clean)
		}
		break
	}
	return result, nil
}
