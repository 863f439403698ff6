// Package classify assigns trials and companies to controlled category
// vocabularies (indication, modality, outcome, primary purpose, disease
// condition) by prompting an LLM for a schema-constrained JSON response.
package classify

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/helix-group/trials-cli/pkg/llm"
)

// maxValidationRetries bounds re-prompting when the model's answer fails to
// parse or contains categories outside the vocabulary. Transport errors are
// retried inside the LLM client, not here.
const maxValidationRetries = 3

// Classifier queries an LLM to pick categories from a fixed vocabulary.
// Stateless apart from its configuration; safe for concurrent use.
type Classifier struct {
	client    llm.Client
	model     string
	maxTokens int64
}

// Option adjusts Classifier construction.
type Option func(*Classifier)

// WithMaxTokens caps the model's response length. Values below 1 keep the
// default.
func WithMaxTokens(n int64) Option {
	return func(c *Classifier) {
		if n > 0 {
			c.maxTokens = n
		}
	}
}

// New creates a Classifier speaking to the given model.
func New(client llm.Client, model string, opts ...Option) *Classifier {
	c := &Classifier{client: client, model: model, maxTokens: 1024}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Classify returns the subset of vocab supported by the text. The model is
// instructed to answer with a bare JSON array of vocabulary strings; an
// answer that fails to parse or names an unknown category is re-prompted up
// to maxValidationRetries times, after which the result is empty. Transport
// errors are not re-prompted: the LLM client retries those internally, so an
// error surfacing here ends the record with an empty result. A failed
// classification is never fatal.
func (c *Classifier) Classify(ctx context.Context, kind, text string, vocab []string) []string {
	if strings.TrimSpace(text) == "" || len(vocab) == 0 {
		return nil
	}

	system := fmt.Sprintf(
		"You are an expert in the pharmaceutical and biotech domains. "+
			"You are given a clinical trial or company description and must identify every relevant %s. "+
			"Respond with a JSON array of strings drawn only from this list: %s. "+
			"If nothing matches, respond with []. Output only the JSON array, no commentary.",
		kind, strings.Join(vocab, ", "),
	)

	req := llm.MessageRequest{
		Model:     c.model,
		MaxTokens: c.maxTokens,
		System:    system,
		Messages:  []llm.Message{{Role: "user", Content: "Description:\n" + text}},
	}

	for attempt := 0; attempt < maxValidationRetries; attempt++ {
		resp, err := c.client.CreateMessage(ctx, req)
		if err != nil {
			zap.L().Warn("classify: llm call failed",
				zap.String("kind", kind),
				zap.Error(err),
			)
			return nil
		}
		resp.Usage.LogCost(c.model, "classify_"+kind)

		categories, ok := parseCategories(resp.Text)
		if ok && validate(categories, vocab) {
			return categories
		}
		zap.L().Warn("classify: response failed validation",
			zap.String("kind", kind),
			zap.Int("attempt", attempt+1),
			zap.String("response", truncate(resp.Text, 200)),
		)
	}
	return nil
}

// parseCategories extracts a JSON array of strings from the model output,
// tolerating stray prose around the array.
func parseCategories(text string) ([]string, bool) {
	start := strings.IndexByte(text, '[')
	end := strings.LastIndexByte(text, ']')
	if start < 0 || end <= start {
		return nil, false
	}
	var out []string
	if err := json.Unmarshal([]byte(text[start:end+1]), &out); err != nil {
		return nil, false
	}
	return out, true
}

// validate checks that every returned category is in the vocabulary.
func validate(categories, vocab []string) bool {
	allowed := make(map[string]struct{}, len(vocab))
	for _, v := range vocab {
		allowed[v] = struct{}{}
	}
	for _, c := range categories {
		if _, ok := allowed[c]; !ok {
			return false
		}
	}
	return true
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "…"
}
