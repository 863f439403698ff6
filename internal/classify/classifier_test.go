package classify

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/helix-group/trials-cli/pkg/llm"
)

// fakeClient returns canned responses in order, then repeats the last one.
type fakeClient struct {
	responses []string
	err       error
	calls     int
}

func (f *fakeClient) CreateMessage(_ context.Context, _ llm.MessageRequest) (*llm.MessageResponse, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	i := f.calls - 1
	if i >= len(f.responses) {
		i = len(f.responses) - 1
	}
	return &llm.MessageResponse{Text: f.responses[i]}, nil
}

var indicationVocab = []string{"Oncology", "Autoimmune", "Infectious Diseases", "Cardiovascular"}

func TestClassify_ValidResponse(t *testing.T) {
	fc := &fakeClient{responses: []string{`["Oncology", "Cardiovascular"]`}}
	c := New(fc, "test-model")

	got := c.Classify(context.Background(), "indication area", "a tumor study", indicationVocab)
	assert.Equal(t, []string{"Oncology", "Cardiovascular"}, got)
	assert.Equal(t, 1, fc.calls)
}

func TestClassify_EmptyArray(t *testing.T) {
	fc := &fakeClient{responses: []string{`[]`}}
	c := New(fc, "test-model")

	got := c.Classify(context.Background(), "indication area", "unrelated text", indicationVocab)
	assert.Empty(t, got)
	assert.Equal(t, 1, fc.calls)
}

func TestClassify_ToleratesSurroundingProse(t *testing.T) {
	fc := &fakeClient{responses: []string{"Here is the answer:\n[\"Oncology\"]\nThanks!"}}
	c := New(fc, "test-model")

	got := c.Classify(context.Background(), "indication area", "a tumor study", indicationVocab)
	assert.Equal(t, []string{"Oncology"}, got)
}

func TestClassify_RetriesOnUnparseable(t *testing.T) {
	fc := &fakeClient{responses: []string{"not json", `["Oncology"]`}}
	c := New(fc, "test-model")

	got := c.Classify(context.Background(), "indication area", "a tumor study", indicationVocab)
	assert.Equal(t, []string{"Oncology"}, got)
	assert.Equal(t, 2, fc.calls)
}

func TestClassify_RetriesOnUnknownCategory(t *testing.T) {
	fc := &fakeClient{responses: []string{`["Astrology"]`, `["Autoimmune"]`}}
	c := New(fc, "test-model")

	got := c.Classify(context.Background(), "indication area", "an immune study", indicationVocab)
	assert.Equal(t, []string{"Autoimmune"}, got)
	assert.Equal(t, 2, fc.calls)
}

func TestClassify_ExhaustedRetriesYieldEmpty(t *testing.T) {
	fc := &fakeClient{responses: []string{"garbage"}}
	c := New(fc, "test-model")

	got := c.Classify(context.Background(), "indication area", "a study", indicationVocab)
	assert.Empty(t, got)
	assert.Equal(t, maxValidationRetries, fc.calls)
}

func TestClassify_TransportErrorNeverFatal(t *testing.T) {
	fc := &fakeClient{err: errors.New("connection refused")}
	c := New(fc, "test-model")

	got := c.Classify(context.Background(), "indication area", "a study", indicationVocab)
	assert.Empty(t, got)
	// The LLM client owns transport retries; the classifier must not
	// re-prompt on a transport failure.
	assert.Equal(t, 1, fc.calls)
}

func TestClassify_EmptyInputSkipsLLM(t *testing.T) {
	fc := &fakeClient{responses: []string{`["Oncology"]`}}
	c := New(fc, "test-model")

	assert.Empty(t, c.Classify(context.Background(), "indication area", "   ", indicationVocab))
	assert.Empty(t, c.Classify(context.Background(), "indication area", "a study", nil))
	assert.Equal(t, 0, fc.calls)
}

func TestParseCategories(t *testing.T) {
	got, ok := parseCategories(`["a","b"]`)
	assert.True(t, ok)
	assert.Equal(t, []string{"a", "b"}, got)

	_, ok = parseCategories("no array here")
	assert.False(t, ok)

	_, ok = parseCategories(`[1, 2]`)
	assert.False(t, ok)
}
