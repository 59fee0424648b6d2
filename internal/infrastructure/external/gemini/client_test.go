package gemini

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"

	"github.com/gaspar-hub/academic-hub/internal/application/tutor"
	"github.com/gaspar-hub/academic-hub/internal/domain/shared"
	"github.com/gaspar-hub/academic-hub/pkg/retry"
)

type fakeModels struct {
	errs     []error
	reply    string
	calls    int
	contents []*genai.Content
	config   *genai.GenerateContentConfig
	model    string
}

func (f *fakeModels) GenerateContent(_ context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	f.calls++
	f.model = model
	f.contents = contents
	f.config = config
	if len(f.errs) > 0 {
		err := f.errs[0]
		f.errs = f.errs[1:]
		return nil, err
	}
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{Content: genai.NewContentFromText(f.reply, genai.RoleModel)}},
	}, nil
}

func testClient(models *fakeModels, threshold int) *Client {
	c := newClient(models, Config{MaxRetries: 3, BreakerThreshold: threshold, BreakerTimeout: time.Hour})
	c.retrier = retry.TutorRetrier(3, retry.WithInitialDelay(time.Millisecond), retry.WithMaxDelay(time.Millisecond))
	return c
}

var history = []tutor.Turn{
	{Role: tutor.RoleModel, Text: tutor.Greeting},
	{Role: tutor.RoleUser, Text: "O que é uma função afim?"},
}

func TestNew_RequiresAPIKey(t *testing.T) {
	_, err := New(context.Background(), Config{})
	assert.ErrorIs(t, err, ErrMissingAPIKey)
}

func TestAsk(t *testing.T) {
	models := &fakeModels{reply: "É uma função do tipo f(x) = ax + b."}
	c := testClient(models, 3)

	reply, err := c.Ask(context.Background(), history, "instrução")
	require.NoError(t, err)

	assert.Equal(t, "É uma função do tipo f(x) = ax + b.", reply)
	assert.Equal(t, DefaultModel, models.model)
	require.Len(t, models.contents, 2)
	assert.Equal(t, genai.RoleModel, models.contents[0].Role)
	assert.Equal(t, genai.RoleUser, models.contents[1].Role)
	assert.Equal(t, "instrução", models.config.SystemInstruction.Parts[0].Text)
}

func TestAsk_RetriesTransientErrors(t *testing.T) {
	models := &fakeModels{
		errs:  []error{genai.APIError{Code: http.StatusServiceUnavailable, Message: "overloaded"}},
		reply: "ok",
	}
	c := testClient(models, 3)

	reply, err := c.Ask(context.Background(), history, "")
	require.NoError(t, err)

	assert.Equal(t, "ok", reply)
	assert.Equal(t, 2, models.calls)
}

func TestAsk_DoesNotRetryClientErrors(t *testing.T) {
	models := &fakeModels{errs: []error{genai.APIError{Code: http.StatusBadRequest, Message: "bad"}}}
	c := testClient(models, 3)

	_, err := c.Ask(context.Background(), history, "")

	require.Error(t, err)
	assert.ErrorIs(t, err, shared.ErrExternalService)
	assert.Equal(t, 1, models.calls)
}

func TestAsk_BreakerOpens(t *testing.T) {
	boom := errors.New("connection refused")
	models := &fakeModels{errs: []error{boom, boom}}
	c := testClient(models, 2)
	ctx := context.Background()

	_, _ = c.Ask(ctx, history, "")
	_, _ = c.Ask(ctx, history, "")
	_, err := c.Ask(ctx, history, "")

	assert.ErrorIs(t, err, shared.ErrServiceUnavailable)
	assert.Equal(t, 2, models.calls, "open breaker rejects without calling the model")
}
