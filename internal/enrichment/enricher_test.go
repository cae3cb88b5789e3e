package enrichment

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/sony/gobreaker/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeGenerator struct {
	reply string
	err   error
	calls int
}

func (f *fakeGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	f.calls++
	return f.reply, f.err
}

func (f *fakeGenerator) Name() string { return "fake" }

func TestEnrichSuccess(t *testing.T) {
	gen := &fakeGenerator{reply: validProfileJSON}
	p, err := NewEnricher(gen, Options{}).Enrich(context.Background(), Input{Name: "Writer"})

	require.NoError(t, err)
	assert.Equal(t, "Writing", p.Category)
	assert.Equal(t, 1, gen.calls)
}

func TestEnrichInvalidOutput(t *testing.T) {
	gen := &fakeGenerator{reply: "no json here"}
	_, err := NewEnricher(gen, Options{}).Enrich(context.Background(), Input{Name: "Writer"})
	assert.ErrorIs(t, err, ErrInvalidProfile)
}

func TestEnrichBreakerOpensAfterFailures(t *testing.T) {
	gen := &fakeGenerator{err: errors.New("upstream down")}
	e := NewEnricher(gen, Options{BreakerFailures: 2, BreakerCooldown: time.Hour})

	for i := 0; i < 2; i++ {
		_, err := e.Enrich(context.Background(), Input{Name: "Writer"})
		assert.ErrorContains(t, err, "upstream down")
	}

	_, err := e.Enrich(context.Background(), Input{Name: "Writer"})
	assert.ErrorIs(t, err, gobreaker.ErrOpenState)
	assert.Equal(t, 2, gen.calls)
}

func TestEnrichHonoursCancelledContextWhilePaced(t *testing.T) {
	gen := &fakeGenerator{reply: validProfileJSON}
	e := NewEnricher(gen, Options{PerMinute: 1})

	_, err := e.Enrich(context.Background(), Input{Name: "first"})
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err = e.Enrich(ctx, Input{Name: "second"})
	assert.Error(t, err)
	assert.Equal(t, 1, gen.calls)
}

func TestOpenAIGenerator(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"id": "chatcmpl-1",
			"object": "chat.completion",
			"created": 1700000000,
			"model": "gpt-4o-mini",
			"choices": [{
				"index": 0,
				"finish_reason": "stop",
				"message": {"role": "assistant", "content": "{\"description\":\"d\",\"short_description\":\"s\"}"}
			}]
		}`))
	}))
	defer srv.Close()

	gen := NewOpenAIGenerator("test-key", "", srv.URL+"/", srv.Client())
	text, err := gen.Generate(context.Background(), "prompt")
	require.NoError(t, err)

	p, err := ParseProfile(text)
	require.NoError(t, err)
	assert.Equal(t, "d", p.Description)
	assert.Equal(t, ProviderOpenAI, gen.Name())
}

func TestNewGenerator(t *testing.T) {
	gen, err := NewGenerator(context.Background(), ProviderConfig{Provider: ProviderNone}, nil)
	require.NoError(t, err)
	assert.Nil(t, gen)

	gen, err = NewGenerator(context.Background(), ProviderConfig{Provider: ProviderOpenAI, APIKey: "k"}, nil)
	require.NoError(t, err)
	assert.Equal(t, ProviderOpenAI, gen.Name())

	_, err = NewGenerator(context.Background(), ProviderConfig{Provider: "llama"}, nil)
	assert.Error(t, err)
}
