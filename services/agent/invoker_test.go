package agent

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubGateway struct {
	responses []string
	errs      []error
	calls     int
}

func (g *stubGateway) Generate(ctx context.Context, prompt string) (string, error) {
	i := g.calls
	g.calls++
	if i < len(g.errs) && g.errs[i] != nil {
		return "", g.errs[i]
	}
	if i < len(g.responses) {
		return g.responses[i], nil
	}
	return "", errors.New("exhausted")
}

type reply struct {
	Answer string `json:"answer"`
}

func testCall() Call[reply] {
	return Call[reply]{
		Agent:        "test",
		Instructions: "answer",
		Context:      map[string]string{"q": "hello"},
		Parse: func(raw []byte) (reply, error) {
			var r reply
			if err := json.Unmarshal(raw, &r); err != nil {
				return reply{}, err
			}
			if r.Answer == "" {
				return reply{}, errors.New("missing answer")
			}
			return r, nil
		},
		Fallback: func(reason string) reply {
			return reply{Answer: "fallback"}
		},
	}
}

func testOptions() Options {
	// Timeout leaves room for the full retry schedule (500ms + 1s backoff).
	return Options{
		Timeout:          5 * time.Second,
		MaxAttempts:      3,
		BreakerThreshold: 5,
		BreakerCoolOff:   60 * time.Second,
	}
}

func TestInvokeSuccess(t *testing.T) {
	gw := &stubGateway{responses: []string{`Sure! {"answer": "42"} Hope that helps.`}}
	inv := NewInvoker(gw, nil, testOptions())

	result := Invoke(context.Background(), inv, testCall())

	assert.False(t, result.Fallback)
	assert.Equal(t, "42", result.Value.Answer)
	assert.Equal(t, 1, gw.calls)
}

func TestInvokeRetriesThenSucceeds(t *testing.T) {
	gw := &stubGateway{
		errs:      []error{errors.New("transient"), nil},
		responses: []string{"", `{"answer": "ok"}`},
	}
	inv := NewInvoker(gw, nil, testOptions())

	result := Invoke(context.Background(), inv, testCall())

	assert.False(t, result.Fallback)
	assert.Equal(t, "ok", result.Value.Answer)
	assert.Equal(t, 2, gw.calls)
}

func TestInvokeExhaustsRetriesAndFallsBack(t *testing.T) {
	gw := &stubGateway{errs: []error{
		errors.New("down"), errors.New("down"), errors.New("down"), errors.New("down"),
	}}
	inv := NewInvoker(gw, nil, testOptions())

	result := Invoke(context.Background(), inv, testCall())

	assert.True(t, result.Fallback)
	assert.Equal(t, "fallback", result.Value.Answer)
	assert.Equal(t, 3, gw.calls, "bounded by MaxAttempts")
	assert.Contains(t, result.FallbackReason, "after 3 attempts")
}

func TestInvokeStopsRetryingWhenBudgetTooShortForBackoff(t *testing.T) {
	gw := &stubGateway{errs: []error{
		errors.New("down"), errors.New("down"), errors.New("down"),
	}}
	opts := testOptions()
	opts.Timeout = 200 * time.Millisecond // shorter than the first 500ms backoff

	started := time.Now()
	result := Invoke(context.Background(), NewInvoker(gw, nil, opts), testCall())

	assert.True(t, result.Fallback)
	assert.Equal(t, "fallback", result.Value.Answer)
	assert.Equal(t, 1, gw.calls, "no retry fits in the remaining budget")
	assert.Contains(t, result.FallbackReason, "after 1 attempts")
	assert.Less(t, time.Since(started), time.Second, "must not sleep past the deadline")
}

func TestInvokeUnparseableResponseFallsBack(t *testing.T) {
	tests := []struct {
		name     string
		response string
	}{
		{"no JSON at all", "I cannot help with that."},
		{"JSON missing required field", `{"other": "thing"}`},
		{"malformed JSON", `{"answer": `},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gw := &stubGateway{responses: []string{tt.response}}
			inv := NewInvoker(gw, nil, testOptions())

			result := Invoke(context.Background(), inv, testCall())

			assert.True(t, result.Fallback)
			assert.Equal(t, "fallback", result.Value.Answer)
		})
	}
}

func TestBreakerOpensAfterConsecutiveFailures(t *testing.T) {
	cb := NewCircuitBreaker(5, time.Minute)
	for i := 0; i < 4; i++ {
		cb.Failure()
		assert.True(t, cb.Allow(), "breaker must stay closed below the threshold")
	}
	cb.Failure()
	assert.False(t, cb.Allow(), "breaker must open at the threshold")
}

func TestBreakerHalfOpensAfterCoolOff(t *testing.T) {
	now := time.Now()
	cb := NewCircuitBreaker(1, time.Minute)
	cb.now = func() time.Time { return now }

	cb.Failure()
	require.False(t, cb.Allow())

	now = now.Add(time.Minute)
	assert.True(t, cb.Allow(), "cool-off elapsed, probe allowed")

	cb.Success()
	assert.True(t, cb.Allow())
}

func TestBreakerAdmitsOneProbeAtATime(t *testing.T) {
	now := time.Now()
	cb := NewCircuitBreaker(1, time.Minute)
	cb.now = func() time.Time { return now }

	cb.Failure()
	now = now.Add(time.Minute)

	require.True(t, cb.Allow(), "first caller after cool-off gets the probe")
	assert.False(t, cb.Allow(), "second caller must wait for the probe's outcome")

	cb.Failure()
	assert.False(t, cb.Allow(), "failed probe re-opens the breaker")

	now = now.Add(time.Minute)
	require.True(t, cb.Allow(), "fresh cool-off admits a new probe")
	cb.Success()
	assert.True(t, cb.Allow(), "successful probe closes the breaker")
	assert.True(t, cb.Allow())
}

func TestInvokeFailsFastWhenBreakerOpen(t *testing.T) {
	gw := &stubGateway{errs: []error{errors.New("down")}}
	opts := testOptions()
	opts.MaxAttempts = 1
	opts.BreakerThreshold = 1
	inv := NewInvoker(gw, nil, opts)

	first := Invoke(context.Background(), inv, testCall())
	require.True(t, first.Fallback)
	callsAfterFirst := gw.calls

	second := Invoke(context.Background(), inv, testCall())
	assert.True(t, second.Fallback)
	assert.Equal(t, "circuit breaker open", second.FallbackReason)
	assert.Equal(t, callsAfterFirst, gw.calls, "open breaker must not hit the gateway")
}

func TestExtractJSON(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{"bare object", `{"a": 1}`, `{"a": 1}`},
		{"fenced", "```json\n{\"a\": 1}\n```", `{"a": 1}`},
		{"wrapped in prose", `Here you go: {"a": {"b": 2}} enjoy`, `{"a": {"b": 2}}`},
		{"no object", "nothing here", ""},
		{"brace order wrong", "} {", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ExtractJSON(tt.content)
			if tt.want == "" {
				assert.Nil(t, got)
				return
			}
			assert.Equal(t, tt.want, string(got))
		})
	}
}
