package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"karigar/utils"

	"go.uber.org/zap"
)

// Options tunes the invoker. The defaults mirror the configured values:
// 30s timeout, 3 attempts, breaker at 5 failures with a 60s cool-off.
type Options struct {
	Timeout          time.Duration
	MaxAttempts      int
	BreakerThreshold int
	BreakerCoolOff   time.Duration
	CacheTTL         time.Duration
}

// DefaultOptions returns the stock tuning.
func DefaultOptions() Options {
	return Options{
		Timeout:          30 * time.Second,
		MaxAttempts:      3,
		BreakerThreshold: 5,
		BreakerCoolOff:   60 * time.Second,
		CacheTTL:         5 * time.Minute,
	}
}

// Invoker runs agent calls against a Gateway with timeout, retry-with-backoff,
// a circuit breaker and an advisory response cache. One Invoker is constructed
// at process start and shared by all pipelines.
type Invoker struct {
	gateway Gateway
	breaker *CircuitBreaker
	cache   *ResponseCache
	opts    Options
}

// NewInvoker builds an Invoker. The cache may be nil.
func NewInvoker(gateway Gateway, cache *ResponseCache, opts Options) *Invoker {
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}
	if opts.MaxAttempts <= 0 {
		opts.MaxAttempts = 3
	}
	if opts.BreakerThreshold <= 0 {
		opts.BreakerThreshold = 5
	}
	if opts.BreakerCoolOff <= 0 {
		opts.BreakerCoolOff = 60 * time.Second
	}
	return &Invoker{
		gateway: gateway,
		breaker: NewCircuitBreaker(opts.BreakerThreshold, opts.BreakerCoolOff),
		cache:   cache,
		opts:    opts,
	}
}

// Call describes one agent invocation: instructions, a context payload, a
// parser for the expected response schema and the deterministic fallback used
// when the agent path fails. Pipelines compose these instead of subclassing.
type Call[T any] struct {
	Agent        string
	Instructions string
	Context      any
	Parse        func(raw []byte) (T, error)
	Fallback     func(reason string) T
}

// Result is the tagged outcome of an invocation: either a parsed agent
// response or a fallback, never an error. Downstream code branches on
// Fallback instead of duck-typing the payload.
type Result[T any] struct {
	Value          T
	Fallback       bool
	FallbackReason string
	Cached         bool
}

// Invoke executes the call. The agent path never surfaces an error: transport
// failures, timeouts, an open breaker and unparseable output all degrade to
// the call's fallback.
func Invoke[T any](ctx context.Context, inv *Invoker, call Call[T]) Result[T] {
	logger := utils.GetLogger()

	contextJSON, err := json.Marshal(call.Context)
	if err != nil {
		logger.Error("agent: failed to encode context", zap.String("agent", call.Agent), zap.Error(err))
		return fallbackResult(call, fmt.Sprintf("context encoding failed: %v", err))
	}

	if raw := inv.cache.Get(ctx, call.Agent, call.Instructions, contextJSON); raw != nil {
		if value, err := call.Parse(raw); err == nil {
			return Result[T]{Value: value, Cached: true}
		}
	}

	if !inv.breaker.Allow() {
		logger.Warn("agent: circuit breaker open, failing fast", zap.String("agent", call.Agent))
		return fallbackResult(call, "circuit breaker open")
	}

	prompt := buildPrompt(call.Instructions, contextJSON)

	callCtx, cancel := context.WithTimeout(ctx, inv.opts.Timeout)
	defer cancel()

	started := time.Now()
	content, err := generateWithRetry(callCtx, inv, prompt)
	if err != nil {
		inv.breaker.Failure()
		logger.Warn("agent: call failed, using fallback",
			zap.String("agent", call.Agent),
			zap.Duration("elapsed", time.Since(started)),
			zap.Error(err))
		return fallbackResult(call, err.Error())
	}
	inv.breaker.Success()

	raw := ExtractJSON(content)
	if raw == nil {
		logger.Warn("agent: response contained no JSON, using fallback", zap.String("agent", call.Agent))
		return fallbackResult(call, "agent response contained no JSON object")
	}

	value, err := call.Parse(raw)
	if err != nil {
		logger.Warn("agent: unparseable response, using fallback",
			zap.String("agent", call.Agent), zap.Error(err))
		return fallbackResult(call, fmt.Sprintf("unparseable agent response: %v", err))
	}

	inv.cache.Set(ctx, call.Agent, call.Instructions, contextJSON, raw)

	logger.Debug("agent: call succeeded",
		zap.String("agent", call.Agent),
		zap.Duration("elapsed", time.Since(started)))
	return Result[T]{Value: value}
}

// generateWithRetry re-attempts transient gateway failures a bounded number
// of times with doubling backoff before giving up. A backoff that would not
// fit in the remaining context budget ends the retry loop early: better to
// fall back immediately than to burn the deadline sleeping.
func generateWithRetry(ctx context.Context, inv *Invoker, prompt string) (string, error) {
	backoff := 500 * time.Millisecond
	var lastErr error

	attempts := 0
	for attempt := 1; attempt <= inv.opts.MaxAttempts; attempt++ {
		attempts = attempt
		content, err := inv.gateway.Generate(ctx, prompt)
		if err == nil {
			return content, nil
		}
		lastErr = err

		if attempt == inv.opts.MaxAttempts {
			break
		}
		if deadline, ok := ctx.Deadline(); ok && time.Until(deadline) <= backoff {
			break
		}
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(backoff):
		}
		backoff *= 2
	}
	return "", fmt.Errorf("agent call failed after %d attempts: %w", attempts, lastErr)
}

func buildPrompt(instructions string, contextJSON []byte) string {
	var sb strings.Builder
	sb.WriteString(instructions)
	sb.WriteString("\n\nContext:\n")
	sb.Write(contextJSON)
	sb.WriteString("\n\nPlease analyze and provide your response.")
	return sb.String()
}

// ExtractJSON returns the outermost {...} block of the content, or nil when
// none is present. Models often wrap JSON in prose or code fences.
func ExtractJSON(content string) []byte {
	start := strings.IndexByte(content, '{')
	end := strings.LastIndexByte(content, '}')
	if start == -1 || end <= start {
		return nil
	}
	return []byte(content[start : end+1])
}

func fallbackResult[T any](call Call[T], reason string) Result[T] {
	return Result[T]{
		Value:          call.Fallback(reason),
		Fallback:       true,
		FallbackReason: reason,
	}
}
