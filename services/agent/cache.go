package agent

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"time"

	"github.com/go-redis/redis/v8"
)

// ResponseCache caches successful agent responses in Redis, keyed by agent
// name, instructions and context payload. The cache is advisory: lookup and
// store errors are swallowed by the invoker.
type ResponseCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewResponseCache builds a ResponseCache. A nil client disables caching.
func NewResponseCache(client *redis.Client, ttl time.Duration) *ResponseCache {
	return &ResponseCache{client: client, ttl: ttl}
}

func cacheKey(agentName, instructions string, contextJSON []byte) string {
	h := sha256.New()
	h.Write([]byte(agentName))
	h.Write([]byte{0})
	h.Write([]byte(instructions))
	h.Write([]byte{0})
	h.Write(contextJSON)
	return "agent:response:" + hex.EncodeToString(h.Sum(nil))
}

// Get returns the cached raw JSON response for the call, or nil on miss.
func (c *ResponseCache) Get(ctx context.Context, agentName, instructions string, contextJSON []byte) []byte {
	if c == nil || c.client == nil {
		return nil
	}
	raw, err := c.client.Get(ctx, cacheKey(agentName, instructions, contextJSON)).Bytes()
	if err != nil {
		return nil
	}
	if !json.Valid(raw) {
		return nil
	}
	return raw
}

// Set stores the raw JSON response for the call.
func (c *ResponseCache) Set(ctx context.Context, agentName, instructions string, contextJSON, response []byte) {
	if c == nil || c.client == nil {
		return
	}
	c.client.Set(ctx, cacheKey(agentName, instructions, contextJSON), response, c.ttl)
}
