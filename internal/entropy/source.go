// Package entropy supplies randomness for contest rolls. Detection and
// interdiction outcomes matter to players, so rolls draw from random.org
// when an API key is configured, with crypto/rand as the fallback.
package entropy

import (
	"bytes"
	"crypto/rand"
	"encoding/binary"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"time"
)

const (
	refillBatch  = 100
	refillAtMost = 10 // Refill when the pool drops below this
)

// Source provides uniform random numbers backed by a pooled random.org
// client. A nil Source is valid and uses crypto/rand only.
type Source struct {
	apiKey string
	client *http.Client

	mu   sync.Mutex
	pool []float64
}

// NewSource creates a pooled source. An empty apiKey returns nil, which
// still works via the crypto/rand path.
func NewSource(apiKey string) *Source {
	if apiKey == "" {
		return nil
	}
	return &Source{
		apiKey: apiKey,
		client: &http.Client{Timeout: 15 * time.Second},
	}
}

// Float returns a uniform float64 in [0, 1).
func (s *Source) Float() float64 {
	if s == nil {
		return cryptoFloat()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.pool) < refillAtMost {
		s.refill()
	}
	if len(s.pool) == 0 {
		return cryptoFloat()
	}

	v := s.pool[0]
	s.pool = s.pool[1:]
	return v
}

// Roll returns a uniform integer in [1, sides]. Sides below 1 roll 1.
func (s *Source) Roll(sides int) int {
	if sides < 1 {
		return 1
	}
	n := 1 + int(s.Float()*float64(sides))
	if n > sides {
		n = sides
	}
	return n
}

func (s *Source) refill() {
	req := map[string]any{
		"jsonrpc": "2.0",
		"method":  "generateDecimalFractions",
		"params": map[string]any{
			"apiKey":        s.apiKey,
			"n":             refillBatch,
			"decimalPlaces": 6,
		},
		"id": 1,
	}

	body, err := json.Marshal(req)
	if err != nil {
		slog.Debug("entropy refill marshal failed", "error", err)
		return
	}

	resp, err := s.client.Post("https://api.random.org/json-rpc/4/invoke", "application/json", bytes.NewReader(body))
	if err != nil {
		slog.Debug("entropy refill fetch failed", "error", err)
		return
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		slog.Debug("entropy refill read failed", "error", err)
		return
	}

	var result struct {
		Result struct {
			Random struct {
				Data []float64 `json:"data"`
			} `json:"random"`
		} `json:"result"`
		Error *struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(raw, &result); err != nil {
		slog.Debug("entropy refill parse failed", "error", err)
		return
	}
	if result.Error != nil {
		slog.Debug("entropy refill API error", "error", result.Error.Message)
		return
	}

	s.pool = append(s.pool, result.Result.Random.Data...)
	slog.Debug("entropy pool refilled", "count", len(result.Result.Random.Data))
}

// cryptoFloat generates a uniform float64 in [0, 1) from crypto/rand,
// using 53 bits for exact representability.
func cryptoFloat() float64 {
	var buf [8]byte
	if _, err := rand.Read(buf[:]); err != nil {
		// Should never happen; 0.5 is the safe midpoint.
		return 0.5
	}
	n := binary.LittleEndian.Uint64(buf[:]) >> 11
	return float64(n) / float64(1<<53)
}
