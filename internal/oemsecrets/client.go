// Package oemsecrets talks to the part-search API and classifies its answers.
package oemsecrets

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"
	"unicode/utf8"

	"partpulse/internal"
	"partpulse/internal/config"
	"partpulse/internal/logger"
	"partpulse/internal/util"
)

const (
	CountryCode = "DE"
	Currency    = "EUR"
)

type Client struct {
	baseURL     string
	credentials []string
	httpClient  *http.Client
	limiter     *RateLimiter
	log         *slog.Logger
}

func NewClient(cfg config.Config, log *slog.Logger) *Client {
	if log == nil {
		log = logger.Discard()
	}
	creds := make([]string, len(cfg.APIKeys))
	copy(creds, cfg.APIKeys)
	return &Client{
		baseURL:     cfg.APIBaseURL,
		credentials: creds,
		httpClient:  &http.Client{Timeout: time.Duration(cfg.APITimeoutMs) * time.Millisecond},
		limiter:     NewRateLimiter(cfg.APIRateLimitRPS),
		log:         log,
	}
}

// Lookup searches partNumber with the configured credentials.
func (c *Client) Lookup(ctx context.Context, partNumber string) internal.LookupResult {
	return c.LookupWith(ctx, partNumber, c.credentials)
}

// LookupWith tries credentials in order. A 401 moves on to the next one;
// every other answer ends the lookup.
func (c *Client) LookupWith(ctx context.Context, partNumber string, credentials []string) internal.LookupResult {
	for _, key := range credentials {
		res, next := c.attempt(ctx, partNumber, key)
		if next {
			c.log.Warn("api key exhausted", "part_number", partNumber, "key", maskKey(key))
			continue
		}
		return res
	}
	c.log.Warn("all api keys exhausted", "part_number", partNumber, "keys", len(credentials))
	return internal.LookupResult{
		Status: internal.LookupCredentialsExhausted,
		Err:    fmt.Errorf("all %d api keys exhausted", len(credentials)),
	}
}

// attempt issues one request. next reports that the credential is exhausted
// and the caller should try the following one.
func (c *Client) attempt(ctx context.Context, partNumber, key string) (res internal.LookupResult, next bool) {
	reqURL, err := c.buildURL(partNumber, key)
	if err != nil {
		return transient(0, err), false
	}

	if err := c.limiter.WaitTurn(ctx); err != nil {
		return transient(0, err), false
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return transient(0, err), false
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return transient(0, err), false
	}
	body, readErr := io.ReadAll(resp.Body)
	_ = resp.Body.Close()

	switch classify(resp.StatusCode) {
	case outcomeNextCredential:
		return internal.LookupResult{}, true
	case outcomeNotFound:
		return internal.LookupResult{
			Status:     internal.LookupNotFound,
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("no data for part: status=%d", resp.StatusCode),
		}, false
	case outcomeTransient:
		return transient(resp.StatusCode, fmt.Errorf("api error: status=%d body=%s", resp.StatusCode, truncate(body, 200))), false
	}

	if readErr != nil {
		return transient(resp.StatusCode, readErr), false
	}
	payload, err := decodePayload(body)
	if err != nil {
		return transient(resp.StatusCode, fmt.Errorf("decode response: %w", err)), false
	}
	return internal.LookupResult{Status: internal.LookupSuccess, Payload: payload, StatusCode: resp.StatusCode}, false
}

type outcome int

const (
	outcomeSuccess outcome = iota
	outcomeNextCredential
	outcomeNotFound
	outcomeTransient
)

func classify(status int) outcome {
	switch {
	case status >= 200 && status < 300:
		return outcomeSuccess
	case status == http.StatusUnauthorized:
		return outcomeNextCredential
	case status == http.StatusBadRequest || status == http.StatusNotFound:
		return outcomeNotFound
	default:
		return outcomeTransient
	}
}

func (c *Client) buildURL(partNumber, key string) (string, error) {
	u, err := url.Parse(strings.TrimSpace(c.baseURL))
	if err != nil {
		return "", err
	}
	q := u.Query()
	q.Set("apiKey", key)
	q.Set("searchTerm", partNumber)
	q.Set("countryCode", CountryCode)
	q.Set("currency", Currency)
	u.RawQuery = q.Encode()
	return u.String(), nil
}

func decodePayload(body []byte) (map[string]any, error) {
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	var payload map[string]any
	if err := dec.Decode(&payload); err != nil {
		return nil, err
	}
	if payload == nil {
		return nil, errors.New("empty response body")
	}
	return payload, nil
}

func transient(status int, err error) internal.LookupResult {
	return internal.LookupResult{
		Status:     internal.LookupTransientError,
		StatusCode: status,
		Err:        errors.New(util.RedactSecrets(err.Error())),
	}
}

// truncate cuts body to at most limit bytes without splitting a rune.
func truncate(body []byte, limit int) string {
	s := strings.TrimSpace(string(body))
	if len(s) <= limit {
		return s
	}
	cut := limit
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + "..."
}

func maskKey(key string) string {
	if len(key) <= 4 {
		return "****"
	}
	return "****" + key[len(key)-4:]
}
