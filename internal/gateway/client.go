// Copyright (c) 2025 Egghead.AI
// SPDX-License-Identifier: AGPL-3.0-or-later

package gateway

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/egghead-ai/egghead-tui/internal/model"
)

// Configuration constants for the chat backend.
const (
	// DefaultBaseURL is where the development backend listens.
	DefaultBaseURL = "http://127.0.0.1:8000"

	// DefaultTimeout is the transport timeout for backend requests. There is
	// no per-call timeout policy beyond this; a request runs to completion
	// or failure.
	DefaultTimeout = 60 * time.Second

	// MaxResponseSize caps response bodies to keep a misbehaving backend
	// from exhausting memory.
	MaxResponseSize = 10 * 1024 * 1024 // 10MB

	// FallbackReplyText is used when the backend returns neither a
	// "response" nor a "reply" field.
	FallbackReplyText = "No reply returned."
)

// sharedHTTPClient pools connections across all backend requests.
var sharedHTTPClient = &http.Client{
	Transport: &http.Transport{
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 10,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 10 * time.Second,
		TLSClientConfig: &tls.Config{
			MinVersion: tls.VersionTLS12,
		},
	},
	Timeout: DefaultTimeout,
}

// =============================================================================
// WIRE TYPES
// =============================================================================

// Preferences shape the backend's answer: tone, depth, and whether to pull
// in curated campus sources and citations.
type Preferences struct {
	Tone           string `json:"tone"`
	Depth          string `json:"depth"`
	UseUCDSources  bool   `json:"use_ucd_sources"`
	ShowReferences bool   `json:"show_references"`
	Model          string `json:"model"`
}

// DefaultPreferences returns the defaults every observed client shipped.
func DefaultPreferences() Preferences {
	return Preferences{
		Tone:           "friendly",
		Depth:          "medium",
		UseUCDSources:  true,
		ShowReferences: true,
		Model:          "hf:mistralai/Mistral-7B-Instruct",
	}
}

// Payload is one outbound chat request.
type Payload struct {
	Message     string
	SessionID   string
	History     []model.Turn
	Preferences Preferences
}

// chatRequest is the JSON body for POST /chat.
type chatRequest struct {
	Message             string       `json:"message"`
	SessionID           string       `json:"session_id,omitempty"`
	ConversationHistory []model.Turn `json:"conversation_history,omitempty"`
	Preferences         *Preferences `json:"preferences,omitempty"`
}

// chatResponse accepts both backend generations: the first returns the text
// under "reply", the second under "response". Pointers distinguish an absent
// field from an empty string.
type chatResponse struct {
	Reply      *string           `json:"reply"`
	Response   *string           `json:"response"`
	References []model.Reference `json:"references"`
	SessionID  string            `json:"session_id"`
	UsedModel  string            `json:"used_model"`
	Safety     map[string]any    `json:"safety"`
}

// Reply is the normalized result of a chat call.
type Reply struct {
	Text       string
	References []model.Reference
	SessionID  string
	UsedModel  string
}

// Resource is one curated campus resource from GET /resources.
type Resource struct {
	ID    string   `json:"id"`
	Title string   `json:"title"`
	Tags  []string `json:"tags"`
}

// =============================================================================
// ERRORS
// =============================================================================

// APIError is a failed backend call: transport-level success but a
// non-success status or an unusable body.
type APIError struct {
	Status  int
	Message string
}

// Error implements the error interface.
func (e *APIError) Error() string {
	return e.Message
}

// =============================================================================
// CLIENT
// =============================================================================

// Client talks to one configured chat backend.
type Client struct {
	baseURL    string
	httpClient *http.Client
	userAgent  string
}

// NewClient creates a client for the given base URL. An empty URL falls
// back to the development default.
func NewClient(baseURL string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: sharedHTTPClient,
		userAgent:  "egghead-tui/1.0",
	}
}

// WithTimeout sets the request timeout, replacing the shared pooled client
// with a per-instance one.
func (c *Client) WithTimeout(timeout time.Duration) *Client {
	c.httpClient = &http.Client{
		Transport: sharedHTTPClient.Transport,
		Timeout:   timeout,
	}
	return c
}

// WithHTTPClient substitutes the underlying HTTP client.
func (c *Client) WithHTTPClient(hc *http.Client) *Client {
	c.httpClient = hc
	return c
}

// BaseURL returns the configured backend base URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// =============================================================================
// CHAT
// =============================================================================

// Call sends one chat request and returns the normalized reply.
//
// No retries: the caller surfaces failures to the user as a recoverable
// assistant message and the conversation remains sendable.
func (c *Client) Call(ctx context.Context, payload Payload) (*Reply, error) {
	reqBody := chatRequest{
		Message:             payload.Message,
		SessionID:           payload.SessionID,
		ConversationHistory: payload.History,
		Preferences:         &payload.Preferences,
	}

	body, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to encode chat request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build chat request: %w", err)
	}
	c.setHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("could not reach backend: %w", err)
	}
	defer resp.Body.Close()

	data, err := readBody(resp)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg := strings.TrimSpace(string(data))
		if msg == "" {
			msg = fmt.Sprintf("Request failed (%d)", resp.StatusCode)
		}
		return nil, &APIError{Status: resp.StatusCode, Message: msg}
	}

	var parsed chatResponse
	if err := json.Unmarshal(data, &parsed); err != nil {
		return nil, &APIError{Status: resp.StatusCode, Message: "invalid response from backend"}
	}

	return normalize(parsed), nil
}

// normalize resolves the reply-field shim and defaults missing fields.
// Precedence matches the original client: response, then reply, then the
// fallback text.
func normalize(parsed chatResponse) *Reply {
	text := FallbackReplyText
	switch {
	case parsed.Response != nil:
		text = *parsed.Response
	case parsed.Reply != nil:
		text = *parsed.Reply
	}

	refs := parsed.References
	if refs == nil {
		refs = []model.Reference{}
	}

	return &Reply{
		Text:       text,
		References: refs,
		SessionID:  parsed.SessionID,
		UsedModel:  parsed.UsedModel,
	}
}

// =============================================================================
// HEALTH AND RESOURCES
// =============================================================================

// Health checks the backend's /health endpoint.
func (c *Client) Health(ctx context.Context) error {
	data, err := c.get(ctx, "/health")
	if err != nil {
		return err
	}

	var status struct {
		OK bool `json:"ok"`
	}
	if err := json.Unmarshal(data, &status); err != nil {
		return &APIError{Message: "invalid response from backend"}
	}
	if !status.OK {
		return &APIError{Message: "backend reports not ok"}
	}
	return nil
}

// Resources fetches the curated campus resource list.
func (c *Client) Resources(ctx context.Context) ([]Resource, error) {
	data, err := c.get(ctx, "/resources")
	if err != nil {
		return nil, err
	}

	var parsed struct {
		Resources []Resource `json:"resources"`
	}
	if err := json.Unmarshal(data, &parsed); err != nil {
		return nil, &APIError{Message: "invalid response from backend"}
	}
	if parsed.Resources == nil {
		parsed.Resources = []Resource{}
	}
	return parsed.Resources, nil
}

func (c *Client) get(ctx context.Context, path string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	c.setHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("could not reach backend: %w", err)
	}
	defer resp.Body.Close()

	data, err := readBody(resp)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg := strings.TrimSpace(string(data))
		if msg == "" {
			msg = fmt.Sprintf("Request failed (%d)", resp.StatusCode)
		}
		return nil, &APIError{Status: resp.StatusCode, Message: msg}
	}
	return data, nil
}

// =============================================================================
// HELPERS
// =============================================================================

func (c *Client) setHeaders(req *http.Request) {
	// No auth headers: the session gate lives in front of this client.
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
}

// readBody reads a response body with a size cap.
func readBody(resp *http.Response) ([]byte, error) {
	limited := io.LimitReader(resp.Body, MaxResponseSize)
	data, err := io.ReadAll(limited)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if int64(len(data)) == MaxResponseSize {
		return nil, fmt.Errorf("response exceeded maximum size of %d bytes", MaxResponseSize)
	}
	return data, nil
}
