// Copyright (c) 2025 Egghead.AI
// SPDX-License-Identifier: AGPL-3.0-or-later

package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T, cfg Config) *httptest.Server {
	t.Helper()
	ts := httptest.NewServer(New(cfg).Handler())
	t.Cleanup(ts.Close)
	return ts
}

func postChat(t *testing.T, ts *httptest.Server, body map[string]any) (int, map[string]any) {
	t.Helper()
	data, err := json.Marshal(body)
	require.NoError(t, err)

	resp, err := http.Post(ts.URL+"/chat", "application/json", bytes.NewReader(data))
	require.NoError(t, err)
	defer resp.Body.Close()

	var decoded map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&decoded))
	return resp.StatusCode, decoded
}

func TestHealth(t *testing.T) {
	ts := newTestServer(t, Config{})

	resp, err := http.Get(ts.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var body map[string]bool
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.True(t, body["ok"])
}

func TestResources(t *testing.T) {
	ts := newTestServer(t, Config{})

	resp, err := http.Get(ts.URL + "/resources")
	require.NoError(t, err)
	defer resp.Body.Close()

	var body struct {
		Resources []Resource `json:"resources"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Len(t, body.Resources, len(AggieResources))
}

func TestChatReplyShape(t *testing.T) {
	ts := newTestServer(t, Config{})

	status, body := postChat(t, ts, map[string]any{"message": "when is move-in day"})
	require.Equal(t, http.StatusOK, status)

	reply, ok := body["reply"].(string)
	require.True(t, ok, "reply must be a string")
	assert.Contains(t, reply, `you asked: "when is move-in day"`)
	assert.Contains(t, reply, "Got you — ", "default tone is friendly")

	assert.NotEmpty(t, body["session_id"], "server must mint a session id")
	assert.Equal(t, "hf:mistralai/Mistral-7B-Instruct", body["used_model"])
	assert.NotNil(t, body["references"])
	assert.Nil(t, body["response"], "modern mode must not use the legacy key")

	safety, ok := body["safety"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "none", safety["category"])
}

func TestChatLegacyMode(t *testing.T) {
	ts := newTestServer(t, Config{Legacy: true})

	status, body := postChat(t, ts, map[string]any{"message": "hello"})
	require.Equal(t, http.StatusOK, status)

	assert.Nil(t, body["reply"])
	response, ok := body["response"].(string)
	require.True(t, ok, "legacy mode answers under the response key")
	assert.Contains(t, response, `you asked: "hello"`)
}

func TestChatEchoesSessionID(t *testing.T) {
	ts := newTestServer(t, Config{})

	_, body := postChat(t, ts, map[string]any{"message": "hi", "session_id": "my-session"})
	assert.Equal(t, "my-session", body["session_id"])
}

func TestChatToneIntros(t *testing.T) {
	ts := newTestServer(t, Config{})

	tests := []struct {
		tone  string
		intro string
	}{
		{"friendly", "Got you — "},
		{"formal", "Understood. "},
		{"neutral", ""},
	}
	for _, tt := range tests {
		t.Run(tt.tone, func(t *testing.T) {
			_, body := postChat(t, ts, map[string]any{
				"message": "hi",
				"preferences": map[string]any{
					"tone": tt.tone, "depth": "medium",
					"use_ucd_sources": true, "show_references": true,
				},
			})
			reply := body["reply"].(string)
			if tt.intro == "" {
				assert.Equal(t, `you asked: "hi".`, reply)
			} else {
				assert.Equal(t, tt.intro+`you asked: "hi".`, reply)
			}
		})
	}
}

func TestChatKeywordRouting(t *testing.T) {
	ts := newTestServer(t, Config{})

	tests := []struct {
		name    string
		message string
		wantIDs []string
	}{
		{"mental health", "I feel anxious about finals", []string{"shcs", "aggie_mental_health"}},
		{"basic needs", "I have no food and can't pay rent", []string{"aggie_compass", "asucd_pantry"}},
		{"career", "help with my resume for an intern role", []string{"career_center"}},
		{"tutoring", "where can I find a tutor", []string{"aatc"}},
		{"no match", "what color is the gunrock statue", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, body := postChat(t, ts, map[string]any{"message": tt.message})
			refs := body["references"].([]any)
			var gotIDs []string
			for _, r := range refs {
				gotIDs = append(gotIDs, r.(map[string]any)["id"].(string))
			}
			assert.Equal(t, tt.wantIDs, gotIDs)
			for _, r := range refs {
				assert.Equal(t, "ucd_resource", r.(map[string]any)["type"])
			}
		})
	}
}

func TestChatCapsReferencesAtThree(t *testing.T) {
	ts := newTestServer(t, Config{})

	// Trips the mental-health and basic-needs routes: four candidates.
	_, body := postChat(t, ts, map[string]any{"message": "I'm stressed and hungry"})
	refs := body["references"].([]any)
	assert.Len(t, refs, maxReferences)
}

func TestChatRespectsPreferenceToggles(t *testing.T) {
	ts := newTestServer(t, Config{})

	_, body := postChat(t, ts, map[string]any{
		"message": "I feel anxious",
		"preferences": map[string]any{
			"tone": "friendly", "depth": "medium",
			"use_ucd_sources": false, "show_references": false,
		},
	})
	refs := body["references"].([]any)
	assert.Empty(t, refs)
	assert.NotContains(t, body["reply"].(string), "Helpful UC Davis resources")
}

func TestChatRejectsBadRequests(t *testing.T) {
	ts := newTestServer(t, Config{})

	resp, err := http.Post(ts.URL+"/chat", "application/json", bytes.NewReader([]byte("{not json")))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	status, body := postChat(t, ts, map[string]any{"message": ""})
	assert.Equal(t, http.StatusUnprocessableEntity, status)
	assert.NotEmpty(t, body["error"])
}

func TestRateLimitReturns429(t *testing.T) {
	ts := newTestServer(t, Config{RateLimiter: NewRateLimiter(1, 2)})

	var lastStatus int
	for i := 0; i < 10; i++ {
		resp, err := http.Get(ts.URL + "/health")
		require.NoError(t, err)
		resp.Body.Close()
		lastStatus = resp.StatusCode
		if lastStatus == http.StatusTooManyRequests {
			break
		}
	}
	assert.Equal(t, http.StatusTooManyRequests, lastStatus)
}

func TestCORSPreflight(t *testing.T) {
	ts := newTestServer(t, Config{})

	req, err := http.NewRequest(http.MethodOptions, ts.URL+"/chat", nil)
	require.NoError(t, err)
	req.Header.Set("Origin", "http://localhost:3000")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()

	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	assert.Equal(t, "http://localhost:3000", resp.Header.Get("Access-Control-Allow-Origin"))
}

func TestBuildReplyListsResources(t *testing.T) {
	refs := []Resource{{ID: "aatc", Title: "AATC"}}
	got := buildReply("need study help", "neutral", refs)
	assert.Contains(t, got, "Helpful UC Davis resources:")
	assert.Contains(t, got, "\n- AATC")
}
