package server_test

import (
	"encoding/json"
	"net/http"
	"strings"
	"testing"

	"github.com/Tyrowin/relaychat/internal/channel"
	"github.com/Tyrowin/relaychat/internal/server"
	"github.com/Tyrowin/relaychat/internal/testhelpers"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeChannel(t *testing.T, body []byte) channel.Channel {
	t.Helper()
	var ch channel.Channel
	require.NoError(t, json.Unmarshal(body, &ch))
	return ch
}

func decodeApiError(t *testing.T, body []byte) server.ApiError {
	t.Helper()
	var apiErr server.ApiError
	require.NoError(t, json.Unmarshal(body, &apiErr))
	return apiErr
}

func TestListChannels_ReturnsSeeds(t *testing.T) {
	env := newTestEnv(t, nil)

	status, body := testhelpers.DoJSON(t, http.MethodGet, env.url("/channels"), nil)

	assert.Equal(t, http.StatusOK, status)
	assert.JSONEq(t, `[{"id":1,"name":"general","messages":[]},{"id":2,"name":"random","messages":[]}]`, string(body))
}

func TestCreateChannel(t *testing.T) {
	env := newTestEnv(t, nil)

	status, body := testhelpers.DoJSON(t, http.MethodPost, env.url("/channels"), map[string]string{"name": "dev"})

	assert.Equal(t, http.StatusOK, status)
	assert.JSONEq(t, `{"id":3,"name":"dev","messages":[]}`, string(body))
	assert.Equal(t, 3, env.srv.Registry().Len())
}

func TestCreateChannel_ValidationFailures(t *testing.T) {
	tests := []struct {
		name    string
		body    any
		code    server.ErrorCode
		details string
	}{
		{"empty name", map[string]string{"name": ""}, server.CodeValidation, "must not be empty"},
		{"too long", map[string]string{"name": strings.Repeat("x", 16)}, server.CodeValidation, "at most 15"},
		{"space", map[string]string{"name": "a b"}, server.CodeValidation, "letters, digits"},
		{"duplicate", map[string]string{"name": "general"}, server.CodeValidation, "already exists"},
		{"missing name", map[string]string{}, server.CodeValidation, "name must be a string"},
		{"numeric name", map[string]int{"name": 12}, server.CodeValidation, "name must be a string"},
		{"malformed body", `{"name":`, server.CodeMalformedRequest, "JSON object"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t, nil)

			status, body := testhelpers.DoJSON(t, http.MethodPost, env.url("/channels"), tt.body)

			assert.Equal(t, http.StatusBadRequest, status)
			apiErr := decodeApiError(t, body)
			assert.Equal(t, http.StatusBadRequest, apiErr.Code)
			assert.Equal(t, tt.code, apiErr.Error)
			assert.Contains(t, apiErr.Details, tt.details)
			assert.Equal(t, 2, env.srv.Registry().Len())
		})
	}
}

func TestCreateChannel_LenientPolicy(t *testing.T) {
	env := newTestEnv(t, func(cfg *server.Config) {
		cfg.NamePolicy = channel.PolicyLenient
	})

	status, body := testhelpers.DoJSON(t, http.MethodPost, env.url("/channels"), map[string]string{"name": "a b"})

	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "a b", decodeChannel(t, body).Name)
}

func TestGetChannel(t *testing.T) {
	env := newTestEnv(t, nil)

	status, body := testhelpers.DoJSON(t, http.MethodGet, env.url("/channels/2"), nil)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "random", decodeChannel(t, body).Name)

	status, body = testhelpers.DoJSON(t, http.MethodGet, env.url("/channels/9"), nil)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, server.CodeNotFound, decodeApiError(t, body).Error)
}

func TestRenameChannel(t *testing.T) {
	env := newTestEnv(t, nil)
	require.NoError(t, env.srv.Registry().AppendMessage(1, channel.Message{UserName: "al", Text: "hi"}))

	status, body := testhelpers.DoJSON(t, http.MethodPatch, env.url("/channels/1"), map[string]string{"name": "lobby"})

	assert.Equal(t, http.StatusOK, status)
	assert.JSONEq(t, `{"id":1,"name":"lobby","messages":[{"userName":"al","text":"hi"}]}`, string(body))

	status, _ = testhelpers.DoJSON(t, http.MethodPatch, env.url("/channels/1"), map[string]string{"name": "lobby"})
	assert.Equal(t, http.StatusOK, status, "renaming to the current name is allowed")
}

func TestRenameChannel_Failures(t *testing.T) {
	env := newTestEnv(t, nil)

	status, body := testhelpers.DoJSON(t, http.MethodPatch, env.url("/channels/77"), map[string]string{"name": "x"})
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, server.CodeNotFound, decodeApiError(t, body).Error)

	status, body = testhelpers.DoJSON(t, http.MethodPatch, env.url("/channels/1"), map[string]string{"name": "random"})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, server.CodeValidation, decodeApiError(t, body).Error)

	status, body = testhelpers.DoJSON(t, http.MethodPatch, env.url("/channels/abc"), map[string]string{"name": "x"})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, server.CodeMalformedRequest, decodeApiError(t, body).Error)
}

func TestDeleteChannel(t *testing.T) {
	env := newTestEnv(t, nil)

	status, body := testhelpers.DoJSON(t, http.MethodDelete, env.url("/channels/2"), nil)
	assert.Equal(t, http.StatusOK, status)
	assert.Empty(t, body)

	status, _ = testhelpers.DoJSON(t, http.MethodDelete, env.url("/channels/2"), nil)
	assert.Equal(t, http.StatusNotFound, status)

	_, body = testhelpers.DoJSON(t, http.MethodGet, env.url("/channels"), nil)
	assert.JSONEq(t, `[{"id":1,"name":"general","messages":[]}]`, string(body))

	status, body = testhelpers.DoJSON(t, http.MethodPost, env.url("/channels"), map[string]string{"name": "random"})
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, channel.ID(3), decodeChannel(t, body).ID)
}

func TestHealthHandler(t *testing.T) {
	env := newTestEnv(t, nil)

	status, body := testhelpers.DoJSON(t, http.MethodGet, env.url("/health"), nil)

	assert.Equal(t, http.StatusOK, status)
	assert.JSONEq(t, `{"status":"ok","clients":0,"channels":2}`, string(body))
}

func TestTestPageHandler(t *testing.T) {
	env := newTestEnv(t, nil)

	status, body := testhelpers.DoJSON(t, http.MethodGet, env.url("/test"), nil)

	assert.Equal(t, http.StatusOK, status)
	assert.Contains(t, string(body), "relaychat WebSocket Test")
}

func TestWebSocketEndpoint_RejectsNonGet(t *testing.T) {
	env := newTestEnv(t, nil)

	status, _ := testhelpers.DoJSON(t, http.MethodPost, env.url("/ws"), nil)

	assert.Equal(t, http.StatusMethodNotAllowed, status)
}

func TestChannelsAPI_CorsPreflight(t *testing.T) {
	env := newTestEnv(t, nil)

	for _, path := range []string{"/channels", "/channels/1"} {
		t.Run(path, func(t *testing.T) {
			req, err := http.NewRequest(http.MethodOptions, env.url(path), nil)
			require.NoError(t, err)
			req.Header.Set("Origin", testOrigin)
			req.Header.Set("Access-Control-Request-Method", http.MethodPatch)
			req.Header.Set("Access-Control-Request-Headers", "Content-Type")

			resp, err := http.DefaultClient.Do(req)
			require.NoError(t, err)
			defer func() { _ = resp.Body.Close() }()

			assert.GreaterOrEqual(t, resp.StatusCode, 200)
			assert.Less(t, resp.StatusCode, 300)
			assert.Contains(t, resp.Header.Get("Access-Control-Allow-Origin"), testOrigin)
			assert.Contains(t, resp.Header.Get("Access-Control-Allow-Methods"), http.MethodPatch)
		})
	}
}

func TestChannelsAPI_CorsHeadersOnCrossOriginRequest(t *testing.T) {
	env := newTestEnv(t, nil)

	req, err := http.NewRequest(http.MethodGet, env.url("/channels"), nil)
	require.NoError(t, err)
	req.Header.Set("Origin", testOrigin)

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Access-Control-Allow-Origin"), testOrigin)
}
