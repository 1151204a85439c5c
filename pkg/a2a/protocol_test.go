package a2a

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTaskState_Terminal(t *testing.T) {
	assert.False(t, TaskStateWorking.Terminal())
	assert.True(t, TaskStateCompleted.Terminal())
	assert.True(t, TaskStateCanceled.Terminal())
}

func TestPushNotificationConfig_Redacted(t *testing.T) {
	cfg := &PushNotificationConfig{
		URL: "https://hooks.example.org/notify",
		Auth: &PushAuth{
			Scheme:   "basic",
			Username: "svc",
			Password: "hunter2",
			Token:    "bearer-token",
		},
	}

	red := cfg.Redacted()
	assert.Equal(t, cfg.URL, red.URL)
	assert.Equal(t, "basic", red.Auth.Scheme)
	assert.Equal(t, "svc", red.Auth.Username)
	assert.Equal(t, RedactedSecret, red.Auth.Password)
	assert.Equal(t, RedactedSecret, red.Auth.Token)

	// The original keeps its secrets.
	assert.Equal(t, "hunter2", cfg.Auth.Password)

	raw, err := json.Marshal(red)
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "hunter2")
	assert.NotContains(t, string(raw), "bearer-token")
}

func TestPushNotificationConfig_RedactedNil(t *testing.T) {
	var cfg *PushNotificationConfig
	assert.Nil(t, cfg.Redacted())

	cfg = &PushNotificationConfig{URL: "https://example.org"}
	red := cfg.Redacted()
	assert.Nil(t, red.Auth)
}

func TestNewAgentTextMessage(t *testing.T) {
	m := NewAgentTextMessage("hello")
	assert.Equal(t, RoleAgent, m.Role)
	require.Len(t, m.Parts, 1)
	assert.Equal(t, PartKindText, m.Parts[0].Kind)
	assert.Equal(t, "hello", m.Parts[0].Text)
}

func TestErrorResponseShape(t *testing.T) {
	resp := NewErrorResponse(3, CodeTaskNotFound, "task not found", nil)

	raw, err := json.Marshal(resp)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Equal(t, "2.0", decoded["jsonrpc"])
	assert.NotContains(t, decoded, "result")

	errObj := decoded["error"].(map[string]any)
	assert.Equal(t, float64(CodeTaskNotFound), errObj["code"])
}

func TestMethods_CoversAll(t *testing.T) {
	methods := Methods()
	assert.Len(t, methods, 7)
	assert.Contains(t, methods, MethodMessageSend)
	assert.Contains(t, methods, MethodMessageStream)
	assert.Contains(t, methods, MethodTasksResubscribe)
}
