package telegram

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/notification"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSend(t *testing.T) {
	var got sendMessageRequest
	var path string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"ok":true,"result":{}}`))
	}))
	defer srv.Close()

	client := NewClient(Config{
		BotToken: "123:abc",
		ChatID:   "-100200",
		Topics:   map[notification.Topic]string{notification.TopicAttendance: "42"},
		BaseURL:  srv.URL,
	})

	err := client.Send(context.Background(), notification.Message{Topic: notification.TopicAttendance, Text: "*hello*"})
	require.NoError(t, err)

	assert.Equal(t, "/bot123:abc/sendMessage", path)
	assert.Equal(t, "-100200", got.ChatID)
	assert.Equal(t, "*hello*", got.Text)
	assert.Equal(t, "Markdown", got.ParseMode)
	assert.Equal(t, int64(42), got.MessageThreadID)
}

func TestSendWithoutTopic(t *testing.T) {
	var raw map[string]interface{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&raw))
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	client := NewClient(Config{BotToken: "t", ChatID: "c", BaseURL: srv.URL})
	require.NoError(t, client.Send(context.Background(), notification.Message{Topic: notification.TopicReport, Text: "x"}))
	assert.NotContains(t, raw, "message_thread_id")
}

func TestSendAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"ok":false,"description":"Bad Request: chat not found"}`))
	}))
	defer srv.Close()

	client := NewClient(Config{BotToken: "t", ChatID: "c", BaseURL: srv.URL})
	err := client.Send(context.Background(), notification.Message{Text: "x"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "chat not found")
}

func TestSendSkipsWhenNotConfigured(t *testing.T) {
	client := NewClient(Config{BaseURL: "http://127.0.0.1:1"})
	assert.NoError(t, client.Send(context.Background(), notification.Message{Text: "x"}))
}
