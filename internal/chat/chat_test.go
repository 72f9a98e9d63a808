package chat

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/sadopc/soulsync/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type capturedRequest struct {
	Path   string
	Auth   string
	Model  string
	Roles  []string
	Body   string
	Called int
}

func completionServer(t *testing.T, status int, body string) (*httptest.Server, *capturedRequest) {
	t.Helper()
	captured := &capturedRequest{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured.Called++
		captured.Path = r.URL.Path
		captured.Auth = r.Header.Get("Authorization")
		raw, _ := io.ReadAll(r.Body)
		captured.Body = string(raw)

		var req struct {
			Model    string `json:"model"`
			Messages []struct {
				Role string `json:"role"`
			} `json:"messages"`
		}
		if err := json.Unmarshal(raw, &req); err == nil {
			captured.Model = req.Model
			captured.Roles = nil
			for _, m := range req.Messages {
				captured.Roles = append(captured.Roles, m.Role)
			}
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv, captured
}

func replyBody(text string) string {
	return `{"id":"gen-1","object":"chat.completion","created":1700000000,"model":"@preset/soul-sync",` +
		`"choices":[{"index":0,"message":{"role":"assistant","content":"` + text + `"},"finish_reason":"stop"}],` +
		`"usage":{"prompt_tokens":3,"completion_tokens":2,"total_tokens":5}}`
}

func testConfig(baseURL string) config.ChatConfig {
	return config.ChatConfig{BaseURL: baseURL, Model: config.DefaultChatModel, Timeout: 5 * time.Second}
}

func TestComplete_Success(t *testing.T) {
	srv, captured := completionServer(t, http.StatusOK, replyBody("Take a deep breath."))
	client := NewClient(testConfig(srv.URL+"/api/v1"), "sk-test")

	reply, err := client.Complete(context.Background(), []Message{
		{Role: RoleUser, Content: "hello"},
		{Role: RoleAssistant, Content: "hi there"},
		{Role: RoleUser, Content: "I feel stressed"},
	})
	require.NoError(t, err)
	assert.Equal(t, "Take a deep breath.", reply)

	assert.Equal(t, "/api/v1/chat/completions", captured.Path)
	assert.Equal(t, "Bearer sk-test", captured.Auth)
	assert.Equal(t, "@preset/soul-sync", captured.Model)
	assert.Equal(t, []string{"user", "assistant", "user"}, captured.Roles)
	assert.Contains(t, captured.Body, "I feel stressed")
}

func TestComplete_MissingKey(t *testing.T) {
	srv, captured := completionServer(t, http.StatusOK, replyBody("x"))
	client := NewClient(testConfig(srv.URL), "   ")

	_, err := client.Complete(context.Background(), []Message{{Role: RoleUser, Content: "hello"}})
	assert.ErrorIs(t, err, ErrMissingAPIKey)
	assert.Zero(t, captured.Called, "no request without a key")
}

func TestComplete_EmptyTranscript(t *testing.T) {
	client := NewClient(testConfig("http://127.0.0.1:1"), "sk-test")
	_, err := client.Complete(context.Background(), nil)
	assert.ErrorIs(t, err, ErrEmptyTranscript)
}

func TestComplete_UnknownRole(t *testing.T) {
	client := NewClient(testConfig("http://127.0.0.1:1"), "sk-test")
	_, err := client.Complete(context.Background(), []Message{{Role: "system", Content: "x"}})
	assert.ErrorIs(t, err, ErrUnknownRole)
}

func TestComplete_ErrorStatus(t *testing.T) {
	srv, captured := completionServer(t, http.StatusUnauthorized, `{"error":{"message":"invalid key","type":"auth"}}`)
	client := NewClient(testConfig(srv.URL), "sk-bad")

	_, err := client.Complete(context.Background(), []Message{{Role: RoleUser, Content: "hello"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "401")
	assert.Equal(t, 1, captured.Called, "failed calls are not retried")
}

func TestComplete_NoChoices(t *testing.T) {
	srv, _ := completionServer(t, http.StatusOK, `{"id":"gen-1","choices":[]}`)
	client := NewClient(testConfig(srv.URL), "sk-test")

	_, err := client.Complete(context.Background(), []Message{{Role: RoleUser, Content: "hello"}})
	require.Error(t, err)
}

// ============================================================
// Session
// ============================================================

type stubCompleter struct {
	reply string
	err   error
	seen  [][]Message
}

func (s *stubCompleter) Complete(_ context.Context, transcript []Message) (string, error) {
	s.seen = append(s.seen, transcript)
	return s.reply, s.err
}

func TestSession_Send(t *testing.T) {
	stub := &stubCompleter{reply: "I hear you."}
	sess := NewSession(stub)

	msg, err := sess.Send(context.Background(), "rough day")
	require.NoError(t, err)
	assert.Equal(t, Message{Role: RoleAssistant, Content: "I hear you."}, msg)

	_, err = sess.Send(context.Background(), "thanks")
	require.NoError(t, err)

	require.Len(t, stub.seen, 2)
	assert.Len(t, stub.seen[0], 1)
	assert.Len(t, stub.seen[1], 3, "the running transcript is sent each time")

	tr := sess.Transcript()
	require.Len(t, tr, 4)
	assert.Equal(t, RoleUser, tr[2].Role)
	assert.Equal(t, "thanks", tr[2].Content)
}

func TestSession_SendFailureAppendsFallback(t *testing.T) {
	stub := &stubCompleter{err: errors.New("boom")}
	sess := NewSession(stub)

	msg, err := sess.Send(context.Background(), "hello")
	require.Error(t, err)
	assert.Equal(t, FallbackReply, msg.Content)

	tr := sess.Transcript()
	require.Len(t, tr, 2)
	assert.Equal(t, FallbackReply, tr[1].Content)
}

func TestSession_IgnoresBlank(t *testing.T) {
	stub := &stubCompleter{reply: "x"}
	sess := NewSession(stub)

	_, err := sess.Send(context.Background(), "  \n ")
	require.NoError(t, err)
	assert.Empty(t, sess.Transcript())
	assert.Empty(t, stub.seen)
}

func TestSession_Reset(t *testing.T) {
	sess := NewSession(&stubCompleter{reply: "ok"})
	_, _ = sess.Send(context.Background(), "hi")
	sess.Reset()
	assert.Empty(t, sess.Transcript())
}

func TestSession_WithClient(t *testing.T) {
	srv, _ := completionServer(t, http.StatusOK, replyBody("Hello!"))
	sess := NewSession(NewClient(testConfig(srv.URL), "sk-test"))

	msg, err := sess.Send(context.Background(), "hi")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(msg.Content, "Hello"))
}
