package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/ourstudio-se/shop-assistant/pkg/assistant/types"
)

type mockService struct {
	chatResp  *types.ChatResponse
	chatErr   error
	conv      *types.Conversation
	cleared   []string
	lastChat  types.ChatRequest
	chatCalls int
}

func (m *mockService) Chat(ctx context.Context, req types.ChatRequest) (*types.ChatResponse, error) {
	m.lastChat = req
	m.chatCalls++
	return m.chatResp, m.chatErr
}

func (m *mockService) GetConversation(ctx context.Context, id string) (*types.Conversation, error) {
	return m.conv, nil
}

func (m *mockService) ClearSession(ctx context.Context, sessionID string) error {
	m.cleared = append(m.cleared, sessionID)
	return nil
}

func newTestServer(service *mockService) *Server {
	return New(service, Config{})
}

func TestHealth(t *testing.T) {
	server := newTestServer(&mockService{})

	rec := httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestChatHandler(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		service := &mockService{chatResp: &types.ChatResponse{
			SessionID: "s1",
			MessageID: "m1",
			Response:  `{"type":"text","data":{"text":"hi"}}`,
		}}
		server := newTestServer(service)

		body := strings.NewReader(`{"sessionId":"s1","message":"hello"}`)
		rec := httptest.NewRecorder()
		server.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/chat", body))

		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
		}
		if service.lastChat.SessionID != "s1" || service.lastChat.Message != "hello" {
			t.Errorf("service got %+v", service.lastChat)
		}

		var resp types.ChatResponse
		if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
			t.Fatalf("decoding response: %v", err)
		}
		if resp.MessageID != "m1" {
			t.Errorf("MessageID = %q", resp.MessageID)
		}
	})

	t.Run("empty message is rejected", func(t *testing.T) {
		service := &mockService{}
		server := newTestServer(service)

		body := strings.NewReader(`{"sessionId":"s1"}`)
		rec := httptest.NewRecorder()
		server.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/chat", body))

		if rec.Code != http.StatusBadRequest {
			t.Errorf("status = %d, want 400", rec.Code)
		}
		if service.chatCalls != 0 {
			t.Error("service should not be called")
		}
	})

	t.Run("invalid body is rejected", func(t *testing.T) {
		server := newTestServer(&mockService{})

		rec := httptest.NewRecorder()
		server.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/chat", strings.NewReader("{")))

		if rec.Code != http.StatusBadRequest {
			t.Errorf("status = %d, want 400", rec.Code)
		}
	})
}

func TestChatStreamHandler(t *testing.T) {
	reply := `{"type":"text","data":{"text":"` + strings.Repeat("a", 100) + `"}}`
	service := &mockService{chatResp: &types.ChatResponse{
		SessionID: "s1",
		MessageID: "m1",
		Response:  reply,
	}}
	server := newTestServer(service)

	body := strings.NewReader(`{"sessionId":"s1","message":"hello"}`)
	rec := httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/chat/stream", body))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "text/event-stream" {
		t.Errorf("Content-Type = %q", ct)
	}

	var texts []string
	var done map[string]any
	for _, line := range strings.Split(rec.Body.String(), "\n") {
		if !strings.HasPrefix(line, "data: ") {
			continue
		}
		var event map[string]any
		if err := json.Unmarshal([]byte(strings.TrimPrefix(line, "data: ")), &event); err != nil {
			t.Fatalf("bad event %q: %v", line, err)
		}
		if text, ok := event["text"].(string); ok {
			texts = append(texts, text)
		}
		if event["done"] == true {
			done = event
		}
	}

	if got := strings.Join(texts, ""); got != reply {
		t.Errorf("reassembled stream = %q, want the full reply", got)
	}
	if len(texts) < 2 {
		t.Errorf("got %d chunks, want the reply split up", len(texts))
	}
	if done == nil {
		t.Fatal("missing done event")
	}
	if done["sessionId"] != "s1" {
		t.Errorf("done event = %v", done)
	}
}

func TestGetConversationHandler(t *testing.T) {
	t.Run("found", func(t *testing.T) {
		conv := types.NewConversation("s1")
		conv.AddUserMessage("hi")
		server := newTestServer(&mockService{conv: conv})

		rec := httptest.NewRecorder()
		server.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/conversations/s1", nil))

		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d", rec.Code)
		}
		var got types.Conversation
		json.Unmarshal(rec.Body.Bytes(), &got)
		if got.ID != "s1" || len(got.Messages) != 1 {
			t.Errorf("conversation = %+v", got)
		}
	})

	t.Run("not found", func(t *testing.T) {
		server := newTestServer(&mockService{})

		rec := httptest.NewRecorder()
		server.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/conversations/missing", nil))

		if rec.Code != http.StatusNotFound {
			t.Errorf("status = %d, want 404", rec.Code)
		}
	})
}

func TestClearSessionHandler(t *testing.T) {
	service := &mockService{}
	server := newTestServer(service)

	rec := httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/api/v1/sessions/s1", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if len(service.cleared) != 1 || service.cleared[0] != "s1" {
		t.Errorf("cleared = %v", service.cleared)
	}
}

func TestChunkString(t *testing.T) {
	chunks := chunkString("abcdefg", 3)
	want := []string{"abc", "def", "g"}
	if len(chunks) != len(want) {
		t.Fatalf("chunks = %v", chunks)
	}
	for i := range want {
		if chunks[i] != want[i] {
			t.Errorf("chunk %d = %q, want %q", i, chunks[i], want[i])
		}
	}

	if got := chunkString("", 3); got != nil {
		t.Errorf("empty input chunks = %v, want nil", got)
	}
}
