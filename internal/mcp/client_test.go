package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"testing"
)

// mockTransport is a test double for the Transport interface.
type mockTransport struct {
	mu        sync.Mutex
	responses map[string]*Response // method -> canned response
	sent      []Request            // captured requests
	notifs    []Request            // captured notifications
	closed    bool
}

func newMockTransport() *mockTransport {
	return &mockTransport{
		responses: make(map[string]*Response),
	}
}

func (m *mockTransport) addResponse(method string, result any) {
	data, _ := json.Marshal(result)
	m.responses[method] = &Response{
		JSONRPC: jsonrpcVersion,
		Result:  json.RawMessage(data),
	}
}

func (m *mockTransport) addError(method string, code int, msg string) {
	m.responses[method] = &Response{
		JSONRPC: jsonrpcVersion,
		Error:   &RPCError{Code: code, Message: msg},
	}
}

func (m *mockTransport) Call(_ context.Context, req *Request) (*Response, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, *req)
	resp, ok := m.responses[req.Method]
	if !ok {
		return nil, fmt.Errorf("unexpected method: %s", req.Method)
	}
	// Copy response and set matching ID.
	out := *resp
	out.ID = req.ID
	return &out, nil
}

func (m *mockTransport) Post(_ context.Context, notif *Request) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.notifs = append(m.notifs, *notif)
	return nil
}

func (m *mockTransport) Close() error {
	m.closed = true
	return nil
}

func TestClient_Initialize(t *testing.T) {
	mt := newMockTransport()
	mt.addResponse("initialize", initializeResult{
		ProtocolVersion: "2024-11-05",
		ServerInfo:      serverInfo{Name: "test-server", Version: "1.0.0"},
		Capabilities:    serverCapabilities{},
	})

	client := NewClient("test", mt, nil)
	if err := client.Initialize(context.Background()); err != nil {
		t.Fatalf("Initialize: %v", err)
	}

	if len(mt.sent) != 1 {
		t.Fatalf("sent %d requests, want 1", len(mt.sent))
	}
	if mt.sent[0].Method != "initialize" {
		t.Errorf("method = %q, want %q", mt.sent[0].Method, "initialize")
	}

	// The handshake ends with the initialized notification.
	if len(mt.notifs) != 1 {
		t.Fatalf("sent %d notifications, want 1", len(mt.notifs))
	}
	if mt.notifs[0].Method != "notifications/initialized" {
		t.Errorf("notification method = %q, want %q", mt.notifs[0].Method, "notifications/initialized")
	}
	if !mt.notifs[0].IsNotification() {
		t.Error("initialized message carries a request id")
	}

	client.mu.RLock()
	defer client.mu.RUnlock()
	if client.serverName != "test-server" {
		t.Errorf("serverName = %q, want %q", client.serverName, "test-server")
	}
}

func TestClient_InitializeError(t *testing.T) {
	mt := newMockTransport()
	mt.addError("initialize", -32600, "bad request")

	client := NewClient("test", mt, nil)
	if err := client.Initialize(context.Background()); err == nil {
		t.Fatal("Initialize succeeded, want error")
	}
	if len(mt.notifs) != 0 {
		t.Error("initialized notification sent despite handshake failure")
	}
}

func TestClient_ListTools(t *testing.T) {
	mt := newMockTransport()
	mt.addResponse("tools/list", toolsListResult{
		Tools: []ToolDefinition{
			{Name: "brave_web_search", Description: "Search the web", InputSchema: map[string]any{"type": "object"}},
			{Name: "brave_local_search", Description: "Search local places", InputSchema: map[string]any{"type": "object"}},
		},
	})

	client := NewClient("brave-search", mt, nil)

	tools, err := client.ListTools(context.Background())
	if err != nil {
		t.Fatalf("ListTools: %v", err)
	}
	if len(tools) != 2 {
		t.Fatalf("got %d tools, want 2", len(tools))
	}
	if tools[0].Name != "brave_web_search" {
		t.Errorf("tools[0].Name = %q", tools[0].Name)
	}

	// Second call must hit the cache, not the transport.
	if _, err := client.ListTools(context.Background()); err != nil {
		t.Fatalf("ListTools (cached): %v", err)
	}
	if len(mt.sent) != 1 {
		t.Errorf("sent %d requests, want 1 (second call should be cached)", len(mt.sent))
	}
}

func TestClient_ListToolsEmptyCatalogCached(t *testing.T) {
	mt := newMockTransport()
	mt.addResponse("tools/list", toolsListResult{})

	client := NewClient("empty", mt, nil)

	tools, err := client.ListTools(context.Background())
	if err != nil {
		t.Fatalf("ListTools: %v", err)
	}
	if len(tools) != 0 {
		t.Fatalf("got %d tools, want 0", len(tools))
	}

	// A server with no tools must not be queried again.
	if _, err := client.ListTools(context.Background()); err != nil {
		t.Fatalf("ListTools (cached): %v", err)
	}
	if len(mt.sent) != 1 {
		t.Errorf("sent %d requests, want 1 (empty catalog should be cached)", len(mt.sent))
	}
}

func TestClient_CallTool(t *testing.T) {
	mt := newMockTransport()
	mt.addResponse("tools/call", callToolResult{
		Content: []ContentBlock{
			{Type: "text", Text: "first"},
			{Type: "text", Text: "second"},
		},
	})

	client := NewClient("test", mt, nil)

	got, err := client.CallTool(context.Background(), "brave_web_search", map[string]any{"query": "go"})
	if err != nil {
		t.Fatalf("CallTool: %v", err)
	}
	if got != "first\nsecond" {
		t.Errorf("CallTool = %q", got)
	}

	// The request carries the tool name and arguments.
	params, ok := mt.sent[0].Params.(map[string]any)
	if !ok {
		t.Fatalf("params type %T", mt.sent[0].Params)
	}
	if params["name"] != "brave_web_search" {
		t.Errorf("params name = %v", params["name"])
	}
}

func TestClient_CallToolServerError(t *testing.T) {
	mt := newMockTransport()
	mt.addResponse("tools/call", callToolResult{
		Content: []ContentBlock{{Type: "text", Text: "rate limit exceeded"}},
		IsError: true,
	})

	client := NewClient("brave-search", mt, nil)

	_, err := client.CallTool(context.Background(), "brave_web_search", nil)
	var ie *InvocationError
	if !errors.As(err, &ie) {
		t.Fatalf("error = %v, want *InvocationError", err)
	}
	if ie.Server != "brave-search" || ie.Tool != "brave_web_search" {
		t.Errorf("InvocationError = %+v", ie)
	}
}

func TestClient_CallToolRPCError(t *testing.T) {
	mt := newMockTransport()
	mt.addError("tools/call", -32602, "invalid params")

	client := NewClient("test", mt, nil)

	_, err := client.CallTool(context.Background(), "x", nil)
	var ie *InvocationError
	if !errors.As(err, &ie) {
		t.Fatalf("error = %v, want *InvocationError", err)
	}
	var rpcErr *RPCError
	if !errors.As(err, &rpcErr) {
		t.Error("InvocationError does not wrap the RPCError")
	}
}

func TestClient_CallToolNonTextContent(t *testing.T) {
	mt := newMockTransport()
	mt.addResponse("tools/call", callToolResult{
		Content: []ContentBlock{
			{Type: "text", Text: "caption"},
			{Type: "image"},
		},
	})

	client := NewClient("test", mt, nil)

	got, err := client.CallTool(context.Background(), "screenshot", nil)
	if err != nil {
		t.Fatalf("CallTool: %v", err)
	}
	if got != "caption\n[image]" {
		t.Errorf("CallTool = %q", got)
	}
}

func TestClient_Ping(t *testing.T) {
	mt := newMockTransport()
	mt.addResponse("ping", map[string]any{})

	client := NewClient("test", mt, nil)
	if err := client.Ping(context.Background()); err != nil {
		t.Fatalf("Ping: %v", err)
	}
}

func TestClient_Close(t *testing.T) {
	mt := newMockTransport()
	client := NewClient("test", mt, nil)

	if err := client.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if !mt.closed {
		t.Error("transport not closed")
	}
}

func TestClient_RequestIDsIncrease(t *testing.T) {
	mt := newMockTransport()
	mt.addResponse("ping", map[string]any{})

	client := NewClient("test", mt, nil)
	for i := 0; i < 3; i++ {
		if err := client.Ping(context.Background()); err != nil {
			t.Fatalf("Ping %d: %v", i, err)
		}
	}

	for i := 1; i < len(mt.sent); i++ {
		if mt.sent[i].ID <= mt.sent[i-1].ID {
			t.Errorf("request ids not increasing: %d then %d", mt.sent[i-1].ID, mt.sent[i].ID)
		}
	}
}
