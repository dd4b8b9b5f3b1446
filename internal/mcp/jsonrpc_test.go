package mcp

import (
	"encoding/json"
	"testing"
)

func TestNewRequest(t *testing.T) {
	req := newRequest(42, "tools/list", map[string]any{"cursor": "abc"})

	if req.JSONRPC != "2.0" {
		t.Errorf("JSONRPC = %q, want %q", req.JSONRPC, "2.0")
	}
	if req.ID != 42 {
		t.Errorf("ID = %d, want 42", req.ID)
	}
	if req.Method != "tools/list" {
		t.Errorf("Method = %q, want %q", req.Method, "tools/list")
	}
	if req.IsNotification() {
		t.Error("request with an id reported as notification")
	}
}

func TestNewNotification(t *testing.T) {
	notif := newNotification("notifications/initialized", nil)

	if !notif.IsNotification() {
		t.Error("IsNotification() = false")
	}

	data, err := json.Marshal(notif)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	// A notification must not carry an id field on the wire.
	var decoded map[string]any
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if _, ok := decoded["id"]; ok {
		t.Error("notification carries an id field")
	}
	if decoded["method"] != "notifications/initialized" {
		t.Errorf("method = %v", decoded["method"])
	}
}

func TestResponseDecode(t *testing.T) {
	raw := `{"jsonrpc":"2.0","id":1,"result":{"tools":[{"name":"a"}]}}`
	var resp Response
	if err := json.Unmarshal([]byte(raw), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	if resp.ID != 1 {
		t.Errorf("ID = %d, want 1", resp.ID)
	}

	var result toolsListResult
	if err := resp.decode(&result); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(result.Tools) != 1 || result.Tools[0].Name != "a" {
		t.Errorf("Tools = %+v", result.Tools)
	}
}

func TestResponseDecodeError(t *testing.T) {
	raw := `{"jsonrpc":"2.0","id":7,"error":{"code":-32601,"message":"method not found"}}`
	var resp Response
	if err := json.Unmarshal([]byte(raw), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	if resp.Error == nil {
		t.Fatal("Error = nil, want RPCError")
	}
	if resp.Error.Code != -32601 {
		t.Errorf("Code = %d, want -32601", resp.Error.Code)
	}
	if got := resp.Error.Error(); got != "rpc error -32601: method not found" {
		t.Errorf("Error() = %q", got)
	}

	// decode surfaces the carried error instead of touching the target.
	var result toolsListResult
	if err := resp.decode(&result); err != resp.Error {
		t.Errorf("decode error = %v, want the RPCError", err)
	}
}
