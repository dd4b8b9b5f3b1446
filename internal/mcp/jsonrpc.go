package mcp

import (
	"encoding/json"
	"fmt"
)

// jsonrpcVersion is the JSON-RPC protocol version MCP mandates.
const jsonrpcVersion = "2.0"

// Request is an outgoing JSON-RPC 2.0 message. A request without an id
// is a notification: the server must not answer it, so id 0 is never
// handed out for real requests and omitempty keeps it off the wire.
type Request struct {
	JSONRPC string `json:"jsonrpc"`
	ID      int64  `json:"id,omitempty"`
	Method  string `json:"method"`
	Params  any    `json:"params,omitempty"`
}

// IsNotification reports whether the message expects no response.
func (r *Request) IsNotification() bool {
	return r.ID == 0
}

// newRequest builds a request. id must be positive; the client hands
// out ids from an increasing counter starting at 1.
func newRequest(id int64, method string, params any) *Request {
	return &Request{
		JSONRPC: jsonrpcVersion,
		ID:      id,
		Method:  method,
		Params:  params,
	}
}

// newNotification builds a fire-and-forget message.
func newNotification(method string, params any) *Request {
	return &Request{
		JSONRPC: jsonrpcVersion,
		Method:  method,
		Params:  params,
	}
}

// Response is an incoming JSON-RPC 2.0 message. Exactly one of Result
// or Error is set in a well-formed response; the id echoes the request
// it answers.
type Response struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      int64           `json:"id"`
	Result  json.RawMessage `json:"result,omitempty"`
	Error   *RPCError       `json:"error,omitempty"`
}

// decode unmarshals the result payload into v. Calling decode on an
// error response fails with the carried RPCError.
func (r *Response) decode(v any) error {
	if r.Error != nil {
		return r.Error
	}
	if err := json.Unmarshal(r.Result, v); err != nil {
		return fmt.Errorf("decode result: %w", err)
	}
	return nil
}

// RPCError is the error object of a failed JSON-RPC call.
type RPCError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

func (e *RPCError) Error() string {
	return fmt.Sprintf("rpc error %d: %s", e.Code, e.Message)
}
