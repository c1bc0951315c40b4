// Package hiverpc implements a small JSON-RPC 2.0 client for Hive API nodes.
//
// Requests are sent once over HTTP POST.  The client does not retry, and
// callers bound a request with the context they pass in.
package hiverpc

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync/atomic"
	"time"
)

// DefaultTimeout bounds requests made with the default HTTP client.
const DefaultTimeout = 30 * time.Second

// maxErrorBody caps how much of a non-2xx response body is kept in the error.
const maxErrorBody = 512

// Request is a JSON-RPC 2.0 request object.
type Request struct {
	Jsonrpc string      `json:"jsonrpc"`
	Method  string      `json:"method"`
	Params  interface{} `json:"params"`
	ID      uint64      `json:"id"`
}

// Response is a JSON-RPC 2.0 response object.
type Response struct {
	Jsonrpc string          `json:"jsonrpc"`
	Result  json.RawMessage `json:"result"`
	Error   *RPCError       `json:"error"`
	ID      uint64          `json:"id"`
}

// RPCError is an error returned by the node inside a response.
type RPCError struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data,omitempty"`
}

// Error satisfies the error interface.
func (e *RPCError) Error() string {
	return fmt.Sprintf("rpc error %d: %s", e.Code, e.Message)
}

// Client talks to a single Hive API node.
type Client struct {
	url        string
	httpClient *http.Client
	id         atomic.Uint64
}

// NewClient creates a client for the node at url.
func NewClient(url string) *Client {
	return &Client{
		url:        url,
		httpClient: &http.Client{Timeout: DefaultTimeout},
	}
}

// WithHTTPClient replaces the HTTP client used for requests.
func (c *Client) WithHTTPClient(hc *http.Client) *Client {
	c.httpClient = hc
	return c
}

// URL returns the node URL.
func (c *Client) URL() string {
	return c.url
}

// NextID returns the next request id.
func (c *Client) NextID() uint64 {
	return c.id.Add(1)
}

// Call invokes method with params and unmarshals the result into result,
// which may be nil to discard it.  Nil params are sent as an empty array.
func (c *Client) Call(ctx context.Context, method string, params, result interface{}) error {
	if method == "" {
		return fmt.Errorf("no method")
	}
	if params == nil {
		params = []interface{}{}
	}

	req := Request{
		Jsonrpc: "2.0",
		Method:  method,
		Params:  params,
		ID:      c.NextID(),
	}
	body, err := json.Marshal(&req)
	if err != nil {
		return fmt.Errorf("failed to marshal %s request: %w", method, err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url,
		bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create %s request: %w", method, err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	log.Debugf("Sending %s (id %d) to %s", method, req.ID, c.url)
	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return fmt.Errorf("failed to send %s request: %w", method, err)
	}
	defer httpResp.Body.Close()

	if httpResp.StatusCode < 200 || httpResp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(httpResp.Body, maxErrorBody))
		return fmt.Errorf("%s request failed with status %s: %s", method,
			httpResp.Status, bytes.TrimSpace(snippet))
	}

	var resp Response
	if err := json.NewDecoder(httpResp.Body).Decode(&resp); err != nil {
		return fmt.Errorf("failed to decode %s response: %w", method, err)
	}
	if resp.ID != req.ID {
		if resp.Error != nil {
			return fmt.Errorf("%s response id %d does not match request id "+
				"%d (node error: %v)", method, resp.ID, req.ID, resp.Error.Message)
		}
		return fmt.Errorf("%s response id %d does not match request id %d",
			method, resp.ID, req.ID)
	}
	if resp.Error != nil {
		log.Debugf("Node returned error for %s: %v", method, resp.Error)
		return resp.Error
	}

	if result == nil {
		return nil
	}
	if err := json.Unmarshal(resp.Result, result); err != nil {
		return fmt.Errorf("failed to parse %s result: %w", method, err)
	}
	return nil
}
