package main

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// StdioProxy forwards JSON-RPC messages from stdin to the finote-server MCP
// endpoint and writes responses to stdout.
type StdioProxy struct {
	serverURL  string
	userID     string
	session    string
	httpClient *http.Client
}

func main() {
	_ = godotenv.Load()

	serverURL := os.Getenv("FINOTE_SERVER_URL")
	if serverURL == "" {
		serverURL = "http://localhost:8080"
	}

	proxy := &StdioProxy{
		serverURL: strings.TrimRight(serverURL, "/") + "/mcp",
		userID:    os.Getenv("FINOTE_USER_ID"),
		session:   os.Getenv("FINOTE_SESSION"),
		httpClient: &http.Client{
			Timeout: 120 * time.Second,
		},
	}

	if err := proxy.RunWithIO(os.Stdin, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "proxy error: %v\n", err)
		os.Exit(1)
	}
}

// RunWithIO reads newline-delimited JSON-RPC from r, forwards each message
// to the HTTP server, and writes the response to w. Notifications get no reply.
func (p *StdioProxy) RunWithIO(r io.Reader, w io.Writer) error {
	if p.httpClient == nil {
		p.httpClient = &http.Client{Timeout: 120 * time.Second}
	}

	scanner := bufio.NewScanner(r)
	// Allow large messages (up to 10MB)
	scanner.Buffer(make([]byte, 0, 64*1024), 10*1024*1024)

	for scanner.Scan() {
		line := scanner.Bytes()
		if len(bytes.TrimSpace(line)) == 0 {
			continue
		}

		resp, err := p.forward(line)
		if err != nil {
			id := extractID(line)
			errResp := jsonRPCError(id, -32000, err.Error())
			w.Write(errResp)
			w.Write([]byte("\n"))
			continue
		}
		if len(resp) == 0 {
			continue
		}

		w.Write(resp)
		w.Write([]byte("\n"))
	}

	return scanner.Err()
}

// forward sends a JSON-RPC message to the HTTP server and returns the response body.
// A 202 Accepted (notification) yields an empty body.
func (p *StdioProxy) forward(body []byte) ([]byte, error) {
	req, err := http.NewRequest(http.MethodPost, p.serverURL, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json, text/event-stream")
	if p.userID != "" {
		req.Header.Set("X-Finote-User-ID", p.userID)
	}
	if p.session != "" {
		req.Header.Set("X-Finote-Session", p.session)
	}

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("server request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	switch resp.StatusCode {
	case http.StatusOK:
		return bytes.TrimSpace(respBody), nil
	case http.StatusAccepted, http.StatusNoContent:
		return nil, nil
	default:
		return nil, fmt.Errorf("server returned %d: %s", resp.StatusCode, string(respBody))
	}
}

// extractID pulls the "id" field from a JSON-RPC request for error responses.
func extractID(msg []byte) json.RawMessage {
	var req struct {
		ID json.RawMessage `json:"id"`
	}
	if err := json.Unmarshal(msg, &req); err != nil || req.ID == nil {
		return json.RawMessage("null")
	}
	return req.ID
}

// jsonRPCError creates a JSON-RPC error response.
func jsonRPCError(id json.RawMessage, code int, message string) []byte {
	resp := map[string]interface{}{
		"jsonrpc": "2.0",
		"id":      id,
		"error": map[string]interface{}{
			"code":    code,
			"message": message,
		},
	}
	data, _ := json.Marshal(resp)
	return data
}
