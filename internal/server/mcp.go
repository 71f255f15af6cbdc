package server

import (
	"net/http"

	"github.com/mark3labs/mcp-go/server"

	"github.com/bobmcallan/finote/internal/app"
)

// mountMCP serves the app's MCP tools over Streamable HTTP at /mcp.
func mountMCP(mux *http.ServeMux, a *app.App) {
	httpMCP := server.NewStreamableHTTPServer(a.MCPServer,
		server.WithStateLess(true),
	)
	mux.Handle("/mcp", httpMCP)
}
