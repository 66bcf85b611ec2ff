// Package mcpserver exposes ingestion, retrieval and grading as MCP tools so
// assistants can drive the grader directly.
package mcpserver

import (
	"context"
	"errors"
	"net/http"

	"github.com/akolanti/GradeRAG/internal/rag"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const Version = "1.0.0"

var ErrMissingService = errors.New("mcp: rag service is required")

type Server struct {
	service rag.Service
	server  *mcp.Server
}

func NewServer(service rag.Service) (*Server, error) {
	if service == nil {
		return nil, ErrMissingService
	}
	s := &Server{
		service: service,
		server:  mcp.NewServer(&mcp.Implementation{Name: "grader", Version: Version}, nil),
	}
	s.registerTools()
	return s, nil
}

// Run serves over stdio until ctx is cancelled or the client disconnects.
func (s *Server) Run(ctx context.Context) error {
	return s.server.Run(ctx, &mcp.StdioTransport{})
}

// Handler serves the streamable http transport; mounted at /mcp.
func (s *Server) Handler() http.Handler {
	return mcp.NewStreamableHTTPHandler(func(_ *http.Request) *mcp.Server {
		return s.server
	}, nil)
}
