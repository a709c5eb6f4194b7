// Package mcpadapter exposes read-only workspace tools over the Model
// Context Protocol.
package mcpadapter

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/kirillkom/docestate/internal/core/domain"
)

// Reader is the subset of the store the tools need.
type Reader interface {
	Documents() []domain.Document
	Document(id string) (domain.Document, bool)
	Stats() domain.DashboardStats
}

type Server struct {
	reader Reader
	mcp    *server.MCPServer
}

func NewServer(reader Reader, version string) *Server {
	s := &Server{
		reader: reader,
		mcp: server.NewMCPServer(
			"docestate",
			version,
			server.WithToolCapabilities(false),
			server.WithRecovery(),
		),
	}

	s.mcp.AddTool(
		mcp.NewTool("list_documents",
			mcp.WithDescription("List workspace documents, most recent first."),
			mcp.WithString("status",
				mcp.Description("Only return documents with this status."),
				mcp.Enum(string(domain.StatusProcessing), string(domain.StatusCompleted), string(domain.StatusError)),
			),
		),
		s.listDocuments,
	)
	s.mcp.AddTool(
		mcp.NewTool("get_document",
			mcp.WithDescription("Get one document with its extracted data and summary."),
			mcp.WithString("id", mcp.Required(), mcp.Description("Document id.")),
		),
		s.getDocument,
	)
	s.mcp.AddTool(
		mcp.NewTool("dashboard_stats",
			mcp.WithDescription("Count documents by processing status."),
		),
		s.dashboardStats,
	)
	return s
}

// Handler serves the streamable HTTP transport.
func (s *Server) Handler() http.Handler {
	return server.NewStreamableHTTPServer(s.mcp)
}

func (s *Server) listDocuments(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	status := domain.DocumentStatus(req.GetString("status", ""))
	if status != "" && !status.Valid() {
		return mcp.NewToolResultError(fmt.Sprintf("unknown status %q", status)), nil
	}

	docs := s.reader.Documents()
	if status != "" {
		filtered := docs[:0]
		for _, doc := range docs {
			if doc.Status == status {
				filtered = append(filtered, doc)
			}
		}
		docs = filtered
	}
	return jsonResult(docs)
}

func (s *Server) getDocument(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	doc, ok := s.reader.Document(id)
	if !ok {
		return mcp.NewToolResultError(fmt.Sprintf("document %s not found", id)), nil
	}
	return jsonResult(doc)
}

func (s *Server) dashboardStats(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return jsonResult(s.reader.Stats())
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	payload, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode tool result: %w", err)
	}
	return mcp.NewToolResultText(string(payload)), nil
}
