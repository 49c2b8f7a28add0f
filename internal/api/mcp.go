// Package api exposes the journal to local agent tooling over MCP. The
// tools are a thin skin over the journal service; no journal behavior
// lives here.
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/kalambet/daybook/internal/journal"
)

// MCPDeps holds dependencies for the MCP server.
type MCPDeps struct {
	Journal *journal.Service
}

// NewMCPServer creates an MCP server with the journal tools registered.
func NewMCPServer(deps MCPDeps) *server.MCPServer {
	s := server.NewMCPServer(
		"daybook",
		"1.0.0",
		server.WithToolCapabilities(true),
		server.WithInstructions("daybook — a single-user journal of dated markdown entries."),
		server.WithRecovery(),
	)

	s.AddTool(
		mcp.NewTool("journal_append",
			mcp.WithDescription("Append a new dated entry to the journal. Entries are immutable once written."),
			mcp.WithString("body", mcp.Description("Entry body in markdown"), mcp.Required()),
		),
		mcpAppend(deps),
	)

	s.AddTool(
		mcp.NewTool("journal_recent",
			mcp.WithDescription("List the most recent journal entries, newest first."),
			mcp.WithNumber("limit", mcp.Description("Maximum number of entries (default 8)")),
		),
		mcpRecent(deps),
	)

	s.AddTool(
		mcp.NewTool("journal_search",
			mcp.WithDescription("Full-text search over all journal entries; returns matches with short snippets, newest first."),
			mcp.WithString("query", mcp.Description("Search terms"), mcp.Required()),
		),
		mcpSearch(deps),
	)

	return s
}

func mcpAppend(deps MCPDeps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		body, err := req.RequireString("body")
		if err != nil {
			return mcpError("body is required"), nil
		}

		id, err := deps.Journal.Create(body)
		if err != nil {
			if journal.IsValidation(err) {
				return mcpError("entry body is empty"), nil
			}
			return mcpError(fmt.Sprintf("failed to save entry: %v", err)), nil
		}
		return mcpText(fmt.Sprintf("Saved entry %d", id)), nil
	}
}

type entryResult struct {
	ID        int64  `json:"id"`
	Date      string `json:"date"`
	CreatedAt string `json:"created_at"`
	Body      string `json:"body"`
}

func mcpRecent(deps MCPDeps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		limit := req.GetInt("limit", 8)
		if limit <= 0 {
			limit = 8
		}
		if limit > 50 {
			limit = 50
		}

		entries, err := deps.Journal.Recent(limit)
		if err != nil {
			return mcpError(fmt.Sprintf("failed to list entries: %v", err)), nil
		}
		if len(entries) == 0 {
			return mcpText("[]"), nil
		}

		results := make([]entryResult, len(entries))
		for i, e := range entries {
			results[i] = entryResult{
				ID:        e.ID,
				Date:      e.Date.Format("2006-01-02"),
				CreatedAt: e.CreatedAt.Format(time.RFC3339),
				Body:      e.Body,
			}
		}

		b, err := json.Marshal(results)
		if err != nil {
			return mcpError(fmt.Sprintf("failed to marshal entries: %v", err)), nil
		}
		return mcpText(string(b)), nil
	}
}

func mcpSearch(deps MCPDeps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		query, err := req.RequireString("query")
		if err != nil {
			return mcpError("query is required"), nil
		}

		hits, err := deps.Journal.Search(query)
		if err != nil {
			return mcpError(fmt.Sprintf("search failed: %v", err)), nil
		}
		if len(hits) == 0 {
			return mcpText("[]"), nil
		}

		type hitResult struct {
			EntryID   int64  `json:"entry_id"`
			CreatedAt string `json:"created_at"`
			Snippet   string `json:"snippet"`
		}

		results := make([]hitResult, len(hits))
		for i, h := range hits {
			results[i] = hitResult{
				EntryID:   h.EntryID,
				CreatedAt: h.CreatedAt.Format(time.RFC3339),
				Snippet:   h.Snippet,
			}
		}

		b, err := json.Marshal(results)
		if err != nil {
			return mcpError(fmt.Sprintf("failed to marshal results: %v", err)), nil
		}
		return mcpText(string(b)), nil
	}
}

func mcpText(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.TextContent{Type: "text", Text: text},
		},
	}
}

func mcpError(msg string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.TextContent{Type: "text", Text: msg},
		},
		IsError: true,
	}
}
