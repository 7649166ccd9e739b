// ABOUTME: MCP tool definitions and registration for the analysis index server
// ABOUTME: Defines JSON schemas for the search, fetch, and stats tools
package mcp

import (
	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/prsight/prsight/internal/store"
)

// RegisterTools registers all MCP tools with the server
func RegisterTools(server *mcpserver.MCPServer, rs *store.RetrievalStore) *Handlers {
	handlers := &Handlers{store: rs}

	// 1. search_analyses - semantic search over indexed PR analyses
	server.AddTool(mcp.Tool{
		Name:        "search_analyses",
		Description: "Search indexed pull request analyses by semantic similarity. Returns the most relevant analysis chunks with their PR metadata and similarity scores.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"query": map[string]interface{}{
					"type":        "string",
					"description": "Natural language search query (e.g., an error message or symptom description)",
				},
				"top_k": map[string]interface{}{
					"type":        "number",
					"description": "Maximum number of results to return (default: 5)",
					"default":     5,
				},
				"pr_number": map[string]interface{}{
					"type":        "number",
					"description": "Optional: restrict results to a single pull request number",
				},
			},
			Required: []string{"query"},
		},
	}, handlers.SearchAnalyses)

	// 2. fetch_analysis - full analysis text for one PR
	server.AddTool(mcp.Tool{
		Name:        "fetch_analysis",
		Description: "Fetch the complete stored analysis for a pull request, reassembled from its indexed chunks in order.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"pr_number": map[string]interface{}{
					"type":        "number",
					"description": "Pull request number to fetch",
				},
			},
			Required: []string{"pr_number"},
		},
	}, handlers.FetchAnalysis)

	// 3. index_stats - index size summary
	server.AddTool(mcp.Tool{
		Name:        "index_stats",
		Description: "Report how many analysis chunks and distinct pull requests are in the index.",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, handlers.IndexStats)

	return handlers
}
