// ABOUTME: MCP tool handler implementations for the analysis index server
// ABOUTME: Search, fetch, and stats over the retrieval store with JSON responses
package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/prsight/prsight/internal/store"
)

// Handlers contains the handler functions for all MCP tools
type Handlers struct {
	store *store.RetrievalStore
}

// SearchAnalyses handles the search_analyses tool
func (h *Handlers) SearchAnalyses(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := request.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError("query argument is required and must be a string"), nil
	}

	topK := request.GetInt("top_k", h.store.DefaultK())

	var filter *store.Filter
	if prNumber := request.GetInt("pr_number", 0); prNumber > 0 {
		entityID := int64(prNumber)
		filter = &store.Filter{EntityID: &entityID}
	}

	scored, err := h.store.SearchWithScore(query, topK, filter)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("search failed: %v", err)), nil
	}

	results := make([]map[string]interface{}, 0, len(scored))
	for _, s := range scored {
		results = append(results, map[string]interface{}{
			"chunk_id":    s.Record.ChunkID,
			"pr_number":   s.Record.EntityID,
			"title":       s.Record.Title,
			"author":      s.Record.Author,
			"labels":      s.Record.Labels,
			"chunk_index": s.Record.ChunkIndex,
			"score":       s.Score,
			"text":        s.Record.Text,
			"analyzed_at": s.Record.AnalyzedAt.Format(time.RFC3339),
		})
	}

	response := map[string]interface{}{
		"query":   query,
		"results": results,
	}

	responseJSON, err := json.Marshal(response)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to marshal response: %v", err)), nil
	}

	return mcp.NewToolResultText(string(responseJSON)), nil
}

// FetchAnalysis handles the fetch_analysis tool
func (h *Handlers) FetchAnalysis(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	prNumber := request.GetInt("pr_number", 0)
	if prNumber <= 0 {
		return mcp.NewToolResultError("pr_number argument is required and must be a positive number"), nil
	}

	records, err := h.store.Fetch(int64(prNumber))
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("fetch failed: %v", err)), nil
	}
	if len(records) == 0 {
		return mcp.NewToolResultError(fmt.Sprintf("no analysis indexed for PR #%d", prNumber)), nil
	}

	response := map[string]interface{}{
		"pr_number":    records[0].EntityID,
		"title":        records[0].Title,
		"author":       records[0].Author,
		"labels":       records[0].Labels,
		"total_chunks": records[0].TotalChunks,
		"analyzed_at":  records[0].AnalyzedAt.Format(time.RFC3339),
		"analysis":     store.Reassemble(records),
	}
	if records[0].MergedAt != nil {
		response["merged_at"] = records[0].MergedAt.Format(time.RFC3339)
	}

	responseJSON, err := json.Marshal(response)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to marshal response: %v", err)), nil
	}

	return mcp.NewToolResultText(string(responseJSON)), nil
}

// IndexStats handles the index_stats tool
func (h *Handlers) IndexStats(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	stats, err := h.store.Stats()
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("stats failed: %v", err)), nil
	}

	responseJSON, err := json.Marshal(stats)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to marshal response: %v", err)), nil
	}

	return mcp.NewToolResultText(string(responseJSON)), nil
}
