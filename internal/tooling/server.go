// Package tooling registers localsearch's seven tools (§6) with an MCP
// server, wiring each straight through to an indexmgr.Manager. The layer
// is intentionally thin: no request/response plumbing beyond argument
// parsing and JSON encoding lives here (§1 non-goal: protocol framework
// internals are out of scope).
package tooling

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/localsearch/localsearch/internal/indexmgr"
	"github.com/localsearch/localsearch/internal/search"
	"github.com/localsearch/localsearch/internal/watcher"
)

// ProjectHost owns the one Manager+Watcher pair active in this process.
// storageRoot is fixed at startup; each create_index call attaches a
// project, replacing any project attached before it.
type ProjectHost struct {
	storageRoot string

	mu      sync.Mutex
	mgr     *indexmgr.Manager
	project string
	watch   *watcher.Watcher
}

// NewProjectHost creates a host with no project attached yet; create_index
// attaches one.
func NewProjectHost(storageRoot string) *ProjectHost {
	return &ProjectHost{storageRoot: storageRoot}
}

func (h *ProjectHost) manager() (*indexmgr.Manager, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.mgr == nil {
		return nil, fmt.Errorf("no index is open; call create_index first")
	}
	return h.mgr, nil
}

// RegisterTools adds all seven localsearch tools to an MCP server (§6).
func RegisterTools(s *server.MCPServer, host *ProjectHost) {
	addCreateIndexTool(s, host)
	addReindexProjectTool(s, host)
	addDeleteIndexTool(s, host)
	addSearchCodeTool(s, host)
	addSearchDocsTool(s, host)
	addSearchByPathTool(s, host)
	addGetIndexStatusTool(s, host)
}

func addCreateIndexTool(s *server.MCPServer, host *ProjectHost) {
	tool := mcp.NewTool("create_index",
		mcp.WithDescription("Detect the current project, build its code and documentation indexes, and start the file watcher."),
		mcp.WithString("project", mcp.Description("Absolute path to the project root; defaults to the current working directory.")),
	)
	s.AddTool(tool, func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		project := stringArg(req, "project", ".")
		mgr, err := indexmgr.Open(ctx, host.storageRoot, project)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		if err := mgr.CreateIndex(ctx, nil); err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		w, err := watcher.New(mgr.ProjectRoot(), mgr)
		if err == nil {
			w.Start(ctx)
		}

		host.mu.Lock()
		if host.watch != nil {
			host.watch.Stop()
		}
		host.mgr, host.project, host.watch = mgr, project, w
		host.mu.Unlock()

		return jsonResult(map[string]any{"status": "indexed", "indexDir": mgr.IndexDir()})
	})
}

func addReindexProjectTool(s *server.MCPServer, host *ProjectHost) {
	tool := mcp.NewTool("reindex_project",
		mcp.WithDescription("Rebuild the current project's index from scratch, preserving its configuration."))
	s.AddTool(tool, func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		mgr, err := host.manager()
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		if err := mgr.ReindexProject(ctx, nil); err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return jsonResult(map[string]any{"status": "reindexed"})
	})
}

func addDeleteIndexTool(s *server.MCPServer, host *ProjectHost) {
	tool := mcp.NewTool("delete_index",
		mcp.WithDescription("Remove the current project's index directory entirely."))
	s.AddTool(tool, func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		host.mu.Lock()
		mgr := host.mgr
		w := host.watch
		host.mgr, host.watch = nil, nil
		host.mu.Unlock()

		if mgr == nil {
			return mcp.NewToolResultError("no index is open"), nil
		}
		if w != nil {
			w.Stop()
		}
		if err := mgr.DeleteIndex(); err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return jsonResult(map[string]any{"status": "deleted"})
	})
}

// searchArgs binds the arguments shared by search_code and search_docs.
// json tags drive bindArguments's mapstructure decode.
type searchArgs struct {
	Query string `json:"query"`
	Limit int    `json:"limit"`
}

// pathSearchArgs binds search_by_path's glob pattern.
type pathSearchArgs struct {
	Pattern string `json:"pattern"`
}

func addSearchCodeTool(s *server.MCPServer, host *ProjectHost) {
	tool := mcp.NewTool("search_code",
		mcp.WithDescription("Hybrid semantic and lexical search over the project's code chunks."),
		mcp.WithString("query", mcp.Required(), mcp.Description("Natural-language or keyword search query.")),
		mcp.WithNumber("limit", mcp.Description("Maximum number of results (default 10).")),
		mcp.WithReadOnlyHintAnnotation(true),
	)
	s.AddTool(tool, func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		mgr, err := host.manager()
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		var a searchArgs
		if err := bindArguments(req, &a); err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		results, err := mgr.SearchCode(ctx, indexmgr.SearchOptions{
			Query: a.Query,
			Limit: a.Limit,
			Alpha: -1,
		})
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return jsonResult(search.ToDefault(results, 0, ""))
	})
}

func addSearchDocsTool(s *server.MCPServer, host *ProjectHost) {
	tool := mcp.NewTool("search_docs",
		mcp.WithDescription("Hybrid semantic and lexical search over the project's documentation chunks."),
		mcp.WithString("query", mcp.Required(), mcp.Description("Natural-language or keyword search query.")),
		mcp.WithNumber("limit", mcp.Description("Maximum number of results (default 10).")),
		mcp.WithReadOnlyHintAnnotation(true),
	)
	s.AddTool(tool, func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		mgr, err := host.manager()
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		var a searchArgs
		if err := bindArguments(req, &a); err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		results, err := mgr.SearchDocs(ctx, indexmgr.SearchOptions{
			Query: a.Query,
			Limit: a.Limit,
			Alpha: -1,
		})
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return jsonResult(search.ToDefault(results, 0, ""))
	})
}

func addSearchByPathTool(s *server.MCPServer, host *ProjectHost) {
	tool := mcp.NewTool("search_by_path",
		mcp.WithDescription("List indexed paths matching a glob pattern. Performs no embedding."),
		mcp.WithString("pattern", mcp.Required(), mcp.Description("Glob pattern to match against indexed project-relative paths.")),
		mcp.WithReadOnlyHintAnnotation(true),
	)
	s.AddTool(tool, func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		mgr, err := host.manager()
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		var a pathSearchArgs
		if err := bindArguments(req, &a); err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		paths, err := mgr.SearchByPath(a.Pattern)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return jsonResult(map[string]any{"paths": paths, "count": len(paths)})
	})
}

func addGetIndexStatusTool(s *server.MCPServer, host *ProjectHost) {
	tool := mcp.NewTool("get_index_status",
		mcp.WithDescription("Report chunk counts, last-index timestamps, embedding model identity, and any compatibility warning."),
		mcp.WithReadOnlyHintAnnotation(true),
	)
	s.AddTool(tool, func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		mgr, err := host.manager()
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		status, err := mgr.GetStatus(ctx)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return jsonResult(status)
	})
}

func stringArg(req mcp.CallToolRequest, name, def string) string {
	args, ok := req.Params.Arguments.(map[string]interface{})
	if !ok {
		return def
	}
	if v, ok := args[name].(string); ok && v != "" {
		return v
	}
	return def
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("marshal tool response: %w", err)
	}
	return mcp.NewToolResultText(string(data)), nil
}
