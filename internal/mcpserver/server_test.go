package mcpserver

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/starford/dagaz/internal/index"
	"github.com/starford/dagaz/internal/postservice"
	"github.com/starford/dagaz/internal/testutil"
)

func testServer(t *testing.T, rebuild RebuildFunc) (*Server, *index.DB, string) {
	t.Helper()

	blogsDir, site := testutil.TestSite(t)
	db := testutil.TestDB(t)

	srv := New(postservice.NewService(site, db), rebuild)
	return srv, db, blogsDir
}

func seedPost(t *testing.T, db *index.DB, blogsDir, id, title, body string) {
	t.Helper()
	err := db.UpsertPost(index.PostRow{
		ID:        id,
		Title:     title,
		Date:      "2023-01-01",
		Images:    []string{},
		Checksum:  id,
		UpdatedAt: time.Now(),
	}, body)
	if err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(blogsDir, id+".md"), []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
}

func callTool(t *testing.T, srv *Server, name string, args map[string]interface{}) *mcp.CallToolResult {
	t.Helper()
	ctx := context.Background()
	req := mcp.CallToolRequest{}
	req.Method = "tools/call"
	req.Params.Name = name
	req.Params.Arguments = args

	// mcp-go has no direct "call tool" test helper, so the handler
	// functions are exercised directly.
	var result *mcp.CallToolResult
	var err error

	switch name {
	case "list_posts":
		result, err = srv.listPosts(ctx, req)
	case "read_post":
		result, err = srv.readPost(ctx, req)
	case "search_posts":
		result, err = srv.searchPosts(ctx, req)
	case "rebuild_site":
		result, err = srv.rebuildSite(ctx, req)
	case "get_post_contract":
		result, err = srv.getPostContract(ctx, req)
	default:
		t.Fatalf("unknown tool: %s", name)
	}

	if err != nil {
		t.Fatalf("tool %s error: %v", name, err)
	}
	return result
}

func resultText(r *mcp.CallToolResult) string {
	if len(r.Content) > 0 {
		if tc, ok := r.Content[0].(mcp.TextContent); ok {
			return tc.Text
		}
	}
	return ""
}

func TestReadPost(t *testing.T) {
	srv, db, blogsDir := testServer(t, nil)
	seedPost(t, db, blogsDir, "230101-a", "A", "# A\nHello\n")

	r := callTool(t, srv, "read_post", map[string]interface{}{"id": "230101-a"})
	if text := resultText(r); text != "# A\nHello\n" {
		t.Errorf("read result = %q", text)
	}
}

func TestReadPost_Missing(t *testing.T) {
	srv, _, _ := testServer(t, nil)
	r := callTool(t, srv, "read_post", map[string]interface{}{"id": "ghost"})
	if !r.IsError {
		t.Error("expected error for missing post")
	}
}

func TestListPosts(t *testing.T) {
	srv, db, blogsDir := testServer(t, nil)
	seedPost(t, db, blogsDir, "230101-a", "A", "a")
	seedPost(t, db, blogsDir, "230102-b", "B", "b")

	r := callTool(t, srv, "list_posts", map[string]interface{}{})
	text := resultText(r)
	if text == "" || r.IsError {
		t.Fatalf("list result = %q", text)
	}
}

func TestSearchPosts(t *testing.T) {
	srv, db, blogsDir := testServer(t, nil)
	seedPost(t, db, blogsDir, "230101-a", "A", "ineffable content here")

	r := callTool(t, srv, "search_posts", map[string]interface{}{"query": "ineffable"})
	if r.IsError {
		t.Fatalf("search errored: %s", resultText(r))
	}
}

func TestRebuildSite(t *testing.T) {
	called := false
	srv, _, _ := testServer(t, func() (int, error) {
		called = true
		return 3, nil
	})

	r := callTool(t, srv, "rebuild_site", map[string]interface{}{})
	if !called {
		t.Fatal("rebuild func not invoked")
	}
	if text := resultText(r); text != "rebuilt: 3 posts published" {
		t.Errorf("rebuild result = %q", text)
	}
}

func TestGetPostContract(t *testing.T) {
	srv, _, _ := testServer(t, nil)
	r := callTool(t, srv, "get_post_contract", map[string]interface{}{})
	if resultText(r) != PostFormatContract {
		t.Error("contract text mismatch")
	}
}
