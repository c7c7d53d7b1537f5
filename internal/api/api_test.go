package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/starford/dagaz/internal/index"
	"github.com/starford/dagaz/internal/postservice"
	"github.com/starford/dagaz/internal/testutil"
)

// testEnv sets up a temp site tree, SQLite index, service, and router.
func testEnv(t *testing.T) (*index.DB, string, http.Handler) {
	t.Helper()

	blogsDir, site := testutil.TestSite(t)
	db := testutil.TestDB(t)

	svc := postservice.NewService(site, db)
	return db, blogsDir, NewRouter(svc, nil)
}

func seedPost(t *testing.T, db *index.DB, blogsDir, id, title, date, body string) {
	t.Helper()
	err := db.UpsertPost(index.PostRow{
		ID:        id,
		Title:     title,
		Date:      date,
		Images:    []string{},
		Checksum:  id,
		UpdatedAt: time.Now(),
	}, body)
	if err != nil {
		t.Fatalf("UpsertPost: %v", err)
	}
	if err := os.WriteFile(filepath.Join(blogsDir, id+".md"), []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestListPosts(t *testing.T) {
	db, blogsDir, router := testEnv(t)
	seedPost(t, db, blogsDir, "230101-a", "A", "2023-01-01", "# A\n")
	seedPost(t, db, blogsDir, "230201-b", "B", "2023-02-01", "# B\n")

	req := httptest.NewRequest(http.MethodGet, "/posts", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}

	var resp struct {
		Posts []postservice.PostListItem `json:"posts"`
		Total int                        `json:"total"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Total != 2 || len(resp.Posts) != 2 {
		t.Fatalf("resp = %+v", resp)
	}
	if resp.Posts[0].ID != "230201-b" {
		t.Errorf("expected newest first, got %q", resp.Posts[0].ID)
	}
}

func TestGetPost(t *testing.T) {
	db, blogsDir, router := testEnv(t)
	seedPost(t, db, blogsDir, "230101-a", "A", "2023-01-01", "# A\nbody\n")

	req := httptest.NewRequest(http.MethodGet, "/posts/230101-a", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}

	var detail postservice.PostDetail
	if err := json.Unmarshal(w.Body.Bytes(), &detail); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if detail.Title != "A" || detail.Content != "# A\nbody\n" {
		t.Errorf("detail = %+v", detail)
	}
}

func TestGetPost_NotFound(t *testing.T) {
	_, _, router := testEnv(t)

	req := httptest.NewRequest(http.MethodGet, "/posts/ghost", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", w.Code)
	}
}

func TestSearch(t *testing.T) {
	db, blogsDir, router := testEnv(t)
	seedPost(t, db, blogsDir, "230101-a", "A", "2023-01-01", "quiddity appears here\n")

	req := httptest.NewRequest(http.MethodGet, "/search?q=quiddity", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}

	var resp struct {
		Results []postservice.SearchHit `json:"results"`
		Total   int                     `json:"total"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Total != 1 || resp.Results[0].ID != "230101-a" {
		t.Errorf("resp = %+v", resp)
	}
}

func TestSearch_RequiresQuery(t *testing.T) {
	_, _, router := testEnv(t)

	req := httptest.NewRequest(http.MethodGet, "/search", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}
