package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/starford/spicerack/internal/catalog"
	"github.com/starford/spicerack/internal/library"
	"github.com/starford/spicerack/internal/mirror"
	"github.com/starford/spicerack/internal/spice"
	"github.com/starford/spicerack/internal/storage"
)

const testLib = `* PRODUCT_NAME: Test Woofer
* QTS: 0.38
.SUBCKT woofer 1 2
R1 1 3 6.4
L1 3 2 0.5m
.ENDS

.MODEL switchd D(IS=1e-14 N=1.05)
`

// testEnv sets up a temp library root, SQLite mirror, service, and router.
// authToken empty means auth disabled.
func testEnv(t *testing.T, authToken string) (*catalog.Service, http.Handler) {
	t.Helper()
	svc, router := testEnvFull(t, authToken != "", authToken, nil)
	return svc, router
}

func testEnvFull(t *testing.T, authEnabled bool, authToken string, sseHandler http.Handler) (*catalog.Service, http.Handler) {
	t.Helper()

	libDir := t.TempDir()
	if err := os.WriteFile(filepath.Join(libDir, "test.lib"), []byte(testLib), 0o644); err != nil {
		t.Fatal(err)
	}
	store, err := storage.NewFS([]string{libDir}, nil)
	if err != nil {
		t.Fatalf("NewFS: %v", err)
	}

	dbFile, err := os.CreateTemp("", "spicerack-api-test-*.db")
	if err != nil {
		t.Fatal(err)
	}
	dbFile.Close()
	t.Cleanup(func() { os.Remove(dbFile.Name()) })

	db, err := mirror.Open(dbFile.Name())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	ix := library.NewIndex(store, spice.NewLibraryParser(nil), log)
	svc := catalog.NewService(store, ix, db, log)
	if _, err := svc.Reindex(context.Background()); err != nil {
		t.Fatalf("Reindex: %v", err)
	}

	router := NewRouter(svc, authEnabled, authToken, sseHandler)
	return svc, router
}

func TestSearchSubcircuits(t *testing.T) {
	_, router := testEnv(t, "")

	req := httptest.NewRequest(http.MethodGet, "/subcircuits/search?q=woof", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("search status = %d, body = %s", w.Code, w.Body.String())
	}
	var resp SubcircuitSearchResponse
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	if len(resp.Results) != 1 {
		t.Fatalf("results = %d, want 1", len(resp.Results))
	}
	if resp.Results[0].Name != "woofer" {
		t.Errorf("name = %q", resp.Results[0].Name)
	}
}

func TestGetSubcircuit(t *testing.T) {
	_, router := testEnv(t, "")

	req := httptest.NewRequest(http.MethodGet, "/subcircuits/woofer", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("get status = %d", w.Code)
	}
	var def spice.SubcircuitDefinition
	_ = json.Unmarshal(w.Body.Bytes(), &def)
	if len(def.Nodes) != 2 {
		t.Errorf("nodes = %v, want 2", def.Nodes)
	}
	if def.Metadata["PRODUCT_NAME"] != "Test Woofer" {
		t.Errorf("metadata = %v", def.Metadata)
	}
}

func TestGetSubcircuit_NotFound(t *testing.T) {
	_, router := testEnv(t, "")

	req := httptest.NewRequest(http.MethodGet, "/subcircuits/nope", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusNotFound {
		t.Errorf("missing subcircuit = %d, want 404", w.Code)
	}
}

func TestSearchModels(t *testing.T) {
	_, router := testEnv(t, "")

	req := httptest.NewRequest(http.MethodGet, "/models/search?q=switch&type=diode", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("search status = %d", w.Code)
	}
	var resp ModelSearchResponse
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	if len(resp.Results) != 1 {
		t.Fatalf("results = %d, want 1", len(resp.Results))
	}
	if resp.Results[0].Name != "switchd" {
		t.Errorf("name = %q", resp.Results[0].Name)
	}
}

func TestFullTextSearch(t *testing.T) {
	_, router := testEnv(t, "")

	req := httptest.NewRequest(http.MethodGet, "/search?q=woofer", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("search = %d, body = %s", w.Code, w.Body.String())
	}
	var resp FullTextSearchResponse
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	if len(resp.Results) == 0 {
		t.Error("expected at least one result")
	}
}

func TestFullTextSearch_MissingQuery(t *testing.T) {
	_, router := testEnv(t, "")

	req := httptest.NewRequest(http.MethodGet, "/search", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusBadRequest {
		t.Errorf("search no query = %d, want 400", w.Code)
	}
}

func TestParseNetlist(t *testing.T) {
	_, router := testEnv(t, "")

	body, _ := json.Marshal(ParseNetlistRequest{Content: "* RC filter\nR1 1 2 1k\nC1 2 0 10u\n.end\n"})
	req := httptest.NewRequest(http.MethodPost, "/netlist/parse", bytes.NewReader(body))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("parse = %d, body = %s", w.Code, w.Body.String())
	}
	var resp ParseNetlistResponse
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	if resp.Title != "RC filter" {
		t.Errorf("title = %q", resp.Title)
	}
	if len(resp.Components) != 2 {
		t.Errorf("components = %d, want 2", len(resp.Components))
	}
}

func TestParseNetlist_BadLine(t *testing.T) {
	_, router := testEnv(t, "")

	body, _ := json.Marshal(ParseNetlistRequest{Content: "?1 1 2 bogus\n"})
	req := httptest.NewRequest(http.MethodPost, "/netlist/parse", bytes.NewReader(body))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("bad line = %d, want 400", w.Code)
	}
	var resp map[string]string
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	if resp["error"] == "" {
		t.Error("expected error message with offending line")
	}
}

func TestParseNetlist_EmptyContent(t *testing.T) {
	_, router := testEnv(t, "")

	body, _ := json.Marshal(ParseNetlistRequest{})
	req := httptest.NewRequest(http.MethodPost, "/netlist/parse", bytes.NewReader(body))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusBadRequest {
		t.Errorf("empty content = %d, want 400", w.Code)
	}
}

func TestResolveNetlist(t *testing.T) {
	_, router := testEnv(t, "")

	body, _ := json.Marshal(ParseNetlistRequest{
		Name:    "amp",
		Content: "R1 1 2 100\nXW1 2 0 woofer\n",
	})
	req := httptest.NewRequest(http.MethodPost, "/netlist/resolve", bytes.NewReader(body))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("resolve = %d, body = %s", w.Code, w.Body.String())
	}
	var resp ResolveNetlistResponse
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	if resp.Name != "amp" {
		t.Errorf("name = %q", resp.Name)
	}
	if resp.Components != 1 {
		t.Errorf("components = %d, want 1", resp.Components)
	}
	if len(resp.Instances) != 1 || resp.Instances[0].Subcircuit != "woofer" {
		t.Errorf("instances = %+v", resp.Instances)
	}
	if len(resp.Subcircuits) != 1 {
		t.Errorf("subcircuits = %v", resp.Subcircuits)
	}
}

func TestResolveNetlist_UnknownSubcircuit(t *testing.T) {
	_, router := testEnv(t, "")

	body, _ := json.Marshal(ParseNetlistRequest{Content: "X1 1 2 missing\n"})
	req := httptest.NewRequest(http.MethodPost, "/netlist/resolve", bytes.NewReader(body))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusNotFound {
		t.Errorf("unknown subcircuit = %d, want 404", w.Code)
	}
}

func TestResolveNetlist_NodeCountMismatch(t *testing.T) {
	_, router := testEnv(t, "")

	body, _ := json.Marshal(ParseNetlistRequest{Content: "X1 1 2 3 woofer\n"})
	req := httptest.NewRequest(http.MethodPost, "/netlist/resolve", bytes.NewReader(body))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusBadRequest {
		t.Errorf("node mismatch = %d, want 400", w.Code)
	}
}

func TestAddLibrary(t *testing.T) {
	_, router := testEnv(t, "")

	body, _ := json.Marshal(AddLibraryRequest{
		Filename: "extra.lib",
		Content:  ".SUBCKT tweeter 1 2\nR1 1 2 4.7\n.ENDS\n",
	})
	req := httptest.NewRequest(http.MethodPost, "/libraries", bytes.NewReader(body))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusCreated {
		t.Fatalf("add library = %d, body = %s", w.Code, w.Body.String())
	}
	var resp AddLibraryResponse
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	if resp.Stats.Subcircuits != 2 {
		t.Errorf("subcircuits after add = %d, want 2", resp.Stats.Subcircuits)
	}

	// New subcircuit is queryable.
	req = httptest.NewRequest(http.MethodGet, "/subcircuits/tweeter", nil)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Errorf("get after add = %d", w.Code)
	}
}

func TestAddLibrary_Duplicate(t *testing.T) {
	_, router := testEnv(t, "")

	body, _ := json.Marshal(AddLibraryRequest{Filename: "test.lib", Content: "* dup\n"})
	req := httptest.NewRequest(http.MethodPost, "/libraries", bytes.NewReader(body))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusConflict {
		t.Errorf("duplicate library = %d, want 409", w.Code)
	}
}

func TestReindexEndpoint(t *testing.T) {
	_, router := testEnv(t, "")

	req := httptest.NewRequest(http.MethodPost, "/reindex", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("reindex = %d", w.Code)
	}
	var stats library.Stats
	_ = json.Unmarshal(w.Body.Bytes(), &stats)
	if stats.Subcircuits != 1 || stats.Models != 1 {
		t.Errorf("stats = %+v", stats)
	}
}

func TestAuthMiddleware_ValidToken(t *testing.T) {
	_, router := testEnv(t, "secret123")

	req := httptest.NewRequest(http.MethodGet, "/models/search?q=switch", nil)
	req.Header.Set("Authorization", "Bearer secret123")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Errorf("authed search = %d, want 200", w.Code)
	}
}

func TestAuthMiddleware_MissingToken(t *testing.T) {
	_, router := testEnv(t, "secret123")

	req := httptest.NewRequest(http.MethodGet, "/models/search", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("unauthed = %d, want 401", w.Code)
	}
}

func TestAuthMiddleware_WrongToken(t *testing.T) {
	_, router := testEnv(t, "secret123")

	req := httptest.NewRequest(http.MethodGet, "/models/search", nil)
	req.Header.Set("Authorization", "Bearer wrong")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("wrong token = %d, want 401", w.Code)
	}
}

// SSE endpoint auth tests.

func TestSSEEvents_AuthProtected(t *testing.T) {
	sseHandler := blockingSSEHandler()
	_, router := testEnvFull(t, true, "secret", sseHandler)

	req := httptest.NewRequest(http.MethodGet, "/events", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("SSE no auth = %d, want 401", w.Code)
	}
}

func TestSSEEvents_AuthDisabled(t *testing.T) {
	sseHandler := blockingSSEHandler()
	_, router := testEnvFull(t, false, "", sseHandler)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	req := httptest.NewRequest(http.MethodGet, "/events", nil).WithContext(ctx)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code == http.StatusUnauthorized {
		t.Error("SSE should not require auth when disabled")
	}
}

// blockingSSEHandler writes headers and blocks until the request context ends.
func blockingSSEHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		w.WriteHeader(http.StatusOK)
		if f, ok := w.(http.Flusher); ok {
			f.Flush()
		}
		<-r.Context().Done()
	})
}
