package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/kalambet/newsetl/internal/record"
	"github.com/kalambet/newsetl/internal/usersapi"
)

const seedJSON = `[
  {"id": 1, "nome": "Ana", "conta": {"agencia": "0001", "numero": "12345-6", "balanco": 1500.5, "limite": 1000}, "news": [], "cartao": {"numero": "xxxx"}},
  {"id": 2, "nome": "Bruno", "conta": null, "news": [{"id": 3, "icone": "i.svg", "descricao": "old"}]}
]`

func seedStore(t *testing.T) *MemoryStore {
	t.Helper()
	path := filepath.Join(t.TempDir(), "users.json")
	if err := os.WriteFile(path, []byte(seedJSON), 0o644); err != nil {
		t.Fatal(err)
	}
	store, err := LoadSeedFile(path)
	if err != nil {
		t.Fatalf("LoadSeedFile: %v", err)
	}
	return store
}

func TestHealth(t *testing.T) {
	h := NewRecordHandler(NewMemoryStore())

	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	h.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rr.Code, http.StatusOK)
	}

	var body map[string]string
	json.NewDecoder(rr.Body).Decode(&body)
	if body["status"] != "ok" {
		t.Errorf("body = %v, want status=ok", body)
	}
}

func TestLoadSeedFile(t *testing.T) {
	store := seedStore(t)
	if diff := cmp.Diff([]int{1, 2}, store.IDs()); diff != "" {
		t.Errorf("ids (-want +got):\n%s", diff)
	}

	path := filepath.Join(t.TempDir(), "bad.json")
	os.WriteFile(path, []byte(`[{"nome": "no id"}]`), 0o644)
	if _, err := LoadSeedFile(path); err == nil {
		t.Error("expected error for entry without id")
	}
}

func TestGetUser(t *testing.T) {
	h := NewRecordHandler(seedStore(t))

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/usuario/1", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rr.Code)
	}

	var body map[string]any
	if err := json.NewDecoder(rr.Body).Decode(&body); err != nil {
		t.Fatal(err)
	}
	if body["nome"] != "Ana" {
		t.Errorf("nome = %v", body["nome"])
	}
	if _, ok := body["cartao"]; !ok {
		t.Error("unmodelled members should be served back")
	}
}

func TestGetUser_Errors(t *testing.T) {
	h := NewRecordHandler(seedStore(t))

	tests := []struct {
		path string
		code int
	}{
		{"/usuario/999", http.StatusNotFound},
		{"/usuario/abc", http.StatusBadRequest},
	}
	for _, tt := range tests {
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, tt.path, nil))
		if rr.Code != tt.code {
			t.Errorf("GET %s: status = %d, want %d", tt.path, rr.Code, tt.code)
		}
	}
}

func TestPutUser(t *testing.T) {
	store := seedStore(t)
	h := NewRecordHandler(store)

	body := `{"id": 2, "nome": "Bruno", "conta": null, "news": [{"id": 3, "icone": "i.svg", "descricao": "old"}, {"id": 4, "icone": "i.svg", "descricao": "new"}]}`
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodPut, "/usuario/2", strings.NewReader(body)))
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rr.Code, rr.Body.String())
	}

	u, ok := store.Get(2)
	if !ok {
		t.Fatal("user 2 missing after PUT")
	}
	if len(u.News) != 2 || u.News[1].Description != "new" {
		t.Errorf("news = %+v", u.News)
	}
}

func TestPutUser_Errors(t *testing.T) {
	h := NewRecordHandler(seedStore(t))

	tests := []struct {
		name string
		path string
		body string
		code int
	}{
		{"id mismatch", "/usuario/1", `{"id": 2, "nome": "x"}`, http.StatusBadRequest},
		{"unknown user", "/usuario/999", `{"id": 999, "nome": "x"}`, http.StatusNotFound},
		{"bad json", "/usuario/1", `{`, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := httptest.NewRecorder()
			h.ServeHTTP(rr, httptest.NewRequest(http.MethodPut, tt.path, strings.NewReader(tt.body)))
			if rr.Code != tt.code {
				t.Errorf("status = %d, want %d", rr.Code, tt.code)
			}
		})
	}
}

// TestClientRoundTrip drives the service with the pipeline's HTTP client.
func TestClientRoundTrip(t *testing.T) {
	store := seedStore(t)
	srv := httptest.NewServer(NewRecordHandler(store))
	t.Cleanup(srv.Close)

	c := usersapi.NewClient(srv.URL+"/", 5*time.Second)
	ctx := context.Background()

	u, err := c.GetUser(ctx, 1)
	if err != nil || u == nil {
		t.Fatalf("GetUser(1) = %v, %v", u, err)
	}
	record.Enrich(u, "Ana, invista hoje.", "icon.svg")

	ok, err := c.UpdateUser(ctx, u)
	if err != nil || !ok {
		t.Fatalf("UpdateUser = %v, %v", ok, err)
	}

	stored, _ := store.Get(1)
	last, has := stored.LastNews()
	if !has || last.ID != 1 || last.Description != "Ana, invista hoje." {
		t.Errorf("stored news = %+v", stored.News)
	}

	data, err := json.Marshal(stored)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), `"cartao"`) {
		t.Errorf("unmodelled members lost on update: %s", data)
	}

	missing, err := c.GetUser(ctx, 999)
	if err != nil || missing != nil {
		t.Errorf("GetUser(999) = %v, %v, want nil, nil", missing, err)
	}
}
