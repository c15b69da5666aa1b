package usersapi

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/kalambet/newsetl/internal/record"
)

const userJSON = `{
	"id": 1,
	"nome": "Ana",
	"conta": {"agencia": "0001", "numero": "12345-6", "balanco": 20000.0, "limite": 1500.0},
	"cartao": {"numero": "**** 1111"},
	"news": [{"id": 1, "icone": "i.svg", "descricao": "bem-vinda"}]
}`

func TestGetUser_OK(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet || r.URL.Path != "/usuario/1" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(userJSON))
	}))
	defer srv.Close()

	c := NewClient(srv.URL+"/", time.Second)
	u, err := c.GetUser(context.Background(), 1)
	if err != nil {
		t.Fatalf("GetUser: %v", err)
	}
	if u == nil {
		t.Fatal("GetUser returned nil user")
	}
	if u.ID != 1 || u.Name != "Ana" {
		t.Errorf("user = %d/%q, want 1/Ana", u.ID, u.Name)
	}
	if u.Account.Balance != 20000 || u.Account.Agency != "0001" {
		t.Errorf("account = %+v", u.Account)
	}
	if len(u.News) != 1 {
		t.Errorf("len(News) = %d, want 1", len(u.News))
	}
}

func TestGetUser_NotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"detail":"not found"}`, http.StatusNotFound)
	}))
	defer srv.Close()

	u, err := NewClient(srv.URL, time.Second).GetUser(context.Background(), 999)
	if err != nil {
		t.Fatalf("GetUser: %v", err)
	}
	if u != nil {
		t.Errorf("user = %+v, want nil", u)
	}
}

func TestGetUser_ServerError(t *testing.T) {
	long := strings.Repeat("x", 500)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(long))
	}))
	defer srv.Close()

	u, err := NewClient(srv.URL, time.Second).GetUser(context.Background(), 3)
	if u != nil {
		t.Errorf("user = %+v, want nil", u)
	}

	var se *RemoteStatusError
	if !errors.As(err, &se) {
		t.Fatalf("err = %v, want *RemoteStatusError", err)
	}
	if se.StatusCode != http.StatusInternalServerError {
		t.Errorf("StatusCode = %d, want 500", se.StatusCode)
	}
	if len(se.Body) != 200 {
		t.Errorf("len(Body) = %d, want 200", len(se.Body))
	}
	if !strings.HasSuffix(se.URL, "/usuario/3") {
		t.Errorf("URL = %q", se.URL)
	}
}

func TestGetUser_TransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	_, err := NewClient(srv.URL, time.Second).GetUser(context.Background(), 1)
	var te *TransportError
	if !errors.As(err, &te) {
		t.Fatalf("err = %v, want *TransportError", err)
	}
	if te.Method != http.MethodGet {
		t.Errorf("Method = %q, want GET", te.Method)
	}
}

func TestGetUser_Timeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	_, err := NewClient(srv.URL, 50*time.Millisecond).GetUser(context.Background(), 1)
	var te *TransportError
	if !errors.As(err, &te) {
		t.Fatalf("err = %v, want *TransportError", err)
	}
}

func TestGetUser_MalformedBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"id": `))
	}))
	defer srv.Close()

	u, err := NewClient(srv.URL, time.Second).GetUser(context.Background(), 1)
	if err == nil || u != nil {
		t.Fatalf("GetUser = %+v, %v; want error", u, err)
	}
}

func TestUpdateUser_OK(t *testing.T) {
	var gotMethod, gotPath, gotContentType string
	var gotBody map[string]any

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotPath = r.URL.Path
		gotContentType = r.Header.Get("Content-Type")
		data, _ := io.ReadAll(r.Body)
		json.Unmarshal(data, &gotBody)
		w.Write(data)
	}))
	defer srv.Close()

	var u record.Record
	if err := json.Unmarshal([]byte(userJSON), &u); err != nil {
		t.Fatal(err)
	}
	record.Enrich(&u, "Ana, invista hoje.", "credit.svg")

	ok, err := NewClient(srv.URL, time.Second).UpdateUser(context.Background(), &u)
	if err != nil {
		t.Fatalf("UpdateUser: %v", err)
	}
	if !ok {
		t.Fatal("UpdateUser = false, want true")
	}

	if gotMethod != http.MethodPut {
		t.Errorf("method = %q, want PUT", gotMethod)
	}
	if gotPath != "/usuario/1" {
		t.Errorf("path = %q, want /usuario/1", gotPath)
	}
	if gotContentType != "application/json" {
		t.Errorf("content type = %q", gotContentType)
	}
	if _, ok := gotBody["cartao"]; !ok {
		t.Error("PUT body lost the cartao member")
	}
	news, _ := gotBody["news"].([]any)
	if len(news) != 2 {
		t.Fatalf("len(news) = %d, want 2", len(news))
	}
}

func TestUpdateUser_ErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "unprocessable", http.StatusUnprocessableEntity)
	}))
	defer srv.Close()

	ok, err := NewClient(srv.URL, time.Second).UpdateUser(context.Background(), &record.Record{ID: 5})
	if err != nil {
		t.Fatalf("UpdateUser error = %v, want nil", err)
	}
	if ok {
		t.Error("UpdateUser = true, want false")
	}
}

func TestUpdateUser_TransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	ok, err := NewClient(srv.URL, time.Second).UpdateUser(context.Background(), &record.Record{ID: 5})
	if ok {
		t.Error("UpdateUser = true, want false")
	}
	var te *TransportError
	if !errors.As(err, &te) {
		t.Fatalf("err = %v, want *TransportError", err)
	}
	if te.Method != http.MethodPut {
		t.Errorf("Method = %q, want PUT", te.Method)
	}
}
