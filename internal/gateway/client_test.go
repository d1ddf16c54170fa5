package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/zap"

	"go-library-services/internal/core/config"
)

func newTestClient(authURL, bookURL, borrowURL string) *Client {
	return NewClient(config.Services{
		AuthURL:        authURL,
		BookURL:        bookURL,
		BorrowURL:      borrowURL,
		CallTimeoutSec: 5,
	}, zap.NewNop())
}

func TestClientLogin(t *testing.T) {
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/login" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		var in map[string]string
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			t.Errorf("decode body: %v", err)
		}
		if in["username"] != "alice" || in["password"] != "secret1" {
			t.Errorf("body = %v", in)
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{"token": "tok-123", "user_id": 7, "role": "user"})
	}))
	defer backend.Close()

	c := newTestClient(backend.URL, "", "")
	res, err := c.Login(context.Background(), "alice", "secret1")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if res.Token != "tok-123" || res.UserID != 7 || res.Role != "user" {
		t.Fatalf("result = %+v", res)
	}
}

func TestClientBackendError(t *testing.T) {
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		json.NewEncoder(w).Encode(map[string]string{"error": "Invalid username or password"})
	}))
	defer backend.Close()

	c := newTestClient(backend.URL, "", "")
	_, err := c.Login(context.Background(), "alice", "wrong")
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("err = %v, want *APIError", err)
	}
	if apiErr.Status != http.StatusUnauthorized || apiErr.Msg != "Invalid username or password" {
		t.Fatalf("apiErr = %+v", apiErr)
	}
	if apiErr.Error() != "Invalid username or password" {
		t.Fatalf("Error() = %q", apiErr.Error())
	}
}

func TestClientBearerForwarding(t *testing.T) {
	var gotAuth string
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{"books": []map[string]any{
			{"id": 1, "title": "dune", "author": "Frank Herbert", "available": true},
		}})
	}))
	defer backend.Close()

	c := newTestClient("", backend.URL, "")
	books, err := c.Books(context.Background(), "tok-123")
	if err != nil {
		t.Fatalf("Books: %v", err)
	}
	if gotAuth != "Bearer tok-123" {
		t.Fatalf("Authorization = %q", gotAuth)
	}
	if len(books) != 1 || books[0].Title != "dune" || !books[0].Available {
		t.Fatalf("books = %+v", books)
	}
}

func TestClientBorrowAndReturnPaths(t *testing.T) {
	var paths []string
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		paths = append(paths, r.Method+" "+r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/borrow":
			var in map[string]uint
			json.NewDecoder(r.Body).Decode(&in)
			if in["user_id"] != 7 || in["book_id"] != 3 {
				t.Errorf("borrow body = %v", in)
			}
			w.WriteHeader(http.StatusCreated)
			json.NewEncoder(w).Encode(map[string]any{"message": "Book borrowed successfully", "borrow_id": 42})
		case "/borrowed":
			json.NewEncoder(w).Encode(map[string]any{"borrowed_books": []map[string]any{
				{"id": 42, "book_id": 3, "title": "dune"},
			}})
		default:
			json.NewEncoder(w).Encode(map[string]string{"message": "Book returned successfully"})
		}
	}))
	defer backend.Close()

	c := newTestClient("", "", backend.URL)
	ctx := context.Background()

	if err := c.Borrow(ctx, "tok", 7, 3); err != nil {
		t.Fatalf("Borrow: %v", err)
	}
	rows, err := c.Borrowed(ctx, "tok")
	if err != nil {
		t.Fatalf("Borrowed: %v", err)
	}
	if len(rows) != 1 || rows[0].ID != 42 || rows[0].Title != "dune" {
		t.Fatalf("rows = %+v", rows)
	}
	if err := c.Return(ctx, "tok", 42); err != nil {
		t.Fatalf("Return: %v", err)
	}

	want := []string{"POST /borrow", "GET /borrowed", "POST /return/42"}
	if len(paths) != len(want) {
		t.Fatalf("paths = %v", paths)
	}
	for i := range want {
		if paths[i] != want[i] {
			t.Errorf("path[%d] = %q, want %q", i, paths[i], want[i])
		}
	}
}
