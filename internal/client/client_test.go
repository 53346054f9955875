package client

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/spf13/afero"

	"github.com/gutenmorgen/gm/store"
	"github.com/gutenmorgen/gm/types"
)

func newTestClient(t *testing.T, handler http.HandlerFunc, opts ...Option) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	cfg := types.APIConfig{Key: "test-key", BaseURL: srv.URL, TimeoutSeconds: 5}
	return New(cfg, opts...)
}

func newTestCache(t *testing.T) *store.CacheStore {
	t.Helper()
	s, err := store.New(afero.NewMemMapFs(), "/cache")
	if err != nil {
		t.Fatalf("cache setup failed: %v", err)
	}
	return s
}

func TestClient_SendsAPIKeyHeader(t *testing.T) {
	var gotAuth, gotAccept string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotAccept = r.Header.Get("Accept")
		_, _ = w.Write([]byte(`[]`))
	})

	if _, err := c.ListAccounts(context.Background()); err != nil {
		t.Fatalf("ListAccounts failed: %v", err)
	}
	if gotAuth != "ApiKey test-key" {
		t.Errorf("Authorization = %q", gotAuth)
	}
	if gotAccept != "application/json" {
		t.Errorf("Accept = %q", gotAccept)
	}
}

func TestClient_Unauthorized(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})
	_, err := c.ListAccounts(context.Background())
	var authErr *types.AuthenticationError
	if !errors.As(err, &authErr) {
		t.Fatalf("expected AuthenticationError, got %v", err)
	}
}

func TestClient_RateLimited(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Retry-After", "42")
		w.WriteHeader(http.StatusTooManyRequests)
	})
	_, err := c.ListAccounts(context.Background())
	var rateErr *types.RateLimitError
	if !errors.As(err, &rateErr) {
		t.Fatalf("expected RateLimitError, got %v", err)
	}
	if rateErr.RetryAfter != "42" {
		t.Errorf("RetryAfter = %q, want 42", rateErr.RetryAfter)
	}
}

func TestClient_RateLimitedWithoutHeader(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	})
	_, err := c.ListAccounts(context.Background())
	var rateErr *types.RateLimitError
	if !errors.As(err, &rateErr) {
		t.Fatalf("expected RateLimitError, got %v", err)
	}
	if rateErr.RetryAfter != "unknown" {
		t.Errorf("RetryAfter = %q, want unknown", rateErr.RetryAfter)
	}
}

func TestClient_NotFound(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})
	_, err := c.GetTask(context.Background(), "missing")
	var nfErr *types.NotFoundError
	if !errors.As(err, &nfErr) {
		t.Fatalf("expected NotFoundError, got %v", err)
	}
}

func TestClient_ServerError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte("boom"))
	})
	_, err := c.ListAccounts(context.Background())
	var apiErr *types.APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected APIError, got %v", err)
	}
	if apiErr.Status != 500 || apiErr.Body != "boom" {
		t.Errorf("APIError = %+v", apiErr)
	}
}

func TestClient_NoContentDelete(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	if err := c.DeleteTask(context.Background(), "t1"); err != nil {
		t.Fatalf("DeleteTask on 204 failed: %v", err)
	}
}

func TestUnwrap(t *testing.T) {
	cases := []struct {
		name string
		raw  string
		key  string
		want string
	}{
		{"bare array", `[1,2]`, "accounts", `[1,2]`},
		{"data array", `{"data":[1,2]}`, "accounts", `[1,2]`},
		{"data keyed", `{"data":{"accounts":[1,2]}}`, "accounts", `[1,2]`},
		{"keyed no data", `{"tasks":[1]}`, "tasks", `[1]`},
		{"bare object", `{"id":"x"}`, "event", `{"id":"x"}`},
		{"data object", `{"data":{"id":"x"}}`, "event", `{"id":"x"}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := string(unwrap([]byte(tc.raw), tc.key))
			if got != tc.want {
				t.Errorf("unwrap(%s, %q) = %s, want %s", tc.raw, tc.key, got, tc.want)
			}
		})
	}
}

func TestDecodeList_NonArrayPayload(t *testing.T) {
	got, err := decodeList[int]([]byte(`{"data":{"other":1}}`), "accounts")
	if err != nil {
		t.Fatalf("decodeList failed: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("expected empty list, got %v", got)
	}
}

func TestClient_ListAccountsEnvelopes(t *testing.T) {
	for _, body := range []string{
		`[{"id":"a1"}]`,
		`{"data":[{"id":"a1"}]}`,
		`{"data":{"accounts":[{"id":"a1"}]}}`,
	} {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(body))
		})
		accounts, err := c.ListAccounts(context.Background())
		if err != nil {
			t.Fatalf("ListAccounts(%s) failed: %v", body, err)
		}
		if len(accounts) != 1 || accounts[0].ID != "a1" {
			t.Errorf("ListAccounts(%s) = %+v", body, accounts)
		}
	}
}

func TestClient_CachedListSkipsOrigin(t *testing.T) {
	hits := 0
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		hits++
		_, _ = w.Write([]byte(`{"data":{"accounts":[{"id":"a1"}]}}`))
	}, WithCache(newTestCache(t)))

	for i := 0; i < 3; i++ {
		accounts, err := c.ListAccounts(context.Background())
		if err != nil {
			t.Fatalf("ListAccounts failed: %v", err)
		}
		if len(accounts) != 1 {
			t.Fatalf("wrong account count: %d", len(accounts))
		}
	}
	if hits != 1 {
		t.Errorf("origin hit %d times, want 1", hits)
	}
}

func TestClient_NoCacheHitsOriginEveryTime(t *testing.T) {
	hits := 0
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		hits++
		_, _ = w.Write([]byte(`[]`))
	})

	for i := 0; i < 2; i++ {
		if _, err := c.ListAccounts(context.Background()); err != nil {
			t.Fatalf("ListAccounts failed: %v", err)
		}
	}
	if hits != 2 {
		t.Errorf("origin hit %d times, want 2", hits)
	}
}

func TestClient_MutationInvalidatesListings(t *testing.T) {
	listHits := 0
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/tasks/list":
			listHits++
			_, _ = w.Write([]byte(`{"data":{"tasks":[{"id":"t1"}]}}`))
		case "/tasks/create":
			_, _ = w.Write([]byte(`{"data":{"id":"t2"}}`))
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
	}, WithCache(newTestCache(t)))
	ctx := context.Background()

	if _, err := c.ListTasks(ctx, 100, ""); err != nil {
		t.Fatalf("ListTasks failed: %v", err)
	}
	if _, err := c.ListTasks(ctx, 100, ""); err != nil {
		t.Fatalf("cached ListTasks failed: %v", err)
	}
	if listHits != 1 {
		t.Fatalf("expected 1 list hit before mutation, got %d", listHits)
	}

	if _, err := c.CreateTask(ctx, map[string]any{"title": "x"}); err != nil {
		t.Fatalf("CreateTask failed: %v", err)
	}

	if _, err := c.ListTasks(ctx, 100, ""); err != nil {
		t.Fatalf("ListTasks after mutation failed: %v", err)
	}
	if listHits != 2 {
		t.Errorf("expected the mutation to invalidate the listing, got %d hits", listHits)
	}
}

func TestClient_GetTaskNullBodyIsNotFound(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	_, err := c.GetTask(context.Background(), "t1")
	var nfErr *types.NotFoundError
	if !errors.As(err, &nfErr) {
		t.Fatalf("expected NotFoundError for empty body, got %v", err)
	}
}

func TestClient_GetTaskCachesResult(t *testing.T) {
	hits := 0
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		hits++
		_, _ = w.Write([]byte(`{"data":{"task":{"id":"t1","title":"Ship"}}}`))
	}, WithCache(newTestCache(t)))
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		task, err := c.GetTask(ctx, "t1")
		if err != nil {
			t.Fatalf("GetTask failed: %v", err)
		}
		if task.Title != "Ship" {
			t.Errorf("title = %q", task.Title)
		}
	}
	if hits != 1 {
		t.Errorf("origin hit %d times, want 1", hits)
	}
}

func TestClient_ListTaskAccountsFiltersByCapability(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[
			{"id":"a1","integrationId":"google","integrationGroups":["calendars"]},
			{"id":"a2","integrationId":"linear","integrationGroups":["tasks"]}
		]`))
	})
	accounts, err := c.ListTaskAccounts(context.Background())
	if err != nil {
		t.Fatalf("ListTaskAccounts failed: %v", err)
	}
	if len(accounts) != 1 || accounts[0].ID != "a2" {
		t.Errorf("task accounts = %+v", accounts)
	}
}

func TestEventsCacheKey(t *testing.T) {
	a := eventsCacheKey("acct", []string{"c1", "c2"}, "2026-02-20", "2026-02-21")
	b := eventsCacheKey("acct", []string{"c2", "c1"}, "2026-02-20", "2026-02-21")
	if a != b {
		t.Error("calendar order should not change the cache key")
	}
	d := eventsCacheKey("acct", []string{"c1", "c2"}, "2026-02-21", "2026-02-22")
	if a == d {
		t.Error("different ranges should produce different cache keys")
	}
	// "events/" + 12 hex chars
	if len(a) != len("events/")+12 {
		t.Errorf("key shape wrong: %q", a)
	}
}
