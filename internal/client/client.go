// Package client implements the authenticated Morgen v3 API client and
// the multi-account aggregation layer built on top of it. All reads go
// through the cache store when one is attached; the cache is advisory
// and a failed cache write never fails the read that prompted it.
package client

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/gutenmorgen/gm/internal/timeutil"
	"github.com/gutenmorgen/gm/models"
	"github.com/gutenmorgen/gm/store"
	"github.com/gutenmorgen/gm/types"
)

// Client is a synchronous HTTP client for the Morgen v3 API. There is no
// retry loop here; retry-on-rate-limit is a caller concern.
type Client struct {
	http    *http.Client
	baseURL string
	apiKey  string
	cache   *store.CacheStore // nil disables caching
	verbose bool
}

// Option configures a Client.
type Option func(*Client)

// WithCache attaches a response cache.
func WithCache(c *store.CacheStore) Option {
	return func(cl *Client) { cl.cache = c }
}

// WithVerbose enables request logging to stderr.
func WithVerbose(v bool) Option {
	return func(cl *Client) { cl.verbose = v }
}

// WithHTTPClient replaces the underlying transport, mainly for tests.
func WithHTTPClient(h *http.Client) Option {
	return func(cl *Client) { cl.http = h }
}

// New creates a Client from resolved API configuration.
func New(cfg types.APIConfig, opts ...Option) *Client {
	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	cl := &Client{
		http:    &http.Client{Timeout: timeout},
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:  cfg.Key,
	}
	for _, opt := range opts {
		opt(cl)
	}
	return cl
}

func (c *Client) logf(format string, args ...any) {
	if c.verbose {
		fmt.Fprintf(os.Stderr, format+"\n", args...)
	}
}

// request performs one API call and maps the outcome to the error
// taxonomy. A 204 returns (nil, nil), distinct from an empty object.
func (c *Client) request(ctx context.Context, method, path string, query url.Values, body any) ([]byte, error) {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var reqBody io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encode request body: %w", err)
		}
		reqBody = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reqBody)
	if err != nil {
		return nil, fmt.Errorf("build request %s %s: %w", method, path, err)
	}
	req.Header.Set("Authorization", "ApiKey "+c.apiKey)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	c.logf("gm: %s %s", method, path)
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		return nil, &types.AuthenticationError{Message: "Invalid or missing API key"}
	case resp.StatusCode == http.StatusTooManyRequests:
		retryAfter := resp.Header.Get("Retry-After")
		if retryAfter == "" {
			retryAfter = "unknown"
		}
		return nil, types.NewRateLimitError(retryAfter)
	case resp.StatusCode == http.StatusNotFound:
		return nil, &types.NotFoundError{Message: "Resource not found: " + path}
	case resp.StatusCode >= 400:
		raw, _ := io.ReadAll(resp.Body)
		return nil, &types.APIError{Status: resp.StatusCode, Body: string(raw)}
	case resp.StatusCode == http.StatusNoContent:
		return nil, nil
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response %s %s: %w", method, path, err)
	}
	return raw, nil
}

// unwrap peels Morgen's response envelope down to the payload for the
// named collection. The API returns either a bare array, a bare object,
// or an object wrapping the payload under "data", optionally nested
// under key ({"data": {"tasks": [...]}}).
func unwrap(raw []byte, key string) json.RawMessage {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return nil
	}
	if trimmed[0] == '[' {
		return trimmed
	}
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &obj); err != nil {
		return trimmed
	}
	inner := json.RawMessage(trimmed)
	if d, ok := obj["data"]; ok {
		inner = d
	}
	inner = bytes.TrimSpace(inner)
	if len(inner) == 0 || inner[0] == '[' {
		return inner
	}
	var innerObj map[string]json.RawMessage
	if err := json.Unmarshal(inner, &innerObj); err != nil {
		return inner
	}
	if v, ok := innerObj[key]; ok {
		return v
	}
	return inner
}

// decodeList unwraps and decodes a collection response. A payload that
// is not an array decodes to an empty slice rather than an error.
func decodeList[T any](raw []byte, key string) ([]T, error) {
	inner := bytes.TrimSpace(unwrap(raw, key))
	if len(inner) == 0 || inner[0] != '[' {
		return []T{}, nil
	}
	var out []T
	if err := json.Unmarshal(inner, &out); err != nil {
		return nil, fmt.Errorf("decode %s list: %w", key, err)
	}
	return out, nil
}

// decodeSingle unwraps and decodes a single-item response. nil raw (a
// 204) yields a nil result.
func decodeSingle[T any](raw []byte, key string) (*T, error) {
	if raw == nil {
		return nil, nil
	}
	inner := unwrap(raw, key)
	if len(bytes.TrimSpace(inner)) == 0 {
		return nil, nil
	}
	var out T
	if err := json.Unmarshal(inner, &out); err != nil {
		return nil, fmt.Errorf("decode %s: %w", key, err)
	}
	return &out, nil
}

// cacheGet reads raw payload bytes from the cache, if attached.
func (c *Client) cacheGet(key string) ([]byte, bool) {
	if c.cache == nil {
		return nil, false
	}
	return c.cache.Get(key)
}

// cacheSet writes to the cache best-effort. A failed write is logged and
// otherwise ignored: it must never fail the read that produced the data.
func (c *Client) cacheSet(key string, payload []byte, ttl time.Duration) {
	if c.cache == nil {
		return
	}
	if err := c.cache.Set(key, payload, ttl); err != nil {
		c.logf("gm: cache write for %s failed: %v", key, err)
	}
}

func (c *Client) cacheInvalidate(prefix string) {
	if c.cache == nil {
		return
	}
	if err := c.cache.Invalidate(prefix); err != nil {
		c.logf("gm: cache invalidate for %s failed: %v", prefix, err)
	}
}

// cachedList runs a cache-backed list fetch: return the cached slice if
// fresh, otherwise fetch, cache the unwrapped array, and decode it.
func cachedList[T any](ctx context.Context, c *Client, cacheKey string, ttl time.Duration, key string, fetch func(context.Context) ([]byte, error)) ([]T, error) {
	if raw, ok := c.cacheGet(cacheKey); ok {
		var out []T
		if err := json.Unmarshal(raw, &out); err == nil {
			return out, nil
		}
		// Undecodable cache payload: fall through to the origin.
	}
	raw, err := fetch(ctx)
	if err != nil {
		return nil, err
	}
	inner := bytes.TrimSpace(unwrap(raw, key))
	if len(inner) == 0 || inner[0] != '[' {
		inner = []byte("[]")
	}
	c.cacheSet(cacheKey, inner, ttl)
	var out []T
	if err := json.Unmarshal(inner, &out); err != nil {
		return nil, fmt.Errorf("decode %s list: %w", key, err)
	}
	return out, nil
}

// ----- Accounts -----

// ListAccounts lists connected accounts across all integrations.
func (c *Client) ListAccounts(ctx context.Context) ([]models.Account, error) {
	return cachedList[models.Account](ctx, c, "accounts", store.TTLAccounts, "accounts",
		func(ctx context.Context) ([]byte, error) {
			return c.request(ctx, http.MethodGet, "/integrations/accounts/list", nil, nil)
		})
}

// ListTaskAccounts lists accounts with task integrations (Linear,
// Notion, ...). This is a derived list cached on its own key.
func (c *Client) ListTaskAccounts(ctx context.Context) ([]models.Account, error) {
	if raw, ok := c.cacheGet("task_accounts"); ok {
		var out []models.Account
		if err := json.Unmarshal(raw, &out); err == nil {
			return out, nil
		}
	}
	accounts, err := c.ListAccounts(ctx)
	if err != nil {
		return nil, err
	}
	result := []models.Account{}
	for _, a := range accounts {
		if a.HasGroup("tasks") {
			result = append(result, a)
		}
	}
	if raw, err := json.Marshal(result); err == nil {
		c.cacheSet("task_accounts", raw, store.TTLTaskAccounts)
	}
	return result, nil
}

// ----- Calendars -----

// ListCalendars lists all calendars across accounts.
func (c *Client) ListCalendars(ctx context.Context) ([]models.Calendar, error) {
	return cachedList[models.Calendar](ctx, c, "calendars", store.TTLCalendars, "calendars",
		func(ctx context.Context) ([]byte, error) {
			return c.request(ctx, http.MethodGet, "/calendars/list", nil, nil)
		})
}

// UpdateCalendar updates calendar properties (e.g. busy status).
func (c *Client) UpdateCalendar(ctx context.Context, calendar map[string]any) (*models.Calendar, error) {
	raw, err := c.request(ctx, http.MethodPost, "/calendars/update", nil, calendar)
	if err != nil {
		return nil, err
	}
	c.cacheInvalidate("calendars")
	return decodeSingle[models.Calendar](raw, "calendar")
}

// ----- Events -----

// eventsCacheKey derives a stable short key from the query parameters.
func eventsCacheKey(accountID string, calendarIDs []string, start, end string) string {
	ids := append([]string(nil), calendarIDs...)
	sort.Strings(ids)
	seed := accountID + ":" + strings.Join(ids, ",") + ":" + start + ":" + end
	sum := sha256.Sum256([]byte(seed))
	return "events/" + hex.EncodeToString(sum[:])[:12]
}

// ListEvents lists events for one account's calendars in a date range.
func (c *Client) ListEvents(ctx context.Context, accountID string, calendarIDs []string, start, end string) ([]models.Event, error) {
	key := eventsCacheKey(accountID, calendarIDs, start, end)
	return cachedList[models.Event](ctx, c, key, store.TTLEvents, "events",
		func(ctx context.Context) ([]byte, error) {
			q := url.Values{
				"accountId":   {accountID},
				"calendarIds": {strings.Join(calendarIDs, ",")},
				"start":       {start},
				"end":         {end},
			}
			return c.request(ctx, http.MethodGet, "/events/list", q, nil)
		})
}

// CreateEvent creates an event and invalidates cached event listings.
func (c *Client) CreateEvent(ctx context.Context, event map[string]any) (*models.Event, error) {
	raw, err := c.request(ctx, http.MethodPost, "/events/create", nil, event)
	if err != nil {
		return nil, err
	}
	c.cacheInvalidate("events")
	return decodeSingle[models.Event](raw, "event")
}

// UpdateEvent updates an event and invalidates cached event listings.
func (c *Client) UpdateEvent(ctx context.Context, event map[string]any) (*models.Event, error) {
	raw, err := c.request(ctx, http.MethodPost, "/events/update", nil, event)
	if err != nil {
		return nil, err
	}
	c.cacheInvalidate("events")
	return decodeSingle[models.Event](raw, "event")
}

// DeleteEvent deletes an event and invalidates cached event listings.
func (c *Client) DeleteEvent(ctx context.Context, event map[string]any) error {
	if _, err := c.request(ctx, http.MethodPost, "/events/delete", nil, event); err != nil {
		return err
	}
	c.cacheInvalidate("events")
	return nil
}

// RSVPEvent sets the caller's participation status on an event.
func (c *Client) RSVPEvent(ctx context.Context, rsvp map[string]any) (*models.Event, error) {
	raw, err := c.request(ctx, http.MethodPost, "/events/rsvp", nil, rsvp)
	if err != nil {
		return nil, err
	}
	c.cacheInvalidate("events")
	return decodeSingle[models.Event](raw, "event")
}

// ----- Tasks -----

// ListTasks lists Morgen-native tasks.
func (c *Client) ListTasks(ctx context.Context, limit int, updatedAfter string) ([]models.Task, error) {
	return cachedList[models.Task](ctx, c, "tasks/list", store.TTLTasks, "tasks",
		func(ctx context.Context) ([]byte, error) {
			q := url.Values{"limit": {fmt.Sprint(limit)}}
			if updatedAfter != "" {
				q.Set("updatedAfter", updatedAfter)
			}
			return c.request(ctx, http.MethodGet, "/tasks/list", q, nil)
		})
}

// GetTask fetches a single task by id.
func (c *Client) GetTask(ctx context.Context, taskID string) (*models.Task, error) {
	cacheKey := "tasks/" + taskID
	if raw, ok := c.cacheGet(cacheKey); ok {
		var t models.Task
		if err := json.Unmarshal(raw, &t); err == nil {
			return &t, nil
		}
	}
	raw, err := c.request(ctx, http.MethodGet, "/tasks/", url.Values{"id": {taskID}}, nil)
	if err != nil {
		return nil, err
	}
	task, err := decodeSingle[models.Task](raw, "task")
	if err != nil {
		return nil, err
	}
	if task == nil {
		return nil, &types.NotFoundError{Message: "Task " + taskID + " not found"}
	}
	if enc, err := json.Marshal(task); err == nil {
		c.cacheSet(cacheKey, enc, store.TTLSingle)
	}
	return task, nil
}

// CreateTask creates a native task.
func (c *Client) CreateTask(ctx context.Context, task map[string]any) (*models.Task, error) {
	raw, err := c.request(ctx, http.MethodPost, "/tasks/create", nil, task)
	if err != nil {
		return nil, err
	}
	c.cacheInvalidate("tasks")
	return decodeSingle[models.Task](raw, "task")
}

// UpdateTask updates a task.
func (c *Client) UpdateTask(ctx context.Context, task map[string]any) (*models.Task, error) {
	raw, err := c.request(ctx, http.MethodPost, "/tasks/update", nil, task)
	if err != nil {
		return nil, err
	}
	c.cacheInvalidate("tasks")
	return decodeSingle[models.Task](raw, "task")
}

// CloseTask marks a task completed.
func (c *Client) CloseTask(ctx context.Context, taskID string) (*models.Task, error) {
	raw, err := c.request(ctx, http.MethodPost, "/tasks/close", nil, map[string]any{"id": taskID})
	if err != nil {
		return nil, err
	}
	c.cacheInvalidate("tasks")
	return decodeSingle[models.Task](raw, "task")
}

// ReopenTask reopens a completed task.
func (c *Client) ReopenTask(ctx context.Context, taskID string) (*models.Task, error) {
	raw, err := c.request(ctx, http.MethodPost, "/tasks/reopen", nil, map[string]any{"id": taskID})
	if err != nil {
		return nil, err
	}
	c.cacheInvalidate("tasks")
	return decodeSingle[models.Task](raw, "task")
}

// MoveTask reorders or nests a task.
func (c *Client) MoveTask(ctx context.Context, taskID, after, parent string) (*models.Task, error) {
	payload := map[string]any{"id": taskID}
	if after != "" {
		payload["after"] = after
	}
	if parent != "" {
		payload["parent"] = parent
	}
	raw, err := c.request(ctx, http.MethodPost, "/tasks/move", nil, payload)
	if err != nil {
		return nil, err
	}
	c.cacheInvalidate("tasks")
	return decodeSingle[models.Task](raw, "task")
}

// DeleteTask deletes a task.
func (c *Client) DeleteTask(ctx context.Context, taskID string) error {
	if _, err := c.request(ctx, http.MethodPost, "/tasks/delete", nil, map[string]any{"id": taskID}); err != nil {
		return err
	}
	c.cacheInvalidate("tasks")
	return nil
}

// ScheduleTaskOptions tune ScheduleTask.
type ScheduleTaskOptions struct {
	// DurationMinutes overrides the task's estimated duration.
	DurationMinutes int
	// TimeZone is the IANA zone for the created event; empty falls back
	// to the system zone. The API requires one for timed events.
	TimeZone string
}

// ScheduleTask creates a calendar event linked back to a task. Title and
// duration are derived from the task; the event carries
// morgen.so:metadata.taskId so the desktop apps show the link.
func (c *Client) ScheduleTask(ctx context.Context, taskID, start, calendarID, accountID string, opts ScheduleTaskOptions) (*models.Event, error) {
	task, err := c.GetTask(ctx, taskID)
	if err != nil {
		return nil, err
	}

	title := task.Title
	if title == "" {
		title = "Untitled task"
	}

	duration := "PT30M"
	if opts.DurationMinutes > 0 {
		duration = fmt.Sprintf("PT%dM", opts.DurationMinutes)
	} else if task.EstimatedDuration != "" {
		duration = task.EstimatedDuration
	}

	tz := opts.TimeZone
	if tz == "" {
		tz = timeutil.LocalZone()
	}

	event, err := c.CreateEvent(ctx, map[string]any{
		"title":              title,
		"start":              start,
		"duration":           duration,
		"calendarId":         calendarID,
		"accountId":          accountID,
		"showWithoutTime":    false,
		"timeZone":           tz,
		"morgen.so:metadata": map[string]any{"taskId": taskID},
	})
	if err != nil {
		return nil, err
	}
	// The task now carries a linked event.
	c.cacheInvalidate("tasks")
	return event, nil
}

// ----- Tags -----

// ListTags lists all tags.
func (c *Client) ListTags(ctx context.Context) ([]models.Tag, error) {
	return cachedList[models.Tag](ctx, c, "tags", store.TTLTags, "tags",
		func(ctx context.Context) ([]byte, error) {
			return c.request(ctx, http.MethodGet, "/tags/list", nil, nil)
		})
}

// GetTag fetches a single tag by id.
func (c *Client) GetTag(ctx context.Context, tagID string) (*models.Tag, error) {
	cacheKey := "tags/" + tagID
	if raw, ok := c.cacheGet(cacheKey); ok {
		var t models.Tag
		if err := json.Unmarshal(raw, &t); err == nil {
			return &t, nil
		}
	}
	raw, err := c.request(ctx, http.MethodGet, "/tags/", url.Values{"id": {tagID}}, nil)
	if err != nil {
		return nil, err
	}
	tag, err := decodeSingle[models.Tag](raw, "tag")
	if err != nil {
		return nil, err
	}
	if tag == nil {
		return nil, &types.NotFoundError{Message: "Tag " + tagID + " not found"}
	}
	if enc, err := json.Marshal(tag); err == nil {
		c.cacheSet(cacheKey, enc, store.TTLSingle)
	}
	return tag, nil
}

// CreateTag creates a tag.
func (c *Client) CreateTag(ctx context.Context, tag map[string]any) (*models.Tag, error) {
	raw, err := c.request(ctx, http.MethodPost, "/tags/create", nil, tag)
	if err != nil {
		return nil, err
	}
	c.cacheInvalidate("tags")
	return decodeSingle[models.Tag](raw, "tag")
}

// UpdateTag updates a tag.
func (c *Client) UpdateTag(ctx context.Context, tag map[string]any) (*models.Tag, error) {
	raw, err := c.request(ctx, http.MethodPost, "/tags/update", nil, tag)
	if err != nil {
		return nil, err
	}
	c.cacheInvalidate("tags")
	return decodeSingle[models.Tag](raw, "tag")
}

// DeleteTag deletes a tag.
func (c *Client) DeleteTag(ctx context.Context, tagID string) error {
	if _, err := c.request(ctx, http.MethodPost, "/tags/delete", nil, map[string]any{"id": tagID}); err != nil {
		return err
	}
	c.cacheInvalidate("tags")
	return nil
}

// ----- Task lists -----

// ListTaskLists lists task lists (projects/folders).
func (c *Client) ListTaskLists(ctx context.Context) ([]models.TaskList, error) {
	return cachedList[models.TaskList](ctx, c, "lists", store.TTLTags, "taskLists",
		func(ctx context.Context) ([]byte, error) {
			return c.request(ctx, http.MethodGet, "/taskLists/list", nil, nil)
		})
}

// CreateTaskList creates a task list.
func (c *Client) CreateTaskList(ctx context.Context, list map[string]any) (*models.TaskList, error) {
	raw, err := c.request(ctx, http.MethodPost, "/taskLists/create", nil, list)
	if err != nil {
		return nil, err
	}
	c.cacheInvalidate("lists")
	return decodeSingle[models.TaskList](raw, "taskList")
}

// UpdateTaskList updates a task list.
func (c *Client) UpdateTaskList(ctx context.Context, list map[string]any) (*models.TaskList, error) {
	raw, err := c.request(ctx, http.MethodPost, "/taskLists/update", nil, list)
	if err != nil {
		return nil, err
	}
	c.cacheInvalidate("lists")
	return decodeSingle[models.TaskList](raw, "taskList")
}

// DeleteTaskList deletes a task list.
func (c *Client) DeleteTaskList(ctx context.Context, listID string) error {
	if _, err := c.request(ctx, http.MethodPost, "/taskLists/delete", nil, map[string]any{"id": listID}); err != nil {
		return err
	}
	c.cacheInvalidate("lists")
	return nil
}
