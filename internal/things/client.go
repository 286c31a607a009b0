// go-cloud-k8s-thing-client - Thing Inventory Session and Map Synchronization
// Copyright 2026 cgil (lao-tseu-is-alive)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/lao-tseu-is-alive/go-cloud-k8s-thing-client

// Package things is the typed client of the backend Thing API: record
// retrieval, search, mutation and the record type catalog, authenticated
// with the bearer token of the active session.
//
// Overlapping searches are not serialized: when a caller fires a second
// search before the first returns, whichever response is consumed last
// wins.
package things

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/goccy/go-json"
	"github.com/google/uuid"

	"github.com/lao-tseu-is-alive/go-cloud-k8s-thing-client/internal/logging"
	"github.com/lao-tseu-is-alive/go-cloud-k8s-thing-client/internal/models"
	"github.com/lao-tseu-is-alive/go-cloud-k8s-thing-client/internal/session"
)

// TokenSource supplies the bearer token of the current session. A
// session.Manager satisfies it.
type TokenSource interface {
	Token() string
}

// BadStatusError reports a backend response outside the expected status,
// carrying whatever message body the server sent along.
type BadStatusError struct {
	Op            string
	Status        int
	ServerMessage string
}

func (e *BadStatusError) Error() string {
	return fmt.Sprintf("%s error : %s. Server says : %s", e.Op, http.StatusText(e.Status), e.ServerMessage)
}

// serverMessage extracts the error message the backend sent along with a
// bad status: the message field of a JSON error body when there is one,
// the raw body text otherwise.
func serverMessage(body []byte) string {
	var em struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &em); err == nil && em.Message != "" {
		return em.Message
	}
	return strings.TrimSpace(string(body))
}

// Client talks to the Thing API mounted under /goapi/v1 on the backend.
type Client struct {
	apiURL   string
	tokens   TokenSource
	client   *http.Client
	validate *validator.Validate

	typesMu    sync.Mutex
	typesCache []models.TypeThingList
}

// NewClient creates a Thing API client rooted at baseURL, using tokens for
// authentication on every call.
func NewClient(baseURL string, tokens TokenSource, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		apiURL:   strings.TrimRight(baseURL, "/") + "/goapi/v1",
		tokens:   tokens,
		client:   &http.Client{Timeout: timeout},
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}
}

// doJSON performs one authenticated request and decodes a JSON body into
// out on success. A non-2xx response becomes a BadStatusError with the
// server message attached. Exactly one attempt is made.
func (c *Client) doJSON(ctx context.Context, op, method, path string, body, out any) (int, error) {
	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return 0, fmt.Errorf("%s error : encoding request body: %w", op, err)
		}
		reader = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.apiURL+path, reader)
	if err != nil {
		return 0, fmt.Errorf("%s error : building request: %w", op, err)
	}
	req.Header.Set("Authorization", "Bearer "+c.tokens.Token())
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.client.Do(req)
	if err != nil {
		logging.Warn().Err(err).Str("op", op).Msg("backend transport failure")
		return 0, &session.TransportError{Cause: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		logging.Warn().Int("status", resp.StatusCode).Str("op", op).Msg("backend returned a bad status")
		return resp.StatusCode, &BadStatusError{
			Op:            op,
			Status:        resp.StatusCode,
			ServerMessage: serverMessage(msg),
		}
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return resp.StatusCode, fmt.Errorf("%s error : decoding response: %w", op, err)
		}
	} else {
		_, _ = io.Copy(io.Discard, resp.Body)
	}
	return resp.StatusCode, nil
}

// Get retrieves one full record by id.
func (c *Client) Get(ctx context.Context, id uuid.UUID) session.Result[models.Thing] {
	var t models.Thing
	status, err := c.doJSON(ctx, "getThing", http.MethodGet, "/thing/"+id.String(), nil, &t)
	if err != nil {
		return session.Result[models.Thing]{Status: status, Err: err}
	}
	return session.Result[models.Thing]{Data: &t, Status: status}
}

// Search runs a record search with the given parameters and returns the
// reduced list shape.
func (c *Client) Search(ctx context.Context, p SearchParams) session.Result[[]models.ThingList] {
	var list []models.ThingList
	path := "/thing/search"
	if q := p.buildQuery(); q != "" {
		path += "?" + q
	}
	status, err := c.doJSON(ctx, "searchThings", http.MethodGet, path, nil, &list)
	if err != nil {
		return session.Result[[]models.ThingList]{Status: status, Err: err}
	}
	return session.Result[[]models.ThingList]{Data: &list, Status: status}
}

// Count returns the number of records matching the search parameters.
func (c *Client) Count(ctx context.Context, p SearchParams) session.Result[int32] {
	var n int32
	path := "/thing/count"
	if q := p.buildQuery(); q != "" {
		path += "?" + q
	}
	status, err := c.doJSON(ctx, "countThings", http.MethodGet, path, nil, &n)
	if err != nil {
		return session.Result[int32]{Status: status, Err: err}
	}
	return session.Result[int32]{Data: &n, Status: status}
}

// Create submits a new record. The record is validated locally before any
// network call.
func (c *Client) Create(ctx context.Context, t models.Thing) session.Result[models.Thing] {
	if err := c.validate.Struct(t); err != nil {
		return session.Result[models.Thing]{Err: fmt.Errorf("createThing error : invalid record: %w", err)}
	}
	var created models.Thing
	status, err := c.doJSON(ctx, "createThing", http.MethodPost, "/thing", t, &created)
	if err != nil {
		return session.Result[models.Thing]{Status: status, Err: err}
	}
	return session.Result[models.Thing]{Data: &created, Status: status}
}

// Update replaces the record stored under id.
func (c *Client) Update(ctx context.Context, id uuid.UUID, t models.Thing) session.Result[models.Thing] {
	if err := c.validate.Struct(t); err != nil {
		return session.Result[models.Thing]{Err: fmt.Errorf("updateThing error : invalid record: %w", err)}
	}
	var updated models.Thing
	status, err := c.doJSON(ctx, "updateThing", http.MethodPut, "/thing/"+id.String(), t, &updated)
	if err != nil {
		return session.Result[models.Thing]{Status: status, Err: err}
	}
	return session.Result[models.Thing]{Data: &updated, Status: status}
}

// Delete removes the record stored under id.
func (c *Client) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := c.doJSON(ctx, "deleteThing", http.MethodDelete, "/thing/"+id.String(), nil, nil)
	return err
}

// Types returns the record type catalog, fetching it from the backend at
// most once per client. Subsequent calls are served from the cache.
func (c *Client) Types(ctx context.Context) session.Result[[]models.TypeThingList] {
	c.typesMu.Lock()
	defer c.typesMu.Unlock()

	if c.typesCache != nil {
		list := c.typesCache
		return session.Result[[]models.TypeThingList]{Data: &list, Status: http.StatusOK}
	}

	var list []models.TypeThingList
	status, err := c.doJSON(ctx, "getTypes", http.MethodGet, "/types", nil, &list)
	if err != nil {
		return session.Result[[]models.TypeThingList]{Status: status, Err: err}
	}
	c.typesCache = list
	return session.Result[[]models.TypeThingList]{Data: &list, Status: status}
}

// IconPath returns the marker icon of a record type from the cached
// catalog, or the empty string when the type is unknown or the catalog was
// never loaded.
func (c *Client) IconPath(typeID int32) string {
	c.typesMu.Lock()
	defer c.typesMu.Unlock()
	for _, t := range c.typesCache {
		if t.ID == typeID {
			return t.IconPath
		}
	}
	return ""
}
