/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"pagedesigner/internal/domain"
)

// Scope selects which elements a listing returns.
type Scope string

const (
	// ScopeActive returns only active elements, the public view.
	ScopeActive Scope = "active"
	// ScopeAll returns every element including soft-deleted ones; requires
	// the admin role.
	ScopeAll Scope = "all"
)

// Client is the HTTP client for the storage API. All mutating calls carry
// the bearer token; the server enforces the admin role independently of the
// client-side guard in the session.
type Client struct {
	BaseURL string
	Token   string // bearer token
	client  *http.Client
}

// NewClient creates a new storage API client. baseURL may include a trailing
// slash; it will be normalized.
func NewClient(baseURL string, token string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Token:   token,
		client:  &http.Client{Timeout: timeout},
	}
}

func (c *Client) do(ctx context.Context, method, path string, body any, dest any) error {
	u, err := url.Parse(c.BaseURL + path)
	if err != nil {
		return err
	}
	var rd *bytes.Reader
	if body != nil {
		enc, err := json.Marshal(body)
		if err != nil {
			return err
		}
		rd = bytes.NewReader(enc)
	} else {
		rd = bytes.NewReader(nil)
	}
	req, err := http.NewRequestWithContext(ctx, method, u.String(), rd)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.Token)
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return domain.ErrUnauthorized
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		var apiErr struct {
			Error string `json:"error"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&apiErr)
		if apiErr.Error != "" {
			return fmt.Errorf("server %s %s: %s: %s", method, u.Path, resp.Status, apiErr.Error)
		}
		return fmt.Errorf("server %s %s: %s", method, u.Path, resp.Status)
	}
	if dest == nil {
		return nil
	}
	dec := json.NewDecoder(resp.Body)
	dec.UseNumber()
	return dec.Decode(dest)
}

// ListElements returns the placed elements visible under the given scope.
func (c *Client) ListElements(ctx context.Context, scope Scope) ([]domain.PlacedElement, error) {
	path := "/api/elements"
	if scope == ScopeAll {
		path = "/api/admin/elements"
	}
	var list []domain.PlacedElement
	if err := c.do(ctx, http.MethodGet, path, nil, &list); err != nil {
		return nil, err
	}
	return list, nil
}

// CreateElement persists a draft; the server assigns the id.
func (c *Client) CreateElement(ctx context.Context, draft domain.PlacedElement) (domain.PlacedElement, error) {
	if err := domain.ValidateDraft(&draft); err != nil {
		return domain.PlacedElement{}, err
	}
	var created domain.PlacedElement
	if err := c.do(ctx, http.MethodPost, "/api/admin/elements", draft, &created); err != nil {
		return domain.PlacedElement{}, err
	}
	return created, nil
}

// UpdateElement sends a partial update. Unknown fields are ignored by the
// server and numerics are coerced to integers there.
func (c *Client) UpdateElement(ctx context.Context, id int64, patch domain.ElementPatch) error {
	if patch.IsZero() {
		return nil
	}
	return c.do(ctx, http.MethodPut, fmt.Sprintf("/api/admin/elements/%d", id), patch, nil)
}

// DeleteElement removes an element permanently.
func (c *Client) DeleteElement(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/api/admin/elements/%d", id), nil, nil)
}

// GetTextStyle returns the stored override for one label, or the zero
// override when none exists. Fixed labels come back with position unset.
func (c *Client) GetTextStyle(ctx context.Context, page int, label domain.LabelType) (domain.TextStyleOverride, error) {
	var ov domain.TextStyleOverride
	path := fmt.Sprintf("/api/page-text-styles/%d/%s", page, url.PathEscape(string(label)))
	if err := c.do(ctx, http.MethodGet, path, nil, &ov); err != nil {
		return domain.TextStyleOverride{}, err
	}
	ov.Page = page
	ov.Label = label
	return ov.Normalized(), nil
}

// ListTextStyles returns every stored override.
func (c *Client) ListTextStyles(ctx context.Context) ([]domain.TextStyleOverride, error) {
	var list []domain.TextStyleOverride
	if err := c.do(ctx, http.MethodGet, "/api/page-text-styles", nil, &list); err != nil {
		return nil, err
	}
	for i := range list {
		list[i] = list[i].Normalized()
	}
	return list, nil
}

// UpsertTextStyle writes a style patch for one (page, label) key.
func (c *Client) UpsertTextStyle(ctx context.Context, page int, label domain.LabelType, patch domain.StylePatch) error {
	path := fmt.Sprintf("/api/admin/page-text-styles/%d/%s", page, url.PathEscape(string(label)))
	return c.do(ctx, http.MethodPut, path, patch, nil)
}

// PageContent is the editable text of one book page.
type PageContent struct {
	PageNumber int    `json:"page_number"`
	Title      string `json:"title"`
	Body       string `json:"body"`
}

// ListPages returns the book pages with their text content.
func (c *Client) ListPages(ctx context.Context) ([]PageContent, error) {
	var list []PageContent
	if err := c.do(ctx, http.MethodGet, "/api/book-pages", nil, &list); err != nil {
		return nil, err
	}
	return list, nil
}

// UpdatePageContent updates a page's title and/or body. Nil fields are left
// untouched.
func (c *Client) UpdatePageContent(ctx context.Context, page int, title, body *string) error {
	if title == nil && body == nil {
		return nil
	}
	payload := map[string]any{}
	if title != nil {
		payload["title"] = *title
	}
	if body != nil {
		payload["body"] = *body
	}
	return c.do(ctx, http.MethodPut, fmt.Sprintf("/api/admin/book-pages/%d", page), payload, nil)
}
