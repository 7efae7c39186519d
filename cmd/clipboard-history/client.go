package main

import (
	"bytes"
	"clipboard-history/pkg/types"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// apiClient talks to a running daemon.
type apiClient struct {
	base string
	http *http.Client
}

// apiError is a non-2xx answer from the daemon.
type apiError struct {
	Status  int
	Message string
}

func (e *apiError) Error() string {
	return fmt.Sprintf("daemon returned %d: %s", e.Status, e.Message)
}

type daemonStatus struct {
	Status       string `json:"status"`
	Time         string `json:"time"`
	Addr         string `json:"addr"`
	Backend      string `json:"backend"`
	Hotkey       string `json:"hotkey"`
	HotkeyActive bool   `json:"hotkey_active"`
}

func newAPIClient(addr string) *apiClient {
	base := addr
	if !strings.Contains(base, "://") {
		base = "http://" + base
	}
	return &apiClient{
		base: strings.TrimRight(base, "/"),
		http: &http.Client{Timeout: 15 * time.Second},
	}
}

func (c *apiClient) do(ctx context.Context, method, path string, body, out any) error {
	var r io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		r = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.base+path, r)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("is the daemon running? %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		var e struct {
			Error string `json:"error"`
		}
		data, _ := io.ReadAll(resp.Body)
		if json.Unmarshal(data, &e) != nil || e.Error == "" {
			e.Error = strings.TrimSpace(string(data))
		}
		return &apiError{Status: resp.StatusCode, Message: e.Error}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func entryPath(id uint64, suffix string) string {
	return "/api/entries/" + strconv.FormatUint(id, 10) + suffix
}

func (c *apiClient) List(ctx context.Context, limit int) ([]types.Entry, error) {
	path := "/api/entries"
	if limit > 0 {
		path += "?" + url.Values{"limit": {strconv.Itoa(limit)}}.Encode()
	}
	var entries []types.Entry
	err := c.do(ctx, http.MethodGet, path, nil, &entries)
	return entries, err
}

func (c *apiClient) Get(ctx context.Context, id uint64) (types.Entry, error) {
	var e types.Entry
	err := c.do(ctx, http.MethodGet, entryPath(id, ""), nil, &e)
	return e, err
}

func (c *apiClient) Pin(ctx context.Context, id uint64) error {
	return c.do(ctx, http.MethodPost, entryPath(id, "/pin"), nil, nil)
}

func (c *apiClient) Delete(ctx context.Context, id uint64) error {
	return c.do(ctx, http.MethodDelete, entryPath(id, ""), nil, nil)
}

func (c *apiClient) Copy(ctx context.Context, id uint64) error {
	return c.do(ctx, http.MethodPost, entryPath(id, "/copy"), nil, nil)
}

func (c *apiClient) WriteClipboard(ctx context.Context, content string, kind types.Kind) error {
	body := struct {
		Content string     `json:"content"`
		Kind    types.Kind `json:"kind"`
	}{content, kind}
	return c.do(ctx, http.MethodPost, "/api/clipboard", body, nil)
}

func (c *apiClient) Clear(ctx context.Context) error {
	return c.do(ctx, http.MethodDelete, "/api/entries", nil, nil)
}

func (c *apiClient) Config(ctx context.Context) (types.AppConfig, error) {
	var cfg types.AppConfig
	err := c.do(ctx, http.MethodGet, "/api/config", nil, &cfg)
	return cfg, err
}

// UpdateConfig sends only the given fields; the daemon keeps the rest.
func (c *apiClient) UpdateConfig(ctx context.Context, fields map[string]any) (types.AppConfig, error) {
	var cfg types.AppConfig
	err := c.do(ctx, http.MethodPut, "/api/config", fields, &cfg)
	return cfg, err
}

func (c *apiClient) Status(ctx context.Context) (daemonStatus, error) {
	var st daemonStatus
	err := c.do(ctx, http.MethodGet, "/status", nil, &st)
	return st, err
}
