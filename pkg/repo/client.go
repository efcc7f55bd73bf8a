package repo

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"
)

// Client is a thin HTTP client for the content repository's managed API.
// It logs in lazily and re-authenticates once on a 401 before giving up.
type Client struct {
	baseURL  string
	username string
	password string
	http     *http.Client

	mu        sync.Mutex
	authToken string
}

// Options configures the repository client.
type Options struct {
	BaseURL  string
	Username string
	Password string
	Timeout  time.Duration
}

// NewClient creates a repository client.
func NewClient(opts Options) *Client {
	if opts.Timeout <= 0 {
		opts.Timeout = 10 * time.Second
	}
	return &Client{
		baseURL:  opts.BaseURL,
		username: opts.Username,
		password: opts.Password,
		http:     &http.Client{Timeout: opts.Timeout},
	}
}

type apiResponse struct {
	Status  string `json:"status"`
	Error   *struct {
		Type    string `json:"type"`
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error,omitempty"`
	Records []Record `json:"records,omitempty"`
}

func (c *Client) login(ctx context.Context) error {
	body, _ := json.Marshal(map[string]string{
		"shortname": c.username,
		"password":  c.password,
	})
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/user/login", bytes.NewReader(body))
	if err != nil {
		return ErrRegistry.NewWithCause(CodeAuthFailed, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return ErrRegistry.NewWithCause(CodeUnavailable, err)
	}
	defer resp.Body.Close()

	var parsed struct {
		Status  string `json:"status"`
		Records []struct {
			Attributes struct {
				AccessToken string `json:"access_token"`
			} `json:"attributes"`
		} `json:"records"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return ErrRegistry.NewWithCause(CodeAuthFailed, err)
	}
	if resp.StatusCode != http.StatusOK || parsed.Status != "success" || len(parsed.Records) == 0 {
		return ErrRegistry.New(CodeAuthFailed).WithDetail("status", resp.StatusCode)
	}

	c.mu.Lock()
	c.authToken = parsed.Records[0].Attributes.AccessToken
	c.mu.Unlock()
	return nil
}

func (c *Client) token(ctx context.Context) (string, error) {
	c.mu.Lock()
	tok := c.authToken
	c.mu.Unlock()
	if tok != "" {
		return tok, nil
	}
	if err := c.login(ctx); err != nil {
		return "", err
	}
	c.mu.Lock()
	tok = c.authToken
	c.mu.Unlock()
	return tok, nil
}

func (c *Client) call(ctx context.Context, endpoint string, payload any, out *apiResponse) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return ErrRegistry.NewWithCause(CodeRequestFailed, err)
	}

	for attempt := 0; attempt < 2; attempt++ {
		tok, err := c.token(ctx)
		if err != nil {
			return err
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+endpoint, bytes.NewReader(body))
		if err != nil {
			return ErrRegistry.NewWithCause(CodeRequestFailed, err)
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Authorization", "Bearer "+tok)

		resp, err := c.http.Do(req)
		if err != nil {
			return ErrRegistry.NewWithCause(CodeUnavailable, err).WithDetail("endpoint", endpoint)
		}

		decodeErr := json.NewDecoder(resp.Body).Decode(out)
		resp.Body.Close()

		if resp.StatusCode == http.StatusUnauthorized && attempt == 0 {
			// Stale token; force a fresh login and retry once.
			c.mu.Lock()
			c.authToken = ""
			c.mu.Unlock()
			continue
		}
		if decodeErr != nil {
			return ErrRegistry.NewWithCause(CodeRequestFailed, decodeErr).WithDetail("endpoint", endpoint)
		}
		if resp.StatusCode != http.StatusOK {
			msg := ""
			if out.Error != nil {
				msg = out.Error.Message
			}
			return ErrRegistry.NewWithMessage(CodeRequestFailed, fmt.Sprintf("%s at %s", msg, endpoint)).
				WithDetail("status", resp.StatusCode)
		}
		return nil
	}
	return ErrRegistry.New(CodeAuthFailed)
}

// Request performs a create/update/delete against the managed request API.
func (c *Client) Request(ctx context.Context, rt RequestType, desc ResourceDescriptor, shortname string, attributes map[string]any) error {
	var out apiResponse
	return c.call(ctx, "/managed/request", map[string]any{
		"space_name":   desc.Space,
		"request_type": rt,
		"records": []Record{{
			ResourceType: desc.ResourceKind,
			Subpath:      desc.Subpath,
			Shortname:    shortname,
			Attributes:   attributes,
		}},
	}, &out)
}

// Search queries a subpath with a repository search expression and returns
// matching records with their payloads.
func (c *Client) Search(ctx context.Context, desc ResourceDescriptor, search string, limit int) ([]Record, error) {
	if limit <= 0 {
		limit = 10
	}
	var out apiResponse
	err := c.call(ctx, "/managed/query", map[string]any{
		"type":                  "search",
		"space_name":            desc.Space,
		"subpath":               desc.Subpath,
		"search":                search,
		"filter_schema_names":   []string{desc.Schema},
		"retrieve_json_payload": true,
		"limit":                 limit,
	}, &out)
	if err != nil {
		return nil, err
	}
	return out.Records, nil
}
