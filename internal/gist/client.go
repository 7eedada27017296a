package gist

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
)

const (
	apiURL      = "https://api.github.com"
	contentType = "application/json"
	apiVersion  = "2022-11-28"
	userAgent   = "zazer0/resume-mcp"
	// Max value the gists endpoint accepts per page.
	perPage = 100
)

// Client talks to the GitHub gists REST API.
type Client struct {
	token      string
	logger     *zap.Logger
	HTTPClient *http.Client
	UserAgent  string
	APIURL     string
	// Username, when set, restricts listings to gists owned by that login.
	// It guards against a token issued for a different account.
	Username string
}

func New(logger *zap.Logger, token string) *Client {
	return &Client{
		token:  token,
		APIURL: apiURL,
		HTTPClient: &http.Client{
			Timeout: 15 * time.Second,
		},
		logger:    logger,
		UserAgent: userAgent,
	}
}

// StatusError is returned for non-2xx API responses.
type StatusError struct {
	Code   int
	Status string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("bad status: %s", e.Status)
}

// IsNotFound reports whether the error is a 404 from the API.
func IsNotFound(err error) bool {
	var statusErr *StatusError
	return errors.As(err, &statusErr) && statusErr.Code == http.StatusNotFound
}

// List returns all gists of the authenticated user, walking every page.
func (c *Client) List(ctx context.Context) (*Gists, error) {
	all := make([]*Gist, 0, perPage)

	for page := 1; ; page++ {
		q := url.Values{}
		q.Set("per_page", strconv.Itoa(perPage))
		q.Set("page", strconv.Itoa(page))

		var batch []*Gist
		if err := c.getJSON(ctx, fmt.Sprintf("%s/gists", c.APIURL), q, &batch); err != nil {
			return nil, fmt.Errorf("list gists page %d: %w", page, err)
		}

		for _, g := range batch {
			if c.Username != "" && (g.Owner == nil || !strings.EqualFold(g.Owner.Login, c.Username)) {
				continue
			}
			all = append(all, g)
		}

		c.logger.Debug("got gists page",
			zap.Int("page", page),
			zap.Int("count", len(batch)),
		)

		if len(batch) < perPage {
			break
		}
	}

	return &Gists{Items: all}, nil
}

// Get returns a single gist with full file contents.
func (c *Client) Get(ctx context.Context, id string) (*Gist, error) {
	if id == "" {
		return nil, fmt.Errorf("gist id is required")
	}

	var gist *Gist
	if err := c.getJSON(ctx, fmt.Sprintf("%s/gists/%s", c.APIURL, id), nil, &gist); err != nil {
		return nil, fmt.Errorf("get gist %s: %w", id, err)
	}

	return gist, nil
}

// Create creates a new gist and returns the stored copy.
func (c *Client) Create(ctx context.Context, description string, public bool, files map[string]*File) (*Gist, error) {
	payload := map[string]any{
		"description": description,
		"public":      public,
		"files":       files,
	}

	var created *Gist
	if err := c.sendJSON(ctx, http.MethodPost, fmt.Sprintf("%s/gists", c.APIURL), payload, &created); err != nil {
		return nil, fmt.Errorf("create gist: %w", err)
	}

	c.logger.Info("created gist",
		zap.String("gist_id", created.ID),
		zap.Bool("public", public),
	)

	return created, nil
}

// Update replaces the given files on an existing gist.
func (c *Client) Update(ctx context.Context, id string, files map[string]*File) (*Gist, error) {
	if id == "" {
		return nil, fmt.Errorf("gist id is required")
	}

	payload := map[string]any{
		"files": files,
	}

	var updated *Gist
	if err := c.sendJSON(ctx, http.MethodPatch, fmt.Sprintf("%s/gists/%s", c.APIURL, id), payload, &updated); err != nil {
		return nil, fmt.Errorf("update gist %s: %w", id, err)
	}

	c.logger.Info("updated gist", zap.String("gist_id", id))

	return updated, nil
}

func (c *Client) getJSON(ctx context.Context, url string, q url.Values, target any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}

	c.setHeaders(req)
	if q != nil {
		req.URL.RawQuery = q.Encode()
	}

	return c.do(req, target)
}

func (c *Client) sendJSON(ctx context.Context, method, url string, payload, target any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal request body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, bytes.NewReader(body))
	if err != nil {
		return err
	}

	c.setHeaders(req)
	req.Header.Set("Content-Type", contentType)

	return c.do(req, target)
}

func (c *Client) do(req *http.Request, target any) error {
	c.logger.Debug("make request",
		zap.String("method", req.Method),
		zap.String("url", req.URL.String()),
	)

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return &StatusError{Code: resp.StatusCode, Status: resp.Status}
	}

	if target == nil {
		return nil
	}

	if err := json.Unmarshal(data, target); err != nil {
		return err
	}

	return nil
}

func (c *Client) setHeaders(req *http.Request) {
	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", c.token))
	req.Header.Set("User-Agent", c.UserAgent)
	req.Header.Set("Accept", "application/vnd.github+json")
	req.Header.Set("X-GitHub-Api-Version", apiVersion)
}
