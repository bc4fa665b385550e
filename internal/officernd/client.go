// Package officernd talks to the workspace-membership platform that owns the
// company, member and location records hosts are reconciled from.
package officernd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/diagnosis/visitor-hosts/pkg/config"
	"github.com/diagnosis/visitor-hosts/pkg/logger"
	"github.com/google/go-querystring/query"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
)

// maxPages bounds a single listing in case the server keeps returning a cursor.
const maxPages = 1000

type Client struct {
	baseURL    string
	creds      clientcredentials.Config
	httpClient *http.Client
	pageLimit  int
}

func NewClient(cfg config.SyncConfig) *Client {
	timeout := cfg.HTTPTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	limit := cfg.PageLimit
	if limit <= 0 {
		limit = 50
	}
	return &Client{
		baseURL: strings.TrimRight(cfg.OrganizationURL(), "/"),
		creds: clientcredentials.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			TokenURL:     cfg.TokenURL,
			Scopes:       cfg.Scopes(),
			AuthStyle:    oauth2.AuthStyleInParams,
		},
		httpClient: &http.Client{Timeout: timeout},
		pageLimit:  limit,
	}
}

// Connect exchanges the client credentials for a bearer token. The returned
// Session is meant to live for a single reconciliation pass.
func (c *Client) Connect(ctx context.Context) (*Session, error) {
	ctx = context.WithValue(ctx, oauth2.HTTPClient, c.httpClient)
	tok, err := c.creds.Token(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to exchange client credentials: %w", err)
	}
	return &Session{client: c, token: tok.AccessToken}, nil
}

// Session is an authenticated view of the organization's API.
type Session struct {
	client *Client
	token  string
}

type listParams struct {
	Limit      int    `url:"$limit,omitempty"`
	CursorNext string `url:"$cursorNext,omitempty"`
	Status     string `url:"status,omitempty"`
	Company    string `url:"company,omitempty"`
}

func (s *Session) Locations(ctx context.Context) ([]Location, error) {
	return fetchAll[Location](ctx, s, "/locations", listParams{Limit: s.client.pageLimit})
}

func (s *Session) Companies(ctx context.Context) ([]Company, error) {
	return fetchAll[Company](ctx, s, "/companies", listParams{Limit: s.client.pageLimit, Status: "active"})
}

// FirstMember returns the first member attached to the company. Lookup
// failures are reported as absent.
func (s *Session) FirstMember(ctx context.Context, companyID string) (Member, bool) {
	var env envelope[Member]
	if err := s.get(ctx, "/members", listParams{Limit: 1, Company: companyID}, &env); err != nil {
		logger.DebugContext(ctx, "member lookup failed", "company_id", companyID, "error", err)
		return Member{}, false
	}
	if len(env.Results) == 0 {
		return Member{}, false
	}
	return env.Results[0], true
}

// CompanyDetail fetches the full company record. Lookup failures are reported
// as absent.
func (s *Session) CompanyDetail(ctx context.Context, companyID string) (Company, bool) {
	var c Company
	if err := s.get(ctx, "/companies/"+url.PathEscape(companyID), nil, &c); err != nil {
		logger.DebugContext(ctx, "company detail lookup failed", "company_id", companyID, "error", err)
		return Company{}, false
	}
	return c, true
}

func fetchAll[T any](ctx context.Context, s *Session, path string, params listParams) ([]T, error) {
	var all []T
	for page := 0; page < maxPages; page++ {
		var env envelope[T]
		if err := s.get(ctx, path, params, &env); err != nil {
			return nil, err
		}
		all = append(all, env.Results...)
		if env.CursorNext == "" {
			return all, nil
		}
		params.CursorNext = env.CursorNext
	}
	return nil, fmt.Errorf("pagination of %s exceeded %d pages", path, maxPages)
}

func (s *Session) get(ctx context.Context, path string, params interface{}, out interface{}) error {
	target := s.client.baseURL + path
	if params != nil {
		v, err := query.Values(params)
		if err != nil {
			return fmt.Errorf("failed to encode query: %w", err)
		}
		if q := v.Encode(); q != "" {
			target += "?" + q
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+s.token)
	req.Header.Set("Accept", "application/json")

	resp, err := s.client.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return &StatusError{
			Method:     http.MethodGet,
			URL:        path,
			StatusCode: resp.StatusCode,
			Body:       strings.TrimSpace(string(body)),
		}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode %s: %w", path, err)
	}
	return nil
}
