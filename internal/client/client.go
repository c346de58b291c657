// Package client implements profile.Remote over the marketplace HTTP API.
package client

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

	"go.uber.org/zap"

	applog "github.com/janisto/provider-profile/internal/platform/logging"
	"github.com/janisto/provider-profile/internal/platform/session"
	"github.com/janisto/provider-profile/internal/profile"
)

const (
	defaultBaseURL      = "http://localhost:8080"
	defaultUserAgent    = "provider-profile"
	defaultCatalogLimit = 50
	maxCatalogPages     = 20
	maxErrorBodyBytes   = 64 << 10
	jsonContentType     = "application/json"
)

// Client talks to the marketplace API using the bearer token held by a
// session store.
type Client struct {
	httpClient   *http.Client
	session      session.Store
	baseURL      string
	userAgent    string
	catalogLimit int
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL sets the API root, without the version prefix.
func WithBaseURL(u string) Option {
	return func(c *Client) {
		c.baseURL = strings.TrimRight(u, "/")
	}
}

// WithUserAgent overrides the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(c *Client) {
		c.userAgent = ua
	}
}

// WithCatalogPageSize sets the page size used when walking the catalog.
func WithCatalogPageSize(n int) Option {
	return func(c *Client) {
		if n > 0 {
			c.catalogLimit = n
		}
	}
}

// NewClient creates a marketplace API client. A nil httpClient uses
// http.DefaultClient.
func NewClient(httpClient *http.Client, sess session.Store, opts ...Option) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	c := &Client{
		httpClient:   httpClient,
		session:      sess,
		baseURL:      defaultBaseURL,
		userAgent:    defaultUserAgent,
		catalogLimit: defaultCatalogLimit,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Wire types (camelCase JSON matching the marketplace API).

type apiComplete struct {
	BusinessAddress   string `json:"businessAddress"`
	Town              string `json:"town"`
	YearsOfExperience string `json:"yearsOfExperience"`
	Description       string `json:"description"`
}

type apiService struct {
	ID          string  `json:"id,omitempty"`
	Name        string  `json:"name"`
	Category    string  `json:"category"`
	Price       float64 `json:"price"`
	PriceType   string  `json:"priceType"`
	Description string  `json:"description,omitempty"`
	IsCustom    bool    `json:"isCustom"`
}

type apiDay struct {
	IsClosed bool    `json:"isClosed"`
	Start    *string `json:"start,omitempty"`
	End      *string `json:"end,omitempty"`
}

type apiProfile struct {
	ID              string            `json:"id"`
	Name            string            `json:"name"`
	Email           string            `json:"email"`
	Phone           string            `json:"phone"`
	CompleteProfile apiComplete       `json:"completeProfile"`
	Services        []apiService      `json:"services"`
	OperatingHours  map[string]apiDay `json:"operatingHours"`
	SocialLinks     map[string]string `json:"socialLinks"`
	Images          []string          `json:"images"`
}

type apiUpdate struct {
	Name            string            `json:"name"`
	Email           string            `json:"email"`
	Phone           string            `json:"phone"`
	Password        string            `json:"password,omitempty"`
	CompleteProfile apiComplete       `json:"completeProfile"`
	Services        []apiService      `json:"services"`
	OperatingHours  map[string]apiDay `json:"operatingHours"`
	SocialLinks     map[string]string `json:"socialLinks"`
	Images          []string          `json:"images"`
}

type apiVerifyPassword struct {
	Email       string `json:"email"`
	OldPassword string `json:"oldPassword"`
}

type apiImage struct {
	Path string `json:"path"`
}

type apiCatalogItem struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Category string `json:"category"`
}

type apiCatalogPage struct {
	Items      []apiCatalogItem `json:"items"`
	Categories []string         `json:"categories"`
	Total      int              `json:"total"`
}

// apiProblem is the subset of an RFC 9457 problem document the client reads.
type apiProblem struct {
	Title  string `json:"title"`
	Detail string `json:"detail"`
}

func (c *Client) doRequest(
	ctx context.Context, method, path string, query url.Values, body io.Reader, contentType string,
) (*http.Response, error) {
	token := c.token()
	if token == "" {
		return nil, profile.ErrUnauthenticated
	}

	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	req.Header.Set("Accept", jsonContentType)
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Authorization", "Bearer "+token)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	return c.httpClient.Do(req)
}

func (c *Client) doJSON(ctx context.Context, op, method, path string, payload, target any) error {
	var body io.Reader
	contentType := ""
	if payload != nil {
		buf, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("encoding %s request: %w", op, err)
		}
		body = bytes.NewReader(buf)
		contentType = jsonContentType
	}
	resp, err := c.doRequest(ctx, method, path, nil, body, contentType)
	if err != nil {
		return transportError(op, err)
	}
	defer func() { _ = resp.Body.Close() }()
	return c.decodeResponse(ctx, op, resp, target)
}

func (c *Client) token() string {
	if c.session == nil {
		return ""
	}
	return c.session.Get()
}

func (c *Client) decodeResponse(ctx context.Context, op string, resp *http.Response, target any) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		if target == nil || resp.StatusCode == http.StatusNoContent {
			return nil
		}
		if err := json.NewDecoder(resp.Body).Decode(target); err != nil {
			return profile.NewRemoteError(op, resp.StatusCode, "", fmt.Errorf("%w: decoding response: %w", profile.ErrRemote, err))
		}
		return nil
	}

	message := problemMessage(resp.Body)
	applog.LogWarn(ctx, "marketplace request failed",
		zap.String("op", op),
		zap.Int("status", resp.StatusCode),
		zap.String("detail", message),
	)

	switch resp.StatusCode {
	case http.StatusUnauthorized:
		return profile.NewRemoteError(op, resp.StatusCode, message, profile.ErrUnauthenticated)
	case http.StatusConflict:
		return profile.NewRemoteError(op, resp.StatusCode, message, profile.ErrConflict)
	}
	return profile.NewRemoteError(op, resp.StatusCode, message, profile.ErrRemote)
}

func problemMessage(body io.Reader) string {
	raw, err := io.ReadAll(io.LimitReader(body, maxErrorBodyBytes))
	if err != nil || len(raw) == 0 {
		return ""
	}
	var p apiProblem
	if json.Unmarshal(raw, &p) != nil {
		return ""
	}
	if d := strings.TrimSpace(p.Detail); d != "" {
		return d
	}
	return strings.TrimSpace(p.Title)
}

func transportError(op string, err error) error {
	if errors.Is(err, profile.ErrUnauthenticated) {
		return err
	}
	return profile.NewRemoteError(op, 0, "", fmt.Errorf("%w: %w", profile.ErrRemote, err))
}

// FetchProfile returns the signed-in provider's profile.
func (c *Client) FetchProfile(ctx context.Context) (*profile.Snapshot, error) {
	var p apiProfile
	if err := c.doJSON(ctx, "fetch profile", http.MethodGet, "/v1/profile", nil, &p); err != nil {
		return nil, err
	}
	return toSnapshot(p), nil
}

// UpdateProfile sends the combined update and returns the stored profile.
func (c *Client) UpdateProfile(ctx context.Context, req profile.UpdateRequest) (*profile.Snapshot, error) {
	var p apiProfile
	if err := c.doJSON(ctx, "update profile", http.MethodPut, "/v1/profile", toAPIUpdate(req), &p); err != nil {
		return nil, err
	}
	return toSnapshot(p), nil
}

// VerifyPassword checks oldPassword against the account identified by email.
func (c *Client) VerifyPassword(ctx context.Context, email, oldPassword string) error {
	payload := apiVerifyPassword{Email: email, OldPassword: oldPassword}
	return c.doJSON(ctx, "verify password", http.MethodPost, "/v1/auth/verify-password", payload, nil)
}

// DeleteService removes a persisted service entry.
func (c *Client) DeleteService(ctx context.Context, serviceID string) error {
	if strings.TrimSpace(serviceID) == "" {
		return profile.NewRemoteError("delete service", 0, "", fmt.Errorf("%w: empty service id", profile.ErrRemote))
	}
	return c.doJSON(ctx, "delete service", http.MethodDelete, "/v1/profile/services/"+url.PathEscape(serviceID), nil, nil)
}

// AddImage uploads img and returns its server path.
func (c *Client) AddImage(ctx context.Context, img profile.ImageUpload) (string, error) {
	const op = "upload image"
	if img.Body == nil {
		return "", profile.NewRemoteError(op, 0, "", fmt.Errorf("%w: empty image body", profile.ErrRemote))
	}
	contentType := img.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	resp, err := c.doRequest(ctx, http.MethodPost, "/v1/profile/images", nil, img.Body, contentType)
	if err != nil {
		return "", transportError(op, err)
	}
	defer func() { _ = resp.Body.Close() }()

	var out apiImage
	if err := c.decodeResponse(ctx, op, resp, &out); err != nil {
		return "", err
	}
	if out.Path == "" {
		return "", profile.NewRemoteError(op, resp.StatusCode, "", fmt.Errorf("%w: missing image path", profile.ErrRemote))
	}
	return out.Path, nil
}

// DeleteImage removes a stored image by path.
func (c *Client) DeleteImage(ctx context.Context, path string) error {
	const op = "delete image"
	resp, err := c.doRequest(ctx, http.MethodDelete, "/v1/profile/images", url.Values{"path": {path}}, nil, "")
	if err != nil {
		return transportError(op, err)
	}
	defer func() { _ = resp.Body.Close() }()
	return c.decodeResponse(ctx, op, resp, nil)
}

// FetchCatalog walks every catalog page and returns the merged result.
func (c *Client) FetchCatalog(ctx context.Context) (*profile.Catalog, error) {
	const op = "fetch catalog"
	out := &profile.Catalog{}
	cursor := ""
	for page := 0; page < maxCatalogPages; page++ {
		q := url.Values{"limit": {strconv.Itoa(c.catalogLimit)}}
		if cursor != "" {
			q.Set("cursor", cursor)
		}
		resp, err := c.doRequest(ctx, http.MethodGet, "/v1/catalog", q, nil, "")
		if err != nil {
			return nil, transportError(op, err)
		}
		link := resp.Header.Get("Link")
		var body apiCatalogPage
		err = c.decodeResponse(ctx, op, resp, &body)
		_ = resp.Body.Close()
		if err != nil {
			return nil, err
		}

		for _, it := range body.Items {
			out.Services = append(out.Services, profile.CatalogService(it))
		}
		if page == 0 {
			out.Categories = append(out.Categories, body.Categories...)
		}

		cursor = parseLinkHeader(link)
		if cursor == "" {
			return out, nil
		}
	}
	applog.LogWarn(ctx, "catalog truncated", zap.Int("pages", maxCatalogPages))
	return out, nil
}

// parseLinkHeader extracts the "cursor" query parameter of the rel="next"
// link.
func parseLinkHeader(header string) string {
	if header == "" {
		return ""
	}

	for raw := range strings.SplitSeq(header, ",") {
		part := strings.TrimSpace(raw)
		if !strings.Contains(part, `rel="next"`) {
			continue
		}

		start := strings.Index(part, "<")
		end := strings.Index(part, ">")
		if start < 0 || end < 0 || end <= start {
			continue
		}

		linkURL, err := url.Parse(part[start+1 : end])
		if err != nil {
			continue
		}

		if next := linkURL.Query().Get("cursor"); next != "" {
			return next
		}
	}
	return ""
}

func toSnapshot(p apiProfile) *profile.Snapshot {
	s := &profile.Snapshot{
		ID: p.ID,
		Identity: profile.Identity{
			Name:  p.Name,
			Email: p.Email,
			Phone: p.Phone,
		},
		Business: profile.Business{
			BusinessAddress:   p.CompleteProfile.BusinessAddress,
			Town:              p.CompleteProfile.Town,
			YearsOfExperience: p.CompleteProfile.YearsOfExperience,
			Description:       p.CompleteProfile.Description,
		},
		Services:       make([]profile.ServiceEntry, 0, len(p.Services)),
		OperatingHours: profile.NewWeek(),
		SocialLinks:    profile.SocialLinks(p.SocialLinks).Clone(),
		Images:         append([]string{}, p.Images...),
	}
	for _, svc := range p.Services {
		s.Services = append(s.Services, profile.ServiceEntry{
			ID:          svc.ID,
			Name:        svc.Name,
			Category:    svc.Category,
			Price:       strconv.FormatFloat(svc.Price, 'f', -1, 64),
			PriceType:   svc.PriceType,
			Description: svc.Description,
			IsCustom:    svc.IsCustom,
		})
	}
	for day, h := range p.OperatingHours {
		d := profile.Weekday(day)
		if !d.Valid() {
			continue
		}
		s.OperatingHours[d] = profile.DayHours{IsClosed: h.IsClosed, Start: h.Start, End: h.End}
	}
	s.OperatingHours = s.OperatingHours.Clone()
	return s
}

func toAPIUpdate(req profile.UpdateRequest) apiUpdate {
	out := apiUpdate{
		Name:     req.Identity.Name,
		Email:    req.Identity.Email,
		Phone:    req.Identity.Phone,
		Password: req.Password,
		CompleteProfile: apiComplete{
			BusinessAddress:   req.Business.BusinessAddress,
			Town:              req.Business.Town,
			YearsOfExperience: req.Business.YearsOfExperience,
			Description:       req.Business.Description,
		},
		Services:       make([]apiService, 0, len(req.Services)),
		OperatingHours: make(map[string]apiDay, len(req.OperatingHours)),
		SocialLinks:    make(map[string]string, len(req.SocialLinks)),
		Images:         append([]string{}, req.Images...),
	}
	for _, svc := range req.Services {
		out.Services = append(out.Services, apiService(svc))
	}
	for day, h := range req.OperatingHours {
		out.OperatingHours[string(day)] = apiDay{IsClosed: h.IsClosed, Start: h.Start, End: h.End}
	}
	for k, v := range req.SocialLinks {
		out.SocialLinks[k] = v
	}
	return out
}

// Compile-time interface check
var _ profile.Remote = (*Client)(nil)
