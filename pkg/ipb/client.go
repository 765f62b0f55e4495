package ipb

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/oauth2"
)

// maxErrorBody caps how much of a failed response is read for diagnostics.
const maxErrorBody = 4 << 10

// Client performs the authorization code exchange and the profile lookups
// against a single community.
type Client struct {
	oauth      *oauth2.Config
	httpClient *http.Client
	logger     *slog.Logger
	cfg        Config
	timeout    time.Duration
}

// New creates a Client. Returns a configuration error if cfg is incomplete.
func New(cfg Config, opts ...Option) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}

	return &Client{
		oauth: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Scopes:       cfg.Scopes,
			Endpoint: oauth2.Endpoint{
				AuthURL:   cfg.AuthorizeURL(),
				TokenURL:  cfg.TokenURL(),
				AuthStyle: oauth2.AuthStyleInParams,
			},
		},
		httpClient: o.httpClient,
		logger:     o.logger,
		cfg:        cfg,
		timeout:    o.timeout,
	}, nil
}

// Config returns the configuration the client was built with.
func (c *Client) Config() Config {
	return c.cfg
}

// AuthCodeURL returns the authorization URL the browser is redirected to.
func (c *Client) AuthCodeURL(state string, opts ...oauth2.AuthCodeOption) string {
	return c.oauth.AuthCodeURL(state, opts...)
}

// Exchange trades a single-use authorization code for an access token.
// Any failure, including a timeout, wraps ErrTokenExchange.
func (c *Client) Exchange(ctx context.Context, code string) (*oauth2.Token, error) {
	if code == "" {
		return nil, errors.Join(ErrTokenExchange, errors.New("empty authorization code"))
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()
	ctx = context.WithValue(ctx, oauth2.HTTPClient, c.httpClient)

	token, err := c.oauth.Exchange(ctx, code)
	if err != nil {
		return nil, errors.Join(ErrTokenExchange, describeTokenError(err))
	}
	if token.AccessToken == "" {
		return nil, errors.Join(ErrTokenExchange, errors.New("empty access token"))
	}

	return token, nil
}

// FetchCurrentUserID returns the id of the member who owns the token.
// Any failure wraps ErrProfileFetch; a response without id also wraps ErrMissingUserID.
func (c *Client) FetchCurrentUserID(ctx context.Context, token *oauth2.Token) (string, error) {
	if token == nil || token.AccessToken == "" {
		return "", errors.Join(ErrProfileFetch, errors.New("missing access token"))
	}

	var me currentUser
	if err := c.getJSON(ctx, "current user", c.cfg.CurrentUserURL(), token, &me); err != nil {
		return "", errors.Join(ErrProfileFetch, err)
	}
	if me.ID == "" {
		return "", errors.Join(ErrProfileFetch, ErrMissingUserID)
	}

	return me.ID.String(), nil
}

// FetchMemberProfile loads a member profile using the REST API key.
// The member's bearer token is not sent with this request.
func (c *Client) FetchMemberProfile(ctx context.Context, userID string) (*Profile, error) {
	if userID == "" {
		return nil, errors.Join(ErrProfileFetch, ErrMissingUserID)
	}

	endpoint := c.cfg.MemberURL(userID) + "?key=" + url.QueryEscape(c.cfg.APIKey)

	var profile Profile
	if err := c.getJSON(ctx, "member", endpoint, nil, &profile); err != nil {
		return nil, errors.Join(ErrProfileFetch, err)
	}

	return &profile, nil
}

// FetchProfile runs the full chain for one authorization code:
// token exchange, current member id, member profile.
func (c *Client) FetchProfile(ctx context.Context, code string) (*Profile, error) {
	token, err := c.Exchange(ctx, code)
	if err != nil {
		return nil, err
	}
	c.logger.DebugContext(ctx, "ipb: access token received",
		slog.String("url", c.cfg.CurrentUserURL()),
	)

	userID, err := c.FetchCurrentUserID(ctx, token)
	if err != nil {
		return nil, err
	}
	c.logger.DebugContext(ctx, "ipb: current member resolved",
		slog.String("member_id", userID),
		slog.String("url", c.cfg.MemberURL(userID)),
	)

	return c.FetchMemberProfile(ctx, userID)
}

// getJSON performs a GET request and decodes a 2xx JSON body into dst.
// The token, when present, is sent as a bearer Authorization header.
// Returned errors never include the request URL, which may carry the API key.
func (c *Client) getJSON(ctx context.Context, name, endpoint string, token *oauth2.Token, dst any) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("%s: build request: %w", name, stripURL(err))
	}
	req.Header.Set("Accept", "application/json")
	if token != nil {
		token.SetAuthHeader(req)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s: request: %w", name, stripURL(err))
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("%s: status=%d%s", name, resp.StatusCode, readAPIError(resp.Body))
	}

	if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
		return fmt.Errorf("%s: decode: %w", name, err)
	}

	return nil
}

// readAPIError extracts errorCode/errorMessage from an error body, if present.
func readAPIError(body io.Reader) string {
	data, err := io.ReadAll(io.LimitReader(body, maxErrorBody))
	if err != nil || len(data) == 0 {
		return ""
	}

	var apiErr apiError
	if err := json.Unmarshal(data, &apiErr); err != nil || apiErr.Code == "" {
		return ""
	}
	if apiErr.Message == "" {
		return " code=" + apiErr.Code
	}
	return fmt.Sprintf(" code=%s message=%s", apiErr.Code, apiErr.Message)
}

// stripURL drops the URL from *url.Error so the API key never reaches logs.
func stripURL(err error) error {
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return fmt.Errorf("%s: %w", urlErr.Op, urlErr.Err)
	}
	return err
}

func describeTokenError(err error) error {
	var retrieveErr *oauth2.RetrieveError
	if errors.As(err, &retrieveErr) && retrieveErr.Response != nil {
		if retrieveErr.ErrorCode != "" {
			return fmt.Errorf("token endpoint: status=%d error=%s", retrieveErr.Response.StatusCode, retrieveErr.ErrorCode)
		}
		return fmt.Errorf("token endpoint: status=%d", retrieveErr.Response.StatusCode)
	}
	return fmt.Errorf("token endpoint: %w", stripURL(err))
}
