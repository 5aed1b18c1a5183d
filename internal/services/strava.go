// Strava API implementation of [ActivityProvider]
//
// Response types based on https://developers.strava.com/docs/reference/
package services

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/desertthunder/tempo/internal/models"
	"github.com/desertthunder/tempo/internal/shared"
	"golang.org/x/oauth2"
	"golang.org/x/time/rate"
)

const (
	stravaAuthURL  = "https://www.strava.com/oauth/authorize"
	stravaTokenURL = "https://www.strava.com/oauth/token"
	stravaBaseURL  = "https://www.strava.com/api/v3"

	// Strava caps activity pages at 200 entries.
	activityPageSize = 200
)

// StravaService implements [ActivityProvider] against the Strava v3 API.
// Requests are serialized through a rate limiter and optionally capped per
// run so a sync never burns the 15-minute quota.
type StravaService struct {
	config      *oauth2.Config
	token       *oauth2.Token
	httpClient  *http.Client
	limiter     *rate.Limiter
	baseURL     string
	maxRequests int
	requests    int

	// usage mirrors the X-RateLimit-Usage header of the last response.
	usage string
}

// StravaOption configures a StravaService.
type StravaOption func(*StravaService)

// WithMaxRequests caps API requests per ListActivities call. Zero means
// no cap.
func WithMaxRequests(n int) StravaOption {
	return func(s *StravaService) { s.maxRequests = n }
}

// WithRequestRate sets the sustained request rate in requests per second.
func WithRequestRate(rps float64) StravaOption {
	return func(s *StravaService) {
		if rps > 0 {
			s.limiter = rate.NewLimiter(rate.Limit(rps), 1)
		}
	}
}

// WithBaseURL overrides the API base URL.
func WithBaseURL(u string) StravaOption {
	return func(s *StravaService) {
		s.baseURL = u
		s.config.Endpoint.TokenURL = u + "/oauth/token"
	}
}

// WithHTTPClient overrides the HTTP client used for API calls.
func WithHTTPClient(c *http.Client) StravaOption {
	return func(s *StravaService) { s.httpClient = c }
}

// NewStravaService creates a Strava service from stored credentials.
func NewStravaService(creds shared.StravaCredentials, opts ...StravaOption) (*StravaService, error) {
	if creds.ClientID == "" || creds.ClientSecret == "" {
		return nil, fmt.Errorf("%w: strava client_id and client_secret are required", shared.ErrMissingCredentials)
	}

	config := &oauth2.Config{
		ClientID:     creds.ClientID,
		ClientSecret: creds.ClientSecret,
		RedirectURL:  creds.RedirectURI,
		Scopes:       []string{"activity:read_all"},
		Endpoint: oauth2.Endpoint{
			AuthURL:  stravaAuthURL,
			TokenURL: stravaTokenURL,
		},
	}

	s := &StravaService{
		config:     config,
		httpClient: http.DefaultClient,
		limiter:    rate.NewLimiter(rate.Limit(1), 1),
		baseURL:    stravaBaseURL,
	}

	if creds.AccessToken != "" || creds.RefreshToken != "" {
		s.token = &oauth2.Token{
			AccessToken:  creds.AccessToken,
			RefreshToken: creds.RefreshToken,
		}
	}

	for _, opt := range opts {
		opt(s)
	}

	return s, nil
}

func (s *StravaService) Name() string {
	return "Strava"
}

// GetAuthURL returns the OAuth2 authorization URL for user login.
func (s *StravaService) GetAuthURL(state string) string {
	return s.config.AuthCodeURL(state, oauth2.AccessTypeOffline)
}

// Exchange trades an authorization code for a token and installs it.
func (s *StravaService) Exchange(ctx context.Context, code string) (*oauth2.Token, error) {
	token, err := s.config.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrAuthFailed, err)
	}
	s.token = token
	return token, nil
}

// Token returns the current token so refreshed credentials can be saved.
func (s *StravaService) Token() *oauth2.Token {
	return s.token
}

// OAuthConfig exposes the underlying [oauth2.Config] for the callback server.
func (s *StravaService) OAuthConfig() *oauth2.Config {
	return s.config
}

// Usage reports the most recent X-RateLimit-Usage header value.
func (s *StravaService) Usage() string {
	return s.usage
}

// ListActivities pages through /athlete/activities for the given window.
// A 401 triggers one token refresh and one retry of the failed page.
//
// Two degraded outcomes are possible: hitting the request cap stops
// pagination and returns what was fetched with no error, while a request
// failure after the retry returns the partial result wrapped in
// [shared.ErrIncompleteFetch].
func (s *StravaService) ListActivities(ctx context.Context, start, end time.Time) ([]models.Activity, error) {
	if s.token == nil || s.token.AccessToken == "" {
		return nil, fmt.Errorf("%w: call Exchange or provide an access token", shared.ErrNotAuthenticated)
	}

	var activities []models.Activity
	s.requests = 0
	refreshed := false

	for page := 1; ; page++ {
		if s.maxRequests > 0 && s.requests >= s.maxRequests {
			return activities, nil
		}

		if err := s.limiter.Wait(ctx); err != nil {
			return activities, fmt.Errorf("%w: %v", shared.ErrIncompleteFetch, err)
		}

		batch, status, err := s.fetchPage(ctx, page, start, end)
		if status == http.StatusUnauthorized && !refreshed {
			refreshed = true
			if err := s.refreshToken(ctx); err != nil {
				return activities, fmt.Errorf("%w: %v", shared.ErrIncompleteFetch, err)
			}
			batch, status, err = s.fetchPage(ctx, page, start, end)
		}
		if err != nil {
			return activities, fmt.Errorf("%w: page %d: %v", shared.ErrIncompleteFetch, page, err)
		}

		if len(batch) == 0 {
			return activities, nil
		}
		activities = append(activities, batch...)
		if len(batch) < activityPageSize {
			return activities, nil
		}
	}
}

// FilterRuns keeps only running activities.
func FilterRuns(activities []models.Activity) []models.Activity {
	var runs []models.Activity
	for _, a := range activities {
		if a.IsRun() {
			runs = append(runs, a)
		}
	}
	return runs
}

// fetchPage requests one page of activities. The returned status lets the
// caller distinguish a 401 from other failures.
func (s *StravaService) fetchPage(ctx context.Context, page int, start, end time.Time) ([]models.Activity, int, error) {
	params := url.Values{
		"per_page": {strconv.Itoa(activityPageSize)},
		"page":     {strconv.Itoa(page)},
	}
	if !start.IsZero() {
		params.Set("after", strconv.FormatInt(start.Unix(), 10))
	}
	if !end.IsZero() {
		params.Set("before", strconv.FormatInt(end.Unix(), 10))
	}

	endpoint := s.baseURL + "/athlete/activities?" + params.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+s.token.AccessToken)

	s.requests++
	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if usage := resp.Header.Get("X-RateLimit-Usage"); usage != "" {
		s.usage = usage
	}

	if resp.StatusCode == http.StatusUnauthorized {
		io.Copy(io.Discard, resp.Body)
		return nil, resp.StatusCode, fmt.Errorf("%w: unauthorized", shared.ErrTokenExpired)
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, resp.StatusCode, fmt.Errorf("%w: status %d: %s", shared.ErrAPIRequest, resp.StatusCode, body)
	}

	var batch []models.Activity
	if err := json.NewDecoder(resp.Body).Decode(&batch); err != nil {
		return nil, resp.StatusCode, fmt.Errorf("failed to decode activities: %w", err)
	}
	return batch, resp.StatusCode, nil
}

// refreshToken forces a refresh-grant round trip by presenting the current
// token as expired.
func (s *StravaService) refreshToken(ctx context.Context) error {
	if s.token == nil || s.token.RefreshToken == "" {
		return shared.ErrNoRefreshToken
	}

	expired := *s.token
	expired.Expiry = time.Now().Add(-time.Hour)

	ctx = context.WithValue(ctx, oauth2.HTTPClient, s.httpClient)
	fresh, err := s.config.TokenSource(ctx, &expired).Token()
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrRefreshFailed, err)
	}

	s.token = fresh
	return nil
}
