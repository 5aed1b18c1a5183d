// iTunes Search API implementation of [ArtistLookup]
//
// https://performance-partners.apple.com/search-api
package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/desertthunder/tempo/internal/shared"
	"golang.org/x/time/rate"
)

const itunesBaseURL = "https://itunes.apple.com"

// itunesResult is one entry of an iTunes Search response.
type itunesResult struct {
	ArtistName     string `json:"artistName"`
	CollectionName string `json:"collectionName"`
}

type itunesResponse struct {
	ResultCount int            `json:"resultCount"`
	Results     []itunesResult `json:"results"`
}

// ITunesService implements [ArtistLookup] against the iTunes Search API.
// The API is unauthenticated but informally limited to about 20 requests
// per minute, so lookups go through a conservative limiter.
type ITunesService struct {
	httpClient *http.Client
	limiter    *rate.Limiter
	baseURL    string
}

// ITunesOption configures an ITunesService.
type ITunesOption func(*ITunesService)

// WithITunesBaseURL overrides the API base URL.
func WithITunesBaseURL(u string) ITunesOption {
	return func(s *ITunesService) { s.baseURL = u }
}

// WithITunesHTTPClient overrides the HTTP client used for lookups.
func WithITunesHTTPClient(c *http.Client) ITunesOption {
	return func(s *ITunesService) { s.httpClient = c }
}

// WithRequestsPerMinute sets the sustained lookup rate.
func WithRequestsPerMinute(rpm int) ITunesOption {
	return func(s *ITunesService) {
		if rpm > 0 {
			s.limiter = rate.NewLimiter(rate.Limit(float64(rpm)/60), 1)
		}
	}
}

// NewITunesService creates an iTunes Search client. The default rate is
// 12 requests per minute, safely under Apple's informal limit.
func NewITunesService(opts ...ITunesOption) *ITunesService {
	s := &ITunesService{
		httpClient: http.DefaultClient,
		limiter:    rate.NewLimiter(rate.Limit(12.0/60), 1),
		baseURL:    itunesBaseURL,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *ITunesService) Name() string {
	return "iTunes"
}

// SearchArtist looks up the artist for an album. Match preference: exact
// collection name, then substring containment either way, then the first
// result. No results wraps [shared.ErrArtistNotFound].
func (s *ITunesService) SearchArtist(ctx context.Context, album string) (string, error) {
	if album == "" {
		return "", fmt.Errorf("%w: album name", shared.ErrMissingArgument)
	}

	if err := s.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("rate limit wait: %w", err)
	}

	params := url.Values{
		"term":   {album},
		"entity": {"album"},
		"limit":  {"5"},
	}
	endpoint := s.baseURL + "/search?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", shared.ErrServiceUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: status %d", shared.ErrAPIRequest, resp.StatusCode)
	}

	var result itunesResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("failed to decode search response: %w", err)
	}

	if result.ResultCount == 0 || len(result.Results) == 0 {
		return "", fmt.Errorf("%w: %s", shared.ErrArtistNotFound, album)
	}

	lower := strings.ToLower(album)
	for _, r := range result.Results {
		if strings.ToLower(r.CollectionName) == lower {
			return r.ArtistName, nil
		}
	}
	for _, r := range result.Results {
		collection := strings.ToLower(r.CollectionName)
		if collection == "" {
			continue
		}
		if strings.Contains(collection, lower) || strings.Contains(lower, collection) {
			return r.ArtistName, nil
		}
	}
	return s.firstArtist(result.Results, album)
}

func (s *ITunesService) firstArtist(results []itunesResult, album string) (string, error) {
	if results[0].ArtistName == "" {
		return "", fmt.Errorf("%w: %s", shared.ErrArtistNotFound, album)
	}
	return results[0].ArtistName, nil
}
