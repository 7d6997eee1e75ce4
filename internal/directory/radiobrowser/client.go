package radiobrowser

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/mmcdole/airwave/internal/domain"
)

const (
	defaultTimeout   = 15 * time.Second
	defaultUserAgent = "airwave/dev"

	// DefaultPageSize is used when a caller asks for a non-positive page size
	DefaultPageSize = 10
)

// Client implements domain.DirectoryRepository and domain.ClickReporter
// for radio-browser.info mirrors.
//
// Every public method is best-effort: errors are logged and collapse into
// an empty result.
type Client struct {
	baseURL    string
	userAgent  string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient creates a new directory client rooted at baseURL
// (e.g. https://de1.api.radio-browser.info).
func NewClient(baseURL, userAgent string, timeout time.Duration, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	if userAgent == "" {
		userAgent = defaultUserAgent
	}
	return &Client{
		baseURL:   strings.TrimRight(baseURL, "/"),
		userAgent: userAgent,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger: logger,
	}
}

// BaseURL returns the directory root this client talks to
func (c *Client) BaseURL() string {
	return c.baseURL
}

// doRequest performs a GET request and returns the body of a 200 response
func (c *Client) doRequest(ctx context.Context, path string, query url.Values) ([]byte, error) {
	reqURL := c.baseURL + path
	if len(query) > 0 {
		reqURL = reqURL + "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)

	c.logger.Debug("directory request", "url", reqURL)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrDirectoryUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	return body, nil
}

// getJSON performs a request and decodes the JSON body into dest
func (c *Client) getJSON(ctx context.Context, path string, query url.Values, dest any) error {
	body, err := c.doRequest(ctx, path, query)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, dest); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}
	return nil
}

func searchQuery(filter string, kind domain.FilterKind, limit, offset int) url.Values {
	query := url.Values{}
	query.Set("limit", strconv.Itoa(limit))
	query.Set("offset", strconv.Itoa(offset))
	query.Set(kind.String(), filter)
	return query
}

// SearchStations returns one page of stations matching filter on the given field
func (c *Client) SearchStations(ctx context.Context, filter string, kind domain.FilterKind, page, pageSize int) []domain.Station {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = DefaultPageSize
	}
	offset := (page - 1) * pageSize

	var records []Station
	if err := c.getJSON(ctx, "/json/stations/search", searchQuery(filter, kind, pageSize, offset), &records); err != nil {
		c.logger.Error("failed to search stations",
			"error", err, "filter", filter, "kind", kind.String(), "page", page)
		return nil
	}

	stations := MapStations(records)
	c.logger.Debug("search complete", "filter", filter, "kind", kind.String(), "page", page, "results", len(stations))
	return stations
}

// StationByID returns the station with the given identifier, if the directory knows it
func (c *Client) StationByID(ctx context.Context, id string) (domain.Station, bool) {
	id = strings.TrimSpace(id)
	if id == "" {
		return domain.Station{}, false
	}

	var records []Station
	if err := c.getJSON(ctx, "/json/stations/byuuid/"+url.PathEscape(id), nil, &records); err != nil {
		c.logger.Error("failed to fetch station", "error", err, "stationID", id)
		return domain.Station{}, false
	}

	stations := MapStations(records)
	if len(stations) == 0 {
		c.logger.Debug("station not found", "stationID", id)
		return domain.Station{}, false
	}
	return stations[0], true
}

// Countries returns the distinct country names known to the directory
func (c *Client) Countries(ctx context.Context) []string {
	return c.names(ctx, "/json/countries", "countries")
}

// Languages returns the distinct language names known to the directory
func (c *Client) Languages(ctx context.Context) []string {
	return c.names(ctx, "/json/languages", "languages")
}

func (c *Client) names(ctx context.Context, path, what string) []string {
	var entries []NamedEntry
	if err := c.getJSON(ctx, path, nil, &entries); err != nil {
		c.logger.Error("failed to list "+what, "error", err)
		return nil
	}
	return MapNames(entries)
}

// CountMatching returns the number of matching stations, capped at limit
func (c *Client) CountMatching(ctx context.Context, filter string, kind domain.FilterKind, limit int) int {
	if limit < 1 {
		limit = 1
	}

	var records []Station
	if err := c.getJSON(ctx, "/json/stations/search", searchQuery(filter, kind, limit, 0), &records); err != nil {
		c.logger.Error("failed to count stations", "error", err, "filter", filter, "kind", kind.String())
		return 0
	}
	return min(len(records), limit)
}

// ReportClick registers a play of the station with the directory's click counter
func (c *Client) ReportClick(ctx context.Context, id string) {
	id = strings.TrimSpace(id)
	if id == "" {
		return
	}

	var resp ClickResponse
	if err := c.getJSON(ctx, "/json/url/"+url.PathEscape(id), nil, &resp); err != nil {
		c.logger.Warn("failed to report click", "error", err, "stationID", id)
		return
	}
	c.logger.Debug("click reported", "stationID", id, "message", resp.Message)
}
