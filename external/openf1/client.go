package openf1

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/riskibarqy/f1-survivor/internal/domain/qualifying"
	"github.com/riskibarqy/f1-survivor/internal/platform/logging"
	"github.com/riskibarqy/f1-survivor/internal/platform/resilience"
	"github.com/riskibarqy/f1-survivor/internal/usecase"
)

const (
	defaultBaseURL     = "https://api.openf1.org/v1"
	qualifyingSession  = "Qualifying"
	maxResponsePayload = 6 << 20
)

var errOpenF1Transient = crerr.New("openf1 transient failure")

type ClientConfig struct {
	HTTPClient     *http.Client
	BaseURL        string
	Timeout        time.Duration
	MaxRetries     int
	Logger         *logging.Logger
	CircuitBreaker resilience.CircuitBreakerConfig
}

type Client struct {
	httpClient     *http.Client
	baseURL        string
	maxRetries     int
	logger         *logging.Logger
	breaker        *resilience.CircuitBreaker
	circuitEnabled bool
	flight         resilience.SingleFlight
}

func NewClient(cfg ClientConfig) *Client {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{
			Timeout:   cfg.Timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		}
	}
	if httpClient.Timeout <= 0 {
		httpClient.Timeout = 20 * time.Second
	}

	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	breakerCfg := resilience.NormalizeCircuitBreakerConfig(cfg.CircuitBreaker)

	maxRetries := cfg.MaxRetries
	if maxRetries < 0 {
		maxRetries = 0
	}

	return &Client{
		httpClient:     httpClient,
		baseURL:        baseURL,
		maxRetries:     maxRetries,
		logger:         logger,
		breaker:        resilience.NewCircuitBreaker(breakerCfg.FailureThreshold, breakerCfg.OpenTimeout, breakerCfg.HalfOpenMaxReq),
		circuitEnabled: breakerCfg.Enabled,
	}
}

type sessionRow struct {
	SessionKey  int64  `json:"session_key"`
	SessionName string `json:"session_name"`
	DateStart   string `json:"date_start"`
	CircuitName string `json:"circuit_short_name"`
}

type driverRow struct {
	DriverNumber  int    `json:"driver_number"`
	FullName      string `json:"full_name"`
	BroadcastName string `json:"broadcast_name"`
	TeamName      string `json:"team_name"`
}

type lapRow struct {
	DriverNumber int      `json:"driver_number"`
	LapDuration  *float64 `json:"lap_duration"`
}

// FetchClassification resolves the qualifying session held on the given
// date and ranks its drivers by best lap. Drivers without a timed lap rank
// last, keeping the provider's entry order among themselves.
func (c *Client) FetchClassification(ctx context.Context, sessionAt time.Time) ([]qualifying.Entry, error) {
	session, err := c.findQualifyingSession(ctx, sessionAt)
	if err != nil {
		return nil, err
	}

	drivers, err := c.fetchSessionDrivers(ctx, session.SessionKey)
	if err != nil {
		return nil, err
	}
	if len(drivers) == 0 {
		return nil, fmt.Errorf("session %d has no drivers", session.SessionKey)
	}

	laps, err := c.fetchSessionLaps(ctx, session.SessionKey)
	if err != nil {
		return nil, err
	}

	return rankClassification(drivers, laps), nil
}

func (c *Client) findQualifyingSession(ctx context.Context, sessionAt time.Time) (sessionRow, error) {
	day := sessionAt.UTC().Format("2006-01-02")
	query := map[string]string{
		"year":         strconv.Itoa(sessionAt.UTC().Year()),
		"session_name": qualifyingSession,
	}

	var sessions []sessionRow
	if err := c.doJSON(ctx, "/sessions", query, &sessions); err != nil {
		return sessionRow{}, fmt.Errorf("fetch qualifying sessions: %w", err)
	}

	for _, session := range sessions {
		if strings.HasPrefix(session.DateStart, day) {
			return session, nil
		}
	}

	return sessionRow{}, fmt.Errorf("no qualifying session on %s", day)
}

func (c *Client) fetchSessionDrivers(ctx context.Context, sessionKey int64) ([]driverRow, error) {
	query := map[string]string{"session_key": strconv.FormatInt(sessionKey, 10)}

	var drivers []driverRow
	if err := c.doJSON(ctx, "/drivers", query, &drivers); err != nil {
		return nil, fmt.Errorf("fetch session drivers: %w", err)
	}

	return drivers, nil
}

func (c *Client) fetchSessionLaps(ctx context.Context, sessionKey int64) ([]lapRow, error) {
	query := map[string]string{"session_key": strconv.FormatInt(sessionKey, 10)}

	var laps []lapRow
	if err := c.doJSON(ctx, "/laps", query, &laps); err != nil {
		return nil, fmt.Errorf("fetch session laps: %w", err)
	}

	return laps, nil
}

func rankClassification(drivers []driverRow, laps []lapRow) []qualifying.Entry {
	bestByDriver := make(map[int]float64, len(drivers))
	for _, lap := range laps {
		if lap.LapDuration == nil || *lap.LapDuration <= 0 {
			continue
		}
		best, ok := bestByDriver[lap.DriverNumber]
		if !ok || *lap.LapDuration < best {
			bestByDriver[lap.DriverNumber] = *lap.LapDuration
		}
	}

	entries := make([]qualifying.Entry, 0, len(drivers))
	for _, driver := range drivers {
		name := strings.TrimSpace(driver.FullName)
		if name == "" {
			name = strings.TrimSpace(driver.BroadcastName)
		}
		entry := qualifying.Entry{
			CompetitorID:   strconv.Itoa(driver.DriverNumber),
			CompetitorName: name,
			TeamName:       strings.TrimSpace(driver.TeamName),
		}
		if best, ok := bestByDriver[driver.DriverNumber]; ok {
			lap := best
			entry.BestLapSeconds = &lap
		}
		entries = append(entries, entry)
	}

	sort.SliceStable(entries, func(i, j int) bool {
		left, right := entries[i].BestLapSeconds, entries[j].BestLapSeconds
		switch {
		case left == nil:
			return false
		case right == nil:
			return true
		default:
			return *left < *right
		}
	})
	for i := range entries {
		entries[i].Position = i + 1
	}

	return entries
}

func (c *Client) doJSON(ctx context.Context, path string, query map[string]string, target any) error {
	if c.circuitEnabled {
		if err := c.breaker.Allow(); err != nil {
			c.logger.WarnContext(ctx, "openf1 circuit breaker rejected request", "state", c.breaker.State())
			return fmt.Errorf("%w: qualifying data provider is temporarily unavailable", usecase.ErrDependencyUnavailable)
		}
	}

	values := url.Values{}
	for key, value := range query {
		values.Set(key, value)
	}

	fullURL := c.baseURL + path
	if encoded := values.Encode(); encoded != "" {
		fullURL += "?" + encoded
	}

	out, err, _ := c.flight.Do(fullURL, func() (any, error) {
		raw, reqErr := c.executeRequest(ctx, fullURL)
		if c.circuitEnabled {
			if reqErr != nil && isCircuitFailure(reqErr) {
				c.breaker.RecordFailure()
			} else {
				c.breaker.RecordSuccess()
			}
		}
		return raw, reqErr
	})
	if err != nil {
		return err
	}

	raw, ok := out.([]byte)
	if !ok {
		return fmt.Errorf("unexpected response payload type %T", out)
	}

	if err := sonic.Unmarshal(raw, target); err != nil {
		return fmt.Errorf("decode provider payload: %w", err)
	}

	return nil
}

func (c *Client) executeRequest(ctx context.Context, fullURL string) ([]byte, error) {
	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
		if err != nil {
			return nil, fmt.Errorf("build request: %w", err)
		}
		req.Header.Set("accept", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = fmt.Errorf("%w: send request: %v", errOpenF1Transient, err)
		} else {
			raw, readErr := io.ReadAll(io.LimitReader(resp.Body, maxResponsePayload))
			_ = resp.Body.Close()
			if readErr != nil {
				lastErr = fmt.Errorf("%w: read response body: %v", errOpenF1Transient, readErr)
			} else if resp.StatusCode >= 200 && resp.StatusCode < 300 {
				return raw, nil
			} else {
				if isRetryableStatus(resp.StatusCode) {
					lastErr = fmt.Errorf("%w: provider status=%d body=%s", errOpenF1Transient, resp.StatusCode, abbreviateBody(raw))
				} else {
					return nil, fmt.Errorf("provider status=%d body=%s", resp.StatusCode, abbreviateBody(raw))
				}
			}
		}

		if attempt == c.maxRetries {
			break
		}
		backoff := time.Duration(attempt+1) * time.Second
		timer := time.NewTimer(backoff)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
	}

	if lastErr == nil {
		lastErr = fmt.Errorf("provider request failed")
	}
	c.logger.WarnContext(ctx, "openf1 request failed", "url", fullURL, "error", lastErr)
	return nil, lastErr
}

func isRetryableStatus(status int) bool {
	if status == http.StatusTooManyRequests {
		return true
	}
	return status >= 500
}

func isCircuitFailure(err error) bool {
	return stderrors.Is(err, errOpenF1Transient) || stderrors.Is(err, context.DeadlineExceeded)
}

func abbreviateBody(raw []byte) string {
	body := strings.TrimSpace(string(raw))
	if len(body) > 240 {
		return body[:240] + "..."
	}
	return body
}
