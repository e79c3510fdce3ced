package notify

import (
	"context"
	stderrors "errors"
	"fmt"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"
	"github.com/riskibarqy/f1-survivor/internal/platform/logging"
	"github.com/riskibarqy/f1-survivor/internal/platform/resilience"
	"github.com/riskibarqy/f1-survivor/internal/usecase"
	"github.com/valyala/bytebufferpool"
	"github.com/valyala/fasthttp"
)

var errWebhookTransient = crerr.New("webhook transient failure")

type WebhookPublisherConfig struct {
	Endpoint       string
	Token          string
	Timeout        time.Duration
	Retry          resilience.RetryConfig
	CircuitBreaker resilience.CircuitBreakerConfig
}

// WebhookPublisher delivers life events to a configured HTTP endpoint.
// Consumers are expected to be push-notification or chat-bot bridges, so
// delivery is best effort with a small retry budget.
type WebhookPublisher struct {
	client         *fasthttp.Client
	endpoint       string
	token          string
	timeout        time.Duration
	retry          resilience.RetryConfig
	logger         *logging.Logger
	breaker        *resilience.CircuitBreaker
	circuitEnabled bool
}

func NewWebhookPublisher(cfg WebhookPublisherConfig, logger *logging.Logger) *WebhookPublisher {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	if logger == nil {
		logger = logging.Default()
	}
	breakerCfg := resilience.NormalizeCircuitBreakerConfig(cfg.CircuitBreaker)

	return &WebhookPublisher{
		client: &fasthttp.Client{
			ReadTimeout:  timeout,
			WriteTimeout: timeout,
		},
		endpoint:       strings.TrimSpace(cfg.Endpoint),
		token:          strings.TrimSpace(cfg.Token),
		timeout:        timeout,
		retry:          resilience.NormalizeRetryConfig(cfg.Retry),
		logger:         logger,
		breaker:        resilience.NewCircuitBreaker(breakerCfg.FailureThreshold, breakerCfg.OpenTimeout, breakerCfg.HalfOpenMaxReq),
		circuitEnabled: breakerCfg.Enabled,
	}
}

func (p *WebhookPublisher) PublishLifeEvent(ctx context.Context, event usecase.LifeEventNotification) error {
	if p.endpoint == "" {
		return crerr.New("webhook endpoint is not configured")
	}

	if p.circuitEnabled {
		if err := p.breaker.Allow(); err != nil {
			p.logger.WarnContext(ctx, "webhook circuit breaker rejected request", "state", p.breaker.State())
			return fmt.Errorf("webhook endpoint is temporarily unavailable: %w", err)
		}
	}

	body, err := sonic.Marshal(event)
	if err != nil {
		return crerr.Wrap(err, "marshal life event")
	}

	curlPreview := buildWebhookCurlPreview(p.endpoint, truncateForLog(string(body), 4096), p.token != "")
	p.logger.DebugContext(ctx, "webhook publish request",
		"event_type", event.EventType,
		"league_id", event.LeagueID,
		"curl_preview", curlPreview,
	)

	callErr := resilience.Retry(ctx, p.retry, func(ctx context.Context) error {
		return p.send(body)
	})
	p.recordCircuitResult(callErr)
	if callErr != nil {
		return callErr
	}

	p.logger.InfoContext(ctx, "life event published",
		"event_type", event.EventType,
		"user_id", event.UserID,
		"league_id", event.LeagueID,
	)
	return nil
}

func (p *WebhookPublisher) send(body []byte) error {
	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(p.endpoint)
	req.Header.SetMethod(fasthttp.MethodPost)
	req.Header.SetContentType("application/json")
	if p.token != "" {
		req.Header.Set("Authorization", "Bearer "+p.token)
	}
	req.SetBody(body)

	if err := p.client.DoTimeout(req, resp, p.timeout); err != nil {
		return fmt.Errorf("%w: send webhook request: %v", errWebhookTransient, err)
	}

	status := resp.StatusCode()
	if status/100 == 2 {
		return nil
	}

	respBody := strings.TrimSpace(truncateForLog(string(resp.Body()), 1024))
	if isRetryableStatus(status) {
		return fmt.Errorf("%w: webhook status=%d body=%s", errWebhookTransient, status, respBody)
	}
	return fmt.Errorf("webhook status=%d body=%s", status, respBody)
}

func buildWebhookCurlPreview(endpoint, body string, withToken bool) string {
	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)

	appendPart := func(part string) {
		if buf.Len() > 0 {
			_ = buf.WriteByte(' ')
		}
		_, _ = buf.WriteString(part)
	}

	appendPart("curl")
	appendPart("-X")
	appendPart("POST")
	appendPart(shellQuote(endpoint))
	appendPart("-H")
	appendPart(shellQuote("Content-Type: application/json"))
	if withToken {
		appendPart("-H")
		appendPart(shellQuote("Authorization: Bearer ***"))
	}
	appendPart("-d")
	appendPart(shellQuote(body))

	return buf.String()
}

func shellQuote(value string) string {
	return "'" + strings.ReplaceAll(value, "'", "'\"'\"'") + "'"
}

func truncateForLog(value string, max int) string {
	if max <= 0 || len(value) <= max {
		return value
	}
	return value[:max] + "...(truncated)"
}

func (p *WebhookPublisher) recordCircuitResult(err error) {
	if !p.circuitEnabled || p.breaker == nil {
		return
	}
	if err == nil {
		p.breaker.RecordSuccess()
		return
	}
	if stderrors.Is(err, errWebhookTransient) {
		p.breaker.RecordFailure()
		return
	}
	p.breaker.RecordSuccess()
}

func isRetryableStatus(statusCode int) bool {
	return statusCode == fasthttp.StatusRequestTimeout ||
		statusCode == fasthttp.StatusTooManyRequests ||
		statusCode >= fasthttp.StatusInternalServerError
}

// NoopPublisher satisfies the notifier contract when no endpoint is
// configured.
type NoopPublisher struct{}

func NewNoopPublisher() *NoopPublisher { return &NoopPublisher{} }

func (*NoopPublisher) PublishLifeEvent(context.Context, usecase.LifeEventNotification) error {
	return nil
}
