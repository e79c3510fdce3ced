package notify

import (
	"strings"
	"testing"
)

func TestBuildWebhookCurlPreviewRedactsToken(t *testing.T) {
	t.Parallel()

	preview := buildWebhookCurlPreview("https://hooks.example.com/lives", `{"event_type":"LIFE_LOST"}`, true)
	if !strings.Contains(preview, "Authorization: Bearer ***") {
		t.Fatalf("expected redacted auth header, got %q", preview)
	}
	if strings.Contains(preview, "LIFE_LOST") == false {
		t.Fatalf("expected body in preview, got %q", preview)
	}
}

func TestBuildWebhookCurlPreviewWithoutToken(t *testing.T) {
	t.Parallel()

	preview := buildWebhookCurlPreview("https://hooks.example.com/lives", "{}", false)
	if strings.Contains(preview, "Authorization") {
		t.Fatalf("expected no auth header, got %q", preview)
	}
}

func TestIsRetryableStatus(t *testing.T) {
	t.Parallel()

	for _, status := range []int{408, 429, 500, 503} {
		if !isRetryableStatus(status) {
			t.Fatalf("expected status %d to be retryable", status)
		}
	}
	for _, status := range []int{200, 400, 404, 422} {
		if isRetryableStatus(status) {
			t.Fatalf("expected status %d to be terminal", status)
		}
	}
}

func TestTruncateForLog(t *testing.T) {
	t.Parallel()

	if got := truncateForLog("short", 10); got != "short" {
		t.Fatalf("unexpected truncation: %q", got)
	}
	if got := truncateForLog("0123456789", 4); got != "0123...(truncated)" {
		t.Fatalf("unexpected truncation: %q", got)
	}
}
