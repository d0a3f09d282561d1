//go:build !integration

package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestCounters(t *testing.T) {
	IncTenantRegistration(" OK ")
	IncTenantRegistration("ok")
	if got := testutil.ToFloat64(tenantRegistrationsTotal.WithLabelValues("ok")); got != 2 {
		t.Errorf("expected normalized label to count twice, got %v", got)
	}

	IncWebhookUpdate("child", "handled")
	if got := testutil.ToFloat64(webhookUpdatesTotal.WithLabelValues("child", "handled")); got != 1 {
		t.Errorf("webhook updates = %v", got)
	}

	before := testutil.ToFloat64(floodDropsTotal)
	IncFloodDrop()
	if got := testutil.ToFloat64(floodDropsTotal); got != before+1 {
		t.Errorf("flood drops = %v", got)
	}

	ObserveTelegramCall("sendMessage", "ok", 20*time.Millisecond)
	if got := testutil.ToFloat64(telegramCallsTotal.WithLabelValues("sendmessage", "ok")); got != 1 {
		t.Errorf("telegram calls = %v", got)
	}
}

func TestMustRegister_Idempotent(t *testing.T) {
	MustRegister()
	MustRegister()
}
