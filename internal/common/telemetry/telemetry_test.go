// File path: internal/common/telemetry/telemetry_test.go
package telemetry

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestRecordersUpdateCounters(t *testing.T) {
	ensureInit()
	beforeSent := emailSent.Value()
	beforeFailed := emailFailed.Value()
	beforeRetried := emailRetried.Value()

	RecordEmail(nil, false)
	RecordEmail(errors.New("smtp down"), true)

	if emailSent.Value() != beforeSent+1 {
		t.Fatalf("email sent counter not incremented")
	}
	if emailFailed.Value() != beforeFailed+1 {
		t.Fatalf("email failed counter not incremented")
	}
	if emailRetried.Value() != beforeRetried+1 {
		t.Fatalf("email retried counter not incremented")
	}

	beforeRenders := renderTotal.Value()
	beforeRenderFailures := renderFailed.Value()
	RecordRender(15*time.Millisecond, nil)
	RecordRender(0, errors.New("crash"))
	if renderTotal.Value() != beforeRenders+2 || renderFailed.Value() != beforeRenderFailures+1 {
		t.Fatalf("render counters mismatch")
	}

	RecordComplaintFailed("  Render ")
	if complaintsFailed.Get("render") == nil {
		t.Fatalf("failure step not normalised")
	}
	RecordCounterReserved("")
	if countersReserved.Get("unknown") == nil {
		t.Fatalf("empty scope should be recorded as unknown")
	}
}

func TestSpanDuration(t *testing.T) {
	if SpanDuration(context.Background()) != 0 {
		t.Fatalf("expected zero duration without span")
	}
	ctx, end := StartSpan(context.Background(), "complaint.render")
	time.Sleep(2 * time.Millisecond)
	if SpanDuration(ctx) <= 0 {
		t.Fatalf("expected positive span duration")
	}
	end("ok", true)
}
