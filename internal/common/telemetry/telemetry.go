// File path: internal/common/telemetry/telemetry.go
package telemetry

import (
	"context"
	"expvar"
	"strings"
	"sync"
	"time"

	"github.com/animalert/animalert/internal/common"
)

type spanKey struct{}

type span struct {
	name  string
	start time.Time
}

var (
	initOnce sync.Once

	complaintsSubmitted *expvar.Int
	complaintsFailed    *expvar.Map

	countersReserved *expvar.Map

	renderTotal     *expvar.Int
	renderFailed    *expvar.Int
	renderLatencyMS *expvar.Int

	uploadBytes *expvar.Int

	emailSent    *expvar.Int
	emailFailed  *expvar.Int
	emailRetried *expvar.Int
)

func ensureInit() {
	initOnce.Do(func() {
		complaintsSubmitted = expvar.NewInt("animalert_complaints_submitted_total")
		complaintsFailed = expvar.NewMap("animalert_complaints_failed_total")

		countersReserved = expvar.NewMap("animalert_counters_reserved_total")

		renderTotal = expvar.NewInt("animalert_render_total")
		renderFailed = expvar.NewInt("animalert_render_failed_total")
		renderLatencyMS = expvar.NewInt("animalert_render_latency_ms")

		uploadBytes = expvar.NewInt("animalert_upload_bytes_total")

		emailSent = expvar.NewInt("animalert_email_sent_total")
		emailFailed = expvar.NewInt("animalert_email_failed_total")
		emailRetried = expvar.NewInt("animalert_email_retried_total")
	})
}

// StartSpan logs the start of a named unit of work at debug level and
// returns a func that logs its end with the elapsed time.
func StartSpan(ctx context.Context, name string) (context.Context, func(attrs ...interface{})) {
	ensureInit()
	sp := &span{name: name, start: time.Now()}
	ctx = context.WithValue(ctx, spanKey{}, sp)
	logger := common.Logger()
	logger.Debug("trace: start", "span", name)
	return ctx, func(attrs ...interface{}) {
		logger.Debug("trace: end", append([]interface{}{"span", name, "dur", time.Since(sp.start)}, attrs...)...)
	}
}

// SpanDuration reports how long the span stored in ctx has been running.
func SpanDuration(ctx context.Context) time.Duration {
	sp, _ := ctx.Value(spanKey{}).(*span)
	if sp == nil {
		return 0
	}
	return time.Since(sp.start)
}

func RecordComplaintSubmitted() {
	ensureInit()
	complaintsSubmitted.Add(1)
}

// RecordComplaintFailed counts a failed submission under the pipeline step
// that failed.
func RecordComplaintFailed(step string) {
	ensureInit()
	complaintsFailed.Add(normalize(step, "unknown"), 1)
}

func RecordCounterReserved(scope string) {
	ensureInit()
	countersReserved.Add(normalize(scope, "unknown"), 1)
}

func RecordRender(duration time.Duration, err error) {
	ensureInit()
	renderTotal.Add(1)
	if err != nil {
		renderFailed.Add(1)
	}
	if duration > 0 {
		renderLatencyMS.Add(duration.Milliseconds())
	}
}

func RecordUpload(size int) {
	ensureInit()
	if size > 0 {
		uploadBytes.Add(int64(size))
	}
}

func RecordEmail(err error, retried bool) {
	ensureInit()
	if retried {
		emailRetried.Add(1)
	}
	if err != nil {
		emailFailed.Add(1)
		return
	}
	emailSent.Add(1)
}

func normalize(key, fallback string) string {
	key = strings.TrimSpace(strings.ToLower(key))
	if key == "" {
		return fallback
	}
	return key
}
