package metrics

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"sync/atomic"

	"github.com/gin-gonic/gin"
)

var (
	usersRegisteredTotal     atomic.Uint64
	usersVerifiedTotal       atomic.Uint64
	otpIssuedTotal           atomic.Uint64
	loginFailedTotal         atomic.Uint64
	accountsDeletedTotal     atomic.Uint64
	resumesUploadedTotal     atomic.Uint64
	resumesAnalyzedTotal     atomic.Uint64
	applicationsCreatedTotal atomic.Uint64

	analysisDuration = newHistogram([]float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10})
)

// IncUsersRegistered counts accepted registrations.
func IncUsersRegistered() { usersRegisteredTotal.Add(1) }

// IncUsersVerified counts successful OTP verifications.
func IncUsersVerified() { usersVerifiedTotal.Add(1) }

// IncOTPIssued counts codes issued by registration or resend.
func IncOTPIssued() { otpIssuedTotal.Add(1) }

// IncLoginFailed counts rejected logins.
func IncLoginFailed() { loginFailedTotal.Add(1) }

// IncAccountsDeleted counts account deletions.
func IncAccountsDeleted() { accountsDeletedTotal.Add(1) }

// IncResumesUploaded counts stored resumes.
func IncResumesUploaded() { resumesUploadedTotal.Add(1) }

// IncResumesAnalyzed counts generated analyses, including re-analysis.
func IncResumesAnalyzed() { resumesAnalyzedTotal.Add(1) }

// IncApplicationsCreated counts created job applications.
func IncApplicationsCreated() { applicationsCreatedTotal.Add(1) }

// ObserveAnalysisDurationMs records an analysis duration in milliseconds.
func ObserveAnalysisDurationMs(value float64) {
	if value < 0 {
		value = 0
	}
	analysisDuration.Observe(value)
}

// Handler exposes metrics in Prometheus text format.
func Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Content-Type", "text/plain; version=0.0.4")
		c.String(http.StatusOK, Render())
	}
}

// Render renders metrics in Prometheus text format.
func Render() string {
	var buf bytes.Buffer
	writeCounter(&buf, "users_registered_total", "Total accepted registrations", usersRegisteredTotal.Load())
	writeCounter(&buf, "users_verified_total", "Total verified accounts", usersVerifiedTotal.Load())
	writeCounter(&buf, "otp_issued_total", "Total verification codes issued", otpIssuedTotal.Load())
	writeCounter(&buf, "login_failed_total", "Total rejected logins", loginFailedTotal.Load())
	writeCounter(&buf, "accounts_deleted_total", "Total deleted accounts", accountsDeletedTotal.Load())
	writeCounter(&buf, "resumes_uploaded_total", "Total uploaded resumes", resumesUploadedTotal.Load())
	writeCounter(&buf, "resumes_analyzed_total", "Total generated resume analyses", resumesAnalyzedTotal.Load())
	writeCounter(&buf, "applications_created_total", "Total created job applications", applicationsCreatedTotal.Load())
	writeHistogram(&buf, "resume_analysis_duration_ms", "Resume analysis duration in milliseconds", analysisDuration.Snapshot())
	return buf.String()
}

type histogram struct {
	mu      sync.Mutex
	buckets []float64
	counts  []uint64
	sum     float64
	count   uint64
}

type histogramSnapshot struct {
	buckets []float64
	counts  []uint64
	sum     float64
	count   uint64
}

func newHistogram(buckets []float64) *histogram {
	return &histogram{
		buckets: buckets,
		counts:  make([]uint64, len(buckets)),
	}
}

func (h *histogram) Observe(value float64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.count++
	h.sum += value
	for i, bound := range h.buckets {
		if value <= bound {
			h.counts[i]++
			break
		}
	}
}

func (h *histogram) Snapshot() histogramSnapshot {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := histogramSnapshot{
		buckets: append([]float64(nil), h.buckets...),
		counts:  append([]uint64(nil), h.counts...),
		sum:     h.sum,
		count:   h.count,
	}
	return out
}

func writeCounter(buf *bytes.Buffer, name, help string, value uint64) {
	fmt.Fprintf(buf, "# HELP %s %s\n", name, help)
	fmt.Fprintf(buf, "# TYPE %s counter\n", name)
	fmt.Fprintf(buf, "%s %d\n", name, value)
}

func writeHistogram(buf *bytes.Buffer, name, help string, snap histogramSnapshot) {
	fmt.Fprintf(buf, "# HELP %s %s\n", name, help)
	fmt.Fprintf(buf, "# TYPE %s histogram\n", name)
	var cumulative uint64
	for i, bound := range snap.buckets {
		cumulative += snap.counts[i]
		fmt.Fprintf(buf, "%s_bucket{le=\"%s\"} %d\n", name, formatFloat(bound), cumulative)
	}
	fmt.Fprintf(buf, "%s_bucket{le=\"+Inf\"} %d\n", name, snap.count)
	fmt.Fprintf(buf, "%s_sum %s\n", name, formatFloat(snap.sum))
	fmt.Fprintf(buf, "%s_count %d\n", name, snap.count)
}

func formatFloat(value float64) string {
	if value == float64(int64(value)) {
		return strconv.FormatInt(int64(value), 10)
	}
	return strconv.FormatFloat(value, 'f', -1, 64)
}
