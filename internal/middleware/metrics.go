package middleware

import (
	"encoding/json"
	"net/http"
	"runtime"
	"sync/atomic"
	"time"
)

// Metrics stores application metrics
type Metrics struct {
	RequestsTotal      uint64
	RequestsInProgress uint64
	RequestsSuccess    uint64
	RequestsFailed     uint64
	AssessmentsCreated uint64
	RedraftsGenerated  uint64
	RedraftsFailed     uint64
	UploadsStored      uint64
	FeedbackSubmitted  uint64
	StartTime          time.Time
}

var globalMetrics = &Metrics{
	StartTime: time.Now(),
}

func IncrementRequests() {
	atomic.AddUint64(&globalMetrics.RequestsTotal, 1)
}

func IncrementInProgress() {
	atomic.AddUint64(&globalMetrics.RequestsInProgress, 1)
}

func DecrementInProgress() {
	atomic.AddUint64(&globalMetrics.RequestsInProgress, ^uint64(0))
}

func IncrementSuccess() {
	atomic.AddUint64(&globalMetrics.RequestsSuccess, 1)
}

func IncrementFailed() {
	atomic.AddUint64(&globalMetrics.RequestsFailed, 1)
}

// IncrementAssessments counts assessments created through the API
func IncrementAssessments() {
	atomic.AddUint64(&globalMetrics.AssessmentsCreated, 1)
}

// IncrementRedrafts counts successful AI redraft generations
func IncrementRedrafts() {
	atomic.AddUint64(&globalMetrics.RedraftsGenerated, 1)
}

// IncrementRedraftsFailed counts redraft calls that degraded or errored
func IncrementRedraftsFailed() {
	atomic.AddUint64(&globalMetrics.RedraftsFailed, 1)
}

// IncrementUploads counts files accepted into the documents bucket
func IncrementUploads() {
	atomic.AddUint64(&globalMetrics.UploadsStored, 1)
}

// IncrementFeedback counts feedback rows upserted
func IncrementFeedback() {
	atomic.AddUint64(&globalMetrics.FeedbackSubmitted, 1)
}

// GetMetrics returns current metrics
func GetMetrics() map[string]interface{} {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	return map[string]interface{}{
		"requests_total":       atomic.LoadUint64(&globalMetrics.RequestsTotal),
		"requests_in_progress": atomic.LoadUint64(&globalMetrics.RequestsInProgress),
		"requests_success":     atomic.LoadUint64(&globalMetrics.RequestsSuccess),
		"requests_failed":      atomic.LoadUint64(&globalMetrics.RequestsFailed),
		"assessments_created":  atomic.LoadUint64(&globalMetrics.AssessmentsCreated),
		"redrafts_generated":   atomic.LoadUint64(&globalMetrics.RedraftsGenerated),
		"redrafts_failed":      atomic.LoadUint64(&globalMetrics.RedraftsFailed),
		"uploads_stored":       atomic.LoadUint64(&globalMetrics.UploadsStored),
		"feedback_submitted":   atomic.LoadUint64(&globalMetrics.FeedbackSubmitted),
		"uptime_seconds":       time.Since(globalMetrics.StartTime).Seconds(),
		"memory": map[string]interface{}{
			"alloc_bytes":       m.Alloc,
			"total_alloc_bytes": m.TotalAlloc,
			"sys_bytes":         m.Sys,
			"num_gc":            m.NumGC,
		},
		"goroutines": runtime.NumGoroutine(),
	}
}

// MetricsMiddleware tracks request metrics
func MetricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		IncrementRequests()
		IncrementInProgress()
		defer DecrementInProgress()

		wrapped := &responseWriter{
			ResponseWriter: w,
			statusCode:     http.StatusOK,
		}

		next.ServeHTTP(wrapped, r)

		if wrapped.statusCode >= 200 && wrapped.statusCode < 400 {
			IncrementSuccess()
		} else {
			IncrementFailed()
		}
	})
}

// MetricsHandler returns metrics as JSON
func MetricsHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(GetMetrics())
}
