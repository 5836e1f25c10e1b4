// Shelfwise - Book Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shelfwise

package metrics

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

// TestRecordDBQuery tests database query metric recording
func TestRecordDBQuery(t *testing.T) {
	tests := []struct {
		name      string
		operation string
		table     string
		err       error
		wantErr   string
	}{
		{
			name:      "successful SELECT query",
			operation: "SELECT",
			table:     "ratings",
		},
		{
			name:      "failed upsert",
			operation: "UPSERT",
			table:     "ratings",
			err:       errors.New("connection refused"),
			wantErr:   "connection refused",
		},
		{
			name:      "long error is truncated to 50 chars",
			operation: "INSERT",
			table:     "books",
			err:       errors.New(strings.Repeat("x", 80)),
			wantErr:   strings.Repeat("x", 50),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			RecordDBQuery(tt.operation, tt.table, 10*time.Millisecond, tt.err)
			if tt.err == nil {
				return
			}
			got := testutil.ToFloat64(DBQueryErrors.WithLabelValues(tt.operation, tt.table, tt.wantErr))
			if got < 1 {
				t.Errorf("DBQueryErrors{%s,%s,%q} = %v, want >= 1", tt.operation, tt.table, tt.wantErr, got)
			}
		})
	}
}

// TestRecordAPIRequest tests API request metric recording
func TestRecordAPIRequest(t *testing.T) {
	tests := []struct {
		method     string
		endpoint   string
		statusCode string
	}{
		{"GET", "/api/v1/recommendations/{userID}", "200"},
		{"POST", "/api/v1/preferences", "201"},
		{"GET", "/api/v1/recommendations/{userID}", "503"},
		{"POST", "/api/v1/users", "409"},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.statusCode, func(t *testing.T) {
			before := testutil.ToFloat64(APIRequestsTotal.WithLabelValues(tt.method, tt.endpoint, tt.statusCode))
			RecordAPIRequest(tt.method, tt.endpoint, tt.statusCode, 25*time.Millisecond)
			after := testutil.ToFloat64(APIRequestsTotal.WithLabelValues(tt.method, tt.endpoint, tt.statusCode))
			if after-before != 1 {
				t.Errorf("APIRequestsTotal increased by %v, want 1", after-before)
			}
		})
	}
}

// TestTrackActiveRequest_RequestLifecycle simulates realistic request lifecycle
func TestTrackActiveRequest_RequestLifecycle(t *testing.T) {
	start := testutil.ToFloat64(APIActiveRequests)

	for i := 0; i < 10; i++ {
		TrackActiveRequest(true)
	}
	if got := testutil.ToFloat64(APIActiveRequests) - start; got != 10 {
		t.Errorf("active requests = %v, want 10", got)
	}
	for i := 0; i < 10; i++ {
		TrackActiveRequest(false)
	}
	if got := testutil.ToFloat64(APIActiveRequests) - start; got != 0 {
		t.Errorf("active requests after completion = %v, want 0", got)
	}
}

func TestRecordRecommendation(t *testing.T) {
	okBefore := testutil.ToFloat64(RecommendRequests.WithLabelValues(OutcomeOK))
	coldBefore := testutil.ToFloat64(RecommendColdStart)

	RecordRecommendation(OutcomeOK, 10, true, 3*time.Millisecond)
	RecordRecommendation(OutcomeOK, 5, false, 2*time.Millisecond)
	RecordRecommendation(OutcomeUnavailable, 0, false, 5*time.Second)

	if got := testutil.ToFloat64(RecommendRequests.WithLabelValues(OutcomeOK)) - okBefore; got != 2 {
		t.Errorf("ok outcomes = %v, want 2", got)
	}
	if got := testutil.ToFloat64(RecommendColdStart) - coldBefore; got != 1 {
		t.Errorf("cold starts = %v, want 1", got)
	}
}

func TestRecordModelServedAndReload(t *testing.T) {
	RecordModelServed(7, 120, 4500)

	if got := testutil.ToFloat64(ModelLoaded); got != 1 {
		t.Errorf("ModelLoaded = %v, want 1", got)
	}
	if got := testutil.ToFloat64(ModelVersion); got != 7 {
		t.Errorf("ModelVersion = %v, want 7", got)
	}
	if got := testutil.ToFloat64(ModelItems); got != 4500 {
		t.Errorf("ModelItems = %v, want 4500", got)
	}

	tests := []struct {
		changed bool
		err     error
		label   string
	}{
		{changed: true, label: "success"},
		{changed: false, label: "unchanged"},
		{changed: false, err: errors.New("corrupt"), label: "failure"},
	}
	for _, tt := range tests {
		before := testutil.ToFloat64(ModelReloads.WithLabelValues(tt.label))
		RecordModelReload(tt.changed, tt.err)
		if got := testutil.ToFloat64(ModelReloads.WithLabelValues(tt.label)) - before; got != 1 {
			t.Errorf("ModelReloads{%s} increased by %v, want 1", tt.label, got)
		}
	}
}

func TestRecordTrainingRun(t *testing.T) {
	RecordTrainingRun(TrainingSuccess, 1149780, 90*time.Second)
	if got := testutil.ToFloat64(TrainingRatings); got != 1149780 {
		t.Errorf("TrainingRatings = %v, want 1149780", got)
	}
	if testutil.ToFloat64(TrainingLastSuccess) == 0 {
		t.Error("TrainingLastSuccess not set")
	}

	// Failed runs leave the gauges untouched.
	RecordTrainingRun(TrainingEmpty, 3, time.Second)
	if got := testutil.ToFloat64(TrainingRatings); got != 1149780 {
		t.Errorf("TrainingRatings after failed run = %v, want unchanged", got)
	}
}

func TestClassifyTrainingError(t *testing.T) {
	empty := errors.New("empty")
	unavailable := errors.New("unavailable")
	busy := errors.New("busy")

	tests := []struct {
		err  error
		want string
	}{
		{err: nil, want: TrainingSuccess},
		{err: fmt.Errorf("run: %w", empty), want: TrainingEmpty},
		{err: fmt.Errorf("read ratings: %w", unavailable), want: TrainingUnavailable},
		{err: busy, want: TrainingSkipped},
		{err: errors.New("diverged"), want: TrainingFailure},
	}
	for _, tt := range tests {
		if got := ClassifyTrainingError(tt.err, empty, unavailable, busy); got != tt.want {
			t.Errorf("ClassifyTrainingError(%v) = %q, want %q", tt.err, got, tt.want)
		}
	}
}

// TestConcurrentMetricRecording verifies the recorders are safe for
// concurrent use.
func TestConcurrentMetricRecording(t *testing.T) {
	var wg sync.WaitGroup
	numGoroutines := 50
	operationsPerGoroutine := 20

	wg.Add(numGoroutines)
	for i := 0; i < numGoroutines; i++ {
		go func() {
			defer wg.Done()
			for j := 0; j < operationsPerGoroutine; j++ {
				RecordDBQuery("SELECT", "books", time.Duration(j)*time.Millisecond, nil)
				RecordAPIRequest("GET", "/api/v1/test", "200", time.Duration(j)*time.Millisecond)
				RecordRecommendation(OutcomeOK, j, j%2 == 0, time.Millisecond)
				TrackActiveRequest(true)
				TrackActiveRequest(false)
			}
		}()
	}
	wg.Wait()
}

func TestCircuitBreakerMetrics(t *testing.T) {
	cbName := "rating-store"

	CircuitBreakerState.WithLabelValues(cbName).Set(2)
	if got := testutil.ToFloat64(CircuitBreakerState.WithLabelValues(cbName)); got != 2 {
		t.Errorf("CircuitBreakerState = %v, want 2", got)
	}
	CircuitBreakerRequests.WithLabelValues(cbName, "rejected").Inc()
	CircuitBreakerTransitions.WithLabelValues(cbName, "closed", "open").Inc()
	CircuitBreakerConsecutiveFailures.WithLabelValues(cbName).Set(5)
}

func TestSetAppInfo(t *testing.T) {
	SetAppInfo("1.0.0", "go1.24")
	if got := testutil.ToFloat64(AppInfo.WithLabelValues("1.0.0", "go1.24")); got != 1 {
		t.Errorf("AppInfo = %v, want 1", got)
	}
	if StatusLabel(503) != "503" {
		t.Errorf("StatusLabel(503) = %q", StatusLabel(503))
	}
}
