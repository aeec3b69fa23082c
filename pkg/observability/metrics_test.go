package observability_test

import (
	"context"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/aretw0/kinder/pkg/domain"
	"github.com/aretw0/kinder/pkg/observability"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHooksRecordMetrics(t *testing.T) {
	m := observability.New()
	hooks := m.Hooks()
	ctx := context.Background()

	hooks.Transition(ctx, &domain.TransitionEvent{From: domain.StepAge, To: domain.StepGender, Valid: true})
	hooks.Transition(ctx, &domain.TransitionEvent{From: domain.StepAge, To: domain.StepAge, Valid: false})
	hooks.Pipeline(ctx, &domain.PipelineEvent{Outcome: domain.OutcomeDelivered, Delivered: 4})
	hooks.Pipeline(ctx, &domain.PipelineEvent{Outcome: domain.OutcomeDirectoryError})
	hooks.Directory(ctx, &domain.DirectoryEvent{Operation: "search", Duration: 20 * time.Millisecond})
	hooks.Directory(ctx, &domain.DirectoryEvent{Operation: "search", Duration: time.Second, IsError: true})
	m.Event("ignored")

	assert.Equal(t, 1.0, testutil.ToFloat64(m.Transitions.WithLabelValues("age", "gender", "true")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Transitions.WithLabelValues("age", "age", "false")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.PipelineRuns.WithLabelValues("delivered")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.PipelineRuns.WithLabelValues("directory_error")))
	assert.Equal(t, 4.0, testutil.ToFloat64(m.Delivered))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.DirectoryErrors.WithLabelValues("search")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Events.WithLabelValues("ignored")))
	assert.Equal(t, 1, testutil.CollectAndCount(m.DirectoryDuration))
}

func TestHandlerExposesMetrics(t *testing.T) {
	sessions := 3
	m := observability.New(observability.WithSessionCount(func() int { return sessions }))
	m.Hooks().Pipeline(context.Background(), &domain.PipelineEvent{Outcome: domain.OutcomeNoResults})

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	text := string(body)
	assert.Contains(t, text, `kinder_pipeline_runs_total{outcome="no_results"} 1`)
	assert.Contains(t, text, "kinder_active_sessions 3")
	assert.True(t, strings.Contains(text, "go_goroutines"))
}

func TestIndependentRegistries(t *testing.T) {
	assert.NotPanics(t, func() {
		observability.New()
		observability.New()
	})
}
