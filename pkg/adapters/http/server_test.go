package http_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	kinderhttp "github.com/aretw0/kinder/pkg/adapters/http"
	"github.com/aretw0/kinder/pkg/domain"
	"github.com/aretw0/kinder/pkg/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func post(h http.Handler, body string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/callback", strings.NewReader(body)))
	return rec
}

func TestCallback_Confirmation(t *testing.T) {
	src := kinderhttp.NewCallbackSource("c0nf1rm", kinderhttp.WithSecret("s3cret"))
	h := kinderhttp.NewHandler(kinderhttp.Config{Callback: src})

	rec := post(h, `{"type":"confirmation","group_id":10,"secret":"s3cret"}`)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "c0nf1rm", rec.Body.String())

	rec = post(h, `{"type":"confirmation","group_id":10,"secret":"guess"}`)
	assert.NotEqual(t, http.StatusOK, rec.Code)
	assert.NotContains(t, rec.Body.String(), "c0nf1rm")

	rec = post(h, `not json`)
	assert.NotEqual(t, http.StatusOK, rec.Code)
}

func TestCallback_DeliversMessages(t *testing.T) {
	src := kinderhttp.NewCallbackSource("x", kinderhttp.WithSecret("s3cret"))
	h := kinderhttp.NewHandler(kinderhttp.Config{Callback: src})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	out := make(chan domain.Event, 1)
	done := make(chan error, 1)
	go func() { done <- src.Listen(ctx, out) }()

	rec := post(h, `{"type":"message_new","secret":"s3cret","object":{"message":{"from_id":3,"peer_id":3,"text":"21"}}}`)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())

	select {
	case ev := <-out:
		assert.Equal(t, domain.Event{UserID: 3, Text: "21", FromUser: true, ToBot: true, HasText: true}, ev)
	case <-time.After(time.Second):
		t.Fatal("event not forwarded")
	}

	rec = post(h, `{"type":"message_new","secret":"wrong","object":{"message":{"from_id":3,"peer_id":3,"text":"x"}}}`)
	assert.NotEqual(t, http.StatusOK, rec.Code)
	select {
	case ev := <-out:
		t.Fatalf("event with a wrong secret was forwarded: %+v", ev)
	default:
	}

	rec = post(h, `{"type":"group_join","secret":"s3cret","object":{}}`)
	assert.Equal(t, "ok", rec.Body.String(), "other update types are acknowledged")

	cancel()
	assert.NoError(t, <-done)
}

func TestCallback_NotAcceptedWhenNobodyListens(t *testing.T) {
	src := kinderhttp.NewCallbackSource("x")
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/callback",
		strings.NewReader(`{"type":"message_new","object":{"message":{"from_id":1,"peer_id":1,"text":"hi"}}}`)).WithContext(ctx)
	src.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestHealthz(t *testing.T) {
	healthy := kinderhttp.NewHandler(kinderhttp.Config{Health: map[string]kinderhttp.HealthCheck{
		"history": func(context.Context) error { return nil },
	}})
	rec := httptest.NewRecorder()
	healthy.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	broken := kinderhttp.NewHandler(kinderhttp.Config{Health: map[string]kinderhttp.HealthCheck{
		"history": func(context.Context) error { return errors.New("connection refused") },
	}})
	rec = httptest.NewRecorder()
	broken.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	var body struct {
		Checks map[string]string `json:"checks"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, "connection refused", body.Checks["history"])
}

func TestSessionsInspector(t *testing.T) {
	store := session.NewStore()
	store.Create(7, []int64{1, 2, 3})
	require.NoError(t, store.Update(7, func(s *domain.Session) {
		s.Step = domain.StepGender
		s.Criteria.Age = domain.IntPtr(30)
	}))
	h := kinderhttp.NewHandler(kinderhttp.Config{Sessions: store})

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/sessions/7", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var view kinderhttp.SessionView
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&view))
	assert.Equal(t, domain.StepGender, view.Step)
	assert.Equal(t, 3, view.Shown)
	require.NotNil(t, view.Criteria.Age)
	assert.Equal(t, 30, *view.Criteria.Age)
	assert.Contains(t, rec.Header().Get("Content-Type"), "application/json")

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/sessions/8", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/sessions/abc", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/sessions/7", nil))
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, 0, store.Len())
}

func TestDisabledRoutes(t *testing.T) {
	h := kinderhttp.NewHandler(kinderhttp.Config{})
	for _, path := range []string{"/metrics", "/sessions/1"} {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusNotFound, rec.Code, path)
	}
}
