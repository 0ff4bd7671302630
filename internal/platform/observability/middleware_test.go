package observability

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/payetonkawa/orders-api/internal/platform/requestctx"
)

func TestInjectLoggerMiddleware(t *testing.T) {
	core, _ := observer.New(zap.InfoLevel)
	logger := zap.New(core)

	var got *zap.Logger
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = requestctx.Logger(r.Context())
	})

	handler := InjectLoggerMiddleware(logger)(next)
	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/orders", nil))

	if got == nil || got == requestctx.NoopLogger() {
		t.Fatalf("request context should carry the injected logger")
	}
}

func TestRequestLoggerMiddlewareLogsCompletion(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	logger := zap.New(core)

	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
	})

	handler := InjectLoggerMiddleware(logger)(RequestLoggerMiddleware()(next))

	req := httptest.NewRequest(http.MethodPost, "/orders", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}

	entries := logs.All()
	if len(entries) == 0 {
		t.Fatalf("expected at least one log entry")
	}
	last := entries[len(entries)-1]
	fields := last.ContextMap()
	if fields["method"] != "POST" {
		t.Fatalf("expected method field, got %#v", fields)
	}
	if fields["status"] != int64(http.StatusCreated) {
		t.Fatalf("expected status field, got %#v", fields)
	}
}

func TestRecoveryMiddlewareTurnsPanicInto500(t *testing.T) {
	core, logs := observer.New(zap.ErrorLevel)
	fallback := zap.New(core)

	next := http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	})

	handler := RecoveryMiddleware(fallback)(next)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/orders", nil))

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
	if rec.Body.String() != "Erreur interne du serveur" {
		t.Fatalf("unexpected body %q", rec.Body.String())
	}
	if logs.Len() == 0 {
		t.Fatalf("panic should be logged")
	}
}
