package observability

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/payetonkawa/orders-api/internal/platform/requestctx"
)

func TestParseCloudTraceContext(t *testing.T) {
	tests := []struct {
		name    string
		header  string
		ok      bool
		traceID string
		spanID  string
		sampled bool
	}{
		{
			name:    "hex span sampled",
			header:  "105445aa7843bc8bf206b12000100000/1234567890abcdef;o=1",
			ok:      true,
			traceID: "105445aa7843bc8bf206b12000100000",
			spanID:  "1234567890abcdef",
			sampled: true,
		},
		{
			name:    "hex span not sampled",
			header:  "105445aa7843bc8bf206b12000100000/1234567890abcdef;o=0",
			ok:      true,
			traceID: "105445aa7843bc8bf206b12000100000",
			spanID:  "1234567890abcdef",
			sampled: false,
		},
		{
			name:    "decimal span id",
			header:  "105445aa7843bc8bf206b12000100000/255;o=1",
			ok:      true,
			traceID: "105445aa7843bc8bf206b12000100000",
			spanID:  "00000000000000ff",
			sampled: true,
		},
		{
			name:    "short hex span id is padded",
			header:  "105445aa7843bc8bf206b12000100000/abcd",
			ok:      true,
			traceID: "105445aa7843bc8bf206b12000100000",
			spanID:  "000000000000abcd",
			sampled: false,
		},
		{name: "empty header", header: "", ok: false},
		{name: "missing span", header: "105445aa7843bc8bf206b12000100000", ok: false},
		{name: "short trace id", header: "abc123/1;o=1", ok: false},
		{name: "zero span id", header: "105445aa7843bc8bf206b12000100000/0;o=1", ok: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			info, spanCtx, ok := parseCloudTraceContext(tt.header)
			if ok != tt.ok {
				t.Fatalf("ok mismatch: got %v, want %v", ok, tt.ok)
			}
			if !tt.ok {
				return
			}
			if info.TraceID != tt.traceID {
				t.Fatalf("trace id: got %q, want %q", info.TraceID, tt.traceID)
			}
			if info.SpanID != tt.spanID {
				t.Fatalf("span id: got %q, want %q", info.SpanID, tt.spanID)
			}
			if info.Sampled != tt.sampled {
				t.Fatalf("sampled: got %v, want %v", info.Sampled, tt.sampled)
			}
			if !spanCtx.IsRemote() {
				t.Fatalf("span context should be marked remote")
			}
		})
	}
}

func TestFormatCloudTraceHeader(t *testing.T) {
	header := formatCloudTraceHeader(requestctx.TraceInfo{
		TraceID: "105445aa7843bc8bf206b12000100000",
		SpanID:  "1234567890abcdef",
		Sampled: true,
	})
	if header != "105445aa7843bc8bf206b12000100000/1234567890abcdef;o=1" {
		t.Fatalf("unexpected header %q", header)
	}

	if header := formatCloudTraceHeader(requestctx.TraceInfo{}); header != "" {
		t.Fatalf("expected empty header for empty info, got %q", header)
	}
}

func TestTraceMiddlewareStoresTraceInfo(t *testing.T) {
	var seen requestctx.TraceInfo
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = requestctx.Trace(r.Context())
		w.WriteHeader(http.StatusOK)
	})

	handler := TraceMiddleware()(next)

	req := httptest.NewRequest(http.MethodGet, "/orders", nil)
	req.Header.Set(cloudTraceHeader, "105445aa7843bc8bf206b12000100000/1234567890abcdef;o=1")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if seen.TraceID == "" || seen.SpanID == "" {
		t.Fatalf("trace info should be populated, got %#v", seen)
	}
	if rec.Header().Get(cloudTraceHeader) == "" {
		t.Fatalf("response should echo the trace header")
	}
}
