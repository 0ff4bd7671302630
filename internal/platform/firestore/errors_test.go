package firestore

import (
	"context"
	"errors"
	"testing"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func TestWrapError_Categorisation(t *testing.T) {
	tests := []struct {
		name        string
		code        codes.Code
		notFound    bool
		conflict    bool
		unavailable bool
	}{
		{name: "not found", code: codes.NotFound, notFound: true},
		{name: "already exists", code: codes.AlreadyExists, conflict: true},
		{name: "failed precondition", code: codes.FailedPrecondition, conflict: true},
		{name: "aborted", code: codes.Aborted, conflict: true},
		{name: "unavailable", code: codes.Unavailable, unavailable: true},
		{name: "resource exhausted", code: codes.ResourceExhausted, unavailable: true},
		{name: "internal", code: codes.Internal, unavailable: true},
		{name: "permission denied", code: codes.PermissionDenied},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := WrapError("orders.get", status.Error(tt.code, "backend"))

			var repoErr *Error
			if !errors.As(err, &repoErr) {
				t.Fatalf("expected *Error, got %v", err)
			}
			if repoErr.IsNotFound() != tt.notFound {
				t.Fatalf("IsNotFound: got %v, want %v", repoErr.IsNotFound(), tt.notFound)
			}
			if repoErr.IsConflict() != tt.conflict {
				t.Fatalf("IsConflict: got %v, want %v", repoErr.IsConflict(), tt.conflict)
			}
			if repoErr.IsUnavailable() != tt.unavailable {
				t.Fatalf("IsUnavailable: got %v, want %v", repoErr.IsUnavailable(), tt.unavailable)
			}
		})
	}
}

func TestWrapError_ContextPassthrough(t *testing.T) {
	if err := WrapError("orders.get", context.Canceled); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled passthrough, got %v", err)
	}
	if err := WrapError("orders.get", status.Error(codes.Canceled, "rpc canceled")); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected grpc canceled mapped to context.Canceled, got %v", err)
	}
	if err := WrapError("orders.get", status.Error(codes.DeadlineExceeded, "rpc deadline")); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline mapped to context.DeadlineExceeded, got %v", err)
	}
}

func TestWrapError_Nil(t *testing.T) {
	if err := WrapError("orders.get", nil); err != nil {
		t.Fatalf("expected nil, got %v", err)
	}
}

func TestWrapError_PreservesExistingError(t *testing.T) {
	inner := newError("", status.Error(codes.NotFound, "missing"))
	err := WrapError("orders.get", inner)

	var repoErr *Error
	if !errors.As(err, &repoErr) {
		t.Fatalf("expected *Error, got %v", err)
	}
	if repoErr != inner {
		t.Fatalf("wrapping should reuse the existing error")
	}
	if repoErr.Error() != "orders.get: rpc error: code = NotFound desc = missing" {
		t.Fatalf("operation not attached: %q", repoErr.Error())
	}
}
