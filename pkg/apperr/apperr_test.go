package apperr_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/predial/vistoria/pkg/apperr"
)

func TestKindOf(t *testing.T) {
	if got := apperr.KindOf(apperr.New(apperr.NotFound, "gone")); got != apperr.NotFound {
		t.Fatalf("expected NotFound, got %v", got)
	}
	if got := apperr.KindOf(errors.New("plain")); got != apperr.Internal {
		t.Fatalf("plain errors default to Internal, got %v", got)
	}

	// the kind survives wrapping
	wrapped := fmt.Errorf("outer: %w", apperr.New(apperr.Conflict, "dup"))
	if got := apperr.KindOf(wrapped); got != apperr.Conflict {
		t.Fatalf("expected Conflict through wrap, got %v", got)
	}
}

func TestMessageOf(t *testing.T) {
	if got := apperr.MessageOf(apperr.New(apperr.Validation, "bad field")); got != "bad field" {
		t.Fatalf("expected message passthrough, got %q", got)
	}

	cause := errors.New("disk full")
	if got := apperr.MessageOf(apperr.Wrap(apperr.Internal, cause, "write row")); got != "internal server error" {
		t.Fatalf("internal details must not leak, got %q", got)
	}
	if got := apperr.MessageOf(errors.New("sql: no rows")); got != "internal server error" {
		t.Fatalf("plain errors must not leak, got %q", got)
	}
}

func TestWrapPreservesCause(t *testing.T) {
	cause := errors.New("locked")
	err := apperr.Wrap(apperr.Internal, cause, "update survey")
	if !errors.Is(err, cause) {
		t.Fatal("expected wrapped cause to be reachable with errors.Is")
	}
}

func TestMissingFields(t *testing.T) {
	err := apperr.MissingFields("phone", "address")
	if !apperr.Is(err, apperr.Validation) {
		t.Fatalf("expected Validation kind, got %v", err)
	}
	if err.Message != "missing required fields: phone, address" {
		t.Fatalf("unexpected message %q", err.Message)
	}
}
