package services_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"dsprep/internal/services"
)

func TestWrapIncludesContext(t *testing.T) {
	base := errors.New("boom")
	err := services.Wrap(services.ErrIO, "materialize", "write mask", "failed", base)
	if err == nil {
		t.Fatal("expected error")
	}
	if !errors.Is(err, services.ErrIO) {
		t.Fatalf("expected marker to be retained, got %v", err)
	}
	if !errors.Is(err, base) {
		t.Fatalf("expected wrapped error to contain base error, got %v", err)
	}
	msg := err.Error()
	for _, fragment := range []string{"materialize", "write mask", "failed"} {
		if !strings.Contains(msg, fragment) {
			t.Fatalf("expected %q in error string %q", fragment, msg)
		}
	}
}

func TestWrapDefaultsMarker(t *testing.T) {
	err := services.Wrap(nil, "", "", "", nil)
	if !errors.Is(err, services.ErrIO) {
		t.Fatalf("expected ErrIO default marker, got %v", err)
	}
	if !strings.Contains(err.Error(), "run failure") {
		t.Fatalf("unexpected message %q", err)
	}
}

func TestHint(t *testing.T) {
	cases := []struct {
		err  error
		want string
	}{
		{nil, ""},
		{services.Wrap(services.ErrConfiguration, "config", "", "bad ratio", nil), "config file"},
		{services.Wrap(services.ErrNotFound, "scan", "", "", nil), "dataset paths"},
		{services.Wrap(services.ErrValidation, "mapper", "", "", nil), "class mapper"},
		{context.Canceled, "interrupted"},
		{services.Wrap(services.ErrIO, "materialize", "", "", errors.New("disk")), "disk space"},
	}
	if got := services.Hint(errors.New("unknown flag")); got != "" {
		t.Fatalf("unclassified errors should have no hint, got %q", got)
	}
	for _, tc := range cases {
		got := services.Hint(tc.err)
		if !strings.Contains(got, tc.want) {
			t.Fatalf("Hint(%v) = %q, want substring %q", tc.err, got, tc.want)
		}
	}
}
