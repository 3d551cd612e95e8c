package mailer

import (
	"context"
	"errors"
	"testing"
)

func TestMockRecordsCalls(t *testing.T) {
	m := &Mock{}
	if err := m.SendEmail(context.Background(), "doc@example.com", "Stock Alert", "<p>low</p>"); err != nil {
		t.Fatalf("SendEmail error: %v", err)
	}

	calls := m.Calls()
	if len(calls) != 1 {
		t.Fatalf("got %d calls, want 1", len(calls))
	}
	if calls[0].To != "doc@example.com" || calls[0].Subject != "Stock Alert" {
		t.Errorf("recorded call = %+v", calls[0])
	}
}

func TestMockFailure(t *testing.T) {
	m := &Mock{ShouldFail: true}
	if err := m.SendEmail(context.Background(), "doc@example.com", "s", "b"); err == nil {
		t.Error("expected failure")
	}
	if len(m.Calls()) != 1 {
		t.Error("failed send should still be recorded")
	}
}

func TestDisabled(t *testing.T) {
	err := Disabled{}.SendEmail(context.Background(), "doc@example.com", "s", "b")
	if !errors.Is(err, ErrNotConfigured) {
		t.Errorf("err = %v, want ErrNotConfigured", err)
	}
}
