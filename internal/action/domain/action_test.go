package domain

import (
	"testing"
	"time"
)

func TestStatusValid(t *testing.T) {
	tests := []struct {
		name   string
		status Status
		want   bool
	}{
		{name: "active", status: StatusActive, want: true},
		{name: "completed", status: StatusCompleted, want: true},
		{name: "failed", status: StatusFailed, want: true},
		{name: "canceled", status: StatusCanceled, want: true},
		{name: "empty", status: Status(""), want: false},
		{name: "unknown", status: Status("done"), want: false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.status.Valid(); got != tc.want {
				t.Fatalf("Valid() = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestStatusTerminal(t *testing.T) {
	tests := []struct {
		name   string
		status Status
		want   bool
	}{
		{name: "active is not terminal", status: StatusActive, want: false},
		{name: "completed", status: StatusCompleted, want: true},
		{name: "failed", status: StatusFailed, want: true},
		{name: "canceled", status: StatusCanceled, want: true},
		{name: "unknown", status: Status("done"), want: false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.status.Terminal(); got != tc.want {
				t.Fatalf("Terminal() = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestStatusCanTransition(t *testing.T) {
	tests := []struct {
		name      string
		current   Status
		requested Status
		want      bool
	}{
		{name: "active to completed", current: StatusActive, requested: StatusCompleted, want: true},
		{name: "active to failed", current: StatusActive, requested: StatusFailed, want: true},
		{name: "active to canceled", current: StatusActive, requested: StatusCanceled, want: true},
		{name: "active to active", current: StatusActive, requested: StatusActive, want: true},
		{name: "active to unknown", current: StatusActive, requested: Status("done"), want: false},
		{name: "completed to active", current: StatusCompleted, requested: StatusActive, want: false},
		{name: "completed to failed", current: StatusCompleted, requested: StatusFailed, want: false},
		{name: "failed to completed", current: StatusFailed, requested: StatusCompleted, want: false},
		{name: "canceled to canceled", current: StatusCanceled, requested: StatusCanceled, want: false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.current.CanTransition(tc.requested); got != tc.want {
				t.Fatalf("CanTransition(%s -> %s) = %v, want %v", tc.current, tc.requested, got, tc.want)
			}
		})
	}
}

func TestParseStatus(t *testing.T) {
	tests := []struct {
		name    string
		value   string
		want    Status
		wantErr bool
	}{
		{name: "completed", value: "completed", want: StatusCompleted},
		{name: "trims whitespace", value: "  failed  ", want: StatusFailed},
		{name: "empty", value: "", wantErr: true},
		{name: "unknown", value: "finished", wantErr: true},
		{name: "case sensitive", value: "Active", wantErr: true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ParseStatus(tc.value)
			if tc.wantErr {
				if err == nil {
					t.Fatalf("ParseStatus(%q) expected error, got %v", tc.value, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseStatus(%q) error: %v", tc.value, err)
			}
			if got != tc.want {
				t.Fatalf("ParseStatus(%q) = %v, want %v", tc.value, got, tc.want)
			}
		})
	}
}

func TestParseSortOrder(t *testing.T) {
	tests := []struct {
		name    string
		value   string
		want    SortOrder
		wantErr bool
	}{
		{name: "empty defaults descending", value: "", want: SortDesc},
		{name: "desc", value: "desc", want: SortDesc},
		{name: "asc", value: "asc", want: SortAsc},
		{name: "trims whitespace", value: " asc ", want: SortAsc},
		{name: "unknown", value: "newest", wantErr: true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ParseSortOrder(tc.value)
			if tc.wantErr {
				if err == nil {
					t.Fatalf("ParseSortOrder(%q) expected error, got %v", tc.value, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseSortOrder(%q) error: %v", tc.value, err)
			}
			if got != tc.want {
				t.Fatalf("ParseSortOrder(%q) = %v, want %v", tc.value, got, tc.want)
			}
		})
	}
}

func TestActionClosed(t *testing.T) {
	now := time.Now().UTC()
	active := Action{Status: StatusActive, CreatedAt: now, UpdatedAt: now}
	if active.Closed() {
		t.Fatal("active action reported closed")
	}
	closed := Action{Status: StatusFailed, ClosedAt: &now, CreatedAt: now, UpdatedAt: now}
	if !closed.Closed() {
		t.Fatal("failed action reported open")
	}
}
