package domain

import (
	"testing"
	"time"
)

func TestCredentialStatus(t *testing.T) {
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	day := 24 * time.Hour

	tests := []struct {
		name      string
		expiresAt time.Time
		want      Status
	}{
		{"expires in thirty days", now.Add(30 * day), StatusActive},
		{"expires in ten days", now.Add(10 * day), StatusActive},
		{"expired just now", now, StatusActive},
		{"expired thirty days ago", now.Add(-30 * day), StatusActive},
		{"expired thirty days and some hours ago", now.Add(-30*day - 23*time.Hour), StatusActive},
		{"expired thirty one days ago", now.Add(-31 * day), StatusNonActive},
		{"expired a year ago", now.Add(-365 * day), StatusNonActive},
		{"expires far in the future", now.Add(400 * day), StatusActive},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CredentialStatus(tt.expiresAt, now); got != tt.want {
				t.Errorf("CredentialStatus() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestSessionExpired(t *testing.T) {
	created := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	s := Session{Token: "t", AdminID: 1, Email: "a@x.com", CreatedAt: created}

	if s.Expired(created.Add(1000*time.Hour), 0) {
		t.Error("zero ttl must never expire")
	}
	if s.Expired(created.Add(59*time.Minute), time.Hour) {
		t.Error("session expired before ttl elapsed")
	}
	if !s.Expired(created.Add(time.Hour), time.Hour) {
		t.Error("session should expire once ttl elapsed")
	}
}
