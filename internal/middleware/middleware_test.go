package middleware

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/xoulomon/stellarsave/internal/auth"
)

func TestContextAuthorizer(t *testing.T) {
	var a ContextAuthorizer
	ctx := WithPrincipal(context.Background(), "alice")

	tests := []struct {
		name      string
		ctx       context.Context
		principal string
		wantErr   bool
	}{
		{"matching principal", ctx, "alice", false},
		{"other principal", ctx, "bob", true},
		{"anonymous context", context.Background(), "alice", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := a.RequireAuth(tt.ctx, tt.principal)
			if (err != nil) != tt.wantErr {
				t.Errorf("RequireAuth() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestBearerToken(t *testing.T) {
	tests := []struct {
		header  string
		want    string
		wantErr error
	}{
		{"Bearer abc", "abc", nil},
		{"", "", auth.ErrMissingToken},
		{"Basic abc", "", auth.ErrInvalidToken},
		{"Bearer", "", auth.ErrInvalidToken},
	}

	for _, tt := range tests {
		got, err := bearerToken(tt.header)
		if !errors.Is(err, tt.wantErr) || got != tt.want {
			t.Errorf("bearerToken(%q) = %q, %v; want %q, %v", tt.header, got, err, tt.want, tt.wantErr)
		}
	}
}

func TestRateLimiter(t *testing.T) {
	l := NewRateLimiter(1, 2)
	now := time.Unix(1_700_000_000, 0)
	l.now = func() time.Time { return now }

	if !l.Allow("alice") || !l.Allow("alice") {
		t.Fatal("burst requests were rejected")
	}
	if l.Allow("alice") {
		t.Error("third request within a second was allowed")
	}
	if !l.Allow("bob") {
		t.Error("limit leaked across keys")
	}

	now = now.Add(time.Second)
	if !l.Allow("alice") {
		t.Error("bucket did not refill")
	}

	var disabled *RateLimiter = NewRateLimiter(0, 0)
	if !disabled.Allow("alice") {
		t.Error("disabled limiter rejected a request")
	}
}

func TestPeerHost(t *testing.T) {
	tests := map[string]string{
		"127.0.0.1:5555": "127.0.0.1",
		"[::1]:80":       "[::1]",
		"localhost":      "localhost",
	}
	for in, want := range tests {
		if got := peerHost(in); got != want {
			t.Errorf("peerHost(%q) = %q, want %q", in, got, want)
		}
	}
}
