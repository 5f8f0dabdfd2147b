package auth

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/xoulomon/stellarsave/internal/models"
)

type principalMap struct {
	mu   sync.Mutex
	data map[string]*models.Principal
}

func (m *principalMap) CreatePrincipal(_ context.Context, p *models.Principal) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.data == nil {
		m.data = make(map[string]*models.Principal)
	}
	m.data[p.Address] = p
	return nil
}

func (m *principalMap) GetPrincipal(_ context.Context, address string) (*models.Principal, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.data[address], nil
}

func TestPasswordAuthenticator(t *testing.T) {
	ctx := context.Background()
	a := NewPasswordAuthenticator(&principalMap{}, "custody")

	tests := []struct {
		name     string
		address  string
		password string
		wantErr  error
	}{
		{"valid registration", "alice", "correct horse", nil},
		{"duplicate address", "alice", "another secret", ErrAddressTaken},
		{"reserved address", "custody", "correct horse", ErrAddressTaken},
		{"short password", "bob", "short", ErrWeakPassword},
		{"empty address", "", "correct horse", ErrInvalidAddress},
		{"address with space", "bob smith", "correct horse", ErrInvalidAddress},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := a.Register(ctx, tt.address, tt.password)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Register() error = %v, want %v", err, tt.wantErr)
			}
			if tt.wantErr == nil && p.PasswordHash == tt.password {
				t.Error("password stored in clear text")
			}
		})
	}

	t.Run("authenticate with the right password", func(t *testing.T) {
		p, err := a.Authenticate(ctx, "alice", "correct horse")
		if err != nil {
			t.Fatalf("Authenticate() error = %v", err)
		}
		if p.Address != "alice" {
			t.Errorf("Address = %q, want alice", p.Address)
		}
	})

	t.Run("reject the wrong password", func(t *testing.T) {
		if _, err := a.Authenticate(ctx, "alice", "wrong horse"); !errors.Is(err, ErrInvalidCredentials) {
			t.Errorf("Authenticate() error = %v, want %v", err, ErrInvalidCredentials)
		}
	})

	t.Run("reject an unknown address", func(t *testing.T) {
		if _, err := a.Authenticate(ctx, "nobody", "correct horse"); !errors.Is(err, ErrInvalidCredentials) {
			t.Errorf("Authenticate() error = %v, want %v", err, ErrInvalidCredentials)
		}
	})
}

func TestJWTManager(t *testing.T) {
	m := NewJWTManager("test-secret", time.Hour)

	token, err := m.Generate("alice")
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}

	claims, err := m.Validate(token)
	if err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
	if claims.Principal != "alice" || claims.Subject != "alice" {
		t.Errorf("claims = %+v, want principal alice", claims)
	}
	if claims.ID == "" {
		t.Error("token has no id")
	}

	t.Run("empty principal cannot get a token", func(t *testing.T) {
		if _, err := m.Generate(""); err == nil {
			t.Error("Generate(\"\") succeeded")
		}
	})

	t.Run("other secret is rejected", func(t *testing.T) {
		other := NewJWTManager("other-secret", time.Hour)
		if _, err := other.Validate(token); !errors.Is(err, ErrInvalidToken) {
			t.Errorf("Validate() error = %v, want %v", err, ErrInvalidToken)
		}
	})

	t.Run("expired token is rejected", func(t *testing.T) {
		m.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
		defer func() { m.now = time.Now }()
		if _, err := m.Validate(token); !errors.Is(err, ErrInvalidToken) {
			t.Errorf("Validate() error = %v, want %v", err, ErrInvalidToken)
		}
	})

	t.Run("garbage is rejected", func(t *testing.T) {
		if _, err := m.Validate("not-a-token"); !errors.Is(err, ErrInvalidToken) {
			t.Errorf("Validate() error = %v, want %v", err, ErrInvalidToken)
		}
	})
}
