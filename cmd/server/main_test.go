package main

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xoulomon/stellarsave/internal/auth"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCommand()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestFundAndBalance(t *testing.T) {
	ledgerDB := filepath.Join(t.TempDir(), "ledger.db")

	out, err := run(t, "fund", "alice", "250", "--ledger-db", ledgerDB)
	require.NoError(t, err)
	assert.Equal(t, "alice: 250\n", out)

	_, err = run(t, "fund", "alice", "50", "--ledger-db", ledgerDB)
	require.NoError(t, err)

	out, err = run(t, "balance", "alice", "bob", "--ledger-db", ledgerDB)
	require.NoError(t, err)
	assert.Equal(t, "alice: 300\nbob: 0\n", out)

	_, err = run(t, "fund", "alice", "-5", "--ledger-db", ledgerDB)
	assert.Error(t, err)
	_, err = run(t, "fund", "alice", "lots", "--ledger-db", ledgerDB)
	assert.Error(t, err)
}

func TestTokenCommand(t *testing.T) {
	t.Setenv("JWT_SECRET", "cli-secret")
	t.Setenv("OPERATOR_ADDRESS", "ops")

	out, err := run(t, "token")
	require.NoError(t, err)

	claims, err := auth.NewJWTManager("cli-secret", 0).Validate(strings.TrimSpace(out))
	require.NoError(t, err)
	assert.Equal(t, "ops", claims.Principal)

	out, err = run(t, "token", "alice")
	require.NoError(t, err)
	claims, err = auth.NewJWTManager("cli-secret", 0).Validate(strings.TrimSpace(out))
	require.NoError(t, err)
	assert.Equal(t, "alice", claims.Principal)
}

func TestServeRequiresSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")
	_, err := run(t, "serve", "--db", filepath.Join(t.TempDir(), "s.db"))
	assert.Error(t, err)
}
