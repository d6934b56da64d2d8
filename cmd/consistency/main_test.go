package main

import (
	"bytes"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/erp/consistency/internal/application/consistency"
	"github.com/erp/consistency/internal/domain/finance"
	"github.com/erp/consistency/internal/infrastructure/auth"
	"github.com/erp/consistency/internal/infrastructure/config"
	"github.com/erp/consistency/internal/infrastructure/persistence/models"
	"github.com/erp/consistency/tests/testutil"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type cliEnv struct {
	app  *app
	out  *bytes.Buffer
	db   *gorm.DB
	seed *testutil.Seeder
}

func newCLIEnv(t *testing.T) *cliEnv {
	t.Helper()
	db := testutil.NewSQLiteDB(t)
	out := &bytes.Buffer{}
	cfg := &config.Config{JWT: config.JWTConfig{
		Secret:          "cli-test-secret-at-least-32-chars!!",
		Issuer:          "erp-consistency",
		TokenExpiration: time.Hour,
	}}
	return &cliEnv{
		app:  &app{cfg: cfg, log: zap.NewNop(), db: db, out: out},
		out:  out,
		db:   db,
		seed: testutil.NewSeeder(t, db),
	}
}

func (e *cliEnv) run(args ...string) error {
	e.out.Reset()
	cmd := newRootCmd(e.app)
	cmd.SetArgs(args)
	cmd.SetErr(io.Discard)
	return cmd.Execute()
}

func (e *cliEnv) decode(t *testing.T) map[string]any {
	t.Helper()
	var got map[string]any
	require.NoError(t, json.Unmarshal(e.out.Bytes(), &got), e.out.String())
	return got
}

func TestTokenCommand(t *testing.T) {
	env := newCLIEnv(t)
	userID := uuid.New()

	require.NoError(t, env.run("token", "--user-id", userID.String(), "--username", "ops", "--roles", "ADMIN,MANAGER", "--ttl", "30m"))

	var issued IssuedToken
	require.NoError(t, json.Unmarshal(env.out.Bytes(), &issued))
	assert.Equal(t, userID, issued.UserID)
	assert.WithinDuration(t, time.Now().Add(30*time.Minute), issued.ExpiresAt, 5*time.Second)

	claims, err := auth.NewJWTService(env.app.cfg.JWT).Validate(issued.Token)
	require.NoError(t, err)
	assert.Equal(t, "ops", claims.Username)
	assert.Equal(t, []string{auth.RoleAdmin, auth.RoleManager}, claims.Roles)

	assert.Error(t, env.run("token", "--user-id", "not-a-uuid"))
}

func TestDetectCommand(t *testing.T) {
	env := newCLIEnv(t)
	env.seed.Cash(finance.CashTypeIn, finance.CashOriginManual, nil, "100", testutil.Date(2024, 3, 1))
	env.seed.Cash(finance.CashTypeOut, finance.CashOriginManual, nil, "40", testutil.Date(2024, 3, 2))

	t.Run("single detector", func(t *testing.T) {
		require.NoError(t, env.run("detect", "--tipo", "caixa"))
		rec := env.decode(t)["reconciliation"].(map[string]any)
		assert.Equal(t, "60", rec["finalBalance"])
	})

	t.Run("date range", func(t *testing.T) {
		require.NoError(t, env.run("detect", "--tipo", "caixa", "--from", "2024-03-02", "--to", "2024-03-02"))
		rec := env.decode(t)["reconciliation"].(map[string]any)
		assert.Equal(t, "100", rec["openingBalance"])
	})

	t.Run("overview without tipo", func(t *testing.T) {
		require.NoError(t, env.run("detect"))
		headlines := env.decode(t)["headlines"].([]any)
		assert.Len(t, headlines, len(consistency.AllSelectors))
	})

	t.Run("rejects bad input", func(t *testing.T) {
		assert.Error(t, env.run("detect", "--tipo", "nope"))
		assert.Error(t, env.run("detect", "--from", "03/01/2024"))
		assert.Error(t, env.run("detect", "--from", "2024-03-05", "--to", "2024-03-01"))
	})
}

func TestCorrectCommand(t *testing.T) {
	env := newCLIEnv(t)
	tx := env.seed.Cash(finance.CashTypeIn, finance.CashOriginManual, nil, "100", testutil.Date(2024, 3, 1))
	actor := uuid.New()

	reversals := func() int64 {
		var n int64
		require.NoError(t, env.db.Model(&models.CashTransactionModel{}).Where("origin_id = ?", tx.ID).Count(&n).Error)
		return n
	}

	t.Run("previews without confirm", func(t *testing.T) {
		require.NoError(t, env.run("correct", "--acao", "caixa_reverter", "--transaction-id", tx.ID.String()))
		got := env.decode(t)
		assert.Equal(t, true, got["dryRun"])
		assert.Equal(t, "caixa", got["tipo"])
		assert.NotNil(t, got["findings"])
		assert.Zero(t, reversals())
	})

	t.Run("applies with confirm", func(t *testing.T) {
		require.NoError(t, env.run("correct", "--acao", "caixa_reverter", "--transaction-id", tx.ID.String(),
			"--actor", actor.String(), "--confirm"))
		assert.Equal(t, "APPLIED", env.decode(t)["outcome"])
		assert.EqualValues(t, 1, reversals())

		var reversal models.CashTransactionModel
		require.NoError(t, env.db.Where("origin_id = ?", tx.ID).First(&reversal).Error)
		require.NotNil(t, reversal.CreatedByID)
		assert.Equal(t, actor, *reversal.CreatedByID)
	})

	t.Run("repeat is already applied", func(t *testing.T) {
		require.NoError(t, env.run("correct", "--acao", "caixa_reverter", "--transaction-id", tx.ID.String(), "--confirm"))
		assert.Equal(t, "ALREADY_APPLIED", env.decode(t)["outcome"])
		assert.EqualValues(t, 1, reversals())
	})

	t.Run("rejects bad input", func(t *testing.T) {
		assert.Error(t, env.run("correct", "--transaction-id", tx.ID.String()))
		assert.Error(t, env.run("correct", "--acao", "nope"))
		assert.Error(t, env.run("correct", "--acao", "caixa_reverter", "--transaction-id", "bad"))
		assert.Error(t, env.run("correct", "--acao", "caixa_reverter", "--confirm"))
	})
}

func TestExportCommand(t *testing.T) {
	env := newCLIEnv(t)
	env.seed.Cash(finance.CashTypeIn, finance.CashOriginManual, nil, "100", testutil.Date(2024, 3, 1))
	path := filepath.Join(t.TempDir(), "caixa.xlsx")

	require.NoError(t, env.run("export", "--out", path))

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(content, []byte("PK")))
}

func TestParseRange(t *testing.T) {
	rng, err := parseRange("2024-03-01", "2024-03-31")
	require.NoError(t, err)
	assert.Equal(t, testutil.Date(2024, 3, 1), *rng.From)
	assert.Equal(t, testutil.Date(2024, 4, 1).Add(-time.Nanosecond), *rng.To)

	rng, err = parseRange("", "")
	require.NoError(t, err)
	assert.True(t, rng.IsZero())

	_, err = parseRange("2024-13-01", "")
	assert.Error(t, err)
}
