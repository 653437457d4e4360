package util

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
	"gorm.io/gorm"

	"batterymart/provider"
)

func TestMaskIdentifier(t *testing.T) {
	tests := map[string]string{
		"12345678901": "*******8901",
		" RC123456 ":  "****3456",
		"1234":        "****",
		"":            "",
	}
	for in, want := range tests {
		assert.Equal(t, want, MaskIdentifier(in), "input %q", in)
	}
}

func TestSplitName(t *testing.T) {
	first, last := SplitName("  Chinedu  Ada   Okafor ")
	assert.Equal(t, "Chinedu", first)
	assert.Equal(t, "Ada Okafor", last)

	first, last = SplitName("Tunde")
	assert.Equal(t, "Tunde", first)
	assert.Empty(t, last)

	first, last = SplitName("")
	assert.Empty(t, first)
	assert.Empty(t, last)
}

func TestIsNotFoundError(t *testing.T) {
	assert.True(t, IsNotFoundError(gorm.ErrRecordNotFound))
	assert.True(t, IsNotFoundError(fmt.Errorf("get store: %w", gorm.ErrRecordNotFound)))
	assert.False(t, IsNotFoundError(errors.New("timeout")))
	assert.False(t, IsNotFoundError(nil))
}

func TestIsDuplicateKeyError(t *testing.T) {
	assert.True(t, IsDuplicateKeyError(gorm.ErrDuplicatedKey))
	assert.True(t, IsDuplicateKeyError(errors.New(`ERROR: duplicate key value violates unique constraint "idx_users_email" (SQLSTATE 23505)`)))
	assert.False(t, IsDuplicateKeyError(errors.New("connection refused")))
	assert.False(t, IsDuplicateKeyError(nil))
}

type sample struct {
	NIN  string `validate:"required,numeric,len=11"`
	Name string `validate:"required"`
}

func TestValidateStruct(t *testing.T) {
	assert.NoError(t, ValidateStruct(&sample{NIN: "12345678901", Name: "Ada"}))

	err := ValidateStruct(&sample{NIN: "12ab"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "NIN failed on 'numeric'")
	assert.Contains(t, err.Error(), "Name failed on 'required'")
}

func TestLoadConfig_Defaults(t *testing.T) {
	t.Setenv("QOREID_CLIENT_ID", "client-1")
	t.Setenv("QOREID_SECRET", "s3cret")
	t.Setenv("QOREID_TIMEOUT", "15")
	t.Setenv("VERIFICATION_AUTO_APPROVE", "true")
	t.Setenv("VERIFY_BAN_DURATION", "5m")

	cfg := LoadConfig()

	assert.Equal(t, "client-1", cfg.Verification.ClientID)
	assert.Equal(t, 15*time.Second, cfg.Verification.Timeout)
	assert.True(t, cfg.Verification.AutoApprove)
	assert.Equal(t, 5*time.Minute, cfg.RateLimit.BanDuration)
	assert.Equal(t, "0 12 * * *", cfg.Cleanup.Schedule)

	pc := cfg.Verification.Provider()
	assert.Equal(t, provider.Config{
		ClientID: "client-1",
		Secret:   "s3cret",
		BaseURL:  provider.DefaultBaseURL,
		Timeout:  15 * time.Second,
	}, pc)
}

func TestLoadConfig_BadValuesFallBack(t *testing.T) {
	t.Setenv("SMTP_PORT", "not-a-port")
	t.Setenv("VERIFICATION_AUTO_APPROVE", "maybe")
	t.Setenv("SMTP_HOST", "")

	cfg := LoadConfig()

	assert.Equal(t, 587, cfg.SMTP.Port)
	assert.False(t, cfg.Verification.AutoApprove)
	assert.False(t, cfg.SMTP.Enabled())
}

func TestRunCleanup_ContinuesAfterFailure(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	var ran []string

	RunCleanup(context.Background(), zap.New(core),
		CleanupJob{Name: "broken", Run: func(context.Context) (int64, error) {
			ran = append(ran, "broken")
			return 0, errors.New("relation does not exist")
		}},
		CleanupJob{Name: "notifications", Run: func(context.Context) (int64, error) {
			ran = append(ran, "notifications")
			return 3, nil
		}},
	)

	assert.Equal(t, []string{"broken", "notifications"}, ran)
	assert.Equal(t, 1, logs.FilterMessage("cleanup job failed").Len())
	done := logs.FilterMessage("cleanup job completed").All()
	require.Len(t, done, 1)
	assert.Equal(t, int64(3), done[0].ContextMap()["deleted"])
}

func TestStartCleanup_RejectsBadSchedule(t *testing.T) {
	_, err := StartCleanup("every tuesday", zap.NewNop())
	assert.ErrorContains(t, err, "invalid cleanup schedule")
}

func TestStartCleanup_RegistersOneEntry(t *testing.T) {
	c, err := StartCleanup("0 12 * * *", zap.NewNop())
	require.NoError(t, err)
	defer c.Stop()

	assert.Len(t, c.Entries(), 1)
}
