package storage

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mindforge/focusd/internal/health"
)

func testDB(t *testing.T) *Postgres {
	t.Helper()
	if testing.Short() {
		t.Skip("Skipping database tests in short mode")
	}

	db, err := NewPostgres(Config{
		Host:     "localhost",
		Port:     5432,
		Database: "focusd_test",
		User:     "focusd",
		Password: "focusd",
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, db.Ping(ctx))
	require.NoError(t, db.CreateTables(ctx))
	return db
}

func TestPostgres_SampleRoundTrip(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()

	userID := "it-user-" + time.Now().Format("150405.000000000")
	base := time.Date(2026, time.March, 2, 9, 0, 0, 0, time.UTC)

	for i := 0; i < 3; i++ {
		require.NoError(t, db.InsertSample(ctx, health.Sample{
			UserID:     userID,
			RecordedAt: base.Add(time.Duration(i) * time.Hour),
			HeartRate:  70 + float64(i),
			Steps:      6000,
			SleepHours: 7,
		}))
	}

	samples, err := db.FindSamples(ctx, userID, base, base.Add(2*time.Hour))
	require.NoError(t, err)
	require.Len(t, samples, 3)

	// Ascending by recording time.
	assert.True(t, samples[0].RecordedAt.Before(samples[1].RecordedAt))
	assert.Equal(t, 70.0, samples[0].HeartRate)
}

func TestPostgres_FindSamples_RangeExcludes(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()

	userID := "it-range-" + time.Now().Format("150405.000000000")
	inside := time.Date(2026, time.March, 2, 9, 0, 0, 0, time.UTC)
	outside := inside.AddDate(0, 0, 10)

	require.NoError(t, db.InsertSample(ctx, health.Sample{UserID: userID, RecordedAt: inside}))
	require.NoError(t, db.InsertSample(ctx, health.Sample{UserID: userID, RecordedAt: outside}))

	samples, err := db.FindSamples(ctx, userID, inside.AddDate(0, 0, -1), inside.AddDate(0, 0, 1))
	require.NoError(t, err)
	assert.Len(t, samples, 1)
}

func TestPostgres_Profile(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()

	userID := "it-profile-" + time.Now().Format("150405.000000000")

	_, err := db.GetProfile(ctx, userID)
	assert.ErrorIs(t, err, ErrProfileNotFound)

	require.NoError(t, db.UpsertProfile(ctx, health.UserProfile{UserID: userID, Name: "Dana", Age: 31}))

	profile, err := db.GetProfile(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, "Dana", profile.Name)

	require.NoError(t, db.UpsertProfile(ctx, health.UserProfile{UserID: userID, Name: "Dana K", Age: 32}))
	profile, err = db.GetProfile(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, "Dana K", profile.Name)
	assert.Equal(t, 32, profile.Age)
}
