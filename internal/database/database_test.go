package database

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/allisson/tickets/internal/config"
	"github.com/allisson/tickets/internal/testutil"
)

func TestConnect(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		testutil.SkipIfNoPostgres(t)

		cfg := &config.Config{
			DBDriver:             "postgres",
			DBConnectionString:   testutil.GetPostgresTestDSN(),
			DBMaxOpenConnections: 5,
			DBMaxIdleConnections: 2,
			DBConnMaxLifetime:    time.Minute,
		}

		db, err := Connect(context.Background(), cfg)
		require.NoError(t, err)
		defer func() {
			_ = db.Close()
		}()

		assert.Equal(t, 5, db.Stats().MaxOpenConnections)
		assert.NoError(t, db.PingContext(context.Background()))
	})

	t.Run("Error_UnknownDriver", func(t *testing.T) {
		cfg := &config.Config{
			DBDriver:           "not-a-driver",
			DBConnectionString: "whatever",
		}

		db, err := Connect(context.Background(), cfg)
		assert.Error(t, err)
		assert.Nil(t, db)
	})
}
