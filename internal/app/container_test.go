package app

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	platformobservability "github.com/Apurer/b2b-ordering-api/internal/platform/observability"
)

func TestNewContainer_FallsBackToMemory(t *testing.T) {
	instruments := &platformobservability.Instruments{Logger: slog.New(slog.NewTextHandler(io.Discard, nil))}
	c, err := NewContainer(context.Background(), Config{SessionTTL: defaultSessionTTL}, "test", instruments)
	require.NoError(t, err)
	defer c.Close()

	assert.Nil(t, c.DB)
	assert.Nil(t, c.Redis)
	assert.NotNil(t, c.Catalog)
	assert.NotNil(t, c.Orders)
	assert.NotNil(t, c.Accounts)
	assert.NotNil(t, c.Replenishment)
}

func TestNewContainer_RequiresInstruments(t *testing.T) {
	_, err := NewContainer(context.Background(), Config{}, "test", nil)
	require.Error(t, err)
}
