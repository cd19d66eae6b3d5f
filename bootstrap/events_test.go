package bootstrap

import (
	"testing"

	"identity-gateway/internal/events"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func TestNewPublisher_FallsBackToNop(t *testing.T) {
	assert.IsType(t, events.NopPublisher{}, NewPublisher("", zap.NewNop()))
	assert.IsType(t, events.NopPublisher{}, NewPublisher("nats://127.0.0.1:1", zap.NewNop()))
}

func TestKeyMode(t *testing.T) {
	assert.Equal(t, "test", KeyMode("sk_test_abc"))
	assert.Equal(t, "live", KeyMode("sk_live_abc"))
}
