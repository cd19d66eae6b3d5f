package events

import (
	"context"
	"testing"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNopPublisher(t *testing.T) {
	var p Publisher = NopPublisher{}
	assert.NoError(t, p.Publish(context.Background(), SubjectInvitationCreated, InvitationNotification{Code: "abc"}))
	p.Close()
}

func TestNewNATSPublisher_Unreachable(t *testing.T) {
	// 端口 1 上没有 NATS，连接应立即失败
	_, err := NewNATSPublisher("nats://127.0.0.1:1", nats.Timeout(200*time.Millisecond))
	require.Error(t, err)
}

func TestNATSPublisher_Nil(t *testing.T) {
	var p *NATSPublisher
	assert.Error(t, p.Publish(context.Background(), SubjectUserDeleted, UserNotification{UserID: "u1"}))
	p.Close()
}
