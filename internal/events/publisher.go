// Package events 在提交成功后发布领域通知（尽力而为）
package events

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/nats-io/nats.go"
)

// 通知主题
const (
	SubjectUserUpserted       = "identity.user.upserted"
	SubjectUserDeleted        = "identity.user.deleted"
	SubjectInvitationCreated  = "invitation.created"
	SubjectInvitationRedeemed = "invitation.redeemed"
)

// Publisher 领域通知发布接口
type Publisher interface {
	Publish(ctx context.Context, subject string, v any) error
	Close()
}

// UserNotification 用户变更通知
type UserNotification struct {
	UserID string    `json:"userId"`
	Email  string    `json:"email,omitempty"`
	At     time.Time `json:"at"`
}

// InvitationNotification 邀请码变更通知
type InvitationNotification struct {
	InvitationID string    `json:"invitationId"`
	Code         string    `json:"code"`
	UserID       string    `json:"userId,omitempty"`
	UsesCount    int       `json:"usesCount"`
	MaxUses      int       `json:"maxUses"`
	At           time.Time `json:"at"`
}

// NopPublisher 未配置 NATS 时使用
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, string, any) error { return nil }
func (NopPublisher) Close()                                     {}

// NATSPublisher 基于 NATS JetStream 的发布者
type NATSPublisher struct {
	conn *nats.Conn
	js   nats.JetStreamContext
}

// NewNATSPublisher 连接 NATS 并获取 JetStream 上下文
func NewNATSPublisher(url string, opts ...nats.Option) (*NATSPublisher, error) {
	nc, err := nats.Connect(url, opts...)
	if err != nil {
		return nil, err
	}

	js, err := nc.JetStream()
	if err != nil {
		nc.Close()
		return nil, err
	}

	return &NATSPublisher{conn: nc, js: js}, nil
}

// Publish 把 v 编码为 JSON 发布到 subject
func (p *NATSPublisher) Publish(ctx context.Context, subject string, v any) error {
	if p == nil {
		return errors.New("nil publisher")
	}

	data, err := json.Marshal(v)
	if err != nil {
		return err
	}

	_, err = p.js.Publish(subject, data, nats.Context(ctx))
	return err
}

// Close 排空并关闭连接
func (p *NATSPublisher) Close() {
	if p == nil {
		return
	}
	if err := p.conn.Drain(); err != nil {
		p.conn.Close()
	}
}
