// Package identity 解析 Clerk 的用户数据（Webhook 载荷和 SDK 对象），统一转换成 entity.UserSnapshot
package identity

import (
	"encoding/json"
	"time"

	"identity-gateway/domain/entity"

	"github.com/clerk/clerk-sdk-go/v2"
)

// EventType 归一化后的事件类型
type EventType string

const (
	EventCreated EventType = "created"
	EventUpdated EventType = "updated"
	EventDeleted EventType = "deleted"
	EventUnknown EventType = "unknown"
)

// ParseEventType 把 Clerk 的事件名映射为 EventType
func ParseEventType(raw string) EventType {
	switch raw {
	case "user.created":
		return EventCreated
	case "user.updated":
		return EventUpdated
	case "user.deleted":
		return EventDeleted
	default:
		return EventUnknown
	}
}

// Event Clerk Webhook 事件结构
type Event struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

// EmailAddress Clerk 邮箱对象
type EmailAddress struct {
	ID           string `json:"id"`
	EmailAddress string `json:"email_address"`
}

// UserData Clerk 用户数据结构（user.created / user.updated）
type UserData struct {
	ID                    string         `json:"id"`
	EmailAddresses        []EmailAddress `json:"email_addresses"`
	PrimaryEmailAddressID *string        `json:"primary_email_address_id"`
	FirstName             *string        `json:"first_name"`
	LastName              *string        `json:"last_name"`
	ImageURL              *string        `json:"image_url"`
	LastSignInAt          *int64         `json:"last_sign_in_at"` // 毫秒时间戳
	UpdatedAt             *int64         `json:"updated_at"`      // 毫秒时间戳
}

// DeletedData user.deleted 事件只带 id
type DeletedData struct {
	ID      string `json:"id"`
	Deleted bool   `json:"deleted"`
}

// PrimaryEmail 按 primary_email_address_id 查找主邮箱
// 找不到时返回空字符串，而不是报错：宁可邮箱为空也不能丢掉整条用户记录
func PrimaryEmail(addresses []EmailAddress, primaryID *string) string {
	if primaryID == nil {
		return ""
	}
	for _, addr := range addresses {
		if addr.ID == *primaryID {
			return addr.EmailAddress
		}
	}
	return ""
}

// Snapshot 转换为完整快照
func (d UserData) Snapshot() entity.UserSnapshot {
	return entity.UserSnapshot{
		ID:              d.ID,
		Email:           PrimaryEmail(d.EmailAddresses, d.PrimaryEmailAddressID),
		FirstName:       d.FirstName,
		LastName:        d.LastName,
		ImageURL:        d.ImageURL,
		LastSignInAt:    fromMillis(d.LastSignInAt),
		SourceUpdatedAt: fromMillis(d.UpdatedAt),
	}
}

// SnapshotFromClerkUser 把 SDK 返回的用户转换为快照（全量同步使用）
func SnapshotFromClerkUser(u *clerk.User) entity.UserSnapshot {
	addresses := make([]EmailAddress, 0, len(u.EmailAddresses))
	for _, addr := range u.EmailAddresses {
		if addr == nil {
			continue
		}
		addresses = append(addresses, EmailAddress{ID: addr.ID, EmailAddress: addr.EmailAddress})
	}

	updatedAt := u.UpdatedAt
	return entity.UserSnapshot{
		ID:              u.ID,
		Email:           PrimaryEmail(addresses, u.PrimaryEmailAddressID),
		FirstName:       u.FirstName,
		LastName:        u.LastName,
		ImageURL:        u.ImageURL,
		LastSignInAt:    fromMillis(u.LastSignInAt),
		SourceUpdatedAt: fromMillis(&updatedAt),
	}
}

// fromMillis 毫秒时间戳转 time.Time；缺失或为 0 返回 nil
func fromMillis(ms *int64) *time.Time {
	if ms == nil || *ms == 0 {
		return nil
	}
	t := time.UnixMilli(*ms).UTC()
	return &t
}
