package entity

import "time"

// DefaultMaxUses 邀请码默认可用次数
const DefaultMaxUses = 1

// Invitation 邀请码
// 不变量：0 <= UsesCount <= MaxUses，由条件自增保证（见 repository.IncrementUses）
type Invitation struct {
	ID          string     `gorm:"primaryKey;size:36" json:"id"`
	Code        string     `gorm:"uniqueIndex;size:64;not null" json:"code"`
	Email       *string    `gorm:"size:255" json:"email"`
	CreatedByID *string    `gorm:"size:64;index" json:"createdById"`
	ExpiresAt   *time.Time `json:"expiresAt"`
	MaxUses     int        `gorm:"not null;default:1;check:chk_invitations_max_uses,max_uses >= 1" json:"maxUses"`
	UsesCount   int        `gorm:"not null;default:0;check:chk_invitations_uses_count,uses_count >= 0 AND uses_count <= max_uses" json:"usesCount"`
	CreatedAt   time.Time  `json:"createdAt"`

	CreatedBy *User  `gorm:"foreignKey:CreatedByID;constraint:OnDelete:SET NULL" json:"createdBy,omitempty"`
	UsedBy    []User `gorm:"foreignKey:InvitationID" json:"usedBy,omitempty"`
}

// IsExpired 是否已过期（ExpiresAt 为空表示永不过期）
func (i *Invitation) IsExpired(now time.Time) bool {
	return i.ExpiresAt != nil && !i.ExpiresAt.After(now)
}

// IsExhausted 是否已用完
func (i *Invitation) IsExhausted() bool {
	return i.UsesCount >= i.MaxUses
}

// UsesRemaining 剩余可用次数
func (i *Invitation) UsesRemaining() int {
	if i.IsExhausted() {
		return 0
	}
	return i.MaxUses - i.UsesCount
}
