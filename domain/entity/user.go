package entity

import "time"

// User 身份提供方（Clerk）用户的本地镜像
// ⚠️ 身份字段（Email/FirstName/LastName/ImageURL/LastSignInAt）只允许由 IdentityUseCase 写入
// 邀请流程只能写 InvitationID
type User struct {
	ID              string     `gorm:"primaryKey;size:64" json:"id"` // Clerk user_id
	Email           string     `gorm:"size:255;index" json:"email"`
	FirstName       *string    `gorm:"size:100" json:"firstName"`
	LastName        *string    `gorm:"size:100" json:"lastName"`
	ImageURL        *string    `gorm:"size:500" json:"imageUrl"`
	LastSignInAt    *time.Time `json:"lastSignInAt"`
	SourceUpdatedAt *time.Time `json:"sourceUpdatedAt,omitempty"` // Clerk 的 updated_at，仅用于诊断乱序

	// 邀请反向引用：最多设置一次，永不清空
	InvitationID *string     `gorm:"size:36;index" json:"invitationId"`
	Invitation   *Invitation `gorm:"foreignKey:InvitationID;constraint:OnDelete:SET NULL" json:"invitation,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// UserSnapshot 一次完整的身份快照（Webhook 推送或全量拉取）
// 每次应用都是整体覆盖，不做字段合并
type UserSnapshot struct {
	ID              string
	Email           string
	FirstName       *string
	LastName        *string
	ImageURL        *string
	LastSignInAt    *time.Time
	SourceUpdatedAt *time.Time
}

// ToUser 把快照转换为待 upsert 的用户记录（不含 InvitationID）
func (s UserSnapshot) ToUser() *User {
	return &User{
		ID:              s.ID,
		Email:           s.Email,
		FirstName:       s.FirstName,
		LastName:        s.LastName,
		ImageURL:        s.ImageURL,
		LastSignInAt:    s.LastSignInAt,
		SourceUpdatedAt: s.SourceUpdatedAt,
	}
}
