package repository

import (
	"context"
	"errors"
	"time"

	"identity-gateway/domain/entity"
	domainRepo "identity-gateway/domain/repository"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// 管理端展示只需要用户的部分字段
func selectUserSummary(db *gorm.DB) *gorm.DB {
	return db.Select("id", "email", "first_name", "last_name", "invitation_id")
}

// invitationRepository GORM 实现 InvitationRepository 接口
type invitationRepository struct {
	db *gorm.DB
}

// NewInvitationRepository 构造函数
func NewInvitationRepository(db *gorm.DB) domainRepo.InvitationRepository {
	return &invitationRepository{db: db}
}

// Create 插入邀请码（code 冲突返回 ErrDuplicateKey，由调用方重新生成）
func (r *invitationRepository) Create(ctx context.Context, invitation *entity.Invitation) error {
	return translate(conn(ctx, r.db).Omit(clause.Associations).Create(invitation).Error)
}

// GetByCode 根据邀请码查询
func (r *invitationRepository) GetByCode(ctx context.Context, code string) (*entity.Invitation, error) {
	return r.getByCode(conn(ctx, r.db), code)
}

// GetByCodeWithUsers 根据邀请码查询，附带使用者
func (r *invitationRepository) GetByCodeWithUsers(ctx context.Context, code string) (*entity.Invitation, error) {
	return r.getByCode(conn(ctx, r.db).Preload("UsedBy", selectUserSummary), code)
}

func (r *invitationRepository) getByCode(db *gorm.DB, code string) (*entity.Invitation, error) {
	var invitation entity.Invitation
	err := db.Where("code = ?", code).First(&invitation).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, translate(err)
	}
	return &invitation, nil
}

// List 列出全部邀请码（管理端）
func (r *invitationRepository) List(ctx context.Context) ([]entity.Invitation, error) {
	var invitations []entity.Invitation
	err := conn(ctx, r.db).
		Preload("UsedBy", selectUserSummary).
		Preload("CreatedBy", selectUserSummary).
		Order("created_at DESC").
		Find(&invitations).Error
	return invitations, translate(err)
}

// IncrementUses 条件自增（兑换热路径）
// ⚠️ 关键：检查和自增在同一条 UPDATE 中完成，并发兑换由数据库行锁串行化
// 绝不能先读 uses_count 再写回，否则并发时会超发
func (r *invitationRepository) IncrementUses(ctx context.Context, invitationID string, now time.Time) (*entity.Invitation, error) {
	db := conn(ctx, r.db)
	result := db.Model(&entity.Invitation{}).
		Where("id = ? AND uses_count < max_uses AND (expires_at IS NULL OR expires_at > ?)", invitationID, now).
		UpdateColumn("uses_count", gorm.Expr("uses_count + 1"))
	if result.Error != nil {
		return nil, translate(result.Error)
	}

	// RowsAffected == 0 说明已用完、已过期或不存在
	if result.RowsAffected == 0 {
		return nil, nil
	}

	var invitation entity.Invitation
	if err := db.Where("id = ?", invitationID).First(&invitation).Error; err != nil {
		return nil, translate(err)
	}
	return &invitation, nil
}

// BindUser 写入用户的邀请反向引用，只在 invitation_id 为空时生效
func (r *invitationRepository) BindUser(ctx context.Context, userID, invitationID string) (bool, error) {
	result := conn(ctx, r.db).Model(&entity.User{}).
		Where("id = ? AND invitation_id IS NULL", userID).
		UpdateColumn("invitation_id", invitationID)
	if result.Error != nil {
		return false, translate(result.Error)
	}
	return result.RowsAffected == 1, nil
}
