package repository

import (
	"context"
	"errors"

	"identity-gateway/domain/entity"
	domainRepo "identity-gateway/domain/repository"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// snapshotColumns upsert 时整体覆盖的列（不含 invitation_id 和 created_at）
var snapshotColumns = []string{
	"email", "first_name", "last_name", "image_url",
	"last_sign_in_at", "source_updated_at", "updated_at",
}

// userRepository GORM 实现 UserRepository 接口
type userRepository struct {
	db *gorm.DB
}

// NewUserRepository 构造函数
func NewUserRepository(db *gorm.DB) domainRepo.UserRepository {
	return &userRepository{db: db}
}

// Upsert 创建或整体覆盖用户身份字段（Clerk Webhook / 全量同步使用）
// 使用 PostgreSQL ON CONFLICT 语法，单条语句完成，无需先查后写
func (r *userRepository) Upsert(ctx context.Context, user *entity.User) error {
	err := conn(ctx, r.db).
		Omit(clause.Associations, "invitation_id").
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}}, // 冲突字段
			DoUpdates: clause.AssignmentColumns(snapshotColumns),
		}).
		Create(user).Error
	return translate(err)
}

// GetByID 根据 Clerk user_id 查询用户
func (r *userRepository) GetByID(ctx context.Context, userID string) (*entity.User, error) {
	return r.first(ctx, "id = ?", userID)
}

// GetByEmail 根据邮箱查询用户
func (r *userRepository) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	return r.first(ctx, "email = ?", email)
}

func (r *userRepository) first(ctx context.Context, query string, args ...interface{}) (*entity.User, error) {
	var user entity.User
	err := conn(ctx, r.db).Preload("Invitation").Where(query, args...).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, translate(err)
	}
	return &user, nil
}

// Delete 删除用户；记录不存在不算错误（容忍重复的删除事件）
func (r *userRepository) Delete(ctx context.Context, userID string) (bool, error) {
	result := conn(ctx, r.db).Where("id = ?", userID).Delete(&entity.User{})
	if result.Error != nil {
		return false, translate(result.Error)
	}
	return result.RowsAffected > 0, nil
}

// List 按创建时间倒序列出用户
func (r *userRepository) List(ctx context.Context) ([]entity.User, error) {
	var users []entity.User
	err := conn(ctx, r.db).Preload("Invitation").Order("created_at DESC").Find(&users).Error
	return users, translate(err)
}

// ListByIDs 批量查询用户
func (r *userRepository) ListByIDs(ctx context.Context, ids []string) ([]entity.User, error) {
	if len(ids) == 0 {
		return []entity.User{}, nil
	}
	var users []entity.User
	err := conn(ctx, r.db).Preload("Invitation").Where("id IN ?", ids).Find(&users).Error
	return users, translate(err)
}
