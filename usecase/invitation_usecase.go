package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"identity-gateway/domain/entity"
	domainErrors "identity-gateway/domain/errors"
	"identity-gateway/domain/repository"
	"identity-gateway/internal/codegen"
	"identity-gateway/internal/events"
	"identity-gateway/internal/metrics"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// MaxCodeAttempts 邀请码冲突时的最大生成次数
const MaxCodeAttempts = 5

// MaxExpiresInDays 有效期上限（约 100 年）
const MaxExpiresInDays = 36500

// CreateInvitationInput 创建邀请码参数（均可选）
type CreateInvitationInput struct {
	CreatedByID   *string
	Email         *string
	ExpiresInDays *int
	MaxUses       *int
}

// InvitationView 校验接口返回的邀请码信息
type InvitationView struct {
	ID            string     `json:"id"`
	Code          string     `json:"code"`
	Email         *string    `json:"email"`
	ExpiresAt     *time.Time `json:"expiresAt"`
	UsesRemaining int        `json:"usesRemaining"`
}

// ValidationResult 校验结果
type ValidationResult struct {
	Valid      bool           `json:"valid"`
	Invitation InvitationView `json:"invitation"`
}

// RedemptionResult 兑换结果
type RedemptionResult struct {
	Success    bool               `json:"success"`
	Message    string             `json:"message"`
	Invitation *entity.Invitation `json:"invitation"`
}

// InvitationUseCase 邀请码生命周期：创建、校验、兑换
// ⚠️ 只持有 UserReader，没有写用户身份字段的能力；兑换只能写 invitation_id
type InvitationUseCase struct {
	tx          repository.Transactor
	invitations repository.InvitationRepository
	users       repository.UserReader
	codes       codegen.Generator
	publisher   events.Publisher
	logger      *zap.Logger
	opts        Options
}

// NewInvitationUseCase 构造函数，依赖注入
func NewInvitationUseCase(
	tx repository.Transactor,
	invitations repository.InvitationRepository,
	users repository.UserReader,
	codes codegen.Generator,
	publisher events.Publisher,
	logger *zap.Logger,
	opts Options,
) *InvitationUseCase {
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	return &InvitationUseCase{
		tx:          tx,
		invitations: invitations,
		users:       users,
		codes:       codes,
		publisher:   publisher,
		logger:      logger.Named("invitation"),
		opts:        opts.withDefaults(),
	}
}

// Create 生成新的邀请码
// 不做自动重试：重试可能生成第二个邀请码
func (uc *InvitationUseCase) Create(ctx context.Context, in CreateInvitationInput) (inv *entity.Invitation, err error) {
	ctx, span := startSpan(ctx, "InvitationUseCase.Create")
	defer func() { endSpan(span, err) }()

	if in.ExpiresInDays != nil {
		if *in.ExpiresInDays <= 0 {
			return nil, fmt.Errorf("%w: expiresInDays must be a positive number of days", domainErrors.ErrValidation)
		}
		if *in.ExpiresInDays > MaxExpiresInDays {
			return nil, fmt.Errorf("%w: expiresInDays must be at most %d", domainErrors.ErrValidation, MaxExpiresInDays)
		}
	}
	maxUses := entity.DefaultMaxUses
	if in.MaxUses != nil {
		if *in.MaxUses < 1 {
			return nil, fmt.Errorf("%w: maxUses must be at least 1", domainErrors.ErrValidation)
		}
		maxUses = *in.MaxUses
	}

	now := uc.opts.Now()
	var expiresAt *time.Time
	if in.ExpiresInDays != nil {
		// 按日历天计算，不用 time.Duration（天数大时会溢出成过去的时间）
		t := now.AddDate(0, 0, *in.ExpiresInDays)
		if !t.After(now) {
			return nil, fmt.Errorf("%w: expiresInDays is out of range", domainErrors.ErrValidation)
		}
		expiresAt = &t
	}

	for attempt := 1; attempt <= MaxCodeAttempts; attempt++ {
		code, genErr := uc.codes.Generate()
		if genErr != nil {
			uc.logger.Error("❌ 生成邀请码失败", zap.Error(genErr))
			return nil, fmt.Errorf("%w: %v", domainErrors.ErrCodeGeneration, genErr)
		}

		candidate := &entity.Invitation{
			ID:          uuid.NewString(),
			Code:        code,
			Email:       normalizeOptional(in.Email),
			CreatedByID: normalizeOptional(in.CreatedByID),
			ExpiresAt:   expiresAt,
			MaxUses:     maxUses,
			UsesCount:   0,
			CreatedAt:   now,
		}

		err = uc.opts.once(ctx, func(ctx context.Context) error {
			return uc.invitations.Create(ctx, candidate)
		})
		switch {
		case err == nil:
			metrics.InvitationsCreated.Inc()
			uc.logger.Info("✅ 邀请码已创建",
				zap.String("invitation_id", candidate.ID),
				zap.Int("max_uses", candidate.MaxUses))
			publish(ctx, uc.publisher, uc.logger, events.SubjectInvitationCreated, events.InvitationNotification{
				InvitationID: candidate.ID,
				Code:         candidate.Code,
				MaxUses:      candidate.MaxUses,
				At:           now,
			})
			return candidate, nil
		case errors.Is(err, domainErrors.ErrDuplicateKey):
			uc.logger.Debug("邀请码冲突，重新生成", zap.Int("attempt", attempt))
			continue
		case errors.Is(err, domainErrors.ErrReferenceNotFound):
			return nil, fmt.Errorf("%w: createdById does not reference an existing user", domainErrors.ErrValidation)
		default:
			return nil, err
		}
	}

	// 96 bit 随机空间下几乎不可能发生
	uc.logger.Error("❌ 多次生成邀请码均冲突", zap.Int("attempts", MaxCodeAttempts))
	err = domainErrors.ErrCodeGeneration
	return nil, err
}

// Validate 只读校验，不修改任何状态（注册页展示时也会调用）
func (uc *InvitationUseCase) Validate(ctx context.Context, code string) (result *ValidationResult, err error) {
	ctx, span := startSpan(ctx, "InvitationUseCase.Validate")
	defer func() { endSpan(span, err) }()

	var inv *entity.Invitation
	err = uc.opts.retrying(ctx, func(ctx context.Context) error {
		var getErr error
		inv, getErr = uc.invitations.GetByCode(ctx, code)
		return getErr
	})
	if err != nil {
		return nil, err
	}
	if inv == nil {
		return nil, domainErrors.ErrInvitationNotFound
	}
	if err = checkRedeemable(inv, uc.opts.Now()); err != nil {
		return nil, err
	}

	return &ValidationResult{
		Valid: true,
		Invitation: InvitationView{
			ID:            inv.ID,
			Code:          inv.Code,
			Email:         inv.Email,
			ExpiresAt:     inv.ExpiresAt,
			UsesRemaining: inv.UsesRemaining(),
		},
	}, nil
}

// Redeem 兑换邀请码
// ⚠️ 不能写成 Validate + Update：两个并发请求都会读到 uses_count < max_uses，导致超发
// 这里在一个事务里完成：重复使用检查 -> 条件自增 -> 绑定用户，任何一步失败整体回滚
func (uc *InvitationUseCase) Redeem(ctx context.Context, code, userID string) (result *RedemptionResult, err error) {
	ctx, span := startSpan(ctx, "InvitationUseCase.Redeem")
	defer func() {
		metrics.InvitationRedemptions.WithLabelValues(redemptionOutcome(err)).Inc()
		endSpan(span, err)
	}()

	if strings.TrimSpace(code) == "" || strings.TrimSpace(userID) == "" {
		return nil, fmt.Errorf("%w: code and userId are required", domainErrors.ErrValidation)
	}

	now := uc.opts.Now()
	var redeemed *entity.Invitation
	// attempted 之前的某次尝试已经执行到写入阶段（可能 COMMIT 成功但返回了超时）
	attempted := false

	err = uc.opts.retrying(ctx, func(ctx context.Context) error {
		return uc.tx.WithinTransaction(ctx, func(ctx context.Context) error {
			inv, err := uc.invitations.GetByCode(ctx, code)
			if err != nil {
				return err
			}
			if inv == nil {
				return domainErrors.ErrInvitationNotFound
			}

			user, err := uc.users.GetByID(ctx, userID)
			if err != nil {
				return err
			}
			if user == nil {
				return domainErrors.ErrUserNotFound
			}

			// 同一用户不能重复使用同一个邀请码（在自增之前检查，不消耗次数）
			if user.InvitationID != nil && *user.InvitationID == inv.ID {
				if attempted {
					// 上一次尝试时该用户尚未绑定，现在已绑定到本邀请码：上次的提交已经生效
					uc.logger.Info("ℹ️ 重试发现上次兑换已提交", zap.String("user_id", userID))
					redeemed = inv
					return nil
				}
				return domainErrors.ErrInvitationAlreadyUsed
			}
			attempted = true

			updated, err := uc.invitations.IncrementUses(ctx, inv.ID, now)
			if err != nil {
				return err
			}
			if updated == nil {
				// 条件自增未命中：过期或已被并发请求用完
				if inv.IsExpired(now) {
					return domainErrors.ErrInvitationExpired
				}
				return domainErrors.ErrInvitationExhausted
			}

			// invitation_id 只能设置一次；已经绑定其他邀请码时回滚本次自增
			bound, err := uc.invitations.BindUser(ctx, userID, inv.ID)
			if err != nil {
				return err
			}
			if !bound {
				return domainErrors.ErrInvitationAlreadyUsed
			}

			redeemed = updated
			return nil
		})
	})
	if err != nil {
		if isPolicyError(err) {
			uc.logger.Info("ℹ️ 兑换被拒绝", zap.String("user_id", userID), zap.Error(err))
		} else {
			uc.logger.Warn("⚠️ 兑换失败", zap.String("user_id", userID), zap.Error(err))
		}
		return nil, err
	}

	uc.logger.Info("✅ 邀请码兑换成功",
		zap.String("invitation_id", redeemed.ID),
		zap.String("user_id", userID),
		zap.Int("uses_count", redeemed.UsesCount),
		zap.Int("max_uses", redeemed.MaxUses))
	publish(ctx, uc.publisher, uc.logger, events.SubjectInvitationRedeemed, events.InvitationNotification{
		InvitationID: redeemed.ID,
		Code:         redeemed.Code,
		UserID:       userID,
		UsesCount:    redeemed.UsesCount,
		MaxUses:      redeemed.MaxUses,
		At:           now,
	})

	return &RedemptionResult{
		Success:    true,
		Message:    "Invitation code used successfully",
		Invitation: redeemed,
	}, nil
}

// FindAll 管理端：列出全部邀请码（含使用者和创建者）
func (uc *InvitationUseCase) FindAll(ctx context.Context) (invitations []entity.Invitation, err error) {
	ctx, span := startSpan(ctx, "InvitationUseCase.FindAll")
	defer func() { endSpan(span, err) }()

	err = uc.opts.retrying(ctx, func(ctx context.Context) error {
		var listErr error
		invitations, listErr = uc.invitations.List(ctx)
		return listErr
	})
	return invitations, err
}

// FindByCode 管理端：按邀请码查询（含使用者）
func (uc *InvitationUseCase) FindByCode(ctx context.Context, code string) (inv *entity.Invitation, err error) {
	ctx, span := startSpan(ctx, "InvitationUseCase.FindByCode")
	defer func() { endSpan(span, err) }()

	err = uc.opts.retrying(ctx, func(ctx context.Context) error {
		var getErr error
		inv, getErr = uc.invitations.GetByCodeWithUsers(ctx, code)
		return getErr
	})
	if err != nil {
		return nil, err
	}
	if inv == nil {
		return nil, domainErrors.ErrInvitationNotFound
	}
	return inv, nil
}

// checkRedeemable 有效性规则：未过期且未用完
func checkRedeemable(inv *entity.Invitation, now time.Time) error {
	if inv.IsExpired(now) {
		return domainErrors.ErrInvitationExpired
	}
	if inv.IsExhausted() {
		return domainErrors.ErrInvitationExhausted
	}
	return nil
}

// isPolicyError 客户端可恢复的业务错误，不按系统故障记录
func isPolicyError(err error) bool {
	for _, target := range []error{
		domainErrors.ErrInvitationNotFound,
		domainErrors.ErrInvitationExpired,
		domainErrors.ErrInvitationExhausted,
		domainErrors.ErrInvitationAlreadyUsed,
		domainErrors.ErrValidation,
		domainErrors.ErrUserNotFound,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

func redemptionOutcome(err error) string {
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, domainErrors.ErrInvitationNotFound):
		return "not_found"
	case errors.Is(err, domainErrors.ErrInvitationExpired):
		return "expired"
	case errors.Is(err, domainErrors.ErrInvitationExhausted):
		return "exhausted"
	case errors.Is(err, domainErrors.ErrInvitationAlreadyUsed):
		return "already_used"
	case errors.Is(err, domainErrors.ErrUserNotFound):
		return "user_not_found"
	case errors.Is(err, domainErrors.ErrTransient):
		return "transient"
	default:
		return "error"
	}
}

func normalizeOptional(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}
