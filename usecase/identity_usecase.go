package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"identity-gateway/domain/entity"
	domainErrors "identity-gateway/domain/errors"
	"identity-gateway/domain/repository"
	"identity-gateway/internal/events"
	"identity-gateway/internal/identity"
	"identity-gateway/internal/metrics"
	"identity-gateway/internal/webhook"

	"go.uber.org/zap"
	"gorm.io/datatypes"
)

// IdentitySource 外部身份提供方的全量用户列表（手动同步路径）
type IdentitySource interface {
	ListUsers(ctx context.Context) ([]entity.UserSnapshot, error)
}

// EventResult Webhook 事件处理结果
type EventResult struct {
	Type      identity.EventType `json:"type"`
	RawType   string             `json:"rawType"`
	UserID    string             `json:"userId,omitempty"`
	Verified  bool               `json:"verified"`
	Duplicate bool               `json:"duplicate"`
	Ignored   bool               `json:"ignored"`
}

// ResyncReport 全量同步统计
type ResyncReport struct {
	Total   int `json:"total"`
	Created int `json:"created"`
	Updated int `json:"updated"`
	Failed  int `json:"failed"`
}

// IdentityUseCase 身份事件对账器
// 用户身份字段的唯一写入方：Webhook 推送和手动全量同步都汇聚到 applySnapshot
type IdentityUseCase struct {
	tx        repository.Transactor
	users     repository.UserRepository
	journal   repository.WebhookEventRepository
	verifier  *webhook.Verifier
	publisher events.Publisher
	logger    *zap.Logger
	opts      Options
}

// NewIdentityUseCase 构造函数，依赖注入
func NewIdentityUseCase(
	tx repository.Transactor,
	users repository.UserRepository,
	journal repository.WebhookEventRepository,
	verifier *webhook.Verifier,
	publisher events.Publisher,
	logger *zap.Logger,
	opts Options,
) *IdentityUseCase {
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	return &IdentityUseCase{
		tx:        tx,
		users:     users,
		journal:   journal,
		verifier:  verifier,
		publisher: publisher,
		logger:    logger.Named("identity"),
		opts:      opts.withDefaults(),
	}
}

// HandleEvent 处理一次 Webhook 投递：校验 -> 解析 -> 按类型应用
// 校验失败时不会触碰存储
func (uc *IdentityUseCase) HandleEvent(ctx context.Context, payload []byte, headers webhook.Headers) (result *EventResult, err error) {
	ctx, span := startSpan(ctx, "IdentityUseCase.HandleEvent")
	defer func() { endSpan(span, err) }()

	verified, err := uc.verifier.Verify(payload, headers)
	if err != nil {
		metrics.IdentityEvents.WithLabelValues("unknown", "rejected").Inc()
		uc.logger.Warn("❌ Webhook 校验失败", zap.String("svix_id", headers.ID), zap.Error(err))
		return nil, err
	}
	if !verified.Verified {
		uc.logger.Warn("⚠️ 未配置 CLERK_WEBHOOK_SECRET，跳过签名验证（降级信任，仅限开发环境）",
			zap.String("svix_id", headers.ID))
	}

	var event identity.Event
	if err = json.Unmarshal(payload, &event); err != nil {
		return nil, fmt.Errorf("%w: %v", domainErrors.ErrInvalidPayload, err)
	}

	result = &EventResult{
		Type:     identity.ParseEventType(event.Type),
		RawType:  event.Type,
		Verified: verified.Verified,
	}
	uc.logger.Info("📥 收到事件", zap.String("type", event.Type), zap.String("svix_id", headers.ID))

	switch result.Type {
	case identity.EventCreated, identity.EventUpdated:
		var data identity.UserData
		if err = json.Unmarshal(event.Data, &data); err != nil || data.ID == "" {
			return nil, fmt.Errorf("%w: user data without id", domainErrors.ErrInvalidPayload)
		}
		result.UserID = data.ID
		snapshot := data.Snapshot()
		result.Duplicate, err = uc.applyOnce(ctx, verified, event.Type, func(ctx context.Context) error {
			_, applyErr := uc.applySnapshot(ctx, snapshot)
			return applyErr
		})
		if err == nil && !result.Duplicate {
			publish(ctx, uc.publisher, uc.logger, events.SubjectUserUpserted, events.UserNotification{
				UserID: snapshot.ID,
				Email:  snapshot.Email,
				At:     uc.opts.Now(),
			})
		}

	case identity.EventDeleted:
		var data identity.DeletedData
		if err = json.Unmarshal(event.Data, &data); err != nil || data.ID == "" {
			return nil, fmt.Errorf("%w: deleted event without id", domainErrors.ErrInvalidPayload)
		}
		result.UserID = data.ID
		var existed bool
		result.Duplicate, err = uc.applyOnce(ctx, verified, event.Type, func(ctx context.Context) error {
			var delErr error
			existed, delErr = uc.users.Delete(ctx, data.ID)
			return delErr
		})
		if err == nil && !result.Duplicate {
			if existed {
				uc.logger.Info("🗑️ 用户已删除", zap.String("user_id", data.ID))
				publish(ctx, uc.publisher, uc.logger, events.SubjectUserDeleted, events.UserNotification{
					UserID: data.ID,
					At:     uc.opts.Now(),
				})
			} else {
				// 重复的删除事件：视为成功
				uc.logger.Info("ℹ️ 删除的用户不存在，忽略", zap.String("user_id", data.ID))
			}
		}

	default:
		result.Ignored = true
		metrics.IdentityEvents.WithLabelValues(string(result.Type), "ignored").Inc()
		uc.logger.Info("ℹ️ 忽略事件", zap.String("type", event.Type))
		return result, nil
	}

	switch {
	case err != nil:
		metrics.IdentityEvents.WithLabelValues(string(result.Type), "error").Inc()
		uc.logger.Warn("❌ 事件应用失败", zap.String("user_id", result.UserID), zap.Error(err))
		return nil, err
	case result.Duplicate:
		metrics.IdentityEvents.WithLabelValues(string(result.Type), "duplicate").Inc()
		uc.logger.Info("ℹ️ 重复投递，已跳过", zap.String("svix_id", headers.ID))
	default:
		metrics.IdentityEvents.WithLabelValues(string(result.Type), "applied").Inc()
	}
	return result, nil
}

// applyOnce 在同一事务中记录投递日志并应用变更
// 带 svix-id 的投递只会生效一次；没有 id 时（开发环境）直接应用
func (uc *IdentityUseCase) applyOnce(ctx context.Context, ev *webhook.VerifiedEvent, eventType string, apply func(ctx context.Context) error) (duplicate bool, err error) {
	err = uc.opts.retrying(ctx, func(ctx context.Context) error {
		duplicate = false
		return uc.tx.WithinTransaction(ctx, func(ctx context.Context) error {
			if ev.Headers.ID != "" {
				inserted, err := uc.journal.Record(ctx, &entity.WebhookEvent{
					ID:      ev.Headers.ID,
					Type:    eventType,
					Payload: datatypes.JSON(ev.Payload),
				})
				if err != nil {
					return err
				}
				if !inserted {
					duplicate = true
					return nil
				}
			}
			return apply(ctx)
		})
	})
	return duplicate, err
}

// applySnapshot 用完整快照覆盖本地用户（upsert，幂等）
// 推送和拉取两条路径共用，保证语义一致；返回是否新建
func (uc *IdentityUseCase) applySnapshot(ctx context.Context, snapshot entity.UserSnapshot) (bool, error) {
	existing, err := uc.users.GetByID(ctx, snapshot.ID)
	if err != nil {
		return false, err
	}

	// 没有版本号无法拒绝乱序事件：照常覆盖，但留下记录
	if existing != nil && existing.SourceUpdatedAt != nil && snapshot.SourceUpdatedAt != nil &&
		snapshot.SourceUpdatedAt.Before(*existing.SourceUpdatedAt) {
		uc.logger.Warn("⚠️ 较旧的快照覆盖了较新的状态",
			zap.String("user_id", snapshot.ID),
			zap.Time("stored_updated_at", *existing.SourceUpdatedAt),
			zap.Time("incoming_updated_at", *snapshot.SourceUpdatedAt))
	}

	if err := uc.users.Upsert(ctx, snapshot.ToUser()); err != nil {
		return false, err
	}
	uc.logger.Debug("✅ 用户同步成功", zap.String("user_id", snapshot.ID), zap.String("email", snapshot.Email))
	return existing == nil, nil
}

// ResyncFromSnapshots 手动全量同步：逐个应用快照
// 单个用户失败不影响其他用户，所有错误合并返回
func (uc *IdentityUseCase) ResyncFromSnapshots(ctx context.Context, snapshots []entity.UserSnapshot) (report *ResyncReport, err error) {
	ctx, span := startSpan(ctx, "IdentityUseCase.ResyncFromSnapshots")
	defer func() { endSpan(span, err) }()

	report = &ResyncReport{Total: len(snapshots)}
	var errs []error

	for _, snapshot := range snapshots {
		var created bool
		applyErr := uc.opts.retrying(ctx, func(ctx context.Context) error {
			return uc.tx.WithinTransaction(ctx, func(ctx context.Context) error {
				var upsertErr error
				created, upsertErr = uc.applySnapshot(ctx, snapshot)
				return upsertErr
			})
		})

		switch {
		case applyErr != nil:
			report.Failed++
			metrics.ResyncUsers.WithLabelValues("error").Inc()
			uc.logger.Warn("❌ 同步用户失败", zap.String("user_id", snapshot.ID), zap.Error(applyErr))
			errs = append(errs, fmt.Errorf("user %s: %w", snapshot.ID, applyErr))
		case created:
			report.Created++
			metrics.ResyncUsers.WithLabelValues("created").Inc()
		default:
			report.Updated++
			metrics.ResyncUsers.WithLabelValues("updated").Inc()
		}
	}

	uc.logger.Info("✅ 全量同步完成",
		zap.Int("total", report.Total),
		zap.Int("created", report.Created),
		zap.Int("updated", report.Updated),
		zap.Int("failed", report.Failed))
	return report, errors.Join(errs...)
}

// Resync 从身份提供方拉取全量用户并同步
func (uc *IdentityUseCase) Resync(ctx context.Context, source IdentitySource) (*ResyncReport, error) {
	snapshots, err := source.ListUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("list identity provider users: %w", err)
	}
	return uc.ResyncFromSnapshots(ctx, snapshots)
}
