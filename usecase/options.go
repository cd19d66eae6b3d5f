package usecase

import (
	"context"
	"errors"
	"time"

	domainErrors "identity-gateway/domain/errors"
	"identity-gateway/internal/events"

	"github.com/sethvargo/go-retry"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

var tracer = otel.Tracer("identity-gateway/usecase")

// Options UseCase 公共配置
type Options struct {
	// StoreTimeout 每次存储访问的超时，超时会被翻译为 ErrTransient
	StoreTimeout time.Duration
	// Retries ErrTransient 的最大重试次数（0 表示不重试）
	Retries uint64
	// RetryBase 指数退避的初始间隔
	RetryBase time.Duration
	// Now 可注入时钟，测试使用
	Now func() time.Time
}

// DefaultOptions 默认配置
func DefaultOptions() Options {
	return Options{
		StoreTimeout: 5 * time.Second,
		Retries:      3,
		RetryBase:    50 * time.Millisecond,
		Now:          time.Now,
	}
}

func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.StoreTimeout <= 0 {
		o.StoreTimeout = d.StoreTimeout
	}
	if o.RetryBase <= 0 {
		o.RetryBase = d.RetryBase
	}
	if o.Now == nil {
		o.Now = d.Now
	}
	return o
}

// once 在存储超时内执行一次 fn，不重试（用于非幂等操作，例如创建邀请码）
func (o Options) once(ctx context.Context, fn func(ctx context.Context) error) error {
	ctx, cancel := context.WithTimeout(ctx, o.StoreTimeout)
	defer cancel()

	err := fn(ctx)
	if err != nil && errors.Is(err, context.DeadlineExceeded) && !errors.Is(err, domainErrors.ErrTransient) {
		return errors.Join(domainErrors.ErrTransient, err)
	}
	return err
}

// retrying 对 ErrTransient 做指数退避重试；每次尝试都有独立的超时
// 只能用于幂等或原子的操作（兑换、upsert、只读查询）
func (o Options) retrying(ctx context.Context, fn func(ctx context.Context) error) error {
	backoff := retry.WithMaxRetries(o.Retries, retry.NewExponential(o.RetryBase))
	return retry.Do(ctx, backoff, func(ctx context.Context) error {
		err := o.once(ctx, fn)
		if errors.Is(err, domainErrors.ErrTransient) {
			return retry.RetryableError(err)
		}
		return err
	})
}

// startSpan 开启追踪 span
func startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	return tracer.Start(ctx, name)
}

// endSpan 记录错误并结束 span
func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

// publish 尽力发布通知，失败只记日志
func publish(ctx context.Context, p events.Publisher, logger *zap.Logger, subject string, v any) {
	if p == nil {
		return
	}
	if err := p.Publish(ctx, subject, v); err != nil {
		logger.Warn("⚠️ 发布通知失败", zap.String("subject", subject), zap.Error(err))
	}
}
