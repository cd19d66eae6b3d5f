// Package webhook 校验 Clerk（Svix）Webhook 投递的真实性和新鲜度
package webhook

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	domainErrors "identity-gateway/domain/errors"

	svix "github.com/svix/svix-webhooks/go"
)

// Svix 请求头
const (
	HeaderID        = "svix-id"
	HeaderTimestamp = "svix-timestamp"
	HeaderSignature = "svix-signature"
)

// DefaultTolerance 允许的时钟偏差窗口
const DefaultTolerance = 5 * time.Minute

// Headers 一次投递携带的签名头
type Headers struct {
	ID        string
	Timestamp string
	Signature string
}

// HeadersFrom 从 HTTP 请求头提取
func HeadersFrom(h http.Header) Headers {
	return Headers{
		ID:        h.Get(HeaderID),
		Timestamp: h.Get(HeaderTimestamp),
		Signature: h.Get(HeaderSignature),
	}
}

func (h Headers) httpHeader() http.Header {
	header := http.Header{}
	header.Set(HeaderID, h.ID)
	header.Set(HeaderTimestamp, h.Timestamp)
	header.Set(HeaderSignature, h.Signature)
	return header
}

// Reason 拒绝原因
type Reason string

const (
	ReasonMissingHeaders   Reason = "missing_headers"
	ReasonInvalidTimestamp Reason = "invalid_timestamp"
	ReasonStale            Reason = "timestamp_too_old"
	ReasonFuture           Reason = "timestamp_too_new"
	ReasonBadSignature     Reason = "signature_mismatch"
)

// RejectionError 校验失败；errors.Is(err, ErrWebhookRejected) 为 true
type RejectionError struct {
	Reason Reason
	Err    error
}

func (e *RejectionError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("webhook rejected (%s): %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("webhook rejected (%s)", e.Reason)
}

func (e *RejectionError) Unwrap() error { return e.Err }

func (e *RejectionError) Is(target error) bool {
	return target == domainErrors.ErrWebhookRejected
}

// VerifiedEvent 通过校验的原始载荷
// Verified 为 false 表示未配置密钥、未做任何校验（仅限开发环境）
type VerifiedEvent struct {
	Payload  []byte
	Headers  Headers
	Verified bool
}

// Verifier 无状态校验器，密钥在启动时注入
type Verifier struct {
	wh        *svix.Webhook
	tolerance time.Duration
	now       func() time.Time
}

// NewVerifier 构造函数；secret 为空时返回不做校验的 Verifier
func NewVerifier(secret string, tolerance time.Duration) (*Verifier, error) {
	if tolerance <= 0 {
		tolerance = DefaultTolerance
	}
	v := &Verifier{tolerance: tolerance, now: time.Now}
	if secret == "" {
		return v, nil
	}
	wh, err := svix.NewWebhook(secret)
	if err != nil {
		return nil, fmt.Errorf("init svix webhook: %w", err)
	}
	v.wh = wh
	return v, nil
}

// Enabled 是否配置了签名密钥
func (v *Verifier) Enabled() bool {
	return v.wh != nil
}

// Verify 校验签名和时间戳
// 签名计算在 "id.timestamp.payload" 上，由 svix 做常量时间比较
func (v *Verifier) Verify(payload []byte, h Headers) (*VerifiedEvent, error) {
	if v.wh == nil {
		return &VerifiedEvent{Payload: payload, Headers: h, Verified: false}, nil
	}

	if h.ID == "" || h.Timestamp == "" || h.Signature == "" {
		return nil, &RejectionError{Reason: ReasonMissingHeaders}
	}

	sec, err := strconv.ParseInt(h.Timestamp, 10, 64)
	if err != nil {
		return nil, &RejectionError{Reason: ReasonInvalidTimestamp, Err: err}
	}
	ts := time.Unix(sec, 0)
	now := v.now()
	if now.Sub(ts) > v.tolerance {
		return nil, &RejectionError{Reason: ReasonStale}
	}
	if ts.Sub(now) > v.tolerance {
		return nil, &RejectionError{Reason: ReasonFuture}
	}

	// 时间窗口已在上面按配置检查，这里只校验签名
	if err := v.wh.VerifyIgnoringTimestamp(payload, h.httpHeader()); err != nil {
		return nil, &RejectionError{Reason: ReasonBadSignature, Err: err}
	}

	return &VerifiedEvent{Payload: payload, Headers: h, Verified: true}, nil
}
