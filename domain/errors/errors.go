package errors

import "errors"

// ================= 业务领域错误定义 =================
// 所有业务逻辑相关的错误统一在此定义，避免跨包重复定义
// 调用方统一使用 errors.Is 判断

// ---------- 邀请码（客户端可恢复，4xx） ----------

// ErrInvitationNotFound 邀请码不存在
var ErrInvitationNotFound = errors.New("invitation code not found")

// ErrInvitationExpired 邀请码已过期
var ErrInvitationExpired = errors.New("invitation code has expired")

// ErrInvitationExhausted 邀请码已达到最大使用次数
var ErrInvitationExhausted = errors.New("invitation code has reached maximum uses")

// ErrInvitationAlreadyUsed 该用户已经使用过邀请码
var ErrInvitationAlreadyUsed = errors.New("user has already used this invitation code")

// ErrValidation 参数校验失败
var ErrValidation = errors.New("validation failed")

// ErrUserNotFound 用户不存在（可能 Webhook 尚未同步）
var ErrUserNotFound = errors.New("user not found")

// ---------- 信任错误 ----------

// ErrWebhookRejected Webhook 签名或时间戳校验失败
var ErrWebhookRejected = errors.New("webhook rejected")

// ErrInvalidPayload Webhook 载荷无法解析
var ErrInvalidPayload = errors.New("invalid webhook payload")

// ---------- 存储层 ----------

// ErrTransient 临时性存储错误（超时、连接断开），可以安全重试
var ErrTransient = errors.New("transient store error")

// ErrDuplicateKey 唯一约束冲突
var ErrDuplicateKey = errors.New("duplicate key")

// ErrReferenceNotFound 外键引用的记录不存在
var ErrReferenceNotFound = errors.New("referenced record not found")

// ---------- 系统错误 ----------

// ErrCodeGeneration 多次重试仍无法生成唯一邀请码
var ErrCodeGeneration = errors.New("failed to generate a unique invitation code")
