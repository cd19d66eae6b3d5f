package bootstrap

import (
	"fmt"
	"log"
	"strings"
	"time"

	"identity-gateway/usecase"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Env 环境变量配置结构
type Env struct {
	DatabaseURL    string `env:"DATABASE_URL,required,notEmpty"` // PostgreSQL 连接字符串
	Port           string `env:"PORT" envDefault:"8080"`         // 服务端口
	ClerkSecretKey string `env:"CLERK_SECRET_KEY"`               // Clerk API 密钥（为空时 /api 不认证、无法全量同步）
	WebhookSecret  string `env:"CLERK_WEBHOOK_SECRET"`           // Clerk Webhook 签名密钥（为空时不校验签名）

	WebhookTolerance time.Duration `env:"WEBHOOK_TOLERANCE" envDefault:"5m"` // 签名时间戳允许的偏差
	StoreTimeout     time.Duration `env:"STORE_TIMEOUT" envDefault:"5s"`     // 单次存储访问超时
	StoreRetries     uint64        `env:"STORE_RETRIES" envDefault:"3"`      // 暂时性错误重试次数

	SignupURL      string   `env:"SIGNUP_URL" envDefault:"http://localhost:5173/sign-up"` // 二维码中的注册页地址
	AllowedOrigins []string `env:"ALLOWED_ORIGINS" envSeparator:"," envDefault:"http://localhost:3000,http://localhost:5173"`

	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`
	AppEnv   string `env:"APP_ENV" envDefault:"development"` // development | production

	NATSURL      string `env:"NATS_URL"`                    // 为空时不发布领域通知
	OTLPEndpoint string `env:"OTEL_EXPORTER_OTLP_ENDPOINT"` // 为空时不导出追踪
}

// IsProduction 是否生产环境
func (e *Env) IsProduction() bool {
	return strings.EqualFold(e.AppEnv, "production")
}

// AuthEnabled 是否启用 Clerk 认证
func (e *Env) AuthEnabled() bool {
	return e.ClerkSecretKey != ""
}

// ParseEnv 从当前进程环境解析配置
func ParseEnv() (*Env, error) {
	cfg := &Env{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}

// ClerkEnv 只访问 Clerk 的命令（gatewayctl check）所需的配置，不要求数据库
type ClerkEnv struct {
	SecretKey string `env:"CLERK_SECRET_KEY,required,notEmpty"`
}

// ParseClerkEnv 只解析 CLERK_SECRET_KEY
func ParseClerkEnv() (*ClerkEnv, error) {
	cfg := &ClerkEnv{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("CLERK_SECRET_KEY not found in environment variables: %w", err)
	}
	return cfg, nil
}

// LoadEnv 加载环境变量
// 开发环境从 .env 文件加载，生产环境从系统环境变量读取
func LoadEnv() *Env {
	// 尝试加载 .env 文件（生产环境可能没有）
	if err := godotenv.Load(); err != nil {
		log.Println("⚠️ .env 文件未找到，将使用系统环境变量")
	}

	cfg, err := ParseEnv()
	if err != nil {
		log.Fatalf("❌ 环境变量无效: %v", err)
	}
	return cfg
}

// UseCaseOptions 存储访问超时和重试策略
func (e *Env) UseCaseOptions() usecase.Options {
	opts := usecase.DefaultOptions()
	opts.StoreTimeout = e.StoreTimeout
	opts.Retries = e.StoreRetries
	return opts
}
