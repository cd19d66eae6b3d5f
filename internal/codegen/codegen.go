// Package codegen 生成邀请码
package codegen

import (
	"crypto/rand"
	"fmt"

	"github.com/btcsuite/btcutil/base58"
)

// DefaultEntropyBytes 默认 12 字节（96 bit）随机数，编码后约 16 个字符
const DefaultEntropyBytes = 12

// Generator 邀请码生成器
type Generator interface {
	Generate() (string, error)
}

// RandomGenerator 基于 crypto/rand 的生成器
// base58 编码：不含 0/O/I/l 等易混字符，且可直接放进 URL 查询参数
type RandomGenerator struct {
	entropy int
}

// NewRandomGenerator 构造函数，entropyBytes <= 0 时使用默认值
func NewRandomGenerator(entropyBytes int) *RandomGenerator {
	if entropyBytes <= 0 {
		entropyBytes = DefaultEntropyBytes
	}
	return &RandomGenerator{entropy: entropyBytes}
}

// Generate 生成一个新的邀请码（唯一性由数据库唯一索引兜底）
func (g *RandomGenerator) Generate() (string, error) {
	buf := make([]byte, g.entropy)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("read random bytes: %w", err)
	}
	return base58.Encode(buf), nil
}
