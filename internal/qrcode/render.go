// Package qrcode 把邀请码渲染为注册链接二维码（纯函数，无状态）
package qrcode

import (
	"fmt"
	"net/url"

	goqrcode "github.com/skip2/go-qrcode"
)

// DefaultSize 输出 PNG 边长（像素）
const DefaultSize = 300

// Renderer 二维码渲染器
type Renderer struct {
	signupURL string
	size      int
}

// NewRenderer 构造函数，signupURL 例如 https://example.com/signup
func NewRenderer(signupURL string, size int) *Renderer {
	if size <= 0 {
		size = DefaultSize
	}
	return &Renderer{signupURL: signupURL, size: size}
}

// SignupLink 生成带邀请码的注册链接
func (r *Renderer) SignupLink(code string) (string, error) {
	u, err := url.Parse(r.signupURL)
	if err != nil {
		return "", fmt.Errorf("parse signup url: %w", err)
	}
	q := u.Query()
	q.Set("invite", code)
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// RenderPNG 渲染注册链接二维码（纠错等级 M）
func (r *Renderer) RenderPNG(code string) ([]byte, error) {
	link, err := r.SignupLink(code)
	if err != nil {
		return nil, err
	}
	png, err := goqrcode.Encode(link, goqrcode.Medium, r.size)
	if err != nil {
		return nil, fmt.Errorf("encode qr code: %w", err)
	}
	return png, nil
}
