package controller

import (
	"net/http"
	"strings"

	"identity-gateway/api/middleware"
	"identity-gateway/internal/qrcode"
	"identity-gateway/usecase"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// InvitationController 邀请码 HTTP 控制器
type InvitationController struct {
	invitations InvitationService
	renderer    *qrcode.Renderer
	logger      *zap.Logger
}

// NewInvitationController 创建 InvitationController 实例
func NewInvitationController(invitations InvitationService, renderer *qrcode.Renderer, logger *zap.Logger) *InvitationController {
	return &InvitationController{
		invitations: invitations,
		renderer:    renderer,
		logger:      logger.Named("invitation"),
	}
}

// CreateInvitationRequest 创建邀请码请求结构（字段均可选）
type CreateInvitationRequest struct {
	CreatedByID   *string `json:"createdById"`
	Email         *string `json:"email"`
	ExpiresInDays *int    `json:"expiresInDays"`
	MaxUses       *int    `json:"maxUses"`
}

// RedeemRequest 兑换请求结构
type RedeemRequest struct {
	Code   string `json:"code" binding:"required"`
	UserID string `json:"userId"`
}

// Create 创建邀请码
// POST /api/invitations
// 请求体: { "createdById": "...", "email": "...", "expiresInDays": 7, "maxUses": 1 }
func (ic *InvitationController) Create(c *gin.Context) {
	var req CreateInvitationRequest
	// 空请求体合法：全部使用默认值
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "请求体格式无效", Details: err.Error()})
			return
		}
	}

	// 已登录时默认由当前用户创建
	if req.CreatedByID == nil {
		if userID := c.GetString(middleware.ContextKeyUserID); userID != "" {
			req.CreatedByID = &userID
		}
	}

	inv, err := ic.invitations.Create(c.Request.Context(), usecase.CreateInvitationInput{
		CreatedByID:   req.CreatedByID,
		Email:         req.Email,
		ExpiresInDays: req.ExpiresInDays,
		MaxUses:       req.MaxUses,
	})
	if err != nil {
		writeError(c, ic.logger, err)
		return
	}

	c.JSON(http.StatusCreated, inv)
}

// Validate 校验邀请码（只读）
// GET /invitations/validate/:code
func (ic *InvitationController) Validate(c *gin.Context) {
	result, err := ic.invitations.Validate(c.Request.Context(), c.Param("code"))
	if err != nil {
		writeError(c, ic.logger, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// Redeem 兑换邀请码
// POST /api/invitations/redeem
// 用户 ID 优先取 Token 中的 subject；未启用认证时（开发环境）取请求体中的 userId
func (ic *InvitationController) Redeem(c *gin.Context) {
	var req RedeemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "code 不能为空"})
		return
	}

	userID := c.GetString(middleware.ContextKeyUserID)
	if userID == "" {
		userID = strings.TrimSpace(req.UserID)
	}
	if userID == "" {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "未获取到用户信息"})
		return
	}

	result, err := ic.invitations.Redeem(c.Request.Context(), strings.TrimSpace(req.Code), userID)
	if err != nil {
		writeError(c, ic.logger, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// FindAll 列出全部邀请码
// GET /api/invitations
func (ic *InvitationController) FindAll(c *gin.Context) {
	invitations, err := ic.invitations.FindAll(c.Request.Context())
	if err != nil {
		writeError(c, ic.logger, err)
		return
	}
	c.JSON(http.StatusOK, invitations)
}

// FindByCode 查询单个邀请码（含使用者）
// GET /api/invitations/:code
func (ic *InvitationController) FindByCode(c *gin.Context) {
	inv, err := ic.invitations.FindByCode(c.Request.Context(), c.Param("code"))
	if err != nil {
		writeError(c, ic.logger, err)
		return
	}
	c.JSON(http.StatusOK, inv)
}

// QRCode 生成注册链接二维码
// GET /invitations/:code/qr
func (ic *InvitationController) QRCode(c *gin.Context) {
	code := c.Param("code")
	if _, err := ic.invitations.FindByCode(c.Request.Context(), code); err != nil {
		writeError(c, ic.logger, err)
		return
	}

	png, err := ic.renderer.RenderPNG(code)
	if err != nil {
		writeError(c, ic.logger, err)
		return
	}
	c.Data(http.StatusOK, "image/png", png)
}
