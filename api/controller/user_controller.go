package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// UserController 用户只读查询
type UserController struct {
	users  UserService
	logger *zap.Logger
}

// NewUserController 创建 UserController 实例
func NewUserController(users UserService, logger *zap.Logger) *UserController {
	return &UserController{users: users, logger: logger.Named("user")}
}

// BatchRequest 批量查询请求
type BatchRequest struct {
	IDs []string `json:"ids" binding:"required"`
}

// FindAll GET /api/users
func (uc *UserController) FindAll(c *gin.Context) {
	users, err := uc.users.FindAll(c.Request.Context())
	if err != nil {
		writeError(c, uc.logger, err)
		return
	}
	c.JSON(http.StatusOK, users)
}

// FindByID GET /api/users/:id
func (uc *UserController) FindByID(c *gin.Context) {
	user, err := uc.users.FindByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, uc.logger, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

// FindByEmail GET /api/users/by-email?email=
func (uc *UserController) FindByEmail(c *gin.Context) {
	email := c.Query("email")
	if email == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "email 不能为空"})
		return
	}
	user, err := uc.users.FindByEmail(c.Request.Context(), email)
	if err != nil {
		writeError(c, uc.logger, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

// FindByIDs POST /api/users/batch
func (uc *UserController) FindByIDs(c *gin.Context) {
	var req BatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "ids 不能为空"})
		return
	}
	users, err := uc.users.FindByIDs(c.Request.Context(), req.IDs)
	if err != nil {
		writeError(c, uc.logger, err)
		return
	}
	c.JSON(http.StatusOK, users)
}
