package handler

import (
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"

	"github.com/xiebiao/inventory/internal/infrastructure/config"
	"github.com/xiebiao/inventory/internal/infrastructure/persistence/redis"
	"github.com/xiebiao/inventory/internal/interface/http/dto"
	"github.com/xiebiao/inventory/internal/interface/http/middleware"
	apperrors "github.com/xiebiao/inventory/pkg/errors"
	"github.com/xiebiao/inventory/pkg/jwt"
	"github.com/xiebiao/inventory/pkg/response"
)

// AuthHandler 操作员认证处理器
// 设计说明:
// 系统只有一个运维账号(配置文件中的operator+bcrypt哈希),没有用户表。
// 库存引擎的数据入口是消息流,HTTP只是运维和查询面,不需要完整的用户体系。
type AuthHandler struct {
	cfg          *config.Config
	jwtManager   *jwt.Manager
	sessionStore *redis.SessionStore
}

// NewAuthHandler 创建认证处理器
func NewAuthHandler(cfg *config.Config, jwtManager *jwt.Manager, sessionStore *redis.SessionStore) *AuthHandler {
	return &AuthHandler{
		cfg:          cfg,
		jwtManager:   jwtManager,
		sessionStore: sessionStore,
	}
}

// Login 操作员登录
// @Summary      操作员登录
// @Description  验证账号密码，返回JWT Token
// @Tags         认证
// @Accept       json
// @Produce      json
// @Param        request body dto.LoginRequest true "登录信息"
// @Success      200 {object} response.Response{data=dto.LoginResponse} "登录成功"
// @Failure      401 {object} response.Response "账号或密码错误"
// @Router       /api/v1/auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithCode(c, 40900, "参数错误: "+err.Error())
		return
	}

	// 账号名和密码哈希都来自配置
	// 账号不匹配和密码不匹配返回同一个错误,不泄露账号是否存在
	if req.Operator != h.cfg.Auth.Operator {
		response.Error(c, apperrors.ErrInvalidPassword)
		return
	}
	if err := bcrypt.CompareHashAndPassword([]byte(h.cfg.Auth.PasswordHash), []byte(req.Password)); err != nil {
		response.Error(c, apperrors.ErrInvalidPassword)
		return
	}

	tokenPair, err := h.jwtManager.GenerateToken(req.Operator)
	if err != nil {
		response.Error(c, err)
		return
	}

	// 记录会话(过期时间与Refresh Token一致)
	sessionData := map[string]interface{}{
		"login_at": time.Now().Format(time.RFC3339),
		"login_ip": c.ClientIP(),
	}
	if err := h.sessionStore.SaveSession(c.Request.Context(), req.Operator, sessionData, h.cfg.JWT.RefreshTokenExpire); err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, &dto.LoginResponse{
		Operator:     req.Operator,
		AccessToken:  tokenPair.AccessToken,
		RefreshToken: tokenPair.RefreshToken,
		ExpiresIn:    tokenPair.ExpiresIn,
	})
}

// Logout 操作员登出
// @Summary      操作员登出
// @Description  将当前Token加入黑名单并删除会话
// @Tags         认证
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} response.Response "登出成功"
// @Router       /api/v1/auth/logout [post]
func (h *AuthHandler) Logout(c *gin.Context) {
	operator := middleware.GetOperator(c)
	token := middleware.GetToken(c)

	// Token加入黑名单,TTL与Access Token有效期一致
	if err := h.sessionStore.AddToBlacklist(c.Request.Context(), token, h.cfg.JWT.AccessTokenExpire); err != nil {
		response.Error(c, err)
		return
	}

	if err := h.sessionStore.DeleteSession(c.Request.Context(), operator); err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, gin.H{"message": "登出成功"})
}

// Refresh 刷新Access Token
// @Summary      刷新Token
// @Description  使用Refresh Token换取新的Access Token
// @Tags         认证
// @Accept       json
// @Produce      json
// @Param        request body dto.RefreshRequest true "Refresh Token"
// @Success      200 {object} response.Response{data=dto.RefreshResponse} "刷新成功"
// @Failure      401 {object} response.Response "Refresh Token无效或已过期"
// @Router       /api/v1/auth/refresh [post]
func (h *AuthHandler) Refresh(c *gin.Context) {
	var req dto.RefreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithCode(c, 40900, "参数错误: "+err.Error())
		return
	}

	accessToken, err := h.jwtManager.RefreshAccessToken(req.RefreshToken)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, &dto.RefreshResponse{AccessToken: accessToken})
}
