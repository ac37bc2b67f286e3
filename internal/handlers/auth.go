package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"smartcart/api/internal/middleware"
	"smartcart/api/internal/models"
	"smartcart/api/internal/service"
)

type deviceInfoRequest struct {
	Platform    string `json:"platform"`
	Version     string `json:"version"`
	DeviceID    string `json:"deviceId"`
	AppVersion  string `json:"appVersion"`
	BuildNumber string `json:"buildNumber"`
}

func (d *deviceInfoRequest) toModel() *models.DeviceInfo {
	if d == nil || d.DeviceID == "" {
		return nil
	}
	return &models.DeviceInfo{
		Platform:    d.Platform,
		Version:     d.Version,
		DeviceID:    d.DeviceID,
		AppVersion:  d.AppVersion,
		BuildNumber: d.BuildNumber,
	}
}

type userResponse struct {
	ID          string             `json:"id"`
	Email       string             `json:"email"`
	FirstName   string             `json:"firstName"`
	LastName    string             `json:"lastName"`
	Phone       *string            `json:"phone,omitempty"`
	Avatar      *string            `json:"avatar,omitempty"`
	Preferences models.Preferences `json:"preferences"`
	CreatedAt   time.Time          `json:"createdAt"`
	LastLoginAt time.Time          `json:"lastLoginAt"`
}

func toUserResponse(user models.User) userResponse {
	return userResponse{
		ID:          user.ID,
		Email:       user.Email,
		FirstName:   user.FirstName,
		LastName:    user.LastName,
		Phone:       user.Phone,
		Avatar:      user.Avatar,
		Preferences: user.Preferences,
		CreatedAt:   user.CreatedAt,
		LastLoginAt: user.LastLoginAt,
	}
}

type authResponse struct {
	User         userResponse `json:"user"`
	Token        string       `json:"token"`
	RefreshToken string       `json:"refreshToken"`
	ExpiresIn    int64        `json:"expiresIn"`
}

type registerRequest struct {
	Email      string             `json:"email" binding:"required,email"`
	Password   string             `json:"password" binding:"required"`
	FirstName  string             `json:"firstName" binding:"required,min=2"`
	LastName   string             `json:"lastName" binding:"required,min=2"`
	Phone      *string            `json:"phone"`
	DeviceInfo *deviceInfoRequest `json:"deviceInfo"`
}

func (h HandlerSet) RegisterUser(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request", "details": err.Error()})
		return
	}
	if issues := passwordIssues(req.Password); len(issues) > 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request", "details": issues})
		return
	}

	result, err := h.authService.Register(c.Request.Context(), service.RegisterInput{
		Email:      req.Email,
		Password:   req.Password,
		FirstName:  req.FirstName,
		LastName:   req.LastName,
		Phone:      req.Phone,
		DeviceInfo: req.DeviceInfo.toModel(),
		IPAddress:  c.ClientIP(),
		UserAgent:  c.GetHeader("User-Agent"),
	})
	if err != nil {
		if errors.Is(err, service.ErrEmailTaken) {
			c.JSON(http.StatusConflict, gin.H{"error": "email already registered"})
			return
		}
		h.internalError(c, err, "register failed")
		return
	}

	c.JSON(http.StatusCreated, authResponse{
		User:         toUserResponse(result.User),
		Token:        result.AccessToken,
		RefreshToken: result.RefreshToken,
		ExpiresIn:    result.ExpiresIn,
	})
}

type loginRequest struct {
	Email      string             `json:"email" binding:"required,email"`
	Password   string             `json:"password" binding:"required,min=6"`
	DeviceInfo *deviceInfoRequest `json:"deviceInfo"`
}

func (h HandlerSet) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request", "details": err.Error()})
		return
	}

	result, err := h.authService.Login(c.Request.Context(), service.LoginInput{
		Email:      req.Email,
		Password:   req.Password,
		DeviceInfo: req.DeviceInfo.toModel(),
		IPAddress:  c.ClientIP(),
		UserAgent:  c.GetHeader("User-Agent"),
	})
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
			return
		}
		h.internalError(c, err, "login failed")
		return
	}

	c.JSON(http.StatusOK, authResponse{
		User:         toUserResponse(result.User),
		Token:        result.AccessToken,
		RefreshToken: result.RefreshToken,
		ExpiresIn:    result.ExpiresIn,
	})
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken" binding:"required"`
}

func (h HandlerSet) Refresh(c *gin.Context) {
	var req refreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "refresh token required"})
		return
	}

	result, err := h.authService.Refresh(c.Request.Context(), req.RefreshToken)
	if err != nil {
		if errors.Is(err, service.ErrRefreshTokenInvalid) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "refresh token invalid or expired"})
			return
		}
		h.internalError(c, err, "refresh failed")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"token":        result.AccessToken,
		"refreshToken": result.RefreshToken,
		"expiresIn":    result.ExpiresIn,
	})
}

// Logout always answers 200: a client that wants to be logged out is logged
// out, whatever happened to the revocation write. The optional
// X-Refresh-Token header scopes revocation to one device.
func (h HandlerSet) Logout(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	h.authService.Logout(c.Request.Context(), userID, c.GetHeader("X-Refresh-Token"))
	c.JSON(http.StatusOK, gin.H{"message": "logged out"})
}

type forgotPasswordRequest struct {
	Email string `json:"email" binding:"required,email"`
}

// forgotPasswordResponse is identical whether or not the email exists.
func (h HandlerSet) ForgotPassword(c *gin.Context) {
	var req forgotPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid email"})
		return
	}

	if err := h.authService.RequestPasswordReset(c.Request.Context(), req.Email); err != nil {
		h.internalError(c, err, "password reset request failed")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "if the email exists, a recovery link has been sent"})
}

type resetPasswordRequest struct {
	Token    string `json:"token" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (h HandlerSet) ResetPassword(c *gin.Context) {
	var req resetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request", "details": err.Error()})
		return
	}
	if issues := passwordIssues(req.Password); len(issues) > 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request", "details": issues})
		return
	}

	if err := h.authService.CompletePasswordReset(c.Request.Context(), req.Token, req.Password); err != nil {
		if errors.Is(err, service.ErrResetTokenInvalid) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "token invalid or expired"})
			return
		}
		h.internalError(c, err, "password reset failed")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "password updated"})
}

func (h HandlerSet) Me(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	user, err := h.authService.CurrentUser(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
			return
		}
		h.internalError(c, err, "fetch current user failed")
		return
	}

	c.JSON(http.StatusOK, toUserResponse(user))
}

type updateProfileRequest struct {
	FirstName   *string             `json:"firstName" binding:"omitempty,min=2"`
	LastName    *string             `json:"lastName" binding:"omitempty,min=2"`
	Phone       *string             `json:"phone"`
	Avatar      *string             `json:"avatar" binding:"omitempty,url"`
	Preferences *models.Preferences `json:"preferences"`
}

func (h HandlerSet) UpdateProfile(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req updateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request", "details": err.Error()})
		return
	}

	user, err := h.authService.UpdateProfile(c.Request.Context(), userID, models.ProfileUpdate{
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		Phone:       req.Phone,
		Avatar:      req.Avatar,
		Preferences: req.Preferences,
	})
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
			return
		}
		h.internalError(c, err, "profile update failed")
		return
	}

	c.JSON(http.StatusOK, toUserResponse(user))
}

type sessionResponse struct {
	ID           string             `json:"id"`
	DeviceID     string             `json:"deviceId"`
	DeviceInfo   *models.DeviceInfo `json:"deviceInfo,omitempty"`
	IPAddress    string             `json:"ipAddress"`
	UserAgent    string             `json:"userAgent"`
	LastActivity time.Time          `json:"lastActivity"`
}

func (h HandlerSet) ListSessions(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	sessions, err := h.authService.Sessions(c.Request.Context(), userID)
	if err != nil {
		h.internalError(c, err, "list sessions failed")
		return
	}

	resp := make([]sessionResponse, 0, len(sessions))
	for _, session := range sessions {
		resp = append(resp, sessionResponse{
			ID:           session.ID,
			DeviceID:     session.DeviceID,
			DeviceInfo:   session.DeviceInfo,
			IPAddress:    session.IPAddress,
			UserAgent:    session.UserAgent,
			LastActivity: session.LastActivity,
		})
	}

	c.JSON(http.StatusOK, gin.H{"sessions": resp})
}

func (h HandlerSet) DeleteAccount(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	if err := h.authService.DeleteAccount(c.Request.Context(), userID); err != nil {
		h.internalError(c, err, "account deletion failed")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "account deleted"})
}

func (h HandlerSet) internalError(c *gin.Context, err error, msg string) {
	h.log.Error().Err(err).Str("path", c.Request.URL.Path).Msg(msg)
	c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
}
