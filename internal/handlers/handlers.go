package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"smartcart/api/internal/config"
	"smartcart/api/internal/mail"
	"smartcart/api/internal/middleware"
	"smartcart/api/internal/ratelimit"
	"smartcart/api/internal/repository"
	"smartcart/api/internal/service"
)

type HandlerSet struct {
	log            zerolog.Logger
	cfg            *config.AppConfig
	authService    *service.AuthService
	generalLimiter *ratelimit.Limiter
	authLimiter    *ratelimit.Limiter
	db             *pgxpool.Pool
	cache          *redis.Client
}

func NewHandlerSet(log zerolog.Logger, db *pgxpool.Pool, cache *redis.Client, cfg *config.AppConfig) HandlerSet {
	userRepo := repository.NewUserRepository(db)
	tokenRepo := repository.NewRefreshTokenRepository(db)
	resetRepo := repository.NewResetTokenRepository(db)
	sessionRepo := repository.NewSessionRepository(db)
	mailer := mail.New(cfg.Mail, log)
	auth := service.NewAuthService(userRepo, tokenRepo, resetRepo, sessionRepo, mailer, cfg, log)

	var store ratelimit.Store
	if cfg.RateLimit.Store == "redis" && cache != nil {
		store = ratelimit.NewRedisStore(cache)
	} else {
		store = ratelimit.NewMemoryStore()
	}

	return HandlerSet{
		log:            log,
		cfg:            cfg,
		authService:    auth,
		generalLimiter: ratelimit.New("general", store, cfg.RateLimit.General.Points, cfg.RateLimit.General.Window),
		authLimiter:    ratelimit.New("auth", store, cfg.RateLimit.Auth.Points, cfg.RateLimit.Auth.Window),
		db:             db,
		cache:          cache,
	}
}

// Register wires the route tree. Rate limiting always sits outside the auth
// wrapper so token guessing is throttled before verification runs.
func (h HandlerSet) Register(router *gin.RouterGroup) {
	router.GET("/healthz", h.Health)

	v1 := router.Group("/v1")
	auth := v1.Group("/auth")

	// Credential-guessing-prone endpoints get the stricter limiter.
	strict := auth.Group("", middleware.RateLimit(h.authLimiter, h.log))
	strict.POST("/register", h.RegisterUser)
	strict.POST("/login", h.Login)
	strict.POST("/forgot-password", h.ForgotPassword)
	strict.POST("/reset-password", h.ResetPassword)

	public := auth.Group("", middleware.RateLimit(h.generalLimiter, h.log))
	public.POST("/refresh", h.Refresh)

	protected := auth.Group("",
		middleware.RateLimit(h.generalLimiter, h.log),
		middleware.Auth(h.cfg.Security.JWTSecret),
	)
	protected.POST("/logout", h.Logout)
	protected.GET("/me", h.Me)
	protected.PUT("/profile", h.UpdateProfile)
	protected.GET("/sessions", h.ListSessions)
	protected.DELETE("/account", h.DeleteAccount)
}
