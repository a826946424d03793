package httpapi

import (
	"database/sql"
	"fmt"
	"io"
	"time"

	"token-auth/internal"
	appauth "token-auth/internal/application/auth"
	"token-auth/internal/domain/auth"
	"token-auth/internal/infra/memory"
	authinfra "token-auth/internal/infrastructure/auth"
	"token-auth/internal/infrastructure/config"
	"token-auth/internal/infrastructure/metrics"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

const (
	errCodeBadRequest   = "BAD_REQUEST"
	errCodeUnauthorized = "AUTH_UNAUTHORIZED"
	errCodeForbidden    = "AUTH_FORBIDDEN"
	errCodeTokenExpired = "AUTH_TOKEN_EXPIRED"
	errCodeConflict     = "CONFLICT"
	errCodeNotFound     = "NOT_FOUND"
	errCodeInternal     = "INTERNAL_ERROR"
	refreshCookieName   = "refresh_token"
	accessCookieName    = "access_token"
)

// Deps 為 Server 的外部依賴；未提供的 repository 以記憶體實作替代。
type Deps struct {
	Users    auth.UserRepository
	Refresh  auth.RefreshStore
	Store    string
	DB       *sql.DB
	Redis    redis.UniversalClient
	Logger   logrus.FieldLogger
	Registry *metrics.Registry
}

// Server 封裝 HTTP 路由與依賴。
type Server struct {
	engine      *gin.Engine
	logger      logrus.FieldLogger
	db          *sql.DB
	redis       redis.UniversalClient
	storeDriver string
	users       auth.UserRepository
	tokenSvc    *authinfra.JWTIssuer
	loginUC     *appauth.LoginUseCase
	registerUC  *appauth.RegisterUseCase
	logoutUC    *appauth.LogoutUseCase
	refreshUC   *appauth.RefreshUseCase
	verifyUC    *appauth.VerifyUseCase
	registry    *metrics.Registry
	corsOrigins []string
}

// NewServer 建立 API 伺服器；cfg 未設定的欄位會套用預設值。
func NewServer(cfg config.Config, deps Deps) (*Server, error) {
	cfg = config.WithDefaults(cfg)

	logger := deps.Logger
	if logger == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		logger = l
	}

	store := memory.NewStore()
	users := deps.Users
	if internal.IsNil(users) {
		users = store
	}
	refresh := deps.Refresh
	storeDriver := deps.Store
	if internal.IsNil(refresh) {
		refresh = store.RefreshStore()
		storeDriver = config.StoreMemory
	}
	redisClient := deps.Redis
	if internal.IsNil(redisClient) {
		redisClient = nil
	}
	registry := deps.Registry
	if registry == nil {
		registry = metrics.NewRegistry()
	}

	tokenSvc, err := authinfra.NewJWTIssuer(authinfra.Options{
		AccessSecret:  cfg.Auth.AccessSecret,
		RefreshSecret: cfg.Auth.RefreshSecret,
		AccessTTL:     cfg.Auth.AccessTTL,
		RefreshTTL:    cfg.Auth.RefreshTTL,
		Issuer:        cfg.Auth.Issuer,
	})
	if err != nil {
		return nil, fmt.Errorf("init jwt issuer: %w", err)
	}
	sessions := appauth.NewSessions(tokenSvc, refresh, metrics.NewTokenMetrics(registry))

	s := &Server{
		engine:      gin.New(),
		logger:      logger.WithField("component", "http"),
		db:          deps.DB,
		redis:       redisClient,
		storeDriver: storeDriver,
		users:       users,
		tokenSvc:    tokenSvc,
		loginUC:     appauth.NewLoginUseCase(users, sessions),
		registerUC:  appauth.NewRegisterUseCase(users, sessions),
		logoutUC:    appauth.NewLogoutUseCase(refresh),
		refreshUC:   appauth.NewRefreshUseCase(sessions, cfg.Auth.RotateRefresh),
		verifyUC:    appauth.NewVerifyUseCase(tokenSvc),
		registry:    registry,
		corsOrigins: cfg.HTTP.CORSOrigins,
	}
	s.engine.Use(
		gin.CustomRecovery(s.recoverPanic),
		s.requestLogger(),
		corsMiddleware(s.corsOrigins),
		metrics.NewHTTPMetrics(registry).Middleware(),
	)
	s.registerRoutes()
	return s, nil
}

// Handler 回傳路由處理器，供 HTTP server 掛載。
func (s *Server) Handler() *gin.Engine {
	return s.engine
}

// TokenService 主要用於測試簽發特定時間的 token。
func (s *Server) TokenService() *authinfra.JWTIssuer {
	return s.tokenSvc
}

func (s *Server) now() time.Time {
	return time.Now()
}
