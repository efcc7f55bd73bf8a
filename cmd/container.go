// cmd/container.go
//
// Root composition root. Owns infrastructure (Redis, optional Postgres, the
// content-repository client) and wires the identity modules together. This is
// the only place that knows about ALL modules.
package main

import (
	"context"
	"fmt"

	awsConfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/hayat-market/authgate/pkg/config"
	"github.com/hayat-market/authgate/pkg/iam/auth"
	"github.com/hayat-market/authgate/pkg/iam/auth/authapi"
	"github.com/hayat-market/authgate/pkg/iam/auth/authinfra"
	"github.com/hayat-market/authgate/pkg/iam/auth/authsrv"
	"github.com/hayat-market/authgate/pkg/iam/otp/otpsrv"
	"github.com/hayat-market/authgate/pkg/iam/sso/ssoinfra"
	"github.com/hayat-market/authgate/pkg/iam/sso/ssosrv"
	"github.com/hayat-market/authgate/pkg/iam/user"
	"github.com/hayat-market/authgate/pkg/iam/user/userinfra"
	"github.com/hayat-market/authgate/pkg/keyval"
	"github.com/hayat-market/authgate/pkg/keyval/keyvalredis"
	"github.com/hayat-market/authgate/pkg/logx"
	"github.com/hayat-market/authgate/pkg/notifx"
	"github.com/hayat-market/authgate/pkg/notifx/notifxconsole"
	"github.com/hayat-market/authgate/pkg/notifx/notifxses"
	"github.com/hayat-market/authgate/pkg/notifx/notifxsms"
	"github.com/hayat-market/authgate/pkg/repo"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"
)

// Container holds shared infrastructure and composed module services.
type Container struct {
	Config *config.Config

	// Infrastructure (shared across all modules)
	Redis *redis.Client
	DB    *sqlx.DB
	Store keyval.Store
	Repo  *repo.Client

	// Modules
	Users        user.Repository
	OTPs         *otpsrv.Service
	Tokens       auth.TokenService
	Middleware   *auth.TokenMiddleware
	Flow         *authsrv.Service
	SSO          *ssosrv.Service
	AuthHandlers *authapi.Handlers
}

func NewContainer(cfg *config.Config) *Container {
	logx.Info("Initializing application container...")

	c := &Container{Config: cfg}

	c.initInfrastructure()
	c.initModules()

	logx.Info("Application container initialized")
	return c
}

// ---------------------------------------------------------------------------
// Infrastructure: Redis, user-record backend
// ---------------------------------------------------------------------------

func (c *Container) initInfrastructure() {
	// 1. Redis, the ephemeral credential store. Required: OTPs, revocations
	// and sessions all live here.
	c.Redis = redis.NewClient(&redis.Options{
		Addr:     c.Config.Redis.Address(),
		Password: c.Config.Redis.Password,
		DB:       c.Config.Redis.DB,
	})
	if _, err := c.Redis.Ping(context.Background()).Result(); err != nil {
		logx.Fatalf("Failed to connect to Redis: %v (Redis is required)", err)
	}
	c.Store = keyvalredis.NewStore(c.Redis, keyvalredis.Options{
		OpTimeout:  c.Config.Redis.OpTimeout,
		MaxRetries: c.Config.Redis.MaxRetries,
	})
	logx.Info("  Redis connected")

	// 2. User-record backend.
	switch c.Config.Repository.Mode {
	case "postgres":
		dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
			c.Config.Repository.PGHost,
			c.Config.Repository.PGPort,
			c.Config.Repository.PGUser,
			c.Config.Repository.PGPassword,
			c.Config.Repository.PGName,
			c.Config.Repository.PGSSLMode,
		)
		db, err := sqlx.Connect("postgres", dsn)
		if err != nil {
			logx.Fatalf("Failed to connect to Postgres: %v", err)
		}
		db.SetMaxOpenConns(c.Config.Repository.PGMaxOpenConns)
		db.SetMaxIdleConns(c.Config.Repository.PGMaxIdleConns)
		db.SetConnMaxLifetime(c.Config.Repository.PGConnMaxLifetime)
		c.DB = db
		c.Users = userinfra.NewPostgresRepository(db)
		logx.Info("  Postgres user repository configured")

	case "repo":
		c.Repo = repo.NewClient(repo.Options{
			BaseURL:  c.Config.Repository.RepoURL,
			Username: c.Config.Repository.RepoUsername,
			Password: c.Config.Repository.RepoPassword,
			Timeout:  c.Config.Repository.RepoTimeout,
		})
		c.Users = userinfra.NewRepoRepository(c.Repo, c.Config.Repository.RepoSpace)
		logx.Infof("  Content repository configured (space: %s)", c.Config.Repository.RepoSpace)

	default:
		logx.Fatalf("Unknown REPOSITORY_MODE: %s (use 'repo' or 'postgres')", c.Config.Repository.Mode)
	}
}

// ---------------------------------------------------------------------------
// Notifications
// ---------------------------------------------------------------------------

func (c *Container) initNotifier() *notifx.Client {
	var email notifx.EmailSender
	switch c.Config.Notifx.EmailProvider {
	case "ses":
		awsCfg, err := awsConfig.LoadDefaultConfig(context.Background(),
			awsConfig.WithRegion(c.Config.Notifx.AWSRegion))
		if err != nil {
			logx.Fatalf("Unable to load AWS SDK config: %v", err)
		}
		from := fmt.Sprintf("%s <%s>", c.Config.Notifx.FromName, c.Config.Notifx.FromAddress)
		email = notifxses.NewProvider(ses.NewFromConfig(awsCfg), from)
		logx.Infof("  SES email provider configured (region: %s)", c.Config.Notifx.AWSRegion)

	case "console":
		email = notifxconsole.NewProvider()
		logx.Info("  Console email provider configured (dev mode)")

	default:
		logx.Fatalf("Unknown NOTIFX_EMAIL_PROVIDER: %s (use 'console' or 'ses')", c.Config.Notifx.EmailProvider)
	}

	sms := notifxsms.NewGatewayProvider(
		c.Config.Notifx.SMSGatewayURL,
		c.Config.Notifx.SMSAPIKey,
		c.Config.Notifx.MockSMS,
	)

	return notifx.NewClient(email, sms)
}

// ---------------------------------------------------------------------------
// Module composition
// ---------------------------------------------------------------------------

func (c *Container) initModules() {
	authCfg := c.Config.Auth
	if authCfg.JWTSecret == "" {
		logx.Fatalf("JWT_SECRET is required")
	}

	c.OTPs = otpsrv.New(c.Store, otpsrv.Config{
		TTL:        authCfg.OTPTTL,
		CodeLength: authCfg.OTPLength,
		ResendGap:  authCfg.OTPResendGap,
	})

	c.Tokens = auth.NewJWTService(authCfg.JWTSecret, "authgate")
	passwords := authinfra.NewBcryptPasswordService(authCfg.BcryptCost)
	revocations := authinfra.NewRedisRevocationList(c.Store)
	audit := authinfra.NewLogxAuditService()

	var sessions auth.SessionRegistry
	if authCfg.SingleSession {
		sessions = authinfra.NewRedisSessionRegistry(c.Store)
		logx.Info("  Single-session policy enabled")
	}

	c.Middleware = auth.NewTokenMiddleware(c.Tokens, revocations, sessions)

	c.Flow = authsrv.New(
		c.Users,
		c.OTPs,
		c.Tokens,
		passwords,
		revocations,
		sessions,
		c.initNotifier(),
		audit,
		authsrv.Config{
			AccessTokenTTL: authCfg.AccessTokenTTL,
			SingleSession:  authCfg.SingleSession,
			EmailFrom:      c.Config.Notifx.FromAddress,
		},
	)

	c.SSO = ssosrv.New(c.Users, ssoinfra.NewUserInfoClient(c.Config.SSO), audit)

	secureCookies := c.Config.Server.Host != "localhost" && c.Config.Server.Host != "127.0.0.1"
	c.AuthHandlers = authapi.NewHandlers(c.Flow, c.SSO, c.Middleware, secureCookies)
}

// ---------------------------------------------------------------------------
// Lifecycle
// ---------------------------------------------------------------------------

func (c *Container) Cleanup() {
	logx.Info("Cleaning up resources...")

	if c.DB != nil {
		if err := c.DB.Close(); err != nil {
			logx.Errorf("Error closing database: %v", err)
		}
	}
	if c.Redis != nil {
		if err := c.Redis.Close(); err != nil {
			logx.Errorf("Error closing Redis: %v", err)
		}
	}
}
