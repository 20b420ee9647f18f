package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/meeplehaven/boardshelf/api/web"
	"github.com/meeplehaven/boardshelf/audit"
	"github.com/meeplehaven/boardshelf/auth"
	"github.com/meeplehaven/boardshelf/cache"
	"github.com/meeplehaven/boardshelf/catalog"
	"github.com/meeplehaven/boardshelf/config"
	dbadapter "github.com/meeplehaven/boardshelf/db"
	mw "github.com/meeplehaven/boardshelf/middleware"
	"github.com/meeplehaven/boardshelf/model"
	"github.com/meeplehaven/boardshelf/social"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

func main() {
	cfgPath := "config/config.yaml"
	if len(os.Args) > 1 {
		cfgPath = os.Args[1]
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if cfg.Security.SessionSecret == "" {
		log.Fatal("config: security.session_secret must be set")
	}

	// ---- Logger ----
	var logger *zap.Logger
	var logErr error
	if cfg.Server.Debug {
		logger, logErr = zap.NewDevelopment()
	} else {
		logger, logErr = zap.NewProduction()
	}
	if logErr != nil {
		log.Fatalf("logger: %v", logErr)
	}
	defer logger.Sync()

	// ---- Database ----
	db, err := dbadapter.Open(cfg.Database)
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	if err := model.AutoMigrate(db); err != nil {
		log.Fatalf("db migrate: %v", err)
	}
	logger.Info("DB initialized", zap.String("mode", cfg.Database.Mode))

	// ---- Session store ----
	store, err := cache.New(cache.Config{
		RedisAddr:       cfg.Cache.RedisAddr,
		RedisPassword:   cfg.Cache.RedisPassword,
		RedisDB:         cfg.Cache.RedisDB,
		LocalGCInterval: cfg.Cache.LocalGCInterval,
	})
	if err != nil {
		log.Fatalf("cache: %v", err)
	}
	logger.Info("Session store initialized")

	// ---- Audit ----
	auditSvc := audit.New(db, logger)
	defer auditSvc.Stop(context.Background())

	// ---- Services ----
	authSvc := auth.New(db, store, cfg.Security, cfg.App, logger)
	catalogSvc := catalog.New(db)
	socialSvc := social.New(db)

	// ---- Gin HTTP Server ----
	if !cfg.Server.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(mw.TraceID(), mw.Logger(logger), mw.Recovery(logger))
	r.Use(mw.RateLimit(rate.Limit(cfg.Security.RateLimitRPS), cfg.Security.RateLimitBurst))
	r.SetHTMLTemplate(web.Templates())

	// Health check
	r.GET("/health", func(ctx *gin.Context) {
		ctx.JSON(200, gin.H{"status": "ok"})
	})

	// ---- Handlers ----
	authH := web.NewAuthHandler(authSvc, store, cfg.Security, auditSvc, logger)
	catalogH := web.NewCatalogHandler(catalogSvc, socialSvc, authSvc, logger)
	socialH := web.NewSocialHandler(socialSvc, authSvc, auditSvc, logger)

	// ---- Public routes ----
	r.GET("/", authH.Home)
	r.GET("/register", authH.ShowRegister)
	r.POST("/register", authH.Register)
	r.GET("/login", authH.ShowLogin)
	r.POST("/login", authH.Login)
	r.GET("/logout", authH.Logout)

	// ---- Session-guarded routes ----
	authed := r.Group("/", mw.RequireAuth(cfg.Security, store))
	{
		authed.GET("/collection", catalogH.Collection)
		authed.GET("/friend/:id", catalogH.FriendCollection)
		authed.GET("/add", catalogH.ShowAdd)
		authed.POST("/add", catalogH.Add)
		authed.GET("/edit", catalogH.ShowEdit)
		authed.POST("/edit", catalogH.Edit)
		authed.GET("/delete", catalogH.Delete)
		authed.GET("/addfriend", socialH.ShowAddFriend)
		authed.POST("/addfriend", socialH.AddFriend)
		authed.GET("/acceptfriend", socialH.AcceptFriend)
		authed.GET("/declinefriend", socialH.DeclineFriend)
		authed.GET("/deletefriend", socialH.DeleteFriend)
	}

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	logger.Info("Server listening", zap.String("addr", addr))
	if err := r.Run(addr); err != nil {
		log.Fatalf("server: %v", err)
	}
}
