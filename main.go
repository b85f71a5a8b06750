package main

import (
	"context"
	"log"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"lorekeeper/config"
	"lorekeeper/database"
	adminapi "lorekeeper/internal/api/admin"
	authapi "lorekeeper/internal/api/auth"
	storiesapi "lorekeeper/internal/api/stories"
	usersapi "lorekeeper/internal/api/users"
	worksapi "lorekeeper/internal/api/works"
	routes "lorekeeper/internal/app/http"
	"lorekeeper/internal/catalog"
	"lorekeeper/internal/infra/assets"
	"lorekeeper/internal/infra/cache"
	"lorekeeper/internal/platform/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	appLog, err := logger.New(cfg.AppEnv)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer appLog.Sync()

	if cfg.Production() {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := database.Open(cfg.DBURL, appLog)
	if err != nil {
		appLog.Fatal("database", "error", err)
	}
	if created, err := database.SeedAdmin(db, cfg.AdminName, cfg.AdminPassword); err != nil {
		appLog.Fatal("seed admin", "error", err)
	} else if created {
		appLog.Info("admin account created", "name", cfg.AdminName)
	}

	store, err := cache.New(cache.Options{
		TTL:           cfg.CacheTTL,
		LocalTTL:      cfg.CacheLocalTTL,
		RedisAddr:     cfg.RedisAddr,
		RedisPassword: cfg.RedisPassword,
		RedisDB:       cfg.RedisDB,
	}, appLog)
	if err != nil {
		appLog.Fatal("cache", "error", err)
	}
	defer store.Close()
	pingCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	if err := store.Ping(pingCtx); err != nil {
		appLog.Warn("redis unreachable, using memory cache only", "error", err)
	}
	cancel()

	var resolver assets.Resolver = assets.Passthrough{}
	if cfg.SigningEnabled() {
		signer, err := assets.NewSignerFromKeyFile(cfg.AssetBucket, cfg.AssetSignerEmail, cfg.AssetSignerKey, cfg.AssetURLTTL, appLog)
		if err != nil {
			appLog.Fatal("asset signer", "error", err)
		}
		resolver = signer
	}

	storySvc := catalog.NewStories(db, appLog, store)
	worksSvc := catalog.NewWorks(db, appLog, store)

	r := gin.Default()
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{cfg.CORSOrigin},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	routes.RegisterRoutes(r, routes.Deps{
		JWTSecret: cfg.JWTSecret,
		Auth:      authapi.NewHandler(db, cfg.JWTSecret, appLog),
		Users:     usersapi.NewHandler(db, appLog),
		Admin:     adminapi.NewHandler(db),
		Stories:   storiesapi.NewHandler(storySvc, resolver, appLog),
		Works:     worksapi.NewHandler(worksSvc, resolver, appLog),
	})

	appLog.Info("listening", "port", cfg.Port)
	if err := r.Run(":" + cfg.Port); err != nil {
		appLog.Fatal("server stopped", "error", err)
	}
}
