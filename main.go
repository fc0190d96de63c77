package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	_ "github.com/go-sql-driver/mysql"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "vitalops-backend/docs"
	"vitalops-backend/internal/dashboard"
	"vitalops-backend/internal/field_ops/jobs"
	"vitalops-backend/internal/platform/auth"
	"vitalops-backend/internal/platform/db"
	"vitalops-backend/internal/platform/whatsapp"
	"vitalops-backend/internal/rental_mgmt/assets"
	"vitalops-backend/internal/rental_mgmt/customers"
	"vitalops-backend/internal/rental_mgmt/invoices"
	"vitalops-backend/internal/rental_mgmt/payments"
	"vitalops-backend/internal/rental_mgmt/rentals"
	"vitalops-backend/internal/rental_mgmt/sales"
	"vitalops-backend/internal/rental_mgmt/sleepstudies"
)

// @title        VitalOps Backend API
// @version      1.0
// @description  医療機器レンタル・販売のバックオフィスAPI
// @BasePath     /api/v1
func main() {
	// 設定読み込み
	cfg, err := db.LoadConfig("config/config.yaml")
	if err != nil {
		panic(err)
	}

	mode := cfg.Mode
	log.Printf("[INFO] mode:%s\n", mode)

	if mode != "dev" && mode != "release" {
		log.Fatal("config: mode must be dev or release")
	}

	conn, err := db.Connect(cfg.DB)
	if err != nil {
		panic(err)
	}
	defer conn.Close()

	log.Printf("[INFO] connected to DB: %s", cfg.DB.DBName)

	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())
	_ = r.SetTrustedProxies(nil)

	if mode == "dev" {
		// CORS（開発中のみ必要）
		r.Use(cors.New(cors.Config{
			AllowOrigins:     []string{"http://localhost:3000"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
			ExposeHeaders:    []string{"Content-Length", "Location"},
			AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowCredentials: true,
		}))
	}

	// ヘルス
	r.GET("/healthz", func(c *gin.Context) { c.String(http.StatusOK, "ok") })

	// APIドキュメント
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// WhatsApp中継。未設定環境ではログのみのスタブに落とす
	var notifier whatsapp.Dispatcher = whatsapp.NopDispatcher{}
	if cfg.WhatsApp.Enabled {
		notifier = whatsapp.NewClient(cfg.WhatsApp.APIURL)
	}

	secret := []byte(cfg.Auth.JWTSecret)
	authSvc := auth.NewService(conn, secret, time.Duration(cfg.Auth.TokenTTL)*time.Hour)

	// 認証なし: ログインのみ
	public := r.Group("/api/v1")
	auth.RegisterRoutes(public, authSvc)

	// 認証必須: 業務API一式
	api := r.Group("/api/v1")
	api.Use(auth.RequireAuth(secret))
	auth.RegisterProtectedRoutes(api, authSvc)
	assets.RegisterRoutes(api, assets.NewService(conn))
	customers.RegisterRoutes(api, customers.NewService(conn))
	rentals.RegisterRoutes(api, rentals.NewService(conn))
	sales.RegisterRoutes(api, sales.NewService(conn))
	invoices.RegisterRoutes(api, invoices.NewService(conn, notifier))
	payments.RegisterRoutes(api, payments.NewService(conn))
	jobs.RegisterRoutes(api, jobs.NewService(conn))
	sleepstudies.RegisterRoutes(api, sleepstudies.NewService(conn, notifier))
	dashboard.RegisterRoutes(api, dashboard.NewService(conn))

	srv := &http.Server{
		Addr:    cfg.Server.Addr,
		Handler: r,
	}

	go func() {
		log.Printf("[INFO] listening on %s", cfg.Server.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal(err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt)
	<-quit
	log.Println("[INFO] shutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal(err)
	}
}
