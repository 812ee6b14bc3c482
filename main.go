package main

import (
	"context"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/theazran/tagihYT/cache"
	"github.com/theazran/tagihYT/controller"
	"github.com/theazran/tagihYT/gateway"
	"github.com/theazran/tagihYT/kafka"
	"github.com/theazran/tagihYT/middleware"
	"github.com/theazran/tagihYT/model"
	"github.com/theazran/tagihYT/notifier"
	"github.com/theazran/tagihYT/recon"
	"github.com/theazran/tagihYT/routes"
	"github.com/theazran/tagihYT/store"
)

// ======================
// INIT DATABASE
// ======================
func initDB() *gorm.DB {
	host := getEnv("DB_HOST", "localhost")
	port := getEnv("DB_PORT", "5432")
	user := getEnv("DB_USER", "postgres")
	pass := getEnv("DB_PASS", "postgres")
	name := getEnv("DB_NAME", "tagihyt")

	dsn := "host=" + host +
		" user=" + user +
		" password=" + pass +
		" dbname=" + name +
		" port=" + port +
		" sslmode=disable TimeZone=UTC"

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatal("failed to connect db:", err)
	}

	if err := db.AutoMigrate(&model.Transaction{}); err != nil {
		log.Fatal(err)
	}

	return db
}

func main() {
	db := initDB()
	txStore := store.New(db)

	// optional infra
	redisCache := cache.Connect(getEnv("REDIS_ADDR", ""))
	producer := kafka.NewProducer(getEnv("KAFKA_BROKER", ""))

	// gateways
	isProduction := getEnv("IS_PRODUCTION", "false") == "true"
	midtrans := gateway.NewMidtrans(getEnv("MIDTRANS_SERVER_KEY", ""), isProduction)

	merchantID, err := strconv.Atoi(getEnv("KLIKQRIS_MERCHANT_ID", "0"))
	if err != nil {
		log.Fatal("invalid KLIKQRIS_MERCHANT_ID:", err)
	}
	klikqris := gateway.NewKlikQRIS(getEnv("KLIKQRIS_API_KEY", ""), merchantID)

	gateways := gateway.Registry{
		midtrans.Name(): midtrans,
		klikqris.Name(): klikqris,
	}

	// notifier
	wa := notifier.NewWhatsApp(
		getEnv("WA_API_URL", "https://wa-api.pnblk.my.id"),
		getEnv("WA_USER_ID", "patrolwaa1"),
	)

	engine := recon.New(txStore, gateways, wa, producer, redisCache)

	summaryTarget, _ := strconv.ParseInt(getEnv("SUMMARY_TARGET", "159000"), 10, 64)
	summaryTargetCount, _ := strconv.Atoi(getEnv("SUMMARY_TARGET_COUNT", "6"))

	tc := &controller.TransactionController{
		Store:              txStore,
		Gateways:           gateways,
		Engine:             engine,
		Midtrans:           midtrans,
		Notifier:           wa,
		Cache:              redisCache,
		SummaryTarget:      summaryTarget,
		SummaryTargetCount: summaryTargetCount,
	}

	jwtSecret := getEnv("JWT_SECRET", "dev-secret")
	ac := controller.NewAuthController(jwtSecret, getEnv("ADMIN_PASSWORD_HASH", ""))

	// periodic sweep over pending transactions
	if interval, _ := strconv.Atoi(getEnv("SWEEP_INTERVAL_SECONDS", "0")); interval > 0 {
		go func() {
			ticker := time.NewTicker(time.Duration(interval) * time.Second)
			defer ticker.Stop()
			for range ticker.C {
				engine.SweepPending(context.Background())
			}
		}()
		log.Printf("Sweep enabled every %ds", interval)
	}

	app := fiber.New()
	app.Use(logger.New())

	routes.Register(app, tc, ac, middleware.AdminRequired(jwtSecret))

	port := getEnv("PORT", "3000")
	log.Println("Server running on port " + port)
	if err := app.Listen(":" + port); err != nil {
		log.Fatal("fiber error:", err)
	}
}

func getEnv(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}
