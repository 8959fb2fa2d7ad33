package main

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/daberpro/Worldpedia-Education-Backend-sub000/cache"
	"github.com/daberpro/Worldpedia-Education-Backend-sub000/config"
	"github.com/daberpro/Worldpedia-Education-Backend-sub000/controller"
	"github.com/daberpro/Worldpedia-Education-Backend-sub000/kafka"
	"github.com/daberpro/Worldpedia-Education-Backend-sub000/midtrans"
	"github.com/daberpro/Worldpedia-Education-Backend-sub000/model"
	"github.com/daberpro/Worldpedia-Education-Backend-sub000/routes"
	"github.com/daberpro/Worldpedia-Education-Backend-sub000/service"
	"github.com/daberpro/Worldpedia-Education-Backend-sub000/store"
)

func initDB(cfg *config.Config) *gorm.DB {
	db, err := gorm.Open(postgres.Open(cfg.DSN()), &gorm.Config{})
	if err != nil {
		log.Fatal("failed to connect payment db: ", err)
	}

	if err := db.AutoMigrate(&model.Enrollment{}, &model.Payment{}); err != nil {
		log.Fatal(err)
	}
	return db
}

func main() {
	log.SetFormatter(&log.JSONFormatter{})
	log.SetLevel(log.InfoLevel)

	cfg := config.Load()
	db := initDB(cfg)

	rdb := cache.Connect(cfg.RedisAddr)
	payCache := cache.New(rdb, cfg.CacheTTL)

	producer := kafka.NewProducer(cfg.KafkaBroker)
	defer producer.Close()

	gateway := midtrans.NewClient(midtrans.Config{
		ServerKey:   cfg.MidtransServerKey,
		SnapBaseURL: cfg.MidtransSnapURL,
		CoreBaseURL: cfg.MidtransCoreURL,
		Timeout:     cfg.GatewayTimeout,
	})

	payments := store.NewPaymentStore(db)
	reconciler := service.NewReconciler(
		payments,
		gateway,
		payCache,
		producer,
		cfg.MidtransServerKey,
		cfg.PaymentExpiry,
	)

	go reconciler.RunExpirySweeper(context.Background(), cfg.SweepInterval)

	app := fiber.New()
	app.Use(logger.New())
	app.Use(cors.New())

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "healthy"})
	})
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	routes.RegisterPaymentRoutes(app, controller.NewPaymentController(reconciler), cfg.JWTSecret)

	log.Info("Payment service running on port ", cfg.Port)
	if err := app.Listen(":" + cfg.Port); err != nil {
		log.Fatal("fiber error: ", err)
	}
}
