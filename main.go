package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"storefront/internal/auth"
	"storefront/internal/cache"
	"storefront/internal/cart"
	"storefront/internal/config"
	"storefront/internal/database"
	"storefront/internal/events"
	"storefront/internal/handlers"
	"storefront/internal/metrics"
	"storefront/internal/middleware"
	"storefront/internal/orders"
	"storefront/internal/profile"
)

func main() {
	config.Load()

	client, err := database.Connect(config.AppEnv.MongoURI)
	if err != nil {
		log.Fatal(err)
	}

	db := client.Database(config.AppEnv.DBName)
	log.Println("MongoDB connected to:", db.Name())

	if err := database.EnsureAccountIndexes(db); err != nil {
		log.Printf("account index warning: %v", err)
	}
	if err := database.EnsureOrderIndexes(db); err != nil {
		log.Printf("order index warning: %v", err)
	}
	if err := database.EnsureProductIndexes(db); err != nil {
		log.Printf("product index warning: %v", err)
	}

	rdb, err := cache.Connect(config.AppEnv.RedisAddr, config.AppEnv.RedisPassword)
	if err != nil {
		log.Fatal(err)
	}
	log.Println("Redis connected to:", config.AppEnv.RedisAddr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	notifier := auth.NewNotifier()
	authSvc := auth.NewService(db, notifier, config.AppEnv.JWTSecret, config.AppEnv.AccessTokenTTL, config.AppEnv.RefreshTokenTTL)

	profileStore := profile.NewStore()
	coordinator := profile.NewCoordinator(db, profileStore)
	unsubscribe := coordinator.Start(notifier)
	defer unsubscribe()

	var publisher orders.Publisher
	if len(config.AppEnv.KafkaBrokers) > 0 {
		p := events.NewPublisher(config.AppEnv.KafkaBrokers, config.AppEnv.OrderCreatedTopic)
		defer p.Close()
		publisher = p
	}

	ordersSvc := orders.NewService(orders.NewMongoStore(db), rdb, publisher)

	if len(config.AppEnv.KafkaBrokers) > 0 {
		consumer := events.NewStatusConsumer(
			config.AppEnv.KafkaBrokers,
			config.AppEnv.OrderStatusTopic,
			config.AppEnv.OrderStatusGroup,
			ordersSvc,
		)
		defer consumer.Close()
		go consumer.Run(ctx)
	}

	carts := cart.NewSessionStore(rdb, config.AppEnv.SessionTTL)
	m := metrics.New()

	r := gin.Default()
	r.Use(metrics.RequestCounter(m))
	r.Use(middleware.Session(config.AppEnv.SessionTTL))

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(200, gin.H{"ok": true})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	r.POST("/auth/register", handlers.Register(authSvc))
	r.POST("/auth/login", handlers.Login(authSvc))
	r.POST("/auth/refresh", handlers.Refresh(authSvc))
	r.POST("/auth/logout", handlers.Logout(authSvc))
	r.GET("/auth/me", middleware.UserAuth(config.AppEnv.JWTSecret), handlers.GetMe(db))

	r.GET("/products", handlers.GetProducts(db))
	r.GET("/products/:id", handlers.GetProduct(db))

	r.GET("/cart", handlers.GetCart(carts))
	r.POST("/cart/items", handlers.AddCartItem(db, carts))
	r.PUT("/cart/items/:productId", handlers.UpdateCartItem(carts))
	r.DELETE("/cart/items/:productId", handlers.RemoveCartItem(carts))
	r.DELETE("/cart", handlers.ClearCart(carts))

	r.POST("/orders", handlers.Checkout(ordersSvc, carts, m, config.AppEnv.JWTSecret))
	r.GET("/orders", middleware.UserAuth(config.AppEnv.JWTSecret), handlers.ListOrders(ordersSvc))
	r.GET("/orders/:id", handlers.GetOrder(ordersSvc))

	admin := r.Group("/admin/api")
	admin.Use(middleware.AdminAuth(config.AppEnv.JWTSecret))
	{
		admin.GET("/me", func(c *gin.Context) {
			c.JSON(200, gin.H{"ok": true})
		})

		admin.POST("/products", handlers.CreateProduct(db))
		admin.PUT("/products/:id", handlers.UpdateProduct(db))
		admin.DELETE("/products/:id", handlers.DeleteProduct(db))
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	r.Run(":" + port)
}
