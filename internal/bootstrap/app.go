package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/hibiken/asynq"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	httpHandler "classroom-backend/internal/handler/http"
	wsHandler "classroom-backend/internal/handler/websocket"
	"classroom-backend/internal/hub"
	gormpersistence "classroom-backend/internal/infra/persistence/gorm"
	"classroom-backend/internal/infra/setup"
	"classroom-backend/internal/middleware"
	"classroom-backend/internal/presence"
	"classroom-backend/internal/service"
	"classroom-backend/internal/worker"
)

// Config 存储从环境变量或 .env 文件加载的配置
type Config struct {
	DBUser          string
	DBPassword      string
	DBHost          string
	DBPort          string
	DBName          string
	RedisAddr       string
	RedisPassword   string
	RedisDB         int
	JWTSecret       string
	ServerPort      string
	LogLevel        string
	RateLimitMax    int
	RateLimitWindow time.Duration
	JWTExpiryHours  int
	AppEnv          string // development/production
	DataDir         string // 课件文件的存储目录
}

// LoadConfig 从环境变量加载配置
func LoadConfig() (*Config, error) {
	// 优先加载 .env 文件 (如果存在)，忽略错误以允许只用环境变量
	_ = godotenv.Load()

	cfg := &Config{
		DBUser:        os.Getenv("DB_USER"),
		DBPassword:    os.Getenv("DB_PASSWORD"),
		DBHost:        os.Getenv("DB_HOST"),
		DBPort:        os.Getenv("DB_PORT"),
		DBName:        os.Getenv("DB_NAME"),
		RedisAddr:     os.Getenv("REDIS_ADDR"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		JWTSecret:     os.Getenv("JWT_SECRET"),
		ServerPort:    os.Getenv("SERVER_PORT"),
		LogLevel:      os.Getenv("LOG_LEVEL"),
		AppEnv:        os.Getenv("APP_ENV"),
		DataDir:       os.Getenv("DATA_DIR"),
		// --- 默认值 ---
		RateLimitMax:    100,
		RateLimitWindow: 1 * time.Second,
		JWTExpiryHours:  24,
	}

	redisDBStr := os.Getenv("REDIS_DB")
	cfg.RedisDB, _ = strconv.Atoi(redisDBStr) // 忽略错误，默认为 0

	if cfg.ServerPort == "" {
		cfg.ServerPort = "8080"
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
	if cfg.AppEnv == "" {
		cfg.AppEnv = "development"
	}
	if cfg.DataDir == "" {
		cfg.DataDir = "./data"
	}
	if cfg.RedisAddr == "" {
		return nil, fmt.Errorf("environment variable REDIS_ADDR must be set")
	}
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("environment variable JWT_SECRET must be set")
	}

	if _, err := logrus.ParseLevel(cfg.LogLevel); err != nil {
		logrus.Warnf("Invalid LOG_LEVEL '%s', using default 'info'", cfg.LogLevel)
		cfg.LogLevel = "info"
	}

	return cfg, nil
}

// App 包含应用的所有组件
type App struct {
	Config      *Config
	Log         *logrus.Logger
	DB          *gorm.DB
	RedisClient *redis.Client
	AsynqClient *asynq.Client
	AsynqServer *worker.WorkerServer
	Hub         *hub.Hub
	Registry    *presence.Registry
	HttpServer  *http.Server
}

// NewApp 创建并初始化应用的所有组件
func NewApp() (*App, error) {
	// 1. 加载配置
	cfg, err := LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		return nil, err
	}

	// 2. 初始化 Logger
	log := logrus.New()
	if cfg.AppEnv == "production" {
		log.SetFormatter(&logrus.JSONFormatter{TimestampFormat: time.RFC3339Nano})
	} else {
		log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true, ForceColors: true})
	}
	logLevel, _ := logrus.ParseLevel(cfg.LogLevel)
	log.SetLevel(logLevel)
	log.SetOutput(os.Stdout)
	log.Info("Configuration loaded successfully")

	// 3. 初始化基础设施
	log.Info("Initializing infrastructure...")
	db, err := setup.InitDB(cfg.DBUser, cfg.DBPassword, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		return nil, fmt.Errorf("failed to init DB: %w", err)
	}
	log.Info("Database initialized")

	if err := setup.MigrateDB(db); err != nil {
		return nil, fmt.Errorf("failed to migrate DB: %w", err)
	}
	log.Info("Database migrated")

	redisClient, err := setup.InitRedis(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	if err != nil {
		return nil, fmt.Errorf("failed to init Redis: %w", err)
	}
	log.Info("Redis client initialized")

	redisClientOpt := asynq.RedisClientOpt{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	}
	asynqClient := asynq.NewClient(redisClientOpt)
	log.Info("Asynq client initialized")

	// 4. 初始化 Repositories
	userRepo := gormpersistence.NewGormUserRepository(db)
	roomRepo := gormpersistence.NewGormClassroomRepository(db)
	messageRepo := gormpersistence.NewGormMessageRepository(db)
	taskRepo := gormpersistence.NewGormTaskRepository(db)
	materialRepo := gormpersistence.NewGormMaterialRepository(db)
	log.Info("Repositories initialized")

	// 5. 初始化 Services
	authService, err := service.NewAuthService(userRepo, cfg.JWTSecret, cfg.JWTExpiryHours)
	if err != nil {
		return nil, fmt.Errorf("failed to create AuthService: %w", err)
	}
	roomService := service.NewClassroomService(roomRepo, userRepo)
	chatService := service.NewChatService(messageRepo, asynqClient)
	taskService := service.NewTaskService(taskRepo)
	materialService := service.NewMaterialService(materialRepo, cfg.DataDir)
	log.Info("Services initialized")

	// 6. 初始化在线名册与 Hub
	registry := presence.NewRegistry()
	hubInstance := hub.NewHub()
	log.Info("Hub initialized")

	// 7. 初始化 Handlers
	authHandler := httpHandler.NewAuthHandler(authService)
	userHandler := httpHandler.NewUserHandler(authService)
	classroomHandler := httpHandler.NewClassroomHandler(roomService)
	roomAdminHandler := httpHandler.NewRoomAdminHandler(roomService)
	taskHandler := httpHandler.NewTaskHandler(taskService)
	materialHandler := httpHandler.NewMaterialHandler(materialService)
	messageHandler := httpHandler.NewMessageHandler(chatService)
	chatWS := wsHandler.NewHandler(hubInstance, registry, chatService, authService, roomService)
	log.Info("Handlers initialized")

	// 8. 初始化 Worker Server
	workerServer := worker.NewWorkerServer(redisClientOpt, roomRepo, log)
	log.Info("Worker server initialized")

	// 9. 初始化 Gin Engine 和路由
	if cfg.AppEnv == "production" {
		gin.SetMode(gin.ReleaseMode)
	} else {
		gin.SetMode(gin.DebugMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(LoggerMiddleware(log))

	router.Use(func(c *gin.Context) { /* CORS */
		allowedOrigin := os.Getenv("CORS_ALLOWED_ORIGIN")
		if allowedOrigin == "" {
			allowedOrigin = "http://localhost:3000"
		}
		c.Writer.Header().Set("Access-Control-Allow-Origin", allowedOrigin)
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Requested-With")
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	})
	router.Use(middleware.RateLimit(redisClient, cfg.RateLimitMax, cfg.RateLimitWindow))

	// --- 路由 ---
	api := router.Group("/api")
	authRoutes := api.Group("/auth")
	{
		authRoutes.POST("/register", authHandler.Register)
		authRoutes.POST("/login", authHandler.Login)
	}

	userRoutes := api.Group("/user").Use(middleware.Auth(cfg.JWTSecret))
	{
		userRoutes.GET("/me", authHandler.Me)
		userRoutes.PATCH("/name", userHandler.UpdateName)
		userRoutes.PATCH("/email", userHandler.UpdateEmail)
		userRoutes.PATCH("/password", userHandler.ChangePassword)
		userRoutes.POST("/avatar", userHandler.UploadAvatar)
		userRoutes.DELETE("/avatar", userHandler.RemoveAvatar)
	}
	api.GET("/user/:id/avatar", userHandler.GetAvatar)

	classroomRoutes := api.Group("/classrooms").Use(middleware.Auth(cfg.JWTSecret))
	{
		classroomRoutes.POST("", classroomHandler.Create)
		classroomRoutes.GET("", classroomHandler.ListJoined)
		classroomRoutes.POST("/join", classroomHandler.RequestJoin)
	}

	// 教室内操作：/api/room/:code/...，成员路由与管理员路由分组
	memberRoutes := api.Group("/room/:code")
	memberRoutes.Use(middleware.Auth(cfg.JWTSecret), middleware.RoomMember(roomService))
	{
		memberRoutes.GET("", classroomHandler.Get)
		memberRoutes.GET("/messages", messageHandler.History)
		memberRoutes.GET("/tasks", taskHandler.List)
		memberRoutes.GET("/materials", materialHandler.List)
		memberRoutes.POST("/materials", materialHandler.Upload)
		memberRoutes.GET("/files/:file", materialHandler.Download)
	}

	adminRoutes := api.Group("/room/:code/admin")
	adminRoutes.Use(middleware.Auth(cfg.JWTSecret), middleware.RoomAdmin(roomService))
	{
		adminRoutes.PATCH("/classname", roomAdminHandler.UpdateClassName)
		adminRoutes.PATCH("/subject", roomAdminHandler.UpdateSubject)
		adminRoutes.PATCH("/description", roomAdminHandler.UpdateDescription)
		adminRoutes.POST("/students", roomAdminHandler.AddStudent)
		adminRoutes.DELETE("/students/:id", roomAdminHandler.RemoveStudent)
		adminRoutes.POST("/approvals/:id", roomAdminHandler.ApproveJoin)
		adminRoutes.DELETE("/approvals/:id", roomAdminHandler.DenyJoin)
		adminRoutes.POST("/tasks", taskHandler.Create)
		adminRoutes.DELETE("/files/:file", materialHandler.Delete)
	}

	wsRoutes := router.Group("/ws").Use(middleware.Auth(cfg.JWTSecret))
	{
		wsRoutes.GET("/room/:code", chatWS.Serve)
	}

	router.GET("/ping", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"message": "pong"}) })
	log.Info("Router setup complete")

	// 10. 初始化 HTTP Server
	httpServer := &http.Server{
		Addr:    ":" + cfg.ServerPort,
		Handler: router,
	}

	app := &App{
		Config:      cfg,
		Log:         log,
		DB:          db,
		RedisClient: redisClient,
		AsynqClient: asynqClient,
		AsynqServer: workerServer,
		Hub:         hubInstance,
		Registry:    registry,
		HttpServer:  httpServer,
	}
	log.Info("Application assembled successfully")

	return app, nil
}

// Start 启动后台 Goroutine 和 HTTP 服务器
func (a *App) Start() {
	go a.AsynqServer.Start()
	a.Log.Info("Asynq worker server routine started")

	go func() {
		a.Log.Infof("HTTP server starting to listen on %s", a.HttpServer.Addr)
		if err := a.HttpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.Log.Fatalf("Failed to start HTTP server: %v", err)
		}
		a.Log.Info("HTTP server stopped listening.")
	}()
}

// Shutdown 优雅地关闭应用
func (a *App) Shutdown() {
	a.Log.Info("Shutting down application...")

	if a.AsynqServer != nil {
		a.AsynqServer.Shutdown()
	}

	a.Log.Info("Shutting down HTTP server...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := a.HttpServer.Shutdown(ctx); err != nil {
		a.Log.Errorf("Error shutting down HTTP server: %v", err)
	} else {
		a.Log.Info("HTTP server shut down gracefully.")
	}

	if a.AsynqClient != nil {
		if err := a.AsynqClient.Close(); err != nil {
			a.Log.Errorf("Error closing Asynq client: %v", err)
		}
	}

	if a.RedisClient != nil {
		if err := a.RedisClient.Close(); err != nil {
			a.Log.Errorf("Error closing Redis connection: %v", err)
		}
	}

	a.Log.Info("Application shutdown complete.")
}

// LoggerMiddleware 记录每个 HTTP 请求的访问日志
func LoggerMiddleware(log *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		startTime := time.Now()
		c.Next()
		latency := time.Since(startTime)
		statusCode := c.Writer.Status()
		path := c.Request.URL.Path
		if c.Request.URL.RawQuery != "" {
			path = path + "?" + c.Request.URL.RawQuery
		}
		errorMessage := c.Errors.ByType(gin.ErrorTypePrivate).String()

		entry := log.WithFields(logrus.Fields{
			"status_code": statusCode,
			"latency_ms":  latency.Milliseconds(),
			"client_ip":   c.ClientIP(),
			"method":      c.Request.Method,
			"path":        path,
		})

		switch {
		case errorMessage != "":
			entry.Error(errorMessage)
		case statusCode >= 500:
			entry.Error("Server error")
		case statusCode >= 400:
			entry.Warn("Client error")
		default:
			entry.Info("Request handled")
		}
	}
}
