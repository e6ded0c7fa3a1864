package main

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"applyai/config"
	"applyai/controllers"
	"applyai/database"
	"applyai/middleware"
	"applyai/services"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("No .env file found, using environment")
	}

	appConfig := config.GetAppConfig()

	// Database is optional: without it runs are held in memory only.
	var store services.RunStore
	db, err := database.Connect(
		appConfig.Database.Host,
		strconv.Itoa(appConfig.Database.Port),
		appConfig.Database.User,
		appConfig.Database.Password,
		appConfig.Database.DBName,
	)
	if err != nil {
		log.Printf("Database unavailable, runs will not be persisted: %v", err)
	} else {
		if err := database.Migrate(db); err != nil {
			log.Fatalf("Database migration failed: %v", err)
		}
		store = database.NewRunRepository(db)
	}

	headless := os.Getenv("HEADLESS") != "false"
	browser, err := services.NewBrowserService(headless)
	if err != nil {
		log.Fatalf("Failed to start browser: %v", err)
	}
	defer browser.Close()

	var chatClient services.ChatClient
	var answerService *services.AnswerService
	client, err := services.NewGeminiClient(appConfig.AI.APIKey)
	if err != nil {
		log.Printf("AI not configured, falling back to heuristics: %v", err)
	} else {
		chatClient = client
		answerService = services.NewAnswerService(chatClient, appConfig.AI.Model)
	}

	resumeService := services.NewResumeService(appConfig.ProfilesRoot)
	if s3Service, err := services.NewS3Service(); err == nil {
		if _, err := s3Service.SyncProfile("", appConfig.ProfilesRoot); err != nil {
			log.Printf("Resume sync from S3 failed: %v", err)
		}
	} else {
		log.Printf("S3 not configured, using local resumes only: %v", err)
	}

	doNotApply := services.LoadDoNotApplyDomains(appConfig.DoNotApplyPath)
	finder := services.NewApplyFinderService(chatClient, appConfig.AI.Model, doNotApply)

	runsService := services.NewRunsService(services.RunsDeps{
		Browser:         browser,
		Extractor:       services.NewFormExtractor(),
		Snapshots:       services.NewSnapshotService(),
		Answers:         answerService,
		Filler:          services.NewFormFillerService(),
		Finder:          finder,
		Resumes:         resumeService,
		Store:           store,
		HoldOpenSeconds: appConfig.HoldOpenSeconds,
		SnapshotRoot:    "./data/snapshots",
	})

	jwtService := services.NewJWTService(appConfig.JWTSecret)
	authController := controllers.NewAuthController(jwtService)
	runController := controllers.NewRunController(runsService, resumeService)

	r := gin.Default()

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowAllOrigins = true
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Accept", "Authorization"}
	corsConfig.MaxAge = 24 * time.Hour
	r.Use(cors.New(corsConfig))

	r.POST("/api/login", authController.Login)
	r.GET("/api/profiles", runController.ListProfiles)

	authorized := r.Group("/api", middleware.Auth(jwtService))
	authorized.POST("/runs", runController.StartRun)
	authorized.GET("/runs", runController.ListRuns)
	authorized.GET("/runs/:id", runController.GetRun)

	log.Printf("Listening on :%s", appConfig.Port)
	if err := r.Run(":" + appConfig.Port); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}
