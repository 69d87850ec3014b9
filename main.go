package main

import (
	"context"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/address-validator/app/config"
	"github.com/address-validator/app/controllers"
	"github.com/address-validator/app/services"
	"github.com/address-validator/internal/dataset"
	"github.com/address-validator/internal/gazetteer"
	"github.com/address-validator/internal/search"
	"github.com/address-validator/internal/validator"
	"github.com/address-validator/routes"
	"github.com/gin-gonic/gin"
	"github.com/spf13/viper"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

func main() {
	// 1. Load configuration
	loadConfig()
	if err := config.Load(viper.GetString("validator.config_path")); err != nil {
		log.Printf("Warning: cannot read validator config, using defaults: %v", err)
	}

	// 2. Initialize logger
	logger := initLogger()
	defer logger.Sync()

	logger.Info("Starting Address Validator Service")

	// 3. Load the reference dataset and build the indices
	loader := dataset.NewLoader(logger)

	loadCtx, cancelLoad := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancelLoad()

	records, err := loader.Load(loadCtx, config.C.Dataset.Source)
	if err != nil {
		logger.Fatal("Failed to load reference dataset", zap.Error(err))
	}

	indices := gazetteer.Build(records)
	datasetVersion := time.Now().UTC().Format("20060102T150405Z")

	logger.Info("Reference dataset indexed",
		zap.Int("records", indices.RecordCount()),
		zap.String("dataset_version", datasetVersion))

	// 4. Initialize the resolution engine
	engine := validator.NewEngine(indices, validator.Config{
		CityThreshold:   config.C.Thresholds.City,
		StreetThreshold: config.C.Thresholds.Street,
	}, logger)

	// 5. Connect MongoDB (optional; the cache degrades without it)
	mongoDB := initMongoDB(logger)
	if mongoDB != nil {
		defer func() {
			if err := mongoDB.Client().Disconnect(context.Background()); err != nil {
				logger.Error("Error disconnecting MongoDB", zap.Error(err))
			}
		}()
	}

	// 6. Initialize Meilisearch (optional; the cascade works without it)
	searchConfig := search.SearchConfig{
		Host:          viper.GetString("meilisearch.url"),
		APIKey:        viper.GetString("meilisearch.master_key"),
		IndexName:     "addresses",
		Timeout:       30 * time.Second,
		MaxCandidates: 20,
	}

	addressSearcher, err := search.NewAddressSearcher(searchConfig, logger)
	if err != nil {
		logger.Warn("Meilisearch unavailable, search endpoints disabled", zap.Error(err))
		addressSearcher = nil
	}

	// 7. Initialize cache services: Redis L1 + MongoDB L2 when reachable,
	// otherwise whatever subset is, down to the in-memory fallback.
	redisURL := getEnv("REDIS_URL", viper.GetString("redis.url"))
	redisCache, err := services.NewRedisCacheService(redisURL, config.CacheTTL(), logger)
	if err != nil {
		logger.Warn("Redis cache unavailable", zap.Error(err))
		redisCache = nil
	}

	l1Size := getEnvInt("L1_CACHE_SIZE", config.C.Cache.L1Size)
	var mongoCache *services.MongoCacheService
	if mongoDB != nil {
		mongoCache, err = services.NewMongoCacheService(mongoDB, l1Size, datasetVersion, logger)
		if err != nil {
			logger.Warn("MongoDB cache unavailable", zap.Error(err))
			mongoCache = nil
		}
	}

	cacheService := services.SelectCacheService(redisCache, mongoCache, config.CacheTTL(), logger)

	// 8. Warm up the in-process cache from MongoDB
	if hybrid, ok := cacheService.(*services.HybridCacheService); ok {
		if err := hybrid.WarmUpFromMongoDB(context.Background(), l1Size/2); err != nil {
			logger.Warn("Failed to warm up cache", zap.Error(err))
		}
	}

	// 9. Initialize services
	validationService := services.NewValidationService(engine, datasetVersion, logger)
	adminService := services.NewAdminService(loader, validationService, cacheService, addressSearcher, records, logger)

	// 10. Initialize controllers
	addressController := controllers.NewAddressController(validationService, cacheService, addressSearcher, logger)
	adminController := controllers.NewAdminController(adminService, cacheService, logger)

	// 11. Initialize the Gin router
	router := gin.New()

	// 12. Set up routes (middleware included)
	routes.SetupAllRoutes(router, addressController, adminController)

	// 13. Seed the Meilisearch index if configured
	if addressSearcher != nil {
		if err := addressSearcher.BuildIndexes(); err != nil {
			logger.Warn("Failed to configure search index", zap.Error(err))
		}
		if err := addressSearcher.SeedRecords(records); err != nil {
			logger.Warn("Failed to seed search index", zap.Error(err))
		}
	}

	// 14. Periodic dataset refresh
	go refreshDatasetLoop(adminService, logger)

	// 15. Start the server
	port := getEnv("APP_PORT", viper.GetString("app.port"))
	logger.Info("Address Validator Service starting", zap.String("port", port))

	if err := router.Run(":" + port); err != nil {
		logger.Fatal("Failed to start server", zap.Error(err))
	}
}

// refreshDatasetLoop reloads the dataset on the configured interval.
func refreshDatasetLoop(adminService *services.AdminService, logger *zap.Logger) {
	interval := config.RefreshInterval()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for range ticker.C {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		if _, err := adminService.ReloadDataset(ctx, config.C.Dataset.Source); err != nil {
			logger.Error("Periodic dataset reload failed", zap.Error(err))
		}
		cancel()
	}
}

// loadConfig loads configuration from file and env vars
func loadConfig() {
	viper.SetConfigName("app")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("./config")
	viper.AddConfigPath(".")

	// Set defaults
	viper.SetDefault("app.port", "8080")
	viper.SetDefault("app.env", "development")
	viper.SetDefault("meilisearch.url", "http://meili:7700")
	viper.SetDefault("meilisearch.master_key", "")
	viper.SetDefault("mongo.url", "mongodb://localhost:27017/address_validator")
	viper.SetDefault("redis.url", "redis://localhost:6379")
	viper.SetDefault("cache.l1_size", 10000)
	viper.SetDefault("validator.config_path", "./config/validator.yaml")

	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		log.Printf("Warning: Cannot read config file: %v", err)
	}
}

// initLogger builds the structured logger
func initLogger() *zap.Logger {
	env := getEnv("APP_ENV", "development")

	var config zap.Config
	if env == "production" {
		config = zap.NewProductionConfig()
	} else {
		config = zap.NewDevelopmentConfig()
	}

	logger, err := config.Build()
	if err != nil {
		log.Fatal("Cannot initialize logger:", err)
	}

	return logger
}

// initMongoDB opens the MongoDB connection. Returns nil when MongoDB is
// unreachable; the cache layer degrades without it.
func initMongoDB(logger *zap.Logger) *mongo.Database {
	mongoURL := getEnv("MONGO_URL", viper.GetString("mongo.url"))

	client, err := mongo.Connect(context.Background(), options.Client().ApplyURI(mongoURL))
	if err != nil {
		logger.Warn("Failed to connect to MongoDB", zap.Error(err))
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := client.Ping(ctx, nil); err != nil {
		logger.Warn("Failed to ping MongoDB", zap.Error(err))
		_ = client.Disconnect(context.Background())
		return nil
	}

	clientOpts := options.Client().ApplyURI(mongoURL)

	dbName := "address_validator"
	if clientOpts.Auth != nil && clientOpts.Auth.AuthSource != "" {
		dbName = clientOpts.Auth.AuthSource
	}

	db := client.Database(dbName)
	logger.Info("Connected to MongoDB", zap.String("database", dbName))

	return db
}

// getEnv reads an environment variable with a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt reads an environment variable as int with a default value
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}
