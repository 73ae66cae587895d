package config

import (
	"crypto/rand"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	StoreDriverFile     = "file"
	StoreDriverPostgres = "postgres"

	SessionStoreMemory = "memory"
	SessionStoreRedis  = "redis"
)

type Config struct {
	Port string

	JWTKey []byte
	// JWTKeyGenerated is set when JWT_SECRET was missing and an ephemeral key was created.
	JWTKeyGenerated bool
	AccessTokenTTL  time.Duration

	StoreDriver string
	DBFile      string

	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSslMode  string
	DBConnStr  string

	SessionStore   string
	RedisAddr      string
	RedisPassword  string
	RedisDB        int
	RedisKeyPrefix string

	ImagesDir      string
	MaxUploadBytes int64

	CORSAllowedOrigins []string

	LogFile  string
	LogLevel string

	RequestTimeout time.Duration

	ImageSweepInterval time.Duration
	ImageSweepGrace    time.Duration
}

var AppConfig *Config

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, relying on environment variables")
	}

	AppConfig = &Config{
		Port:               getEnv("PORT", "3004"),
		AccessTokenTTL:     getEnvAsDuration("ACCESS_TOKEN_TTL", time.Hour),
		StoreDriver:        strings.ToLower(getEnv("STORE_DRIVER", StoreDriverFile)),
		DBFile:             getEnv("DB_FILE", "db.json"),
		DBHost:             getEnv("DB_HOST", "localhost"),
		DBPort:             getEnv("DB_PORT", "5432"),
		DBUser:             getEnv("DB_USER", "user"),
		DBPassword:         getEnv("DB_PASSWORD", "password"),
		DBName:             getEnv("DB_NAME", "catalog"),
		DBSslMode:          getEnv("DB_SSLMODE", "disable"),
		SessionStore:       strings.ToLower(getEnv("SESSION_STORE", SessionStoreMemory)),
		RedisAddr:          getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword:      getEnv("REDIS_PASSWORD", ""),
		RedisDB:            getEnvAsInt("REDIS_DB", 0),
		RedisKeyPrefix:     getEnv("REDIS_KEY_PREFIX", "catalog:refresh:"),
		ImagesDir:          getEnv("IMAGES_DIR", "public/images"),
		MaxUploadBytes:     int64(getEnvAsInt("MAX_UPLOAD_BYTES", 5*1024*1024)),
		CORSAllowedOrigins: getEnvAsList("CORS_ALLOWED_ORIGINS", []string{"http://localhost:3000", "http://localhost:5173"}),
		LogFile:            getEnv("LOG_FILE", "stdout"),
		LogLevel:           getEnv("LOG_LEVEL", "INFO"),
		RequestTimeout:     getEnvAsDuration("REQUEST_TIMEOUT", 60*time.Second),
		ImageSweepInterval: getEnvAsDuration("IMAGE_SWEEP_INTERVAL", 0),
		ImageSweepGrace:    getEnvAsDuration("IMAGE_SWEEP_GRACE", time.Hour),
	}

	if secret := getEnv("JWT_SECRET", ""); secret != "" {
		AppConfig.JWTKey = []byte(secret)
	} else {
		AppConfig.JWTKey = randomKey()
		AppConfig.JWTKeyGenerated = true
	}

	AppConfig.DBConnStr = getEnv("DATABASE_URL", "")
	if AppConfig.DBConnStr == "" {
		AppConfig.DBConnStr = "host=" + AppConfig.DBHost +
			" port=" + AppConfig.DBPort +
			" user=" + AppConfig.DBUser +
			" password=" + AppConfig.DBPassword +
			" dbname=" + AppConfig.DBName +
			" sslmode=" + AppConfig.DBSslMode
	}

	return AppConfig
}

func randomKey() []byte {
	key := make([]byte, 32)
	if _, err := rand.Read(key); err != nil {
		log.Fatalf("Could not generate JWT key: %v", err)
	}
	return key
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return fallback
}

func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	return fallback
}

// getEnvAsList splits a comma separated value, dropping empty entries.
func getEnvAsList(key string, fallback []string) []string {
	valueStr, exists := os.LookupEnv(key)
	if !exists {
		return fallback
	}
	var out []string
	for _, part := range strings.Split(valueStr, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
