package config

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

func init() {
	// Load .env file if it exists (silent fail if not)
	_ = godotenv.Load()
}

// Config holds all application configuration loaded from environment variables.
type Config struct {
	Server  ServerConfig
	App     AppConfig
	Cache   CacheConfig
	GameDB  GameDBConfig
	Shop    ShopConfig
	Auction AuctionConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host            string        `envconfig:"SERVER_HOST" default:"0.0.0.0"`
	Port            int           `envconfig:"SERVER_PORT" default:"8080"`
	ReadTimeout     time.Duration `envconfig:"SERVER_READ_TIMEOUT" default:"15s"`
	WriteTimeout    time.Duration `envconfig:"SERVER_WRITE_TIMEOUT" default:"30s"`
	ShutdownTimeout time.Duration `envconfig:"SERVER_SHUTDOWN_TIMEOUT" default:"30s"`
}

// AppConfig holds application-level settings.
type AppConfig struct {
	Name        string `envconfig:"APP_NAME" default:"omezka-shop-api"`
	Environment string `envconfig:"APP_ENV" default:"development"`
	Debug       bool   `envconfig:"APP_DEBUG" default:"false"`
	Version     string `envconfig:"APP_VERSION" default:"1.0.0"`
	LoginKey    string `envconfig:"LOGIN_KEY" default:""` // Admin endpoints login key
}

// CacheConfig holds Redis settings.
type CacheConfig struct {
	RedisHost     string `envconfig:"REDIS_HOST" default:"localhost"`
	RedisPort     int    `envconfig:"REDIS_PORT" default:"6379"`
	RedisPassword string `envconfig:"REDIS_PASSWORD" default:""`
	RedisDB       int    `envconfig:"REDIS_DB" default:"0"`
}

// GameDBConfig holds game database settings.
type GameDBConfig struct {
	Type string `envconfig:"GAME_DB_TYPE" default:"sqlite"` // sqlite, postgres, or mysql
	Path string `envconfig:"GAME_DB_PATH" default:"./data/omezka.db"`
	// PostgreSQL / MySQL settings
	Host     string `envconfig:"GAME_DB_HOST" default:"localhost"`
	Port     int    `envconfig:"GAME_DB_PORT" default:"5432"`
	Name     string `envconfig:"GAME_DB_NAME" default:"omezka"`
	User     string `envconfig:"GAME_DB_USER" default:"postgres"`
	Password string `envconfig:"GAME_DB_PASS" default:""`
	SSLMode  string `envconfig:"GAME_DB_SSLMODE" default:"disable"`
}

// ShopConfig holds rotation and storefront settings.
type ShopConfig struct {
	MinRotationInterval time.Duration `envconfig:"SHOP_MIN_ROTATION_INTERVAL" default:"15s"`
	MaxRotationInterval time.Duration `envconfig:"SHOP_MAX_ROTATION_INTERVAL" default:"40s"`
	ProductsFile        string        `envconfig:"SHOP_PRODUCTS_FILE" default:"./data/products.json"`
	KeyPrefix           string        `envconfig:"SHOP_KEY_PREFIX" default:"omezka:shop"`
}

// AuctionConfig holds auction house settings.
type AuctionConfig struct {
	SweepInterval time.Duration `envconfig:"AUCTION_SWEEP_INTERVAL" default:"5m"`
}

// PostgresDSN returns the PostgreSQL connection string.
func (g *GameDBConfig) PostgresDSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		g.User, g.Password, g.Host, g.Port, g.Name, g.SSLMode)
}

// MySQLDSN returns the MySQL data source name.
func (g *GameDBConfig) MySQLDSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?parseTime=true",
		g.User, g.Password, g.Host, g.Port, g.Name)
}

// Address returns the server address in host:port format.
func (s *ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// RedisAddress returns the Redis address in host:port format.
func (c *CacheConfig) RedisAddress() string {
	return fmt.Sprintf("%s:%d", c.RedisHost, c.RedisPort)
}

// IsDevelopment returns true if running in development mode.
func (a *AppConfig) IsDevelopment() bool {
	return a.Environment == "development"
}

// IsProduction returns true if running in production mode.
func (a *AppConfig) IsProduction() bool {
	return a.Environment == "production"
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	var cfg Config

	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	return &cfg, nil
}

// MustLoad loads configuration or panics on error.
func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		panic(err)
	}
	return cfg
}
