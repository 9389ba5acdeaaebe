package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/plantpedia/plantpedia/internal/models"
)

const (
	DefaultIssuer            = "Plantpedia"
	DefaultAudience          = "PlantpediaUsers"
	DefaultCookieName        = "PlantpediaJWT"
	DefaultExpirationMinutes = 60
)

// ErrNoSecret means JWT_SECRET is unset. The server must refuse to start;
// this is never a per-request condition.
var ErrNoSecret = errors.New("config: JWT_SECRET is not set")

type JWT struct {
	Secret            string
	Issuer            string
	Audience          string
	CookieName        string
	ExpirationMinutes int
}

type Config struct {
	DB_HOST        string
	DB_PORT        string
	DB_USER        string
	DB_PASSWORD    string
	DB_NAME        string
	ES_URL         string
	ES_USER        string
	ES_PASSWORD    string
	KAFKA_ADDRESS  string
	SESSION_SECRET string
	LOG_LEVEL      string
	JWT            JWT
}

func LoadConfig() (*Config, error) {
	if err := godotenv.Load(".env"); err != nil {
		log.Printf("Notice: .env file not found: %v. Using system environment variables", err)
	}

	config := &Config{
		DB_HOST:        os.Getenv("DB_HOST"),
		DB_PORT:        os.Getenv("DB_PORT"),
		DB_USER:        os.Getenv("DB_USER"),
		DB_PASSWORD:    os.Getenv("DB_PASSWORD"),
		DB_NAME:        os.Getenv("DB_NAME"),
		ES_URL:         os.Getenv("ES_URL"),
		ES_USER:        os.Getenv("ES_USER"),
		ES_PASSWORD:    os.Getenv("ES_PASSWORD"),
		KAFKA_ADDRESS:  os.Getenv("KAFKA_ADDRESS"),
		SESSION_SECRET: os.Getenv("SESSION_SECRET"),
		LOG_LEVEL:      os.Getenv("LOG_LEVEL"),
		JWT:            loadJWT(),
	}

	if config.JWT.Secret == "" {
		return nil, ErrNoSecret
	}

	return config, nil
}

func loadJWT() JWT {
	jwt := JWT{
		Secret:            os.Getenv("JWT_SECRET"),
		Issuer:            os.Getenv("JWT_ISSUER"),
		Audience:          os.Getenv("JWT_AUDIENCE"),
		CookieName:        os.Getenv("JWT_COOKIE_NAME"),
		ExpirationMinutes: DefaultExpirationMinutes,
	}
	if jwt.Issuer == "" {
		jwt.Issuer = DefaultIssuer
	}
	if jwt.Audience == "" {
		jwt.Audience = DefaultAudience
	}
	if jwt.CookieName == "" {
		jwt.CookieName = DefaultCookieName
	}
	if minutes, err := strconv.Atoi(os.Getenv("JWT_EXPIRATION_MINUTES")); err == nil && minutes > 0 {
		jwt.ExpirationMinutes = minutes
	}
	return jwt
}

func InitDB(configuration *Config) (*gorm.DB, error) {
	dsn := fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=disable",
		configuration.DB_USER, configuration.DB_PASSWORD,
		configuration.DB_HOST, configuration.DB_PORT, configuration.DB_NAME,
	)
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := Migrate(db); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	return db, nil
}

func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.UserAccount{}, &models.UserLogin{},
		&models.PlantFamily{}, &models.PlantOrder{}, &models.PlantClass{}, &models.PlantType{},
		&models.Climate{}, &models.Region{}, &models.SoilType{}, &models.Usage{},
		&models.PlantInfo{}, &models.PlantImg{},
	)
}
