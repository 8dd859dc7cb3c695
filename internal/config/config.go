package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/jesses-code-adventures/practice/internal/models"
)

type Config struct {
	DocStoreDriver       string
	DatabaseURL          string
	FirestoreProject     string
	FirestoreCredentials string
	ActivityDriver       string
	ActivityURL          string
	UserID               string
	UserName             string
	UserRole             string
	NextBillStatus       string
	ReadModelTTL         time.Duration
	LogLevel             string
	LogFormat            string
	LogTimeFormat        string
	LogOutput            string
	DevMode              bool
}

// Load reads the environment, after a .env file if one exists. Non-empty
// arguments take precedence over their environment variables.
func Load(dbConn, dbDriver, devMode string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("error loading .env file: %w", err)
	}

	if dbConn == "" {
		dbConn = getEnv("DATABASE_URL", "./practice.db")
	}

	if dbDriver == "" {
		dbDriver = getEnv("DOCSTORE_DRIVER", "sqlite3")
	}

	// Dev mode defaults to true for local builds, false for prod
	isDevMode := devMode == "true" || (devMode == "" && getEnv("DEV_MODE", "true") == "true")

	activityDriver := dbDriver
	activityURL := dbConn
	if dbDriver == "firestore" {
		activityDriver = "sqlite3"
		activityURL = "./practice.db"
	}

	ttl, err := time.ParseDuration(getEnv("READMODEL_TTL", "5m"))
	if err != nil {
		return nil, fmt.Errorf("invalid READMODEL_TTL: %w", err)
	}

	logLevel := "info"
	if isDevMode {
		logLevel = "debug"
	}

	cfg := &Config{
		DocStoreDriver:       dbDriver,
		DatabaseURL:          dbConn,
		FirestoreProject:     getEnv("FIRESTORE_PROJECT", ""),
		FirestoreCredentials: getEnv("FIRESTORE_CREDENTIALS", ""),
		ActivityDriver:       getEnv("ACTIVITY_DATABASE_DRIVER", activityDriver),
		ActivityURL:          getEnv("ACTIVITY_DATABASE_URL", activityURL),
		UserID:               getEnv("PRACTICE_USER_ID", ""),
		UserName:             getEnv("PRACTICE_USER_NAME", ""),
		UserRole:             getEnv("PRACTICE_USER_ROLE", string(models.RoleStaff)),
		NextBillStatus:       getEnv("NEXT_BILL_STATUS", string(models.BillStatusPendingCollection)),
		ReadModelTTL:         ttl,
		LogLevel:             getEnv("LOG_LEVEL", logLevel),
		LogFormat:            getEnv("LOG_FORMAT", "console"),
		LogTimeFormat:        getEnv("LOG_TIME_FORMAT", time.Kitchen),
		LogOutput:            getEnv("LOG_OUTPUT", "stderr"),
		DevMode:              isDevMode,
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	switch c.DocStoreDriver {
	case "sqlite3", "libsql":
	case "firestore":
		if c.FirestoreProject == "" {
			return fmt.Errorf("FIRESTORE_PROJECT is required for the firestore driver")
		}
	default:
		return fmt.Errorf("unknown DOCSTORE_DRIVER %q", c.DocStoreDriver)
	}

	switch c.ActivityDriver {
	case "sqlite3", "libsql", "pgx":
	default:
		return fmt.Errorf("unknown ACTIVITY_DATABASE_DRIVER %q", c.ActivityDriver)
	}

	if _, err := models.ParseRole(c.UserRole); err != nil {
		return fmt.Errorf("invalid PRACTICE_USER_ROLE: %w", err)
	}

	next, err := models.ParseBillStatus(c.NextBillStatus)
	if err != nil {
		return fmt.Errorf("invalid NEXT_BILL_STATUS: %w", err)
	}
	if next != models.BillStatusPendingCollection && next != models.BillStatusCollected {
		return fmt.Errorf("NEXT_BILL_STATUS must be %q or %q", models.BillStatusPendingCollection, models.BillStatusCollected)
	}

	switch strings.ToLower(c.LogFormat) {
	case "console", "json":
	default:
		return fmt.Errorf("unknown LOG_FORMAT %q", c.LogFormat)
	}
	return nil
}

// Actor is the employee the CLI acts for.
func (c *Config) Actor() models.Actor {
	role, err := models.ParseRole(c.UserRole)
	if err != nil {
		role = models.RoleStaff
	}
	return models.Actor{UserID: c.UserID, UserName: c.UserName, Role: role}
}

func (c *Config) Dump() {
	fmt.Printf("Document Store Driver: %s\n", c.DocStoreDriver)
	if c.DocStoreDriver == "firestore" {
		fmt.Printf("Firestore Project: %s\n", c.FirestoreProject)
	} else {
		fmt.Printf("Database URL: %s\n", c.DatabaseURL)
	}
	fmt.Printf("Activity Driver: %s\n", c.ActivityDriver)
	fmt.Printf("Activity URL: %s\n", c.ActivityURL)
	fmt.Printf("User: %s (%s, %s)\n", c.UserName, c.UserID, c.UserRole)
	fmt.Printf("Next Bill Status: %s\n", c.NextBillStatus)
	fmt.Printf("Read Model TTL: %s\n", c.ReadModelTTL)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
