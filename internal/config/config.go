package config // package config loads application configuration from environment variables

import (
	"log"     // log is used to report configuration errors and halt execution
	"os"      // os provides access to environment variables
	"strconv" // strconv converts strings to other types
	"strings"
	"time"
)

// Store drivers accepted by STORE_DRIVER.
const (
	StoreMySQL  = "mysql"
	StoreMemory = "memory"
)

// Config holds all runtime configuration values.  Each field corresponds to
// an environment variable.  Database settings are only required when the
// MySQL store is selected.
type Config struct {
	Env               string         // application environment (e.g. "dev", "prod")
	Port              string         // HTTP port to listen on
	StoreDriver       string         // "mysql" or "memory"
	DBUser            string         // database username
	DBPass            string         // database password (optional)
	DBHost            string         // database host address
	DBPort            string         // database port number
	DBName            string         // database name
	JWTSecret         string         // secret used to sign admin and check tokens
	AccessTTLMin      int            // admin access token time-to-live in minutes
	CheckTokenTTLMin  int            // how long a check result may be committed
	AdminPasswordHash string         // bcrypt hash of the shared admin password
	Location          *time.Location // zone that decides what "today" is
	AdminEmail        string         // recipient of availability inquiries
	PublicBaseURL     string         // root used for approve/reject links
	AMQPURL           string         // broker for booking events; empty disables publishing
	BookingQueue      string         // queue name for booking events
	BookingLogPath    string         // file the event consumer appends to
}

// Load reads configuration values from environment variables and returns a
// Config.  Required variables are enforced by must() and missing values
// cause the program to exit with a fatal log message.
func Load() Config {
	cfg := Config{
		Env:               must("APP_ENV"),
		Port:              must("APP_PORT"),
		StoreDriver:       strings.ToLower(envStr("STORE_DRIVER", StoreMySQL)),
		JWTSecret:         must("JWT_SECRET"),
		AccessTTLMin:      mustInt("ACCESS_TOKEN_TTL_MIN"),
		CheckTokenTTLMin:  envInt("CHECK_TOKEN_TTL_MIN", 30),
		AdminPasswordHash: must("ADMIN_PASSWORD_HASH"),
		Location:          mustLocation(envStr("APP_TIMEZONE", "Asia/Jerusalem")),
		AdminEmail:        os.Getenv("ADMIN_EMAIL"),
		PublicBaseURL:     os.Getenv("PUBLIC_BASE_URL"),
		AMQPURL:           amqpURL(),
		BookingQueue:      envStr("BOOKING_QUEUE", "booking.events"),
		BookingLogPath:    envStr("BOOKING_LOG_PATH", "logs/booking.log"),
	}
	switch cfg.StoreDriver {
	case StoreMySQL:
		cfg.DBUser = must("DB_USER")
		cfg.DBPass = os.Getenv("DB_PASS") // empty allowed
		cfg.DBHost = must("DB_HOST")
		cfg.DBPort = must("DB_PORT")
		cfg.DBName = must("DB_NAME")
	case StoreMemory:
	default:
		log.Fatalf("invalid STORE_DRIVER: %q", cfg.StoreDriver)
	}
	return cfg
}

// amqpURL prefers RABBITMQ_URL and falls back to AMQP_URL.  Empty means the
// service runs without an event queue.
func amqpURL() string {
	if v := os.Getenv("RABBITMQ_URL"); v != "" {
		return v
	}
	return os.Getenv("AMQP_URL")
}

// must retrieves the value of a required environment variable.  If the
// variable is unset or empty, the application logs a fatal error and exits.
func must(key string) string {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		log.Fatalf("missing required env var: %s", key)
	}
	return v
}

// mustInt is like must() but converts the retrieved string into an integer.
// If conversion fails, the application logs a fatal error and exits.
func mustInt(key string) int {
	s := must(key)
	n, err := strconv.Atoi(s)
	if err != nil {
		log.Fatalf("invalid int for %s: %q", key, s)
	}
	return n
}

func mustLocation(name string) *time.Location {
	loc, err := time.LoadLocation(name)
	if err != nil {
		log.Fatalf("invalid APP_TIMEZONE %q: %v", name, err)
	}
	return loc
}
