package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all configuration for the AgriSmart backend
type Config struct {
	Server     ServerConfig
	ThingSpeak ThingSpeakConfig
	Polling    PollingConfig
	AI         AIConfig
	Locale     LocaleConfig
	MQTT       MQTTConfig
	Database   DatabaseConfig
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Port           string
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	AllowedOrigins []string
}

// ThingSpeakConfig holds the telemetry channel settings
type ThingSpeakConfig struct {
	BaseURL    string
	ChannelID  string
	ReadAPIKey string
	Timeout    time.Duration
}

// PollingConfig holds the polling driver settings
type PollingConfig struct {
	Interval       time.Duration
	InitialResults int
	PollResults    int
	FetchTimeout   time.Duration
}

// AIConfig holds the generative AI client settings
type AIConfig struct {
	APIKey     string
	TextModel  string
	ImageModel string
	Timeout    time.Duration
}

// LocaleConfig selects the startup language and an optional locale directory
type LocaleConfig struct {
	Language string
	Dir      string
}

// MQTTConfig holds MQTT broker configuration
type MQTTConfig struct {
	Enabled      bool
	BrokerURL    string
	ClientID     string
	Username     string
	Password     string
	TopicPrefix  string
	QoS          byte
	KeepAlive    time.Duration
	PingTimeout  time.Duration
	ConnectRetry bool
}

// DatabaseConfig holds PostgreSQL database configuration
type DatabaseConfig struct {
	Enabled  bool
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// Load loads configuration from environment variables with defaults
func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Port:           getEnv("PORT", "8080"),
			ReadTimeout:    getDurationEnv("SERVER_READ_TIMEOUT", 15*time.Second),
			WriteTimeout:   getDurationEnv("SERVER_WRITE_TIMEOUT", 60*time.Second),
			AllowedOrigins: getListEnv("CORS_ALLOWED_ORIGINS", []string{"*"}),
		},
		ThingSpeak: ThingSpeakConfig{
			BaseURL:    getEnv("THINGSPEAK_BASE_URL", "https://api.thingspeak.com"),
			ChannelID:  getEnv("THINGSPEAK_CHANNEL_ID", ""),
			ReadAPIKey: getEnv("THINGSPEAK_READ_API_KEY", ""),
			Timeout:    getDurationEnv("THINGSPEAK_TIMEOUT", 10*time.Second),
		},
		Polling: PollingConfig{
			Interval:       getDurationEnv("POLL_INTERVAL", 20*time.Second),
			InitialResults: getIntEnv("POLL_INITIAL_RESULTS", 100),
			PollResults:    getIntEnv("POLL_RESULTS", 20),
			FetchTimeout:   getDurationEnv("POLL_FETCH_TIMEOUT", 15*time.Second),
		},
		AI: AIConfig{
			APIKey:     getEnv("GEMINI_API_KEY", getEnv("API_KEY", "")),
			TextModel:  getEnv("GEMINI_TEXT_MODEL", "gemini-2.5-flash-preview-04-17"),
			ImageModel: getEnv("GEMINI_IMAGE_MODEL", "imagen-3.0-generate-002"),
			Timeout:    getDurationEnv("GEMINI_TIMEOUT", 45*time.Second),
		},
		Locale: LocaleConfig{
			Language: getEnv("LANGUAGE", "en"),
			Dir:      getEnv("LOCALES_DIR", ""),
		},
		MQTT: MQTTConfig{
			Enabled:      getBoolEnv("MQTT_ENABLED", false),
			BrokerURL:    getMQTTBrokerURL(),
			ClientID:     getEnv("MQTT_CLIENT_ID", "agrismart_backend"),
			Username:     getEnv("MQTT_USERNAME", ""),
			Password:     getEnv("MQTT_PASSWORD", ""),
			TopicPrefix:  getEnv("MQTT_TOPIC_PREFIX", "agrismart"),
			QoS:          getQoSEnv("MQTT_QOS", 1),
			KeepAlive:    getDurationEnv("MQTT_KEEP_ALIVE", 30*time.Second),
			PingTimeout:  getDurationEnv("MQTT_PING_TIMEOUT", 10*time.Second),
			ConnectRetry: getBoolEnv("MQTT_CONNECT_RETRY", true),
		},
		Database: DatabaseConfig{
			Enabled:  getBoolEnv("DB_ENABLED", false),
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", ""),
			DBName:   getEnv("DB_NAME", "agrismart"),
			SSLMode:  getEnv("DB_SSLMODE", "require"),
		},
	}
}

// getEnv returns environment variable value or default if not set
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getDurationEnv returns duration environment variable value or default if not set
func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

// getIntEnv returns a positive integer environment variable value or default
func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil && n > 0 {
			return n
		}
	}
	return defaultValue
}

// getBoolEnv returns boolean environment variable value or default if not set
func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

// getQoSEnv returns an MQTT QoS level (0, 1 or 2) or default if not set
func getQoSEnv(key string, defaultValue byte) byte {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil && n >= 0 && n <= 2 {
			return byte(n)
		}
	}
	return defaultValue
}

// getListEnv splits a comma separated variable, dropping empty items
func getListEnv(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}

// getMQTTBrokerURL returns MQTT broker URL with tcp:// prefix if no scheme is given.
// Supports both "localhost:1883" and "tcp://localhost:1883" formats.
func getMQTTBrokerURL() string {
	broker := getEnv("MQTT_BROKER", getEnv("MQTT_BROKER_URL", "tcp://localhost:1883"))

	if !strings.Contains(broker, "://") {
		return "tcp://" + broker
	}
	return broker
}
