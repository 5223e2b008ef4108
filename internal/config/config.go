package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// AppConfig содержит конфигурацию приложения
type AppConfig struct {
	ServerPort  string
	KafkaBroker string
	KafkaTopic  string
	GinMode     string
	Database    DatabaseConfig
	Logging     LoggerConfig
	PLC         PLCConfig
	Runner      RunnerConfig
	Bench       BenchConfig
}

// LoggerConfig содержит настройки логгера
type LoggerConfig struct {
	Enable     bool
	LogsDir    string
	Level      string
	SavingDays int
}

// DatabaseConfig содержит конфигурацию для подключения к базе данных
type DatabaseConfig struct {
	Host     string
	Port     string
	Username string
	Password string
	DBName   string
}

// PLCConfig содержит параметры подключения к ПЛК стенда
type PLCConfig struct {
	Host        string
	Port        string
	Timeout     time.Duration
	SlaveID     byte
	AutoConnect bool
}

// RunnerConfig задает периоды тиков движения и опроса
type RunnerConfig struct {
	MotionInterval time.Duration
	PollInterval   time.Duration
	QueueSize      int
}

// LoadConfiguration загружает конфигурацию из .env файла или переменных окружения
func LoadConfiguration() (*AppConfig, error) {
	_ = godotenv.Load()

	config := &AppConfig{
		ServerPort:  getEnv("APP_PORT", "8082"),
		KafkaBroker: getEnv("KAFKA_BROKER", "localhost:9092"),
		KafkaTopic:  getEnv("KAFKA_TOPIC", "bench_telemetry"),
		GinMode:     getEnv("GIN_MODE", "debug"),
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			Username: getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", "root"),
			DBName:   getEnv("DB_NAME", "spirometry_db"),
		},
		Logging: LoggerConfig{
			Enable:     getEnvAsBool("LOGGER_ENABLE", true),
			LogsDir:    getEnv("LOGGER_LOGS_DIR", "./logs"),
			Level:      getEnv("LOGGER_LOG_LEVEL", "DEBUG"),
			SavingDays: getEnvAsInt("LOGGER_SAVING_DAYS", 7),
		},
		PLC: PLCConfig{
			Host:        getEnv("PLC_HOST", "192.168.0.10"),
			Port:        getEnv("PLC_PORT", "502"),
			Timeout:     getEnvAsDuration("PLC_TIMEOUT_MS", time.Second),
			SlaveID:     byte(getEnvAsInt("PLC_SLAVE_ID", 1)),
			AutoConnect: getEnvAsBool("PLC_AUTO_CONNECT", false),
		},
		Runner: RunnerConfig{
			MotionInterval: getEnvAsDuration("MOTION_TICK_MS", 20*time.Millisecond),
			PollInterval:   getEnvAsDuration("POLL_TICK_MS", 40*time.Millisecond),
			QueueSize:      getEnvAsInt("TELEMETRY_QUEUE_SIZE", 256),
		},
	}

	bench, err := LoadBench(getEnv("BENCH_CONFIG_FILE", ""))
	if err != nil {
		return nil, err
	}
	config.Bench = bench

	return config, nil
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvAsInt(name string, defaultValue int) int {
	valueStr := getEnv(name, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	val, _ := strconv.ParseBool(value)
	return val
}

// getEnvAsDuration читает значение в миллисекундах.
func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	ms := getEnvAsInt(key, 0)
	if ms <= 0 {
		return defaultValue
	}
	return time.Duration(ms) * time.Millisecond
}
