package spirobench

import (
	"os"
	"strconv"
)

// Config хранит модель конфигурации клиента стенда
type Config struct {
	IP        string
	Port      uint16
	TimeoutMs int32
	SlaveID   byte
	LogLevel  string
}

// Load загружает конфигурацию из переменных окружения
func Load() *Config {
	ip := os.Getenv("BENCH_PLC_IP")
	if ip == "" {
		ip = "192.168.0.10"
	}

	portStr := os.Getenv("BENCH_PLC_PORT")
	port, err := strconv.ParseUint(portStr, 10, 16)
	if err != nil || port == 0 {
		port = 502
	}

	timeoutStr := os.Getenv("BENCH_PLC_TIMEOUT")
	timeout, err := strconv.ParseInt(timeoutStr, 10, 32)
	if err != nil || timeout <= 0 {
		timeout = 2000
	}

	slaveStr := os.Getenv("BENCH_PLC_SLAVE")
	slave, err := strconv.ParseUint(slaveStr, 10, 8)
	if err != nil || slave == 0 {
		slave = 1
	}

	logLevel := os.Getenv("LOG_LEVEL")
	if logLevel == "" {
		logLevel = "info"
	}

	return &Config{
		IP:        ip,
		Port:      uint16(port),
		TimeoutMs: int32(timeout),
		SlaveID:   byte(slave),
		LogLevel:  logLevel,
	}
}
