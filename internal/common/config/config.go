package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/movstream/backend/internal/common/constants"
	commonerrors "github.com/movstream/backend/internal/common/errors"
)

type Config struct {
	HTTPPort    string
	DatabaseURL string
	JWTSecret   string

	RequestTimeout time.Duration

	WebSocketWriteWait   time.Duration
	WebSocketPongWait    time.Duration
	WebSocketPingPeriod  time.Duration
	WebSocketMaxMsgSize  int64
	WebSocketSendBufSize int

	EmailFrom       string
	SMTPAddr        string
	SMTPUser        string
	SMTPPassword    string
	EmailBatchSize  int
	EmailBatchPause time.Duration
}

func Load() (Config, error) {
	jwtSecret, err := mustEnv("JWT_SECRET")
	if err != nil {
		return Config{}, err
	}

	if len(jwtSecret) < constants.JWTSecretMinLength {
		return Config{}, fmt.Errorf("%w: got %d bytes", commonerrors.ErrInvalidJWTSecret, len(jwtSecret))
	}

	databaseURL, err := mustEnv("DATABASE_URL")
	if err != nil {
		return Config{}, err
	}

	return Config{
		HTTPPort:    getEnv("HTTP_PORT", constants.DefaultHTTPPort),
		DatabaseURL: databaseURL,
		JWTSecret:   jwtSecret,

		RequestTimeout: getDurationEnv("REQUEST_TIMEOUT", constants.DefaultRequestTimeout),

		WebSocketWriteWait:   getDurationEnv("WS_WRITE_WAIT", constants.WebSocketWriteWait),
		WebSocketPongWait:    getDurationEnv("WS_PONG_WAIT", constants.WebSocketPongWait),
		WebSocketPingPeriod:  getDurationEnv("WS_PING_PERIOD", constants.WebSocketPingPeriod),
		WebSocketMaxMsgSize:  getInt64Env("WS_MAX_MSG_SIZE", constants.WebSocketMaxMsgSize),
		WebSocketSendBufSize: getIntEnv("WS_SEND_BUF_SIZE", constants.WebSocketSendBufSize),

		EmailFrom:       getEnv("EMAIL_FROM", "noreply@movstream.local"),
		SMTPAddr:        getEnv("SMTP_ADDR", "localhost:25"),
		SMTPUser:        getEnv("SMTP_USER", ""),
		SMTPPassword:    getEnv("SMTP_PASSWORD", ""),
		EmailBatchSize:  getIntEnv("EMAIL_BATCH_SIZE", constants.EmailBatchSize),
		EmailBatchPause: getDurationEnv("EMAIL_BATCH_PAUSE", constants.EmailBatchPause),
	}, nil
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok {
		return v
	}
	return fallback
}

func mustEnv(key string) (string, error) {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return "", fmt.Errorf("%w: %s", commonerrors.ErrMissingRequiredEnv, key)
	}
	return v, nil
}

func getDurationEnv(key string, fallback time.Duration) time.Duration {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return d
}

func getIntEnv(key string, fallback int) int {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return fallback
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return i
}

func getInt64Env(key string, fallback int64) int64 {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return fallback
	}
	i, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return fallback
	}
	return i
}
