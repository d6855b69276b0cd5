// Package config provides configuration for the bot.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"talkbot/internal/chat"
	"talkbot/internal/ipc"
	"talkbot/internal/llm"
	"talkbot/internal/locale"
	"talkbot/internal/session"
	"talkbot/internal/slots"
)

const DefaultDatabaseURL = "file:talkbot.db?mode=rwc&_busy_timeout=5000&_journal_mode=WAL"

type Config struct {
	// Secrets
	TelegramToken string
	OpenAIKey     string

	// Models
	Mode               string
	Model              string
	TranscriptionModel string
	STTBackend         string
	WhisperModel       string

	// Storage
	DatabaseURL string
	VoiceDir    string
	VoiceSlots  int

	// Transcript budget
	TokenThreshold int64
	TruncateTurns  int

	// Dialogue state
	StateStore    session.StoreType
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	StateTTL      time.Duration

	// Network
	SocksProxy    string
	AdminAddr     string
	ControlSocket string

	DefaultLocale string
	LogLevel      string
}

// Load reads configuration from environment variables.
func Load() *Config {
	return &Config{
		TelegramToken:      os.Getenv("TELEGRAM_BOT_TOKEN"),
		OpenAIKey:          os.Getenv("OPENAI_API_KEY"),
		Mode:               os.Getenv("TALKBOT_MODE"),
		Model:              getEnv("OPENAI_MODEL", string(llm.DefaultChatModel)),
		TranscriptionModel: getEnv("TRANSCRIPTION_MODEL", string(llm.DefaultTranscriptionModel)),
		STTBackend:         getEnv("STT_BACKEND", llm.BackendOpenAI),
		WhisperModel:       getEnv("WHISPER_MODEL", "models/ggml-base.bin"),
		DatabaseURL:        getEnv("DATABASE_URL", DefaultDatabaseURL),
		VoiceDir:           getEnv("VOICE_DIR", "voice"),
		VoiceSlots:         getEnvInt("VOICE_SLOTS", slots.DefaultSize),
		TokenThreshold:     getEnvInt64("TOKEN_THRESHOLD", chat.DefaultTokenThreshold),
		TruncateTurns:      getEnvInt("TRUNCATE_TURNS", chat.DefaultDropCount),
		StateStore:         session.StoreType(getEnv("STATE_STORE", string(session.StoreTypeMemory))),
		RedisAddr:          getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword:      os.Getenv("REDIS_PASSWORD"),
		RedisDB:            getEnvInt("REDIS_DB", 0),
		StateTTL:           time.Duration(getEnvInt("STATE_TTL_HOURS", 24*7)) * time.Hour,
		SocksProxy:         os.Getenv("SOCKS_PROXY"),
		AdminAddr:          os.Getenv("ADMIN_ADDR"),
		ControlSocket:      getEnv("CONTROL_SOCKET", ipc.DefaultSocketPath),
		DefaultLocale:      getEnv("DEFAULT_LOCALE", locale.English),
		LogLevel:           getEnv("LOG_LEVEL", "info"),
	}
}

// Mock reports whether remote model calls are replaced by canned replies.
func (c *Config) Mock() bool {
	return c.Mode == llm.ModeMock
}

// Validate reports every missing or out-of-range setting at once.
func (c *Config) Validate() error {
	var errs []error
	if c.TelegramToken == "" {
		errs = append(errs, errors.New("TELEGRAM_BOT_TOKEN not set"))
	}
	if c.OpenAIKey == "" && !c.Mock() {
		errs = append(errs, errors.New("OPENAI_API_KEY not set"))
	}
	if c.VoiceSlots <= 0 {
		errs = append(errs, fmt.Errorf("VOICE_SLOTS must be positive, got %d", c.VoiceSlots))
	}
	if c.TokenThreshold <= 0 {
		errs = append(errs, fmt.Errorf("TOKEN_THRESHOLD must be positive, got %d", c.TokenThreshold))
	}
	if c.TruncateTurns <= 0 {
		errs = append(errs, fmt.Errorf("TRUNCATE_TURNS must be positive, got %d", c.TruncateTurns))
	}
	switch c.StateStore {
	case session.StoreTypeMemory, session.StoreTypeRedis:
	default:
		errs = append(errs, fmt.Errorf("STATE_STORE %q: %w", c.StateStore, session.ErrInvalidStoreType))
	}
	switch c.STTBackend {
	case llm.BackendOpenAI, llm.BackendWhisper:
	default:
		errs = append(errs, fmt.Errorf("unknown STT_BACKEND %q", c.STTBackend))
	}
	return errors.Join(errs...)
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if intVal, err := strconv.Atoi(val); err == nil {
			return intVal
		}
	}
	return defaultVal
}

func getEnvInt64(key string, defaultVal int64) int64 {
	if val := os.Getenv(key); val != "" {
		if intVal, err := strconv.ParseInt(val, 10, 64); err == nil {
			return intVal
		}
	}
	return defaultVal
}
