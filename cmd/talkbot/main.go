package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	cli "github.com/spf13/pflag"

	"github.com/lmittmann/tint"
	log "log/slog"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	openai "github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/redis/go-redis/v9"

	"talkbot/internal/admin"
	"talkbot/internal/bot"
	"talkbot/internal/chat"
	"talkbot/internal/config"
	"talkbot/internal/ipc"
	"talkbot/internal/llm"
	"talkbot/internal/locale"
	"talkbot/internal/proxy"
	"talkbot/internal/session"
	"talkbot/internal/slots"
	"talkbot/internal/store"
	"talkbot/internal/voice"
)

var logLevelMap = map[string]log.Level{
	"debug": log.LevelDebug,
	"info":  log.LevelInfo,
	"warn":  log.LevelWarn,
	"error": log.LevelError,
}

func main() {
	envFile := cli.StringP("env", "e", ".env", "Env file path")
	proxyAddr := cli.StringP("proxy", "p", "", "Socks Proxy Address, overrides SOCKS_PROXY")
	logLevel := cli.StringP("log", "l", "", "Log level, overrides LOG_LEVEL")
	cli.Parse()

	if err := godotenv.Load(*envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
		fmt.Fprintln(os.Stderr, "Failed to load env file:", err)
	}

	cfg := config.Load()
	if *logLevel != "" {
		cfg.LogLevel = *logLevel
	}
	if *proxyAddr != "" {
		cfg.SocksProxy = *proxyAddr
	}

	log.SetDefault(log.New(tint.NewHandler(os.Stdout, &tint.Options{
		Level: logLevelMap[cfg.LogLevel],
	})))

	log.Info("Booting up")

	if err := cfg.Validate(); err != nil {
		log.Error("Invalid configuration", "err", err)
		os.Exit(1)
	}

	if err := run(cfg); err != nil {
		log.Error("Stopped", "err", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	httpClient, err := proxy.NewHTTPClient(cfg.SocksProxy, 0)
	if err != nil {
		return fmt.Errorf("proxy: %w", err)
	}
	if cfg.SocksProxy != "" {
		log.Debug("Loaded proxy", "proxy", cfg.SocksProxy)
	}

	users, err := store.NewSQLite(cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer users.Close()

	log.Debug("Opened database", "dsn", cfg.DatabaseURL)

	states, err := newStateStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer states.Close()

	tr, err := locale.New(cfg.DefaultLocale)
	if err != nil {
		return err
	}

	client, closeLLM, err := llm.New(llm.Options{
		Mode: cfg.Mode,
		API: openai.NewClient(
			option.WithAPIKey(cfg.OpenAIKey),
			option.WithHTTPClient(httpClient),
		),
		Model:              cfg.Model,
		TranscriptionModel: cfg.TranscriptionModel,
		STTBackend:         cfg.STTBackend,
		WhisperModel:       cfg.WhisperModel,
		WhisperLanguage:    "auto",
	})
	if err != nil {
		return err
	}
	defer closeLLM()

	log.Debug("Loaded model client", "model", cfg.Model, "stt", cfg.STTBackend)

	pool, err := slots.New(cfg.VoiceDir, cfg.VoiceSlots)
	if err != nil {
		return err
	}

	api, err := tgbotapi.NewBotAPIWithClient(cfg.TelegramToken, tgbotapi.APIEndpoint, httpClient)
	if err != nil {
		return fmt.Errorf("telegram: %w", err)
	}

	handler := bot.NewHandler(bot.Deps{
		Users:     users,
		States:    states,
		Translate: tr,
		Chat:      chat.NewPipeline(users, client, chat.WithTruncation(cfg.TokenThreshold, cfg.TruncateTurns)),
		Voice:     voice.NewService(pool, bot.NewTelegramFetcher(api, httpClient), client),
	})

	ctl, err := ipc.StartServer(cfg.ControlSocket, controlHandler(users, pool, handler))
	if err != nil {
		return fmt.Errorf("control socket: %w", err)
	}
	defer ctl.Close()

	if cfg.AdminAddr != "" {
		srv := admin.NewServer(cfg.AdminAddr, admin.NewHandler(users, states, pool))
		go func() {
			if err := srv.Start(); err != nil {
				log.Error("Admin server failed", "err", err)
			}
		}()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				log.Error("Admin server shutdown failed", "err", err)
			}
		}()
	}

	log.Info("Boot up - successful")

	err = bot.NewTelegram(api, handler).Run(ctx)
	if errors.Is(err, context.Canceled) {
		log.Info("Shutting down")
		return nil
	}
	return err
}

func newStateStore(ctx context.Context, cfg *config.Config) (session.Store, error) {
	if cfg.StateStore != session.StoreTypeRedis {
		return session.NewStore(cfg.StateStore)
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("redis %s: %w", cfg.RedisAddr, err)
	}

	log.Debug("Connected to redis", "addr", cfg.RedisAddr)

	return session.NewStore(session.StoreTypeRedis,
		session.WithRedisClient(rdb),
		session.WithRedisTTL(cfg.StateTTL),
	)
}

func controlHandler(users store.Store, pool *slots.Pool, h *bot.Handler) ipc.HandlerFunc {
	return func(msg ipc.ControlMessage) ipc.ControlReply {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		switch msg.Cmd {
		case ipc.CmdStatus:
			n, err := users.CountUsers(ctx)
			if err != nil {
				return ipc.ControlReply{Message: err.Error()}
			}
			return ipc.ControlReply{
				OK:      true,
				Message: fmt.Sprintf("voice slots %d/%d busy, %d users", pool.InUse(), pool.Size(), n),
			}
		case ipc.CmdReset:
			if err := h.Reset(ctx, msg.UserID); err != nil {
				return ipc.ControlReply{Message: err.Error()}
			}
			log.Info("Reset dialogue state", "user", msg.UserID)
			return ipc.ControlReply{OK: true, Message: fmt.Sprintf("state of user %d cleared", msg.UserID)}
		default:
			log.Warn("Unknown command", "cmd", msg.Cmd)
			return ipc.ControlReply{Message: "unknown command " + msg.Cmd}
		}
	}
}
