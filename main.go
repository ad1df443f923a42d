package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/caarlos0/env/v9"
	"github.com/joho/godotenv"

	"github.com/dskvich/groq-telegram-bot/pkg/api"
	"github.com/dskvich/groq-telegram-bot/pkg/auth"
	"github.com/dskvich/groq-telegram-bot/pkg/domain"
	"github.com/dskvich/groq-telegram-bot/pkg/logger"
	"github.com/dskvich/groq-telegram-bot/pkg/openai"
	"github.com/dskvich/groq-telegram-bot/pkg/repository"
	"github.com/dskvich/groq-telegram-bot/pkg/services"
	"github.com/dskvich/groq-telegram-bot/pkg/telegram"
	"github.com/dskvich/groq-telegram-bot/pkg/workers"
)

const defaultSystemPrompt = "You are a helpful assistant inside a Telegram chat. " +
	"You can see images, quoted messages, and recent chat context. Use that context when replying."

type Config struct {
	TelegramBotToken               string  `env:"TELEGRAM_BOT_TOKEN,required"`
	TelegramAllowedChatIDs         []int64 `env:"TELEGRAM_ALLOWED_CHAT_IDS" envSeparator:" "`
	TelegramUpdateListenerPoolSize int     `env:"TELEGRAM_UPDATE_LISTENER_POOL_SIZE" envDefault:"10"`

	LLMAPIKey         string        `env:"LLM_API_KEY,required"`
	LLMBaseURL        string        `env:"LLM_BASE_URL" envDefault:"https://api.groq.com/openai/v1"`
	LLMModel          string        `env:"LLM_MODEL" envDefault:"meta-llama/llama-4-scout-17b-16e-instruct"`
	LLMTemperature    float32       `env:"LLM_TEMPERATURE" envDefault:"0.6"`
	LLMTimeout        time.Duration `env:"LLM_TIMEOUT" envDefault:"60s"`
	LLMSupportsImages bool          `env:"LLM_SUPPORTS_IMAGES" envDefault:"true"`

	SystemPrompt  string                 `env:"SYSTEM_PROMPT"`
	QuoteTemplate services.QuoteTemplate `env:"QUOTE_TEMPLATE" envDefault:"context"`
	HistoryWindow int                    `env:"HISTORY_WINDOW" envDefault:"10"`
	HistoryTTL    time.Duration          `env:"HISTORY_TTL" envDefault:"0s"`

	RenderMarkdown bool   `env:"RENDER_MARKDOWN" envDefault:"true"`
	HTTPAddr       string `env:"HTTP_ADDR"`

	LogLevel   slog.Level `env:"LOG_LEVEL" envDefault:"DEBUG"`
	LogNoColor bool       `env:"LOG_NO_COLOR"`
}

func main() {
	slog.SetDefault(slog.New(logger.NewHandler(os.Stderr, logger.DefaultOptions)))

	if err := runMain(); err != nil {
		slog.Error("shutting down due to error", logger.Err(err))
		os.Exit(1)
	}
	slog.Info("shutdown complete")
}

func runMain() error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("loading .env file: %w", err)
	}

	cfg, err := loadConfig(env.Options{})
	if err != nil {
		return err
	}

	slog.SetDefault(slog.New(logger.NewHandler(os.Stderr, &logger.Options{
		Level:       cfg.LogLevel,
		TimeFormat:  logger.DefaultOptions.TimeFormat,
		ShortSource: true,
		NoColor:     cfg.LogNoColor,
	})))

	workerGroup, err := setupWorkers(cfg)
	if err != nil {
		return err
	}

	ctx, cancelFn := context.WithCancel(context.Background())
	defer cancelFn()

	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)
		select {
		case s := <-sigCh:
			slog.Info("shutting down due to signal", "signal", s.String())
			cancelFn()
		case <-ctx.Done():
		}
	}()

	return workerGroup.Start(ctx)
}

func loadConfig(opts env.Options) (Config, error) {
	cfg := Config{}
	if err := env.ParseWithOptions(&cfg, opts); err != nil {
		return Config{}, fmt.Errorf("parsing env config: %w", err)
	}

	if err := cfg.QuoteTemplate.Validate(); err != nil {
		return Config{}, fmt.Errorf("validating env config: %w", err)
	}
	if cfg.SystemPrompt == "" {
		cfg.SystemPrompt = defaultSystemPrompt
	}

	return cfg, nil
}

func setupWorkers(cfg Config) (workers.Group, error) {
	var worker workers.Worker
	var workerGroup workers.Group

	telegramClient, err := telegram.NewClient(cfg.TelegramBotToken, cfg.RenderMarkdown)
	if err != nil {
		return nil, fmt.Errorf("creating telegram client: %w", err)
	}
	authenticator := auth.NewAuthenticator(cfg.TelegramAllowedChatIDs)

	llmClient, err := openai.NewClient(openai.Config{
		Token:       cfg.LLMAPIKey,
		BaseURL:     cfg.LLMBaseURL,
		Model:       cfg.LLMModel,
		Temperature: cfg.LLMTemperature,
		Timeout:     cfg.LLMTimeout,
	})
	if err != nil {
		return nil, fmt.Errorf("creating llm client: %w", err)
	}

	chatRepository := repository.NewChatRepository(cfg.SystemPrompt, cfg.HistoryWindow, cfg.HistoryTTL)

	responseCh := make(chan domain.Response)

	assembler := services.NewContentAssembler(
		telegramClient,
		cfg.QuoteTemplate,
		cfg.LLMSupportsImages,
	)

	turnService := services.NewTurnService(
		chatRepository,
		assembler,
		llmClient,
		telegramClient,
		telegramClient.Self().UserName,
		cfg.LLMSupportsImages,
		responseCh,
	)

	chatService := services.NewChatService(
		chatRepository,
		responseCh,
	)

	handler := telegram.NewHandler(
		turnService,
		chatService,
		telegramClient.Self(),
	)

	if worker, err = workers.
		NewTelegramUpdateListener(
			telegramClient,
			authenticator,
			handler,
			responseCh,
			cfg.TelegramUpdateListenerPoolSize,
		); err == nil {
		workerGroup = append(workerGroup, worker)
	} else {
		return nil, err
	}

	if cfg.HTTPAddr != "" {
		workerGroup = append(workerGroup, workers.NewHTTPServer(cfg.HTTPAddr, api.NewRouter(llmClient)))
	}

	return workerGroup, nil
}
