package main

import (
	"flag"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/MedCausal/DiagPipe/internal/api"
	"github.com/MedCausal/DiagPipe/internal/genai"
	"github.com/MedCausal/DiagPipe/internal/report"
	"github.com/MedCausal/DiagPipe/internal/session"
	"github.com/MedCausal/DiagPipe/internal/workflow"
	"github.com/joho/godotenv"
	"github.com/openai/openai-go"
)

func main() {
	// Initialize structured logger
	initializeLogger()

	// Load environment configuration
	config := loadEnvironmentConfig()

	// Parse command line flags
	flags := parseCommandLineFlags(config)

	// Build the generation client
	genaiOpts := buildGenAIOptions(flags)
	client, err := genai.NewClient(genaiOpts...)
	if err != nil {
		slog.Error("Failed to initialize generation client", "error", err)
		os.Exit(1)
	}

	// Wire the pipeline: executor, session manager, API server
	executor := workflow.NewExecutor(client, report.RenderCausalGraph)
	manager := session.NewManager(executor)
	server := api.NewServer(manager, api.WithAddr(*flags.apiAddr))

	slog.Info("Bootstrapping DiagPipe", "api_addr", *flags.apiAddr, "model", *flags.model)
	if err := server.Run(); err != nil {
		slog.Error("DiagPipe failed to run", "error", err)
		os.Exit(1)
	}
	slog.Info("DiagPipe exited successfully")
}

// Config holds environment configuration
type Config struct {
	OpenAIKey   string
	BaseURL     string
	Model       string
	APIAddr     string
	Temperature float64
	MaxTokens   int64
	Timeout     time.Duration
}

// Flags holds command line flag values
type Flags struct {
	openaiKey   *string
	baseURL     *string
	model       *string
	apiAddr     *string
	temperature *float64
	maxTokens   *int64
	timeout     *time.Duration
}

// initializeLogger sets up structured logging with debug level
func initializeLogger() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	slog.SetDefault(logger)
}

// loadEnvironmentConfig loads configuration from environment variables and .env file
func loadEnvironmentConfig() Config {
	if err := godotenv.Load(); err != nil {
		slog.Debug("failed to load .env file", "error", err)
	} else {
		slog.Debug("successfully loaded .env file")
	}

	config := Config{
		OpenAIKey:   os.Getenv("OPENAI_API_KEY"),
		BaseURL:     os.Getenv("OPENAI_BASE_URL"),
		Model:       os.Getenv("DIAGPIPE_MODEL"),
		APIAddr:     os.Getenv("API_ADDR"),
		Temperature: genai.DefaultTemperature,
		MaxTokens:   genai.DefaultMaxTokens,
		Timeout:     genai.DefaultTimeout,
	}

	if config.Model == "" {
		config.Model = string(openai.ChatModelGPT4o)
		slog.Debug("No DIAGPIPE_MODEL set, using default", "model", config.Model)
	}
	if config.APIAddr == "" {
		config.APIAddr = api.DefaultAddr
	}
	if v := os.Getenv("DIAGPIPE_TEMPERATURE"); v != "" {
		if t, err := strconv.ParseFloat(v, 64); err == nil {
			config.Temperature = t
		} else {
			slog.Warn("Invalid DIAGPIPE_TEMPERATURE, using default", "value", v, "error", err)
		}
	}
	if v := os.Getenv("DIAGPIPE_MAX_TOKENS"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			config.MaxTokens = n
		} else {
			slog.Warn("Invalid DIAGPIPE_MAX_TOKENS, using default", "value", v, "error", err)
		}
	}
	if v := os.Getenv("DIAGPIPE_GENERATION_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			config.Timeout = d
		} else {
			slog.Warn("Invalid DIAGPIPE_GENERATION_TIMEOUT, using default", "value", v, "error", err)
		}
	}

	return config
}

// parseCommandLineFlags parses command line flags with environment defaults
func parseCommandLineFlags(config Config) Flags {
	flags := Flags{
		openaiKey:   flag.String("openai-key", config.OpenAIKey, "OpenAI API key (overrides OPENAI_API_KEY)"),
		baseURL:     flag.String("base-url", config.BaseURL, "Generation endpoint base URL (overrides OPENAI_BASE_URL)"),
		model:       flag.String("model", config.Model, "Model or deployment name (overrides DIAGPIPE_MODEL)"),
		apiAddr:     flag.String("api-addr", config.APIAddr, "API listen address (overrides API_ADDR)"),
		temperature: flag.Float64("temperature", config.Temperature, "Sampling temperature"),
		maxTokens:   flag.Int64("max-tokens", config.MaxTokens, "Maximum response tokens"),
		timeout:     flag.Duration("generation-timeout", config.Timeout, "Per-call generation timeout"),
	}
	flag.Parse()
	return flags
}

// buildGenAIOptions assembles generation client options from resolved flags
func buildGenAIOptions(flags Flags) []genai.Option {
	opts := []genai.Option{
		genai.WithModel(openai.ChatModel(*flags.model)),
		genai.WithTemperature(*flags.temperature),
		genai.WithMaxTokens(*flags.maxTokens),
		genai.WithTimeout(*flags.timeout),
	}
	if *flags.openaiKey != "" {
		opts = append(opts, genai.WithAPIKey(*flags.openaiKey))
	}
	if *flags.baseURL != "" {
		opts = append(opts, genai.WithBaseURL(*flags.baseURL))
	}
	return opts
}
