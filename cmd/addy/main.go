package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/afero"
	"go.uber.org/zap"

	"github.com/addy-assistant/addy/internal/config"
	"github.com/addy-assistant/addy/internal/desktop"
	"github.com/addy-assistant/addy/internal/dispatch"
	"github.com/addy-assistant/addy/internal/llm"
	"github.com/addy-assistant/addy/internal/memory"
	"github.com/addy-assistant/addy/internal/nlp"
	"github.com/addy-assistant/addy/internal/speech"
	"github.com/addy-assistant/addy/internal/tools"
	"github.com/addy-assistant/addy/internal/transport"
)

func main() {
	// .env is optional, real environment variables win either way
	_ = godotenv.Load()

	logger, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()
	log := logger.Sugar()

	log.Info("🚀 Starting Addy assistant core...")

	cfg := config.Load()
	log.Infow("📋 configuration loaded",
		"service", cfg.ServiceName, "nlp_engine", cfg.NLPEngine, "nats", cfg.NatsURL)

	// Conversation memory; the assistant keeps working without Redis.
	var mem *memory.Manager
	store, err := memory.NewRedisStore(cfg.RedisURL, cfg.MemoryTTL)
	if err != nil {
		log.Warnw("⚠️ Redis unavailable, conversation memory disabled", "error", err)
	} else {
		mem = memory.NewManager(store, log)
		defer mem.Close()
		log.Info("💾 Redis conversation memory ready")
	}

	// LLM backend, only required for the llm engine; the chat fallback and
	// translation use it opportunistically when configured.
	var llmService llm.Service
	if cfg.LLM.APIKey != "" {
		llmService, err = llm.New(cfg.LLM, log)
		if err != nil {
			log.Fatalw("❌ LLM backend init failed", "error", err)
		}
		log.Infow("🤖 LLM backend ready", "type", cfg.LLM.APIType, "model", cfg.LLM.Model)
	} else if cfg.NLPEngine == nlp.EngineLLM {
		log.Warn("⚠️ llm engine requested without LLM_API_KEY, falling back to rules")
	}

	conn, err := transport.Connect(cfg, log)
	if err != nil {
		log.Fatalw("❌ NATS connection failed", "error", err)
	}
	sink := speech.NewNATSSink(conn, cfg.SpeechSubject, log)

	registry := tools.NewRegistry(log)
	registerTools(cfg, registry, llmService, mem, sink, log)

	rules := nlp.NewRuleEngine(log)
	parser := nlp.NewParser(cfg.NLPEngine, llmService, rules, log)
	dispatcher := dispatch.New(registry, sink, log)

	nt := transport.NewNATSTransport(conn, cfg, parser, dispatcher, mem, log)
	defer nt.Close()

	// Hand the catalog to backends that can take one.
	if aware, ok := llmService.(llm.ToolAware); ok {
		aware.SetToolCatalog(registry.Catalog())
		log.Infow("🧰 tool catalog handed to LLM backend", "tools", len(registry.SupportedIntents()))
	}

	if err := nt.Start(); err != nil {
		log.Fatalw("❌ NATS transport start failed", "error", err)
	}
	log.Infow("✅ Addy is listening", "subject", cfg.UtteranceSubject)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	nt.OnExit(func() {
		// let the goodbye line flush before the process dies
		time.Sleep(200 * time.Millisecond)
		sigChan <- syscall.SIGTERM
	})

	sig := <-sigChan
	log.Infow("🛑 shutting down", "signal", sig)
	log.Info("👋 Addy stopped")
}

func registerTools(cfg *config.Config, registry *tools.Registry, llmService llm.Service, mem *memory.Manager, sink speech.Sink, log *zap.SugaredLogger) {
	ctrl := desktop.NewExecController(cfg.ScreenshotDir, log)

	assistant := tools.NewAssistantTool(ctrl, llmService, cfg.SearchURLTemplate, log, sink)
	if mem != nil {
		assistant.SetHistoryProvider(func(ctx context.Context) []llm.Turn {
			return mem.History(ctx, memory.SessionFromContext(ctx))
		})
	}

	var calendarStore tools.EventStore = tools.NewMemEventStore()
	if client := redisClient(cfg.RedisURL, log); client != nil {
		calendarStore = tools.NewRedisEventStore(client)
	}

	all := []tools.Handler{
		assistant,
		tools.NewDesktopTool(ctrl, log, sink),
		tools.NewFileTool(afero.NewOsFs(), "", log, sink),
		tools.NewSystemTool(log, sink),
		tools.NewCalculatorTool(log, sink),
		tools.NewUnitConversionTool(log, sink),
		tools.NewWeatherTool(cfg.Weather, log, sink),
		tools.NewEmailTool(cfg.Email, log, sink),
		tools.NewCalendarTool(calendarStore, log, sink),
	}
	for _, h := range all {
		if enabled, ok := cfg.ToolEnabled[h.Name()]; ok && !enabled {
			h.SetEnabled(false)
		}
		registry.Register(h)
	}
	log.Infow("🔧 tools registered", "count", len(all), "intents", len(registry.SupportedIntents()))
}

// redisClient returns a connected client for the calendar store, or nil when
// Redis is unreachable so the in-memory store takes over.
func redisClient(redisURL string, log *zap.SugaredLogger) *redis.Client {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		log.Warnw("⚠️ bad redis url, calendar falls back to memory", "error", err)
		return nil
	}
	client := redis.NewClient(opt)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		log.Warnw("⚠️ redis unreachable, calendar falls back to memory", "error", err)
		return nil
	}
	return client
}
