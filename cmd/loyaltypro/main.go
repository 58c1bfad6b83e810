// loyaltypro is a single-tenant loyalty-program admin console service:
// business owners register, log in, record point-earning transactions
// for customers, and query aggregated analytics and AI insights.
package main

import (
	"crypto/rand"
	"flag"
	"fmt"
	"log"

	"github.com/joho/godotenv"

	"github.com/loyaltypro/loyaltypro/internal/api"
	"github.com/loyaltypro/loyaltypro/internal/config"
	"github.com/loyaltypro/loyaltypro/internal/insights"
	"github.com/loyaltypro/loyaltypro/internal/store"
	"github.com/loyaltypro/loyaltypro/pkg/httpcore"
)

func main() {
	configPath := flag.String("config", "loyaltypro.yaml", "Path to YAML config file")
	port := flag.Int("port", 0, "HTTP listen port (overrides config)")
	flag.Parse()

	// Secrets (insights API key) come from the environment; a local
	// .env is honored when present.
	godotenv.Load()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	if *port != 0 {
		cfg.Server.Port = *port
	}

	srv := httpcore.New(&httpcore.Config{
		Addr:      fmt.Sprintf(":%d", cfg.Server.Port),
		LogLevel:  cfg.Logging.Level,
		LogFormat: cfg.Logging.Format,
		Name:      "loyaltypro",
	})

	memStore := store.New()
	if cfg.Data.File != "" {
		if err := memStore.LoadFile(cfg.Data.File); err != nil {
			log.Fatalf("failed to load snapshot: %v", err)
		}
		srv.Logger.Info("loaded snapshot",
			"file", cfg.Data.File,
			"accounts", memStore.Accounts.Count(),
		)
	}

	secret := []byte(cfg.Auth.TokenSecret)
	if len(secret) == 0 {
		secret = make([]byte, 32)
		if _, err := rand.Read(secret); err != nil {
			log.Fatalf("failed to generate token secret: %v", err)
		}
		srv.Logger.Warn("auth.token_secret not set; sessions will not survive restarts")
	}

	gen := insights.NewGeminiClient(
		cfg.Insights.Endpoint,
		cfg.Insights.Model,
		cfg.APIKey(),
		cfg.Insights.Timeout.Std(),
	)

	handler := api.NewHandler(memStore, srv.Logger, gen, api.Options{
		TokenSecret: secret,
		TokenTTL:    cfg.Auth.TokenTTL.Std(),
		DataFile:    cfg.Data.File,
		OpsToken:    cfg.Server.OpsToken,
	})
	handler.Routes(srv.Router)

	srv.Logger.Info("loyaltypro ready", "port", cfg.Server.Port)

	if err := srv.Serve(); err != nil {
		log.Fatalf("server error: %v", err)
	}
}
