package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "resume-search/docs" // Swagger docs
	"resume-search/internal/api"
	"resume-search/internal/config"
	"resume-search/internal/document"
	"resume-search/internal/extract"
	"resume-search/internal/index"
	"resume-search/internal/llm"
	"resume-search/internal/pipeline"
	"resume-search/internal/search"
	"resume-search/internal/storage"
)

// @title Resume Search API
// @version 1.0
// @description Candidate indexing and ranked skill/keyword search over extracted resume profiles

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @BasePath /api

func main() {
	cfg := config.LoadConfig()

	var store storage.Store
	if cfg.DatabaseURL != "" {
		log.Println("Connecting to database...")
		db, err := storage.NewDB(cfg.DatabaseURL)
		if err != nil {
			log.Fatal("db open:", err)
		}
		defer db.Close()
		if err := db.EnsureSchema(context.Background()); err != nil {
			log.Fatal("db schema:", err)
		}
		log.Println("Database connected successfully!")
		store = db
	} else {
		log.Println("DATABASE_URL not set, using in-memory profile store")
		store = storage.NewMemoryStore()
	}

	parser := document.NewParser()

	var fieldExtractor extract.FieldExtractor
	var skillExtractor extract.SkillExtractor
	if cfg.LLMProvider != "" && cfg.LLMProvider != "none" && cfg.LLMAPIKey != "" {
		log.Printf("Using LLM extractors (provider: %s, model: %s)", cfg.LLMProvider, cfg.LLMModel)
		svc := llm.NewService(cfg.LLMProvider, cfg.LLMAPIKey, cfg.LLMModel)
		fieldExtractor = extract.NewLLMFieldExtractor(svc, parser)
		skillExtractor = extract.NewLLMSkillExtractor(svc, parser)
	} else {
		log.Println("Using rule-based extractors")
		fieldExtractor = extract.NewRuleBasedFieldExtractor(parser)
		skillExtractor = extract.NewRuleBasedSkillExtractor(parser)
	}

	orchestrator := pipeline.NewOrchestrator(store, fieldExtractor, skillExtractor, cfg.UploadsDir)
	builder := index.NewBuilder(store)
	engine := search.NewEngine(builder, cfg.SearchLimit, cfg.SkillWeight, cfg.KeywordWeight)

	apiSrv := api.NewAPI(store, orchestrator, builder, engine)
	router := api.NewRouter(apiSrv)

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  30 * time.Second, // file uploads
		WriteTimeout: 15 * time.Minute, // LLM-backed extraction can be slow
		IdleTimeout:  120 * time.Second,
	}

	idleConnsClosed := make(chan struct{})
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			log.Println("server shutdown:", err)
		}
		close(idleConnsClosed)
	}()

	log.Printf("API server listening on :%s\n", cfg.Port)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatal(err)
	}

	<-idleConnsClosed
}
