package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"time"

	"ewintr.nl/tubemap/feed"
	"ewintr.nl/tubemap/handler"
	"ewintr.nl/tubemap/pipeline"
	"ewintr.nl/tubemap/storage"
	"github.com/google/uuid"
	"golang.org/x/exp/slog"
	"google.golang.org/api/option"
	"google.golang.org/api/youtube/v3"
)

func main() {
	ctx := context.Background()
	logger := slog.New(slog.NewTextHandler(os.Stderr))

	postgres, err := storage.NewPostgres(storage.PostgresInfo{
		Host:     getParam("POSTGRES_HOST", "localhost"),
		Port:     getParam("POSTGRES_PORT", "5432"),
		User:     getParam("POSTGRES_USER", "tubemap"),
		Password: getParam("POSTGRES_PASSWORD", "tubemap"),
		Database: getParam("POSTGRES_DB", "tubemap"),
	})
	if err != nil {
		logger.Error("unable to connect to postgres", err)
		os.Exit(1)
	}
	mindMapRepo := storage.NewPostgresMindMapRepository(postgres)
	repos := func() (storage.MindMapRepository, storage.AccountRepository, error) {
		// repositories are cheap; every background run gets its own pair so
		// no run depends on the handle that enqueued it
		return storage.NewPostgresMindMapRepository(postgres), storage.NewPostgresAccountRepository(postgres), nil
	}

	ytClient, err := youtube.NewService(ctx, option.WithAPIKey(getParam("YOUTUBE_API_KEY", "")))
	if err != nil {
		logger.Error("unable to create youtube service", err)
		os.Exit(1)
	}
	subtitles := pipeline.NewYoutubeSubtitles(ytClient)
	metadata := pipeline.NewOEmbed(logger)

	generator := pipeline.NewOpenAIGenerator(pipeline.GeneratorConfig{
		APIKey:          getParam("OPENAI_API_KEY", ""),
		DefaultModel:    getParam("OPENAI_MODEL", "gpt-4o"),
		AvailableModels: strings.Split(getParam("OPENAI_AVAILABLE_MODELS", "gpt-4o,gpt-4o-mini"), ","),
	}, logger)

	var vectors storage.VectorRepository
	if host := getParam("WEAVIATE_HOST", ""); host != "" {
		weaviate, err := storage.NewWeaviate(host, getParam("WEAVIATE_APIKEY", ""), getParam("OPENAI_API_KEY", ""))
		if err != nil {
			logger.Error("unable to create weaviate client", err)
			os.Exit(1)
		}
		vectors = weaviate
	}

	dispatcher := pipeline.NewGoDispatcher()
	pl := pipeline.NewPipeline(repos, metadata, subtitles, generator, vectors, logger)

	if endpoint := getParam("MINIFLUX_ENDPOINT", ""); endpoint != "" {
		watchInterval, err := time.ParseDuration(getParam("WATCH_INTERVAL", "1m"))
		if err != nil {
			logger.Error("unable to parse watch interval", err)
			os.Exit(1)
		}
		watchUser, err := uuid.Parse(getParam("WATCH_USER_ID", ""))
		if err != nil {
			logger.Error("unable to parse watch user id", err)
			os.Exit(1)
		}
		mflx := feed.NewMiniflux(feed.MinifluxInfo{
			Endpoint: endpoint,
			ApiKey:   getParam("MINIFLUX_APIKEY", ""),
		})
		watcher := feed.NewWatcher(mflx, mindMapRepo, pl, dispatcher, watchUser, watchInterval, 3, "en", logger)
		go watcher.Run()
		logger.Info("feed watcher started")
	}

	mindMapAPI := handler.NewMindMapAPI(mindMapRepo, pl, dispatcher, logger)
	port := getParam("API_PORT", "8080")
	go http.ListenAndServe(fmt.Sprintf(":%s", port), handler.NewServer(mindMapAPI, logger))
	logger.Info("http server started", slog.String("port", port))

	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt)
	<-done

	logger.Info("service stopped")
}

func getParam(param, def string) string {
	if val, ok := os.LookupEnv(param); ok {
		return val
	}
	return def
}
