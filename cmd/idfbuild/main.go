// Command idfbuild (re)builds the IDF dictionary's on-disk cache from the
// narrative corpus and exits. It is the "rebuild is a separate offline
// action" spec.md §5 calls for — the retrieval core only ever loads the
// cache, it never rebuilds it in-process on a serving path.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"memnon/internal/config"
	"memnon/internal/idf"
	"memnon/internal/storage"
)

func main() {
	var force bool
	flag.BoolVar(&force, "force", false, "rebuild even if an unexpired cache exists")
	flag.Parse()

	cfg, err := config.FromEnv()
	if err != nil {
		fmt.Fprintf(os.Stderr, "idfbuild: load configuration: %v\n", err)
		os.Exit(1)
	}
	setupLogging(cfg.Logging)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	store, err := storage.New(ctx, cfg.Database, cfg.Models)
	if err != nil {
		log.Fatal().Err(err).Msg("idfbuild: connect storage")
	}
	defer store.Close()

	dict := idf.New(cfg.IDF.MaxQueryTerms)

	if !force {
		if ok, err := dict.Load(cfg.IDF.CachePath, cfg.IDF.CacheTTL); err != nil {
			log.Warn().Err(err).Msg("idfbuild: existing cache unreadable, rebuilding")
		} else if ok {
			log.Info().Time("built_at", dict.BuiltAt()).Msg("idfbuild: cache still fresh, nothing to do (use -force to rebuild anyway)")
			return
		}
	}

	log.Info().Msg("idfbuild: scanning corpus")
	if err := dict.Build(ctx, store); err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			log.Fatal().Msg("idfbuild: build timed out")
		}
		log.Fatal().Err(err).Msg("idfbuild: build failed")
	}

	if err := dict.Save(cfg.IDF.CachePath); err != nil {
		log.Fatal().Err(err).Msg("idfbuild: save cache")
	}

	log.Info().Str("path", cfg.IDF.CachePath).Msg("idfbuild: done")
}

// setupLogging mirrors the teacher's log.SetFlags one-liner, adapted to
// this codebase's zerolog global logger: console-pretty or plain JSON,
// level from config, optional file sink.
func setupLogging(cfg config.LoggingConfig) {
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	if cfg.Console {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
	}
	if cfg.File != "" {
		f, err := os.OpenFile(cfg.File, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
		if err != nil {
			log.Warn().Err(err).Str("file", cfg.File).Msg("idfbuild: cannot open log file, logging to stderr only")
			return
		}
		log.Logger = log.Output(zerolog.MultiLevelWriter(log.Logger, f))
	}
}
