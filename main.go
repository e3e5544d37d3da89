package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"rulesofwar/config"
	"rulesofwar/engine"
	"rulesofwar/game"
	"rulesofwar/metrics"
	"rulesofwar/script"
	"rulesofwar/storage"
)

func main() {
	configDir := flag.String("config", ".", "Directory containing rulesofwar.yaml")
	session := flag.String("session", "", "Stored session to resume")
	scriptFile := flag.String("script", "", "JSON list of inputs to play")
	save := flag.String("save", "", "Name to store the session under when done")
	flag.Parse()

	if err := config.Load(*configDir); err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	settings := config.Get()
	setupLogging(settings.LogLevel)

	if err := run(context.Background(), settings, *session, *scriptFile, *save); err != nil {
		log.Fatal().Err(err).Msg("session failed")
	}
}

func setupLogging(level string) {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.TimeOnly})
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		log.Warn().Str("level", level).Msg("unknown log level, using info")
		lvl = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(lvl)
}

func run(ctx context.Context, settings config.Settings, session, scriptFile, save string) error {
	var store *storage.Store
	if session != "" || save != "" {
		var err error
		store, err = storage.Open(settings.StoragePath, log.Logger)
		if err != nil {
			return err
		}
		defer store.Close()
	}

	collector := metrics.NewDummyCollector()
	if settings.MetricsEnabled {
		collector = metrics.NewCollector()
	}
	options := []engine.Option{
		engine.WithLogger(log.Logger),
		engine.WithMetrics(collector),
		engine.WithNotificationDuration(settings.NotificationTTL),
	}

	e, err := open(ctx, store, settings, session, options)
	if err != nil {
		return err
	}
	s := e.Summary()
	log.Info().Str("map", e.Board().Name).Int("day", s.Day).Str("team", s.Name).Int("cash", s.Cash).Msg("session ready")

	if scriptFile != "" {
		f, err := os.Open(scriptFile)
		if err != nil {
			return fmt.Errorf("failed to open script: %w", err)
		}
		inputs, err := script.Parse(f)
		f.Close()
		if err != nil {
			return err
		}
		res, err := script.Run(e, inputs)
		if err != nil {
			return err
		}
		log.Info().Int("inputs", res.Inputs).Int("rejected", res.Rejected).Int("turns", res.Turns).Msg("script finished")
		if res.Finished {
			log.Info().Strs("winners", res.Winners).Msg("game over")
		}
	}

	if save != "" {
		if err := store.Save(ctx, save, e.Export()); err != nil {
			return err
		}
	}
	if settings.MetricsEnabled {
		return writeMetrics(settings.MetricsDir, e)
	}
	return nil
}

// open resumes a stored session or starts the configured map.
func open(ctx context.Context, store *storage.Store, settings config.Settings, session string, options []engine.Option) (*engine.Engine, error) {
	if session != "" {
		sd, err := store.Load(ctx, session)
		if err != nil {
			return nil, err
		}
		return engine.Load(sd, options...)
	}

	rf, err := os.Open(settings.RulesFile)
	if err != nil {
		return nil, fmt.Errorf("failed to open rules: %w", err)
	}
	defer rf.Close()
	rules, err := game.LoadRules(rf)
	if err != nil {
		return nil, err
	}

	mf, err := os.Open(settings.MapFile)
	if err != nil {
		return nil, fmt.Errorf("failed to open map: %w", err)
	}
	defer mf.Close()
	m, err := game.LoadMap(mf)
	if err != nil {
		return nil, err
	}
	return engine.New(rules, m, nil, options...)
}

func writeMetrics(dir string, e *engine.Engine) error {
	writer, err := metrics.NewWriter(dir)
	if err != nil {
		return err
	}
	records := []metrics.TurnRecord{}
	for _, tm := range e.Turns() {
		records = append(records, metrics.TurnRecord{Session: e.Board().Name, TurnMetric: tm})
	}
	if err := writer.WriteTurnRecords(records); err != nil {
		return err
	}
	log.Info().Str("dir", writer.Dir()).Int("turns", len(records)).Msg("stored turn records")
	return nil
}
