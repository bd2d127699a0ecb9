// Command artm-train is the CLI harness around internal/artm/master: it
// loads a MasterModelConfig, wires the registered regularizers/scores, and
// dispatches one of the training-engine operations against a directory of
// batch files.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/artm-core/artm/internal/artm/batch"
	"github.com/artm-core/artm/internal/artm/config"
	"github.com/artm-core/artm/internal/artm/logging"
	"github.com/artm-core/artm/internal/artm/master"
	"github.com/artm-core/artm/internal/artm/regularize"
	"github.com/artm-core/artm/internal/artm/report"
	"github.com/artm-core/artm/internal/artm/score"
	"github.com/artm-core/artm/internal/artm/store"
	"github.com/artm-core/artm/internal/artm/token"
)

const version = "0.1.0"

// flagSet wraps flag.FlagSet with the shared set of options every
// subcommand accepts; unused fields for a given subcommand are ignored.
type flagSet struct {
	*flag.FlagSet
	configPath string
	batchDir   string
	dictPath   string
	modelPath  string
	passes     int
}

func newFlagSet(name string) *flagSet {
	return &flagSet{FlagSet: flag.NewFlagSet(name, flag.ExitOnError)}
}

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		fmt.Fprintln(os.Stderr, "interrupt received, shutting down...")
		cancel()
	}()

	if err := run(ctx, os.Args[1:]); err != nil {
		log.Fatalf("artm-train: %v", err)
	}
}

func run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: artm-train <init-dictionary|fit-offline|fit-online|transform|print-scores> [flags]")
	}

	cmd, rest := args[0], args[1:]
	fs := newFlagSet(cmd)
	fs.StringVar(&fs.configPath, "config", "artm.yaml", "path to MasterModelConfig YAML")
	fs.StringVar(&fs.batchDir, "batches", "", "directory of batch files (one token-major .batch per file)")
	fs.StringVar(&fs.dictPath, "dictionary", "", "dictionary file path")
	fs.StringVar(&fs.modelPath, "model", "", "topic model (Φ) file path")
	fs.IntVar(&fs.passes, "passes", 1, "num_collection_passes for fit-offline")
	if err := fs.Parse(rest); err != nil {
		return err
	}

	logger := logging.New(logging.DefaultConfig())

	cfg, err := loadOrDefaultConfig(fs.configPath)
	if err != nil {
		return err
	}

	switch cmd {
	case "init-dictionary":
		return cmdInitDictionary(fs)
	case "fit-offline":
		return cmdFitOffline(cfg, logger, fs)
	case "fit-online":
		return cmdFitOnline(cfg, logger, fs)
	case "transform":
		return cmdTransform(cfg, logger, fs)
	case "print-scores":
		return cmdPrintScores(cfg, logger, fs)
	default:
		return fmt.Errorf("unknown command %q", cmd)
	}
}

func loadOrDefaultConfig(path string) (config.MasterModelConfig, error) {
	if _, err := os.Stat(path); err != nil {
		return config.Default(), nil
	}
	return config.Load(path)
}

func loadBatches(dir string) ([]*batch.Batch, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read batch dir %s: %w", dir, err)
	}
	var batches []*batch.Batch
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".batch") {
			continue
		}
		b, err := store.LoadBatch(filepath.Join(dir, e.Name()))
		if err != nil {
			return nil, err
		}
		batches = append(batches, b)
	}
	return batches, nil
}

func cmdInitDictionary(fs *flagSet) error {
	batches, err := loadBatches(fs.batchDir)
	if err != nil {
		return err
	}
	dict := token.NewDictionary("vocab")
	sources := make([]token.GatherSource, len(batches))
	for i, b := range batches {
		sources[i] = b
	}
	dict.Gather(sources...)
	if err := store.SaveDictionary(fs.dictPath, dict); err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "dictionary written: %s (%d entries)\n", fs.dictPath, len(dict.Entries))
	return nil
}

func buildMaster(cfg config.MasterModelConfig, logger *logging.Logger) *master.Master {
	return master.New(cfg, master.Options{
		Logger: logger,
		PhiRegularizers: []regularize.PhiRegularizer{
			regularize.SmoothSparsePhi{Tau: 0},
		},
	})
}

func registerScores(m *master.Master) {
	m.Scores().Register(score.Perplexity{})
	m.Scores().Register(score.SparsityPhi{})
	m.Scores().Register(score.ItemsProcessed{})
}

func cmdFitOffline(cfg config.MasterModelConfig, logger *logging.Logger, fs *flagSet) error {
	dict, err := store.LoadDictionary(fs.dictPath)
	if err != nil {
		return err
	}
	batches, err := loadBatches(fs.batchDir)
	if err != nil {
		return err
	}

	m := buildMaster(cfg, logger)
	registerScores(m)
	if err := m.InitializeModel(dict, cfg.TopicNames, cfg.Seed); err != nil {
		return err
	}
	if err := m.FitOffline(batches, fs.passes); err != nil {
		return err
	}

	phi, err := m.GetTopicModel("", master.ProjectionArgs{})
	if err != nil {
		return err
	}
	if err := store.SaveTopicModel(fs.modelPath, phi); err != nil {
		return err
	}
	return printSnapshot(m)
}

func cmdFitOnline(cfg config.MasterModelConfig, logger *logging.Logger, fs *flagSet) error {
	dict, err := store.LoadDictionary(fs.dictPath)
	if err != nil {
		return err
	}
	batches, err := loadBatches(fs.batchDir)
	if err != nil {
		return err
	}

	m := buildMaster(cfg, logger)
	registerScores(m)
	if err := m.InitializeModel(dict, cfg.TopicNames, cfg.Seed); err != nil {
		return err
	}

	updateAfter := []int{len(batches)}
	applyWeight := []float64{1.0}
	decayWeight := []float64{0.0}
	if _, err := m.FitOnline(batches, updateAfter, applyWeight, decayWeight, false); err != nil {
		return err
	}

	phi, err := m.GetTopicModel("", master.ProjectionArgs{})
	if err != nil {
		return err
	}
	if err := store.SaveTopicModel(fs.modelPath, phi); err != nil {
		return err
	}
	return printSnapshot(m)
}

func cmdTransform(cfg config.MasterModelConfig, logger *logging.Logger, fs *flagSet) error {
	phi, err := store.LoadTopicModel(fs.modelPath)
	if err != nil {
		return err
	}
	batches, err := loadBatches(fs.batchDir)
	if err != nil {
		return err
	}

	m := buildMaster(cfg, logger)
	if err := m.OverwriteModel(cfg.PwtName, phi); err != nil {
		return err
	}

	th, err := m.Transform(batches)
	if err != nil {
		return err
	}
	for i := 0; i < th.ItemSize(); i++ {
		fmt.Printf("%s\t%s\t%v\n", th.ItemID(i), th.ItemTitle(i), th.Row(i))
	}
	return nil
}

func cmdPrintScores(cfg config.MasterModelConfig, logger *logging.Logger, fs *flagSet) error {
	phi, err := store.LoadTopicModel(fs.modelPath)
	if err != nil {
		return err
	}
	m := buildMaster(cfg, logger)
	registerScores(m)
	if err := m.OverwriteModel(cfg.PwtName, phi); err != nil {
		return err
	}
	return printSnapshot(m)
}

func printSnapshot(m *master.Master) error {
	info := m.GetMasterComponentInfo()
	snap := report.Snapshot{
		NumProcessors:  info.NumProcessors,
		ItemsProcessed: info.ItemsProcessed,
		Scores:         make(map[string]any),
	}
	for _, name := range []string{"Perplexity", "SparsityPhi", "ItemsProcessed"} {
		if v, err := m.GetScore(name); err == nil {
			snap.Scores[name] = v
		}
	}
	out, err := report.Render(report.DefaultTemplate, snap)
	if err != nil {
		return err
	}
	fmt.Print(out)
	return nil
}
