package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/attribution-cli/internal/attribution"
	"github.com/sells-group/attribution-cli/internal/loader"
	"github.com/sells-group/attribution-cli/internal/store"
)

var (
	attributeInput    string
	attributeChannels string
	attributeWorkers  int
	attributeSave     bool
	attributeFormat   string
)

var attributeCmd = &cobra.Command{
	Use:   "attribute",
	Short: "Run waterfall attribution over an input bundle",
	Long:  "Loads the input bundle (local file, HTTP, or FTP), runs the attribution waterfall, and prints the report. With --save the run and its decisions are persisted.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		engineCfg, err := loadChannelConfig()
		if err != nil {
			return err
		}

		l := loader.New(loader.Options{
			Timeout:       time.Duration(cfg.Loader.TimeoutSecs) * time.Second,
			RatePerSecond: cfg.Loader.RatePerSecond,
			UserAgent:     cfg.Loader.UserAgent,
		})

		bundle, err := l.Load(ctx, attributeInput)
		if err != nil {
			return eris.Wrap(err, "load input")
		}

		workers := attributeWorkers
		if workers == 0 {
			workers = cfg.Engine.Workers
		}

		engine := attribution.NewEngine(engineCfg).
			WithWorkers(workers).
			WithProgress(func(message string, percent int) {
				fmt.Fprintf(os.Stderr, "[%3d%%] %s\n", percent, message)
			})

		var st storeHandle
		if attributeSave {
			if st, err = openRun(ctx); err != nil {
				return err
			}
			defer st.store.Close() //nolint:errcheck
		}

		report, err := engine.Run(ctx, bundle)
		if err != nil {
			if attributeSave {
				if failErr := st.store.FailRun(ctx, st.runID, err.Error()); failErr != nil {
					zap.L().Error("failed to record run failure", zap.Error(failErr))
				}
			}
			return eris.Wrap(err, "attribution run")
		}

		if attributeSave {
			if err := st.store.SaveReport(ctx, st.runID, report); err != nil {
				return eris.Wrap(err, "save report")
			}
			zap.L().Info("run saved", zap.String("run_id", st.runID))
		}

		switch attributeFormat {
		case "json":
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(report)
		case "text":
			fmt.Print(attribution.FormatReport(report))
			return nil
		default:
			return eris.Errorf("unknown output format %q (want text or json)", attributeFormat)
		}
	},
}

// loadChannelConfig resolves the channel configuration: flag, then config
// file setting, then compiled-in defaults.
func loadChannelConfig() (*attribution.Config, error) {
	path := attributeChannels
	if path == "" {
		path = cfg.Engine.ChannelConfig
	}
	if path == "" {
		return attribution.DefaultConfig(), nil
	}
	return attribution.LoadConfig(path)
}

// storeHandle pairs an open store with the run it is tracking.
type storeHandle struct {
	store store.Store
	runID string
}

func openRun(ctx context.Context) (storeHandle, error) {
	st, err := initStore(ctx)
	if err != nil {
		return storeHandle{}, err
	}
	run, err := st.CreateRun(ctx)
	if err != nil {
		st.Close() //nolint:errcheck
		return storeHandle{}, eris.Wrap(err, "create run")
	}
	return storeHandle{store: st, runID: run.ID}, nil
}

func init() {
	attributeCmd.Flags().StringVarP(&attributeInput, "input", "i", "", "input bundle: path or http(s)/ftp URL (required)")
	attributeCmd.Flags().StringVar(&attributeChannels, "channel-config", "", "YAML file overriding channel windows and confidences")
	attributeCmd.Flags().IntVar(&attributeWorkers, "workers", 0, "concurrent attribution workers (default from config)")
	attributeCmd.Flags().BoolVar(&attributeSave, "save", false, "persist the run and its decisions to the store")
	attributeCmd.Flags().StringVar(&attributeFormat, "format", "text", "output format: text or json")
	_ = attributeCmd.MarkFlagRequired("input")
	rootCmd.AddCommand(attributeCmd)
}
