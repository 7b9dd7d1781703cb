package commands

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/NINAnor/birdnetfs/config"
	"github.com/NINAnor/birdnetfs/logging"
	"github.com/NINAnor/birdnetfs/metrics"
	"github.com/NINAnor/birdnetfs/retry"
	"github.com/NINAnor/birdnetfs/storage"
)

// env is what every stage command needs: config, a run-scoped logger and
// the connected corpus store.
type env struct {
	cfg   *config.Root
	log   *logrus.Entry
	store storage.Store
}

func setup(cmd *cobra.Command) (*env, error) {
	c, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	if tolerateFailures {
		c.TolerateFailures = true
	}

	logger, err := logging.NewWithWriter(logging.Config{
		Level:  c.Log.Level,
		Format: c.Log.Format,
		File:   c.Log.File,
	}, cmd.ErrOrStderr())
	if err != nil {
		return nil, err
	}
	log := logger.WithFields(logrus.Fields{
		"run_id":  uuid.NewString(),
		"command": cmd.Name(),
	})

	store, err := storage.Connect(cmd.Context(), c.ConnectionString, retry.Policy{
		Attempts: c.Connect.Attempts,
		Delay:    c.Connect.Delay,
		MaxDelay: c.Connect.MaxDelay,
	}, log)
	if err != nil {
		return nil, err
	}
	return &env{cfg: c, log: log, store: store}, nil
}

// finish applies the exit policy: failed files fail the command unless
// failures are tolerated. An interrupted run always fails.
func (e *env) finish(ctx context.Context, failed error) error {
	if err := metrics.WriteTextfile(e.cfg.MetricsFile); err != nil {
		e.log.WithError(err).Warn("cannot write metrics file")
	}
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("interrupted: %w", err)
	}
	if failed == nil {
		return nil
	}
	if e.cfg.TolerateFailures {
		e.log.WithError(failed).Warn("finished with failures")
		return nil
	}
	return fmt.Errorf("run failed: %w", failed)
}
