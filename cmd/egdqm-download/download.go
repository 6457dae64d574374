package main

import (
	"crypto/x509"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/cms-egamma/egdqm/cmd/internal/cmderr"
	"github.com/cms-egamma/egdqm/cmd/internal/config"
	archiveconfig "github.com/cms-egamma/egdqm/cmd/internal/config/archive"
	dasconfig "github.com/cms-egamma/egdqm/cmd/internal/config/das"
	dqmguiconfig "github.com/cms-egamma/egdqm/cmd/internal/config/dqmgui"
	downloadconfig "github.com/cms-egamma/egdqm/cmd/internal/config/download"
	loggerconfig "github.com/cms-egamma/egdqm/cmd/internal/config/logger"
	"github.com/cms-egamma/egdqm/misc"
	"github.com/cms-egamma/egdqm/pkg/archive"
	"github.com/cms-egamma/egdqm/pkg/das"
	"github.com/cms-egamma/egdqm/pkg/downloader"
	"github.com/cms-egamma/egdqm/pkg/dqm"
	"github.com/cms-egamma/egdqm/pkg/dqmgui"
	"github.com/cms-egamma/egdqm/pkg/gridcert"
	"github.com/cms-egamma/egdqm/pkg/metrics"
	"github.com/cms-egamma/egdqm/pkg/util"
	"github.com/cms-egamma/egdqm/pkg/util/grace"
	"github.com/cms-egamma/egdqm/pkg/util/logger"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// readConfig reads the file given by the config flag and binds command
// line flags overriding configuration values.
func readConfig(cmd *cobra.Command) (*config.Config, error) {
	var opts []config.Option

	path, _ := cmd.Flags().GetString(configFlag)
	if path != "" {
		opts = append(opts, config.WithConfigFile(path))
	}

	cfg, err := config.New(config.Prm{}, opts...)
	if err != nil {
		return nil, err
	}

	for _, b := range []struct {
		section, name, flag string
	}{
		{"download", "dataset", datasetFlag},
		{"download", "workers", workersFlag},
		{"dqmgui", "server", serverFlag},
	} {
		err = cfg.Sub(b.section).BindFlag(b.name, cmd.Flags().Lookup(b.flag))
		if err != nil {
			return nil, fmt.Errorf("bind --%s flag: %w", b.flag, err)
		}
	}

	return cfg, nil
}

func download(cmd *cobra.Command, args []string) error {
	cfg, err := readConfig(cmd)
	if err != nil {
		return err
	}

	log, err := logger.NewLogger(logger.Prm{
		Level:    loggerconfig.Level(cfg),
		Encoding: loggerconfig.Encoding(cfg),
	})
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	ctx, cancel := grace.NewGracefulContext(log)
	defer cancel()

	creds, err := gridcert.Resolver{}.Resolve()
	if err != nil {
		return err
	}

	log.Debug("grid credentials resolved",
		zap.String("key", creds.Key),
		zap.String("cert", creds.Cert))

	rootCAs, err := loadRootCAs(dqmguiconfig.CAFile(cfg))
	if err != nil {
		return err
	}

	cli, err := dqmgui.New(dqmgui.Prm{
		Server:      dqmguiconfig.Server(cfg),
		UserAgent:   dqmguiconfig.UserAgent(cfg),
		Credentials: creds,
		RootCAs:     rootCAs,
		Timeout:     dqmguiconfig.Timeout(cfg),
	})
	if err != nil {
		return err
	}

	var (
		output, _ = cmd.Flags().GetString(outputFlag)
		update, _ = cmd.Flags().GetBool(updateFlag)
		mode      = archive.ModeRecreate
	)

	if update {
		mode = archive.ModeUpdate
	}

	a, err := archive.Open(output, mode,
		archive.WithPermissions(archiveconfig.Perm(cfg)),
		archive.WithLockTimeout(archiveconfig.LockTimeout(cfg)),
		archive.WithNoSync(archiveconfig.NoSync(cfg)),
		archive.WithCompression(archiveconfig.Compress(cfg)),
		archive.WithLogger(log),
	)
	if err != nil {
		return err
	}
	defer func() {
		if err := a.Close(); err != nil {
			log.Error("can't close archive", zap.Error(err))
		}
	}()

	var covered dqm.Catalog
	if update {
		covered, err = a.DatasetRuns()
		if err != nil {
			return fmt.Errorf("list runs in %s: %w", output, err)
		}
	}

	dasCmd, err := das.NewCommand(dasconfig.Command(cfg))
	if err != nil {
		return err
	}

	pattern := downloadconfig.Dataset(cfg)

	catalog, err := das.DatasetRuns(ctx, dasCmd, pattern, log)
	if err != nil {
		return err
	}

	runArgs, _ := cmd.Flags().GetStringSlice(runsFlag)
	runs := downloader.SelectRuns(append(runArgs, args...), catalog)

	log.Info("download started",
		zap.String("dataset", pattern),
		zap.Int("datasets", len(catalog)),
		zap.Int("runs", len(runs)),
		zap.Stringer("mode", mode))

	pool, err := util.NewWorkerPool(downloadconfig.Workers(cfg))
	if err != nil {
		return err
	}
	defer pool.Release()

	m := metrics.NewDownloadMetrics(misc.Version)

	showProgress, _ := cmd.Flags().GetBool(progressFlag)
	todo, skipped := downloader.Jobs(runs, catalog, covered)
	bar := newProgress(cmd, showProgress, len(todo)+len(skipped))

	d := downloader.New(downloader.Prm{
		Fetcher:    cli,
		Archive:    a,
		Pool:       pool,
		Logger:     log,
		Metrics:    m,
		Retries:    downloadconfig.Retries(cfg),
		RetryDelay: downloadconfig.RetryDelay(cfg),
		BaseFolder: downloadconfig.BaseFolder(cfg),
		Paths:      downloadconfig.Paths(cfg),
		Exclusions: downloadconfig.Exclusions(cfg),
		OnResult:   bar.add,
	})

	started := time.Now()

	results, runErr := d.Run(ctx, runs, catalog, covered)

	bar.finish()

	printResults(cmd.OutOrStdout(), results)

	var outErr error

	// the ROOT file is written on close
	if err := a.Close(); err != nil {
		outErr = fmt.Errorf("write %s: %w", output, err)
	}

	if path, _ := cmd.Flags().GetString(reportFlag); path != "" {
		rep := newReport(output, pattern, started, time.Now(), results)
		if err := rep.write(path); err != nil {
			outErr = errors.Join(outErr, err)
		}
	}

	if path, _ := cmd.Flags().GetString(metricsFlag); path != "" {
		if err := m.WriteTextfile(path); err != nil {
			outErr = errors.Join(outErr, fmt.Errorf("write metrics: %w", err))
		}
	}

	if runErr != nil {
		return errors.Join(runErr, outErr)
	}

	if outErr != nil {
		return outErr
	}

	if failed := downloader.Failed(results); len(failed) > 0 {
		return cmderr.Partial(fmt.Errorf("%d of %d runs failed", len(failed), len(results)))
	}

	log.Info("download finished", zap.Int("runs", len(results)))

	return nil
}

// loadRootCAs returns the system pool extended by certificates of the
// PEM file. Empty path means nil pool, i.e. the system one.
func loadRootCAs(path string) (*x509.CertPool, error) {
	if path == "" {
		return nil, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read CA file: %w", err)
	}

	pool, err := x509.SystemCertPool()
	if err != nil {
		pool = x509.NewCertPool()
	}

	if !pool.AppendCertsFromPEM(data) {
		return nil, fmt.Errorf("no certificates in CA file %s", path)
	}

	return pool, nil
}
