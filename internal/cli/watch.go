package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/kdrag0n/platform-packages-modules-Permission/internal/engine"
	"github.com/kdrag0n/platform-packages-modules-Permission/internal/livedata"
	"github.com/kdrag0n/platform-packages-modules-Permission/internal/model"
	"github.com/kdrag0n/platform-packages-modules-Permission/internal/pkgstore"
)

var (
	watchUser        int
	watchMetricsAddr string
	watchDebounce    time.Duration
)

func init() {
	watchCmd.Flags().IntVarP(&watchUser, "user", "u", 0, "User id")
	watchCmd.Flags().StringVar(&watchMetricsAddr, "metrics-addr", "", "Serve Prometheus metrics on this address (e.g. :9464)")
	watchCmd.Flags().DurationVar(&watchDebounce, "debounce", pkgstore.DefaultDebounce, "Delay before reloading a changed catalog")
	rootCmd.AddCommand(watchCmd)
}

var watchCmd = &cobra.Command{
	Use:   "watch <package>...",
	Short: "Print permission groups of packages as the catalog changes",
	Long: "Keeps a live holder per package and prints one JSON line per published value.\n" +
		"The catalog file is watched and reloaded on change. Stops on SIGINT or SIGTERM.",
	Args: cobra.MinimumNArgs(1),
	RunE: runWatch,
}

func runWatch(cmd *cobra.Command, args []string) error {
	e, err := openEngine()
	if err != nil {
		return err
	}
	defer e.Close()

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	reloader, err := e.NewReloader()
	if err != nil {
		return err
	}
	reloader.SetDebounce(watchDebounce)

	release := observePackages(e, args, model.UserID(watchUser), json.NewEncoder(cmd.OutOrStdout()))
	defer release()

	if watchMetricsAddr != "" {
		srv := serveMetrics(e, watchMetricsAddr)
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()
	}

	e.Log.Info("watching",
		zap.Strings("packages", args),
		zap.Int("user", watchUser),
		zap.String("catalog", e.CatalogPath),
	)
	return reloader.Run(ctx)
}

// observePackages acquires a holder per package and streams its snapshots
// to enc. The returned func releases everything.
func observePackages(e *engine.Engine, pkgs []string, user model.UserID, enc *json.Encoder) func() {
	var mu sync.Mutex
	var releases []func()

	for _, pkg := range pkgs {
		holder, release := e.Repo.Acquire(pkg, user)
		cancel := holder.Observe(func(snap livedata.Snapshot) {
			mu.Lock()
			defer mu.Unlock()
			if err := enc.Encode(snap); err != nil {
				e.Log.Warn("write snapshot", zap.String("key", snap.Key.String()), zap.Error(err))
			}
		})
		releases = append(releases, cancel, release)
	}

	return func() {
		for i := len(releases) - 1; i >= 0; i-- {
			releases[i]()
		}
	}
}

func serveMetrics(e *engine.Engine, addr string) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", e.Metrics.Handler())

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			e.Log.Error("metrics server", zap.String("addr", addr), zap.Error(err))
		}
	}()
	fmt.Fprintf(os.Stderr, "metrics on http://%s/metrics\n", addr)
	return srv
}
