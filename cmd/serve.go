package cmd

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"github.com/barretodotcom/inmocrm/api/server"
	"github.com/barretodotcom/inmocrm/breadcrumbs"
	"github.com/barretodotcom/inmocrm/db"
	"github.com/barretodotcom/inmocrm/ws"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var labelsFile string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the admin API and websocket push channel",
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().StringVar(&labelsFile, "labels", "", "YAML file with extra breadcrumb labels")
	rootCmd.AddCommand(serveCmd)
}

func loadLabels(path string) (breadcrumbs.Labels, error) {
	if path == "" {
		return breadcrumbs.DefaultLabels, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return breadcrumbs.LoadLabels(f)
}

func runServe(cmd *cobra.Command, args []string) error {
	if err := cfg.RequireServer(); err != nil {
		return err
	}
	labels, err := loadLabels(labelsFile)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	store, err := db.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Error("db pool", zap.Error(err))
		return err
	}
	defer store.Close()

	s := &server.Server{
		Store:     store,
		JwtSecret: []byte(cfg.JwtSecret),
		Hub:       ws.NewHub(),
		Log:       log,
		Labels:    labels,
	}

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		log.Info("API up", zap.String("addr", cfg.HTTPAddr))
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
