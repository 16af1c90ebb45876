// Package main provides the CLI entrypoint for airdash.
package main

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/spf13/cobra"

	"airdash/internal/api"
	"airdash/internal/config"
	"airdash/internal/engine"
	"airdash/internal/session"
)

const (
	defaultData   = "data/PRSA_Data_Tiantan_20130301-20170228.csv"
	defaultListen = ":8080"
	defaultConfig = "airdash.toml"
)

var (
	dataPath   string
	listenAddr string
	configPath string
)

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "airdash",
		Short:         "Air quality analytics dashboard for the Tiantan PRSA dataset",
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE:          runServeCmd,
	}

	rootCmd.PersistentFlags().StringVar(&dataPath, "data", defaultData, "dataset file (CSV or SQLite)")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", defaultConfig, "TOML config file")
	rootCmd.Flags().StringVar(&listenAddr, "listen", defaultListen, "listen address")

	rootCmd.AddCommand(newCheckCmd())

	return rootCmd
}

func runServeCmd(cmd *cobra.Command, _ []string) error {
	fileCfg, err := config.LoadConfig(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	applyStringConfig(cmd, "data", &dataPath, fileCfg.Data.Path)
	applyStringConfig(cmd, "listen", &listenAddr, fileCfg.Server.Listen)

	log.Printf("Loading dataset from %s...", dataPath)
	store, err := engine.Load(dataPath)
	if err != nil {
		return fmt.Errorf("load dataset: %w", err)
	}

	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.CORS())
	e.Use(middleware.Recover())
	e.Use(middleware.Logger())
	e.JSONSerializer = api.Serializer{}

	sessions := session.NewStore(engine.DefaultFilters())
	h := api.NewHandler(store, sessions)
	h.RegisterRoutes(e)

	log.Printf("Server ready on %s (%d rows loaded)", listenAddr, store.Len())
	if err := e.Start(listenAddr); err != nil {
		return fmt.Errorf("server: %w", err)
	}
	return nil
}

func newCheckCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Load the dataset and print a short report",
		Args:  cobra.NoArgs,
		RunE:  runCheckCmd,
	}
}

func runCheckCmd(cmd *cobra.Command, _ []string) error {
	fileCfg, err := config.LoadConfig(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	applyStringConfig(cmd, "data", &dataPath, fileCfg.Data.Path)

	t0 := time.Now()
	store, err := engine.Load(dataPath)
	if err != nil {
		return fmt.Errorf("load dataset: %w", err)
	}

	v, err := store.ApplyFilter(engine.DefaultFilters())
	if err != nil {
		return err
	}
	s := v.Summary()

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "file:     %s\n", dataPath)
	fmt.Fprintf(out, "rows:     %d\n", s.Rows)
	fmt.Fprintf(out, "range:    %s to %s\n", s.From, s.To)
	fmt.Fprintf(out, "stations: %v\n", s.Stations)
	fmt.Fprintf(out, "columns:  %v\n", store.MeasureNames())
	fmt.Fprintf(out, "loaded in %v\n", time.Since(t0))
	return nil
}

// applyStringConfig overrides a flag's default with the config file
// value when the flag was not set explicitly.
func applyStringConfig(cmd *cobra.Command, name string, dst *string, fileVal *string) {
	if fileVal == nil {
		return
	}
	if f := cmd.Flags().Lookup(name); f != nil && f.Changed {
		return
	}
	*dst = *fileVal
}
