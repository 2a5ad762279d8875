package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"dynmech/internal/combat"
	"dynmech/internal/config"
	"dynmech/internal/save"
	"dynmech/internal/util"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "dynmech",
	Short: "Dynasty Mechs battle core",
	Long: `Runs Dynasty Mechs skirmishes from the yaml data under --assets.
Battles can be auto-simulated in bulk or played turn by turn in a shell.`,
	SilenceUsage: true,
}

func init() {
	cobra.OnInitialize(initConfig)

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&cfgFile, "config", "", "config file (default ./dynmech.yaml)")
	pf.String("assets", "assets", "directory holding the yaml data files")
	pf.Int64("seed", 12345, "battle seed")
	pf.String("log_level", "warn", "log level (debug, info, warn, error)")
	pf.String("save_dir", "saves", "directory for file save slots")
	pf.String("database_url", "", "postgres connection string; saves go to postgres when set")

	for _, key := range []string{"assets", "seed", "log_level", "save_dir", "database_url"} {
		_ = viper.BindPFlag(key, pf.Lookup(key))
	}
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigName("dynmech")
		viper.SetConfigType("yaml")
	}
	viper.SetEnvPrefix("DYNMECH")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()
	_ = viper.ReadInConfig()
}

// app is what every subcommand needs: the loaded data, the engine built
// from it and a logger.
type app struct {
	set    *config.Set
	engine *combat.Engine
	log    *zap.Logger
}

func newApp() (*app, error) {
	log, err := util.NewLogger(viper.GetString("log_level"), "")
	if err != nil {
		return nil, fmt.Errorf("logger: %w", err)
	}
	set, err := config.LoadAll(viper.GetString("assets"))
	if err != nil {
		return nil, err
	}
	eng, err := combat.NewEngine(set)
	if err != nil {
		return nil, fmt.Errorf("engine: %w", err)
	}
	log.Debug("assets loaded", zap.String("dir", viper.GetString("assets")))
	return &app{set: set, engine: eng, log: log}, nil
}

// store is closed by the returned func.
func (a *app) store(ctx context.Context) (save.Store, func(), error) {
	if url := viper.GetString("database_url"); url != "" {
		pg, err := save.OpenPostgres(ctx, url)
		if err != nil {
			return nil, nil, err
		}
		return pg, func() { _ = pg.Close() }, nil
	}
	fs, err := save.NewFileStore(viper.GetString("save_dir"))
	if err != nil {
		return nil, nil, err
	}
	return fs, func() {}, nil
}
