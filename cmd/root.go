package cmd

import (
	"fmt"
	"os"
	"time"

	"projection-engine/internal/config"
	"projection-engine/internal/document"
	"projection-engine/internal/engine"
	"projection-engine/internal/model"
	"projection-engine/internal/store"
	"projection-engine/internal/tax"

	"github.com/spf13/cobra"
)

var (
	flagStorePath string
	flagScenario  string
	flagQuiet     bool
)

var appConfig config.Config

var rootCmd = &cobra.Command{
	Use:   "horizon",
	Short: "Household financial projection engine",
	Long:  "Project household cash, loans, investments and super forward in time, with dated life-event transitions.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return err
		}
		if flagStorePath != "" {
			c.Store.Path = flagStorePath
		}
		appConfig = c
		return nil
	},
	SilenceUsage: true,
}

// Execute is the main entry point called from main.go.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagStorePath, "store", "", "Scenario library path (overrides store.path)")
	rootCmd.PersistentFlags().StringVarP(&flagScenario, "scenario", "s", "", "Use a saved scenario instead of a file")
	rootCmd.PersistentFlags().BoolVarP(&flagQuiet, "quiet", "q", false, "Suppress progress output")
}

// newEngine builds an engine with the configured tax resolver.
func newEngine() (*engine.Engine, error) {
	r, err := appConfig.Tax.Resolver()
	if err != nil {
		return nil, err
	}
	prefetch(r)
	return engine.New(engine.WithResolver(r)), nil
}

// prefetch warms a remote tax table cache for the coming decade.
func prefetch(r tax.Resolver) {
	if fy, ok := r.(tax.FixedYear); ok {
		r = fy.Resolver
	}
	reg, ok := r.(*tax.Registry)
	if !ok {
		return
	}
	if !flagQuiet {
		fmt.Fprintf(os.Stderr, "  Fetching tax tables...\n")
	}
	year := time.Now().Year()
	years := make([]int, 0, 10)
	for y := year; y < year+10; y++ {
		years = append(years, y)
	}
	reg.Prefetch(years)
}

// openStore opens the scenario library at the configured path.
func openStore() (*store.Store, error) {
	return store.Open(appConfig.Store.Path)
}

// loadConfiguration reads the scenario named by --scenario, or the document
// file in args[0].
func loadConfiguration(cmd *cobra.Command, args []string) (model.SimulationConfiguration, error) {
	if flagScenario != "" {
		s, err := openStore()
		if err != nil {
			return model.SimulationConfiguration{}, err
		}
		defer s.Close()
		sc, err := s.Load(cmd.Context(), flagScenario)
		if err != nil {
			return model.SimulationConfiguration{}, err
		}
		return sc.Configuration, nil
	}
	if len(args) == 0 {
		return model.SimulationConfiguration{}, fmt.Errorf("a scenario file or --scenario is required")
	}
	return document.Load(args[0])
}
