package main

import (
	"context"
	"os"
	"os/signal"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/vsinha/alloc/pkg/application/services/allocation"
	"github.com/vsinha/alloc/pkg/config"
	"github.com/vsinha/alloc/pkg/interfaces/cli/commands"
	"github.com/vsinha/alloc/pkg/logger"
)

// rootOptions are the flags shared by every subcommand
type rootOptions struct {
	configFile string
	logLevel   string
}

func main() {
	// A missing .env file is fine; the environment and defaults still apply
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	opts := &rootOptions{}
	rootCmd := &cobra.Command{
		Use:          "alloc",
		Short:        "Allocate constrained weekly supply across products, channels and regions",
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().StringVar(&opts.configFile, "config", "", "Config file (yaml, toml or json)")
	rootCmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "Log level override (trace, debug, info, warn, error)")

	rootCmd.AddCommand(solveCmd(opts))
	rootCmd.AddCommand(validateCmd(opts))
	rootCmd.AddCommand(forecastCmd())
	rootCmd.AddCommand(generateCmd())

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

// setup loads configuration and builds the shared command configuration
func setup(opts *rootOptions) (commands.Config, error) {
	cfg, err := config.Load(opts.configFile)
	if err != nil {
		return commands.Config{}, err
	}
	if opts.logLevel != "" {
		cfg.Log.Level = opts.logLevel
	}

	log := logger.New(logger.Config{Env: cfg.Log.Env, Level: cfg.Log.Level})

	policy, err := cfg.Allocation.Policy()
	if err != nil {
		return commands.Config{}, err
	}
	first, err := cfg.Allocation.FirstWeek()
	if err != nil {
		return commands.Config{}, err
	}

	return commands.Config{
		Format:    "text",
		Policy:    policy,
		FirstWeek: first,
		Solver:    cfg.Solver.Options(),
		Logger:    log.Zerolog(),
	}, nil
}

func solveCmd(opts *rootOptions) *cobra.Command {
	var (
		outputDir          string
		format             string
		verbose            bool
		wosFloor           float64
		lookahead          string
		supplyPolicy       string
		allowHardShortfall bool
	)

	cmd := &cobra.Command{
		Use:   "solve [scenario-dir-or-file]",
		Short: "Run the product, channel and region allocation stages",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			solveConfig, err := setup(opts)
			if err != nil {
				return err
			}

			flags := cmd.Flags()
			if flags.Changed("wos-floor") {
				solveConfig.Policy.WOSFloor = wosFloor
			}
			if flags.Changed("lookahead") {
				if solveConfig.Policy.Lookahead, err = allocation.ParseLookaheadPolicy(lookahead); err != nil {
					return err
				}
			}
			if flags.Changed("supply-policy") {
				if solveConfig.Policy.Supply, err = allocation.ParseSupplyPolicy(supplyPolicy); err != nil {
					return err
				}
			}
			if flags.Changed("allow-hard-shortfall") {
				solveConfig.Policy.AllowHardShortfall = allowHardShortfall
			}

			solveConfig.Scenario = args[0]
			solveConfig.OutputDir = outputDir
			solveConfig.Format = format
			solveConfig.Verbose = verbose
			return commands.NewSolveCommand(solveConfig).Execute(cmd.Context())
		},
	}

	cmd.Flags().StringVarP(&outputDir, "output", "o", "", "Output directory for results")
	cmd.Flags().StringVarP(&format, "format", "f", "text", "Output format: text, json, csv, xlsx")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Print stage events and inventory positions")
	cmd.Flags().Float64Var(&wosFloor, "wos-floor", 0, "Weeks of supply floor (overrides config)")
	cmd.Flags().StringVar(&lookahead, "lookahead", "", "Lookahead policy: reuse-prior, extrapolate, current-period")
	cmd.Flags().StringVar(&supplyPolicy, "supply-policy", "", "Supply policy: horizon, weekly")
	cmd.Flags().BoolVar(&allowHardShortfall, "allow-hard-shortfall", false, "Let hard-demand products fall short at a penalty")
	return cmd
}

func validateCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "validate [scenario-dir-or-file]",
		Short: "Check a scenario's tables without solving",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			validateConfig, err := setup(opts)
			if err != nil {
				return err
			}
			validateConfig.Scenario = args[0]
			return commands.NewValidateCommand(validateConfig).Execute(cmd.Context())
		},
	}
}

func forecastCmd() *cobra.Command {
	var (
		outputDir string
		verbose   bool
	)

	cmd := &cobra.Command{
		Use:   "forecast [params.yaml]",
		Short: "Forecast regional weekly demand from predecessor product sales",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return commands.NewForecastCommand(commands.ForecastConfig{
				Params:    args[0],
				OutputDir: outputDir,
				Verbose:   verbose,
			}).Execute(cmd.Context())
		},
	}

	cmd.Flags().StringVarP(&outputDir, "output", "o", "", "Output directory for the forecast CSV (stdout when empty)")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Print elasticity and multipliers")
	return cmd
}

func generateCmd() *cobra.Command {
	generateConfig := commands.GenerateConfig{}

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate a random scenario directory",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return commands.NewGenerateCommand(generateConfig).Execute(cmd.Context())
		},
	}

	cmd.Flags().IntVar(&generateConfig.Products, "products", 5, "Number of products")
	cmd.Flags().IntVar(&generateConfig.Weeks, "weeks", 8, "Number of weeks")
	cmd.Flags().IntVar(&generateConfig.Channels, "channels", 3, "Number of channels for the focus product")
	cmd.Flags().IntVar(&generateConfig.Regions, "regions", 3, "Number of regions for the partner channel")
	cmd.Flags().Float64Var(&generateConfig.Supply, "supply", 1.2, "Supply multiplier over the minimum feasible supply")
	cmd.Flags().StringVarP(&generateConfig.OutputDir, "output", "o", "", "Output directory for generated files")
	cmd.Flags().Int64Var(&generateConfig.Seed, "seed", 0, "Random seed for reproducible generation")
	cmd.Flags().BoolVarP(&generateConfig.Verbose, "verbose", "v", false, "Enable verbose output")
	_ = cmd.MarkFlagRequired("output")
	return cmd
}
