package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"

	"entity-resolver/internal/adapter/cli"
	"entity-resolver/internal/bootstrap"
	"entity-resolver/internal/config"
	"entity-resolver/internal/logger"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	configDir  string
	jsonOutput bool
	resolveAll bool
)

var rootCmd = &cobra.Command{
	Use:   "explorer",
	Short: "Resolve blocks, transactions, accounts, messages and logs across chains",
	Long: `explorer resolves an identifier against a registered network and prints the
resulting entity. Networks come from the catalog file (networks.catalog_path) and,
when ADD_NETWORK_ENDPOINT is set, from the chain-config service.

Example:
	explorer resolve "Dymension Hub" Block height 1200000
	explorer associated Ethereum Transaction hash 0x5c50...
	explorer resolve "Dymension Hub" Transaction address dym1... --many`,
	SilenceUsage: true,
}

var networksCmd = &cobra.Command{
	Use:   "networks",
	Short: "List registered networks, their entity types and getter fields",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return withApp(cmd, func(ctx context.Context, app *bootstrap.App, out *cli.Renderer) error {
			defs := app.Registry.Networks()
			if jsonOutput {
				names := make(map[string][]string, len(defs))
				for _, def := range defs {
					names[def.Label] = def.EntityTypeNames()
				}
				return printJSON(cmd, names)
			}
			out.Networks(defs)
			return nil
		})
	},
}

var resolveCmd = &cobra.Command{
	Use:   "resolve NETWORK TYPE FIELD VALUE",
	Short: "Resolve an entity by one of its fields",
	Args:  cobra.ExactArgs(4),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(ctx context.Context, app *bootstrap.App, out *cli.Renderer) error {
			if resolveAll {
				entities := app.Resolver.ResolveMany(ctx, args[0], args[1], args[2], args[3])
				if jsonOutput {
					return printJSON(cmd, entities)
				}
				out.Entities(entities)
				return nil
			}

			e := app.Resolver.ResolveOne(ctx, args[0], args[1], args[2], args[3])
			if e == nil {
				return fmt.Errorf("no %s with %s %q on %s", args[1], args[2], args[3], args[0])
			}
			if jsonOutput {
				return printJSON(cmd, e)
			}
			out.Entity(*e)
			return nil
		})
	},
}

var associatedCmd = &cobra.Command{
	Use:   "associated NETWORK TYPE FIELD VALUE",
	Short: "Resolve an entity and list the entities it refers to",
	Args:  cobra.ExactArgs(4),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(ctx context.Context, app *bootstrap.App, out *cli.Renderer) error {
			e := app.Resolver.ResolveOne(ctx, args[0], args[1], args[2], args[3])
			if e == nil {
				return fmt.Errorf("no %s with %s %q on %s", args[1], args[2], args[3], args[0])
			}
			refs := app.Resolver.ResolveAssociated(ctx, *e)
			if jsonOutput {
				return printJSON(cmd, refs)
			}
			out.Refs(refs)
			return nil
		})
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configDir, "config", "configs", "directory containing config.yaml")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "print JSON instead of formatted output")
	resolveCmd.Flags().BoolVar(&resolveAll, "many", false, "use a list getter and print every match")

	rootCmd.AddCommand(networksCmd, resolveCmd, associatedCmd)
}

// withApp loads configuration, registers the networks and runs fn. The periodic refresh is not started.
func withApp(cmd *cobra.Command, fn func(ctx context.Context, app *bootstrap.App, out *cli.Renderer) error) error {
	cfg, err := config.Load(configDir)
	if err != nil {
		return err
	}
	cfg.Networks.RefreshInterval = 0

	appLogger, err := logger.NewLogger(cfg.Logger, cfg.App)
	if err != nil {
		return err
	}
	defer appLogger.Sync()

	ctx := cmd.Context()
	app := bootstrap.New(ctx, cfg, appLogger)
	if err := app.Networks.Start(ctx); err != nil {
		appLogger.Error("Failed to register networks", zap.Error(err))
		return err
	}
	return fn(ctx, app, cli.NewRenderer(cmd.OutOrStdout()))
}

func printJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}
