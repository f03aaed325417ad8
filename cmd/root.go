/*
 * Copyright (C) 2026 Nuts community
 *
 * This program is free software: you can redistribute it and/or modify
 * it under the terms of the GNU General Public License as published by
 * the Free Software Foundation, either version 3 of the License, or
 * (at your option) any later version.
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
 * GNU General Public License for more details.
 *
 * You should have received a copy of the GNU General Public License
 * along with this program.  If not, see <https://www.gnu.org/licenses/>.
 *
 */

package cmd

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/nuts-foundation/irma-broker/core"
	"github.com/nuts-foundation/irma-broker/core/status"
	httpEngine "github.com/nuts-foundation/irma-broker/http"
	httpCmd "github.com/nuts-foundation/irma-broker/http/cmd"
	"github.com/nuts-foundation/irma-broker/orchestrator"
	irmaAPI "github.com/nuts-foundation/irma-broker/orchestrator/api"
	irmaCmd "github.com/nuts-foundation/irma-broker/orchestrator/cmd"
	"github.com/nuts-foundation/irma-broker/storage"
	storageCmd "github.com/nuts-foundation/irma-broker/storage/cmd"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

var stdOutWriter io.Writer = os.Stdout

// routerProvider is implemented by the engine that serves the HTTP routes.
type routerProvider interface {
	Router() core.EchoRouter
}

func createRootCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "irma-broker",
		Short: "IRMA broker which starts and tracks IRMA sessions on behalf of relying applications.",
		Run: func(cmd *cobra.Command, args []string) {
			cmd.HelpFunc()(cmd, args)
		},
	}
}

func createPrintConfigCommand(system *core.System) *cobra.Command {
	command := &cobra.Command{
		Use:   "config",
		Short: "Prints the current config",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := system.Load(cmd.Flags()); err != nil {
				return err
			}
			cmd.Println("Current system config")
			cmd.Println(system.Config.PrintConfig())
			return nil
		},
	}
	command.Flags().AddFlagSet(serverCmdFlags())
	return command
}

func createServerCommand(system *core.System) *cobra.Command {
	command := &cobra.Command{
		Use:   "server",
		Short: "Starts the IRMA broker server",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := system.Load(cmd.Flags()); err != nil {
				return err
			}
			return startServer(cmd.Context(), system)
		},
	}
	command.Flags().AddFlagSet(serverCmdFlags())
	return command
}

func startServer(ctx context.Context, system *core.System) error {
	logrus.Info(fmt.Sprintf("Build info: \n%s", core.BuildInfo()))
	logrus.Info(fmt.Sprintf("Config: \n%s", system.Config.PrintConfig()))

	// check config on all engines
	if err := system.Configure(); err != nil {
		_ = system.Shutdown()
		return err
	}

	// register HTTP routes
	var router core.EchoRouter
	system.VisitEngines(func(engine core.Engine) {
		if p, ok := engine.(routerProvider); ok {
			router = p.Router()
		}
	})
	if router == nil {
		return fmt.Errorf("no HTTP engine registered")
	}
	for _, r := range system.Routers {
		r.Routes(router)
	}

	// start engines
	if err := system.Start(); err != nil {
		_ = system.Shutdown()
		return err
	}

	<-ctx.Done()
	logrus.Info("Shutting down...")
	if err := system.Shutdown(); err != nil {
		return err
	}
	logrus.Info("Shutdown complete. Goodbye!")
	return nil
}

// CreateCommand creates the command with all subcommands to run the system.
func CreateCommand(system *core.System) *cobra.Command {
	command := createRootCommand()
	command.SetOut(stdOutWriter)
	command.AddCommand(createServerCommand(system))
	command.AddCommand(createPrintConfigCommand(system))
	command.AddCommand(irmaCmd.Cmd())
	command.AddCommand(status.Cmd())
	return command
}

// CreateSystem creates the system and registers all default engines.
// The shutdownCallback is called when the HTTP interface stops unexpectedly.
func CreateSystem(shutdownCallback context.CancelFunc) *core.System {
	system := core.NewSystem()

	// Create instances
	statusInstance := status.NewStatusEngine(system)
	metricsInstance := core.NewMetricsEngine()
	storageInstance := storage.New()
	irmaInstance := orchestrator.NewEngine(storageInstance)
	httpServerInstance := httpEngine.New(shutdownCallback)

	// Register HTTP routes
	system.RegisterRoutes(statusInstance.(core.Routable))
	system.RegisterRoutes(metricsInstance)
	system.RegisterRoutes(&irmaAPI.Wrapper{Service: irmaInstance})

	// Register engines
	// Engines are configured and started in order of registration and stopped in reverse order:
	// the session database must be available before the IRMA engine, which must be available before requests are served.
	system.RegisterEngine(statusInstance)
	system.RegisterEngine(metricsInstance)
	system.RegisterEngine(storageInstance)
	system.RegisterEngine(irmaInstance)
	system.RegisterEngine(httpServerInstance)

	return system
}

// Execute executes the root command.
func Execute(ctx context.Context, system *core.System) error {
	command := CreateCommand(system)
	command.SetOut(stdOutWriter)
	return command.ExecuteContext(ctx)
}

func serverCmdFlags() *pflag.FlagSet {
	set := pflag.NewFlagSet("server", pflag.ContinueOnError)
	set.AddFlagSet(core.FlagSet())
	set.AddFlagSet(storageCmd.FlagSet())
	set.AddFlagSet(httpCmd.FlagSet())
	set.AddFlagSet(irmaCmd.FlagSet())
	return set
}
