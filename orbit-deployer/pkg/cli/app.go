package cli

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/orbit-stack/orbit-stack/orbit-deployer/pkg/deployer"
	"github.com/orbit-stack/orbit-stack/orbit-service/cliapp"
)

// NewApp creates and configures a new CLI application
func NewApp(versionWithMeta string) *cli.App {
	app := cli.NewApp()
	app.Version = versionWithMeta
	app.Name = "orbit-deployer"
	app.Usage = "Deploys the token bridge of an Orbit chain and hands the chain over to its owner."
	app.Flags = cliapp.ProtectFlags(deployer.GlobalFlags)
	app.Commands = []*cli.Command{
		{
			Name:   "apply",
			Usage:  "runs every deployment step not yet recorded in the state file",
			Flags:  cliapp.ProtectFlags(deployer.ApplyFlags),
			Action: deployer.ApplyCLI(),
		},
		{
			Name:   "status",
			Usage:  "shows which deployment steps are done",
			Flags:  cliapp.ProtectFlags(deployer.StatusFlags),
			Action: deployer.StatusCLI(),
		},
		{
			Name:   "clean",
			Usage:  "deletes the state file so the next apply starts over",
			Flags:  cliapp.ProtectFlags(deployer.CleanFlags),
			Action: deployer.CleanCLI(),
		},
		{
			Name:  "version",
			Usage: "prints the version",
			Action: func(cliCtx *cli.Context) error {
				_, err := fmt.Fprintln(cliCtx.App.Writer, cliCtx.App.Version)
				return err
			},
		},
	}
	return app
}
