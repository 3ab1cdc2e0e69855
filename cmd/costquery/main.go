package main

import (
	"fmt"
	"os"

	"github.com/mwantia/costquery/cmd/costquery/cli"
	"github.com/mwantia/costquery/cmd/costquery/cli/client"
	"github.com/mwantia/costquery/cmd/costquery/cli/server"
)

var (
	version = "0.0.1-dev"
	commit  = "main"
)

func main() {
	info := cli.VersionInfo{
		Version: version,
		Commit:  commit,
	}
	root := cli.NewRootCommand(info)

	root.AddCommand(cli.NewVersionCommand(info))

	root.AddCommand(server.NewAgentCommand())
	root.AddCommand(server.NewConfigCommand())
	root.AddCommand(server.NewMigrateCommand())

	root.AddCommand(client.NewQueryCommand())
	root.AddCommand(client.NewFiltersCommand())
	root.AddCommand(client.NewCheckpointCommand())

	if err := root.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
