package main

import (
	"fmt"
	"os"

	"github.com/alecthomas/kong"
)

var version = "dev"

var CLI struct {
	Version bool `help:"Print version information and exit." short:"v"`

	Serve struct {
		Config   string `help:"YAML configuration file." type:"existingfile" placeholder:"FILE"`
		EnvFile  string `help:"dotenv file loaded before reading the environment." default:".env" name:"env-file"`
		Port     string `help:"Listen port; overrides PORT."`
		LogLevel string `help:"Log level; overrides LOG_LEVEL." name:"log-level"`
	} `cmd:"" default:"withargs" help:"Run the scoreboard server."`

	Config struct{} `cmd:"" help:"Write the default configuration as YAML to standard output."`
}

func writeError(err error) {
	fmt.Fprintf(os.Stderr, "%s\n", err)
	os.Exit(1)
}

func main() {
	ctx := kong.Parse(&CLI,
		kong.Name("scoreboard"),
		kong.Description("Authoritative live basketball scoreboard server."),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
			Summary: true,
		}))

	if CLI.Version {
		fmt.Printf("scoreboard %s\n", version)
		return
	}

	switch ctx.Command() {
	case "config":
		if err := writeDefaultConfig(os.Stdout); err != nil {
			writeError(err)
		}
	default:
		opts := serveOptions{
			ConfigPath: CLI.Serve.Config,
			EnvFile:    CLI.Serve.EnvFile,
			Port:       CLI.Serve.Port,
			LogLevel:   CLI.Serve.LogLevel,
		}
		if err := serve(opts); err != nil {
			writeError(err)
		}
	}
}
