package main

import (
	"context"
	"flag"
	"os"
	"path"

	"github.com/etnz/marketwatch/cmd"
	"github.com/google/subcommands"
	"github.com/posener/complete/v2"
	"github.com/posener/complete/v2/predict"
)

func main() {
	// Shell completion first: when invoked by the shell's completion hook it
	// prints candidates and exits.
	sub := make(map[string]*complete.Command)
	for _, name := range cmd.CommandNames() {
		sub[name] = &complete.Command{}
	}
	completion := &complete.Command{
		Sub: sub,
		Flags: map[string]complete.Predictor{
			"C": predict.Dirs("*"),
			"v": predict.Nothing,
		},
	}
	completion.Complete("mw")

	verbose := flag.Bool("v", false, "log to the console as well as the log file")

	commander := subcommands.NewCommander(flag.CommandLine, path.Base(os.Args[0]))
	commander.Register(commander.HelpCommand(), "help")
	commander.Register(commander.FlagsCommand(), "help")
	commander.Register(commander.CommandsCommand(), "help")
	cmd.Register(commander)

	flag.Parse()
	cmd.SetVerbose(*verbose)
	os.Exit(int(commander.Execute(context.Background())))
}
