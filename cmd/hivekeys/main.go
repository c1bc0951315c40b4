// Command hivekeys derives Hive keys, signs and verifies messages, and checks
// accounts against a Hive API node.
package main

import (
	"errors"
	"os"

	flags "github.com/jessevdk/go-flags"
)

// run parses args, prepares logging and executes the selected command.
func run(a *app, args []string) error {
	envFile := preParseEnvFile(args)
	if err := loadEnvFile(envFile); err != nil {
		return err
	}

	parser := newParser(&a.cfg, a)
	parser.CommandHandler = func(cmd flags.Commander, cmdArgs []string) error {
		if cmd == nil {
			return nil
		}
		if err := a.setup(); err != nil {
			return err
		}
		defer closeLogRotator()
		return cmd.Execute(cmdArgs)
	}

	_, err := parser.ParseArgs(args)
	return err
}

func main() {
	if err := run(newApp(), os.Args[1:]); err != nil {
		// The parser has already printed the error.
		var e *flags.Error
		if errors.As(err, &e) && e.Type == flags.ErrHelp {
			os.Exit(0)
		}
		os.Exit(1)
	}
}
