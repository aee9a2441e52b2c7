// Command campusbite is a terminal client for the campus food-ordering backend.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/itsneelabh/campusbite"
	"github.com/itsneelabh/campusbite/pkg/config"
)

const usage = `Usage: campusbite [flags] <command> [args]

Commands:
  login <phone>                 request a one-time code
  verify <phone> <otp>          sign in with the code
  logout                        forget the stored session
  whoami                        show the signed-in student
  vendors                       list vendors
  vendor <vendor-id>            show a vendor and its menus
  items <menu-id>               list the items on a menu
  slots <vendor-id> [-date D]   list pickup slots
  order -vendor V -slot S -item id=qty [-item id=qty ...]
                                place an order
  orders                        order history, newest first
  order-detail <order-id>       show one order
  status <order-id>             show an order's status
  cancel <order-id>             cancel a pending or confirmed order

Flags:
`

var errUsage = errors.New("usage")

func main() {
	// .env is optional
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		if !errors.Is(err, errUsage) {
			fmt.Fprintln(os.Stderr, "Error:", campusbite.UserMessage(err))
		}
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("campusbite", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		fmt.Fprint(stderr, usage)
		fs.PrintDefaults()
	}

	var (
		baseURL    = fs.String("api", "", "backend base URL (overrides CAMPUSBITE_API_URL)")
		configFile = fs.String("config", "", "YAML or JSON config file")
		logLevel   = fs.String("log-level", "", "debug, info, warn or error")
	)
	if err := fs.Parse(args); err != nil {
		return errUsage
	}
	if fs.NArg() == 0 {
		fs.Usage()
		return errUsage
	}

	var opts []config.Option
	if *configFile != "" {
		opts = append(opts, config.WithConfigFile(*configFile))
	}
	if *baseURL != "" {
		opts = append(opts, config.WithBaseURL(*baseURL))
	}
	if *logLevel != "" {
		opts = append(opts, config.WithLogLevel(*logLevel))
	}

	app, err := campusbite.New(ctx, opts...)
	if err != nil {
		return err
	}
	defer app.Close(context.WithoutCancel(ctx))

	cmd, ok := commands[fs.Arg(0)]
	if !ok {
		fmt.Fprintf(stderr, "unknown command %q\n\n", fs.Arg(0))
		fs.Usage()
		return errUsage
	}

	cli := &cli{app: app, out: stdout, errOut: stderr}
	if err := cmd(ctx, cli, fs.Args()[1:]); err != nil {
		if errors.Is(err, errUsage) {
			fmt.Fprint(stderr, usage)
		}
		return err
	}
	return nil
}
