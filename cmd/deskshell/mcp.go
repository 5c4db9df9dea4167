package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/1broseidon/deskshell/internal/daemon"
	"github.com/1broseidon/deskshell/internal/desktop"
	"github.com/1broseidon/deskshell/internal/ipc"
	"github.com/1broseidon/deskshell/internal/mcp"
)

func printMCPUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: deskshell mcp <command>")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  serve    Start the MCP server (stdio transport)")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Run 'deskshell mcp <command> --help' for command-specific options.")
}

func runMCP(args []string) int {
	if len(args) == 0 {
		printMCPUsage(os.Stderr)
		return 2
	}

	switch args[0] {
	case "serve":
		return runMCPServe(args[1:])
	case "help", "-h", "--help":
		printMCPUsage(os.Stdout)
		return 0
	default:
		fmt.Fprintf(os.Stderr, "Unknown mcp command: %s\n\n", args[0])
		printMCPUsage(os.Stderr)
		return 2
	}
}

func runMCPServe(args []string) int {
	fs := flag.NewFlagSet("serve", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	path := fs.String("path", "", "Config file path (default: ~/.config/deskshell/config.yaml)")
	standalone := fs.Bool("standalone", false, "Drive an in-process desktop instead of the daemon")
	viewport := fs.String("viewport", "1600x900", "Initial viewport for --standalone")
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: deskshell mcp serve [--standalone [--viewport WxH]] [--path PATH]")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Start the MCP server on stdio. Tools forward to the running daemon")
		fmt.Fprintln(os.Stderr, "unless --standalone is given.")
		fmt.Fprintln(os.Stderr, "")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}

	res, err := loadConfig(*path)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	// Stdout carries the protocol; console logs go to stderr.
	log, err := newLogger(res.Config, true)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	defer log.Close()

	ctx, cancel := signalContext()
	defer cancel()

	var desk mcp.Desk
	if *standalone {
		size, err := parseSize(*viewport)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 2
		}
		d := res.Config.NewDesktop(desktop.WithLogger(log.Component("desktop")))
		d.SetViewport(size.Width, size.Height)
		desk = daemon.NewLocal(d, func() (*desktop.Desktop, error) {
			next, err := loadConfig(*path)
			if err != nil {
				return nil, err
			}
			return next.Config.NewDesktop(desktop.WithLogger(log.Component("desktop"))), nil
		})
	} else {
		client := ipc.NewClient()
		pingCtx, pingCancel := context.WithTimeout(ctx, 2*time.Second)
		err := client.Ping(pingCtx)
		pingCancel()
		if err != nil {
			log.Error("daemon not reachable (start it or use --standalone)", err)
			return 1
		}
		desk = client
	}

	server := mcp.NewServer(desk, log.Component("mcp"))
	if err := server.Run(ctx); err != nil && ctx.Err() == nil {
		log.Error("MCP server error", err)
		return 1
	}
	return 0
}
