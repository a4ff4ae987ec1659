// Command chatctl drives a relaychat server from the terminal: it manages
// channels over the REST API and tails or posts chat frames over WebSocket.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/Tyrowin/relaychat/internal/channel"
	"github.com/gookit/color"
)

const usage = `usage: chatctl [flags] <command> [args]

commands:
  list                          list channels
  create <name>                 create a channel
  rename <id> <name>            rename a channel
  delete <id>                   delete a channel
  tail                          print chat frames as they arrive
  send <channelId> <user> <text...>  post a chat message

flags:
`

var errUsage = errors.New("invalid usage")

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		color.Red.Println(err)
		if errors.Is(err, errUsage) {
			os.Exit(2)
		}
		os.Exit(1)
	}
}

func run(args []string, out io.Writer) error {
	fs := flag.NewFlagSet("chatctl", flag.ContinueOnError)
	addr := fs.String("addr", "http://localhost:8080", "Base URL of the relaychat server")
	origin := fs.String("origin", "", "Origin header for WebSocket connections (defaults to -addr)")
	noColor := fs.Bool("no-color", false, "Disable colored output")
	fs.Usage = func() {
		_, _ = fmt.Fprint(fs.Output(), usage)
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		return errUsage
	}
	if *noColor {
		color.Disable()
	}

	client, err := newAPIClient(*addr, *origin)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rest := fs.Args()
	if len(rest) == 0 {
		fs.Usage()
		return errUsage
	}

	switch cmd, params := rest[0], rest[1:]; cmd {
	case "list":
		channels, err := client.ListChannels(ctx)
		if err != nil {
			return err
		}
		renderChannels(out, channels)
	case "create":
		if len(params) != 1 {
			return usageError("create <name>")
		}
		created, err := client.CreateChannel(ctx, params[0])
		if err != nil {
			return err
		}
		renderChannels(out, []channel.Channel{created})
	case "rename":
		if len(params) != 2 {
			return usageError("rename <id> <name>")
		}
		id, err := parseID(params[0])
		if err != nil {
			return err
		}
		renamed, err := client.RenameChannel(ctx, id, params[1])
		if err != nil {
			return err
		}
		renderChannels(out, []channel.Channel{renamed})
	case "delete":
		if len(params) != 1 {
			return usageError("delete <id>")
		}
		id, err := parseID(params[0])
		if err != nil {
			return err
		}
		if err := client.DeleteChannel(ctx, id); err != nil {
			return err
		}
		_, _ = fmt.Fprintf(out, "deleted channel %d\n", id)
	case "tail":
		return client.Tail(ctx, out)
	case "send":
		if len(params) < 3 {
			return usageError("send <channelId> <user> <text...>")
		}
		id, err := parseID(params[0])
		if err != nil {
			return err
		}
		return client.Send(ctx, out, id, params[1], strings.Join(params[2:], " "))
	default:
		fs.Usage()
		return errUsage
	}
	return nil
}

func usageError(form string) error {
	return fmt.Errorf("%w: chatctl %s", errUsage, form)
}

func parseID(raw string) (channel.ID, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("channel id %q is not an integer", raw)
	}
	return channel.ID(id), nil
}
