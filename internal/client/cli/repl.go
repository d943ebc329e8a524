package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

// execIface defines the minimal command surface the REPL needs to operate.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	isLoggedIn() bool
	Register(ctx context.Context) error
	Login(ctx context.Context) error
	Logout(ctx context.Context) error

	Today(ctx context.Context) error
	Write(ctx context.Context) error
	History(ctx context.Context) error
	Tags(ctx context.Context) error
	Export(ctx context.Context, path string) error

	Groups(ctx context.Context) error
	NewGroup(ctx context.Context) error
	Join(ctx context.Context, code string) error
	Feed(ctx context.Context, code string) error
	React(ctx context.Context, code, entryID, kind string) error
	Toggle(ctx context.Context, code, entryID string) error
}

const (
	helpGuest = "Available commands: register, login, exit"
	helpUser  = "Available commands: today, write, history, tags, export [file], " +
		"groups, newgroup, join <code>, feed <code>, react <code> <entry> <kind>, " +
		"toggle <code> <entry>, logout, exit"
)

// runREPL reads commands line by line from reader and dispatches them to a.
//
// Commands other than help, register, login and exit need a logged-in user.
// A failing command prints a short message and the loop goes on. The loop
// ends on end of input or on "exit"/"quit".
func runREPL(ctx context.Context, a execIface, statusFn func() string, reader *bufio.Reader) {
	for {
		printlnFn(fmt.Sprintf("rbt %s> ", statusFn()))
		line, err := reader.ReadString('\n')
		if err != nil && (!errors.Is(err, io.EOF) || line == "") {
			return
		}
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd, args := parts[0], parts[1:]

		switch cmd {
		case "help":
			if a.isLoggedIn() {
				printlnFn(helpUser)
			} else {
				printlnFn(helpGuest)
			}
			continue
		case "register":
			report(a.Register(ctx))
			continue
		case "login":
			report(a.Login(ctx))
			continue
		case "exit", "quit":
			printlnFn("Bye!")
			return
		}

		if !a.isLoggedIn() {
			if isKnown(cmd) {
				printlnFn("Please log in first")
			} else {
				printlnFn("Unknown command:", cmd)
			}
			continue
		}

		switch cmd {
		case "today":
			report(a.Today(ctx))
		case "write", "edit":
			report(a.Write(ctx))
		case "history":
			report(a.History(ctx))
		case "tags":
			report(a.Tags(ctx))
		case "export":
			path := ""
			if len(args) > 0 {
				path = args[0]
			}
			report(a.Export(ctx, path))
		case "groups":
			report(a.Groups(ctx))
		case "newgroup":
			report(a.NewGroup(ctx))
		case "join":
			if len(args) < 1 {
				printlnFn("Usage: join <code>")
				continue
			}
			report(a.Join(ctx, args[0]))
		case "feed":
			if len(args) < 1 {
				printlnFn("Usage: feed <code>")
				continue
			}
			report(a.Feed(ctx, args[0]))
		case "react":
			if len(args) < 3 {
				printlnFn("Usage: react <code> <entry> <like|love|support|celebrate>")
				continue
			}
			report(a.React(ctx, args[0], args[1], args[2]))
		case "toggle":
			if len(args) < 2 {
				printlnFn("Usage: toggle <code> <entry>")
				continue
			}
			report(a.Toggle(ctx, args[0], args[1]))
		case "logout":
			report(a.Logout(ctx))
		default:
			printlnFn("Unknown command:", cmd)
		}
	}
}

func isKnown(cmd string) bool {
	switch cmd {
	case "today", "write", "edit", "history", "tags", "export", "groups",
		"newgroup", "join", "feed", "react", "toggle", "logout":
		return true
	}
	return false
}

func report(err error) {
	if err != nil {
		printlnFn(describeError(err))
	}
}
