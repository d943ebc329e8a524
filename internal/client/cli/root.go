package cli

import (
	"context"
	"fmt"
)

func (a *App) getStatus() string {
	s := ""
	if a.session != nil && a.session.UserName != "" {
		s = a.session.UserName + " "
	}
	if m := a.Mode(); m != "" {
		s = s + string(m)
	}
	if s != "" {
		s = fmt.Sprintf("(%s)", s)
	}
	return s
}

func (a *App) println(args ...any) {
	fmt.Fprintln(a.out, args...)
}

// Root greets the user, starts the connectivity watcher and serves the REPL
// until exit or end of input.
func (a *App) Root(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	a.println("Welcome to Rose Bud Thorn (type 'help' for commands)")
	if a.isLoggedIn() {
		a.println(fmt.Sprintf("Logged in as %s", a.session.UserName))
	} else {
		a.println("Type 'login' or 'register' to start")
	}

	go a.StartOnlineStatusWatcher(ctx, a.config.OnlineCheckInterval)

	runREPL(ctx, a, a.getStatus, a.reader)
}
