package cli

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

// execIface defines the minimal command surface the REPL needs to operate.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	isSignedIn() bool
	Status(ctx context.Context) error
	ListMarks(ctx context.Context) error
	AddMark(ctx context.Context) error
	EditMark(ctx context.Context) error
	DeleteMark(ctx context.Context) error
	SetBirthDate(ctx context.Context) error
	SetExpectancy(ctx context.Context, args []string) error
	Export(ctx context.Context, args []string) error
	Import(ctx context.Context, args []string) error
	Register(ctx context.Context) error
	Login(ctx context.Context) error
	Logout(ctx context.Context) error
	Sync(ctx context.Context) error
	Pull(ctx context.Context) error
	Push(ctx context.Context, force bool) error
	ResetRemote(ctx context.Context) error
	Reset(ctx context.Context) error
}

func (a *App) getStatus() string {
	s := string(a.Mode)
	if a.isSignedIn() {
		s = a.engine.Username() + " " + s
	}
	return fmt.Sprintf("(%s)", s)
}

// runREPL reads a line from the provided scanner, parses the first token as
// the command, and dispatches to methods on 'a'. Unknown commands are
// reported back to the user. The loop exits on scanner EOF or when the user
// types "exit" or "quit".
//
// Errors returned by command handlers are printed by the handlers themselves;
// the loop only keeps reading. This keeps the REPL resilient and focused on I/O.
func runREPL(ctx context.Context, a execIface, statusFn func() string, scanner *bufio.Scanner) {
	for {
		fmt.Printf("lw %s> ", statusFn())
		if !scanner.Scan() {
			return
		}
		line := scanner.Text()
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}

		cmd := parts[0]
		args := parts[1:]

		switch cmd {
		case "help":
			printlnFn("Local:  status, (l)ist, add, edit, del, setdob, setexpectancy <years>, export <file>, import <file>, reset")
			if a.isSignedIn() {
				printlnFn("Remote: sync, pull, push [-f], resetremote, logout")
			} else {
				printlnFn("Remote: register, login")
			}
			printlnFn("Other:  help, exit")

		case "status":
			_ = a.Status(ctx)

		case "l", "list", "marks":
			_ = a.ListMarks(ctx)

		case "add":
			_ = a.AddMark(ctx)

		case "edit":
			_ = a.EditMark(ctx)

		case "del", "delete":
			_ = a.DeleteMark(ctx)

		case "setdob":
			_ = a.SetBirthDate(ctx)

		case "setexpectancy":
			_ = a.SetExpectancy(ctx, args)

		case "export":
			_ = a.Export(ctx, args)

		case "import":
			_ = a.Import(ctx, args)

		case "register":
			_ = a.Register(ctx)

		case "login":
			_ = a.Login(ctx)

		case "logout":
			_ = a.Logout(ctx)

		case "sync":
			_ = a.Sync(ctx)

		case "pull":
			_ = a.Pull(ctx)

		case "push":
			force := len(args) > 0 && (args[0] == "-f" || args[0] == "--force")
			_ = a.Push(ctx, force)

		case "resetremote":
			_ = a.ResetRemote(ctx)

		case "reset":
			_ = a.Reset(ctx)

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			printlnFn("Unknown command:", cmd)
		}
	}
}

func (a *App) Root(ctx context.Context) {
	printlnFn("Welcome to LifeWeeks CLI (type 'help' for commands)")
	if a.memoryOnly {
		printlnFn("WARNING: local database unavailable, changes will not survive exit")
	}

	go func() {
		a.StartOnlineStatusWatcher(ctx, a.config.OnlineCheckInterval)
	}()

	go func() {
		a.StartChangeWatcher(ctx)
	}()

	scanner := bufio.NewScanner(os.Stdin)
	runREPL(ctx, a, a.getStatus, scanner)
}
