package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/matheus3301/pairchat/internal/client"
	"github.com/matheus3301/pairchat/internal/config"
	"github.com/matheus3301/pairchat/internal/session"
	"go.uber.org/zap"
)

const callTimeout = 10 * time.Second

// cli carries the global flags and resolved settings shared by commands.
type cli struct {
	session    string
	socket     string
	storageURL string
	jsonOut    bool
	logger     *zap.Logger
}

type command struct {
	usage string
	help  string
	// long commands run until interrupted instead of under callTimeout.
	long bool
	run  func(ctx context.Context, a *cli, args []string) error
}

var commands = map[string]command{
	"register":      {"register -name N -email E -phone P -password X [-image F]", "Create an account", false, cmdRegister},
	"login":         {"login [-password X] <email>", "Log in and store the session token", false, cmdLogin},
	"logout":        {"logout", "Mark yourself disconnected and forget the token", false, cmdLogout},
	"whoami":        {"whoami", "Show your profile", false, cmdWhoami},
	"contacts":      {"contacts [query]", "List contacts with presence", false, cmdContacts},
	"status":        {"status", "Show daemon status", false, cmdStatus},
	"share":         {"share", "Print your participant id as a QR code", false, cmdShare},
	"watch":         {"watch <peer>", "Follow a conversation and the peer's typing", true, cmdWatch},
	"send":          {"send <peer> <text...>", "Send a text message", false, cmdSend},
	"send-location": {"send-location <peer> -at lat,lon [-deny]", "Send a location", false, cmdSendLocation},
	"send-file":     {"send-file <peer> <path> [-mime M]", "Upload and send a file", false, cmdSendFile},
	"send-audio":    {"send-audio <peer> <path> [-deny]", "Upload and send an audio clip", false, cmdSendAudio},
	"typing":        {"typing <peer> on|off", "Set your typing flag", false, cmdTyping},
}

var order = []string{
	"register", "login", "logout", "whoami", "contacts", "status", "share",
	"watch", "send", "send-location", "send-file", "send-audio", "typing",
}

func main() {
	sessionFlag := flag.String("session", "", "session name (overrides config default)")
	socketFlag := flag.String("socket", "", "daemon socket (overrides config)")
	jsonFlag := flag.Bool("json", false, "output in JSON format")
	verboseFlag := flag.Bool("v", false, "log client activity to stderr")
	flag.Usage = printUsage
	flag.Parse()

	if err := config.LoadEnvFiles(session.EnvPath()); err != nil {
		fatal(err)
	}
	cfg, err := config.LoadClient(session.ConfigPath())
	if err != nil {
		fatal(err)
	}

	a := &cli{
		session:    session.Resolve(*sessionFlag),
		socket:     cfg.Socket,
		storageURL: cfg.StorageURL,
		jsonOut:    *jsonFlag,
		logger:     zap.NewNop(),
	}
	if err := session.ValidateName(a.session); err != nil {
		fatal(err)
	}
	if *socketFlag != "" {
		a.socket = *socketFlag
	}
	if a.socket == "" {
		a.socket = session.SocketPath()
	}
	if *verboseFlag {
		if l, err := zap.NewDevelopment(); err == nil {
			a.logger = l
		}
	}
	defer func() { _ = a.logger.Sync() }()

	args := flag.Args()
	if len(args) == 0 {
		printUsage()
		os.Exit(1)
	}
	cmd, ok := commands[args[0]]
	if !ok {
		fmt.Fprintf(os.Stderr, "unknown command: %s\n", args[0])
		printUsage()
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if !cmd.long {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, callTimeout)
		defer cancel()
	}

	if err := cmd.run(ctx, a, args[1:]); err != nil {
		if errors.Is(err, errUsage) {
			fmt.Fprintf(os.Stderr, "usage: pairchatctl %s\n", cmd.usage)
			os.Exit(2)
		}
		fatal(err)
	}
}

func printUsage() {
	fmt.Fprintln(os.Stderr, "usage: pairchatctl [--session <name>] [--socket <path>] [--json] [-v] <command>")
	fmt.Fprintln(os.Stderr, "")
	fmt.Fprintln(os.Stderr, "commands:")
	for _, name := range order {
		c := commands[name]
		fmt.Fprintf(os.Stderr, "  %-50s %s\n", c.usage, c.help)
	}
}

var errUsage = errors.New("usage")

func fatal(err error) {
	fmt.Fprintf(os.Stderr, "error: %v\n", err)
	os.Exit(1)
}

// dial connects anonymously.
func (a *cli) dial() (*client.Client, error) {
	return a.connect("")
}

// dialSession connects with the stored token of the active session.
func (a *cli) dialSession() (*client.Client, error) {
	token, err := session.LoadToken(a.session)
	if errors.Is(err, session.ErrNotLoggedIn) {
		return nil, fmt.Errorf("session %q is not logged in, run pairchatctl login", a.session)
	}
	if err != nil {
		return nil, err
	}
	return a.connect(token)
}

// dialStorage is dialSession for commands that upload. When no storage URL
// is configured the daemon's advertised one is used.
func (a *cli) dialStorage(ctx context.Context) (*client.Client, error) {
	if a.storageURL == "" {
		anon, err := a.dial()
		if err != nil {
			return nil, err
		}
		st, err := anon.Status(ctx)
		_ = anon.Close()
		if err != nil {
			return nil, err
		}
		a.storageURL = st.StorageURL
	}
	return a.dialSession()
}

func (a *cli) connect(token string) (*client.Client, error) {
	c, err := client.New(a.socket, client.Options{Token: token, StorageURL: a.storageURL})
	if err != nil {
		return nil, fmt.Errorf("cannot connect to daemon at %s: %w", a.socket, err)
	}
	return c, nil
}

func outputJSON(v any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		fmt.Fprintf(os.Stderr, "json encode error: %v\n", err)
	}
}
