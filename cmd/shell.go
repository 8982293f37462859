package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"capstone/insights/internal/activity"
	"capstone/insights/internal/auth"
	"capstone/insights/internal/config"
	"capstone/insights/internal/dashboard"
	"capstone/insights/internal/hierarchy"
)

var shellSource string

var shellCmd = &cobra.Command{
	Use:   "shell",
	Short: "Interactive dashboard session",
	Long: `Start an interactive session. Log in, then narrow the view with
hierarchy selections and filters. Type "help" for commands.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := OpenDatabase()
		if err != nil {
			return err
		}
		defer d.Close()
		svc, err := newService(d, cfg, logger)
		if err != nil {
			return err
		}
		sh := NewShell(svc, cmd.InOrStdin(), cmd.OutOrStdout())
		sh.source = shellSource
		return sh.Run()
	},
}

func init() {
	shellCmd.Flags().StringVar(&shellSource, "source", config.SourceTableau, "Initial activity source")
	rootCmd.AddCommand(shellCmd)
}

const shellHelp = `Commands:
  login <account> [secret]     log in (secret read from the next line when omitted)
  logout                       end the session
  whoami                       show the session
  sources                      list sources
  source <name>                switch source
  levels                       show hierarchy choices
  select <Hn> <value|None>     choose a value at level Hn (clears deeper levels)
  filter actor|category|search <value|All>
  filter from|to <YYYY-MM-DD|All>
  clear [path|filters]         reset selections and filters
  show [json]                  render the dashboard
  reload                       re-read hierarchy and activity from the database
  help                         this text
  quit                         leave
`

var errQuit = errors.New("quit")

// Shell is a line-oriented dashboard session. It owns exactly one auth
// session; logging out clears the selection state too.
type Shell struct {
	svc  *dashboard.Service
	sess *auth.Session
	in   *bufio.Scanner
	out  io.Writer

	source   string
	path     []hierarchy.Selection
	criteria activity.Criteria
}

func NewShell(svc *dashboard.Service, in io.Reader, out io.Writer) *Shell {
	return &Shell{
		svc:    svc,
		sess:   auth.NewSession(),
		in:     bufio.NewScanner(in),
		out:    out,
		source: config.SourceTableau,
	}
}

// Run reads commands until EOF or quit
func (sh *Shell) Run() error {
	fmt.Fprintln(sh.out, `insights shell. Type "help" for commands.`)
	for {
		fmt.Fprint(sh.out, "> ")
		if !sh.in.Scan() {
			break
		}
		err := sh.exec(strings.Fields(sh.in.Text()))
		if errors.Is(err, errQuit) {
			break
		}
		if err != nil {
			fmt.Fprintf(sh.out, "error: %v\n", err)
		}
	}
	sh.svc.Logout(sh.sess)
	return sh.in.Err()
}

func (sh *Shell) exec(args []string) error {
	if len(args) == 0 {
		return nil
	}
	cmd, rest := strings.ToLower(args[0]), args[1:]
	switch cmd {
	case "help", "?":
		fmt.Fprint(sh.out, shellHelp)
	case "quit", "exit":
		return errQuit
	case "login":
		return sh.login(rest)
	case "logout":
		sh.svc.Logout(sh.sess)
		sh.resetState()
		fmt.Fprintln(sh.out, "Logged out.")
	case "whoami":
		sh.whoami()
	case "sources":
		for _, name := range sh.svc.Sources() {
			marker := " "
			if name == sh.source {
				marker = "*"
			}
			fmt.Fprintf(sh.out, "  %s %s\n", marker, name)
		}
	case "source":
		if len(rest) != 1 {
			return fmt.Errorf("usage: source <name>")
		}
		sh.source = rest[0]
	case "levels":
		v, err := sh.view()
		if err != nil {
			return err
		}
		printLevels(sh.out, v.Levels)
	case "select":
		return sh.selectLevel(rest)
	case "filter":
		return sh.filter(rest)
	case "clear":
		return sh.clear(rest)
	case "reload":
		sh.svc.Reload()
		fmt.Fprintln(sh.out, "Reloaded.")
	case "show":
		v, err := sh.view()
		if err != nil {
			return err
		}
		return writeView(sh.out, v, len(rest) > 0 && strings.EqualFold(rest[0], "json"))
	default:
		return fmt.Errorf("unknown command %q (try help)", cmd)
	}
	return nil
}

func (sh *Shell) login(args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: login <account> [secret]")
	}
	secret := strings.Join(args[1:], " ")
	if secret == "" {
		fmt.Fprint(sh.out, "Secret: ")
		if !sh.in.Scan() {
			return fmt.Errorf("no secret given")
		}
		secret = sh.in.Text()
	}
	prev := sh.sess.Account()
	id, err := sh.svc.Login(sh.sess, args[0], secret)
	if err != nil {
		return err
	}
	if sh.sess.Account() != prev {
		sh.resetState()
	}
	fmt.Fprintf(sh.out, "Logged in as %s.\n", id)
	return nil
}

func (sh *Shell) whoami() {
	id, ok := sh.sess.CurrentIdentity()
	if !ok {
		fmt.Fprintln(sh.out, "Not logged in.")
		return
	}
	fmt.Fprintf(sh.out, "%s (account %s, session %s, since %s)\n",
		id, sh.sess.Account(), sh.sess.ID, humanize.Time(sh.sess.Since()))
	fmt.Fprintf(sh.out, "source: %s\n", sh.source)
	if len(sh.path) > 0 {
		fmt.Fprintf(sh.out, "path: %s\n", formatPath(sh.path))
	}
}

func (sh *Shell) selectLevel(args []string) error {
	if len(args) < 2 {
		return fmt.Errorf("usage: select <Hn> <value|None>")
	}
	level := strings.ToUpper(args[0])
	if hierarchy.ParseLevel(level) < 2 {
		return fmt.Errorf("level must be H2..H%d", hierarchy.MaxLevels)
	}
	sh.path = withSelection(sh.path, level, strings.Join(args[1:], " "))

	v, err := sh.view()
	if err != nil {
		return err
	}
	if len(v.Ignored) > 0 {
		fmt.Fprintf(sh.out, "ignored: %s\n", formatPath(v.Ignored))
		sh.path = v.Applied
	}
	printLevels(sh.out, v.Levels)
	return nil
}

func (sh *Shell) filter(args []string) error {
	if len(args) < 2 {
		return fmt.Errorf("usage: filter actor|category|search|from|to <value>")
	}
	value := strings.Join(args[1:], " ")
	if strings.EqualFold(value, activity.AllValue) {
		value = ""
	}
	c := sh.criteria
	switch strings.ToLower(args[0]) {
	case "actor":
		c.Actor = value
	case "category":
		c.Category = value
	case "search":
		c.Search = value
	case "from":
		t, err := parseDate(value)
		if err != nil {
			return err
		}
		c.From = t
	case "to":
		t, err := parseDate(value)
		if err != nil {
			return err
		}
		c.To = t
	default:
		return fmt.Errorf("unknown filter %q", args[0])
	}
	sh.criteria = c
	return nil
}

func (sh *Shell) clear(args []string) error {
	what := "all"
	if len(args) > 0 {
		what = strings.ToLower(args[0])
	}
	switch what {
	case "path":
		sh.path = nil
	case "filters":
		sh.criteria = activity.Criteria{}
	case "all":
		sh.resetState()
	default:
		return fmt.Errorf("usage: clear [path|filters]")
	}
	return nil
}

func (sh *Shell) resetState() {
	sh.path = nil
	sh.criteria = activity.Criteria{}
}

func (sh *Shell) view() (*dashboard.View, error) {
	return sh.svc.View(sh.sess, dashboard.Query{
		Source:   sh.source,
		Path:     sh.path,
		Criteria: sh.criteria,
	})
}
