package contactcmd

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/lehigh-university-libraries/contacts/internal/config"
	"github.com/lehigh-university-libraries/contacts/internal/contactlist"
	"github.com/lehigh-university-libraries/contacts/internal/contacts"
	"github.com/lehigh-university-libraries/contacts/internal/creation"
	"github.com/lehigh-university-libraries/contacts/internal/detail"
	"github.com/lehigh-university-libraries/contacts/internal/logging"
	"github.com/lehigh-university-libraries/contacts/internal/notify"
	"github.com/spf13/cobra"
)

// Options are the persistent flags shared by every contacts command
type Options struct {
	ConfigPath string
	APIURL     string
	PageSize   int
	Timeout    time.Duration
	Output     string
	Log        logging.Options
}

// AddFlags registers the shared flags on the root command
func (o *Options) AddFlags(cmd *cobra.Command) {
	flags := cmd.PersistentFlags()
	flags.StringVar(&o.ConfigPath, "config", "", "Path to a YAML config file (or "+config.EnvConfig+")")
	flags.StringVar(&o.APIURL, "api-url", config.DefaultAPIURL, "Contacts API base URL (or "+config.EnvAPIURL+")")
	flags.IntVar(&o.PageSize, "page-size", contacts.DefaultPageSize, "Contacts per page (or "+config.EnvPageSize+")")
	flags.DurationVar(&o.Timeout, "timeout", 30*time.Second, "Per-request timeout (or "+config.EnvTimeout+")")
	flags.StringVarP(&o.Output, "output", "o", "table", "Output format (table, json, yaml)")
	flags.BoolVarP(&o.Log.Verbose, "verbose", "v", false, "Verbose logging")
	flags.StringVar(&o.Log.Format, "log-format", "text", "Log format (text, json)")
	flags.StringVar(&o.Log.Level, "log-level", "info", "Log level (debug, info, warn, error)")
	flags.BoolVar(&o.Log.NoColor, "no-color", false, "Disable coloured log output (or NO_COLOR)")
}

// Load resolves the configuration; flags set on the command line win
func (o *Options) Load(cmd *cobra.Command) (config.Config, error) {
	cfg, err := config.Load(o.ConfigPath)
	if err != nil {
		return cfg, err
	}
	flags := cmd.Flags()
	if flags.Changed("api-url") {
		cfg.APIURL = o.APIURL
	}
	if flags.Changed("page-size") {
		cfg.PageSize = o.PageSize
	}
	if flags.Changed("timeout") {
		cfg.Timeout = o.Timeout
	}
	return cfg, cfg.Validate()
}

// app wires the client-side components for a single command run
type app struct {
	cfg    config.Config
	client *contacts.Client
	sink   notify.Sink
	lists  *contactlist.Store
	view   *listView
}

func (o *Options) newApp(cmd *cobra.Command) (*app, error) {
	cfg, err := o.Load(cmd)
	if err != nil {
		return nil, err
	}
	format := strings.ToLower(o.Output)
	if !validFormat(format) {
		return nil, fmt.Errorf("unsupported output format: %s (supported: table, json, yaml)", o.Output)
	}

	client := contacts.NewClient(cfg.BaseURL(),
		contacts.WithPageSize(cfg.PageSize),
		contacts.WithTimeout(cfg.Timeout),
	)
	sink := o.sink(cmd.ErrOrStderr())
	lists := contactlist.New(client, sink, cfg.PageSize)
	return &app{
		cfg:    cfg,
		client: client,
		sink:   sink,
		lists:  lists,
		view:   &listView{lists: lists, out: cmd.OutOrStdout(), format: format},
	}, nil
}

// sink prints outcomes for the user; with JSON logs they are also recorded
// as log entries so log collectors see them
func (o *Options) sink(w io.Writer) notify.Sink {
	terminal := notify.NewTerminal(w)
	if strings.EqualFold(o.Log.Format, "json") {
		return notify.Multi{terminal, notify.Log{}}
	}
	return terminal
}

func (a *app) editor() *detail.Editor {
	return detail.New(a.client, a.sink, detail.WithLists(a.lists), detail.WithNavigator(a.view))
}

func (a *app) creation() *creation.Flow {
	return creation.New(a.client, a.sink,
		creation.WithLists(a.lists),
		creation.RequirePhoto(a.cfg.RequirePhoto),
		creation.RollbackOrphans(a.cfg.RollbackOrphans),
	)
}

// listView is the navigator: showing the list prints the current page
type listView struct {
	lists  *contactlist.Store
	out    io.Writer
	format string
	err    error
}

func (v *listView) ShowList() {
	page := v.lists.Page()
	v.err = render(v.out, v.format, pageView{Page: page, Number: v.lists.CurrentPage()})
}

// readPhoto loads a photo file for upload
func readPhoto(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read photo: %w", err)
	}
	return data, nil
}

// parseAssignments turns repeated key=value flags into field edits
func parseAssignments(pairs []string) ([][2]string, error) {
	var out [][2]string
	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		if !ok {
			return nil, fmt.Errorf("invalid --set %q: expected field=value", pair)
		}
		out = append(out, [2]string{strings.TrimSpace(key), value})
	}
	return out, nil
}
