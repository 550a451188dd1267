package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/yildizdb/yildiz-go/config"
	"github.com/yildizdb/yildiz-go/internal/logging"
	"github.com/yildizdb/yildiz-go/internal/output"
	"github.com/yildizdb/yildiz-go/transport"
	"github.com/yildizdb/yildiz-go/yildiz"
)

var version = "0.1.0"

// envPrefix is prepended to every flag name to form its environment
// variable: --no-keepalive becomes YILDIZ_NO_KEEPALIVE.
const envPrefix = "YILDIZ"

// app carries the state shared by every command of one invocation.
type app struct {
	v      *viper.Viper
	out    io.Writer
	errOut io.Writer

	cfg       transport.Config
	logger    *zap.Logger
	client    *yildiz.Client
	formatter output.FormatProvider
	noColor   bool
}

// NewRootCmd builds the command tree writing to out and errOut.
func NewRootCmd(out, errOut io.Writer) *cobra.Command {
	return newRootCmd(newApp(out, errOut))
}

func newApp(out, errOut io.Writer) *app {
	return &app{
		v:      viper.New(),
		out:    out,
		errOut: errOut,
		logger: zap.NewNop(),
	}
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:     "yildiz",
		Short:   "Command line client for the yildiz graph service",
		Version: version,
		Long: `yildiz talks to a yildiz graph server on behalf of one tenant.

Connection settings come from flags, YILDIZ_* environment variables (a .env
file in the working directory is honored), and an optional profile file, in
that order of precedence.`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.setup,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}
	root.SetOut(a.out)
	root.SetErr(a.errOut)

	flags := root.PersistentFlags()
	flags.StringP("config", "c", "", "Profile file (YAML or JSON)")
	flags.StringP("profile", "p", "", "Profile to use from the profile file")
	flags.String("proto", "", "Protocol, http or https (default http)")
	flags.String("host", "", "Server host (default localhost)")
	flags.Int("port", 0, "Server port (default 3058)")
	flags.String("prefix", "", "Tenant prefix (default \"default\")")
	flags.String("token", "", "Value of the authorization header")
	flags.Bool("no-keepalive", false, "Open a new connection for every request")
	flags.Bool("timings", false, "Record connection timing phases")
	flags.DurationP("timeout", "t", 0, "Per-request timeout (default 7.5s)")
	flags.String("log-level", "", "Log level: debug, info, warn, error (default info)")
	flags.StringP("output", "o", "text", "Output format: text, json, yaml")
	flags.Bool("no-color", false, "Disable colored output")
	flags.BoolP("verbose", "v", false, "Enable verbose output")

	root.AddCommand(
		newVersionCmd(a),
		newAdminCmd(a),
		newRawCmd(a),
		newTranslationCmd(a),
		newNodeCmd(a),
		newEdgeCmd(a),
		newUpsertCmd(a),
		newQueryCmd(a),
		newPathCmd(a),
		newEdgeInfoCmd(a),
		newBenchCmd(a),
	)
	a.releaseAfter(root)

	return root
}

// releaseAfter wraps every runnable command so the client is closed and the
// logger flushed whether the command succeeds or fails. PersistentPostRunE
// is skipped by cobra when RunE returns an error.
func (a *app) releaseAfter(cmd *cobra.Command) {
	if run := cmd.RunE; run != nil {
		cmd.RunE = func(c *cobra.Command, args []string) error {
			defer a.teardown()
			return run(c, args)
		}
	}
	for _, sub := range cmd.Commands() {
		a.releaseAfter(sub)
	}
}

// Execute runs the command tree against os.Args and reports errors on
// stderr.
func Execute() error {
	root := NewRootCmd(os.Stdout, os.Stderr)
	if err := root.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "%s Error: %v\n", output.ErrorIcon(output.ColorDisabled(os.Stderr, false)), err)
		return err
	}
	return nil
}

// setup binds flags and environment, then builds the logger and formatter.
// The client itself is created on first use.
func (a *app) setup(cmd *cobra.Command, args []string) error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("load .env: %w", err)
	}

	a.v.SetEnvPrefix(envPrefix)
	a.v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	a.v.AutomaticEnv()
	if err := a.v.BindPFlags(cmd.Flags()); err != nil {
		return err
	}

	var file *config.File
	if path := a.v.GetString("config"); path != "" {
		loaded, err := config.Load(path)
		if err != nil {
			return err
		}
		file = loaded
	}

	level := a.v.GetString("log-level")
	if level == "" && file != nil {
		level = file.LogLevel
	}
	logger, err := logging.New(level, a.errOut)
	if err != nil {
		return err
	}
	a.logger = logger

	a.noColor = output.ColorDisabled(a.out, a.v.GetBool("no-color"))
	formatter, err := output.GetFormatter(output.OutputFormat(a.v.GetString("output")), a.v.GetBool("verbose"), a.noColor)
	if err != nil {
		return err
	}
	a.formatter = formatter

	cfg, err := a.transportConfig(file)
	if err != nil {
		return err
	}
	a.cfg = cfg
	return nil
}

// transportConfig merges the selected profile with flag and environment
// overrides. Settings left unset fall through to the transport defaults.
func (a *app) transportConfig(file *config.File) (transport.Config, error) {
	var cfg transport.Config
	if file != nil {
		profile, err := file.Profile(a.v.GetString("profile"))
		if err != nil {
			return cfg, err
		}
		cfg = profile.TransportConfig()
	} else if a.v.GetString("profile") != "" {
		return cfg, errors.New("--profile requires --config")
	}

	if v := a.v.GetString("proto"); v != "" {
		cfg.Proto = v
	}
	if v := a.v.GetString("host"); v != "" {
		cfg.Host = v
	}
	if port := a.v.GetInt("port"); port != 0 {
		cfg.Port = port
	}
	if v := a.v.GetString("prefix"); v != "" {
		cfg.Prefix = v
	}
	if v := a.v.GetString("token"); v != "" {
		cfg.AuthToken = v
	}
	if a.v.GetBool("no-keepalive") {
		cfg.DisableConnectionReuse = true
	}
	if a.v.GetBool("timings") {
		cfg.EnableTimings = true
	}
	if timeout := a.v.GetDuration("timeout"); timeout > 0 {
		cfg.DefaultTimeout = timeout
	}
	return cfg, nil
}

// connect returns the client for this invocation, creating it on first use.
func (a *app) connect() (*yildiz.Client, error) {
	if a.client != nil {
		return a.client, nil
	}
	client, err := yildiz.New(a.cfg, transport.WithLogger(a.logger))
	if err != nil {
		return nil, err
	}
	a.client = client
	return client, nil
}

func (a *app) teardown() {
	if a.client != nil {
		a.client.Close()
		a.client = nil
	}
	// Sync fails on terminals and pipes; nothing useful can be done then.
	_ = a.logger.Sync()
}

// printDoc writes a facade result. A nil document means the resource does
// not exist.
func (a *app) printDoc(doc *yildiz.Document) {
	if doc == nil {
		fmt.Fprint(a.out, a.formatter.FormatValue(nil))
		return
	}
	fmt.Fprint(a.out, a.formatter.FormatValue(doc.Value))
}

func (a *app) success(format string, args ...interface{}) {
	fmt.Fprintf(a.out, "%s %s\n", output.SuccessIcon(a.noColor), fmt.Sprintf(format, args...))
}
