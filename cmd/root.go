package cmd

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/WuKongIM/wkdeploy/internal/cluster"
	wkerrors "github.com/WuKongIM/wkdeploy/internal/errors"
	"github.com/WuKongIM/wkdeploy/internal/options"
	"github.com/WuKongIM/wkdeploy/internal/render"
	"github.com/WuKongIM/wkdeploy/pkg/wklog"
	"github.com/WuKongIM/wkdeploy/version"
	"github.com/fatih/color"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/valyala/bytebufferpool"
	"go.uber.org/zap"
)

const usage = "generate-cluster -n <num_nodes>"

type rootCMD struct {
	cfgFile string
	opts    *options.Options
	stdout  io.Writer
	stderr  io.Writer
	wklog.Log
}

func newRootCMD(stdout, stderr io.Writer) *rootCMD {
	return &rootCMD{
		opts:   options.New(),
		stdout: stdout,
		stderr: stderr,
		Log:    wklog.NewWKLog("generate-cluster"),
	}
}

func (r *rootCMD) CMD() *cobra.Command {
	defaults := options.New()
	cmd := &cobra.Command{
		Use:   usage,
		Short: "Print the deploy command of every node in a cluster.",
		Long: fmt.Sprintf(`Print one deploy command per node. Node i is placed at <prefix>.(i+2), listens on
<port>+2+i and gets the full comma separated peer list of the cluster.
The commands are only printed, pipe them into a shell to run them.

version: %s`, version.String()),
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		Args:              cobra.NoArgs,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: r.initConfig,
		RunE:              r.run,
	}
	cmd.SetOut(r.stdout)
	cmd.SetErr(r.stderr)
	cmd.SetFlagErrorFunc(func(c *cobra.Command, err error) error {
		return errors.Wrap(wkerrors.ErrArgumentParse, err.Error())
	})

	flags := cmd.Flags()
	flags.IntP("nodes", "n", 0, "number of nodes to generate (required)")
	flags.String("prefix", defaults.Cluster.Prefix, "base network prefix, node i gets <prefix>.(i+2)")
	flags.Int("port", defaults.Cluster.Port, "base port shared by every peer address")
	flags.String("name", defaults.Cluster.NamePrefix, "node name prefix")
	flags.String("script", defaults.Output.Script, "command printed at the head of each deploy line")
	flags.String("format", defaults.Output.Format, "output format: "+strings.Join(render.Formats, ", "))
	flags.String("template", "", "go template executed per node when --format=template")
	flags.String("template-file", "", "file holding the template for --format=template")
	flags.Int("repl-factor", 0, "REPL_FACTOR for --format=env, omitted when 0")
	flags.String("log-level", defaults.Logger.Level.String(), "log level: debug, info, warn, error")
	flags.String("log-dir", "", "also write logs to rotating files in this directory")
	flags.StringVar(&r.cfgFile, "config", "", "config file")
	return cmd
}

func (r *rootCMD) initConfig(cmd *cobra.Command, args []string) error {
	if !cmd.Flags().Changed("nodes") {
		return errors.Wrap(wkerrors.ErrUsage, "-n is required")
	}

	vp := viper.New()
	if r.cfgFile != "" {
		vp.SetConfigFile(r.cfgFile)
		if err := vp.ReadInConfig(); err != nil {
			return errors.Wrap(wkerrors.ErrInvalidConfig, err.Error())
		}
	}
	vp.SetEnvPrefix("gc")
	vp.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	vp.AutomaticEnv()
	if err := vp.BindPFlags(cmd.Flags()); err != nil {
		return err
	}
	if err := r.opts.ConfigureWithViper(vp); err != nil {
		return err
	}

	logOpts := wklog.NewOptions()
	logOpts.Level = r.opts.Logger.Level
	logOpts.LogDir = r.opts.Logger.Dir
	logOpts.LineNum = r.opts.Logger.LineNum
	wklog.Configure(logOpts)

	if used := r.opts.ConfigFileUsed(); used != "" {
		r.Debug("using config file", zap.String("file", used))
	}
	return nil
}

func (r *rootCMD) run(cmd *cobra.Command, args []string) error {
	if err := r.opts.Check(); err != nil {
		return err
	}
	renderer, err := render.New(r.opts.Output.Format, r.opts.RenderOptions())
	if err != nil {
		return err
	}
	plan, err := cluster.Generate(r.opts.ClusterConfig())
	if err != nil {
		return err
	}

	// 全部渲染成功后再输出，失败时不输出任何命令
	buffer := bytebufferpool.Get()
	defer bytebufferpool.Put(buffer)
	if err := renderer.Render(buffer, plan); err != nil {
		r.Error("render failed", zap.Error(err), zap.String("format", r.opts.Output.Format))
		return err
	}
	if _, err := r.stdout.Write(buffer.B); err != nil {
		return err
	}
	r.Info("cluster generated",
		zap.Int("nodes", len(plan.Commands)),
		zap.String("prefix", plan.Config.Prefix),
		zap.Int("port", plan.Config.Port),
		zap.String("format", r.opts.Output.Format),
	)
	return nil
}

// Run 执行命令并返回进程退出码
func Run(args []string, stdout, stderr io.Writer) int {
	defer wklog.Sync()

	if len(args) < 2 {
		fmt.Fprintln(stderr, usage)
		return 1
	}
	cmd := newRootCMD(stdout, stderr).CMD()
	cmd.SetArgs(args)
	if err := cmd.Execute(); err != nil {
		color.New(color.FgRed).Fprintln(stderr, "error:", err)
		fmt.Fprintln(stderr, usage)
		return 1
	}
	return 0
}

func Execute() {
	os.Exit(Run(os.Args[1:], os.Stdout, os.Stderr))
}
