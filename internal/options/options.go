package options

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/WuKongIM/wkdeploy/internal/cluster"
	wkerrors "github.com/WuKongIM/wkdeploy/internal/errors"
	"github.com/WuKongIM/wkdeploy/internal/render"
	"github.com/pkg/errors"
	"github.com/spf13/cast"
	"github.com/spf13/viper"
	"go.uber.org/zap/zapcore"
)

type Options struct {
	vp  *viper.Viper // 内部配置对象
	err error        // 读取配置时遇到的第一个错误

	// 集群相关配置
	Cluster struct {
		Nodes      int    // 节点数量
		Prefix     string // 网段前缀 例如：10.0.4.
		Port       int    // 基础端口
		NamePrefix string // 节点名前缀
	}
	// 输出相关配置
	Output struct {
		Format     string // deploy env json yaml template
		Script     string // 部署脚本 默认为 ./deploy.sh
		Template   string // template格式使用的模版
		ReplFactor int    // env格式的副本数，0表示不输出
	}
	// 日志配置
	Logger struct {
		Level   zapcore.Level
		Dir     string // 为空不写文件
		LineNum bool   // 是否显示代码行数
	}
}

func New(op ...Option) *Options {
	opts := &Options{}
	opts.Cluster.Prefix = cluster.DefaultPrefix
	opts.Cluster.Port = cluster.DefaultPort
	opts.Cluster.NamePrefix = cluster.DefaultNamePrefix
	opts.Output.Format = render.FormatDeploy
	opts.Output.Script = render.DefaultScript
	opts.Logger.Level = zapcore.WarnLevel

	for _, o := range op {
		o(opts)
	}
	return opts
}

// ConfigureWithViper 从viper读取配置，未设置的项保留默认值
func (o *Options) ConfigureWithViper(vp *viper.Viper) error {
	o.vp = vp
	o.err = nil

	// =================== cluster ===================
	o.Cluster.Nodes = o.getInt("nodes", o.Cluster.Nodes)
	o.Cluster.Prefix = o.getString("prefix", o.Cluster.Prefix)
	o.Cluster.Port = o.getInt("port", o.Cluster.Port)
	o.Cluster.NamePrefix = o.getString("name", o.Cluster.NamePrefix)

	// =================== output ===================
	o.Output.Format = strings.ToLower(o.getString("format", o.Output.Format))
	o.Output.Script = o.getString("script", o.Output.Script)
	o.Output.Template = o.getString("template", o.Output.Template)
	o.Output.ReplFactor = o.getInt("repl-factor", o.Output.ReplFactor)

	// =================== logger ===================
	levelStr := o.getString("log-level", "")
	if levelStr != "" {
		level, err := zapcore.ParseLevel(levelStr)
		if err != nil {
			return errors.Wrapf(wkerrors.ErrInvalidConfig, "log-level %q", levelStr)
		}
		o.Logger.Level = level
	}
	o.Logger.Dir = o.getString("log-dir", o.Logger.Dir)
	if o.Logger.Dir != "" {
		o.Logger.Dir = filepath.Clean(o.Logger.Dir)
	}
	o.Logger.LineNum = o.getBool("log-linenum", o.Logger.LineNum)

	// 模版可以从文件读取
	if tplFile := o.getString("template-file", ""); tplFile != "" && o.Output.Template == "" {
		data, err := os.ReadFile(tplFile)
		if err != nil {
			return errors.Wrap(wkerrors.ErrInvalidConfig, err.Error())
		}
		o.Output.Template = string(data)
	}
	return o.err
}

// Check 校验配置
func (o *Options) Check() error {
	if o.Output.ReplFactor < 0 {
		return errors.Wrapf(wkerrors.ErrInvalidConfig, "repl-factor must not be negative, got %d", o.Output.ReplFactor)
	}
	if o.Output.ReplFactor > o.Cluster.Nodes && o.Cluster.Nodes > 0 {
		return errors.Wrapf(wkerrors.ErrInvalidConfig, "repl-factor %d exceeds node count %d", o.Output.ReplFactor, o.Cluster.Nodes)
	}
	return o.ClusterConfig().Validate()
}

// ClusterConfig 生成器使用的集群配置
func (o *Options) ClusterConfig() cluster.Config {
	return cluster.NewConfig(o.Cluster.Nodes,
		cluster.WithPrefix(o.Cluster.Prefix),
		cluster.WithPort(o.Cluster.Port),
		cluster.WithNamePrefix(o.Cluster.NamePrefix),
	)
}

// RenderOptions 输出格式相关配置
func (o *Options) RenderOptions() render.Options {
	return render.Options{
		Script:     o.Output.Script,
		ReplFactor: o.Output.ReplFactor,
		Template:   o.Output.Template,
	}
}

func (o *Options) ConfigFileUsed() string {
	if o.vp == nil {
		return ""
	}
	return o.vp.ConfigFileUsed()
}

func (o *Options) getString(key string, defaultValue string) string {
	v := o.vp.GetString(key)
	if v == "" {
		return defaultValue
	}
	return v
}

func (o *Options) getInt(key string, defaultValue int) int {
	if !o.vp.IsSet(key) {
		return defaultValue
	}
	v, err := cast.ToIntE(o.vp.Get(key))
	if err != nil {
		if o.err == nil {
			o.err = errors.Wrapf(wkerrors.ErrArgumentParse, "%s: %v", key, err)
		}
		return defaultValue
	}
	return v
}

func (o *Options) getBool(key string, defaultValue bool) bool {
	objV := o.vp.Get(key)
	if objV == nil {
		return defaultValue
	}
	return cast.ToBool(objV)
}

type Option func(opts *Options)

func WithNodes(nodes int) Option {
	return func(opts *Options) {
		opts.Cluster.Nodes = nodes
	}
}

func WithPrefix(prefix string) Option {
	return func(opts *Options) {
		opts.Cluster.Prefix = prefix
	}
}

func WithPort(port int) Option {
	return func(opts *Options) {
		opts.Cluster.Port = port
	}
}

func WithFormat(format string) Option {
	return func(opts *Options) {
		opts.Output.Format = format
	}
}

func WithScript(script string) Option {
	return func(opts *Options) {
		opts.Output.Script = script
	}
}
