package options

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/WuKongIM/wkdeploy/internal/cluster"
	wkerrors "github.com/WuKongIM/wkdeploy/internal/errors"
	"github.com/pkg/errors"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestDefaults(t *testing.T) {
	opts := New(WithNodes(4))
	require.NoError(t, opts.ConfigureWithViper(viper.New()))
	require.NoError(t, opts.Check())

	cfg := opts.ClusterConfig()
	assert.Equal(t, cluster.NewConfig(4), cfg)
	assert.Equal(t, "deploy", opts.Output.Format)
	assert.Equal(t, "./deploy.sh", opts.Output.Script)
	assert.Equal(t, zapcore.WarnLevel, opts.Logger.Level)
}

func TestConfigureWithViperFile(t *testing.T) {
	dir := t.TempDir()
	cfgFile := filepath.Join(dir, "cluster.yaml")
	content := strings.Join([]string{
		"nodes: 3",
		"prefix: 10.10.0.",
		"port: 15000",
		"format: ENV",
		"repl-factor: 2",
		"log-level: debug",
		"log-dir: " + dir + "/logs/",
	}, "\n")
	require.NoError(t, os.WriteFile(cfgFile, []byte(content), 0644))

	vp := viper.New()
	vp.SetConfigFile(cfgFile)
	require.NoError(t, vp.ReadInConfig())

	opts := New()
	require.NoError(t, opts.ConfigureWithViper(vp))
	require.NoError(t, opts.Check())

	assert.Equal(t, 3, opts.Cluster.Nodes)
	assert.Equal(t, "10.10.0.", opts.Cluster.Prefix)
	assert.Equal(t, 15000, opts.Cluster.Port)
	assert.Equal(t, "env", opts.Output.Format)
	assert.Equal(t, 2, opts.RenderOptions().ReplFactor)
	assert.Equal(t, zapcore.DebugLevel, opts.Logger.Level)
	assert.Equal(t, filepath.Join(dir, "logs"), opts.Logger.Dir)
	assert.Equal(t, cfgFile, opts.ConfigFileUsed())
}

func TestConfigureWithViperEnv(t *testing.T) {
	t.Setenv("GC_PREFIX", "192.168.1.")
	t.Setenv("GC_REPL_FACTOR", "1")

	vp := viper.New()
	vp.SetEnvPrefix("gc")
	vp.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	vp.AutomaticEnv()

	opts := New(WithNodes(2))
	require.NoError(t, opts.ConfigureWithViper(vp))
	assert.Equal(t, "192.168.1.", opts.Cluster.Prefix)
	assert.Equal(t, 1, opts.Output.ReplFactor)
	assert.Equal(t, 2, opts.Cluster.Nodes)
}

func TestConfigureWithViperBadValues(t *testing.T) {
	vp := viper.New()
	vp.Set("port", "abc")
	err := New().ConfigureWithViper(vp)
	assert.True(t, errors.Is(err, wkerrors.ErrArgumentParse))

	vp = viper.New()
	vp.Set("log-level", "loud")
	err = New().ConfigureWithViper(vp)
	assert.True(t, errors.Is(err, wkerrors.ErrInvalidConfig))
}

func TestTemplateFile(t *testing.T) {
	tplFile := filepath.Join(t.TempDir(), "node.tpl")
	require.NoError(t, os.WriteFile(tplFile, []byte("{{ .Name }}"), 0644))

	vp := viper.New()
	vp.Set("template-file", tplFile)
	opts := New()
	require.NoError(t, opts.ConfigureWithViper(vp))
	assert.Equal(t, "{{ .Name }}", opts.Output.Template)

	vp.Set("template-file", filepath.Join(t.TempDir(), "missing.tpl"))
	err := New().ConfigureWithViper(vp)
	assert.True(t, errors.Is(err, wkerrors.ErrInvalidConfig))
}

func TestCheck(t *testing.T) {
	opts := New(WithNodes(2))
	opts.Output.ReplFactor = 3
	assert.True(t, errors.Is(opts.Check(), wkerrors.ErrInvalidConfig))

	opts = New(WithNodes(2))
	opts.Output.ReplFactor = -1
	assert.True(t, errors.Is(opts.Check(), wkerrors.ErrInvalidConfig))

	assert.True(t, errors.Is(New(WithNodes(-2)).Check(), wkerrors.ErrInvalidConfig))
	assert.True(t, errors.Is(New(WithNodes(2), WithPrefix("10.0.4")).Check(), wkerrors.ErrInvalidConfig))
	assert.NoError(t, New(WithNodes(0)).Check())
}
