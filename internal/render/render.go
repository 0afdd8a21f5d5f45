package render

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/template"

	"github.com/Masterminds/sprig/v3"
	"github.com/WuKongIM/wkdeploy/internal/cluster"
	wkerrors "github.com/WuKongIM/wkdeploy/internal/errors"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

const (
	FormatDeploy   = "deploy"
	FormatEnv      = "env"
	FormatJSON     = "json"
	FormatYAML     = "yaml"
	FormatTemplate = "template"

	DefaultScript = "./deploy.sh"
)

var Formats = []string{FormatDeploy, FormatEnv, FormatJSON, FormatYAML, FormatTemplate}

type Renderer interface {
	Render(w io.Writer, plan *cluster.Plan) error
}

type Options struct {
	Script     string // deploy 格式每行开头的脚本
	ReplFactor int    // env 格式的 REPL_FACTOR，为0时不输出
	Template   string // template 格式的模版内容
}

func New(format string, opts Options) (Renderer, error) {
	switch strings.ToLower(format) {
	case "", FormatDeploy:
		script := opts.Script
		if script == "" {
			script = DefaultScript
		}
		return &deployRenderer{script: script}, nil
	case FormatEnv:
		return &envRenderer{replFactor: opts.ReplFactor}, nil
	case FormatJSON:
		return jsonRenderer{}, nil
	case FormatYAML:
		return yamlRenderer{}, nil
	case FormatTemplate:
		return newTemplateRenderer(opts)
	}
	return nil, errors.Wrapf(wkerrors.ErrUnknownFormat, "%q, expected one of %s", format, strings.Join(Formats, ", "))
}

// deployRenderer 输出 ./deploy.sh <name> <host> <port> <peers>
type deployRenderer struct {
	script string
}

func (d *deployRenderer) Render(w io.Writer, plan *cluster.Plan) error {
	for _, cmd := range plan.Commands {
		if _, err := fmt.Fprintf(w, "%s %s\n", d.script, strings.Join(cmd.Args(), " ")); err != nil {
			return err
		}
	}
	return nil
}

// envRenderer 输出节点启动时读取的环境变量 ADDRESS VIEW REPL_FACTOR
type envRenderer struct {
	replFactor int
}

func (e *envRenderer) Render(w io.Writer, plan *cluster.Plan) error {
	for i, cmd := range plan.Commands {
		// ADDRESS 必须和 VIEW 中自己的那一项一致，节点据此找到自己
		line := fmt.Sprintf("ADDRESS=%s VIEW=%s", plan.Peers[i], cmd.Peers)
		if e.replFactor > 0 {
			line = fmt.Sprintf("%s REPL_FACTOR=%d", line, e.replFactor)
		}
		if _, err := io.WriteString(w, line+"\n"); err != nil {
			return err
		}
	}
	return nil
}

type jsonRenderer struct{}

func (jsonRenderer) Render(w io.Writer, plan *cluster.Plan) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(newDocument(plan))
}

type yamlRenderer struct{}

func (yamlRenderer) Render(w io.Writer, plan *cluster.Plan) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(newDocument(plan)); err != nil {
		return err
	}
	return enc.Close()
}

// document json/yaml 的输出结构
type document struct {
	Prefix string                   `json:"prefix" yaml:"prefix"`
	Port   int                      `json:"port" yaml:"port"`
	Peers  []string                 `json:"peers" yaml:"peers"`
	Nodes  []*cluster.DeployCommand `json:"nodes" yaml:"nodes"`
}

func newDocument(plan *cluster.Plan) *document {
	peers := make([]string, 0, len(plan.Peers))
	for _, p := range plan.Peers {
		peers = append(peers, p.String())
	}
	nodes := plan.Commands
	if nodes == nil {
		nodes = []*cluster.DeployCommand{}
	}
	return &document{
		Prefix: plan.Config.Prefix,
		Port:   plan.Config.Port,
		Peers:  peers,
		Nodes:  nodes,
	}
}

type templateRenderer struct {
	tpl    *template.Template
	script string
}

// templateNode 模版中可用的字段
type templateNode struct {
	*cluster.DeployCommand
	Index  int
	Script string
}

func newTemplateRenderer(opts Options) (*templateRenderer, error) {
	if strings.TrimSpace(opts.Template) == "" {
		return nil, errors.Wrap(wkerrors.ErrInvalidConfig, "template format requires a template")
	}
	tpl, err := template.New("node").Funcs(sprig.TxtFuncMap()).Option("missingkey=error").Parse(opts.Template)
	if err != nil {
		return nil, errors.Wrap(wkerrors.ErrInvalidConfig, err.Error())
	}
	script := opts.Script
	if script == "" {
		script = DefaultScript
	}
	return &templateRenderer{tpl: tpl, script: script}, nil
}

func (t *templateRenderer) Render(w io.Writer, plan *cluster.Plan) error {
	var b strings.Builder
	for i, cmd := range plan.Commands {
		b.Reset()
		err := t.tpl.Execute(&b, templateNode{
			DeployCommand: cmd,
			Index:         i,
			Script:        t.script,
		})
		if err != nil {
			return errors.Wrapf(err, "render %s", cmd.Name)
		}
		out := b.String()
		if !strings.HasSuffix(out, "\n") {
			out += "\n"
		}
		if _, err := io.WriteString(w, out); err != nil {
			return err
		}
	}
	return nil
}
