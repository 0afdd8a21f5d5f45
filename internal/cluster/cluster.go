package cluster

import (
	"net"
	"strconv"
	"strings"

	wkerrors "github.com/WuKongIM/wkdeploy/internal/errors"
	"github.com/pkg/errors"
)

const (
	DefaultPrefix     = "10.0.4."
	DefaultPort       = 13800
	DefaultNamePrefix = "node"

	// 主机号0和1预留给网关等基础设施，节点从2开始
	hostOffset = 2
	// 节点监听端口从 base_port+2 开始
	bindPortOffset = 2
)

// Config 一次生成的集群配置，生成过程中不可变
type Config struct {
	NodeCount  int    // 节点数量
	Prefix     string // 网段前缀，例如 10.0.4.
	Port       int    // 节点间通信的基础端口
	NamePrefix string // 节点名前缀，默认为 node
}

type ConfigOption func(cfg *Config)

func NewConfig(nodeCount int, opts ...ConfigOption) Config {
	cfg := Config{
		NodeCount:  nodeCount,
		Prefix:     DefaultPrefix,
		Port:       DefaultPort,
		NamePrefix: DefaultNamePrefix,
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}

func WithPrefix(prefix string) ConfigOption {
	return func(cfg *Config) {
		cfg.Prefix = prefix
	}
}

func WithPort(port int) ConfigOption {
	return func(cfg *Config) {
		cfg.Port = port
	}
}

func WithNamePrefix(namePrefix string) ConfigOption {
	return func(cfg *Config) {
		cfg.NamePrefix = namePrefix
	}
}

func (c Config) Validate() error {
	if c.NodeCount < 0 {
		return errors.Wrapf(wkerrors.ErrInvalidConfig, "node count must not be negative, got %d", c.NodeCount)
	}
	if c.Prefix == "" {
		return errors.Wrap(wkerrors.ErrInvalidConfig, "prefix is empty")
	}
	if !strings.HasSuffix(c.Prefix, ".") {
		return errors.Wrapf(wkerrors.ErrInvalidConfig, "prefix %q must end with '.'", c.Prefix)
	}
	if c.Port <= 0 || c.Port > 65535 {
		return errors.Wrapf(wkerrors.ErrInvalidConfig, "port %d out of range", c.Port)
	}
	if c.NamePrefix == "" {
		return errors.Wrap(wkerrors.ErrInvalidConfig, "name prefix is empty")
	}
	return nil
}

type NodeAddress struct {
	Host string `json:"host" yaml:"host"`
	Port int    `json:"port" yaml:"port"`
}

func (n NodeAddress) String() string {
	return net.JoinHostPort(n.Host, strconv.Itoa(n.Port))
}

// PeerList 集群所有节点地址，每个节点拿到的都是同一份（包含自己）
type PeerList []NodeAddress

func (p PeerList) String() string {
	var b strings.Builder
	for i, addr := range p {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(addr.String())
	}
	return b.String()
}

type DeployCommand struct {
	Name     string   `json:"name" yaml:"name"`
	BindHost string   `json:"bindHost" yaml:"bindHost"`
	BindPort int      `json:"bindPort" yaml:"bindPort"`
	Peers    PeerList `json:"-" yaml:"-"`
}

// Args 部署脚本的四个位置参数：节点名 监听地址 监听端口 集群地址列表
func (d *DeployCommand) Args() []string {
	return []string{d.Name, d.BindHost, strconv.Itoa(d.BindPort), d.Peers.String()}
}

// Plan 一次生成的完整结果
type Plan struct {
	Config   Config           `json:"-" yaml:"-"`
	Peers    PeerList         `json:"peers" yaml:"peers"`
	Commands []*DeployCommand `json:"nodes" yaml:"nodes"`
}

// Addresses 生成 prefix.2 ... prefix.(n+1) 的节点地址，端口都为基础端口
func Addresses(cfg Config) PeerList {
	peers := make(PeerList, 0, max(cfg.NodeCount, 0))
	for i := 0; i < cfg.NodeCount; i++ {
		peers = append(peers, NodeAddress{
			Host: cfg.Prefix + strconv.Itoa(hostOffset+i),
			Port: cfg.Port,
		})
	}
	return peers
}

func Generate(cfg Config) (*Plan, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	peers := Addresses(cfg)
	commands := make([]*DeployCommand, 0, len(peers))
	for i, addr := range peers {
		commands = append(commands, &DeployCommand{
			Name:     cfg.NamePrefix + strconv.Itoa(i+1),
			BindHost: addr.Host,
			BindPort: cfg.Port + bindPortOffset + i,
			Peers:    peers,
		})
	}
	return &Plan{
		Config:   cfg,
		Peers:    peers,
		Commands: commands,
	}, nil
}
