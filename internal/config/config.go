// Package config 定义控制面进程的配置项、默认值与校验规则。
package config

import (
	"github.com/lk2023060901/streamplane-go/internal/protocol/codec"
	"github.com/lk2023060901/streamplane-go/internal/protocol/compressor"
	"github.com/lk2023060901/streamplane-go/internal/protocol/framer"
	"github.com/lk2023060901/streamplane-go/internal/sc/objects"
	"github.com/lk2023060901/streamplane-go/pkg/log"
	"github.com/lk2023060901/streamplane-go/pkg/util/merr"
	zviper "github.com/lk2023060901/streamplane-go/pkg/util/viper"
)

const (
	// EnvPrefix 为覆盖配置项的环境变量前缀。
	EnvPrefix = "STREAMPLANE"

	DefaultPlatform      = "0.11.0"
	DefaultMaxFrameSize  = 16 * 1024 * 1024
	DefaultMaxPartitions = 10000
	maxFrameSizeLimit    = 1 << 30
)

// ProtocolConfig 为线路协议相关配置。
type ProtocolConfig struct {
	// MaxFrameSize 为单帧长度上限，单位字节。
	MaxFrameSize uint32 `toml:"max-frame-size" json:"max-frame-size" mapstructure:"max-frame-size"`
	// Compression 为写出帧时使用的压缩算法：none、zstd、lz4。
	Compression string `toml:"compression" json:"compression" mapstructure:"compression"`
	// MinCompressSize 为触发压缩的最小消息体长度。
	MinCompressSize int `toml:"min-compress-size" json:"min-compress-size" mapstructure:"min-compress-size"`
	// LegacyDecode 为 false 时拒绝使用旧布局（版本低于 11）的管理请求。
	LegacyDecode bool `toml:"legacy-decode" json:"legacy-decode" mapstructure:"legacy-decode"`
	// DefaultVersion 为本端发出管理请求时使用的版本。
	DefaultVersion int16 `toml:"default-version" json:"default-version" mapstructure:"default-version"`
}

// SCConfig 为控制面对象管理相关配置。
type SCConfig struct {
	// MaxPartitions 为单个 Topic 允许的分区数上限。
	MaxPartitions uint32 `toml:"max-partitions" json:"max-partitions" mapstructure:"max-partitions"`
}

func (c *SCConfig) Validate() error {
	if c.MaxPartitions == 0 {
		return merr.WrapErrParameterInvalidMsg("sc.max-partitions must be positive")
	}
	return nil
}

// Config 为进程的完整配置。
type Config struct {
	// Platform 为 ApiVersions 响应中的平台版本，必须是语义化版本。
	Platform string         `toml:"platform" json:"platform" mapstructure:"platform"`
	Log      log.Config     `toml:"log" json:"log" mapstructure:"log"`
	Protocol ProtocolConfig `toml:"protocol" json:"protocol" mapstructure:"protocol"`
	SC       SCConfig       `toml:"sc" json:"sc" mapstructure:"sc"`
}

// Default 返回默认配置。
func Default() *Config {
	return &Config{
		Platform: DefaultPlatform,
		Log: log.Config{
			Level:  "info",
			Format: "text",
			Stdout: true,
		},
		Protocol: ProtocolConfig{
			MaxFrameSize:    DefaultMaxFrameSize,
			Compression:     "none",
			MinCompressSize: 1024,
			LegacyDecode:    true,
			DefaultVersion:  int16(objects.CommonVersion),
		},
		SC: SCConfig{
			MaxPartitions: DefaultMaxPartitions,
		},
	}
}

// Load 在默认配置之上叠加 v 中的配置项，并完成校验。v 为 nil 时返回默认配置。
func Load(v *zviper.Config) (*Config, error) {
	cfg := Default()
	if v != nil {
		if err := v.Unmarshal(cfg); err != nil {
			return nil, merr.WrapErrParameterInvalidMsg("unmarshal config: %s", err.Error())
		}
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate 检查配置项的取值范围。
func (c *Config) Validate() error {
	if c.Platform == "" {
		return merr.WrapErrParameterMissing("platform")
	}
	if err := c.SC.Validate(); err != nil {
		return err
	}
	return c.Protocol.Validate()
}

func (p *ProtocolConfig) Validate() error {
	if p.MaxFrameSize == 0 || p.MaxFrameSize > maxFrameSizeLimit {
		return merr.WrapErrParameterInvalidMsg("protocol.max-frame-size %d out of range (0, %d]", p.MaxFrameSize, maxFrameSizeLimit)
	}
	if _, err := compressor.ParseKind(p.Compression); err != nil {
		return err
	}
	if p.MinCompressSize < 0 {
		return merr.WrapErrParameterInvalidMsg("protocol.min-compress-size %d is negative", p.MinCompressSize)
	}
	version := codec.Version(p.DefaultVersion)
	if version < objects.MinApiVersion || version > objects.CommonVersion {
		return merr.WrapErrParameterInvalidMsg("protocol.default-version %d out of range [%d, %d]",
			p.DefaultVersion, objects.MinApiVersion, objects.CommonVersion)
	}
	if !p.LegacyDecode && version < objects.DynamicObjectVersion {
		return merr.WrapErrParameterInvalidMsg("protocol.default-version %d requires legacy-decode", p.DefaultVersion)
	}
	return nil
}

// FramerOptions 将协议配置转换为 Framer 的构造参数。
func (p *ProtocolConfig) FramerOptions() (framer.Options, error) {
	kind, err := compressor.ParseKind(p.Compression)
	if err != nil {
		return framer.Options{}, err
	}
	return framer.Options{
		MaxFrameSize:    p.MaxFrameSize,
		Compression:     kind,
		MinCompressSize: p.MinCompressSize,
	}, nil
}

// AcceptsVersion 判断是否接受以 version 编码的管理请求。
func (p *ProtocolConfig) AcceptsVersion(version codec.Version) bool {
	return p.LegacyDecode || version >= objects.DynamicObjectVersion
}
