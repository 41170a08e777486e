package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lk2023060901/streamplane-go/internal/protocol/compressor"
	"github.com/lk2023060901/streamplane-go/internal/sc/objects"
	"github.com/lk2023060901/streamplane-go/pkg/util/merr"
	zviper "github.com/lk2023060901/streamplane-go/pkg/util/viper"
)

func writeConfig(t *testing.T, content string) string {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestDefault(t *testing.T) {
	cfg, err := Load(nil)
	require.NoError(t, err)
	assert.Equal(t, DefaultPlatform, cfg.Platform)
	assert.Equal(t, uint32(DefaultMaxFrameSize), cfg.Protocol.MaxFrameSize)
	assert.Equal(t, int16(objects.CommonVersion), cfg.Protocol.DefaultVersion)
	assert.True(t, cfg.Protocol.LegacyDecode)
	assert.Equal(t, uint32(DefaultMaxPartitions), cfg.SC.MaxPartitions)

	opts, err := cfg.Protocol.FramerOptions()
	require.NoError(t, err)
	assert.Equal(t, compressor.None, opts.Compression)
}

func TestLoadFile(t *testing.T) {
	path := writeConfig(t, `
platform: 0.12.1
log:
  level: debug
protocol:
  max-frame-size: 1048576
  compression: lz4
  legacy-decode: false
sc:
  max-partitions: 64
`)
	v := zviper.New()
	require.NoError(t, v.LoadFile(path))

	cfg, err := Load(v)
	require.NoError(t, err)
	assert.Equal(t, "0.12.1", cfg.Platform)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, uint32(1<<20), cfg.Protocol.MaxFrameSize)
	assert.False(t, cfg.Protocol.LegacyDecode)
	assert.Equal(t, uint32(64), cfg.SC.MaxPartitions)
	// 未出现在文件中的配置项保持默认值。
	assert.Equal(t, 1024, cfg.Protocol.MinCompressSize)
	assert.Equal(t, int16(objects.CommonVersion), cfg.Protocol.DefaultVersion)

	assert.False(t, cfg.Protocol.AcceptsVersion(10))
	assert.True(t, cfg.Protocol.AcceptsVersion(11))

	opts, err := cfg.Protocol.FramerOptions()
	require.NoError(t, err)
	assert.Equal(t, compressor.Lz4, opts.Compression)
}

func TestEnvOverride(t *testing.T) {
	path := writeConfig(t, `
protocol:
  compression: lz4
`)
	t.Setenv("STREAMPLANE_PROTOCOL_COMPRESSION", "zstd")

	v := zviper.New()
	v.BindEnv(EnvPrefix)
	require.NoError(t, v.LoadFile(path))
	assert.True(t, v.IsSet("protocol.compression"))

	cfg, err := Load(v)
	require.NoError(t, err)
	assert.Equal(t, "zstd", cfg.Protocol.Compression)
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(c *Config)
		err    error
	}{
		{"zero frame size", func(c *Config) { c.Protocol.MaxFrameSize = 0 }, merr.ErrParameterInvalid},
		{"unknown compression", func(c *Config) { c.Protocol.Compression = "brotli" }, merr.ErrParameterInvalid},
		{"negative min compress size", func(c *Config) { c.Protocol.MinCompressSize = -1 }, merr.ErrParameterInvalid},
		{"version too high", func(c *Config) { c.Protocol.DefaultVersion = 15 }, merr.ErrParameterInvalid},
		{"version too low", func(c *Config) { c.Protocol.DefaultVersion = 0 }, merr.ErrParameterInvalid},
		{"legacy version without legacy decode", func(c *Config) {
			c.Protocol.DefaultVersion = 10
			c.Protocol.LegacyDecode = false
		}, merr.ErrParameterInvalid},
		{"missing platform", func(c *Config) { c.Platform = "" }, merr.ErrParameterMissing},
		{"zero max partitions", func(c *Config) { c.SC.MaxPartitions = 0 }, merr.ErrParameterInvalid},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Default()
			tc.mutate(cfg)
			assert.ErrorIs(t, cfg.Validate(), tc.err)
		})
	}
	assert.NoError(t, Default().Validate())
}
