// scinspect 读取长度前缀分帧的管理请求（来自文件或标准输入），解析后按行输出 JSON。
//
// 使用 --sample 时改为按配置的默认版本写出一组示例帧，可直接作为输入回放：
//
//	scinspect --sample --output frames.bin
//	scinspect --input frames.bin
//
// 使用 --replay 时将输入帧依次交给内存中的控制面处理，并把响应帧写到输出。
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/cockroachdb/errors"
	"github.com/spf13/pflag"
	_ "go.uber.org/automaxprocs"
	"go.uber.org/zap"

	"github.com/lk2023060901/streamplane-go/application"
	"github.com/lk2023060901/streamplane-go/internal/config"
	"github.com/lk2023060901/streamplane-go/internal/protocol/codec"
	"github.com/lk2023060901/streamplane-go/internal/protocol/framer"
	"github.com/lk2023060901/streamplane-go/internal/protocol/router"
	"github.com/lk2023060901/streamplane-go/internal/sc/inspect"
	"github.com/lk2023060901/streamplane-go/internal/sc/objects"
	"github.com/lk2023060901/streamplane-go/internal/sc/service"
	"github.com/lk2023060901/streamplane-go/pkg/log"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	var (
		configPath string
		inputPath  string
		outputPath string
		sample     bool
		replay     bool
		version    int16
		workers    int
	)

	flagSet := pflag.NewFlagSet("scinspect", pflag.ContinueOnError)
	flagSet.StringVar(&configPath, "config", "", "path to config file (default: ./config.yaml)")
	flagSet.StringVarP(&inputPath, "input", "i", "-", "frame file to inspect, - for stdin")
	flagSet.StringVarP(&outputPath, "output", "o", "-", "output file, - for stdout")
	flagSet.BoolVar(&sample, "sample", false, "write sample request frames instead of inspecting")
	flagSet.BoolVar(&replay, "replay", false, "dispatch frames to an in-memory control plane and write response frames")
	flagSet.Int16Var(&version, "version", 0, "api version of sample frames (default: protocol.default-version)")
	flagSet.IntVarP(&workers, "workers", "w", runtime.GOMAXPROCS(0), "number of frames decoded concurrently")

	if err := flagSet.Parse(os.Args[1:]); err != nil {
		if err == pflag.ErrHelp {
			return nil
		}
		return err
	}

	var appArgs []string
	if configPath != "" {
		appArgs = append(appArgs, "--config", configPath)
	}
	app := application.New()
	if err := app.RunWithArgs(appArgs); err != nil {
		return err
	}
	cfg := app.Config()
	logger := app.Logger("scinspect")

	opts, err := cfg.Protocol.FramerOptions()
	if err != nil {
		return err
	}
	f, err := framer.NewLengthPrefixedFramer(opts)
	if err != nil {
		return err
	}

	out, closeOut, err := openOutput(outputPath)
	if err != nil {
		return err
	}
	defer closeOut()

	if sample {
		v := codec.Version(cfg.Protocol.DefaultVersion)
		if flagSet.Changed("version") {
			v = codec.Version(version)
		}
		if !cfg.Protocol.AcceptsVersion(v) {
			return errors.Newf("version %d requires protocol.legacy-decode", v)
		}
		logger.Debug("write sample frames", zap.Int16("version", int16(v)), zap.String("output", outputPath))
		return inspect.WriteSamples(out, f, v, "scinspect")
	}

	in, closeIn, err := openInput(inputPath)
	if err != nil {
		return err
	}
	defer closeIn()

	frames, err := inspect.ReadFrames(in, f)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if replay {
		return replayFrames(ctx, cfg, workers, frames, f, out, logger)
	}

	inspector := inspect.New(objects.DefaultRegistry(), cfg.Protocol)
	records, err := inspector.InspectAll(ctx, frames, workers)
	if err != nil {
		return err
	}
	logger.Debug("frames inspected", zap.Int("frames", len(records)), zap.String("input", inputPath))
	return inspect.WriteRecords(out, records)
}

func replayFrames(ctx context.Context, cfg *config.Config, workers int, frames [][]byte, f framer.Framer, out io.Writer, logger *log.MLogger) error {
	r := router.New(workers)
	if _, err := service.New(cfg.Platform, objects.DefaultRegistry(), r, service.WithMaxPartitions(cfg.SC.MaxPartitions)); err != nil {
		return err
	}

	failed := 0
	for i, frame := range frames {
		if err := ctx.Err(); err != nil {
			return err
		}
		resp, err := r.Handle(ctx, frame)
		if err != nil {
			failed++
			logger.Warn("replay frame failed", zap.Int("index", i), zap.Error(err))
			continue
		}
		if err := f.WriteFrame(out, resp); err != nil {
			return err
		}
	}
	logger.Debug("replay done", zap.Int("frames", len(frames)), zap.Int("failed", failed))
	return nil
}

func openInput(path string) (io.Reader, func(), error) {
	if path == "-" {
		return os.Stdin, func() {}, nil
	}
	file, err := os.Open(path)
	if err != nil {
		return nil, nil, errors.Wrapf(err, "open input %q", path)
	}
	return file, func() { file.Close() }, nil
}

func openOutput(path string) (io.Writer, func(), error) {
	if path == "-" {
		return os.Stdout, func() {}, nil
	}
	file, err := os.Create(path)
	if err != nil {
		return nil, nil, errors.Wrapf(err, "create output %q", path)
	}
	return file, func() { file.Close() }, nil
}
