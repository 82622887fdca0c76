// Command graphbench measures captured-graph replay against plain
// per-launch kernel submission, across one or more concurrent streams.
//
// A benchmark profile can be supplied as a YAML file:
//
//	elements: 1048576
//	launches: 200
//	streams: 4
//	block: 256
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/urfave/cli/v3"
	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"

	"github.com/gpukit/graphcap"
)

type profile struct {
	Elements int `yaml:"elements"`
	Launches int `yaml:"launches"`
	Streams  int `yaml:"streams"`
	Block    int `yaml:"block"`
}

func defaultProfile() profile {
	return profile{
		Elements: 1 << 20,
		Launches: 200,
		Streams:  2,
		Block:    graphcap.DefaultBlockSize,
	}
}

func loadProfile(path string) (profile, error) {
	p := defaultProfile()
	data, err := os.ReadFile(path)
	if err != nil {
		return p, fmt.Errorf("read profile: %w", err)
	}
	if err := yaml.Unmarshal(data, &p); err != nil {
		return p, fmt.Errorf("parse profile: %w", err)
	}
	return p, nil
}

type result struct {
	stream   int
	direct   time.Duration
	replay   time.Duration
	launches int
}

func main() {
	cmd := &cli.Command{
		Name:  "graphbench",
		Usage: "Benchmark captured-graph replay against per-launch submission",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "profile",
				Aliases: []string{"f"},
				Usage:   "Path to a YAML benchmark profile",
			},
			&cli.IntFlag{
				Name:  "launches",
				Usage: "Override the number of replays per stream",
			},
			&cli.IntFlag{
				Name:  "streams",
				Usage: "Override the number of concurrent streams",
			},
			&cli.BoolFlag{
				Name:  "debug",
				Usage: "Enable debug logging",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			level := slog.LevelInfo
			if cmd.Bool("debug") {
				level = slog.LevelDebug
			}
			slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

			p := defaultProfile()
			if path := cmd.String("profile"); path != "" {
				var err error
				if p, err = loadProfile(path); err != nil {
					return err
				}
			}
			if n := cmd.Int("launches"); n > 0 {
				p.Launches = int(n)
			}
			if n := cmd.Int("streams"); n > 0 {
				p.Streams = int(n)
			}
			return run(ctx, p)
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		slog.Error("graphbench failed", "err", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, p profile) error {
	dev := graphcap.GetDevice()
	slog.Info("starting benchmark",
		"device", dev.Name,
		"cores", dev.NumCores,
		"features", dev.Features.String(),
		"elements", p.Elements,
		"launches", p.Launches,
		"streams", p.Streams)

	results := make([]result, p.Streams)
	g, ctx := errgroup.WithContext(ctx)
	for i := 0; i < p.Streams; i++ {
		i := i
		g.Go(func() error {
			r, err := benchStream(ctx, i, p)
			if err != nil {
				return fmt.Errorf("stream %d: %w", i, err)
			}
			results[i] = r
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	fmt.Printf("%-8s %10s %14s %14s %10s\n", "stream", "launches", "direct", "replay", "speedup")
	for _, r := range results {
		speedup := float64(r.direct) / float64(r.replay)
		fmt.Printf("%-8d %10d %14v %14v %9.2fx\n", r.stream, r.launches, r.direct, r.replay, speedup)
	}
	return nil
}

// benchStream runs the same saxpy workload twice on a private stream:
// once submitting the kernel launch by launch, once replaying a single
// captured graph.
func benchStream(ctx context.Context, id int, p profile) (result, error) {
	s := graphcap.NewStream()
	defer s.Destroy()

	n := p.Elements
	d_x, err := graphcap.Malloc(n * 4)
	if err != nil {
		return result{}, err
	}
	defer graphcap.Free(d_x)
	d_y, err := graphcap.Malloc(n * 4)
	if err != nil {
		return result{}, err
	}
	defer graphcap.Free(d_y)

	x := d_x.Float32()
	y := d_y.Float32()
	for i := range x {
		x[i] = float32(i%97) / 97
	}

	const alpha = float32(0.5)
	kernel := graphcap.KernelFunc(func(tid graphcap.ThreadID, args ...interface{}) {
		idx := tid.Global()
		if idx < n {
			y[idx] = alpha*x[idx] + y[idx]
		}
	})
	grid := graphcap.Dim3{X: (n + p.Block - 1) / p.Block, Y: 1, Z: 1}
	block := graphcap.Dim3{X: p.Block, Y: 1, Z: 1}

	// Direct path: one submission per iteration.
	start := time.Now()
	for i := 0; i < p.Launches; i++ {
		if err := graphcap.LaunchStream(kernel, grid, block, s); err != nil {
			return result{}, err
		}
	}
	s.Synchronize()
	direct := time.Since(start)

	// Captured path: record once, replay.
	var cg graphcap.CapturedGraph
	defer cg.Free()

	cg.BeginCapture(s)
	if err := graphcap.LaunchStream(kernel, grid, block, s); err != nil {
		cg.EndCaptureOnError(s)
		return result{}, err
	}
	cg.EndCapture(s)

	start = time.Now()
	for i := 0; i < p.Launches; i++ {
		select {
		case <-ctx.Done():
			return result{}, ctx.Err()
		default:
		}
		if !cg.Launch(s) {
			// Launch failures are recoverable: retry once, then give up.
			slog.Warn("replay launch failed, retrying", "stream", id, "iteration", i)
			if !cg.Launch(s) {
				return result{}, fmt.Errorf("replay launch failed at iteration %d", i)
			}
		}
	}
	s.Synchronize()
	replay := time.Since(start)

	slog.Debug("stream finished", "stream", id, "direct", direct, "replay", replay)
	return result{stream: id, direct: direct, replay: replay, launches: p.Launches}, nil
}
