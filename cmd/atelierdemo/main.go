// Command atelierdemo runs a scripted pointer sketch headlessly and writes
// PNG frames.
//
// A Lissajous curve drives the pointer across the surface, depositing into
// the trail field; slot animations fire along the way with mixed easings
// plus one spring. Frames render on the GPU when available and fall back
// to a CPU snapshot of the field otherwise.
package main

import (
	"context"
	"flag"
	"fmt"
	"image"
	"image/png"
	"log"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"time"

	"github.com/gogpu/atelier"
	"github.com/gogpu/atelier/anim"
	"github.com/gogpu/atelier/backend/wgpu"
	"github.com/gogpu/atelier/field"
	"github.com/gogpu/atelier/frame"
	"github.com/gogpu/atelier/pointer"
	"github.com/gogpu/atelier/render"
)

func main() {
	var (
		width   = flag.Int("width", 512, "render width")
		height  = flag.Int("height", 512, "render height")
		grid    = flag.Int("grid", 64, "trail field resolution")
		slots   = flag.Int("slots", 16, "animation slot count")
		frames  = flag.Int("frames", 120, "frames to render")
		fps     = flag.Int("fps", 60, "simulated frame rate")
		outDir  = flag.String("out", "frames", "output directory")
		cpuOnly = flag.Bool("cpu", false, "skip GPU, render CPU snapshots")
		verbose = flag.Bool("v", false, "verbose logging")
	)
	flag.Parse()

	if *verbose {
		atelier.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		})))
	}

	if err := run(*width, *height, *grid, *slots, *frames, *fps, *outDir, *cpuOnly); err != nil {
		log.Fatalf("atelierdemo: %v", err)
	}
}

func run(width, height, grid, slots, frames, fps int, outDir string, cpuOnly bool) error {
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	clock := frame.NewManualClock(time.Unix(0, 0))
	opts := field.DefaultOptions()
	opts.Resolution = grid

	sk, err := atelier.NewSketch(atelier.Config{
		Field:    opts,
		PoolSize: slots,
		Channels: map[string]int{"position": 3},
		FPS:      fps,
		Bounds:   pointer.FixedBounds(pointer.Bounds{W: float64(width), H: float64(height)}),
		Clock:    clock,
	})
	if err != nil {
		return err
	}

	// Try the GPU first; the CPU snapshot path needs nothing but the
	// field buffer.
	target := render.NewPixmapTarget(width, height)
	gpu := false
	if !cpuOnly {
		session, err := wgpu.Open()
		if err != nil {
			fmt.Printf("GPU unavailable: %v\nFalling back to CPU snapshots...\n", err)
		} else {
			defer session.Close()
			renderer, err := wgpu.NewTrailRenderer(session, grid, slots, target)
			if err != nil {
				fmt.Printf("GPU renderer init failed: %v\nFalling back to CPU snapshots...\n", err)
			} else {
				defer renderer.Destroy()
				sk.SetRenderer(renderer)
				gpu = true
				fmt.Printf("Rendering on %s\n", session.AdapterName())
			}
		}
	}

	interval := time.Second / time.Duration(fps)
	for i := 0; i < frames; i++ {
		t := float64(i) / float64(fps)

		// Lissajous sweep across the surface.
		x := float64(width) / 2 * (1 + 0.9*math.Sin(3*t+math.Pi/2))
		y := float64(height) / 2 * (1 + 0.9*math.Sin(2*t))
		if err := sk.Pointer(pointer.Event{Kind: pointer.KindMove, X: x, Y: y}); err != nil {
			return err
		}

		triggerRipples(sk, i, x/float64(width), y/float64(height))

		if err := sk.Run(context.Background(), 1, interval); err != nil {
			return err
		}

		var img *image.RGBA
		if gpu {
			img = target.Image()
		} else {
			scale := max(1, width/grid)
			img = render.GridImage(sk.Field().Buffer(), grid, scale)
		}
		if err := savePNG(filepath.Join(outDir, fmt.Sprintf("frame_%04d.png", i)), img); err != nil {
			return err
		}
	}

	fmt.Printf("Wrote %d frames to %s\n", frames, outDir)
	return nil
}

// triggerRipples fires slot animations along the pointer path: an eased
// ripple every 20 frames cycling through the curves, and a single spring
// pop near the start.
func triggerRipples(sk *atelier.Sketch, frameIdx int, px, py float64) {
	pos := map[string][]float64{"position": {px, py, 0}}

	if frameIdx == 10 {
		sk.Trigger(anim.TriggerOptions{
			Target: anim.Target(1.5),
			Easing: anim.EasingSpring,
			Spring: anim.SpringConfig{Stiffness: 220, Damping: 14},
			Data:   pos,
		})
		return
	}
	if frameIdx%20 != 0 {
		return
	}

	easings := []anim.Easing{anim.EasingLinear, anim.EasingIn, anim.EasingOut, anim.EasingInOut}
	sk.Trigger(anim.TriggerOptions{
		Duration: 1200 * time.Millisecond,
		Easing:   easings[(frameIdx/20)%len(easings)],
		Data:     pos,
	})
}

func savePNG(path string, img *image.RGBA) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		return fmt.Errorf("encode %s: %w", path, err)
	}
	return nil
}
