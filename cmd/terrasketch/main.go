// terrasketch drives a terrain sculpting session headlessly from scripted
// hand tracks and inspects recorded journals.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/Faultbox/terrasketch/internal/config"
	"github.com/Faultbox/terrasketch/internal/logger"
	"github.com/Faultbox/terrasketch/internal/record"
	"github.com/Faultbox/terrasketch/internal/refine"
	"github.com/Faultbox/terrasketch/internal/sculpt"
	"github.com/Faultbox/terrasketch/internal/session"
	"github.com/Faultbox/terrasketch/internal/terrain"
)

func main() {
	// Global flags come before the command
	config.ParseFlags()
	os.Exit(run(flag.Args()))
}

// run executes one command and returns the process exit code.
func run(args []string) int {
	if len(args) < 1 {
		printUsage()
		return 1
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		return 1
	}

	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		fmt.Fprintf(os.Stderr, "Logger error: %v\n", err)
		return 1
	}
	defer logger.Sync()

	command, rest := args[0], args[1:]
	switch command {
	case "replay":
		err = cmdReplay(cfg, rest)
	case "frames":
		err = cmdFrames(rest)
	case "config":
		err = cmdConfig(cfg)
	case "help", "-h", "--help":
		printUsage()
	default:
		logger.Error("unknown command", zap.String("command", command))
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		printUsage()
		return 1
	}
	if err != nil {
		logger.Error("command failed", zap.String("command", command), zap.Error(err))
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

func printUsage() {
	fmt.Println(`terrasketch - sketch-based terrain sculpting

Usage:
  terrasketch [flags] <command> [options]

Commands:
  replay <script.yaml>   Run a scripted hand track and export the terrain
  frames <journal-dir>   List committed surfaces in a journal
  config                 Print the effective configuration

Flags:
  -config <file>         Config file
  -debug                 Debug logging
  -resolution <n>        Height field resolution
  -record <dir>          Write a journal under dir
  -refine <mode>         terrace or passthrough

Examples:
  terrasketch -record ./journals replay ridge.yaml -png ridge.png
  terrasketch frames ./journals/ridge-20240501T120000 -png ./out`)
}

func cmdReplay(cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("replay", flag.ExitOnError)
	pngPath := fs.String("png", "", "Write the final surface as a 16-bit PNG")
	fs.Parse(args)

	if fs.NArg() < 1 {
		return fmt.Errorf("usage: terrasketch replay <script.yaml> [-png out.png]")
	}

	script, err := LoadScript(fs.Arg(0))
	if err != nil {
		return err
	}

	refiner, err := refine.New(cfg.Refine)
	if err != nil {
		return err
	}
	state := sculpt.New(cfg, refiner)

	var journal *record.Journal
	var sink session.Journal
	if cfg.Record.Dir != "" {
		journal, err = record.NewJournal(cfg.Record.Dir, script.Session, cfg.Terrain.Resolution, cfg.Record.PNG, nil)
		if err != nil {
			return err
		}
		defer journal.Close()
		sink = journal
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	sess := session.New(cfg, state, sink)
	frames, err := runScript(ctx, sess, script)
	if err != nil {
		return err
	}
	if err := sess.Flush(ctx); err != nil {
		logger.Warn("final commit failed", zap.Error(err))
	}

	surface := state.Surface()
	mesh := terrain.BuildMesh(surface, state.Paint(), state.Mapper())
	lo, hi := surface.MinMax()
	fmt.Printf("Frames:   %d\n", frames)
	fmt.Printf("Strokes:  %d\n", len(sess.Strokes()))
	fmt.Printf("Surface:  %d×%d, height %.3f..%.3f\n", surface.Size, surface.Size, lo, hi)
	fmt.Printf("Mesh:     %d vertices, %d triangles, bounds %v..%v\n",
		len(mesh.Vertices), len(mesh.Indices)/3, mesh.Bounds.Min, mesh.Bounds.Max)

	if *pngPath != "" {
		if err := record.WritePNG(*pngPath, surface); err != nil {
			return err
		}
		fmt.Printf("PNG:      %s\n", *pngPath)
	}
	if journal != nil {
		if err := journal.Close(); err != nil {
			return err
		}
		fmt.Printf("Journal:  %s\n", journal.Dir())
	}
	return nil
}

// runScript feeds every step to the session and returns the frame count.
func runScript(ctx context.Context, sess *session.Session, script *Script) (int, error) {
	frames := 0
	for i, st := range script.Steps {
		if err := ctx.Err(); err != nil {
			return frames, err
		}

		var err error
		switch st.Action {
		case "hide":
			err = sess.HideAll(ctx)
		case "reset":
			err = sess.Reset(ctx)
		case "filled":
			sess.SetFilled(!sess.Filled())
		case "sizes":
			sess.SetBrushSizes(st.Sizes[0], st.Sizes[1])
		default:
			for n := 0; n < max(st.Repeat, 1); n++ {
				if err = sess.Update(ctx, st.Frame()); err != nil {
					break
				}
				frames++
			}
		}
		if err != nil {
			return frames, fmt.Errorf("step %d: %w", i, err)
		}
	}
	return frames, nil
}

func cmdFrames(args []string) error {
	fs := flag.NewFlagSet("frames", flag.ExitOnError)
	pngDir := fs.String("png", "", "Export each frame as a PNG into this directory")
	fs.Parse(args)

	if fs.NArg() < 1 {
		return fmt.Errorf("usage: terrasketch frames <journal-dir> [-png dir]")
	}
	dir := fs.Arg(0)

	manifest, err := record.ReadManifest(dir)
	if err != nil {
		return err
	}
	frames, err := record.ReadFrames(dir)
	if err != nil {
		return err
	}

	fmt.Printf("Session:    %s\n", manifest.Session)
	fmt.Printf("Resolution: %d\n", manifest.Resolution)
	fmt.Printf("Events:     %d\n", manifest.Events)
	fmt.Printf("Frames:     %d\n", len(frames))
	fmt.Println()

	if *pngDir != "" {
		if err := os.MkdirAll(*pngDir, 0755); err != nil {
			return err
		}
	}
	for _, f := range frames {
		lo, hi := f.Surface.MinMax()
		fmt.Printf("  #%-4d %s  %.3f..%.3f\n", f.Seq, f.Captured.Format("15:04:05.000"), lo, hi)
		if *pngDir != "" {
			path := filepath.Join(*pngDir, fmt.Sprintf("frame-%04d.png", f.Seq))
			if err := record.WritePNG(path, f.Surface); err != nil {
				return err
			}
		}
	}
	return nil
}

func cmdConfig(cfg *config.Config) error {
	data, err := cfg.Marshal()
	if err != nil {
		return err
	}
	fmt.Print(string(data))
	return nil
}
