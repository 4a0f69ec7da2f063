package record

import (
	"errors"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/Faultbox/terrasketch/internal/logger"
	"github.com/Faultbox/terrasketch/internal/terrain"
	"github.com/Faultbox/terrasketch/pkg/math"
)

func fixedClock() Clock {
	t := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	return func() time.Time {
		t = t.Add(time.Millisecond)
		return t
	}
}

func ramp(size int) *terrain.Field {
	f := terrain.NewField(size, 0)
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			f.Set(x, y, float32(x+y)/float32(2*(size-1)))
		}
	}
	return f
}

func TestNewJournalRequiresRoot(t *testing.T) {
	if _, err := NewJournal("", "s", 8, false, nil); err == nil {
		t.Fatal("expected error for empty root")
	}
}

func TestJournalEventsRoundTrip(t *testing.T) {
	j, err := NewJournal(t.TempDir(), "test", 8, false, fixedClock())
	if err != nil {
		t.Fatalf("NewJournal: %v", err)
	}
	if !strings.HasPrefix(filepath.Base(j.Dir()), "test-") {
		t.Errorf("dir = %q, want test- prefix", j.Dir())
	}

	inputs := []struct {
		kind string
		hand int
		pos  math.Vec3
	}{
		{"press", 0, math.Vec3{X: 1, Y: 2, Z: 3}},
		{"drag", 0, math.Vec3{X: 1.5, Y: 2, Z: 3}},
		{"release", 1, math.Vec3{X: -4, Y: 0, Z: 9}},
	}
	for _, in := range inputs {
		if err := j.AppendEvent(in.kind, in.hand, in.pos); err != nil {
			t.Fatalf("AppendEvent: %v", err)
		}
	}
	if err := j.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	events, err := ReadEvents(j.Dir())
	if err != nil {
		t.Fatalf("ReadEvents: %v", err)
	}
	if len(events) != len(inputs) {
		t.Fatalf("got %d events, want %d", len(events), len(inputs))
	}
	for i, ev := range events {
		in := inputs[i]
		if ev.Seq != uint64(i) || ev.Kind != in.kind || ev.Hand != in.hand {
			t.Errorf("event %d = %+v, want %+v", i, ev, in)
		}
		if ev.Position != [3]float32{in.pos.X, in.pos.Y, in.pos.Z} {
			t.Errorf("event %d position = %v", i, ev.Position)
		}
		if i > 0 && !ev.Time.After(events[i-1].Time) {
			t.Errorf("event %d time not increasing", i)
		}
	}

	m, err := ReadManifest(j.Dir())
	if err != nil {
		t.Fatalf("ReadManifest: %v", err)
	}
	if m.Session != "test" || m.Resolution != 8 || m.Events != 3 || m.Frames != 0 {
		t.Errorf("manifest = %+v", m)
	}
}

func TestJournalFramesRoundTrip(t *testing.T) {
	j, err := NewJournal(t.TempDir(), "frames", 5, true, fixedClock())
	if err != nil {
		t.Fatalf("NewJournal: %v", err)
	}

	a := ramp(5)
	b := terrain.NewField(5, 0.25)
	if err := j.AppendFrame(1, a); err != nil {
		t.Fatalf("AppendFrame: %v", err)
	}
	if err := j.AppendFrame(2, b); err != nil {
		t.Fatalf("AppendFrame: %v", err)
	}
	if err := j.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	frames, err := ReadFrames(j.Dir())
	if err != nil {
		t.Fatalf("ReadFrames: %v", err)
	}
	if len(frames) != 2 {
		t.Fatalf("got %d frames, want 2", len(frames))
	}
	for i, want := range []*terrain.Field{a, b} {
		got := frames[i]
		if got.Seq != uint64(i+1) {
			t.Errorf("frame %d seq = %d", i, got.Seq)
		}
		if got.Surface.Size != want.Size {
			t.Fatalf("frame %d size = %d", i, got.Surface.Size)
		}
		for k := range want.Data {
			if got.Surface.Data[k] != want.Data[k] {
				t.Fatalf("frame %d cell %d = %v, want %v", i, k, got.Surface.Data[k], want.Data[k])
			}
		}
	}

	m, err := ReadManifest(j.Dir())
	if err != nil {
		t.Fatalf("ReadManifest: %v", err)
	}
	if m.Frames != 2 || len(m.PNG) != 2 {
		t.Errorf("manifest = %+v", m)
	}
	for _, name := range m.PNG {
		if _, err := os.Stat(filepath.Join(j.Dir(), name)); err != nil {
			t.Errorf("png %s: %v", name, err)
		}
	}
}

func TestJournalEmptyFrames(t *testing.T) {
	j, err := NewJournal(t.TempDir(), "empty", 4, false, fixedClock())
	if err != nil {
		t.Fatalf("NewJournal: %v", err)
	}
	if err := j.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	frames, err := ReadFrames(j.Dir())
	if err != nil {
		t.Fatalf("ReadFrames: %v", err)
	}
	if len(frames) != 0 {
		t.Errorf("got %d frames, want 0", len(frames))
	}
}

func TestJournalClosed(t *testing.T) {
	j, err := NewJournal(t.TempDir(), "closed", 4, false, fixedClock())
	if err != nil {
		t.Fatalf("NewJournal: %v", err)
	}
	if err := j.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if err := j.Close(); err != nil {
		t.Errorf("second Close = %v, want nil", err)
	}
	if err := j.AppendEvent("press", 0, math.Vec3{}); !errors.Is(err, ErrClosed) {
		t.Errorf("AppendEvent after close = %v, want ErrClosed", err)
	}
	if err := j.AppendFrame(1, terrain.NewField(4, 0)); !errors.Is(err, ErrClosed) {
		t.Errorf("AppendFrame after close = %v, want ErrClosed", err)
	}
}

func TestWritePNG(t *testing.T) {
	path := filepath.Join(t.TempDir(), "surface.png")
	f := ramp(6)
	if err := WritePNG(path, f); err != nil {
		t.Fatalf("WritePNG: %v", err)
	}

	in, err := os.Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer in.Close()
	img, err := png.Decode(in)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if img.Bounds().Dx() != 6 || img.Bounds().Dy() != 6 {
		t.Fatalf("bounds = %v", img.Bounds())
	}
	lo, _, _, _ := img.At(0, 0).RGBA()
	hi, _, _, _ := img.At(5, 5).RGBA()
	if lo != 0 || hi != 0xffff {
		t.Errorf("corners = %d, %d; want 0, 65535", lo, hi)
	}
}

func TestWritePNGEmpty(t *testing.T) {
	if err := WritePNG(filepath.Join(t.TempDir(), "x.png"), nil); err == nil {
		t.Error("expected error for nil field")
	}
}

func TestJournalLogsUnderRecordName(t *testing.T) {
	prev := logger.Log
	t.Cleanup(func() { logger.Log = prev })

	logPath := filepath.Join(t.TempDir(), "record.log")
	if err := logger.InitWithFileConfig("debug", logger.FileConfig{Path: logPath}, false); err != nil {
		t.Fatal(err)
	}

	j, err := NewJournal(t.TempDir(), "named", 8, false, fixedClock())
	if err != nil {
		t.Fatal(err)
	}
	if err := j.Close(); err != nil {
		t.Fatal(err)
	}
	logger.Sync()

	data, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatal(err)
	}
	for _, line := range strings.Split(strings.TrimSpace(string(data)), "\n") {
		if strings.Contains(line, "journal") && !strings.Contains(line, " record ") {
			t.Errorf("journal log line missing component name: %q", line)
		}
	}
	if !strings.Contains(string(data), "journal opened") {
		t.Errorf("log = %q", data)
	}
}
