// Package record keeps an append-only journal of a sculpting session:
// interaction events as snappy-compressed JSON lines and committed surfaces
// as zstd-compressed binary frames.
package record

import (
	"bufio"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/golang/snappy"
	"github.com/klauspost/compress/zstd"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/Faultbox/terrasketch/internal/logger"
	"github.com/Faultbox/terrasketch/internal/terrain"
	"github.com/Faultbox/terrasketch/pkg/math"
)

// File names inside a journal directory.
const (
	EventsFile   = "events.jsonl.sz"
	FramesFile   = "frames.bin.zst"
	ManifestFile = "manifest.json"
)

// frameHeaderSize is seq u64, resolution u32, captured ns u64.
const frameHeaderSize = 8 + 4 + 8

// ErrClosed is returned by writes after Close.
var ErrClosed = errors.New("record: journal closed")

// Clock supplies timestamps; time.Now in production.
type Clock func() time.Time

// Event is one journaled interaction.
type Event struct {
	Seq      uint64     `json:"seq"`
	Kind     string     `json:"kind"`
	Hand     int        `json:"hand"`
	Position [3]float32 `json:"position"`
	Time     time.Time  `json:"time"`
}

// Manifest describes a journal directory.
type Manifest struct {
	Session    string    `json:"session"`
	Resolution int       `json:"resolution"`
	Started    time.Time `json:"started"`
	Closed     time.Time `json:"closed"`
	Events     uint64    `json:"events"`
	Frames     uint64    `json:"frames"`
	PNG        []string  `json:"png,omitempty"`
}

// Journal writes events and frames for one session. Methods are safe for
// concurrent use.
type Journal struct {
	mu       sync.Mutex
	dir      string
	clock    Clock
	png      bool
	manifest Manifest

	eventsFile *os.File
	events     *snappy.Writer
	framesFile *os.File
	frames     *zstd.Encoder

	closed bool
}

// NewJournal creates <root>/<session>-<timestamp> and opens its streams.
func NewJournal(root, session string, resolution int, png bool, clock Clock) (*Journal, error) {
	if root == "" {
		return nil, fmt.Errorf("record: root directory must be provided")
	}
	if session == "" {
		session = "session"
	}
	if clock == nil {
		clock = time.Now
	}

	started := clock().UTC()
	dir := filepath.Join(root, fmt.Sprintf("%s-%s", session, started.Format("20060102T150405")))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("record: create dir: %w", err)
	}

	eventsFile, err := os.Create(filepath.Join(dir, EventsFile))
	if err != nil {
		return nil, fmt.Errorf("record: create events: %w", err)
	}
	framesFile, err := os.Create(filepath.Join(dir, FramesFile))
	if err != nil {
		eventsFile.Close()
		return nil, fmt.Errorf("record: create frames: %w", err)
	}
	frames, err := zstd.NewWriter(framesFile)
	if err != nil {
		eventsFile.Close()
		framesFile.Close()
		return nil, fmt.Errorf("record: zstd writer: %w", err)
	}

	j := &Journal{
		dir:   dir,
		clock: clock,
		png:   png,
		manifest: Manifest{
			Session:    session,
			Resolution: resolution,
			Started:    started,
		},
		eventsFile: eventsFile,
		events:     snappy.NewBufferedWriter(eventsFile),
		framesFile: framesFile,
		frames:     frames,
	}

	log().Info("journal opened", zap.String("dir", dir))
	return j, nil
}

// Dir returns the journal directory.
func (j *Journal) Dir() string {
	return j.dir
}

// AppendEvent writes one interaction event.
func (j *Journal) AppendEvent(kind string, hand int, pos math.Vec3) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	if j.closed {
		return ErrClosed
	}

	ev := Event{
		Seq:      j.manifest.Events,
		Kind:     kind,
		Hand:     hand,
		Position: [3]float32{pos.X, pos.Y, pos.Z},
		Time:     j.clock().UTC(),
	}
	data, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("record: encode event: %w", err)
	}
	data = append(data, '\n')
	if _, err := j.events.Write(data); err != nil {
		return fmt.Errorf("record: write event: %w", err)
	}
	if err := j.events.Flush(); err != nil {
		return fmt.Errorf("record: flush events: %w", err)
	}
	j.manifest.Events++
	return nil
}

// AppendFrame writes a committed surface as a binary frame and, when PNG
// export is enabled, as commit-<seq>.png.
func (j *Journal) AppendFrame(seq int, surface *terrain.Field) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	if j.closed {
		return ErrClosed
	}
	if surface == nil {
		return fmt.Errorf("record: nil surface")
	}

	header := make([]byte, frameHeaderSize)
	binary.LittleEndian.PutUint64(header[0:8], uint64(seq))
	binary.LittleEndian.PutUint32(header[8:12], uint32(surface.Size))
	binary.LittleEndian.PutUint64(header[12:20], uint64(j.clock().UnixNano()))
	if _, err := j.frames.Write(header); err != nil {
		return fmt.Errorf("record: write frame header: %w", err)
	}
	if err := binary.Write(j.frames, binary.LittleEndian, surface.Data); err != nil {
		return fmt.Errorf("record: write frame: %w", err)
	}
	j.manifest.Frames++

	if j.png {
		name := fmt.Sprintf("commit-%04d.png", seq)
		if err := WritePNG(filepath.Join(j.dir, name), surface); err != nil {
			return err
		}
		j.manifest.PNG = append(j.manifest.PNG, name)
	}
	return nil
}

// Close flushes both streams and writes the manifest. Every step is
// attempted; the combined error is returned.
func (j *Journal) Close() error {
	j.mu.Lock()
	defer j.mu.Unlock()

	if j.closed {
		return nil
	}
	j.closed = true

	var err error
	err = multierr.Append(err, j.events.Close())
	err = multierr.Append(err, j.eventsFile.Close())
	err = multierr.Append(err, j.frames.Close())
	err = multierr.Append(err, j.framesFile.Close())

	j.manifest.Closed = j.clock().UTC()
	data, merr := json.MarshalIndent(j.manifest, "", "  ")
	if merr != nil {
		err = multierr.Append(err, merr)
	} else {
		err = multierr.Append(err, os.WriteFile(filepath.Join(j.dir, ManifestFile), data, 0o644))
	}

	if err != nil {
		log().Warn("journal close failed", zap.String("dir", j.dir), zap.Error(err))
		return err
	}
	log().Info("journal closed",
		zap.String("dir", j.dir),
		zap.Uint64("events", j.manifest.Events),
		zap.Uint64("frames", j.manifest.Frames))
	return nil
}

// ReadManifest loads manifest.json from a journal directory.
func ReadManifest(dir string) (Manifest, error) {
	var m Manifest
	data, err := os.ReadFile(filepath.Join(dir, ManifestFile))
	if err != nil {
		return m, fmt.Errorf("record: read manifest: %w", err)
	}
	if err := json.Unmarshal(data, &m); err != nil {
		return m, fmt.Errorf("record: parse manifest: %w", err)
	}
	return m, nil
}

// ReadEvents decodes every event in a journal directory.
func ReadEvents(dir string) ([]Event, error) {
	f, err := os.Open(filepath.Join(dir, EventsFile))
	if err != nil {
		return nil, fmt.Errorf("record: open events: %w", err)
	}
	defer f.Close()

	var events []Event
	scanner := bufio.NewScanner(snappy.NewReader(f))
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var ev Event
		if err := json.Unmarshal(line, &ev); err != nil {
			return events, fmt.Errorf("record: parse event %d: %w", len(events), err)
		}
		events = append(events, ev)
	}
	if err := scanner.Err(); err != nil {
		return events, fmt.Errorf("record: scan events: %w", err)
	}
	return events, nil
}

// Frame is one decoded committed surface.
type Frame struct {
	Seq      uint64
	Captured time.Time
	Surface  *terrain.Field
}

// ReadFrames decodes every frame in a journal directory.
func ReadFrames(dir string) ([]Frame, error) {
	f, err := os.Open(filepath.Join(dir, FramesFile))
	if err != nil {
		return nil, fmt.Errorf("record: open frames: %w", err)
	}
	defer f.Close()

	dec, err := zstd.NewReader(f)
	if err != nil {
		return nil, fmt.Errorf("record: zstd reader: %w", err)
	}
	defer dec.Close()

	var frames []Frame
	header := make([]byte, frameHeaderSize)
	for {
		if _, err := io.ReadFull(dec, header); err != nil {
			if errors.Is(err, io.EOF) {
				return frames, nil
			}
			return frames, fmt.Errorf("record: frame %d header: %w", len(frames), err)
		}
		size := int(binary.LittleEndian.Uint32(header[8:12]))
		field := &terrain.Field{Size: size, Data: make([]float32, size*size)}
		if err := binary.Read(dec, binary.LittleEndian, field.Data); err != nil {
			return frames, fmt.Errorf("record: frame %d data: %w", len(frames), err)
		}
		frames = append(frames, Frame{
			Seq:      binary.LittleEndian.Uint64(header[0:8]),
			Captured: time.Unix(0, int64(binary.LittleEndian.Uint64(header[12:20]))).UTC(),
			Surface:  field,
		})
	}
}

func log() *zap.Logger { return logger.Named("record") }
