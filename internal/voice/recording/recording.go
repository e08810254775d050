// Package recording writes the audio of a bridged call to WAV files.
package recording

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"voice-bridge/internal/observability"
	voiceaudio "voice-bridge/internal/voice/audio"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// ErrIO is wrapped by every filesystem or encoder failure of the sink.
var ErrIO = errors.New("recording io error")

type Layout string

const (
	// LayoutStereo writes one two-channel file, carrier on the left and agent on the right.
	LayoutStereo Layout = "stereo"
	// LayoutMono writes one single-channel file per source.
	LayoutMono Layout = "mono"
)

type Source string

const (
	SourceCarrier Source = "carrier"
	SourceAgent   Source = "agent"
	// SourceMixed names the stereo file that holds both sources.
	SourceMixed Source = "stereo"
)

const (
	carrierChannel = 0
	agentChannel   = 1
	pcmFormat      = 1
)

type State string

const (
	StateRecording State = "recording"
	StateFinalized State = "finalized"
)

// ParseLayout falls back to stereo for anything it does not recognise.
func ParseLayout(s string) Layout {
	if Layout(s) == LayoutMono {
		return LayoutMono
	}
	return LayoutStereo
}

type Config struct {
	Dir    string
	Layout Layout
}

// Recorder opens sinks for new calls.
type Recorder struct {
	dir    string
	layout Layout
	logger *observability.Logger
	now    func() time.Time
}

func NewRecorder(cfg Config, logger *observability.Logger) *Recorder {
	layout := cfg.Layout
	if layout == "" {
		layout = LayoutStereo
	}
	return &Recorder{
		dir:    cfg.Dir,
		layout: layout,
		logger: logger,
		now:    time.Now,
	}
}

func (r *Recorder) Layout() Layout {
	return r.layout
}

// File describes one output file of a sink.
type File struct {
	Path     string `json:"path"`
	Source   Source `json:"source"`
	Channels int    `json:"channels"`
	// CarrierSamples counts the caller samples in this file. The caller streams
	// continuously, so it measures the call length in either layout.
	CarrierSamples int `json:"carrier_samples,omitempty"`
}

type output struct {
	file    File
	f       *os.File
	encoder *wav.Encoder
	written int
	failed  bool
}

// Sink receives decoded PCM16 frames from both sides of a call.
type Sink struct {
	mu      sync.Mutex
	layout  Layout
	outputs map[Source]*output
	order   []*output
	state   State
	err     error
	logger  *observability.Logger
	ctx     context.Context
}

// Open creates the recording directory if needed and the output files for callSid.
func (r *Recorder) Open(ctx context.Context, callSid string) (*Sink, error) {
	if err := os.MkdirAll(r.dir, 0o755); err != nil {
		return nil, fmt.Errorf("%w: create directory %s: %v", ErrIO, r.dir, err)
	}

	stamp := r.now().UTC().Format("20060102T150405.000000000Z")
	sink := &Sink{
		layout:  r.layout,
		outputs: make(map[Source]*output),
		state:   StateRecording,
		logger:  r.logger,
		ctx:     ctx,
	}

	var sources []Source
	channels := 1
	if r.layout == LayoutStereo {
		sources = []Source{SourceMixed}
		channels = 2
	} else {
		sources = []Source{SourceCarrier, SourceAgent}
	}

	for _, src := range sources {
		path := filepath.Join(r.dir, fmt.Sprintf("%s_%s_%s.wav", callSid, stamp, src))
		out, err := createOutput(path, src, channels)
		if err != nil {
			sink.abort()
			return nil, err
		}
		sink.outputs[src] = out
		sink.order = append(sink.order, out)
	}

	r.logger.Info(observability.WithFields(ctx,
		observability.Field{Key: "layout", Value: string(r.layout)},
		observability.Field{Key: "files", Value: len(sink.order)},
	), "Recording started")

	return sink, nil
}

func createOutput(path string, src Source, channels int) (*output, error) {
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return nil, fmt.Errorf("%w: create %s: %v", ErrIO, path, err)
	}
	return &output{
		file:    File{Path: path, Source: src, Channels: channels},
		f:       f,
		encoder: wav.NewEncoder(f, voiceaudio.SampleRate, voiceaudio.BitDepth, channels, pcmFormat),
	}, nil
}

// WriteCarrier appends a frame of caller audio.
func (s *Sink) WriteCarrier(pcm []byte) error {
	return s.write(SourceCarrier, pcm)
}

// WriteAgent appends a frame of agent audio.
func (s *Sink) WriteAgent(pcm []byte) error {
	return s.write(SourceAgent, pcm)
}

func (s *Sink) write(src Source, pcm []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateRecording || len(pcm) == 0 {
		return nil
	}

	out, data := s.route(src, pcm)
	buf := &audio.IntBuffer{
		Format:         &audio.Format{NumChannels: out.file.Channels, SampleRate: voiceaudio.SampleRate},
		Data:           voiceaudio.PCM16ToSamples(data),
		SourceBitDepth: voiceaudio.BitDepth,
	}
	if err := out.encoder.Write(buf); err != nil {
		out.failed = true
		s.err = fmt.Errorf("%w: write %s: %v", ErrIO, out.file.Path, err)
		s.logger.Error(s.ctx, "Recording write failed, disabling recording", s.err)
		_ = s.finalize()
		return s.err
	}
	out.written += len(buf.Data)
	if src == SourceCarrier {
		out.file.CarrierSamples += len(pcm) / 2
	}
	return nil
}

// route picks the output for src and lays the frame out for it.
func (s *Sink) route(src Source, pcm []byte) (*output, []byte) {
	if s.layout == LayoutStereo {
		channel := carrierChannel
		if src == SourceAgent {
			channel = agentChannel
		}
		return s.outputs[SourceMixed], voiceaudio.InterleaveMonoToStereo(pcm, channel)
	}
	return s.outputs[src], pcm
}

// Close finalizes the WAV headers and closes the files. Safe to call more than once.
func (s *Sink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == StateFinalized {
		return nil
	}
	return s.finalize()
}

func (s *Sink) finalize() error {
	s.state = StateFinalized

	var errs []error
	for _, out := range s.order {
		if out.written == 0 && !out.failed {
			// an encoder only writes its header on the first buffer
			empty := &audio.IntBuffer{
				Format:         &audio.Format{NumChannels: out.file.Channels, SampleRate: voiceaudio.SampleRate},
				Data:           []int{},
				SourceBitDepth: voiceaudio.BitDepth,
			}
			if err := out.encoder.Write(empty); err != nil {
				errs = append(errs, fmt.Errorf("%w: header %s: %v", ErrIO, out.file.Path, err))
			}
		}
		if err := out.encoder.Close(); err != nil {
			errs = append(errs, fmt.Errorf("%w: finalize %s: %v", ErrIO, out.file.Path, err))
		}
		if err := out.f.Close(); err != nil {
			errs = append(errs, fmt.Errorf("%w: close %s: %v", ErrIO, out.file.Path, err))
		}
	}

	if err := errors.Join(errs...); err != nil {
		s.logger.Error(s.ctx, "Failed to finalize recording", err)
		return err
	}
	s.logger.Info(s.ctx, "Recording finalized")
	return nil
}

// abort closes files created by a failed Open without writing headers.
func (s *Sink) abort() {
	for _, out := range s.order {
		_ = out.f.Close()
		_ = os.Remove(out.file.Path)
	}
	s.state = StateFinalized
}

// Files lists the sink outputs in creation order.
func (s *Sink) Files() []File {
	s.mu.Lock()
	defer s.mu.Unlock()

	files := make([]File, len(s.order))
	for i, out := range s.order {
		files[i] = out.file
	}
	return files
}

func (s *Sink) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Err returns the write failure that disabled the sink, if any.
func (s *Sink) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// Duration reads the playback length of a WAV file.
func Duration(path string) (time.Duration, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("%w: open %s: %v", ErrIO, path, err)
	}
	defer f.Close()

	dec := wav.NewDecoder(f)
	if !dec.IsValidFile() {
		return 0, fmt.Errorf("%w: %s is not a valid wav file", ErrIO, path)
	}
	if err := dec.FwdToPCM(); err != nil {
		return 0, fmt.Errorf("%w: find pcm data in %s: %v", ErrIO, path, err)
	}
	bytesPerSecond := int(dec.SampleRate) * int(dec.NumChans) * int(dec.BitDepth) / 8
	if bytesPerSecond == 0 {
		return 0, fmt.Errorf("%w: %s has an empty format chunk", ErrIO, path)
	}
	return time.Duration(float64(dec.PCMSize) / float64(bytesPerSecond) * float64(time.Second)), nil
}
