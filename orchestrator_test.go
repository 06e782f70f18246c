package main

import (
	"errors"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"voicetyper/audio"
	"voicetyper/config"
	"voicetyper/hotkey"
	"voicetyper/models"
	"voicetyper/transcriber"
	"voicetyper/tray"
	"voicetyper/typer"
)

// testSink publishes every status change on buffered channels so tests can
// wait for transitions instead of sleeping.
type testSink struct {
	activities chan tray.Activity
	actives    chan string
	progresses chan float64
	errs       chan string
}

func newTestSink() *testSink {
	return &testSink{
		activities: make(chan tray.Activity, 64),
		actives:    make(chan string, 64),
		progresses: make(chan float64, 64),
		errs:       make(chan string, 64),
	}
}

func (s *testSink) SetActivity(a tray.Activity)                { s.activities <- a }
func (s *testSink) SetModels(_ []models.Status, active string) { s.actives <- active }
func (s *testSink) SetProgress(_ string, f float64)            { s.progresses <- f }
func (s *testSink) SetError(m string)                          { s.errs <- m }

func waitActivity(t *testing.T, s *testSink, want tray.Activity) {
	t.Helper()
	select {
	case got := <-s.activities:
		if got != want {
			t.Fatalf("activity = %v, want %v", got, want)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for activity %v", want)
	}
}

func waitActive(t *testing.T, s *testSink, want string) {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for {
		select {
		case got := <-s.actives:
			if got == want {
				return
			}
		case <-deadline:
			t.Fatalf("timed out waiting for active model %q", want)
		}
	}
}

func waitError(t *testing.T, s *testSink) string {
	t.Helper()
	select {
	case msg := <-s.errs:
		return msg
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for error")
		return ""
	}
}

// testTransport blocks each fetch until the test releases it.
type testTransport struct {
	mu      sync.Mutex
	pending map[string]chan error
	started chan string
}

func newTestTransport() *testTransport {
	return &testTransport{
		pending: make(map[string]chan error),
		started: make(chan string, 16),
	}
}

func (tp *testTransport) Fetch(modelID string, progress func(float64)) (string, error) {
	ch := make(chan error, 1)
	tp.mu.Lock()
	tp.pending[modelID] = ch
	tp.mu.Unlock()
	tp.started <- modelID

	progress(0.5)
	if err := <-ch; err != nil {
		return "", err
	}
	progress(1)
	return "/unused/" + modelID, nil
}

func (tp *testTransport) finish(modelID string, err error) {
	tp.mu.Lock()
	ch := tp.pending[modelID]
	tp.mu.Unlock()
	ch <- err
}

func (tp *testTransport) waitStarted(t *testing.T) string {
	t.Helper()
	select {
	case id := <-tp.started:
		return id
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for fetch to start")
		return ""
	}
}

func (tp *testTransport) assertNoFetch(t *testing.T) {
	t.Helper()
	select {
	case id := <-tp.started:
		t.Fatalf("unexpected fetch of %q", id)
	case <-time.After(100 * time.Millisecond):
	}
}

type harness struct {
	o    *orchestrator
	dev  *audio.FakeDevice
	src  *hotkey.FakeSource
	ty   *typer.Fake
	tp   *testTransport
	sink *testSink

	modelDir string
	cfgPath  string
}

// newHarness wires an orchestrator with fakes. The configured model base.en
// starts downloaded unless withModel is false.
func newHarness(t *testing.T, trans transcriber.Transcriber, withModel bool) *harness {
	t.Helper()

	h := &harness{
		dev:      audio.NewFakeDevice(),
		src:      hotkey.NewFakeSource(),
		ty:       typer.NewFake(),
		tp:       newTestTransport(),
		sink:     newTestSink(),
		modelDir: t.TempDir(),
		cfgPath:  filepath.Join(t.TempDir(), "config.toml"),
	}

	cfg := config.Default()
	cfg.Model = "base.en"
	if withModel {
		writeModelFile(t, h.modelDir, "base.en")
	}

	rec := audio.NewRecorder(h.dev)
	factory := func(string, string) transcriber.Transcriber { return trans }
	h.o = newOrchestrator(cfg, h.cfgPath, h.modelDir, rec, h.tp, h.ty, factory, h.sink)

	listener := hotkey.NewListenerWithSource(h.src, h.o.onPress, h.o.onRelease)
	h.o.listener = listener
	if err := listener.Start(); err != nil {
		t.Fatalf("start listener: %v", err)
	}

	h.o.start()
	go h.o.run()

	t.Cleanup(func() {
		h.o.quit()
		select {
		case <-h.o.done:
		case <-time.After(2 * time.Second):
			t.Error("orchestrator did not shut down")
		}
	})
	return h
}

func writeModelFile(t *testing.T, dir, id string) {
	t.Helper()
	path, err := models.Path(dir, id)
	if err != nil {
		t.Fatal(err)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("weights"), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestFullDictationCycle(t *testing.T) {
	fake := transcriber.NewFake("hello world", nil)
	h := newHarness(t, fake, true)

	h.src.SimPress()
	waitActivity(t, h.sink, tray.ActivityRecording)

	h.dev.FeedSeconds(2.0)

	h.src.SimRelease()
	waitActivity(t, h.sink, tray.ActivityTranscribing)
	waitActivity(t, h.sink, tray.ActivityIdle)

	calls := fake.Calls()
	if len(calls) != 1 {
		t.Fatalf("expected one transcription, got %d", len(calls))
	}
	if calls[0].NumSamples != 2*audio.SampleRate {
		t.Errorf("expected %d samples, got %d", 2*audio.SampleRate, calls[0].NumSamples)
	}
	if calls[0].SampleRate != audio.SampleRate {
		t.Errorf("expected %d Hz, got %d", audio.SampleRate, calls[0].SampleRate)
	}

	waitTyped(t, h.ty, "hello world")
}

func waitTyped(t *testing.T, ty *typer.Fake, want string) {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for {
		typed := ty.Typed()
		if len(typed) == 1 && typed[0] == want {
			return
		}
		select {
		case <-deadline:
			t.Fatalf("typed = %v, want [%q]", typed, want)
		case <-time.After(10 * time.Millisecond):
		}
	}
}

func TestReleaseWithNoAudioSkipsTranscription(t *testing.T) {
	fake := transcriber.NewFake("should not appear", nil)
	h := newHarness(t, fake, true)

	h.src.SimPress()
	waitActivity(t, h.sink, tray.ActivityRecording)
	h.src.SimRelease()
	waitActivity(t, h.sink, tray.ActivityIdle)

	if n := len(fake.Calls()); n != 0 {
		t.Errorf("expected no transcriptions, got %d", n)
	}
	if typed := h.ty.Typed(); len(typed) != 0 {
		t.Errorf("expected nothing typed, got %v", typed)
	}
}

func TestKeyRepeatDoesNotRestartRecording(t *testing.T) {
	fake := transcriber.NewFake("once", nil)
	h := newHarness(t, fake, true)

	h.src.SimPress()
	waitActivity(t, h.sink, tray.ActivityRecording)
	// OS key-repeat shows up as extra raw press edges.
	h.src.SimPress()
	h.src.SimPress()

	h.dev.FeedSeconds(0.5)
	h.src.SimRelease()
	waitActivity(t, h.sink, tray.ActivityTranscribing)
	waitActivity(t, h.sink, tray.ActivityIdle)

	if n := len(fake.Calls()); n != 1 {
		t.Errorf("expected one transcription, got %d", n)
	}
}

// gateTranscriber blocks until released so tests can hold the app in the
// transcribing state.
type gateTranscriber struct {
	release chan struct{}
	calls   atomic.Int32
}

func (g *gateTranscriber) Transcribe([]float32, int) (string, error) {
	g.calls.Add(1)
	<-g.release
	return "gated", nil
}

func TestPressDuringTranscribingIsDropped(t *testing.T) {
	gate := &gateTranscriber{release: make(chan struct{})}
	h := newHarness(t, gate, true)

	h.src.SimPress()
	waitActivity(t, h.sink, tray.ActivityRecording)
	h.dev.FeedSeconds(0.5)
	h.src.SimRelease()
	waitActivity(t, h.sink, tray.ActivityTranscribing)

	// A full press/release while transcribing must not start anything.
	h.src.SimPress()
	h.src.SimRelease()

	close(gate.release)
	waitActivity(t, h.sink, tray.ActivityIdle)
	waitTyped(t, h.ty, "gated")

	if n := gate.calls.Load(); n != 1 {
		t.Errorf("expected one transcription, got %d", n)
	}
}

func TestTranscriptionErrorReturnsToIdle(t *testing.T) {
	fake := transcriber.NewFake("", errors.New("model exploded"))
	h := newHarness(t, fake, true)

	h.src.SimPress()
	waitActivity(t, h.sink, tray.ActivityRecording)
	h.dev.FeedSeconds(0.5)
	h.src.SimRelease()
	waitActivity(t, h.sink, tray.ActivityTranscribing)
	waitActivity(t, h.sink, tray.ActivityIdle)

	if msg := waitError(t, h.sink); msg != "transcription failed" {
		t.Errorf("unexpected error message %q", msg)
	}
	if typed := h.ty.Typed(); len(typed) != 0 {
		t.Errorf("expected nothing typed, got %v", typed)
	}

	// The app stays usable after a failure.
	h.src.SimPress()
	waitActivity(t, h.sink, tray.ActivityRecording)
	h.src.SimRelease()
	waitActivity(t, h.sink, tray.ActivityIdle)
}

func TestSelectDownloadedModelSwitchesImmediately(t *testing.T) {
	fake := transcriber.NewFake("ok", nil)
	h := newHarness(t, fake, true)
	writeModelFile(t, h.modelDir, "tiny.en")

	h.o.selectModel("tiny.en")
	waitActive(t, h.sink, "tiny.en")

	h.tp.assertNoFetch(t)

	cfg, err := config.Load(h.cfgPath)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.Model != "tiny.en" {
		t.Errorf("persisted model = %q, want tiny.en", cfg.Model)
	}
}

func TestSelectCurrentModelIsNoOp(t *testing.T) {
	fake := transcriber.NewFake("ok", nil)
	h := newHarness(t, fake, true)

	h.o.selectModel("base.en")
	h.tp.assertNoFetch(t)
	if config.Exists(h.cfgPath) {
		t.Error("config written for a no-op selection")
	}
}

func TestPendingSwitchActivatesOnCompletion(t *testing.T) {
	fake := transcriber.NewFake("ok", nil)
	h := newHarness(t, fake, true)

	h.o.selectModel("tiny.en")
	if id := h.tp.waitStarted(t); id != "tiny.en" {
		t.Fatalf("started fetch of %q, want tiny.en", id)
	}

	h.tp.finish("tiny.en", nil)
	waitActive(t, h.sink, "tiny.en")

	cfg, err := config.Load(h.cfgPath)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.Model != "tiny.en" {
		t.Errorf("persisted model = %q, want tiny.en", cfg.Model)
	}
}

func TestFailedDownloadKeepsCurrentModel(t *testing.T) {
	fake := transcriber.NewFake("ok", nil)
	h := newHarness(t, fake, true)

	h.o.selectModel("tiny.en")
	h.tp.waitStarted(t)
	h.tp.finish("tiny.en", errors.New("network down"))

	if msg := waitError(t, h.sink); msg != "model download failed" {
		t.Errorf("unexpected error message %q", msg)
	}
	waitActive(t, h.sink, "base.en")
	if config.Exists(h.cfgPath) {
		t.Error("config written after failed switch")
	}
}

func TestStartupFetchesMissingModel(t *testing.T) {
	fake := transcriber.NewFake("ok", nil)
	h := newHarness(t, fake, false)

	if id := h.tp.waitStarted(t); id != "base.en" {
		t.Fatalf("started fetch of %q, want base.en", id)
	}
	h.tp.finish("base.en", nil)
	waitActive(t, h.sink, "base.en")
}

func TestRecordingWithoutModelReportsError(t *testing.T) {
	fake := transcriber.NewFake("nope", nil)
	h := newHarness(t, fake, false)

	// Leave the startup download unfinished so no model is active.
	h.tp.waitStarted(t)

	h.src.SimPress()
	waitActivity(t, h.sink, tray.ActivityRecording)
	h.dev.FeedSeconds(0.5)
	h.src.SimRelease()
	waitActivity(t, h.sink, tray.ActivityIdle)

	if msg := waitError(t, h.sink); msg != "model not downloaded yet" {
		t.Errorf("unexpected error message %q", msg)
	}
	if n := len(fake.Calls()); n != 0 {
		t.Errorf("expected no transcriptions, got %d", n)
	}
	h.tp.finish("base.en", nil)
}

func TestUnavailableMicrophoneDegradesGracefully(t *testing.T) {
	fake := transcriber.NewFake("never", nil)
	sink := newTestSink()
	modelDir := t.TempDir()
	writeModelFile(t, modelDir, "base.en")
	cfg := config.Default()
	cfg.Model = "base.en"

	rec := audio.NewRecorder(audio.Unavailable(errors.New("no capture backend")))
	ty := typer.NewFake()
	factory := func(string, string) transcriber.Transcriber { return fake }
	o := newOrchestrator(cfg, filepath.Join(t.TempDir(), "config.toml"), modelDir, rec, newTestTransport(), ty, factory, sink)
	o.start()
	go o.run()
	t.Cleanup(func() {
		o.quit()
		select {
		case <-o.done:
		case <-time.After(2 * time.Second):
			t.Error("orchestrator did not shut down")
		}
	})

	o.onPress()
	if msg := waitError(t, sink); msg != "microphone unavailable" {
		t.Errorf("unexpected error message %q", msg)
	}
	// The press never left Idle, so the release is a no-op.
	o.onRelease()

	select {
	case a := <-sink.activities:
		t.Fatalf("unexpected activity %v with no working microphone", a)
	case <-time.After(100 * time.Millisecond):
	}
	if n := len(fake.Calls()); n != 0 {
		t.Errorf("expected no transcriptions, got %d", n)
	}
	if typed := ty.Typed(); len(typed) != 0 {
		t.Errorf("expected nothing typed, got %v", typed)
	}
}

func TestQuitIsIdempotent(t *testing.T) {
	fake := transcriber.NewFake("ok", nil)
	h := newHarness(t, fake, true)

	h.o.quit()
	select {
	case <-h.o.done:
	case <-time.After(2 * time.Second):
		t.Fatal("orchestrator did not shut down")
	}
	// Posting after shutdown must not block or panic.
	h.o.quit()
	h.o.selectModel("tiny.en")
}
