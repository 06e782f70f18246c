package transcriber

import (
	"errors"
	"os"
	"strings"
	"testing"
)

type fakeRunner struct {
	stdout string
	stderr string
	err    error

	calls int
	name  string
	args  []string
}

func (f *fakeRunner) run(name string, args ...string) (string, string, error) {
	f.calls++
	f.name = name
	f.args = args
	return f.stdout, f.stderr, f.err
}

func newTestWhisper(r runner) *Whisper {
	return &Whisper{modelPath: "/tmp/model.bin", bin: "whisper-cli", run: r}
}

func TestTranscribeEmptyInputSkipsProcess(t *testing.T) {
	r := &fakeRunner{stdout: "should not appear"}
	w := newTestWhisper(r)
	text, err := w.Transcribe(nil, SampleRate)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if text != "" {
		t.Errorf("expected empty text, got %q", text)
	}
	if r.calls != 0 {
		t.Errorf("runner invoked %d times for empty input", r.calls)
	}
}

func TestTranscribeRejectsWrongSampleRate(t *testing.T) {
	w := newTestWhisper(&fakeRunner{})
	_, err := w.Transcribe([]float32{0.1}, 44100)
	if !errors.Is(err, ErrBadSampleRate) {
		t.Fatalf("expected ErrBadSampleRate, got %v", err)
	}
}

func TestTranscribeTrimsOutput(t *testing.T) {
	r := &fakeRunner{stdout: "  hello world \n"}
	w := newTestWhisper(r)
	text, err := w.Transcribe([]float32{0.1, 0.2}, SampleRate)
	if err != nil {
		t.Fatalf("transcribe: %v", err)
	}
	if text != "hello world" {
		t.Errorf("expected trimmed text, got %q", text)
	}
	if r.calls != 1 {
		t.Fatalf("expected one run, got %d", r.calls)
	}
	// Temp wav should be cleaned up after the call.
	for i, a := range r.args {
		if a == "-f" && i+1 < len(r.args) {
			if _, err := os.Stat(r.args[i+1]); !os.IsNotExist(err) {
				t.Errorf("temp wav %s left behind", r.args[i+1])
			}
		}
	}
}

func TestTranscribePassesModelAndLanguage(t *testing.T) {
	r := &fakeRunner{stdout: "ok"}
	w := newTestWhisper(r)
	w.language = "de"
	if _, err := w.Transcribe([]float32{0.5}, SampleRate); err != nil {
		t.Fatalf("transcribe: %v", err)
	}
	joined := strings.Join(r.args, " ")
	if !strings.Contains(joined, "-m /tmp/model.bin") {
		t.Errorf("model path missing from args: %v", r.args)
	}
	if !strings.Contains(joined, "-l de") {
		t.Errorf("language missing from args: %v", r.args)
	}
}

func TestTranscribeReportsProcessFailure(t *testing.T) {
	r := &fakeRunner{
		err:    errors.New("exit status 3"),
		stderr: "error: failed to load model\nmore detail",
	}
	w := newTestWhisper(r)
	_, err := w.Transcribe([]float32{0.1}, SampleRate)
	if err == nil {
		t.Fatal("expected error from failing process")
	}
	if !strings.Contains(err.Error(), "failed to load model") {
		t.Errorf("error should carry first stderr line, got %v", err)
	}
	if strings.Contains(err.Error(), "more detail") {
		t.Errorf("error should not carry full stderr, got %v", err)
	}
}
