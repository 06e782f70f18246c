package transcriber

import (
	"bytes"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"voicetyper/audio"
)

// Default binary name; override with VOICETYPER_WHISPER_BIN for
// non-standard installs.
const defaultWhisperBin = "whisper-cli"

// runner abstracts process execution so tests never spawn whisper.
type runner interface {
	run(name string, args ...string) (stdout, stderr string, err error)
}

type execRunner struct{}

func (execRunner) run(name string, args ...string) (string, string, error) {
	cmd := exec.Command(name, args...)
	var out, errBuf bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &errBuf
	err := cmd.Run()
	return out.String(), errBuf.String(), err
}

// Whisper transcribes locally by invoking the whisper.cpp CLI against a
// downloaded ggml model file.
type Whisper struct {
	modelPath string
	language  string
	bin       string
	run       runner
}

func NewWhisper(modelPath, language string) *Whisper {
	bin := os.Getenv("VOICETYPER_WHISPER_BIN")
	if bin == "" {
		bin = defaultWhisperBin
	}
	return &Whisper{
		modelPath: modelPath,
		language:  language,
		bin:       bin,
		run:       execRunner{},
	}
}

func (w *Whisper) Transcribe(samples []float32, sampleRate int) (string, error) {
	if len(samples) == 0 {
		return "", nil
	}
	if sampleRate != SampleRate {
		return "", fmt.Errorf("%w, got %d Hz", ErrBadSampleRate, sampleRate)
	}

	wav, err := audio.EncodeWAV(samples, sampleRate)
	if err != nil {
		return "", fmt.Errorf("encode audio: %w", err)
	}

	tmp, err := os.CreateTemp("", "voicetyper-*.wav")
	if err != nil {
		return "", fmt.Errorf("create temp wav: %w", err)
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(wav); err != nil {
		tmp.Close()
		return "", fmt.Errorf("write temp wav: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("close temp wav: %w", err)
	}

	args := []string{
		"-m", w.modelPath,
		"-f", tmp.Name(),
		"--no-prints",
		"--no-timestamps",
	}
	if w.language != "" {
		args = append(args, "-l", w.language)
	}

	stdout, stderr, err := w.run.run(w.bin, args...)
	if err != nil {
		return "", fmt.Errorf("whisper: %w: %s", err, firstLine(stderr))
	}
	return strings.TrimSpace(stdout), nil
}

func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
