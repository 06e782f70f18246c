package main

import (
	"sync"

	"voicetyper/audio"
	"voicetyper/config"
	"voicetyper/hotkey"
	"voicetyper/log"
	"voicetyper/models"
	"voicetyper/transcriber"
	"voicetyper/tray"
	"voicetyper/typer"
)

type appState int

const (
	stateIdle appState = iota
	stateRecording
	stateTranscribing
)

func (s appState) String() string {
	switch s {
	case stateRecording:
		return "recording"
	case stateTranscribing:
		return "transcribing"
	default:
		return "idle"
	}
}

// Every input reaches the orchestrator as an event on one queue, consumed
// serially by run. Hotkey edges, download callbacks, and menu clicks all
// arrive from their own goroutines; the queue is the only synchronization.
type event interface{}

type (
	pressEvent   struct{}
	releaseEvent struct{}
	doneEvent    struct {
		text string
		err  error
	}
	progressEvent struct {
		modelID string
		frac    float64
	}
	completeEvent struct {
		modelID string
		ok      bool
	}
	selectModelEvent struct{ modelID string }
	quitEvent        struct{}
)

// statusSink receives user-visible state changes. The tray implements it;
// tests substitute their own.
type statusSink interface {
	SetActivity(tray.Activity)
	SetModels(list []models.Status, activeID string)
	SetProgress(modelID string, frac float64)
	SetError(msg string)
}

type nopSink struct{}

func (nopSink) SetActivity(tray.Activity)         {}
func (nopSink) SetModels([]models.Status, string) {}
func (nopSink) SetProgress(string, float64)       {}
func (nopSink) SetError(string)                   {}

type traySink struct{}

func (traySink) SetActivity(a tray.Activity)                { tray.SetActivity(a) }
func (traySink) SetModels(l []models.Status, active string) { tray.SetModels(l, active) }
func (traySink) SetProgress(id string, frac float64)        { tray.SetDownloadProgress(id, frac) }
func (traySink) SetError(msg string)                        { tray.SetError(msg) }

// transcriberFactory builds a transcriber for a model file. Indirection so
// tests never shell out to whisper.
type transcriberFactory func(modelPath, language string) transcriber.Transcriber

type orchestrator struct {
	cfg      config.Config
	cfgPath  string
	modelDir string

	rec      *audio.Recorder
	dl       *models.Downloader
	ty       typer.Typer
	sink     statusSink
	newTr    transcriberFactory
	listener *hotkey.Listener

	tr transcriber.Transcriber // nil until the active model is on disk

	state         appState
	statuses      map[string]models.Status
	order         []string
	pendingSwitch string

	events   chan event
	done     chan struct{}
	stopOnce sync.Once
}

func newOrchestrator(cfg config.Config, cfgPath, modelDir string, rec *audio.Recorder, transport models.Transport, ty typer.Typer, newTr transcriberFactory, sink statusSink) *orchestrator {
	o := &orchestrator{
		cfg:      cfg,
		cfgPath:  cfgPath,
		modelDir: modelDir,
		rec:      rec,
		ty:       ty,
		sink:     sink,
		newTr:    newTr,
		statuses: make(map[string]models.Status),
		events:   make(chan event, 64),
		done:     make(chan struct{}),
	}
	o.dl = models.NewDownloader(transport,
		func(id string, frac float64) { o.post(progressEvent{modelID: id, frac: frac}) },
		func(id string, ok bool) { o.post(completeEvent{modelID: id, ok: ok}) },
	)
	for _, st := range models.Scan(modelDir) {
		o.statuses[st.ID] = st
		o.order = append(o.order, st.ID)
	}
	if models.IsDownloaded(modelDir, cfg.Model) {
		o.tr = o.buildTranscriber(cfg.Model)
	}
	return o
}

func (o *orchestrator) buildTranscriber(id string) transcriber.Transcriber {
	path, err := models.Path(o.modelDir, id)
	if err != nil {
		log.Errorf("model path for %q: %v", id, err)
		return nil
	}
	return o.newTr(path, o.cfg.Language)
}

// post enqueues an event, dropping it once the orchestrator has shut down.
func (o *orchestrator) post(ev event) {
	select {
	case o.events <- ev:
	case <-o.done:
	}
}

func (o *orchestrator) onPress()              { o.post(pressEvent{}) }
func (o *orchestrator) onRelease()            { o.post(releaseEvent{}) }
func (o *orchestrator) selectModel(id string) { o.post(selectModelEvent{modelID: id}) }
func (o *orchestrator) quit()                 { o.post(quitEvent{}) }

// start publishes the initial model list and, when the configured model is
// not on disk yet, kicks off its download and arms the switch so it becomes
// active on completion.
func (o *orchestrator) start() {
	o.sink.SetModels(o.statusList(), o.cfg.Model)
	if o.tr == nil {
		log.Warnf("model %q not downloaded yet, fetching", o.cfg.Model)
		o.pendingSwitch = o.cfg.Model
		o.markDownloading(o.cfg.Model)
		o.dl.Start(o.cfg.Model)
	}
}

// run consumes the event queue until quit. All handlers execute here, so
// state transitions never race.
func (o *orchestrator) run() {
	for ev := range o.events {
		switch e := ev.(type) {
		case pressEvent:
			o.handlePress()
		case releaseEvent:
			o.handleRelease()
		case doneEvent:
			o.handleDone(e)
		case progressEvent:
			o.handleProgress(e)
		case completeEvent:
			o.handleComplete(e)
		case selectModelEvent:
			o.handleSelect(e.modelID)
		case quitEvent:
			o.shutdown()
			return
		}
	}
}

// shutdown is idempotent; quit events and signal handlers may both arrive.
func (o *orchestrator) shutdown() {
	o.stopOnce.Do(func() {
		if o.listener != nil {
			o.listener.Stop()
		}
		o.rec.Close()
		o.dl.Cancel()
		close(o.done)
	})
}

func (o *orchestrator) handlePress() {
	if o.state != stateIdle {
		log.Debugf("press ignored in state %s", o.state)
		return
	}
	if err := o.rec.Start(); err != nil {
		log.Errorf("start capture: %v", err)
		o.sink.SetError("microphone unavailable")
		return
	}
	o.state = stateRecording
	o.sink.SetActivity(tray.ActivityRecording)
	log.Debugf("recording started")
}

func (o *orchestrator) handleRelease() {
	if o.state != stateRecording {
		log.Debugf("release ignored in state %s", o.state)
		return
	}
	samples := o.rec.Stop()
	log.Debugf("recording stopped, %d samples (%.1fs)", len(samples), float64(len(samples))/audio.SampleRate)

	if len(samples) == 0 {
		o.state = stateIdle
		o.sink.SetActivity(tray.ActivityIdle)
		return
	}
	if o.tr == nil {
		log.Warnf("no model available, dropping %d samples", len(samples))
		o.sink.SetError("model not downloaded yet")
		o.state = stateIdle
		o.sink.SetActivity(tray.ActivityIdle)
		return
	}

	o.state = stateTranscribing
	o.sink.SetActivity(tray.ActivityTranscribing)
	tr := o.tr
	go func() {
		text, err := tr.Transcribe(samples, audio.SampleRate)
		o.post(doneEvent{text: text, err: err})
	}()
}

func (o *orchestrator) handleDone(e doneEvent) {
	o.state = stateIdle
	o.sink.SetActivity(tray.ActivityIdle)

	if e.err != nil {
		log.Errorf("transcription failed: %v", e.err)
		o.sink.SetError("transcription failed")
		return
	}
	if e.text == "" {
		log.Debugf("transcription empty, nothing to type")
		return
	}
	log.Debugf("> %s", e.text)
	log.Infof("typing %d chars", len(e.text))
	if err := o.ty.Type(e.text); err != nil {
		log.Errorf("inject text: %v", err)
		o.sink.SetError("could not type into the focused window")
	}
}

func (o *orchestrator) handleProgress(e progressEvent) {
	st, ok := o.statuses[e.modelID]
	if !ok {
		return
	}
	st.State = models.Downloading
	st.Progress = e.frac
	o.statuses[e.modelID] = st
	o.sink.SetProgress(e.modelID, e.frac)
}

func (o *orchestrator) handleComplete(e completeEvent) {
	st, known := o.statuses[e.modelID]
	if known {
		if e.ok {
			st.State = models.Downloaded
			st.Progress = 1
		} else {
			st.State = models.DownloadError
		}
		o.statuses[e.modelID] = st
	}

	// Any completion disarms the pending switch; only a successful
	// completion of the awaited model performs it.
	pending := o.pendingSwitch
	o.pendingSwitch = ""

	if e.ok {
		log.Infof("model %s downloaded", e.modelID)
	} else {
		log.Warnf("download of %s did not complete", e.modelID)
		o.sink.SetError("model download failed")
	}

	if e.ok && pending == e.modelID {
		o.switchTo(e.modelID)
		return
	}
	o.sink.SetModels(o.statusList(), o.cfg.Model)
}

func (o *orchestrator) handleSelect(id string) {
	if id == o.cfg.Model {
		return
	}
	if _, ok := models.Lookup(id); !ok {
		log.Warnf("selected unknown model %q", id)
		return
	}
	if models.IsDownloaded(o.modelDir, id) {
		o.switchTo(id)
		return
	}

	log.Infof("model %s not on disk, downloading", id)
	o.pendingSwitch = id
	o.markDownloading(id)
	o.dl.Start(id)
	o.sink.SetModels(o.statusList(), o.cfg.Model)
}

// switchTo makes id the active model: persists the choice and rebuilds the
// transcriber against the new weights.
func (o *orchestrator) switchTo(id string) {
	o.cfg.Model = id
	if err := o.cfg.Save(o.cfgPath); err != nil {
		log.Errorf("persist config: %v", err)
	}
	o.tr = o.buildTranscriber(id)
	log.Infof("active model is now %s", id)
	o.sink.SetModels(o.statusList(), o.cfg.Model)
}

func (o *orchestrator) markDownloading(id string) {
	if st, ok := o.statuses[id]; ok {
		st.State = models.Downloading
		st.Progress = 0
		o.statuses[id] = st
	}
}

func (o *orchestrator) statusList() []models.Status {
	out := make([]models.Status, 0, len(o.order))
	for _, id := range o.order {
		out = append(out, o.statuses[id])
	}
	return out
}
