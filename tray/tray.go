// Package tray renders the status icon and model menu. All Set* calls are
// safe before the tray is up and when it is disabled; they become no-ops.
package tray

import (
	"fmt"
	"sync"
	"time"

	"fyne.io/systray"

	"voicetyper/models"
)

// Activity is what the app is doing right now, reflected in the icon.
type Activity int

const (
	ActivityIdle Activity = iota
	ActivityRecording
	ActivityTranscribing
)

const baseTooltip = "voicetyper – push to talk"

var (
	mu       sync.Mutex
	ready    bool
	quitOnce sync.Once
	quitCh   = make(chan struct{})

	quitCb   func()
	selectCb func(id string)

	mStatus    *systray.MenuItem
	modelItems map[string]*systray.MenuItem

	statuses map[string]models.Status
	order    []string
	activeID string
	permWarn string
)

// OnQuit registers the callback fired when the user picks Quit.
func OnQuit(fn func()) {
	mu.Lock()
	quitCb = fn
	mu.Unlock()
}

// OnSelectModel registers the callback fired when the user picks a model.
func OnSelectModel(fn func(id string)) {
	mu.Lock()
	selectCb = fn
	mu.Unlock()
}

// onReadyFn wraps menu construction around the caller's hook. Platform Run
// implementations hand it to systray.
func onReadyFn(onReady func()) func() {
	return func() {
		buildMenu()
		if onReady != nil {
			onReady()
		}
	}
}

func onExitFn() {
	quitOnce.Do(func() { close(quitCh) })
	mu.Lock()
	cb := quitCb
	mu.Unlock()
	if cb != nil {
		cb()
	}
}

// Quit tears the tray down. Safe to call more than once.
func Quit() {
	quitOnce.Do(func() { close(quitCh) })
	systray.Quit()
}

// SetActivity updates the icon and status line.
func SetActivity(a Activity) {
	mu.Lock()
	defer mu.Unlock()
	if !ready {
		return
	}
	switch a {
	case ActivityRecording:
		systray.SetIcon(iconRecHi)
		mStatus.SetTitle("Recording…")
	case ActivityTranscribing:
		systray.SetIcon(iconBusyHi)
		mStatus.SetTitle("Transcribing…")
	default:
		systray.SetTemplateIcon(iconIdleHi, iconIdle)
		mStatus.SetTitle("Idle")
	}
	updateTooltipLocked()
}

// SetModels replaces the model list and marks activeID as checked.
func SetModels(list []models.Status, active string) {
	mu.Lock()
	defer mu.Unlock()
	statuses = make(map[string]models.Status, len(list))
	order = order[:0]
	for _, st := range list {
		statuses[st.ID] = st
		order = append(order, st.ID)
	}
	activeID = active
	refreshModelItemsLocked()
}

// SetDownloadProgress updates one model's progress display. Last write wins;
// stale updates from a cancelled job are harmless.
func SetDownloadProgress(id string, frac float64) {
	mu.Lock()
	defer mu.Unlock()
	st, ok := statuses[id]
	if !ok {
		return
	}
	st.State = models.Downloading
	st.Progress = frac
	statuses[id] = st
	if item, ok := modelItems[id]; ok {
		item.SetTitle(modelTitle(st))
	}
}

// SetPermissionWarning surfaces missing OS permissions in the tooltip.
// An empty string clears the warning.
func SetPermissionWarning(msg string) {
	mu.Lock()
	defer mu.Unlock()
	permWarn = msg
	if ready {
		updateTooltipLocked()
	}
}

// SetError flashes msg in the tooltip for a while.
func SetError(msg string) {
	mu.Lock()
	if !ready {
		mu.Unlock()
		return
	}
	systray.SetTooltip("voicetyper – " + msg)
	mu.Unlock()
	go func() {
		time.Sleep(10 * time.Second)
		mu.Lock()
		defer mu.Unlock()
		if ready {
			updateTooltipLocked()
		}
	}()
}

func updateTooltipLocked() {
	tip := baseTooltip
	if permWarn != "" {
		tip += " ⚠ " + permWarn
	}
	systray.SetTooltip(tip)
}

func buildMenu() {
	mu.Lock()
	defer mu.Unlock()

	systray.SetTemplateIcon(iconIdleHi, iconIdle)
	systray.SetTooltip(baseTooltip)

	mStatus = systray.AddMenuItem("Idle", "Current state")
	mStatus.Disable()

	systray.AddSeparator()

	mModels := systray.AddMenuItem("Model", "Select speech model")
	modelItems = make(map[string]*systray.MenuItem)
	if len(order) == 0 {
		for _, d := range models.Catalog() {
			order = append(order, d.ID)
		}
	}
	if statuses == nil {
		statuses = make(map[string]models.Status)
	}
	for _, id := range order {
		st, ok := statuses[id]
		if !ok {
			if d, found := models.Lookup(id); found {
				st = models.Status{Descriptor: d}
			}
		}
		item := mModels.AddSubMenuItemCheckbox(modelTitle(st), st.SizeHint, id == activeID)
		modelItems[id] = item
		go clickLoop(item, id)
	}

	systray.AddSeparator()
	mQuit := systray.AddMenuItem("Quit", "Quit voicetyper")
	go func() {
		<-mQuit.ClickedCh
		Quit()
	}()

	ready = true
	updateTooltipLocked()
}

func clickLoop(item *systray.MenuItem, id string) {
	for range item.ClickedCh {
		mu.Lock()
		cb := selectCb
		mu.Unlock()
		if cb != nil {
			cb(id)
		}
	}
}

func refreshModelItemsLocked() {
	if !ready {
		return
	}
	for id, item := range modelItems {
		st, ok := statuses[id]
		if !ok {
			continue
		}
		item.SetTitle(modelTitle(st))
		if id == activeID {
			item.Check()
		} else {
			item.Uncheck()
		}
	}
}

func modelTitle(st models.Status) string {
	switch st.State {
	case models.Downloaded:
		return st.DisplayName
	case models.Downloading:
		return fmt.Sprintf("%s (%.0f%%)", st.DisplayName, st.Progress*100)
	case models.DownloadError:
		return st.DisplayName + " (download failed)"
	default:
		return fmt.Sprintf("%s (%s)", st.DisplayName, st.SizeHint)
	}
}
