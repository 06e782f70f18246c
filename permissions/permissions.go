// Package permissions probes the OS access the app needs before it starts.
// Results are advisory; the app still runs with reduced function.
package permissions

// Status reports which capabilities are currently available.
type Status struct {
	InputMonitoring bool // can observe global key events
	Injection       bool // can synthesize keystrokes

	InputHint     string // fix suggestion when InputMonitoring is false
	InjectionHint string // fix suggestion when Injection is false
}

// Probe checks the current process's access.
func Probe() Status {
	return probe()
}

// Warnings flattens missing capabilities into user-facing messages.
func (s Status) Warnings() []string {
	var out []string
	if !s.InputMonitoring {
		msg := "cannot monitor the hotkey"
		if s.InputHint != "" {
			msg += ": " + s.InputHint
		}
		out = append(out, msg)
	}
	if !s.Injection {
		msg := "cannot type into other applications"
		if s.InjectionHint != "" {
			msg += ": " + s.InjectionHint
		}
		out = append(out, msg)
	}
	return out
}
