package models

// DownloadState is the lifecycle of one catalog entry's local copy.
type DownloadState int

const (
	NotDownloaded DownloadState = iota
	Downloading
	Downloaded
	DownloadError
)

func (s DownloadState) String() string {
	switch s {
	case NotDownloaded:
		return "not downloaded"
	case Downloading:
		return "downloading"
	case Downloaded:
		return "downloaded"
	case DownloadError:
		return "error"
	default:
		return "unknown"
	}
}

// Status pairs a catalog entry with its current local state. Progress is in
// [0, 1] and only meaningful while Downloading.
type Status struct {
	Descriptor
	State    DownloadState
	Progress float64
}

// Scan builds the initial status list from what is on disk under dir.
func Scan(dir string) []Status {
	out := make([]Status, 0, len(catalog))
	for _, d := range catalog {
		st := Status{Descriptor: d}
		if IsDownloaded(dir, d.ID) {
			st.State = Downloaded
			st.Progress = 1
		}
		out = append(out, st)
	}
	return out
}
