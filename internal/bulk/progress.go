package bulk

import "time"

const (
	STATUS_SUCCESS = "success"
	STATUS_ERROR   = "error"
)

const timestampLayout = "15:04:05"

type LogEntry struct {
	Timestamp string `json:"timestamp"`
	ItemName  string `json:"item_name"`
	Message   string `json:"message"`
	Status    string `json:"status"`
}

// Progress is the polled state of a bulk run.
type Progress struct {
	RunID      string     `json:"run_id,omitempty"`
	Total      int        `json:"total"`
	Processed  int        `json:"processed"`
	Success    int        `json:"success"`
	Failed     int        `json:"failed"`
	RecentLogs []LogEntry `json:"recent_logs"`
	Complete   bool       `json:"complete"`
}

// Summary is the answer of Start.
type Summary struct {
	Message string `json:"message"`
	Progress
}

func newProgress() *Progress {
	return &Progress{RecentLogs: []LogEntry{}}
}

// addLog puts the entry first and keeps at most limit entries.
func (p *Progress) addLog(now time.Time, name, message, status string, limit int) {
	entry := LogEntry{
		Timestamp: now.Format(timestampLayout),
		ItemName:  name,
		Message:   message,
		Status:    status,
	}
	p.RecentLogs = append([]LogEntry{entry}, p.RecentLogs...)
	if limit > 0 && len(p.RecentLogs) > limit {
		p.RecentLogs = p.RecentLogs[:limit]
	}
}
