package queue

import (
	"time"

	"github.com/shashiranjanraj/bazaar/pkg/logger"
)

// FailedJobRecord is the dead-letter row persisted when a job exhausts its
// retries or fails terminally. Operators inspect these via the admin
// endpoint and requeue or discard by hand.
type FailedJobRecord struct {
	ID       uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	JobName  string    `gorm:"size:255;not null;index"  json:"job_name"`
	Payload  string    `gorm:"type:text;not null"       json:"payload"`
	Error    string    `gorm:"type:text"                json:"error"`
	Attempts int       `gorm:"not null;default:0"       json:"attempts"`
	FailedAt time.Time `gorm:"autoCreateTime"           json:"failed_at"`
}

func (FailedJobRecord) TableName() string { return "failed_jobs" }

// persistFailed appends to the in-memory dead letter and, when a database
// is configured, writes a FailedJobRecord row.
func (m *Manager) persistFailed(name string, payload []byte, lastErr error, attempts int) {
	m.mu.Lock()
	m.failed = append(m.failed, FailedJob{
		JobName:  name,
		Payload:  append([]byte(nil), payload...),
		Err:      lastErr,
		FailedAt: time.Now(),
		Attempts: attempts,
	})
	m.mu.Unlock()

	if m.deadDB == nil {
		return
	}

	record := FailedJobRecord{
		JobName:  name,
		Payload:  string(payload),
		Error:    lastErr.Error(),
		Attempts: attempts,
		FailedAt: time.Now(),
	}

	if err := m.deadDB.Create(&record).Error; err != nil {
		// Non-fatal: the in-memory dead letter still has it.
		logger.Error("queue: persist failed job", "name", name, "error", err)
	}
}
