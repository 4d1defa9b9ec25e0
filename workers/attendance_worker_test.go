package workers

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/facekiosk/attendancebackend/attendance"
)

func TestToScanResult(t *testing.T) {
	at := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)

	written := toScanResult(attendance.EntryResult{
		Outcome: attendance.OutcomeWritten, Action: attendance.ActionCheckIn, Sequence: 2}, at)
	assert.Equal(t, attendance.ScanSuccess, written.Outcome)
	assert.Equal(t, attendance.ActionCheckIn, written.Action)
	assert.Equal(t, 2, written.Sequence)

	suppressed := toScanResult(attendance.EntryResult{Outcome: attendance.OutcomeDuplicateSuppressed}, at)
	assert.Equal(t, attendance.ScanBlocked, suppressed.Outcome)
	assert.NotEmpty(t, suppressed.Reason)

	exact := toScanResult(attendance.EntryResult{
		Outcome: attendance.OutcomeDuplicateExact, Action: attendance.ActionCheckOut, Sequence: 1}, at)
	assert.Equal(t, attendance.ScanBlocked, exact.Outcome)
	assert.Equal(t, attendance.ActionCheckOut, exact.Action)

	failed := toScanResult(attendance.EntryResult{Outcome: attendance.OutcomeError}, at)
	assert.Equal(t, attendance.ScanError, failed.Outcome)
}

func TestQueueDetectionDedupesInFlight(t *testing.T) {
	// no workers attached: jobs stay queued so the pending set is observable
	ap := &AttendanceProcessor{
		JobQueue: make(chan DetectionJob, 2),
		Pending:  make(map[string]bool),
	}

	job := DetectionJob{TenantID: 1, RegID: "EMP001"}
	assert.True(t, ap.QueueDetection(job))
	assert.False(t, ap.QueueDetection(job), "the same person must not be queued twice while in flight")

	other := DetectionJob{TenantID: 2, RegID: "EMP001"}
	assert.True(t, ap.QueueDetection(other), "the pending set is scoped per tenant")
}

func TestQueueDetectionFullQueueClearsPending(t *testing.T) {
	ap := &AttendanceProcessor{
		JobQueue: make(chan DetectionJob, 1),
		Pending:  make(map[string]bool),
	}

	assert.True(t, ap.QueueDetection(DetectionJob{TenantID: 1, RegID: "EMP001"}))
	// the queue is full; the drop must not leave EMP002 marked pending
	assert.False(t, ap.QueueDetection(DetectionJob{TenantID: 1, RegID: "EMP002"}))

	<-ap.JobQueue
	ap.Mutex.Lock()
	delete(ap.Pending, pendingKey(DetectionJob{TenantID: 1, RegID: "EMP001"}))
	ap.Mutex.Unlock()

	assert.True(t, ap.QueueDetection(DetectionJob{TenantID: 1, RegID: "EMP002"}))
}
