package workers

import (
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/facekiosk/attendancebackend/attendance"
	"github.com/facekiosk/attendancebackend/realtime"
)

// DetectionJob is one recognized identity handed off the camera frame
// path for recording
type DetectionJob struct {
	TenantID uint
	RegID    string
	Snapshot attendance.PersonSnapshot
}

// AttendanceProcessor runs a pool of workers that turn recognition
// events into ledger writes. The scan loop only queues jobs, so frame
// capture never blocks on the database.
type AttendanceProcessor struct {
	JobQueue chan DetectionJob
	Recorder *attendance.Recorder
	Results  *attendance.ResultCache
	Hub      *realtime.Hub
	Wg       sync.WaitGroup
	StopChan chan struct{}
	Pending  map[string]bool
	Mutex    sync.Mutex
}

func NewAttendanceProcessor(recorder *attendance.Recorder, results *attendance.ResultCache,
	hub *realtime.Hub, queueSize, numWorkers int) *AttendanceProcessor {

	if numWorkers <= 0 {
		numWorkers = 1
	}
	if queueSize <= 0 {
		queueSize = 100
	}
	proc := &AttendanceProcessor{
		JobQueue: make(chan DetectionJob, queueSize),
		Recorder: recorder,
		Results:  results,
		Hub:      hub,
		StopChan: make(chan struct{}),
		Pending:  make(map[string]bool),
	}
	proc.Wg.Add(numWorkers)
	for i := 0; i < numWorkers; i++ {
		go proc.worker(i)
	}
	log.Printf("Started %d attendance worker(s) with queue size %d", numWorkers, queueSize)
	return proc
}

// worker processes jobs from the queue
func (ap *AttendanceProcessor) worker(id int) {
	defer ap.Wg.Done()

	log.Printf("Attendance worker %d started", id)
	for {
		select {
		case job, ok := <-ap.JobQueue:
			if !ok {
				log.Printf("Attendance worker %d stopping: Job queue closed", id)
				return
			}

			ap.processDetection(id, job)

			ap.Mutex.Lock()
			delete(ap.Pending, pendingKey(job))
			ap.Mutex.Unlock()

		case <-ap.StopChan:
			log.Printf("Attendance worker %d stopping: Stop signal received", id)
			return
		}
	}
}

// processDetection records one event and publishes the outcome to the
// result cache and the live monitor
func (ap *AttendanceProcessor) processDetection(id int, job DetectionJob) {
	key := attendance.NewKey(job.TenantID, job.RegID, ap.Recorder.Now())
	result := ap.Recorder.RecordEvent(key, job.Snapshot)

	scan := toScanResult(result, ap.Recorder.Now())
	ap.Results.Put(job.TenantID, key.RegID, scan)

	switch result.Outcome {
	case attendance.OutcomeWritten:
		log.Printf("Worker %d: recorded %s(%d) for %s", id, result.Action, result.Sequence, key.RegID)
		ap.Hub.Broadcast(job.TenantID, realtime.Event{
			Type:      "attendance",
			RegID:     key.RegID,
			Name:      job.Snapshot.FirstName + " " + job.Snapshot.LastName,
			Action:    string(result.Action),
			Sequence:  result.Sequence,
			Status:    "recorded",
			Timestamp: ap.Recorder.Now().Unix(),
		})
	case attendance.OutcomeError:
		log.Printf("Worker %d: ERROR recording event for %s: %v", id, key.RegID, result.Err)
		ap.Hub.Broadcast(job.TenantID, realtime.Event{
			Type:      "attendance",
			RegID:     key.RegID,
			Status:    "error",
			Error:     result.Err.Error(),
			Timestamp: ap.Recorder.Now().Unix(),
		})
	default:
		// suppressed duplicates are routine during a scan session; the
		// result cache already tells the kiosk what happened
	}
}

func toScanResult(result attendance.EntryResult, at time.Time) attendance.ScanResult {
	switch result.Outcome {
	case attendance.OutcomeWritten:
		return attendance.ScanResult{
			Outcome:    attendance.ScanSuccess,
			Action:     result.Action,
			Sequence:   result.Sequence,
			RecordedAt: at,
		}
	case attendance.OutcomeDuplicateSuppressed:
		return attendance.ScanResult{
			Outcome:    attendance.ScanBlocked,
			Reason:     "recently recorded, please wait",
			RecordedAt: at,
		}
	case attendance.OutcomeDuplicateExact:
		return attendance.ScanResult{
			Outcome:    attendance.ScanBlocked,
			Action:     result.Action,
			Sequence:   result.Sequence,
			Reason:     "entry already recorded",
			RecordedAt: at,
		}
	default:
		return attendance.ScanResult{
			Outcome:    attendance.ScanError,
			Reason:     "failed to record attendance",
			RecordedAt: at,
		}
	}
}

func pendingKey(job DetectionJob) string {
	return fmt.Sprintf("%d:%s", job.TenantID, job.RegID)
}

// QueueDetection queues a recognition event if the same person is not
// already in flight
func (ap *AttendanceProcessor) QueueDetection(job DetectionJob) bool {
	key := pendingKey(job)

	ap.Mutex.Lock()
	if ap.Pending[key] {
		ap.Mutex.Unlock()
		return false
	}

	ap.Pending[key] = true
	ap.Mutex.Unlock()

	select {
	case ap.JobQueue <- job:
		return true
	default:
		log.Printf("WARNING: Attendance job queue full. Dropped event for %s", job.RegID)
		ap.Mutex.Lock()
		delete(ap.Pending, key)
		ap.Mutex.Unlock()
		return false
	}
}

func (ap *AttendanceProcessor) Stop() {
	log.Println("Stopping attendance workers...")
	close(ap.StopChan)
	ap.Wg.Wait()
	log.Println("All attendance workers stopped")
}
