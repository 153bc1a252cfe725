// Package reporting aggregates recorded payment attempts into retrospective
// summaries for the admin reporting endpoint.
package reporting

import (
	"sync"
	"time"
)

// AttemptRecord is one finished pipeline run or capture attempt.
type AttemptRecord struct {
	Timestamp time.Time
	OrderID   string
	Flow      string
	Status    string // e.g. "success", "failure", "redirect", "error"
	Amount    int64
	Currency  string
	ErrorCode string
}

// RetrospectiveReport summarizes payment activity over a set of records.
type RetrospectiveReport struct {
	TotalAttempts        int              `json:"total_attempts"`
	SuccessfulPayments   int              `json:"successful_payments"`
	FailedPayments       int              `json:"failed_payments"`
	RedirectedPayments   int              `json:"redirected_payments"`
	TotalAmountProcessed int64            `json:"total_amount_processed"`
	AmountByCurrency     map[string]int64 `json:"amount_by_currency"`
	ErrorBreakdown       map[string]int   `json:"error_breakdown"`
	FlowUsage            map[string]int   `json:"flow_usage"`
	DateFrom             time.Time        `json:"date_from"`
	DateTo               time.Time        `json:"date_to"`
}

// Recorder collects attempt records in memory.
type Recorder struct {
	mu      sync.RWMutex
	records []AttemptRecord
}

// NewRecorder creates an empty recorder.
func NewRecorder() *Recorder {
	return &Recorder{}
}

// Append adds a record.
func (r *Recorder) Append(record AttemptRecord) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records = append(r.records, record)
}

// Records returns a copy of all records, oldest first.
func (r *Recorder) Records() []AttemptRecord {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]AttemptRecord, len(r.records))
	copy(out, r.records)
	return out
}

// GenerateRetrospective analyzes attempt records and produces a report.
// Amounts are summed for successful attempts only.
func GenerateRetrospective(records []AttemptRecord) *RetrospectiveReport {
	report := &RetrospectiveReport{
		AmountByCurrency: make(map[string]int64),
		ErrorBreakdown:   make(map[string]int),
		FlowUsage:        make(map[string]int),
	}
	if len(records) == 0 {
		return report
	}

	report.DateFrom = records[0].Timestamp
	report.DateTo = records[0].Timestamp

	for _, rec := range records {
		report.TotalAttempts++
		report.FlowUsage[rec.Flow]++

		switch rec.Status {
		case "success":
			report.SuccessfulPayments++
			report.TotalAmountProcessed += rec.Amount
			report.AmountByCurrency[rec.Currency] += rec.Amount
		case "redirect":
			report.RedirectedPayments++
		default:
			report.FailedPayments++
			if rec.ErrorCode != "" {
				report.ErrorBreakdown[rec.ErrorCode]++
			}
		}

		if rec.Timestamp.Before(report.DateFrom) {
			report.DateFrom = rec.Timestamp
		}
		if rec.Timestamp.After(report.DateTo) {
			report.DateTo = rec.Timestamp
		}
	}
	return report
}
