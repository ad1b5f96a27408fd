package domain

// Extraction is one successful match attempt. Only the winning extraction
// of a message is kept.
type Extraction struct {
	Candidate    Candidate `json:"candidate"`
	Confidence   float64   `json:"confidence"`
	SourceLocale Locale    `json:"source_locale"`
	Strategy     Strategy  `json:"strategy"`

	// Pattern names the grammar pattern that matched; empty for heuristics.
	Pattern string `json:"pattern,omitempty"`
}

// Category returns the category of the extracted candidate.
func (e *Extraction) Category() Category {
	if e == nil || e.Candidate == nil {
		return CategoryUnknown
	}
	return e.Candidate.Category()
}

// RejectReason explains why a message produced no event.
type RejectReason string

const (
	RejectUnclassifiedCategory   RejectReason = "UNCLASSIFIED_CATEGORY"
	RejectNoEngineAboveThreshold RejectReason = "NO_ENGINE_ABOVE_THRESHOLD"
	RejectExtractionFailed       RejectReason = "EXTRACTION_FAILED"
)

// OutcomeStatus is the terminal state of one pipeline run.
type OutcomeStatus string

const (
	StatusAccepted  OutcomeStatus = "ACCEPTED"
	StatusRejected  OutcomeStatus = "REJECTED"
	StatusDuplicate OutcomeStatus = "DUPLICATE"
)

// Outcome is the result of processing one message.
// Extraction is set for Accepted and Duplicate, Reason for Rejected.
type Outcome struct {
	Status     OutcomeStatus `json:"status"`
	Extraction *Extraction   `json:"extraction,omitempty"`
	Reason     RejectReason  `json:"reason,omitempty"`
}

// Accepted builds an accepted outcome.
func Accepted(e *Extraction) Outcome {
	return Outcome{Status: StatusAccepted, Extraction: e}
}

// Rejected builds a rejected outcome.
func Rejected(reason RejectReason) Outcome {
	return Outcome{Status: StatusRejected, Reason: reason}
}

// Duplicate builds a duplicate outcome that keeps the suppressed extraction.
func Duplicate(e *Extraction) Outcome {
	return Outcome{Status: StatusDuplicate, Extraction: e}
}

// IsAccepted reports whether the outcome carries a new event.
func (o Outcome) IsAccepted() bool {
	return o.Status == StatusAccepted
}
