package ort

// Status is the outcome of an analyzer run as seen by the curator.
type Status string

const (
	StatusSuccess    Status = "SUCCESS"
	StatusError      Status = "ERROR"
	StatusIncomplete Status = "INCOMPLETE"
)

func (s Status) String() string {
	return string(s)
}

// DetermineStatus classifies a scan. Any recorded issue makes it an error,
// otherwise detected packages make it a success.
func DetermineStatus(doc *ScanDocument) Status {
	if doc == nil {
		return StatusIncomplete
	}

	result := doc.Analyzer.Result
	if len(result.Issues) > 0 {
		return StatusError
	}
	if len(result.Packages) > 0 {
		return StatusSuccess
	}
	return StatusIncomplete
}
