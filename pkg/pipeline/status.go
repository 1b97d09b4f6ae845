package pipeline

// StageStatus indicates the outcome of a single pipeline stage.
type StageStatus string

// SUCCESS StageStatus indicates that the stage completed its contract in full.
const SUCCESS StageStatus = "SUCCESS"

// FAILED StageStatus indicates that the stage could not complete its contract.
const FAILED StageStatus = "FAILED"

// StageStatuses is the complete list of valid stage statuses.
var StageStatuses = []StageStatus{SUCCESS, FAILED}

// IsValid returns true if the supplied StageStatus is recognized.
func (s StageStatus) IsValid() bool {
	for _, v := range StageStatuses {
		if s == v {
			return true
		}
	}
	return false
}

// String returns a string representation of the StageStatus.
func (s StageStatus) String() string {
	return string(s)
}

// OverallStatus indicates the processing state of the whole pipeline run.
type OverallStatus string

// IN_PROGRESS OverallStatus indicates that the run has not been persisted yet.
const IN_PROGRESS OverallStatus = "IN_PROGRESS"

// COMPLETED OverallStatus indicates that the run was persisted successfully.
const COMPLETED OverallStatus = "COMPLETED"

// String returns a string representation of the OverallStatus.
func (s OverallStatus) String() string {
	return string(s)
}
