package pipeline

// State is a stage of one pipeline run.
type State int

const (
	StateLoadingIdentifiers State = iota
	StateFetching
	StateReportingPending
	StateGenerating
	StateUpdating
	StateDone
	StateAborted
)

var stateNames = [...]string{
	StateLoadingIdentifiers: "LoadingIdentifiers",
	StateFetching:           "Fetching",
	StateReportingPending:   "ReportingPending",
	StateGenerating:         "Generating",
	StateUpdating:           "Updating",
	StateDone:               "Done",
	StateAborted:            "Aborted",
}

func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return "Unknown"
	}
	return stateNames[s]
}

// Terminal reports whether no further transitions can happen from s.
func (s State) Terminal() bool {
	return s == StateDone || s == StateAborted
}

// canAbort reports whether a run in state s may still end in StateAborted.
func (s State) canAbort() bool {
	return s == StateLoadingIdentifiers || s == StateFetching
}
