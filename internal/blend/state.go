package blend

// State is the lifecycle stage of an Accumulator.
type State int

const (
	Uninitialized State = iota
	Prepared             // buffers zeroed for an ROI
	Accumulating         // at least one view fed
	Finished             // composite produced, buffers released
)

func (s State) String() string {
	switch s {
	case Uninitialized:
		return "Uninitialized"
	case Prepared:
		return "Prepared"
	case Accumulating:
		return "Accumulating"
	case Finished:
		return "Finished"
	default:
		return "Unknown"
	}
}
