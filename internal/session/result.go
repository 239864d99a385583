package session

// Status is the lifecycle of an explanation.
type Status int

const (
	Pending Status = iota
	Failed
	Succeeded
)

func (s Status) String() string {
	switch s {
	case Failed:
		return "failed"
	case Succeeded:
		return "succeeded"
	default:
		return "pending"
	}
}

// Result is the outcome of the explanation for one selection. Text holds
// the explanation when Succeeded; Err holds the failure when Failed.
type Result struct {
	Status Status
	Text   string
	Err    error
}
