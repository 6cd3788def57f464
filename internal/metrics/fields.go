package metrics

// Label keys kept in one place so dashboards stay stable.
const (
	LabelKind   = "kind"
	LabelReason = "reason"
	LabelClock  = "clock"
	LabelMethod = "method"
	LabelRoute  = "route"
	LabelStatus = "status"
)

const (
	ClockGame = "game"
	ClockShot = "shot"
)
