package models

// Phase names the pipeline step a log line or error belongs to.
type Phase string

const (
	PhaseViewState     Phase = "view_state"
	PhaseHarvest       Phase = "harvest"
	PhaseAddressDetail Phase = "address_detail"
	PhaseSubmission    Phase = "submission"
	PhaseEvaluate      Phase = "evaluate"
	PhaseOutput        Phase = "output"
)
