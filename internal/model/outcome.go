package model

// Outcome is the terminal result of processing one Request.
type Outcome int

const (
	// OutcomeNone marks a request that has not reached a terminal state.
	OutcomeNone Outcome = iota

	// OutcomeSuccess means the artifact was written to disk.
	OutcomeSuccess

	// OutcomeAlreadyExists means the target file was already present.
	// It is reported as a skip, not a failure.
	OutcomeAlreadyExists

	// OutcomePermissionDenied means the target file could not be written.
	OutcomePermissionDenied

	// OutcomeExhausted means every download attempt failed.
	OutcomeExhausted

	// OutcomeNoMatch means the listing page had no download URL for the request.
	OutcomeNoMatch

	// OutcomeBadResponse means the listing page could not be fetched.
	OutcomeBadResponse
)

var outcomeNames = map[Outcome]string{
	OutcomeNone:             "none",
	OutcomeSuccess:          "success",
	OutcomeAlreadyExists:    "already_exists",
	OutcomePermissionDenied: "permission_denied",
	OutcomeExhausted:        "exhausted",
	OutcomeNoMatch:          "no_match",
	OutcomeBadResponse:      "bad_response",
}

// String returns a snake_case name, also used as a metrics label.
func (o Outcome) String() string {
	if name, ok := outcomeNames[o]; ok {
		return name
	}
	return "unknown"
}

// Failed reports whether the outcome should be counted as an error.
// Skips (already exists, permission denied) are informational.
func (o Outcome) Failed() bool {
	switch o {
	case OutcomeExhausted, OutcomeNoMatch, OutcomeBadResponse:
		return true
	}
	return false
}

// Outcomes lists every terminal outcome.
func Outcomes() []Outcome {
	return []Outcome{
		OutcomeSuccess,
		OutcomeAlreadyExists,
		OutcomePermissionDenied,
		OutcomeExhausted,
		OutcomeNoMatch,
		OutcomeBadResponse,
	}
}
