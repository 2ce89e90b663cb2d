package usecase

import "time"

type OutcomeKind int

const (
	OutcomeActive OutcomeKind = iota + 1
	OutcomeAuthRequired
	OutcomeNotFound
	OutcomeError
)

// Outcome is the closed result of a status probe or an activation run.
type Outcome struct {
	Kind   OutcomeKind
	Detail string
}

func Active() Outcome {
	return Outcome{Kind: OutcomeActive}
}

func AuthRequired(detail string) Outcome {
	return Outcome{Kind: OutcomeAuthRequired, Detail: detail}
}

func NotFound(detail string) Outcome {
	return Outcome{Kind: OutcomeNotFound, Detail: detail}
}

func Failed(detail string) Outcome {
	return Outcome{Kind: OutcomeError, Detail: detail}
}

func (o Outcome) IsActive() bool {
	return o.Kind == OutcomeActive
}

// Label is the wire status string.
func (o Outcome) Label() string {
	switch o.Kind {
	case OutcomeActive:
		return "ACTIVE"
	case OutcomeAuthRequired:
		return "AUTH_REQUIRED"
	case OutcomeNotFound:
		return "NOT_FOUND"
	default:
		return "ERROR"
	}
}

// OutcomeFromFetch maps a status probe error to an outcome.
func OutcomeFromFetch(err error) Outcome {
	if err == nil {
		return Active()
	}
	switch FetchReasonOf(err) {
	case ReasonUnauthorized:
		return AuthRequired("league is private or the supplied cookies are invalid")
	case ReasonNotFound:
		return NotFound("league not found")
	default:
		return Failed(err.Error())
	}
}

// CurrentSeason labels seasons by the year they conclude; a season starts
// in October.
func CurrentSeason(now time.Time) int {
	if now.Month() >= time.October {
		return now.Year() + 1
	}
	return now.Year()
}
