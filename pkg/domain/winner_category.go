package domain

import dErrors "tekfest/pkg/domain-errors"

// WinnerCategory is one of the closed set of award categories. Each category is
// independently and exclusively assigned to at most one submission per event.
type WinnerCategory string

const (
	WinnerProblemSolving     WinnerCategory = "problem_solving"
	WinnerTechnicalExecution WinnerCategory = "technical_execution"
	WinnerPresentation       WinnerCategory = "presentation"
	WinnerOverall            WinnerCategory = "overall"
)

// WinnerCategories lists every award category in display order.
var WinnerCategories = []WinnerCategory{
	WinnerProblemSolving,
	WinnerTechnicalExecution,
	WinnerPresentation,
	WinnerOverall,
}

var validWinnerCategories = map[WinnerCategory]bool{
	WinnerProblemSolving:     true,
	WinnerTechnicalExecution: true,
	WinnerPresentation:       true,
	WinnerOverall:            true,
}

// ParseWinnerCategory constructs a WinnerCategory from external input.
func ParseWinnerCategory(s string) (WinnerCategory, error) {
	if s == "" {
		return "", dErrors.New(dErrors.CodeInvalidInput, "winner category cannot be empty")
	}
	c := WinnerCategory(s)
	if !validWinnerCategories[c] {
		return "", dErrors.Newf(dErrors.CodeInvalidInput, "unknown winner category %q", s)
	}
	return c, nil
}

func (c WinnerCategory) IsValid() bool { return validWinnerCategories[c] }
func (c WinnerCategory) String() string { return string(c) }
