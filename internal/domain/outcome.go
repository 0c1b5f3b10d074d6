package domain

import "fmt"

// Label is the classifier's binary verdict
type Label int

const (
	LabelLowRisk  Label = 0
	LabelHighRisk Label = 1
)

// RiskLevel is the short machine-readable name of an outcome
type RiskLevel string

const (
	RiskLow  RiskLevel = "low"
	RiskHigh RiskLevel = "high"
)

// Outcome is the message shown to the user for one prediction. It is
// derived per interaction and never stored.
type Outcome struct {
	Label    Label     `json:"label"`
	Risk     RiskLevel `json:"risk"`
	Headline string    `json:"headline"`
	Advice   string    `json:"advice"`
}

// Message joins the headline and advice the way the result box shows them
func (o Outcome) Message() string {
	return o.Headline + " — " + o.Advice
}

var (
	highRiskOutcome = Outcome{
		Label:    LabelHighRisk,
		Risk:     RiskHigh,
		Headline: "High Risk of Heart Failure",
		Advice:   "Please consult a cardiologist immediately for detailed diagnosis.",
	}
	lowRiskOutcome = Outcome{
		Label:    LabelLowRisk,
		Risk:     RiskLow,
		Headline: "Low Risk of Heart Failure",
		Advice:   "Maintain a healthy lifestyle and regular checkups.",
	}
)

// OutcomeFor maps a classifier label to its fixed outcome. Labels other
// than 0 and 1 mean the classifier is broken and are reported as a
// transform failure rather than guessed at.
func OutcomeFor(label Label) (Outcome, error) {
	switch label {
	case LabelHighRisk:
		return highRiskOutcome, nil
	case LabelLowRisk:
		return lowRiskOutcome, nil
	default:
		return Outcome{}, fmt.Errorf("%w: classifier returned label %d", ErrTransformFailed, int(label))
	}
}
