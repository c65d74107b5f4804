package domain

// FlowStep tags the TPE (point-of-sale) entry flow. The step travels with the
// form so the handlers stay stateless; transitions are linear with a back edge
// from products to amount.
type FlowStep string

const (
	StepAmount   FlowStep = "amount"
	StepProducts FlowStep = "products"
	StepDone     FlowStep = "done"
)

func ParseFlowStep(s string) FlowStep {
	switch FlowStep(s) {
	case StepProducts:
		return StepProducts
	case StepDone:
		return StepDone
	default:
		return StepAmount
	}
}
