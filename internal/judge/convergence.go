package judge

import "github.com/papapumpkin/debate/internal/critique"

// Convergence reasons recorded as the final decision of an auto-stopped session.
const (
	ReasonStable    = "Converged (two consecutive rounds with no new P1/P2)"
	ReasonAgreement = "Converged (agreement signal from opposite model)"
)

// ConvergenceInput is what the detector inspects for one round.
type ConvergenceInput struct {
	Round               int             // 1-based round number.
	Parsed              critique.Parsed // This round's parsed critique.
	Raw                 string          // This round's raw critique text.
	PreviousHasMaterial bool            // Tracked material flag from an earlier round.
}

// DetectConvergence reports whether a round should auto-stop before the
// judge is consulted, and why.
//
// PreviousHasMaterial is the value recorded by the most recent round that
// continued through a compromise or rebuttal, and starts out false. The
// detector trusts it as-is and does not recompute it from round history.
func DetectConvergence(in ConvergenceInput) (string, bool) {
	if in.Parsed.BackendError || in.Parsed.HasMaterial() {
		return "", false
	}
	if in.Round > 1 && !in.PreviousHasMaterial {
		return ReasonStable, true
	}
	if critique.HasAgreementSignal(in.Raw) {
		return ReasonAgreement, true
	}
	return "", false
}
