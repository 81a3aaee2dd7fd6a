package loop

import (
	"context"
	"errors"
	"strings"

	"github.com/papapumpkin/debate/internal/agent"
	"github.com/papapumpkin/debate/internal/artifact"
	"github.com/papapumpkin/debate/internal/critique"
	"github.com/papapumpkin/debate/internal/judge"
	"github.com/papapumpkin/debate/internal/session"
	"github.com/papapumpkin/debate/internal/telemetry"
)

// roundOutcome is what a round hands back to the session controller.
type roundOutcome struct {
	artifact       artifact.Artifact // Artifact carried into the next round, or the final one.
	terminal       bool
	decision       string // Set when terminal.
	tracksMaterial bool   // The round updates the previous-has-material flag.
	hasMaterial    bool
	interrupted    bool // The session context ended during a backend call.
}

// review is the critique obtained for a round and who produced it.
type review struct {
	text        string
	target      artifact.Kind // Effective target after a mixed split.
	backend     string
	unavailable bool // The opposite backend did not produce the critique.
	interrupted bool // The session context ended before a critique arrived.
}

// runRound runs one round: review, parse, judge, convergence check, choice,
// record, and apply. The round record is appended and the state persisted
// before the choice is applied. Only recorder failures are returned.
func (l *Loop) runRound(ctx context.Context, st *session.State, round int, current artifact.Artifact, previousHasMaterial bool) (roundOutcome, error) {
	inputPath, err := l.Recorder.WriteRound(round, suffixInput, current.Content)
	if err != nil {
		return roundOutcome{}, err
	}
	l.UI.RoundStart(round, l.MaxRounds, current.Kind)
	l.emit(telemetry.KindRoundStart, round, map[string]any{"target": string(current.Kind)})

	rv, err := l.review(ctx, round, current, inputPath)
	if err != nil {
		return roundOutcome{}, err
	}
	if rv.interrupted {
		l.log().Warn("round interrupted during review", "round", round, "backend", rv.backend)
		return roundOutcome{artifact: current, interrupted: true}, nil
	}
	if _, err := l.Recorder.WriteRound(round, suffixCritique, rv.text); err != nil {
		return roundOutcome{}, err
	}

	parsed := critique.Parse(rv.text)
	verdict := judge.Judge(parsed)
	l.UI.Verdict(verdict, parsed)
	l.emit(telemetry.KindCritiqueParsed, round, map[string]any{
		"p1":            len(parsed.P1),
		"p2":            len(parsed.P2),
		"p3":            len(parsed.P3),
		"missing":       len(parsed.Missing),
		"backend_error": parsed.BackendError,
		"recommended":   string(verdict.Choice),
	})

	if reason, stop := judge.DetectConvergence(judge.ConvergenceInput{
		Round:               round,
		Parsed:              parsed,
		Raw:                 rv.text,
		PreviousHasMaterial: previousHasMaterial,
	}); stop {
		l.UI.Converged(reason)
		if err := l.record(st, round, judge.ChoiceAutoStop, verdict, parsed, rv); err != nil {
			return roundOutcome{}, err
		}
		return roundOutcome{artifact: current, terminal: true, decision: reason}, nil
	}

	choice := l.choose(verdict.Choice)
	l.UI.Choice(l.Mode, choice)
	if err := l.record(st, round, choice, verdict, parsed, rv); err != nil {
		return roundOutcome{}, err
	}
	return l.apply(ctx, round, choice, current, rv.text, parsed), nil
}

// record appends the round record and persists the state.
func (l *Loop) record(st *session.State, round int, choice judge.Choice, v judge.Verdict, p critique.Parsed, rv review) error {
	rec := session.NewRoundRecord(round, choice, v, p)
	rec.Target = rv.target
	rec.BackendUsed = rv.backend
	rec.BackendUnavailable = rv.unavailable
	st.AppendRound(rec)
	l.emit(telemetry.KindRoundDone, round, map[string]any{
		"choice":  string(choice),
		"backend": rv.backend,
		"target":  string(rv.target),
	})
	l.log().Info("round done", "round", round, "choice", choice, "judged", v.Choice, "backend", rv.backend)
	return l.Recorder.SaveState(st)
}

// choose resolves the round's choice from the judged one, asking the
// operator in manual mode.
func (l *Loop) choose(judged judge.Choice) judge.Choice {
	if l.Mode != judge.ModeManual {
		return judged
	}
	input, err := l.Prompter.ReadChoice(judged)
	if err != nil {
		l.UI.Warn(err.Error())
		return judged
	}
	choice, err := judge.ResolveChoice(judged, l.Mode, input)
	if errors.Is(err, judge.ErrInvalidChoice) {
		l.UI.Warn("Invalid choice. Using default.")
	}
	return choice
}

// review obtains the round's critique. Backend failures never escape: they
// trigger the local fallback and, failing that, a synthesized error critique.
// A failure caused by the session context ending marks the review
// interrupted and skips the fallback.
func (l *Loop) review(ctx context.Context, round int, current artifact.Artifact, inputPath string) (review, error) {
	primary := l.Selection.Primary
	rv := review{target: current.Kind, backend: primary, unavailable: l.Selection.FallbackLocal}

	var err error
	if current.Kind == artifact.KindMixed {
		rv.target, rv.text, err = l.reviewMixed(ctx, round, primary, current)
		if rv.target == "" {
			return review{}, err
		}
	} else {
		rv.text, err = l.call(ctx, round, primary, l.request(rv.target, inputPath, current))
	}
	if err == nil {
		return rv, nil
	}
	if ctx.Err() != nil {
		rv.interrupted = true
		return rv, nil
	}

	local := l.Selection.Host
	if primary == local || !l.Selection.LocalAvailable {
		l.UI.BackendError(primary, err)
		rv.text = critique.SingleBackendErrorText(err)
		return rv, nil
	}

	l.UI.BackendFallback(primary, local, err)
	l.emit(telemetry.KindBackendFallback, round, map[string]any{
		"primary":  primary,
		"fallback": local,
		"error":    err.Error(),
	})
	l.log().Warn("primary review failed, falling back", "round", round, "primary", primary, "fallback", local, "error", err)
	rv.backend, rv.unavailable = local, true

	target, path := rv.target, inputPath
	if rv.target == artifact.KindMixed {
		// The fallback reviews the whole mixed artifact once, as a proposal.
		target = artifact.KindProposal
		var werr error
		if path, werr = l.Recorder.WriteRound(round, suffixFallbackProposal, current.Content); werr != nil {
			return review{}, werr
		}
	}
	localText, localErr := l.call(ctx, round, local, l.request(target, path, current))
	if localErr != nil && ctx.Err() != nil {
		rv.interrupted = true
		return rv, nil
	}
	if localErr != nil {
		l.UI.BackendError(local, localErr)
		rv.text = critique.BackendErrorText(primary, err, local, localErr)
		return rv, nil
	}
	rv.text = critique.WithFallbackNotice(primary, err, localText)
	return rv, nil
}

// reviewMixed splits a mixed artifact and reviews its halves sequentially,
// code first. An empty half narrows the effective target. An empty target
// is returned only for recorder failures.
func (l *Loop) reviewMixed(ctx context.Context, round int, backend string, current artifact.Artifact) (artifact.Kind, string, error) {
	code, proposal := artifact.SplitMixed(current.Content)
	codePath, err := l.Recorder.WriteRound(round, suffixMixedCode, code)
	if err != nil {
		return "", "", err
	}
	proposalPath, err := l.Recorder.WriteRound(round, suffixMixedProposal, proposal)
	if err != nil {
		return "", "", err
	}

	hasCode, hasProposal := strings.TrimSpace(code) != "", strings.TrimSpace(proposal) != ""
	switch {
	case hasCode && !hasProposal:
		text, err := l.call(ctx, round, backend, l.request(artifact.KindCode, codePath, current))
		return artifact.KindCode, text, err
	case hasProposal && !hasCode:
		text, err := l.call(ctx, round, backend, l.request(artifact.KindProposal, proposalPath, current))
		return artifact.KindProposal, text, err
	}

	codeText, err := l.call(ctx, round, backend, l.request(artifact.KindCode, codePath, current))
	if err != nil {
		return artifact.KindMixed, "", err
	}
	proposalText, err := l.call(ctx, round, backend, l.request(artifact.KindProposal, proposalPath, current))
	if err != nil {
		return artifact.KindMixed, "", err
	}
	return artifact.KindMixed, critique.CombineMixed(codeText, proposalText), nil
}

// request builds a review request. Code reviews of text that is not a real
// diff are scoped as snippets.
func (l *Loop) request(target artifact.Kind, path string, current artifact.Artifact) agent.ReviewRequest {
	scope := l.Scope
	if target == artifact.KindCode && current.IsSnippetLike() {
		scope = artifact.Scope{Kind: artifact.ScopeSnippet}
	}
	return agent.ReviewRequest{
		Target:       target,
		ArtifactPath: path,
		Scope:        scope,
		WorkDir:      l.WorkDir,
		InRepo:       l.InRepo,
		Timeout:      l.Timeout,
	}
}

// call sends one review request to the named backend. Every failure is
// returned as an *agent.BackendError.
func (l *Loop) call(ctx context.Context, round int, backend string, req agent.ReviewRequest) (string, error) {
	b, ok := l.Backends[backend]
	if !ok {
		return "", agent.Fail(backend, ErrBackendMissing)
	}
	l.UI.BackendCall(backend, req.Target)
	l.emit(telemetry.KindBackendCall, round, map[string]any{
		"backend": backend,
		"target":  string(req.Target),
		"scope":   req.Scope.String(),
	})
	l.log().Debug("backend review", "backend", backend, "target", req.Target, "path", req.ArtifactPath)

	text, err := b.Review(ctx, req)
	if err != nil {
		err = agent.Fail(backend, err)
		l.emit(telemetry.KindBackendFailed, round, map[string]any{"backend": backend, "error": err.Error()})
		return "", err
	}
	return strings.TrimSpace(text), nil
}
