package loop

import (
	"context"
	"strings"

	"github.com/papapumpkin/debate/internal/agent"
	"github.com/papapumpkin/debate/internal/artifact"
	"github.com/papapumpkin/debate/internal/critique"
	"github.com/papapumpkin/debate/internal/judge"
	"github.com/papapumpkin/debate/internal/telemetry"
)

// apply carries out a resolved choice. Revision failures keep the current
// artifact and never end the session on their own, unless the session
// context ended during the revision.
func (l *Loop) apply(ctx context.Context, round int, choice judge.Choice, current artifact.Artifact, critiqueText string, parsed critique.Parsed) roundOutcome {
	switch choice {
	case judge.ChoiceKeep:
		return roundOutcome{artifact: current, terminal: true, decision: DecisionKeep}

	case judge.ChoiceAcceptOpposite:
		if l.SkipMaterialize {
			return roundOutcome{artifact: current, terminal: true, decision: DecisionAcceptSkipped}
		}
		final := current
		revised, err := l.revise(ctx, round, agent.ReviseAcceptOpposite, current.Content, critiqueText)
		switch {
		case err == nil:
			final = current.WithContent(revised)
		case ctx.Err() != nil:
			return roundOutcome{artifact: current, interrupted: true}
		}
		return roundOutcome{artifact: final, terminal: true, decision: DecisionAcceptOpposite}

	case judge.ChoiceCompromise:
		next := current
		revised, err := l.revise(ctx, round, agent.ReviseCompromise, current.Content, critiqueText)
		switch {
		case err == nil:
			next = current.WithContent(revised)
		case ctx.Err() != nil:
			return roundOutcome{artifact: current, interrupted: true}
		default:
			if manual := l.manualContent(); manual != "" {
				next = current.WithContent(manual)
			}
		}
		return roundOutcome{artifact: next, tracksMaterial: true, hasMaterial: parsed.HasMaterial()}

	case judge.ChoiceRebut:
		rebuttal := l.rebuttal()
		next := current.WithContent(current.Content + "\n\n## Rebuttal\n" + rebuttal + "\n")
		return roundOutcome{artifact: next, tracksMaterial: true, hasMaterial: parsed.HasMaterial()}

	case judge.ChoiceStop:
		if parsed.BackendError && l.Mode == judge.ModeAuto {
			return roundOutcome{artifact: current, terminal: true, decision: DecisionStoppedBackend}
		}
		return roundOutcome{artifact: current, terminal: true, decision: DecisionStoppedByUser}

	default:
		return roundOutcome{artifact: current, terminal: true, decision: DecisionStopped}
	}
}

// revise asks the host backend for a revision. Empty output is a failure.
func (l *Loop) revise(ctx context.Context, round int, mode agent.ReviseMode, current, critiqueText string) (string, error) {
	backend := l.Selection.Host
	b, ok := l.Backends[backend]
	if !ok {
		err := agent.Fail(backend, ErrBackendMissing)
		l.revisionFailed(round, backend, mode, err)
		return "", err
	}
	l.log().Info("revising artifact", "round", round, "backend", backend, "mode", mode)

	out, err := b.Revise(ctx, agent.ReviseRequest{
		Mode:     mode,
		Current:  current,
		Critique: critiqueText,
		WorkDir:  l.WorkDir,
		InRepo:   l.InRepo,
		Timeout:  l.Timeout,
	})
	if err == nil && strings.TrimSpace(out) == "" {
		err = agent.ErrEmptyOutput
	}
	if err != nil {
		err = agent.Fail(backend, err)
		l.revisionFailed(round, backend, mode, err)
		return "", err
	}
	return strings.TrimSpace(out), nil
}

func (l *Loop) revisionFailed(round int, backend string, mode agent.ReviseMode, err error) {
	l.UI.RevisionFailed(backend, err)
	l.emit(telemetry.KindRevisionFailed, round, map[string]any{
		"backend": backend,
		"mode":    string(mode),
		"error":   err.Error(),
	})
	l.log().Warn("revision failed", "round", round, "backend", backend, "mode", mode, "error", err)
}

// manualContent reads replacement content in manual mode. Auto mode and
// read failures yield an empty string, which keeps the current artifact.
func (l *Loop) manualContent() string {
	if l.Mode != judge.ModeManual {
		return ""
	}
	content, err := l.Prompter.ReadManualContent()
	if err != nil {
		l.UI.Warn(err.Error())
		return ""
	}
	return strings.TrimSpace(content)
}

// rebuttal returns the operator's rebuttal in manual mode, or the default.
func (l *Loop) rebuttal() string {
	if l.Mode == judge.ModeManual {
		text, err := l.Prompter.ReadRebuttal()
		if err != nil {
			l.UI.Warn(err.Error())
		} else if text = strings.TrimSpace(text); text != "" {
			return text
		}
	}
	return DefaultRebuttal
}
