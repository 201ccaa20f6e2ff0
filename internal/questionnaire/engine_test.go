package questionnaire

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestEngine(policy ResetPolicy) *Engine {
	return NewEngine(NewBorgPadSpec(), NewIdentityGate(policy))
}

func verifiedSession(t *testing.T, e *Engine) Session {
	t.Helper()
	s, _ := e.Handle(NewSession(42), VerifiedEvent{Handle: "borgpad"})
	require.True(t, s.IdentityVerified)
	require.Equal(t, 0, s.CurrentStep)
	return s
}

// answerFor produces a valid event for each step of the default spec.
func answerFor(step StepDefinition) Event {
	switch step.Kind {
	case ImageReference:
		return ImageEvent{Ref: "https://files.example/" + step.Field + ".jpg"}
	case ChoiceButtons:
		value := step.Options[0].Value
		switch step.Field {
		case FieldFDVMin:
			value = "$10M"
		case FieldFDVMax:
			value = "$25M"
		}
		return ChoiceEvent{StepIndex: step.Index, Value: value, CallbackID: "cb"}
	}

	switch step.Field {
	case FieldTicker:
		return TextEvent{Text: "$ACME"}
	case FieldWebsiteLink:
		return TextEvent{Text: "https://acme.xyz"}
	case FieldXLink:
		return TextEvent{Text: "https://x.com/acme"}
	default:
		return TextEvent{Text: "Acme answer"}
	}
}

func promptEffect(t *testing.T, effects []Effect) SendPrompt {
	t.Helper()
	for _, eff := range effects {
		if prompt, ok := eff.(SendPrompt); ok {
			return prompt
		}
	}
	t.Fatalf("no SendPrompt in %#v", effects)
	return SendPrompt{}
}

func persistEffects(effects []Effect) []PersistSubmission {
	var out []PersistSubmission
	for _, eff := range effects {
		if p, ok := eff.(PersistSubmission); ok {
			out = append(out, p)
		}
	}
	return out
}

func TestUnverifiedUserIsGated(t *testing.T) {
	e := newTestEngine(ResetFirstOnly)
	s := NewSession(42)

	for _, ev := range []Event{
		StartEvent{},
		TextEvent{Text: "Acme"},
		ImageEvent{Ref: "ref"},
		ChoiceEvent{StepIndex: 0, Value: "Solana"},
	} {
		next, effects := e.Handle(s, ev)
		assert.Equal(t, s, next, "unverified event must not mutate the session")
		require.Len(t, effects, 1)
		assert.IsType(t, RequestVerification{}, effects[0])
	}
}

func TestVerificationStartsQuestionnaire(t *testing.T) {
	e := newTestEngine(ResetFirstOnly)

	s, effects := e.Handle(NewSession(42), VerifiedEvent{Handle: "borgpad"})

	assert.True(t, s.IdentityVerified)
	assert.Equal(t, "borgpad", s.IdentityHandle)
	assert.Equal(t, 0, s.CurrentStep)

	prompt := promptEffect(t, effects)
	assert.Equal(t, 0, prompt.Step.Index)
}

func TestRepeatVerificationKeepsProgressUnderFirstOnly(t *testing.T) {
	e := newTestEngine(ResetFirstOnly)
	s := verifiedSession(t, e)

	s, _ = e.Handle(s, TextEvent{Text: "Acme"})
	require.Equal(t, 1, s.CurrentStep)

	next, _ := e.Handle(s, VerifiedEvent{Handle: "borgpad"})
	assert.Equal(t, 1, next.CurrentStep)
	assert.Equal(t, "Acme", next.Answers[FieldProjectName])
}

func TestRepeatVerificationResetsUnderAlways(t *testing.T) {
	e := newTestEngine(ResetAlways)
	s := verifiedSession(t, e)

	s, _ = e.Handle(s, TextEvent{Text: "Acme"})
	require.Equal(t, 1, s.CurrentStep)

	next, _ := e.Handle(s, VerifiedEvent{Handle: "borgpad"})
	assert.Equal(t, 0, next.CurrentStep)
	assert.Empty(t, next.Answers)
}

func TestStartResumesInPlace(t *testing.T) {
	e := newTestEngine(ResetFirstOnly)
	s := verifiedSession(t, e)

	s, _ = e.Handle(s, TextEvent{Text: "Acme"})
	s, _ = e.Handle(s, TextEvent{Text: "One-liner"})
	require.Equal(t, 2, s.CurrentStep)

	next, effects := e.Handle(s, StartEvent{})
	assert.Equal(t, s, next)
	assert.Equal(t, 2, promptEffect(t, effects).Step.Index)
}

func TestWrongInputKindLeavesStateUnchanged(t *testing.T) {
	e := newTestEngine(ResetFirstOnly)
	s := verifiedSession(t, e)

	// Step 0 expects text, not an image.
	next, effects := e.Handle(s, ImageEvent{Ref: "ref"})
	assert.Equal(t, s, next)
	require.NotEmpty(t, effects)
	assert.Empty(t, persistEffects(effects))

	// Advance to the project picture step, which rejects text.
	s, _ = e.Handle(s, TextEvent{Text: "Acme"})
	s, _ = e.Handle(s, TextEvent{Text: "One-liner"})
	require.Equal(t, 2, s.CurrentStep)

	next, _ = e.Handle(s, TextEvent{Text: "not an image"})
	assert.Equal(t, s, next)
}

func TestValidationFailureLeavesStateUnchanged(t *testing.T) {
	e := newTestEngine(ResetFirstOnly)
	s := verifiedSession(t, e)

	next, effects := e.Handle(s, TextEvent{Text: "   "})
	assert.Equal(t, s.CurrentStep, next.CurrentStep)
	assert.Equal(t, s.Answers, next.Answers)
	require.Len(t, effects, 1)
	assert.IsType(t, SendText{}, effects[0])
}

func TestStaleChoiceIsAcknowledgedButIgnored(t *testing.T) {
	e := newTestEngine(ResetFirstOnly)
	s := verifiedSession(t, e)

	s, _ = e.Handle(s, TextEvent{Text: "Acme"})
	require.Equal(t, 1, s.CurrentStep)

	next, effects := e.Handle(s, ChoiceEvent{StepIndex: 6, Value: "Solana", CallbackID: "cb"})
	assert.Equal(t, s, next)
	require.Len(t, effects, 1)
	assert.IsType(t, AckChoice{}, effects[0])
}

func TestChoiceOutsideFilteredOptionsRejected(t *testing.T) {
	e := newTestEngine(ResetFirstOnly)
	s := verifiedSession(t, e)

	spec := e.Spec()
	for s.CurrentStep < 10 {
		s, _ = e.Handle(s, answerFor(spec.Step(s.CurrentStep)))
	}
	require.Equal(t, FieldFDVMax, spec.Step(s.CurrentStep).Field)
	require.Equal(t, "$10M", s.Answers[FieldFDVMin])

	// $5M is below the chosen minimum and must be refused.
	next, effects := e.Handle(s, ChoiceEvent{StepIndex: 10, Value: "$5M", CallbackID: "cb"})
	assert.Equal(t, s.CurrentStep, next.CurrentStep)
	assert.NotContains(t, next.Answers, FieldFDVMax)

	ack, ok := effects[0].(AckChoice)
	require.True(t, ok)
	assert.NotEmpty(t, ack.Text)
}

func TestChoiceAckPrecedesNextPrompt(t *testing.T) {
	e := newTestEngine(ResetFirstOnly)
	s := verifiedSession(t, e)

	spec := e.Spec()
	for s.CurrentStep < 6 {
		s, _ = e.Handle(s, answerFor(spec.Step(s.CurrentStep)))
	}
	require.Equal(t, ChoiceButtons, spec.Step(s.CurrentStep).Kind)

	_, effects := e.Handle(s, ChoiceEvent{StepIndex: 6, Value: "Solana", CallbackID: "cb"})
	require.GreaterOrEqual(t, len(effects), 2)
	assert.IsType(t, AckChoice{}, effects[0])
	assert.IsType(t, SendPrompt{}, effects[1])
}

func TestFullRunFinalizesOnce(t *testing.T) {
	e := newTestEngine(ResetFirstOnly)
	spec := e.Spec()
	s := verifiedSession(t, e)

	var persisted []PersistSubmission
	for s.CurrentStep < spec.Len() {
		step := spec.Step(s.CurrentStep)
		var effects []Effect
		s, effects = e.Handle(s, answerFor(step))
		require.Equal(t, step.Index+1, s.CurrentStep, "step %s should advance", step.Field)
		persisted = append(persisted, persistEffects(effects)...)
	}

	require.Len(t, persisted, 1, "finalize must run exactly once")
	sub := persisted[0].Submission

	assert.Equal(t, int64(42), sub.UserID)
	assert.Equal(t, "borgpad", sub.TwitterUsername)
	assert.Equal(t, "Acme answer", sub.ProjectName)
	assert.Equal(t, "$10M - $25M", sub.FDV)
	assert.Equal(t, "$ACME", sub.Ticker)
	assert.NotEmpty(t, sub.ProjectPicture)
	assert.NotEmpty(t, sub.TokenPicture)
	assert.NotEmpty(t, sub.DataRoom)

	// CurrentStep is monotonic across the whole run and terminal now.
	assert.True(t, s.Complete(spec.Len()))

	// A later /start re-runs finalize idempotently against the same answers.
	_, effects := e.Handle(s, StartEvent{})
	again := persistEffects(effects)
	require.Len(t, again, 1)
	assert.Equal(t, sub, again[0].Submission)
}

func TestAnswersPresentForAllPassedSteps(t *testing.T) {
	e := newTestEngine(ResetFirstOnly)
	spec := e.Spec()
	s := verifiedSession(t, e)

	for s.CurrentStep < spec.Len() {
		step := spec.Step(s.CurrentStep)
		s, _ = e.Handle(s, answerFor(step))
		for i := 0; i < s.CurrentStep; i++ {
			assert.Contains(t, s.Answers, spec.Step(i).Field)
		}
	}
}

func TestCompletedSessionIgnoresFurtherAnswers(t *testing.T) {
	e := newTestEngine(ResetFirstOnly)
	spec := e.Spec()
	s := verifiedSession(t, e)

	for s.CurrentStep < spec.Len() {
		s, _ = e.Handle(s, answerFor(spec.Step(s.CurrentStep)))
	}

	next, effects := e.Handle(s, TextEvent{Text: "extra"})
	assert.Equal(t, s, next)
	assert.Empty(t, persistEffects(effects))
}
