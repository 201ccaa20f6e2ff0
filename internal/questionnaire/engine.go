package questionnaire

import "fmt"

// ResetPolicy controls what a verification success does to a session that
// is already verified. A fresh (first) verification always restarts the
// questionnaire.
type ResetPolicy string

const (
	// ResetFirstOnly keeps in-progress answers when a repeat verification
	// success arrives for an already verified session.
	ResetFirstOnly ResetPolicy = "first_only"
	// ResetAlways restarts the questionnaire on every verification success.
	ResetAlways ResetPolicy = "always"
)

// IdentityGate guards the questionnaire behind identity verification and
// owns the verification-success transition.
type IdentityGate struct {
	policy ResetPolicy
}

func NewIdentityGate(policy ResetPolicy) *IdentityGate {
	return &IdentityGate{policy: policy}
}

// Verified reports whether the session may proceed into the questionnaire.
func (g *IdentityGate) Verified(s Session) bool {
	return s.IdentityVerified
}

// ApplyVerification records a verification success. It returns the updated
// session and whether the questionnaire was (re)started. The transition is
// idempotent under ResetFirstOnly: repeat successes leave the session
// untouched apart from the handle.
func (g *IdentityGate) ApplyVerification(s Session, handle string) (Session, bool) {
	if s.IdentityVerified && g.policy == ResetFirstOnly {
		s.IdentityHandle = handle
		return s, false
	}

	s.IdentityVerified = true
	s.IdentityHandle = handle
	s.CurrentStep = 0
	s.Answers = make(map[string]string)
	return s, true
}

// Engine is the conversation state machine. Handle is pure: it never does
// I/O and all outcomes, including every error category, surface as effects.
type Engine struct {
	spec      *Spec
	gate      *IdentityGate
	finalizer *Finalizer
}

func NewEngine(spec *Spec, gate *IdentityGate) *Engine {
	return &Engine{
		spec:      spec,
		gate:      gate,
		finalizer: NewFinalizer(),
	}
}

func (e *Engine) Spec() *Spec {
	return e.spec
}

// Handle applies one inbound event to a session and returns the new session
// plus the effects to execute, in order. On any rejection the session is
// returned unchanged.
func (e *Engine) Handle(s Session, ev Event) (Session, []Effect) {
	if verified, ok := ev.(VerifiedEvent); ok {
		return e.handleVerified(s, verified)
	}

	if !e.gate.Verified(s) {
		return s, []Effect{RequestVerification{}}
	}

	switch ev := ev.(type) {
	case StartEvent:
		return e.handleStart(s)
	case TextEvent:
		return e.handleText(s, ev)
	case ImageEvent:
		return e.handleImage(s, ev)
	case ChoiceEvent:
		return e.handleChoice(s, ev)
	default:
		return s, []Effect{SendText{Text: "I don't understand that, sorry. Use /start to continue. 🤖"}}
	}
}

func (e *Engine) handleVerified(s Session, ev VerifiedEvent) (Session, []Effect) {
	next, restarted := e.gate.ApplyVerification(s, ev.Handle)

	welcome := fmt.Sprintf(
		"Welcome @%s! 👋\n\nI'm the BorgPad Curator Bot. I'll help you to create your commitment page on BorgPad.",
		ev.Handle,
	)
	effects := []Effect{SendText{Text: welcome}}

	if !restarted && next.Complete(e.spec.Len()) {
		return next, append(effects, SendText{Text: "You have already completed the questionnaire. 🎉"})
	}
	return next, append(effects, e.prompt(next))
}

func (e *Engine) handleStart(s Session) (Session, []Effect) {
	if s.Complete(e.spec.Len()) {
		// Terminal step: re-running finalize is safe, persistence upserts.
		return s, e.finalizeEffects(s)
	}
	return s, []Effect{e.prompt(s)}
}

func (e *Engine) handleText(s Session, ev TextEvent) (Session, []Effect) {
	if s.Complete(e.spec.Len()) {
		return s, []Effect{SendText{Text: "You have already completed the questionnaire. 🎉"}}
	}

	step := e.spec.Step(s.CurrentStep)
	switch step.Kind {
	case ImageReference:
		return s, []Effect{
			SendText{Text: "Please send an image (jpg or png format). 🖼️"},
		}
	case ChoiceButtons:
		return s, []Effect{
			SendText{Text: "Please pick one of the options below. 👇"},
			e.prompt(s),
		}
	}

	value, err := step.Validate(ev.Text)
	if err != nil {
		return s, []Effect{SendText{Text: "❌ " + err.Error()}}
	}
	return e.advance(s, step, value, nil)
}

func (e *Engine) handleImage(s Session, ev ImageEvent) (Session, []Effect) {
	if s.Complete(e.spec.Len()) {
		return s, []Effect{SendText{Text: "You have already completed the questionnaire. 🎉"}}
	}

	step := e.spec.Step(s.CurrentStep)
	if step.Kind != ImageReference {
		return s, []Effect{SendText{Text: "A text response is expected for this question. Please provide text. 📝"}}
	}
	if ev.Ref == "" {
		return s, []Effect{SendText{Text: "❌ Couldn't read that image, please try again."}}
	}

	saved := SendText{Text: "Picture saved successfully! ✅"}
	return e.advance(s, step, ev.Ref, []Effect{saved})
}

func (e *Engine) handleChoice(s Session, ev ChoiceEvent) (Session, []Effect) {
	ack := AckChoice{CallbackID: ev.CallbackID}

	// Stale presses (old keyboards, double taps) are acknowledged but must
	// not mutate state out of order.
	if s.Complete(e.spec.Len()) || ev.StepIndex != s.CurrentStep {
		ack.Text = "This question has already been answered."
		return s, []Effect{ack}
	}

	step := e.spec.Step(s.CurrentStep)
	if step.Kind != ChoiceButtons {
		ack.Text = "This question expects a direct answer."
		return s, []Effect{ack}
	}

	options := e.spec.OptionsFor(step, s.Answers)
	if !choiceAllowed(options, ev.Value) {
		ack.Text = "That option is not available."
		return s, []Effect{ack, e.prompt(s)}
	}

	ack.Text = "Saved ✅"
	return e.advance(s, step, ev.Value, []Effect{ack})
}

// advance records a validated answer, moves to the next step and emits the
// follow-up effects: either the next prompt or the finalize sequence.
func (e *Engine) advance(s Session, step StepDefinition, value string, effects []Effect) (Session, []Effect) {
	next := s.withAnswer(step.Field, value)

	if next.Complete(e.spec.Len()) {
		return next, append(effects, e.finalizeEffects(next)...)
	}
	return next, append(effects, e.prompt(next))
}

func (e *Engine) finalizeEffects(s Session) []Effect {
	_, effects, err := e.finalizer.Finalize(s)
	if err != nil {
		return []Effect{SendText{Text: "❌ " + err.Error()}}
	}
	return effects
}

// prompt builds the SendPrompt effect for the session's current step,
// resolving dynamic options against the answers so far.
func (e *Engine) prompt(s Session) Effect {
	step := e.spec.Step(s.CurrentStep)
	return SendPrompt{
		Step:    step,
		Options: e.spec.OptionsFor(step, s.Answers),
	}
}

func choiceAllowed(options []Choice, value string) bool {
	for _, opt := range options {
		if opt.Value == value {
			return true
		}
	}
	return false
}
