package questionnaire

// Event is one inbound occurrence for a single user, produced by the
// transport layer.
type Event interface {
	isEvent()
}

// StartEvent is an explicit (re)start command. It resumes the questionnaire
// in place; it never resets progress by itself.
type StartEvent struct{}

// TextEvent is a free-form text answer.
type TextEvent struct {
	Text string
}

// ImageEvent is an image answer, already resolved by the transport to an
// opaque reference (a URL or object key).
type ImageEvent struct {
	Ref string
}

// ChoiceEvent is an inline button press. StepIndex is the step the button
// belongs to, so stale presses from earlier steps can be detected.
type ChoiceEvent struct {
	StepIndex  int
	Value      string
	CallbackID string
}

// VerifiedEvent signals that identity verification succeeded for this user.
type VerifiedEvent struct {
	Handle string
}

func (StartEvent) isEvent()    {}
func (TextEvent) isEvent()     {}
func (ImageEvent) isEvent()    {}
func (ChoiceEvent) isEvent()   {}
func (VerifiedEvent) isEvent() {}
