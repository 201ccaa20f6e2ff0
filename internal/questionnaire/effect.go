package questionnaire

// Effect is an outbound action produced by the engine for the transport
// layer to execute. Effects must be delivered in the order produced.
type Effect interface {
	isEffect()
}

// SendText delivers a plain message to the user.
type SendText struct {
	Text string
}

// SendPrompt asks the user the given step's question. Options is the
// resolved (filtered) option set for ChoiceButtons steps, empty otherwise.
type SendPrompt struct {
	Step    StepDefinition
	Options []Choice
}

// AckChoice acknowledges an inline button press to the transport. Text may
// be empty for a silent ack.
type AckChoice struct {
	CallbackID string
	Text       string
}

// RequestVerification tells the transport to offer the identity
// verification link to an unverified user.
type RequestVerification struct{}

// PersistSubmission asks the submission sink to upsert a completed record
// and its document projection.
type PersistSubmission struct {
	Submission CompletedSubmission
}

// NotifyOperator posts a completion notice to the operator channel.
type NotifyOperator struct {
	Text string
}

func (SendText) isEffect()            {}
func (SendPrompt) isEffect()          {}
func (AckChoice) isEffect()           {}
func (RequestVerification) isEffect() {}
func (PersistSubmission) isEffect()   {}
func (NotifyOperator) isEffect()      {}
