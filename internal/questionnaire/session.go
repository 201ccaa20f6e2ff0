package questionnaire

// Session is the per-user progress record through the questionnaire. It is
// handed to and from the session store by value; the engine never holds a
// reference between events.
type Session struct {
	UserID           int64             `json:"user_id"`
	IdentityVerified bool              `json:"identity_verified"`
	IdentityHandle   string            `json:"identity_handle"`
	CurrentStep      int               `json:"current_step"`
	Answers          map[string]string `json:"answers"`
}

func NewSession(userID int64) Session {
	return Session{
		UserID:  userID,
		Answers: make(map[string]string),
	}
}

// Complete reports whether every step of a spec of the given length has
// been answered.
func (s Session) Complete(specLen int) bool {
	return s.CurrentStep >= specLen
}

// withAnswer returns a copy of the session with one answer recorded and the
// step advanced. The answers map is cloned so the caller's copy stays
// untouched.
func (s Session) withAnswer(field, value string) Session {
	answers := make(map[string]string, len(s.Answers)+1)
	for k, v := range s.Answers {
		answers[k] = v
	}
	answers[field] = value

	s.Answers = answers
	s.CurrentStep++
	return s
}
