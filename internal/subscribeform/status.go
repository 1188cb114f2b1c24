package subscribeform

// Status is the lifecycle of one subscribe attempt.
type Status int

const (
	StatusIdle Status = iota
	StatusLoading
	StatusSuccess
	StatusError
)

func (s Status) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusLoading:
		return "loading"
	case StatusSuccess:
		return "success"
	case StatusError:
		return "error"
	default:
		return "unknown"
	}
}

// Snapshot is the form state at one point in time.
type Snapshot struct {
	Email        string
	Status       Status
	ErrorMessage string
}

const (
	LabelSubmit     = "Get Early Access"
	LabelSubmitting = "Subscribing..."
	NoticeSuccess   = "Thanks for subscribing! We will be in touch soon."
)

// View is what a renderer needs to draw the form.
type View struct {
	Email          string
	ButtonLabel    string
	InputDisabled  bool
	SubmitDisabled bool
	Success        string
	Error          string
}

func (s Snapshot) View() View {
	loading := s.Status == StatusLoading
	v := View{
		Email:          s.Email,
		ButtonLabel:    LabelSubmit,
		InputDisabled:  loading,
		SubmitDisabled: loading,
	}
	if loading {
		v.ButtonLabel = LabelSubmitting
	}
	switch s.Status {
	case StatusSuccess:
		v.Success = NoticeSuccess
	case StatusError:
		v.Error = s.ErrorMessage
	}
	return v
}
