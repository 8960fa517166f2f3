package controller

// Phase tags the variant a channel is in. Each channel uses the subset
// listed on its type.
type Phase string

const (
	PhaseIdle      Phase = "idle"
	PhaseLoading   Phase = "loading"
	PhaseSuccess   Phase = "success"
	PhaseError     Phase = "error"
	PhaseRequested Phase = "otp_requested"
	PhaseVerified  Phase = "verified"
)

// Load is the state of a fetch channel: Loading, Success or Error.
// Key is the maid id the data belongs to; empty for the roster.
type Load[T any] struct {
	Phase   Phase  `json:"phase"`
	Key     string `json:"key,omitempty"`
	Data    T      `json:"data,omitempty"`
	Message string `json:"message,omitempty"`
}

func Loading[T any](key string) Load[T] {
	return Load[T]{Phase: PhaseLoading, Key: key}
}

func Loaded[T any](key string, data T) Load[T] {
	return Load[T]{Phase: PhaseSuccess, Key: key, Data: data}
}

func Failed[T any](key, message string) Load[T] {
	return Load[T]{Phase: PhaseError, Key: key, Message: message}
}

func (l Load[T]) IsSuccess() bool { return l.Phase == PhaseSuccess }

// AuthState is the durable authentication state.
type AuthState string

const (
	AuthUnknown         AuthState = "unknown"
	AuthAuthenticated   AuthState = "authenticated"
	AuthUnauthenticated AuthState = "unauthenticated"
)

// AuthResult reports one login or register attempt: Idle, Loading or Error.
type AuthResult struct {
	Kind    Phase  `json:"kind"`
	Message string `json:"message,omitempty"`
}

// OTPState is the attendance OTP flow: Idle, Loading, Requested,
// Verified or Error. Verified is emitted once on success and immediately
// followed by Idle.
type OTPState struct {
	Kind    Phase  `json:"kind"`
	Message string `json:"message,omitempty"`
}

// Action is a one-shot mutation outcome: Idle, Loading, Success or Error.
type Action struct {
	Kind    Phase  `json:"kind"`
	Message string `json:"message,omitempty"`
}

// Notice reports a failed task mutation for a maid.
type Notice struct {
	MaidID  string `json:"maid_id"`
	Op      string `json:"op"`
	Message string `json:"message"`
}
