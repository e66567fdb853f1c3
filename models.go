package authflow

// AuthenticatedUser is the identity exposed to consumers once a session exists.
// The mock backend persists it as JSON, so the tags are part of the record format.
type AuthenticatedUser struct {
	Username string `json:"username"`
	UserID   string `json:"userId"`
	Email    string `json:"email,omitempty"`
}

// Clone returns a copy so snapshots never alias the container state
func (u *AuthenticatedUser) Clone() *AuthenticatedUser {
	if u == nil {
		return nil
	}
	c := *u
	return &c
}

// SessionPhase is the lifecycle position of the shared session
type SessionPhase string

const (
	PhaseInitializing    SessionPhase = "initializing"
	PhaseUnauthenticated SessionPhase = "unauthenticated"
	PhaseAuthenticated   SessionPhase = "authenticated"
)

// AuthState is the shared session context. IsLoading is the busy flag and is
// orthogonal to Phase.
type AuthState struct {
	User      *AuthenticatedUser `json:"user"`
	IsLoading bool               `json:"isLoading"`
	Phase     SessionPhase       `json:"phase"`
}

// IsAuthenticated is true when a user is present
func (s AuthState) IsAuthenticated() bool {
	return s.User != nil
}

func (s AuthState) clone() AuthState {
	s.User = s.User.Clone()
	return s
}

func initialState() AuthState {
	return AuthState{
		IsLoading: true,
		Phase:     PhaseInitializing,
	}
}
