package domain

// AuthState describes connectivity to the remote ledger.
type AuthState string

const (
	AuthSignedOut AuthState = "signedOut"
	AuthSignedIn  AuthState = "signedIn"
	AuthPending   AuthState = "pending"
	AuthExpired   AuthState = "expired"
	AuthError     AuthState = "error"
)

// ProjectStat is one aggregated row of a report view.
type ProjectStat struct {
	ProjectID   string  `json:"project_id"`
	ProjectName string  `json:"project_name"`
	Hours       float64 `json:"hours"`
}
