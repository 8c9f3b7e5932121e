package session

// Reasons shown to the user when a lifecycle run redirects to login.
const (
	ReasonExpired      = "Session expired. Please log in again."
	ReasonUnauthorized = "Session expired or unauthorized. Please log in again."
)

// Kind tags an Outcome.
type Kind int

const (
	KindResolved Kind = iota + 1
	KindRedirect
)

func (k Kind) String() string {
	switch k {
	case KindResolved:
		return "resolved"
	case KindRedirect:
		return "redirect"
	default:
		return "unknown"
	}
}

// Outcome is the result of a lifecycle run or a logout.
//
// A Resolved outcome carries the Identity. A Redirect outcome carries the
// Reason for the user (empty after logout) and the Cause for logs only.
type Outcome struct {
	Kind     Kind
	Identity *Identity
	Reason   string
	Cause    error
}

// Resolved builds a Resolved outcome.
func Resolved(id *Identity) Outcome {
	return Outcome{Kind: KindResolved, Identity: id}
}

// Redirect builds a Redirect outcome.
func Redirect(reason string, cause error) Outcome {
	return Outcome{Kind: KindRedirect, Reason: reason, Cause: cause}
}

func (o Outcome) IsResolved() bool { return o.Kind == KindResolved }

func (o Outcome) IsRedirect() bool { return o.Kind == KindRedirect }
