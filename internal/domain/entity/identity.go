package entity

// UnknownSessionID is used when an anonymous caller sends no session id.
const UnknownSessionID = "unknown"

type IdentityKind int

const (
	Anonymous IdentityKind = iota
	Authenticated
)

func (k IdentityKind) String() string {
	if k == Authenticated {
		return "authenticated"
	}
	return "anonymous"
}

// Identity is the resolved caller: a verified user or an anonymous session.
type Identity struct {
	Kind IdentityKind
	ID   string
}

func AuthenticatedIdentity(userID string) Identity {
	return Identity{Kind: Authenticated, ID: userID}
}

func AnonymousIdentity(sessionID string) Identity {
	if sessionID == "" {
		sessionID = UnknownSessionID
	}
	return Identity{Kind: Anonymous, ID: sessionID}
}

func (i Identity) IsAuthenticated() bool {
	return i.Kind == Authenticated
}

// UserID returns the verified user id, or "" for anonymous callers.
func (i Identity) UserID() string {
	if i.IsAuthenticated() {
		return i.ID
	}
	return ""
}

// QuotaKey is the key anonymous callers are counted under.
func (i Identity) QuotaKey() string {
	return i.ID
}

func (i Identity) String() string {
	return i.Kind.String() + ":" + i.ID
}
