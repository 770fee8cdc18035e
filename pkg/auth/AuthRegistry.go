package auth

import "github.com/google/uuid"


//=========================================== Auth Registry


/*
	initialize the registry from the configured credential seed

	the credential map is fixed for the life of the process. session tokens are
	granted on successful verification and live until the owning connection revokes
	them
*/

func NewAuthRegistry(seed map[string]string) *AuthRegistry {
	credentials := make(map[string]string, len(seed))
	for username, password := range seed {
		credentials[username] = password
	}

	return &AuthRegistry{
		credentials: credentials,
		sessions: make(map[string]string),
	}
}

/*
	Verify:
		check a credential pair and, on match, issue a fresh opaque session token
		and record token --> username
*/

func (registry *AuthRegistry) Verify(username string, password string) (string, error) {
	registry.mutex.Lock()
	defer registry.mutex.Unlock()

	expected, exists := registry.credentials[username]
	if !exists || expected != password { return "", ErrInvalidCredentials }

	token := uuid.NewString()
	registry.sessions[token] = username

	return token, nil
}

/*
	UserOf:
		resolve a session token back to its username
*/

func (registry *AuthRegistry) UserOf(token string) (string, bool) {
	registry.mutex.Lock()
	defer registry.mutex.Unlock()

	username, exists := registry.sessions[token]
	return username, exists
}

/*
	Revoke:
		drop a session token. called by the client handler on disconnect so the
		session map is bounded by live connections
*/

func (registry *AuthRegistry) Revoke(token string) {
	registry.mutex.Lock()
	defer registry.mutex.Unlock()

	delete(registry.sessions, token)
}
