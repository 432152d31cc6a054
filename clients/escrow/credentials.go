package escrow

// Credentials is an immutable holder of the secrets needed to authenticate
// against the escrow api. The account password is carried only for the
// end-user sandbox flow and is never used on signed api calls.
type Credentials struct {
	apiSecret    string
	apiKey       string
	accountEmail string
	password     string
}

// NewCredentials returns credentials for signed api calls
func NewCredentials(apiSecret, apiKey, accountEmail string) Credentials {
	return Credentials{
		apiSecret:    apiSecret,
		apiKey:       apiKey,
		accountEmail: accountEmail,
	}
}

// NewCredentialsWithPassword returns credentials additionally carrying the
// account password for the sandbox demo flow
func NewCredentialsWithPassword(apiSecret, apiKey, accountEmail, password string) Credentials {
	c := NewCredentials(apiSecret, apiKey, accountEmail)
	c.password = password
	return c
}

// APISecret - the api secret
func (c Credentials) APISecret() string {
	return c.apiSecret
}

// APIKey - the api key
func (c Credentials) APIKey() string {
	return c.apiKey
}

// AccountEmail - the email of the authenticated account
func (c Credentials) AccountEmail() string {
	return c.accountEmail
}

// Password - the account password, empty outside the sandbox flow
func (c Credentials) Password() string {
	return c.password
}

// BasicAuth returns the pair used for HTTP Basic Authentication on api
// calls: the account email and the api key, not the account password.
func (c Credentials) BasicAuth() (username, password string) {
	return c.accountEmail, c.apiKey
}
