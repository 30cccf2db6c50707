package models

// Credentials is the bundle that authorizes every store operation. It
// lives in the browser session cookie and in process memory for the
// session's lifetime, nowhere else.
type Credentials struct {
	Account     string `json:"account"`
	Repository  string `json:"repository"`
	AccessToken string `json:"token"`
	Branch      string `json:"branch"`
}

// Complete reports whether every field needed to reach the store is set.
func (c Credentials) Complete() bool {
	return c.Account != "" && c.Repository != "" && c.AccessToken != "" && c.Branch != ""
}
