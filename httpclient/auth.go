package httpclient

import "encoding/base64"

// basicToken returns base64("user:password").
func basicToken(user, password string) string {
	return base64.StdEncoding.EncodeToString([]byte(user + ":" + password))
}

// Authenticate makes every subsequent request carry
// "Authorization: Basic base64(user:password)". Requests already dispatched
// are unaffected.
func (c *Client) Authenticate(user, password string) {
	token := basicToken(user, password)
	c.mu.Lock()
	c.token = token
	c.mu.Unlock()
}

// ClearAuthentication stops adding the Authorization header.
func (c *Client) ClearAuthentication() {
	c.mu.Lock()
	c.token = ""
	c.mu.Unlock()
}

// IsAuthenticated reports whether a Basic token is set.
func (c *Client) IsAuthenticated() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.token != ""
}
