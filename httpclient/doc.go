// Package httpclient is a callback-style convenience layer over net/http.
//
// A Client resolves request paths against a base URL, injects Basic
// authentication and default headers, encodes JSON bodies and dispatches
// each request on its own goroutine. Every dispatch returns a *Call handle;
// exactly one of the success or failure callbacks fires unless the call is
// canceled first.
//
// # Basic Usage
//
//	client, err := httpclient.New(httpclient.Config{
//	    BaseURL: "https://api.example.com",
//	    Timeout: 30 * time.Second,
//	})
//	client.Authenticate("user", "secret")
//
//	call := client.Get(ctx, "users/1", nil,
//	    func(resp *httpclient.Response) { fmt.Println(resp.StatusCode, string(resp.Body)) },
//	    func(err error) { log.Println(err) },
//	)
//	call.Wait()
//
// # Sessions
//
// GET requests share one session with a persistent cookie jar. POST, PUT,
// DELETE and uploads each run on a fresh ephemeral session with no cookies
// and no connection reuse. Request.Session overrides the choice per call.
//
// # Paths
//
// The path is joined onto the base URL and the joined string is
// percent-decoded before it is parsed again, so "users/John%20Doe" is sent
// as the decoded form of "https://api.example.com/users/John Doe".
package httpclient
