// Package testutil provides test doubles for code built on httpclient.
//
// Engine is a scriptable httpclient.Engine that records every request and
// the session that served it:
//
//	engine := testutil.NewEngine()
//	engine.Enqueue(testutil.Respond(http.StatusOK, `{"id":1}`))
//	client, _ := httpclient.New(cfg, httpclient.WithEngine(engine))
//
// NewEchoServer starts a gin-backed server that reflects requests back as
// JSON, for tests that need a real network round trip.
//
// T(t).Setup(c) starts a component and stops it when the test ends.
package testutil
