// Package component defines the lifecycle interface shared by long-lived
// clients and a registry that starts and stops them in order.
//
// httpclient.Component implements Component so an application can manage
// its HTTP clients next to its other infrastructure:
//
//	reg := component.NewRegistry()
//	_ = reg.Register(httpclient.NewComponent(cfg))
//	_ = reg.StartAll(ctx)
//	defer reg.StopAll(ctx)
package component
