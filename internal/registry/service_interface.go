package registry

// Service is the interface implemented by every long-running agent
// service (fleet, health). Start must be non-blocking; Stop must wait
// for graceful completion of in-flight work.
type Service interface {
	Start() error
	Stop() error
}
