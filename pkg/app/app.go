// Package app defines the runtime contract shared by the bridge executables
// (the bridged process and the migration runner), so cmd/* binaries can start
// components without depending on their concrete wiring.
package app

// Runner is a long-lived application component. Run blocks until the
// component stops and returns its terminal error, if any.
type Runner interface {
	Run() error
}
