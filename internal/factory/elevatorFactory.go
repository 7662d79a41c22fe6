// Package factory builds cars from configuration, keeping construction
// behind an interface so the dispatcher can be tested against a fake.
package factory

import (
	"github.com/liftctl/liftctl/internal/car"
	"github.com/liftctl/liftctl/internal/infra/config"
)

// CarFactory creates a running car. Kept as an interface (rather than a
// bare constructor call) so dispatcher tests can substitute a fake that
// fails on demand.
type CarFactory interface {
	CreateCar(cfg *config.Config, id int, name string, minFloor, maxFloor int, publish car.PublishFunc) (*car.Car, error)
}

// StandardCarFactory builds cars with the process-wide configuration's
// timing and circuit-breaker settings.
type StandardCarFactory struct{}

func (f StandardCarFactory) CreateCar(cfg *config.Config, id int, name string, minFloor, maxFloor int, publish car.PublishFunc) (*car.Car, error) {
	return car.New(id, name, minFloor, maxFloor, car.Config{
		EachFloorDuration:           cfg.EachFloorDuration,
		OpenDoorDuration:            cfg.OpenDoorDuration,
		OperationTimeout:            cfg.OperationTimeout,
		CircuitBreakerMaxFailures:   cfg.CircuitBreakerMaxFailures,
		CircuitBreakerResetTimeout:  cfg.CircuitBreakerResetTimeout,
		CircuitBreakerHalfOpenLimit: cfg.CircuitBreakerHalfOpenLimit,
		OverloadThreshold:           cfg.DefaultOverloadThreshold,
	}, publish)
}
