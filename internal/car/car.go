// Package car implements the per-car state machine: IDLE / MOVING_UP /
// MOVING_DOWN / DOORS_OPEN, driven by a cooperative tick loop that owns one
// scheduler.Scheduler and the car's UI indicator sets. It generalizes this
// project's original SCAN/LOOK elevator.Elevator into the six-queue,
// migration-capable model, keeping the same goroutine-plus-channel-wake
// concurrency shape and circuit-breaker-wrapped tick execution.
package car

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/liftctl/liftctl/internal/constants"
	"github.com/liftctl/liftctl/internal/domain"
	"github.com/liftctl/liftctl/internal/scheduler"
)

// idlePoll bounds how long the tick loop waits between checking for new
// work while idle; real wakeups arrive on wakeChan, so this is only a
// safety net against a missed signal.
const idlePoll = 2 * time.Second

// PublishFunc is called by the car on every state change that should be
// considered for broadcast; the broadcaster diff-gates these.
type PublishFunc func(Snapshot)

// Car owns one scheduler and physical state, and runs its own tick
// goroutine for the lifetime of the process (or until Shutdown/context
// cancellation).
type Car struct {
	ID        int
	scheduler *scheduler.Scheduler
	state     *State

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	wakeChan      chan struct{}
	immediateOpen chan scheduler.Stop

	eachFloorDuration time.Duration
	openDoorDuration  time.Duration
	operationTimeout  time.Duration
	overloadThreshold int

	circuitBreaker *CircuitBreaker
	logger         *slog.Logger
	publish        PublishFunc
}

// Config bundles the timing and fault-tolerance knobs New needs, mirroring
// the flat-parameter constructor this project's elevator type originally
// used, collected here so dispatcher construction doesn't need an
// eight-argument call per car.
type Config struct {
	EachFloorDuration           time.Duration
	OpenDoorDuration            time.Duration
	OperationTimeout            time.Duration
	CircuitBreakerMaxFailures   int
	CircuitBreakerResetTimeout  time.Duration
	CircuitBreakerHalfOpenLimit int
	OverloadThreshold           int
}

// New creates and starts a car's tick goroutine.
func New(id int, name string, minFloor, maxFloor int, cfg Config, publish PublishFunc) (*Car, error) {
	if name == "" {
		return nil, domain.ErrElevatorNameEmpty
	}
	if minFloor == maxFloor {
		return nil, domain.ErrElevatorFloorsSame
	}

	ctx, cancel := context.WithCancel(context.Background())
	logger := slog.With(
		slog.String("component", constants.ComponentElevator),
		slog.Int("car_id", id),
		slog.String("car_name", name),
	)

	c := &Car{
		ID:                id,
		scheduler:         scheduler.New(),
		state:             NewState(name, minFloor, maxFloor),
		ctx:               ctx,
		cancel:            cancel,
		wakeChan:          make(chan struct{}, 1),
		immediateOpen:     make(chan scheduler.Stop, 8),
		eachFloorDuration: cfg.EachFloorDuration,
		openDoorDuration:  cfg.OpenDoorDuration,
		operationTimeout:  cfg.OperationTimeout,
		overloadThreshold: cfg.OverloadThreshold,
		circuitBreaker:    NewCircuitBreaker(cfg.CircuitBreakerMaxFailures, cfg.CircuitBreakerResetTimeout, cfg.CircuitBreakerHalfOpenLimit),
		logger:            logger,
		publish:           publish,
	}

	c.wg.Add(1)
	go c.run()
	logger.Info("car created", slog.Int("min_floor", minFloor), slog.Int("max_floor", maxFloor))
	return c, nil
}

func (c *Car) Name() string       { return c.state.Name() }
func (c *Car) MinFloor() int      { return c.state.MinFloor() }
func (c *Car) MaxFloor() int      { return c.state.MaxFloor() }
func (c *Car) CurrentFloor() int  { return c.state.CurrentFloor() }
func (c *Car) RunState() RunState { return c.state.RunState() }

// EffectiveDirection is the direction used by the dispatcher's cost
// function and by scheduling decisions.
func (c *Car) EffectiveDirection() domain.Direction {
	return c.state.EffectiveDirection()
}

// IsFloorInRange reports whether floor is within this car's serviceable range.
func (c *Car) IsFloorInRange(floor int) bool {
	return c.state.IsFloorInRange(floor)
}

// Bounds returns the lowest/highest scheduled stop, defaulting to current
// floor when empty — the cost function's L/H terms.
func (c *Car) Bounds() (low, high int) {
	return c.scheduler.Bounds(c.state.CurrentFloor())
}

// RangeCount exposes the scheduler's intermediate-stop counter to the
// dispatcher's cost function.
func (c *Car) RangeCount(dir domain.Direction, lo, hi int) int {
	return c.scheduler.RangeCount(dir, lo, hi)
}

// TotalScheduledStops exposes the scheduler's stop count to the cost function.
func (c *Car) TotalScheduledStops() int {
	return c.scheduler.TotalScheduledStops()
}

// HasHallCallActive reports whether (floor, dir) is already present in
// this car's appropriate external queue or is its current active target
// with a matching direction — used by the dispatcher's idempotent
// submission check (§4.4 step 2).
func (c *Car) HasHallCallActive(floor int, dir domain.Direction) bool {
	m := c.scheduler.ExternalMembership(floor)
	active := c.state.ActiveTarget()
	if active.Valid && active.Floor == floor && active.Direction == dir {
		return true
	}
	switch dir {
	case domain.DirectionUp:
		return m.UpUp || m.DownUp
	case domain.DirectionDown:
		return m.DownDown || m.UpDown
	default:
		return false
	}
}

// SubmitHallCall classifies and queues a hall call, lighting the
// appropriate external UI indicator unless it is serviced immediately
// (current floor, idle).
func (c *Car) SubmitHallCall(floor int, dir domain.Direction) scheduler.RequestID {
	effDir := c.state.EffectiveDirection()
	cur := c.state.CurrentFloor()
	res := c.scheduler.AddHallCall(effDir, cur, floor, dir)

	if res.OpenDoorNow {
		c.immediateOpen <- scheduler.Stop{Floor: floor, Direction: dir, Class: scheduler.ClassExternalSameDirection}
		c.wake()
		return res.ID
	}

	c.lightExternalIndicator(floor, dir)

	if res.NewlyIdleDir {
		c.state.mu.Lock()
		c.state.runState = runStateFor(res.AssignedDir)
		c.state.mu.Unlock()
	}
	c.wake()
	return res.ID
}

// SubmitCarCall classifies and queues a car call (destination selected
// inside the car); never tracked for migration.
func (c *Car) SubmitCarCall(floor int) {
	cur := c.state.CurrentFloor()
	openNow := c.scheduler.AddCarCall(cur, floor)
	if openNow {
		c.immediateOpen <- scheduler.Stop{Floor: floor, Direction: domain.DirectionIdle, Class: scheduler.ClassInternal}
		c.wake()
		return
	}
	c.lightInternalIndicator(floor)

	c.state.mu.Lock()
	if c.state.runState == StateIdle {
		if floor > cur {
			c.state.runState = StateMovingUp
		} else {
			c.state.runState = StateMovingDown
		}
	}
	c.state.mu.Unlock()
	c.wake()
}

// RemoveByID delegates to the scheduler, for dispatcher-driven migration.
func (c *Car) RemoveByID(id scheduler.RequestID) (floor int, dir domain.Direction, found bool) {
	return c.scheduler.RemoveByID(id)
}

func (c *Car) lightExternalIndicator(floor int, dir domain.Direction) {
	c.state.mu.Lock()
	defer c.state.mu.Unlock()
	if dir == domain.DirectionUp {
		c.state.ui.setExtUp(floor)
	} else {
		c.state.ui.setExtDown(floor)
	}
}

func (c *Car) lightInternalIndicator(floor int) {
	c.state.mu.Lock()
	defer c.state.mu.Unlock()
	c.state.ui.setInternal(floor)
}

func runStateFor(dir domain.Direction) RunState {
	if dir == domain.DirectionUp {
		return StateMovingUp
	}
	if dir == domain.DirectionDown {
		return StateMovingDown
	}
	return StateIdle
}

func (c *Car) wake() {
	select {
	case c.wakeChan <- struct{}{}:
	default:
	}
}

// Shutdown cancels the car's tick goroutine and waits for it to exit.
func (c *Car) Shutdown() {
	c.logger.Info("shutting down car")
	c.cancel()
	c.wg.Wait()
}

// Snapshot returns the externally visible state of this car.
func (c *Car) Snapshot() Snapshot {
	c.state.mu.Lock()
	defer c.state.mu.Unlock()
	return Snapshot{
		CarID:                c.ID,
		CurrentFloor:         float64(c.state.currentFloor),
		Direction:            directionString(c.effectiveDirectionLocked()),
		DoorOpen:             c.state.doorOpen,
		ExternalUpRequests:   c.state.ui.floorsSet(c.state.ui.extUp),
		ExternalDownRequests: c.state.ui.floorsSet(c.state.ui.extDown),
		InternalRequests:     c.state.ui.floorsSet(c.state.ui.internal),
		Timestamp:            nowFunc(),
	}
}

func (c *Car) effectiveDirectionLocked() domain.Direction {
	switch c.state.runState {
	case StateMovingUp:
		return domain.DirectionUp
	case StateMovingDown:
		return domain.DirectionDown
	case StateDoorsOpen:
		return c.state.movingDirection
	default:
		return domain.DirectionIdle
	}
}

func (c *Car) publishNow() {
	if c.publish == nil {
		return
	}
	c.publish(c.Snapshot())
}

// run is the car's tick goroutine: select next stop, move toward it,
// detect same-direction interruptions, handle arrival and doors, reconcile
// UI indicators — the full §4.3 algorithm.
func (c *Car) run() {
	defer c.wg.Done()
	for {
		select {
		case <-c.ctx.Done():
			return
		default:
		}

		c.reconcileUI()

		select {
		case stop := <-c.immediateOpen:
			if stop.Floor == c.state.CurrentFloor() {
				c.arrive(stop, c.state.EffectiveDirection())
				continue
			}
			// The car moved on before this immediate-open could be
			// serviced (raced with an in-flight move); treat it as a
			// normal stop instead of dropping it.
			c.moveTo(stop)
			continue
		default:
		}

		effDir := c.state.EffectiveDirection()
		cur := c.state.CurrentFloor()

		stop, ok := c.withBreaker(func() (scheduler.Stop, bool) {
			return c.scheduler.PopNext(effDir, cur)
		})

		if !ok {
			c.goIdle()
			select {
			case <-c.ctx.Done():
				return
			case <-c.wakeChan:
			case <-time.After(idlePoll):
			}
			continue
		}

		if stop.Floor == cur {
			// Double-stop guard: this stop was classified at the floor we
			// are already sitting at (e.g. a simultaneous internal and
			// external request for the same floor) — it was already
			// serviced when we opened the doors for the first one.
			continue
		}

		c.moveTo(stop)
	}
}

// withBreaker executes fn under circuit breaker protection; a tripped
// breaker is treated as "nothing to do this tick" rather than propagated,
// since §7 treats nothing inside the core as fatal.
func (c *Car) withBreaker(fn func() (scheduler.Stop, bool)) (scheduler.Stop, bool) {
	var stop scheduler.Stop
	var ok bool
	err := c.circuitBreaker.Execute(c.ctx, func() error {
		stop, ok = fn()
		return nil
	})
	if err != nil {
		c.logger.Warn("tick rejected by circuit breaker", slog.String("error", err.Error()))
		return scheduler.Stop{}, false
	}
	return stop, ok
}

func (c *Car) goIdle() {
	c.state.mu.Lock()
	c.state.runState = StateIdle
	c.state.target = Target{}
	c.state.mu.Unlock()
	c.publishNow()
}

// moveTo drives the car from its current floor to stop.Floor, handling
// mid-sweep interruption and arrival.
func (c *Car) moveTo(stop scheduler.Stop) {
	cur := c.state.CurrentFloor()
	dir := domain.DirectionUp
	if stop.Floor < cur {
		dir = domain.DirectionDown
	}

	c.state.mu.Lock()
	c.state.runState = runStateFor(dir)
	c.state.target = Target{Floor: stop.Floor, Direction: stop.Direction, Valid: true}
	c.state.mu.Unlock()
	c.publishNow()

	// Wait for any already-open door to close before moving.
	for c.state.DoorOpen() {
		select {
		case <-c.ctx.Done():
			return
		case <-time.After(c.eachFloorDuration):
		}
	}

	for c.state.CurrentFloor() != stop.Floor {
		select {
		case <-c.ctx.Done():
			return
		default:
		}

		cur := c.state.CurrentFloor()
		if peeked, ok := c.scheduler.PeekNext(dir, cur); ok {
			if c.interrupts(dir, cur, peeked.Floor, stop.Floor) {
				actual, consumed := c.scheduler.PopNext(dir, cur)
				if consumed {
					c.requeue(stop, cur)
					stop = actual
					c.state.mu.Lock()
					c.state.target = Target{Floor: stop.Floor, Direction: stop.Direction, Valid: true}
					c.state.mu.Unlock()
				}
			}
		}

		select {
		case <-c.ctx.Done():
			return
		case <-time.After(c.eachFloorDuration):
		}

		next := cur + 1
		if dir == domain.DirectionDown {
			next = cur - 1
		}
		c.state.setCurrentFloor(next)
		c.reconcileUI()
		c.publishNow()
	}

	c.arrive(stop, dir)
}

// interrupts reports whether a newly peeked stop is strictly closer than
// the current target and in the same direction of travel.
func (c *Car) interrupts(dir domain.Direction, current, candidate, target int) bool {
	if dir == domain.DirectionUp {
		return current < candidate && candidate < target
	}
	return target < candidate && candidate < current
}

// requeue re-inserts a pre-empted stop back into the scheduler, using the
// same classification logic as fresh submission (cheaper and exactly as
// correct as literal queue selection, since current has not yet passed it).
func (c *Car) requeue(stop scheduler.Stop, current int) {
	if stop.Class == scheduler.ClassInternal {
		c.scheduler.AddCarCall(current, stop.Floor)
		return
	}
	effDir := domain.DirectionUp
	if current > stop.Floor {
		effDir = domain.DirectionDown
	}
	c.scheduler.AddHallCall(effDir, current, stop.Floor, stop.Direction)
}

func (c *Car) arrive(stop scheduler.Stop, dir domain.Direction) {
	c.state.mu.Lock()
	c.state.currentFloor = stop.Floor
	c.state.doorOpen = true
	c.state.runState = StateDoorsOpen
	c.state.movingDirection = dir
	c.state.target = Target{}
	c.state.mu.Unlock()

	c.reconcileUI()
	c.clearArrivalIndicators(stop, dir)
	c.publishNow()

	select {
	case <-c.ctx.Done():
		return
	case <-time.After(c.openDoorDuration):
	}

	c.state.mu.Lock()
	c.state.doorOpen = false
	c.state.runState = runStateFor(dir)
	c.state.mu.Unlock()
	c.publishNow()
}

// clearArrivalIndicators implements the open-question resolution for IDLE
// clearing semantics: a request serviced while the car had no scheduled
// continuation in either direction clears both external indicators at
// that floor; otherwise only the indicator matching the serviced
// direction is cleared (P4).
func (c *Car) clearArrivalIndicators(stop scheduler.Stop, dir domain.Direction) {
	c.state.mu.Lock()
	defer c.state.mu.Unlock()

	switch stop.Direction {
	case domain.DirectionUp:
		c.state.ui.clearExtUp(stop.Floor)
	case domain.DirectionDown:
		c.state.ui.clearExtDown(stop.Floor)
	}

	if !c.scheduler.HasRequestsAbove(stop.Floor) && !c.scheduler.HasRequestsBelow(stop.Floor) {
		c.state.ui.clearExtUp(stop.Floor)
		c.state.ui.clearExtDown(stop.Floor)
	}
}

// reconcileUI implements §4.3 step 1: the internal indicator is fully
// resynced from the current internal queues; each external indicator is
// cleared at the current floor if no queue or active target still needs
// it there.
func (c *Car) reconcileUI() {
	cur := c.state.CurrentFloor()
	internalFloors := c.scheduler.InternalFloors()
	membership := c.scheduler.ExternalMembership(cur)
	target := c.state.ActiveTarget()

	c.state.mu.Lock()
	defer c.state.mu.Unlock()

	c.state.ui.internal.ClearAll()
	for _, f := range internalFloors {
		c.state.ui.setInternal(f)
	}

	keepUp := membership.UpUp || membership.DownUp || (target.Valid && target.Floor == cur && target.Direction == domain.DirectionUp)
	if !keepUp {
		c.state.ui.clearExtUp(cur)
	}
	keepDown := membership.DownDown || membership.UpDown || (target.Valid && target.Floor == cur && target.Direction == domain.DirectionDown)
	if !keepDown {
		c.state.ui.clearExtDown(cur)
	}
}

// GetHealthMetrics returns health/circuit-breaker metrics for this car,
// consumed by the boundary's detailed health endpoint and metrics exporter.
func (c *Car) GetHealthMetrics() map[string]interface{} {
	state, failures, successes := c.circuitBreaker.GetMetrics()
	return map[string]interface{}{
		"name":                      c.Name(),
		"current_floor":             c.CurrentFloor(),
		"direction":                 string(c.EffectiveDirection()),
		"run_state":                 c.RunState().String(),
		"circuit_breaker_state":     circuitBreakerStateName(state),
		"circuit_breaker_failures":  failures,
		"circuit_breaker_successes": successes,
		"is_healthy":                state != StateOpen,
		"min_floor":                 c.MinFloor(),
		"max_floor":                 c.MaxFloor(),
	}
}

func circuitBreakerStateName(state CircuitBreakerState) string {
	switch state {
	case StateClosed:
		return "closed"
	case StateOpen:
		return "open"
	case StateHalfOpen:
		return "half-open"
	default:
		return "unknown"
	}
}
