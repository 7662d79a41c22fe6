// Package dispatcher implements the multi-car hall-call dispatcher: an
// idempotent submission registry, the cost-function car selection, and a
// periodic re-optimizer that migrates hall calls between cars as their
// relative costs shift. It generalizes this project's original
// nearest-elevator Manager (internal/manager) into the cost-function model,
// keeping the same goroutine-with-timeout request pattern and structured
// logging/metrics idiom.
package dispatcher

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/liftctl/liftctl/internal/car"
	"github.com/liftctl/liftctl/internal/constants"
	"github.com/liftctl/liftctl/internal/domain"
	"github.com/liftctl/liftctl/internal/factory"
	"github.com/liftctl/liftctl/internal/infra/config"
	"github.com/liftctl/liftctl/internal/scheduler"
	"github.com/liftctl/liftctl/metrics"
)

// registryKey identifies one outstanding hall call by its (floor, direction)
// pair, matching the component design's idempotency key.
type registryKey struct {
	floor int
	dir   domain.Direction
}

type registryEntry struct {
	carID     int
	requestID scheduler.RequestID
}

// Dispatcher owns the fleet of cars and the hall-call registry used for
// idempotent submission and cross-car migration.
type Dispatcher struct {
	mu       sync.RWMutex
	cars     []*car.Car
	registry map[registryKey]registryEntry

	factory factory.CarFactory
	cfg     *config.Config
	params  costParams

	logger *slog.Logger
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	publish car.PublishFunc
	nextID  int

	totalFloors int
}

// New constructs an empty dispatcher and starts its re-optimizer goroutine.
func New(cfg *config.Config, f factory.CarFactory, publish car.PublishFunc) *Dispatcher {
	ctx, cancel := context.WithCancel(context.Background())
	d := &Dispatcher{
		registry: make(map[registryKey]registryEntry),
		factory:  f,
		cfg:      cfg,
		params: costParams{
			travelPerFloor:    cfg.CostTravelPerFloor,
			stopPenalty:       cfg.CostStopPenalty,
			turnaroundPenalty: cfg.CostTurnaroundPenalty,
		},
		logger:  slog.With(slog.String("component", constants.ComponentManager)),
		ctx:     ctx,
		cancel:  cancel,
		publish: publish,
	}

	d.wg.Add(1)
	go d.reoptimizeLoop()
	return d
}

// AddCar creates and registers a new car with the given name and floor
// range.
func (d *Dispatcher) AddCar(name string, minFloor, maxFloor int) (*car.Car, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	for _, c := range d.cars {
		if c.Name() == name {
			return nil, domain.NewValidationError("car with this name already exists", nil).
				WithContext("name", name)
		}
	}

	id := d.nextID
	d.nextID++

	createCtx, cancel := context.WithTimeout(d.ctx, d.cfg.CreateElevatorTimeout)
	defer cancel()

	c, err := d.factory.CreateCar(d.cfg, id, name, minFloor, maxFloor, d.publish)
	if err != nil {
		d.logger.ErrorContext(createCtx, "failed to create car",
			slog.String("name", name), slog.String("error", err.Error()))
		return nil, err
	}

	d.cars = append(d.cars, c)
	if maxFloor+1 > d.totalFloors {
		d.totalFloors = maxFloor + 1
	}
	d.logger.InfoContext(createCtx, "car added to dispatcher fleet",
		slog.String("car", c.Name()), slog.Int("min_floor", minFloor), slog.Int("max_floor", maxFloor))

	if d.publish != nil {
		d.publish(c.Snapshot())
	}
	return c, nil
}

// TotalFloors returns the highest maxFloor+1 seen across the fleet, the
// building's floor count (§6 get_status/reconfigure_building).
func (d *Dispatcher) TotalFloors() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.totalFloors
}

// CarCount returns the number of cars currently in the fleet.
func (d *Dispatcher) CarCount() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.cars)
}

// EfficiencyScore is a heuristic building-wide performance summary
// (SUPPLEMENTED FEATURES), generalizing the teacher's single-elevator
// calculatePerformanceScore to a fleet-wide statistic: 60% health ratio
// (cars whose circuit breaker isn't open) plus 40% load-efficiency
// (moderate scheduled-stop load is rewarded, very high load is
// penalized).
func (d *Dispatcher) EfficiencyScore() float64 {
	cars := d.Cars()
	if len(cars) == 0 {
		return 1.0
	}

	healthy := 0
	totalStops := 0
	for _, c := range cars {
		if h, ok := c.GetHealthMetrics()["is_healthy"].(bool); ok && h {
			healthy++
		}
		totalStops += c.TotalScheduledStops()
	}

	avgLoad := float64(totalStops) / float64(len(cars))
	loadScore := 1.0
	if avgLoad > 2.0 {
		loadScore = 2.0 / avgLoad
	} else if avgLoad < 0.5 {
		loadScore = avgLoad / 0.5
	}
	healthScore := float64(healthy) / float64(len(cars))

	return (healthScore * 0.6) + (loadScore * 0.4)
}

// Reconfigure implements reconfigure_building: it shuts down every
// existing car and rebuilds the fleet with carCount cars spanning floors
// [0, totalFloors-1], car names "car-0".."car-N-1" with ids 0..N-1
// (SUPPLEMENTED FEATURES: full car rebuild; AddCar publishes an initial
// snapshot of every rebuilt car to the broadcaster). Metric label sets of
// the old cars are not reset.
func (d *Dispatcher) Reconfigure(totalFloors, carCount int) error {
	if totalFloors < 2 || carCount < 1 {
		return domain.NewValidationError("total_floors must be >= 2 and car_count must be >= 1", nil).
			WithContext("total_floors", totalFloors).WithContext("car_count", carCount)
	}

	d.mu.Lock()
	oldCars := d.cars
	d.cars = nil
	d.registry = make(map[registryKey]registryEntry)
	d.totalFloors = 0
	d.nextID = 0
	d.mu.Unlock()

	for _, c := range oldCars {
		c.Shutdown()
	}

	for i := 0; i < carCount; i++ {
		name := fmt.Sprintf("car-%d", i)
		if _, err := d.AddCar(name, 0, totalFloors-1); err != nil {
			return err
		}
	}

	d.logger.Info("building reconfigured",
		slog.Int("total_floors", totalFloors), slog.Int("car_count", carCount))
	return nil
}

// Cars returns a snapshot of the fleet.
func (d *Dispatcher) Cars() []*car.Car {
	d.mu.RLock()
	defer d.mu.RUnlock()
	out := make([]*car.Car, len(d.cars))
	copy(out, d.cars)
	return out
}

// GetCar looks up a car by name.
func (d *Dispatcher) GetCar(name string) *car.Car {
	d.mu.RLock()
	defer d.mu.RUnlock()
	for _, c := range d.cars {
		if c.Name() == name {
			return c
		}
	}
	return nil
}

// GetCarByID looks up a car by its numeric id, used by the /v1/cars/{car_id}
// route.
func (d *Dispatcher) GetCarByID(id int) *car.Car {
	return d.carByID(id)
}

// SubmitHallCall implements the component design's 3-step idempotent
// submission policy.
func (d *Dispatcher) SubmitHallCall(ctx context.Context, floor int, dir domain.Direction) (*car.Car, error) {
	start := time.Now()
	requestCtx, cancel := context.WithTimeout(ctx, d.cfg.RequestTimeout)
	defer cancel()

	if !dir.IsValid() || dir == domain.DirectionIdle {
		metrics.IncError("validation_error", "dispatcher")
		return nil, domain.ErrInvalidDirection
	}

	key := registryKey{floor: floor, dir: dir}

	d.mu.Lock()
	entry, ok := d.registry[key]
	d.mu.Unlock()
	if ok {
		c := d.carByID(entry.carID)
		if c == nil {
			d.dropFromRegistry(key)
		} else {
			metrics.RecordRequestDuration(c.Name(), "existing", time.Since(start).Seconds())
			return c, nil
		}
	}

	d.mu.RLock()
	cars := make([]*car.Car, len(d.cars))
	copy(cars, d.cars)
	d.mu.RUnlock()

	if len(cars) == 0 {
		metrics.IncError("no_cars", "dispatcher")
		return nil, domain.ErrServiceUnavailable
	}

	// Step 2: any car already actively servicing this call.
	for _, c := range cars {
		if !c.IsFloorInRange(floor) {
			continue
		}
		if c.HasHallCallActive(floor, dir) {
			metrics.RecordRequestDuration(c.Name(), "already_active", time.Since(start).Seconds())
			return c, nil
		}
	}

	best, bestCost, err := d.cheapestCar(requestCtx, cars, floor, dir)
	if err != nil {
		metrics.IncError("no_eligible_car", "dispatcher")
		return nil, err
	}

	id := best.SubmitHallCall(floor, dir)

	d.mu.Lock()
	d.registry[key] = registryEntry{carID: d.carID(best), requestID: id}
	d.mu.Unlock()

	duration := time.Since(start)
	metrics.RecordRequestDuration(best.Name(), "success", duration.Seconds())
	metrics.IncRequestsTotal(best.Name(), string(dir), "success")
	metrics.RecordWaitTime(best.Name(), bestCost)

	d.logger.InfoContext(requestCtx, "hall call assigned",
		slog.String("car", best.Name()),
		slog.Int("floor", floor),
		slog.String("direction", string(dir)),
		slog.Float64("cost", bestCost))

	return best, nil
}

// SubmitCarCall delegates directly to a named car's scheduler; never
// tracked in the registry.
func (d *Dispatcher) SubmitCarCall(carName string, floor int) error {
	c := d.GetCar(carName)
	if c == nil {
		return domain.ErrCarNotFound
	}
	if !c.IsFloorInRange(floor) {
		return domain.NewValidationError("requested floor is outside this car's range", nil).
			WithContext("car", carName).WithContext("floor", floor)
	}
	c.SubmitCarCall(floor)
	return nil
}

// SubmitCarCallByID delegates to SubmitCarCall by car id, used by the
// /v1/cars/{car_id}/calls route.
func (d *Dispatcher) SubmitCarCallByID(carID int, floor int) error {
	c := d.carByID(carID)
	if c == nil {
		return domain.ErrCarNotFound
	}
	if !c.IsFloorInRange(floor) {
		return domain.NewValidationError("requested floor is outside this car's range", nil).
			WithContext("car_id", carID).WithContext("floor", floor)
	}
	c.SubmitCarCall(floor)
	return nil
}

func (d *Dispatcher) cheapestCar(ctx context.Context, cars []*car.Car, floor int, dir domain.Direction) (*car.Car, float64, error) {
	type result struct {
		best *car.Car
		cost float64
	}
	resultCh := make(chan result, 1)

	go func() {
		var best *car.Car
		bestCost := 0.0
		bestID := 0
		for _, c := range cars {
			if !c.IsFloorInRange(floor) {
				continue
			}
			cst := cost(c, floor, dir, d.params)
			id := d.carID(c)
			if best == nil || cst < bestCost || (cst == bestCost && id < bestID) {
				best = c
				bestCost = cst
				bestID = id
			}
		}
		resultCh <- result{best: best, cost: bestCost}
	}()

	select {
	case <-ctx.Done():
		return nil, 0, domain.NewInternalError("car selection timed out", ctx.Err())
	case res := <-resultCh:
		if res.best == nil {
			return nil, 0, domain.NewValidationError("no car serves the requested floor", nil).
				WithContext("floor", floor)
		}
		return res.best, res.cost, nil
	}
}

func (d *Dispatcher) carID(target *car.Car) int {
	return target.ID
}

func (d *Dispatcher) carByID(id int) *car.Car {
	d.mu.RLock()
	defer d.mu.RUnlock()
	for _, c := range d.cars {
		if c.ID == id {
			return c
		}
	}
	return nil
}

// Shutdown stops the re-optimizer and every car's tick goroutine.
func (d *Dispatcher) Shutdown() {
	d.cancel()
	d.wg.Wait()
	for _, c := range d.Cars() {
		c.Shutdown()
	}
}

// reoptimizeLoop runs the periodic re-scoring/migration pass (§4.4).
func (d *Dispatcher) reoptimizeLoop() {
	defer d.wg.Done()
	ticker := time.NewTicker(d.cfg.ReoptimizeInterval)
	defer ticker.Stop()

	for {
		select {
		case <-d.ctx.Done():
			return
		case <-ticker.C:
			d.reoptimizePass()
		}
	}
}

// reoptimizePass implements the 3-step re-scoring algorithm, acquiring the
// registry mutex then each relevant car's scheduler mutex — the {registry →
// car} lock order required by the concurrency model.
func (d *Dispatcher) reoptimizePass() {
	d.mu.Lock()
	entries := make(map[registryKey]registryEntry, len(d.registry))
	for k, v := range d.registry {
		entries[k] = v
	}
	cars := make([]*car.Car, len(d.cars))
	copy(cars, d.cars)
	d.mu.Unlock()

	if len(cars) < 2 || len(entries) == 0 {
		return
	}

	for key, entry := range entries {
		currentCar := d.carByID(entry.carID)
		if currentCar == nil {
			d.dropFromRegistry(key)
			continue
		}

		currentCost := cost(currentCar, key.floor, key.dir, d.params)

		var bestCar *car.Car
		bestCost := currentCost
		bestID := entry.carID
		for _, c := range cars {
			if !c.IsFloorInRange(key.floor) {
				continue
			}
			cst := cost(c, key.floor, key.dir, d.params)
			id := d.carID(c)
			if cst < bestCost || (cst == bestCost && id < bestID) {
				bestCar = c
				bestCost = cst
				bestID = id
			}
		}

		if currentCost <= d.cfg.ReoptimizeNearThreshold {
			d.dropFromRegistry(key)
			continue
		}

		if bestCar == nil || bestCar == currentCar {
			continue
		}
		if currentCost-bestCost <= d.cfg.ReoptimizeImprovementThreshold {
			continue
		}

		floor, migDir, found := currentCar.RemoveByID(entry.requestID)
		if !found {
			// Consumed between peek and remove: the car already serviced it.
			d.dropFromRegistry(key)
			continue
		}

		newID := bestCar.SubmitHallCall(floor, migDir)

		d.mu.Lock()
		d.registry[key] = registryEntry{carID: bestID, requestID: newID}
		d.mu.Unlock()

		metrics.IncReoptimizeMigration(currentCar.Name(), bestCar.Name())
		d.logger.Info("hall call migrated by re-optimizer",
			slog.String("from_car", currentCar.Name()),
			slog.String("to_car", bestCar.Name()),
			slog.Int("floor", floor),
			slog.String("direction", string(migDir)),
			slog.Float64("current_cost", currentCost),
			slog.Float64("best_cost", bestCost))
	}
}

func (d *Dispatcher) dropFromRegistry(key registryKey) {
	d.mu.Lock()
	delete(d.registry, key)
	d.mu.Unlock()
}
