// Package metrics exposes the Prometheus metric surface shared by the
// dispatcher, cars, and HTTP boundary: request outcomes, per-car timing,
// queue depth, circuit-breaker state, and general HTTP/process health.
package metrics

import "github.com/prometheus/client_golang/prometheus"

const (
	namespace      = "elevator"
	carLabel       = "elevator"
	directionLabel = "direction"
	outcomeLabel   = "outcome"
)

var (
	requestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    namespace + "_request_duration_seconds",
			Help:    "Duration of elevator request processing",
			Buckets: []float64{0.1, 0.5, 1, 2, 5},
		},
		[]string{carLabel},
	)

	requestDurationByOutcome = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    namespace + "_request_processing_seconds",
			Help:    "Duration of dispatcher request processing, labeled by outcome",
			Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 2, 5},
		},
		[]string{carLabel, outcomeLabel},
	)

	requestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: namespace + "_requests_total",
			Help: "Total hall/car requests handled, labeled by assigned car, direction and outcome",
		},
		[]string{carLabel, directionLabel, outcomeLabel},
	)

	errorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: namespace + "_errors_total",
			Help: "Total errors encountered, labeled by error type and originating component",
		},
		[]string{"error_type", "component"},
	)

	waitTime = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    namespace + "_wait_time_seconds",
			Help:    "Estimated passenger wait time before boarding",
			Buckets: []float64{1, 5, 10, 20, 40, 60},
		},
		[]string{carLabel},
	)

	travelTime = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    namespace + "_travel_time_seconds",
			Help:    "Estimated travel time, labeled by car and floor distance",
			Buckets: []float64{1, 5, 10, 20, 40, 60},
		},
		[]string{carLabel, "distance"},
	)

	currentFloor = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: namespace + "_current_floor",
			Help: "Current floor of a car",
		},
		[]string{carLabel},
	)

	pendingRequests = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: namespace + "_pending_requests",
			Help: "Pending scheduled stops for a car, by direction",
		},
		[]string{carLabel, directionLabel},
	)

	circuitBreakerState = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: namespace + "_circuit_breaker_state",
			Help: "Circuit breaker state per car (0=closed, 1=half-open, 2=open)",
		},
		[]string{carLabel},
	)

	carEfficiency = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: namespace + "_efficiency_ratio",
			Help: "Heuristic efficiency ratio for a car (serviced stops vs capacity)",
		},
		[]string{carLabel},
	)

	systemHealth = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: namespace + "_system_health",
			Help: "Health status per subsystem component (1=healthy, 0=unhealthy)",
		},
		[]string{"component"},
	)

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: namespace + "_http_requests_total",
			Help: "Total HTTP requests handled, labeled by method, endpoint and status code",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	avgResponseTime = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: namespace + "_avg_response_time_seconds",
			Help: "Rolling average response time for a named operation class",
		},
		[]string{"operation"},
	)

	memoryUsage = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: namespace + "_memory_usage_bytes",
			Help: "Process memory usage, labeled by measurement kind",
		},
		[]string{"kind"},
	)

	reoptimizeMigrations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: namespace + "_reoptimize_migrations_total",
			Help: "Total hall calls migrated between cars by the re-optimizer",
		},
		[]string{"from_car", "to_car"},
	)
)

func init() {
	prometheus.MustRegister(
		requestDuration,
		requestDurationByOutcome,
		requestsTotal,
		errorsTotal,
		waitTime,
		travelTime,
		currentFloor,
		pendingRequests,
		circuitBreakerState,
		carEfficiency,
		systemHealth,
		httpRequests,
		avgResponseTime,
		memoryUsage,
		reoptimizeMigrations,
	)
}

func RequestDurationHistogram(elevatorName string, seconds float64) {
	requestDuration.With(prometheus.Labels{carLabel: elevatorName}).Observe(seconds)
}

// RecordRequestDuration records how long a dispatcher request took, labeled
// by outcome ("existing", "success", "failure").
func RecordRequestDuration(elevatorName, outcome string, seconds float64) {
	requestDurationByOutcome.With(prometheus.Labels{carLabel: elevatorName, outcomeLabel: outcome}).Observe(seconds)
}

// IncRequestsTotal increments the request counter for a car/direction/outcome.
func IncRequestsTotal(elevatorName, direction, outcome string) {
	requestsTotal.With(prometheus.Labels{carLabel: elevatorName, directionLabel: direction, outcomeLabel: outcome}).Inc()
}

// IncError increments the error counter for a type/component pair.
func IncError(errorType, component string) {
	errorsTotal.With(prometheus.Labels{"error_type": errorType, "component": component}).Inc()
}

// RecordWaitTime observes an estimated wait time for a car.
func RecordWaitTime(elevatorName string, seconds float64) {
	waitTime.With(prometheus.Labels{carLabel: elevatorName}).Observe(seconds)
}

// RecordTravelTime observes an estimated travel time for a car/distance pair.
func RecordTravelTime(elevatorName, distance string, seconds float64) {
	travelTime.With(prometheus.Labels{carLabel: elevatorName, "distance": distance}).Observe(seconds)
}

// SetCurrentFloor reports a car's current floor.
func SetCurrentFloor(elevatorName string, floor float64) {
	currentFloor.With(prometheus.Labels{carLabel: elevatorName}).Set(floor)
}

// SetPendingRequests reports the pending stop count for a car/direction pair.
func SetPendingRequests(elevatorName, direction string, count float64) {
	pendingRequests.With(prometheus.Labels{carLabel: elevatorName, directionLabel: direction}).Set(count)
}

// SetCircuitBreakerState reports a car's circuit breaker state as a gauge
// value (0=closed, 1=half-open, 2=open).
func SetCircuitBreakerState(elevatorName string, stateValue float64) {
	circuitBreakerState.With(prometheus.Labels{carLabel: elevatorName}).Set(stateValue)
}

// SetElevatorEfficiency reports a heuristic efficiency ratio for a car.
func SetElevatorEfficiency(elevatorName string, ratio float64) {
	carEfficiency.With(prometheus.Labels{carLabel: elevatorName}).Set(ratio)
}

// SetSystemHealth reports whether a named subsystem is currently healthy.
func SetSystemHealth(component string, healthy bool) {
	v := 0.0
	if healthy {
		v = 1.0
	}
	systemHealth.With(prometheus.Labels{"component": component}).Set(v)
}

// RecordHTTPRequest increments the HTTP request counter.
func RecordHTTPRequest(method, endpoint, statusCode string, seconds float64) {
	httpRequests.With(prometheus.Labels{"method": method, "endpoint": endpoint, "status_code": statusCode}).Inc()
	avgResponseTime.With(prometheus.Labels{"operation": endpoint}).Set(seconds)
}

// SetAvgResponseTime reports a rolling average response time for a named
// operation class (independent of the per-endpoint value RecordHTTPRequest
// maintains).
func SetAvgResponseTime(operation string, seconds float64) {
	avgResponseTime.With(prometheus.Labels{"operation": operation}).Set(seconds)
}

// SetMemoryUsage reports a process memory measurement.
func SetMemoryUsage(kind string, bytes float64) {
	memoryUsage.With(prometheus.Labels{"kind": kind}).Set(bytes)
}

// IncReoptimizeMigration records a hall call migrated between two cars by
// the dispatcher's re-optimizer.
func IncReoptimizeMigration(fromCar, toCar string) {
	reoptimizeMigrations.With(prometheus.Labels{"from_car": fromCar, "to_car": toCar}).Inc()
}
