package car_benchmarks

import (
	"testing"
	"time"

	"github.com/liftctl/liftctl/internal/car"
	"github.com/liftctl/liftctl/internal/domain"
)

func benchmarkCarConfig() car.Config {
	return car.Config{
		EachFloorDuration:           10 * time.Millisecond,
		OpenDoorDuration:            10 * time.Millisecond,
		OperationTimeout:            30 * time.Second,
		CircuitBreakerMaxFailures:   5,
		CircuitBreakerResetTimeout:  30 * time.Second,
		CircuitBreakerHalfOpenLimit: 3,
		OverloadThreshold:           12,
	}
}

// BenchmarkCar_New benchmarks car creation performance
func BenchmarkCar_New(b *testing.B) {
	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		c, err := car.New(i, "BenchmarkCar", 0, 50, benchmarkCarConfig(), nil)
		if err != nil {
			b.Fatal(err)
		}
		c.Shutdown()
	}
}

// BenchmarkCar_SubmitHallCall benchmarks hall call submission performance
func BenchmarkCar_SubmitHallCall(b *testing.B) {
	c, err := car.New(1, "BenchmarkCar", 0, 100, benchmarkCarConfig(), nil)
	if err != nil {
		b.Fatal(err)
	}
	defer c.Shutdown()

	b.ResetTimer()
	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		floor := i % 90
		dir := domain.DirectionUp
		if i%2 == 0 {
			dir = domain.DirectionDown
		}
		c.SubmitHallCall(floor, dir)
	}
}

// BenchmarkCar_ConcurrentHallCalls benchmarks concurrent hall call submission
func BenchmarkCar_ConcurrentHallCalls(b *testing.B) {
	c, err := car.New(1, "ConcurrentBenchmarkCar", 0, 100, benchmarkCarConfig(), nil)
	if err != nil {
		b.Fatal(err)
	}
	defer c.Shutdown()

	b.ResetTimer()
	b.ReportAllocs()

	b.RunParallel(func(pb *testing.PB) {
		counter := 0
		for pb.Next() {
			floor := counter % 90
			dir := domain.DirectionUp
			if counter%2 == 0 {
				dir = domain.DirectionDown
			}
			c.SubmitHallCall(floor, dir)
			counter++
		}
	})
}

// BenchmarkCar_StateOperations benchmarks state access operations
func BenchmarkCar_StateOperations(b *testing.B) {
	c, err := car.New(1, "StateBenchmarkCar", 0, 100, benchmarkCarConfig(), nil)
	if err != nil {
		b.Fatal(err)
	}
	defer c.Shutdown()

	b.ResetTimer()
	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		_ = c.CurrentFloor()
		_ = c.EffectiveDirection()
		_ = c.Name()
		_ = c.RunState()
	}
}

// BenchmarkCar_IsFloorInRange benchmarks range validation
func BenchmarkCar_IsFloorInRange(b *testing.B) {
	c, err := car.New(1, "RangeBenchmarkCar", 0, 100, benchmarkCarConfig(), nil)
	if err != nil {
		b.Fatal(err)
	}
	defer c.Shutdown()

	b.ResetTimer()
	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		_ = c.IsFloorInRange(i % 100)
	}
}

// BenchmarkCar_TotalScheduledStops benchmarks the scheduler's queue-length rollup
func BenchmarkCar_TotalScheduledStops(b *testing.B) {
	c, err := car.New(1, "QueueBenchmarkCar", 0, 100, benchmarkCarConfig(), nil)
	if err != nil {
		b.Fatal(err)
	}
	defer c.Shutdown()

	for i := 0; i < 10; i++ {
		c.SubmitHallCall(i, domain.DirectionUp)
		c.SubmitHallCall(i+10, domain.DirectionDown)
	}

	b.ResetTimer()
	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		_ = c.TotalScheduledStops()
	}
}

// BenchmarkCar_MemoryUsage benchmarks memory usage under load
func BenchmarkCar_MemoryUsage(b *testing.B) {
	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		c, err := car.New(i, "MemoryBenchmarkCar", 0, 50, benchmarkCarConfig(), nil)
		if err != nil {
			b.Fatal(err)
		}

		for j := 0; j < 10; j++ {
			c.SubmitHallCall(j, domain.DirectionUp)
			c.SubmitHallCall(j+10, domain.DirectionDown)
		}

		_ = c.CurrentFloor()
		_ = c.EffectiveDirection()
		_ = c.Snapshot()

		c.Shutdown()
	}
}

// BenchmarkCar_ConcurrentStateAccess benchmarks concurrent state access
func BenchmarkCar_ConcurrentStateAccess(b *testing.B) {
	c, err := car.New(1, "ConcurrentStateBenchmarkCar", 0, 100, benchmarkCarConfig(), nil)
	if err != nil {
		b.Fatal(err)
	}
	defer c.Shutdown()

	for i := 0; i < 10; i++ {
		c.SubmitHallCall(i, domain.DirectionUp)
	}

	b.ResetTimer()
	b.ReportAllocs()

	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			_ = c.CurrentFloor()
			_ = c.EffectiveDirection()
			_ = c.Name()
			_ = c.TotalScheduledStops()
		}
	})
}

// BenchmarkCar_StatusOperations benchmarks snapshot and health metrics output
func BenchmarkCar_StatusOperations(b *testing.B) {
	c, err := car.New(1, "StatusBenchmarkCar", 0, 100, benchmarkCarConfig(), nil)
	if err != nil {
		b.Fatal(err)
	}
	defer c.Shutdown()

	for i := 0; i < 5; i++ {
		c.SubmitHallCall(i, domain.DirectionUp)
	}

	b.ResetTimer()
	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		_ = c.Snapshot()
		_ = c.GetHealthMetrics()
		_ = c.MinFloor()
		_ = c.MaxFloor()
	}
}
