package service_test

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	service "github.com/okian/bfhl/internal/app"
	"github.com/okian/bfhl/internal/domain/bfhl"
	"github.com/okian/bfhl/pkg/logger"
	"github.com/okian/bfhl/pkg/metrics"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	// Initialize logging for tests
	err := logger.Init()
	if err != nil {
		panic(err)
	}
}

type staticGenerator string

func (g staticGenerator) Generate(context.Context, string) (string, error) {
	return string(g), nil
}

func started(t *testing.T, opts ...service.Option) *service.Service {
	t.Helper()
	svc := service.New(opts...)
	if err := svc.Start(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}
	return svc
}

func TestService_Lifecycle(t *testing.T) {
	Convey("Given a new service", t, func() {
		svc := service.New(service.WithComputeWorkers(2), service.WithProviderName("static"))
		defer svc.Stop()

		Convey("When starting it twice", func() {
			So(svc.Start(context.Background()), ShouldBeNil)
			So(svc.Start(context.Background()), ShouldBeNil)

			Convey("Then stats report it as started", func() {
				stats := svc.GetStats()
				So(stats["started"], ShouldEqual, true)
				So(stats["computeWorkers"], ShouldEqual, 2)
				So(stats["aiProvider"], ShouldEqual, "static")
				So(stats["operations"], ShouldResemble, []string{"fibonacci", "prime", "lcm", "hcf", "AI"})
			})

			Convey("And stopping it marks it stopped", func() {
				svc.Stop()
				svc.Stop()
				So(svc.GetStats()["started"], ShouldEqual, false)
			})
		})
	})
}

func TestService_Handle(t *testing.T) {
	Convey("Given a started service", t, func() {
		svc := started(t,
			service.WithComputeWorkers(4),
			service.WithDispatcher(bfhl.NewDispatcher(bfhl.WithGenerator(staticGenerator("Paris, France")))),
		)
		defer svc.Stop()
		ctx := context.Background()

		Convey("When computing each arithmetic operation", func() {
			cases := map[string]string{
				`{"fibonacci": 7}`:        `[0,1,1,2,3,5,8]`,
				`{"prime": [2,4,7,9,11]}`: `[2,7,11]`,
				`{"lcm": [2,3,4]}`:        `12`,
				`{"hcf": [24,36,60]}`:     `12`,
			}
			for body, want := range cases {
				_, data, err := svc.Handle(ctx, []byte(body))
				So(err, ShouldBeNil)
				out, _ := json.Marshal(data)
				So(string(out), ShouldEqual, want)
			}
		})

		Convey("When asking the AI operation", func() {
			op, data, err := svc.Handle(ctx, []byte(`{"AI": "capital of France?"}`))
			So(err, ShouldBeNil)
			So(op, ShouldEqual, bfhl.OpAI)
			So(data, ShouldEqual, "Paris,")
		})

		Convey("When the body is invalid", func() {
			_, _, err := svc.Handle(ctx, []byte(`{"fibonacci": 1, "lcm": [1,2]}`))

			Convey("Then a client error is returned and counted", func() {
				So(bfhl.IsClientError(err), ShouldBeTrue)
				requests := svc.GetStats()["requests"].(map[string]int64)
				So(requests[service.OutcomeInvalid], ShouldEqual, 1)
			})
		})

		Convey("When the context is already cancelled", func() {
			cctx, cancel := context.WithCancel(ctx)
			cancel()
			_, _, err := svc.Handle(cctx, []byte(`{"fibonacci": 3}`))
			So(errors.Is(err, context.Canceled), ShouldBeTrue)
			So(bfhl.IsClientError(err), ShouldBeFalse)
		})

		Convey("When many requests run concurrently", func() {
			done := make(chan error, 50)
			for i := 0; i < 50; i++ {
				go func() {
					_, _, err := svc.Handle(ctx, []byte(`{"fibonacci": 200}`))
					done <- err
				}()
			}
			for i := 0; i < 50; i++ {
				So(<-done, ShouldBeNil)
			}
			requests := svc.GetStats()["requests"].(map[string]int64)
			So(requests[service.OutcomeSuccess], ShouldEqual, 50)
		})
	})
}

func TestService_ComputeFailures(t *testing.T) {
	Convey("Given a dispatcher whose prime handler misbehaves", t, func() {
		d := bfhl.NewDispatcher()
		release := make(chan struct{})
		d.Register(bfhl.OpPrime, func(context.Context, json.RawMessage) (any, error) {
			<-release
			return []int64{}, nil
		})
		d.Register(bfhl.OpLCM, func(context.Context, json.RawMessage) (any, error) {
			panic("boom")
		})

		svc := started(t,
			service.WithDispatcher(d),
			service.WithComputeWorkers(1),
			service.WithComputeTimeout(30*time.Millisecond),
		)
		defer svc.Stop()
		defer close(release)

		Convey("When a computation exceeds the timeout", func() {
			_, _, err := svc.Handle(context.Background(), []byte(`{"prime": [2]}`))

			Convey("Then it fails as a server error", func() {
				So(errors.Is(err, service.ErrComputeTimeout), ShouldBeTrue)
				So(bfhl.IsClientError(err), ShouldBeFalse)
			})
		})

		Convey("When a computation panics", func() {
			_, _, err := svc.Handle(context.Background(), []byte(`{"lcm": [2,3]}`))
			So(errors.Is(err, service.ErrComputePanic), ShouldBeTrue)
		})
	})

	Convey("Given a service that was never started", t, func() {
		svc := service.New()
		_, _, err := svc.Handle(context.Background(), []byte(`{"hcf": [2,4]}`))
		So(errors.Is(err, service.ErrNotStarted), ShouldBeTrue)
	})
}

// computeInFlight reads the compute gauge from the exported registry.
func computeInFlight() float64 {
	families, err := metrics.GetRegistry().Gather()
	if err != nil {
		return -1
	}
	for _, f := range families {
		if f.GetName() == "bfhl_api_compute_in_flight" && len(f.GetMetric()) > 0 {
			return f.GetMetric()[0].GetGauge().GetValue()
		}
	}
	return 0
}

// eventuallyInFlight polls the gauge until it equals want or a second passes.
func eventuallyInFlight(want float64) float64 {
	deadline := time.Now().Add(time.Second)
	for {
		got := computeInFlight()
		if got == want || time.Now().After(deadline) {
			return got
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestService_ComputeInFlightGauge(t *testing.T) {
	Convey("Given a prime handler that holds its worker until released", t, func() {
		d := bfhl.NewDispatcher()
		release := make(chan struct{})
		d.Register(bfhl.OpPrime, func(context.Context, json.RawMessage) (any, error) {
			<-release
			return []int64{}, nil
		})

		svc := started(t,
			service.WithDispatcher(d),
			service.WithComputeWorkers(1),
			service.WithComputeTimeout(20*time.Millisecond),
		)
		var once sync.Once
		releaseJob := func() { once.Do(func() { close(release) }) }
		defer svc.Stop()
		defer releaseJob()

		baseline := computeInFlight()

		Convey("When the request times out", func() {
			_, _, err := svc.Handle(context.Background(), []byte(`{"prime": [2]}`))
			So(errors.Is(err, service.ErrComputeTimeout), ShouldBeTrue)

			Convey("Then the gauge still counts the running job until it finishes", func() {
				So(computeInFlight(), ShouldEqual, baseline+1)

				releaseJob()
				So(eventuallyInFlight(baseline), ShouldEqual, baseline)
			})
		})
	})
}
