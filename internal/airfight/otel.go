package airfight

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const instrumentationName = "github.com/OCAP2/airfight/internal/airfight"

func meter() metric.Meter {
	return otel.Meter(instrumentationName)
}

type instruments struct {
	shots     metric.Int64Counter
	hits      metric.Int64Counter
	misses    metric.Int64Counter
	destroyed metric.Int64Counter
	inFlight  metric.Int64ObservableGauge
}

func newInstruments(m metric.Meter, e *Engine) (*instruments, error) {
	ins := &instruments{}
	var err error

	ins.shots, err = m.Int64Counter(
		"airfight.shots",
		metric.WithDescription("Projectiles fired"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating shots counter: %w", err)
	}

	ins.hits, err = m.Int64Counter(
		"airfight.hits",
		metric.WithDescription("Projectiles that damaged their target"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating hits counter: %w", err)
	}

	ins.misses, err = m.Int64Counter(
		"airfight.misses",
		metric.WithDescription("Shots rolled as misses"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating misses counter: %w", err)
	}

	ins.destroyed, err = m.Int64Counter(
		"airfight.destroyed",
		metric.WithDescription("Aircraft destroyed in combat"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating destroyed counter: %w", err)
	}

	ins.inFlight, err = m.Int64ObservableGauge(
		"airfight.projectiles.in_flight",
		metric.WithDescription("Projectiles currently in flight"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating in-flight gauge: %w", err)
	}

	_, err = m.RegisterCallback(
		func(ctx context.Context, o metric.Observer) error {
			o.ObserveInt64(ins.inFlight, e.inFlight.Load())
			return nil
		},
		ins.inFlight,
	)
	if err != nil {
		return nil, fmt.Errorf("registering in-flight callback: %w", err)
	}

	return ins, nil
}

func kindAttr(ufo bool) metric.AddOption {
	if ufo {
		return metric.WithAttributes(attribute.String("side", "ufo"))
	}
	return metric.WithAttributes(attribute.String("side", "phalanx"))
}
