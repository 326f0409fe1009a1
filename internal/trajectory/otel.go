package trajectory

import (
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

const instrumentationName = "github.com/OCAP2/aimsolver/internal/trajectory"

func meter() metric.Meter {
	return otel.Meter(instrumentationName)
}
