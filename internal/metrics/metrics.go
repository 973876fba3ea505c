package metrics

import (
    "net/http"
    "strconv"
    "time"

    "github.com/prometheus/client_golang/prometheus"
    "github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
    providerReqs = prometheus.NewCounterVec(
        prometheus.CounterOpts{
            Namespace: "imagegen",
            Name:      "provider_requests_total",
            Help:      "Total provider generation requests by provider, model ID and result",
        },
        []string{"provider", "model_id", "result"},
    )

    providerLatency = prometheus.NewHistogramVec(
        prometheus.HistogramOpts{
            Namespace: "imagegen",
            Name:      "provider_request_duration_seconds",
            Help:      "Duration of provider generation requests by provider",
            Buckets:   []float64{.25, .5, 1, 2.5, 5, 10, 30, 60, 120},
        },
        []string{"provider"},
    )

    generations = prometheus.NewCounterVec(
        prometheus.CounterOpts{
            Namespace: "imagegen",
            Name:      "generations_total",
            Help:      "Design generations by result (success, failed) and provider",
        },
        []string{"result", "provider"},
    )

    storedImages = prometheus.NewCounterVec(
        prometheus.CounterOpts{
            Namespace: "imagegen",
            Name:      "stored_images_total",
            Help:      "Generated images persisted by storage backend",
        },
        []string{"backend"},
    )

    failureKinds = prometheus.NewCounterVec(
        prometheus.CounterOpts{
            Namespace: "imagegen",
            Name:      "provider_failures_total",
            Help:      "Classified provider failures by provider and kind",
        },
        []string{"provider", "kind"},
    )
)

// Init registers collectors.
func Init() {
    prometheus.MustRegister(providerReqs, providerLatency, generations, storedImages, failureKinds)
}

// Handler returns the http.Handler for /metrics
func Handler() http.Handler { return promhttp.Handler() }

func ObserveProvider(provider string, modelID int, result string, dur time.Duration) {
    providerReqs.WithLabelValues(provider, strconv.Itoa(modelID), result).Inc()
    providerLatency.WithLabelValues(provider).Observe(dur.Seconds())
}

func IncGeneration(result, provider string) { generations.WithLabelValues(result, provider).Inc() }

func IncStored(backend string) { storedImages.WithLabelValues(backend).Inc() }

func IncFailure(provider, kind string) { failureKinds.WithLabelValues(provider, kind).Inc() }
