package app

import "github.com/prometheus/client_golang/prometheus"

// Metrics counts business outcomes. HTTP request metrics live in the web adapter.
type Metrics struct {
	stockMovements  *prometheus.CounterVec
	ordersCreated   prometheus.Counter
	ordersFulfilled prometheus.Counter
	publishFailures *prometheus.CounterVec
}

// NewMetrics creates the business counters and registers them on reg.
// A nil reg leaves them unregistered.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		stockMovements: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "inventory_stock_movements_total",
				Help: "Stock movements recorded, by movement type",
			},
			[]string{"type"},
		),
		ordersCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "inventory_sales_orders_created_total",
			Help: "Sales orders created",
		}),
		ordersFulfilled: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "inventory_sales_orders_fulfilled_total",
			Help: "Sales orders fulfilled",
		}),
		publishFailures: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "inventory_event_publish_failures_total",
				Help: "Domain events that could not be published, by event type",
			},
			[]string{"event_type"},
		),
	}
	if reg != nil {
		reg.MustRegister(m.stockMovements, m.ordersCreated, m.ordersFulfilled, m.publishFailures)
	}
	return m
}
