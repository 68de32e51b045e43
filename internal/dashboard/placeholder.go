package dashboard

import (
	"github.com/tinytelemetry/fleetlens/internal/apiclient"
	"github.com/tinytelemetry/fleetlens/internal/chart"
	"github.com/tinytelemetry/fleetlens/internal/model"
	"github.com/tinytelemetry/fleetlens/internal/sample"
)

const (
	placeholderRevenue    = 125430
	placeholderUsers      = 8421
	placeholderConversion = 4.2
	placeholderBounce     = 36.0

	sessionsColor = "#2563eb"
)

// Placeholder returns the data shown before the first load completes.
func Placeholder() Data {
	return Data{
		Aggregations: model.Aggregations{Servers: []model.ServerRecord{}},
		Source:       apiclient.SourceEmpty,
		Sessions:     sample.New().Sessions(sample.SessionDays),
		Signups: []model.Signup{
			{Name: "Alice J", Email: "alice@example.com", Plan: "Pro", Date: "2025-12-10"},
			{Name: "Ben K", Email: "ben@example.com", Plan: "Basic", Date: "2025-12-11"},
			{Name: "Cara S", Email: "cara@example.com", Plan: "Enterprise", Date: "2025-12-12"},
		},
	}
}

func placeholderProducts() chart.Series {
	return chart.Series{
		Labels: []string{"Basic", "Pro", "Enterprise"},
		Datasets: []chart.Dataset{{
			Label:  "Sales",
			Data:   []float64{1200, 900, 450},
			Colors: []string{chart.ColorAt(0), chart.ColorAt(1), chart.ColorAt(2)},
		}},
	}
}

func placeholderSources() chart.Series {
	return chart.Series{
		Labels: []string{"Organic", "Paid", "Referral"},
		Datasets: []chart.Dataset{{
			Label:  "Sources",
			Data:   []float64{55, 30, 15},
			Colors: []string{chart.ColorAt(3), chart.ColorAt(0), chart.ColorAt(4)},
		}},
	}
}
