package dashboard

import (
	"time"

	"github.com/4Noyis/actuator-dashboard/internal/server/models"
)

const captionLayout = "Mon Jan 02 2006 15:04:05 MST"

var (
	chartLabels = []string{"200", "400", "404", "500"}
	chartColors = []string{
		"rgb(40, 167, 69)",  // 200
		"rgb(253, 126, 20)", // 400
		"rgb(0, 123, 255)",  // 404
		"rgb(220, 53, 69)",  // 500
	}
)

// BuildCharts derives the bar and pie datasets from bucket sizes. Both carry the
// same four values in label order 200, 400, 404, 500; the catch-all bucket is not charted.
func BuildCharts(b models.TraceBuckets, at time.Time) models.Charts {
	values := []int{len(b.OK), len(b.BadRequest), len(b.NotFound), len(b.ServerError)}
	caption := "Last 100 Requests as of " + at.Format(captionLayout)

	base := func(kind string) models.ChartData {
		return models.ChartData{
			Type:             kind,
			Labels:           append([]string(nil), chartLabels...),
			Values:           append([]int(nil), values...),
			BackgroundColors: append([]string(nil), chartColors...),
			BorderColors:     append([]string(nil), chartColors...),
			BorderWidth:      3,
			Caption:          caption,
		}
	}

	bar := base("bar")
	bar.BeginAtZero = true

	pie := base("pie")
	pie.ShowLegend = true

	return models.Charts{Bar: bar, Pie: pie}
}
