package dashboard

import (
	"net/http"
	"time"

	"github.com/4Noyis/actuator-dashboard/internal/server/models"
)

// Classify partitions traces by exact response status: 200, 400, 404, 500 and
// everything else, including traces without a usable status. The input order is
// kept within each bucket.
func Classify(traces []models.Trace) models.TraceBuckets {
	b := emptyBuckets()
	for _, t := range traces {
		code, ok := t.StatusCode()
		if !ok {
			b.Other = append(b.Other, t)
			continue
		}
		switch code {
		case http.StatusOK:
			b.OK = append(b.OK, t)
		case http.StatusBadRequest:
			b.BadRequest = append(b.BadRequest, t)
		case http.StatusNotFound:
			b.NotFound = append(b.NotFound, t)
		case http.StatusInternalServerError:
			b.ServerError = append(b.ServerError, t)
		default:
			b.Other = append(b.Other, t)
		}
	}
	return b
}

func emptyBuckets() models.TraceBuckets {
	return models.TraceBuckets{
		OK:          []models.Trace{},
		BadRequest:  []models.Trace{},
		NotFound:    []models.Trace{},
		ServerError: []models.Trace{},
		Other:       []models.Trace{},
	}
}

func countBuckets(b models.TraceBuckets, at time.Time) models.BucketCounts {
	return models.BucketCounts{
		CollectedAt: at,
		OK:          len(b.OK),
		BadRequest:  len(b.BadRequest),
		NotFound:    len(b.NotFound),
		ServerError: len(b.ServerError),
		Other:       len(b.Other),
	}
}
