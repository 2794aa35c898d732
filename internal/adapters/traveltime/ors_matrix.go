package traveltime

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"golang.org/x/sync/errgroup"

	"layover-route-service/internal/domain"
)

type matrixRequest struct {
	Locations [][]float64 `json:"locations"`
	Metrics   []string    `json:"metrics"`
	Sources   []int       `json:"sources,omitempty"`
}

type matrixResponse struct {
	Durations [][]*float64 `json:"durations"`
}

// fetchFullMatrix retrieves the complete pairwise duration table in a single
// matrix call and writes it into minutes. ORS reports seconds and uses null
// for pairs it cannot route.
func (o *ORSTravelTimeProvider) fetchFullMatrix(ctx context.Context, points []domain.Location, profile string, minutes [][]float64) error {
	mr, err := o.postMatrix(ctx, points, profile, nil)
	if err != nil {
		return err
	}

	if len(mr.Durations) != len(points) {
		return fmt.Errorf("expected %d duration rows, got %d", len(points), len(mr.Durations))
	}
	for i, row := range mr.Durations {
		if len(row) != len(points) {
			return fmt.Errorf("duration row %d has %d entries, want %d", i, len(row), len(points))
		}
		for j, cell := range row {
			minutes[i][j] = durationMinutes(cell)
		}
	}
	return nil
}

// fetchRows refreshes the origin rows the cache could not serve, one matrix
// call per row with a few in flight at a time. Each call asks for a single
// source against every destination.
func (o *ORSTravelTimeProvider) fetchRows(ctx context.Context, points []domain.Location, profile string, rows []int, minutes [][]float64) error {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(4)

	for _, i := range rows {
		i := i
		g.Go(func() error {
			row, err := o.fetchRow(gctx, points, profile, i)
			if err != nil {
				return fmt.Errorf("row %d: %w", i, err)
			}
			copy(minutes[i], row)
			return nil
		})
	}
	return g.Wait()
}

func (o *ORSTravelTimeProvider) fetchRow(ctx context.Context, points []domain.Location, profile string, source int) ([]float64, error) {
	mr, err := o.postMatrix(ctx, points, profile, []int{source})
	if err != nil {
		return nil, err
	}

	if len(mr.Durations) != 1 {
		return nil, fmt.Errorf("expected 1 duration row, got %d", len(mr.Durations))
	}
	row := mr.Durations[0]
	if len(row) != len(points) {
		return nil, fmt.Errorf("duration row has %d entries, want %d", len(row), len(points))
	}

	out := make([]float64, len(points))
	for j, cell := range row {
		out[j] = durationMinutes(cell)
	}
	return out, nil
}

// postMatrix issues one matrix request. A nil sources slice asks for the full
// all-to-all table.
func (o *ORSTravelTimeProvider) postMatrix(ctx context.Context, points []domain.Location, profile string, sources []int) (*matrixResponse, error) {
	endpoint := fmt.Sprintf("%s/v2/matrix/%s", o.baseURL, profile)

	locations := make([][]float64, 0, len(points))
	for _, p := range points {
		locations = append(locations, p.LonLat())
	}

	payload, err := json.Marshal(matrixRequest{
		Locations: locations,
		Metrics:   []string{"duration"},
		Sources:   sources,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal matrix request: %w", err)
	}

	resp, err := o.doWithRetry(ctx, func() (*http.Request, error) {
		return o.newRequest(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	})
	if err != nil {
		return nil, fmt.Errorf("matrix request failed: %w", err)
	}
	defer resp.Body.Close()

	var mr matrixResponse
	if err := json.NewDecoder(resp.Body).Decode(&mr); err != nil {
		return nil, fmt.Errorf("decode matrix response: %w", err)
	}
	return &mr, nil
}

// durationMinutes converts one ORS duration cell, null meaning no route.
func durationMinutes(seconds *float64) float64 {
	if seconds == nil {
		return domain.Unreachable()
	}
	return *seconds / 60
}
