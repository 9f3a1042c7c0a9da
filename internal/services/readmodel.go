package services

import (
	"context"

	"github.com/rotisserie/eris"
	"golang.org/x/sync/errgroup"

	"konservasi-platform/internal/models"
	"konservasi-platform/internal/repository"
)

// readModel is the pair of lists every engine view is computed from
type readModel struct {
	assessments []models.Assessment
	areas       []models.Area
}

// loadReadModel fetches assessments and areas concurrently
func loadReadModel(ctx context.Context, assessments repository.AssessmentRepository, areas repository.AreaRepository, filter models.AssessmentFilter) (*readModel, error) {
	var rm readModel
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		list, err := assessments.List(gctx, filter)
		if err != nil {
			return eris.Wrap(err, "failed to load assessments")
		}
		rm.assessments = list
		return nil
	})
	g.Go(func() error {
		list, err := areas.List(gctx, "")
		if err != nil {
			return eris.Wrap(err, "failed to load areas")
		}
		rm.areas = list
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &rm, nil
}
