package positions

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/elameta/quoteregistry/internal/listing"
	"github.com/elameta/quoteregistry/internal/pricing"
	"github.com/elameta/quoteregistry/pkg/config"
	"github.com/elameta/quoteregistry/pkg/db"
	"github.com/elameta/quoteregistry/pkg/db/models"
	pkgerrors "github.com/elameta/quoteregistry/pkg/errors"
	"github.com/elameta/quoteregistry/pkg/logger"
	"github.com/elameta/quoteregistry/pkg/metrics"
	"github.com/elameta/quoteregistry/pkg/pagination"
)

// OutcomeError labels listing requests that failed in storage.
const OutcomeError = "error"

// Service exposes the position registry operations.
type Service interface {
	Create(ctx context.Context, in PositionInput) (*PositionDTO, error)
	Update(ctx context.Context, id int64, in PositionInput) (*PositionDTO, error)
	Get(ctx context.Context, id int64) (*PositionDTO, error)
	Delete(ctx context.Context, id int64) error

	List(ctx context.Context, req listing.Request) (*ListResult, error)
	ListAll(ctx context.Context, req listing.Request) (*ListResult, error)
	Stats(ctx context.Context, req listing.Request) (*ClientStats, error)
	Suggestions(ctx context.Context) (map[string][]string, error)

	SavePriceLines(ctx context.Context, id int64, lines []pricing.LineInput) ([]PriceLineDTO, error)
	ResolvePrice(ctx context.Context, id int64, qty int) (*PriceResolution, error)
	CheckOverlaps(ctx context.Context, id int64) error
	OfferSnapshot(ctx context.Context, id int64, lineIDs []int64) (*OfferSnapshot, error)

	AddDrawing(ctx context.Context, id int64, upload DrawingUpload) (*DrawingDTO, error)
	DeleteDrawing(ctx context.Context, id, drawingID int64) error
}

// Options carries the optional collaborators of the service.
type Options struct {
	Listing        config.ListingConfig
	Metrics        *metrics.RegistryMetrics
	Cache          suggestionCache
	SuggestionsTTL time.Duration
	Media          mediaStore
}

type service struct {
	repo     *Repository
	dbClient *db.Client
	logg     *logger.Logger
	opts     Options
}

// NewService constructs the position service.
func NewService(repo *Repository, dbClient *db.Client, logg *logger.Logger, opts Options) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("position repository required")
	}
	if dbClient == nil {
		return nil, fmt.Errorf("db client required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{repo: repo, dbClient: dbClient, logg: logg, opts: opts}, nil
}

func (s *service) Create(ctx context.Context, in PositionInput) (*PositionDTO, error) {
	draft, draftErr := BuildDraft(in)
	planned, linesErr := pricing.PlanBatch(0, in.PriceLines)
	if err := mergeValidation("position is invalid", draftErr, prefixed("price_", linesErr)); err != nil {
		return nil, err
	}
	lineErrs := pkgerrors.FieldErrors{}
	for _, p := range planned {
		if p.Action != pricing.ActionCreate {
			lineErrs.Add(fmt.Sprintf("price_lines[%d].id", p.Index), "a new position cannot reference existing price lines")
		}
	}
	if err := lineErrs.Err("position is invalid"); err != nil {
		return nil, err
	}

	position := draft.Position
	err := s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if err := repo.Create(ctx, &position); err != nil {
			return err
		}
		if err := repo.ReplaceMaskingLines(ctx, position.ID, draft.MaskingLines); err != nil {
			return err
		}
		if err := repo.ReplaceMetalThicknesses(ctx, position.ID, draft.MetalThicknesses); err != nil {
			return err
		}
		for _, p := range planned {
			line := p.Line
			line.PositionID = position.ID
			if err := repo.CreatePriceLine(ctx, &line); err != nil {
				return err
			}
		}
		return syncCurrentPrice(ctx, repo, position.ID)
	})
	if err != nil {
		return nil, err
	}

	ctx = s.logg.WithPositionID(ctx, position.ID)
	s.logg.Info(ctx, "position.created")
	s.invalidateSuggestions(ctx)
	return s.Get(ctx, position.ID)
}

func (s *service) Update(ctx context.Context, id int64, in PositionInput) (*PositionDTO, error) {
	draft, err := BuildDraft(in)
	if err != nil {
		return nil, err
	}

	err = s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if _, err := repo.FindByID(ctx, id); err != nil {
			return err
		}
		position := draft.Position
		position.ID = id
		if err := repo.Update(ctx, &position); err != nil {
			return err
		}
		if err := repo.ReplaceMaskingLines(ctx, id, draft.MaskingLines); err != nil {
			return err
		}
		return repo.ReplaceMetalThicknesses(ctx, id, draft.MetalThicknesses)
	})
	if err != nil {
		return nil, err
	}

	ctx = s.logg.WithPositionID(ctx, id)
	s.logg.Info(ctx, "position.updated")
	s.invalidateSuggestions(ctx)
	return s.Get(ctx, id)
}

func (s *service) Get(ctx context.Context, id int64) (*PositionDTO, error) {
	p, err := s.repo.FindDetail(ctx, id)
	if err != nil {
		return nil, err
	}
	dto := NewPositionDTO(*p)
	return &dto, nil
}

func (s *service) Delete(ctx context.Context, id int64) error {
	var drawings []models.Drawing
	err := s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		var err error
		if drawings, err = repo.ListDrawings(ctx, id); err != nil {
			return err
		}
		return repo.Delete(ctx, id)
	})
	if err != nil {
		return err
	}

	ctx = s.logg.WithPositionID(ctx, id)
	for _, d := range drawings {
		s.removeDrawingFiles(ctx, d)
	}
	s.logg.Info(ctx, "position.deleted")
	s.invalidateSuggestions(ctx)
	return nil
}

func (s *service) List(ctx context.Context, req listing.Request) (*ListResult, error) {
	start := time.Now()
	plan := s.plan(ctx, req)

	total, err := s.repo.Count(ctx, plan)
	if err != nil {
		s.opts.Metrics.ObserveListing(OutcomeError, time.Since(start))
		return nil, err
	}
	size := pagination.NormalizePageSize(req.PageSize, s.opts.Listing.DefaultPageSize, s.opts.Listing.MaxPageSize)
	page, offset := pagination.Resolve(pagination.Params{Page: req.Page, PageSize: size}, total)

	rows, err := s.repo.List(ctx, plan, page.PageSize, offset)
	if err != nil {
		s.opts.Metrics.ObserveListing(OutcomeError, time.Since(start))
		return nil, err
	}
	s.opts.Metrics.ObserveListing(plan.Outcome(), time.Since(start))

	return &ListResult{
		Rows:          rows,
		Columns:       plan.Columns,
		Page:          page,
		InvalidFilter: plan.Filters.Invalid,
	}, nil
}

// ListAll returns every filtered row in listing order, for exports.
func (s *service) ListAll(ctx context.Context, req listing.Request) (*ListResult, error) {
	plan := s.plan(ctx, req)
	rows, err := s.repo.List(ctx, plan, -1, 0)
	if err != nil {
		return nil, err
	}
	total := int64(len(rows))
	return &ListResult{
		Rows:          rows,
		Columns:       plan.Columns,
		Page:          pagination.Page{Page: 1, PageSize: len(rows), Total: total, TotalPages: 1},
		InvalidFilter: plan.Filters.Invalid,
	}, nil
}

func (s *service) plan(ctx context.Context, req listing.Request) listing.Plan {
	plan := listing.NewPlan(req)
	if plan.Filters.Invalid {
		s.logg.Warn(s.logg.WithField(ctx, "filter_key", plan.Filters.InvalidKey), "listing.invalid_filter")
	}
	return plan
}

func (s *service) Stats(ctx context.Context, req listing.Request) (*ClientStats, error) {
	return s.repo.ClientStats(ctx, s.plan(ctx, req))
}

func (s *service) SavePriceLines(ctx context.Context, id int64, lines []pricing.LineInput) ([]PriceLineDTO, error) {
	planned, err := pricing.PlanBatch(id, lines)
	if err != nil {
		return nil, err
	}

	var saved []models.PriceLine
	var created, updated, deleted int
	err = s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if _, err := repo.FindByID(ctx, id); err != nil {
			return err
		}
		existing, err := repo.ListPriceLines(ctx, id)
		if err != nil {
			return err
		}
		owned := make(map[int64]struct{}, len(existing))
		for _, line := range existing {
			owned[line.ID] = struct{}{}
		}

		ownership := pkgerrors.FieldErrors{}
		var deletions []int64
		for _, p := range planned {
			if p.Action == pricing.ActionCreate {
				continue
			}
			if _, ok := owned[p.Line.ID]; !ok {
				ownership.Add(fmt.Sprintf("lines[%d].id", p.Index), "price line does not belong to this position")
				continue
			}
			if p.Action == pricing.ActionDelete {
				deletions = append(deletions, p.Line.ID)
			}
		}
		if err := ownership.Err("price lines are invalid"); err != nil {
			return err
		}

		if err := repo.DeletePriceLines(ctx, id, deletions); err != nil {
			return err
		}
		deleted = len(deletions)
		for _, p := range planned {
			line := p.Line
			switch p.Action {
			case pricing.ActionUpdate:
				if err := repo.UpdatePriceLine(ctx, &line); err != nil {
					return err
				}
				updated++
			case pricing.ActionCreate:
				if err := repo.CreatePriceLine(ctx, &line); err != nil {
					return err
				}
				created++
			}
		}
		if err := syncCurrentPrice(ctx, repo, id); err != nil {
			return err
		}
		saved, err = repo.ListPriceLines(ctx, id)
		return err
	})
	if err != nil {
		return nil, err
	}

	logCtx := s.logg.WithFields(s.logg.WithPositionID(ctx, id), map[string]any{
		"created": created,
		"updated": updated,
		"deleted": deleted,
	})
	s.logg.Info(logCtx, "prices.saved")

	out := make([]PriceLineDTO, 0, len(saved))
	for _, line := range saved {
		out = append(out, NewPriceLineDTO(line))
	}
	return out, nil
}

func (s *service) ResolvePrice(ctx context.Context, id int64, qty int) (*PriceResolution, error) {
	if qty < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "qty must not be negative").
			WithDetails(map[string]string{"qty": "qty must not be negative"})
	}
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		return nil, err
	}
	lines, err := s.repo.ActivePriceLines(ctx, id)
	if err != nil {
		return nil, err
	}
	res := &PriceResolution{Qty: qty}
	if match := pricing.ResolveActivePrice(lines, qty); match != nil {
		dto := NewPriceLineDTO(*match)
		res.Line = &dto
	}
	return res, nil
}

func (s *service) CheckOverlaps(ctx context.Context, id int64) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		return err
	}
	lines, err := s.repo.ActivePriceLines(ctx, id)
	if err != nil {
		return err
	}
	return pricing.CheckOverlaps(lines)
}

func (s *service) OfferSnapshot(ctx context.Context, id int64, lineIDs []int64) (*OfferSnapshot, error) {
	p, err := s.repo.FindDetail(ctx, id)
	if err != nil {
		return nil, err
	}
	snapshot := &OfferSnapshot{
		Position:   *p,
		PriceLines: pricing.SelectForOffer(p.PriceLines, lineIDs),
		Drawings:   p.Drawings,
	}
	snapshot.Position.PriceLines = nil
	snapshot.Position.Drawings = nil
	return snapshot, nil
}

func syncCurrentPrice(ctx context.Context, repo *Repository, positionID int64) error {
	active, err := repo.ActivePriceLines(ctx, positionID)
	if err != nil {
		return err
	}
	return repo.SetCurrentPrice(ctx, positionID, pricing.CurrentPrice(active))
}

// mergeValidation folds several validation errors into one. Non-validation
// errors are returned as they are.
func mergeValidation(message string, errs ...error) error {
	merged := pkgerrors.FieldErrors{}
	for _, err := range errs {
		if err == nil {
			continue
		}
		typed := pkgerrors.As(err)
		if typed == nil || typed.Code() != pkgerrors.CodeValidation {
			return err
		}
		details, ok := typed.Details().(map[string]string)
		if !ok {
			return err
		}
		for field, msg := range details {
			merged.Add(field, msg)
		}
	}
	return merged.Err(message)
}

func prefixed(prefix string, err error) error {
	if err == nil {
		return nil
	}
	typed := pkgerrors.As(err)
	if typed == nil {
		return err
	}
	details, ok := typed.Details().(map[string]string)
	if !ok {
		return err
	}
	out := pkgerrors.FieldErrors{}
	for field, msg := range details {
		out.Add(prefix+field, msg)
	}
	return out.Err(typed.Message())
}
