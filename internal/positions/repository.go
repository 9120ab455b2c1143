package positions

import (
	"context"
	"errors"
	"strings"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/elameta/quoteregistry/internal/listing"
	"github.com/elameta/quoteregistry/pkg/db/models"
	"github.com/elameta/quoteregistry/pkg/enums"
	pkgerrors "github.com/elameta/quoteregistry/pkg/errors"
)

// UnassignedClient labels positions with a blank client in stats.
const UnassignedClient = "Unassigned"

// Repository persists positions and their child collections.
type Repository struct {
	db *gorm.DB
}

// NewRepository builds a repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a repository bound to the provided transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{db: tx}
}

// Create inserts the position row only.
func (r *Repository) Create(ctx context.Context, p *models.Position) error {
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Create(p).Error; err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: create position")
	}
	return nil
}

// Update overwrites every editable column of the position. The cached
// current price and creation time are left alone.
func (r *Repository) Update(ctx context.Context, p *models.Position) error {
	res := r.db.WithContext(ctx).
		Model(&models.Position{}).
		Where("id = ?", p.ID).
		Select("*").
		Omit("id", "created_at", "current_price", clause.Associations).
		Updates(p)
	if res.Error != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, res.Error, "db: update position")
	}
	if res.RowsAffected == 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, "position not found")
	}
	return nil
}

// Delete removes the position and every child row.
func (r *Repository) Delete(ctx context.Context, id int64) error {
	db := r.db.WithContext(ctx)
	children := []any{&models.PriceLine{}, &models.Drawing{}, &models.MaskingLine{}, &models.MetalThicknessLine{}}
	for _, child := range children {
		if err := db.Where("position_id = ?", id).Delete(child).Error; err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: delete position children")
		}
	}
	res := db.Delete(&models.Position{}, id)
	if res.Error != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, res.Error, "db: delete position")
	}
	if res.RowsAffected == 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, "position not found")
	}
	return nil
}

// FindByID loads the position without associations.
func (r *Repository) FindByID(ctx context.Context, id int64) (*models.Position, error) {
	var p models.Position
	if err := r.db.WithContext(ctx).First(&p, id).Error; err != nil {
		return nil, notFoundOr(err, "position", "db: find position")
	}
	return &p, nil
}

// FindDetail loads the position with every child collection in display order.
func (r *Repository) FindDetail(ctx context.Context, id int64) (*models.Position, error) {
	var p models.Position
	err := r.db.WithContext(ctx).
		Preload("PriceLines", func(db *gorm.DB) *gorm.DB {
			return db.Order("status ASC").Order("qty_from ASC").Order("priority DESC").Order("id ASC")
		}).
		Preload("Drawings", func(db *gorm.DB) *gorm.DB {
			return db.Order("uploaded_at DESC").Order("id DESC")
		}).
		Preload("MaskingLines", func(db *gorm.DB) *gorm.DB {
			return db.Order("service ASC").Order("id ASC")
		}).
		Preload("MetalThicknessLines", func(db *gorm.DB) *gorm.DB {
			return db.Order("id ASC")
		}).
		First(&p, id).Error
	if err != nil {
		return nil, notFoundOr(err, "position", "db: find position detail")
	}
	return &p, nil
}

// ListPriceLines returns every line of the position.
func (r *Repository) ListPriceLines(ctx context.Context, positionID int64) ([]models.PriceLine, error) {
	var lines []models.PriceLine
	err := r.db.WithContext(ctx).
		Where("position_id = ?", positionID).
		Order("id ASC").
		Find(&lines).Error
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: list price lines")
	}
	return lines, nil
}

// ActivePriceLines returns the active lines in resolution order: highest
// priority first, then oldest id.
func (r *Repository) ActivePriceLines(ctx context.Context, positionID int64) ([]models.PriceLine, error) {
	var lines []models.PriceLine
	err := r.db.WithContext(ctx).
		Where("position_id = ? AND status = ?", positionID, enums.PriceLineStatusActive).
		Order("priority DESC").
		Order("id ASC").
		Find(&lines).Error
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: list active price lines")
	}
	return lines, nil
}

// CreatePriceLine inserts a new line.
func (r *Repository) CreatePriceLine(ctx context.Context, line *models.PriceLine) error {
	line.ID = 0
	if err := r.db.WithContext(ctx).Create(line).Error; err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: create price line")
	}
	return nil
}

// UpdatePriceLine overwrites an existing line of the same position.
func (r *Repository) UpdatePriceLine(ctx context.Context, line *models.PriceLine) error {
	res := r.db.WithContext(ctx).
		Model(&models.PriceLine{}).
		Where("id = ? AND position_id = ?", line.ID, line.PositionID).
		Select("*").
		Omit("id", "position_id", "created_at").
		Updates(line)
	if res.Error != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, res.Error, "db: update price line")
	}
	if res.RowsAffected == 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, "price line not found")
	}
	return nil
}

// DeletePriceLines removes the given lines of a position.
func (r *Repository) DeletePriceLines(ctx context.Context, positionID int64, ids []int64) error {
	if len(ids) == 0 {
		return nil
	}
	err := r.db.WithContext(ctx).
		Where("position_id = ? AND id IN ?", positionID, ids).
		Delete(&models.PriceLine{}).Error
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: delete price lines")
	}
	return nil
}

// SetCurrentPrice stores the cached price without touching updated_at.
func (r *Repository) SetCurrentPrice(ctx context.Context, positionID int64, price decimal.NullDecimal) error {
	err := r.db.WithContext(ctx).
		Model(&models.Position{}).
		Where("id = ?", positionID).
		UpdateColumn("current_price", price).Error
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: set current price")
	}
	return nil
}

// ReplaceMaskingLines swaps the position's masking rows for lines.
func (r *Repository) ReplaceMaskingLines(ctx context.Context, positionID int64, lines []models.MaskingLine) error {
	db := r.db.WithContext(ctx)
	if err := db.Where("position_id = ?", positionID).Delete(&models.MaskingLine{}).Error; err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: clear masking lines")
	}
	if len(lines) == 0 {
		return nil
	}
	for i := range lines {
		lines[i].ID = 0
		lines[i].PositionID = positionID
	}
	if err := db.Create(&lines).Error; err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: create masking lines")
	}
	return nil
}

// ReplaceMetalThicknesses swaps the position's metal thickness rows.
func (r *Repository) ReplaceMetalThicknesses(ctx context.Context, positionID int64, values []decimal.Decimal) error {
	db := r.db.WithContext(ctx)
	if err := db.Where("position_id = ?", positionID).Delete(&models.MetalThicknessLine{}).Error; err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: clear metal thickness lines")
	}
	if len(values) == 0 {
		return nil
	}
	rows := make([]models.MetalThicknessLine, 0, len(values))
	for _, v := range values {
		rows = append(rows, models.MetalThicknessLine{PositionID: positionID, ThicknessMM: v})
	}
	if err := db.Create(&rows).Error; err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: create metal thickness lines")
	}
	return nil
}

// ListDrawings returns the drawings newest first.
func (r *Repository) ListDrawings(ctx context.Context, positionID int64) ([]models.Drawing, error) {
	var drawings []models.Drawing
	err := r.db.WithContext(ctx).
		Where("position_id = ?", positionID).
		Order("uploaded_at DESC").
		Order("id DESC").
		Find(&drawings).Error
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: list drawings")
	}
	return drawings, nil
}

// CreateDrawing records an uploaded drawing.
func (r *Repository) CreateDrawing(ctx context.Context, d *models.Drawing) error {
	if err := r.db.WithContext(ctx).Create(d).Error; err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: create drawing")
	}
	return nil
}

// FindDrawing loads one drawing of the position.
func (r *Repository) FindDrawing(ctx context.Context, positionID, drawingID int64) (*models.Drawing, error) {
	var d models.Drawing
	err := r.db.WithContext(ctx).
		Where("id = ? AND position_id = ?", drawingID, positionID).
		First(&d).Error
	if err != nil {
		return nil, notFoundOr(err, "drawing", "db: find drawing")
	}
	return &d, nil
}

// DeleteDrawing removes one drawing row.
func (r *Repository) DeleteDrawing(ctx context.Context, positionID, drawingID int64) error {
	err := r.db.WithContext(ctx).
		Where("id = ? AND position_id = ?", drawingID, positionID).
		Delete(&models.Drawing{}).Error
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: delete drawing")
	}
	return nil
}

// Count returns how many positions match the plan's filters.
func (r *Repository) Count(ctx context.Context, plan listing.Plan) (int64, error) {
	var total int64
	err := plan.Where(r.db.WithContext(ctx).Model(&models.Position{})).Count(&total).Error
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: count positions")
	}
	return total, nil
}

// List returns one filtered, ordered window of positions with the listing
// annotations attached. A negative limit returns every row.
func (r *Repository) List(ctx context.Context, plan listing.Plan, limit, offset int) ([]listing.Row, error) {
	var positions []models.Position
	q := plan.Scope(r.db.WithContext(ctx).Model(&models.Position{}))
	if limit >= 0 {
		q = q.Limit(limit).Offset(offset)
	}
	if err := q.Find(&positions).Error; err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: list positions")
	}
	if len(positions) == 0 {
		return []listing.Row{}, nil
	}

	ids := make([]int64, 0, len(positions))
	for _, p := range positions {
		ids = append(ids, p.ID)
	}
	counts, err := r.drawingCounts(ctx, ids)
	if err != nil {
		return nil, err
	}
	spans, err := r.priceSpans(ctx, ids)
	if err != nil {
		return nil, err
	}

	rows := make([]listing.Row, 0, len(positions))
	for _, p := range positions {
		row := listing.Row{Position: p, DrawingCount: counts[p.ID]}
		if span, ok := spans[p.ID]; ok {
			row.PriceMin = span.PriceMin
			row.PriceMax = span.PriceMax
		}
		rows = append(rows, row)
	}
	return rows, nil
}

type drawingCountRow struct {
	PositionID int64
	Total      int64
}

func (r *Repository) drawingCounts(ctx context.Context, ids []int64) (map[int64]int64, error) {
	var rows []drawingCountRow
	err := r.db.WithContext(ctx).
		Model(&models.Drawing{}).
		Select("position_id, COUNT(*) AS total").
		Where("position_id IN ?", ids).
		Group("position_id").
		Scan(&rows).Error
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: count drawings")
	}
	out := make(map[int64]int64, len(rows))
	for _, row := range rows {
		out[row.PositionID] = row.Total
	}
	return out, nil
}

type priceSpanRow struct {
	PositionID int64
	PriceMin   decimal.NullDecimal
	PriceMax   decimal.NullDecimal
}

func (r *Repository) priceSpans(ctx context.Context, ids []int64) (map[int64]priceSpanRow, error) {
	var rows []priceSpanRow
	err := r.db.WithContext(ctx).
		Model(&models.PriceLine{}).
		Select("position_id, MIN(price) AS price_min, MAX(price) AS price_max").
		Where("position_id IN ? AND status = ?", ids, enums.PriceLineStatusActive).
		Group("position_id").
		Scan(&rows).Error
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: price spans")
	}
	out := make(map[int64]priceSpanRow, len(rows))
	for _, row := range rows {
		out[row.PositionID] = row
	}
	return out, nil
}

type clientCountRow struct {
	Client string
	Total  int64
}

// ClientStats counts the filtered positions per client, largest first.
func (r *Repository) ClientStats(ctx context.Context, plan listing.Plan) (*ClientStats, error) {
	var rows []clientCountRow
	err := plan.Where(r.db.WithContext(ctx).Model(&models.Position{})).
		Select("positions.client AS client, COUNT(*) AS total").
		Group("positions.client").
		Order("total DESC").
		Order("positions.client ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: client stats")
	}
	stats := &ClientStats{Labels: make([]string, 0, len(rows)), Values: make([]int64, 0, len(rows))}
	for _, row := range rows {
		label := row.Client
		if strings.TrimSpace(label) == "" {
			label = UnassignedClient
		}
		stats.Labels = append(stats.Labels, label)
		stats.Values = append(stats.Values, row.Total)
		stats.Total += row.Total
	}
	return stats, nil
}

// DistinctValues returns the sorted non-blank values of a suggestion field.
func (r *Repository) DistinctValues(ctx context.Context, field string) ([]string, error) {
	if !isSuggestionField(field) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unsupported suggestion field").
			WithDetails(map[string]string{"field": field})
	}
	var values []string
	err := r.db.WithContext(ctx).
		Model(&models.Position{}).
		Distinct().
		Where(field+" <> ''").
		Order(field+" ASC").
		Pluck(field, &values).Error
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: distinct "+field)
	}
	return values, nil
}

func isSuggestionField(field string) bool {
	for _, f := range SuggestionFields {
		if f == field {
			return true
		}
	}
	return false
}

func notFoundOr(err error, entity, msg string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return pkgerrors.New(pkgerrors.CodeNotFound, entity+" not found")
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, msg)
}
