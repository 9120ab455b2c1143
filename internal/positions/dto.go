package positions

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/elameta/quoteregistry/internal/listing"
	"github.com/elameta/quoteregistry/internal/pricing"
	"github.com/elameta/quoteregistry/pkg/db/models"
	"github.com/elameta/quoteregistry/pkg/pagination"
	"github.com/elameta/quoteregistry/pkg/types"
)

// SuggestionFields are the free-text form fields offered for autocomplete.
var SuggestionFields = []string{
	"client",
	"project",
	"metal",
	"preparation",
	"coating",
	"coating_standard",
	"color",
	"masking",
	"quality_tests",
	"packaging",
	"instructions",
}

// MaskingInput is one submitted masking row.
type MaskingInput struct {
	Service     string `json:"service" validate:"required,oneof=ktl powder"`
	Mask        string `json:"mask" validate:"max=255"`
	Places      *int   `json:"places" validate:"omitempty,min=0"`
	Description string `json:"description"`
}

// PositionInput is the full editable payload of a position. Thickness fields
// carry the raw expression typed by the user.
type PositionInput struct {
	Client  string `json:"client" validate:"max=255"`
	Project string `json:"project" validate:"max=255"`
	Code    string `json:"code" validate:"max=100"`
	Name    string `json:"name" validate:"max=255"`

	Metal            string           `json:"metal" validate:"max=255"`
	MetalThicknesses []string         `json:"metal_thicknesses"`
	Area             *decimal.Decimal `json:"area"`
	Weight           *decimal.Decimal `json:"weight"`
	XMM              *decimal.Decimal `json:"x_mm"`
	YMM              *decimal.Decimal `json:"y_mm"`
	ZMM              *decimal.Decimal `json:"z_mm"`

	ServiceKTL    bool `json:"service_ktl"`
	ServicePowder bool `json:"service_powder"`
	ServicePrep   bool `json:"service_prep"`

	KTLHangingMethod      string           `json:"ktl_hanging_method"`
	KTLFrameHanging       string           `json:"ktl_frame_hanging" validate:"max=255"`
	KTLPartsPerFrame      *int             `json:"ktl_parts_per_frame" validate:"omitempty,min=0"`
	KTLActualPerFrame     *int             `json:"ktl_actual_per_frame" validate:"omitempty,min=0"`
	KTLLengthMM           *decimal.Decimal `json:"ktl_length_mm"`
	KTLHeightMM           *decimal.Decimal `json:"ktl_height_mm"`
	KTLDepthMM            *decimal.Decimal `json:"ktl_depth_mm"`
	KTLHangingDescription string           `json:"ktl_hanging_description"`
	KTLThickness          string           `json:"ktl_thickness"`
	KTLNotes              string           `json:"ktl_notes"`

	PowderQtyPerHour         *decimal.Decimal `json:"powder_qty_per_hour"`
	PowderActualPerHour      *decimal.Decimal `json:"powder_actual_per_hour"`
	PowderPartsPerFrame      *int             `json:"powder_parts_per_frame" validate:"omitempty,min=0"`
	PowderActualPerFrame     *int             `json:"powder_actual_per_frame" validate:"omitempty,min=0"`
	PowderHangingDescription string           `json:"powder_hanging_description"`
	PowderThickness          string           `json:"powder_thickness"`
	PowderNotes              string           `json:"powder_notes"`
	PowderCode               string           `json:"powder_code" validate:"max=255"`
	PowderColor              string           `json:"powder_color" validate:"max=255"`
	PowderSupplier           string           `json:"powder_supplier" validate:"max=255"`
	PowderGloss              string           `json:"powder_gloss" validate:"max=255"`
	PowderPrice              *decimal.Decimal `json:"powder_price"`

	Color           string `json:"color" validate:"max=255"`
	Preparation     string `json:"preparation" validate:"max=255"`
	Coating         string `json:"coating" validate:"max=255"`
	CoatingStandard string `json:"coating_standard" validate:"max=255"`
	ServiceNotes    string `json:"service_notes"`

	BatchSizes      string      `json:"batch_sizes" validate:"max=255"`
	AnnualQtyFrom   *int        `json:"annual_qty_from" validate:"omitempty,min=0"`
	AnnualQtyTo     *int        `json:"annual_qty_to" validate:"omitempty,min=0"`
	ProjectLifeFrom *types.Date `json:"project_life_from"`
	ProjectLifeTo   *types.Date `json:"project_life_to"`
	LeadTimeDays    *int        `json:"lead_time_days" validate:"omitempty,min=0"`
	LeadTimeDate    *types.Date `json:"lead_time_date"`
	QualityTests    string      `json:"quality_tests"`

	PackagingType string `json:"packaging_type"`
	Packaging     string `json:"packaging"`
	Instructions  string `json:"instructions"`

	ExtraServices            string `json:"extra_services"`
	ExtraServicesDescription string `json:"extra_services_description"`

	Masking      string         `json:"masking"`
	MaskingLines []MaskingInput `json:"masking_lines" validate:"dive"`
	Notes        string         `json:"notes"`

	// PriceLines is only honored on create; updates go through SavePriceLines.
	PriceLines []pricing.LineInput `json:"price_lines,omitempty"`
}

// MaskingLineDTO is the read shape of a masking row.
type MaskingLineDTO struct {
	ID          int64  `json:"id"`
	Service     string `json:"service"`
	Mask        string `json:"mask"`
	Places      *int   `json:"places"`
	Description string `json:"description"`
}

// PriceLineDTO is the read shape of a price line.
type PriceLineDTO struct {
	ID        int64            `json:"id"`
	Price     *decimal.Decimal `json:"price"`
	Unit      string           `json:"unit"`
	QtyFrom   *int             `json:"qty_from"`
	QtyTo     *int             `json:"qty_to"`
	ValidFrom *types.Date      `json:"valid_from"`
	ValidTo   *types.Date      `json:"valid_to"`
	Status    string           `json:"status"`
	Priority  int              `json:"priority"`
	Note      string           `json:"note"`
	CreatedAt time.Time        `json:"created_at"`
	UpdatedAt time.Time        `json:"updated_at"`
}

// DrawingDTO is the read shape of an attached drawing.
type DrawingDTO struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	FilePath    string    `json:"file_path"`
	PreviewPath string    `json:"preview_path,omitempty"`
	UploadedAt  time.Time `json:"uploaded_at"`
}

// PositionDTO is the detail view of a position with its child collections.
type PositionDTO struct {
	ID      int64  `json:"id"`
	Client  string `json:"client"`
	Project string `json:"project"`
	Code    string `json:"code"`
	Name    string `json:"name"`

	Metal            string            `json:"metal"`
	MetalThickness   *decimal.Decimal  `json:"metal_thickness"`
	MetalThicknesses []decimal.Decimal `json:"metal_thicknesses"`
	Area             *decimal.Decimal  `json:"area"`
	Weight           *decimal.Decimal  `json:"weight"`
	XMM              *decimal.Decimal  `json:"x_mm"`
	YMM              *decimal.Decimal  `json:"y_mm"`
	ZMM              *decimal.Decimal  `json:"z_mm"`

	ServiceKTL    bool `json:"service_ktl"`
	ServicePowder bool `json:"service_powder"`
	ServicePrep   bool `json:"service_prep"`

	KTLHangingMethod      string           `json:"ktl_hanging_method"`
	KTLFrameHanging       string           `json:"ktl_frame_hanging"`
	KTLPartsPerFrame      *int             `json:"ktl_parts_per_frame"`
	KTLActualPerFrame     *int             `json:"ktl_actual_per_frame"`
	KTLLengthMM           *decimal.Decimal `json:"ktl_length_mm"`
	KTLHeightMM           *decimal.Decimal `json:"ktl_height_mm"`
	KTLDepthMM            *decimal.Decimal `json:"ktl_depth_mm"`
	KTLDimensionProduct   *decimal.Decimal `json:"ktl_dimension_product"`
	KTLHangingDescription string           `json:"ktl_hanging_description"`
	KTLThicknessUM        *decimal.Decimal `json:"ktl_thickness_um"`
	KTLThicknessText      string           `json:"ktl_thickness_txt"`
	KTLNotes              string           `json:"ktl_notes"`

	PowderQtyPerHour         *decimal.Decimal `json:"powder_qty_per_hour"`
	PowderActualPerHour      *decimal.Decimal `json:"powder_actual_per_hour"`
	PowderPartsPerFrame      *int             `json:"powder_parts_per_frame"`
	PowderActualPerFrame     *int             `json:"powder_actual_per_frame"`
	PowderHangingDescription string           `json:"powder_hanging_description"`
	PowderThicknessUM        *decimal.Decimal `json:"powder_thickness_um"`
	PowderThicknessText      string           `json:"powder_thickness_txt"`
	PowderNotes              string           `json:"powder_notes"`
	PowderCode               string           `json:"powder_code"`
	PowderColor              string           `json:"powder_color"`
	PowderSupplier           string           `json:"powder_supplier"`
	PowderGloss              string           `json:"powder_gloss"`
	PowderPrice              *decimal.Decimal `json:"powder_price"`

	Color           string `json:"color"`
	Preparation     string `json:"preparation"`
	Coating         string `json:"coating"`
	CoatingStandard string `json:"coating_standard"`
	ServiceNotes    string `json:"service_notes"`

	BatchSizes      string      `json:"batch_sizes"`
	AnnualQtyFrom   *int        `json:"annual_qty_from"`
	AnnualQtyTo     *int        `json:"annual_qty_to"`
	ProjectLifeFrom *types.Date `json:"project_life_from"`
	ProjectLifeTo   *types.Date `json:"project_life_to"`
	LeadTimeDays    *int        `json:"lead_time_days"`
	LeadTimeDate    *types.Date `json:"lead_time_date"`
	QualityTests    string      `json:"quality_tests"`

	PackagingType string `json:"packaging_type"`
	Packaging     string `json:"packaging"`
	Instructions  string `json:"instructions"`

	ExtraServices            string `json:"extra_services"`
	ExtraServicesDescription string `json:"extra_services_description"`

	MaskingType string `json:"masking_type"`
	Masking     string `json:"masking"`
	Notes       string `json:"notes"`

	CurrentPrice *decimal.Decimal `json:"current_price"`

	PriceLines   []PriceLineDTO   `json:"price_lines"`
	MaskingLines []MaskingLineDTO `json:"masking_lines"`
	Drawings     []DrawingDTO     `json:"drawings"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ListResult is one page of the position listing.
type ListResult struct {
	Rows          []listing.Row
	Columns       []listing.Column
	Page          pagination.Page
	InvalidFilter bool
}

// ClientStats counts filtered positions per client.
type ClientStats struct {
	Labels []string `json:"labels"`
	Values []int64  `json:"values"`
	Total  int64    `json:"total"`
}

// PriceResolution is the answer to "what does qty N cost".
type PriceResolution struct {
	Qty  int           `json:"qty"`
	Line *PriceLineDTO `json:"line"`
}

// OfferSnapshot is everything an offer document needs, read in one go.
type OfferSnapshot struct {
	Position   models.Position
	PriceLines []models.PriceLine
	Drawings   []models.Drawing
}

func nullDecimalPtr(nd decimal.NullDecimal) *decimal.Decimal {
	if !nd.Valid {
		return nil
	}
	d := nd.Decimal
	return &d
}

// NewPriceLineDTO maps a stored price line.
func NewPriceLineDTO(line models.PriceLine) PriceLineDTO {
	return PriceLineDTO{
		ID:        line.ID,
		Price:     nullDecimalPtr(line.Price),
		Unit:      line.Unit.String(),
		QtyFrom:   line.QtyFrom,
		QtyTo:     line.QtyTo,
		ValidFrom: types.DatePtr(line.ValidFrom),
		ValidTo:   types.DatePtr(line.ValidTo),
		Status:    line.Status.String(),
		Priority:  line.Priority,
		Note:      line.Note,
		CreatedAt: line.CreatedAt,
		UpdatedAt: line.UpdatedAt,
	}
}

// NewPositionDTO maps a position with whatever children were loaded.
func NewPositionDTO(p models.Position) PositionDTO {
	dto := PositionDTO{
		ID:      p.ID,
		Client:  p.Client,
		Project: p.Project,
		Code:    p.Code,
		Name:    p.Name,

		Metal:            p.Metal,
		MetalThickness:   nullDecimalPtr(p.MetalThickness),
		MetalThicknesses: make([]decimal.Decimal, 0, len(p.MetalThicknessLines)),
		Area:             nullDecimalPtr(p.Area),
		Weight:           nullDecimalPtr(p.Weight),
		XMM:              nullDecimalPtr(p.XMM),
		YMM:              nullDecimalPtr(p.YMM),
		ZMM:              nullDecimalPtr(p.ZMM),

		ServiceKTL:    p.ServiceKTL,
		ServicePowder: p.ServicePowder,
		ServicePrep:   p.ServicePrep,

		KTLHangingMethod:      string(p.KTLHangingMethod),
		KTLFrameHanging:       p.KTLFrameHanging,
		KTLPartsPerFrame:      p.KTLPartsPerFrame,
		KTLActualPerFrame:     p.KTLActualPerFrame,
		KTLLengthMM:           nullDecimalPtr(p.KTLLengthMM),
		KTLHeightMM:           nullDecimalPtr(p.KTLHeightMM),
		KTLDepthMM:            nullDecimalPtr(p.KTLDepthMM),
		KTLDimensionProduct:   nullDecimalPtr(p.KTLDimensionProduct),
		KTLHangingDescription: p.KTLHangingDescription,
		KTLThicknessUM:        nullDecimalPtr(p.KTLThicknessUM),
		KTLThicknessText:      p.KTLThicknessText,
		KTLNotes:              p.KTLNotes,

		PowderQtyPerHour:         nullDecimalPtr(p.PowderQtyPerHour),
		PowderActualPerHour:      nullDecimalPtr(p.PowderActualPerHour),
		PowderPartsPerFrame:      p.PowderPartsPerFrame,
		PowderActualPerFrame:     p.PowderActualPerFrame,
		PowderHangingDescription: p.PowderHangingDescription,
		PowderThicknessUM:        nullDecimalPtr(p.PowderThicknessUM),
		PowderThicknessText:      p.PowderThicknessText,
		PowderNotes:              p.PowderNotes,
		PowderCode:               p.PowderCode,
		PowderColor:              p.PowderColor,
		PowderSupplier:           p.PowderSupplier,
		PowderGloss:              p.PowderGloss,
		PowderPrice:              nullDecimalPtr(p.PowderPrice),

		Color:           p.Color,
		Preparation:     p.Preparation,
		Coating:         p.Coating,
		CoatingStandard: p.CoatingStandard,
		ServiceNotes:    p.ServiceNotes,

		BatchSizes:      p.BatchSizes,
		AnnualQtyFrom:   p.AnnualQtyFrom,
		AnnualQtyTo:     p.AnnualQtyTo,
		ProjectLifeFrom: types.DatePtr(p.ProjectLifeFrom),
		ProjectLifeTo:   types.DatePtr(p.ProjectLifeTo),
		LeadTimeDays:    p.LeadTimeDays,
		LeadTimeDate:    types.DatePtr(p.LeadTimeDate),
		QualityTests:    p.QualityTests,

		PackagingType: string(p.PackagingType),
		Packaging:     p.Packaging,
		Instructions:  p.Instructions,

		ExtraServices:            string(p.ExtraServices),
		ExtraServicesDescription: p.ExtraServicesDescription,

		MaskingType: string(p.MaskingType),
		Masking:     p.Masking,
		Notes:       p.Notes,

		CurrentPrice: nullDecimalPtr(p.CurrentPrice),

		PriceLines:   make([]PriceLineDTO, 0, len(p.PriceLines)),
		MaskingLines: make([]MaskingLineDTO, 0, len(p.MaskingLines)),
		Drawings:     make([]DrawingDTO, 0, len(p.Drawings)),

		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
	for _, mt := range p.MetalThicknessLines {
		dto.MetalThicknesses = append(dto.MetalThicknesses, mt.ThicknessMM)
	}
	for _, line := range p.PriceLines {
		dto.PriceLines = append(dto.PriceLines, NewPriceLineDTO(line))
	}
	for _, ml := range p.MaskingLines {
		dto.MaskingLines = append(dto.MaskingLines, MaskingLineDTO{
			ID:          ml.ID,
			Service:     string(ml.Service),
			Mask:        ml.Mask,
			Places:      ml.Places,
			Description: ml.Description,
		})
	}
	for _, d := range p.Drawings {
		dto.Drawings = append(dto.Drawings, DrawingDTO{
			ID:          d.ID,
			Title:       d.Title,
			FilePath:    d.FilePath,
			PreviewPath: d.PreviewPath,
			UploadedAt:  d.UploadedAt,
		})
	}
	return dto
}
