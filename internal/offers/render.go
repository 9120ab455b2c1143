package offers

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/image"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	mconfig "github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/orientation"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"
	"github.com/johnfercher/maroto/v2/pkg/repository"

	"github.com/elameta/quoteregistry/internal/listing"
	"github.com/elameta/quoteregistry/internal/positions"
	"github.com/elameta/quoteregistry/pkg/config"
	"github.com/elameta/quoteregistry/pkg/db/models"
)

const offerFontFamily = "offer-sans"

// Config carries everything the renderer needs from the environment.
type Config struct {
	CompanyName     string
	CompanyLine1    string
	CompanyLine2    string
	LogoPath        string
	FontRegularPath string
	FontBoldPath    string
	MediaRoot       string
}

// ConfigFrom combines the offer settings with the media root drawings live under.
func ConfigFrom(cfg config.OfferConfig, mediaRoot string) Config {
	return Config{
		CompanyName:     cfg.CompanyName,
		CompanyLine1:    cfg.CompanyLine1,
		CompanyLine2:    cfg.CompanyLine2,
		LogoPath:        cfg.LogoPath,
		FontRegularPath: cfg.FontRegularPath,
		FontBoldPath:    cfg.FontBoldPath,
		MediaRoot:       mediaRoot,
	}
}

// Options shape a single offer document.
type Options struct {
	Lang         Lang
	ShowPrices   bool
	ShowDrawings bool
	ExtraNotes   string
	LineIDs      []int64
}

// DefaultOptions shows prices and drawings in the given language.
func DefaultOptions(lang Lang) Options {
	return Options{Lang: lang, ShowPrices: true, ShowDrawings: true}
}

// Renderer lays out offer documents with maroto.
type Renderer struct {
	cfg      Config
	previews *PreviewResolver
	fonts    *fontSet
	now      func() time.Time
}

type fontSet struct {
	builder func(b mconfig.Builder) mconfig.Builder
}

// NewRenderer loads the configured fonts up front so a broken font path fails
// at startup rather than on the first request. Without fonts the PDF core
// fonts are used, which cannot draw Lithuanian letters.
func NewRenderer(cfg Config) (*Renderer, error) {
	r := &Renderer{
		cfg:      cfg,
		previews: NewPreviewResolver(cfg.MediaRoot),
		now:      time.Now,
	}
	fonts, err := loadFonts(cfg.FontRegularPath, cfg.FontBoldPath)
	if err != nil {
		return nil, err
	}
	r.fonts = fonts
	return r, nil
}

func loadFonts(regular, bold string) (*fontSet, error) {
	if strings.TrimSpace(regular) == "" {
		return nil, nil
	}
	if strings.TrimSpace(bold) == "" {
		bold = regular
	}
	for _, p := range []string{regular, bold} {
		if _, err := os.Stat(p); err != nil {
			return nil, fmt.Errorf("offer font %s: %w", p, err)
		}
	}
	custom, err := repository.New().
		AddUTF8Font(offerFontFamily, fontstyle.Normal, regular).
		AddUTF8Font(offerFontFamily, fontstyle.Bold, bold).
		Load()
	if err != nil {
		return nil, fmt.Errorf("load offer fonts: %w", err)
	}
	return &fontSet{builder: func(b mconfig.Builder) mconfig.Builder {
		return b.WithCustomFonts(custom).WithDefaultFont(&props.Font{Family: offerFontFamily, Size: 9})
	}}, nil
}

// WithClock overrides the time source used for the offer date and footer.
func (r *Renderer) WithClock(now func() time.Time) *Renderer {
	r.now = now
	return r
}

// Render produces the PDF bytes for snapshot.
func (r *Renderer) Render(snapshot *positions.OfferSnapshot, opts Options) ([]byte, error) {
	if snapshot == nil {
		return nil, errors.New("offer snapshot required")
	}
	labels := LabelsFor(opts.Lang)
	generatedAt := r.now()

	builder := mconfig.NewBuilder().
		WithOrientation(orientation.Vertical).
		WithPageSize(pagesize.A4).
		WithLeftMargin(12).
		WithTopMargin(12).
		WithRightMargin(12).
		WithPageNumber(props.PageNumber{
			Pattern: "{current} / {total}",
			Place:   props.RightBottom,
			Size:    7,
			Color:   mutedColor,
		})
	if r.fonts != nil {
		builder = r.fonts.builder(builder)
	}
	m := maroto.New(builder.Build())

	p := &snapshot.Position
	r.addHeader(m, p, labels, generatedAt)

	hero, thumbs := splitDrawings(snapshot.Drawings, opts.ShowDrawings)
	if hero != nil {
		r.addHero(m, *hero)
	}

	r.addMainTable(m, BuildFieldRows(p, snapshot.PriceLines, opts.Lang, opts.ExtraNotes), labels)

	if opts.ShowPrices {
		addPriceTable(m, snapshot.PriceLines, opts.Lang, labels)
	}
	if opts.ShowDrawings {
		r.addThumbnails(m, hero, thumbs, labels)
	}

	m.AddRows(row.New(6))
	m.AddRows(text.NewRow(5, generatedAt.Format("2006-01-02 15:04"), props.Text{Size: 7, Align: align.Right, Color: mutedColor}))

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("generate offer pdf: %w", err)
	}
	return doc.GetBytes(), nil
}

var (
	mutedColor  = &props.Color{Red: 110, Green: 110, Blue: 110}
	headerColor = &props.Color{Red: 33, Green: 37, Blue: 41}
	whiteColor  = &props.Color{Red: 255, Green: 255, Blue: 255}
	stripeColor = &props.Color{Red: 246, Green: 247, Blue: 249}
	boxColor    = &props.Color{Red: 236, Green: 238, Blue: 241}
)

func (r *Renderer) addHeader(m core.Maroto, p *models.Position, labels Labels, at time.Time) {
	company := []string{r.cfg.CompanyName, r.cfg.CompanyLine1, r.cfg.CompanyLine2}
	companyCol := col.New(8)
	top := 0.0
	for i, line := range company {
		if strings.TrimSpace(line) == "" {
			continue
		}
		style := props.Text{Top: top, Size: 8, Align: align.Right, Color: mutedColor}
		if i == 0 {
			style = props.Text{Top: top, Size: 11, Style: fontstyle.Bold, Align: align.Right}
		}
		companyCol = companyCol.Add(text.New(line, style))
		top += 5
	}

	logoCol := col.New(4)
	if r.cfg.LogoPath != "" && IsImage(r.cfg.LogoPath) {
		if _, err := os.Stat(r.cfg.LogoPath); err == nil {
			logoCol = logoCol.Add(image.NewFromFile(r.cfg.LogoPath, props.Rect{Percent: 90}))
		}
	}
	m.AddRows(row.New(16).Add(logoCol, companyCol))
	m.AddRows(row.New(4))

	code := p.Code
	if code == "" {
		code = fmt.Sprintf("#%d", p.ID)
	}
	m.AddRows(
		row.New(10).Add(
			text.NewCol(7, labels.Title, props.Text{Size: 16, Style: fontstyle.Bold, Align: align.Left, Color: headerColor}),
			text.NewCol(5, fmt.Sprintf("%s: %s", labels.DateLabel, at.Format("2006-01-02")), props.Text{Top: 3, Size: 9, Align: align.Right}),
		),
		text.NewRow(6, fmt.Sprintf("%s: %s", labels.PositionLabel, code), props.Text{Size: 10, Style: fontstyle.Bold}),
	)
	if line := joinNonEmpty(" • ", strings.TrimSpace(p.Client), strings.TrimSpace(p.Project)); line != "" {
		m.AddRows(text.NewRow(6, line, props.Text{Size: 9, Color: mutedColor}))
	}
	m.AddRows(row.New(3))
}

func splitDrawings(drawings []models.Drawing, show bool) (*models.Drawing, []models.Drawing) {
	if !show || len(drawings) == 0 {
		return nil, nil
	}
	hero := drawings[0]
	rest := drawings[1:]
	if len(rest) > 2 {
		rest = rest[:2]
	}
	return &hero, rest
}

func (r *Renderer) addHero(m core.Maroto, d models.Drawing) {
	m.AddRows(row.New(62).Add(r.previewCol(12, d, 20)))
	m.AddRows(row.New(4))
}

func (r *Renderer) previewCol(size int, d models.Drawing, placeholderSize float64) core.Col {
	c := col.New(size)
	if p, ok, err := r.previews.Resolve(d); err == nil && ok {
		return c.Add(image.NewFromFile(p, props.Rect{Center: true, Percent: 95}))
	}
	return c.Add(text.New(Placeholder(d), props.Text{
		Top:   placeholderSize,
		Size:  placeholderSize,
		Style: fontstyle.Bold,
		Align: align.Center,
		Color: mutedColor,
	})).WithStyle(&props.Cell{BackgroundColor: boxColor})
}

func sectionTitle(m core.Maroto, title string) {
	m.AddRows(text.NewRow(8, title, props.Text{Top: 1, Size: 11, Style: fontstyle.Bold, Color: headerColor}))
}

func (r *Renderer) addMainTable(m core.Maroto, rows []FieldRow, labels Labels) {
	sectionTitle(m, labels.SectionMain)
	if len(rows) == 0 {
		m.AddRows(text.NewRow(6, labels.NoData, props.Text{Size: 9, Color: mutedColor}))
		return
	}
	for i, fr := range rows {
		var style *props.Cell
		if i%2 == 1 {
			style = &props.Cell{BackgroundColor: stripeColor}
		}
		lines := wrapLines(fr.Value, 70)
		labelCol := text.NewCol(4, fr.Label, props.Text{Top: 1, Left: 1, Size: 8, Style: fontstyle.Bold})
		valueCol := col.New(8)
		for j, line := range lines {
			valueCol = valueCol.Add(text.New(line, props.Text{Top: 1 + float64(j)*4.2, Size: 8}))
		}
		height := 6 + float64(len(lines)-1)*4.2
		if style != nil {
			labelCol = labelCol.WithStyle(style)
			valueCol = valueCol.WithStyle(style)
		}
		m.AddRows(row.New(height).Add(labelCol, valueCol))
	}
	m.AddRows(row.New(4))
}

// wrapLines splits value into display lines, breaking long paragraphs at
// roughly width runes so row heights can be sized up front.
func wrapLines(value string, width int) []string {
	var out []string
	for _, paragraph := range strings.Split(value, "\n") {
		paragraph = strings.TrimRight(paragraph, " \r")
		if utf8.RuneCountInString(paragraph) <= width {
			out = append(out, paragraph)
			continue
		}
		current := ""
		for _, word := range strings.Fields(paragraph) {
			if current != "" && utf8.RuneCountInString(current)+1+utf8.RuneCountInString(word) > width {
				out = append(out, current)
				current = word
				continue
			}
			current = joinNonEmpty(" ", current, word)
		}
		out = append(out, current)
	}
	if len(out) == 0 {
		out = []string{""}
	}
	return out
}

func addPriceTable(m core.Maroto, lines []models.PriceLine, lang Lang, labels Labels) {
	sectionTitle(m, labels.SectionPrices)
	if len(lines) == 0 {
		m.AddRows(text.NewRow(6, labels.NoPrices, props.Text{Size: 9, Color: mutedColor}))
		m.AddRows(row.New(4))
		return
	}

	head := props.Text{Top: 1.5, Size: 8, Style: fontstyle.Bold, Align: align.Center, Color: whiteColor}
	headCell := &props.Cell{BackgroundColor: headerColor}
	headers := []string{labels.ColPrice, labels.ColUnit, labels.ColQtyFrom, labels.ColQtyTo, labels.ColValidFrom, labels.ColValidTo}
	cols := make([]core.Col, 0, len(headers))
	for _, h := range headers {
		cols = append(cols, text.NewCol(2, h, head).WithStyle(headCell))
	}
	m.AddRows(row.New(7).Add(cols...))

	body := props.Text{Top: 1.5, Size: 8, Align: align.Center}
	for i, line := range lines {
		values := []string{
			orDash(trimmedDecimal(line.Price)),
			orDash(line.Unit.Label(string(lang))),
			orDash(listing.FormatInt(line.QtyFrom)),
			orDash(listing.FormatInt(line.QtyTo)),
			orDash(listing.FormatDate(line.ValidFrom)),
			orDash(listing.FormatDate(line.ValidTo)),
		}
		cols := make([]core.Col, 0, len(values))
		for _, v := range values {
			c := text.NewCol(2, v, body)
			if i%2 == 1 {
				c = c.WithStyle(&props.Cell{BackgroundColor: stripeColor})
			}
			cols = append(cols, c)
		}
		m.AddRows(row.New(6).Add(cols...))
	}
	m.AddRows(row.New(4))
}

func (r *Renderer) addThumbnails(m core.Maroto, hero *models.Drawing, thumbs []models.Drawing, labels Labels) {
	if hero == nil {
		sectionTitle(m, labels.SectionDrawings)
		m.AddRows(text.NewRow(6, labels.NoDrawings, props.Text{Size: 9, Color: mutedColor}))
		return
	}
	if len(thumbs) == 0 {
		return
	}
	sectionTitle(m, labels.SectionDrawings)
	cols := make([]core.Col, 0, 2)
	captions := make([]core.Col, 0, 2)
	for _, d := range thumbs {
		cols = append(cols, r.previewCol(6, d, 12))
		caption := d.Title
		if caption == "" {
			caption = pathBase(d.FilePath)
		}
		captions = append(captions, text.NewCol(6, caption, props.Text{Top: 1, Size: 7, Align: align.Center, Color: mutedColor}))
	}
	m.AddRows(row.New(45).Add(cols...), row.New(6).Add(captions...))
}

func pathBase(p string) string {
	p = strings.ReplaceAll(p, "\\", "/")
	if i := strings.LastIndex(p, "/"); i >= 0 {
		return p[i+1:]
	}
	return p
}

func orDash(v string) string {
	if strings.TrimSpace(v) == "" {
		return NoValue
	}
	return v
}
