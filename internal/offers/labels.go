package offers

import (
	"strings"

	"github.com/elameta/quoteregistry/pkg/enums"
)

// Lang is an offer document language.
type Lang string

const (
	LangLT Lang = "lt"
	LangEN Lang = "en"
)

// ParseLang maps anything starting with "en" to English and everything else
// to Lithuanian.
func ParseLang(raw string) Lang {
	if strings.HasPrefix(strings.ToLower(strings.TrimSpace(raw)), "en") {
		return LangEN
	}
	return LangLT
}

// Labels are the fixed captions of an offer document.
type Labels struct {
	Title           string
	DateLabel       string
	PositionLabel   string
	SectionMain     string
	SectionPrices   string
	SectionDrawings string
	NoData          string
	NoPrices        string
	NoDrawings      string
	ColPrice        string
	ColUnit         string
	ColQtyFrom      string
	ColQtyTo        string
	ColValidFrom    string
	ColValidTo      string
	Yes             string
	No              string
	WorkingDays     string
	FilenamePrefix  string
}

var labelsByLang = map[Lang]Labels{
	LangLT: {
		Title:           "PASIŪLYMAS",
		DateLabel:       "Data",
		PositionLabel:   "Pozicija",
		SectionMain:     "Pagrindinė informacija",
		SectionPrices:   "Kainos (aktualios eilutės)",
		SectionDrawings: "Brėžinių miniatiūros",
		NoData:          "Nėra duomenų.",
		NoPrices:        "Nėra aktyvių kainų eilučių šiai pozicijai.",
		NoDrawings:      "Nėra brėžinių.",
		ColPrice:        "Kaina",
		ColUnit:         "Matas",
		ColQtyFrom:      "Kiekis nuo",
		ColQtyTo:        "Kiekis iki",
		ColValidFrom:    "Galioja nuo",
		ColValidTo:      "Galioja iki",
		Yes:             "Yra",
		No:              "Nėra",
		WorkingDays:     "darbo dienos",
		FilenamePrefix:  "pasiulymas",
	},
	LangEN: {
		Title:           "OFFER",
		DateLabel:       "Date",
		PositionLabel:   "Position",
		SectionMain:     "Main information",
		SectionPrices:   "Prices (active lines)",
		SectionDrawings: "Drawing thumbnails",
		NoData:          "No data.",
		NoPrices:        "No active price lines for this position.",
		NoDrawings:      "No drawings.",
		ColPrice:        "Price",
		ColUnit:         "Unit",
		ColQtyFrom:      "Qty from",
		ColQtyTo:        "Qty to",
		ColValidFrom:    "Valid from",
		ColValidTo:      "Valid to",
		Yes:             "Yes",
		No:              "No",
		WorkingDays:     "working days",
		FilenamePrefix:  "offer",
	},
}

// LabelsFor returns the captions for lang, falling back to Lithuanian.
func LabelsFor(lang Lang) Labels {
	if l, ok := labelsByLang[lang]; ok {
		return l
	}
	return labelsByLang[LangLT]
}

type fieldLabel struct{ lt, en string }

func (f fieldLabel) in(lang Lang) string {
	if lang == LangEN {
		return f.en
	}
	return f.lt
}

var (
	labelClient          = fieldLabel{"Klientas", "Customer"}
	labelProject         = fieldLabel{"Projektas", "Project"}
	labelCode            = fieldLabel{"Brėžinio kodas", "Drawing code"}
	labelName            = fieldLabel{"Detalės pavadinimas", "Part name"}
	labelMetal           = fieldLabel{"Metalo tipas", "Metal type"}
	labelMetalThickness  = fieldLabel{"Metalo storis (mm)", "Metal thickness (mm)"}
	labelArea            = fieldLabel{"Plotas (m²)", "Area (m²)"}
	labelWeight          = fieldLabel{"Svoris (kg)", "Weight (kg)"}
	labelServiceKTL      = fieldLabel{"Papildoma paslauga: KTL", "Extra service: KTL"}
	labelServicePowder   = fieldLabel{"Papildoma paslauga: Miltai", "Extra service: Powder coating"}
	labelServicePrep     = fieldLabel{"Papildoma paslauga: Paruošimas", "Extra service: Preparation"}
	labelHanging         = fieldLabel{"Kabinimo būdas", "Hanging method"}
	labelKTLThickness    = fieldLabel{"KTL dangos storis (µm)", "KTL coating thickness (µm)"}
	labelPowderThickness = fieldLabel{"Miltų dangos storis (µm)", "Powder coating thickness (µm)"}
	labelPreparation     = fieldLabel{"Paruošimas", "Preparation"}
	labelCoating         = fieldLabel{"Padengimas", "Coating"}
	labelCoatingStandard = fieldLabel{"Padengimo standartas", "Coating standard"}
	labelColor           = fieldLabel{"Spalva", "Color"}
	labelPowderCode      = fieldLabel{"Miltų kodas", "Powder code"}
	labelBatchSizes      = fieldLabel{"Partijų dydžiai", "Batch sizes"}
	labelQualityTests    = fieldLabel{"Kokybės testai", "Quality tests"}
	labelPackaging       = fieldLabel{"Pakavimas", "Packaging"}
	labelExtraServices   = fieldLabel{"Papildomos paslaugos", "Extra services"}
	labelLeadTime        = fieldLabel{"Atlikimo terminas", "Lead time"}
	labelPrice           = fieldLabel{"Kaina (EUR)", "Price (EUR)"}
	labelNotes           = fieldLabel{"Pastabos", "Notes"}
)

var hangingLabels = map[enums.HangingMethod]fieldLabel{
	enums.HangingMethodGarlands: {"Girliandos", "Garlands"},
	enums.HangingMethodTraverse: {"Traversai", "Traverses"},
	enums.HangingMethodHangers:  {"Pakabos", "Hangers"},
	enums.HangingMethodSpecial:  {"Specialus", "Special"},
}

var packagingLabels = map[enums.PackagingType]fieldLabel{
	enums.PackagingTypeLoose:    {"Palaidas", "Loose"},
	enums.PackagingTypeStandard: {"Standartinis", "Standard"},
	enums.PackagingTypeGood:     {"Geras", "Good"},
	enums.PackagingTypeCustom:   {"Individualus", "Custom"},
}
