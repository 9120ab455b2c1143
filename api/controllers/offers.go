package controllers

import (
	"net/http"
	"strings"

	"github.com/elameta/quoteregistry/api/responses"
	"github.com/elameta/quoteregistry/internal/offers"
	pkgerrors "github.com/elameta/quoteregistry/pkg/errors"
	"github.com/elameta/quoteregistry/pkg/logger"
)

const maxOfferNotes = 4000

// PositionOfferPDF renders the customer offer for one position.
// Query: lang, show_prices, show_drawings, notes and repeated line ids.
func PositionOfferPDF(svc offers.Service, defaultLang offers.Lang, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			unavailable(w, r, logg, "offer service")
			return
		}
		id, err := pathID(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		lineIDs, err := queryIDs(r, "line")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		lang := defaultLang
		if raw := strings.TrimSpace(r.URL.Query().Get("lang")); raw != "" {
			lang = offers.ParseLang(raw)
		}

		notes := strings.TrimSpace(r.URL.Query().Get("notes"))
		if len(notes) > maxOfferNotes {
			responses.WriteError(r.Context(), logg, w,
				pkgerrors.New(pkgerrors.CodeValidation, "notes too long").WithDetails(map[string]string{"notes": "must be at most 4000 characters"}))
			return
		}

		opts := offers.Options{
			Lang:         lang,
			ShowPrices:   queryBool(r, "show_prices", true),
			ShowDrawings: queryBool(r, "show_drawings", true),
			ExtraNotes:   notes,
			LineIDs:      lineIDs,
		}

		doc, err := svc.Generate(r.Context(), id, opts)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		writeAttachment(w, "application/pdf", doc.Filename, doc.Body)
	}
}
