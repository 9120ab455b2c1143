package errors

import (
	"errors"
	"fmt"
	"sort"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
	"github.com/mattn/go-sqlite3"
)

// ErrorDump flattens an error for structured logs. Storage fields are filled
// for postgres (pgx or lib/pq) and sqlite driver errors.
type ErrorDump struct {
	TopMessage string   `json:"top_message"`
	Code       Code     `json:"code,omitempty"`
	Retryable  bool     `json:"retryable,omitempty"`
	Fields     []string `json:"fields,omitempty"`

	Chain []string `json:"chain,omitempty"`

	StoreCode       string `json:"store_code,omitempty"`
	StoreConstraint string `json:"store_constraint,omitempty"`
	StoreTable      string `json:"store_table,omitempty"`
	StoreColumn     string `json:"store_column,omitempty"`
	StoreDetail     string `json:"store_detail,omitempty"`
	StoreMessage    string `json:"store_message,omitempty"`
}

func Dump(err error) ErrorDump {
	if err == nil {
		return ErrorDump{}
	}

	d := ErrorDump{TopMessage: err.Error()}
	if te := As(err); te != nil {
		d.Code = te.Code()
		d.Retryable = MetadataFor(te.Code()).Retryable
		d.Fields = detailFields(te.Details())
	}
	for e := err; e != nil; e = errors.Unwrap(e) {
		d.Chain = append(d.Chain, fmt.Sprintf("%T: %v", e, e))
	}

	var pgxErr *pgconn.PgError
	var pqErr *pq.Error
	var liteErr sqlite3.Error
	switch {
	case errors.As(err, &pgxErr):
		d.StoreCode = pgxErr.Code
		d.StoreConstraint = pgxErr.ConstraintName
		d.StoreTable = pgxErr.TableName
		d.StoreColumn = pgxErr.ColumnName
		d.StoreDetail = pgxErr.Detail
		d.StoreMessage = pgxErr.Message
	case errors.As(err, &pqErr):
		d.StoreCode = string(pqErr.Code)
		d.StoreConstraint = pqErr.Constraint
		d.StoreTable = pqErr.Table
		d.StoreColumn = pqErr.Column
		d.StoreDetail = pqErr.Detail
		d.StoreMessage = pqErr.Message
	case errors.As(err, &liteErr):
		d.StoreCode = fmt.Sprintf("sqlite:%d", int(liteErr.ExtendedCode))
		d.StoreMessage = liteErr.Error()
	}
	return d
}

// detailFields lists the field keys of a validation details map.
func detailFields(details any) []string {
	var out []string
	switch m := details.(type) {
	case FieldErrors:
		return m.Fields()
	case map[string]string:
		for k := range m {
			out = append(out, k)
		}
	case map[string]any:
		for k := range m {
			out = append(out, k)
		}
	}
	sort.Strings(out)
	return out
}
