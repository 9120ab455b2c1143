package errors

import (
	stdErrors "errors"
	"net/http"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetadataForKnownCodes(t *testing.T) {
	tests := []struct {
		code      Code
		status    int
		publicMsg string
		retryable bool
		detailsOK bool
	}{
		{code: CodeValidation, status: http.StatusBadRequest, publicMsg: "validation failed", detailsOK: true},
		{code: CodeNotFound, status: http.StatusNotFound, publicMsg: "resource not found"},
		{code: CodeConflict, status: http.StatusConflict, publicMsg: "conflict detected", detailsOK: true},
		{code: CodeTooLarge, status: http.StatusRequestEntityTooLarge, publicMsg: "payload too large"},
		{code: CodeInternal, status: http.StatusInternalServerError, publicMsg: "internal server error", retryable: true},
		{code: CodeDependency, status: http.StatusServiceUnavailable, publicMsg: "dependency unavailable", retryable: true, detailsOK: true},
	}

	for _, tt := range tests {
		meta := MetadataFor(tt.code)
		if meta.HTTPStatus != tt.status {
			t.Fatalf("code %s expected status %d got %d", tt.code, tt.status, meta.HTTPStatus)
		}
		if meta.PublicMessage != tt.publicMsg {
			t.Fatalf("code %s expected public message %q got %q", tt.code, tt.publicMsg, meta.PublicMessage)
		}
		if meta.Retryable != tt.retryable {
			t.Fatalf("code %s expected retryable %v got %v", tt.code, tt.retryable, meta.Retryable)
		}
		if meta.DetailsAllowed != tt.detailsOK {
			t.Fatalf("code %s expected details allowed %v got %v", tt.code, tt.detailsOK, meta.DetailsAllowed)
		}
	}
}

func TestMetadataForUnknownCodeDefaultsToInternal(t *testing.T) {
	meta := MetadataFor("SOMETHING_UNKNOWN")
	if meta.HTTPStatus != http.StatusInternalServerError {
		t.Fatalf("expected internal status, got %d", meta.HTTPStatus)
	}
}

func TestErrorConstructors(t *testing.T) {
	base := New(CodeValidation, "missing foo")
	if base.Code() != CodeValidation {
		t.Fatalf("expected validation code, got %s", base.Code())
	}
	if base.Message() != "missing foo" {
		t.Fatalf("unexpected message %q", base.Message())
	}
	if base.Details() != nil {
		t.Fatalf("details should be nil by default")
	}

	base.WithDetails(map[string]any{"field": "foo"})
	if base.Details() == nil {
		t.Fatalf("details should be preserved")
	}

	cause := stdErrors.New("boom")
	wrapped := Wrap(CodeConflict, cause, "ctx")
	if !stdErrors.Is(wrapped, cause) {
		t.Fatalf("Wrap did not preserve cause")
	}
	if wrapped.Code() != CodeConflict {
		t.Fatalf("unexpected code %s", wrapped.Code())
	}
}

func TestAsReturnsTypedError(t *testing.T) {
	err := New(CodeNotFound, "no position")
	if got := As(err); got == nil || got.Code() != CodeNotFound {
		t.Fatalf("As failed to return typed error")
	}
	if As(nil) != nil {
		t.Fatalf("As(nil) should return nil")
	}
}

func TestFieldErrorsAccumulate(t *testing.T) {
	fe := FieldErrors{}
	require.NoError(t, fe.Err(""))

	fe.Add("price", "is required")
	fe.Add("price", "second message is ignored")
	fe.Merge("lines[1].", FieldErrors{"qty_to": "must be >= qty_from"})

	assert.True(t, fe.Has("price"))
	assert.Equal(t, []string{"lines[1].qty_to", "price"}, fe.Fields())
	assert.Equal(t, "is required", fe["price"])

	err := fe.Err("price lines invalid")
	require.Error(t, err)
	typed := As(err)
	require.NotNil(t, typed)
	assert.Equal(t, CodeValidation, typed.Code())
	assert.Equal(t, "price lines invalid", typed.Message())
	details, ok := typed.Details().(map[string]string)
	require.True(t, ok)
	assert.Len(t, details, 2)

	var asFields FieldErrors
	require.True(t, stdErrors.As(err, &asFields))
}

func TestDumpCollectsChain(t *testing.T) {
	err := Wrap(CodeInternal, stdErrors.New("disk"), "save failed")
	dump := Dump(err)
	assert.Equal(t, CodeInternal, dump.Code)
	assert.Len(t, dump.Chain, 2)
	assert.Empty(t, dump.StoreCode)
}

func TestDumpListsValidationFields(t *testing.T) {
	errs := FieldErrors{}
	errs.Add("lines[1].price", "price is required")
	errs.Add("area", "area must not be negative")
	dump := Dump(errs.Err("position is invalid"))
	assert.Equal(t, CodeValidation, dump.Code)
	assert.Equal(t, []string{"area", "lines[1].price"}, dump.Fields)
	assert.False(t, dump.Retryable)
}

func TestDumpReadsStoreErrors(t *testing.T) {
	pgErr := Wrap(CodeConflict, &pgconn.PgError{Code: "23505", ConstraintName: "price_lines_pkey", Message: "duplicate key"}, "save price line")
	dump := Dump(pgErr)
	assert.Equal(t, "23505", dump.StoreCode)
	assert.Equal(t, "price_lines_pkey", dump.StoreConstraint)

	liteErr := Wrap(CodeInternal, sqlite3.Error{Code: sqlite3.ErrConstraint, ExtendedCode: sqlite3.ErrConstraintUnique}, "save position")
	dump = Dump(liteErr)
	assert.Equal(t, "sqlite:2067", dump.StoreCode)
	assert.NotEmpty(t, dump.StoreMessage)

	dependency := Dump(New(CodeDependency, "redis down"))
	assert.True(t, dependency.Retryable)
}
