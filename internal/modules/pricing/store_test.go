package pricing

import (
	"database/sql"
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5"
)

func TestIsNoRows(t *testing.T) {
	// QueryRow.Scan on the native pgx path returns pgx.ErrNoRows, which does
	// not unwrap to sql.ErrNoRows on this pgx version; both spellings must
	// map to the not-found sentinels.
	if !isNoRows(pgx.ErrNoRows) {
		t.Error("pgx no-rows error not recognized")
	}
	if !isNoRows(sql.ErrNoRows) {
		t.Error("database/sql no-rows error not recognized")
	}
	if !isNoRows(fmt.Errorf("query: %w", pgx.ErrNoRows)) {
		t.Error("wrapped no-rows error not recognized")
	}
	if isNoRows(errors.New("connection refused")) {
		t.Error("unrelated error treated as not-found")
	}
	if isNoRows(nil) {
		t.Error("nil error treated as not-found")
	}
}
