package repository

import (
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func TestTranslateError(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		wantNil   bool
		notFound  bool
		duplicate bool
	}{
		{name: "nil", err: nil, wantNil: true},
		{name: "gorm not found", err: gorm.ErrRecordNotFound, notFound: true},
		{name: "pgx unique", err: &pgconn.PgError{Code: "23505"}, duplicate: true},
		{name: "pq unique", err: &pq.Error{Code: "23505"}, duplicate: true},
		{name: "wrapped pgx unique", err: errors.Wrap(&pgconn.PgError{Code: "23505"}, "exec"), duplicate: true},
		{name: "foreign key", err: &pgconn.PgError{Code: "23503"}},
		{name: "other", err: errors.New("timeout")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := translateError(tt.err, "op")
			if tt.wantNil {
				assert.NoError(t, got)
				return
			}
			assert.Error(t, got)
			assert.Equal(t, tt.notFound, IsNotFound(got))
			assert.Equal(t, tt.duplicate, IsDuplicate(got))
		})
	}
}
