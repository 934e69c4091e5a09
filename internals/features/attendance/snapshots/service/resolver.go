package service

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"golang.org/x/text/unicode/norm"

	"hajri_backend/internals/repository"
)

// Scope pencarian kode: mapping per batch+semester, katalog per semester.
type Scope struct {
	BatchID    uuid.UUID
	SemesterID uuid.UUID
}

// CodeResolver mengubah kode OCR jadi subject. ok=false → lanjut ke resolver berikutnya.
type CodeResolver interface {
	Name() string
	Resolve(ctx context.Context, scope Scope, code string) (subjectID uuid.UUID, ok bool, err error)
}

// NormalizeCode: NFKC (huruf full-width dari OCR) + trim.
func NormalizeCode(code string) string {
	return strings.TrimSpace(norm.NFKC.String(code))
}

/* ===== mapping table ===== */

type MappingResolver struct{ Store repository.ReferenceStore }

func (MappingResolver) Name() string { return "mapping" }

func (r MappingResolver) Resolve(ctx context.Context, scope Scope, code string) (uuid.UUID, bool, error) {
	m, err := r.Store.FindSubjectMapping(ctx, scope.BatchID, scope.SemesterID, code)
	if err != nil {
		if repository.IsNotFound(err) {
			return uuid.Nil, false, nil
		}
		return uuid.Nil, false, errors.Wrap(err, "find subject mapping")
	}
	return m.SubjectCodeMappingSubjectID, true, nil
}

/* ===== katalog semester ===== */

type CatalogResolver struct {
	Store           repository.ReferenceStore
	CaseInsensitive bool
}

func (r CatalogResolver) Name() string {
	if r.CaseInsensitive {
		return "catalog_ci"
	}
	return "catalog"
}

func (r CatalogResolver) Resolve(ctx context.Context, scope Scope, code string) (uuid.UUID, bool, error) {
	s, err := r.Store.FindSubjectByCode(ctx, scope.SemesterID, code, r.CaseInsensitive)
	if err != nil {
		if repository.IsNotFound(err) {
			return uuid.Nil, false, nil
		}
		return uuid.Nil, false, errors.Wrap(err, "find subject by code")
	}
	return s.SubjectID, true, nil
}

// DefaultChain: mapping → kode persis → case-insensitive.
func DefaultChain(store repository.ReferenceStore) []CodeResolver {
	return []CodeResolver{
		MappingResolver{Store: store},
		CatalogResolver{Store: store},
		CatalogResolver{Store: store, CaseInsensitive: true},
	}
}

// ResolveCode berhenti di resolver pertama yang ketemu.
func ResolveCode(ctx context.Context, chain []CodeResolver, scope Scope, code string) (uuid.UUID, string, bool, error) {
	code = NormalizeCode(code)
	if code == "" {
		return uuid.Nil, "", false, nil
	}
	for _, r := range chain {
		id, ok, err := r.Resolve(ctx, scope, code)
		if err != nil {
			return uuid.Nil, r.Name(), false, err
		}
		if ok {
			return id, r.Name(), true, nil
		}
	}
	return uuid.Nil, "", false, nil
}
