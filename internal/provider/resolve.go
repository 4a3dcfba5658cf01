package provider

import (
	"context"

	"github.com/life-td/targetdb-cli/internal/tap"
	"github.com/life-td/targetdb-cli/internal/votable"
)

// Resolver maps foreign keys onto the canonical main identifier. Identity
// matching is deterministic and string-based; there is no positional
// matching. Keys with no match are simply absent from the result, which
// callers treat as "object outside the catalog".
type Resolver interface {
	// Resolve looks up canonical main identifiers. In numeric mode the
	// keys are canonical internal numeric ids rendered as strings; in
	// alias mode they are identifier strings.
	Resolve(ctx context.Context, keys []string, numeric bool) (map[string]string, error)
}

// TAPResolver resolves against the canonical service by uploading the
// keys and joining them server-side.
type TAPResolver struct {
	q tap.Querier
}

// NewTAPResolver creates a resolver backed by the canonical TAP service.
func NewTAPResolver(q tap.Querier) *TAPResolver {
	return &TAPResolver{q: q}
}

type resolveKey struct {
	ID string `vot:"id"`
}

type resolveRow struct {
	ID     string `vot:"id"`
	MainID string `vot:"main_id"`
}

const (
	resolveNumericADQL = `SELECT t.id AS id, b.main_id AS main_id
FROM TAP_UPLOAD.keys AS t
JOIN basic AS b ON b.oid = t.id`

	resolveAliasADQL = `SELECT t.id AS id, b.main_id AS main_id
FROM TAP_UPLOAD.keys AS t
JOIN ident AS i ON i.id = t.id
JOIN basic AS b ON b.oid = i.oidref`
)

// Resolve implements Resolver.
func (r *TAPResolver) Resolve(ctx context.Context, keys []string, numeric bool) (map[string]string, error) {
	if len(keys) == 0 {
		return map[string]string{}, nil
	}

	upload := make([]resolveKey, 0, len(keys))
	for _, k := range keys {
		upload = append(upload, resolveKey{ID: k})
	}
	table, err := votable.MarshalRows("keys", upload)
	if err != nil {
		return nil, err
	}

	adql := resolveAliasADQL
	if numeric {
		adql = resolveNumericADQL
	}

	result, err := r.q.Query(ctx, adql, map[string]*votable.Table{"keys": table})
	if err != nil {
		return nil, err
	}

	var rows []resolveRow
	if err := votable.UnmarshalRows(result, &rows); err != nil {
		return nil, err
	}

	out := make(map[string]string, len(rows))
	for _, row := range rows {
		out[row.ID] = row.MainID
	}
	return out, nil
}
