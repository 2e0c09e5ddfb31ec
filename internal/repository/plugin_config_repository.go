package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// PluginConfigRepository reads named settings rows. Lookups are
// presence-aware: a missing row returns a nil pointer, which is distinct
// from a row explicitly set to "0".
type PluginConfigRepository struct {
	db *sqlx.DB
}

// NewPluginConfigRepository constructs the repository.
func NewPluginConfigRepository(db *sqlx.DB) *PluginConfigRepository {
	return &PluginConfigRepository{db: db}
}

// GetAssignment returns the per-assignment override for a setting, or nil
// when no override exists.
func (r *PluginConfigRepository) GetAssignment(ctx context.Context, assignmentRef int64, name string) (*string, error) {
	const query = `SELECT value FROM edulegit_plugin_configs WHERE assignment_ref = $1 AND name = $2`
	return r.getValue(ctx, query, assignmentRef, name)
}

// GetGlobal returns the global value for a setting, or nil when unset.
func (r *PluginConfigRepository) GetGlobal(ctx context.Context, name string) (*string, error) {
	const query = `SELECT value FROM edulegit_plugin_configs WHERE assignment_ref IS NULL AND name = $1`
	return r.getValue(ctx, query, name)
}

func (r *PluginConfigRepository) getValue(ctx context.Context, query string, args ...interface{}) (*string, error) {
	var value string
	if err := r.db.GetContext(ctx, &value, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get plugin config: %w", err)
	}
	return &value, nil
}
