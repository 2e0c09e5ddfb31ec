package models

// PluginConfig is a single named setting row. AssignmentRef is nil for
// global defaults and set for per-assignment overrides.
type PluginConfig struct {
	ID            int64  `db:"id"`
	AssignmentRef *int64 `db:"assignment_ref"`
	Name          string `db:"name"`
	Value         string `db:"value"`
}
