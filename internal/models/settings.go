package models

import (
	"context"

	"github.com/jmoiron/sqlx"
)

// Settings reads site-wide key/value settings.
type Settings struct {
	db *sqlx.DB
}

func NewSettings(conn *sqlx.DB) *Settings {
	return &Settings{db: conn}
}

// Get returns the value of key or ErrNotFound.
func (m *Settings) Get(ctx context.Context, key string) (string, error) {
	var v string
	if err := get(ctx, m.db, &v, "SELECT setting_value FROM settings WHERE setting_key = ?", key); err != nil {
		return "", err
	}
	return v, nil
}

// GetOr returns the value of key, or def when it is unset or unreadable.
func (m *Settings) GetOr(ctx context.Context, key, def string) string {
	v, err := m.Get(ctx, key)
	if err != nil {
		return def
	}
	return v
}

// All returns every setting.
func (m *Settings) All(ctx context.Context) (map[string]string, error) {
	rows, err := m.db.QueryxContext(ctx, "SELECT setting_key, setting_value FROM settings")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[string]string)
	for rows.Next() {
		var k, v string
		if err := rows.Scan(&k, &v); err != nil {
			return nil, err
		}
		out[k] = v
	}
	return out, rows.Err()
}
