package artifacts

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"

	_ "modernc.org/sqlite"

	"github.com/heart-failure-risk-portal/internal/domain"
)

// Row names in the artifacts table
const (
	rowScaler     = "scaler"
	rowClassifier = "classifier"
)

// LoadSQLite reads both artifacts from an existing SQLite database holding
// a table artifacts(name TEXT PRIMARY KEY, payload TEXT NOT NULL) whose
// payloads are JSON documents. The database is only read.
func LoadSQLite(ctx context.Context, dbPath string) (*Bundle, error) {
	if _, err := os.Stat(dbPath); err != nil {
		return nil, loadError("database", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, loadError("database", fmt.Errorf("failed to open database: %w", err))
	}
	defer db.Close()

	bundle, err := LoadFromDB(ctx, db)
	if err != nil {
		return nil, err
	}
	bundle.summary.Location = dbPath
	return bundle, nil
}

// LoadFromDB reads both artifacts through an open connection
func LoadFromDB(ctx context.Context, db *sql.DB) (*Bundle, error) {
	scalerData, err := readPayload(ctx, db, rowScaler)
	if err != nil {
		return nil, loadError("scaler", err)
	}
	classifierData, err := readPayload(ctx, db, rowClassifier)
	if err != nil {
		return nil, loadError("classifier", err)
	}
	bundle, err := decodeBundle(scalerData, classifierData)
	if err != nil {
		return nil, err
	}
	bundle.summary.Source = domain.ArtifactSourceSQLite
	return bundle, nil
}

func readPayload(ctx context.Context, db *sql.DB, name string) ([]byte, error) {
	var payload string
	err := db.QueryRowContext(ctx, "SELECT payload FROM artifacts WHERE name = ?", name).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("no %q row in artifacts table", name)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query artifacts: %w", err)
	}
	return normalise([]byte(payload), "json")
}
