package artifacts

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/heart-failure-risk-portal/internal/database"
	"github.com/heart-failure-risk-portal/internal/domain"
)

const upsertPayload = `INSERT INTO artifacts (name, payload) VALUES (?, ?)
ON CONFLICT(name) DO UPDATE SET payload = excluded.payload, imported_at = CURRENT_TIMESTAMP`

// ImportSQLite checks the scaler and classifier files the same way Load
// does, then stores them as JSON in the SQLite database at dbPath, creating
// the database and its schema when missing. Nothing is written if either
// file is rejected.
func ImportSQLite(ctx context.Context, dbPath, scalerPath, classifierPath string, logger *logrus.Logger) (*Bundle, error) {
	scalerData, err := readDocument(scalerPath)
	if err != nil {
		return nil, loadError("scaler", err)
	}
	classifierData, err := readDocument(classifierPath)
	if err != nil {
		return nil, loadError("classifier", err)
	}
	bundle, err := decodeBundle(scalerData, classifierData)
	if err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	runner, err := database.NewMigrationRunner(db, logger)
	if err != nil {
		db.Close()
		return nil, err
	}
	defer runner.Close()

	if err := runner.Up(); err != nil {
		return nil, err
	}
	if err := StoreDB(ctx, db, scalerData, classifierData); err != nil {
		return nil, err
	}

	bundle.summary.Source = domain.ArtifactSourceSQLite
	bundle.summary.Location = dbPath
	return bundle, nil
}

// StoreDB replaces both artifact rows in one transaction
func StoreDB(ctx context.Context, db *sql.DB, scalerData, classifierData []byte) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, row := range []struct {
		name    string
		payload []byte
	}{
		{rowScaler, scalerData},
		{rowClassifier, classifierData},
	} {
		if _, err := tx.ExecContext(ctx, upsertPayload, row.name, string(row.payload)); err != nil {
			return fmt.Errorf("failed to store %s: %w", row.name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit artifacts: %w", err)
	}
	return nil
}
