package artifacts

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/heart-failure-risk-portal/internal/domain"
)

const payloadQuery = "SELECT payload FROM artifacts WHERE name = ?"

// createArtifactDB writes an artifacts database the way the training
// export does, with the given rows.
func createArtifactDB(t *testing.T, rows map[string]string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "artifacts.db")

	db, err := sql.Open("sqlite", path)
	require.NoError(t, err)
	defer db.Close()

	_, err = db.Exec(`CREATE TABLE artifacts (name TEXT PRIMARY KEY, payload TEXT NOT NULL)`)
	require.NoError(t, err)
	for name, payload := range rows {
		_, err = db.Exec(`INSERT INTO artifacts (name, payload) VALUES (?, ?)`, name, payload)
		require.NoError(t, err)
	}
	return path
}

func readFixture(t *testing.T, name string) string {
	t.Helper()
	data, err := os.ReadFile(fixture(name))
	require.NoError(t, err)
	return string(data)
}

func TestLoadSQLite(t *testing.T) {
	path := createArtifactDB(t, map[string]string{
		"scaler":     readFixture(t, "scaler_standard.json"),
		"classifier": readFixture(t, "classifier_forest.json"),
	})

	b, err := LoadSQLite(context.Background(), path)
	require.NoError(t, err)

	summary := b.Describe()
	assert.Equal(t, domain.ArtifactSourceSQLite, summary.Source)
	assert.Equal(t, path, summary.Location)
	assert.Equal(t, ClassifierRandomForest, summary.ClassifierKind)
	assert.Equal(t, domain.LabelHighRisk, assess(t, b, criticalPatient))

	// Through the configured entry point as well
	b, err = Load(context.Background(), domain.ArtifactsConfig{Source: domain.ArtifactSourceSQLite, SQLitePath: path})
	require.NoError(t, err)
	assert.Equal(t, domain.LabelLowRisk, assess(t, b, typicalPatient))
}

func TestLoadSQLite_MissingDatabase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "absent.db")

	_, err := LoadSQLite(context.Background(), path)

	assert.True(t, errors.Is(err, domain.ErrArtifactLoad))
	_, statErr := os.Stat(path)
	assert.True(t, os.IsNotExist(statErr), "loader must not create the database")
}

func TestLoadSQLite_MissingRow(t *testing.T) {
	path := createArtifactDB(t, map[string]string{
		"scaler": readFixture(t, "scaler_standard.json"),
	})

	_, err := LoadSQLite(context.Background(), path)

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrArtifactLoad))
	assert.Contains(t, err.Error(), "classifier")
}

func TestLoadFromDB_QueryFailure(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(regexp.QuoteMeta(payloadQuery)).
		WithArgs("scaler").
		WillReturnError(errors.New("database is locked"))

	_, err = LoadFromDB(context.Background(), db)

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrArtifactLoad))
	assert.Contains(t, err.Error(), "database is locked")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLoadFromDB_IncompatiblePayload(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(regexp.QuoteMeta(payloadQuery)).
		WithArgs("scaler").
		WillReturnRows(sqlmock.NewRows([]string{"payload"}).AddRow(readFixture(t, "scaler_reordered.json")))
	mock.ExpectQuery(regexp.QuoteMeta(payloadQuery)).
		WithArgs("classifier").
		WillReturnRows(sqlmock.NewRows([]string{"payload"}).AddRow(readFixture(t, "classifier_logistic.json")))

	_, err = LoadFromDB(context.Background(), db)

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrIncompatibleArtifact))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLoadFromDB_NoRows(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(regexp.QuoteMeta(payloadQuery)).
		WithArgs("scaler").
		WillReturnRows(sqlmock.NewRows([]string{"payload"}))

	_, err = LoadFromDB(context.Background(), db)

	require.Error(t, err)
	assert.Contains(t, err.Error(), `no "scaler" row`)
	assert.NoError(t, mock.ExpectationsWereMet())
}
