package persistence

import (
	"context"
	"database/sql"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/warehouse/backend/internal/domain/document"
	"github.com/warehouse/backend/internal/domain/shared"
)

func newMockDocumentRepository(t *testing.T) (*GormDocumentRepository, sqlmock.Sqlmock, *sql.DB) {
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)

	dialector := postgres.New(postgres.Config{
		Conn:       mockDB,
		DriverName: "postgres",
	})

	gormDB, err := gorm.Open(dialector, &gorm.Config{
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)

	return NewGormDocumentRepository(gormDB), mock, mockDB
}

func testDocument(t *testing.T) *document.Document {
	t.Helper()
	doc, err := document.NewDocument("RK20260831-0001", document.BusinessPurchaseIn, uuid.New(), uuid.New())
	require.NoError(t, err)
	return doc
}

func submittedDocument(t *testing.T) *document.Document {
	t.Helper()
	doc := testDocument(t)
	_, err := doc.AddLine(uuid.New(), "Widget", "W-001", "", decimal.NewFromInt(10), decimal.NewFromInt(2))
	require.NoError(t, err)
	require.NoError(t, doc.Submit())
	return doc
}

func documentRows(doc *document.Document) *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "order_number", "business_type", "status", "warehouse_id", "applicant_id", "version",
	}).AddRow(
		doc.ID, doc.OrderNumber, doc.BusinessType, doc.Status, doc.WarehouseID, doc.ApplicantID, doc.Version,
	)
}

func TestGormDocumentRepository_FindByID(t *testing.T) {
	t.Run("finds document and preloads lines", func(t *testing.T) {
		repo, mock, mockDB := newMockDocumentRepository(t)
		defer mockDB.Close()

		doc := testDocument(t)
		mock.ExpectQuery(`SELECT \* FROM "documents" WHERE id = \$1`).
			WithArgs(doc.ID, 1).
			WillReturnRows(documentRows(doc))
		mock.ExpectQuery(`SELECT \* FROM "document_lines" WHERE "document_lines"\."document_id" = \$1`).
			WithArgs(doc.ID).
			WillReturnRows(sqlmock.NewRows([]string{"id", "document_id"}))

		found, err := repo.FindByID(context.Background(), doc.ID)

		require.NoError(t, err)
		assert.Equal(t, doc.OrderNumber, found.OrderNumber)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("maps missing document to not found", func(t *testing.T) {
		repo, mock, mockDB := newMockDocumentRepository(t)
		defer mockDB.Close()

		mock.ExpectQuery(`SELECT \* FROM "documents"`).
			WillReturnError(gorm.ErrRecordNotFound)

		_, err := repo.FindByID(context.Background(), uuid.New())

		assert.ErrorIs(t, err, shared.ErrNotFound)
	})
}

func TestGormDocumentRepository_FindByIDForUpdate(t *testing.T) {
	t.Run("locks the header row", func(t *testing.T) {
		repo, mock, mockDB := newMockDocumentRepository(t)
		defer mockDB.Close()

		doc := testDocument(t)
		mock.ExpectQuery(`SELECT \* FROM "documents" WHERE id = \$1 .* FOR UPDATE`).
			WithArgs(doc.ID, 1).
			WillReturnRows(documentRows(doc))
		mock.ExpectQuery(`SELECT \* FROM "document_lines" WHERE document_id = \$1`).
			WithArgs(doc.ID).
			WillReturnRows(sqlmock.NewRows([]string{"id", "document_id"}))

		found, err := repo.FindByIDForUpdate(context.Background(), doc.ID)

		require.NoError(t, err)
		assert.Equal(t, doc.ID, found.ID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormDocumentRepository_SaveWithLock(t *testing.T) {
	t.Run("updates the header and prunes removed lines", func(t *testing.T) {
		repo, mock, mockDB := newMockDocumentRepository(t)
		defer mockDB.Close()

		doc := testDocument(t)
		line, err := doc.AddLine(uuid.New(), "Widget", "W-001", "", decimal.NewFromInt(10), decimal.NewFromInt(2))
		require.NoError(t, err)
		require.NoError(t, doc.RemoveLine(line.ID))

		mock.ExpectExec(`UPDATE "documents" SET .* WHERE \(?id = \$\d+ AND version = \$\d+\)?`).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec(`DELETE FROM "document_lines" WHERE document_id = \$1`).
			WithArgs(doc.ID).
			WillReturnResult(sqlmock.NewResult(0, 1))

		err = repo.SaveWithLock(context.Background(), doc)

		require.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("reports a conflict when the version moved on", func(t *testing.T) {
		repo, mock, mockDB := newMockDocumentRepository(t)
		defer mockDB.Close()

		doc := submittedDocument(t)

		mock.ExpectExec(`UPDATE "documents" SET .* WHERE \(?id = \$\d+ AND version = \$\d+\)?`).
			WillReturnResult(sqlmock.NewResult(0, 0))

		err := repo.SaveWithLock(context.Background(), doc)

		require.Error(t, err)
		assert.True(t, shared.IsCode(err, "CONCURRENCY_CONFLICT"))
	})
}

func TestGormDocumentRepository_ExistsByOrderNumber(t *testing.T) {
	repo, mock, mockDB := newMockDocumentRepository(t)
	defer mockDB.Close()

	mock.ExpectQuery(`SELECT count\(\*\) FROM "documents" WHERE order_number = \$1`).
		WithArgs("RK20260831-0001").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	exists, err := repo.ExistsByOrderNumber(context.Background(), "RK20260831-0001")

	require.NoError(t, err)
	assert.True(t, exists)
}
