package postgres

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/kirillkom/curve-comment-classifier/internal/core/domain"
)

func newArchiveWithMock(t *testing.T) (*CommentArchive, sqlmock.Sqlmock, func()) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New() error = %v", err)
	}
	return &CommentArchive{db: db}, mock, func() { _ = db.Close() }
}

func TestSaveBatchInsertsAllRecordsInOneTx(t *testing.T) {
	archive, mock, done := newArchiveWithMock(t)
	defer done()

	records := []domain.CommentRecord{
		{Source: "ICE", Curve: "BRENT", GroupingVar: "EU", Date: "2024-01-02", RawComment: "quote", StandardLabel: "broker"},
		{Source: "Platts", Curve: "WTI", GroupingVar: "US", Date: "", RawComment: "", StandardLabel: domain.FallbackLabel},
	}

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO labeled_comments").
		WithArgs("run-1", "ICE", "BRENT", "EU", "2024-01-02", "quote", "broker", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("INSERT INTO labeled_comments").
		WithArgs("run-1", "Platts", "WTI", "US", "", "", domain.FallbackLabel, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(2, 1))
	mock.ExpectCommit()

	if err := archive.SaveBatch(context.Background(), "run-1", records); err != nil {
		t.Fatalf("SaveBatch() error = %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestSaveBatchRollsBackOnInsertFailure(t *testing.T) {
	archive, mock, done := newArchiveWithMock(t)
	defer done()

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO labeled_comments").
		WillReturnError(errors.New("insert failed"))
	mock.ExpectRollback()

	err := archive.SaveBatch(context.Background(), "run-1", []domain.CommentRecord{{Source: "ICE", Curve: "BRENT"}})
	if err == nil {
		t.Fatalf("expected error")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestSaveBatchEmptyIsNoop(t *testing.T) {
	archive, mock, done := newArchiveWithMock(t)
	defer done()

	if err := archive.SaveBatch(context.Background(), "run-1", nil); err != nil {
		t.Fatalf("SaveBatch() error = %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}
