package postgres

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/thinktj1991/llamareport-retrieval/internal/core/domain"
)

func newRepoWithMock(t *testing.T) (*ChunkRepository, sqlmock.Sqlmock, func()) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New() error = %v", err)
	}
	return &ChunkRepository{db: db}, mock, func() { _ = db.Close() }
}

func TestSaveChunksUpsertsBatchInOneTx(t *testing.T) {
	repo, mock, done := newRepoWithMock(t)
	defer done()

	year := 2023
	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO chunks").
		WithArgs("c-1", "text", "经营情况良好", "annual-2023.pdf", nil, false, nil, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO chunks").
		WithArgs("t-1", "table", "营业收入 120亿", "annual-2023.pdf", int64(2023), true, "tab-1", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := repo.SaveChunks(context.Background(), []domain.Chunk{
		{ID: "c-1", Channel: domain.ChannelText, Text: "经营情况良好", SourceDocument: "annual-2023.pdf"},
		{ID: "t-1", Channel: domain.ChannelTable, Text: "营业收入 120亿", SourceDocument: "annual-2023.pdf",
			Year: &year, IsFinancial: true, TableID: "tab-1"},
	})
	if err != nil {
		t.Fatalf("SaveChunks() error = %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestSaveChunksRollsBackOnInsertError(t *testing.T) {
	repo, mock, done := newRepoWithMock(t)
	defer done()

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO chunks").
		WillReturnError(errors.New("disk full"))
	mock.ExpectRollback()

	err := repo.SaveChunks(context.Background(), []domain.Chunk{
		{ID: "c-1", Channel: domain.ChannelText, Text: "内容"},
	})
	if err == nil || !strings.Contains(err.Error(), "insert chunk c-1") {
		t.Fatalf("expected insert error, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestSaveChunksEmptyBatchIsNoop(t *testing.T) {
	repo, mock, done := newRepoWithMock(t)
	defer done()

	if err := repo.SaveChunks(context.Background(), nil); err != nil {
		t.Fatalf("SaveChunks(nil) error = %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestListByChannelScansNullableColumns(t *testing.T) {
	repo, mock, done := newRepoWithMock(t)
	defer done()

	rows := sqlmock.NewRows([]string{"id", "channel", "text_content", "source_document", "fiscal_year", "is_financial", "table_id"}).
		AddRow("t-1", "table", "营业收入 120亿", "annual-2023.pdf", 2023, true, "tab-1").
		AddRow("t-2", "table", "负债合计 80亿", "annual-2023.pdf", nil, true, "tab-2")
	mock.ExpectQuery("SELECT id, channel, text_content").
		WithArgs("table").
		WillReturnRows(rows)

	chunks, err := repo.ListByChannel(context.Background(), domain.ChannelTable)
	if err != nil {
		t.Fatalf("ListByChannel() error = %v", err)
	}
	if len(chunks) != 2 {
		t.Fatalf("expected 2 chunks, got %d", len(chunks))
	}
	if chunks[0].Year == nil || *chunks[0].Year != 2023 {
		t.Fatalf("first chunk year = %v, want 2023", chunks[0].Year)
	}
	if chunks[1].Year != nil {
		t.Fatalf("second chunk year = %v, want nil", chunks[1].Year)
	}
	if chunks[0].Channel != domain.ChannelTable || chunks[0].TableID != "tab-1" {
		t.Fatalf("unexpected first chunk: %+v", chunks[0])
	}
}

func TestCountByChannel(t *testing.T) {
	repo, mock, done := newRepoWithMock(t)
	defer done()

	mock.ExpectQuery("SELECT COUNT").
		WithArgs("text").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(42))

	count, err := repo.CountByChannel(context.Background(), domain.ChannelText)
	if err != nil {
		t.Fatalf("CountByChannel() error = %v", err)
	}
	if count != 42 {
		t.Fatalf("count = %d, want 42", count)
	}
}
