// internal/store/store_test.go
//
// Unit-tests for the SQL adapter using sqlmock.
//
// Run: go test ./internal/store -v

package store

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"

	"github.com/yanizio/backoffice/internal/entity"
	"github.com/yanizio/backoffice/internal/record"
	"github.com/yanizio/backoffice/internal/workflow"
)

func newMock(t *testing.T) (*Store, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return New(sqlx.NewDb(db, "mysql")), mock
}

func TestGetAll_Users(t *testing.T) {
	s, mock := newMock(t)

	rows := sqlmock.NewRows([]string{"id", "username", "email", "role", "status", "last_login", "created_at"}).
		AddRow(1, "alice", "alice@example.com", "admin", "active", nil, "2024-01-01").
		AddRow(2, "bob", "bob@example.com", "user", "inactive", "2024-05-01", "2024-02-01")

	mock.ExpectQuery(regexp.QuoteMeta(
		`SELECT id, username, email, role, status, last_login, created_at FROM user ORDER BY id`,
	)).WillReturnRows(rows)

	got, err := s.GetAll(context.Background(), record.KindUser)
	if err != nil {
		t.Fatalf("GetAll: %v", err)
	}
	if len(got) != 2 || got[0].(record.User).Username != "alice" {
		t.Fatalf("decoded = %#v", got)
	}
	if got[0].(record.User).LastLogin != nil {
		t.Fatalf("NULL last_login must stay nil")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet SQL expectations: %v", err)
	}
}

func TestUpdate_DeterministicAssignments(t *testing.T) {
	s, mock := newMock(t)

	// Field names sort alphabetically, so the SET list is stable.
	mock.ExpectExec(regexp.QuoteMeta(
		`UPDATE post SET status = ?, title = ? WHERE id = ?`,
	)).WithArgs("draft", "renamed", 7).
		WillReturnResult(sqlmock.NewResult(0, 1))

	mock.ExpectQuery(regexp.QuoteMeta(
		`SELECT id, title, content, author, category, status, views, created_at FROM post WHERE id = ? LIMIT 1`,
	)).WithArgs(7).
		WillReturnRows(sqlmock.NewRows([]string{"id", "title", "content", "author", "category", "status", "views", "created_at"}).
			AddRow(7, "renamed", "", "", "", "draft", 0, "2024-01-01"))

	rec, err := s.Update(context.Background(), record.KindPost, 7,
		map[string]string{"title": "renamed", "status": "draft"})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if rec.(record.Post).Title != "renamed" {
		t.Fatalf("read-back = %#v", rec)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet SQL expectations: %v", err)
	}
}

func TestUpdate_UnknownFieldRejected(t *testing.T) {
	s, _ := newMock(t)
	_, err := s.Update(context.Background(), record.KindUser, 1,
		map[string]string{"password": "secret"})
	var ve *entity.ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("want ValidationError for unknown field, got %v", err)
	}
}

func TestDelete_ZeroRowsIsNotFound(t *testing.T) {
	s, mock := newMock(t)

	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM user WHERE id = ?`)).
		WithArgs(42).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := s.Delete(context.Background(), record.KindUser, 42)
	var nf *entity.NotFoundError
	if !errors.As(err, &nf) || nf.ID != 42 {
		t.Fatalf("want NotFoundError, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet SQL expectations: %v", err)
	}
}

func TestTransition_GuardedByFromStatus(t *testing.T) {
	s, mock := newMock(t)

	mock.ExpectExec(regexp.QuoteMeta(
		`UPDATE post SET status = ? WHERE id = ? AND status = ?`,
	)).WithArgs("published", 3, "draft").
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := s.Transition(context.Background(), 3, workflow.ActionPublish); err != nil {
		t.Fatalf("Transition: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet SQL expectations: %v", err)
	}
}

func TestTransition_StaleStateIsInvalid(t *testing.T) {
	s, mock := newMock(t)

	// The guarded UPDATE matches nothing, and the follow-up read finds the
	// post, so the failure is an illegal transition, not a missing row.
	mock.ExpectExec(regexp.QuoteMeta(
		`UPDATE post SET status = ? WHERE id = ? AND status = ?`,
	)).WithArgs("published", 3, "draft").
		WillReturnResult(sqlmock.NewResult(0, 0))

	mock.ExpectQuery(regexp.QuoteMeta(
		`SELECT id, title, content, author, category, status, views, created_at FROM post WHERE id = ? LIMIT 1`,
	)).WithArgs(3).
		WillReturnRows(sqlmock.NewRows([]string{"id", "title", "content", "author", "category", "status", "views", "created_at"}).
			AddRow(3, "t", "", "", "", "archived", 0, "2024-01-01"))

	err := s.Transition(context.Background(), 3, workflow.ActionPublish)
	if !errors.Is(err, workflow.ErrInvalidTransition) {
		t.Fatalf("want ErrInvalidTransition, got %v", err)
	}
}
