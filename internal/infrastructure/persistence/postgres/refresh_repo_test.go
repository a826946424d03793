package postgres

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	authDomain "token-auth/internal/domain/auth"

	"github.com/DATA-DOG/go-sqlmock"
)

func TestRefreshRepo_Save(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to open sqlmock: %s", err)
	}
	defer db.Close()

	repo := NewRefreshRepo(db)
	now := time.Now()
	rec := authDomain.NewRefreshRecord(authDomain.User{ID: "user-1", Email: "a@example.com"}, "t-1", now.Add(time.Hour), now)

	mock.ExpectExec("INSERT INTO refresh_tokens").
		WithArgs(rec.UserID, rec.TokenHash, rec.Email, rec.DisplayName, rec.PhotoURL, rec.ExpiresAt, rec.CreatedAt).
		WillReturnResult(sqlmock.NewResult(1, 1))

	if err := repo.Save(context.Background(), rec); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestRefreshRepo_Get(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to open sqlmock: %s", err)
	}
	defer db.Close()

	repo := NewRefreshRepo(db)
	now := time.Now()
	rows := sqlmock.NewRows([]string{"user_id", "token_hash", "email", "display_name", "photo_url", "expires_at", "created_at"}).
		AddRow("user-1", authDomain.HashToken("t-1"), "a@example.com", "", "", now.Add(time.Hour), now)

	mock.ExpectQuery("SELECT (.+) FROM refresh_tokens").
		WithArgs("user-1").
		WillReturnRows(rows)

	rec, err := repo.Get(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if !rec.Matches("t-1") || rec.Email != "a@example.com" {
		t.Errorf("unexpected record: %+v", rec)
	}

	t.Run("NotFound", func(t *testing.T) {
		mock.ExpectQuery("SELECT (.+) FROM refresh_tokens").
			WithArgs("user-2").
			WillReturnError(sql.ErrNoRows)
		if _, err := repo.Get(context.Background(), "user-2"); !errors.Is(err, authDomain.ErrRefreshNotFound) {
			t.Errorf("expected ErrRefreshNotFound, got %v", err)
		}
	})

	t.Run("DriverError", func(t *testing.T) {
		mock.ExpectQuery("SELECT (.+) FROM refresh_tokens").
			WithArgs("user-3").
			WillReturnError(errors.New("conn reset"))
		_, err := repo.Get(context.Background(), "user-3")
		if err == nil || errors.Is(err, authDomain.ErrRefreshNotFound) {
			t.Errorf("expected raw driver error, got %v", err)
		}
	})
}

func TestRefreshRepo_Delete(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to open sqlmock: %s", err)
	}
	defer db.Close()

	repo := NewRefreshRepo(db)
	mock.ExpectExec("DELETE FROM refresh_tokens WHERE user_id").
		WithArgs("user-1").
		WillReturnResult(sqlmock.NewResult(0, 0))

	if err := repo.Delete(context.Background(), "user-1"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
}

func TestRefreshRepo_PurgeExpired(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to open sqlmock: %s", err)
	}
	defer db.Close()

	repo := NewRefreshRepo(db)
	now := time.Now()
	mock.ExpectExec("DELETE FROM refresh_tokens WHERE expires_at").
		WithArgs(now).
		WillReturnResult(sqlmock.NewResult(0, 3))

	n, err := repo.PurgeExpired(context.Background(), now)
	if err != nil {
		t.Fatalf("PurgeExpired failed: %v", err)
	}
	if n != 3 {
		t.Errorf("expected 3, got %d", n)
	}
}
