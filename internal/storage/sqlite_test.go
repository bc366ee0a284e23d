package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"saldo/internal/storage/storagetest"
)

func newTestSQLite(t *testing.T) *SQLiteRepository {
	t.Helper()
	repo, err := NewSQLiteRepository(filepath.Join(t.TempDir(), "nested", "saldo.db"))
	if err != nil {
		t.Fatalf("new sqlite repository: %v", err)
	}
	t.Cleanup(func() { _ = repo.Close() })
	return repo
}

func TestSQLiteRepositoryContract(t *testing.T) {
	storagetest.Run(t, newTestSQLite(t))
}

func TestSQLiteMigrationsAreIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "saldo.db")
	for i := 0; i < 2; i++ {
		repo, err := NewSQLiteRepository(path)
		if err != nil {
			t.Fatalf("open #%d: %v", i, err)
		}
		if err := repo.Ping(context.Background()); err != nil {
			t.Fatalf("ping #%d: %v", i, err)
		}
		_ = repo.Close()
	}
}

func TestPostgresRepositoryContract(t *testing.T) {
	dsn := os.Getenv("SALDO_TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("SALDO_TEST_DATABASE_URL not set")
	}
	repo, err := NewPostgresRepository(context.Background(), dsn)
	if err != nil {
		t.Fatalf("new postgres repository: %v", err)
	}
	defer repo.Close()
	storagetest.Run(t, repo)
}

func TestPgx5URL(t *testing.T) {
	cases := []struct {
		in   string
		want string
		ok   bool
	}{
		{"postgres://u:p@localhost:5432/saldo?sslmode=disable", "pgx5://u:p@localhost:5432/saldo?sslmode=disable", true},
		{"postgresql://localhost/saldo", "pgx5://localhost/saldo", true},
		{"mysql://localhost/saldo", "", false},
	}
	for _, tc := range cases {
		got, err := pgx5URL(tc.in)
		if tc.ok && (err != nil || got != tc.want) {
			t.Fatalf("pgx5URL(%q) = %q, %v; want %q", tc.in, got, err, tc.want)
		}
		if !tc.ok && err == nil {
			t.Fatalf("pgx5URL(%q) expected error", tc.in)
		}
	}
}
