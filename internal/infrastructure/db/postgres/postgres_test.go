package postgres

import (
	"errors"
	"fmt"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/n1fty/cms/internal/core/ports"
)

func TestConfig_DSN(t *testing.T) {
	cfg := Config{Host: "db", Port: 5432, Database: "cms", User: "app", Password: "p@ss/word", SSLMode: "disable"}
	want := "postgres://app:p%40ss%2Fword@db:5432/cms?sslmode=disable"
	if got := cfg.DSN(); got != want {
		t.Fatalf("DSN() = %s, want %s", got, want)
	}
}

func TestEscapeLike(t *testing.T) {
	cases := map[string]string{
		"acme":    "acme",
		"100%":    `100\%`,
		"a_b":     `a\_b`,
		`back\sl`: `back\\sl`,
		`%_\`:     `\%\_\\`,
		"ünïcödé": "ünïcödé",
	}
	for in, want := range cases {
		if got := escapeLike(in); got != want {
			t.Errorf("escapeLike(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestListClientsQuery(t *testing.T) {
	q, args := listClientsQuery(ports.ListClientsFilter{})
	if len(args) != 0 || strings.Contains(q, "ILIKE") {
		t.Fatalf("unexpected unfiltered query: %s %v", q, args)
	}
	if !strings.Contains(q, "deleted_at IS NULL") || !strings.HasSuffix(q, "ORDER BY created_at DESC, id DESC") {
		t.Fatalf("query must filter active rows newest first: %s", q)
	}

	q, args = listClientsQuery(ports.ListClientsFilter{Search: "50%_off"})
	if len(args) != 1 || args[0] != `%50\%\_off%` {
		t.Fatalf("unexpected args: %v", args)
	}
	if strings.Count(q, "ILIKE $1") != 2 {
		t.Fatalf("search must cover name and email: %s", q)
	}
}

func TestParseMigrationName(t *testing.T) {
	cases := []struct {
		in            string
		version, name string
		ok            bool
	}{
		{"0001_users_clients.sql", "0001", "users_clients", true},
		{"0010_x.sql", "0010", "x", true},
		{"init.sql", "", "", false},
		{"v1_init.sql", "", "", false},
		{"0001_.sql", "", "", false},
	}
	for _, tc := range cases {
		v, n, ok := parseMigrationName(tc.in)
		if v != tc.version || n != tc.name || ok != tc.ok {
			t.Errorf("parseMigrationName(%q) = %q, %q, %v", tc.in, v, n, ok)
		}
	}
}

func TestLoadMigrations_Embedded(t *testing.T) {
	migrations, err := loadMigrations(migrationsFS, "migrations")
	if err != nil {
		t.Fatalf("loadMigrations: %v", err)
	}
	if len(migrations) < 2 {
		t.Fatalf("expected at least 2 migrations, got %d", len(migrations))
	}
	if migrations[0].Version != "0001" || !strings.Contains(migrations[0].SQL, "clients_active_email_key") {
		t.Fatalf("first migration must create the schema, got %+v", migrations[0].Version)
	}
	for i := 1; i < len(migrations); i++ {
		if migrations[i-1].Version >= migrations[i].Version {
			t.Fatalf("migrations out of order: %s before %s", migrations[i-1].Version, migrations[i].Version)
		}
	}
}

func TestLoadMigrations_Rejects(t *testing.T) {
	dup := fstest.MapFS{
		"m/0001_a.sql": {Data: []byte("SELECT 1")},
		"m/0001_b.sql": {Data: []byte("SELECT 2")},
	}
	if _, err := loadMigrations(dup, "m"); err == nil {
		t.Fatal("expected duplicate version error")
	}

	bad := fstest.MapFS{"m/schema.sql": {Data: []byte("SELECT 1")}}
	if _, err := loadMigrations(bad, "m"); err == nil {
		t.Fatal("expected invalid filename error")
	}

	mixed := fstest.MapFS{
		"m/0002_b.sql": {Data: []byte("B")},
		"m/0001_a.sql": {Data: []byte("A")},
		"m/README.md":  {Data: []byte("ignored")},
	}
	got, err := loadMigrations(mixed, "m")
	if err != nil || len(got) != 2 || got[0].SQL != "A" {
		t.Fatalf("unexpected result: %+v, %v", got, err)
	}
}

func TestIsUniqueViolation(t *testing.T) {
	pgErr := &pgconn.PgError{Code: "23505", ConstraintName: "users_email_lower_key"}
	wrapped := fmt.Errorf("insert: %w", pgErr)

	if !isUniqueViolation(wrapped, "") || !isUniqueViolation(wrapped, "users_email_lower_key") {
		t.Fatal("expected unique violation to be detected")
	}
	if isUniqueViolation(wrapped, "clients_active_email_key") {
		t.Fatal("constraint name must be honoured")
	}
	if isUniqueViolation(&pgconn.PgError{Code: "23503"}, "") {
		t.Fatal("foreign key violation is not a unique violation")
	}
	if isUniqueViolation(errors.New("plain"), "") {
		t.Fatal("plain errors are not unique violations")
	}
}
