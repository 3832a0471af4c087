package main

import (
	"strings"
	"testing"
	"testing/fstest"
)

func TestLoadMigrations(t *testing.T) {
	migrations, err := loadMigrations(migrationsFS)
	if err != nil {
		t.Fatalf("unexpected error loading embedded migrations: %v", err)
	}
	if len(migrations) < 2 {
		t.Fatalf("expected at least 2 migrations, got %d", len(migrations))
	}
	if migrations[0].Version != 1 || migrations[0].Name != "create_calculations" {
		t.Fatalf("unexpected first migration: %d %s", migrations[0].Version, migrations[0].Name)
	}
	if migrations[1].Version != 2 {
		t.Fatalf("expected second migration version 2, got %d", migrations[1].Version)
	}
	if !strings.Contains(migrations[1].UpSQL, "warned") {
		t.Fatal("second migration should add the warned column")
	}
	for _, m := range migrations {
		if m.UpSQL == "" || m.DownSQL == "" {
			t.Fatalf("expected non-empty up/down sql for version %d", m.Version)
		}
	}
}

func TestLoadMigrationsRejectsBadSets(t *testing.T) {
	cases := map[string]fstest.MapFS{
		"missing down": {
			"migrations/000001_init.up.sql": {Data: []byte("SELECT 1;")},
		},
		"bad name": {
			"migrations/init.up.sql": {Data: []byte("SELECT 1;")},
		},
		"empty file": {
			"migrations/000001_init.up.sql":   {Data: []byte("  ")},
			"migrations/000001_init.down.sql": {Data: []byte("SELECT 1;")},
		},
		"conflicting names": {
			"migrations/000001_init.up.sql":    {Data: []byte("SELECT 1;")},
			"migrations/000001_other.down.sql": {Data: []byte("SELECT 1;")},
		},
		"no files": {},
	}
	for name, fsys := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := loadMigrations(fsys); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}

func TestPendingMigrations(t *testing.T) {
	all := []migration{{Version: 1}, {Version: 2}, {Version: 3}}
	pending := pendingMigrations(all, map[int64]struct{}{1: {}, 3: {}})
	if len(pending) != 1 || pending[0].Version != 2 {
		t.Fatalf("unexpected pending set: %+v", pending)
	}
}

func TestMigrationStatus(t *testing.T) {
	all := []migration{{Version: 1, Name: "create_calculations"}, {Version: 2, Name: "add_calculation_warned"}}
	lines := migrationStatus(all, map[int64]struct{}{1: {}})
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(lines))
	}
	if !strings.HasPrefix(lines[0], "000001 create_calculations") || !strings.HasSuffix(lines[0], "applied") {
		t.Fatalf("unexpected first line %q", lines[0])
	}
	if !strings.HasSuffix(lines[1], "pending") {
		t.Fatalf("unexpected second line %q", lines[1])
	}
}

func TestParseArgs(t *testing.T) {
	tests := []struct {
		args    []string
		want    command
		wantErr bool
	}{
		{args: []string{"up"}, want: command{name: cmdUp, steps: 1}},
		{args: []string{"version"}, want: command{name: cmdVersion, steps: 1}},
		{args: []string{"status"}, want: command{name: cmdStatus, steps: 1}},
		{args: []string{"down"}, want: command{name: cmdDown, steps: 1}},
		{args: []string{"down", "3"}, want: command{name: cmdDown, steps: 3}},
		{args: []string{"down", "0"}, wantErr: true},
		{args: []string{"down", "x"}, wantErr: true},
		{args: []string{"sideways"}, wantErr: true},
		{args: nil, wantErr: true},
	}
	for _, tt := range tests {
		got, err := parseArgs(tt.args)
		if tt.wantErr {
			if err == nil {
				t.Fatalf("%v: expected error", tt.args)
			}
			continue
		}
		if err != nil || got != tt.want {
			t.Fatalf("%v: got %+v, %v", tt.args, got, err)
		}
	}
}
