//go:build database

package integration

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

// TestCSMStyleWithMySQL runs the ignore flow with state and history in MySQL.
func TestCSMStyleWithMySQL(t *testing.T) {
	ctx := context.Background()

	// Start MySQL container
	req := testcontainers.ContainerRequest{
		Image:        "mysql:8",
		ExposedPorts: []string{"3306/tcp"},
		Env: map[string]string{
			"MYSQL_ROOT_PASSWORD": "secret123",
			"MYSQL_DATABASE":      "csmstyle",
		},
		WaitingFor: wait.ForLog("port: 3306  MySQL Community Server").WithStartupTimeout(60 * time.Second),
	}
	mysqlC, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)
	defer func() { _ = mysqlC.Terminate(ctx) }()

	// Get connection details
	host, err := mysqlC.Host(ctx)
	require.NoError(t, err)
	port, err := mysqlC.MappedPort(ctx, "3306")
	require.NoError(t, err)

	connStr := fmt.Sprintf("root:secret123@tcp(%s:%s)/csmstyle?parseTime=true", host, port.Port())
	env := []string{
		"CSMSTYLE_STATE_BACKEND=mysql",
		"CSMSTYLE_STATE_DB_CONNECT=" + connStr,
		"CSMSTYLE_HISTORY_BACKEND=mysql",
		"CSMSTYLE_HISTORY_DB_CONNECT=" + connStr,
	}

	dir := newWorkspace(t)
	requireSuccess(t, dir, env, "state", "clear")
	requireSuccess(t, dir, env, "history", "clear")
	requireSuccess(t, dir, env, "history", "migrate")
	runIgnoreFlow(t, dir, env)
	requireSuccess(t, dir, env, "state", "status")
}

// TestCSMStyleWithPostgres runs the ignore flow with state and history in PostgreSQL.
func TestCSMStyleWithPostgres(t *testing.T) {
	ctx := context.Background()

	// Start Postgres container
	req := testcontainers.ContainerRequest{
		Image:        "postgres:18-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_HOST_AUTH_METHOD": "trust",
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).
			WithStartupTimeout(60 * time.Second),
	}
	pgC, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)
	defer func() { _ = pgC.Terminate(ctx) }()

	// Get connection details
	host, err := pgC.Host(ctx)
	require.NoError(t, err)
	port, err := pgC.MappedPort(ctx, "5432")
	require.NoError(t, err)

	connStr := fmt.Sprintf("host=%s port=%s user=postgres dbname=postgres", host, port.Port())
	env := []string{
		"CSMSTYLE_STATE_BACKEND=postgresql",
		"CSMSTYLE_STATE_DB_CONNECT=" + connStr,
		"CSMSTYLE_HISTORY_BACKEND=postgresql",
		"CSMSTYLE_HISTORY_DB_CONNECT=" + connStr,
	}

	dir := newWorkspace(t)
	requireSuccess(t, dir, env, "state", "clear")
	requireSuccess(t, dir, env, "history", "clear")
	requireSuccess(t, dir, env, "history", "migrate")
	runIgnoreFlow(t, dir, env)
	requireSuccess(t, dir, env, "state", "status")
}
