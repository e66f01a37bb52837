package helpers

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/docker/docker/api/types/container"
	"github.com/docker/go-connections/nat"
	"github.com/hbomb79/mediaprobe/internal/database"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

const (
	SQLDialect          = "postgres"
	SQLConnectionString = "host=%s user=%s password=%s dbname=%s port=%s sslmode=disable"
	User                = "postgres"
	Password            = "postgres"
	MasterDBName        = "MEDIAPROBE_DB"

	postgresPort nat.Port = "5432/tcp"
)

var (
	ctx = context.Background()

	manager = newDatabaseManager(MasterDBName)

	illegalDatabaseChars = regexp.MustCompile(`[^a-z0-9_]+`)
)

// databaseManager is an internal test helper which facilitates
// the templating of a single 'master' database in a shared postgresql
// docker instance. This allows tests to use individual databases without
// needing to create multiple instances of docker. This manager will:
//   - automatically spawn the container,
//   - migrate the master database using the embedded migrations,
//   - mark the master database as a template, and,
//   - facilitate provisioning of new databases based off that master database.
type databaseManager struct {
	*sync.Mutex
	masterDatabaseName string
	pgContainer        testcontainers.Container
	host               string
	port               string
	connection         *sql.DB
}

func newDatabaseManager(databaseName string) *databaseManager {
	return &databaseManager{
		Mutex:              &sync.Mutex{},
		masterDatabaseName: databaseName,
	}
}

// RequireDatabase provisions a fresh, fully migrated, database for the
// calling test and returns a connection to it. The database is dropped
// on test cleanup. Tests using this helper are skipped in short mode,
// as docker is required.
func RequireDatabase(t *testing.T) *sqlx.DB {
	if testing.Short() {
		t.Skip("skipping database test in short mode")
	}

	databaseName := databaseNameForTest(t)
	manager.provisionDB(t, databaseName)

	db, err := sqlx.Open(SQLDialect, manager.dsn(databaseName))
	if err != nil {
		t.Fatalf("failed to open connection to provisioned database '%s': %s", databaseName, err)
	}

	t.Cleanup(func() {
		_ = db.Close()
		manager.dropDB(t, databaseName)
	})

	return db
}

func databaseNameForTest(t *testing.T) string {
	name := illegalDatabaseChars.ReplaceAllString(strings.ToLower(t.Name()), "_")
	if len(name) > 50 {
		name = name[len(name)-50:]
	}

	return fmt.Sprintf("test_%s", name)
}

func (manager *databaseManager) dsn(databaseName string) string {
	return fmt.Sprintf(SQLConnectionString, manager.host, User, Password, databaseName, manager.port)
}

func (manager *databaseManager) provisionDB(t *testing.T, databaseName string) {
	manager.Lock()
	defer manager.Unlock()

	if databaseName == MasterDBName {
		t.Fatalf("refusing to provision database '%s' as this DB is the master database", databaseName)
		return
	}

	if manager.connection == nil {
		t.Log("Database provisioning request received but manager not started yet. Initializing database management...")
		manager.connect(t)
		manager.markMasterDB(t)
		t.Log("Database management initialised!")
	}

	_, err := manager.connection.Exec(fmt.Sprintf(`CREATE DATABASE "%s" TEMPLATE "%s"`, databaseName, manager.masterDatabaseName))
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) {
			if pqErr.Code == "42P04" {
				t.Logf("Database '%s' already provisioned. Reusing database", databaseName)
				return
			}
		}

		t.Fatalf("failed to create provision database '%s' based on template database '%s': (%T) %s", databaseName, manager.masterDatabaseName, err, err)
	}
}

func (manager *databaseManager) dropDB(t *testing.T, databaseName string) {
	manager.Lock()
	defer manager.Unlock()

	if manager.connection == nil {
		return
	}

	if _, err := manager.connection.Exec(fmt.Sprintf(`DROP DATABASE IF EXISTS "%s"`, databaseName)); err != nil {
		t.Logf("WARNING: failed to drop database '%s': %s", databaseName, err)
	}
}

func (manager *databaseManager) connect(t *testing.T) {
	if manager.pgContainer == nil {
		manager.spawnPostgres(t)
	} else if !manager.pgContainer.IsRunning() {
		t.Fatalf("failed to connect database manager, container exists but not running")
	}

	db, err := sql.Open(SQLDialect, manager.dsn(MasterDBName))
	if err != nil {
		t.Fatalf("failed to open postgres connection: %s", err)
	}

	for attempt := 1; ; attempt++ {
		err := db.Ping()
		if err == nil {
			break
		}

		if attempt >= 5 {
			t.Fatalf("all database connection attempts FAILED: %s", err)
		}

		t.Logf("DB connection attempt (%v/5) failed... Retrying in 1s", attempt)
		time.Sleep(time.Second)
	}

	t.Log("Database connection established!")
	manager.connection = db
}

// markMasterDB migrates the master database and marks it as a template. Migrations
// are run on a dedicated connection as a template database can not be copied while
// other sessions are connected to it.
func (manager *databaseManager) markMasterDB(t *testing.T) {
	if manager.connection == nil {
		t.Fatalf("cannot mark master database as template: db connection not established")
		return
	}

	if err := database.Migrate(manager.connection); err != nil {
		t.Fatalf("failed to migrate master database: %s", err)
	}

	// The managers connection is to the master DB itself; swap it for one on the
	// default 'postgres' database so the template has no active sessions.
	_ = manager.connection.Close()
	db, err := sql.Open(SQLDialect, manager.dsn("postgres"))
	if err != nil {
		t.Fatalf("failed to open maintenance connection: %s", err)
	}
	manager.connection = db

	if _, err := manager.connection.Exec(fmt.Sprintf(`ALTER DATABASE "%s" WITH is_template TRUE`, manager.masterDatabaseName)); err != nil {
		t.Fatalf("failed to mark master database (%s) as template: %s", manager.masterDatabaseName, err)
	}
}

func (manager *databaseManager) spawnPostgres(t *testing.T) {
	postgresC, err := postgres.RunContainer(ctx,
		testcontainers.WithImage("docker.io/postgres:14.1-alpine"),
		postgres.WithDatabase(MasterDBName),
		postgres.WithUsername(User),
		postgres.WithPassword(Password),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second)),
		testcontainers.WithHostConfigModifier(func(hostConfig *container.HostConfig) { hostConfig.AutoRemove = true }),
	)
	if err != nil {
		t.Fatalf("failed to start container: %s", err)
		return
	}

	host, err := postgresC.Host(ctx)
	if err != nil {
		t.Fatalf("failed to resolve postgres container host: %s", err)
	}

	port, err := postgresC.MappedPort(ctx, postgresPort)
	if err != nil {
		t.Fatalf("failed to resolve postgres container port: %s", err)
	}

	manager.pgContainer = postgresC
	manager.host = host
	manager.port = port.Port()
}
