// Package testdb manages the databases the test suites run against: a
// SQLite file which is always available, and Postgres, MySQL and SQL Server
// containers launched through dockertest when a Docker daemon answers.
package testdb

import (
	"database/sql"
	"fmt"
	"log"
	"os"
	"runtime"
	"sync"
	"testing"

	"github.com/go-sql-driver/mysql"
	"github.com/ory/dockertest/v3"
	"github.com/ory/dockertest/v3/docker"

	// Database drivers for every TestDB
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
	_ "github.com/microsoft/go-mssqldb"
)

// Driver names as registered with database/sql
const (
	PostgresDriverName = "postgres"
	SQLiteDriverName   = "sqlite3"
	MySQLDriverName    = "mysql"
	MSSQLDriverName    = "sqlserver"
)

// TestDB represents a specific database instance against which we would like
// to run database migration tests.
//
type TestDB struct {
	Driver     string
	DockerRepo string
	DockerTag  string
	Resource   *dockertest.Resource

	// SkipARM64 marks images which are not published for arm64
	SkipARM64 bool

	path    string
	started bool
}

// All holds all of the specific database instances against which tests
// will run. Setup starts them and Each runs a test against every one which
// is up.
var All = map[string]*TestDB{
	"postgres:latest": {
		Driver:     PostgresDriverName,
		DockerRepo: "postgres",
		DockerTag:  "latest",
	},
	"mysql:latest": {
		Driver:     MySQLDriverName,
		DockerRepo: "mysql",
		DockerTag:  "latest",
	},
	"mariadb:latest": {
		Driver:     MySQLDriverName,
		DockerRepo: "mariadb",
		DockerTag:  "latest",
	},
	"mssql:2022": {
		Driver:     MSSQLDriverName,
		DockerRepo: "mcr.microsoft.com/mssql/server",
		DockerTag:  "2022-latest",
		SkipARM64:  true,
	},
	"sqlite": {
		Driver: SQLiteDriverName,
	},
}

var pool *dockertest.Pool

// Setup starts every runnable TestDB and waits until each accepts
// connections. Docker-based databases are silently left out when no Docker
// daemon is reachable.
func Setup() {
	var err error
	pool, err = dockertest.NewPool("")
	if err == nil {
		err = pool.Client.Ping()
	}
	if err != nil {
		log.Printf("Docker is not available, only running SQLite tests: %s", err)
		pool = nil
	}

	// Disable logging for MySQL while we await startup of the Docker container
	// This avoids "[mysql] unexpected EOF" logging input during the delay
	// while the docker containers launch
	_ = mysql.SetLogger(nullMySQLLogger{})

	var wg sync.WaitGroup
	for name := range All {
		tdb := All[name]
		if !tdb.IsRunnable() {
			continue
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			tdb.Init()
		}()
	}
	wg.Wait()

	// Restore the default MySQL logger after we successfully connect
	// So that MySQL Driver errors appear as expected
	_ = mysql.SetLogger(log.New(os.Stderr, "[mysql] ", log.Ldate|log.Ltime|log.Lshortfile))
}

// Teardown purges the containers and removes the SQLite file. It should be
// called after m.Run() in TestMain.
func Teardown() {
	for _, tdb := range All {
		tdb.Cleanup()
	}
}

// Each runs f as a subtest against every TestDB, skipping those which are
// not running
func Each(t *testing.T, f func(t *testing.T, tdb *TestDB)) {
	for name, tdb := range All {
		t.Run(name, func(t *testing.T) {
			if !tdb.started {
				t.Skipf("%s is not running on %s", name, runtime.GOARCH)
			}
			f(t, tdb)
		})
	}
}

// Get returns the named TestDB, failing the test if it doesn't exist
func Get(t *testing.T, name string) *TestDB {
	t.Helper()
	tdb, exists := All[name]
	if !exists {
		t.Fatalf("Database '%s' doesn't exist. Add it to testdb.All", name)
	}
	if !tdb.started {
		t.Skipf("%s is not running", name)
	}
	return tdb
}

// IsRunnable reports whether the database can be started in this
// environment
func (c *TestDB) IsRunnable() bool {
	if c.IsDocker() && pool == nil {
		return false
	}
	return !(c.SkipARM64 && runtime.GOARCH == "arm64")
}

func (c *TestDB) IsDocker() bool {
	return c.DockerRepo != "" && c.DockerTag != ""
}

func (c *TestDB) IsSQLite() bool {
	return c.Driver == SQLiteDriverName
}

func (c *TestDB) Username() string {
	switch c.Driver {
	case MSSQLDriverName:
		return "SA"
	default:
		return "schemauser"
	}
}

func (c *TestDB) Password() string {
	switch c.Driver {
	case MSSQLDriverName:
		return "Th1sI5AMor3_Compl1c4tedPasswd!"
	default:
		return "schemasecret"
	}
}

func (c *TestDB) DatabaseName() string {
	switch c.Driver {
	case MSSQLDriverName:
		return "master"
	default:
		return "schematests"
	}
}

// Port asks Docker for the host-side port we can use to connect to the
// relevant container's database port.
//
func (c *TestDB) Port() string {
	switch c.Driver {
	case MySQLDriverName:
		return c.Resource.GetPort("3306/tcp")
	case PostgresDriverName:
		return c.Resource.GetPort("5432/tcp")
	case MSSQLDriverName:
		return c.Resource.GetPort("1433/tcp")
	}
	return ""
}

// DockerEnvars computes the environment variables that are needed for a
// docker instance.
//
func (c *TestDB) DockerEnvars() []string {
	switch c.Driver {
	case PostgresDriverName:
		return []string{
			fmt.Sprintf("POSTGRES_USER=%s", c.Username()),
			fmt.Sprintf("POSTGRES_PASSWORD=%s", c.Password()),
			fmt.Sprintf("POSTGRES_DB=%s", c.DatabaseName()),
		}
	case MySQLDriverName:
		return []string{
			"MYSQL_RANDOM_ROOT_PASSWORD=true",
			fmt.Sprintf("MYSQL_USER=%s", c.Username()),
			fmt.Sprintf("MYSQL_PASSWORD=%s", c.Password()),
			fmt.Sprintf("MYSQL_DATABASE=%s", c.DatabaseName()),
		}
	case MSSQLDriverName:
		return []string{
			"ACCEPT_EULA=Y",
			fmt.Sprintf("MSSQL_SA_PASSWORD=%s", c.Password()),
		}
	default:
		return []string{}
	}
}

// Path computes the full path to the database on disk (applies only to SQLite
// instances).
func (c *TestDB) Path() string {
	switch c.Driver {
	case SQLiteDriverName:
		if c.path == "" {
			tmpF, err := os.CreateTemp("", "schema.*.sqlite3")
			if err != nil {
				log.Fatalf("Could not create SQLite file: %s", err)
			}
			_ = tmpF.Close()
			c.path = tmpF.Name()
		}
		return c.path
	default:
		return ""
	}
}

func (c *TestDB) DSN() string {
	switch c.Driver {
	case PostgresDriverName:
		return fmt.Sprintf("postgres://%s:%s@localhost:%s/%s?sslmode=disable", c.Username(), c.Password(), c.Port(), c.DatabaseName())
	case SQLiteDriverName:
		return c.Path()
	case MySQLDriverName:
		/**
		 * Since we want the system to be compatible with both parseTime=true and
		 * not, we use different querystrings with MariaDB and MySQL.
		 */
		if c.DockerRepo == "mariadb" {
			return fmt.Sprintf("%s:%s@(localhost:%s)/%s?parseTime=true&multiStatements=true", c.Username(), c.Password(), c.Port(), c.DatabaseName())
		}
		return fmt.Sprintf("%s:%s@(localhost:%s)/%s?multiStatements=true", c.Username(), c.Password(), c.Port(), c.DatabaseName())
	case MSSQLDriverName:
		return fmt.Sprintf("sqlserver://%s:%s@localhost:%s/?database=%s", c.Username(), c.Password(), c.Port(), c.DatabaseName())
	}
	return "NoDSN"
}

// Init sets up a test database instance for connections. For dockertest-based
// instances, this function triggers the `docker run` call. For SQLite-based
// test instances, this creates the data file. In all cases, we verify that
// the database is connectable via a test connection.
//
func (c *TestDB) Init() {
	var err error

	if c.IsDocker() {
		// For Docker-based test databases, we send a startup signal to have Docker
		// launch a container for this test run.
		log.Printf("Starting docker container %s:%s\n", c.DockerRepo, c.DockerTag)

		// The container is started with AutoRemove: true, and a restart policy to
		// not restart
		c.Resource, err = pool.RunWithOptions(&dockertest.RunOptions{
			Repository: c.DockerRepo,
			Tag:        c.DockerTag,
			Env:        c.DockerEnvars(),
		}, func(config *docker.HostConfig) {
			config.AutoRemove = true
			config.RestartPolicy = docker.RestartPolicy{
				Name: "no",
			}
		})
		if err != nil {
			log.Printf("Could not start container %s:%s: %s", c.DockerRepo, c.DockerTag, err)
			return
		}

		// Even if everything goes OK, kill off the container after n seconds
		_ = c.Resource.Expire(300)

		// Wait on the pool's exponential backoff until connections succeed
		err = pool.Retry(c.ping)
	} else {
		err = c.ping()
	}

	if err != nil {
		log.Printf("Could not connect to %s: %s", c.DSN(), err)
		return
	}
	log.Printf("Successfully connected to %s", c.DSN())
	c.started = true
}

func (c *TestDB) ping() error {
	testConn, err := sql.Open(c.Driver, c.DSN())
	if err != nil {
		return err
	}

	// We close the test connection... other code will re-open via the DSN()
	defer func() { _ = testConn.Close() }()
	return testConn.Ping()
}

// Connect creates an additional *database/sql.DB connection for a particular
// test database. The connection is closed when the test completes.
//
func (c *TestDB) Connect(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open(c.Driver, c.DSN())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

// Cleanup should be called after all tests with a database instance are
// complete. For dockertest-based tests, it deletes the docker containers.
// For SQLite tests, it deletes the database file from the temp directory.
//
func (c *TestDB) Cleanup() {
	var err error

	switch {
	case c.IsSQLite() && c.path != "":
		err = os.Remove(c.path)
		if os.IsNotExist(err) {
			// Ignore error cleaning up nonexistent file
			err = nil
		}

	case c.IsDocker() && c.Resource != nil && pool != nil:
		err = pool.Purge(c.Resource)
	}

	if err != nil {
		log.Printf("Could not cleanup %s: %s", c.DSN(), err)
	}
}

type nullMySQLLogger struct{}

func (l nullMySQLLogger) Print(v ...interface{}) {}
