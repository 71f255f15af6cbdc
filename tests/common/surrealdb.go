// Package common provides shared test infrastructure
package common

import (
	"context"
	"fmt"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	surreal "github.com/surrealdb/surrealdb.go"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

const (
	defaultSurrealImage = "surrealdb/surrealdb:v3.0.0"
	testNamespace       = "finote_test"
)

var (
	surrealOnce      sync.Once
	surrealContainer *SurrealDBContainer
	surrealError     error
)

// SurrealDBContainer wraps a testcontainers SurrealDB instance.
type SurrealDBContainer struct {
	container testcontainers.Container
	host      string
	port      string
}

// StartSurrealDB starts a shared SurrealDB container for the test run, once per
// process. FINOTE_TEST_SURREALDB_IMAGE overrides the image. Skipped under -short.
func StartSurrealDB(t *testing.T) *SurrealDBContainer {
	t.Helper()

	if testing.Short() {
		t.Skip("skipping SurrealDB container test in short mode")
	}

	surrealOnce.Do(func() {
		ctx := context.Background()

		image := os.Getenv("FINOTE_TEST_SURREALDB_IMAGE")
		if image == "" {
			image = defaultSurrealImage
		}

		container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
			ContainerRequest: testcontainers.ContainerRequest{
				Image:        image,
				ExposedPorts: []string{"8000/tcp"},
				Cmd:          []string{"start", "--user", "root", "--pass", "root"},
				WaitingFor: wait.ForAll(
					wait.ForListeningPort("8000/tcp"),
					wait.ForLog("Started web server"),
				).WithDeadline(60 * time.Second),
			},
			Started: true,
		})
		if err != nil {
			surrealError = fmt.Errorf("start SurrealDB container: %w", err)
			return
		}

		host, err := container.Host(ctx)
		if err != nil {
			container.Terminate(ctx)
			surrealError = fmt.Errorf("get SurrealDB host: %w", err)
			return
		}

		mappedPort, err := container.MappedPort(ctx, "8000/tcp")
		if err != nil {
			container.Terminate(ctx)
			surrealError = fmt.Errorf("get SurrealDB port: %w", err)
			return
		}

		surrealContainer = &SurrealDBContainer{
			container: container,
			host:      host,
			port:      mappedPort.Port(),
		}
	})

	if surrealError != nil {
		t.Fatalf("SurrealDB container failed: %v", surrealError)
	}

	return surrealContainer
}

// Address returns the WebSocket RPC address for SurrealDB.
func (c *SurrealDBContainer) Address() string {
	return fmt.Sprintf("ws://%s:%s/rpc", c.host, c.port)
}

// Cleanup terminates the container. Call from TestMain if needed.
func (c *SurrealDBContainer) Cleanup() {
	if c != nil && c.container != nil {
		c.container.Terminate(context.Background())
	}
}

// ConnectSurrealDB returns a signed-in connection to the shared container using
// a database unique to t. The connection is closed when the test ends.
func ConnectSurrealDB(t *testing.T) *surreal.DB {
	t.Helper()

	sc := StartSurrealDB(t)
	ctx := context.Background()

	db, err := surreal.New(sc.Address())
	if err != nil {
		t.Fatalf("connect to SurrealDB: %v", err)
	}

	if _, err := db.SignIn(ctx, map[string]interface{}{
		"user": "root",
		"pass": "root",
	}); err != nil {
		t.Fatalf("sign in to SurrealDB: %v", err)
	}

	// SurrealDB rejects "/" in database names, which subtests produce.
	sanitized := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dbName := fmt.Sprintf("t_%s_%d", sanitized, time.Now().UnixNano()%100000)
	if err := db.Use(ctx, testNamespace, dbName); err != nil {
		t.Fatalf("select namespace/database: %v", err)
	}

	t.Cleanup(func() {
		db.Close(context.Background())
	})

	return db
}
