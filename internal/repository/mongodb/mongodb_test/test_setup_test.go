package mongodb_test

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/database"
)

// NewTestDatabase connects to TEST_MONGODB_URI and skips the test when it is unset.
// Every test gets a freshly dropped database with the production indexes.
func NewTestDatabase(t *testing.T) *database.MongoDB {
	t.Helper()

	uri := os.Getenv("TEST_MONGODB_URI")
	if uri == "" {
		t.Skip("TEST_MONGODB_URI not set")
	}

	ctx := context.Background()
	name := fmt.Sprintf("attendance_test_%d", time.Now().UnixNano())
	db, err := database.NewMongoDB(ctx, uri, name)
	if err != nil {
		t.Fatalf("failed to connect to test database: %v", err)
	}

	t.Cleanup(func() {
		if err := db.Drop(ctx); err != nil {
			t.Logf("failed to drop test database: %v", err)
		}
		_ = db.Close(ctx)
	})
	return db
}
