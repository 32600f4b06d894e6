package logger_test

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/ardanlabs/powledger/foundation/logger"
)

// Success and failure markers.
const (
	success = "\u2713"
	failed  = "\u2717"
)

func TestNew(t *testing.T) {
	path := filepath.Join(t.TempDir(), "log.json")

	log, err := logger.New("TEST", path)
	if err != nil {
		t.Fatalf("\t%s\tShould be able to construct a logger: %v", failed, err)
	}
	t.Logf("\t%s\tShould be able to construct a logger.", success)

	log.Infow("startup", "status", "testing")
	log.Sync()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("\t%s\tShould be able to read the log: %v", failed, err)
	}

	var entry map[string]any
	if err := json.Unmarshal(data, &entry); err != nil {
		t.Fatalf("\t%s\tShould write json: %v", failed, err)
	}
	t.Logf("\t%s\tShould write json.", success)

	if entry["service"] != "TEST" || entry["status"] != "testing" || entry["msg"] != "startup" {
		t.Fatalf("\t%s\tShould carry the service and fields: %v", failed, entry)
	}
	t.Logf("\t%s\tShould carry the service and fields.", success)
}
