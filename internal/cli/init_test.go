package cli

import (
	"os"
	"path/filepath"
	"testing"

	"ledgerbot/internal/config"
)

func TestSetupLogger(t *testing.T) {
	logger := SetupLogger(&config.Config{LogLevel: "debug", LogFormat: "json"})
	if logger == nil || logger.Component() == "" {
		t.Fatal("expected a component-tagged logger")
	}
	// Unknown levels fall back rather than failing startup.
	if SetupLogger(&config.Config{LogLevel: "chatty", LogFormat: "text"}) == nil {
		t.Fatal("expected a logger")
	}
}

func TestLoadEnvFile(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, ".env"), []byte("LEDGERBOT_CLI_TEST=from-dotenv\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	wd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = os.Chdir(wd) })
	t.Setenv("LEDGERBOT_CLI_TEST", "")
	os.Unsetenv("LEDGERBOT_CLI_TEST")

	LoadEnvFile()
	if got := os.Getenv("LEDGERBOT_CLI_TEST"); got != "from-dotenv" {
		t.Fatalf("env not loaded: %q", got)
	}
}

func TestLoadCatalogDefault(t *testing.T) {
	c := LoadCatalog(SetupLogger(&config.Config{LogLevel: "error"}), "")
	if c.Len() == 0 {
		t.Fatal("default catalog is empty")
	}
}
