package tyconfig

import "testing"

func TestTabularFormatParsesAndSubstitutesEnv(t *testing.T) {
	t.Setenv("TYCORE_TEST_DB_HOST", "db.internal")

	content := []byte(`
database:
  host: ${TYCORE_TEST_DB_HOST}
  port: 3306
features:
  - workspaces
  - scheduler
`)

	f := NewTabularFormat()
	data, err := f.Parse("Configuration.yaml", content)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	db, ok := data["database"].(map[string]any)
	if !ok {
		t.Fatalf("expected database to be a map, got %T", data["database"])
	}
	if db["host"] != "db.internal" {
		t.Fatalf("expected env substitution, got %v", db["host"])
	}

	features, ok := data["features"].([]any)
	if !ok || len(features) != 2 {
		t.Fatalf("expected 2-element features list, got %v", data["features"])
	}
}

func TestTabularFormatSupportsByExtension(t *testing.T) {
	f := NewTabularFormat()
	if !f.Supports("Services.yaml", nil) {
		t.Fatalf("expected .yaml to be supported")
	}
	if f.Supports("config.php", nil) {
		t.Fatalf("did not expect .php to be supported")
	}
}
