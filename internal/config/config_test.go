package config

import "testing"

func validConfig() Config {
	return Config{
		HTTP: HTTPConfig{Port: 8080},
		Database: DatabaseConfig{
			Addrs: []string{"localhost:6379"},
		},
		OpenAI: OpenAIConfig{APIKey: "test-key"},
	}
}

func TestValidate_Valid(t *testing.T) {
	cfg := validConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidate_MissingOpenAIKey(t *testing.T) {
	cfg := validConfig()
	cfg.OpenAI.APIKey = ""

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected error for missing openai.api_key")
	}

	expected := "openai.api_key is required"
	if err.Error() != expected {
		t.Errorf("unexpected error message:\ngot:  %q\nwant: %q", err.Error(), expected)
	}
}

func TestValidate_MissingAdzunaIsAllowed(t *testing.T) {
	cfg := validConfig()
	cfg.Adzuna = AdzunaConfig{}

	if err := cfg.Validate(); err != nil {
		t.Fatalf("adzuna credentials must be optional, got: %v", err)
	}
	if cfg.HasAdzuna() {
		t.Error("HasAdzuna() = true for empty credentials")
	}
}

func TestValidate_InvalidPort(t *testing.T) {
	cfg := validConfig()
	cfg.HTTP.Port = 0

	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for invalid port")
	}
}

func TestValidate_MissingDatabaseAddrs(t *testing.T) {
	cfg := validConfig()
	cfg.Database.Addrs = nil

	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for missing database addrs")
	}
}

func TestValidate_IncompleteCatalogJob(t *testing.T) {
	cfg := validConfig()
	cfg.Catalog = []CatalogJob{{ID: "job1", Title: "Engineer"}}

	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for catalog job without description")
	}
}

func TestApplyDefaults(t *testing.T) {
	cfg := validConfig()
	cfg.ApplyDefaults()

	if cfg.OpenAI.EmbeddingModel != "text-embedding-ada-002" {
		t.Errorf("embedding model default = %q", cfg.OpenAI.EmbeddingModel)
	}
	if cfg.OpenAI.CompletionModel != "gpt-4o-mini" {
		t.Errorf("completion model default = %q", cfg.OpenAI.CompletionModel)
	}
	if cfg.Match.DefaultQuery != "full stack developer" {
		t.Errorf("default query = %q", cfg.Match.DefaultQuery)
	}
	if cfg.Match.RetryAttempts != 3 {
		t.Errorf("retry attempts default = %d", cfg.Match.RetryAttempts)
	}
	if cfg.Adzuna.Country != "us" {
		t.Errorf("adzuna country default = %q", cfg.Adzuna.Country)
	}
}

func TestExpandEnvVars(t *testing.T) {
	t.Setenv("TEST_API_KEY", "secret123")

	in := []byte("api_key: ${TEST_API_KEY}\nmodel: ${TEST_MISSING:-ada}")
	out := string(expandEnvVars(in))

	expected := "api_key: secret123\nmodel: ada"
	if out != expected {
		t.Errorf("expandEnvVars:\ngot:  %q\nwant: %q", out, expected)
	}
}
