package config

import "testing"

func TestFromEnv_Defaults(t *testing.T) {
	cfg := FromEnv()

	if cfg.Port != "8080" {
		t.Fatalf("default port: %q", cfg.Port)
	}
	if cfg.StoreBackend != BackendSheets {
		t.Fatalf("default backend: %q", cfg.StoreBackend)
	}
	if cfg.DirectorySheet != "Nomes" || cfg.NeighborhoodsSheet != "Bairro" {
		t.Fatalf("default sheets: %q / %q", cfg.DirectorySheet, cfg.NeighborhoodsSheet)
	}
	if cfg.Timezone != "America/Manaus" {
		t.Fatalf("default timezone: %q", cfg.Timezone)
	}
}

func TestFromEnv_Overrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("STORE_BACKEND", BackendWorkbook)
	t.Setenv("WORKBOOK_PATH", "/tmp/fila.xlsx")
	t.Setenv("CORS_ORIGINS", "http://a.local, http://b.local ,")
	t.Setenv("NOMES_SHEET", "Diretório")

	cfg := FromEnv()

	if cfg.Port != "9090" {
		t.Fatalf("port: %q", cfg.Port)
	}
	if cfg.StoreBackend != BackendWorkbook || cfg.WorkbookPath != "/tmp/fila.xlsx" {
		t.Fatalf("backend: %q path %q", cfg.StoreBackend, cfg.WorkbookPath)
	}
	if len(cfg.CORSOrigins) != 2 || cfg.CORSOrigins[1] != "http://b.local" {
		t.Fatalf("cors origins: %v", cfg.CORSOrigins)
	}
	if cfg.DirectorySheet != "Diretório" {
		t.Fatalf("directory sheet: %q", cfg.DirectorySheet)
	}
}
