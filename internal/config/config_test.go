package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	c, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	d := Defaults()
	if c.InputDelimiter != d.InputDelimiter || c.HeaderEndPattern != d.HeaderEndPattern || c.OutputDelimiter != "\t" {
		t.Fatalf("unexpected config: %+v", c)
	}
	if c.BlockLength != 1 || c.Sentinel != "NaN" || c.OutputPrefix != "data_" || c.InputEncoding != "utf-8" {
		t.Fatalf("unexpected config: %+v", c)
	}
	if c.JobsDir != filepath.Join(home, ".compose", "jobs") {
		t.Fatalf("JobsDir = %s", c.JobsDir)
	}
}

func TestSaveAndLoadFile(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	path := filepath.Join(t.TempDir(), "c.yaml")
	c := Defaults()
	c.BlockLength = 10
	c.Sentinel = "-"
	c.OutputDelimiter = ";"
	if err := Save(c, path); err != nil {
		t.Fatalf("Save: %v", err)
	}
	got, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got.BlockLength != 10 || got.Sentinel != "-" || got.OutputDelimiter != ";" {
		t.Fatalf("loaded %+v", got)
	}
}

func TestEnvOverride(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("COMPOSE_BLOCK_LENGTH", "5")
	t.Setenv("COMPOSE_INPUT_DELIMITER", ";")
	c, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if c.BlockLength != 5 || c.InputDelimiter != ";" {
		t.Fatalf("env not applied: %+v", c)
	}
}

func TestSaveDefaultLocation(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	if err := Save(Defaults(), ""); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if _, err := os.Stat(filepath.Join(home, ".compose", "config.yaml")); err != nil {
		t.Fatalf("config not written: %v", err)
	}
}
