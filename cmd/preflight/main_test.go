package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/hamed0406/sitemonitor/internal/config"
)

func envIn(dir, cfgName string) config.Env {
	return config.Env{
		ConfigPath: filepath.Join(dir, cfgName),
		LogDir:     filepath.Join(dir, "logs"),
		LogLevel:   "info",
	}
}

func writeConfig(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestRun_MissingConfigWarnsButPasses(t *testing.T) {
	dir := t.TempDir()
	var out, errOut bytes.Buffer

	require.Equal(t, 0, run(envIn(dir, "config.json"), "plan9", &out, &errOut), "stderr=%s", errOut.String())
	require.Contains(t, errOut.String(), "will create the default config")
	require.NoFileExists(t, filepath.Join(dir, "config.json"), "preflight must not write the config")
	require.Contains(t, out.String(), "preflight passed")
}

func TestRun_InvalidSettingsFail(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "config.yaml", "monitor_settings:\n  interval: 0\n  timeout: 5\n  valid_status_codes: [200]\nwebsites: [example.com]\n")
	var out, errOut bytes.Buffer

	require.Equal(t, 1, run(envIn(dir, "config.yaml"), "plan9", &out, &errOut))
	require.Contains(t, errOut.String(), "interval")
}

func TestRun_CorruptConfigFails(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "config.json", "{not json")
	var out, errOut bytes.Buffer

	require.Equal(t, 1, run(envIn(dir, "config.json"), "plan9", &out, &errOut))
	require.Contains(t, errOut.String(), "is corrupt")
}

func TestRun_WrongTypeFailsAndKeepsFile(t *testing.T) {
	dir := t.TempDir()
	body := `{"monitor_settings":{"interval":"30"},"websites":["mysite.internal"]}`
	path := writeConfig(t, dir, "config.json", body)
	var out, errOut bytes.Buffer

	require.Equal(t, 1, run(envIn(dir, "config.json"), "plan9", &out, &errOut))
	require.NotContains(t, errOut.String(), "is corrupt")
	require.Contains(t, errOut.String(), "interval")

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, body, string(got))
}

func TestRun_MinimalConfigPasses(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "config.json", `{"websites":["a.example"]}`)
	var out, errOut bytes.Buffer

	require.Equal(t, 0, run(envIn(dir, "config.json"), "plan9", &out, &errOut), "stderr=%s", errOut.String())
	require.Contains(t, out.String(), "preflight passed")
}

func TestRun_DuplicatesWarn(t *testing.T) {
	dir := t.TempDir()
	cfg := config.Default()
	cfg.Websites = []string{"a.example", "A.example ", "", "b.example"}
	require.NoError(t, config.Save(filepath.Join(dir, "config.json"), cfg))
	var out, errOut bytes.Buffer

	require.Equal(t, 0, run(envIn(dir, "config.json"), "plan9", &out, &errOut), "stderr=%s", errOut.String())
	require.Contains(t, errOut.String(), "2 website entries")
}

func TestRun_BadEnv(t *testing.T) {
	dir := t.TempDir()
	env := envIn(dir, "config.json")
	env.LogLevel = "loud"
	env.StatusAddr = "no-port"
	var out, errOut bytes.Buffer

	require.Equal(t, 1, run(env, "plan9", &out, &errOut))
	require.Contains(t, errOut.String(), "LOG_LEVEL")
	require.Contains(t, errOut.String(), "STATUS_ADDR")
}
