package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	out := &bytes.Buffer{}
	cmd.SetOut(out)
	cmd.SetErr(out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestVersion(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "nutrition-bot dev (none)\n", out)
}

func TestMigrate_CreatesSQLiteDatabase(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	path := filepath.Join(dir, "data", "bot.db")
	t.Setenv("DATABASE_URL", "sqlite:///"+path)

	_, err := execute(t, "migrate")
	require.NoError(t, err)

	_, err = os.Stat(path)
	assert.NoError(t, err)
}

func TestMigrate_EnvFile(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	path := filepath.Join(dir, "from-env-file.db")
	envFile := filepath.Join(dir, "bot.env")
	require.NoError(t, os.WriteFile(envFile, []byte("DATABASE_URL=sqlite:///"+path+"\n"), 0o600))
	// godotenv не перезаписывает уже заданные переменные
	t.Setenv("DATABASE_URL", "")
	require.NoError(t, os.Unsetenv("DATABASE_URL"))

	_, err := execute(t, "--env-file", envFile, "migrate")
	require.NoError(t, err)

	_, err = os.Stat(path)
	assert.NoError(t, err)
}

func TestServe_RequiresToken(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("BOT_TOKEN", "")
	t.Setenv("OPENWEATHERMAP_API_KEY", "key")

	_, err := execute(t, "serve")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "BOT_TOKEN")

	_, err = execute(t)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "BOT_TOKEN")
}

func TestMigrate_MissingEnvFile(t *testing.T) {
	t.Chdir(t.TempDir())

	_, err := execute(t, "--env-file", "missing.env", "migrate")
	assert.Error(t, err)
}
