package root

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hypeos/internal/config"
	"hypeos/internal/hypeos"
	"hypeos/internal/storage"
)

func run(t *testing.T, args ...string) string {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	require.NoError(t, cmd.ExecuteContext(context.Background()), "hype %v: %s", args, out.String())
	return out.String()
}

func setupEnv(t *testing.T) string {
	t.Helper()
	chdir(t, t.TempDir())
	t.Setenv("HYPE_TZ", "UTC")
	t.Setenv("HYPE_USER", "cli")
	return filepath.Join(t.TempDir(), "cli.db")
}

func TestCLI_AddListDo(t *testing.T) {
	db := setupEnv(t)

	out := run(t, "--db", db, "add", "Call the lead", "-i", "high", "-c", "Sales")
	assert.Contains(t, out, "Call the lead")
	assert.Contains(t, out, "worth ~750 points today")

	out = run(t, "--db", db, "list")
	assert.Contains(t, out, "Call the lead")

	conn, err := storage.Open(context.Background(), db)
	require.NoError(t, err)
	tasks, err := storage.NewTaskRepo(conn).List(context.Background(), "cli", storage.TaskFilter{})
	require.NoError(t, err)
	require.NoError(t, conn.Close())
	require.Len(t, tasks, 1)

	out = run(t, "--db", db, "do", tasks[0].ID[:8])
	assert.Contains(t, out, "+750 points")
	assert.Contains(t, out, "775")

	out = run(t, "--db", db, "list")
	assert.Contains(t, out, "No tasks.")
	out = run(t, "--db", db, "list", "--done")
	assert.Contains(t, out, "Call the lead")

	out = run(t, "--db", db, "status")
	assert.Contains(t, out, "First Win")
	assert.Contains(t, out, "Badges (1/16)")
}

func TestCLI_GoalsAndQuests(t *testing.T) {
	db := setupEnv(t)

	out := run(t, "--db", db, "goal", "add", "Launch", "-t", "2030-01-01")
	assert.Contains(t, out, "Launch")
	out = run(t, "--db", db, "goal", "list")
	assert.Contains(t, out, "by 2030-01-01")

	out = run(t, "--db", db, "quests")
	assert.Contains(t, out, "0% complete")
}

func TestCLI_RulesRoundTrip(t *testing.T) {
	setupEnv(t)
	out := run(t, "rules")

	parsed, err := config.ParseRules([]byte(out), hypeos.Rules{})
	require.NoError(t, err)
	assert.Equal(t, hypeos.DefaultRules(), parsed)
}

func TestMatchPrefix(t *testing.T) {
	ids := []string{"abc123", "abd456", "abc"}

	got, err := matchPrefix("task", "abd", ids)
	require.NoError(t, err)
	assert.Equal(t, "abd456", got)

	got, err = matchPrefix("task", "abc", ids)
	require.NoError(t, err)
	assert.Equal(t, "abc", got, "exact match wins")

	_, err = matchPrefix("task", "ab", ids)
	assert.ErrorContains(t, err, "matches 3 tasks")

	_, err = matchPrefix("task", "zz", ids)
	assert.ErrorContains(t, err, "no task matches")

	for _, blank := range []string{"", "   "} {
		_, err = matchPrefix("task", blank, []string{"only-one"})
		assert.ErrorContains(t, err, "task id is required")
	}
}

// chdir changes the working directory for the duration of the test and
// restores it on cleanup (equivalent of testing.T.Chdir, added in Go 1.24).
func chdir(t *testing.T, dir string) {
	t.Helper()
	old, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		if err := os.Chdir(old); err != nil {
			t.Fatal(err)
		}
	})
}
