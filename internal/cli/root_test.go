package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/diagnosis/visitor-hosts/internal/hostsync"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCommand(t *testing.T) {
	cmd := NewRootCommand()
	require.NotNil(t, cmd)
	assert.Equal(t, "hostsync", cmd.Use)
}

func TestCommandPresence(t *testing.T) {
	cmd := NewRootCommand()
	for _, name := range []string{"serve", "sync", "normalize"} {
		t.Run(name, func(t *testing.T) {
			sub, _, err := cmd.Find([]string{name})
			require.NoError(t, err)
			require.NotNil(t, sub)
			assert.Equal(t, name, sub.Name())
		})
	}
}

func TestGlobalFlags(t *testing.T) {
	cmd := NewRootCommand()

	verbose := cmd.PersistentFlags().Lookup("verbose")
	require.NotNil(t, verbose)
	assert.Equal(t, "v", verbose.Shorthand)

	format := cmd.PersistentFlags().Lookup("format")
	require.NotNil(t, format)
	assert.Equal(t, "text", format.DefValue)
}

func TestSubcommandFlags(t *testing.T) {
	cmd := NewRootCommand()

	serve, _, err := cmd.Find([]string{"serve"})
	require.NoError(t, err)
	assert.NotNil(t, serve.Flags().Lookup("port"))

	sync, _, err := cmd.Find([]string{"sync"})
	require.NoError(t, err)
	workers := sync.Flags().Lookup("workers")
	require.NotNil(t, workers)
	assert.Equal(t, "0", workers.DefValue)
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestInvalidFormat(t *testing.T) {
	_, err := execute(t, "normalize", "--phone", "1", "--format", "yaml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid format")
}

func TestNormalizeText(t *testing.T) {
	out, err := execute(t, "normalize", "--phone", "3344 5566", "--location", "Unknown Annex")
	require.NoError(t, err)

	assert.Contains(t, out, `"3344 5566" -> "97433445566" (local)`)
	assert.Contains(t, out, `"Unknown Annex" -> <none>`)
}

func TestNormalizeJSON(t *testing.T) {
	out, err := execute(t, "normalize", "--format", "json",
		"--phone", "01098765432",
		"--location", "Barwa near the Marina")
	require.NoError(t, err)

	var res normalizeResult
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	require.Len(t, res.Phones, 1)
	assert.Equal(t, "201098765432", res.Phones[0].Normalized)
	assert.Equal(t, hostsync.PhoneSecondary, res.Phones[0].Class)
	require.Len(t, res.Locations, 1)
	assert.Equal(t, "BARWA_TOWERS", res.Locations[0].Location)
}

func TestNormalizeRequiresInput(t *testing.T) {
	_, err := execute(t, "normalize")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

type stubRunner struct {
	summary *hostsync.Summary
	err     error
}

func (s stubRunner) TryRun(ctx context.Context) (*hostsync.Summary, error) {
	return s.summary, s.err
}

func TestRunOncePrintsSummary(t *testing.T) {
	var out bytes.Buffer
	cmd := &cobra.Command{}
	cmd.SetOut(&out)

	s := &hostsync.Summary{
		RunID:    "run-1",
		Fetched:  5,
		Inserted: 4,
		Rejected: 1,
		Rejections: []hostsync.Rejection{
			{ExternalID: "c3", Name: "Acme", Reason: "hostsync: persistence failed: unique violation"},
		},
	}
	require.NoError(t, runOnce(context.Background(), stubRunner{summary: s}, &RootOptions{Format: "text"}, cmd))

	text := out.String()
	assert.Contains(t, text, "inserted:       4")
	assert.Contains(t, text, "c3 (Acme): hostsync: persistence failed")
}

func TestRunOnceAbortedExitCode(t *testing.T) {
	var out bytes.Buffer
	cmd := &cobra.Command{}
	cmd.SetOut(&out)

	s := &hostsync.Summary{RunID: "run-2", Err: "hostsync: token exchange failed"}
	err := runOnce(context.Background(), stubRunner{summary: s, err: hostsync.ErrAuth}, &RootOptions{Format: "json"}, cmd)

	require.Error(t, err)
	assert.True(t, errors.Is(err, hostsync.ErrAuth))
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.True(t, strings.Contains(out.String(), `"run_id": "run-2"`))
}
