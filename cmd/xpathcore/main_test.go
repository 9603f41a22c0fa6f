package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestRootCommandHasThreeSubcommands(t *testing.T) {
	cmd := newRootCommand()
	var names []string
	for _, c := range cmd.Commands() {
		names = append(names, c.Name())
	}
	assert.ElementsMatch(t, []string{"compile", "eval", "run"}, names)
}

func TestCompileCommandReportsOK(t *testing.T) {
	out, err := runCommand(t, "compile", "1 + 2")
	require.NoError(t, err)
	assert.Equal(t, "OK\n", out)
}

func TestCompileCommandReportsStaticError(t *testing.T) {
	_, err := runCommand(t, "compile", "$undeclared")
	require.Error(t, err)
}

func TestEvalCommandPrintsResultItems(t *testing.T) {
	out, err := runCommand(t, "eval", "1 to 3")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	assert.Equal(t, []string{"1", "2", "3"}, lines)
}

func TestEvalCommandBindsExternalVariable(t *testing.T) {
	out, err := runCommand(t, "eval", "--var", "who=world", "concat('hello, ', $who)")
	require.NoError(t, err)
	assert.Equal(t, "hello, world\n", out)
}
