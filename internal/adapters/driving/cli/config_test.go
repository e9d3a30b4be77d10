package cli

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigSetCmd_StoresTypedValues(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"config", "set", "retrieve.k", "8"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()
	require.NoError(t, err)

	value, ok := configStore.Get("retrieve.k")
	require.True(t, ok)
	assert.Equal(t, int64(8), value)
}

func TestConfigSetCmd_ParsesBooleans(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"config", "set", "retrieve.allow_empty_context", "false"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()
	require.NoError(t, err)

	value, ok := configStore.Get("retrieve.allow_empty_context")
	require.True(t, ok)
	assert.Equal(t, false, value)
}

func TestConfigGetCmd(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	require.NoError(t, configStore.Set("ollama.llm_model", "llama3.2"))

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"config", "get", "ollama.llm_model"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "llama3.2")
}

func TestConfigGetCmd_MissingKey(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs([]string{"config", "get", "nope"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "key not set")
}

func TestConfigUnsetCmd(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	require.NoError(t, configStore.Set("retrieve.k", 8))

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"config", "unset", "retrieve.k"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()
	require.NoError(t, err)

	_, ok := configStore.Get("retrieve.k")
	assert.False(t, ok)
}

func TestConfigListCmd(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	require.NoError(t, configStore.Set("retrieve.k", 4))

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"config", "list"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "retrieve.k = 4")
}
