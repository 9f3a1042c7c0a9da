package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCommandFlags(t *testing.T) {
	assert.Equal(t, "konservasi-server", rootCmd.Use)

	configFlag := rootCmd.Flags().Lookup("config")
	require.NotNil(t, configFlag)
	assert.Equal(t, "", configFlag.DefValue)

	migrateFlag := rootCmd.Flags().Lookup("migrate")
	require.NotNil(t, migrateFlag)
	assert.Equal(t, "false", migrateFlag.DefValue)
}
