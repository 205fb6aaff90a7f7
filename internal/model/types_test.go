package model

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestParseModuleType verifies type parsing accepts the three known types
// case-insensitively and rejects everything else.
func TestParseModuleType(t *testing.T) {
	tests := []struct {
		input   string
		want    ModuleType
		wantErr bool
	}{
		{"admin", TypeAdmin, false},
		{"catalog", TypeCatalog, false},
		{"security", TypeSecurity, false},
		{"Catalog", TypeCatalog, false},
		{"plugin", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseModuleType(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

// TestModuleMetadata_Unmarshal verifies the metadata record round-trips the
// JSON shape shipped in the library.
func TestModuleMetadata_Unmarshal(t *testing.T) {
	raw := `{
		"description": "Postgres catalog",
		"type": "catalog",
		"incompatibleModules": ["ldap"],
		"dependentModules": ["file-access-control"],
		"versions": [413, 476],
		"dependentClusters": [{"name": "metastore", "modules": ["hive"]}],
		"enterprise": false
	}`

	var meta ModuleMetadata
	require.NoError(t, json.Unmarshal([]byte(raw), &meta))

	assert.Equal(t, "Postgres catalog", meta.Description)
	assert.Equal(t, TypeCatalog, meta.Type)
	assert.Equal(t, []string{"ldap"}, meta.IncompatibleModules)
	assert.Equal(t, []int{413, 476}, meta.Versions)
	require.Len(t, meta.DependentClusters, 1)
	assert.Equal(t, "metastore", meta.DependentClusters[0].Name)
	assert.False(t, meta.Enterprise)
}

// TestValidateClusterName verifies the name constraints.
func TestValidateClusterName(t *testing.T) {
	assert.NoError(t, ValidateClusterName("trino"))
	assert.NoError(t, ValidateClusterName("my-cluster-2"))
	assert.NoError(t, ValidateClusterName("a"))
	assert.Error(t, ValidateClusterName(""))
	assert.Error(t, ValidateClusterName("-leading"))
	assert.Error(t, ValidateClusterName("trailing-"))
	assert.Error(t, ValidateClusterName("Upper"))
	assert.Error(t, ValidateClusterName("under_score"))
}

// TestErrorKinds verifies the user/system error split: messages, hints,
// and unwrap behavior.
func TestErrorKinds(t *testing.T) {
	ue := NewUserErrorHint("run minitrino lib-install", "library not found at %q", "/tmp/lib")
	assert.Equal(t, `library not found at "/tmp/lib"`, ue.Error())
	assert.Equal(t, "run minitrino lib-install", ue.Hint)

	cause := errors.New("connection refused")
	se := WrapSystemError(cause, "failed to reach the container runtime")
	assert.ErrorIs(t, se, cause)
	assert.Contains(t, se.Error(), "connection refused")

	bare := NewSystemError("no shell found in container %q", "trino")
	assert.Nil(t, errors.Unwrap(bare))
}
