package shared

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEndpoints(t *testing.T) {
	e := NewEndpoints("erp/accounts/fiscalyear/")

	assert.Equal(t, "/erp/accounts/fiscalyear", e.Base())
	assert.Equal(t, "/erp/accounts/fiscalyear", e.GetAll())
	assert.Equal(t, "/erp/accounts/fiscalyear/3", e.GetByID(3))
	assert.Equal(t, "/erp/accounts/fiscalyear/add", e.Add())
	assert.Equal(t, "/erp/accounts/fiscalyear/3/update", e.Update(3))
	assert.Equal(t, "/erp/accounts/fiscalyear/3/delete", e.Delete(3))
}

func TestParseID(t *testing.T) {
	id, err := ParseID(" 42 ")
	require.NoError(t, err)
	assert.Equal(t, ID(42), id)

	_, err = ParseID("forty-two")
	assert.Error(t, err)
}
