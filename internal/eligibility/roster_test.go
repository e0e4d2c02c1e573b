package eligibility

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPartitionRoster(t *testing.T) {
	entries := []SignerEntry{
		{UserID: "u1", Name: "Ana", Signed: true},
		{UserID: "u2", Name: "Bruno"},
		{UserID: "u3", Name: "Clara"},
		{UserID: "u2", Name: "Bruno duplicate"},
	}

	self, others := PartitionRoster(entries, "u1")

	require.NotNil(t, self)
	assert.Equal(t, "u1", self.UserID)
	assert.True(t, self.Signed)

	require.Len(t, others, 2, "duplicates collapse by user id")
	assert.Equal(t, "u2", others[0].UserID)
	assert.Equal(t, "Bruno", others[0].Name, "first occurrence wins")
	assert.Equal(t, "u3", others[1].UserID)
}

func TestPartitionRosterViewerAbsent(t *testing.T) {
	entries := []SignerEntry{{UserID: "u2"}, {UserID: "u3"}}

	self, others := PartitionRoster(entries, "u1")

	assert.Nil(t, self)
	assert.Len(t, others, 2)
}

func TestPartitionRosterViewerNeverInOthers(t *testing.T) {
	entries := []SignerEntry{{UserID: "u1"}, {UserID: "u1"}, {UserID: "u2"}}

	self, others := PartitionRoster(entries, "u1")

	require.NotNil(t, self)
	for _, other := range others {
		assert.NotEqual(t, "u1", other.UserID)
	}
}

func TestDisplayName(t *testing.T) {
	assert.Equal(t, "Ana", SignerEntry{Name: "Ana"}.DisplayName())
	assert.Equal(t, "Unnamed signer", SignerEntry{}.DisplayName())
}
