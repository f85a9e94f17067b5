package telemetry

import (
	"testing"

	"github.com/dkeye/VoiceStats/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCauseTable_CodesAreUnique(t *testing.T) {
	table := NewCauseTable()
	require.GreaterOrEqual(t, table.Len(), 27)

	seen := map[int]string{}
	for _, c := range namedCauses {
		prev, dup := seen[c.code]
		require.False(t, dup, "%s and %s share code %d", prev, c.name, c.code)
		seen[c.code] = c.name
	}
	assert.Len(t, seen, table.Len())
}

func TestCauseTable_Lookup(t *testing.T) {
	table := NewCauseTable()

	code, ok := table.Code("SignalingConnectionTimeoutError")
	require.True(t, ok)
	assert.Equal(t, 53002, code)

	name, ok := table.Name(53106)
	require.True(t, ok)
	assert.Equal(t, "RoomNotFoundError", name)

	_, ok = table.Code("NoSuchError")
	assert.False(t, ok)
	assert.False(t, table.Contains(5330))
}

func TestCauseTable_Classify(t *testing.T) {
	table := NewCauseTable()
	signaling := map[int]bool{
		domain.CodeSignalingConnectionError:        true,
		domain.CodeSignalingConnectionDisconnected: true,
		domain.CodeSignalingConnectionTimeout:      true,
		domain.CodeSignalingIncomingMessageInvalid: true,
		domain.CodeSignalingOutgoingMessageInvalid: true,
	}

	for _, c := range namedCauses {
		t.Run(c.name, func(t *testing.T) {
			want := CategoryApplication
			if signaling[c.code] {
				want = CategorySignaling
			}
			assert.Equal(t, want, table.Classify(c.code))
		})
	}

	t.Run("server busy is not a transport failure", func(t *testing.T) {
		assert.Equal(t, CategoryApplication, table.Classify(domain.CodeSignalingServerBusy))
	})
	t.Run("unknown codes", func(t *testing.T) {
		for _, code := range []int{0, -1, 1, 20000, 53005, 99999} {
			assert.Equal(t, CategoryUnclassified, table.Classify(code), "code %d", code)
		}
	})
}

func TestCategory_String(t *testing.T) {
	assert.Equal(t, "signaling", CategorySignaling.String())
	assert.Equal(t, "application", CategoryApplication.String())
	assert.Equal(t, "unclassified", CategoryUnclassified.String())
}
