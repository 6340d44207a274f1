package integration

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInternalStatus_IsValid(t *testing.T) {
	for _, s := range AllStatuses() {
		assert.True(t, s.IsValid(), s.String())
	}
	assert.False(t, InternalStatus("Shipped").IsValid())
	assert.False(t, InternalStatus("").IsValid())
}

func TestStatusTable_Inbound(t *testing.T) {
	table := NewStatusTable(StatusNew,
		map[string]InternalStatus{"Shipped": StatusShipped},
		map[InternalStatus]string{StatusShipped: "3"},
	)

	t.Run("matches case-insensitively", func(t *testing.T) {
		assert.Equal(t, StatusShipped, table.Inbound("shipped"))
		assert.Equal(t, StatusShipped, table.Inbound(" SHIPPED "))
	})

	t.Run("falls back to default for unknown input", func(t *testing.T) {
		assert.Equal(t, StatusNew, table.Inbound("teleported"))
		assert.Equal(t, StatusNew, table.Inbound(""))
		assert.Equal(t, StatusNew, table.Default())
	})
}

func TestStatusTable_Outbound(t *testing.T) {
	table := NewStatusTable(StatusNew, nil, map[InternalStatus]string{StatusShipped: "3"})

	v, ok := table.Outbound(StatusShipped)
	assert.True(t, ok)
	assert.Equal(t, "3", v)

	v, ok = table.Outbound(StatusReturned)
	assert.False(t, ok)
	assert.Empty(t, v)
}

func TestStatusTable_CopiesInput(t *testing.T) {
	inbound := map[string]InternalStatus{"paid": StatusConfirmed}
	outbound := map[InternalStatus]string{StatusConfirmed: "paid"}
	table := NewStatusTable(StatusNew, inbound, outbound)

	inbound["paid"] = StatusCancelled
	outbound[StatusConfirmed] = "voided"

	assert.Equal(t, StatusConfirmed, table.Inbound("paid"))
	v, _ := table.Outbound(StatusConfirmed)
	assert.Equal(t, "paid", v)
}
