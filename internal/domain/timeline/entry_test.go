package timeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatusClassification(t *testing.T) {
	assert.True(t, StatusOutForDelivery.IsCheckpoint())
	assert.False(t, StatusDelivered.IsCheckpoint())
	assert.True(t, StatusInTransit.IsActive())
	assert.False(t, StatusPickedUp.IsActive())
	assert.Equal(t, "Out for Delivery", StatusOutForDelivery.Label())
	assert.Equal(t, "LOST", Status("LOST").Label())
	assert.False(t, Status("LOST").IsValid())
}
