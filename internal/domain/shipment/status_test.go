package shipment

import (
	"testing"

	"github.com/stretchr/testify/assert"

	appErrors "logipro/pkg/errors"
)

func TestTransitionTable(t *testing.T) {
	all := []Status{StatusPending, StatusAssigned, StatusInTransit, StatusDelivered, StatusFailed}
	allowed := map[[2]Status]bool{
		{StatusPending, StatusAssigned}:    true,
		{StatusAssigned, StatusAssigned}:   true,
		{StatusAssigned, StatusInTransit}:  true,
		{StatusInTransit, StatusDelivered}: true,
		{StatusInTransit, StatusFailed}:    true,
	}

	for _, from := range all {
		for _, to := range all {
			err := ValidateTransition(from, to)
			if allowed[[2]Status{from, to}] {
				assert.NoError(t, err, "%s -> %s", from, to)
				continue
			}
			assert.True(t, appErrors.HasCode(err, appErrors.CodeInvalidTransition), "%s -> %s", from, to)
		}
	}
}

func TestDeliverFromPendingRejected(t *testing.T) {
	err := ValidateTransition(StatusPending, StatusDelivered)
	assert.EqualError(t, err, "Cannot transition from PENDING to DELIVERED")
}

func TestStatusHelpers(t *testing.T) {
	assert.True(t, StatusFailed.IsTerminal())
	assert.False(t, StatusAssigned.IsTerminal())
	assert.False(t, Status("LOST").IsValid())
	assert.Empty(t, AllowedTransitions(StatusDelivered))
}
