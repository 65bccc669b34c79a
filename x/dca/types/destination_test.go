package types_test

import (
	"testing"

	"cosmossdk.io/math"
	"github.com/stretchr/testify/require"

	sdk "github.com/cosmos/cosmos-sdk/types"
	"github.com/pushchain/push-dca-node/x/dca/types"
)

func testAddr(seed string) string {
	bz := make([]byte, 20)
	copy(bz, seed)
	return sdk.AccAddress(bz).String()
}

func testValAddr(seed string) string {
	bz := make([]byte, 20)
	copy(bz, seed)
	return sdk.ValAddress(bz).String()
}

func send(addr string, allocation string) types.Destination {
	return types.Destination{
		Address:    addr,
		Allocation: math.LegacyMustNewDecFromStr(allocation),
		Action:     types.ActionSend,
	}
}

func TestValidateDestinations(t *testing.T) {
	alice, bob := testAddr("alice"), testAddr("bob")

	tests := []struct {
		name         string
		destinations []types.Destination
		errContains  string
	}{
		{
			name:         "single destination with full allocation",
			destinations: []types.Destination{send(alice, "1")},
		},
		{
			name:         "split across two destinations",
			destinations: []types.Destination{send(alice, "0.3"), send(bob, "0.7")},
		},
		{
			name:         "allocations below one",
			destinations: []types.Destination{send(alice, "0.3"), send(bob, "0.6")},
			errContains:  "must add up to 1",
		},
		{
			name:         "allocations above one",
			destinations: []types.Destination{send(alice, "0.5"), send(bob, "0.6")},
			errContains:  "must add up to 1",
		},
		{
			name:         "zero allocation",
			destinations: []types.Destination{send(alice, "1"), send(bob, "0")},
			errContains:  "non-positive allocation",
		},
		{
			name:        "empty",
			errContains: "at least one destination",
		},
		{
			name:         "invalid address",
			destinations: []types.Destination{send("nope", "1")},
			errContains:  "invalid destination address",
		},
		{
			name: "delegation without validator",
			destinations: []types.Destination{{
				Address:    alice,
				Allocation: math.LegacyOneDec(),
				Action:     types.ActionZDelegate,
			}},
			errContains: "invalid validator address",
		},
		{
			name: "delegation with validator",
			destinations: []types.Destination{{
				Address:          alice,
				Allocation:       math.LegacyOneDec(),
				Action:           types.ActionZDelegate,
				ValidatorAddress: testValAddr("validator"),
			}},
		},
		{
			name: "ibc delegation with bad channel",
			destinations: []types.Destination{{
				Address:          "osmo1remote",
				Allocation:       math.LegacyOneDec(),
				Action:           types.ActionIbcDelegate,
				ValidatorAddress: "osmovaloper1remote",
				ChannelId:        "transfer",
			}},
			errContains: "invalid channel id",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := types.ValidateDestinations(tc.destinations, types.MaxDestinations)
			if tc.errContains == "" {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			require.ErrorIs(t, err, types.ErrInvalidDestinations)
			require.Contains(t, err.Error(), tc.errContains)
		})
	}
}

func TestValidateDestinations_TooMany(t *testing.T) {
	destinations := make([]types.Destination, types.MaxDestinations+1)
	for i := range destinations {
		destinations[i] = send(testAddr("d"+string(rune('a'+i))), "0.1")
	}
	err := types.ValidateDestinations(destinations, types.MaxDestinations)
	require.ErrorContains(t, err, "no more than 10 destinations")
}

func TestSplitByAllocation(t *testing.T) {
	alice, bob, carol := testAddr("alice"), testAddr("bob"), testAddr("carol")

	t.Run("remainder goes to the first destination", func(t *testing.T) {
		destinations := []types.Destination{
			send(alice, "0.333333333333333333"),
			send(bob, "0.333333333333333333"),
			send(carol, "0.333333333333333334"),
		}
		shares := types.SplitByAllocation(math.NewInt(100), destinations)
		require.Len(t, shares, 3)
		require.Equal(t, "34", shares[0].String())
		require.Equal(t, "33", shares[1].String())
		require.Equal(t, "33", shares[2].String())
	})

	t.Run("shares always sum to the amount", func(t *testing.T) {
		destinations := []types.Destination{send(alice, "0.7"), send(bob, "0.3")}
		for _, amount := range []int64{0, 1, 7, 999, 1_000_001} {
			shares := types.SplitByAllocation(math.NewInt(amount), destinations)
			total := math.ZeroInt()
			for _, s := range shares {
				total = total.Add(s)
			}
			require.True(t, total.Equal(math.NewInt(amount)), "amount %d split into %v", amount, shares)
		}
	})
}
