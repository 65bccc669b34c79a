package keeper_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/require"

	"cosmossdk.io/math"
	sdk "github.com/cosmos/cosmos-sdk/types"
	stakingtypes "github.com/cosmos/cosmos-sdk/x/staking/types"
	transfertypes "github.com/cosmos/ibc-go/v10/modules/apps/transfer/types"

	"github.com/pushchain/push-dca-node/x/dca/keeper"
	"github.com/pushchain/push-dca-node/x/dca/types"
)

func TestDistribute_SendAndZDelegate(t *testing.T) {
	for _, tc := range []struct {
		name        string
		delegateErr error
		lastEvent   string
	}{
		{name: "pass; delegation succeeds", lastEvent: "delegation_succeeded"},
		{name: "pass; delegation fails, funds stay liquid", delegateErr: errors.New("validator is jailed"), lastEvent: "delegation_failed"},
	} {
		t.Run(tc.name, func(t *testing.T) {
			f := SetupTest(t)
			f.expectPrice()
			f.expectSwaps()

			owner, friend := f.addrs[2], f.addrs[3]
			validator := sdk.ValAddress(f.addrs[0]).String()
			ownerBefore := f.balance(owner, baseDenom)

			f.mockStakingKeeper.EXPECT().Delegate(gomock.Any(), gomock.Any()).
				DoAndReturn(func(_ context.Context, msg *stakingtypes.MsgDelegate) (*stakingtypes.MsgDelegateResponse, error) {
					require.Equal(t, owner.String(), msg.DelegatorAddress)
					require.Equal(t, validator, msg.ValidatorAddress)
					require.Equal(t, "4974", msg.Amount.Amount.String())
					return &stakingtypes.MsgDelegateResponse{}, tc.delegateErr
				})

			msg := f.createMsg()
			msg.Destinations = []types.Destination{
				{Address: friend.String(), Allocation: math.LegacyMustNewDecFromStr("0.5"), Action: types.ActionSend},
				{Address: owner.String(), Allocation: math.LegacyMustNewDecFromStr("0.5"), Action: types.ActionZDelegate, ValidatorAddress: validator},
			}
			id := f.createVault(t, msg)

			// 15 swap fee plus half of the 75 automation fee
			events := f.events(t, id)
			swap := events[len(events)-2].Data.(types.SwapExecuted)
			require.Equal(t, "52", swap.Fee.Amount.String())

			require.Equal(t, "4974", f.balance(friend, baseDenom).String())
			require.Equal(t, ownerBefore.AddRaw(4974).String(), f.balance(owner, baseDenom).String())
			require.Equal(t, tc.lastEvent, events[len(events)-1].Data.EventType())

			executions, err := f.k.AllExecutions(f.ctx)
			require.NoError(t, err)
			require.Empty(t, executions)
		})
	}
}

func TestDistribute_IbcDelegate(t *testing.T) {
	dest := types.Destination{
		Address:          "osmo1qy352eufqy352eufqy352eufqy35qqqz9ayrkz",
		Allocation:       math.LegacyOneDec(),
		Action:           types.ActionIbcDelegate,
		ValidatorAddress: "osmovaloper1qy352eufqy352eufqy352eufqy35qqqrj5cpe",
		ChannelId:        "channel-3",
	}

	t.Run("pass; transfer dispatched", func(t *testing.T) {
		f := SetupTest(t)
		f.expectPrice()
		f.expectSwaps()

		var sent *transfertypes.MsgTransfer
		f.mockTransferKeeper.EXPECT().Transfer(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, msg *transfertypes.MsgTransfer) (*transfertypes.MsgTransferResponse, error) {
				sent = msg
				return &transfertypes.MsgTransferResponse{Sequence: 11}, nil
			})

		msg := f.createMsg()
		msg.Destinations = []types.Destination{dest}
		id := f.createVault(t, msg)

		require.NotNil(t, sent)
		require.Equal(t, transfertypes.PortID, sent.SourcePort)
		require.Equal(t, "channel-3", sent.SourceChannel)
		require.Equal(t, keeper.VaultAccount(id).String(), sent.Sender)
		require.Equal(t, dest.Address, sent.Receiver)
		require.Equal(t, "9910", sent.Token.Amount.String())
		require.Equal(t, uint64(genesisTime.Add(types.DefaultIbcTimeout).UnixNano()), sent.TimeoutTimestamp)

		var memo map[string]map[string]string
		require.NoError(t, json.Unmarshal([]byte(sent.Memo), &memo))
		require.Equal(t, dest.Address, memo["delegate"]["delegator"])
		require.Equal(t, dest.ValidatorAddress, memo["delegate"]["validator"])

		events := f.events(t, id)
		dispatched := events[len(events)-1].Data.(types.IbcTransferDispatched)
		require.Equal(t, uint64(11), dispatched.Sequence)
		require.Equal(t, "channel-3", dispatched.ChannelId)
	})

	t.Run("pass; failed transfer refunds the owner", func(t *testing.T) {
		f := SetupTest(t)
		f.expectPrice()
		f.expectSwaps()
		f.mockTransferKeeper.EXPECT().Transfer(gomock.Any(), gomock.Any()).
			Return(nil, errors.New("channel is closed"))

		owner := f.addrs[2]
		before := f.balance(owner, baseDenom)

		msg := f.createMsg()
		msg.Destinations = []types.Destination{dest}
		id := f.createVault(t, msg)

		require.Equal(t, before.AddRaw(9910).String(), f.balance(owner, baseDenom).String())
		require.True(t, f.balance(keeper.VaultAccount(id), baseDenom).IsZero())

		events := f.events(t, id)
		failed := events[len(events)-1].Data.(types.DelegationFailed)
		require.Contains(t, failed.Reason, "channel is closed")
		require.Equal(t, types.VaultStatusActive, f.vault(t, id).Status)

		f.advance(time.Hour)
		require.Equal(t, genesisTime.Add(24*time.Hour), f.targetTime(t, id))
	})
}
