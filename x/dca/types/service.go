package types

import "context"

// Msg is the closed set of dca commands.
type Msg interface {
	ValidateBasic() error
	isDcaMsg()
}

func (*MsgCreateVault) isDcaMsg()           {}
func (*MsgDeposit) isDcaMsg()               {}
func (*MsgUpdateVaultLabel) isDcaMsg()      {}
func (*MsgCancelVault) isDcaMsg()           {}
func (*MsgExecuteTrigger) isDcaMsg()        {}
func (*MsgExecuteDueTriggers) isDcaMsg()    {}
func (*MsgHandleOrderFilled) isDcaMsg()     {}
func (*MsgUpdateSwapAdjustments) isDcaMsg() {}
func (*MsgClaimEscrowedFunds) isDcaMsg()    {}
func (*MsgUpdateParams) isDcaMsg()          {}

// MsgServer is the command surface of the module.
type MsgServer interface {
	CreateVault(context.Context, *MsgCreateVault) (*MsgCreateVaultResponse, error)
	Deposit(context.Context, *MsgDeposit) (*MsgDepositResponse, error)
	UpdateVaultLabel(context.Context, *MsgUpdateVaultLabel) (*MsgUpdateVaultLabelResponse, error)
	CancelVault(context.Context, *MsgCancelVault) (*MsgCancelVaultResponse, error)
	ExecuteTrigger(context.Context, *MsgExecuteTrigger) (*MsgExecuteTriggerResponse, error)
	ExecuteDueTriggers(context.Context, *MsgExecuteDueTriggers) (*MsgExecuteDueTriggersResponse, error)
	HandleOrderFilled(context.Context, *MsgHandleOrderFilled) (*MsgHandleOrderFilledResponse, error)
	UpdateSwapAdjustments(context.Context, *MsgUpdateSwapAdjustments) (*MsgUpdateSwapAdjustmentsResponse, error)
	ClaimEscrowedFunds(context.Context, *MsgClaimEscrowedFunds) (*MsgClaimEscrowedFundsResponse, error)
	UpdateParams(context.Context, *MsgUpdateParams) (*MsgUpdateParamsResponse, error)
}

// QueryServer is the read surface of the module.
type QueryServer interface {
	Params(context.Context, *QueryParamsRequest) (*QueryParamsResponse, error)
	Vault(context.Context, *QueryVaultRequest) (*QueryVaultResponse, error)
	VaultsByOwner(context.Context, *QueryVaultsByOwnerRequest) (*QueryVaultsByOwnerResponse, error)
	TriggerIdByOrderIdx(context.Context, *QueryTriggerIdByOrderIdxRequest) (*QueryTriggerIdByOrderIdxResponse, error)
	EventsByResource(context.Context, *QueryEventsByResourceRequest) (*QueryEventsByResourceResponse, error)
	Event(context.Context, *QueryEventRequest) (*QueryEventResponse, error)
	DcaPlusPerformance(context.Context, *QueryDcaPlusPerformanceRequest) (*QueryDcaPlusPerformanceResponse, error)
	InFlightExecutions(context.Context, *QueryInFlightExecutionsRequest) (*QueryInFlightExecutionsResponse, error)
	ClaimEscrowTasks(context.Context, *QueryClaimEscrowTasksRequest) (*QueryClaimEscrowTasksResponse, error)
}
