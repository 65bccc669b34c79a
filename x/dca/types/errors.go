package types

import (
	sdkerrors "cosmossdk.io/errors"
)

// Error codes for the dca module
const (
	BaseErrorCode uint32 = 1
)

// Validation errors
var (
	ErrInvalidAddress      = sdkerrors.Register(ModuleName, BaseErrorCode+1, "invalid address")
	ErrInvalidRequest      = sdkerrors.Register(ModuleName, BaseErrorCode+2, "invalid request")
	ErrVaultNotFound       = sdkerrors.Register(ModuleName, BaseErrorCode+3, "vault not found")
	ErrUnauthorized        = sdkerrors.Register(ModuleName, BaseErrorCode+4, "unauthorized")
	ErrInvalidDestinations = sdkerrors.Register(ModuleName, BaseErrorCode+5, "invalid destinations")
	ErrInvalidPageSize     = sdkerrors.Register(ModuleName, BaseErrorCode+6, "invalid page size")
	ErrInvalidFunds        = sdkerrors.Register(ModuleName, BaseErrorCode+7, "invalid funds")
	ErrInvalidParams       = sdkerrors.Register(ModuleName, BaseErrorCode+8, "invalid params")
	ErrNotDcaPlusVault     = sdkerrors.Register(ModuleName, BaseErrorCode+9, "vault is not a dca plus vault")
	ErrEventNotFound       = sdkerrors.Register(ModuleName, BaseErrorCode+10, "event not found")
)

// Execution errors
var (
	ErrPaused                 = sdkerrors.Register(ModuleName, BaseErrorCode+20, "module is paused")
	ErrVaultCancelled         = sdkerrors.Register(ModuleName, BaseErrorCode+21, "vault is cancelled")
	ErrVaultNotExecutable     = sdkerrors.Register(ModuleName, BaseErrorCode+22, "vault is not available for execution")
	ErrTriggerNotFound        = sdkerrors.Register(ModuleName, BaseErrorCode+23, "trigger not found")
	ErrTargetTimeNotElapsed   = sdkerrors.Register(ModuleName, BaseErrorCode+24, "trigger target time has not elapsed")
	ErrTargetPriceNotMet      = sdkerrors.Register(ModuleName, BaseErrorCode+25, "target price has not been met")
	ErrSwapAmountTooSmall     = sdkerrors.Register(ModuleName, BaseErrorCode+26, "swap amount is below the minimum")
	ErrAdjustmentModelMissing = sdkerrors.Register(ModuleName, BaseErrorCode+27, "swap adjustment model missing")
)

// Continuation protocol errors
var (
	ErrExecutionInProgress = sdkerrors.Register(ModuleName, BaseErrorCode+40, "execution already in progress")
	ErrNoCacheEntry        = sdkerrors.Register(ModuleName, BaseErrorCode+41, "no execution cache entry")
	ErrUnexpectedReply     = sdkerrors.Register(ModuleName, BaseErrorCode+42, "unexpected reply")
	ErrArithmetic          = sdkerrors.Register(ModuleName, BaseErrorCode+43, "arithmetic error")
)
