package core

import "strconv"

// ErrorCode int
type ErrorCode int

const (
	// ErrUnknown unknown
	ErrUnknown ErrorCode = 100000
	// ErrInvalidArgument invalid argument
	ErrInvalidArgument ErrorCode = 100001

	// ErrBankNotFound no bank
	ErrBankNotFound ErrorCode = 100100
	// ErrObligationNotFound no obligation
	ErrObligationNotFound ErrorCode = 100101
	// ErrInvalidBankConfig bank config out of range
	ErrInvalidBankConfig ErrorCode = 100102
	// ErrBankPaused bank is paused
	ErrBankPaused ErrorCode = 100103
	// ErrBankReduceOnly bank only accepts repay and withdraw
	ErrBankReduceOnly ErrorCode = 100104
	// ErrBankAssetCapacityExceeded deposit limit reached
	ErrBankAssetCapacityExceeded ErrorCode = 100105
	// ErrBankLiabilityCapacityExceeded borrow limit reached
	ErrBankLiabilityCapacityExceeded ErrorCode = 100106
	// ErrInsufficientLiquidity vault can not cover the amount
	ErrInsufficientLiquidity ErrorCode = 100107
	// ErrInsufficientBalance balance can not cover the amount
	ErrInsufficientBalance ErrorCode = 100108

	// ErrPoolIdentityMismatch supplied stake pool is not the configured one
	ErrPoolIdentityMismatch ErrorCode = 100200
	// ErrStaleOrInvalidPoolState stake pool state is inconsistent or older than the cache
	ErrStaleOrInvalidPoolState ErrorCode = 100201

	// ErrNoFreeSlot all balance slots are occupied
	ErrNoFreeSlot ErrorCode = 100300
	// ErrIllegalBalanceState balance can not take the requested change
	ErrIllegalBalanceState ErrorCode = 100301
	// ErrNoLiabilityFound no liability to repay
	ErrNoLiabilityFound ErrorCode = 100302

	// ErrRiskEngineRejection insufficient collateral
	ErrRiskEngineRejection ErrorCode = 100400
	// ErrOracleUnusable price reading can not be used for valuation
	ErrOracleUnusable ErrorCode = 100401
	// ErrIsolatedAccountIllegalState isolated liability mixed with other liabilities
	ErrIsolatedAccountIllegalState ErrorCode = 100402

	// ErrConcurrentModification entity changed since it was read
	ErrConcurrentModification ErrorCode = 100500

	// ErrExternalOrderingViolation external refreshes missing or out of order
	ErrExternalOrderingViolation ErrorCode = 100600
	// ErrExternalStateMismatch external position disagrees with the wrapped balance
	ErrExternalStateMismatch ErrorCode = 100601
)

var errorNames = map[ErrorCode]string{
	ErrUnknown:                       "unknown",
	ErrInvalidArgument:               "invalid argument",
	ErrBankNotFound:                  "bank not found",
	ErrObligationNotFound:            "obligation not found",
	ErrInvalidBankConfig:             "invalid bank config",
	ErrBankPaused:                    "bank paused",
	ErrBankReduceOnly:                "bank reduce only",
	ErrBankAssetCapacityExceeded:     "bank asset capacity exceeded",
	ErrBankLiabilityCapacityExceeded: "bank liability capacity exceeded",
	ErrInsufficientLiquidity:         "insufficient liquidity",
	ErrInsufficientBalance:           "insufficient balance",
	ErrPoolIdentityMismatch:          "pool identity mismatch",
	ErrStaleOrInvalidPoolState:       "stale or invalid pool state",
	ErrNoFreeSlot:                    "no free slot",
	ErrIllegalBalanceState:           "illegal balance state",
	ErrNoLiabilityFound:              "no liability found",
	ErrRiskEngineRejection:           "risk engine rejection",
	ErrOracleUnusable:                "oracle unusable",
	ErrIsolatedAccountIllegalState:   "isolated account illegal state",
	ErrConcurrentModification:        "concurrent modification",
	ErrExternalOrderingViolation:     "external ordering violation",
	ErrExternalStateMismatch:         "external state mismatch",
}

func (e ErrorCode) String() string {
	return strconv.Itoa(int(e))
}

// Name human readable name of the code
func (e ErrorCode) Name() string {
	if name, ok := errorNames[e]; ok {
		return name
	}

	return errorNames[ErrUnknown]
}

func (e ErrorCode) Error() string {
	return e.String() + " " + e.Name()
}
