package types

import (
	"errors"
	"fmt"
)

// Sentinel errors for resolver failures.
var (
	// ErrPairNotFound indicates the symbol is not in the protocol's pair registry.
	ErrPairNotFound = errors.New("pair not found")

	// ErrPriceUnavailable indicates the price feed returned no update for the symbol.
	ErrPriceUnavailable = errors.New("price unavailable")
)

// ResolutionError represents a pair or price lookup failure.
// It propagates and aborts the build that required it.
type ResolutionError struct {
	Symbol string
	Err    error
}

func (e *ResolutionError) Error() string {
	return fmt.Sprintf("resolve %s: %v", e.Symbol, e.Err)
}

func (e *ResolutionError) Unwrap() error { return e.Err }

// BuildError represents a failed trade-construction call.
type BuildError struct {
	Pair string
	Err  error
}

func (e *BuildError) Error() string {
	if e.Pair != "" {
		return fmt.Sprintf("build trade for %s: %v", e.Pair, e.Err)
	}

	return fmt.Sprintf("build trade: %v", e.Err)
}

func (e *BuildError) Unwrap() error { return e.Err }

// SigningError indicates the remote signer was unreachable or rejected the
// transaction. Caught at the pipeline boundary and converted to a failed
// TradeResult.
type SigningError struct {
	Wallet string
	Err    error
}

func (e *SigningError) Error() string {
	return fmt.Sprintf("sign transaction for %s: %v", e.Wallet, e.Err)
}

func (e *SigningError) Unwrap() error { return e.Err }

// SubmissionError indicates the chain rejected the transaction or the RPC
// call failed. Caught at the pipeline boundary like SigningError.
type SubmissionError struct {
	Err error
}

func (e *SubmissionError) Error() string {
	return fmt.Sprintf("submit transaction: %v", e.Err)
}

func (e *SubmissionError) Unwrap() error { return e.Err }
