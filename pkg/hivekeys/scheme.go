package hivekeys

import (
	"fmt"
	"math"
)

// RecoveryScheme is the offset a signer adds to the recovery parity before
// storing it as the recovery marker V.
type RecoveryScheme uint64

const (
	// SchemeRaw stores the bare parity, 0 or 1.
	SchemeRaw RecoveryScheme = 0

	// SchemeElectrum stores 27 or 28, the Bitcoin message signing range.
	SchemeElectrum RecoveryScheme = 27

	// SchemeCompact stores 31 or 32, Electrum plus the compressed key flag.
	// Hive transaction signatures use it.
	SchemeCompact RecoveryScheme = 31
)

// SchemeChainID returns the replay-protected scheme 35 + 2*chainID.
func SchemeChainID(chainID uint64) (RecoveryScheme, error) {
	if chainID > (math.MaxUint64-36)/2 {
		str := fmt.Sprintf("chain id %d overflows the recovery marker", chainID)
		return 0, makeError(ErrInvalidRecoveryMarker, str)
	}
	return RecoveryScheme(35 + 2*chainID), nil
}

// marker returns the recovery marker for parity under the scheme.
func (s RecoveryScheme) marker(parity byte) uint64 {
	return uint64(s) + uint64(parity)
}

// NormalizeRecoveryMarker maps a recovery marker from any supported scheme to
// the recovery parity:
//
//	0, 1   -> v
//	27, 28 -> v - 27
//	31, 32 -> v - 31
//	>= 35  -> (v - 1) mod 2
//
// Every other value is rejected with ErrInvalidRecoveryMarker.
func NormalizeRecoveryMarker(v uint64) (byte, error) {
	switch {
	case v <= 1:
		return byte(v), nil
	case v == 27 || v == 28:
		return byte(v - 27), nil
	case v == 31 || v == 32:
		return byte(v - 31), nil
	case v >= 35:
		return byte((v - 1) % 2), nil
	}
	str := fmt.Sprintf("recovery marker %d does not belong to a known scheme", v)
	return 0, makeError(ErrInvalidRecoveryMarker, str)
}
