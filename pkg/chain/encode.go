// Package chain anchors hazard report digests on an EVM chain. A report is
// reduced to a keccak256 digest of its ABI-encoded payload before it leaves
// the service, so no location or description data goes on-chain.
package chain

import (
	"fmt"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"

	"github.com/roadguard/reporter-middleware/pkg/report"
)

var anchorArguments abi.Arguments

func init() {
	bytes32Type, err := abi.NewType("bytes32", "", nil)
	if err != nil {
		panic(fmt.Sprintf("bytes32 abi type: %v", err))
	}
	int64Type, err := abi.NewType("int64", "", nil)
	if err != nil {
		panic(fmt.Sprintf("int64 abi type: %v", err))
	}
	uint8Type, err := abi.NewType("uint8", "", nil)
	if err != nil {
		panic(fmt.Sprintf("uint8 abi type: %v", err))
	}

	anchorArguments = abi.Arguments{
		{Name: "reporterCommitment", Type: bytes32Type},
		{Name: "scaledLat", Type: int64Type},
		{Name: "scaledLon", Type: int64Type},
		{Name: "hazardCode", Type: uint8Type},
	}
}

// EncodeAnchorPayload ABI-encodes the on-chain report payload:
// (bytes32 reporterCommitment, int64 scaledLat, int64 scaledLon, uint8 hazardCode).
func EncodeAnchorPayload(r *report.Report) ([]byte, error) {
	if r.ReporterCommitment == "" {
		return nil, fmt.Errorf("report %s has no reporter commitment", r.ID)
	}
	commitment := common.HexToHash(r.ReporterCommitment)

	payload, err := anchorArguments.Pack(commitment, r.ScaledLat, r.ScaledLon, r.Hazard.Code())
	if err != nil {
		return nil, fmt.Errorf("failed to encode anchor payload: %w", err)
	}
	return payload, nil
}

// ReportDigest returns the keccak256 digest of the report's anchor payload.
func ReportDigest(r *report.Report) (common.Hash, error) {
	payload, err := EncodeAnchorPayload(r)
	if err != nil {
		return common.Hash{}, err
	}
	return crypto.Keccak256Hash(payload), nil
}
