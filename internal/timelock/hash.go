package timelock

import (
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/trebuchet-org/treb-gov/internal/domain/models"
)

var (
	addressTy, _      = abi.NewType("address", "", nil)
	uint256Ty, _      = abi.NewType("uint256", "", nil)
	bytesTy, _        = abi.NewType("bytes", "", nil)
	bytes32Ty, _      = abi.NewType("bytes32", "", nil)
	addressArrayTy, _ = abi.NewType("address[]", "", nil)
	uint256ArrayTy, _ = abi.NewType("uint256[]", "", nil)
	bytesArrayTy, _   = abi.NewType("bytes[]", "", nil)

	singleArgs = abi.Arguments{{Type: addressTy}, {Type: uint256Ty}, {Type: bytesTy}, {Type: bytes32Ty}, {Type: bytes32Ty}}
	batchArgs  = abi.Arguments{{Type: addressArrayTy}, {Type: uint256ArrayTy}, {Type: bytesArrayTy}, {Type: bytes32Ty}, {Type: bytes32Ty}}
)

// HashOperation is keccak256(abi.encode(target, value, data, predecessor, salt))
func HashOperation(target common.Address, value *big.Int, data []byte, predecessor, salt common.Hash) common.Hash {
	if value == nil {
		value = new(big.Int)
	}
	if data == nil {
		data = []byte{}
	}
	encoded, err := singleArgs.Pack(target, value, data, [32]byte(predecessor), [32]byte(salt))
	if err != nil {
		// the argument types are fixed, packing cannot fail for valid inputs
		panic(err)
	}
	return crypto.Keccak256Hash(encoded)
}

// HashOperationBatch is keccak256(abi.encode(targets, values, payloads, predecessor, salt))
func HashOperationBatch(calls []models.Call, predecessor, salt common.Hash) common.Hash {
	targets, values, payloads := models.SplitCalls(calls)
	for i := range payloads {
		if payloads[i] == nil {
			payloads[i] = []byte{}
		}
	}
	encoded, err := batchArgs.Pack(targets, values, payloads, [32]byte(predecessor), [32]byte(salt))
	if err != nil {
		panic(err)
	}
	return crypto.Keccak256Hash(encoded)
}
