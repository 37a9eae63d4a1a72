package governor

import (
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/trebuchet-org/treb-gov/internal/domain/models"
)

var proposalArgs = func() abi.Arguments {
	addresses, _ := abi.NewType("address[]", "", nil)
	values, _ := abi.NewType("uint256[]", "", nil)
	payloads, _ := abi.NewType("bytes[]", "", nil)
	hash, _ := abi.NewType("bytes32", "", nil)
	return abi.Arguments{{Type: addresses}, {Type: values}, {Type: payloads}, {Type: hash}}
}()

// DescriptionHash is keccak256 of the description bytes
func DescriptionHash(description string) common.Hash {
	return crypto.Keccak256Hash([]byte(description))
}

// HashProposal is keccak256(abi.encode(targets, values, payloads, descriptionHash)).
// Identical proposals therefore share an id.
func HashProposal(calls []models.Call, descriptionHash common.Hash) common.Hash {
	targets, values, payloads := models.SplitCalls(calls)
	for i := range payloads {
		if payloads[i] == nil {
			payloads[i] = []byte{}
		}
	}
	encoded, err := proposalArgs.Pack(targets, values, payloads, [32]byte(descriptionHash))
	if err != nil {
		panic(err)
	}
	return crypto.Keccak256Hash(encoded)
}

// TimelockSalt binds an operation to this governor: bytes20(governor) xor descriptionHash
func TimelockSalt(governor common.Address, descriptionHash common.Hash) common.Hash {
	salt := descriptionHash
	for i := 0; i < common.AddressLength; i++ {
		salt[i] ^= governor[i]
	}
	return salt
}

const proposerMarker = "#proposer=0x"

// restrictedProposer extracts the account named by a trailing "#proposer=0x..."
// suffix. Malformed suffixes do not restrict anything.
func restrictedProposer(description string) (common.Address, bool) {
	n := len(proposerMarker) + 2*common.AddressLength
	if len(description) < n {
		return common.Address{}, false
	}
	suffix := description[len(description)-n:]
	if !strings.HasPrefix(suffix, proposerMarker) {
		return common.Address{}, false
	}
	hexPart := suffix[len(proposerMarker):]
	for _, r := range hexPart {
		if !strings.ContainsRune("0123456789abcdefABCDEF", r) {
			return common.Address{}, false
		}
	}
	return common.HexToAddress(hexPart), true
}
