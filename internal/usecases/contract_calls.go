package usecases

import (
	"fmt"

	"github.com/stellar/go/xdr"
	"lotellar.backend/internal/domain/entities"
	domainerrors "lotellar.backend/internal/domain/errors"
	"lotellar.backend/internal/infrastructure/blockchain"
)

// contractSignatures fixes the argument shape of every lottery contract entry point
var contractSignatures = map[entities.ContractFunction][]blockchain.ArgKind{
	entities.FnCreateLottery: {
		blockchain.ArgAddress, // creator
		blockchain.ArgString,  // name
		blockchain.ArgI128,    // entry_fee in stroops
		blockchain.ArgU64,     // duration in seconds
		blockchain.ArgU32,     // max_participants
	},
	entities.FnEnterLottery: {
		blockchain.ArgAddress, // participant
		blockchain.ArgU32,     // lottery_id
	},
	entities.FnGetAllLotteries:       {},
	entities.FnGetCompletedLotteries: {},
}

// encodeContractArgs type-tags args for fn. Unknown functions fail with
// ErrUnknownFunction before anything touches the network.
func encodeContractArgs(fn entities.ContractFunction, args []interface{}) ([]xdr.ScVal, error) {
	kinds, ok := contractSignatures[fn]
	if !ok {
		return nil, fmt.Errorf("%w: %q", domainerrors.ErrUnknownFunction, fn)
	}
	if len(args) != len(kinds) {
		return nil, domainerrors.BadRequest(fmt.Sprintf("%s expects %d arguments, got %d", fn, len(kinds), len(args)))
	}
	out := make([]xdr.ScVal, 0, len(kinds))
	for i, kind := range kinds {
		v, err := blockchain.EncodeArg(kind, args[i])
		if err != nil {
			return nil, domainerrors.BadRequest(fmt.Sprintf("%s argument %d: %v", fn, i, err))
		}
		out = append(out, v)
	}
	return out, nil
}
