package cash

import (
	"github.com/gogo/protobuf/proto"
	"github.com/iov-one/treasury"
	"github.com/iov-one/treasury/errors"
	"github.com/iov-one/treasury/orm"
)

// BucketName is where we store the wallets
const BucketName = "cash"

// Wallet holds the native currency balance of a single principal.
type Wallet struct {
	Balance uint64 `protobuf:"varint,1,opt,name=balance,proto3" json:"balance,omitempty"`
}

var _ orm.Model = (*Wallet)(nil)

// Validate is always successful, any balance is a valid one.
func (w *Wallet) Validate() error {
	return nil
}

func (w *Wallet) Marshal() ([]byte, error) {
	return orm.MarshalMessage((*walletMsg)(w))
}

func (w *Wallet) Unmarshal(raw []byte) error {
	return orm.UnmarshalMessage(raw, (*walletMsg)(w))
}

// walletMsg is the wire form of Wallet.
type walletMsg Wallet

func (m *walletMsg) Reset()         { *m = walletMsg{} }
func (m *walletMsg) String() string { return proto.CompactTextString(m) }
func (*walletMsg) ProtoMessage()    {}

// WalletBucket stores wallets by owner address.
type WalletBucket struct {
	orm.ModelBucket
}

// NewBucket returns a bucket for storing wallets.
func NewBucket() WalletBucket {
	return WalletBucket{
		ModelBucket: orm.NewModelBucket(BucketName),
	}
}

// GetOrEmpty returns the wallet of given principal, or an empty one if the
// principal never held any funds.
func (b WalletBucket) GetOrEmpty(db treasury.ReadOnlyKVStore, owner treasury.Address) (*Wallet, error) {
	var w Wallet
	switch err := b.One(db, owner, &w); {
	case err == nil:
		return &w, nil
	case errors.ErrNotFound.Is(err):
		return &Wallet{}, nil
	default:
		return nil, err
	}
}

// Save stores the wallet of given principal. A drained wallet is removed, so
// that the store only holds principals with funds.
func (b WalletBucket) Save(db treasury.KVStore, owner treasury.Address, w *Wallet) error {
	if w.Balance == 0 {
		ok, err := b.Has(db, owner)
		if err != nil || !ok {
			return err
		}
		return b.Delete(db, owner)
	}
	return b.Put(db, owner, w)
}
