package token

import (
	"github.com/gogo/protobuf/proto"
	"github.com/iov-one/treasury"
	"github.com/iov-one/treasury/errors"
	"github.com/iov-one/treasury/orm"
)

const (
	// AccountBucketName is where the balances are stored.
	AccountBucketName = "token_account"
	// AllowanceBucketName is where the spend allowances are stored.
	AllowanceBucketName = "token_allowance"

	supplyKey = "_token:supply"
)

// Amount is a single unsigned quantity of tokens. It is used for both
// balances and allowances.
type Amount struct {
	Value uint64 `protobuf:"varint,1,opt,name=value,proto3" json:"value,omitempty"`
}

var _ orm.Model = (*Amount)(nil)

// Validate is always successful.
func (a *Amount) Validate() error {
	return nil
}

func (a *Amount) Marshal() ([]byte, error) {
	return orm.MarshalMessage((*amountMsg)(a))
}

func (a *Amount) Unmarshal(raw []byte) error {
	return orm.UnmarshalMessage(raw, (*amountMsg)(a))
}

type amountMsg Amount

func (m *amountMsg) Reset()         { *m = amountMsg{} }
func (m *amountMsg) String() string { return proto.CompactTextString(m) }
func (*amountMsg) ProtoMessage()    {}

// AmountBucket stores amounts under an arbitrary key.
type AmountBucket struct {
	orm.ModelBucket
}

// Get returns the stored amount, or zero if nothing was stored under the
// key.
func (b AmountBucket) Get(db treasury.ReadOnlyKVStore, key []byte) (uint64, error) {
	ok, err := b.Has(db, key)
	if err != nil || !ok {
		return 0, err
	}
	var a Amount
	if err := b.One(db, key, &a); err != nil {
		return 0, err
	}
	return a.Value, nil
}

// Set stores the amount. A zero amount removes the entry.
func (b AmountBucket) Set(db treasury.KVStore, key []byte, value uint64) error {
	if value == 0 {
		ok, err := b.Has(db, key)
		if err != nil || !ok {
			return err
		}
		return b.Delete(db, key)
	}
	return b.Put(db, key, &Amount{Value: value})
}

// NewAccountBucket returns a bucket of balances keyed by owner address.
func NewAccountBucket() AmountBucket {
	return AmountBucket{ModelBucket: orm.NewModelBucket(AccountBucketName)}
}

// NewAllowanceBucket returns a bucket of allowances keyed by AllowanceKey.
func NewAllowanceBucket() AmountBucket {
	return AmountBucket{ModelBucket: orm.NewModelBucket(AllowanceBucketName)}
}

// AllowanceKey returns the key an allowance granted by owner to spender is
// stored under.
func AllowanceKey(owner, spender treasury.Address) []byte {
	key := make([]byte, 0, len(owner)+len(spender))
	key = append(key, owner...)
	return append(key, spender...)
}

// Configuration describes the token. It is stored once, at genesis.
type Configuration struct {
	Name     string           `protobuf:"bytes,1,opt,name=name,proto3" json:"name,omitempty"`
	Symbol   string           `protobuf:"bytes,2,opt,name=symbol,proto3" json:"symbol,omitempty"`
	Decimals uint64           `protobuf:"varint,3,opt,name=decimals,proto3" json:"decimals,omitempty"`
	Minter   treasury.Address `protobuf:"bytes,4,opt,name=minter,proto3" json:"minter,omitempty"`
}

// Validate returns an error if the configuration cannot describe a token.
func (c *Configuration) Validate() error {
	if c.Symbol == "" {
		return errors.Wrap(errors.ErrEmpty, "symbol")
	}
	if c.Decimals > 18 {
		return errors.Wrapf(errors.ErrInvalidInput, "decimals %d", c.Decimals)
	}
	if len(c.Minter) != 0 {
		if err := c.Minter.Validate(); err != nil {
			return errors.Wrap(err, "minter")
		}
	}
	return nil
}

func (c *Configuration) Marshal() ([]byte, error) {
	return orm.MarshalMessage((*configurationMsg)(c))
}

func (c *Configuration) Unmarshal(raw []byte) error {
	return orm.UnmarshalMessage(raw, (*configurationMsg)(c))
}

type configurationMsg Configuration

func (m *configurationMsg) Reset()         { *m = configurationMsg{} }
func (m *configurationMsg) String() string { return proto.CompactTextString(m) }
func (*configurationMsg) ProtoMessage()    {}
