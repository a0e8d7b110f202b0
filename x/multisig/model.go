package multisig

import (
	"strings"

	"github.com/gogo/protobuf/proto"
	"github.com/iov-one/treasury"
	"github.com/iov-one/treasury/errors"
	"github.com/iov-one/treasury/orm"
)

const (
	// OwnerBucketName is where the owner set is stored.
	OwnerBucketName = "msig_owner"
	// ProposalBucketName is where the proposals are stored.
	ProposalBucketName = "msig_proposal"
	// ReadyBucketName is where the ready index entries are stored.
	ReadyBucketName = "msig_ready"
)

// Principal is the address of the engine itself. The funding principal must
// allow it to spend tokens, so that token proposals can be executed.
var Principal = treasury.NewAddress([]byte("multisig/engine"))

// AssetKind tells which ledger a proposal moves funds on.
type AssetKind uint64

const (
	// NativeCurrency proposals are paid with the funds attached to the
	// execution.
	NativeCurrency AssetKind = 0
	// FungibleToken proposals are paid by the funding principal through the
	// token ledger.
	FungibleToken AssetKind = 1
)

// Validate returns an error for unknown asset kinds.
func (k AssetKind) Validate() error {
	switch k {
	case NativeCurrency, FungibleToken:
		return nil
	}
	return errors.Wrapf(errors.ErrInvalidInput, "asset kind %d", uint64(k))
}

func (k AssetKind) String() string {
	switch k {
	case NativeCurrency:
		return "native"
	case FungibleToken:
		return "token"
	}
	return "unknown"
}

// ParseAssetKind returns the asset kind of given name.
func ParseAssetKind(s string) (AssetKind, error) {
	switch strings.ToLower(s) {
	case "native", "0":
		return NativeCurrency, nil
	case "token", "1":
		return FungibleToken, nil
	}
	return 0, errors.Wrapf(errors.ErrInvalidInput, "asset kind %q", s)
}

// Proposal is a request to move Amount of given asset to Target.
type Proposal struct {
	ID        uint64           `protobuf:"varint,1,opt,name=id,proto3" json:"id,omitempty"`
	Submitter treasury.Address `protobuf:"bytes,2,opt,name=submitter,proto3" json:"submitter,omitempty"`
	Target    treasury.Address `protobuf:"bytes,3,opt,name=target,proto3" json:"target,omitempty"`
	Amount    uint64           `protobuf:"varint,4,opt,name=amount,proto3" json:"amount,omitempty"`
	Kind      AssetKind        `protobuf:"varint,5,opt,name=kind,proto3" json:"kind,omitempty"`
	// Approvals holds the distinct approvers, in approval order.
	Approvals []treasury.Address `protobuf:"bytes,6,rep,name=approvals,proto3" json:"approvals,omitempty"`
	Executed  bool               `protobuf:"varint,7,opt,name=executed,proto3" json:"executed,omitempty"`
	// Executor is set together with Executed.
	Executor treasury.Address `protobuf:"bytes,8,opt,name=executor,proto3" json:"executor,omitempty"`
	// ReadyPos is the position in the ready index, zero when the proposal
	// is not ready.
	ReadyPos uint64 `protobuf:"varint,9,opt,name=ready_pos,json=readyPos,proto3" json:"ready_pos,omitempty"`
}

var _ orm.Model = (*Proposal)(nil)

// Validate returns an error if the proposal breaks any of its invariants.
func (p *Proposal) Validate() error {
	if p.ID == 0 {
		return errors.Wrap(errors.ErrInvalidModel, "missing id")
	}
	if err := p.Target.Validate(); err != nil {
		return errors.Wrap(ErrInvalidPrincipal, "target")
	}
	if p.Amount == 0 {
		return errors.Wrap(errors.ErrInvalidAmount, "zero amount")
	}
	if err := p.Kind.Validate(); err != nil {
		return err
	}
	for i, a := range p.Approvals {
		if err := a.Validate(); err != nil {
			return errors.Wrapf(errors.ErrInvalidModel, "approval #%d", i)
		}
		for _, b := range p.Approvals[:i] {
			if a.Equals(b) {
				return errors.Wrapf(errors.ErrInvalidModel, "duplicated approval %s", a)
			}
		}
	}
	if p.Executed && p.ReadyPos != 0 {
		return errors.Wrap(errors.ErrInvalidModel, "executed proposal in the ready index")
	}
	return nil
}

// HasApproval returns true if given principal approved the proposal.
func (p *Proposal) HasApproval(a treasury.Address) bool {
	return p.approvalIndex(a) >= 0
}

func (p *Proposal) approvalIndex(a treasury.Address) int {
	for i, b := range p.Approvals {
		if a.Equals(b) {
			return i
		}
	}
	return -1
}

func (p *Proposal) Marshal() ([]byte, error) {
	return orm.MarshalMessage((*proposalMsg)(p))
}

func (p *Proposal) Unmarshal(raw []byte) error {
	return orm.UnmarshalMessage(raw, (*proposalMsg)(p))
}

type proposalMsg Proposal

func (m *proposalMsg) Reset()         { *m = proposalMsg{} }
func (m *proposalMsg) String() string { return proto.CompactTextString(m) }
func (*proposalMsg) ProtoMessage()    {}

// Configuration is the engine setup. It is written once, when the engine is
// initialized, and never changes afterwards.
type Configuration struct {
	Threshold uint64 `protobuf:"varint,1,opt,name=threshold,proto3" json:"threshold,omitempty"`
	// Funder is the principal whose token allowance the engine spends.
	Funder treasury.Address `protobuf:"bytes,2,opt,name=funder,proto3" json:"funder,omitempty"`
	// AutoApprove records the approval of the submitter when a proposal
	// is submitted.
	AutoApprove bool `protobuf:"varint,3,opt,name=auto_approve,json=autoApprove,proto3" json:"auto_approve,omitempty"`
}

// Validate returns an error if the configuration is not usable.
func (c *Configuration) Validate() error {
	if c.Threshold == 0 {
		return errors.Wrap(errors.ErrInvalidInput, "threshold must be at least 1")
	}
	if err := c.Funder.Validate(); err != nil {
		return errors.Wrap(ErrInvalidPrincipal, "funder")
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

// owner is the record kept for every member of the owner set.
type owner struct {
	// Position is the order in which the owner joined, starting at 1.
	Position uint64 `protobuf:"varint,1,opt,name=position,proto3" json:"position,omitempty"`
}

func (o *owner) Validate() error {
	if o.Position == 0 {
		return errors.Wrap(errors.ErrInvalidModel, "missing position")
	}
	return nil
}

func (o *owner) Marshal() ([]byte, error) {
	return orm.MarshalMessage((*ownerMsg)(o))
}

func (o *owner) Unmarshal(raw []byte) error {
	return orm.UnmarshalMessage(raw, (*ownerMsg)(o))
}

type ownerMsg owner

func (m *ownerMsg) Reset()         { *m = ownerMsg{} }
func (m *ownerMsg) String() string { return proto.CompactTextString(m) }
func (*ownerMsg) ProtoMessage()    {}

// readyEntry is a single ready index element.
type readyEntry struct {
	ProposalID uint64 `protobuf:"varint,1,opt,name=proposal_id,json=proposalId,proto3" json:"proposal_id,omitempty"`
}

func (r *readyEntry) Validate() error {
	if r.ProposalID == 0 {
		return errors.Wrap(errors.ErrInvalidModel, "missing proposal id")
	}
	return nil
}

func (r *readyEntry) Marshal() ([]byte, error) {
	return orm.MarshalMessage((*readyEntryMsg)(r))
}

func (r *readyEntry) Unmarshal(raw []byte) error {
	return orm.UnmarshalMessage(raw, (*readyEntryMsg)(r))
}

type readyEntryMsg readyEntry

func (m *readyEntryMsg) Reset()         { *m = readyEntryMsg{} }
func (m *readyEntryMsg) String() string { return proto.CompactTextString(m) }
func (*readyEntryMsg) ProtoMessage()    {}
