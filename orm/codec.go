package orm

import (
	"github.com/gogo/protobuf/proto"
	"github.com/iov-one/treasury/errors"
)

// MarshalMessage serializes msg in the protobuf wire format, as described by
// the protobuf struct tags of its fields.
//
// Models call it from their Marshal method with a conversion of themselves
// to a wire type that has no Marshal method, the way generated code keeps a
// separate message type, otherwise proto would call back into the model.
func MarshalMessage(msg proto.Message) ([]byte, error) {
	raw, err := proto.Marshal(msg)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrInvalidModel, "cannot marshal %T: %s", msg, err)
	}
	if raw == nil {
		// A message with only zero values has no fields. Keep it
		// distinguishable from a missing value.
		raw = []byte{}
	}
	return raw, nil
}

// UnmarshalMessage resets msg and fills it with the protobuf encoded raw.
func UnmarshalMessage(raw []byte, msg proto.Message) error {
	if err := proto.Unmarshal(raw, msg); err != nil {
		return errors.Wrapf(errors.ErrInvalidInput, "cannot unmarshal %T: %s", msg, err)
	}
	return nil
}
