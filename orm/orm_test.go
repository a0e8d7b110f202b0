package orm

import (
	"testing"

	"github.com/gogo/protobuf/proto"
	"github.com/iov-one/treasury/errors"
	"github.com/iov-one/treasury/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// counter is a minimal model used to exercise the bucket and the codec.
type counter struct {
	Name  string   `protobuf:"bytes,1,opt,name=name,proto3" json:"name,omitempty"`
	Count uint64   `protobuf:"varint,2,opt,name=count,proto3" json:"count,omitempty"`
	Tags  [][]byte `protobuf:"bytes,3,rep,name=tags,proto3" json:"tags,omitempty"`
	Done  bool     `protobuf:"varint,4,opt,name=done,proto3" json:"done,omitempty"`
}

func (c *counter) Validate() error {
	if c.Name == "" {
		return errors.Wrap(errors.ErrEmpty, "name")
	}
	return nil
}

func (c *counter) Marshal() ([]byte, error) {
	return MarshalMessage((*counterMsg)(c))
}

func (c *counter) Unmarshal(raw []byte) error {
	return UnmarshalMessage(raw, (*counterMsg)(c))
}

type counterMsg counter

func (m *counterMsg) Reset()         { *m = counterMsg{} }
func (m *counterMsg) String() string { return proto.CompactTextString(m) }
func (*counterMsg) ProtoMessage()    {}

func TestSequence(t *testing.T) {
	db := store.MemStore()
	seq := NewSequence("proposals", "id")

	latest, err := seq.Latest(db)
	require.NoError(t, err)
	assert.EqualValues(t, 0, latest)

	for want := int64(1); want <= 3; want++ {
		got, err := seq.NextInt(db)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}

	raw, err := seq.NextVal(db)
	require.NoError(t, err)
	assert.Equal(t, EncodeSequence(4), raw)

	// a discarded cache wrap does not consume a value
	cache := db.CacheWrap()
	_, err = seq.NextInt(cache)
	require.NoError(t, err)
	cache.Discard()
	latest, err = seq.Latest(db)
	require.NoError(t, err)
	assert.EqualValues(t, 4, latest)

	_, err = DecodeSequence([]byte{1, 2})
	assert.True(t, errors.ErrInvalidInput.Is(err))
}

func TestModelBucket(t *testing.T) {
	db := store.MemStore()
	b := NewModelBucket("counters")

	var c counter
	err := b.One(db, []byte("a"), &c)
	assert.True(t, errors.ErrNotFound.Is(err))

	err = b.Put(db, []byte("a"), &counter{})
	assert.True(t, errors.ErrEmpty.Is(err))

	want := &counter{Name: "first", Count: 7, Tags: [][]byte{[]byte("x"), {}, []byte("z")}, Done: true}
	require.NoError(t, b.Put(db, []byte("a"), want))
	require.NoError(t, b.Put(db, []byte("b"), &counter{Name: "second"}))

	require.NoError(t, b.One(db, []byte("a"), &c))
	assert.Equal(t, want, &c)

	ok, err := b.Has(db, []byte("b"))
	require.NoError(t, err)
	assert.True(t, ok)

	keys, err := b.Keys(db)
	require.NoError(t, err)
	assert.Equal(t, [][]byte{[]byte("a"), []byte("b")}, keys)

	require.NoError(t, b.Delete(db, []byte("a")))
	assert.True(t, errors.ErrNotFound.Is(b.Delete(db, []byte("a"))))
}

func TestIllegalBucketName(t *testing.T) {
	assert.Panics(t, func() { NewModelBucket("Bad Name") })
}

func TestCodec(t *testing.T) {
	raw, err := (&counter{Name: "a", Count: 150, Done: true}).Marshal()
	require.NoError(t, err)
	assert.Equal(t, []byte{0x0a, 0x01, 'a', 0x10, 0x96, 0x01, 0x20, 0x01}, raw)

	// zero values are left out, but the result is still a value
	raw, err = (&counter{}).Marshal()
	require.NoError(t, err)
	assert.NotNil(t, raw)
	assert.Empty(t, raw)

	c := counter{Name: "stale", Count: 3}
	require.NoError(t, c.Unmarshal(raw))
	assert.Equal(t, counter{}, c)

	// length delimited field claiming more bytes than available
	err = c.Unmarshal([]byte{0x0a, 0x05, 'a'})
	assert.True(t, errors.ErrInvalidInput.Is(err))
}

func TestPrefixEnd(t *testing.T) {
	assert.Equal(t, []byte("ab"), PrefixEnd([]byte("aa")))
	assert.Equal(t, []byte{0x02}, PrefixEnd([]byte{0x01, 0xff}))
	assert.Nil(t, PrefixEnd([]byte{0xff, 0xff}))
}

func TestModelBucketIterate(t *testing.T) {
	db := store.MemStore()
	b := NewModelBucket("counters")
	for i, name := range []string{"c", "a", "b"} {
		require.NoError(t, b.Put(db, []byte(name), &counter{Name: name, Count: uint64(i)}))
	}

	var (
		c     counter
		names []string
	)
	err := b.Iterate(db, &c, func(key []byte) (bool, error) {
		names = append(names, c.Name)
		return len(names) < 2, nil
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, names)
}
