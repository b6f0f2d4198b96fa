package envelope_test

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"testing"

	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"evolve-generator/envelope"
	"evolve-generator/versioned"
	"evolve-generator/wire"
)

// Total mode, two versions.

type userV1 struct {
	Name string `json:"name" yaml:"name"`
}

type userV2 struct {
	FullName string  `json:"full_name" yaml:"full_name"`
	Email    *string `json:"email" yaml:"email"`
}

type user struct {
	FullName string
	Email    *string
}

func userV1ToV2(v userV1) userV2 { return userV2{FullName: v.Name} }
func userV2ToUser(v userV2) user { return user(v) }
func userToV2(u *user) userV2    { return userV2(*u) }
func strPtr(s string) *string    { return &s }

func userCodec(t *testing.T, transparent bool, opts ...envelope.Option) *envelope.Codec[user] {
	t.Helper()

	chain, err := versioned.Define[user](
		versioned.Config{Name: "User", Mode: versioned.KeywordInfallible, Transparent: transparent},
		userToV2,
		userV1ToV2, userV2ToUser,
	)
	require.NoError(t, err)

	return envelope.New(chain, wire.JSON(), opts...)
}

func TestCodec_DecodeHistoricalAndCurrent(t *testing.T) {
	codec := userCodec(t, false)

	e, err := codec.Decode([]byte(`{"_version":"1","name":"Alice"}`))
	require.NoError(t, err)
	assert.Equal(t, 1, e.Version())
	assert.Equal(t, 1, codec.Version(e))
	assert.False(t, e.IsCurrent())
	assert.False(t, codec.IsCurrent(e))
	assert.Equal(t, userV1{Name: "Alice"}, e.Payload())

	alice, err := codec.ToDomain(e)
	require.NoError(t, err)
	assert.Equal(t, user{FullName: "Alice"}, alice)

	e, err = codec.Decode([]byte(`{"_version":"2","full_name":"Bob","email":"bob@example.com"}`))
	require.NoError(t, err)
	assert.True(t, e.IsCurrent())

	bob, err := codec.ToDomain(e)
	require.NoError(t, err)
	assert.Equal(t, user{FullName: "Bob", Email: strPtr("bob@example.com")}, bob)
}

func TestCodec_FromDomainIsAlwaysCurrent(t *testing.T) {
	codec := userCodec(t, false)

	for _, u := range []user{{}, {FullName: "Carol"}, {FullName: "Dan", Email: strPtr("d@x")}} {
		e := codec.FromDomain(&u)
		assert.Equal(t, codec.Current(), e.Version())
		assert.True(t, e.IsCurrent())
		assert.Equal(t, 2, e.Current())

		back, err := codec.ToDomain(e)
		require.NoError(t, err)
		assert.Equal(t, u, back)
	}
}

func TestCodec_EncodeWritesFlatObject(t *testing.T) {
	codec := userCodec(t, false)

	u := user{FullName: "Eve", Email: strPtr("eve@example.com")}
	data, err := codec.Store(&u)
	require.NoError(t, err)
	assert.JSONEq(t, `{"_version":"2","full_name":"Eve","email":"eve@example.com"}`, string(data))

	back, err := codec.Load(data)
	require.NoError(t, err)
	assert.Equal(t, u, back)
}

func TestCodec_EncodeHistoricalEnvelope(t *testing.T) {
	codec := userCodec(t, false)

	e, err := codec.Wrap(userV1{Name: "Old"})
	require.NoError(t, err)
	assert.Equal(t, 1, e.Version())

	data, err := codec.Encode(e)
	require.NoError(t, err)
	assert.JSONEq(t, `{"_version":"1","name":"Old"}`, string(data))
}

func TestCodec_Errors(t *testing.T) {
	codec := userCodec(t, false)

	for _, doc := range []string{
		`{"_version":"0","name":"x"}`,
		`{"_version":"3","name":"x"}`,
		`{"_version":"99"}`,
	} {
		_, err := codec.Decode([]byte(doc))
		require.ErrorIs(t, err, wire.ErrUnknownVersion, doc)

		var wireErr *wire.Error
		require.ErrorAs(t, err, &wireErr)
	}

	_, err := codec.Decode([]byte(`{"name":"x"}`))
	require.ErrorIs(t, err, wire.ErrMissingTag)

	_, err = codec.Decode([]byte(`{"_version":"2","full_name":42}`))
	var wireErr *wire.Error
	require.ErrorAs(t, err, &wireErr)

	_, err = codec.Wrap(user{})
	require.ErrorIs(t, err, envelope.ErrUnknownShape)

	_, err = codec.Encode(envelope.Envelope{})
	require.ErrorIs(t, err, envelope.ErrEmptyEnvelope)

	_, err = codec.ToDomain(envelope.Envelope{})
	require.ErrorIs(t, err, envelope.ErrEmptyEnvelope)

	_, err = codec.Transparent()
	require.ErrorIs(t, err, envelope.ErrNotTransparent)
}

// Fallible mode, three versions.

type itemV1 struct {
	Name  string  `json:"name"`
	Price float64 `json:"price"`
}

type itemV2 struct {
	Name       string `json:"name"`
	PriceCents int64  `json:"price_cents"`
}

type itemV3 struct {
	Name       string `json:"name"`
	PriceCents uint32 `json:"price_cents"`
}

type item struct {
	Name       string
	PriceCents uint32
}

var errNegative = errors.New("negative price")

type itemSteps struct {
	calls []int
}

func (s *itemSteps) v1ToV2(v itemV1) (itemV2, error) {
	s.calls = append(s.calls, 1)
	if math.IsNaN(v.Price) || math.IsInf(v.Price, 0) {
		return itemV2{}, fmt.Errorf("price must be finite, got %v", v.Price)
	}

	return itemV2{Name: v.Name, PriceCents: int64(math.Round(v.Price * 100))}, nil
}

func (s *itemSteps) v2ToV3(v itemV2) (itemV3, error) {
	s.calls = append(s.calls, 2)
	if v.PriceCents < 0 {
		return itemV3{}, errNegative
	}

	return itemV3{Name: v.Name, PriceCents: uint32(v.PriceCents)}, nil
}

func (s *itemSteps) v3ToItem(v itemV3) (item, error) {
	s.calls = append(s.calls, 3)
	return item(v), nil
}

func itemCodec(t *testing.T, opts ...envelope.Option) (*envelope.Codec[item], *itemSteps) {
	t.Helper()

	steps := &itemSteps{}
	chain, err := versioned.Define[item](
		versioned.Config{Name: "Item", Error: versioned.ErrorOf[error](), Transparent: true},
		func(i *item) itemV3 { return itemV3(*i) },
		steps.v1ToV2, steps.v2ToV3, steps.v3ToItem,
	)
	require.NoError(t, err)

	return envelope.New(chain, wire.JSON(), opts...), steps
}

func TestCodec_FallibleMigration(t *testing.T) {
	codec, steps := itemCodec(t)

	got, err := codec.Load([]byte(`{"_version":"1","name":"Widget","price":19.99}`))
	require.NoError(t, err)
	assert.Equal(t, item{Name: "Widget", PriceCents: 1999}, got)
	assert.Equal(t, []int{1, 2, 3}, steps.calls)

	steps.calls = nil
	_, err = codec.Load([]byte(`{"_version":"2","name":"Doohickey","price_cents":-500}`))
	require.ErrorIs(t, err, errNegative)
	assert.Equal(t, []int{2}, steps.calls, "chain must halt before the domain step")

	var migErr *versioned.MigrationError
	require.ErrorAs(t, err, &migErr)
	assert.Equal(t, 2, migErr.Step)
	assert.Equal(t, "Item", migErr.Domain)

	var wireErr *wire.Error
	assert.False(t, errors.As(err, &wireErr), "migration errors are not wire errors on the codec")
}

func TestTransparent_RoundTripAndUniformErrors(t *testing.T) {
	codec, _ := itemCodec(t)

	tr, err := codec.Transparent()
	require.NoError(t, err)

	in := item{Name: "Thingamajig", PriceCents: 2499}
	data, err := tr.Marshal(&in)
	require.NoError(t, err)

	var fields map[string]any
	require.NoError(t, json.Unmarshal(data, &fields))
	assert.Equal(t, map[string]any{"_version": "3", "name": "Thingamajig", "price_cents": float64(2499)}, fields)

	out, err := tr.Unmarshal(data)
	require.NoError(t, err)
	assert.Equal(t, in, out)

	out, err = tr.Unmarshal([]byte(`{"_version":"1","name":"Gadget","price":25}`))
	require.NoError(t, err)
	assert.Equal(t, item{Name: "Gadget", PriceCents: 2500}, out)

	for _, doc := range []string{
		`{"_version":"2","name":"x","price_cents":-1}`,
		`{"_version":"4","name":"x"}`,
		`not json`,
	} {
		_, err := tr.Unmarshal([]byte(doc))

		var wireErr *wire.Error
		require.ErrorAs(t, err, &wireErr, doc)
		assert.Equal(t, wire.OpDecode, wireErr.Op)
	}

	_, err = tr.Unmarshal([]byte(`{"_version":"2","name":"x","price_cents":-1}`))
	var migErr *versioned.MigrationError
	require.ErrorAs(t, err, &migErr)
	assert.True(t, strings.HasPrefix(err.Error(), "json decode: migrate Item: step 2"))
}

type memoV1 struct {
	Body string `json:"body"`
}

type memo struct {
	Body string
}

func TestTransparent_RewrapsNestedWireErrors(t *testing.T) {
	inner := &wire.Error{Format: "yaml", Op: wire.OpDecode, Err: errors.New("bad attachment")}
	chain, err := versioned.Define[memo](
		versioned.Config{Name: "Memo", Error: versioned.ErrorOf[error](), Transparent: true},
		func(m *memo) memoV1 { return memoV1(*m) },
		func(memoV1) (memo, error) { return memo{}, fmt.Errorf("attachment: %w", inner) },
	)
	require.NoError(t, err)

	tr, err := envelope.New(chain, wire.JSON()).Transparent()
	require.NoError(t, err)

	_, err = tr.Unmarshal([]byte(`{"_version":"1","body":"x"}`))
	require.IsType(t, &wire.Error{}, err)
	assert.Equal(t, "json", err.(*wire.Error).Format)

	var migErr *versioned.MigrationError
	require.ErrorAs(t, err, &migErr)
	assert.Equal(t, 1, migErr.Step)
	assert.ErrorIs(t, err, inner)
}

func TestCodec_LogsConversions(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	codec, _ := itemCodec(t, envelope.WithLogger(zap.New(core)))

	_, err := codec.Load([]byte(`{"_version":"1","name":"Widget","price":1}`))
	require.NoError(t, err)

	_, err = codec.Load([]byte(`{"_version":"2","name":"Widget","price_cents":-1}`))
	require.Error(t, err)

	assert.Equal(t, 2, logs.FilterMessage("decoded envelope").Len())
	assert.Equal(t, 1, logs.FilterMessage("migrated envelope").Len())

	warn := logs.FilterMessage("migration failed").All()
	require.Len(t, warn, 1)
	assert.Equal(t, zapcore.WarnLevel, warn[0].Level)
	assert.Equal(t, "Item", warn[0].ContextMap()["domain"])
	assert.Equal(t, "json", warn[0].ContextMap()["format"])
}

type mockObserver struct {
	mock.Mock
}

func (m *mockObserver) Decoded(domain string, version int) { m.Called(domain, version) }
func (m *mockObserver) Encoded(domain string, version int) { m.Called(domain, version) }
func (m *mockObserver) Migrated(domain string, from int, err error) {
	m.Called(domain, from, err)
}

func TestCodec_NotifiesObserver(t *testing.T) {
	obs := &mockObserver{}
	obs.On("Decoded", "User", 1).Once()
	obs.On("Migrated", "User", 1, nil).Once()
	obs.On("Encoded", "User", 2).Once()

	codec := userCodec(t, false, envelope.WithObserver(obs))

	u, err := codec.Load([]byte(`{"_version":"1","name":"Alice"}`))
	require.NoError(t, err)

	_, err = codec.Store(&u)
	require.NoError(t, err)

	obs.AssertExpectations(t)
}

func TestCodec_YAMLFormat(t *testing.T) {
	chain := versioned.MustDefine[user](
		versioned.Config{Name: "User", Mode: versioned.KeywordInfallible},
		userToV2,
		userV1ToV2, userV2ToUser,
	)
	codec := envelope.New(chain, wire.YAML())

	u, err := codec.Load([]byte("_version: \"1\"\nname: Alice\n"))
	require.NoError(t, err)
	assert.Equal(t, user{FullName: "Alice"}, u)

	data, err := codec.Store(&user{FullName: "Bob", Email: strPtr("bob@example.com")})
	require.NoError(t, err)
	assert.Equal(t, "_version: \"2\"\nfull_name: Bob\nemail: bob@example.com\n", string(data))
}

func TestCodec_ConcurrentUse(t *testing.T) {
	codec := userCodec(t, false)

	done := make(chan error)
	for i := range 8 {
		go func() {
			u := user{FullName: fmt.Sprintf("user-%d", i)}
			data, err := codec.Store(&u)
			if err == nil {
				var back user
				back, err = codec.Load(data)
				if err == nil && back != u {
					err = fmt.Errorf("got %v, want %v", back, u)
				}
			}
			done <- err
		}()
	}

	for range 8 {
		require.NoError(t, <-done)
	}
}
