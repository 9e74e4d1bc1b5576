package gconf

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/gogo/protobuf/proto"
	"github.com/iov-one/lockswap"
	"github.com/iov-one/lockswap/errors"
	"github.com/iov-one/lockswap/store"
	"github.com/iov-one/lockswap/swaptest"
	"github.com/iov-one/lockswap/swaptest/assert"
)

type testConfig struct {
	Owner  lockswap.Address `protobuf:"bytes,1,opt,name=owner,proto3,casttype=github.com/iov-one/lockswap.Address" json:"owner,omitempty"`
	Amount uint64           `protobuf:"varint,2,opt,name=amount,proto3" json:"amount,omitempty"`
	Label  string           `protobuf:"bytes,3,opt,name=label,proto3" json:"label,omitempty"`
}

func (m *testConfig) Reset()         { *m = testConfig{} }
func (m *testConfig) String() string { return proto.CompactTextString(m) }
func (*testConfig) ProtoMessage()    {}

func (m *testConfig) GetOwner() lockswap.Address { return m.Owner }

func (m *testConfig) Validate() error {
	if err := m.Owner.Validate(); err != nil {
		return errors.Wrap(err, "owner")
	}
	return nil
}

type updateTestConfigMsg struct {
	Patch *testConfig `protobuf:"bytes,1,opt,name=patch,proto3" json:"patch,omitempty"`
}

func (m *updateTestConfigMsg) Reset()         { *m = updateTestConfigMsg{} }
func (m *updateTestConfigMsg) String() string { return proto.CompactTextString(m) }
func (*updateTestConfigMsg) ProtoMessage()    {}
func (*updateTestConfigMsg) Path() string     { return "test/update_configuration" }

func (m *updateTestConfigMsg) Validate() error {
	if m.Patch == nil {
		return errors.Wrap(errors.ErrEmpty, "patch")
	}
	return nil
}

func TestSaveLoad(t *testing.T) {
	owner := swaptest.NewAddress()

	cases := map[string]struct {
		conf        *testConfig
		wantSaveErr *errors.Error
	}{
		"valid": {
			conf: &testConfig{Owner: owner, Amount: 7, Label: "x"},
		},
		"invalid owner cannot be saved": {
			conf:        &testConfig{Owner: lockswap.Address("too short")},
			wantSaveErr: errors.ErrInvalidInput,
		},
		"missing owner cannot be saved": {
			conf:        &testConfig{Amount: 1},
			wantSaveErr: errors.ErrEmpty,
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			db := store.MemStore()
			if err := Save(db, "test", tc.conf); !tc.wantSaveErr.Is(err) {
				t.Fatalf("unexpected save error: %s", err)
			}
			var got testConfig
			err := Load(db, "test", &got)
			if tc.wantSaveErr != nil {
				assert.IsErr(t, errors.ErrNotFound, err)
				return
			}
			assert.Nil(t, err)
			assert.Equal(t, tc.conf, &got)
		})
	}
}

func TestInitConfig(t *testing.T) {
	owner := swaptest.NewAddress()
	ownerJSON, err := json.Marshal(owner)
	assert.Nil(t, err)

	cases := map[string]struct {
		genesis string
		wantErr *errors.Error
		want    *testConfig
	}{
		"configuration loaded": {
			genesis: `{"conf": {"test": {"owner": ` + string(ownerJSON) + `, "amount": 12}}}`,
			want:    &testConfig{Owner: owner, Amount: 12},
		},
		"missing package configuration": {
			genesis: `{"conf": {"other": {}}}`,
			wantErr: errors.ErrNotFound,
		},
		"invalid configuration": {
			genesis: `{"conf": {"test": {"amount": 12}}}`,
			wantErr: errors.ErrEmpty,
		},
		"malformed json": {
			genesis: `{"conf": {"test": {"amount": "many"}}}`,
			wantErr: errors.ErrInvalidInput,
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			var opts lockswap.Options
			assert.Nil(t, json.Unmarshal([]byte(tc.genesis), &opts))

			db := store.MemStore()
			err := InitConfig(db, opts, "test", &testConfig{})
			if !tc.wantErr.Is(err) {
				t.Fatalf("want %q error, got %+v", tc.wantErr, err)
			}
			if tc.wantErr != nil {
				return
			}
			var got testConfig
			assert.Nil(t, Load(db, "test", &got))
			assert.Equal(t, tc.want, &got)
		})
	}
}

func TestUpdateConfigurationHandler(t *testing.T) {
	owner := swaptest.NewAddress()
	newOwner := swaptest.NewAddress()
	stranger := swaptest.NewAddress()

	cases := map[string]struct {
		initial *testConfig
		signer  lockswap.Address
		msg     lockswap.Msg
		wantErr *errors.Error
		want    *testConfig
	}{
		"owner updates the amount, zero values are kept": {
			initial: &testConfig{Owner: owner, Amount: 1, Label: "a"},
			signer:  owner,
			msg:     &updateTestConfigMsg{Patch: &testConfig{Amount: 5}},
			want:    &testConfig{Owner: owner, Amount: 5, Label: "a"},
		},
		"owner hands over ownership": {
			initial: &testConfig{Owner: owner},
			signer:  owner,
			msg:     &updateTestConfigMsg{Patch: &testConfig{Owner: newOwner}},
			want:    &testConfig{Owner: newOwner},
		},
		"stranger cannot update": {
			initial: &testConfig{Owner: owner, Amount: 1},
			signer:  stranger,
			msg:     &updateTestConfigMsg{Patch: &testConfig{Amount: 5}},
			wantErr: errors.ErrUnauthorized,
			want:    &testConfig{Owner: owner, Amount: 1},
		},
		"missing configuration cannot be updated": {
			signer:  owner,
			msg:     &updateTestConfigMsg{Patch: &testConfig{Amount: 5}},
			wantErr: errors.ErrNotFound,
		},
		"invalid patch": {
			initial: &testConfig{Owner: owner},
			signer:  owner,
			msg:     &updateTestConfigMsg{Patch: &testConfig{Owner: lockswap.Address("short")}},
			wantErr: errors.ErrInvalidInput,
			want:    &testConfig{Owner: owner},
		},
		"message without patch": {
			initial: &testConfig{Owner: owner},
			signer:  owner,
			msg:     &swaptest.Msg{RoutePath: "test/update_configuration"},
			wantErr: errors.ErrInvalidMsg,
			want:    &testConfig{Owner: owner},
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			db := store.MemStore()
			if tc.initial != nil {
				assert.Nil(t, Save(db, "test", tc.initial))
			}
			auth := &swaptest.CtxAuth{Key: "auth"}
			ctx := auth.SetSigners(context.Background(), tc.signer)
			h := NewUpdateConfigurationHandler("test", &testConfig{}, auth)
			tx := &swaptest.Tx{Msg: tc.msg}

			cache := db.CacheWrap()
			_, err := h.Check(ctx, cache, tx)
			if !tc.wantErr.Is(err) {
				t.Fatalf("check: want %q error, got %+v", tc.wantErr, err)
			}
			cache.Discard()

			_, err = h.Deliver(ctx, db, tx)
			if !tc.wantErr.Is(err) {
				t.Fatalf("deliver: want %q error, got %+v", tc.wantErr, err)
			}
			if tc.want == nil {
				return
			}
			var got testConfig
			assert.Nil(t, Load(db, "test", &got))
			assert.Equal(t, tc.want, &got)
		})
	}
}
