package escrow

import (
	"encoding/json"
	"fmt"
	"testing"

	"github.com/iov-one/lockswap"
	"github.com/iov-one/lockswap/errors"
	"github.com/iov-one/lockswap/store"
	"github.com/iov-one/lockswap/swaptest"
	"github.com/iov-one/lockswap/swaptest/assert"
)

func TestGenesis(t *testing.T) {
	owner := swaptest.NewAddress()

	cases := map[string]struct {
		genesis     string
		wantErr     *errors.Error
		wantReserve uint64
	}{
		"no configuration": {
			genesis: `{}`,
		},
		"configuration": {
			genesis:     fmt.Sprintf(`{"conf": {"escrow": {"metadata": {"schema": 1}, "owner": "%X", "record_reserve": 7}}}`, []byte(owner)),
			wantReserve: 7,
		},
		"invalid configuration": {
			genesis: `{"conf": {"escrow": {"record_reserve": 7}}}`,
			wantErr: errors.ErrEmpty,
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			var opts lockswap.Options
			assert.Nil(t, json.Unmarshal([]byte(tc.genesis), &opts))

			db := store.MemStore()
			err := Initializer{}.FromGenesis(opts, db)
			assert.IsErr(t, tc.wantErr, err)
			if tc.wantErr != nil {
				return
			}

			conf, err := LoadConfiguration(db)
			assert.Nil(t, err)
			assert.Equal(t, tc.wantReserve, conf.RecordReserve)
		})
	}
}
