package blockchain

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stellar/go/keypair"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHorizonAccountLoader_LoadAccount(t *testing.T) {
	address := keypair.MustRandom().Address()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/accounts/"+address) {
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"type":"https://stellar.org/horizon-errors/not_found","title":"Resource Missing","status":404}`))
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = fmt.Fprintf(w, `{"id":%q,"account_id":%q,"sequence":"4294967296","balances":[]}`, address, address)
	}))
	defer srv.Close()

	loader := NewHorizonAccountLoader(srv.URL)
	account, err := loader.LoadAccount(context.Background(), address)
	require.NoError(t, err)
	assert.Equal(t, address, account.Address)
	assert.Equal(t, int64(4294967296), account.Sequence)

	_, err = loader.LoadAccount(context.Background(), keypair.MustRandom().Address())
	assert.ErrorContains(t, err, "load account")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = loader.LoadAccount(ctx, address)
	assert.ErrorIs(t, err, context.Canceled)
}
