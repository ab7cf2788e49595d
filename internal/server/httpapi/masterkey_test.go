package httpapi

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/dmitrijs2005/sitevault/internal/common"
	"github.com/dmitrijs2005/sitevault/internal/logging"
	"github.com/dmitrijs2005/sitevault/internal/server/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUnquoteSecret(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{raw: `"M1"`, want: "M1"},
		{raw: `""`, want: ""},
		{raw: `"a\"b\\c\/d"`, want: `a"b\c/d`},
		{raw: `"\b\f\n\r\t"`, want: "\b\f\n\r\t"},
		{raw: `"café"`, want: "café"},
		{raw: `"🔑"`, want: "🔑"},
		{raw: `"\ud83dx"`, want: "�x"},
		{raw: `"ключ"`, want: "ключ"},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, err := unquoteSecret([]byte(tt.raw))
			require.NoError(t, err)
			assert.Equal(t, tt.want, string(got))
			assert.LessOrEqual(t, cap(got), len(tt.raw))
		})
	}
}

func TestUnquoteSecret_Rejects(t *testing.T) {
	for _, raw := range []string{`5`, `{}`, `"\x"`, `"\u12"`, `"abc\"`} {
		_, err := unquoteSecret([]byte(raw))
		assert.ErrorIs(t, err, errMasterKeyNotString, raw)
	}

	got, err := unquoteSecret([]byte("null"))
	require.NoError(t, err)
	assert.Nil(t, got)
}

// keyVault records the key slice handed to it so the test can check it is
// wiped once the handler returns.
type keyVault struct {
	fakeVault
	key   []byte
	value string
}

func (k *keyVault) Initialize(_ context.Context, key []byte) error {
	k.key, k.value = key, string(key)
	return nil
}

func (k *keyVault) Login(_ context.Context, _ string, key []byte) (*session.Session, error) {
	k.key, k.value = key, string(key)
	return nil, k.err
}

func TestHandlers_MasterKeyIsWiped(t *testing.T) {
	v := &keyVault{}
	h := NewHTTPServer(logging.Nop(), v, testConfig()).Handler()

	rr := serve(h, http.MethodPost, "/initialize", `{"master_key":"sécret"}`, "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "sécret", v.value)
	assert.Equal(t, make([]byte, len(v.key)), v.key, "key must be zeroed after the request")

	v.err = common.ErrInvalidCredentials
	serve(h, http.MethodPost, "/login", `{"master_key":"M1"}`, "")
	assert.Equal(t, "M1", v.value)
	assert.Equal(t, make([]byte, len(v.key)), v.key)
}

func TestHandlers_MasterKeyBadBody(t *testing.T) {
	h := NewHTTPServer(logging.Nop(), &keyVault{}, testConfig()).Handler()

	for _, body := range []string{``, `{"master_key":5}`, `{"master_key":"x"} trailing`, `[`} {
		req := httptest.NewRequest(http.MethodPost, "/initialize", strings.NewReader(body))
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, req)
		assert.Equal(t, http.StatusBadRequest, rr.Code, body)
		assert.Equal(t, msgBadRequest, strings.TrimSpace(rr.Body.String()), body)
	}
}
