package httpapi

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"unicode/utf16"
	"unicode/utf8"

	"github.com/dmitrijs2005/sitevault/internal/common"
)

var errMasterKeyNotString = errors.New("master_key must be a JSON string")

type masterKeyRequest struct {
	MasterKey json.RawMessage `json:"master_key"`
}

// readMasterKey decodes a {"master_key": "..."} body. The returned slice is
// the only copy of the key left in memory; the request body and the raw JSON
// value are wiped before returning. The caller must wipe the result.
func readMasterKey(w http.ResponseWriter, r *http.Request) ([]byte, error) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	defer common.WipeByteArray(body)
	if err != nil {
		return nil, err
	}

	var req masterKeyRequest
	err = json.Unmarshal(body, &req)
	defer common.WipeByteArray(req.MasterKey)
	if err != nil {
		return nil, err
	}

	return unquoteSecret(req.MasterKey)
}

// unquoteSecret decodes a JSON string literal into a fresh byte slice
// without going through a Go string. A missing value or null yields nil.
// The output never outgrows its initial capacity, so no partial copies are
// left behind by append.
func unquoteSecret(raw []byte) ([]byte, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}
	if len(raw) < 2 || raw[0] != '"' || raw[len(raw)-1] != '"' {
		return nil, errMasterKeyNotString
	}

	in := raw[1 : len(raw)-1]
	out := make([]byte, 0, len(in))
	fail := func() ([]byte, error) {
		common.WipeByteArray(out[:cap(out)])
		return nil, errMasterKeyNotString
	}

	for i := 0; i < len(in); i++ {
		c := in[i]
		if c != '\\' {
			out = append(out, c)
			continue
		}

		i++
		if i >= len(in) {
			return fail()
		}
		switch in[i] {
		case '"', '\\', '/':
			out = append(out, in[i])
		case 'b':
			out = append(out, '\b')
		case 'f':
			out = append(out, '\f')
		case 'n':
			out = append(out, '\n')
		case 'r':
			out = append(out, '\r')
		case 't':
			out = append(out, '\t')
		case 'u':
			r1, ok := hex4(in[i+1:])
			if !ok {
				return fail()
			}
			i += 4
			if utf16.IsSurrogate(r1) {
				if i+2 < len(in) && in[i+1] == '\\' && in[i+2] == 'u' {
					if r2, ok := hex4(in[i+3:]); ok {
						if dec := utf16.DecodeRune(r1, r2); dec != utf8.RuneError {
							i += 6
							out = utf8.AppendRune(out, dec)
							continue
						}
					}
				}
				r1 = utf8.RuneError
			}
			out = utf8.AppendRune(out, r1)
		default:
			return fail()
		}
	}
	return out, nil
}

func hex4(b []byte) (rune, bool) {
	if len(b) < 4 {
		return 0, false
	}
	var r rune
	for _, c := range b[:4] {
		switch {
		case '0' <= c && c <= '9':
			c -= '0'
		case 'a' <= c && c <= 'f':
			c = c - 'a' + 10
		case 'A' <= c && c <= 'F':
			c = c - 'A' + 10
		default:
			return 0, false
		}
		r = r<<4 | rune(c)
	}
	return r, true
}
