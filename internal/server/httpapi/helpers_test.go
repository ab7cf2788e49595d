package httpapi

import (
	"testing"

	"github.com/dmitrijs2005/sitevault/internal/server/auth"
	"github.com/dmitrijs2005/sitevault/internal/server/config"
	"github.com/stretchr/testify/require"
)

func validToken(t *testing.T, cfg *config.Config, sessionID string) string {
	t.Helper()
	tok, err := auth.GenerateToken(sessionID, []byte(cfg.SecretKey), cfg.TokenValidityDuration)
	require.NoError(t, err)
	return tok
}
