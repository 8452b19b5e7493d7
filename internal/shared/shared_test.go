package shared

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewWindow(t *testing.T) {
	require.Equal(t, Window{Skip: 0, Limit: DefaultLimit}, NewWindow(-5, 0))
	require.Equal(t, Window{Skip: 10, Limit: MaxLimit}, NewWindow(10, 10000))
	require.Equal(t, Window{Skip: 3, Limit: 25}, NewWindow(3, 25))
}

func TestPrincipalContext(t *testing.T) {
	ctx := context.Background()
	require.Nil(t, PrincipalFromContext(ctx))
	require.Equal(t, "", ActorID(ctx))

	ctx = ContextWithPrincipal(ctx, &Principal{UserID: "u-1", Roles: []string{"staff"}})
	require.Equal(t, "u-1", ActorID(ctx))
}

func TestAuditLogValidate(t *testing.T) {
	require.Error(t, AuditLog{Action: "bom:add"}.Validate())
	require.NoError(t, AuditLog{Action: "bom:add", Entity: "bom_component", EntityID: "x"}.Validate())
}

func TestBOMScanLockKey(t *testing.T) {
	require.Equal(t, "bom:integrity:all:lock", BOMScanLockKey(""))
	require.Equal(t, "bom:integrity:nightly:lock", BOMScanLockKey("nightly"))
}
