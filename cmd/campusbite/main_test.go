package main

import (
	"bytes"
	"context"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/itsneelabh/campusbite/internal/mockbackend"
)

// runCLI executes one invocation against a shared sqlite session file
func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	err := run(context.Background(), args, &stdout, &stderr)
	return stdout.String(), err
}

func setup(t *testing.T) string {
	t.Helper()
	store := mockbackend.NewStore()
	store.Seed()
	srv := httptest.NewServer(mockbackend.NewServer(store, nil))
	t.Cleanup(srv.Close)

	t.Setenv("CAMPUSBITE_STORE", "sqlite")
	t.Setenv("CAMPUSBITE_SQLITE_PATH", filepath.Join(t.TempDir(), "session.db"))
	t.Setenv("CAMPUSBITE_LOG_LEVEL", "error")
	t.Setenv("OTEL_EXPORTER_OTLP_ENDPOINT", "")
	return srv.URL
}

func TestCLIOrderJourney(t *testing.T) {
	api := setup(t)

	out, err := runCLI(t, "-api", api, "whoami")
	require.NoError(t, err)
	assert.Equal(t, "Not signed in\n", out)

	out, err = runCLI(t, "-api", api, "login", "9876543210")
	require.NoError(t, err)
	assert.Contains(t, out, "Development OTP: 123456")

	out, err = runCLI(t, "-api", api, "verify", "9876543210", "123456")
	require.NoError(t, err)
	assert.Equal(t, "Signed in as 9876543210\n", out)

	out, err = runCLI(t, "-api", api, "vendors")
	require.NoError(t, err)
	assert.Contains(t, out, "chai-point")
	assert.Contains(t, out, "Dosa Corner")

	out, err = runCLI(t, "-api", api, "slots", "chai-point", "-date", "2024-05-03")
	require.NoError(t, err)
	assert.Contains(t, out, "12:00 - 12:30")

	out, err = runCLI(t, "-api", api, "order", "-vendor", "chai-point", "-slot", "chai-point-1200",
		"-item", "samosa=2", "-item", "masala-chai")
	require.NoError(t, err)
	assert.Contains(t, out, "Ordering 3 item(s), total 50.00, pickup 12:00 - 12:30")
	assert.Contains(t, out, "is confirmed")

	out, err = runCLI(t, "-api", api, "orders")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 2)
	orderID := strings.Fields(lines[1])[0]

	out, err = runCLI(t, "-api", api, "cancel", orderID)
	require.NoError(t, err)
	assert.Contains(t, out, "Status:  cancelled")

	_, err = runCLI(t, "-api", api, "logout")
	require.NoError(t, err)
	_, err = runCLI(t, "-api", api, "orders")
	assert.Error(t, err)
}

func TestCLIValidationAndUsage(t *testing.T) {
	api := setup(t)

	_, err := runCLI(t, "-api", api, "login", "12345")
	assert.Error(t, err)

	_, err = runCLI(t, "-api", api, "nope")
	assert.ErrorIs(t, err, errUsage)

	_, err = runCLI(t, "-api", api)
	assert.ErrorIs(t, err, errUsage)

	_, err = runCLI(t, "-api", api, "order-detail")
	assert.ErrorIs(t, err, errUsage)
}

func TestItemFlag(t *testing.T) {
	var f itemFlag
	require.NoError(t, f.Set("samosa=2"))
	require.NoError(t, f.Set("chai"))
	assert.Error(t, f.Set("vada=0"))
	assert.Error(t, f.Set("=2"))
	assert.Equal(t, "samosa=2,chai=1", f.String())
}
