package portal_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cureconnect/portal"
	"github.com/cureconnect/portal/internal"
	"github.com/cureconnect/portal/pkg/config"
	"github.com/cureconnect/portal/pkg/httpx"
	"github.com/cureconnect/portal/pkg/logger"
)

func TestNew(t *testing.T) {
	t.Parallel()
	root := t.TempDir()

	app, err := portal.New(root,
		internal.WithConfig(config.Testing(root)),
		internal.WithLogger(logger.NewNope()),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = app.Shutdown(context.Background()) })

	for path := range internal.DefaultRoutes() {
		if path == "/appointments/show" || path == "/appointments/update" || path == "/appointments/delete" {
			continue
		}
		resp := app.HandleRequest(httpx.NewRequest(http.MethodGet, path))
		assert.Equal(t, http.StatusOK, resp.Status, path)
	}
	assert.Equal(t, http.StatusBadRequest, app.HandleRequest(httpx.NewRequest(http.MethodGet, "/appointments/show")).Status)
}
