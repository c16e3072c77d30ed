package shell_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/aretw0/intake/pkg/adapters/local"
	"github.com/aretw0/intake/pkg/adapters/memory"
	"github.com/aretw0/intake/pkg/domain"
	"github.com/aretw0/intake/pkg/ports"
	"github.com/aretw0/intake/pkg/session"
	"github.com/aretw0/intake/pkg/shell"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedIDs = ports.IDGeneratorFunc(func() string { return "0123456789ab" })

func newShell(t *testing.T) (http.Handler, *local.Engine) {
	t.Helper()
	eng := local.New(memory.NewStore())
	mgr := session.NewManager(eng)
	return shell.NewHandler(mgr, shell.WithIDGenerator(fixedIDs)), eng
}

func do(t *testing.T, h http.Handler, method, path, body string) (*httptest.ResponseRecorder, shell.Response) {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	var resp shell.Response
	if strings.HasPrefix(w.Header().Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	}
	return w, resp
}

func TestEntry_RedirectsToFreshSession(t *testing.T) {
	h, _ := newShell(t)

	w, _ := do(t, h, http.MethodGet, "/chat", "")

	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/chat?session=0123456789ab", w.Header().Get("Location"))
}

func TestEntry_View(t *testing.T) {
	h, _ := newShell(t)

	w, resp := do(t, h, http.MethodGet, "/chat?session=abc123", "")

	require.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, resp.View)
	assert.Equal(t, "abc123", resp.View.SessionID)
	assert.Equal(t, domain.StateEmailInput, resp.View.State)
}

func TestFlow(t *testing.T) {
	h, eng := newShell(t)

	w, resp := do(t, h, http.MethodPost, "/chat/abc123/email", `{"email":"a@b.de"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, domain.StateClassification, resp.View.State)

	w, resp = do(t, h, http.MethodPost, "/chat/abc123/classification", `{"classification":{"projectClass":"strategic"}}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, domain.StateForm, resp.View.State)
	assert.Equal(t, domain.TierStrategic, resp.View.ProjectClass)

	w, _ = do(t, h, http.MethodPost, "/chat/abc123/autosave", `{"field":"beschreibung","value":"draft"}`)
	require.Equal(t, http.StatusOK, w.Code)

	blocked := `{"values":{"titel":""},"issues":[{"fieldKey":"titel","fieldLabel":"Titel","severity":"error","message":"required"}]}`
	w, resp = do(t, h, http.MethodPost, "/chat/abc123/form", blocked)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	require.NotNil(t, resp.View, "errors still carry the view")
	assert.Equal(t, domain.StateForm, resp.View.State)
	assert.Contains(t, resp.View.Message, "1 blocking error(s)")

	warned := `{"values":{"titel":"CRM"},"issues":[{"fieldKey":"startdatum","severity":"warning","message":"soon"}]}`
	w, resp = do(t, h, http.MethodPost, "/chat/abc123/form", warned)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, domain.StateReview, resp.View.State)

	w, resp = do(t, h, http.MethodPost, "/chat/abc123/review/confirm", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, domain.StateSubmittedRequest, resp.View.State)
	assert.Equal(t, "abc123", resp.View.SubmittedSessionID)

	w, resp = do(t, h, http.MethodPost, "/chat/abc123/autosave", `{"field":"titel","value":"late"}`)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, domain.StateSubmittedRequest, resp.View.State)

	w, _ = do(t, h, http.MethodPost, "/chat/abc123/new", "")
	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/chat?session=0123456789ab", w.Header().Get("Location"))

	rec, err := eng.GetSession(context.Background(), "abc123")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusSubmittedRequest, rec.Status)
	assert.Equal(t, "draft", rec.Answers["stichpunkte"])
}

func TestErrors(t *testing.T) {
	h, _ := newShell(t)

	w, resp := do(t, h, http.MethodPost, "/chat/abc123/email", `{"email":"nope"}`)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.NotEmpty(t, resp.View.EmailError)

	w, resp = do(t, h, http.MethodPost, "/chat/abc123/email", `{`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.NotNil(t, resp.View)

	w, _ = do(t, h, http.MethodPost, "/chat/abc123/review/edit", "")
	assert.Equal(t, http.StatusConflict, w.Code)

	w, _ = do(t, h, http.MethodPost, "/chat/abc123/new", "")
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestSubmitRejectionIsBadGateway(t *testing.T) {
	h, _ := newShell(t)
	do(t, h, http.MethodPost, "/chat/abc123/email", `{"email":"a@b.de"}`)
	do(t, h, http.MethodPost, "/chat/abc123/classification", `{"projectClass":"mini"}`)

	w, resp := do(t, h, http.MethodPost, "/chat/abc123/form", `{"values":{}}`)

	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.Equal(t, local.ReplyMissingValues, resp.View.Message)
	assert.Equal(t, domain.StateForm, resp.View.State)
}

func TestHealth(t *testing.T) {
	h, _ := newShell(t)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}

func TestStatusFor(t *testing.T) {
	assert.Equal(t, http.StatusConflict, shell.StatusFor(domain.ErrBusy))
	assert.Equal(t, http.StatusUnprocessableEntity, shell.StatusFor(domain.ErrUnknownTier))
	assert.Equal(t, http.StatusBadRequest, shell.StatusFor(session.ErrMissingSessionID))
	assert.Equal(t, http.StatusBadGateway, shell.StatusFor(&domain.SubmissionError{Reason: "quota exceeded"}))
}

func TestStartNew_UsesShellGeneratorAndForgets(t *testing.T) {
	eng := local.New(memory.NewStore())
	ctx := context.Background()
	rec := domain.NewSessionRecord("done01")
	rec.Status = domain.StatusSubmittedRequest
	require.NoError(t, eng.Store().Save(ctx, rec))

	mgr := session.NewManager(eng)
	h := shell.NewHandler(mgr, shell.WithIDGenerator(fixedIDs))

	w, resp := do(t, h, http.MethodGet, "/chat?session=done01", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, domain.StateAlreadySubmittedRequest, resp.View.State)
	require.Equal(t, 1, mgr.Len())

	w, _ = do(t, h, http.MethodPost, "/chat/done01/new", "")
	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/chat?session=0123456789ab", w.Header().Get("Location"))
	assert.Equal(t, 0, mgr.Len(), "terminal session is dropped from the cache")
}
