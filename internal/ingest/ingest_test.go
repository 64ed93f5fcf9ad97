package ingest

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vigil/internal/platform/logger"
	"vigil/internal/queue"
	"vigil/pkg/requestcontext"
	"vigil/pkg/testutil"
)

func withAuthContext(r *http.Request, actorID, department string) *http.Request {
	ctx := requestcontext.WithActorID(r.Context(), actorID)
	ctx = requestcontext.WithDepartment(ctx, department)
	return r.WithContext(ctx)
}

func TestHandleIngest_AcceptsValidRequestAndReturnsPendingStub(t *testing.T) {
	q := queue.New(10, 0.9)
	h := New(q, nil, logger.New("error"), NewMetrics())

	req := testutil.NewJSONRequest(t, "POST", "/events/ingest", Request{
		DocumentID:       "doc-1",
		DocumentName:     "report.xlsx",
		TargetDepartment: "FINANCE",
		Action:           "view",
		BytesTransferred: 512,
	})
	req = withAuthContext(req, "actor-1", "FINANCE")

	rr := testutil.DoRequest(http.HandlerFunc(h.HandleIngest), req)

	testutil.AssertStatus(t, rr, http.StatusAccepted)
	resp := testutil.UnmarshalResponse[Response](t, rr)
	assert.NotEmpty(t, resp.EventID)
	assert.Equal(t, "pending", resp.RiskLevel)
	assert.False(t, resp.IsCrossDepartment)
	assert.Equal(t, 1, q.Size())
}

func TestHandleIngest_CrossDepartmentFlagComputedFromActorDepartment(t *testing.T) {
	q := queue.New(10, 0.9)
	h := New(q, nil, logger.New("error"), nil)

	req := testutil.NewJSONRequest(t, "POST", "/events/ingest", Request{
		DocumentID:       "doc-1",
		TargetDepartment: "HR",
		Action:           "download",
		BytesTransferred: 1024,
	})
	req = withAuthContext(req, "actor-1", "FINANCE")

	rr := testutil.DoRequest(http.HandlerFunc(h.HandleIngest), req)

	testutil.AssertStatus(t, rr, http.StatusAccepted)
	resp := testutil.UnmarshalResponse[Response](t, rr)
	assert.True(t, resp.IsCrossDepartment)
}

func TestHandleIngest_MissingActorRejectedAsUnauthorized(t *testing.T) {
	q := queue.New(10, 0.9)
	h := New(q, nil, logger.New("error"), nil)

	req := testutil.NewJSONRequest(t, "POST", "/events/ingest", Request{
		DocumentID:       "doc-1",
		TargetDepartment: "HR",
		Action:           "view",
	})

	rr := testutil.DoRequest(http.HandlerFunc(h.HandleIngest), req)

	testutil.AssertStatusAndError(t, rr, http.StatusUnauthorized, "unauthorized")
}

func TestHandleIngest_ModifyWithoutContentRejected(t *testing.T) {
	q := queue.New(10, 0.9)
	h := New(q, nil, logger.New("error"), nil)

	req := testutil.NewJSONRequest(t, "POST", "/events/ingest", Request{
		DocumentID:       "doc-1",
		TargetDepartment: "FINANCE",
		Action:           "modify",
	})
	req = withAuthContext(req, "actor-1", "FINANCE")

	rr := testutil.DoRequest(http.HandlerFunc(h.HandleIngest), req)

	testutil.AssertStatusAndError(t, rr, http.StatusBadRequest, "validation_error")
}

func TestHandleIngest_RejectsWhenQueueFull(t *testing.T) {
	q := queue.New(1, 0.9)
	require.NoError(t, q.Offer("filler"))
	h := New(q, nil, logger.New("error"), NewMetrics())

	req := testutil.NewJSONRequest(t, "POST", "/events/ingest", Request{
		DocumentID:       "doc-1",
		TargetDepartment: "FINANCE",
		Action:           "view",
	})
	req = withAuthContext(req, "actor-1", "FINANCE")

	rr := testutil.DoRequest(http.HandlerFunc(h.HandleIngest), req)

	testutil.AssertStatus(t, rr, http.StatusServiceUnavailable)
}

func TestHandleQueueStatus_ReturnsSnapshot(t *testing.T) {
	q := queue.New(10, 0.9)
	h := New(q, nil, logger.New("error"), nil)

	req := testutil.NewRequest(t, "GET", "/events/queue/status")
	rr := testutil.DoRequest(http.HandlerFunc(h.HandleQueueStatus), req)

	testutil.AssertStatusOK(t, rr)
	testutil.AssertJSONContains(t, rr, "capacity", float64(10))
}
