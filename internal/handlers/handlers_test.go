package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Aidan-M-Dev/Meet-Your-Modules/internal/app"
	"github.com/Aidan-M-Dev/Meet-Your-Modules/internal/moderation"
	"github.com/Aidan-M-Dev/Meet-Your-Modules/internal/review"
	"github.com/Aidan-M-Dev/Meet-Your-Modules/internal/store/sqlite"
)

const testAdminToken = "letmein"

type stubGateway struct {
	verdict moderation.Verdict
}

func (g *stubGateway) Classify(_ context.Context, _ string) (moderation.Verdict, error) {
	return g.verdict, nil
}

type testServer struct {
	router  http.Handler
	gateway *stubGateway
}

// newTestServer wires the real router against an in-memory store, with only
// the moderation gateway stubbed out.
func newTestServer(t *testing.T) (*testServer, func()) {
	t.Helper()

	st, err := sqlite.NewSQLiteStore(":memory:", "../../migrations")
	require.NoError(t, err, "Failed to create store")

	_, err = st.DB.Exec(`
		INSERT INTO modules (id, code, name, description, credit_value, department) VALUES
		(1, 'CS101', 'Introduction to Computing', 'Foundations of computing', 15, 'Computer Science'),
		(2, 'MA1002', 'Linear Algebra', 'Vectors and matrices', 15, 'Mathematics');
		INSERT INTO module_iterations (id, module_id, academic_year_start_year) VALUES
		(1, 1, 2024),
		(2, 1, 2023);
		INSERT INTO lecturers (id, name) VALUES (1, 'Dr Reed');
		INSERT INTO courses (id, title) VALUES (1, 'BSc Computer Science'), (2, 'BSc Mathematics');
		INSERT INTO module_iterations_lecturers_links (module_iteration_id, lecturer_id) VALUES (1, 1);
		INSERT INTO module_iterations_courses_links (module_iteration_id, course_id) VALUES (1, 1)`)
	require.NoError(t, err, "Failed to seed catalog")

	config := &app.Config{}
	config.Server.Port = ":0"
	config.Server.AdminToken = testAdminToken
	config.Server.CORSOrigins = []string{"http://localhost:3000"}

	limiter, err := app.NewRateLimiter(config)
	require.NoError(t, err)

	gateway := &stubGateway{verdict: moderation.VerdictApproved}
	engine := review.NewEngine(st, gateway, &review.LogNotifier{}, review.Policy{
		ReportTolerance:     5,
		AcceptToleranceBump: 2,
		MinCommentLength:    20,
		MaxCommentLength:    5000,
		RatingDecay:         0.5,
	})

	service := &app.Service{
		Config:  config,
		Store:   st,
		Engine:  engine,
		Limiter: limiter,
	}

	ts := &testServer{
		router:  NewRouter(service),
		gateway: gateway,
	}
	cleanup := func() {
		require.NoError(t, st.Close())
	}
	return ts, cleanup
}

func (ts *testServer) do(t *testing.T, req *http.Request) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()
	rec := httptest.NewRecorder()
	ts.router.ServeHTTP(rec, req)

	var body map[string]interface{}
	if rec.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body), "response is not JSON: %s", rec.Body.String())
	}
	return rec, body
}

func (ts *testServer) get(t *testing.T, path string) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()
	return ts.do(t, httptest.NewRequest(http.MethodGet, path, nil))
}

func (ts *testServer) submit(t *testing.T, iterationID, rating int, text string) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()
	form := url.Values{"reviewText": {text}}
	req := httptest.NewRequest(
		http.MethodPost,
		fmt.Sprintf("/api/submitReview/%d?overall_rating=%d", iterationID, rating),
		strings.NewReader(form.Encode()),
	)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return ts.do(t, req)
}

func (ts *testServer) admin(t *testing.T, method, path string) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()
	req := httptest.NewRequest(method, path, nil)
	req.Header.Set("X-Admin-Token", testAdminToken)
	return ts.do(t, req)
}

func errorCode(t *testing.T, body map[string]interface{}) string {
	t.Helper()
	require.Equal(t, "error", body["status"])
	errObj, ok := body["error"].(map[string]interface{})
	require.True(t, ok, "missing error object: %v", body)
	code, _ := errObj["code"].(string)
	return code
}

func resultField(t *testing.T, body map[string]interface{}, field string) interface{} {
	t.Helper()
	result, ok := body["result"].(map[string]interface{})
	require.True(t, ok, "missing result object: %v", body)
	return result[field]
}

const decentComment = "Well structured module with genuinely engaging lectures"

func TestHealthEndpoint(t *testing.T) {
	ts, cleanup := newTestServer(t)
	defer cleanup()

	rec, body := ts.get(t, "/api/health")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "healthy", body["status"])
}

func TestSubmitReviewValidation(t *testing.T) {
	ts, cleanup := newTestServer(t)
	defer cleanup()

	t.Run("short comment", func(t *testing.T) {
		rec, body := ts.submit(t, 1, 4, "way too short!!")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, codeValidation, errorCode(t, body))
	})

	t.Run("rating out of range", func(t *testing.T) {
		rec, body := ts.submit(t, 1, 6, decentComment)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, codeValidation, errorCode(t, body))
	})

	t.Run("rating not an integer", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/submitReview/1?overall_rating=great", nil)
		rec, body := ts.do(t, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, codeValidation, errorCode(t, body))
	})

	t.Run("unknown iteration", func(t *testing.T) {
		rec, body := ts.submit(t, 999, 4, decentComment)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, codeValidation, errorCode(t, body))
	})
}

func TestSubmitModerationOutcomes(t *testing.T) {
	ts, cleanup := newTestServer(t)
	defer cleanup()

	t.Run("approved publishes", func(t *testing.T) {
		ts.gateway.verdict = moderation.VerdictApproved
		rec, body := ts.submit(t, 1, 5, decentComment)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "published", resultField(t, body, "status"))
		assert.NotZero(t, resultField(t, body, "review_id"))
	})

	t.Run("flagged goes to the moderation queue", func(t *testing.T) {
		ts.gateway.verdict = moderation.VerdictFlagged
		rec, body := ts.submit(t, 1, 1, decentComment)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "automatic_review", resultField(t, body, "status"))
	})

	t.Run("inconclusive never publishes", func(t *testing.T) {
		ts.gateway.verdict = moderation.VerdictInconclusive
		rec, body := ts.submit(t, 1, 3, decentComment)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "automatic_review", resultField(t, body, "status"))
	})
}

func TestModerationLifecycle(t *testing.T) {
	ts, cleanup := newTestServer(t)
	defer cleanup()

	ts.gateway.verdict = moderation.VerdictFlagged
	rec, body := ts.submit(t, 1, 2, decentComment)
	require.Equal(t, http.StatusOK, rec.Code)
	reviewID := int64(resultField(t, body, "review_id").(float64))

	t.Run("queued review shows up for admins with module context", func(t *testing.T) {
		rec, body := ts.admin(t, http.MethodGet, "/api/admin/pendingReviews")
		require.Equal(t, http.StatusOK, rec.Code)

		reviews, ok := body["reviews"].([]interface{})
		require.True(t, ok)
		require.Len(t, reviews, 1)

		entry := reviews[0].(map[string]interface{})
		assert.Equal(t, float64(reviewID), entry["id"])
		assert.Equal(t, "CS101", entry["module_code"])
		assert.Equal(t, "Introduction to Computing", entry["module_name"])
		assert.Equal(t, float64(2024), entry["academic_year_start_year"])
	})

	t.Run("accept publishes and raises tolerance", func(t *testing.T) {
		rec, body := ts.admin(t, http.MethodPost, fmt.Sprintf("/api/admin/acceptReview/%d", reviewID))
		require.Equal(t, http.StatusOK, rec.Code)

		accepted := body["review"].(map[string]interface{})
		assert.Equal(t, "published", accepted["moderation_status"])
		assert.Equal(t, float64(7), accepted["report_tolerance"])
	})

	t.Run("queue is empty afterwards", func(t *testing.T) {
		rec, body := ts.admin(t, http.MethodGet, "/api/admin/pendingReviews")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Empty(t, body["reviews"])
	})

	t.Run("second accept conflicts", func(t *testing.T) {
		rec, body := ts.admin(t, http.MethodPost, fmt.Sprintf("/api/admin/acceptReview/%d", reviewID))
		assert.Equal(t, http.StatusConflict, rec.Code)
		assert.Equal(t, codeConflict, errorCode(t, body))
	})
}

func TestRejectIsTerminal(t *testing.T) {
	ts, cleanup := newTestServer(t)
	defer cleanup()

	ts.gateway.verdict = moderation.VerdictFlagged
	_, body := ts.submit(t, 1, 1, decentComment)
	reviewID := int64(resultField(t, body, "review_id").(float64))

	rec, body := ts.admin(t, http.MethodPost, fmt.Sprintf("/api/admin/rejectReview/%d", reviewID))
	require.Equal(t, http.StatusOK, rec.Code)
	rejected := body["review"].(map[string]interface{})
	assert.Equal(t, "rejected", rejected["moderation_status"])

	t.Run("cannot reject twice", func(t *testing.T) {
		rec, body := ts.admin(t, http.MethodPost, fmt.Sprintf("/api/admin/rejectReview/%d", reviewID))
		assert.Equal(t, http.StatusConflict, rec.Code)
		assert.Equal(t, codeConflict, errorCode(t, body))
	})

	t.Run("reports keep counting but the status stays", func(t *testing.T) {
		for i := 1; i <= 6; i++ {
			rec, body := ts.get(t, fmt.Sprintf("/api/reportReview/%d", reviewID))
			require.Equal(t, http.StatusOK, rec.Code)
			assert.Equal(t, float64(i), resultField(t, body, "report_count"))
			assert.Equal(t, "rejected", resultField(t, body, "status"))
		}
	})

	t.Run("rejected review sits in the rejected queue", func(t *testing.T) {
		rec, body := ts.admin(t, http.MethodGet, "/api/admin/rejectedReviews")
		require.Equal(t, http.StatusOK, rec.Code)
		reviews := body["reviews"].([]interface{})
		require.Len(t, reviews, 1)
	})
}

func TestAdminTokenGate(t *testing.T) {
	ts, cleanup := newTestServer(t)
	defer cleanup()

	t.Run("missing token", func(t *testing.T) {
		rec, body := ts.get(t, "/api/admin/pendingReviews")
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Equal(t, codeUnauthorized, errorCode(t, body))
	})

	t.Run("wrong token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/admin/pendingReviews", nil)
		req.Header.Set("X-Admin-Token", "nope")
		rec, body := ts.do(t, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Equal(t, codeUnauthorized, errorCode(t, body))
	})

	t.Run("correct token", func(t *testing.T) {
		rec, _ := ts.admin(t, http.MethodGet, "/api/admin/pendingReviews")
		assert.Equal(t, http.StatusOK, rec.Code)
	})
}

func TestLikeReview(t *testing.T) {
	ts, cleanup := newTestServer(t)
	defer cleanup()

	ts.gateway.verdict = moderation.VerdictApproved
	_, body := ts.submit(t, 1, 4, decentComment)
	reviewID := int64(resultField(t, body, "review_id").(float64))

	t.Run("double like counts twice", func(t *testing.T) {
		rec, body := ts.get(t, fmt.Sprintf("/api/likeReview/%d/true", reviewID))
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, float64(1), resultField(t, body, "like_count"))

		rec, body = ts.get(t, fmt.Sprintf("/api/likeReview/%d/true", reviewID))
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, float64(2), resultField(t, body, "like_count"))
		assert.Equal(t, float64(0), resultField(t, body, "dislike_count"))
	})

	t.Run("dislike variants parse", func(t *testing.T) {
		rec, body := ts.get(t, fmt.Sprintf("/api/likeReview/%d/0", reviewID))
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, float64(1), resultField(t, body, "dislike_count"))

		rec, body = ts.get(t, fmt.Sprintf("/api/likeReview/%d/no", reviewID))
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, float64(2), resultField(t, body, "dislike_count"))
	})

	t.Run("junk flag", func(t *testing.T) {
		rec, body := ts.get(t, fmt.Sprintf("/api/likeReview/%d/maybe", reviewID))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, codeValidation, errorCode(t, body))
	})

	t.Run("unknown review", func(t *testing.T) {
		rec, body := ts.get(t, "/api/likeReview/9999/true")
		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.Equal(t, codeNotFound, errorCode(t, body))
	})
}

func TestReportThreshold(t *testing.T) {
	ts, cleanup := newTestServer(t)
	defer cleanup()

	ts.gateway.verdict = moderation.VerdictApproved
	_, body := ts.submit(t, 1, 4, decentComment)
	reviewID := int64(resultField(t, body, "review_id").(float64))

	t.Run("first four reports leave it published", func(t *testing.T) {
		for i := 1; i <= 4; i++ {
			rec, body := ts.get(t, fmt.Sprintf("/api/reportReview/%d", reviewID))
			require.Equal(t, http.StatusOK, rec.Code)
			assert.Equal(t, float64(i), resultField(t, body, "report_count"))
			assert.Equal(t, "published", resultField(t, body, "status"))
		}
	})

	t.Run("fifth report flips it to reported", func(t *testing.T) {
		rec, body := ts.get(t, fmt.Sprintf("/api/reportReview/%d", reviewID))
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, float64(5), resultField(t, body, "report_count"))
		assert.Equal(t, "reported", resultField(t, body, "status"))
	})

	t.Run("reported review joins the admin queue", func(t *testing.T) {
		rec, body := ts.admin(t, http.MethodGet, "/api/admin/pendingReviews")
		require.Equal(t, http.StatusOK, rec.Code)
		reviews := body["reviews"].([]interface{})
		require.Len(t, reviews, 1)
		entry := reviews[0].(map[string]interface{})
		assert.Equal(t, "reported", entry["moderation_status"])
	})

	t.Run("accept re-publishes it with a higher tolerance", func(t *testing.T) {
		rec, body := ts.admin(t, http.MethodPost, fmt.Sprintf("/api/admin/acceptReview/%d", reviewID))
		require.Equal(t, http.StatusOK, rec.Code)

		accepted := body["review"].(map[string]interface{})
		assert.Equal(t, "published", accepted["moderation_status"])
		assert.Equal(t, float64(7), accepted["report_tolerance"])
		assert.Equal(t, float64(5), accepted["report_count"])
	})

	t.Run("unknown review", func(t *testing.T) {
		rec, body := ts.get(t, "/api/reportReview/9999")
		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.Equal(t, codeNotFound, errorCode(t, body))
	})
}

func TestModuleInfo(t *testing.T) {
	ts, cleanup := newTestServer(t)
	defer cleanup()

	ts.gateway.verdict = moderation.VerdictApproved
	rec, _ := ts.submit(t, 1, 5, decentComment)
	require.Equal(t, http.StatusOK, rec.Code)
	rec, _ = ts.submit(t, 2, 3, decentComment)
	require.Equal(t, http.StatusOK, rec.Code)

	t.Run("years and decayed rating", func(t *testing.T) {
		rec, body := ts.get(t, "/api/getModuleInfo/1")
		require.Equal(t, http.StatusOK, rec.Code)

		years, ok := body["yearsInfo"].(map[string]interface{})
		require.True(t, ok, "missing yearsInfo: %v", body)
		require.Contains(t, years, "2024")
		require.Contains(t, years, "2023")

		info2024 := years["2024"].(map[string]interface{})
		assert.Len(t, info2024["reviews"], 1)
		assert.Len(t, info2024["lecturers"], 1)
		assert.Len(t, info2024["courses"], 1)

		rating, ok := body["overall_rating"].(float64)
		require.True(t, ok, "missing overall_rating: %v", body)
		assert.InDelta(t, 4.333333333, rating, 1e-6)
	})

	t.Run("module with no published reviews has no rating", func(t *testing.T) {
		rec, body := ts.get(t, "/api/getModuleInfo/2")
		require.Equal(t, http.StatusOK, rec.Code)
		_, present := body["overall_rating"]
		assert.False(t, present)
	})

	t.Run("unknown module", func(t *testing.T) {
		rec, body := ts.get(t, "/api/getModuleInfo/999")
		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.Equal(t, codeNotFound, errorCode(t, body))
	})

	t.Run("junk module id", func(t *testing.T) {
		rec, body := ts.get(t, "/api/getModuleInfo/abc")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, codeValidation, errorCode(t, body))
	})
}

func TestSearchEndpoints(t *testing.T) {
	ts, cleanup := newTestServer(t)
	defer cleanup()

	t.Run("code search is case-insensitive via normalization", func(t *testing.T) {
		rec, body := ts.get(t, "/api/searchModulesByCode/cs101")
		require.Equal(t, http.StatusOK, rec.Code)
		modules := body["modules"].([]interface{})
		require.Len(t, modules, 1)
		assert.Equal(t, "CS101", modules[0].(map[string]interface{})["code"])
	})

	t.Run("malformed code", func(t *testing.T) {
		rec, body := ts.get(t, "/api/searchModulesByCode/CS-101")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, codeValidation, errorCode(t, body))
	})

	t.Run("wildcard browse enriches with the current year", func(t *testing.T) {
		rec, body := ts.get(t, "/api/searchModules?q=*")
		require.Equal(t, http.StatusOK, rec.Code)
		modules := body["modules"].([]interface{})
		require.Len(t, modules, 2)

		first := modules[0].(map[string]interface{})
		assert.Equal(t, "CS101", first["code"])
		assert.Len(t, first["current_lecturers"], 1)
		assert.Len(t, first["current_courses"], 1)
	})

	t.Run("substring search", func(t *testing.T) {
		rec, body := ts.get(t, "/api/searchModules?q=linear")
		require.Equal(t, http.StatusOK, rec.Code)
		modules := body["modules"].([]interface{})
		require.Len(t, modules, 1)
		assert.Equal(t, "MA1002", modules[0].(map[string]interface{})["code"])
	})

	t.Run("missing query", func(t *testing.T) {
		rec, body := ts.get(t, "/api/searchModules")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, codeValidation, errorCode(t, body))
	})
}

func TestCoursesEndpoint(t *testing.T) {
	ts, cleanup := newTestServer(t)
	defer cleanup()

	rec, body := ts.get(t, "/api/courses")
	require.Equal(t, http.StatusOK, rec.Code)
	courses := body["courses"].([]interface{})
	assert.Len(t, courses, 2)
}

func TestUserStub(t *testing.T) {
	ts, cleanup := newTestServer(t)
	defer cleanup()

	rec, body := ts.get(t, "/api/user")
	assert.Equal(t, http.StatusNotImplemented, rec.Code)
	assert.Equal(t, codeNotImplemented, errorCode(t, body))
}

func TestCORSPreflight(t *testing.T) {
	ts, cleanup := newTestServer(t)
	defer cleanup()

	req := httptest.NewRequest(http.MethodOptions, "/api/courses", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	rec, _ := ts.do(t, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "http://localhost:3000", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, rec.Header().Get("Access-Control-Allow-Methods"), "POST")
}

func TestUnknownOriginGetsNoCORSHeader(t *testing.T) {
	ts, cleanup := newTestServer(t)
	defer cleanup()

	req := httptest.NewRequest(http.MethodGet, "/api/courses", nil)
	req.Header.Set("Origin", "https://evil.example")
	rec, _ := ts.do(t, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}
