package e2e

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/google/uuid"
)

func createJob(t *testing.T, ta *testApp, body string) string {
	t.Helper()
	resp, err := doAuthRequest(t, ta.app, http.MethodPost, "/api/jobs/", body)
	if err != nil {
		t.Fatalf("create job failed: %v", err)
	}
	assertStatus(t, resp, http.StatusAccepted)
	result := parseJSON(t, resp)
	jobID, _ := result["jobId"].(string)
	if jobID == "" {
		t.Fatalf("expected jobId, got %v", result)
	}
	if result["status"] != "pending" {
		t.Errorf("new jobs must be pending, got %v", result["status"])
	}
	return jobID
}

func TestJobCreate_ScriptGeneration(t *testing.T) {
	ta := setupApp(t)

	jobID := createJob(t, ta, `{
		"jobType": "script_generation",
		"prompt": "a heist gone wrong in a snowed-in bank"
	}`)

	resp, err := doAuthRequest(t, ta.app, http.MethodGet, "/api/jobs/"+jobID+"/status", "")
	if err != nil {
		t.Fatalf("status failed: %v", err)
	}
	assertStatus(t, resp, http.StatusOK)
	result := parseJSON(t, resp)
	if result["jobId"] != jobID {
		t.Errorf("jobId mismatch: %v", result["jobId"])
	}
	if result["status"] != "pending" {
		t.Errorf("expected pending (no worker running in tests), got %v", result["status"])
	}
	if result["jobType"] != "script_generation" {
		t.Errorf("expected jobType, got %v", result["jobType"])
	}
}

func TestJobCreate_InvalidJobType(t *testing.T) {
	ta := setupApp(t)

	resp, err := doAuthRequest(t, ta.app, http.MethodPost, "/api/jobs/", `{
		"jobType": "poetry_generation",
		"prompt": "a sonnet"
	}`)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	assertStatus(t, resp, http.StatusBadRequest)
}

func TestJobCreate_MissingPrompt(t *testing.T) {
	ta := setupApp(t)

	resp, err := doAuthRequest(t, ta.app, http.MethodPost, "/api/jobs/", `{"jobType": "script_generation"}`)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	assertStatus(t, resp, http.StatusBadRequest)
}

func TestJobCreate_SceneGenerationWithoutScene(t *testing.T) {
	ta := setupApp(t)

	resp, err := doAuthRequest(t, ta.app, http.MethodPost, "/api/jobs/", `{
		"jobType": "scene_generation",
		"prompt": "raise the stakes"
	}`)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	assertStatus(t, resp, http.StatusBadRequest)
}

func TestJobResult_NotReadyWhilePending(t *testing.T) {
	ta := setupApp(t)

	jobID := createJob(t, ta, `{
		"jobType": "script_generation",
		"prompt": "a slow-burn mystery"
	}`)

	resp, err := doAuthRequest(t, ta.app, http.MethodGet, "/api/jobs/"+jobID+"/result", "")
	if err != nil {
		t.Fatalf("result failed: %v", err)
	}

	// Not a failure and not a result: a distinct keep-polling signal
	assertStatus(t, resp, http.StatusAccepted)
	result := parseJSON(t, resp)
	if result["jobId"] != jobID {
		t.Errorf("jobId mismatch: %v", result["jobId"])
	}
	if result["status"] != "pending" {
		t.Errorf("expected pending, got %v", result["status"])
	}
	if result["result"] != nil {
		t.Error("pending jobs must not expose a result")
	}
	if result["error"] != nil {
		t.Error("pending jobs must not expose an error")
	}
}

func TestJobStatus_NotFound(t *testing.T) {
	ta := setupApp(t)

	resp, err := doAuthRequest(t, ta.app, http.MethodGet, "/api/jobs/"+uuid.New().String()+"/status", "")
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	assertStatus(t, resp, http.StatusNotFound)

	result := parseJSON(t, resp)
	errObj := result["error"].(map[string]interface{})
	if errObj["code"] != "NOT_FOUND" {
		t.Errorf("expected NOT_FOUND, got %v", errObj["code"])
	}
}

func TestJobStatus_ForeignJobLooksMissing(t *testing.T) {
	ta := setupApp(t)

	jobID := createJob(t, ta, `{
		"jobType": "script_generation",
		"prompt": "private work"
	}`)

	resp, err := doAuthRequestAs(t, ta.app, "other-user-456", http.MethodGet, "/api/jobs/"+jobID+"/status", "")
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	assertStatus(t, resp, http.StatusNotFound)

	resp, err = doAuthRequestAs(t, ta.app, "other-user-456", http.MethodGet, "/api/jobs/"+jobID+"/result", "")
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	assertStatus(t, resp, http.StatusNotFound)
}

func TestJobCreate_AgainstScript(t *testing.T) {
	ta := setupApp(t)
	scriptID := createScript(t, ta, "Refine Me")

	jobID := createJob(t, ta, fmt.Sprintf(`{
		"jobType": "script_refinement",
		"prompt": "tighten act two",
		"scriptId": "%s"
	}`, scriptID))

	resp, err := doAuthRequest(t, ta.app, http.MethodGet, "/api/jobs/"+jobID+"/status", "")
	if err != nil {
		t.Fatalf("status failed: %v", err)
	}
	assertStatus(t, resp, http.StatusOK)
}

func TestJobCreate_ForeignScriptRejected(t *testing.T) {
	ta := setupApp(t)
	scriptID := createScript(t, ta, "Not Yours")

	body := fmt.Sprintf(`{
		"jobType": "script_refinement",
		"prompt": "tighten act two",
		"scriptId": "%s"
	}`, scriptID)
	resp, err := doAuthRequestAs(t, ta.app, "other-user-456", http.MethodPost, "/api/jobs/", body)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	assertStatus(t, resp, http.StatusNotFound)
}

func TestJobList(t *testing.T) {
	ta := setupApp(t)

	jobID := createJob(t, ta, `{
		"jobType": "script_generation",
		"prompt": "a western with no horses"
	}`)

	resp, err := doAuthRequest(t, ta.app, http.MethodGet, "/api/jobs/", "")
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	assertStatus(t, resp, http.StatusOK)

	result := parseJSON(t, resp)
	jobs := result["jobs"].([]interface{})
	found := false
	for _, j := range jobs {
		if j.(map[string]interface{})["jobId"] == jobID {
			found = true
		}
	}
	if !found {
		t.Error("expected created job in listing")
	}
}
