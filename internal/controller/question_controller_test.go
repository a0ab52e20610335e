package controller

import (
	"fmt"
	"net/http"
	"strings"
	"testing"
)

func questionBody() map[string]interface{} {
	return map[string]interface{}{
		"testPhase": "sample",
		"grade":     "Grade3",
		"type":      "multiple-choice",
		"text":      "What is 5 × 6?",
		"options": []map[string]string{
			{"id": "a", "text": "30"},
			{"id": "b", "text": "35"},
		},
		"correctAnswer": "a",
	}
}

func TestQuestionEndpoints(t *testing.T) {
	router := setupTestRouter(t)

	// 不存在的题目
	w, resp := doJSON(t, router, http.MethodGet, "/api/questions/424242", "", nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("unknown id: status = %d, want 404", w.Code)
	}
	if resp.Success || resp.Error == "" {
		t.Errorf("expected error envelope, got %+v", resp)
	}

	// 校验失败时错误信息指明具体缺失项
	bad := questionBody()
	bad["options"] = []map[string]string{{"id": "a", "text": "30"}}
	w, resp = doJSON(t, router, http.MethodPost, "/api/questions", "", bad)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("single option: status = %d, want 400", w.Code)
	}
	if !strings.Contains(resp.Error, "at least 2 options") {
		t.Errorf("error %q does not name the missing requirement", resp.Error)
	}

	w, resp = doJSON(t, router, http.MethodPost, "/api/questions", "", questionBody())
	if w.Code != http.StatusCreated {
		t.Fatalf("create: status = %d, body %s", w.Code, w.Body.String())
	}
	id := resp.Data.(map[string]interface{})["id"].(float64)
	path := fmt.Sprintf("/api/questions/%d", int(id))

	w, resp = doJSON(t, router, http.MethodGet, path, "", nil)
	if w.Code != http.StatusOK || !resp.Success {
		t.Fatalf("get by id: status = %d, body %s", w.Code, w.Body.String())
	}

	// 更新也走全量校验
	bad = questionBody()
	bad["correctAnswer"] = "z"
	w, resp = doJSON(t, router, http.MethodPut, path, "", bad)
	if w.Code != http.StatusBadRequest {
		t.Errorf("bad update: status = %d, want 400", w.Code)
	}

	w, _ = doJSON(t, router, http.MethodDelete, path, "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("delete: status = %d", w.Code)
	}
	w, _ = doJSON(t, router, http.MethodDelete, path, "", nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("second delete: status = %d, want 404", w.Code)
	}
	w, _ = doJSON(t, router, http.MethodGet, path, "", nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("get after delete: status = %d, want 404", w.Code)
	}
}

func TestSampleTestEndpoint(t *testing.T) {
	router := setupTestRouter(t)

	w, _ := doJSON(t, router, http.MethodGet, "/api/sample-test/Grade99", "", nil)
	if w.Code != http.StatusBadRequest {
		t.Errorf("unknown grade: status = %d, want 400", w.Code)
	}

	doJSON(t, router, http.MethodPost, "/api/questions", "", questionBody())
	w, resp := doJSON(t, router, http.MethodGet, "/api/sample-test/Grade3", "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("sample test: status = %d, body %s", w.Code, w.Body.String())
	}
	if qs := resp.Data.([]interface{}); len(qs) != 1 {
		t.Errorf("expected 1 question, got %d", len(qs))
	}
}
