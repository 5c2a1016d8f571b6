package handlers_test

import (
	"encoding/json"
	"net/http"
	"testing"
)

func TestSpaceCollectionCRUD(t *testing.T) {
	server, token := newTestServer(t)

	resp, env := doRaw(t, http.MethodPost, server.URL+"/api/space/notes", token,
		map[string]string{"title": "groceries", "content": "milk, eggs"})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("status %d, want 201", resp.StatusCode)
	}

	var created struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(env.Data, &created); err != nil {
		t.Fatalf("decode record: %v", err)
	}
	if created.ID == "" {
		t.Fatal("record should get a server-assigned id")
	}

	resp, env = doRaw(t, http.MethodGet, server.URL+"/api/space/notes", token, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status %d, want 200", resp.StatusCode)
	}
	var listed []json.RawMessage
	if err := json.Unmarshal(env.Data, &listed); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if len(listed) != 1 {
		t.Fatalf("listed %d records, want 1", len(listed))
	}

	resp, _ = doRaw(t, http.MethodPut, server.URL+"/api/space/notes/"+created.ID, token,
		map[string]string{"title": "groceries", "content": "milk, eggs, bread"})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("update status %d, want 200", resp.StatusCode)
	}

	resp, _ = doRaw(t, http.MethodDelete, server.URL+"/api/space/notes/"+created.ID, token, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("delete status %d, want 200", resp.StatusCode)
	}

	resp, _ = doRaw(t, http.MethodDelete, server.URL+"/api/space/notes/"+created.ID, token, nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("second delete status %d, want 404", resp.StatusCode)
	}
}

func TestSpaceRejectsUnknownCollection(t *testing.T) {
	server, token := newTestServer(t)

	resp, _ := doRaw(t, http.MethodPost, server.URL+"/api/space/secrets", token,
		map[string]string{"x": "y"})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status %d, want 400", resp.StatusCode)
	}
}

func TestLoginAndVerify(t *testing.T) {
	server, _ := newTestServer(t)

	resp, env := doRaw(t, http.MethodPost, server.URL+"/api/auth/login", "",
		map[string]string{"email": "me@example.com", "accessKey": "test-key"})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("login status %d, want 200", resp.StatusCode)
	}

	var session struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(env.Data, &session); err != nil {
		t.Fatalf("decode session: %v", err)
	}
	if session.Token == "" {
		t.Fatal("login should return a token")
	}

	resp, _ = doRaw(t, http.MethodGet, server.URL+"/api/auth/verify", session.Token, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("verify status %d, want 200", resp.StatusCode)
	}

	resp, _ = doRaw(t, http.MethodPost, server.URL+"/api/auth/login", "",
		map[string]string{"email": "me@example.com", "accessKey": "wrong"})
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("bad key status %d, want 401", resp.StatusCode)
	}
}
