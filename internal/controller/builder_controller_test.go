package controller

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"ai-botbuilder-be/internal/dto"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubBuilderService struct {
	generateReq  *dto.GenerateBotRequest
	generateRes  *dto.BuildResponse
	generateErr  error
	repairRes    *dto.RepairResponse
	listRes      []*dto.RunSummaryResponse
	showRes      *dto.RunDetailResponse
	lastUserId   uuid.UUID
	lastShownRun uuid.UUID
}

func (s *stubBuilderService) Generate(ctx context.Context, userId uuid.UUID, req *dto.GenerateBotRequest) (*dto.BuildResponse, error) {
	s.lastUserId = userId
	s.generateReq = req
	return s.generateRes, s.generateErr
}

func (s *stubBuilderService) Repair(ctx context.Context, req *dto.RepairRequest) (*dto.RepairResponse, error) {
	return s.repairRes, nil
}

func (s *stubBuilderService) ListRuns(ctx context.Context, userId uuid.UUID) ([]*dto.RunSummaryResponse, error) {
	s.lastUserId = userId
	return s.listRes, nil
}

func (s *stubBuilderService) ShowRun(ctx context.Context, userId uuid.UUID, id uuid.UUID) (*dto.RunDetailResponse, error) {
	s.lastUserId = userId
	s.lastShownRun = id
	return s.showRes, nil
}

func setupApp(t *testing.T, svc *stubBuilderService) *fiber.App {
	t.Helper()
	t.Setenv("JWT_SECRET", "test-secret")

	app := fiber.New()
	api := app.Group("/api")
	NewBuilderController(svc).RegisterRoutes(api)
	return app
}

func signToken(t *testing.T, userId uuid.UUID) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": userId.String(),
		"exp":     time.Now().Add(time.Hour).Unix(),
	})
	signed, err := token.SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return signed
}

func doRequest(t *testing.T, app *fiber.App, method, path, token string, body interface{}) (*http.Response, map[string]interface{}) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := app.Test(req, -1)
	require.NoError(t, err)

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var parsed map[string]interface{}
	if len(raw) > 0 {
		require.NoError(t, json.Unmarshal(raw, &parsed))
	}
	return resp, parsed
}

func TestGenerateRequiresAuth(t *testing.T) {
	app := setupApp(t, &stubBuilderService{})

	resp, _ := doRequest(t, app, "POST", "/api/builder/v1/generate", "", fiber.Map{
		"bot_name": "demo",
		"nodes":    []fiber.Map{{"num": 1, "type": "D", "name": "greet"}},
	})
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestGenerateSuccess(t *testing.T) {
	userId := uuid.New()
	runId := uuid.New()
	svc := &stubBuilderService{
		generateRes: &dto.BuildResponse{
			RunId:    runId,
			Artifact: "Node Number,Node Type\n1,D\n",
			Status:   "generated",
		},
	}
	app := setupApp(t, svc)

	resp, body := doRequest(t, app, "POST", "/api/builder/v1/generate", signToken(t, userId), fiber.Map{
		"bot_name": "demo",
		"nodes":    []fiber.Map{{"num": 1, "type": "D", "name": "greet"}},
	})

	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, "Bot generated", body["message"])

	data := body["data"].(map[string]interface{})
	assert.Equal(t, runId.String(), data["run_id"])
	assert.Equal(t, "generated", data["status"])

	assert.Equal(t, userId, svc.lastUserId)
	require.NotNil(t, svc.generateReq)
	assert.Equal(t, "demo", svc.generateReq.BotName)
	assert.Len(t, svc.generateReq.Nodes, 1)
}

func TestGenerateRejectsEmptyNodes(t *testing.T) {
	svc := &stubBuilderService{}
	app := setupApp(t, svc)

	resp, body := doRequest(t, app, "POST", "/api/builder/v1/generate", signToken(t, uuid.New()), fiber.Map{
		"bot_name": "demo",
		"nodes":    []fiber.Map{},
	})

	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, false, body["success"])
	assert.Nil(t, svc.generateReq)
}

func TestRepairSuccess(t *testing.T) {
	svc := &stubBuilderService{
		repairRes: &dto.RepairResponse{
			Artifact:     "fixed",
			FixesApplied: []string{"node 1: routing"},
		},
	}
	app := setupApp(t, svc)

	resp, body := doRequest(t, app, "POST", "/api/builder/v1/repair", signToken(t, uuid.New()), fiber.Map{
		"artifact": "Node Number,Node Type\n1,D\n",
		"errors":   []fiber.Map{{"node_num": 1, "err_msgs": [][]string{{"routing", "nextNodes", "must route somewhere"}}}},
	})

	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "Repair attempted", body["message"])

	data := body["data"].(map[string]interface{})
	assert.Equal(t, "fixed", data["artifact"])
}

func TestRepairRejectsMissingArtifact(t *testing.T) {
	app := setupApp(t, &stubBuilderService{})

	resp, body := doRequest(t, app, "POST", "/api/builder/v1/repair", signToken(t, uuid.New()), fiber.Map{
		"errors": []fiber.Map{{"node_num": 1}},
	})

	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, false, body["success"])
}

func TestListRunsScopedToCaller(t *testing.T) {
	userId := uuid.New()
	svc := &stubBuilderService{
		listRes: []*dto.RunSummaryResponse{
			{Id: uuid.New(), BotName: "demo", Status: "valid", NodeCount: 3},
		},
	}
	app := setupApp(t, svc)

	resp, body := doRequest(t, app, "GET", "/api/builder/v1/runs", signToken(t, userId), nil)

	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, userId, svc.lastUserId)

	data := body["data"].([]interface{})
	assert.Len(t, data, 1)
}

func TestShowRunNotFound(t *testing.T) {
	svc := &stubBuilderService{showRes: nil}
	app := setupApp(t, svc)

	resp, body := doRequest(t, app, "GET", "/api/builder/v1/runs/"+uuid.New().String(), signToken(t, uuid.New()), nil)

	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "Run not found", body["message"])
}

func TestShowRunRejectsBadId(t *testing.T) {
	app := setupApp(t, &stubBuilderService{})

	resp, _ := doRequest(t, app, "GET", "/api/builder/v1/runs/not-a-uuid", signToken(t, uuid.New()), nil)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestShowRunSuccess(t *testing.T) {
	userId := uuid.New()
	runId := uuid.New()
	svc := &stubBuilderService{
		showRes: &dto.RunDetailResponse{
			Id:           runId,
			BotName:      "demo",
			Status:       "valid",
			RepairRounds: 1,
			Attempts: []dto.RepairAttemptResponse{
				{Round: 1, Mode: "row", FixedCount: 2},
			},
		},
	}
	app := setupApp(t, svc)

	resp, body := doRequest(t, app, "GET", "/api/builder/v1/runs/"+runId.String(), signToken(t, userId), nil)

	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, runId, svc.lastShownRun)

	data := body["data"].(map[string]interface{})
	assert.Equal(t, "valid", data["status"])
	attempts := data["attempts"].([]interface{})
	assert.Len(t, attempts, 1)
}
