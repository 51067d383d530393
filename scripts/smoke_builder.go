package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/fatih/color"
)

const baseURL = "http://localhost:3000/api"

// Pretty print JSON helper
func prettyPrint(v interface{}) {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		fmt.Printf("%v\n", v)
		return
	}
	fmt.Println(string(b))
}

// Request helper
func sendRequest(method, url, token string, body interface{}) (*http.Response, []byte, error) {
	var bodyReader io.Reader
	if body != nil {
		jsonBody, _ := json.Marshal(body)
		bodyReader = bytes.NewBuffer(jsonBody)
	}

	req, err := http.NewRequest(method, baseURL+url, bodyReader)
	if err != nil {
		return nil, nil, err
	}

	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	client := &http.Client{} // No timeout; generation can be slow
	resp, err := client.Do(req)
	if err != nil {
		return nil, nil, err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	return resp, respBody, err
}

func main() {
	token := os.Getenv("SMOKE_TOKEN")
	if token == "" {
		color.Red("SMOKE_TOKEN is not set (need a valid JWT)")
		os.Exit(1)
	}

	color.Cyan("🚀 Starting Bot Builder API Smoke Test\n")

	// 1. Generate a tiny bot
	color.Yellow("\n1. POST /builder/v1/generate")
	generateReq := map[string]interface{}{
		"bot_name": "smoke-bot",
		"nodes": []map[string]interface{}{
			{"num": 1, "type": "D", "name": "greeting", "message": "Hello! How can I help?",
				"richType": "Buttons", "richContent": "Sales~10|Support~20"},
			{"num": 10, "type": "A", "name": "sales handoff", "command": "set-variable",
				"variable": "team:sales", "decVar": "success", "nextNodes": []int{1}},
			{"num": 20, "type": "A", "name": "support handoff", "command": "set-variable",
				"variable": "team:support", "decVar": "success", "nextNodes": []int{1}},
		},
	}
	resp, body, err := sendRequest("POST", "/builder/v1/generate", token, generateReq)
	if err != nil {
		color.Red("Failed: %v", err)
		os.Exit(1)
	}
	color.Green("Status: %s", resp.Status)
	var genResp map[string]interface{}
	json.Unmarshal(body, &genResp)
	prettyPrint(genResp)

	// Extract run ID and artifact for the follow-ups
	var runID, artifact string
	if data, ok := genResp["data"].(map[string]interface{}); ok {
		runID, _ = data["run_id"].(string)
		artifact, _ = data["artifact"].(string)
	}

	// 2. Repair with a synthetic error
	color.Yellow("\n2. POST /builder/v1/repair")
	repairReq := map[string]interface{}{
		"artifact": artifact,
		"errors": []map[string]interface{}{
			{"node_num": 1, "err_msgs": [][]string{{"routing", "nextNodes", "decision node must route somewhere"}}},
		},
	}
	resp, body, err = sendRequest("POST", "/builder/v1/repair", token, repairReq)
	if err != nil {
		color.Red("Failed: %v", err)
		os.Exit(1)
	}
	color.Green("Status: %s", resp.Status)
	var repResp map[string]interface{}
	json.Unmarshal(body, &repResp)
	prettyPrint(repResp)

	// 3. List runs
	color.Yellow("\n3. GET /builder/v1/runs")
	resp, body, err = sendRequest("GET", "/builder/v1/runs", token, nil)
	if err != nil {
		color.Red("Failed: %v", err)
		os.Exit(1)
	}
	color.Green("Status: %s", resp.Status)
	var listResp map[string]interface{}
	json.Unmarshal(body, &listResp)
	prettyPrint(listResp)

	// 4. Show the run we just created
	if runID != "" {
		color.Yellow("\n4. GET /builder/v1/runs/%s", runID)
		resp, body, err = sendRequest("GET", "/builder/v1/runs/"+runID, token, nil)
		if err != nil {
			color.Red("Failed: %v", err)
			os.Exit(1)
		}
		color.Green("Status: %s", resp.Status)
		var showResp map[string]interface{}
		json.Unmarshal(body, &showResp)
		prettyPrint(showResp)
	}

	color.Cyan("\n✨ Smoke test finished")
}
