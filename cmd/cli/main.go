package main

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"strings"
)

func main() {
	api := os.Getenv("API_BASE")
	if api == "" {
		api = "http://localhost:8080"
	}
	key := os.Getenv("ADMIN_API_KEY")

	reader := bufio.NewReader(os.Stdin)
	fmt.Print("Enter a fut.gg player URL to monitor (e.g., https://www.fut.gg/players/12345-some-player/): ")
	raw, _ := reader.ReadString('\n')
	raw = strings.TrimSpace(raw)
	if !strings.Contains(raw, "://") {
		raw = "https://" + raw
	}
	if _, err := url.ParseRequestURI(raw); err != nil {
		fmt.Println("Invalid URL.")
		return
	}
	if !strings.Contains(raw, "/players/") {
		fmt.Println("That does not look like a fut.gg player page.")
		return
	}

	body, _ := json.Marshal(map[string]string{"url": raw})
	req, err := http.NewRequest(http.MethodPost, api+"/api/cards", bytes.NewReader(body))
	if err != nil {
		fmt.Println("Error building request:", err)
		return
	}
	req.Header.Set("Content-Type", "application/json")
	if key != "" {
		req.Header.Set("X-API-Key", key)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		fmt.Println("Error contacting API:", err)
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		fmt.Println("Added! The card joins the next monitoring cycle.")
	} else {
		fmt.Println("API returned status:", resp.Status)
	}
}
