package main

import (
	"bufio"
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"
)

type historyEntry struct {
	ID            string  `json:"id"`
	Type          string  `json:"type"`
	Temperature   float64 `json:"temperature"`
	FormattedTime string  `json:"formattedTime"`
}

func main() {
	showHistory := flag.Bool("history", false, "print alert history instead of posting a reading")
	days := flag.Int("days", 0, "history window in days (1-90, default server window)")
	flag.Parse()

	api := os.Getenv("API_BASE")
	if api == "" {
		api = "http://localhost:8080"
	}
	api = strings.TrimRight(api, "/")
	client := &http.Client{Timeout: 15 * time.Second}

	if *showHistory {
		if err := printHistory(client, api, *days); err != nil {
			fmt.Println("Error:", err)
			os.Exit(1)
		}
		return
	}

	reader := bufio.NewReader(os.Stdin)
	fmt.Print("Enter the current temperature in °C (e.g., 4.5): ")
	raw, _ := reader.ReadString('\n')
	raw = strings.TrimSpace(raw)
	temp, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		fmt.Println("Invalid temperature.")
		return
	}

	body, _ := json.Marshal(map[string]float64{"temp": temp})
	req, _ := http.NewRequest(http.MethodPost, api+"/weather-alert", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if k := os.Getenv("ADMIN_API_KEY"); k != "" {
		req.Header.Set("X-API-Key", k)
	}
	resp, err := client.Do(req)
	if err != nil {
		fmt.Println("Error contacting API:", err)
		return
	}
	defer resp.Body.Close()

	out, _ := io.ReadAll(resp.Body)
	var result map[string]any
	if json.Unmarshal(out, &result) != nil {
		fmt.Println("API returned status:", resp.Status)
		return
	}
	switch result["status"] {
	case "alert-sent":
		fmt.Printf("Alert sent (%v).\n", result["alertType"])
	case "skipped":
		fmt.Printf("%v (%v).\n", result["message"], result["alertType"])
	case "normal":
		fmt.Println(result["message"])
	default:
		fmt.Printf("API returned %s: %v\n", resp.Status, result["message"])
	}
}

func printHistory(client *http.Client, api string, days int) error {
	u := api + "/weather-alert-history"
	if days > 0 {
		u += "?days=" + strconv.Itoa(days)
	}
	req, _ := http.NewRequest(http.MethodGet, u, nil)
	if k := os.Getenv("PUBLIC_API_KEY"); k != "" {
		req.Header.Set("X-API-Key", k)
	}
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("contacting API: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("API returned status %s", resp.Status)
	}

	var entries []historyEntry
	if err := json.NewDecoder(resp.Body).Decode(&entries); err != nil {
		return fmt.Errorf("decode history: %w", err)
	}
	if len(entries) == 0 {
		fmt.Println("No alerts in the window.")
		return nil
	}
	for _, e := range entries {
		fmt.Printf("%s  %-4s  %6.1f°C  (%s)\n", e.FormattedTime, e.Type, e.Temperature, e.ID)
	}
	if n := resp.Header.Get("X-Skipped-Records"); n != "" {
		fmt.Printf("%s stored record(s) could not be read.\n", n)
	}
	return nil
}
