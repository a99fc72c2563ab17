package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var wateringCmd = &cobra.Command{
	Use:   "watering",
	Short: "Watering schedule commands",
}

var wateringCheckCmd = &cobra.Command{
	Use:   "check",
	Short: "Run the due-date sweep and report per-plant outcomes",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runWateringCheck()
	},
}

var wateringListCmd = &cobra.Command{
	Use:   "list",
	Short: "Show each plant's watering schedule, soonest due first",
	RunE: func(cmd *cobra.Command, args []string) error {
		return listWateringSchedule()
	},
}

func init() {
	wateringCmd.AddCommand(wateringCheckCmd)
	wateringCmd.AddCommand(wateringListCmd)
}

func runWateringCheck() error {
	body, err := apiRequest("POST", "/api/v1/watering/check", nil)
	if err != nil {
		return err
	}

	if output == "json" {
		fmt.Println(string(body))
		return nil
	}

	var result struct {
		Outcomes []struct {
			PlantID   string   `json:"plant_id"`
			PlantName string   `json:"plant_name"`
			Status    string   `json:"status"`
			Notified  []string `json:"notified"`
			Error     string   `json:"error,omitempty"`
		} `json:"outcomes"`
		Notified int `json:"notified"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}

	for _, o := range result.Outcomes {
		line := fmt.Sprintf("%-25s %s", o.PlantName, o.Status)
		if len(o.Notified) > 0 {
			line += " (" + strings.Join(o.Notified, ", ") + ")"
		}
		if o.Error != "" {
			line += " error: " + o.Error
		}
		fmt.Println(line)
	}
	fmt.Printf("\n%d notification(s) emitted\n", result.Notified)
	return nil
}

func listWateringSchedule() error {
	body, err := apiRequest("GET", "/api/v1/plants/watering", nil)
	if err != nil {
		return err
	}

	if output == "json" {
		fmt.Println(string(body))
		return nil
	}

	var result struct {
		Plants []struct {
			PlantName        string  `json:"plant_name"`
			LastWatered      *string `json:"last_watered"`
			NextWateringDate *string `json:"next_watering_date"`
			Frequency        int     `json:"watering_frequency"`
		} `json:"plants"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}

	for _, p := range result.Plants {
		next := "unscheduled"
		if p.NextWateringDate != nil {
			next = *p.NextWateringDate
		}
		fmt.Printf("%-25s every %2d days, next: %s\n", p.PlantName, p.Frequency, next)
	}
	return nil
}
